package resolver

import (
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"

	"github.com/mutagen-io/arlink/pkg/archive"
	"github.com/mutagen-io/arlink/pkg/logging"
	"github.com/mutagen-io/arlink/pkg/object"
)

// ArchiveLibraryFile is the interface to a lazily loaded static library.
type ArchiveLibraryFile interface {
	// Find returns the File defining the specified symbol. If the library
	// doesn't define the symbol, it returns a nil File and a nil error. Every
	// lookup that resolves to the same member returns the same File.
	Find(symbol string) (*object.File, error)
	// ParseAllMembers loads every member and returns their Files in member
	// order.
	ParseAllMembers() ([]*object.File, error)
}

// Index is the view of an opened archive required by StaticArchive. It is
// implemented by *archive.Archive.
type Index interface {
	// Path returns the archive path.
	Path() string
	// Members returns the members in on-disk order.
	Members() []archive.Member
	// Lookup returns the member that defines a symbol.
	Lookup(symbol string) (archive.Member, bool)
	// ReadMember returns a member's data.
	ReadMember(member archive.Member) ([]byte, error)
}

// Options are StaticArchive options.
type Options struct {
	// MaximumMemberSize is the largest member that will be parsed. Larger
	// members are treated as malformed. Zero means unlimited.
	MaximumMemberSize uint64
}

// memberState is the parse state of an archive member.
type memberState uint8

const (
	// memberUnparsed indicates that a member hasn't been parsed.
	memberUnparsed memberState = iota
	// memberParsed indicates that a member has been parsed successfully.
	memberParsed
	// memberParseFailed indicates that parsing a member failed. The state is
	// terminal.
	memberParseFailed
)

// slot is the cache entry for a single member.
type slot struct {
	// lock serializes loading of the member, making parses at most once.
	lock sync.Mutex
	// state is the member state.
	state memberState
	// file is the parsed file. It is only set for memberParsed.
	file *object.File
	// err is the parse error. It is only set for memberParseFailed.
	err error
}

// Statistics summarizes the parse state of a StaticArchive.
type Statistics struct {
	// Members is the number of members in the archive.
	Members int `yaml:"members"`
	// Parsed is the number of members parsed successfully.
	Parsed int `yaml:"parsed"`
	// Failed is the number of members that failed to parse.
	Failed int `yaml:"failed"`
}

// StaticArchive implements ArchiveLibraryFile on top of an archive index. It
// is safe for concurrent use: loads of different members proceed in parallel
// and concurrent loads of the same member parse it once.
type StaticArchive struct {
	// index is the underlying archive.
	index Index
	// parser is the member parser.
	parser object.Parser
	// logger is the underlying logger.
	logger *logging.Logger
	// options are the archive options.
	options Options
	// members are the archive members.
	members []archive.Member
	// slots are the member cache entries, parallel to members.
	slots []slot
	// slotIndex maps member header offsets to indices in slots.
	slotIndex map[int64]int
}

// NewStaticArchive creates a new StaticArchive. The member table is captured
// at creation time and must not change afterward.
func NewStaticArchive(index Index, parser object.Parser, options Options, logger *logging.Logger) *StaticArchive {
	members := index.Members()
	slotIndex := make(map[int64]int, len(members))
	for i, m := range members {
		slotIndex[m.Offset] = i
	}
	return &StaticArchive{
		index:     index,
		parser:    parser,
		logger:    logger,
		options:   options,
		members:   members,
		slots:     make([]slot, len(members)),
		slotIndex: slotIndex,
	}
}

// Path returns the archive path.
func (s *StaticArchive) Path() string {
	return s.index.Path()
}

// Find implements ArchiveLibraryFile.Find.
func (s *StaticArchive) Find(symbol string) (*object.File, error) {
	if symbol == "" {
		return nil, errors.New("empty symbol name")
	}

	// Look up the defining member.
	member, ok := s.index.Lookup(symbol)
	if !ok {
		s.logger.Tracef("%s does not define %s", s.index.Path(), symbol)
		return nil, nil
	}
	i, ok := s.slotIndex[member.Offset]
	if !ok {
		return nil, errors.Wrapf(archive.ErrArchiveIndexCorrupt,
			"%s: symbol %s refers to offset %d, which is not a member",
			s.index.Path(), symbol, member.Offset,
		)
	}

	// Load the member.
	file, err := s.load(i)
	if err != nil {
		return nil, &MemberError{
			Archive: s.index.Path(),
			Member:  member.Name,
			Offset:  member.Offset,
			Symbol:  symbol,
			Err:     err,
		}
	}
	s.logger.Tracef("%s defines %s in %s", s.index.Path(), symbol, member.Name)
	return file, nil
}

// ParseAllMembers implements ArchiveLibraryFile.ParseAllMembers. It stops at
// the first member that fails to load. Members loaded before the failure
// remain cached.
func (s *StaticArchive) ParseAllMembers() ([]*object.File, error) {
	files := make([]*object.File, 0, len(s.members))
	for i, member := range s.members {
		file, err := s.load(i)
		if err != nil {
			return nil, &MemberError{
				Archive: s.index.Path(),
				Member:  member.Name,
				Offset:  member.Offset,
				Err:     err,
			}
		}
		files = append(files, file)
	}
	return files, nil
}

// Statistics returns the current parse statistics.
func (s *StaticArchive) Statistics() Statistics {
	result := Statistics{Members: len(s.slots)}
	for i := range s.slots {
		slot := &s.slots[i]
		slot.lock.Lock()
		switch slot.state {
		case memberParsed:
			result.Parsed++
		case memberParseFailed:
			result.Failed++
		}
		slot.lock.Unlock()
	}
	return result
}

// load returns the File for the member at the specified index, parsing it if
// necessary. Read failures leave the member unparsed so that the load can be
// retried; parse failures are terminal for the member.
func (s *StaticArchive) load(index int) (*object.File, error) {
	// Lock the slot and defer its release.
	slot := &s.slots[index]
	slot.lock.Lock()
	defer slot.lock.Unlock()

	// Handle cached outcomes.
	switch slot.state {
	case memberParsed:
		return slot.file, nil
	case memberParseFailed:
		return nil, slot.err
	}

	// Enforce the size limit.
	member := s.members[index]
	if s.options.MaximumMemberSize > 0 && uint64(member.Size) > s.options.MaximumMemberSize {
		slot.state = memberParseFailed
		slot.err = errors.Wrapf(object.ErrMalformedInput, "member size (%s) exceeds maximum (%s)",
			humanize.Bytes(uint64(member.Size)), humanize.Bytes(s.options.MaximumMemberSize),
		)
		return nil, slot.err
	}

	// Read the member data.
	data, err := s.index.ReadMember(member)
	if err != nil {
		return nil, err
	}

	// Parse the member.
	origin := object.Origin{Path: s.index.Path(), Member: member.Name, Offset: member.Offset}
	file, err := s.parser.Parse(origin, data)
	if err == nil && file == nil {
		err = errors.New("parser returned no file")
	}
	if err != nil {
		if !errors.Is(err, object.ErrMalformedInput) {
			err = errors.Wrapf(object.ErrMalformedInput, "%v", err)
		}
		s.logger.Debugf("Unable to parse %s: %v", origin, err)
		slot.state = memberParseFailed
		slot.err = err
		return nil, err
	}

	// Cache the result.
	s.logger.Debugf("Loaded %s (%s, %d definitions)", origin, humanize.Bytes(uint64(member.Size)), len(file.Defined))
	slot.state = memberParsed
	slot.file = file
	return file, nil
}
