package archive

import (
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// Member describes a single archive member.
type Member struct {
	// Name is the member name.
	Name string
	// Offset is the offset of the member header within the archive. Symbol
	// index entries refer to members by this offset.
	Offset int64
	// DataOffset is the offset of the member data within the archive.
	DataOffset int64
	// Size is the size of the member data.
	Size int64
}

// IndexEntry is a single symbol index entry.
type IndexEntry struct {
	// Symbol is the symbol name.
	Symbol string
	// Offset is the header offset of the member defining the symbol.
	Offset int64
}

// backing is the byte source underlying an archive.
type backing interface {
	io.ReaderAt
	io.Closer
}

// readerBacking adapts an io.ReaderAt owned by the caller.
type readerBacking struct {
	io.ReaderAt
}

// Close implements io.Closer.Close.
func (readerBacking) Close() error {
	return nil
}

// Archive is an opened static archive. The member table and symbol index are
// immutable after opening. Archive is safe for concurrent use.
type Archive struct {
	// path is the archive path.
	path string
	// size is the archive size at the time it was opened.
	size int64
	// members are the members in on-disk order.
	members []Member
	// memberIndex maps member header offsets to indices in members.
	memberIndex map[int64]int
	// entries are the symbol index entries in index order.
	entries []IndexEntry
	// symbols maps symbol names to member header offsets.
	symbols map[string]int64
	// pool is the pool that bounds the archive's backing, if any.
	pool *Pool

	// lock guards backing and closed.
	lock sync.Mutex
	// backing is the archive byte source. It is nil if the archive's mapping
	// has been released by its pool, in which case it is reopened on demand.
	backing backing
	// closed indicates whether or not the archive has been closed.
	closed bool
}

// Open opens and indexes the archive at the specified path.
func Open(path string) (*Archive, error) {
	return open(path, nil)
}

// open is the underlying implementation of Open and Pool.Open.
func open(path string, pool *Pool) (*Archive, error) {
	// Open the backing.
	backing, size, err := openBacking(path)
	if err != nil {
		return nil, errors.Wrap(err, "unable to open archive")
	}

	// Parse the archive.
	result, err := parse(path, backing, size)
	if err != nil {
		backing.Close()
		return nil, err
	}
	result.backing = backing
	result.pool = pool

	// Success.
	return result, nil
}

// Parse indexes an archive held by the specified reader. The reader must
// remain valid until the archive is closed.
func Parse(path string, reader io.ReaderAt, size int64) (*Archive, error) {
	result, err := parse(path, reader, size)
	if err != nil {
		return nil, err
	}
	result.backing = readerBacking{reader}
	return result, nil
}

// parse reads the member table and symbol index.
func parse(path string, reader io.ReaderAt, size int64) (*Archive, error) {
	// Verify the global header.
	if size < int64(len(magic)) {
		return nil, errors.Wrapf(ErrNotArchive, "%s: file too short", path)
	}
	prefix, err := readFull(reader, 0, int64(len(magic)))
	if err != nil {
		return nil, errors.Wrapf(err, "%s: unable to read archive header", path)
	} else if string(prefix) == thinMagic {
		return nil, errors.Wrapf(ErrNotArchive, "%s: thin archives are not supported", path)
	} else if string(prefix) != magic {
		return nil, errors.Wrapf(ErrNotArchive, "%s: invalid archive magic", path)
	}

	// Walk the member headers.
	result := &Archive{
		path:        path,
		size:        size,
		memberIndex: make(map[int64]int),
	}
	var indexData, longNames []byte
	var indexDecoder func([]byte) ([]IndexEntry, error)
	for offset := int64(len(magic)); offset < size; {
		// Decode the header.
		if size-offset < headerSize {
			return nil, corruptf("%s: truncated member header at offset %d", path, offset)
		}
		buffer, err := readFull(reader, offset, headerSize)
		if err != nil {
			return nil, errors.Wrapf(err, "%s: unable to read member header at offset %d", path, offset)
		}
		h, err := parseHeader(buffer)
		if err != nil {
			return nil, corruptf("%s: member header at offset %d: %v", path, offset, err)
		}
		dataOffset := offset + headerSize
		if h.size > size-dataOffset {
			return nil, corruptf("%s: member at offset %d extends past end of archive", path, offset)
		}
		dataSize := h.size

		// Compute the next header offset. Member data is padded to an even
		// boundary.
		next := dataOffset + dataSize
		next += next % 2

		// Handle special members and decode the member name.
		var name string
		readSpecial := func(decoder func([]byte) ([]IndexEntry, error)) error {
			if indexDecoder != nil {
				return nil
			}
			data, err := readFull(reader, dataOffset, dataSize)
			if err != nil {
				return errors.Wrapf(err, "%s: unable to read symbol index", path)
			}
			indexData, indexDecoder = data, decoder
			return nil
		}
		switch {
		case h.name == "/":
			if err := readSpecial(func(data []byte) ([]IndexEntry, error) {
				return decodeGNUIndex(data, 4)
			}); err != nil {
				return nil, err
			}
			offset = next
			continue
		case h.name == "/SYM64/":
			if err := readSpecial(func(data []byte) ([]IndexEntry, error) {
				return decodeGNUIndex(data, 8)
			}); err != nil {
				return nil, err
			}
			offset = next
			continue
		case h.name == "//":
			if longNames, err = readFull(reader, dataOffset, dataSize); err != nil {
				return nil, errors.Wrapf(err, "%s: unable to read long-name table", path)
			}
			offset = next
			continue
		case isBSDIndexName(h.name):
			if err := readSpecial(decodeBSDIndex); err != nil {
				return nil, err
			}
			offset = next
			continue
		case strings.HasPrefix(h.name, bsdNamePrefix):
			length, err := strconv.ParseInt(h.name[len(bsdNamePrefix):], 10, 64)
			if err != nil || length < 0 || length > dataSize {
				return nil, corruptf("%s: invalid BSD name length at offset %d", path, offset)
			}
			nameData, err := readFull(reader, dataOffset, length)
			if err != nil {
				return nil, errors.Wrapf(err, "%s: unable to read member name at offset %d", path, offset)
			}
			name = strings.TrimRight(string(nameData), "\x00")
			dataOffset += length
			dataSize -= length
			if isBSDIndexName(name) {
				if err := readSpecial(decodeBSDIndex); err != nil {
					return nil, err
				}
				offset = next
				continue
			}
		case isLongNameReference(h.name):
			if name, err = lookupLongName(longNames, h.name); err != nil {
				return nil, corruptf("%s: member at offset %d: %v", path, offset, err)
			}
		default:
			name = strings.TrimSuffix(h.name, "/")
		}

		// Record the member.
		result.memberIndex[offset] = len(result.members)
		result.members = append(result.members, Member{
			Name:       name,
			Offset:     offset,
			DataOffset: dataOffset,
			Size:       dataSize,
		})
		offset = next
	}

	// Decode and validate the symbol index.
	if indexDecoder == nil {
		if len(result.members) > 0 {
			return nil, corruptf("%s: archive has no symbol index; run ranlib to add one", path)
		}
	} else if result.entries, err = indexDecoder(indexData); err != nil {
		return nil, errors.Wrap(err, path)
	}
	result.symbols = make(map[string]int64, len(result.entries))
	for _, e := range result.entries {
		if _, ok := result.memberIndex[e.Offset]; !ok {
			return nil, corruptf("%s: symbol %s refers to offset %d, which is not a member", path, e.Symbol, e.Offset)
		}
		if _, exists := result.symbols[e.Symbol]; !exists {
			result.symbols[e.Symbol] = e.Offset
		}
	}

	// Success.
	return result, nil
}

// Path returns the archive path.
func (a *Archive) Path() string {
	return a.path
}

// Members returns the archive members in on-disk order. The returned slice
// must not be modified.
func (a *Archive) Members() []Member {
	return a.members
}

// Entries returns the symbol index entries in index order. The returned slice
// must not be modified.
func (a *Archive) Entries() []IndexEntry {
	return a.entries
}

// Lookup returns the member defining the specified symbol according to the
// symbol index. If the index lists the symbol more than once, the first entry
// wins.
func (a *Archive) Lookup(symbol string) (Member, bool) {
	offset, ok := a.symbols[symbol]
	if !ok {
		return Member{}, false
	}
	return a.members[a.memberIndex[offset]], true
}

// ReadMember returns a copy of the specified member's data.
func (a *Archive) ReadMember(member Member) ([]byte, error) {
	// Verify that the member belongs to this archive.
	if i, ok := a.memberIndex[member.Offset]; !ok || a.members[i] != member {
		return nil, errors.Errorf("%s: no member %s at offset %d", a.path, member.Name, member.Offset)
	}

	// Perform the read.
	data, err := a.read(member)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read member %s(%s)", a.path, member.Name)
	}

	// Mark the archive as recently used.
	if a.pool != nil {
		a.pool.touch(a)
	}

	// Success.
	return data, nil
}

// read reads member data, reopening the archive backing if necessary.
func (a *Archive) read(member Member) ([]byte, error) {
	// Lock the archive and defer its release.
	a.lock.Lock()
	defer a.lock.Unlock()

	// Ensure that the backing is available.
	if a.closed {
		return nil, errors.New("archive closed")
	} else if a.backing == nil {
		backing, size, err := openBacking(a.path)
		if err != nil {
			return nil, errors.Wrap(err, "unable to reopen archive")
		} else if size != a.size {
			backing.Close()
			return nil, errors.New("archive changed size since it was opened")
		}
		a.backing = backing
	}

	// Read the data.
	return readFull(a.backing, member.DataOffset, member.Size)
}

// release closes the archive backing. It will be reopened on demand.
func (a *Archive) release() error {
	a.lock.Lock()
	defer a.lock.Unlock()
	return a.releaseLocked()
}

// releaseLocked is the underlying implementation of release. The caller must
// hold the archive lock.
func (a *Archive) releaseLocked() error {
	if a.backing == nil {
		return nil
	}
	err := a.backing.Close()
	a.backing = nil
	return err
}

// isClosed returns whether or not the archive has been closed.
func (a *Archive) isClosed() bool {
	a.lock.Lock()
	defer a.lock.Unlock()
	return a.closed
}

// Close closes the archive. Subsequent reads will fail.
func (a *Archive) Close() error {
	// Mark the archive closed and release the backing. The archive must be
	// marked closed before its pool forgets it.
	a.lock.Lock()
	a.closed = true
	err := a.releaseLocked()
	a.lock.Unlock()

	// Remove the archive from its pool.
	if a.pool != nil {
		a.pool.forget(a)
	}

	// Done.
	return err
}
