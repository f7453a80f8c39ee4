package link

import (
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/mutagen-io/arlink/pkg/archive"
	"github.com/mutagen-io/arlink/pkg/configuration"
	"github.com/mutagen-io/arlink/pkg/identifier"
	"github.com/mutagen-io/arlink/pkg/logging"
	"github.com/mutagen-io/arlink/pkg/object"
	"github.com/mutagen-io/arlink/pkg/parallelism"
	"github.com/mutagen-io/arlink/pkg/resolver"
)

// archiveInput is an archive participating in a link.
type archiveInput struct {
	// archive is the opened archive.
	archive *archive.Archive
	// resolver is the lazy resolver for the archive.
	resolver *resolver.StaticArchive
	// wholeArchive indicates whether or not every member is loaded.
	wholeArchive bool
}

// Session is a single link's set of opened inputs. It is not safe for
// concurrent use, though it uses concurrency internally.
type Session struct {
	// identifier is the session identifier.
	identifier string
	// logger is the underlying logger.
	logger *logging.Logger
	// configuration is the link configuration.
	configuration *configuration.Configuration
	// pool bounds the number of mapped archives.
	pool *archive.Pool
	// objects are the standalone object inputs, in input order.
	objects []*object.File
	// archives are the archive inputs, in input order.
	archives []*archiveInput
	// workers is the probe worker array. It is nil for sequential resolution.
	workers *parallelism.WorkerArray
}

// NewSession validates the configuration and opens every input. Objects are
// parsed immediately, while archives only have their member table and index
// read.
func NewSession(config *configuration.Configuration, parser object.Parser, logger *logging.Logger) (*Session, error) {
	// Validate the configuration.
	if err := config.EnsureValid(); err != nil {
		return nil, errors.Wrap(err, "invalid link configuration")
	}

	// Create a session identifier.
	sessionIdentifier, err := identifier.New(identifier.PrefixLink)
	if err != nil {
		return nil, errors.Wrap(err, "unable to generate session identifier")
	}
	logger = logger.Sublogger(sessionIdentifier)

	// Create the session.
	session := &Session{
		identifier:    sessionIdentifier,
		logger:        logger,
		configuration: config,
		pool:          archive.NewPool(config.MaximumOpenArchives, logger.Sublogger("archive")),
	}

	// Locate libraries. They follow explicit inputs.
	inputs := make([]string, 0, len(config.Inputs)+len(config.Libraries))
	inputs = append(inputs, config.Inputs...)
	for _, library := range config.Libraries {
		path, err := findLibrary(library, config.LibraryPaths)
		if err != nil {
			return nil, err
		}
		logger.Debugf("Found library -l%s at %s", library, path)
		inputs = append(inputs, path)
	}

	// Open inputs.
	options := resolver.Options{MaximumMemberSize: uint64(config.MaximumMemberSize)}
	resolverLogger := logger.Sublogger("resolver")
	for _, path := range inputs {
		isArchive, err := probeArchive(path)
		if err != nil {
			session.Close()
			return nil, err
		}
		if isArchive {
			opened, err := session.pool.Open(path)
			if err != nil {
				session.Close()
				return nil, errors.Wrapf(err, "unable to open archive %s", path)
			}
			input := &archiveInput{
				archive:      opened,
				resolver:     resolver.NewStaticArchive(opened, parser, options, resolverLogger),
				wholeArchive: config.IsWholeArchive(path),
			}
			logger.Debugf("Opened archive %s (%d members, %d index entries, whole archive: %t)",
				path, len(opened.Members()), len(opened.Entries()), input.wholeArchive,
			)
			session.archives = append(session.archives, input)
		} else {
			file, err := object.Load(parser, path)
			if err != nil {
				session.Close()
				return nil, errors.Wrapf(err, "unable to load object %s", path)
			}
			logger.Debugf("Loaded object %s", path)
			session.objects = append(session.objects, file)
		}
	}

	// Create workers if resolution is parallel.
	if config.Workers > 1 {
		session.workers = parallelism.NewWorkerArray(config.Workers)
	}

	// Success.
	return session, nil
}

// probeArchive returns whether or not the file at the specified path starts
// with an archive header.
func probeArchive(path string) (bool, error) {
	file, err := os.Open(path)
	if err != nil {
		return false, errors.Wrap(err, "unable to open input")
	}
	defer file.Close()
	prefix := make([]byte, 8)
	if _, err := io.ReadFull(file, prefix); err == io.EOF || err == io.ErrUnexpectedEOF {
		return false, nil
	} else if err != nil {
		return false, errors.Wrapf(err, "unable to read input %s", path)
	}
	return archive.HasMagic(prefix), nil
}

// Identifier returns the session identifier.
func (s *Session) Identifier() string {
	return s.identifier
}

// Close releases the session's archives and workers. It returns the first error
// encountered.
func (s *Session) Close() error {
	var firstErr error
	for _, input := range s.archives {
		if err := input.archive.Close(); err != nil && firstErr == nil {
			firstErr = errors.Wrapf(err, "unable to close archive %s", input.archive.Path())
		}
	}
	s.archives = nil
	if s.workers != nil {
		s.workers.Terminate()
		s.workers = nil
	}
	return firstErr
}
