package link

import (
	"context"

	"github.com/pkg/errors"

	"github.com/mutagen-io/arlink/pkg/object"
	"github.com/mutagen-io/arlink/pkg/resolver"
)

// probe is the outcome of searching the archives for a symbol.
type probe struct {
	// archive is the path of the archive that matched, if any.
	archive string
	// file is the defining file, if found.
	file *object.File
	// err is the load error, if any.
	err error
}

// probeSymbol searches the archives in input order for a symbol. The first
// archive whose index defines the symbol decides the outcome.
func (s *Session) probeSymbol(symbol string) probe {
	for _, input := range s.archives {
		file, err := input.resolver.Find(symbol)
		if err != nil {
			return probe{archive: input.archive.Path(), err: err}
		} else if file != nil {
			return probe{archive: input.archive.Path(), file: file}
		}
	}
	return probe{}
}

// probeBatch probes a batch of symbols, concurrently if workers are available.
// The context is checked before each probe, so cancellation lets in-flight
// probes finish but starts no new ones.
func (s *Session) probeBatch(ctx context.Context, batch []string) ([]probe, error) {
	results := make([]probe, len(batch))
	if s.workers == nil || len(batch) < 2 {
		for i, symbol := range batch {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			results[i] = s.probeSymbol(symbol)
		}
		return results, nil
	}
	if err := s.workers.Do(func(index, size int) error {
		for i := index; i < len(batch); i += size {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = s.probeSymbol(batch[i])
		}
		return nil
	}); err != nil {
		return nil, err
	}
	return results, nil
}

// diagnose converts a probe failure to a diagnostic.
func diagnose(symbol string, p probe) Diagnostic {
	diagnostic := Diagnostic{
		Symbol:  symbol,
		Archive: p.archive,
		Message: p.err.Error(),
	}
	var memberErr *resolver.MemberError
	if errors.As(p.err, &memberErr) {
		diagnostic.Member = memberErr.Member
		diagnostic.Offset = memberErr.Offset
	}
	return diagnostic
}

// Resolve runs symbol resolution over the session's inputs. Archive members are
// loaded only when they define a strongly referenced symbol that is otherwise
// undefined. The context is checked before each archive probe. Resolve may be
// invoked repeatedly; archive members that have been parsed are reused.
func (s *Session) Resolve(ctx context.Context) (*Result, error) {
	symbols := newTable()

	// Add standalone objects.
	for _, file := range s.objects {
		symbols.add(file)
	}

	// Force-load whole archives.
	for _, input := range s.archives {
		if !input.wholeArchive {
			continue
		}
		files, err := input.resolver.ParseAllMembers()
		if err != nil {
			return nil, errors.Wrap(err, "unable to load whole archive")
		}
		for _, file := range files {
			symbols.add(file)
		}
		s.logger.Debugf("Force-loaded %d members from %s", len(files), input.archive.Path())
	}

	// Seed required symbols.
	for _, name := range s.configuration.Undefined {
		symbols.require(name)
	}

	// Process the worklist. Each batch is the current contents of the queue.
	// Results are applied in queue order, skipping symbols that an earlier
	// result in the batch defined, which makes the outcome identical to a
	// sequential walk of the queue.
	var diagnostics []Diagnostic
	for len(symbols.pending) > 0 {
		batch := symbols.pending
		symbols.pending = nil
		s.logger.Tracef("Probing %d symbols", len(batch))
		probes, err := s.probeBatch(ctx, batch)
		if err != nil {
			return nil, errors.Wrap(err, "resolution cancelled")
		}
		for i, name := range batch {
			if symbols.defined(name) {
				continue
			}
			p := probes[i]
			if p.err != nil {
				symbols.get(name).failed = true
				diagnostics = append(diagnostics, diagnose(name, p))
				s.logger.Warn(p.err)
				continue
			} else if p.file == nil {
				continue
			}
			if symbols.add(p.file) {
				s.logger.Debugf("Loaded %s for %s", p.file, name)
			}
		}
	}

	// Build the result.
	result := &Result{
		Session:     s.identifier,
		Loaded:      symbols.files,
		Undefined:   symbols.undefined(),
		Duplicates:  symbols.duplicates,
		Diagnostics: diagnostics,
	}
	for _, input := range s.archives {
		result.Archives = append(result.Archives, ArchiveStatistics{
			Path:         input.archive.Path(),
			WholeArchive: input.wholeArchive,
			Statistics:   input.resolver.Statistics(),
		})
	}
	s.logger.Infof("Resolved %d files with %d undefined symbols, %d duplicates, and %d diagnostics",
		len(result.Loaded), len(result.Undefined), len(result.Duplicates), len(result.Diagnostics),
	)

	// Success.
	return result, nil
}
