package link

import (
	"github.com/mutagen-io/arlink/pkg/object"
)

// requiredByCommandLine is reported as the referencing input for symbols
// required by configuration rather than by a file.
const requiredByCommandLine = "<command line>"

// symbol is the resolution state of a single symbol name.
type symbol struct {
	// definition is the file providing the current definition, if any.
	definition *object.File
	// weakDefinition indicates whether or not the current definition is weak.
	weakDefinition bool
	// strongReference indicates whether or not the symbol has been referenced
	// by a strong undefined reference (or required by configuration).
	strongReference bool
	// referencedBy is the first file to reference the symbol. It is nil for
	// symbols required by configuration.
	referencedBy *object.File
	// probed indicates whether or not the symbol has been queued for an
	// archive probe. Probes are deterministic, so each symbol is probed once.
	probed bool
	// failed indicates whether or not the probe produced a diagnostic.
	failed bool
}

// table is the global symbol table of a link.
type table struct {
	// symbols maps names to their state.
	symbols map[string]*symbol
	// order records symbol names in first-seen order.
	order []string
	// loaded tracks the files that have been added.
	loaded map[*object.File]bool
	// files are the added files in load order.
	files []*object.File
	// duplicates are the duplicate strong definitions seen.
	duplicates []DuplicateSymbol
	// pending are the symbols awaiting an archive probe, in FIFO order.
	pending []string
}

// newTable creates a new empty symbol table.
func newTable() *table {
	return &table{
		symbols: make(map[string]*symbol),
		loaded:  make(map[*object.File]bool),
	}
}

// get returns the state for a symbol name, creating it if necessary.
func (t *table) get(name string) *symbol {
	s, ok := t.symbols[name]
	if !ok {
		s = &symbol{}
		t.symbols[name] = s
		t.order = append(t.order, name)
	}
	return s
}

// defined returns whether or not a symbol currently has a definition.
func (t *table) defined(name string) bool {
	s, ok := t.symbols[name]
	return ok && s.definition != nil
}

// enqueue queues a strongly referenced, undefined symbol for probing.
func (t *table) enqueue(name string, s *symbol) {
	if s.definition == nil && !s.probed {
		s.probed = true
		t.pending = append(t.pending, name)
	}
}

// require records a symbol required by configuration.
func (t *table) require(name string) {
	s := t.get(name)
	s.strongReference = true
	t.enqueue(name, s)
}

// add adds a file's definitions and references to the table. It returns false
// if the file was already added, in which case the table is unchanged.
func (t *table) add(file *object.File) bool {
	// Handle files that are already present.
	if t.loaded[file] {
		return false
	}
	t.loaded[file] = true
	t.files = append(t.files, file)

	// Record definitions. Strong definitions replace weak ones and the first
	// strong definition wins over later ones.
	for _, d := range file.Defined {
		s := t.get(d.Name)
		switch {
		case s.definition == nil:
			s.definition = file
			s.weakDefinition = d.Weak
		case s.weakDefinition && !d.Weak:
			s.definition = file
			s.weakDefinition = false
		case !s.weakDefinition && !d.Weak:
			t.duplicates = append(t.duplicates, DuplicateSymbol{
				Symbol: d.Name,
				First:  s.definition.String(),
				Second: file.String(),
			})
		}
	}

	// Record references. Only strong references trigger archive fetches.
	for _, u := range file.Undefined {
		s := t.get(u.Name)
		if s.referencedBy == nil && !s.strongReference {
			s.referencedBy = file
		}
		if !u.Weak {
			if !s.strongReference {
				s.strongReference = true
				s.referencedBy = file
			}
			t.enqueue(u.Name, s)
		}
	}

	// Success.
	return true
}

// undefined returns the strongly referenced symbols that remain undefined,
// excluding those whose probe already produced a diagnostic.
func (t *table) undefined() []UndefinedSymbol {
	var result []UndefinedSymbol
	for _, name := range t.order {
		s := t.symbols[name]
		if !s.strongReference || s.definition != nil || s.failed {
			continue
		}
		referencedBy := requiredByCommandLine
		if s.referencedBy != nil {
			referencedBy = s.referencedBy.String()
		}
		result = append(result, UndefinedSymbol{Symbol: name, ReferencedBy: referencedBy})
	}
	return result
}
