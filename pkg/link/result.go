package link

import (
	"github.com/mutagen-io/arlink/pkg/object"
	"github.com/mutagen-io/arlink/pkg/resolver"
)

// UndefinedSymbol is a strongly referenced symbol that no input defines.
type UndefinedSymbol struct {
	// Symbol is the symbol name.
	Symbol string `yaml:"symbol"`
	// ReferencedBy is the input that first referenced the symbol.
	ReferencedBy string `yaml:"referencedBy"`
}

// DuplicateSymbol is a symbol with more than one strong definition.
type DuplicateSymbol struct {
	// Symbol is the symbol name.
	Symbol string `yaml:"symbol"`
	// First is the input providing the retained definition.
	First string `yaml:"first"`
	// Second is the input providing the conflicting definition.
	Second string `yaml:"second"`
}

// Diagnostic is an archive member failure encountered while resolving a symbol.
type Diagnostic struct {
	// Symbol is the symbol being resolved.
	Symbol string `yaml:"symbol"`
	// Archive is the archive path.
	Archive string `yaml:"archive"`
	// Member is the member name, if known.
	Member string `yaml:"member,omitempty"`
	// Offset is the member header offset, if known.
	Offset int64 `yaml:"offset,omitempty"`
	// Message is the full error message.
	Message string `yaml:"message"`
}

// ArchiveStatistics are the parse statistics for a single archive input.
type ArchiveStatistics struct {
	// Path is the archive path.
	Path string `yaml:"path"`
	// WholeArchive indicates whether or not the archive was force-loaded.
	WholeArchive bool `yaml:"wholeArchive,omitempty"`
	// Statistics are the member statistics.
	resolver.Statistics `yaml:",inline"`
}

// Result is the outcome of symbol resolution.
type Result struct {
	// Session is the session identifier.
	Session string
	// Loaded are the files included in the link, in load order.
	Loaded []*object.File
	// Undefined are the remaining strongly referenced undefined symbols.
	Undefined []UndefinedSymbol
	// Duplicates are the duplicate strong definitions.
	Duplicates []DuplicateSymbol
	// Diagnostics are the archive member failures.
	Diagnostics []Diagnostic
	// Archives are the per-archive statistics, in input order.
	Archives []ArchiveStatistics
}

// Successful returns whether or not resolution produced a complete, consistent
// symbol table.
func (r *Result) Successful() bool {
	return len(r.Undefined) == 0 && len(r.Duplicates) == 0 && len(r.Diagnostics) == 0
}
