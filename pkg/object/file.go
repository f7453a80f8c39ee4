package object

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
)

// ErrMalformedInput indicates that object bytes could not be parsed as a valid
// object file.
var ErrMalformedInput = errors.New("malformed input")

// Symbol is a symbol defined or referenced by an object file.
type Symbol struct {
	// Name is the symbol name.
	Name string
	// Weak indicates whether or not the symbol has weak binding. Weak
	// definitions yield to strong definitions and weak references don't
	// require a definition.
	Weak bool
}

// Origin describes where an object file's bytes came from.
type Origin struct {
	// Path is the path of the input file. For archive members, this is the
	// path of the archive.
	Path string
	// Member is the archive member name. It is empty for standalone objects.
	Member string
	// Offset is the archive member header offset. It is only meaningful if
	// Member is non-empty.
	Offset int64
}

// String formats the origin in the conventional archive(member) notation.
func (o Origin) String() string {
	if o.Member == "" {
		return o.Path
	}
	return fmt.Sprintf("%s(%s)", o.Path, o.Member)
}

// File is a parsed, linkable unit of content. Once created it is treated as
// immutable and is shared by pointer.
type File struct {
	// Origin is the file's origin.
	Origin Origin
	// Size is the size of the object bytes.
	Size int64
	// Defined are the global and weak symbols defined by the file, in symbol
	// table order.
	Defined []Symbol
	// Undefined are the symbols referenced but not defined by the file, in
	// symbol table order.
	Undefined []Symbol
}

// String returns the file's origin.
func (f *File) String() string {
	return f.Origin.String()
}

// Parser parses raw object bytes into a File.
type Parser interface {
	// Parse parses the object data. Failures should wrap ErrMalformedInput.
	Parse(origin Origin, data []byte) (*File, error)
}

// ParserFunc adapts an ordinary function to the Parser interface.
type ParserFunc func(origin Origin, data []byte) (*File, error)

// Parse implements Parser.Parse.
func (f ParserFunc) Parse(origin Origin, data []byte) (*File, error) {
	return f(origin, data)
}

// Load reads and parses a standalone object file.
func Load(parser Parser, path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "unable to read object file")
	}
	return parser.Parse(Origin{Path: path}, data)
}
