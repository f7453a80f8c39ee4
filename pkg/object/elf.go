package object

import (
	"bytes"
	"debug/elf"

	"github.com/pkg/errors"
)

// elfMagic is the ELF identification prefix.
var elfMagic = []byte(elf.ELFMAG)

// IsELF returns whether or not the data begins with the ELF magic number.
func IsELF(data []byte) bool {
	return bytes.HasPrefix(data, elfMagic)
}

// ELF is the default Parser. It accepts ELF relocatable objects of either
// class and byte order.
var ELF Parser = ParserFunc(parseELF)

// parseELF implements the ELF parser.
func parseELF(origin Origin, data []byte) (*File, error) {
	if !IsELF(data) {
		return nil, errors.Wrapf(ErrMalformedInput, "%s: not an ELF object", origin)
	}

	// Decode the file headers.
	decoded, err := elf.NewFile(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrapf(ErrMalformedInput, "%s: %v", origin, err)
	}
	defer decoded.Close()
	if decoded.Type != elf.ET_REL {
		return nil, errors.Wrapf(ErrMalformedInput, "%s: not a relocatable object (%v)", origin, decoded.Type)
	}

	// Read the symbol table. An object without one defines nothing.
	symbols, err := decoded.Symbols()
	if err != nil && err != elf.ErrNoSymbols {
		return nil, errors.Wrapf(ErrMalformedInput, "%s: %v", origin, err)
	}

	// Classify symbols.
	result := &File{Origin: origin, Size: int64(len(data))}
	for _, s := range symbols {
		if s.Name == "" {
			continue
		}
		binding := elf.ST_BIND(s.Info)
		if binding != elf.STB_GLOBAL && binding != elf.STB_WEAK {
			continue
		}
		switch elf.ST_TYPE(s.Info) {
		case elf.STT_SECTION, elf.STT_FILE:
			continue
		}
		symbol := Symbol{Name: s.Name, Weak: binding == elf.STB_WEAK}
		if s.Section == elf.SHN_UNDEF {
			result.Undefined = append(result.Undefined, symbol)
		} else {
			result.Defined = append(result.Defined, symbol)
		}
	}

	// Success.
	return result, nil
}
