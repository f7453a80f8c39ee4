// Package objecttest provides utilities for building object files in tests.
package objecttest

import (
	"bytes"
	"debug/elf"
	"encoding/binary"

	"github.com/mutagen-io/arlink/pkg/object"
)

// ELF builds a minimal little-endian ELF64 x86-64 relocatable object that
// defines the specified symbols in a .text section and references the
// specified undefined symbols.
func ELF(defined, undefined []object.Symbol) []byte {
	// Build the string and symbol tables. The first symbol table entry is the
	// reserved null symbol.
	strtab := []byte{0}
	symtab := &bytes.Buffer{}
	binary.Write(symtab, binary.LittleEndian, elf.Sym64{})
	addSymbol := func(s object.Symbol, section elf.SectionIndex, kind elf.SymType) {
		binding := elf.STB_GLOBAL
		if s.Weak {
			binding = elf.STB_WEAK
		}
		binary.Write(symtab, binary.LittleEndian, elf.Sym64{
			Name:  uint32(len(strtab)),
			Info:  elf.ST_INFO(binding, kind),
			Shndx: uint16(section),
		})
		strtab = append(strtab, s.Name...)
		strtab = append(strtab, 0)
	}
	for _, s := range defined {
		addSymbol(s, 1, elf.STT_FUNC)
	}
	for _, s := range undefined {
		addSymbol(s, elf.SHN_UNDEF, elf.STT_NOTYPE)
	}

	// Build the section name table.
	shstrtab := []byte("\x00.text\x00.strtab\x00.symtab\x00.shstrtab\x00")
	const (
		textName     = 1
		strtabName   = 7
		symtabName   = 15
		shstrtabName = 23
	)

	// Lay out section contents following the file header.
	text := []byte{0xc3, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}
	align := func(offset int) int {
		return (offset + 7) &^ 7
	}
	textOffset := 64
	strtabOffset := textOffset + len(text)
	symtabOffset := align(strtabOffset + len(strtab))
	shstrtabOffset := symtabOffset + symtab.Len()
	sectionsOffset := align(shstrtabOffset + len(shstrtab))

	sections := []elf.Section64{
		{},
		{
			Name:      textName,
			Type:      uint32(elf.SHT_PROGBITS),
			Flags:     uint64(elf.SHF_ALLOC | elf.SHF_EXECINSTR),
			Off:       uint64(textOffset),
			Size:      uint64(len(text)),
			Addralign: 16,
		},
		{
			Name:      strtabName,
			Type:      uint32(elf.SHT_STRTAB),
			Off:       uint64(strtabOffset),
			Size:      uint64(len(strtab)),
			Addralign: 1,
		},
		{
			Name:      symtabName,
			Type:      uint32(elf.SHT_SYMTAB),
			Off:       uint64(symtabOffset),
			Size:      uint64(symtab.Len()),
			Link:      2,
			Info:      1,
			Addralign: 8,
			Entsize:   elf.Sym64Size,
		},
		{
			Name:      shstrtabName,
			Type:      uint32(elf.SHT_STRTAB),
			Off:       uint64(shstrtabOffset),
			Size:      uint64(len(shstrtab)),
			Addralign: 1,
		},
	}

	// Write the header.
	header := elf.Header64{
		Type:      uint16(elf.ET_REL),
		Machine:   uint16(elf.EM_X86_64),
		Version:   uint32(elf.EV_CURRENT),
		Shoff:     uint64(sectionsOffset),
		Ehsize:    64,
		Phentsize: 56,
		Shentsize: 64,
		Shnum:     uint16(len(sections)),
		Shstrndx:  4,
	}
	copy(header.Ident[:], elf.ELFMAG)
	header.Ident[elf.EI_CLASS] = byte(elf.ELFCLASS64)
	header.Ident[elf.EI_DATA] = byte(elf.ELFDATA2LSB)
	header.Ident[elf.EI_VERSION] = byte(elf.EV_CURRENT)
	result := &bytes.Buffer{}
	binary.Write(result, binary.LittleEndian, header)

	// Write the section contents and headers with padding.
	pad := func(offset int) {
		for result.Len() < offset {
			result.WriteByte(0)
		}
	}
	result.Write(text)
	result.Write(strtab)
	pad(symtabOffset)
	result.Write(symtab.Bytes())
	result.Write(shstrtab)
	pad(sectionsOffset)
	for _, s := range sections {
		binary.Write(result, binary.LittleEndian, s)
	}

	// Done.
	return result.Bytes()
}

// Strong converts names to strong symbols.
func Strong(names ...string) []object.Symbol {
	result := make([]object.Symbol, len(names))
	for i, name := range names {
		result[i] = object.Symbol{Name: name}
	}
	return result
}
