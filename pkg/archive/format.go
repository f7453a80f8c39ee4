package archive

import (
	"bytes"
	"encoding/binary"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

const (
	// magic is the global header of an ar archive.
	magic = "!<arch>\n"
	// thinMagic is the global header of a GNU thin archive.
	thinMagic = "!<thin>\n"
	// headerSize is the size of a member header.
	headerSize = 60
	// headerTerminator terminates every member header.
	headerTerminator = "`\n"
	// bsdNamePrefix prefixes BSD member names that are stored after the
	// header.
	bsdNamePrefix = "#1/"
)

var (
	// ErrNotArchive indicates that a file is not a supported ar archive.
	ErrNotArchive = errors.New("not an archive")
	// ErrArchiveIndexCorrupt indicates that an archive's symbol index or member
	// table is unreadable. It is fatal for the whole archive.
	ErrArchiveIndexCorrupt = errors.New("archive index corrupt")
)

// corruptf creates an ErrArchiveIndexCorrupt error with additional context.
func corruptf(format string, v ...interface{}) error {
	return errors.Wrapf(ErrArchiveIndexCorrupt, format, v...)
}

// header is a decoded member header.
type header struct {
	// name is the raw name field with trailing spaces removed.
	name string
	// size is the size of the member data (including any BSD name).
	size int64
}

// parseHeader decodes a member header.
func parseHeader(buffer []byte) (header, error) {
	if string(buffer[58:60]) != headerTerminator {
		return header{}, errors.New("invalid header terminator")
	}
	size, err := strconv.ParseInt(strings.TrimSpace(string(buffer[48:58])), 10, 64)
	if err != nil || size < 0 {
		return header{}, errors.Errorf("invalid member size field %q", buffer[48:58])
	}
	return header{
		name: strings.TrimRight(string(buffer[0:16]), " "),
		size: size,
	}, nil
}

// isBSDIndexName returns whether or not a member name identifies a BSD
// ranlib symbol index.
func isBSDIndexName(name string) bool {
	return name == "__.SYMDEF" || name == "__.SYMDEF SORTED"
}

// isLongNameReference returns whether or not a raw GNU member name refers to
// an entry in the long-name table.
func isLongNameReference(name string) bool {
	if len(name) < 2 || name[0] != '/' {
		return false
	}
	for _, c := range name[1:] {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// lookupLongName resolves a GNU long-name table reference.
func lookupLongName(table []byte, reference string) (string, error) {
	if table == nil {
		return "", errors.New("long name reference without long-name table")
	}
	offset, err := strconv.Atoi(reference[1:])
	if err != nil || offset >= len(table) {
		return "", errors.Errorf("long name reference %s out of range", reference)
	}
	entry := table[offset:]
	if end := bytes.Index(entry, []byte("/\n")); end >= 0 {
		return string(entry[:end]), nil
	} else if end = bytes.IndexByte(entry, '\n'); end >= 0 {
		return strings.TrimSuffix(string(entry[:end]), "/"), nil
	}
	return strings.TrimSuffix(string(entry), "/"), nil
}

// readFull reads exactly length bytes at the specified offset.
func readFull(reader io.ReaderAt, offset, length int64) ([]byte, error) {
	buffer := make([]byte, length)
	if n, err := reader.ReadAt(buffer, offset); n == len(buffer) {
		return buffer, nil
	} else if err == nil || err == io.EOF {
		return nil, io.ErrUnexpectedEOF
	} else {
		return nil, err
	}
}

// decodeGNUIndex decodes a GNU/SysV symbol index with big-endian words of the
// specified size.
func decodeGNUIndex(data []byte, wordSize int) ([]IndexEntry, error) {
	word := func(b []byte) uint64 {
		if wordSize == 8 {
			return binary.BigEndian.Uint64(b)
		}
		return uint64(binary.BigEndian.Uint32(b))
	}

	// Read the symbol count and split the offsets from the names.
	if len(data) < wordSize {
		return nil, corruptf("symbol index too short")
	}
	count := word(data)
	data = data[wordSize:]
	if count > uint64(len(data)/wordSize) {
		return nil, corruptf("symbol index claims %d symbols", count)
	}
	offsets := data[:int(count)*wordSize]
	names := data[int(count)*wordSize:]

	// Decode the entries.
	entries := make([]IndexEntry, 0, count)
	for i := 0; i < int(count); i++ {
		end := bytes.IndexByte(names, 0)
		if end < 0 {
			return nil, corruptf("unterminated symbol name in index entry %d", i)
		}
		entries = append(entries, IndexEntry{
			Symbol: string(names[:end]),
			Offset: int64(word(offsets[i*wordSize:])),
		})
		names = names[end+1:]
	}

	// Success.
	return entries, nil
}

// decodeBSDIndex decodes a 32-bit little-endian BSD ranlib symbol index.
func decodeBSDIndex(data []byte) ([]IndexEntry, error) {
	// Extract the ranlib array.
	if len(data) < 4 {
		return nil, corruptf("ranlib index too short")
	}
	ranlibSize := uint64(binary.LittleEndian.Uint32(data))
	data = data[4:]
	if ranlibSize%8 != 0 || ranlibSize > uint64(len(data)) {
		return nil, corruptf("invalid ranlib array size %d", ranlibSize)
	}
	ranlibs := data[:ranlibSize]
	data = data[ranlibSize:]

	// Extract the string table.
	if len(data) < 4 {
		return nil, corruptf("ranlib string table missing")
	}
	stringsSize := uint64(binary.LittleEndian.Uint32(data))
	data = data[4:]
	if stringsSize > uint64(len(data)) {
		return nil, corruptf("invalid ranlib string table size %d", stringsSize)
	}
	table := data[:stringsSize]

	// Decode the entries.
	entries := make([]IndexEntry, 0, len(ranlibs)/8)
	for i := 0; i < len(ranlibs); i += 8 {
		nameOffset := uint64(binary.LittleEndian.Uint32(ranlibs[i:]))
		if nameOffset >= uint64(len(table)) {
			return nil, corruptf("ranlib name offset %d out of range", nameOffset)
		}
		name := table[nameOffset:]
		if end := bytes.IndexByte(name, 0); end >= 0 {
			name = name[:end]
		}
		entries = append(entries, IndexEntry{
			Symbol: string(name),
			Offset: int64(binary.LittleEndian.Uint32(ranlibs[i+4:])),
		})
	}

	// Success.
	return entries, nil
}

// HasMagic returns whether or not data begins with an ar archive header. Thin
// archives are reported as archives so that they fail with a descriptive error
// when opened.
func HasMagic(data []byte) bool {
	return bytes.HasPrefix(data, []byte(magic)) || bytes.HasPrefix(data, []byte(thinMagic))
}
