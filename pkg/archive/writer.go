package archive

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// maximumShortNameLength is the longest member name that fits in a GNU header
// along with its terminating slash.
const maximumShortNameLength = 15

// NewMember describes a member to be written by Write.
type NewMember struct {
	// Name is the member name.
	Name string
	// Data is the member data.
	Data []byte
	// Symbols are the symbols that the member defines. They're recorded in the
	// archive's symbol index.
	Symbols []string
}

// padded returns size rounded up to an even boundary.
func padded(size int64) int64 {
	return size + size%2
}

// writeMember writes a member header followed by padded data.
func writeMember(writer *bufio.Writer, name string, mode int, data []byte) {
	fmt.Fprintf(writer, "%-16s%-12d%-6d%-6d%-8o%-10d%s", name, 0, 0, 0, mode, len(data), headerTerminator)
	writer.Write(data)
	if len(data)%2 == 1 {
		writer.WriteByte('\n')
	}
}

// Write writes a GNU archive containing the specified members along with a
// symbol index and, if required, a long-name table. Headers have zeroed
// timestamps and ownership so that output is deterministic.
func Write(writer io.Writer, members []NewMember) error {
	output := bufio.NewWriter(writer)
	output.WriteString(magic)

	// An empty archive consists of only the global header.
	if len(members) == 0 {
		return errors.Wrap(output.Flush(), "unable to write archive")
	}

	// Compute header names and the long-name table.
	names := make([]string, len(members))
	longNames := &bytes.Buffer{}
	for i, m := range members {
		if m.Name == "" {
			return errors.Errorf("member %d has an empty name", i)
		} else if strings.ContainsAny(m.Name, "/\n") {
			return errors.Errorf("member name %q contains invalid characters", m.Name)
		}
		if len(m.Name) > maximumShortNameLength {
			names[i] = "/" + strconv.Itoa(longNames.Len())
			longNames.WriteString(m.Name)
			longNames.WriteString("/\n")
		} else {
			names[i] = m.Name + "/"
		}
	}

	// Compute the symbol index size.
	var symbolCount int
	indexSize := int64(4)
	for _, m := range members {
		for _, s := range m.Symbols {
			symbolCount++
			indexSize += 4 + int64(len(s)) + 1
		}
	}

	// Compute member header offsets.
	position := int64(len(magic)) + headerSize + padded(indexSize)
	if longNames.Len() > 0 {
		position += headerSize + padded(int64(longNames.Len()))
	}
	offsets := make([]int64, len(members))
	for i, m := range members {
		offsets[i] = position
		position += headerSize + padded(int64(len(m.Data)))
	}
	if position > math.MaxUint32 {
		return errors.New("archive too large for a 32-bit symbol index")
	}

	// Encode the symbol index.
	index := bytes.NewBuffer(make([]byte, 0, indexSize))
	binary.Write(index, binary.BigEndian, uint32(symbolCount))
	for i, m := range members {
		for range m.Symbols {
			binary.Write(index, binary.BigEndian, uint32(offsets[i]))
		}
	}
	for _, m := range members {
		for _, s := range m.Symbols {
			index.WriteString(s)
			index.WriteByte(0)
		}
	}

	// Write the special members followed by the regular members.
	writeMember(output, "/", 0, index.Bytes())
	if longNames.Len() > 0 {
		writeMember(output, "//", 0, longNames.Bytes())
	}
	for i, m := range members {
		writeMember(output, names[i], 0644, m.Data)
	}

	// Flush output.
	return errors.Wrap(output.Flush(), "unable to write archive")
}
