package archive

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
)

// testMembers are the members used by archive tests. The third member has a
// name long enough to require the long-name table.
var testMembers = []NewMember{
	{Name: "utils.o", Data: []byte("utils contents"), Symbols: []string{"add", "sub"}},
	{Name: "odd.o", Data: []byte("odd"), Symbols: []string{"odd"}},
	{Name: "a_very_long_member_name.o", Data: []byte("long"), Symbols: []string{"long", "add"}},
}

// writeTestArchive encodes the test members.
func writeTestArchive(t *testing.T) []byte {
	buffer := &bytes.Buffer{}
	if err := Write(buffer, testMembers); err != nil {
		t.Fatal("unable to write archive:", err)
	}
	return buffer.Bytes()
}

// TestWriteParseRoundTrip tests that written archives decode to the same
// members, data, and symbol index.
func TestWriteParseRoundTrip(t *testing.T) {
	data := writeTestArchive(t)
	archive, err := Parse("libtest.a", bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatal("unable to parse archive:", err)
	}
	defer archive.Close()

	// Verify members and their contents.
	members := archive.Members()
	if len(members) != len(testMembers) {
		t.Fatal("member count mismatch:", len(members), "!=", len(testMembers))
	}
	for i, m := range members {
		if m.Name != testMembers[i].Name {
			t.Error("member name mismatch:", m.Name, "!=", testMembers[i].Name)
		}
		if contents, err := archive.ReadMember(m); err != nil {
			t.Error("unable to read member:", err)
		} else if !bytes.Equal(contents, testMembers[i].Data) {
			t.Error("member contents mismatch for", m.Name)
		}
		if i > 0 && m.Offset <= members[i-1].Offset {
			t.Error("members not in on-disk order")
		}
	}

	// Verify lookups. The first definition of a duplicated symbol wins.
	if m, ok := archive.Lookup("sub"); !ok || m.Name != "utils.o" {
		t.Error("lookup of sub failed:", m, ok)
	}
	if m, ok := archive.Lookup("add"); !ok || m.Name != "utils.o" {
		t.Error("lookup of duplicated symbol did not return first definition:", m, ok)
	}
	if m, ok := archive.Lookup("long"); !ok || m.Name != "a_very_long_member_name.o" {
		t.Error("lookup of long failed:", m, ok)
	}
	if _, ok := archive.Lookup("mul"); ok {
		t.Error("lookup of undefined symbol succeeded")
	}

	// Verify index entries.
	expected := []string{"add", "sub", "odd", "long", "add"}
	entries := archive.Entries()
	if len(entries) != len(expected) {
		t.Fatal("index entry count mismatch:", len(entries), "!=", len(expected))
	}
	for i, e := range entries {
		if e.Symbol != expected[i] {
			t.Error("index entry mismatch:", e.Symbol, "!=", expected[i])
		}
	}
}

// TestWriteEmpty tests that an empty archive round trips.
func TestWriteEmpty(t *testing.T) {
	buffer := &bytes.Buffer{}
	if err := Write(buffer, nil); err != nil {
		t.Fatal("unable to write empty archive:", err)
	} else if buffer.String() != magic {
		t.Fatal("unexpected empty archive contents")
	}
	archive, err := Parse("empty.a", bytes.NewReader(buffer.Bytes()), int64(buffer.Len()))
	if err != nil {
		t.Fatal("unable to parse empty archive:", err)
	} else if len(archive.Members()) != 0 {
		t.Error("empty archive has members")
	}
}

// TestWriteInvalidName tests that invalid member names are rejected.
func TestWriteInvalidName(t *testing.T) {
	for _, name := range []string{"", "dir/file.o", "line\nbreak.o"} {
		if Write(&bytes.Buffer{}, []NewMember{{Name: name}}) == nil {
			t.Errorf("member name %q accepted", name)
		}
	}
}

// bsdMember encodes a BSD member with its name stored after the header.
func bsdMember(name string, data []byte) []byte {
	stored := []byte(name)
	for len(stored)%4 != 0 {
		stored = append(stored, 0)
	}
	result := &bytes.Buffer{}
	fmt.Fprintf(result, "%-16s%-12d%-6d%-6d%-8o%-10d%s", bsdNamePrefix+fmt.Sprint(len(stored)), 0, 0, 0, 0644, len(stored)+len(data), headerTerminator)
	result.Write(stored)
	result.Write(data)
	if result.Len()%2 == 1 {
		result.WriteByte('\n')
	}
	return result.Bytes()
}

// TestParseBSD tests decoding of BSD-style archives.
func TestParseBSD(t *testing.T) {
	// Build the ranlib index once to compute its size, then again with the
	// correct member offsets.
	memberData := bsdMember("hello_world_object.o", []byte("hello"))
	buildIndex := func(memberOffset uint32) []byte {
		table := []byte("hello\x00world\x00")
		index := &bytes.Buffer{}
		binary.Write(index, binary.LittleEndian, uint32(16))
		binary.Write(index, binary.LittleEndian, []uint32{0, memberOffset, 6, memberOffset})
		binary.Write(index, binary.LittleEndian, uint32(len(table)))
		index.Write(table)
		return index.Bytes()
	}
	indexMember := bsdMember("__.SYMDEF SORTED", buildIndex(0))
	memberOffset := uint32(len(magic) + len(indexMember))
	indexMember = bsdMember("__.SYMDEF SORTED", buildIndex(memberOffset))
	data := append(append([]byte(magic), indexMember...), memberData...)

	// Parse the archive.
	archive, err := Parse("libbsd.a", bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatal("unable to parse BSD archive:", err)
	}

	// Verify the member.
	members := archive.Members()
	if len(members) != 1 {
		t.Fatal("unexpected member count:", len(members))
	} else if members[0].Name != "hello_world_object.o" {
		t.Error("unexpected member name:", members[0].Name)
	} else if contents, err := archive.ReadMember(members[0]); err != nil {
		t.Error("unable to read member:", err)
	} else if string(contents) != "hello" {
		t.Error("unexpected member contents:", string(contents))
	}

	// Verify lookups.
	for _, symbol := range []string{"hello", "world"} {
		if m, ok := archive.Lookup(symbol); !ok || m.Offset != int64(memberOffset) {
			t.Error("lookup failed for", symbol)
		}
	}
}

// gnuMember encodes a member with a raw GNU header name.
func gnuMember(name string, data []byte) []byte {
	result := &bytes.Buffer{}
	fmt.Fprintf(result, "%-16s%-12d%-6d%-6d%-8o%-10d%s", name, 0, 0, 0, 0644, len(data), headerTerminator)
	result.Write(data)
	if result.Len()%2 == 1 {
		result.WriteByte('\n')
	}
	return result.Bytes()
}

// TestParseSYM64 tests decoding of archives with a 64-bit GNU symbol index.
func TestParseSYM64(t *testing.T) {
	// Build the index. It has a fixed size, so the member offset is known.
	names := []byte("foo\x00bar\x00")
	indexSize := 8 + 2*8 + len(names)
	memberOffset := uint64(len(magic) + headerSize + indexSize)
	index := &bytes.Buffer{}
	binary.Write(index, binary.BigEndian, uint64(2))
	binary.Write(index, binary.BigEndian, []uint64{memberOffset, memberOffset})
	index.Write(names)

	// Assemble the archive.
	data := []byte(magic)
	data = append(data, gnuMember("/SYM64/", index.Bytes())...)
	data = append(data, gnuMember("m.o/", []byte("hi"))...)

	// Parse the archive.
	archive, err := Parse("lib64.a", bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatal("unable to parse SYM64 archive:", err)
	}

	// Verify lookups and member contents.
	for _, symbol := range []string{"foo", "bar"} {
		member, ok := archive.Lookup(symbol)
		if !ok {
			t.Fatal("lookup failed for", symbol)
		} else if member.Name != "m.o" || member.Offset != int64(memberOffset) {
			t.Error("unexpected member for", symbol, ":", member)
		}
		if contents, err := archive.ReadMember(member); err != nil {
			t.Error("unable to read member:", err)
		} else if string(contents) != "hi" {
			t.Error("unexpected member contents:", string(contents))
		}
	}
	if entries := archive.Entries(); len(entries) != 2 {
		t.Error("unexpected index entry count:", len(entries))
	}
}

// TestParseNotArchive tests that non-archives are rejected.
func TestParseNotArchive(t *testing.T) {
	testCases := []string{"", "!<arch", "\x7fELF\x02\x01\x01\x00", thinMagic}
	for _, contents := range testCases {
		_, err := Parse("bad.a", bytes.NewReader([]byte(contents)), int64(len(contents)))
		if !errors.Is(err, ErrNotArchive) {
			t.Errorf("unexpected error for %q: %v", contents, err)
		}
	}
}

// TestParseCorrupt tests that structural corruption fails at open time with
// ErrArchiveIndexCorrupt.
func TestParseCorrupt(t *testing.T) {
	valid := writeTestArchive(t)

	// Create a copy whose first index offset points at no member.
	badOffset := append([]byte(nil), valid...)
	binary.BigEndian.PutUint32(badOffset[len(magic)+headerSize+4:], 0xfffffff0)

	// Create a copy whose index claims too many symbols.
	badCount := append([]byte(nil), valid...)
	binary.BigEndian.PutUint32(badCount[len(magic)+headerSize:], 0x7fffffff)

	// Create a copy with a broken header terminator.
	badTerminator := append([]byte(nil), valid...)
	badTerminator[len(magic)+58] = 'x'

	// Create an archive with a member but no index.
	noIndex := &bytes.Buffer{}
	noIndex.WriteString(magic)
	fmt.Fprintf(noIndex, "%-16s%-12d%-6d%-6d%-8o%-10d%s", "lonely.o/", 0, 0, 0, 0644, 2, headerTerminator)
	noIndex.WriteString("ok")

	// Create an archive with a long-name reference but no long-name table.
	noLongNames := []byte(magic)
	noLongNames = append(noLongNames, gnuMember("/", make([]byte, 4))...)
	noLongNames = append(noLongNames, gnuMember("/0", []byte("xx"))...)

	testCases := map[string][]byte{
		"offset":        badOffset,
		"count":         badCount,
		"terminator":    badTerminator,
		"truncated":     valid[:len(valid)-30],
		"no index":      noIndex.Bytes(),
		"no long names": noLongNames,
	}
	for name, contents := range testCases {
		_, err := Parse(name, bytes.NewReader(contents), int64(len(contents)))
		if !errors.Is(err, ErrArchiveIndexCorrupt) {
			t.Errorf("unexpected error for %s: %v", name, err)
		}
	}
}

// TestReadMemberForeign tests that members from another archive are rejected.
func TestReadMemberForeign(t *testing.T) {
	data := writeTestArchive(t)
	archive, err := Parse("libtest.a", bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatal("unable to parse archive:", err)
	}
	if _, err := archive.ReadMember(Member{Name: "other.o", Offset: 3}); err == nil {
		t.Error("read of foreign member succeeded")
	}
}

// writeTestArchiveFile writes the test archive into a temporary directory.
func writeTestArchiveFile(t *testing.T, directory, name string) string {
	path := filepath.Join(directory, name)
	if err := os.WriteFile(path, writeTestArchive(t), 0600); err != nil {
		t.Fatal("unable to write archive file:", err)
	}
	return path
}

// TestOpen tests opening an archive from disk.
func TestOpen(t *testing.T) {
	path := writeTestArchiveFile(t, t.TempDir(), "libtest.a")
	archive, err := Open(path)
	if err != nil {
		t.Fatal("unable to open archive:", err)
	}
	if archive.Path() != path {
		t.Error("archive path mismatch:", archive.Path(), "!=", path)
	}
	member, ok := archive.Lookup("odd")
	if !ok {
		t.Fatal("lookup of odd failed")
	}
	if contents, err := archive.ReadMember(member); err != nil {
		t.Fatal("unable to read member:", err)
	} else if string(contents) != "odd" {
		t.Error("unexpected member contents:", string(contents))
	}

	// Close the archive and verify that reads fail.
	if err := archive.Close(); err != nil {
		t.Fatal("unable to close archive:", err)
	}
	if _, err := archive.ReadMember(member); err == nil {
		t.Error("read from closed archive succeeded")
	}
}

// TestOpenNonExistent tests that opening a missing archive fails.
func TestOpenNonExistent(t *testing.T) {
	if _, err := Open(filepath.Join(t.TempDir(), "missing.a")); err == nil {
		t.Error("open of missing archive succeeded")
	}
}
