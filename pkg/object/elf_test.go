package object_test

import (
	"testing"

	"github.com/pkg/errors"

	"github.com/mutagen-io/arlink/pkg/object"
	"github.com/mutagen-io/arlink/pkg/object/objecttest"
)

// TestELFSymbolClassification tests that the ELF parser separates definitions
// from references and preserves weak binding.
func TestELFSymbolClassification(t *testing.T) {
	// Build an object.
	data := objecttest.ELF(
		[]object.Symbol{{Name: "add"}, {Name: "fallback", Weak: true}},
		[]object.Symbol{{Name: "malloc"}, {Name: "optional", Weak: true}},
	)

	// Parse it.
	origin := object.Origin{Path: "libm.a", Member: "utils.o", Offset: 68}
	file, err := object.ELF.Parse(origin, data)
	if err != nil {
		t.Fatal("unable to parse object:", err)
	}

	// Verify the origin and size.
	if file.Origin != origin {
		t.Error("origin mismatch:", file.Origin, "!=", origin)
	}
	if file.String() != "libm.a(utils.o)" {
		t.Error("unexpected file name:", file.String())
	}
	if file.Size != int64(len(data)) {
		t.Error("size mismatch:", file.Size, "!=", len(data))
	}

	// Verify definitions.
	expectedDefined := []object.Symbol{{Name: "add"}, {Name: "fallback", Weak: true}}
	if len(file.Defined) != len(expectedDefined) {
		t.Fatal("defined symbol count mismatch:", len(file.Defined), "!=", len(expectedDefined))
	}
	for i, s := range expectedDefined {
		if file.Defined[i] != s {
			t.Error("defined symbol mismatch:", file.Defined[i], "!=", s)
		}
	}

	// Verify references.
	expectedUndefined := []object.Symbol{{Name: "malloc"}, {Name: "optional", Weak: true}}
	if len(file.Undefined) != len(expectedUndefined) {
		t.Fatal("undefined symbol count mismatch:", len(file.Undefined), "!=", len(expectedUndefined))
	}
	for i, s := range expectedUndefined {
		if file.Undefined[i] != s {
			t.Error("undefined symbol mismatch:", file.Undefined[i], "!=", s)
		}
	}
}

// TestELFEmptyObject tests that an object without symbols parses.
func TestELFEmptyObject(t *testing.T) {
	file, err := object.ELF.Parse(object.Origin{Path: "empty.o"}, objecttest.ELF(nil, nil))
	if err != nil {
		t.Fatal("unable to parse empty object:", err)
	}
	if len(file.Defined) != 0 || len(file.Undefined) != 0 {
		t.Error("empty object reported symbols")
	}
}

// TestELFMalformed tests that corrupt bytes yield ErrMalformedInput.
func TestELFMalformed(t *testing.T) {
	// Set up test cases.
	valid := objecttest.ELF(objecttest.Strong("foo"), nil)
	testCases := map[string][]byte{
		"empty":     nil,
		"text":      []byte("this is not an object file"),
		"truncated": valid[:40],
		"magic":     []byte("\x7fELF\x09\x09\x09"),
	}

	// Process test cases.
	for name, data := range testCases {
		if _, err := object.ELF.Parse(object.Origin{Path: name}, data); err == nil {
			t.Error("malformed object parsed without error:", name)
		} else if !errors.Is(err, object.ErrMalformedInput) {
			t.Error("malformed object error did not match ErrMalformedInput:", name, err)
		}
	}
}

// TestIsELF tests IsELF.
func TestIsELF(t *testing.T) {
	if !object.IsELF(objecttest.ELF(nil, nil)) {
		t.Error("ELF object not detected")
	}
	if object.IsELF([]byte("!<arch>\n")) {
		t.Error("archive detected as ELF object")
	}
}
