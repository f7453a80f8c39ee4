package encoding

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
)

// TestLoadAndUnmarshalNonExistent tests that os.IsNotExist errors pass through
// unwrapped.
func TestLoadAndUnmarshalNonExistent(t *testing.T) {
	err := LoadAndUnmarshal(filepath.Join(t.TempDir(), "missing"), func(_ []byte) error {
		return nil
	})
	if !os.IsNotExist(err) {
		t.Error("unexpected error for missing file:", err)
	}
}

// TestLoadAndUnmarshalFailure tests that unmarshaling errors are reported.
func TestLoadAndUnmarshalFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data")
	if err := os.WriteFile(path, []byte("data"), 0600); err != nil {
		t.Fatal("unable to write test file:", err)
	}
	failure := errors.New("decode failure")
	err := LoadAndUnmarshal(path, func(_ []byte) error {
		return failure
	})
	if !errors.Is(err, failure) {
		t.Error("unexpected error:", err)
	}
}

// TestMarshalAndSave tests that marshaled data is written to disk.
func TestMarshalAndSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report")
	err := MarshalAndSave(path, func() ([]byte, error) {
		return []byte("contents"), nil
	}, nil)
	if err != nil {
		t.Fatal("unable to marshal and save:", err)
	}
	if data, err := os.ReadFile(path); err != nil {
		t.Fatal("unable to read back file:", err)
	} else if string(data) != "contents" {
		t.Error("unexpected file contents:", string(data))
	}
}

// TestEncodeBase62 tests Base62 encoding of a known value.
func TestEncodeBase62(t *testing.T) {
	if encoded := EncodeBase62([]byte{0xff}); encoded != "47" {
		t.Error("unexpected encoding:", encoded)
	}
}
