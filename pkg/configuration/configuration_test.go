package configuration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mutagen-io/arlink/pkg/logging"
)

const (
	// testConfigurationYAML is a valid link configuration.
	testConfigurationYAML = `
inputs:
  - build/main.o
  - lib/libutil.a
undefined: [entry]
wholeArchive: ["**/libforce*.a"]
workers: 4
maxOpenArchives: 16
maxMemberSize: "64 MB"
logLevel: debug
`
	// testConfigurationUnknownYAML contains an unknown key.
	testConfigurationUnknownYAML = `
inputs: [main.o]
frobnicate: true
`
)

// writeConfiguration writes configuration contents to a temporary file.
func writeConfiguration(t *testing.T, contents string) string {
	path := filepath.Join(t.TempDir(), "arlink.yml")
	if err := os.WriteFile(path, []byte(contents), 0600); err != nil {
		t.Fatal("unable to write configuration:", err)
	}
	return path
}

// TestLoad tests loading a valid configuration.
func TestLoad(t *testing.T) {
	configuration, err := Load(writeConfiguration(t, testConfigurationYAML))
	if err != nil {
		t.Fatal("unable to load configuration:", err)
	}
	if err := configuration.EnsureValid(); err != nil {
		t.Fatal("loaded configuration invalid:", err)
	}
	if len(configuration.Inputs) != 2 || configuration.Inputs[1] != "lib/libutil.a" {
		t.Error("unexpected inputs:", configuration.Inputs)
	}
	if len(configuration.Undefined) != 1 || configuration.Undefined[0] != "entry" {
		t.Error("unexpected required symbols:", configuration.Undefined)
	}
	if configuration.Workers != 4 || configuration.MaximumOpenArchives != 16 {
		t.Error("unexpected limits:", configuration.Workers, configuration.MaximumOpenArchives)
	}
	if configuration.MaximumMemberSize != 64*1000*1000 {
		t.Error("unexpected maximum member size:", uint64(configuration.MaximumMemberSize))
	}
	if configuration.Level() != logging.LevelDebug {
		t.Error("unexpected log level:", configuration.Level())
	}
}

// TestLoadNonExistent tests that os.IsNotExist errors pass through.
func TestLoadNonExistent(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yml")); !os.IsNotExist(err) {
		t.Error("unexpected error for missing configuration:", err)
	}
}

// TestLoadUnknownKey tests that unknown keys are rejected.
func TestLoadUnknownKey(t *testing.T) {
	if _, err := Load(writeConfiguration(t, testConfigurationUnknownYAML)); err == nil {
		t.Error("configuration with unknown key loaded successfully")
	}
}

// TestMerge tests that overrides append lists and replace scalars.
func TestMerge(t *testing.T) {
	base := &Configuration{Inputs: []string{"a.o"}, Workers: 2, LogLevel: "info"}
	base.Merge(&Configuration{Inputs: []string{"b.a"}, MaximumOpenArchives: 8})
	if len(base.Inputs) != 2 || base.Inputs[1] != "b.a" {
		t.Error("unexpected merged inputs:", base.Inputs)
	}
	if base.Workers != 2 || base.MaximumOpenArchives != 8 || base.LogLevel != "info" {
		t.Error("unexpected merged scalars:", base)
	}
}

// TestEnsureValid tests validation failures.
func TestEnsureValid(t *testing.T) {
	testCases := map[string]*Configuration{
		"no inputs":     {},
		"empty input":   {Inputs: []string{""}},
		"no lib paths":  {Libraries: []string{"m"}},
		"empty symbol":  {Inputs: []string{"a.o"}, Undefined: []string{""}},
		"bad pattern":   {Inputs: []string{"a.o"}, WholeArchive: []string{"\\"}},
		"workers":       {Inputs: []string{"a.o"}, Workers: -1},
		"open archives": {Inputs: []string{"a.o"}, MaximumOpenArchives: -1},
		"log level":     {Inputs: []string{"a.o"}, LogLevel: "loud"},
	}
	for name, configuration := range testCases {
		if configuration.EnsureValid() == nil {
			t.Error("invalid configuration passed validation:", name)
		}
	}
}

// TestIsWholeArchive tests whole-archive pattern matching.
func TestIsWholeArchive(t *testing.T) {
	configuration := &Configuration{WholeArchive: []string{"**/libforce*.a", "libplugins.a"}}
	testCases := map[string]bool{
		"out/lib/libforce_init.a": true,
		"libplugins.a":            true,
		"deps/libplugins.a":       true,
		"deps/libother.a":         false,
	}
	for path, expected := range testCases {
		if configuration.IsWholeArchive(path) != expected {
			t.Error("unexpected whole-archive match for", path)
		}
	}
}

// TestByteSize tests ByteSize parsing.
func TestByteSize(t *testing.T) {
	var size ByteSize
	if err := size.Set("2 KiB"); err != nil {
		t.Fatal("unable to parse size:", err)
	} else if size != 2048 {
		t.Error("unexpected size:", uint64(size))
	}
	if err := size.UnmarshalText([]byte("4096")); err != nil {
		t.Fatal("unable to parse numeric size:", err)
	} else if size != 4096 {
		t.Error("unexpected size:", uint64(size))
	}
	if size.Set("lots") == nil {
		t.Error("invalid size accepted")
	}
}
