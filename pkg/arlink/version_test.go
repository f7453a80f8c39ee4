package arlink

import (
	"strings"
	"testing"
)

// TestVersion tests that the version string includes its components.
func TestVersion(t *testing.T) {
	if !strings.HasPrefix(Version, "0.3.0") {
		t.Error("unexpected version prefix:", Version)
	}
	if VersionTag != "" && !strings.HasSuffix(Version, "-"+VersionTag) {
		t.Error("version missing tag:", Version)
	}
}
