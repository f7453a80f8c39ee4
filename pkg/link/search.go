package link

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// exactLibraryPrefix marks library names that are file names rather than
// library stems (as with -l:libfoo.a).
const exactLibraryPrefix = ":"

// libraryFileName converts a library name to the file name searched for.
func libraryFileName(name string) string {
	if strings.HasPrefix(name, exactLibraryPrefix) {
		return name[len(exactLibraryPrefix):]
	}
	return "lib" + name + ".a"
}

// findLibrary searches the library paths in order for the named library and
// returns the first regular file found.
func findLibrary(name string, paths []string) (string, error) {
	fileName := libraryFileName(name)
	for _, directory := range paths {
		candidate := filepath.Join(directory, fileName)
		if metadata, err := os.Stat(candidate); err == nil && metadata.Mode().IsRegular() {
			return candidate, nil
		} else if err != nil && !os.IsNotExist(err) {
			return "", errors.Wrapf(err, "unable to probe library candidate %s", candidate)
		}
	}
	return "", errors.Errorf("unable to find library -l%s", name)
}
