package archive

import (
	"os"

	"github.com/pkg/errors"
)

// openBacking opens the file at the specified path for positional reads.
func openBacking(path string) (backing, int64, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	metadata, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, 0, errors.Wrap(err, "unable to query file metadata")
	}
	return file, metadata.Size(), nil
}
