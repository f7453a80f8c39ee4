package encoding

import (
	"os"

	"github.com/pkg/errors"

	"github.com/mutagen-io/arlink/pkg/filesystem"
	"github.com/mutagen-io/arlink/pkg/logging"
)

// LoadAndUnmarshal provides the underlying loading and unmarshaling
// functionality for the encoding package. It reads the data at the specified
// path and then invokes the specified unmarshaling callback (usually a closure)
// to decode the data. It passes through os.IsNotExist errors unwrapped.
func LoadAndUnmarshal(path string, unmarshal func([]byte) error) error {
	// Grab the file contents.
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return err
		}
		return errors.Wrap(err, "unable to load file")
	}

	// Perform the unmarshaling.
	if err := unmarshal(data); err != nil {
		return errors.Wrap(err, "unable to unmarshal data")
	}

	// Success.
	return nil
}

// MarshalAndSave provides the underlying marshaling and saving functionality
// for the encoding package. It invokes the specified marshaling callback
// (usually a closure) and writes the result atomically to the specified path.
func MarshalAndSave(path string, marshal func() ([]byte, error), logger *logging.Logger) error {
	// Marshal the value.
	data, err := marshal()
	if err != nil {
		return errors.Wrap(err, "unable to marshal value")
	}

	// Write the file atomically.
	if err := filesystem.WriteFileAtomic(path, data, 0644, logger); err != nil {
		return errors.Wrap(err, "unable to write data")
	}

	// Success.
	return nil
}
