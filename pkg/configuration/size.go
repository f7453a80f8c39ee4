package configuration

import (
	"github.com/dustin/go-humanize"
)

// ByteSize is a uint64 value that supports unmarshalling from both
// human-friendly string representations and numeric representations. It can be
// cast to a uint64 value, where it represents a byte count. It also implements
// pflag.Value so that it can be used directly as a command line flag.
type ByteSize uint64

// UnmarshalText implements the text unmarshalling interface used when loading
// from YAML files.
func (s *ByteSize) UnmarshalText(textBytes []byte) error {
	return s.Set(string(textBytes))
}

// Set implements pflag.Value.Set.
func (s *ByteSize) Set(text string) error {
	// Parse and store the value.
	value, err := humanize.ParseBytes(text)
	if err != nil {
		return err
	}
	*s = ByteSize(value)

	// Success.
	return nil
}

// String implements pflag.Value.String.
func (s *ByteSize) String() string {
	if *s == 0 {
		return "0"
	}
	return humanize.Bytes(uint64(*s))
}

// Type implements pflag.Value.Type.
func (s *ByteSize) Type() string {
	return "size"
}
