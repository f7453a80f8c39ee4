package configuration

import (
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pkg/errors"

	"github.com/mutagen-io/arlink/pkg/encoding"
	"github.com/mutagen-io/arlink/pkg/logging"
)

// Configuration is the link configuration object type.
type Configuration struct {
	// Inputs are object and archive paths, in link order.
	Inputs []string `yaml:"inputs"`
	// Libraries are library names (as passed to -l) to be located in
	// LibraryPaths and appended to the inputs.
	Libraries []string `yaml:"libraries"`
	// LibraryPaths are the directories searched for Libraries.
	LibraryPaths []string `yaml:"libraryPaths"`
	// Undefined are symbols that must be resolved even if no input references
	// them.
	Undefined []string `yaml:"undefined"`
	// WholeArchive are doublestar patterns matched against archive paths.
	// Matching archives have every member loaded.
	WholeArchive []string `yaml:"wholeArchive"`
	// Workers is the number of concurrent symbol probes. Values of 0 or 1
	// indicate sequential resolution.
	Workers int `yaml:"workers"`
	// MaximumOpenArchives bounds the number of simultaneously mapped archives.
	// Zero means unlimited.
	MaximumOpenArchives int `yaml:"maxOpenArchives"`
	// MaximumMemberSize is the largest archive member that will be parsed.
	// Zero means unlimited.
	MaximumMemberSize ByteSize `yaml:"maxMemberSize"`
	// LogLevel is the log level name.
	LogLevel string `yaml:"logLevel"`
}

// Load attempts to load a YAML-based link configuration file from the
// specified path. We pass-through os.IsNotExist errors.
func Load(path string) (*Configuration, error) {
	// Create the target configuration object.
	result := &Configuration{}

	// Attempt to load.
	if err := encoding.LoadAndUnmarshalYAML(path, result); err != nil {
		return nil, err
	}

	// Success.
	return result, nil
}

// Merge merges an overriding configuration into the configuration. List values
// are appended and non-zero scalar values replace existing values.
func (c *Configuration) Merge(other *Configuration) {
	c.Inputs = append(c.Inputs, other.Inputs...)
	c.Libraries = append(c.Libraries, other.Libraries...)
	c.LibraryPaths = append(c.LibraryPaths, other.LibraryPaths...)
	c.Undefined = append(c.Undefined, other.Undefined...)
	c.WholeArchive = append(c.WholeArchive, other.WholeArchive...)
	if other.Workers != 0 {
		c.Workers = other.Workers
	}
	if other.MaximumOpenArchives != 0 {
		c.MaximumOpenArchives = other.MaximumOpenArchives
	}
	if other.MaximumMemberSize != 0 {
		c.MaximumMemberSize = other.MaximumMemberSize
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
}

// EnsureValid ensures that the configuration is valid.
func (c *Configuration) EnsureValid() error {
	// Verify that there's something to link.
	if len(c.Inputs) == 0 && len(c.Libraries) == 0 {
		return errors.New("no inputs specified")
	}
	for _, input := range c.Inputs {
		if input == "" {
			return errors.New("empty input path")
		}
	}
	for _, library := range c.Libraries {
		if library == "" {
			return errors.New("empty library name")
		}
	}
	if len(c.Libraries) > 0 && len(c.LibraryPaths) == 0 {
		return errors.New("libraries specified without library paths")
	}

	// Verify required symbols.
	for _, symbol := range c.Undefined {
		if symbol == "" {
			return errors.New("empty required symbol name")
		}
	}

	// Verify whole-archive patterns. We have to match against a non-empty path,
	// otherwise bad pattern errors won't be detected.
	for _, pattern := range c.WholeArchive {
		if _, err := doublestar.Match(pattern, "a"); err != nil {
			return errors.Wrapf(err, "invalid whole-archive pattern %q", pattern)
		}
	}

	// Verify limits.
	if c.Workers < 0 {
		return errors.New("negative worker count")
	} else if c.MaximumOpenArchives < 0 {
		return errors.New("negative maximum open archive count")
	}

	// Verify the log level.
	if c.LogLevel != "" {
		if _, ok := logging.NameToLevel(c.LogLevel); !ok {
			return errors.Errorf("invalid log level: %s", c.LogLevel)
		}
	}

	// Success.
	return nil
}

// IsWholeArchive returns whether or not the archive at the specified path
// matches a whole-archive pattern. Patterns are matched against both the
// slash-separated path and its base name.
func (c *Configuration) IsWholeArchive(path string) bool {
	slashed := filepath.ToSlash(path)
	base := filepath.Base(path)
	for _, pattern := range c.WholeArchive {
		if match, _ := doublestar.Match(pattern, slashed); match {
			return true
		} else if match, _ = doublestar.Match(pattern, base); match {
			return true
		}
	}
	return false
}

// Level returns the configured log level, defaulting to warnings.
func (c *Configuration) Level() logging.Level {
	if level, ok := logging.NameToLevel(c.LogLevel); ok {
		return level
	}
	return logging.LevelWarn
}
