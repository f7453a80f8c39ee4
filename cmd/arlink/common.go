package main

import (
	"github.com/pkg/errors"
	"github.com/spf13/pflag"

	"github.com/mutagen-io/arlink/pkg/configuration"
	"github.com/mutagen-io/arlink/pkg/logging"
)

// linkFlags are the link settings that can be specified on the command line.
type linkFlags struct {
	// configurationFile is the path to a YAML link configuration file.
	configurationFile string
	// undefined are required symbols.
	undefined []string
	// libraryPaths are library search directories.
	libraryPaths []string
	// libraries are library names.
	libraries []string
	// wholeArchive are whole-archive patterns.
	wholeArchive []string
	// workers is the number of concurrent symbol probes.
	workers int
	// maximumOpenArchives bounds the number of mapped archives.
	maximumOpenArchives int
	// maximumMemberSize is the largest member that will be parsed.
	maximumMemberSize configuration.ByteSize
	// logLevel is the log level.
	logLevel logging.Level
}

// register registers the link flags with a flag set.
func (f *linkFlags) register(flags *pflag.FlagSet) {
	f.logLevel = logging.LevelWarn
	flags.StringVarP(&f.configurationFile, "config", "c", "", "Specify a YAML link configuration file")
	flags.StringSliceVarP(&f.undefined, "undefined", "u", nil, "Require a symbol to be defined")
	flags.StringSliceVarP(&f.libraryPaths, "library-path", "L", nil, "Add a library search directory")
	flags.StringSliceVarP(&f.libraries, "library", "l", nil, "Link against lib<name>.a from the library search directories")
	flags.StringSliceVar(&f.wholeArchive, "whole-archive", nil, "Load every member of archives matching a pattern")
	flags.IntVar(&f.workers, "workers", 0, "Specify the number of concurrent symbol probes")
	flags.IntVar(&f.maximumOpenArchives, "max-open-archives", 0, "Limit the number of simultaneously mapped archives")
	flags.Var(&f.maximumMemberSize, "max-member-size", "Limit the size of archive members that will be parsed")
	flags.Var(&f.logLevel, "log-level", "Set the log level (disabled|error|warn|info|debug|trace)")
}

// configuration loads any configuration file and merges the command line
// settings over it.
func (f *linkFlags) configuration(flags *pflag.FlagSet, inputs []string) (*configuration.Configuration, error) {
	// Load the base configuration.
	result := &configuration.Configuration{}
	if f.configurationFile != "" {
		loaded, err := configuration.Load(f.configurationFile)
		if err != nil {
			return nil, errors.Wrap(err, "unable to load configuration file")
		}
		result = loaded
	}

	// Merge command line settings.
	overrides := &configuration.Configuration{
		Inputs:              inputs,
		Libraries:           f.libraries,
		LibraryPaths:        f.libraryPaths,
		Undefined:           f.undefined,
		WholeArchive:        f.wholeArchive,
		Workers:             f.workers,
		MaximumOpenArchives: f.maximumOpenArchives,
		MaximumMemberSize:   f.maximumMemberSize,
	}
	if flags.Changed("log-level") {
		overrides.LogLevel = f.logLevel.String()
	}
	result.Merge(overrides)

	// Success.
	return result, nil
}
