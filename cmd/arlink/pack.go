package main

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/mutagen-io/arlink/cmd"
	"github.com/mutagen-io/arlink/pkg/archive"
	"github.com/mutagen-io/arlink/pkg/filesystem"
	"github.com/mutagen-io/arlink/pkg/logging"
	"github.com/mutagen-io/arlink/pkg/object"
)

// packMain is the entry point for the pack command.
func packMain(_ *cobra.Command, arguments []string) error {
	logger := cmd.NewLogger(packConfiguration.logLevel)
	output, inputs := arguments[0], arguments[1:]

	// Read and index each object.
	members := make([]archive.NewMember, 0, len(inputs))
	for _, path := range inputs {
		data, err := os.ReadFile(path)
		if err != nil {
			return errors.Wrapf(err, "unable to read %s", path)
		}
		file, err := object.ELF.Parse(object.Origin{Path: path}, data)
		if err != nil {
			return errors.Wrapf(err, "unable to parse %s", path)
		}
		symbols := make([]string, len(file.Defined))
		for i, d := range file.Defined {
			symbols[i] = d.Name
		}
		members = append(members, archive.NewMember{
			Name:    filepath.Base(path),
			Data:    data,
			Symbols: symbols,
		})
		logger.Debugf("Indexed %s (%d definitions)", path, len(symbols))
	}

	// Encode the archive.
	buffer := &bytes.Buffer{}
	if err := archive.Write(buffer, members); err != nil {
		return errors.Wrap(err, "unable to encode archive")
	}

	// Write the archive atomically.
	if err := filesystem.WriteFileAtomic(output, buffer.Bytes(), 0644, logger); err != nil {
		return errors.Wrap(err, "unable to write archive")
	}

	// Success.
	return nil
}

// packCommand is the pack command.
var packCommand = &cobra.Command{
	Use:          "pack <output> <object>...",
	Short:        "Create an indexed archive from object files",
	Args:         cmd.RequireArguments(2, "output and object"),
	Run:          cmd.Mainify(packMain),
	SilenceUsage: true,
}

// packConfiguration stores configuration for the pack command.
var packConfiguration struct {
	// help indicates whether or not to show help information and exit.
	help bool
	// logLevel is the log level.
	logLevel logging.Level
}

func init() {
	// Grab a handle for the command line flags.
	flags := packCommand.Flags()

	// Disable alphabetical sorting of flags in help output.
	flags.SortFlags = false

	// Manually add a help flag to override the default message. Cobra will
	// still implement its logic automatically.
	flags.BoolVarP(&packConfiguration.help, "help", "h", false, "Show help information")

	// Wire up logging flags.
	packConfiguration.logLevel = logging.LevelWarn
	flags.Var(&packConfiguration.logLevel, "log-level", "Set the log level (disabled|error|warn|info|debug|trace)")
}
