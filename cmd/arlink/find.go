package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/mutagen-io/arlink/cmd"
	"github.com/mutagen-io/arlink/pkg/archive"
	"github.com/mutagen-io/arlink/pkg/configuration"
	"github.com/mutagen-io/arlink/pkg/logging"
	"github.com/mutagen-io/arlink/pkg/must"
	"github.com/mutagen-io/arlink/pkg/object"
	"github.com/mutagen-io/arlink/pkg/resolver"
)

// findSymbols looks up each symbol in a library, printing the defining member
// and its definitions, followed by the library's parse statistics. It returns
// the number of lookups that failed.
func findSymbols(writer io.Writer, library *resolver.StaticArchive, symbols []string) int {
	// Look up each symbol.
	var failures int
	for _, symbol := range symbols {
		file, err := library.Find(symbol)
		if err != nil {
			cmd.Failf(writer, "%v", err)
			failures++
			continue
		} else if file == nil {
			fmt.Fprintf(writer, "%s: not defined\n", symbol)
			continue
		}
		definitions := make([]string, len(file.Defined))
		for i, d := range file.Defined {
			definitions[i] = d.Name
			if d.Weak {
				definitions[i] += " (weak)"
			}
		}
		fmt.Fprintf(writer, "%s: %s\n", symbol, file)
		fmt.Fprintf(writer, "\tdefines: %s\n", strings.Join(definitions, ", "))
	}

	// Print statistics.
	stats := library.Statistics()
	fmt.Fprintf(writer, "%d/%d members parsed, %d failed\n", stats.Parsed, stats.Members, stats.Failed)

	// Done.
	return failures
}

// findMain is the entry point for the find command.
func findMain(_ *cobra.Command, arguments []string) error {
	logger := cmd.NewLogger(findConfiguration.logLevel)

	// Open the archive and defer its closure.
	a, err := archive.Open(arguments[0])
	if err != nil {
		return err
	}
	defer must.Close(a, logger)

	// Create the resolver and perform lookups.
	options := resolver.Options{MaximumMemberSize: uint64(findConfiguration.maximumMemberSize)}
	library := resolver.NewStaticArchive(a, object.ELF, options, logger.Sublogger("resolver"))
	if failures := findSymbols(color.Output, library, arguments[1:]); failures > 0 {
		return errors.Errorf("%d lookups failed", failures)
	}

	// Success.
	return nil
}

// findCommand is the find command.
var findCommand = &cobra.Command{
	Use:          "find <archive> <symbol>...",
	Short:        "Look up symbols in an archive, parsing only the members that define them",
	Args:         cmd.RequireArguments(2, "archive and symbol"),
	Run:          cmd.Mainify(findMain),
	SilenceUsage: true,
}

// findConfiguration stores configuration for the find command.
var findConfiguration struct {
	// help indicates whether or not to show help information and exit.
	help bool
	// maximumMemberSize is the largest member that will be parsed.
	maximumMemberSize configuration.ByteSize
	// logLevel is the log level.
	logLevel logging.Level
}

func init() {
	// Grab a handle for the command line flags.
	flags := findCommand.Flags()

	// Disable alphabetical sorting of flags in help output.
	flags.SortFlags = false

	// Manually add a help flag to override the default message. Cobra will
	// still implement its logic automatically.
	flags.BoolVarP(&findConfiguration.help, "help", "h", false, "Show help information")

	// Wire up resolver flags.
	findConfiguration.logLevel = logging.LevelWarn
	flags.Var(&findConfiguration.maximumMemberSize, "max-member-size", "Limit the size of archive members that will be parsed")
	flags.Var(&findConfiguration.logLevel, "log-level", "Set the log level (disabled|error|warn|info|debug|trace)")
}
