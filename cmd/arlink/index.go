package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mutagen-io/arlink/cmd"
	"github.com/mutagen-io/arlink/pkg/archive"
	"github.com/mutagen-io/arlink/pkg/must"
)

// printIndex prints an archive's symbol index along with the defining member
// names.
func printIndex(writer io.Writer, a *archive.Archive) {
	names := make(map[int64]string)
	for _, member := range a.Members() {
		names[member.Offset] = member.Name
	}
	for _, entry := range a.Entries() {
		fmt.Fprintf(writer, "%s\t%s\n", entry.Symbol, names[entry.Offset])
	}
}

// indexMain is the entry point for the index command.
func indexMain(_ *cobra.Command, arguments []string) error {
	// Open the archive and defer its closure.
	a, err := archive.Open(arguments[0])
	if err != nil {
		return err
	}
	defer must.Close(a, nil)

	// Print the index.
	printIndex(color.Output, a)

	// Success.
	return nil
}

// indexCommand is the index command.
var indexCommand = &cobra.Command{
	Use:          "index <archive>",
	Short:        "Print the symbol index of an archive",
	Args:         cobra.ExactArgs(1),
	Run:          cmd.Mainify(indexMain),
	SilenceUsage: true,
}

// indexConfiguration stores configuration for the index command.
var indexConfiguration struct {
	// help indicates whether or not to show help information and exit.
	help bool
}

func init() {
	// Grab a handle for the command line flags.
	flags := indexCommand.Flags()

	// Disable alphabetical sorting of flags in help output.
	flags.SortFlags = false

	// Manually add a help flag to override the default message. Cobra will
	// still implement its logic automatically.
	flags.BoolVarP(&indexConfiguration.help, "help", "h", false, "Show help information")
}
