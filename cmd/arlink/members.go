package main

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mutagen-io/arlink/cmd"
	"github.com/mutagen-io/arlink/pkg/archive"
	"github.com/mutagen-io/arlink/pkg/must"
)

// printMembers prints an archive's members with their offsets and sizes. Sizes
// are printed in human-readable form unless bytes is set.
func printMembers(writer io.Writer, a *archive.Archive, bytes bool) {
	var total uint64
	for _, member := range a.Members() {
		size := uint64(member.Size)
		total += size
		if bytes {
			fmt.Fprintf(writer, "%10d  %10d  %s\n", member.Offset, size, member.Name)
		} else {
			fmt.Fprintf(writer, "%10d  %10s  %s\n", member.Offset, humanize.Bytes(size), member.Name)
		}
	}
	fmt.Fprintf(writer, "%d members, %s\n", len(a.Members()), humanize.Bytes(total))
}

// membersMain is the entry point for the members command.
func membersMain(_ *cobra.Command, arguments []string) error {
	// Open the archive and defer its closure.
	a, err := archive.Open(arguments[0])
	if err != nil {
		return err
	}
	defer must.Close(a, nil)

	// Print the members.
	printMembers(color.Output, a, membersConfiguration.bytes)

	// Success.
	return nil
}

// membersCommand is the members command.
var membersCommand = &cobra.Command{
	Use:          "members <archive>",
	Short:        "List the members of an archive",
	Args:         cobra.ExactArgs(1),
	Run:          cmd.Mainify(membersMain),
	SilenceUsage: true,
}

// membersConfiguration stores configuration for the members command.
var membersConfiguration struct {
	// help indicates whether or not to show help information and exit.
	help bool
	// bytes indicates that sizes should be printed in bytes.
	bytes bool
}

func init() {
	// Grab a handle for the command line flags.
	flags := membersCommand.Flags()

	// Disable alphabetical sorting of flags in help output.
	flags.SortFlags = false

	// Manually add a help flag to override the default message. Cobra will
	// still implement its logic automatically.
	flags.BoolVarP(&membersConfiguration.help, "help", "h", false, "Show help information")

	// Wire up display flags.
	flags.BoolVarP(&membersConfiguration.bytes, "bytes", "b", false, "Print sizes in bytes")
}
