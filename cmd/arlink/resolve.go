package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mutagen-io/arlink/cmd"
	"github.com/mutagen-io/arlink/pkg/encoding"
	"github.com/mutagen-io/arlink/pkg/link"
	"github.com/mutagen-io/arlink/pkg/object"
)

// report is the serialized form of a resolution result.
type report struct {
	// Session is the session identifier.
	Session string `yaml:"session"`
	// Loaded are the loaded files in load order.
	Loaded []string `yaml:"loaded"`
	// Undefined are the remaining undefined symbols.
	Undefined []link.UndefinedSymbol `yaml:"undefined,omitempty"`
	// Duplicates are the duplicate definitions.
	Duplicates []link.DuplicateSymbol `yaml:"duplicates,omitempty"`
	// Diagnostics are the archive member failures.
	Diagnostics []link.Diagnostic `yaml:"diagnostics,omitempty"`
	// Archives are the per-archive statistics.
	Archives []link.ArchiveStatistics `yaml:"archives,omitempty"`
}

// newReport converts a result to a report.
func newReport(result *link.Result) *report {
	loaded := make([]string, len(result.Loaded))
	for i, file := range result.Loaded {
		loaded[i] = file.String()
	}
	return &report{
		Session:     result.Session,
		Loaded:      loaded,
		Undefined:   result.Undefined,
		Duplicates:  result.Duplicates,
		Diagnostics: result.Diagnostics,
		Archives:    result.Archives,
	}
}

// printReport prints a report in text format.
func printReport(writer io.Writer, r *report) {
	fmt.Fprintln(writer, "Session:", r.Session)
	fmt.Fprintln(writer, "Loaded files:")
	for _, file := range r.Loaded {
		fmt.Fprintf(writer, "\t%s\n", file)
	}
	if len(r.Archives) > 0 {
		fmt.Fprintln(writer, "Archives:")
		for _, a := range r.Archives {
			fmt.Fprintf(writer, "\t%s: %d/%d members parsed, %d failed\n", a.Path, a.Parsed, a.Members, a.Failed)
		}
	}
	for _, u := range r.Undefined {
		cmd.Failf(writer, "undefined symbol: %s (referenced by %s)", u.Symbol, u.ReferencedBy)
	}
	for _, d := range r.Duplicates {
		cmd.Failf(writer, "duplicate symbol: %s (defined by %s and %s)", d.Symbol, d.First, d.Second)
	}
	for _, d := range r.Diagnostics {
		cmd.Failf(writer, "%s", d.Message)
	}
}

// resolveMain is the entry point for the resolve command.
func resolveMain(command *cobra.Command, arguments []string) error {
	// Validate the output format.
	if resolveConfiguration.format != "text" && resolveConfiguration.format != "yaml" {
		return errors.Errorf("unsupported output format: %s", resolveConfiguration.format)
	}

	// Compute the link configuration.
	config, err := resolveConfiguration.link.configuration(command.Flags(), arguments)
	if err != nil {
		return err
	}
	logger := cmd.NewLogger(config.Level())

	// Create the session and defer its closure.
	session, err := link.NewSession(config, object.ELF, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := session.Close(); err != nil {
			logger.Warn(err)
		}
	}()

	// Cancel resolution on termination signals.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	signalTermination := make(chan os.Signal, 1)
	signal.Notify(signalTermination, cmd.TerminationSignals...)
	defer signal.Stop(signalTermination)
	go func() {
		select {
		case <-signalTermination:
			cancel()
		case <-ctx.Done():
		}
	}()

	// Perform resolution.
	result, err := session.Resolve(ctx)
	if err != nil {
		return err
	}
	r := newReport(result)

	// Save the report if requested.
	if resolveConfiguration.reportFile != "" {
		if err := encoding.MarshalAndSave(resolveConfiguration.reportFile, func() ([]byte, error) {
			return yaml.Marshal(r)
		}, logger); err != nil {
			return errors.Wrap(err, "unable to save report")
		}
	}

	// Print the report.
	if resolveConfiguration.format == "yaml" {
		data, err := yaml.Marshal(r)
		if err != nil {
			return errors.Wrap(err, "unable to encode report")
		}
		color.Output.Write(data)
	} else {
		printReport(color.Output, r)
	}

	// Indicate failure for incomplete resolution.
	if !result.Successful() {
		return errors.Errorf("resolution incomplete: %d undefined, %d duplicate, %d diagnostics",
			len(result.Undefined), len(result.Duplicates), len(result.Diagnostics),
		)
	}

	// Success.
	return nil
}

// resolveCommand is the resolve command.
var resolveCommand = &cobra.Command{
	Use:          "resolve [<input>...]",
	Short:        "Resolve symbols across objects and archives",
	Run:          cmd.Mainify(resolveMain),
	SilenceUsage: true,
}

// resolveConfiguration stores configuration for the resolve command.
var resolveConfiguration struct {
	// help indicates whether or not to show help information and exit.
	help bool
	// link are the link settings.
	link linkFlags
	// format is the report output format.
	format string
	// reportFile is the path where a YAML report should be saved.
	reportFile string
}

func init() {
	// Grab a handle for the command line flags.
	flags := resolveCommand.Flags()

	// Disable alphabetical sorting of flags in help output.
	flags.SortFlags = false

	// Manually add a help flag to override the default message. Cobra will
	// still implement its logic automatically.
	flags.BoolVarP(&resolveConfiguration.help, "help", "h", false, "Show help information")

	// Wire up link flags.
	resolveConfiguration.link.register(flags)

	// Wire up report flags.
	flags.StringVar(&resolveConfiguration.format, "format", "text", "Specify the output format (text|yaml)")
	flags.StringVar(&resolveConfiguration.reportFile, "report-file", "", "Save a YAML report to the specified path")
}
