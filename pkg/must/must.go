// Package must provides helpers for best-effort operations whose failures are
// logged rather than returned.
package must

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mutagen-io/arlink/pkg/logging"
)

// Close closes c, logging any failure.
func Close(c io.Closer, logger *logging.Logger) {
	if err := c.Close(); err != nil {
		logger.Warnf("Unable to close: %s", err.Error())
	}
}

// OSRemove removes the named file, logging any failure.
func OSRemove(name string, logger *logging.Logger) {
	if err := os.Remove(name); err != nil {
		logger.Warnf("Unable to remove '%s': %s", name, err.Error())
	}
}

// CommandHelp prints help for a command, logging any failure.
func CommandHelp(c *cobra.Command, logger *logging.Logger) {
	if err := c.Help(); err != nil {
		logger.Warnf("Unable to help: %s", err.Error())
	}
}
