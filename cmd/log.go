package cmd

import (
	"io/ioutil"
	"log"

	"github.com/fatih/color"

	"github.com/mutagen-io/arlink/pkg/logging"
)

func init() {
	// Silence the default logger.
	log.SetOutput(ioutil.Discard)
}

// NewLogger creates a root logger writing to standard error at the specified
// level.
func NewLogger(level logging.Level) *logging.Logger {
	return logging.NewLogger(level, color.Error)
}
