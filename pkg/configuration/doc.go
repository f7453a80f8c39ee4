// Package configuration provides loading and validation facilities for arlink's
// YAML link configuration files. Values loaded from a file can be overridden by
// command line flags using Merge.
package configuration
