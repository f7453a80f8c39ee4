// Package filesystem provides file writing utilities.
package filesystem
