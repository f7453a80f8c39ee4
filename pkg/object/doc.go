// Package object defines the linkable unit (File) produced by parsing an
// object file, either standalone or as a static archive member, along with the
// parser abstraction and the default ELF relocatable parser.
package object
