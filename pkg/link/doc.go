// Package link implements the symbol resolution phase of a static link. A
// Session loads object inputs, opens archive inputs lazily, and runs a worklist
// over undefined symbols that fetches archive members only when they define a
// symbol that the link requires.
package link
