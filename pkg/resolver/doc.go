// Package resolver implements lazy static archive member resolution. A
// StaticArchive parses an archive member only when a symbol it defines is
// first requested, parses each member at most once, and hands out the same
// File for every subsequent lookup that resolves into that member.
package resolver
