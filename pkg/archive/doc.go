// Package archive reads and writes ar-format static libraries. It supports
// GNU/SysV archives (with "/" and "/SYM64/" symbol indices and "//" long-name
// tables) and BSD archives (with "#1/N" names and "__.SYMDEF" ranlib
// indices). Archive contents are memory-mapped where the platform allows.
package archive
