package resolver

import (
	"fmt"
)

// MemberError reports that an archive member could not be loaded. It unwraps
// to the underlying cause, which is object.ErrMalformedInput for members whose
// bytes fail to parse.
type MemberError struct {
	// Archive is the archive path.
	Archive string
	// Member is the member name.
	Member string
	// Offset is the member header offset.
	Offset int64
	// Symbol is the symbol whose lookup triggered the load. It is empty for
	// loads triggered by ParseAllMembers.
	Symbol string
	// Err is the underlying error.
	Err error
}

// Error implements error.Error.
func (e *MemberError) Error() string {
	if e.Symbol == "" {
		return fmt.Sprintf("unable to load archive member %s(%s) at offset %d: %v",
			e.Archive, e.Member, e.Offset, e.Err,
		)
	}
	return fmt.Sprintf("undefined reference to %s in archive member %s(%s) at offset %d: %v",
		e.Symbol, e.Archive, e.Member, e.Offset, e.Err,
	)
}

// Unwrap returns the underlying error.
func (e *MemberError) Unwrap() error {
	return e.Err
}
