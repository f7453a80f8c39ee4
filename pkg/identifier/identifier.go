package identifier

import (
	"crypto/rand"

	"github.com/pkg/errors"

	"github.com/mutagen-io/arlink/pkg/encoding"
)

const (
	// PrefixLink is the prefix used for link session identifiers.
	PrefixLink = "link_"

	// collisionResistantLength is the number of random bytes needed to ensure
	// collision-resistance in an identifier.
	collisionResistantLength = 32
)

// New generates a new collision-resistant identifier with the specified prefix.
func New(prefix string) (string, error) {
	// Create the random value.
	random := make([]byte, collisionResistantLength)
	if _, err := rand.Read(random); err != nil {
		return "", errors.Wrap(err, "unable to read random data")
	}

	// Encode the random value.
	return prefix + encoding.EncodeBase62(random), nil
}
