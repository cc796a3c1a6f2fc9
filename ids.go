package auth

import (
	"strings"

	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// IDGenerator returns the identifier for a new account.
type IDGenerator func(email string) string

// RandomID returns a random UUID string.
func RandomID(string) string {
	return uuid.NewString()
}

// EmailDerivedID returns a deterministic UUID derived from the normalized
// email, falling back to a random one.
func EmailDerivedID(email string) string {
	id, err := hashid.NewUUID(strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
