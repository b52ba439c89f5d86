package auth

import (
	"slices"
	"time"
)

// Identity represents an authenticated principal.
type Identity struct {
	// Principal is the token subject.
	Principal string

	// Roles are the roles carried by the token.
	Roles []string

	// Claims contains the raw token claims.
	Claims map[string]any

	// ExpiresAt is when the token expires. Zero means no expiry.
	ExpiresAt time.Time

	// IssuedAt is when the token was issued.
	IssuedAt time.Time
}

// HasRole checks if the identity has a specific role.
func (id *Identity) HasRole(role string) bool {
	return id != nil && slices.Contains(id.Roles, role)
}
