package auth

import (
	"context"
	"net/http"
)

// Authenticator validates the credentials on an HTTP request.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: failures wrap ErrMissingCredentials, ErrInvalidCredentials,
//   ErrTokenExpired or ErrTokenMalformed.
type Authenticator interface {
	Authenticate(ctx context.Context, r *http.Request) (*Identity, error)
}
