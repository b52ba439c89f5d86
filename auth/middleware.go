package auth

import (
	"encoding/json"
	"errors"
	"net/http"
)

// RequireRole rejects requests that do not authenticate (401) or whose
// identity lacks role (403). Accepted requests carry the identity in their
// context.
func RequireRole(a Authenticator, role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := a.Authenticate(r.Context(), r)
			if err != nil {
				w.Header().Set("WWW-Authenticate", `Bearer realm="healthmon"`)
				writeError(w, http.StatusUnauthorized, err)
				return
			}
			if !id.HasRole(role) {
				writeError(w, http.StatusForbidden, ErrForbidden)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	msg := err.Error()
	for _, sentinel := range []error{ErrMissingCredentials, ErrTokenExpired, ErrTokenMalformed, ErrInvalidCredentials} {
		if errors.Is(err, sentinel) {
			msg = sentinel.Error()
			break
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
