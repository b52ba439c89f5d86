// Package auth guards mutating status API routes with bearer JWTs.
//
// A JWTAuthenticator validates HMAC-signed tokens and turns their claims
// into an Identity. RequireRole wraps an http.Handler so that only
// identities carrying a given role reach it.
package auth
