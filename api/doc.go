// Package api serves the healthmon status API.
//
// Read routes report the last committed health of every endpoint and never
// trigger checks. Mutating routes require a bearer token carrying the
// operator role and are absent when no authenticator is configured.
package api
