// Package secret resolves credentials referenced from endpoint addresses
// and server settings.
//
// Values are first expanded strictly against the environment, then any
// secret reference is resolved through a named Provider:
//
//   - Full value:  secretref:file:api-token
//   - Inline use:  https://monitor:secretref:env:API_PASSWORD@example.com/health
//
// Two providers are built in: "env" reads environment variables and "file"
// reads trimmed files below a base directory, as mounted by container
// orchestrators.
package secret
