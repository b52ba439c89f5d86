package secret

import "errors"

var (
	// ErrMissingEnv indicates a referenced environment variable is unset.
	ErrMissingEnv = errors.New("secret: missing environment variable")

	// ErrInvalidRef indicates a malformed or empty secret reference.
	ErrInvalidRef = errors.New("secret: invalid reference")

	// ErrUnknownProvider indicates a reference names an unregistered provider.
	ErrUnknownProvider = errors.New("secret: unknown provider")

	// ErrEmptySecret indicates a provider returned an empty value in strict mode.
	ErrEmptySecret = errors.New("secret: empty value")

	// ErrNotFound indicates the provider has no value for the reference.
	ErrNotFound = errors.New("secret: not found")
)
