package config

import "errors"

var (
	// ErrRead indicates the config file could not be read or decoded.
	ErrRead = errors.New("config: read failed")

	// ErrInvalid indicates a loaded configuration failed validation.
	ErrInvalid = errors.New("config: invalid")
)
