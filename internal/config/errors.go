package config

import "errors"

var (
	// ErrConfigMissing is returned when the config file does not exist.
	// Startup must not proceed on this error.
	ErrConfigMissing = errors.New("config file missing")
	// ErrConfigMalformed is returned for unparsable or invalid content.
	ErrConfigMalformed = errors.New("config file malformed")
)
