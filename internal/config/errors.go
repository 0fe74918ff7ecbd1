package config

import (
	"fmt"
	"strings"
)

// MissingConfigurationError is returned when a required key is absent.
type MissingConfigurationError struct {
	Key string
}

func (e *MissingConfigurationError) Error() string {
	return fmt.Sprintf("missing required configuration %q", e.Key)
}

// TypeMismatchError is returned when a key is present but its value cannot be
// read as the requested type.
type TypeMismatchError struct {
	Key  string
	Type string
	Err  error
}

func (e *TypeMismatchError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("configuration %q is not a valid %s", e.Key, e.Type)
	}
	return fmt.Sprintf("configuration %q is not a valid %s: %v", e.Key, e.Type, e.Err)
}

func (e *TypeMismatchError) Unwrap() error { return e.Err }

// InvalidEnumValueError is returned when a string value is not one of the
// recognized tokens for its key.
type InvalidEnumValueError struct {
	Key     string
	Value   string
	Allowed []string
}

func (e *InvalidEnumValueError) Error() string {
	return fmt.Sprintf("configuration %q has invalid value %q (allowed: %s)",
		e.Key, e.Value, strings.Join(e.Allowed, ", "))
}
