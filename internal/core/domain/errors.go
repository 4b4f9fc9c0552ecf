package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidConfig indicates a configuration error. Always fatal for a run.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrUnknownSchema indicates a content-type uid missing from the schema registry.
	ErrUnknownSchema = errors.New("unknown schema")

	// ErrUnknownComponent indicates a component uid missing from the schema registry.
	ErrUnknownComponent = errors.New("unknown component")

	// ErrSyncInProgress indicates a sync is already running for the source.
	ErrSyncInProgress = errors.New("sync in progress")

	// ErrFetch indicates entities or schemas could not be retrieved.
	ErrFetch = errors.New("fetch failed")

	// Authentication Errors.

	// ErrAuthInvalid indicates the login credentials were rejected.
	ErrAuthInvalid = errors.New("authentication invalid")
)

// ConfigError reports a configuration problem together with the offending identifier.
// It matches ErrInvalidConfig and, when set, the more specific Kind sentinel.
type ConfigError struct {
	// Identifier is the uid, singular name or field that could not be resolved.
	Identifier string

	// Kind is an optional sentinel such as ErrUnknownSchema.
	Kind error

	// Reason is a human readable explanation.
	Reason string
}

// NewConfigError creates a ConfigError.
func NewConfigError(identifier string, kind error, reason string) *ConfigError {
	return &ConfigError{Identifier: identifier, Kind: kind, Reason: reason}
}

func (e *ConfigError) Error() string {
	if e.Kind != nil {
		return fmt.Sprintf("%s: %s %q: %s", ErrInvalidConfig, e.Kind, e.Identifier, e.Reason)
	}
	return fmt.Sprintf("%s: %q: %s", ErrInvalidConfig, e.Identifier, e.Reason)
}

// Is reports whether target is ErrInvalidConfig or the error's Kind.
func (e *ConfigError) Is(target error) bool {
	if target == ErrInvalidConfig {
		return true
	}
	return e.Kind != nil && target == e.Kind
}
