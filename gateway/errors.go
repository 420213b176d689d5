package gateway

import (
	"errors"
	"fmt"
)

// Error types for classifying judge gateway failures.

// ConfigError represents a configuration problem, such as a missing
// credential. It is fatal: it surfaces before any network attempt and is
// never degraded to a verdict.
type ConfigError struct {
	err error
}

func (e *ConfigError) Error() string {
	return e.err.Error()
}

func (e *ConfigError) Unwrap() error {
	return e.err
}

// NewConfigError wraps an error as a fatal configuration error.
func NewConfigError(err error) error {
	return &ConfigError{err: err}
}

// IsConfigError returns true if the error is a configuration error.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// TransportError represents a network, authentication, or service failure
// during a judge call. Callers recover it into a synthetic FAIL verdict so
// the decision and retry machinery still run.
type TransportError struct {
	err error
}

func (e *TransportError) Error() string {
	return e.err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.err
}

// NewTransportError wraps an error as a transport failure.
func NewTransportError(err error) error {
	return &TransportError{err: err}
}

// IsTransportError returns true if the error is a transport failure.
func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// ErrMissingCredential is the base error for an absent API credential.
func ErrMissingCredential(envVar string) error {
	return NewConfigError(fmt.Errorf("missing credential: environment variable %s is not set", envVar))
}
