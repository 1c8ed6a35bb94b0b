package core

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by collaborator implementations when an external
// query matched nothing. Flows recover from it with a friendly message.
var ErrNotFound = errors.New("not found")

// ConfigError signals a missing or invalid deployment setting, typically a
// credential. It is fatal at the point of use rather than silently degraded.
type ConfigError struct {
	Key string
}

func (e *ConfigError) Error() string { return fmt.Sprintf("missing required configuration: %s", e.Key) }

// NewConfigError builds a ConfigError for the given setting key.
func NewConfigError(key string) error { return &ConfigError{Key: key} }

// IsConfigError reports whether err is (or wraps) a ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}
