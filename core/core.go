package core

import "github.com/lfmotta/cargobot/logging"

// EnsureLogger guarantees a non-nil logger by substituting a NoOpLogger
// when given nil. Components call this in their constructors so callers can
// leave logging unset.
func EnsureLogger(l logging.Logger) logging.Logger {
	if l == nil {
		return logging.NoOpLogger{}
	}
	return l
}
