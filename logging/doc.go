// Package logging provides a minimal logging interface and adapters for cargobot.
//
// The Logger interface defines the standard logging methods (Debug, Info, Warn, Error)
// that the pipeline, queue and flow engine use for observability. This package includes:
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping Go's structured logging
//   - NoOpLogger for silent operation (testing, minimal setups)
//   - BotLogger with contextual helpers (component, user key) and domain
//     specific logging helpers for model calls, flow steps and the queue
//
// Usage:
//
//	logger := logging.NewSlogLogger(logging.LogLevelInfo, "json", false)
//	bot := cargobot.New(func(o *cargobot.Options) { o.Logger = logger })
//
// The design intentionally keeps the interface minimal to avoid vendor lock-in
// while supporting structured logging where available.
package logging
