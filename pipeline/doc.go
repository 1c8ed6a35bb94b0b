// Package pipeline wires the full message path: customer resolution,
// history load, dialogue flows, the cached and retried model call, chat
// formatting and asynchronous persistence.
package pipeline
