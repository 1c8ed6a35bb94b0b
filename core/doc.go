// Package core contains the shared value types and collaborator interfaces
// of the cargobot engine: inbound messages, conversation history entries,
// the persistent store boundary and the external service boundaries
// (tracking lookup, recruiting, suppliers, branch routing).
//
// The engine owns no durable state itself; everything behind these
// interfaces is injected at construction time.
package core
