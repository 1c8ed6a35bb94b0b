// Package session holds the per-user dialogue state consulted by the flow
// engine: which guided flow the user is in, the current step and the values
// collected so far. State is created lazily on first contact, refreshed on
// every interaction and swept after an idle threshold.
//
// Add additional backends (Redis, Postgres, etc.) alongside the in-memory
// store without changing any calling code – only the wiring layer needs to
// decide which implementation to instantiate.
package session
