// Package store provides the persistence backends: a SQLite store for
// production and an in-memory store for tests and examples. Both implement
// the core.CustomerStore, core.RecruitingStore and core.SupplierStore
// interfaces.
package store
