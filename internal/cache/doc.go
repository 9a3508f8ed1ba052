// Package cache implements the persistent email store backing the
// clustering pipeline and the archive coordinator.
//
// The store is a single SQLite database (modernc.org/sqlite, pure Go) with
// WAL journaling. Messages are keyed by their provider-assigned external id
// and upserted batch-atomically; cluster sets are replaced wholesale in one
// transaction so readers never observe a partially installed run. The
// archived flag is monotonic: the store only ever flips it false to true.
//
// Partial-commit faults are the one fatal failure mode and surface as
// *ConsistencyError; they require external reconciliation and are never
// swallowed.
package cache
