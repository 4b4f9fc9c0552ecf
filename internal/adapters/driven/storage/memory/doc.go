// Package memory provides in-memory implementations of the storage ports.
//
// NodeStore and CacheStore back tests. NodeOverlay and CacheOverlay read
// through to a persistent store but keep every write in memory, which is
// how sync --dry-run runs a full reconciliation without committing it.
package memory
