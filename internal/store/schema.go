// Package store implements the durable local store for clinicsync: one
// SQLite table per entity kind, a settings table, and the sync queue mirror.
package store

// Schema DDL. Every statement is idempotent so opening an existing database
// never disturbs its contents.
const (
	createPatients = `CREATE TABLE IF NOT EXISTS patients (
    id TEXT PRIMARY KEY,
    data TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`

	createRoutes = `CREATE TABLE IF NOT EXISTS routes (
    id TEXT PRIMARY KEY,
    data TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`

	createInventory = `CREATE TABLE IF NOT EXISTS inventory (
    id TEXT PRIMARY KEY,
    data TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`

	createAppointments = `CREATE TABLE IF NOT EXISTS appointments (
    id TEXT PRIMARY KEY,
    data TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`

	createSettings = `CREATE TABLE IF NOT EXISTS settings (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
);`

	createSyncQueue = `CREATE TABLE IF NOT EXISTS sync_queue (
    id TEXT PRIMARY KEY,
    kind TEXT NOT NULL,
    action TEXT NOT NULL,
    data TEXT,
    timestamp INTEGER NOT NULL,
    synced INTEGER NOT NULL DEFAULT 0,
    endpoint TEXT,
    method TEXT
);`

	idxSyncQueueSynced = `CREATE INDEX IF NOT EXISTS idx_sync_queue_synced
    ON sync_queue(synced, timestamp);`
)

// schemaStatements lists all DDL executed by Initialize, in order.
var schemaStatements = []string{
	createPatients,
	createRoutes,
	createInventory,
	createAppointments,
	createSettings,
	createSyncQueue,
	idxSyncQueueSynced,
}
