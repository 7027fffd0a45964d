// Package queue persists work items, completions, mute schedules, and ban
// terms in SQLite and exposes helpers for driving the work item lifecycle.
//
// The Store manages the database connection, schema initialization, FIFO
// dequeue, enqueue deduplication against both the queue and the processed
// set, transactional head completion, restart recovery for in-flight items,
// stats queries, and diagnostics. Work items capture only identity, status,
// and a progress message: terminal outcomes remove the row instead of
// persisting a terminal status, so the queue holds live work and nothing
// else.
//
// The database is treated as transient working state rather than a long-term
// archive. Schema changes bump the version in schema.go; users clear the
// database to adopt the new schema.
//
// Treat this package as the single source of truth for queue semantics; when
// you add new statuses or tables, update schema.sql and bump schemaVersion.
package queue
