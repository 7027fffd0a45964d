// Package logs provides file tailing and offset helpers shared by the CLI and
// daemon diagnostics.
//
// It streams log files with bounded memory usage, supports negative offsets
// for "tail last N lines" operations, and powers follow-mode updates for
// `bleep logs -f`. Callers supply context deadlines so background polling
// shuts down cleanly when the CLI exits.
//
// StreamClient additionally reads from the daemon's structured log API when
// it is reachable, which carries the per-video and per-component filters the
// raw file cannot offer.
package logs
