// Package services defines shared utilities consumed by the processor phase
// handlers and the analysis client.
//
// Key responsibilities:
//   - Context helpers that stamp queue item IDs, video IDs, stage names, and
//     correlation identifiers for logging and tracing.
//   - Structured error markers plus the Wrap helper that tag failures with a
//     taxonomy class (validation, not found, transient, ...) consumed by logs
//     and notifications.
//
// Use these helpers when wiring new phase logic so operational behaviour
// (error handling, observability) stays uniform across the pipeline.
package services
