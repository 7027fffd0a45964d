// Package api defines wire-format types and converters for the IPC and HTTP
// API layer. It translates internal queue, mute, and session state into
// transport-friendly DTOs so CLI and observer-script consumers never couple
// to internal types.
//
// DTOs use camelCase JSON tags. Internal enums (queue.Status, enqueue
// outcomes, mute reasons) are exposed as lowercase strings. Timestamps use
// RFC3339 with milliseconds. Maps with nondeterministic iteration order
// (queue stats, phase health) are flattened into sorted slices before they
// cross the wire.
package api
