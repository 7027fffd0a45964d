// Package daemon composes the queue engine, the mute coordinator, and the
// local HTTP API into one controllable runtime with single-instance
// enforcement.
//
// The Daemon owns lifecycle (Start/Stop with a flock-backed instance lock)
// and exposes the operation surface the IPC and HTTP layers delegate to: enqueueing
// videos, queue inspection and maintenance, banlist edits with live matcher
// rebuilds, session observations, and the manual mute toggle. It holds no
// domain logic of its own; every method forwards into the store, the engine,
// or the coordinator and translates between their types.
package daemon
