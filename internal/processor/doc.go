// Package processor drives queued videos through the analysis pipeline.
//
// One engine goroutine owns the queue: it dequeues the oldest item, walks it
// through the submit, poll, and fetch phases in order, and finalizes it
// before touching the next item. Strict FIFO and at-most-one-in-flight hold
// by construction. A failed phase drops the item and the queue advances; no
// phase is retried. Completion removes the item and, on success only,
// records the video so it is never enqueued again.
//
// Enqueues nudge the engine through Wake; an idle re-check interval
// backstops missed nudges. On start any item left mid-flight by a previous
// run is reset to pending and resubmitted, since the remote job handle lives
// only in memory.
package processor
