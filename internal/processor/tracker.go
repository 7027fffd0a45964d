package processor

import (
	"sync"

	"bleep/internal/analysis"
)

// jobBinding associates a queue item with its remote analysis job. Bindings
// live in memory only; a daemon restart drops them and the submit phase
// creates a fresh remote job for the reset item.
type jobBinding struct {
	jobID       string
	remoteState analysis.JobState
	windows     int
}

type jobTracker struct {
	mu       sync.Mutex
	bindings map[int64]*jobBinding
}

func newJobTracker() *jobTracker {
	return &jobTracker{bindings: make(map[int64]*jobBinding)}
}

func (t *jobTracker) bind(itemID int64, jobID string) {
	t.mu.Lock()
	t.bindings[itemID] = &jobBinding{jobID: jobID}
	t.mu.Unlock()
}

func (t *jobTracker) get(itemID int64) (jobBinding, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	binding, ok := t.bindings[itemID]
	if !ok {
		return jobBinding{}, false
	}
	return *binding, true
}

func (t *jobTracker) setState(itemID int64, state analysis.JobState) {
	t.mu.Lock()
	if binding, ok := t.bindings[itemID]; ok {
		binding.remoteState = state
	}
	t.mu.Unlock()
}

func (t *jobTracker) setWindows(itemID int64, windows int) {
	t.mu.Lock()
	if binding, ok := t.bindings[itemID]; ok {
		binding.windows = windows
	}
	t.mu.Unlock()
}

// take removes and returns the binding for an item. Completion paths call it
// exactly once so stale bindings never accumulate.
func (t *jobTracker) take(itemID int64) (jobBinding, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	binding, ok := t.bindings[itemID]
	if !ok {
		return jobBinding{}, false
	}
	delete(t.bindings, itemID)
	return *binding, true
}
