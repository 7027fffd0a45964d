package testsupport

import (
	"context"
	"testing"

	"bleep/internal/config"
	"bleep/internal/media"
	"bleep/internal/queue"
)

// MustOpenStore opens a queue.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *queue.Store {
	t.Helper()

	store, err := queue.Open(cfg)
	if err != nil {
		t.Fatalf("queue.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// EnqueueVideo adds a work item for tests, failing unless it was newly added.
func EnqueueVideo(t testing.TB, store *queue.Store, videoID string) *queue.Item {
	t.Helper()

	item, outcome, err := store.Enqueue(context.Background(), videoID, media.CanonicalURL(videoID))
	if err != nil {
		t.Fatalf("store.Enqueue: %v", err)
	}
	if outcome != queue.OutcomeAdded {
		t.Fatalf("expected video %s to be newly added, got outcome %s", videoID, outcome)
	}
	return item
}
