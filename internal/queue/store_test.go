package queue_test

import (
	"context"
	"testing"

	"bleep/internal/media"
	"bleep/internal/queue"
	"bleep/internal/schedule"
	"bleep/internal/testsupport"
)

func TestOpenInitializesSchema(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	item := testsupport.EnqueueVideo(t, store, "dQw4w9WgXcQ")
	if item.ID == 0 {
		t.Fatal("expected item ID to be assigned")
	}
	if item.Status != queue.StatusPending {
		t.Fatalf("expected pending status, got %s", item.Status)
	}

	fetched, err := store.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if fetched == nil || fetched.VideoID != "dQw4w9WgXcQ" {
		t.Fatalf("unexpected fetched item: %#v", fetched)
	}

	found, err := store.ItemByVideoID(ctx, "dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("ItemByVideoID failed: %v", err)
	}
	if found == nil || found.ID != item.ID {
		t.Fatalf("expected to find inserted item, got %#v", found)
	}
}

func TestEnqueueRequiresIdentity(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	if _, _, err := store.Enqueue(ctx, "", "https://example.com"); err == nil {
		t.Fatal("expected error for empty video id")
	}
	if _, _, err := store.Enqueue(ctx, "dQw4w9WgXcQ", "   "); err == nil {
		t.Fatal("expected error for empty source url")
	}
}

func TestEnqueueOutcomes(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	first := testsupport.EnqueueVideo(t, store, "aaaaaaaaaaa")

	dup, outcome, err := store.Enqueue(ctx, "aaaaaaaaaaa", media.CanonicalURL("aaaaaaaaaaa"))
	if err != nil {
		t.Fatalf("duplicate enqueue failed: %v", err)
	}
	if outcome != queue.OutcomeAlreadyQueued {
		t.Fatalf("expected already_queued, got %s", outcome)
	}
	if dup == nil || dup.ID != first.ID {
		t.Fatalf("expected existing item back, got %#v", dup)
	}

	if _, err := store.CompleteHead(ctx, first, true); err != nil {
		t.Fatalf("CompleteHead failed: %v", err)
	}

	blocked, outcome, err := store.Enqueue(ctx, "aaaaaaaaaaa", media.CanonicalURL("aaaaaaaaaaa"))
	if err != nil {
		t.Fatalf("post-completion enqueue failed: %v", err)
	}
	if outcome != queue.OutcomeAlreadyProcessed {
		t.Fatalf("expected already_processed, got %s", outcome)
	}
	if blocked != nil {
		t.Fatalf("processed video should not return an item, got %#v", blocked)
	}
}

func TestNextPendingIsFIFO(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	a := testsupport.EnqueueVideo(t, store, "aaaaaaaaaaa")
	b := testsupport.EnqueueVideo(t, store, "bbbbbbbbbbb")
	testsupport.EnqueueVideo(t, store, "ccccccccccc")

	next, err := store.NextPending(ctx)
	if err != nil {
		t.Fatalf("NextPending failed: %v", err)
	}
	if next == nil || next.ID != a.ID {
		t.Fatalf("expected first enqueued item, got %#v", next)
	}

	if _, err := store.CompleteHead(ctx, a, false); err != nil {
		t.Fatalf("CompleteHead failed: %v", err)
	}

	next, err = store.NextPending(ctx)
	if err != nil {
		t.Fatalf("NextPending after completion failed: %v", err)
	}
	if next == nil || next.ID != b.ID {
		t.Fatalf("expected second item after head removal, got %#v", next)
	}
}

func TestCompleteHeadSuccessRecordsProcessed(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	item := testsupport.EnqueueVideo(t, store, "dQw4w9WgXcQ")

	mismatch, err := store.CompleteHead(ctx, item, true)
	if err != nil {
		t.Fatalf("CompleteHead failed: %v", err)
	}
	if mismatch {
		t.Fatal("expected item to still be the head")
	}

	gone, err := store.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if gone != nil {
		t.Fatalf("completed item should be removed, got %#v", gone)
	}

	processed, err := store.IsProcessed(ctx, "dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("IsProcessed failed: %v", err)
	}
	if !processed {
		t.Fatal("expected video in processed set")
	}

	count, err := store.ProcessedCount(ctx)
	if err != nil {
		t.Fatalf("ProcessedCount failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected processed count 1, got %d", count)
	}
}

func TestCompleteHeadFailureSkipsProcessed(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	item := testsupport.EnqueueVideo(t, store, "dQw4w9WgXcQ")

	if _, err := store.CompleteHead(ctx, item, false); err != nil {
		t.Fatalf("CompleteHead failed: %v", err)
	}

	processed, err := store.IsProcessed(ctx, "dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("IsProcessed failed: %v", err)
	}
	if processed {
		t.Fatal("failed item must not enter the processed set")
	}

	// A dropped failure may be enqueued again later.
	_, outcome, err := store.Enqueue(ctx, "dQw4w9WgXcQ", media.CanonicalURL("dQw4w9WgXcQ"))
	if err != nil {
		t.Fatalf("re-enqueue failed: %v", err)
	}
	if outcome != queue.OutcomeAdded {
		t.Fatalf("expected re-enqueue after failure, got %s", outcome)
	}
}

func TestCompleteHeadMismatchRemovesByVideoID(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	a := testsupport.EnqueueVideo(t, store, "aaaaaaaaaaa")
	b := testsupport.EnqueueVideo(t, store, "bbbbbbbbbbb")

	mismatch, err := store.CompleteHead(ctx, b, true)
	if err != nil {
		t.Fatalf("CompleteHead failed: %v", err)
	}
	if !mismatch {
		t.Fatal("expected head mismatch to be reported")
	}

	gone, err := store.GetByID(ctx, b.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if gone != nil {
		t.Fatalf("expected mismatched item removed, got %#v", gone)
	}

	still, err := store.GetByID(ctx, a.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if still == nil {
		t.Fatal("head item should be untouched by mismatched completion")
	}

	processed, err := store.IsProcessed(ctx, "bbbbbbbbbbb")
	if err != nil {
		t.Fatalf("IsProcessed failed: %v", err)
	}
	if !processed {
		t.Fatal("successful completion should record processed even on mismatch")
	}
}

func TestResetInFlight(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	statuses := []queue.Status{queue.StatusSubmitting, queue.StatusPolling, queue.StatusFetching}
	ids := make([]int64, 0, len(statuses))
	for i, status := range statuses {
		item := testsupport.EnqueueVideo(t, store, string(rune('a'+i))+"aaaaaaaaaa")
		item.Status = status
		item.ProgressMessage = "remote: transcribing"
		if err := store.Update(ctx, item); err != nil {
			t.Fatalf("Update failed: %v", err)
		}
		ids = append(ids, item.ID)
	}
	pending := testsupport.EnqueueVideo(t, store, "zzzzzzzzzzz")

	count, err := store.ResetInFlight(ctx)
	if err != nil {
		t.Fatalf("ResetInFlight failed: %v", err)
	}
	if int(count) != len(statuses) {
		t.Fatalf("expected %d items reset, got %d", len(statuses), count)
	}

	for i, id := range ids {
		updated, err := store.GetByID(ctx, id)
		if err != nil {
			t.Fatalf("GetByID failed: %v", err)
		}
		if updated.Status != queue.StatusPending {
			t.Fatalf("%s: expected pending after reset, got %s", statuses[i], updated.Status)
		}
		if updated.ProgressMessage != queue.RestartResetMessage {
			t.Fatalf("expected reset message, got %q", updated.ProgressMessage)
		}
	}

	untouched, err := store.GetByID(ctx, pending.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if untouched.ProgressMessage != "" {
		t.Fatalf("pending item should be untouched, got %q", untouched.ProgressMessage)
	}
}

func TestUpdateProgressPreservesStatus(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	item := testsupport.EnqueueVideo(t, store, "dQw4w9WgXcQ")
	item.Status = queue.StatusPolling
	if err := store.Update(ctx, item); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	if err := store.UpdateProgress(ctx, item.ID, "remote: downloading"); err != nil {
		t.Fatalf("UpdateProgress failed: %v", err)
	}

	after, err := store.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if after.Status != queue.StatusPolling {
		t.Fatalf("expected status preserved, got %s", after.Status)
	}
	if after.ProgressMessage != "remote: downloading" {
		t.Fatalf("expected progress message persisted, got %q", after.ProgressMessage)
	}
}

func TestClearSparesInFlightHead(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	head := testsupport.EnqueueVideo(t, store, "aaaaaaaaaaa")
	head.Status = queue.StatusPolling
	if err := store.Update(ctx, head); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	testsupport.EnqueueVideo(t, store, "bbbbbbbbbbb")
	testsupport.EnqueueVideo(t, store, "ccccccccccc")

	removed, err := store.Clear(ctx)
	if err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if removed != 2 {
		t.Fatalf("expected 2 pending items removed, got %d", removed)
	}

	inFlight, err := store.InFlight(ctx)
	if err != nil {
		t.Fatalf("InFlight failed: %v", err)
	}
	if inFlight == nil || inFlight.ID != head.ID {
		t.Fatalf("in-flight head must survive clear, got %#v", inFlight)
	}

	next, err := store.NextPending(ctx)
	if err != nil {
		t.Fatalf("NextPending failed: %v", err)
	}
	if next != nil {
		t.Fatalf("expected no pending items after clear, got %#v", next)
	}
}

func TestListSupportsStatusFilter(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	a := testsupport.EnqueueVideo(t, store, "aaaaaaaaaaa")
	b := testsupport.EnqueueVideo(t, store, "bbbbbbbbbbb")
	c := testsupport.EnqueueVideo(t, store, "ccccccccccc")

	b.Status = queue.StatusPolling
	if err := store.Update(ctx, b); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	items, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	if items[0].ID != a.ID || items[1].ID != b.ID || items[2].ID != c.ID {
		t.Fatalf("expected queue order, got IDs %d,%d,%d", items[0].ID, items[1].ID, items[2].ID)
	}

	filtered, err := store.List(ctx, queue.StatusPolling)
	if err != nil {
		t.Fatalf("filtered list failed: %v", err)
	}
	if len(filtered) != 1 || filtered[0].ID != b.ID {
		t.Fatalf("unexpected filtered result: %#v", filtered)
	}
}

func TestInFlightLookup(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	item := testsupport.EnqueueVideo(t, store, "dQw4w9WgXcQ")

	inflight, err := store.InFlight(ctx)
	if err != nil {
		t.Fatalf("InFlight failed: %v", err)
	}
	if inflight != nil {
		t.Fatalf("expected no in-flight item, got %#v", inflight)
	}

	item.Status = queue.StatusSubmitting
	if err := store.Update(ctx, item); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	inflight, err = store.InFlight(ctx)
	if err != nil {
		t.Fatalf("InFlight failed: %v", err)
	}
	if inflight == nil || inflight.ID != item.ID {
		t.Fatalf("expected submitting item in flight, got %#v", inflight)
	}
}

func TestStatsAndHealth(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	testsupport.EnqueueVideo(t, store, "aaaaaaaaaaa")
	b := testsupport.EnqueueVideo(t, store, "bbbbbbbbbbb")
	b.Status = queue.StatusPolling
	if err := store.Update(ctx, b); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats[queue.StatusPending] != 1 || stats[queue.StatusPolling] != 1 {
		t.Fatalf("unexpected stats: %#v", stats)
	}

	health, err := store.Health(ctx)
	if err != nil {
		t.Fatalf("Health failed: %v", err)
	}
	if health.Total != 2 || health.Pending != 1 || health.InFlight != 1 {
		t.Fatalf("unexpected health summary: %#v", health)
	}
}

func TestCheckHealthReportsDiagnostics(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	testsupport.EnqueueVideo(t, store, "dQw4w9WgXcQ")

	health, err := store.CheckHealth(ctx)
	if err != nil {
		t.Fatalf("CheckHealth failed: %v", err)
	}
	if !health.DatabaseExists || !health.DatabaseReadable {
		t.Fatalf("expected database present and readable: %#v", health)
	}
	if len(health.MissingTables) != 0 {
		t.Fatalf("expected all tables present, missing %v", health.MissingTables)
	}
	if len(health.MissingColumns) != 0 {
		t.Fatalf("expected all columns present, missing %v", health.MissingColumns)
	}
	if !health.IntegrityCheck {
		t.Fatal("expected integrity check to pass")
	}
	if health.TotalItems != 1 {
		t.Fatalf("expected 1 item, got %d", health.TotalItems)
	}
}

func TestScheduleRoundTrip(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	sched := schedule.Schedule{
		VideoID:      "dQw4w9WgXcQ",
		CanonicalURL: media.CanonicalURL("dQw4w9WgXcQ"),
		Windows: []schedule.Window{
			{Start: 10, End: 15, Term: "frak"},
			{Start: 42.5, End: 43.75},
		},
	}
	if err := store.SaveSchedule(ctx, sched); err != nil {
		t.Fatalf("SaveSchedule failed: %v", err)
	}

	loaded, err := store.ScheduleFor(ctx, "dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("ScheduleFor failed: %v", err)
	}
	if loaded == nil || len(loaded.Windows) != 2 {
		t.Fatalf("unexpected loaded schedule: %#v", loaded)
	}
	if loaded.Windows[0] != sched.Windows[0] || loaded.Windows[1] != sched.Windows[1] {
		t.Fatalf("windows changed in storage: %#v", loaded.Windows)
	}
	if !loaded.AppliesTo(media.CanonicalURL("dQw4w9WgXcQ")) {
		t.Fatal("loaded schedule should apply to its canonical URL")
	}

	// Overwrite replaces the prior windows atomically.
	sched.Windows = []schedule.Window{{Start: 1, End: 2, Term: "smeg"}}
	if err := store.SaveSchedule(ctx, sched); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}
	loaded, err = store.ScheduleFor(ctx, "dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("ScheduleFor after overwrite failed: %v", err)
	}
	if len(loaded.Windows) != 1 || loaded.Windows[0].Term != "smeg" {
		t.Fatalf("expected replacement windows, got %#v", loaded.Windows)
	}

	count, err := store.ScheduleCount(ctx)
	if err != nil {
		t.Fatalf("ScheduleCount failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected one stored schedule, got %d", count)
	}

	missing, err := store.ScheduleFor(ctx, "aaaaaaaaaaa")
	if err != nil {
		t.Fatalf("ScheduleFor missing failed: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for unknown video, got %#v", missing)
	}

	removed, err := store.DeleteSchedule(ctx, "dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("DeleteSchedule failed: %v", err)
	}
	if !removed {
		t.Fatal("expected schedule to be deleted")
	}
}

func TestSaveScheduleValidates(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	bad := schedule.Schedule{
		VideoID:      "dQw4w9WgXcQ",
		CanonicalURL: media.CanonicalURL("dQw4w9WgXcQ"),
		Windows:      []schedule.Window{{Start: 5, End: 1}},
	}
	if err := store.SaveSchedule(context.Background(), bad); err == nil {
		t.Fatal("expected validation error for malformed window")
	}
}

func TestBanTermLifecycle(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	added, err := store.AddBanTerm(ctx, "  Frak  ")
	if err != nil {
		t.Fatalf("AddBanTerm failed: %v", err)
	}
	if !added {
		t.Fatal("expected term to be added")
	}

	dup, err := store.AddBanTerm(ctx, "frak")
	if err != nil {
		t.Fatalf("duplicate AddBanTerm failed: %v", err)
	}
	if dup {
		t.Fatal("case-insensitive duplicate should not be added")
	}

	if _, err := store.AddBanTerm(ctx, "smeg head"); err != nil {
		t.Fatalf("AddBanTerm phrase failed: %v", err)
	}

	terms, err := store.ListBanTerms(ctx)
	if err != nil {
		t.Fatalf("ListBanTerms failed: %v", err)
	}
	if len(terms) != 2 || terms[0] != "Frak" || terms[1] != "smeg head" {
		t.Fatalf("unexpected terms: %#v", terms)
	}

	removed, err := store.RemoveBanTerm(ctx, "FRAK")
	if err != nil {
		t.Fatalf("RemoveBanTerm failed: %v", err)
	}
	if !removed {
		t.Fatal("expected case-insensitive removal to succeed")
	}

	removed, err = store.RemoveBanTerm(ctx, "missing")
	if err != nil {
		t.Fatalf("RemoveBanTerm missing failed: %v", err)
	}
	if removed {
		t.Fatal("removing an absent term should report false")
	}
}

func TestProcessedListing(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	for _, id := range []string{"aaaaaaaaaaa", "bbbbbbbbbbb"} {
		item := testsupport.EnqueueVideo(t, store, id)
		if _, err := store.CompleteHead(ctx, item, true); err != nil {
			t.Fatalf("CompleteHead failed: %v", err)
		}
	}

	entries, err := store.ListProcessed(ctx, 0)
	if err != nil {
		t.Fatalf("ListProcessed failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 processed entries, got %d", len(entries))
	}
	for _, entry := range entries {
		if entry.CompletedAt.IsZero() {
			t.Fatalf("expected completion timestamp, got %#v", entry)
		}
	}

	limited, err := store.ListProcessed(ctx, 1)
	if err != nil {
		t.Fatalf("limited ListProcessed failed: %v", err)
	}
	if len(limited) != 1 {
		t.Fatalf("expected 1 entry with limit, got %d", len(limited))
	}

	cleared, err := store.ClearProcessed(ctx)
	if err != nil {
		t.Fatalf("ClearProcessed failed: %v", err)
	}
	if cleared != 2 {
		t.Fatalf("expected 2 cleared, got %d", cleared)
	}
}
