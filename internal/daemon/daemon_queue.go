package daemon

import (
	"context"
	"errors"

	"bleep/internal/logging"
	"bleep/internal/media"
	"bleep/internal/notifications"
	"bleep/internal/queue"
)

// EnqueueOutcome reports what happened to one submitted URL.
type EnqueueOutcome struct {
	SourceURL string
	VideoID   string
	Outcome   queue.EnqueueOutcome
	Item      *queue.Item
	Err       error
}

// EnqueueVideos validates and enqueues a batch of video URLs. Invalid
// entries are reported per-URL rather than failing the batch; the engine is
// woken once if anything was added.
func (d *Daemon) EnqueueVideos(ctx context.Context, urls []string) ([]EnqueueOutcome, error) {
	if d.store == nil {
		return nil, errors.New("queue store unavailable")
	}
	outcomes := make([]EnqueueOutcome, 0, len(urls))
	added := 0
	for _, raw := range urls {
		outcome := EnqueueOutcome{SourceURL: raw}
		video, err := media.Parse(raw)
		if err != nil {
			outcome.Err = err
			outcomes = append(outcomes, outcome)
			continue
		}
		outcome.VideoID = video.ID
		item, result, err := d.store.Enqueue(ctx, video.ID, video.CanonicalURL)
		if err != nil {
			outcome.Err = err
			outcomes = append(outcomes, outcome)
			continue
		}
		outcome.Outcome = result
		outcome.Item = item
		outcomes = append(outcomes, outcome)
		if result == queue.OutcomeAdded {
			added++
			d.logger.Info("video queued",
				logging.String(logging.FieldVideoID, video.ID),
				logging.String(logging.FieldEventType, "video_queued"))
		}
	}
	if added > 0 {
		d.engine.Wake()
	}
	return outcomes, nil
}

// ListQueue returns queue items filtered by optional statuses.
func (d *Daemon) ListQueue(ctx context.Context, statuses []queue.Status) ([]*queue.Item, error) {
	if d.store == nil {
		return nil, errors.New("queue store unavailable")
	}
	return d.store.List(ctx, statuses...)
}

// GetQueueItem fetches a single queue item by id.
func (d *Daemon) GetQueueItem(ctx context.Context, id int64) (*queue.Item, error) {
	if d.store == nil {
		return nil, errors.New("queue store unavailable")
	}
	return d.store.GetByID(ctx, id)
}

// ClearQueue removes pending queue items, sparing the in-flight head.
func (d *Daemon) ClearQueue(ctx context.Context) (int64, error) {
	if d.store == nil {
		return 0, errors.New("queue store unavailable")
	}
	return d.store.Clear(ctx)
}

// QueueStats returns per-status queue counts.
func (d *Daemon) QueueStats(ctx context.Context) (map[queue.Status]int, error) {
	if d.store == nil {
		return nil, errors.New("queue store unavailable")
	}
	return d.store.Stats(ctx)
}

// QueueHealth returns aggregate queue diagnostics.
func (d *Daemon) QueueHealth(ctx context.Context) (queue.HealthSummary, error) {
	if d.store == nil {
		return queue.HealthSummary{}, errors.New("queue store unavailable")
	}
	return d.store.Health(ctx)
}

// DatabaseHealth returns detailed database diagnostics.
func (d *Daemon) DatabaseHealth(ctx context.Context) (queue.DatabaseHealth, error) {
	if d.store == nil {
		return queue.DatabaseHealth{}, errors.New("queue store unavailable")
	}
	return d.store.CheckHealth(ctx)
}

// ListProcessed returns the most recent completed videos.
func (d *Daemon) ListProcessed(ctx context.Context, limit int) ([]queue.ProcessedEntry, int, error) {
	if d.store == nil {
		return nil, 0, errors.New("queue store unavailable")
	}
	entries, err := d.store.ListProcessed(ctx, limit)
	if err != nil {
		return nil, 0, err
	}
	total, err := d.store.ProcessedCount(ctx)
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// ClearProcessed forgets completion history, allowing videos to be
// reprocessed.
func (d *Daemon) ClearProcessed(ctx context.Context) (int64, error) {
	if d.store == nil {
		return 0, errors.New("queue store unavailable")
	}
	return d.store.ClearProcessed(ctx)
}

// TestNotification sends a delivery probe using the current configuration.
func (d *Daemon) TestNotification(ctx context.Context) (bool, string, error) {
	if d.cfg == nil {
		return false, "configuration unavailable", errors.New("configuration unavailable")
	}
	if d.cfg.Notifications.NtfyTopic == "" {
		return false, "ntfy topic not configured", nil
	}
	if err := d.notifier.Publish(ctx, notifications.EventTest, nil); err != nil {
		return false, "failed to send notification", err
	}
	return true, "test notification sent", nil
}
