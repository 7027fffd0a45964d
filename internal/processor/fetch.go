package processor

import (
	"context"
	"fmt"
	"log/slog"

	"bleep/internal/analysis"
	"bleep/internal/logging"
	"bleep/internal/queue"
	"bleep/internal/services"
	"bleep/internal/stage"
)

// fetchHandler downloads the finished mute schedule and stores it keyed by
// video id. Success here is the item's terminal transition.
type fetchHandler struct {
	store   *queue.Store
	client  *analysis.Client
	tracker *jobTracker
	logger  *slog.Logger
}

func newFetchHandler(store *queue.Store, client *analysis.Client, tracker *jobTracker, logger *slog.Logger) *fetchHandler {
	return &fetchHandler{
		store:   store,
		client:  client,
		tracker: tracker,
		logger:  logging.NewComponentLogger(logger, "fetch"),
	}
}

func (h *fetchHandler) Prepare(ctx context.Context, item *queue.Item) error {
	if item == nil {
		return services.Wrap(services.ErrValidation, "fetch", "prepare", "queue item is nil", nil)
	}
	if _, ok := h.tracker.get(item.ID); !ok {
		return services.Wrap(services.ErrValidation, "fetch", "prepare", "no remote job recorded for item", nil)
	}
	item.SetProgress("Fetching mute schedule")
	return nil
}

func (h *fetchHandler) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, h.logger)
	binding, ok := h.tracker.get(item.ID)
	if !ok {
		return services.Wrap(services.ErrValidation, "fetch", "execute", "no remote job recorded for item", nil)
	}

	result, err := h.client.FetchResult(ctx, binding.jobID)
	if err != nil {
		return err
	}

	sched := result.Schedule(item.VideoID)
	if err := h.store.SaveSchedule(ctx, sched); err != nil {
		return services.Wrap(services.ErrTransient, "queue", "save schedule", "failed to store mute schedule", err)
	}
	h.tracker.setWindows(item.ID, len(sched.Windows))

	item.SetProgress(fmt.Sprintf("Stored %d mute windows", len(sched.Windows)))
	logger.Info("mute schedule stored",
		logging.String(logging.FieldJobID, binding.jobID),
		logging.Int("windows", len(sched.Windows)),
		logging.Float64("muted_seconds", sched.TotalMutedSeconds()),
	)
	return nil
}

func (h *fetchHandler) HealthCheck(ctx context.Context) stage.Health {
	const name = "fetch"
	if h.client == nil {
		return stage.Unhealthy(name, "analysis client unavailable")
	}
	return stage.Healthy(name)
}
