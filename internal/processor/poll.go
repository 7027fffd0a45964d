package processor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"k8s.io/utils/clock"

	"bleep/internal/analysis"
	"bleep/internal/logging"
	"bleep/internal/queue"
	"bleep/internal/services"
	"bleep/internal/stage"
)

// pollHandler watches a remote analysis job until it reaches a terminal
// state. Intermediate states surface as queue progress messages so status
// output tracks the remote pipeline.
type pollHandler struct {
	store    *queue.Store
	client   *analysis.Client
	tracker  *jobTracker
	clk      clock.WithTicker
	interval time.Duration
	logger   *slog.Logger
}

func newPollHandler(store *queue.Store, client *analysis.Client, tracker *jobTracker, clk clock.WithTicker, interval time.Duration, logger *slog.Logger) *pollHandler {
	if interval <= 0 {
		interval = analysis.DefaultPollInterval
	}
	return &pollHandler{
		store:    store,
		client:   client,
		tracker:  tracker,
		clk:      clk,
		interval: interval,
		logger:   logging.NewComponentLogger(logger, "poll"),
	}
}

func (h *pollHandler) Prepare(ctx context.Context, item *queue.Item) error {
	if item == nil {
		return services.Wrap(services.ErrValidation, "poll", "prepare", "queue item is nil", nil)
	}
	if _, ok := h.tracker.get(item.ID); !ok {
		return services.Wrap(services.ErrValidation, "poll", "prepare", "no remote job recorded for item", nil)
	}
	item.SetProgress("Waiting for analysis")
	return nil
}

func (h *pollHandler) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, h.logger)
	binding, ok := h.tracker.get(item.ID)
	if !ok {
		return services.Wrap(services.ErrValidation, "poll", "execute", "no remote job recorded for item", nil)
	}

	sampler := logging.NewProgressSampler(-1)
	for {
		job, err := h.client.Poll(ctx, binding.jobID)
		if err != nil {
			return err
		}
		h.tracker.setState(item.ID, job.State)

		switch job.State {
		case analysis.StateError:
			return services.Wrap(services.ErrTransient, "analysis", "poll", "analysis service reported failure", nil)
		case analysis.StateDone:
			item.SetProgress("Analysis complete")
			logger.Info("analysis job finished", logging.String(logging.FieldJobID, binding.jobID))
			return nil
		}

		h.noteProgress(ctx, logger, sampler, item, job.State)
		if err := h.wait(ctx); err != nil {
			return err
		}
	}
}

// noteProgress persists the remote state as the item's progress message so
// status readers see it without waiting for the phase to finish.
func (h *pollHandler) noteProgress(ctx context.Context, logger *slog.Logger, sampler *logging.ProgressSampler, item *queue.Item, state analysis.JobState) {
	message := fmt.Sprintf("Analysis %s", state)
	if message != item.ProgressMessage {
		if err := h.store.UpdateProgress(ctx, item.ID, message); err != nil {
			logger.Warn("failed to persist poll progress", logging.Error(err))
		} else {
			item.SetProgress(message)
		}
	}
	if sampler.ShouldLog(-1, string(state), "") {
		logger.Info("analysis in progress", logging.String(logging.FieldRemoteStatus, string(state)))
	}
}

func (h *pollHandler) wait(ctx context.Context) error {
	timer := h.clk.NewTimer(h.interval)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C():
		return nil
	}
}

func (h *pollHandler) HealthCheck(ctx context.Context) stage.Health {
	const name = "poll"
	if h.client == nil {
		return stage.Unhealthy(name, "analysis client unavailable")
	}
	return stage.Healthy(name)
}
