package processor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"bleep/internal/analysis"
	"bleep/internal/banlist"
	"bleep/internal/logging"
	"bleep/internal/queue"
	"bleep/internal/services"
	"bleep/internal/stage"
)

// submitHandler creates the remote analysis job for a pending item and
// records the job id so the later phases can find it.
type submitHandler struct {
	store   *queue.Store
	client  *analysis.Client
	tracker *jobTracker
	logger  *slog.Logger
}

func newSubmitHandler(store *queue.Store, client *analysis.Client, tracker *jobTracker, logger *slog.Logger) *submitHandler {
	return &submitHandler{
		store:   store,
		client:  client,
		tracker: tracker,
		logger:  logging.NewComponentLogger(logger, "submit"),
	}
}

func (h *submitHandler) Prepare(ctx context.Context, item *queue.Item) error {
	if item == nil {
		return services.Wrap(services.ErrValidation, "submit", "prepare", "queue item is nil", nil)
	}
	if strings.TrimSpace(item.SourceURL) == "" {
		return services.Wrap(services.ErrValidation, "submit", "prepare", "queue item has no source url", nil)
	}
	if strings.TrimSpace(item.VideoID) == "" {
		return services.Wrap(services.ErrValidation, "submit", "prepare", "queue item has no video id", nil)
	}
	item.SetProgress("Submitting for analysis")
	return nil
}

func (h *submitHandler) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, h.logger)

	userTerms, err := h.store.ListBanTerms(ctx)
	if err != nil {
		return fmt.Errorf("load ban terms: %w", err)
	}
	terms := banlist.Merge(userTerms)

	job, err := h.client.Submit(ctx, item.SourceURL, terms)
	if err != nil {
		return err
	}

	h.tracker.bind(item.ID, job.ID)
	item.SetProgress(fmt.Sprintf("Submitted as job %s", job.ID))
	logger.Info("analysis job created",
		logging.String(logging.FieldJobID, job.ID),
		logging.Int("ban_terms", len(terms)),
	)
	return nil
}

// HealthCheck probes the analysis service. Submit is the phase where a dead
// service first matters, so the reachability check lives here.
func (h *submitHandler) HealthCheck(ctx context.Context) stage.Health {
	const name = "submit"
	if h.client == nil {
		return stage.Unhealthy(name, "analysis client unavailable")
	}
	if err := h.client.Health(ctx); err != nil {
		return stage.Unhealthy(name, err.Error())
	}
	return stage.Healthy(name)
}
