package processor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"bleep/internal/logging"
	"bleep/internal/notifications"
	"bleep/internal/queue"
	"bleep/internal/services"
	"bleep/internal/stage"
)

// phase binds one handler to the queue statuses it owns.
type phase struct {
	name       string
	handler    stage.Handler
	start      queue.Status
	processing queue.Status
	done       queue.Status
}

func (e *Engine) phaseForStatus(status queue.Status) (phase, bool) {
	ph, ok := e.phaseByStart[status]
	return ph, ok
}

func (e *Engine) processItem(ctx context.Context, item *queue.Item) error {
	ph, ok := e.phaseForStatus(item.Status)
	if !ok {
		e.logger.Warn("no phase configured for status",
			logging.String("status", string(item.Status)),
			logging.Int64(logging.FieldItemID, item.ID),
		)
		e.waitForWork(ctx)
		return nil
	}

	requestID := uuid.NewString()
	phaseCtx := withPhaseContext(ctx, ph.name, item, requestID)
	logger := e.phaseLogger(phaseCtx, ph)

	if err := e.transitionToProcessing(phaseCtx, ph, item); err != nil {
		logger.Error("failed to transition item to processing", logging.Error(err))
		e.setLastError(err)
		return err
	}

	return e.executePhase(phaseCtx, logger, ph, item)
}

func (e *Engine) executePhase(ctx context.Context, logger *slog.Logger, ph phase, item *queue.Item) error {
	phaseStart := time.Now()
	logger.Info("phase started",
		logging.String(logging.FieldEventType, "phase_start"),
		logging.String("source_url", strings.TrimSpace(item.SourceURL)),
	)

	if err := ph.handler.Prepare(ctx, item); err != nil {
		e.failItem(ctx, ph.name, item, err)
		return err
	}
	if err := e.store.Update(ctx, item); err != nil {
		wrapped := fmt.Errorf("persist phase preparation: %w", err)
		logger.Error("failed to persist phase preparation", logging.Error(wrapped))
		e.setLastError(wrapped)
		return wrapped
	}

	execErr := ph.handler.Execute(ctx, item)
	if execErr != nil {
		if errors.Is(execErr, context.Canceled) {
			logger.Debug("phase interrupted by shutdown")
			return execErr
		}
		e.failItem(ctx, ph.name, item, execErr)
		return execErr
	}

	if ph.done != "" {
		item.Status = ph.done
		if err := e.store.Update(ctx, item); err != nil {
			wrapped := fmt.Errorf("persist phase result: %w", err)
			logger.Error("failed to persist phase result", logging.Error(wrapped))
			e.setLastError(wrapped)
			return wrapped
		}
		e.setInFlightItem(item)
		logger.Info("phase completed",
			logging.String(logging.FieldEventType, "phase_complete"),
			logging.String("next_status", string(item.Status)),
			logging.Duration("phase_duration", time.Since(phaseStart)),
		)
		return nil
	}

	logger.Info("phase completed",
		logging.String(logging.FieldEventType, "phase_complete"),
		logging.String("progress_message", strings.TrimSpace(item.ProgressMessage)),
		logging.Duration("phase_duration", time.Since(phaseStart)),
	)
	e.finalizeItem(ctx, logger, item, true)
	return nil
}

func (e *Engine) transitionToProcessing(ctx context.Context, ph phase, item *queue.Item) error {
	if ph.processing == "" {
		return errors.New("processing status must not be empty")
	}
	item.Status = ph.processing
	if err := e.store.Update(ctx, item); err != nil {
		return fmt.Errorf("persist processing transition: %w", err)
	}
	e.setInFlightItem(item)
	e.noteQueueActive(ctx)
	return nil
}

// finalizeItem removes the item from the queue and, on success, records the
// video as processed. A head mismatch means something else mutated the
// queue; the store already fell back to removal by video id.
func (e *Engine) finalizeItem(ctx context.Context, logger *slog.Logger, item *queue.Item, success bool) {
	headMismatch, err := e.store.CompleteHead(ctx, item, success)
	if err != nil {
		logger.Error("failed to finalize queue item",
			logging.Error(err),
			logging.String(logging.FieldEventType, "completion_failed"),
			logging.String(logging.FieldErrorHint, "check queue database access"),
		)
		e.setLastError(err)
		return
	}
	if headMismatch {
		logger.Warn("finalized item was not the queue head; removed by video id",
			logging.Int64(logging.FieldItemID, item.ID),
			logging.String(logging.FieldVideoID, item.VideoID),
			logging.Alert("queue_head_mismatch"),
		)
	}

	binding, _ := e.tracker.take(item.ID)
	e.setInFlightItem(nil)

	if success {
		e.recordCompletion(item.VideoID)
		e.publish(ctx, notifications.EventVideoCompleted, notifications.Payload{
			"video_id": item.VideoID,
			"windows":  binding.windows,
		})
	}
	e.checkQueueCompletion(ctx)
}

func (e *Engine) noteQueueActive(ctx context.Context) {
	e.mu.Lock()
	if e.queueActive {
		e.mu.Unlock()
		return
	}
	e.queueActive = true
	e.queueStart = e.clk.Now()
	e.runSucceeded = 0
	e.runFailed = 0
	e.mu.Unlock()

	count := 0
	if health, err := e.store.Health(ctx); err == nil {
		count = health.Total
	} else if !errors.Is(err, context.Canceled) {
		e.logger.Warn("queue stats unavailable for start notification",
			logging.Error(err),
			logging.String(logging.FieldEventType, "queue_stats_failed"),
		)
	}
	e.publish(ctx, notifications.EventQueueStarted, notifications.Payload{"count": count})
}

func (e *Engine) checkQueueCompletion(ctx context.Context) {
	health, err := e.store.Health(ctx)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			e.logger.Warn("queue stats unavailable for completion notification",
				logging.Error(err),
				logging.String(logging.FieldEventType, "queue_stats_failed"),
			)
		}
		return
	}
	if health.Total > 0 {
		return
	}

	e.mu.Lock()
	if !e.queueActive {
		e.mu.Unlock()
		return
	}
	start := e.queueStart
	succeeded := e.runSucceeded
	failed := e.runFailed
	e.queueActive = false
	e.queueStart = time.Time{}
	e.mu.Unlock()

	duration := time.Duration(0)
	if !start.IsZero() {
		duration = e.clk.Since(start)
	}
	e.publish(ctx, notifications.EventQueueCompleted, notifications.Payload{
		"processed": succeeded,
		"failed":    failed,
		"duration":  duration,
	})
}

func (e *Engine) publish(ctx context.Context, event notifications.Event, payload notifications.Payload) {
	if e.notifier == nil {
		return
	}
	if err := e.notifier.Publish(ctx, event, payload); err != nil {
		if errors.Is(err, context.Canceled) {
			e.logger.Debug("daemon shutting down, notification skipped")
			return
		}
		e.logger.Debug("notification failed", logging.Error(err), logging.String("event", string(event)))
	}
}

func (e *Engine) phaseLogger(ctx context.Context, ph phase) *slog.Logger {
	logger := logging.WithContext(ctx, e.logger)
	if e.cfg != nil {
		if override := phaseOverrideLevel(e.cfg.Logging.StageOverrides, ph.name); override != "" {
			logger = logging.WithLevelOverride(logger, parsePhaseLevel(override))
		}
	}
	return logger
}

func phaseOverrideLevel(overrides map[string]string, name string) string {
	if len(overrides) == 0 {
		return ""
	}
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return ""
	}
	for key, value := range overrides {
		if strings.ToLower(strings.TrimSpace(key)) == name {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

func parsePhaseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func withPhaseContext(ctx context.Context, phaseName string, item *queue.Item, requestID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if item != nil {
		ctx = services.WithItemID(ctx, item.ID)
		ctx = services.WithVideoID(ctx, item.VideoID)
	}
	if phaseName != "" {
		ctx = services.WithStage(ctx, phaseName)
	}
	if requestID != "" {
		ctx = services.WithRequestID(ctx, requestID)
	}
	return ctx
}
