package processor

import (
	"context"
	"strings"

	"bleep/internal/logging"
	"bleep/internal/notifications"
	"bleep/internal/queue"
	"bleep/internal/services"
)

// failItem drops the item after a phase failure. The queue advances; the
// failure survives only in logs, the status surface, and notifications.
func (e *Engine) failItem(ctx context.Context, phaseName string, item *queue.Item, failErr error) {
	logger := logging.WithContext(ctx, e.logger)
	message := failureMessage(phaseName, failErr)

	attrs := []logging.Attr{
		logging.String("error_message", message),
		logging.String(logging.FieldFailureKind, services.FailureKind(failErr)),
		logging.Alert("phase_failure"),
		logging.String(logging.FieldEventType, "phase_failure"),
		logging.Error(failErr),
	}
	logger.Error("phase failed", logging.Args(attrs...)...)

	e.setLastError(failErr)
	e.recordFailure(item.VideoID, phaseName, message)
	e.publish(ctx, notifications.EventVideoFailed, notifications.Payload{
		"video_id": item.VideoID,
		"phase":    phaseName,
		"error":    failErr,
	})

	e.finalizeItem(ctx, logger, item, false)
}

func failureMessage(phaseName string, failErr error) string {
	if failErr == nil {
		if phaseName != "" {
			return phaseName + " failed without error detail"
		}
		return "processing failed without error detail"
	}
	message := strings.TrimSpace(failErr.Error())
	if message == "" {
		message = phaseName + " failed"
	}
	return message
}
