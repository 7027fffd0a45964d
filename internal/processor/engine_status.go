package processor

import (
	"context"
	"time"

	"bleep/internal/logging"
	"bleep/internal/queue"
	"bleep/internal/stage"
)

// FailureRecord remembers the most recent dropped item for status output.
type FailureRecord struct {
	VideoID string
	Phase   string
	Message string
	At      time.Time
}

// CompletionRecord remembers the most recent successful video.
type CompletionRecord struct {
	VideoID string
	At      time.Time
}

// StatusSummary represents lightweight engine diagnostics.
type StatusSummary struct {
	Running       bool
	InFlight      *queue.Item
	LastError     string
	LastFailure   *FailureRecord
	LastCompleted *CompletionRecord
	QueueStats    map[queue.Status]int
	PhaseHealth   map[string]stage.Health
}

// Status returns the latest engine information.
func (e *Engine) Status(ctx context.Context) StatusSummary {
	e.mu.RLock()
	summary := StatusSummary{Running: e.running}
	if e.lastErr != nil {
		summary.LastError = e.lastErr.Error()
	}
	if e.inFlight != nil {
		copied := *e.inFlight
		summary.InFlight = &copied
	}
	if e.lastFailure != nil {
		copied := *e.lastFailure
		summary.LastFailure = &copied
	}
	if e.lastCompleted != nil {
		copied := *e.lastCompleted
		summary.LastCompleted = &copied
	}
	phases := e.phases
	e.mu.RUnlock()

	stats, err := e.store.Stats(ctx)
	if err != nil {
		e.logger.Warn("failed to read queue stats", logging.Error(err))
	}
	summary.QueueStats = stats

	health := make(map[string]stage.Health, len(phases))
	for _, ph := range phases {
		if ph.handler == nil {
			continue
		}
		health[ph.name] = ph.handler.HealthCheck(ctx)
	}
	summary.PhaseHealth = health
	return summary
}

func (e *Engine) setLastError(err error) {
	e.mu.Lock()
	e.lastErr = err
	e.mu.Unlock()
}

func (e *Engine) setInFlightItem(item *queue.Item) {
	e.mu.Lock()
	if item != nil {
		copied := *item
		e.inFlight = &copied
	} else {
		e.inFlight = nil
	}
	e.mu.Unlock()
}

func (e *Engine) recordCompletion(videoID string) {
	e.mu.Lock()
	e.lastCompleted = &CompletionRecord{VideoID: videoID, At: e.clk.Now()}
	e.runSucceeded++
	e.mu.Unlock()
}

func (e *Engine) recordFailure(videoID, phaseName, message string) {
	e.mu.Lock()
	e.lastFailure = &FailureRecord{
		VideoID: videoID,
		Phase:   phaseName,
		Message: message,
		At:      e.clk.Now(),
	}
	e.runFailed++
	e.mu.Unlock()
}
