package processor

import (
	"context"
	"errors"

	"bleep/internal/logging"
	"bleep/internal/queue"
)

// Start begins background processing. Items interrupted by a previous run
// are reset to pending before the loop starts.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return errors.New("processor already running")
	}
	runCtx, cancel := context.WithCancel(ctx)
	e.cancel = cancel
	e.running = true
	e.wg.Add(1)
	e.mu.Unlock()

	if count, err := e.store.ResetInFlight(runCtx); err != nil {
		e.logger.Warn("failed to reset interrupted items; they will fail phase preparation instead",
			logging.Error(err),
			logging.String(logging.FieldEventType, "restart_reset_failed"),
			logging.String(logging.FieldErrorHint, "check queue database access"),
		)
	} else if count > 0 {
		e.logger.Info("reset interrupted queue items",
			logging.Int64("count", count),
			logging.String(logging.FieldEventType, "restart_reset"),
		)
	}

	go e.run(runCtx)
	return nil
}

// Stop terminates background processing and waits for the loop to exit.
func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return
	}
	cancel := e.cancel
	e.running = false
	e.cancel = nil
	e.mu.Unlock()

	cancel()
	e.wg.Wait()
}

func (e *Engine) run(ctx context.Context) {
	defer e.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		item, err := e.nextWorkItem(ctx)
		if err != nil {
			e.handleQueueError(ctx, err)
			continue
		}
		if item == nil {
			e.waitForWork(ctx)
			continue
		}

		if err := e.processItem(ctx, item); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
		}
	}
}

// nextWorkItem resumes the in-flight item if one exists, otherwise takes the
// oldest pending item. At most one item is ever in flight.
func (e *Engine) nextWorkItem(ctx context.Context) (*queue.Item, error) {
	item, err := e.store.InFlight(ctx)
	if err != nil || item != nil {
		return item, err
	}
	return e.store.NextPending(ctx)
}

func (e *Engine) handleQueueError(ctx context.Context, err error) {
	e.setLastError(err)
	e.logger.Error("failed to fetch next queue item",
		logging.Error(err),
		logging.String(logging.FieldEventType, "queue_fetch_failed"),
		logging.String(logging.FieldErrorHint, "check queue database access"),
	)
	e.waitForWork(ctx)
}

// waitForWork blocks until an enqueue nudge, the idle re-check interval, or
// shutdown.
func (e *Engine) waitForWork(ctx context.Context) {
	timer := e.clk.NewTimer(e.idleInterval)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-e.wake:
	case <-timer.C():
	}
}
