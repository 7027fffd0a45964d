package processor

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"k8s.io/utils/clock"

	"bleep/internal/analysis"
	"bleep/internal/config"
	"bleep/internal/logging"
	"bleep/internal/notifications"
	"bleep/internal/queue"
)

// Engine coordinates queue processing through the registered phases.
type Engine struct {
	cfg      *config.Config
	store    *queue.Store
	client   *analysis.Client
	logger   *slog.Logger
	notifier notifications.Service
	clk      clock.WithTicker

	idleInterval time.Duration
	tracker      *jobTracker
	phases       []phase
	phaseByStart map[queue.Status]phase

	wake chan struct{}

	mu            sync.RWMutex
	running       bool
	cancel        context.CancelFunc
	wg            sync.WaitGroup
	lastErr       error
	inFlight      *queue.Item
	lastFailure   *FailureRecord
	lastCompleted *CompletionRecord

	queueActive  bool
	queueStart   time.Time
	runSucceeded int
	runFailed    int
}

// Option configures optional Engine behavior.
type Option func(*Engine)

// WithNotifier overrides the notification service (used in tests).
func WithNotifier(notifier notifications.Service) Option {
	return func(e *Engine) {
		if notifier != nil {
			e.notifier = notifier
		}
	}
}

// WithClock injects a clock so tests can drive poll and idle waits.
func WithClock(clk clock.WithTicker) Option {
	return func(e *Engine) {
		if clk != nil {
			e.clk = clk
		}
	}
}

// New constructs a processing engine bound to the store and analysis client.
func New(cfg *config.Config, store *queue.Store, client *analysis.Client, logger *slog.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = logging.NewNop()
	}
	engine := &Engine{
		cfg:          cfg,
		store:        store,
		client:       client,
		logger:       logging.NewComponentLogger(logger, "processor"),
		clk:          clock.RealClock{},
		idleInterval: time.Duration(cfg.Workflow.QueuePollInterval) * time.Second,
		tracker:      newJobTracker(),
		wake:         make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(engine)
	}
	if engine.notifier == nil {
		engine.notifier = notifications.NewService(cfg)
	}
	if engine.idleInterval <= 0 {
		engine.idleInterval = 5 * time.Second
	}

	pollInterval := time.Duration(cfg.Analysis.PollInterval) * time.Second
	if pollInterval <= 0 {
		pollInterval = analysis.DefaultPollInterval
	}

	engine.phases = []phase{
		{
			name:       "submit",
			handler:    newSubmitHandler(store, client, engine.tracker, engine.logger),
			start:      queue.StatusPending,
			processing: queue.StatusSubmitting,
			done:       queue.StatusPolling,
		},
		{
			name:       "poll",
			handler:    newPollHandler(store, client, engine.tracker, engine.clk, pollInterval, engine.logger),
			start:      queue.StatusPolling,
			processing: queue.StatusPolling,
			done:       queue.StatusFetching,
		},
		{
			name:       "fetch",
			handler:    newFetchHandler(store, client, engine.tracker, engine.logger),
			start:      queue.StatusFetching,
			processing: queue.StatusFetching,
			// Terminal: fetch success finalizes the item instead of
			// advancing to another status.
		},
	}
	engine.phaseByStart = make(map[queue.Status]phase, len(engine.phases))
	for _, ph := range engine.phases {
		engine.phaseByStart[ph.start] = ph
	}
	return engine
}

// Wake nudges the run loop after an enqueue. Safe from any goroutine; a
// pending nudge is never duplicated.
func (e *Engine) Wake() {
	select {
	case e.wake <- struct{}{}:
	default:
	}
}
