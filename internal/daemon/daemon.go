package daemon

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync/atomic"

	"log/slog"

	"github.com/gofrs/flock"

	"bleep/internal/banlist"
	"bleep/internal/config"
	"bleep/internal/logging"
	"bleep/internal/match"
	"bleep/internal/mute"
	"bleep/internal/notifications"
	"bleep/internal/preflight"
	"bleep/internal/processor"
	"bleep/internal/queue"
	"bleep/internal/session"
)

// Daemon coordinates the background services and enforces single-instance execution.
type Daemon struct {
	cfg         *config.Config
	logger      *slog.Logger
	store       *queue.Store
	engine      *processor.Engine
	coordinator *mute.Coordinator
	notifier    notifications.Service

	logPath string
	logHub  *logging.StreamHub
	archive *logging.EventArchive

	lockPath string
	lock     *flock.Flock

	api *apiServer

	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	PID          int
	Engine       processor.StatusSummary
	Mute         mute.Snapshot
	Session      session.Playback
	QueueDBPath  string
	LockFilePath string
	SocketPath   string
	LogPath      string
	Checks       []preflight.Result
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, store *queue.Store, logger *slog.Logger, engine *processor.Engine, coordinator *mute.Coordinator, logPath string, hub *logging.StreamHub, archive *logging.EventArchive, notifier notifications.Service) (*Daemon, error) {
	if cfg == nil || store == nil || engine == nil || coordinator == nil {
		return nil, errors.New("daemon requires config, store, engine, and mute coordinator")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	if notifier == nil {
		notifier = notifications.NewService(cfg)
	}

	lockPath := cfg.LockPath()
	d := &Daemon{
		cfg:         cfg,
		logger:      logger,
		store:       store,
		engine:      engine,
		coordinator: coordinator,
		notifier:    notifier,
		logPath:     logPath,
		logHub:      hub,
		archive:     archive,
		lockPath:    lockPath,
		lock:        flock.New(lockPath),
	}
	api, err := newAPIServer(cfg, d, logger)
	if err != nil {
		return nil, err
	}
	d.api = api
	return d, nil
}

// Start acquires the instance lock and launches the coordinator, the queue
// engine, and the HTTP API.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another bleep daemon instance is already running")
	}

	d.ctx, d.cancel = context.WithCancel(ctx)

	if err := d.RefreshMatcher(d.ctx); err != nil {
		d.logger.Warn("initial ban term load failed; captions match embedded defaults only",
			logging.Error(err),
			logging.String(logging.FieldEventType, "matcher_rebuild_failed"))
	}

	if err := d.coordinator.Start(d.ctx); err != nil {
		d.releaseStart()
		return fmt.Errorf("start mute coordinator: %w", err)
	}
	if err := d.engine.Start(d.ctx); err != nil {
		d.coordinator.Stop()
		d.releaseStart()
		return fmt.Errorf("start queue engine: %w", err)
	}
	if err := d.api.start(d.ctx); err != nil {
		d.engine.Stop()
		d.coordinator.Stop()
		d.releaseStart()
		return err
	}

	d.running.Store(true)
	d.logger.Info("bleep daemon started",
		logging.String("lock", d.lockPath),
		logging.String(logging.FieldEventType, "daemon_start"))
	if err := d.notifier.Publish(d.ctx, notifications.EventDaemonStarted, nil); err != nil {
		d.logger.Debug("daemon start notification failed", logging.Error(err))
	}
	return nil
}

func (d *Daemon) releaseStart() {
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.ctx = nil
	_ = d.lock.Unlock()
}

// Stop stops background processing and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if err := d.notifier.Publish(context.Background(), notifications.EventDaemonStopped, nil); err != nil {
		d.logger.Debug("daemon stop notification failed", logging.Error(err))
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.api.stop()
	d.engine.Stop()
	d.coordinator.Stop()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.ctx = nil
	d.running.Store(false)
	d.logger.Info("bleep daemon stopped",
		logging.String(logging.FieldEventType, "daemon_stop"))
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Status returns the current daemon status.
func (d *Daemon) Status(ctx context.Context) Status {
	return Status{
		Running:      d.running.Load(),
		PID:          os.Getpid(),
		Engine:       d.engine.Status(ctx),
		Mute:         d.coordinator.Snapshot(),
		Session:      d.coordinator.Session().Snapshot(),
		QueueDBPath:  d.cfg.DatabasePath(),
		LockFilePath: d.lockPath,
		SocketPath:   d.cfg.SocketPath(),
		LogPath:      d.logPath,
		Checks:       preflight.LocalChecks(d.cfg),
	}
}

// RefreshMatcher rebuilds the caption matcher from the embedded defaults,
// configured extras, and stored ban terms, then swaps it into the
// coordinator.
func (d *Daemon) RefreshMatcher(ctx context.Context) error {
	stored, err := d.store.ListBanTerms(ctx)
	if err != nil {
		return fmt.Errorf("load ban terms: %w", err)
	}
	terms := banlist.Merge(append(stored, d.cfg.Banlist.ExtraTerms...))
	matcher, err := match.Compile(terms, d.cfg.Mute.Placeholder)
	if err != nil {
		return fmt.Errorf("compile matcher: %w", err)
	}
	d.coordinator.SetMatcher(matcher)
	d.logger.Debug("caption matcher rebuilt", logging.Int("terms", matcher.TermCount()))
	return nil
}

// LogPath returns the path to the daemon log file.
func (d *Daemon) LogPath() string {
	return d.logPath
}

// LogStream exposes the in-memory log hub for live tailing.
func (d *Daemon) LogStream() *logging.StreamHub {
	return d.logHub
}

// LogArchive exposes the persisted log event archive.
func (d *Daemon) LogArchive() *logging.EventArchive {
	return d.archive
}
