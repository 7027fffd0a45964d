package mute

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"k8s.io/utils/clock"

	"bleep/internal/config"
	"bleep/internal/logging"
	"bleep/internal/match"
	"bleep/internal/media"
	"bleep/internal/queue"
	"bleep/internal/schedule"
	"bleep/internal/session"
)

const (
	defaultCaptionHold  = 500 * time.Millisecond
	defaultScheduleTick = 200 * time.Millisecond
)

// CaptionResult reports one caption observation.
type CaptionResult struct {
	Matched      bool
	CensoredText string
	Terms        []string
	Muted        bool
}

// Snapshot summarizes coordinator state for status surfaces.
type Snapshot struct {
	Muted           bool
	CaptionActive   bool
	ScheduleActive  bool
	OverrideActive  bool
	VideoID         string
	CanonicalURL    string
	Position        float64
	Playing         bool
	ScheduleLoaded  bool
	ScheduleWindows int
	BanTermCount    int
}

// Coordinator owns the live mute reasons. Caption matches arm a fixed hold;
// a ticker compares the playback position against the current video's
// stored mute windows. Both reasons meet in the Gate, which drives the
// actuator.
type Coordinator struct {
	cfg    *config.Config
	store  *queue.Store
	gate   *Gate
	sess   *session.Tracker
	logger *slog.Logger
	clk    clock.WithTickerAndDelayedExecution

	holdDuration time.Duration
	tickInterval time.Duration
	onTransition TransitionFunc

	mu           sync.Mutex
	matcher      *match.Matcher
	video        media.Video
	sched        *schedule.Schedule
	holdTimer    clock.Timer
	holdGen      uint64
	lastInWindow bool
	running      bool
	cancel       context.CancelFunc
	wg           sync.WaitGroup
}

// Option configures optional Coordinator behavior.
type Option func(*Coordinator)

// WithClock injects a clock so tests can drive the hold timer and ticker.
func WithClock(clk clock.WithTickerAndDelayedExecution) Option {
	return func(c *Coordinator) {
		if clk != nil {
			c.clk = clk
		}
	}
}

// WithTransition registers an observer for applied mute transitions.
func WithTransition(fn TransitionFunc) Option {
	return func(c *Coordinator) {
		c.onTransition = fn
	}
}

// NewCoordinator constructs the coordinator. The matcher may be nil (never
// matches) and is swappable later via SetMatcher.
func NewCoordinator(cfg *config.Config, store *queue.Store, matcher *match.Matcher, actuator Actuator, logger *slog.Logger, opts ...Option) *Coordinator {
	if logger == nil {
		logger = logging.NewNop()
	}
	c := &Coordinator{
		cfg:          cfg,
		store:        store,
		matcher:      matcher,
		logger:       logging.NewComponentLogger(logger, "coordinator"),
		clk:          clock.RealClock{},
		holdDuration: time.Duration(cfg.Mute.CaptionHoldMS) * time.Millisecond,
		tickInterval: time.Duration(cfg.Mute.ScheduleTickMS) * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.holdDuration <= 0 {
		c.holdDuration = defaultCaptionHold
	}
	if c.tickInterval <= 0 {
		c.tickInterval = defaultScheduleTick
	}
	c.sess = session.NewTracker(c.clk)
	c.gate = NewGate(actuator, logger, c.onTransition)
	return c
}

// Session exposes the playback tracker for read surfaces.
func (c *Coordinator) Session() *session.Tracker {
	return c.sess
}

// Start launches the schedule ticker.
func (c *Coordinator) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return errors.New("mute coordinator already running")
	}
	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.running = true
	c.wg.Add(1)
	c.mu.Unlock()

	go c.run(runCtx)
	return nil
}

// Stop halts the ticker and disarms the caption hold.
func (c *Coordinator) Stop() {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return
	}
	cancel := c.cancel
	c.running = false
	c.cancel = nil
	c.mu.Unlock()

	cancel()
	c.wg.Wait()

	c.mu.Lock()
	c.disarmHoldLocked()
	c.mu.Unlock()
}

func (c *Coordinator) run(ctx context.Context) {
	defer c.wg.Done()
	ticker := c.clk.NewTicker(c.tickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
			c.evaluateSchedule(ctx)
		}
	}
}

// SetVideo switches to a new video: reasons reset, the hold disarms, and
// the stored schedule loads when its canonical URL matches the video's.
// Setting the same video again only refreshes the session timestamp.
func (c *Coordinator) SetVideo(ctx context.Context, video media.Video) {
	c.mu.Lock()
	defer c.mu.Unlock()
	same := video.ID != "" && c.video.ID == video.ID
	c.video = video
	c.sess.SetVideo(video)
	if same {
		return
	}

	c.disarmHoldLocked()
	c.gate.Set(ctx, ReasonCaption, false)
	c.gate.Set(ctx, ReasonSchedule, false)
	c.sched = nil
	c.lastInWindow = false
	if video.ID == "" {
		return
	}
	c.loadScheduleLocked(ctx)
}

// ClearVideo forgets the current video and resets reasons.
func (c *Coordinator) ClearVideo(ctx context.Context) {
	c.SetVideo(ctx, media.Video{})
}

// RefreshSchedule re-reads the stored schedule for the current video, used
// when processing finishes while the video is already being watched.
func (c *Coordinator) RefreshSchedule(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.video.ID == "" {
		return
	}
	c.sched = nil
	c.loadScheduleLocked(ctx)
}

// UpdatePosition records a playback report. Window evaluation happens on
// the next tick.
func (c *Coordinator) UpdatePosition(seconds float64, playing bool) {
	c.sess.SetPosition(seconds, playing)
}

// ObserveCaption runs the matcher over newly observed caption text. A match
// arms (or re-arms) the caption hold and returns the censored rendering.
func (c *Coordinator) ObserveCaption(ctx context.Context, text string) CaptionResult {
	c.mu.Lock()
	defer c.mu.Unlock()

	res := c.matcher.Match(text)
	out := CaptionResult{Matched: res.Matched, CensoredText: res.CensoredText, Terms: res.Terms}
	if res.Matched {
		c.logger.Debug("caption matched banned terms", logging.Any("terms", res.Terms))
		c.armHoldLocked(ctx)
	}
	out.Muted = c.gate.Muted()
	return out
}

// SetMatcher swaps the compiled term set. Reason state is untouched; the
// new terms apply from the next caption observation.
func (c *Coordinator) SetMatcher(matcher *match.Matcher) {
	c.mu.Lock()
	c.matcher = matcher
	c.mu.Unlock()
}

// Toggle flips the mute override and reports the new state.
func (c *Coordinator) Toggle(ctx context.Context) bool {
	return c.gate.Toggle(ctx)
}

// Muted returns the applied mute state.
func (c *Coordinator) Muted() bool {
	return c.gate.Muted()
}

// Snapshot assembles the status view of the mute surface.
func (c *Coordinator) Snapshot() Snapshot {
	c.mu.Lock()
	video := c.video
	sched := c.sched
	matcher := c.matcher
	c.mu.Unlock()

	playback := c.sess.Snapshot()
	states := c.gate.ReasonStates()
	snap := Snapshot{
		Muted:          c.gate.Muted(),
		CaptionActive:  states[ReasonCaption],
		ScheduleActive: states[ReasonSchedule],
		OverrideActive: c.gate.OverrideActive(),
		VideoID:        video.ID,
		CanonicalURL:   video.CanonicalURL,
		Position:       playback.PositionAt(c.clk.Now()),
		Playing:        playback.Playing,
		BanTermCount:   matcher.TermCount(),
	}
	if sched != nil {
		snap.ScheduleLoaded = true
		snap.ScheduleWindows = len(sched.Windows)
	}
	return snap
}

// evaluateSchedule pushes the in-window boolean through the gate on change
// only. Holding the lock across the gate call keeps ticks and video
// switches from interleaving a stale update.
func (c *Coordinator) evaluateSchedule(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	inWindow := false
	var active schedule.Window
	if c.sched != nil && c.video.ID != "" {
		pos := c.sess.PositionAt(c.clk.Now())
		if w, ok := c.sched.ActiveAt(pos); ok {
			inWindow = true
			active = w
		}
	}
	if inWindow == c.lastInWindow {
		return
	}
	c.lastInWindow = inWindow
	if inWindow {
		c.logger.Debug("entered mute window",
			logging.Float64("window_start", active.Start),
			logging.Float64("window_end", active.End),
			logging.String("term", active.Term),
		)
	} else {
		c.logger.Debug("left mute window")
	}
	c.gate.Set(ctx, ReasonSchedule, inWindow)
}

// armHoldLocked starts or extends the caption hold. Each arm invalidates
// earlier expiries through the generation counter, so a timer that fired
// just before a re-arm cannot cut the new hold short.
func (c *Coordinator) armHoldLocked(ctx context.Context) {
	if c.holdTimer != nil {
		c.holdTimer.Stop()
	}
	c.holdGen++
	gen := c.holdGen
	// Expiry hops to a fresh goroutine: AfterFunc callbacks can run under
	// the clock's internal lock, which must never nest into c.mu.
	c.holdTimer = c.clk.AfterFunc(c.holdDuration, func() {
		go c.holdExpired(gen)
	})
	c.gate.Set(ctx, ReasonCaption, true)
}

func (c *Coordinator) holdExpired(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.holdGen {
		return
	}
	c.gate.Set(context.Background(), ReasonCaption, false)
}

func (c *Coordinator) disarmHoldLocked() {
	if c.holdTimer != nil {
		c.holdTimer.Stop()
	}
	c.holdGen++
}

func (c *Coordinator) loadScheduleLocked(ctx context.Context) {
	stored, err := c.store.ScheduleFor(ctx, c.video.ID)
	if err != nil {
		c.logger.Warn("failed to load mute schedule",
			logging.Error(err),
			logging.String(logging.FieldVideoID, c.video.ID),
		)
		return
	}
	if stored == nil {
		c.logger.Debug("no stored mute schedule", logging.String(logging.FieldVideoID, c.video.ID))
		return
	}
	if !stored.AppliesTo(c.video.CanonicalURL) {
		c.logger.Debug("stored schedule does not match current video url; ignoring",
			logging.String(logging.FieldVideoID, c.video.ID),
			logging.String("stored_url", stored.CanonicalURL),
			logging.String("current_url", c.video.CanonicalURL),
		)
		return
	}
	c.sched = stored
	c.logger.Info("mute schedule active",
		logging.String(logging.FieldVideoID, c.video.ID),
		logging.Int("windows", len(stored.Windows)),
		logging.Float64("muted_seconds", stored.TotalMutedSeconds()),
	)
}
