package session

import (
	"sync"
	"time"

	"k8s.io/utils/clock"

	"bleep/internal/media"
)

// Playback is a snapshot of the viewer's reported state.
type Playback struct {
	Video     media.Video
	Position  float64
	Playing   bool
	UpdatedAt time.Time
}

// Active reports whether a video is currently set.
func (p Playback) Active() bool {
	return p.Video.ID != ""
}

// PositionAt extrapolates the playback position to the supplied instant.
// While playing, time elapsed since the report advances the position; while
// paused the reported position stands. Reports never age backwards.
func (p Playback) PositionAt(now time.Time) float64 {
	if !p.Playing || p.UpdatedAt.IsZero() {
		return p.Position
	}
	elapsed := now.Sub(p.UpdatedAt).Seconds()
	if elapsed <= 0 {
		return p.Position
	}
	return p.Position + elapsed
}

// Tracker is a mutex-guarded holder for the current playback observation.
type Tracker struct {
	clk clock.PassiveClock

	mu      sync.Mutex
	current Playback
}

// NewTracker constructs a tracker. A nil clock falls back to the real one.
func NewTracker(clk clock.PassiveClock) *Tracker {
	if clk == nil {
		clk = clock.RealClock{}
	}
	return &Tracker{clk: clk}
}

// SetVideo switches the tracked video and resets position state. Setting the
// same video again only refreshes the timestamp.
func (t *Tracker) SetVideo(video media.Video) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.current.Video.ID == video.ID && video.ID != "" {
		t.current.Video = video
		t.current.UpdatedAt = t.clk.Now()
		return
	}
	t.current = Playback{Video: video, UpdatedAt: t.clk.Now()}
}

// Clear forgets the current video and its position.
func (t *Tracker) Clear() {
	t.mu.Lock()
	t.current = Playback{}
	t.mu.Unlock()
}

// SetPosition records a playback position report. Reports arriving before
// any video is set are dropped; a position report for an unknown video is
// meaningless.
func (t *Tracker) SetPosition(seconds float64, playing bool) {
	if seconds < 0 {
		seconds = 0
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.current.Video.ID == "" {
		return
	}
	t.current.Position = seconds
	t.current.Playing = playing
	t.current.UpdatedAt = t.clk.Now()
}

// Snapshot returns a copy of the current observation.
func (t *Tracker) Snapshot() Playback {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}

// PositionAt returns the extrapolated position for the supplied instant.
func (t *Tracker) PositionAt(now time.Time) float64 {
	return t.Snapshot().PositionAt(now)
}
