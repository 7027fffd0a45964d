package mute

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"bleep/internal/logging"
)

// Reason names one contributor to the mute decision.
type Reason string

const (
	ReasonCaption  Reason = "caption"
	ReasonSchedule Reason = "schedule"
)

// Actuator applies the mute decision to the playback surface.
type Actuator interface {
	SetMuted(ctx context.Context, muted bool) error
}

// ActuatorFunc adapts a function to the Actuator interface.
type ActuatorFunc func(ctx context.Context, muted bool) error

func (f ActuatorFunc) SetMuted(ctx context.Context, muted bool) error {
	return f(ctx, muted)
}

// TransitionFunc observes each applied mute transition. It runs with the
// gate lock held and must not call back into the gate.
type TransitionFunc func(muted bool, reasons []Reason)

// Gate computes muted = OR(reasons) and is the sole writer of the actuator.
// Reason updates that do not change the union are absorbed silently; every
// change drives the actuator and emits exactly one transition.
type Gate struct {
	actuator     Actuator
	logger       *slog.Logger
	onTransition TransitionFunc

	mu      sync.Mutex
	reasons map[Reason]bool
	applied bool
}

// NewGate constructs a gate around the actuator. The transition callback
// may be nil.
func NewGate(actuator Actuator, logger *slog.Logger, onTransition TransitionFunc) *Gate {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Gate{
		actuator:     actuator,
		logger:       logging.NewComponentLogger(logger, "mute"),
		onTransition: onTransition,
		reasons:      make(map[Reason]bool),
	}
}

// Set updates one reason and applies the recomputed union when it changed.
func (g *Gate) Set(ctx context.Context, reason Reason, active bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.reasons[reason] == active {
		return
	}
	g.reasons[reason] = active
	g.applyLocked(ctx, g.orLocked())
}

// Toggle inverts the actuator state regardless of reasons. Toggling to
// unmuted clears every reason so automatic evaluation does not instantly
// undo the override; toggling to muted leaves reasons untouched and holds
// until the next automatic transition. Returns the new state.
func (g *Gate) Toggle(ctx context.Context) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	target := !g.applied
	if !target {
		for reason := range g.reasons {
			g.reasons[reason] = false
		}
	}
	g.applyLocked(ctx, target)
	return g.applied
}

// Muted returns the currently applied state.
func (g *Gate) Muted() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.applied
}

// ActiveReasons lists the reasons currently set, sorted by name.
func (g *Gate) ActiveReasons() []Reason {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.activeLocked()
}

// OverrideActive reports whether the applied state is muted with no reason
// set, which only a manual toggle can produce.
func (g *Gate) OverrideActive() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.applied && !g.orLocked()
}

// ReasonStates returns a copy of every known reason flag.
func (g *Gate) ReasonStates() map[Reason]bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make(map[Reason]bool, len(g.reasons))
	for reason, active := range g.reasons {
		out[reason] = active
	}
	return out
}

func (g *Gate) orLocked() bool {
	for _, active := range g.reasons {
		if active {
			return true
		}
	}
	return false
}

func (g *Gate) activeLocked() []Reason {
	var active []Reason
	for reason, on := range g.reasons {
		if on {
			active = append(active, reason)
		}
	}
	sort.Slice(active, func(i, j int) bool { return active[i] < active[j] })
	return active
}

// applyLocked drives the actuator when the target differs from the applied
// state. The target becomes the applied state even when the actuator
// errors, so the next transition is computed against what was requested.
func (g *Gate) applyLocked(ctx context.Context, target bool) {
	if target == g.applied {
		return
	}
	g.applied = target
	reasons := g.activeLocked()

	if g.actuator != nil {
		if err := g.actuator.SetMuted(ctx, target); err != nil {
			g.logger.Warn("actuator rejected mute transition",
				logging.Error(err),
				logging.Bool("muted", target),
				logging.Alert("actuator_failure"),
			)
		}
	}
	g.logger.Info("mute state changed",
		logging.String(logging.FieldEventType, "mute_transition"),
		logging.Bool("muted", target),
		logging.Any("reasons", reasons),
	)
	if g.onTransition != nil {
		g.onTransition(target, reasons)
	}
}
