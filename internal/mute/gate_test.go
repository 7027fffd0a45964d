package mute_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"bleep/internal/logging"
	"bleep/internal/mute"
)

type recordingActuator struct {
	mu     sync.Mutex
	states []bool
	err    error
}

func (a *recordingActuator) SetMuted(ctx context.Context, muted bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.states = append(a.states, muted)
	return a.err
}

func (a *recordingActuator) history() []bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]bool(nil), a.states...)
}

type transitionLog struct {
	mu          sync.Mutex
	states      []bool
	reasonLists [][]mute.Reason
}

func (l *transitionLog) record(muted bool, reasons []mute.Reason) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.states = append(l.states, muted)
	l.reasonLists = append(l.reasonLists, append([]mute.Reason(nil), reasons...))
}

func (l *transitionLog) history() []bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]bool(nil), l.states...)
}

func TestGateMutedIsUnionOfReasons(t *testing.T) {
	ctx := context.Background()
	actuator := &recordingActuator{}
	gate := mute.NewGate(actuator, logging.NewNop(), nil)

	if gate.Muted() {
		t.Fatal("new gate must start unmuted")
	}

	gate.Set(ctx, mute.ReasonCaption, true)
	if !gate.Muted() {
		t.Fatal("expected muted after caption reason")
	}
	gate.Set(ctx, mute.ReasonSchedule, true)
	if !gate.Muted() {
		t.Fatal("expected muted with both reasons")
	}
	gate.Set(ctx, mute.ReasonCaption, false)
	if !gate.Muted() {
		t.Fatal("expected muted while schedule reason holds")
	}
	gate.Set(ctx, mute.ReasonSchedule, false)
	if gate.Muted() {
		t.Fatal("expected unmuted once all reasons cleared")
	}

	if got := actuator.history(); len(got) != 2 || !got[0] || got[1] {
		t.Fatalf("expected actuator to see [true false], got %v", got)
	}
}

func TestGateEmitsExactlyOneTransitionPerChange(t *testing.T) {
	ctx := context.Background()
	transitions := &transitionLog{}
	gate := mute.NewGate(&recordingActuator{}, logging.NewNop(), transitions.record)

	gate.Set(ctx, mute.ReasonCaption, true)
	gate.Set(ctx, mute.ReasonCaption, true)
	gate.Set(ctx, mute.ReasonSchedule, true)
	gate.Set(ctx, mute.ReasonSchedule, false)
	gate.Set(ctx, mute.ReasonCaption, false)
	gate.Set(ctx, mute.ReasonCaption, false)

	got := transitions.history()
	if len(got) != 2 || !got[0] || got[1] {
		t.Fatalf("expected transitions [true false], got %v", got)
	}
}

func TestGateNoOpSetDoesNotTouchActuator(t *testing.T) {
	ctx := context.Background()
	actuator := &recordingActuator{}
	gate := mute.NewGate(actuator, logging.NewNop(), nil)

	gate.Set(ctx, mute.ReasonCaption, false)
	gate.Set(ctx, mute.ReasonSchedule, false)
	if got := actuator.history(); len(got) != 0 {
		t.Fatalf("expected no actuator writes, got %v", got)
	}
}

func TestGateActiveReasonsSorted(t *testing.T) {
	ctx := context.Background()
	gate := mute.NewGate(&recordingActuator{}, logging.NewNop(), nil)

	gate.Set(ctx, mute.ReasonSchedule, true)
	gate.Set(ctx, mute.ReasonCaption, true)

	got := gate.ActiveReasons()
	if len(got) != 2 || got[0] != mute.ReasonCaption || got[1] != mute.ReasonSchedule {
		t.Fatalf("expected sorted reasons, got %v", got)
	}
}

func TestGateToggleToMutedHoldsUntilAutomaticTransition(t *testing.T) {
	ctx := context.Background()
	actuator := &recordingActuator{}
	gate := mute.NewGate(actuator, logging.NewNop(), nil)

	if !gate.Toggle(ctx) {
		t.Fatal("expected toggle from unmuted to report muted")
	}
	if !gate.OverrideActive() {
		t.Fatal("expected override active after manual mute")
	}

	// A reason turning on changes nothing (already muted, no transition),
	// but its turning off hands control back to the union.
	gate.Set(ctx, mute.ReasonCaption, true)
	if !gate.Muted() {
		t.Fatal("expected still muted")
	}
	if gate.OverrideActive() {
		t.Fatal("override should be superseded once a reason is active")
	}
	gate.Set(ctx, mute.ReasonCaption, false)
	if gate.Muted() {
		t.Fatal("expected automatic transition to unmute")
	}

	if got := actuator.history(); len(got) != 2 || !got[0] || got[1] {
		t.Fatalf("expected actuator writes [true false], got %v", got)
	}
}

func TestGateToggleToUnmutedClearsReasons(t *testing.T) {
	ctx := context.Background()
	gate := mute.NewGate(&recordingActuator{}, logging.NewNop(), nil)

	gate.Set(ctx, mute.ReasonSchedule, true)
	gate.Set(ctx, mute.ReasonCaption, true)
	if muted := gate.Toggle(ctx); muted {
		t.Fatal("expected toggle to unmute")
	}

	if got := gate.ActiveReasons(); len(got) != 0 {
		t.Fatalf("expected all reasons cleared, got %v", got)
	}
	states := gate.ReasonStates()
	if states[mute.ReasonCaption] || states[mute.ReasonSchedule] {
		t.Fatalf("expected reason flags false, got %v", states)
	}

	// With reasons cleared the next same-state update cannot re-mute.
	gate.Set(ctx, mute.ReasonSchedule, false)
	if gate.Muted() {
		t.Fatal("expected gate to stay unmuted")
	}
}

func TestGateActuatorErrorDoesNotBlockTransitions(t *testing.T) {
	ctx := context.Background()
	actuator := &recordingActuator{err: errors.New("player unreachable")}
	gate := mute.NewGate(actuator, logging.NewNop(), nil)

	gate.Set(ctx, mute.ReasonCaption, true)
	if !gate.Muted() {
		t.Fatal("expected applied state to track the request despite actuator error")
	}
	gate.Set(ctx, mute.ReasonCaption, false)
	if gate.Muted() {
		t.Fatal("expected unmute to proceed despite actuator error")
	}
	if got := actuator.history(); len(got) != 2 {
		t.Fatalf("expected both transitions attempted, got %v", got)
	}
}

func TestActuatorFunc(t *testing.T) {
	var got []bool
	fn := mute.ActuatorFunc(func(ctx context.Context, muted bool) error {
		got = append(got, muted)
		return nil
	})
	gate := mute.NewGate(fn, logging.NewNop(), nil)
	gate.Set(context.Background(), mute.ReasonCaption, true)
	if len(got) != 1 || !got[0] {
		t.Fatalf("expected forwarded transition, got %v", got)
	}
}
