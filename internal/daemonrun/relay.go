package daemonrun

import (
	"context"
	"sync/atomic"

	"bleep/internal/daemon"
	"bleep/internal/notifications"
)

// completionRelay forwards notifications while letting the daemon react to
// video completions. The engine is built before the daemon exists, so the
// daemon is bound late; events arriving before bind are forwarded untouched.
type completionRelay struct {
	next   notifications.Service
	daemon atomic.Pointer[daemon.Daemon]
}

func newCompletionRelay(next notifications.Service) *completionRelay {
	if next == nil {
		next = notifications.NewService(nil)
	}
	return &completionRelay{next: next}
}

func (r *completionRelay) bind(d *daemon.Daemon) {
	r.daemon.Store(d)
}

func (r *completionRelay) Publish(ctx context.Context, event notifications.Event, payload notifications.Payload) error {
	if event == notifications.EventVideoCompleted {
		if d := r.daemon.Load(); d != nil {
			if videoID, ok := payload["video_id"].(string); ok && videoID != "" {
				d.HandleVideoCompleted(ctx, videoID)
			}
		}
	}
	return r.next.Publish(ctx, event, payload)
}
