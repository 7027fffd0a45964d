package daemon

import (
	"context"
	"errors"
	"strings"

	"bleep/internal/banlist"
	"bleep/internal/logging"
	"bleep/internal/media"
	"bleep/internal/mute"
	"bleep/internal/schedule"
	"bleep/internal/session"
)

// SetSessionURL points the coordinator at the video the player is on. An
// empty URL clears the session.
func (d *Daemon) SetSessionURL(ctx context.Context, rawURL string) (media.Video, error) {
	if strings.TrimSpace(rawURL) == "" {
		d.coordinator.ClearVideo(ctx)
		return media.Video{}, nil
	}
	video, err := media.Parse(rawURL)
	if err != nil {
		return media.Video{}, err
	}
	d.coordinator.SetVideo(ctx, video)
	return video, nil
}

// UpdatePosition records playback progress for the current video.
func (d *Daemon) UpdatePosition(seconds float64, playing bool) {
	d.coordinator.UpdatePosition(seconds, playing)
}

// ObserveCaption feeds raw caption text through the matcher and returns the
// censored text plus the resulting mute state.
func (d *Daemon) ObserveCaption(ctx context.Context, text string) mute.CaptionResult {
	return d.coordinator.ObserveCaption(ctx, text)
}

// ToggleMute flips the mute state manually and reports the new state.
func (d *Daemon) ToggleMute(ctx context.Context) bool {
	return d.coordinator.Toggle(ctx)
}

// MuteSnapshot reports the live mute decision state.
func (d *Daemon) MuteSnapshot() mute.Snapshot {
	return d.coordinator.Snapshot()
}

// SessionSnapshot reports the tracked playback state.
func (d *Daemon) SessionSnapshot() session.Playback {
	return d.coordinator.Session().Snapshot()
}

// ScheduleFor fetches the stored mute schedule for a video, or nil when none
// has been produced yet.
func (d *Daemon) ScheduleFor(ctx context.Context, videoID string) (*schedule.Schedule, error) {
	if d.store == nil {
		return nil, errors.New("queue store unavailable")
	}
	if !media.ValidID(videoID) {
		return nil, errors.New("invalid video id")
	}
	return d.store.ScheduleFor(ctx, videoID)
}

// Banlist returns the active merged term set alongside the user's stored
// additions.
func (d *Daemon) Banlist(ctx context.Context) (terms, custom []string, err error) {
	if d.store == nil {
		return nil, nil, errors.New("queue store unavailable")
	}
	custom, err = d.store.ListBanTerms(ctx)
	if err != nil {
		return nil, nil, err
	}
	terms = banlist.Merge(append(append([]string(nil), custom...), d.cfg.Banlist.ExtraTerms...))
	return terms, custom, nil
}

// AddBanTerm stores a new ban term and rebuilds the caption matcher. It
// reports false when the term was already present.
func (d *Daemon) AddBanTerm(ctx context.Context, term string) (bool, error) {
	if d.store == nil {
		return false, errors.New("queue store unavailable")
	}
	added, err := d.store.AddBanTerm(ctx, term)
	if err != nil {
		return false, err
	}
	if added {
		if err := d.RefreshMatcher(ctx); err != nil {
			return true, err
		}
		d.logger.Info("ban term added",
			logging.String("term", banlist.Normalize(term)),
			logging.String(logging.FieldEventType, "banlist_updated"))
	}
	return added, nil
}

// RemoveBanTerm deletes a stored ban term and rebuilds the caption matcher.
// Embedded defaults cannot be removed.
func (d *Daemon) RemoveBanTerm(ctx context.Context, term string) (bool, error) {
	if d.store == nil {
		return false, errors.New("queue store unavailable")
	}
	removed, err := d.store.RemoveBanTerm(ctx, term)
	if err != nil {
		return false, err
	}
	if removed {
		if err := d.RefreshMatcher(ctx); err != nil {
			return true, err
		}
		d.logger.Info("ban term removed",
			logging.String("term", banlist.Normalize(term)),
			logging.String(logging.FieldEventType, "banlist_updated"))
	}
	return removed, nil
}

// HandleVideoCompleted reloads the coordinator's schedule when the engine
// finishes the video the player is currently on, so a schedule that arrives
// mid-playback starts muting without a video change.
func (d *Daemon) HandleVideoCompleted(ctx context.Context, videoID string) {
	snap := d.coordinator.Snapshot()
	if snap.VideoID == "" || snap.VideoID != videoID {
		return
	}
	d.coordinator.RefreshSchedule(ctx)
	d.logger.Info("mute schedule refreshed for current video",
		logging.String(logging.FieldVideoID, videoID),
		logging.String(logging.FieldEventType, "schedule_refreshed"))
}
