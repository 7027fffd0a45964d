package api

import (
	"slices"
	"time"

	"bleep/internal/mute"
	"bleep/internal/processor"
	"bleep/internal/queue"
	"bleep/internal/schedule"
	"bleep/internal/session"
	"bleep/internal/stage"
)

// FromQueueItem converts a queue record to its API representation.
func FromQueueItem(item *queue.Item) QueueItem {
	if item == nil {
		return QueueItem{}
	}
	dto := QueueItem{
		ID:        item.ID,
		VideoID:   item.VideoID,
		SourceURL: item.SourceURL,
		Status:    string(item.Status),
		Progress:  item.ProgressMessage,
	}
	dto.EnqueuedAt = FormatTime(item.EnqueuedAt)
	dto.UpdatedAt = FormatTime(item.UpdatedAt)
	return dto
}

// FromQueueItems converts a slice of queue records into API DTOs.
func FromQueueItems(items []*queue.Item) []QueueItem {
	if len(items) == 0 {
		return nil
	}
	out := make([]QueueItem, 0, len(items))
	for _, item := range items {
		out = append(out, FromQueueItem(item))
	}
	return out
}

// FromEngineStatus converts an engine status summary to its API payload.
func FromEngineStatus(summary processor.StatusSummary) EngineStatus {
	status := EngineStatus{
		Running:     summary.Running,
		QueueStats:  MergeQueueStats(summary.QueueStats),
		PhaseHealth: PhaseHealthSlice(summary.PhaseHealth),
	}
	if summary.LastError != "" {
		status.LastError = summary.LastError
	}
	if summary.InFlight != nil {
		item := FromQueueItem(summary.InFlight)
		status.InFlight = &item
	}
	if summary.LastFailure != nil {
		status.LastFailure = &FailureInfo{
			VideoID: summary.LastFailure.VideoID,
			Phase:   summary.LastFailure.Phase,
			Message: summary.LastFailure.Message,
			At:      FormatTime(summary.LastFailure.At),
		}
	}
	if summary.LastCompleted != nil {
		status.LastCompleted = &CompletionInfo{
			VideoID: summary.LastCompleted.VideoID,
			At:      FormatTime(summary.LastCompleted.At),
		}
	}
	return status
}

// MergeQueueStats produces a string-keyed representation of queue stats.
func MergeQueueStats(stats map[queue.Status]int) map[string]int {
	out := make(map[string]int, len(stats))
	for status, count := range stats {
		out[string(status)] = count
	}
	return out
}

// PhaseHealthSlice converts a phase health map into a deterministic slice.
func PhaseHealthSlice(health map[string]stage.Health) []PhaseHealth {
	if len(health) == 0 {
		return nil
	}
	names := make([]string, 0, len(health))
	for name := range health {
		names = append(names, name)
	}
	slices.Sort(names)

	out := make([]PhaseHealth, 0, len(names))
	for _, name := range names {
		h := health[name]
		out = append(out, PhaseHealth{Name: name, Ready: h.Ready, Detail: h.Detail})
	}
	return out
}

// FromMuteSnapshot converts a coordinator snapshot to the API mute state.
func FromMuteSnapshot(snap mute.Snapshot) MuteState {
	return MuteState{
		Muted:           snap.Muted,
		CaptionActive:   snap.CaptionActive,
		ScheduleActive:  snap.ScheduleActive,
		OverrideActive:  snap.OverrideActive,
		ScheduleLoaded:  snap.ScheduleLoaded,
		ScheduleWindows: snap.ScheduleWindows,
		BanTermCount:    snap.BanTermCount,
	}
}

// FromPlayback converts tracked playback into the API session state, with
// the position extrapolated to the given instant.
func FromPlayback(playback session.Playback, at time.Time) SessionState {
	state := SessionState{
		Active:  playback.Active(),
		Playing: playback.Playing,
	}
	if !state.Active {
		return state
	}
	state.VideoID = playback.Video.ID
	state.CanonicalURL = playback.Video.CanonicalURL
	state.Position = playback.PositionAt(at)
	state.UpdatedAt = FormatTime(playback.UpdatedAt)
	return state
}

// FromSchedule converts a stored schedule to its API representation.
func FromSchedule(sched schedule.Schedule) ScheduleInfo {
	windows := make([]MuteWindow, 0, len(sched.Windows))
	for _, w := range sched.Windows {
		windows = append(windows, MuteWindow{Start: w.Start, End: w.End, Term: w.Term})
	}
	return ScheduleInfo{
		VideoID:      sched.VideoID,
		CanonicalURL: sched.CanonicalURL,
		Windows:      windows,
		MutedSeconds: sched.TotalMutedSeconds(),
	}
}

// FromProcessedEntries converts processed-history records into API DTOs.
func FromProcessedEntries(entries []queue.ProcessedEntry) []ProcessedEntry {
	if len(entries) == 0 {
		return nil
	}
	out := make([]ProcessedEntry, 0, len(entries))
	for _, entry := range entries {
		out = append(out, ProcessedEntry{
			VideoID:     entry.VideoID,
			CompletedAt: FormatTime(entry.CompletedAt),
		})
	}
	return out
}

// FromCaptionResult converts a coordinator caption observation to its API payload.
func FromCaptionResult(result mute.CaptionResult) CaptionResponse {
	return CaptionResponse{
		Matched:      result.Matched,
		Muted:        result.Muted,
		CensoredText: result.CensoredText,
		Terms:        result.Terms,
	}
}

// FormatTime converts a time to RFC3339 or returns empty string.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateTimeFormat)
}
