package ipc

import "bleep/internal/api"

// StartRequest triggers daemon startup.
type StartRequest struct{}

// StartResponse indicates whether the daemon was started.
type StartResponse struct {
	Started bool   `json:"started"`
	Message string `json:"message"`
}

// StopRequest stops the daemon.
type StopRequest struct{}

// StopResponse indicates stop result.
type StopResponse struct {
	Stopped bool `json:"stopped"`
}

// StatusRequest fetches daemon status.
type StatusRequest struct{}

// QueueItem mirrors the HTTP API queue DTO for internal IPC callers.
type QueueItem = api.QueueItem

// PhaseHealth describes readiness of a processing phase.
type PhaseHealth = api.PhaseHealth

// FailureInfo describes the most recent dropped video.
type FailureInfo = api.FailureInfo

// CompletionInfo describes the most recent completed video.
type CompletionInfo = api.CompletionInfo

// MuteState reports the live mute decision.
type MuteState = api.MuteState

// SessionState reports observed playback.
type SessionState = api.SessionState

// PreflightCheck reports one readiness probe.
type PreflightCheck = api.PreflightCheck

// EnqueueResult reports the per-URL outcome of an enqueue.
type EnqueueResult = api.EnqueueResult

// ScheduleInfo describes a stored mute schedule.
type ScheduleInfo = api.ScheduleInfo

// ProcessedEntry records one completed video.
type ProcessedEntry = api.ProcessedEntry

// CaptionResult reports the match outcome for observed caption text.
type CaptionResult = api.CaptionResponse

// StatusResponse represents combined daemon runtime information.
type StatusResponse struct {
	Running       bool             `json:"running"`
	PID           int              `json:"pid"`
	QueueStats    map[string]int   `json:"queue_stats"`
	LastError     string           `json:"last_error"`
	InFlight      *QueueItem       `json:"in_flight"`
	LastFailure   *FailureInfo     `json:"last_failure"`
	LastCompleted *CompletionInfo  `json:"last_completed"`
	PhaseHealth   []PhaseHealth    `json:"phase_health"`
	Mute          MuteState        `json:"mute"`
	Session       SessionState     `json:"session"`
	LockPath      string           `json:"lock_path"`
	QueueDBPath   string           `json:"queue_db_path"`
	SocketPath    string           `json:"socket_path"`
	LogPath       string           `json:"log_path"`
	Checks        []PreflightCheck `json:"checks"`
}

// EnqueueRequest submits video URLs for processing.
type EnqueueRequest struct {
	URLs []string `json:"urls"`
}

// EnqueueResponse reports per-URL outcomes.
type EnqueueResponse struct {
	Results []EnqueueResult `json:"results"`
	Added   int             `json:"added"`
}

// QueueListRequest filters queue listing by status.
type QueueListRequest struct {
	Statuses []string `json:"statuses"`
}

// QueueListResponse contains queue entries.
type QueueListResponse struct {
	Items []QueueItem `json:"items"`
}

// QueueDescribeRequest fetches a single queue item by id.
type QueueDescribeRequest struct {
	ID int64 `json:"id"`
}

// QueueDescribeResponse contains a single queue entry when found.
type QueueDescribeResponse struct {
	Found bool      `json:"found"`
	Item  QueueItem `json:"item"`
}

// QueueClearRequest removes pending items. The in-flight head is spared.
type QueueClearRequest struct{}

// QueueClearResponse reports number of removed entries.
type QueueClearResponse struct {
	Removed int64 `json:"removed"`
}

// QueueHealthRequest fetches aggregate diagnostics.
type QueueHealthRequest struct{}

// QueueHealthResponse reports queue health information.
type QueueHealthResponse struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	InFlight int `json:"in_flight"`
}

// DatabaseHealthRequest fetches detailed database diagnostics.
type DatabaseHealthRequest struct{}

// DatabaseHealthResponse reports database health information.
type DatabaseHealthResponse struct {
	DBPath           string   `json:"db_path"`
	DatabaseExists   bool     `json:"database_exists"`
	DatabaseReadable bool     `json:"database_readable"`
	SchemaVersion    string   `json:"schema_version"`
	MissingTables    []string `json:"missing_tables"`
	ColumnsPresent   []string `json:"columns_present"`
	MissingColumns   []string `json:"missing_columns"`
	IntegrityCheck   bool     `json:"integrity_check"`
	TotalItems       int      `json:"total_items"`
	Error            string   `json:"error"`
}

// ProcessedListRequest fetches completion history.
type ProcessedListRequest struct {
	Limit int `json:"limit"`
}

// ProcessedListResponse returns the most recent completions.
type ProcessedListResponse struct {
	Entries []ProcessedEntry `json:"entries"`
	Total   int              `json:"total"`
}

// ProcessedClearRequest forgets completion history so videos can be
// reprocessed.
type ProcessedClearRequest struct{}

// ProcessedClearResponse reports number of forgotten entries.
type ProcessedClearResponse struct {
	Removed int64 `json:"removed"`
}

// BanlistListRequest fetches the active ban term set.
type BanlistListRequest struct{}

// BanlistListResponse reports merged terms and the user's custom additions.
type BanlistListResponse struct {
	Terms       []string `json:"terms"`
	CustomTerms []string `json:"custom_terms"`
}

// BanlistAddRequest stores a new ban term.
type BanlistAddRequest struct {
	Term string `json:"term"`
}

// BanlistAddResponse reports whether the term was newly added.
type BanlistAddResponse struct {
	Added bool `json:"added"`
}

// BanlistRemoveRequest deletes a stored ban term.
type BanlistRemoveRequest struct {
	Term string `json:"term"`
}

// BanlistRemoveResponse reports whether the term was removed.
type BanlistRemoveResponse struct {
	Removed bool `json:"removed"`
}

// ScheduleGetRequest fetches the stored mute schedule for a video.
type ScheduleGetRequest struct {
	VideoID string `json:"video_id"`
}

// ScheduleGetResponse returns the schedule when one exists.
type ScheduleGetResponse struct {
	Found    bool         `json:"found"`
	Schedule ScheduleInfo `json:"schedule"`
}

// SessionSetRequest points the mute coordinator at a video URL. An empty
// URL clears the session.
type SessionSetRequest struct {
	URL string `json:"url"`
}

// SessionSetResponse reports the resulting session state.
type SessionSetResponse struct {
	Session SessionState `json:"session"`
}

// PositionRequest reports playback progress.
type PositionRequest struct {
	Position float64 `json:"position"`
	Playing  bool    `json:"playing"`
}

// PositionResponse reports the mute state after the update.
type PositionResponse struct {
	Mute MuteState `json:"mute"`
}

// CaptionRequest carries observed caption text.
type CaptionRequest struct {
	Text string `json:"text"`
}

// CaptionObserveResponse reports the match outcome.
type CaptionObserveResponse struct {
	Result CaptionResult `json:"result"`
}

// MuteToggleRequest flips the mute state manually.
type MuteToggleRequest struct{}

// MuteToggleResponse reports the state after the toggle.
type MuteToggleResponse struct {
	Muted    bool `json:"muted"`
	Override bool `json:"override"`
}

// MuteStateRequest fetches the current mute decision.
type MuteStateRequest struct{}

// MuteStateResponse reports the live mute state.
type MuteStateResponse struct {
	Mute MuteState `json:"mute"`
}

// TestNotificationRequest triggers a notification test.
type TestNotificationRequest struct{}

// TestNotificationResponse reports notification test outcome.
type TestNotificationResponse struct {
	Sent    bool   `json:"sent"`
	Message string `json:"message"`
}

// LogTailRequest fetches log lines based on offset and follow semantics.
type LogTailRequest struct {
	Offset     int64 `json:"offset"`
	Limit      int   `json:"limit"`
	Follow     bool  `json:"follow"`
	WaitMillis int   `json:"wait_millis"`
}

// LogTailResponse returns log lines and the next offset.
type LogTailResponse struct {
	Lines  []string `json:"lines"`
	Offset int64    `json:"offset"`
}
