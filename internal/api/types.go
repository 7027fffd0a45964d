package api

import "bleep/internal/logging"

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// QueueItem describes a queue entry in a transport-friendly format.
type QueueItem struct {
	ID         int64  `json:"id"`
	VideoID    string `json:"videoId"`
	SourceURL  string `json:"sourceUrl"`
	Status     string `json:"status"`
	Progress   string `json:"progress,omitempty"`
	EnqueuedAt string `json:"enqueuedAt,omitempty"`
	UpdatedAt  string `json:"updatedAt,omitempty"`
}

// PhaseHealth mirrors readiness reporting for processing phases.
type PhaseHealth struct {
	Name   string `json:"name"`
	Ready  bool   `json:"ready"`
	Detail string `json:"detail,omitempty"`
}

// FailureInfo describes the most recent dropped item.
type FailureInfo struct {
	VideoID string `json:"videoId"`
	Phase   string `json:"phase"`
	Message string `json:"message,omitempty"`
	At      string `json:"at,omitempty"`
}

// CompletionInfo describes the most recent successful completion.
type CompletionInfo struct {
	VideoID string `json:"videoId"`
	At      string `json:"at,omitempty"`
}

// EngineStatus summarizes queue engine execution state.
type EngineStatus struct {
	Running       bool            `json:"running"`
	QueueStats    map[string]int  `json:"queueStats"`
	LastError     string          `json:"lastError,omitempty"`
	InFlight      *QueueItem      `json:"inFlight,omitempty"`
	LastFailure   *FailureInfo    `json:"lastFailure,omitempty"`
	LastCompleted *CompletionInfo `json:"lastCompleted,omitempty"`
	PhaseHealth   []PhaseHealth   `json:"phaseHealth"`
}

// MuteState reports the live mute decision and its contributing reasons.
type MuteState struct {
	Muted           bool `json:"muted"`
	CaptionActive   bool `json:"captionActive"`
	ScheduleActive  bool `json:"scheduleActive"`
	OverrideActive  bool `json:"overrideActive"`
	ScheduleLoaded  bool `json:"scheduleLoaded"`
	ScheduleWindows int  `json:"scheduleWindows"`
	BanTermCount    int  `json:"banTermCount"`
}

// SessionState reports the currently observed playback.
type SessionState struct {
	Active       bool    `json:"active"`
	VideoID      string  `json:"videoId,omitempty"`
	CanonicalURL string  `json:"canonicalUrl,omitempty"`
	Position     float64 `json:"position"`
	Playing      bool    `json:"playing"`
	UpdatedAt    string  `json:"updatedAt,omitempty"`
}

// PreflightCheck captures the outcome of one startup readiness probe.
type PreflightCheck struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Optional    bool   `json:"optional"`
	Passed      bool   `json:"passed"`
	Detail      string `json:"detail,omitempty"`
}

// DaemonStatus aggregates daemon runtime information for API consumers.
type DaemonStatus struct {
	Running      bool             `json:"running"`
	PID          int              `json:"pid"`
	QueueDBPath  string           `json:"queueDbPath"`
	LockFilePath string           `json:"lockFilePath"`
	SocketPath   string           `json:"socketPath,omitempty"`
	LogPath      string           `json:"logPath,omitempty"`
	Engine       EngineStatus     `json:"engine"`
	Mute         MuteState        `json:"mute"`
	Session      SessionState     `json:"session"`
	Checks       []PreflightCheck `json:"checks,omitempty"`
}

// MuteWindow is one span of playback seconds to silence.
type MuteWindow struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Term  string  `json:"term,omitempty"`
}

// ScheduleInfo describes a stored mute schedule.
type ScheduleInfo struct {
	VideoID      string       `json:"videoId"`
	CanonicalURL string       `json:"canonicalUrl"`
	Windows      []MuteWindow `json:"windows"`
	MutedSeconds float64      `json:"mutedSeconds"`
}

// ProcessedEntry records one completed video.
type ProcessedEntry struct {
	VideoID     string `json:"videoId"`
	CompletedAt string `json:"completedAt,omitempty"`
}

// ProcessedResponse wraps the processed-video history.
type ProcessedResponse struct {
	Entries []ProcessedEntry `json:"entries"`
	Total   int              `json:"total"`
}

// BanlistResponse reports the active term set and the custom additions.
type BanlistResponse struct {
	Terms       []string `json:"terms"`
	CustomTerms []string `json:"customTerms"`
}

// EnqueueResult reports the per-entry outcome of an enqueue request.
type EnqueueResult struct {
	SourceURL string     `json:"sourceUrl"`
	VideoID   string     `json:"videoId,omitempty"`
	Outcome   string     `json:"outcome"`
	Error     string     `json:"error,omitempty"`
	Item      *QueueItem `json:"item,omitempty"`
}

// EnqueueResponse wraps a batch of enqueue outcomes.
type EnqueueResponse struct {
	Results []EnqueueResult `json:"results"`
	Added   int             `json:"added"`
}

// QueueStatsResponse provides a normalized queue stats payload.
type QueueStatsResponse struct {
	Counts map[string]int `json:"counts"`
}

// QueueListResponse wraps a collection of queue items for API responses.
type QueueListResponse struct {
	Items []QueueItem `json:"items"`
}

// QueueItemResponse wraps a single queue item.
type QueueItemResponse struct {
	Item QueueItem `json:"item"`
}

// JobsRequest carries candidate video URLs for enqueueing.
type JobsRequest struct {
	URLs []string `json:"urls"`
}

// SessionSetRequest announces the video the player is currently on.
// An empty URL clears the session.
type SessionSetRequest struct {
	URL string `json:"url"`
}

// PositionRequest reports playback progress in seconds.
type PositionRequest struct {
	Position float64 `json:"position"`
	Playing  bool    `json:"playing"`
}

// CaptionRequest carries raw caption text observed by the player.
type CaptionRequest struct {
	Text string `json:"text"`
}

// CaptionResponse reports the match outcome for an observed caption.
type CaptionResponse struct {
	Matched      bool     `json:"matched"`
	Muted        bool     `json:"muted"`
	CensoredText string   `json:"censoredText"`
	Terms        []string `json:"terms,omitempty"`
}

// ToggleResponse reports the mute state after a manual toggle.
type ToggleResponse struct {
	Muted    bool `json:"muted"`
	Override bool `json:"override"`
}

// HealthResponse is the minimal liveness payload.
type HealthResponse struct {
	Status string `json:"status"`
}

// LogStreamResponse carries a batch of structured log events plus the
// cursor for the next fetch. The event encoding is shared with the hub so
// IPC and HTTP consumers see identical lines.
type LogStreamResponse struct {
	Events []logging.LogEvent `json:"events"`
	Next   uint64             `json:"next"`
}
