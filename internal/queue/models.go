package queue

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a work item. Terminal outcomes are not
// statuses: a finished item is deleted from the queue, so only pending and
// the three in-flight phases are ever persisted.
type Status string

const (
	StatusPending    Status = "pending"
	StatusSubmitting Status = "submitting"
	StatusPolling    Status = "polling"
	StatusFetching   Status = "fetching"
)

// RestartResetMessage is the progress message set when in-flight items are
// returned to pending after a daemon restart.
const RestartResetMessage = "Reset after restart"

var allStatuses = []Status{
	StatusPending,
	StatusSubmitting,
	StatusPolling,
	StatusFetching,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

var inFlightStatuses = map[Status]struct{}{
	StatusSubmitting: {},
	StatusPolling:    {},
	StatusFetching:   {},
}

// EnqueueOutcome distinguishes what Enqueue did, so callers can report
// "added" versus "skipped" accurately.
type EnqueueOutcome string

const (
	OutcomeAdded            EnqueueOutcome = "added"
	OutcomeAlreadyQueued    EnqueueOutcome = "already_queued"
	OutcomeAlreadyProcessed EnqueueOutcome = "already_processed"
)

// Item represents a work item persisted in SQLite.
type Item struct {
	ID              int64
	VideoID         string
	SourceURL       string
	Status          Status
	ProgressMessage string
	EnqueuedAt      time.Time
	UpdatedAt       time.Time
}

// ProcessedEntry records one terminal-success completion.
type ProcessedEntry struct {
	VideoID     string
	CompletedAt time.Time
}

// HealthSummary describes aggregated queue counts per lifecycle state.
type HealthSummary struct {
	Total    int
	Pending  int
	InFlight int
}

// DatabaseHealth captures diagnostic information about the database.
type DatabaseHealth struct {
	DBPath           string
	DatabaseExists   bool
	DatabaseReadable bool
	SchemaVersion    string
	MissingTables    []string
	ColumnsPresent   []string
	MissingColumns   []string
	IntegrityCheck   bool
	TotalItems       int
	Error            string
}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsInFlight returns true when the item is mid-processing.
func (i Item) IsInFlight() bool {
	return IsInFlightStatus(i.Status)
}

// IsInFlightStatus reports whether a status reflects an in-flight phase.
func IsInFlightStatus(status Status) bool {
	_, ok := inFlightStatuses[status]
	return ok
}

// SetProgress updates the progress message shown in status output.
func (i *Item) SetProgress(message string) {
	i.ProgressMessage = message
}
