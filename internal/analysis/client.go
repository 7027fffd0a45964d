package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"bleep/internal/media"
	"bleep/internal/schedule"
	"bleep/internal/services"
)

const (
	// DefaultPollInterval is the reference delay between job status polls.
	DefaultPollInterval = 10 * time.Second

	defaultHTTPTimeout = 30 * time.Second
)

// ErrStillProcessing reports that a result was requested before the remote
// job finished. Fetch failures wrap it together with services.ErrNotFound.
var ErrStillProcessing = errors.New("job still processing")

// JobState is the lifecycle state reported by the remote service.
type JobState string

// Remote job states. The first three are non-terminal.
const (
	StateProcessing   JobState = "processing"
	StateDownloading  JobState = "downloading"
	StateTranscribing JobState = "transcribing"
	StateDone         JobState = "done"
	StateError        JobState = "error"
)

// Terminal reports whether the state ends the remote job. Unknown states
// are treated as non-terminal so newer service versions keep polling.
func (s JobState) Terminal() bool {
	return s == StateDone || s == StateError
}

// Job identifies a submitted analysis job and its last observed state.
type Job struct {
	ID    string
	URL   string
	State JobState
}

// ResultEntry is one mute window as reported on the wire.
type ResultEntry struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Word  string  `json:"word"`
}

// Result carries the windows computed for one video.
type Result struct {
	JobID   string
	URL     string
	Entries []ResultEntry
}

// Schedule converts the result into the stored schedule form. The canonical
// URL comes from the service's echoed URL so stale results never attach to
// the wrong video; unparseable URLs are kept verbatim.
func (r Result) Schedule(videoID string) schedule.Schedule {
	canonical := strings.TrimSpace(r.URL)
	if video, err := media.Parse(r.URL); err == nil {
		canonical = video.CanonicalURL
	}
	windows := make([]schedule.Window, 0, len(r.Entries))
	for _, entry := range r.Entries {
		windows = append(windows, schedule.Window{
			Start: entry.Start,
			End:   entry.End,
			Term:  entry.Word,
		})
	}
	sched := schedule.Schedule{
		VideoID:      videoID,
		CanonicalURL: canonical,
		Windows:      windows,
	}
	sched.Normalize()
	return sched
}

// Client talks to the remote analysis service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option customizes the analysis client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the service base URL (useful for tests).
func WithBaseURL(base string) Option {
	return func(c *Client) {
		base = strings.TrimSpace(base)
		if base != "" {
			c.baseURL = strings.TrimRight(base, "/")
		}
	}
}

// WithTimeout bounds each request. Zero or negative keeps the default.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient = &http.Client{Timeout: timeout}
		}
	}
}

// New constructs a client for the analysis service at baseURL.
func New(baseURL string, opts ...Option) *Client {
	client := &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return client
}

// BaseURL returns the configured service base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

type submitRequest struct {
	URL string `json:"url"`
	// BanTerms travels alongside the URL for services that accept a
	// caller-supplied list; the reference service ignores unknown fields
	// and applies its own.
	BanTerms []string `json:"ban_terms,omitempty"`
}

type jobResponse struct {
	JobID  string `json:"job_id"`
	URL    string `json:"url"`
	Status string `json:"status"`
}

type resultResponse struct {
	JobID        string        `json:"job_id"`
	URL          string        `json:"url"`
	MuteSchedule []ResultEntry `json:"mute_schedule"`
}

// Submit registers a video for analysis and returns the remote job.
func (c *Client) Submit(ctx context.Context, sourceURL string, banTerms []string) (Job, error) {
	sourceURL = strings.TrimSpace(sourceURL)
	if sourceURL == "" {
		return Job{}, services.Wrap(services.ErrValidation, "analysis", "submit", "source url required", nil)
	}
	encoded, err := json.Marshal(submitRequest{URL: sourceURL, BanTerms: banTerms})
	if err != nil {
		return Job{}, services.Wrap(services.ErrValidation, "analysis", "submit", "encode request", err)
	}
	endpoint, err := url.JoinPath(c.baseURL, "/process")
	if err != nil {
		return Job{}, services.Wrap(services.ErrConfiguration, "analysis", "submit", "build url", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return Job{}, services.Wrap(services.ErrTransient, "analysis", "submit", "build request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Job{}, services.Wrap(services.ErrTransient, "analysis", "submit", "request failed", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Job{}, services.Wrap(services.ErrTransient, "analysis", "submit", "read response", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return Job{}, services.Wrap(services.ErrTransient, "analysis", "submit", httpFailure(http.MethodPost, resp.StatusCode, start), nil)
	}
	var payload jobResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return Job{}, services.Wrap(services.ErrValidation, "analysis", "submit", "decode response", err)
	}
	if strings.TrimSpace(payload.JobID) == "" {
		return Job{}, services.Wrap(services.ErrValidation, "analysis", "submit", "response missing job id", nil)
	}
	return Job{ID: payload.JobID, URL: payload.URL, State: JobState(payload.Status)}, nil
}

// Poll reports the current state of a remote job.
func (c *Client) Poll(ctx context.Context, jobID string) (Job, error) {
	jobID = strings.TrimSpace(jobID)
	if jobID == "" {
		return Job{}, services.Wrap(services.ErrValidation, "analysis", "poll", "job id required", nil)
	}
	status, body, elapsed, err := c.get(ctx, "/status/"+url.PathEscape(jobID))
	if err != nil {
		return Job{}, services.Wrap(services.ErrTransient, "analysis", "poll", "request failed", err)
	}
	switch {
	case status == http.StatusNotFound:
		return Job{}, services.Wrap(services.ErrNotFound, "analysis", "poll", "job not found", nil)
	case status >= http.StatusMultipleChoices:
		return Job{}, services.Wrap(services.ErrTransient, "analysis", "poll", httpFailureElapsed(http.MethodGet, status, elapsed), nil)
	}
	var payload jobResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return Job{}, services.Wrap(services.ErrValidation, "analysis", "poll", "decode response", err)
	}
	return Job{ID: payload.JobID, URL: payload.URL, State: JobState(payload.Status)}, nil
}

// FetchResult retrieves the finished mute schedule for a job. A 202 from
// the service means the job has not finished; the returned error wraps both
// services.ErrNotFound and ErrStillProcessing.
func (c *Client) FetchResult(ctx context.Context, jobID string) (Result, error) {
	jobID = strings.TrimSpace(jobID)
	if jobID == "" {
		return Result{}, services.Wrap(services.ErrValidation, "analysis", "fetch result", "job id required", nil)
	}
	status, body, elapsed, err := c.get(ctx, "/mute_schedule/"+url.PathEscape(jobID))
	if err != nil {
		return Result{}, services.Wrap(services.ErrTransient, "analysis", "fetch result", "request failed", err)
	}
	switch {
	case status == http.StatusAccepted:
		return Result{}, services.Wrap(services.ErrNotFound, "analysis", "fetch result", "", ErrStillProcessing)
	case status == http.StatusNotFound:
		return Result{}, services.Wrap(services.ErrNotFound, "analysis", "fetch result", "job not found", nil)
	case status >= http.StatusMultipleChoices:
		return Result{}, services.Wrap(services.ErrTransient, "analysis", "fetch result", httpFailureElapsed(http.MethodGet, status, elapsed), nil)
	}
	var payload resultResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return Result{}, services.Wrap(services.ErrValidation, "analysis", "fetch result", "decode response", err)
	}
	if payload.MuteSchedule == nil {
		return Result{}, services.Wrap(services.ErrNotFound, "analysis", "fetch result", "response missing mute schedule", nil)
	}
	return Result{JobID: payload.JobID, URL: payload.URL, Entries: payload.MuteSchedule}, nil
}

// Health verifies the analysis service is reachable and reports itself ok.
func (c *Client) Health(ctx context.Context) error {
	status, body, elapsed, err := c.get(ctx, "/health")
	if err != nil {
		return services.Wrap(services.ErrUnavailable, "analysis", "health", "request failed", err)
	}
	if status >= http.StatusMultipleChoices {
		return services.Wrap(services.ErrUnavailable, "analysis", "health", httpFailureElapsed(http.MethodGet, status, elapsed), nil)
	}
	var payload struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return services.Wrap(services.ErrUnavailable, "analysis", "health", "decode response", err)
	}
	if payload.Status != "ok" {
		return services.Wrap(services.ErrUnavailable, "analysis", "health", fmt.Sprintf("service reported %q", payload.Status), nil)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string) (int, []byte, time.Duration, error) {
	endpoint, err := url.JoinPath(c.baseURL, path)
	if err != nil {
		return 0, nil, 0, fmt.Errorf("build url: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, nil, 0, fmt.Errorf("build request: %w", err)
	}
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, time.Since(start), err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, time.Since(start), fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, body, time.Since(start), nil
}

func httpFailure(method string, status int, start time.Time) string {
	return httpFailureElapsed(method, status, time.Since(start))
}

func httpFailureElapsed(method string, status int, elapsed time.Duration) string {
	return fmt.Sprintf("%s returned HTTP %d after %s", method, status, elapsed.Round(time.Millisecond))
}
