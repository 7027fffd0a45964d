package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"bleep/internal/config"
)

const userAgent = "Bleep/0.1.0"

// Event enumerates the daemon milestones that can produce a notification.
type Event string

const (
	// EventQueueStarted fires when the engine picks up the first item of a burst.
	EventQueueStarted Event = "queue_started"
	// EventQueueCompleted fires when the queue drains.
	EventQueueCompleted Event = "queue_completed"
	// EventVideoCompleted fires when a video's mute schedule is stored.
	EventVideoCompleted Event = "video_completed"
	// EventVideoFailed fires when a video is dropped after a phase failure.
	EventVideoFailed Event = "video_failed"
	// EventError fires for operational errors outside item processing.
	EventError Event = "error"
	// EventDaemonStarted fires once the daemon is up and serving.
	EventDaemonStarted Event = "daemon_started"
	// EventDaemonStopped fires when the daemon shuts down.
	EventDaemonStopped Event = "daemon_stopped"
	// EventTest verifies delivery end to end.
	EventTest Event = "test"
)

// Payload carries event-specific values consumed by the message renderers.
type Payload map[string]any

// Service defines the notification surface exposed to daemon components.
type Service interface {
	Publish(ctx context.Context, event Event, payload Payload) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	if cfg == nil {
		return noopService{}
	}
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint:    topic,
		client:      &http.Client{Timeout: timeout},
		queue:       cfg.Notifications.Queue,
		processing:  cfg.Notifications.Processing,
		errors:      cfg.Notifications.Errors,
		dedupWindow: time.Duration(cfg.Notifications.DedupWindowSeconds) * time.Second,
		lastSent:    make(map[string]time.Time),
		now:         time.Now,
	}
}

type message struct {
	title    string
	body     string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint   string
	client     *http.Client
	queue      bool
	processing bool
	errors     bool

	dedupWindow time.Duration
	mu          sync.Mutex
	lastSent    map[string]time.Time
	now         func() time.Time
}

// Publish renders and delivers the event. Events whose category is disabled
// and duplicates inside the dedup window are dropped without error.
func (n *ntfyService) Publish(ctx context.Context, event Event, payload Payload) error {
	if n == nil || n.client == nil {
		return nil
	}
	if !n.enabled(event) {
		return nil
	}
	msg, ok := render(event, payload)
	if !ok {
		return nil
	}
	if n.suppressDuplicate(event, msg.body) {
		return nil
	}
	return n.send(ctx, msg)
}

func (n *ntfyService) enabled(event Event) bool {
	switch event {
	case EventQueueStarted, EventQueueCompleted, EventDaemonStarted, EventDaemonStopped:
		return n.queue
	case EventVideoCompleted:
		return n.processing
	case EventVideoFailed, EventError:
		return n.errors
	case EventTest:
		return true
	default:
		return false
	}
}

func (n *ntfyService) suppressDuplicate(event Event, body string) bool {
	if n.dedupWindow <= 0 {
		return false
	}
	key := string(event) + "\x00" + body
	now := n.now()

	n.mu.Lock()
	defer n.mu.Unlock()
	if sent, ok := n.lastSent[key]; ok && now.Sub(sent) < n.dedupWindow {
		return true
	}
	n.lastSent[key] = now
	for k, sent := range n.lastSent {
		if now.Sub(sent) >= n.dedupWindow {
			delete(n.lastSent, k)
		}
	}
	return false
}

func render(event Event, payload Payload) (message, bool) {
	switch event {
	case EventQueueStarted:
		return message{
			title: "Bleep - Queue Started",
			body:  fmt.Sprintf("Started processing queue with %d videos", intValue(payload, "count")),
			tags:  []string{"bleep", "queue", "started"},
		}, true
	case EventQueueCompleted:
		processed := intValue(payload, "processed")
		failed := intValue(payload, "failed")
		durationText := formatDuration(durationValue(payload, "duration"))
		if failed == 0 {
			return message{
				title: "Bleep - Queue Complete",
				body:  fmt.Sprintf("Queue processing complete: %d videos processed in %s", processed, durationText),
				tags:  []string{"bleep", "queue", "completed"},
			}, true
		}
		return message{
			title: "Bleep - Queue Complete (with errors)",
			body:  fmt.Sprintf("Queue processing complete: %d succeeded, %d failed in %s", processed, failed, durationText),
			tags:  []string{"bleep", "queue", "completed"},
		}, true
	case EventVideoCompleted:
		videoID := stringValue(payload, "video_id")
		windows := intValue(payload, "windows")
		return message{
			title: "Bleep - Schedule Ready",
			body:  fmt.Sprintf("🔇 Mute schedule ready: %s (%d windows)", videoID, windows),
			tags:  []string{"bleep", "video", "completed"},
		}, true
	case EventVideoFailed:
		videoID := stringValue(payload, "video_id")
		phase := stringValue(payload, "phase")
		if phase == "" {
			phase = "processing"
		}
		return message{
			title:    "Bleep - Processing Failed",
			body:     fmt.Sprintf("❌ %s failed during %s: %s", videoID, phase, errorText(payload, "error")),
			tags:     []string{"bleep", "video", "failed"},
			priority: "high",
		}, true
	case EventError:
		var builder strings.Builder
		builder.WriteString("❌ Error")
		if label := stringValue(payload, "context"); label != "" {
			builder.WriteString(" with ")
			builder.WriteString(label)
		}
		builder.WriteString(": ")
		builder.WriteString(errorText(payload, "error"))
		return message{
			title:    "Bleep - Error",
			body:     builder.String(),
			tags:     []string{"bleep", "error", "alert"},
			priority: "high",
		}, true
	case EventDaemonStarted:
		return message{
			title:    "Bleep - Daemon Started",
			body:     "Bleep daemon is up and watching for videos",
			tags:     []string{"bleep", "daemon"},
			priority: "low",
		}, true
	case EventDaemonStopped:
		return message{
			title:    "Bleep - Daemon Stopped",
			body:     "Bleep daemon shut down",
			tags:     []string{"bleep", "daemon"},
			priority: "low",
		}, true
	case EventTest:
		return message{
			title:    "Bleep - Test",
			body:     "🧪 Notification system test",
			tags:     []string{"bleep", "test"},
			priority: "low",
		}, true
	default:
		return message{}, false
	}
}

func stringValue(payload Payload, key string) string {
	if payload == nil {
		return ""
	}
	if v, ok := payload[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

func intValue(payload Payload, key string) int {
	if payload == nil {
		return 0
	}
	switch v := payload[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	default:
		return 0
	}
}

func durationValue(payload Payload, key string) time.Duration {
	if payload == nil {
		return 0
	}
	if v, ok := payload[key].(time.Duration); ok {
		return v
	}
	return 0
}

func errorText(payload Payload, key string) string {
	if payload == nil {
		return "unknown"
	}
	switch v := payload[key].(type) {
	case error:
		if v != nil {
			return strings.TrimSpace(v.Error())
		}
	case string:
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return "unknown"
}

func formatDuration(duration time.Duration) string {
	duration = duration.Round(time.Second)
	if duration <= 0 {
		return "0s"
	}
	return duration.String()
}

func (n *ntfyService) send(ctx context.Context, msg message) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(msg.body))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if msg.title != "" {
		req.Header.Set("Title", msg.title)
	}
	if len(msg.tags) > 0 {
		req.Header.Set("Tags", strings.Join(msg.tags, ","))
	}
	if msg.priority != "" && msg.priority != "default" {
		req.Header.Set("Priority", msg.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) Publish(context.Context, Event, Payload) error { return nil }
