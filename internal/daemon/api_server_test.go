package daemon

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"bleep/internal/analysis"
	"bleep/internal/api"
	"bleep/internal/config"
	"bleep/internal/logging"
	"bleep/internal/media"
	"bleep/internal/mute"
	"bleep/internal/processor"
	"bleep/internal/schedule"
	"bleep/internal/testsupport"
)

func newTestDaemon(t *testing.T, mutate func(*config.Config)) *Daemon {
	t.Helper()

	cfg := testsupport.NewConfig(t)
	if mutate != nil {
		mutate(cfg)
	}
	store := testsupport.MustOpenStore(t, cfg)
	logger := logging.NewNop()

	client := analysis.New(cfg.Analysis.BaseURL)
	engine := processor.New(cfg, store, client, logger)
	coordinator := mute.NewCoordinator(cfg, store, nil, mute.ActuatorFunc(func(context.Context, bool) error {
		return nil
	}), logger)

	d, err := New(cfg, store, logger, engine, coordinator, "", nil, nil, nil)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	if err := d.RefreshMatcher(context.Background()); err != nil {
		t.Fatalf("RefreshMatcher: %v", err)
	}
	return d
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), dst); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
}

func TestAPIServerHandleJobs(t *testing.T) {
	d := newTestDaemon(t, nil)

	body := strings.NewReader(`{"urls":["https://www.youtube.com/watch?v=dQw4w9WgXcQ","nope"]}`)
	req := httptest.NewRequest(http.MethodPost, "/api/jobs", body)
	w := httptest.NewRecorder()
	d.api.handleJobs(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d", w.Code)
	}
	var resp api.EnqueueResponse
	decodeJSON(t, w, &resp)
	if resp.Added != 1 {
		t.Fatalf("expected 1 added, got %d", resp.Added)
	}
	if len(resp.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(resp.Results))
	}
	if resp.Results[0].Outcome != "added" || resp.Results[0].Item == nil {
		t.Fatalf("unexpected first result: %+v", resp.Results[0])
	}
	if resp.Results[1].Outcome != "invalid" || resp.Results[1].Error == "" {
		t.Fatalf("unexpected second result: %+v", resp.Results[1])
	}
}

func TestAPIServerHandleJobsRejectsEmpty(t *testing.T) {
	d := newTestDaemon(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/jobs", strings.NewReader(`{"urls":[]}`))
	w := httptest.NewRecorder()
	d.api.handleJobs(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestAPIServerHandleQueue(t *testing.T) {
	d := newTestDaemon(t, nil)
	testsupport.EnqueueVideo(t, d.store, "dQw4w9WgXcQ")

	req := httptest.NewRequest(http.MethodGet, "/api/queue?status=pending", nil)
	w := httptest.NewRecorder()
	d.api.handleQueue(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d", w.Code)
	}
	var resp api.QueueListResponse
	decodeJSON(t, w, &resp)
	if len(resp.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(resp.Items))
	}
	if resp.Items[0].VideoID != "dQw4w9WgXcQ" {
		t.Fatalf("unexpected video id: %q", resp.Items[0].VideoID)
	}
}

func TestAPIServerHandleQueueItemNotFound(t *testing.T) {
	d := newTestDaemon(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/queue/99", nil)
	w := httptest.NewRecorder()
	d.api.handleQueueItem(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestAPIServerHandleCaptions(t *testing.T) {
	d := newTestDaemon(t, nil)
	if _, err := d.AddBanTerm(context.Background(), "frak"); err != nil {
		t.Fatalf("AddBanTerm: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/captions", strings.NewReader(`{"text":"oh frak no"}`))
	w := httptest.NewRecorder()
	d.api.handleCaptions(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d", w.Code)
	}
	var resp api.CaptionResponse
	decodeJSON(t, w, &resp)
	if !resp.Matched || !resp.Muted {
		t.Fatalf("expected matched and muted, got %+v", resp)
	}
	if !strings.Contains(resp.CensoredText, "****") {
		t.Fatalf("expected censored text, got %q", resp.CensoredText)
	}
}

func TestAPIServerHandleMuteToggle(t *testing.T) {
	d := newTestDaemon(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/mute/toggle", nil)
	w := httptest.NewRecorder()
	d.api.handleMuteToggle(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d", w.Code)
	}
	var resp api.ToggleResponse
	decodeJSON(t, w, &resp)
	if !resp.Muted || !resp.Override {
		t.Fatalf("expected manual mute with override, got %+v", resp)
	}
}

func TestAPIServerHandleSchedule(t *testing.T) {
	d := newTestDaemon(t, nil)
	sched := schedule.Schedule{
		VideoID:      "dQw4w9WgXcQ",
		CanonicalURL: media.CanonicalURL("dQw4w9WgXcQ"),
		Windows: []schedule.Window{
			{Start: 1, End: 2.5, Term: "frak"},
		},
	}
	if err := d.store.SaveSchedule(context.Background(), sched); err != nil {
		t.Fatalf("SaveSchedule: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/schedule/dQw4w9WgXcQ", nil)
	w := httptest.NewRecorder()
	d.api.handleSchedule(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d", w.Code)
	}
	var resp api.ScheduleInfo
	decodeJSON(t, w, &resp)
	if len(resp.Windows) != 1 {
		t.Fatalf("expected 1 window, got %d", len(resp.Windows))
	}
	if resp.MutedSeconds != 1.5 {
		t.Fatalf("expected 1.5 muted seconds, got %v", resp.MutedSeconds)
	}
}

func TestAPIServerHandleScheduleNotFound(t *testing.T) {
	d := newTestDaemon(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/schedule/abc123XYZ-_", nil)
	w := httptest.NewRecorder()
	d.api.handleSchedule(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestAPIServerHandleHealth(t *testing.T) {
	d := newTestDaemon(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	w := httptest.NewRecorder()
	d.api.handleHealth(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d", w.Code)
	}
	var resp api.HealthResponse
	decodeJSON(t, w, &resp)
	if resp.Status != "ok" {
		t.Fatalf("unexpected health status: %q", resp.Status)
	}
}

func TestAPIServerAuthRejectsMissingToken(t *testing.T) {
	d := newTestDaemon(t, func(cfg *config.Config) {
		cfg.API.Token = "secret"
	})

	req := httptest.NewRequest(http.MethodGet, "/api/mute", nil)
	w := httptest.NewRecorder()
	d.api.server.Handler.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/mute", nil)
	req.Header.Set("Authorization", "Bearer secret")
	w = httptest.NewRecorder()
	d.api.server.Handler.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d", w.Code)
	}
}

func TestAPIServerHealthSkipsAuth(t *testing.T) {
	d := newTestDaemon(t, func(cfg *config.Config) {
		cfg.API.Token = "secret"
	})

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	w := httptest.NewRecorder()
	d.api.server.Handler.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected health to bypass auth, got %d", w.Code)
	}
}

func TestAPIServerCORSPreflight(t *testing.T) {
	d := newTestDaemon(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/captions", nil)
	req.Header.Set("Origin", "https://www.youtube.com")
	w := httptest.NewRecorder()
	d.api.server.Handler.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for preflight, got %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("expected wildcard origin, got %q", got)
	}
}

func TestAPIServerHandleStatus(t *testing.T) {
	d := newTestDaemon(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	w := httptest.NewRecorder()
	d.api.handleStatus(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d", w.Code)
	}
	var resp api.DaemonStatus
	decodeJSON(t, w, &resp)
	if resp.Running {
		t.Fatal("expected stopped daemon in status")
	}
	if resp.PID == 0 {
		t.Fatal("expected pid in status")
	}
	if len(resp.Checks) == 0 {
		t.Fatal("expected preflight checks in status")
	}
	if resp.Mute.BanTermCount == 0 {
		t.Fatal("expected ban term count from embedded defaults")
	}
}

func TestAPIServerNilReceiverSafe(t *testing.T) {
	var s *apiServer
	if err := s.start(context.Background()); err != nil {
		t.Fatalf("nil start should be a no-op, got %v", err)
	}
	s.stop()
	if addr := s.addr(); addr != "" {
		t.Fatalf("expected empty addr, got %q", addr)
	}
}
