package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"log/slog"

	"bleep/internal/api"
	"bleep/internal/config"
	"bleep/internal/logging"
	"bleep/internal/queue"
)

const maxRequestBody = 1 << 20

type apiServer struct {
	bind   string
	token  string
	logger *slog.Logger
	daemon *Daemon

	listener net.Listener
	server   *http.Server
}

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) (*apiServer, error) {
	if cfg == nil || d == nil {
		return nil, nil
	}
	bind := strings.TrimSpace(cfg.API.Bind)
	if bind == "" {
		return nil, nil
	}

	srv := &apiServer{
		bind:   bind,
		token:  strings.TrimSpace(cfg.API.Token),
		logger: logger,
		daemon: d,
	}

	mux := http.NewServeMux()
	route := func(pattern string, handler http.HandlerFunc) {
		mux.HandleFunc(pattern, corsMiddleware(authMiddleware(srv.token, handler)))
	}
	route("/api/status", srv.handleStatus)
	route("/api/queue", srv.handleQueue)
	route("/api/queue/", srv.handleQueueItem)
	route("/api/jobs", srv.handleJobs)
	route("/api/session", srv.handleSession)
	route("/api/session/position", srv.handlePosition)
	route("/api/captions", srv.handleCaptions)
	route("/api/mute", srv.handleMute)
	route("/api/mute/toggle", srv.handleMuteToggle)
	route("/api/schedule/", srv.handleSchedule)
	route("/api/banlist", srv.handleBanlist)
	route("/api/logs", srv.handleLogs)
	// Health stays unauthenticated so probes work without the token.
	mux.HandleFunc("/api/health", corsMiddleware(srv.handleHealth))

	srv.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv, nil
}

func (s *apiServer) start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log().Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.log().Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	if s == nil {
		return
	}
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

// addr reports the bound listen address, for tests that bind port zero.
func (s *apiServer) addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *apiServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.writeJSON(w, http.StatusOK, api.HealthResponse{Status: "ok"})
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	status := s.daemon.Status(r.Context())
	checks := make([]api.PreflightCheck, 0, len(status.Checks))
	for _, check := range status.Checks {
		checks = append(checks, api.PreflightCheck{
			Name:        check.Name,
			Description: check.Description,
			Optional:    check.Optional,
			Passed:      check.Passed,
			Detail:      check.Detail,
		})
	}
	payload := api.DaemonStatus{
		Running:      status.Running,
		PID:          status.PID,
		QueueDBPath:  status.QueueDBPath,
		LockFilePath: status.LockFilePath,
		SocketPath:   status.SocketPath,
		LogPath:      status.LogPath,
		Engine:       api.FromEngineStatus(status.Engine),
		Mute:         api.FromMuteSnapshot(status.Mute),
		Session:      api.FromPlayback(status.Session, time.Now()),
		Checks:       checks,
	}
	s.writeJSON(w, http.StatusOK, payload)
}

func (s *apiServer) handleQueue(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var statuses []queue.Status
	for _, value := range r.URL.Query()["status"] {
		parsed, ok := queue.ParseStatus(value)
		if !ok {
			continue
		}
		statuses = append(statuses, parsed)
	}
	items, err := s.daemon.ListQueue(r.Context(), statuses)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, api.QueueListResponse{Items: api.FromQueueItems(items)})
}

func (s *apiServer) handleQueueItem(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	idStr := strings.TrimPrefix(r.URL.Path, "/api/queue/")
	if idStr == "" || strings.Contains(idStr, "/") {
		s.writeError(w, http.StatusNotFound, "queue item not found")
		return
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid queue item id")
		return
	}
	item, err := s.daemon.GetQueueItem(r.Context(), id)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if item == nil {
		s.writeError(w, http.StatusNotFound, "queue item not found")
		return
	}
	s.writeJSON(w, http.StatusOK, api.QueueItemResponse{Item: api.FromQueueItem(item)})
}

func (s *apiServer) handleJobs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req api.JobsRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	if len(req.URLs) == 0 {
		s.writeError(w, http.StatusBadRequest, "at least one url is required")
		return
	}
	outcomes, err := s.daemon.EnqueueVideos(r.Context(), req.URLs)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := api.EnqueueResponse{Results: make([]api.EnqueueResult, 0, len(outcomes))}
	for _, outcome := range outcomes {
		result := api.EnqueueResult{
			SourceURL: outcome.SourceURL,
			VideoID:   outcome.VideoID,
			Outcome:   string(outcome.Outcome),
		}
		if outcome.Err != nil {
			result.Outcome = "invalid"
			result.Error = outcome.Err.Error()
		}
		if outcome.Item != nil {
			item := api.FromQueueItem(outcome.Item)
			result.Item = &item
		}
		if outcome.Outcome == queue.OutcomeAdded {
			resp.Added++
		}
		resp.Results = append(resp.Results, result)
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *apiServer) handleSession(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.writeJSON(w, http.StatusOK, api.FromPlayback(s.daemon.SessionSnapshot(), time.Now()))
	case http.MethodPost:
		var req api.SessionSetRequest
		if !s.decodeBody(w, r, &req) {
			return
		}
		if _, err := s.daemon.SetSessionURL(r.Context(), req.URL); err != nil {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.writeJSON(w, http.StatusOK, api.FromPlayback(s.daemon.SessionSnapshot(), time.Now()))
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *apiServer) handlePosition(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req api.PositionRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	s.daemon.UpdatePosition(req.Position, req.Playing)
	s.writeJSON(w, http.StatusOK, api.FromMuteSnapshot(s.daemon.MuteSnapshot()))
}

func (s *apiServer) handleCaptions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req api.CaptionRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	result := s.daemon.ObserveCaption(r.Context(), req.Text)
	s.writeJSON(w, http.StatusOK, api.FromCaptionResult(result))
}

func (s *apiServer) handleMute(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.writeJSON(w, http.StatusOK, api.FromMuteSnapshot(s.daemon.MuteSnapshot()))
}

func (s *apiServer) handleMuteToggle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	muted := s.daemon.ToggleMute(r.Context())
	snap := s.daemon.MuteSnapshot()
	s.writeJSON(w, http.StatusOK, api.ToggleResponse{Muted: muted, Override: snap.OverrideActive})
}

func (s *apiServer) handleSchedule(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	videoID := strings.TrimPrefix(r.URL.Path, "/api/schedule/")
	if videoID == "" || strings.Contains(videoID, "/") {
		s.writeError(w, http.StatusNotFound, "schedule not found")
		return
	}
	sched, err := s.daemon.ScheduleFor(r.Context(), videoID)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if sched == nil {
		s.writeError(w, http.StatusNotFound, "schedule not found")
		return
	}
	s.writeJSON(w, http.StatusOK, api.FromSchedule(*sched))
}

func (s *apiServer) handleBanlist(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	terms, custom, err := s.daemon.Banlist(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, api.BanlistResponse{Terms: terms, CustomTerms: custom})
}

func (s *apiServer) handleLogs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	hub := s.daemon.LogStream()
	archive := s.daemon.LogArchive()
	if hub == nil && archive == nil {
		s.writeJSON(w, http.StatusOK, api.LogStreamResponse{Events: nil, Next: 0})
		return
	}

	query := r.URL.Query()
	since, _ := strconv.ParseUint(query.Get("since"), 10, 64)
	limit, _ := strconv.Atoi(query.Get("limit"))
	if limit <= 0 {
		limit = 200
	}
	follow := query.Get("follow") == "1" || strings.EqualFold(query.Get("follow"), "true")
	tail := query.Get("tail") == "1" || strings.EqualFold(query.Get("tail"), "true")
	videoID := strings.TrimSpace(query.Get("video"))
	component := strings.TrimSpace(query.Get("component"))

	var (
		events []logging.LogEvent
		next   uint64
	)
	if archive != nil && since > 0 {
		firstSeq := uint64(0)
		if hub != nil {
			firstSeq = hub.FirstSequence()
		}
		if hub == nil || (firstSeq > 0 && since < firstSeq) {
			archived, cursor, archErr := archive.ReadSince(since, limit)
			if archErr != nil {
				s.log().Warn("log archive read failed", logging.Error(archErr))
			} else if len(archived) > 0 {
				events = archived
				next = cursor
			}
		}
	}
	if tail && since == 0 && !follow && hub != nil {
		events, next = hub.Tail(limit)
	} else if len(events) == 0 && hub != nil {
		fetched, cursor, err := hub.Fetch(r.Context(), since, limit, follow)
		if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			s.writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		events = fetched
		next = cursor
	}

	filtered := make([]logging.LogEvent, 0, len(events))
	for _, evt := range events {
		if videoID != "" && evt.VideoID != videoID {
			continue
		}
		if component != "" && !strings.EqualFold(component, evt.Component) {
			continue
		}
		filtered = append(filtered, evt)
	}
	s.writeJSON(w, http.StatusOK, api.LogStreamResponse{Events: filtered, Next: next})
}

func (s *apiServer) decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	defer r.Body.Close()
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err := decoder.Decode(dst); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log().Error("failed to encode response", logging.Error(err))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

func (s *apiServer) log() *slog.Logger {
	if s.logger != nil {
		return s.logger.With(logging.String("component", "api-server"))
	}
	return logging.NewNop()
}
