package ipc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"os"
	"sync"
	"time"

	"log/slog"

	"bleep/internal/api"
	"bleep/internal/daemon"
	"bleep/internal/logging"
	"bleep/internal/logs"
	"bleep/internal/queue"
)

// Server exposes daemon control via JSON-RPC over a Unix domain socket.
type Server struct {
	path      string
	daemon    *daemon.Daemon
	logger    *slog.Logger
	listener  net.Listener
	rpcServer *rpc.Server

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewServer configures the IPC server at the given socket path.
func NewServer(ctx context.Context, path string, d *daemon.Daemon, logger *slog.Logger) (*Server, error) {
	if d == nil {
		return nil, errors.New("ipc server requires daemon")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("remove existing socket: %w", err)
	}

	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen on socket: %w", err)
	}

	rpcServer := rpc.NewServer()
	srv := &service{daemon: d, logger: logger, ctx: ctx}
	if err := rpcServer.RegisterName("Bleep", srv); err != nil {
		listener.Close()
		return nil, fmt.Errorf("register rpc service: %w", err)
	}

	serverCtx, cancel := context.WithCancel(ctx)
	return &Server{
		path:      path,
		daemon:    d,
		logger:    logger,
		listener:  listener,
		rpcServer: rpcServer,
		ctx:       serverCtx,
		cancel:    cancel,
	}, nil
}

// Serve starts accepting RPC connections until the context is canceled.
func (s *Server) Serve() {
	s.logger.Debug("IPC server listening", logging.String("socket", s.path))
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			conn, err := s.listener.Accept()
			if err != nil {
				select {
				case <-s.ctx.Done():
					return
				default:
				}
				s.logger.Warn("accept failed",
					logging.Error(err),
					logging.String(logging.FieldEventType, "ipc_accept_failed"),
					logging.String("impact", "IPC clients may fail to connect"),
					logging.String(logging.FieldErrorHint, "Check socket permissions and restart the daemon if needed"))
				continue
			}
			s.wg.Add(1)
			go func(c net.Conn) {
				defer s.wg.Done()
				s.rpcServer.ServeCodec(jsonrpc.NewServerCodec(c))
			}(conn)
		}
	}()
}

// Close stops the server and removes the socket file.
func (s *Server) Close() {
	s.cancel()
	if s.listener != nil {
		_ = s.listener.Close()
	}
	s.wg.Wait()
	if err := os.RemoveAll(s.path); err != nil {
		s.logger.Warn("failed to remove socket",
			logging.String("socket", s.path),
			logging.Error(err),
			logging.String(logging.FieldEventType, "ipc_socket_cleanup_failed"),
			logging.String("impact", "stale IPC socket may block future starts"),
			logging.String(logging.FieldErrorHint, "Remove the socket file manually or rerun bleep stop"))
	}
}

type service struct {
	daemon *daemon.Daemon
	logger *slog.Logger
	ctx    context.Context
}

func (s *service) log() *slog.Logger {
	if s.logger == nil {
		return logging.NewNop()
	}
	return s.logger.With(logging.String("component", "ipc"))
}

func (s *service) Start(_ StartRequest, resp *StartResponse) error {
	s.log().Debug("daemon start requested")
	if err := s.daemon.Start(s.ctx); err != nil {
		resp.Started = false
		resp.Message = err.Error()
		return nil
	}
	resp.Started = true
	resp.Message = "daemon started"
	s.log().Info("daemon started via IPC",
		logging.String(logging.FieldEventType, "daemon_start"))
	return nil
}

func (s *service) Stop(_ StopRequest, resp *StopResponse) error {
	s.log().Debug("daemon stop requested")
	s.daemon.Stop()
	resp.Stopped = true
	s.log().Info("daemon stopped via IPC",
		logging.String(logging.FieldEventType, "daemon_stop"))
	return nil
}

func (s *service) Status(_ StatusRequest, resp *StatusResponse) error {
	status := s.daemon.Status(s.ctx)
	resp.Running = status.Running
	resp.PID = status.PID
	resp.QueueDBPath = status.QueueDBPath
	resp.LockPath = status.LockFilePath
	resp.SocketPath = status.SocketPath
	resp.LogPath = status.LogPath
	resp.QueueStats = api.MergeQueueStats(status.Engine.QueueStats)
	resp.LastError = status.Engine.LastError
	if status.Engine.InFlight != nil {
		item := api.FromQueueItem(status.Engine.InFlight)
		resp.InFlight = &item
	}
	engine := api.FromEngineStatus(status.Engine)
	resp.LastFailure = engine.LastFailure
	resp.LastCompleted = engine.LastCompleted
	resp.PhaseHealth = engine.PhaseHealth
	resp.Mute = api.FromMuteSnapshot(status.Mute)
	resp.Session = api.FromPlayback(status.Session, time.Now())
	if len(status.Checks) > 0 {
		resp.Checks = make([]PreflightCheck, 0, len(status.Checks))
		for _, check := range status.Checks {
			resp.Checks = append(resp.Checks, PreflightCheck{
				Name:        check.Name,
				Description: check.Description,
				Optional:    check.Optional,
				Passed:      check.Passed,
				Detail:      check.Detail,
			})
		}
	}
	return nil
}

func (s *service) Enqueue(req EnqueueRequest, resp *EnqueueResponse) error {
	if len(req.URLs) == 0 {
		return errors.New("enqueue requires at least one url")
	}
	s.log().Debug("enqueue requested", logging.Int("url_count", len(req.URLs)))
	outcomes, err := s.daemon.EnqueueVideos(s.ctx, req.URLs)
	if err != nil {
		return err
	}
	resp.Results = make([]EnqueueResult, 0, len(outcomes))
	for _, outcome := range outcomes {
		result := EnqueueResult{
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
	return nil
}

func (s *service) QueueList(req QueueListRequest, resp *QueueListResponse) error {
	statuses := make([]queue.Status, 0, len(req.Statuses))
	for _, status := range req.Statuses {
		parsed, ok := queue.ParseStatus(status)
		if !ok {
			continue
		}
		statuses = append(statuses, parsed)
	}
	items, err := s.daemon.ListQueue(s.ctx, statuses)
	if err != nil {
		return err
	}
	resp.Items = api.FromQueueItems(items)
	return nil
}

func (s *service) QueueDescribe(req QueueDescribeRequest, resp *QueueDescribeResponse) error {
	if req.ID <= 0 {
		return fmt.Errorf("invalid queue item id %d", req.ID)
	}
	item, err := s.daemon.GetQueueItem(s.ctx, req.ID)
	if err != nil {
		return err
	}
	if item == nil {
		return nil
	}
	resp.Found = true
	resp.Item = api.FromQueueItem(item)
	return nil
}

func (s *service) QueueClear(_ QueueClearRequest, resp *QueueClearResponse) error {
	s.log().Debug("queue clear requested")
	removed, err := s.daemon.ClearQueue(s.ctx)
	if err != nil {
		return err
	}
	resp.Removed = removed
	s.log().Info("queue cleared",
		logging.String(logging.FieldEventType, "queue_clear"),
		logging.Int64("removed_count", removed))
	return nil
}

func (s *service) QueueHealth(_ QueueHealthRequest, resp *QueueHealthResponse) error {
	health, err := s.daemon.QueueHealth(s.ctx)
	if err != nil {
		return err
	}
	resp.Total = health.Total
	resp.Pending = health.Pending
	resp.InFlight = health.InFlight
	return nil
}

func (s *service) DatabaseHealth(_ DatabaseHealthRequest, resp *DatabaseHealthResponse) error {
	health, err := s.daemon.DatabaseHealth(s.ctx)
	if err != nil && health.Error == "" {
		return err
	}
	resp.DBPath = health.DBPath
	resp.DatabaseExists = health.DatabaseExists
	resp.DatabaseReadable = health.DatabaseReadable
	resp.SchemaVersion = health.SchemaVersion
	resp.MissingTables = append(resp.MissingTables, health.MissingTables...)
	resp.ColumnsPresent = append(resp.ColumnsPresent, health.ColumnsPresent...)
	resp.MissingColumns = append(resp.MissingColumns, health.MissingColumns...)
	resp.IntegrityCheck = health.IntegrityCheck
	resp.TotalItems = health.TotalItems
	resp.Error = health.Error
	if err != nil {
		return err
	}
	return nil
}

func (s *service) Processed(req ProcessedListRequest, resp *ProcessedListResponse) error {
	entries, total, err := s.daemon.ListProcessed(s.ctx, req.Limit)
	if err != nil {
		return err
	}
	resp.Entries = api.FromProcessedEntries(entries)
	resp.Total = total
	return nil
}

func (s *service) ProcessedClear(_ ProcessedClearRequest, resp *ProcessedClearResponse) error {
	s.log().Debug("processed clear requested")
	removed, err := s.daemon.ClearProcessed(s.ctx)
	if err != nil {
		return err
	}
	resp.Removed = removed
	s.log().Info("processed history cleared",
		logging.String(logging.FieldEventType, "processed_clear"),
		logging.Int64("removed_count", removed))
	return nil
}

func (s *service) BanlistList(_ BanlistListRequest, resp *BanlistListResponse) error {
	terms, custom, err := s.daemon.Banlist(s.ctx)
	if err != nil {
		return err
	}
	resp.Terms = terms
	resp.CustomTerms = custom
	return nil
}

func (s *service) BanlistAdd(req BanlistAddRequest, resp *BanlistAddResponse) error {
	added, err := s.daemon.AddBanTerm(s.ctx, req.Term)
	if err != nil {
		return err
	}
	resp.Added = added
	return nil
}

func (s *service) BanlistRemove(req BanlistRemoveRequest, resp *BanlistRemoveResponse) error {
	removed, err := s.daemon.RemoveBanTerm(s.ctx, req.Term)
	if err != nil {
		return err
	}
	resp.Removed = removed
	return nil
}

func (s *service) ScheduleGet(req ScheduleGetRequest, resp *ScheduleGetResponse) error {
	sched, err := s.daemon.ScheduleFor(s.ctx, req.VideoID)
	if err != nil {
		return err
	}
	if sched == nil {
		resp.Found = false
		return nil
	}
	resp.Found = true
	resp.Schedule = api.FromSchedule(*sched)
	return nil
}

func (s *service) SessionSet(req SessionSetRequest, resp *SessionSetResponse) error {
	if _, err := s.daemon.SetSessionURL(s.ctx, req.URL); err != nil {
		return err
	}
	resp.Session = api.FromPlayback(s.daemon.SessionSnapshot(), time.Now())
	return nil
}

func (s *service) Position(req PositionRequest, resp *PositionResponse) error {
	s.daemon.UpdatePosition(req.Position, req.Playing)
	resp.Mute = api.FromMuteSnapshot(s.daemon.MuteSnapshot())
	return nil
}

func (s *service) Caption(req CaptionRequest, resp *CaptionObserveResponse) error {
	result := s.daemon.ObserveCaption(s.ctx, req.Text)
	resp.Result = api.FromCaptionResult(result)
	return nil
}

func (s *service) MuteToggle(_ MuteToggleRequest, resp *MuteToggleResponse) error {
	resp.Muted = s.daemon.ToggleMute(s.ctx)
	resp.Override = s.daemon.MuteSnapshot().OverrideActive
	return nil
}

func (s *service) MuteState(_ MuteStateRequest, resp *MuteStateResponse) error {
	resp.Mute = api.FromMuteSnapshot(s.daemon.MuteSnapshot())
	return nil
}

func (s *service) TestNotification(_ TestNotificationRequest, resp *TestNotificationResponse) error {
	sent, message, err := s.daemon.TestNotification(s.ctx)
	resp.Sent = sent
	resp.Message = message
	return err
}

func (s *service) LogTail(req LogTailRequest, resp *LogTailResponse) error {
	logPath := s.daemon.LogPath()
	if logPath == "" {
		resp.Offset = 0
		return nil
	}
	wait := time.Duration(req.WaitMillis) * time.Millisecond
	if wait <= 0 && req.Follow {
		wait = time.Second
	}
	options := logs.TailOptions{
		Offset: req.Offset,
		Limit:  req.Limit,
		Follow: req.Follow,
		Wait:   wait,
	}
	ctx := s.ctx
	if req.Follow && wait > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(s.ctx, wait+500*time.Millisecond)
		defer cancel()
	}
	result, err := logs.Tail(ctx, logPath, options)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			resp.Offset = result.Offset
			return nil
		}
		return err
	}
	resp.Lines = result.Lines
	resp.Offset = result.Offset
	return nil
}
