package ipc_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"bleep/internal/analysis"
	"bleep/internal/daemon"
	"bleep/internal/ipc"
	"bleep/internal/logging"
	"bleep/internal/media"
	"bleep/internal/mute"
	"bleep/internal/processor"
	"bleep/internal/schedule"
	"bleep/internal/testsupport"
)

func TestIPCServerClient(t *testing.T) {
	stub := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"status":"ok"}`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer stub.Close()

	cfg := testsupport.NewConfig(t, testsupport.WithAnalysisURL(stub.URL))
	cfg.API.Bind = ""
	store := testsupport.MustOpenStore(t, cfg)
	logPath := filepath.Join(cfg.Paths.LogDir, "ipc-test.log")
	logger := logging.NewNop()

	engine := processor.New(cfg, store, analysis.New(cfg.Analysis.BaseURL), logger)
	coordinator := mute.NewCoordinator(cfg, store, nil, mute.ActuatorFunc(func(context.Context, bool) error {
		return nil
	}), logger)
	d, err := daemon.New(cfg, store, logger, engine, coordinator, logPath, nil, nil, nil)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(func() {
		d.Close()
	})

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	socket := filepath.Join(cfg.Paths.LogDir, "bleep.sock")
	srv, err := ipc.NewServer(ctx, socket, d, logger)
	if err != nil {
		if strings.Contains(err.Error(), "operation not permitted") {
			t.Skipf("skipping IPC server test: %v", err)
		}
		t.Fatalf("ipc.NewServer: %v", err)
	}
	srv.Serve()
	t.Cleanup(func() {
		srv.Close()
	})

	time.Sleep(50 * time.Millisecond)

	client, err := ipc.Dial(socket)
	if err != nil {
		t.Fatalf("ipc.Dial: %v", err)
	}
	t.Cleanup(func() {
		client.Close()
	})

	status, err := client.Status()
	if err != nil {
		t.Fatalf("Status RPC failed: %v", err)
	}
	if status.Running {
		t.Fatal("expected daemon to report stopped before start")
	}
	if status.PID <= 0 {
		t.Fatalf("expected pid, got %d", status.PID)
	}
	if !strings.HasSuffix(status.QueueDBPath, "bleep.db") {
		t.Fatalf("unexpected db path: %s", status.QueueDBPath)
	}

	enq, err := client.Enqueue([]string{
		"https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		"https://youtu.be/abc123XYZ-_",
		"definitely not a video",
	})
	if err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}
	if enq.Added != 2 {
		t.Fatalf("expected 2 added, got %d", enq.Added)
	}
	if len(enq.Results) != 3 {
		t.Fatalf("expected 3 enqueue results, got %d", len(enq.Results))
	}
	if enq.Results[2].Outcome != "invalid" || enq.Results[2].Error == "" {
		t.Fatalf("expected invalid outcome for bad url, got %+v", enq.Results[2])
	}

	listResp, err := client.QueueList(nil)
	if err != nil {
		t.Fatalf("QueueList failed: %v", err)
	}
	if len(listResp.Items) != 2 {
		t.Fatalf("expected 2 queue items, got %d", len(listResp.Items))
	}

	pendingResp, err := client.QueueList([]string{"pending"})
	if err != nil {
		t.Fatalf("QueueList pending failed: %v", err)
	}
	if len(pendingResp.Items) != 2 {
		t.Fatalf("expected 2 pending items, got %d", len(pendingResp.Items))
	}

	describeResp, err := client.QueueDescribe(listResp.Items[0].ID)
	if err != nil {
		t.Fatalf("QueueDescribe failed: %v", err)
	}
	if !describeResp.Found || describeResp.Item.VideoID != "dQw4w9WgXcQ" {
		t.Fatalf("unexpected first queue item: %+v", describeResp)
	}
	missingResp, err := client.QueueDescribe(9999)
	if err != nil {
		t.Fatalf("QueueDescribe missing failed: %v", err)
	}
	if missingResp.Found {
		t.Fatal("did not expect queue item 9999 to exist")
	}

	healthResp, err := client.QueueHealth()
	if err != nil {
		t.Fatalf("QueueHealth failed: %v", err)
	}
	if healthResp.Total != 2 || healthResp.Pending != 2 || healthResp.InFlight != 0 {
		t.Fatalf("unexpected queue health: %#v", healthResp)
	}

	addTerm, err := client.BanlistAdd("frak")
	if err != nil {
		t.Fatalf("BanlistAdd failed: %v", err)
	}
	if !addTerm.Added {
		t.Fatal("expected term to be newly added")
	}
	dupTerm, err := client.BanlistAdd("frak")
	if err != nil {
		t.Fatalf("BanlistAdd duplicate failed: %v", err)
	}
	if dupTerm.Added {
		t.Fatal("expected duplicate term to be rejected")
	}
	banResp, err := client.BanlistList()
	if err != nil {
		t.Fatalf("BanlistList failed: %v", err)
	}
	if len(banResp.CustomTerms) != 1 || banResp.CustomTerms[0] != "frak" {
		t.Fatalf("unexpected custom terms: %v", banResp.CustomTerms)
	}

	capResp, err := client.Caption("oh frak no")
	if err != nil {
		t.Fatalf("Caption failed: %v", err)
	}
	if !capResp.Result.Matched || !capResp.Result.Muted {
		t.Fatalf("expected matched and muted caption, got %+v", capResp.Result)
	}
	if !strings.Contains(capResp.Result.CensoredText, cfg.Mute.Placeholder) {
		t.Fatalf("expected censored text, got %q", capResp.Result.CensoredText)
	}

	// The caption hold expires on its own shortly after.
	deadline := time.Now().Add(5 * time.Second)
	for {
		stateResp, stateErr := client.MuteState()
		if stateErr != nil {
			t.Fatalf("MuteState failed: %v", stateErr)
		}
		if !stateResp.Mute.Muted {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("caption hold did not expire")
		}
		time.Sleep(20 * time.Millisecond)
	}

	toggleOn, err := client.MuteToggle()
	if err != nil {
		t.Fatalf("MuteToggle failed: %v", err)
	}
	if !toggleOn.Muted || !toggleOn.Override {
		t.Fatalf("expected manual mute with override, got %+v", toggleOn)
	}
	toggleOff, err := client.MuteToggle()
	if err != nil {
		t.Fatalf("MuteToggle failed: %v", err)
	}
	if toggleOff.Muted || toggleOff.Override {
		t.Fatalf("expected manual unmute, got %+v", toggleOff)
	}

	sessResp, err := client.SessionSet("https://youtu.be/dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("SessionSet failed: %v", err)
	}
	if !sessResp.Session.Active || sessResp.Session.VideoID != "dQw4w9WgXcQ" {
		t.Fatalf("unexpected session state: %+v", sessResp.Session)
	}
	if _, err := client.Position(42.5, true); err != nil {
		t.Fatalf("Position failed: %v", err)
	}
	if _, err := client.SessionSet("garbage"); err == nil {
		t.Fatal("expected error for invalid session url")
	}
	clearResp, err := client.SessionSet("")
	if err != nil {
		t.Fatalf("SessionSet clear failed: %v", err)
	}
	if clearResp.Session.Active {
		t.Fatal("expected cleared session to be inactive")
	}

	schedResp, err := client.ScheduleGet("abc123XYZ-_")
	if err != nil {
		t.Fatalf("ScheduleGet failed: %v", err)
	}
	if schedResp.Found {
		t.Fatal("did not expect a schedule before one was stored")
	}
	if _, err := client.ScheduleGet("bad id"); err == nil {
		t.Fatal("expected error for invalid video id")
	}
	sched := schedule.Schedule{
		VideoID:      "abc123XYZ-_",
		CanonicalURL: media.CanonicalURL("abc123XYZ-_"),
		Windows:      []schedule.Window{{Start: 4, End: 6, Term: "frak"}},
	}
	if err := store.SaveSchedule(ctx, sched); err != nil {
		t.Fatalf("SaveSchedule: %v", err)
	}
	schedResp, err = client.ScheduleGet("abc123XYZ-_")
	if err != nil {
		t.Fatalf("ScheduleGet failed: %v", err)
	}
	if !schedResp.Found || len(schedResp.Schedule.Windows) != 1 {
		t.Fatalf("unexpected schedule response: %+v", schedResp)
	}
	if schedResp.Schedule.MutedSeconds != 2 {
		t.Fatalf("expected 2 muted seconds, got %v", schedResp.Schedule.MutedSeconds)
	}

	removeTerm, err := client.BanlistRemove("frak")
	if err != nil {
		t.Fatalf("BanlistRemove failed: %v", err)
	}
	if !removeTerm.Removed {
		t.Fatal("expected term to be removed")
	}

	itemC := testsupport.EnqueueVideo(t, store, "zzzzzzzzzzz")
	if _, err := store.CompleteHead(ctx, itemC, true); err != nil {
		t.Fatalf("CompleteHead: %v", err)
	}
	procResp, err := client.Processed(10)
	if err != nil {
		t.Fatalf("Processed failed: %v", err)
	}
	if procResp.Total != 1 || len(procResp.Entries) != 1 || procResp.Entries[0].VideoID != "zzzzzzzzzzz" {
		t.Fatalf("unexpected processed response: %+v", procResp)
	}
	procClear, err := client.ProcessedClear()
	if err != nil {
		t.Fatalf("ProcessedClear failed: %v", err)
	}
	if procClear.Removed != 1 {
		t.Fatalf("expected 1 processed entry cleared, got %d", procClear.Removed)
	}

	dbHealth, err := client.DatabaseHealth()
	if err != nil {
		t.Fatalf("DatabaseHealth failed: %v", err)
	}
	if !strings.HasSuffix(dbHealth.DBPath, "bleep.db") {
		t.Fatalf("unexpected db path: %s", dbHealth.DBPath)
	}
	if !dbHealth.IntegrityCheck {
		t.Fatalf("expected integrity check to pass: %+v", dbHealth)
	}

	notifyResp, err := client.TestNotification()
	if err != nil {
		t.Fatalf("TestNotification failed: %v", err)
	}
	if notifyResp.Sent || notifyResp.Message == "" {
		t.Fatalf("expected unsent probe with message, got %#v", notifyResp)
	}

	if err := os.WriteFile(logPath, []byte("first\nsecond\nthird\n"), 0o644); err != nil {
		t.Fatalf("write log file: %v", err)
	}
	logResp, err := client.LogTail(ipc.LogTailRequest{Offset: -1, Limit: 2})
	if err != nil {
		t.Fatalf("LogTail initial failed: %v", err)
	}
	if len(logResp.Lines) != 2 || logResp.Lines[0] != "second" || logResp.Lines[1] != "third" {
		t.Fatalf("unexpected log tail response: %#v", logResp.Lines)
	}

	followDone := make(chan struct{})
	go func(offset int64) {
		resp, err := client.LogTail(ipc.LogTailRequest{Offset: offset, Follow: true, WaitMillis: 500})
		if err != nil {
			t.Errorf("LogTail follow error: %v", err)
			return
		}
		if len(resp.Lines) != 1 || resp.Lines[0] != "fourth" {
			t.Errorf("unexpected follow lines: %#v", resp.Lines)
		}
		close(followDone)
	}(logResp.Offset)

	time.Sleep(100 * time.Millisecond)
	if f, err := os.OpenFile(logPath, os.O_APPEND|os.O_WRONLY, 0o644); err == nil {
		_, _ = f.WriteString("fourth\n")
		_ = f.Close()
	} else {
		t.Fatalf("append log: %v", err)
	}

	select {
	case <-followDone:
	case <-time.After(10 * time.Second):
		t.Fatal("log tail follow timed out")
	}

	qClear, err := client.QueueClear()
	if err != nil {
		t.Fatalf("QueueClear failed: %v", err)
	}
	if qClear.Removed != 2 {
		t.Fatalf("expected 2 items cleared, got %d", qClear.Removed)
	}

	startResp, err := client.Start()
	if err != nil {
		t.Fatalf("Start RPC failed: %v", err)
	}
	if !startResp.Started {
		t.Fatalf("expected Started=true, message=%s", startResp.Message)
	}

	status, err = client.Status()
	if err != nil {
		t.Fatalf("Status RPC failed: %v", err)
	}
	if !status.Running {
		t.Fatal("expected daemon to be running")
	}

	stopResp, err := client.Stop()
	if err != nil {
		t.Fatalf("Stop RPC failed: %v", err)
	}
	if !stopResp.Stopped {
		t.Fatal("expected stop response to be true")
	}

	status, err = client.Status()
	if err != nil {
		t.Fatalf("Status RPC failed: %v", err)
	}
	if status.Running {
		t.Fatal("expected daemon to be stopped")
	}
}
