package config_test

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"bleep/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantState := filepath.Join(tempHome, ".local", "share", "bleep")
	if cfg.Paths.StateDir != wantState {
		t.Fatalf("unexpected state dir: got %q want %q", cfg.Paths.StateDir, wantState)
	}
	if cfg.Paths.LogDir != filepath.Join(wantState, "logs") {
		t.Fatalf("unexpected log dir: %q", cfg.Paths.LogDir)
	}
	if cfg.Analysis.BaseURL != "http://127.0.0.1:8000" {
		t.Fatalf("unexpected analysis base url: %q", cfg.Analysis.BaseURL)
	}
	if cfg.Analysis.PollInterval != 10 {
		t.Fatalf("unexpected poll interval: %d", cfg.Analysis.PollInterval)
	}
	if cfg.Mute.CaptionHoldMS != 500 {
		t.Fatalf("unexpected caption hold: %d", cfg.Mute.CaptionHoldMS)
	}
	if cfg.Mute.ScheduleTickMS != 200 {
		t.Fatalf("unexpected schedule tick: %d", cfg.Mute.ScheduleTickMS)
	}
	if cfg.Mute.Placeholder != "****" {
		t.Fatalf("unexpected placeholder: %q", cfg.Mute.Placeholder)
	}
	if cfg.API.Bind != "127.0.0.1:7512" {
		t.Fatalf("unexpected api bind: %q", cfg.API.Bind)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}

	for _, dir := range []string{cfg.Paths.StateDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}

	if cfg.DatabasePath() != filepath.Join(cfg.Paths.StateDir, "bleep.db") {
		t.Fatalf("unexpected database path: %q", cfg.DatabasePath())
	}
	if cfg.SocketPath() != filepath.Join(cfg.Paths.LogDir, "bleep.sock") {
		t.Fatalf("unexpected socket path: %q", cfg.SocketPath())
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "bleep.toml")

	type payload struct {
		Analysis struct {
			BaseURL      string `toml:"base_url"`
			PollInterval int    `toml:"poll_interval"`
		} `toml:"analysis"`
		Mute struct {
			CaptionHoldMS int    `toml:"caption_hold_ms"`
			Placeholder   string `toml:"placeholder"`
		} `toml:"mute"`
		Banlist struct {
			ExtraTerms []string `toml:"extra_terms"`
		} `toml:"banlist"`
	}
	custom := payload{}
	custom.Analysis.BaseURL = "https://example.com/analysis"
	custom.Analysis.PollInterval = 3
	custom.Mute.CaptionHoldMS = 750
	custom.Mute.Placeholder = "[bleep]"
	custom.Banlist.ExtraTerms = []string{"  frak ", "", "smeg head"}
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.Analysis.BaseURL != "https://example.com/analysis" {
		t.Fatalf("expected analysis base url override, got %q", cfg.Analysis.BaseURL)
	}
	if cfg.Analysis.PollInterval != 3 {
		t.Fatalf("expected poll interval 3, got %d", cfg.Analysis.PollInterval)
	}
	if cfg.Mute.CaptionHoldMS != 750 {
		t.Fatalf("expected caption hold 750, got %d", cfg.Mute.CaptionHoldMS)
	}
	if cfg.Mute.Placeholder != "[bleep]" {
		t.Fatalf("expected placeholder override, got %q", cfg.Mute.Placeholder)
	}
	want := []string{"frak", "smeg head"}
	if len(cfg.Banlist.ExtraTerms) != len(want) {
		t.Fatalf("expected trimmed extra terms %v, got %v", want, cfg.Banlist.ExtraTerms)
	}
	for i, term := range want {
		if cfg.Banlist.ExtraTerms[i] != term {
			t.Fatalf("expected extra term %q at %d, got %v", term, i, cfg.Banlist.ExtraTerms)
		}
	}
	// Unset sections fall back to defaults.
	if cfg.Workflow.QueuePollInterval != config.Default().Workflow.QueuePollInterval {
		t.Fatalf("unexpected queue poll interval: %d", cfg.Workflow.QueuePollInterval)
	}
}

func TestEnvFallbacksApplyWhenFileSilent(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("BLEEP_ANALYSIS_URL", "http://envhost:9000/")
	t.Setenv("BLEEP_NTFY_TOPIC", "bleep-alerts")
	t.Setenv("BLEEP_API_TOKEN", "secret-token")

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Analysis.BaseURL != "http://envhost:9000" {
		t.Fatalf("expected analysis url from env (trailing slash trimmed), got %q", cfg.Analysis.BaseURL)
	}
	if cfg.Notifications.NtfyTopic != "bleep-alerts" {
		t.Fatalf("expected ntfy topic from env, got %q", cfg.Notifications.NtfyTopic)
	}
	if cfg.API.Token != "secret-token" {
		t.Fatalf("expected api token from env, got %q", cfg.API.Token)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "base_url") {
		t.Fatalf("sample config missing analysis base_url: %s", contents)
	}

	// Validate it decodes
	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}

	if runtime.GOOS != "windows" {
		if cfg.Analysis.BaseURL == "" {
			t.Fatal("expected sample to set analysis.base_url")
		}
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	cfg := config.Default()
	cfg.Analysis.BaseURL = "not-a-url"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for relative analysis url")
	}

	cfg = config.Default()
	cfg.Analysis.BaseURL = "ftp://example.com"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for non-http scheme")
	}

	cfg = config.Default()
	cfg.Analysis.PollInterval = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for non-positive poll interval")
	}

	cfg = config.Default()
	cfg.Mute.CaptionHoldMS = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for non-positive caption hold")
	}

	cfg = config.Default()
	cfg.Mute.Placeholder = "   "
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for blank placeholder")
	}

	cfg = config.Default()
	cfg.Logging.StageOverrides = map[string]string{"polling": "loud"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown stage override level")
	}
}
