package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"bleep/internal/analysis"
	"bleep/internal/config"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	result := Result{Name: name, Description: "Required for daemon state"}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			result.Detail = fmt.Sprintf("%s (error: does not exist)", path)
			return result
		}
		result.Detail = fmt.Sprintf("%s (error: stat: %v)", path, err)
		return result
	}
	if !info.IsDir() {
		result.Detail = fmt.Sprintf("%s (error: is not a directory)", path)
		return result
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		result.Detail = fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)
		return result
	}
	result.Passed = true
	result.Detail = fmt.Sprintf("%s (read/write ok)", path)
	return result
}

// CheckAnalysisService verifies that the mute-schedule analysis service is
// reachable. It uses a 5-second timeout and a single attempt.
func CheckAnalysisService(ctx context.Context, cfg *config.Config) Result {
	result := Result{
		Name:        "Analysis service",
		Description: "Produces mute schedules for queued videos",
	}
	base := strings.TrimSpace(cfg.Analysis.BaseURL)
	if base == "" {
		result.Detail = "missing base url"
		return result
	}

	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	client := analysis.New(base, analysis.WithTimeout(5*time.Second))
	if err := client.Health(checkCtx); err != nil {
		result.Detail = summarizeAnalysisError(err)
		return result
	}
	result.Passed = true
	result.Detail = "reachable"
	return result
}

// CheckNotifications evaluates ntfy configuration without touching the
// network. A missing topic passes because notifications are optional.
func CheckNotifications(cfg *config.Config) Result {
	result := Result{
		Name:        "Notifications",
		Description: "Push notifications via ntfy",
		Optional:    true,
	}
	if strings.TrimSpace(cfg.Notifications.NtfyTopic) == "" {
		result.Passed = true
		result.Detail = "disabled (no topic configured)"
		return result
	}
	result.Passed = true
	result.Detail = fmt.Sprintf("topic %q", cfg.Notifications.NtfyTopic)
	return result
}

// summarizeAnalysisError produces a human-readable summary for analysis
// health check failures.
func summarizeAnalysisError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "health check timed out (analysis service unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "health check timed out (analysis service unreachable)"
	}
	return err.Error()
}
