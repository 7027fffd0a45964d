package preflight

import (
	"context"

	"bleep/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name        string
	Description string
	Optional    bool
	Passed      bool
	Detail      string
}

// RunAll executes all preflight checks for the given config, including
// network probes. The daemon runs this once at startup.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := LocalChecks(cfg)
	results = append(results, CheckAnalysisService(ctx, cfg))
	return results
}

// LocalChecks executes the checks that touch only local state. Status
// queries use this to stay fast and offline-safe.
func LocalChecks(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("State directory", cfg.Paths.StateDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
	}
	results = append(results, CheckNotifications(cfg))
	return results
}
