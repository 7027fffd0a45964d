package main

import (
	"strings"

	"bleep/internal/config"
	"bleep/internal/daemonrun"
)

// runOptions maps file configuration onto daemon runtime options. The
// standalone binary takes no flags; everything comes from the config file.
func runOptions(cfg *config.Config) daemonrun.Options {
	if cfg == nil {
		return daemonrun.Options{}
	}
	return daemonrun.Options{
		LogLevel:    cfg.Logging.Level,
		Development: strings.EqualFold(cfg.Logging.Format, "console"),
	}
}
