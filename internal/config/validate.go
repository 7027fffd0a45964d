package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateAnalysis(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	if err := c.validateMute(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateAnalysis() error {
	base := strings.TrimSpace(c.Analysis.BaseURL)
	if base == "" {
		return errors.New("analysis.base_url must be set")
	}
	parsed, err := url.Parse(base)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("analysis.base_url must be an absolute http(s) URL, got %q", base)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("analysis.base_url must use http or https, got %q", parsed.Scheme)
	}
	return ensurePositiveMap(map[string]int{
		"analysis.request_timeout": c.Analysis.RequestTimeout,
		"analysis.poll_interval":   c.Analysis.PollInterval,
	})
}

func (c *Config) validateWorkflow() error {
	return ensurePositiveMap(map[string]int{
		"workflow.queue_poll_interval": c.Workflow.QueuePollInterval,
	})
}

func (c *Config) validateMute() error {
	if err := ensurePositiveMap(map[string]int{
		"mute.caption_hold_ms":  c.Mute.CaptionHoldMS,
		"mute.schedule_tick_ms": c.Mute.ScheduleTickMS,
	}); err != nil {
		return err
	}
	if strings.TrimSpace(c.Mute.Placeholder) == "" {
		return errors.New("mute.placeholder must be set")
	}
	return nil
}

func (c *Config) validateNotifications() error {
	if c.Notifications.RequestTimeout <= 0 {
		return errors.New("notifications.request_timeout must be positive")
	}
	if c.Notifications.DedupWindowSeconds < 0 {
		return errors.New("notifications.dedup_window_seconds must be >= 0")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	for stage, level := range c.Logging.StageOverrides {
		switch strings.ToLower(strings.TrimSpace(level)) {
		case "debug", "info", "warn", "error":
		default:
			return fmt.Errorf("logging.stage_overrides[%s] must be debug, info, warn, or error, got %q", stage, level)
		}
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
