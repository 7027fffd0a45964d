package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeAnalysis()
	c.normalizeWorkflow()
	c.normalizeMute()
	c.normalizeBanlist()
	c.normalizeNotifications()
	c.normalizeLogging()
	c.normalizeAPI()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeAnalysis() {
	c.Analysis.BaseURL = strings.TrimRight(strings.TrimSpace(c.Analysis.BaseURL), "/")
	if c.Analysis.BaseURL == "" {
		if value, ok := os.LookupEnv("BLEEP_ANALYSIS_URL"); ok {
			c.Analysis.BaseURL = strings.TrimRight(strings.TrimSpace(value), "/")
		}
	}
	if c.Analysis.BaseURL == "" {
		c.Analysis.BaseURL = defaultAnalysisBaseURL
	}
	if c.Analysis.RequestTimeout <= 0 {
		c.Analysis.RequestTimeout = defaultAnalysisRequestTimeout
	}
	if c.Analysis.PollInterval <= 0 {
		c.Analysis.PollInterval = defaultAnalysisPollInterval
	}
}

func (c *Config) normalizeWorkflow() {
	if c.Workflow.QueuePollInterval <= 0 {
		c.Workflow.QueuePollInterval = defaultQueuePollInterval
	}
}

func (c *Config) normalizeMute() {
	if c.Mute.CaptionHoldMS <= 0 {
		c.Mute.CaptionHoldMS = defaultCaptionHoldMS
	}
	if c.Mute.ScheduleTickMS <= 0 {
		c.Mute.ScheduleTickMS = defaultScheduleTickMS
	}
	if strings.TrimSpace(c.Mute.Placeholder) == "" {
		c.Mute.Placeholder = defaultMutePlaceholder
	}
}

func (c *Config) normalizeBanlist() {
	if len(c.Banlist.ExtraTerms) == 0 {
		return
	}
	terms := make([]string, 0, len(c.Banlist.ExtraTerms))
	for _, term := range c.Banlist.ExtraTerms {
		trimmed := strings.TrimSpace(term)
		if trimmed == "" {
			continue
		}
		terms = append(terms, trimmed)
	}
	c.Banlist.ExtraTerms = terms
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.NtfyTopic == "" {
		if value, ok := os.LookupEnv("BLEEP_NTFY_TOPIC"); ok {
			c.Notifications.NtfyTopic = strings.TrimSpace(value)
		}
	}
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyRequestTimeout
	}
	if c.Notifications.DedupWindowSeconds < 0 {
		c.Notifications.DedupWindowSeconds = 0
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}

func (c *Config) normalizeAPI() {
	c.API.Bind = strings.TrimSpace(c.API.Bind)
	if c.API.Bind == "" {
		c.API.Bind = defaultAPIBind
	}
	c.API.Token = strings.TrimSpace(c.API.Token)
	if c.API.Token == "" {
		if value, ok := os.LookupEnv("BLEEP_API_TOKEN"); ok {
			c.API.Token = strings.TrimSpace(value)
		}
	}
}
