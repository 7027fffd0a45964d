package config

const (
	defaultStateDir                 = "~/.local/share/bleep"
	defaultLogDir                   = "~/.local/share/bleep/logs"
	defaultLogRetentionDays         = 60
	defaultLogFormat                = "console"
	defaultLogLevel                 = "info"
	defaultAnalysisBaseURL          = "http://127.0.0.1:8000"
	defaultAnalysisRequestTimeout   = 30
	defaultAnalysisPollInterval     = 10
	defaultQueuePollInterval        = 5
	defaultCaptionHoldMS            = 500
	defaultScheduleTickMS           = 200
	defaultMutePlaceholder          = "****"
	defaultNotifyRequestTimeout     = 10
	defaultNotifyDedupWindowSeconds = 600
	defaultAPIBind                  = "127.0.0.1:7512"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
		},
		Analysis: Analysis{
			BaseURL:        defaultAnalysisBaseURL,
			RequestTimeout: defaultAnalysisRequestTimeout,
			PollInterval:   defaultAnalysisPollInterval,
		},
		Workflow: Workflow{
			QueuePollInterval: defaultQueuePollInterval,
		},
		Mute: Mute{
			CaptionHoldMS:  defaultCaptionHoldMS,
			ScheduleTickMS: defaultScheduleTickMS,
			Placeholder:    defaultMutePlaceholder,
		},
		Notifications: Notifications{
			RequestTimeout:     defaultNotifyRequestTimeout,
			Queue:              true,
			Processing:         true,
			Errors:             true,
			DedupWindowSeconds: defaultNotifyDedupWindowSeconds,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
		API: API{
			Bind: defaultAPIBind,
		},
	}
}
