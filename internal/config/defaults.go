package config

const (
	defaultConfigPath          = "~/.config/sieve/config.toml"
	defaultLogDir              = "~/.local/share/sieve/logs"
	defaultStateDir            = "~/.local/share/sieve"
	defaultInputColumn         = "Emails"
	defaultInputColumnHint     = "mail"
	defaultOracleUserAgent     = "Mozilla/5.0"
	defaultOracleConfirmStatus = 200
	defaultOracleTimeout       = 30
	defaultEngineWorkers       = 50
	defaultEngineAutosave      = 5000
	defaultNotifyTimeout       = 10
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"

	// IdentifierPlaceholder is substituted with the path-escaped identifier.
	IdentifierPlaceholder = "{identifier}"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir:   defaultLogDir,
			StateDir: defaultStateDir,
		},
		Input: Input{
			Column:     defaultInputColumn,
			ColumnHint: defaultInputColumnHint,
		},
		Oracle: Oracle{
			UserAgent:      defaultOracleUserAgent,
			ConfirmStatus:  defaultOracleConfirmStatus,
			TimeoutSeconds: defaultOracleTimeout,
		},
		Engine: Engine{
			Workers:  defaultEngineWorkers,
			Autosave: defaultEngineAutosave,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
			RunStarted:     false,
			RunCompleted:   true,
			Errors:         true,
		},
		History: History{
			Enabled: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
