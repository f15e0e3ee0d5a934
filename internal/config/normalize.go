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
	c.normalizeInput()
	c.normalizeOracle()
	c.normalizeNotifications()
	if err := c.normalizeMetrics(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeInput() {
	c.Input.Column = strings.TrimSpace(c.Input.Column)
	if c.Input.Column == "" {
		c.Input.Column = defaultInputColumn
	}
	c.Input.ColumnHint = strings.TrimSpace(c.Input.ColumnHint)
	if c.Input.ColumnHint == "" {
		c.Input.ColumnHint = defaultInputColumnHint
	}
	switch strings.ToLower(c.Input.Delimiter) {
	case "tab", `\t`:
		c.Input.Delimiter = "\t"
	case "comma":
		c.Input.Delimiter = ","
	case "semicolon":
		c.Input.Delimiter = ";"
	}
}

func (c *Config) normalizeOracle() {
	c.Oracle.URLTemplate = strings.TrimSpace(c.Oracle.URLTemplate)
	if c.Oracle.URLTemplate == "" {
		if value, ok := os.LookupEnv("SIEVE_ORACLE_URL"); ok {
			c.Oracle.URLTemplate = strings.TrimSpace(value)
		}
	}
	c.Oracle.UserAgent = strings.TrimSpace(c.Oracle.UserAgent)
	if c.Oracle.UserAgent == "" {
		c.Oracle.UserAgent = defaultOracleUserAgent
	}
	if c.Oracle.ConfirmStatus == 0 {
		c.Oracle.ConfirmStatus = defaultOracleConfirmStatus
	}
	if c.Oracle.TimeoutSeconds == 0 {
		c.Oracle.TimeoutSeconds = defaultOracleTimeout
	}
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.NtfyTopic == "" {
		if value, ok := os.LookupEnv("SIEVE_NTFY_TOPIC"); ok {
			c.Notifications.NtfyTopic = strings.TrimSpace(value)
		}
	}
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyTimeout
	}
}

func (c *Config) normalizeMetrics() error {
	if strings.TrimSpace(c.Metrics.Textfile) == "" {
		c.Metrics.Textfile = ""
		return nil
	}
	var err error
	if c.Metrics.Textfile, err = expandPath(c.Metrics.Textfile); err != nil {
		return fmt.Errorf("metrics.textfile: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	format := strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if format == "" {
		format = defaultLogFormat
	}
	c.Logging.Format = format

	level := strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if level == "" {
		level = defaultLogLevel
	}
	c.Logging.Level = level
}
