package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable. The oracle endpoint is checked
// separately by ValidateOracle because read-only commands never probe.
func (c *Config) Validate() error {
	if err := c.validateInput(); err != nil {
		return err
	}
	if err := c.validateEngine(); err != nil {
		return err
	}
	if err := c.validateOracleLimits(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateInput() error {
	if len([]rune(c.Input.Delimiter)) > 1 {
		return fmt.Errorf("input.delimiter must be a single character, got %q", c.Input.Delimiter)
	}
	if c.Input.Delimiter == "\"" || c.Input.Delimiter == "\n" || c.Input.Delimiter == "\r" {
		return fmt.Errorf("input.delimiter %q is not allowed", c.Input.Delimiter)
	}
	return nil
}

func (c *Config) validateEngine() error {
	if c.Engine.Workers <= 0 {
		return errors.New("engine.workers must be positive")
	}
	if c.Engine.Autosave < 0 {
		return errors.New("engine.autosave must be zero (disabled) or positive")
	}
	return nil
}

func (c *Config) validateOracleLimits() error {
	if c.Oracle.ConfirmStatus < 100 || c.Oracle.ConfirmStatus > 599 {
		return fmt.Errorf("oracle.confirm_status must be an HTTP status code, got %d", c.Oracle.ConfirmStatus)
	}
	if c.Oracle.TimeoutSeconds < 0 {
		return errors.New("oracle.timeout_seconds must be zero (default 30) or positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}

// ValidateOracle ensures the oracle endpoint is configured for probing.
func (c *Config) ValidateOracle() error {
	template := c.Oracle.URLTemplate
	if template == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = defaultConfigPath
		}
		return fmt.Errorf("oracle.url_template is required. Set SIEVE_ORACLE_URL or edit %s (create with 'sieve config init')", defaultPath)
	}
	if !strings.Contains(template, IdentifierPlaceholder) {
		return fmt.Errorf("oracle.url_template must contain %s", IdentifierPlaceholder)
	}
	parsed, err := url.Parse(strings.ReplaceAll(template, IdentifierPlaceholder, "x"))
	if err != nil {
		return fmt.Errorf("oracle.url_template: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("oracle.url_template must use http or https, got %q", parsed.Scheme)
	}
	if parsed.Host == "" {
		return errors.New("oracle.url_template must include a host")
	}
	return nil
}
