package oracle

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"sieve/internal/candidates"
	"sieve/internal/config"
	"sieve/internal/services"
)

const (
	defaultUserAgent     = "Mozilla/5.0"
	defaultConfirmStatus = http.StatusOK
	defaultTimeout       = 30 * time.Second
	drainLimit           = 64 * 1024
)

// Options describes the oracle endpoint.
type Options struct {
	URLTemplate   string
	UserAgent     string
	ConfirmStatus int
	Timeout       time.Duration
}

// OptionsFromConfig maps the [oracle] config section to Options.
func OptionsFromConfig(cfg *config.Config) Options {
	if cfg == nil {
		return Options{}
	}
	return Options{
		URLTemplate:   cfg.Oracle.URLTemplate,
		UserAgent:     cfg.Oracle.UserAgent,
		ConfirmStatus: cfg.Oracle.ConfirmStatus,
		Timeout:       time.Duration(cfg.Oracle.TimeoutSeconds) * time.Second,
	}
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client. Redirects stay disabled.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.http = client
		}
	}
}

// Client issues classification probes against the oracle.
type Client struct {
	template      string
	userAgent     string
	confirmStatus int
	http          *http.Client
}

// New validates opts and constructs a Client.
func New(opts Options, extra ...Option) (*Client, error) {
	template := strings.TrimSpace(opts.URLTemplate)
	if template == "" {
		return nil, services.Wrap(services.ErrConfiguration, "oracle", "init", "url template is required", nil)
	}
	if !strings.Contains(template, config.IdentifierPlaceholder) {
		return nil, services.Wrap(services.ErrConfiguration, "oracle", "init",
			fmt.Sprintf("url template must contain %s", config.IdentifierPlaceholder), nil)
	}
	if _, err := url.Parse(strings.ReplaceAll(template, config.IdentifierPlaceholder, "x")); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "oracle", "init", "parse url template", err)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	c := &Client{
		template:      template,
		userAgent:     strings.TrimSpace(opts.UserAgent),
		confirmStatus: opts.ConfirmStatus,
		http:          &http.Client{Timeout: timeout},
	}
	if c.userAgent == "" {
		c.userAgent = defaultUserAgent
	}
	if c.confirmStatus == 0 {
		c.confirmStatus = defaultConfirmStatus
	}
	for _, opt := range extra {
		opt(c)
	}

	// Copy so a caller-supplied client is not mutated.
	httpClient := *c.http
	httpClient.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}
	c.http = &httpClient
	return c, nil
}

// URL renders the probe URL for identifier.
func (c *Client) URL(identifier string) string {
	return strings.ReplaceAll(c.template, config.IdentifierPlaceholder, url.PathEscape(identifier))
}

// Probe classifies identifier. The returned status is CONFIRMED or REJECTED
// when err is nil. A blank identifier is rejected without a request.
func (c *Client) Probe(ctx context.Context, identifier string) (candidates.Status, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return candidates.StatusRejected, nil
	}

	target := c.URL(identifier)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return candidates.StatusUnknown, &TransportError{Identifier: identifier, URL: target, Err: err}
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return candidates.StatusUnknown, &TransportError{Identifier: identifier, URL: target, Err: err}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, drainLimit))

	return c.Classify(resp.StatusCode), nil
}

// Classify maps an HTTP status code to a candidate status.
func (c *Client) Classify(code int) candidates.Status {
	if code == c.confirmStatus {
		return candidates.StatusConfirmed
	}
	return candidates.StatusRejected
}
