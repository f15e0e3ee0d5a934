package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"sieve/internal/config"
)

const userAgent = "sieve/0.1.0"

// Event identifies a notification type.
type Event string

const (
	EventRunStarted     Event = "run_started"
	EventRunCompleted   Event = "run_completed"
	EventRunInterrupted Event = "run_interrupted"
	EventError          Event = "error"
	EventTest           Event = "test"
)

// Payload carries event fields. Keys are event specific.
type Payload map[string]any

// Service publishes events.
type Service interface {
	Publish(ctx context.Context, event Event, payload Payload) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	if cfg == nil {
		return noopService{}
	}
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
		enabled: map[Event]bool{
			EventRunStarted:     cfg.Notifications.RunStarted,
			EventRunCompleted:   cfg.Notifications.RunCompleted,
			EventRunInterrupted: cfg.Notifications.RunCompleted,
			EventError:          cfg.Notifications.Errors,
			EventTest:           true,
		},
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
	enabled  map[Event]bool
}

func (n *ntfyService) Publish(ctx context.Context, event Event, data Payload) error {
	if !n.enabled[event] {
		return nil
	}
	msg, ok := format(event, data)
	if !ok {
		return nil
	}
	return n.send(ctx, msg)
}

func format(event Event, data Payload) (payload, bool) {
	source := data.text("source")
	switch event {
	case EventRunStarted:
		message := fmt.Sprintf("▶️ Validating %s identifiers from %s", humanize.Comma(int64(data.number("pending"))), source)
		if data.flag("resumed") {
			message += " (resumed)"
		}
		return payload{
			title:   "Sieve - Run Started",
			message: message,
			tags:    []string{"sieve", "run", "started"},
		}, true
	case EventRunCompleted:
		message := fmt.Sprintf("✅ %s: %s", source, data.text("summary"))
		if duration := data.duration("duration"); duration > 0 {
			message += " in " + duration.String()
		}
		if result := data.text("result"); result != "" {
			message += "\nResults: " + result
		}
		return payload{
			title:   "Sieve - Run Complete",
			message: message,
			tags:    []string{"sieve", "run", "completed"},
		}, true
	case EventRunInterrupted:
		return payload{
			title:   "Sieve - Run Interrupted",
			message: fmt.Sprintf("⏸️ %s stopped after %s; resume with --resume", source, data.text("summary")),
			tags:    []string{"sieve", "run", "interrupted"},
		}, true
	case EventError:
		var builder strings.Builder
		builder.WriteString("❌ Error")
		if label := data.text("context"); label != "" {
			builder.WriteString(" with ")
			builder.WriteString(label)
		}
		builder.WriteString(": ")
		if msg := data.text("error"); msg != "" {
			builder.WriteString(msg)
		} else {
			builder.WriteString("unknown")
		}
		return payload{
			title:    "Sieve - Error",
			message:  builder.String(),
			tags:     []string{"sieve", "error", "alert"},
			priority: "high",
		}, true
	case EventTest:
		return payload{
			title:    "Sieve - Test",
			message:  "🧪 Notification system test",
			tags:     []string{"sieve", "test"},
			priority: "low",
		}, true
	default:
		return payload{}, false
	}
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (p Payload) text(key string) string {
	switch v := p[key].(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case error:
		return strings.TrimSpace(v.Error())
	case fmt.Stringer:
		return strings.TrimSpace(v.String())
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

func (p Payload) number(key string) int {
	switch v := p[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	default:
		return 0
	}
}

func (p Payload) flag(key string) bool {
	v, _ := p[key].(bool)
	return v
}

func (p Payload) duration(key string) time.Duration {
	v, _ := p[key].(time.Duration)
	if v < 0 {
		return 0
	}
	return v.Round(time.Second)
}

type noopService struct{}

func (noopService) Publish(context.Context, Event, Payload) error { return nil }
