// Package notifications delivers run events via ntfy.
//
// The default implementation publishes to the topic URL configured in
// config.toml and degrades to a no-op when no topic is set. Events are
// filtered by the per-event toggles in the [notifications] section so callers
// can publish unconditionally.
package notifications
