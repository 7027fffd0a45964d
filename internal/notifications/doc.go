// Package notifications delivers daemon events via pluggable notifiers.
//
// The default implementation publishes to ntfy using the topic configured in
// config.toml and gracefully degrades to a no-op when no topic is set.
// Enumerated event types cover queue lifecycle, per-video outcomes, and
// errors so callers emit consistent messages without duplicating HTTP glue.
// Per-category toggles (queue, processing, errors) and a dedup window that
// drops identical messages sent in quick succession are applied here, not at
// call sites.
//
// Extend this package if you need alternative transports; daemon code
// depends only on the Service interface.
package notifications
