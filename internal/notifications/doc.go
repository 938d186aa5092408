// Package notifications announces synced deletions over ntfy.
//
// NewService returns an ntfy-backed Service when a topic URL is configured
// and a no-op otherwise, so callers never branch on whether notifications
// are set up.
package notifications
