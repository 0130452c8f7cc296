// Package otel records what happens in an Orbit session.
//
// Each Event becomes one JSONL line in the event log, written off the UI
// goroutine by Logger. A Ring attached to the Logger keeps the latest
// events for the debug overlay.
package otel

import (
	"encoding/json"
	"strings"
	"time"
)

// Level defines event severity for filtering.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// EventKind identifies the category of an observability event.
// Dot-delimited: "<subsystem>.<action>".
type EventKind string

const (
	// Navigation events
	KindSnap   EventKind = "nav.snap"   // orbit → gravity-snap
	KindArrive EventKind = "nav.arrive" // gravity-snap → atmosphere
	KindReturn EventKind = "nav.return" // atmosphere → orbit
	KindCancel EventKind = "nav.cancel" // pending dwell torn down

	// Feed events
	KindFeedScroll EventKind = "feed.scroll"
	KindFeedBottom EventKind = "feed.bottom"

	// Posting events
	KindPostOpen   EventKind = "post.open"
	KindPostAdd    EventKind = "post.add"
	KindPostCancel EventKind = "post.cancel"

	// Track events
	KindTrackSelect   EventKind = "track.select"
	KindTrackPlayback EventKind = "track.playback"

	// Theme events
	KindBackground EventKind = "theme.background"
	KindTexture    EventKind = "theme.texture"

	// Store events
	KindStoreError EventKind = "store.error"

	// UI events
	KindOuterOrbit EventKind = "ui.outer_orbit"
	KindPing       EventKind = "ui.ping"
	KindCopy       EventKind = "ui.copy"

	// System events
	KindStartup  EventKind = "sys.startup"
	KindShutdown EventKind = "sys.shutdown"
	KindError    EventKind = "sys.error"

	// Trace events
	KindMsgReceived EventKind = "trace.msg_received"
)

// Event is one line of the session log. Kind is required; Time and
// SessionID are stamped by the Logger.
type Event struct {
	Time      time.Time     `json:"t"`
	Level     Level         `json:"level,omitempty"`
	Kind      EventKind     `json:"kind"`
	Comp      string        `json:"comp,omitempty"` // "app", "feed", "nav", "track", "composer"
	SessionID string        `json:"session_id,omitempty"`
	Dur       time.Duration `json:"-"`
	DurMs     float64       `json:"dur_ms,omitempty"` // from Dur, e.g. the dwell on nav.arrive
	Screen    string        `json:"screen,omitempty"`
	PostID    string        `json:"post_id,omitempty"`
	Value     string        `json:"value,omitempty"` // track title, color, texture name, scroll offset
	Err       string        `json:"err,omitempty"`
	Msg       string        `json:"msg,omitempty"`
}

// MarshalJSON writes Dur as fractional milliseconds.
func (e Event) MarshalJSON() ([]byte, error) {
	type plain Event
	if e.Dur > 0 {
		e.DurMs = float64(e.Dur) / float64(time.Millisecond)
	}
	return json.Marshal(plain(e))
}

// Subsystem is the part of a kind before the first dot ("nav" for
// "nav.snap").
func (k EventKind) Subsystem() string {
	sub, _, _ := strings.Cut(string(k), ".")
	return sub
}
