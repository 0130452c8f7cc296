// Package ui provides the Bubble Tea TUI for Orbit.
package ui

import (
	"time"

	"github.com/abelbrown/orbit/internal/store"
)

// ContentLoaded is sent when posts and messages are read from the store.
type ContentLoaded struct {
	Posts    []store.Post
	Messages []store.Message
	Err      error
}

// PostAdded is sent when the store has accepted (or rejected) a new post.
type PostAdded struct {
	Post store.Post
	Err  error
}

// CopyDone reports the outcome of copying an image locator.
type CopyDone struct {
	Locator string
	Err     error
}

// FrameMsg drives header and overlay animation. Gen ties it to one run of
// the frame loop.
type FrameMsg struct {
	Gen int
	At  time.Time
}
