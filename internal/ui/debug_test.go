package ui

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/abelbrown/orbit/internal/nav"
	"github.com/abelbrown/orbit/internal/otel"
	"github.com/abelbrown/orbit/internal/ui/feed"
)

func TestDebugOverlayNilRing(t *testing.T) {
	result := debugOverlay(nil, nil, 80, 24)
	if result != "" {
		t.Errorf("debugOverlay(nil) should return empty string, got %q", result)
	}
}

// logInto sends events through a Logger into ring and waits until they
// have landed.
func logInto(ring *otel.Ring, events ...otel.Event) {
	l := otel.NewNullLogger()
	l.SetRing(ring)
	for _, e := range events {
		l.Emit(e)
	}
	l.Close()
}

func TestDebugOverlayRendersStats(t *testing.T) {
	ring := otel.NewRing(64)
	logInto(ring,
		otel.Event{Kind: otel.KindSnap},
		otel.Event{Kind: otel.KindSnap},
		otel.Event{Kind: otel.KindArrive},
		otel.Event{Kind: otel.KindPostAdd},
		otel.Event{Kind: otel.KindStoreError},
	)

	result := debugOverlay(ring, nil, 80, 40)

	if !strings.Contains(result, "Session Stats") {
		t.Error("overlay should contain 'Session Stats' header")
	}
	if !strings.Contains(result, "2 snaps, 1 arrivals, 0 returns") {
		t.Errorf("overlay should show navigation stats, got:\n%s", result)
	}
	if !strings.Contains(result, "1 added, 0 cancelled") {
		t.Errorf("overlay should show post stats, got:\n%s", result)
	}
	if !strings.Contains(result, "1 store, 0 system") {
		t.Errorf("overlay should show error stats, got:\n%s", result)
	}
	if !strings.Contains(result, "5 / 64 events") {
		t.Errorf("overlay should show buffer stats, got:\n%s", result)
	}
	if !strings.Contains(result, "By source:  nav 3 · post 1 · store 1") {
		t.Errorf("overlay should count events per subsystem, busiest first, got:\n%s", result)
	}
	if strings.Contains(result, "Counters") {
		t.Error("no counters section without counters")
	}
}

func TestDebugOverlayCounters(t *testing.T) {
	ring := otel.NewRing(8)
	counters := map[string]int64{
		"orbit_posts_created_total": 3,
		"orbit_gravity_snaps_total": 1,
	}

	result := debugOverlay(ring, counters, 80, 40)

	if !strings.Contains(result, "Counters") {
		t.Errorf("overlay should contain counters header, got:\n%s", result)
	}
	snaps := strings.Index(result, "orbit_gravity_snaps_total")
	posts := strings.Index(result, "orbit_posts_created_total")
	if snaps < 0 || posts < 0 {
		t.Fatalf("overlay should list both counters, got:\n%s", result)
	}
	if snaps > posts {
		t.Error("counters should be listed in name order")
	}
}

func TestDebugOverlayRecentEvents(t *testing.T) {
	ring := otel.NewRing(64)
	logInto(ring,
		otel.Event{Kind: otel.KindPing, Msg: "hello world"},
		otel.Event{Kind: otel.KindStoreError, Err: "disk full"},
		otel.Event{Kind: otel.KindPostAdd, PostID: "abcdef1234567890"},
		otel.Event{Kind: otel.KindArrive, Dur: 2*time.Second + 400*time.Microsecond},
	)

	result := debugOverlay(ring, nil, 80, 40)

	if !strings.Contains(result, "Recent Events") {
		t.Error("overlay should contain 'Recent Events' header")
	}
	if !strings.Contains(result, "hello world") {
		t.Errorf("overlay should show event message, got:\n%s", result)
	}
	if !strings.Contains(result, "ERR:disk full") {
		t.Errorf("overlay should show error, got:\n%s", result)
	}
	if !strings.Contains(result, "post:abcdef12") {
		t.Errorf("overlay should show truncated post ID, got:\n%s", result)
	}
	if !strings.Contains(result, "2s") {
		t.Errorf("overlay should show the dwell, got:\n%s", result)
	}
}

func TestDebugOverlayTruncation(t *testing.T) {
	ring := otel.NewRing(64)
	var scrolls []otel.Event
	for i := 0; i < 30; i++ {
		scrolls = append(scrolls, otel.Event{Kind: otel.KindFeedScroll})
	}
	logInto(ring, scrolls...)

	// Very small height should still render without panic
	result := debugOverlay(ring, nil, 80, 10)
	if result == "" {
		t.Error("overlay should still render with small height")
	}

	lines := strings.Count(result, "\n")
	if lines > 20 {
		t.Errorf("overlay should be truncated, got %d lines", lines)
	}
}

func TestDebugToggle(t *testing.T) {
	ring := otel.NewRing(16)
	app := NewAppWithConfig(AppConfig{
		Obs: ObsConfig{Ring: ring},
	})
	app.ready = true
	app.width = 80
	app.height = 24

	if app.debugVisible {
		t.Error("debug should be hidden initially")
	}

	model, _ := app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'D'}})
	updated := model.(App)
	if !updated.debugVisible {
		t.Error("D should show debug overlay")
	}

	view := updated.View()
	if !strings.Contains(view, "[DEBUG]") {
		t.Errorf("debug view should contain '[DEBUG]', got:\n%s", view)
	}

	model, _ = updated.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'D'}})
	updated = model.(App)
	if updated.debugVisible {
		t.Error("second D should hide debug overlay")
	}
}

func TestDebugOverlayFollowsNavigation(t *testing.T) {
	ring := otel.NewRing(64)
	events := otel.NewNullLogger()
	events.SetRing(ring)

	fs := &fakeStore{posts: samplePosts()}
	clk := &clock{t: time.Date(2026, 3, 1, 13, 0, 0, 0, time.UTC)}
	app := NewAppWithConfig(AppConfig{
		Store: fs,
		Now:   clk.now,
		Obs:   ObsConfig{Events: events, Ring: ring},
	})
	app, _ = update(t, app, tea.WindowSizeMsg{Width: 80, Height: 40})
	app, _ = update(t, app, ContentLoaded{Posts: fs.posts})

	app, _ = update(t, app, feed.ScrolledToBottomMsg{})
	clk.t = clk.t.Add(nav.Dwell)
	app, _ = update(t, app, nav.DwellElapsedMsg{Token: app.nav.Token(), At: clk.t})
	app, _ = update(t, app, runes("b"))
	app, _ = update(t, app, ContentLoaded{Err: errors.New("database is locked")})
	events.Close()

	tally := ring.Tally()
	if tally.Kinds[otel.KindSnap] != 1 || tally.Kinds[otel.KindArrive] != 1 || tally.Kinds[otel.KindReturn] != 1 {
		t.Errorf("navigation events = %v", tally.Kinds)
	}
	if tally.Subsystems["nav"] != 3 || tally.Subsystems["store"] != 1 {
		t.Errorf("subsystems = %v", tally.Subsystems)
	}

	var arrive otel.Event
	for _, e := range ring.Recent(ring.Len()) {
		if e.Kind == otel.KindArrive {
			arrive = e
		}
	}
	if arrive.Dur != nav.Dwell || arrive.Screen != "atmosphere" {
		t.Errorf("arrive event = %+v, want the full dwell into atmosphere", arrive)
	}

	result := debugOverlay(ring, nil, 80, 40)
	if !strings.Contains(result, "1 snaps, 1 arrivals, 1 returns") {
		t.Errorf("overlay should follow the round trip, got:\n%s", result)
	}
	if !strings.Contains(result, "ERR:database is locked") {
		t.Errorf("overlay should show the store error, got:\n%s", result)
	}
}

func TestSubsystemLine(t *testing.T) {
	if got := subsystemLine(nil); got != "" {
		t.Errorf("subsystemLine(nil) = %q", got)
	}
	got := subsystemLine(map[string]int{"ui": 1, "feed": 4, "nav": 1})
	if got != "feed 4 · nav 1 · ui 1" {
		t.Errorf("subsystemLine = %q", got)
	}
}

func TestFormatAge(t *testing.T) {
	tests := []struct {
		dur  time.Duration
		want string
	}{
		{0, "0ms"},
		{50 * time.Millisecond, "50ms"},
		{999 * time.Millisecond, "999ms"},
		{1500 * time.Millisecond, "1.5s"},
		{30 * time.Second, "30.0s"},
		{90 * time.Second, "2m"},
		{5 * time.Minute, "5m"},
	}
	for _, tt := range tests {
		got := formatAge(tt.dur)
		if got != tt.want {
			t.Errorf("formatAge(%v) = %q, want %q", tt.dur, got, tt.want)
		}
	}
}

func TestFormatAgeNegative(t *testing.T) {
	got := formatAge(-5 * time.Second)
	if got != "0ms" {
		t.Errorf("formatAge(-5s) = %q, want \"0ms\"", got)
	}
}

func TestTruncateRunes(t *testing.T) {
	if got := truncateRunes("short", 10); got != "short" {
		t.Errorf("truncateRunes short = %q", got)
	}
	if got := truncateRunes("ørbitørbit", 5); got != "ørbi…" {
		t.Errorf("truncateRunes = %q, want %q", got, "ørbi…")
	}
}
