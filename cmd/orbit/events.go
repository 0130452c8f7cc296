package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abelbrown/orbit/internal/config"
)

// eventRecord mirrors otel.Event for JSON decoding.
// We decode from JSONL rather than importing otel to keep this
// subcommand usable even if the event schema evolves.
type eventRecord struct {
	Time      time.Time `json:"t"`
	Level     string    `json:"level"`
	Kind      string    `json:"kind"`
	Comp      string    `json:"comp"`
	SessionID string    `json:"session_id"`
	DurMs     float64   `json:"dur_ms"`
	Screen    string    `json:"screen"`
	PostID    string    `json:"post_id"`
	Value     string    `json:"value"`
	Err       string    `json:"err"`
	Msg       string    `json:"msg"`
}

// eventFilter selects which records are shown.
type eventFilter struct {
	kind    string
	level   string
	comp    string
	session string
}

// levelRank returns a numeric rank for filtering (higher = more severe).
func levelRank(level string) int {
	switch level {
	case "debug":
		return 0
	case "info":
		return 1
	case "warn":
		return 2
	case "error":
		return 3
	default:
		return 0
	}
}

func (f eventFilter) match(ev eventRecord) bool {
	if f.kind != "" && !strings.HasPrefix(ev.Kind, f.kind) {
		return false
	}
	if f.level != "" && levelRank(ev.Level) < levelRank(f.level) {
		return false
	}
	if f.comp != "" && ev.Comp != f.comp {
		return false
	}
	if f.session != "" && ev.SessionID != f.session {
		return false
	}
	return true
}

func newEventsCmd() *cobra.Command {
	var (
		configPath string
		tail       int
		follow     bool
		rawJSON    bool
		filter     eventFilter
	)
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Show the JSONL event log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			f, err := os.Open(cfg.Events.Path)
			if err != nil {
				return fmt.Errorf("event log not found at %s (run orbit first to generate events): %w", cfg.Events.Path, err)
			}
			defer f.Close()

			out := cmd.OutOrStdout()
			for _, l := range readTailLines(f, tail, filter.match) {
				fmt.Fprintln(out, formatEvent(l.ev, l.raw, rawJSON))
			}
			if !follow {
				return nil
			}
			return followEvents(cmd, f, filter.match, rawJSON)
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&configPath, "config", "c", "", "config file (default ~/.config/orbit/config.yaml)")
	fl.IntVar(&tail, "tail", 50, "number of recent lines to show")
	fl.BoolVarP(&follow, "follow", "f", false, "follow mode (like tail -f)")
	fl.StringVar(&filter.kind, "kind", "", "filter by event kind prefix (e.g. 'nav')")
	fl.StringVar(&filter.level, "level", "", "minimum level: debug, info, warn, error")
	fl.StringVar(&filter.comp, "comp", "", "filter by component name")
	fl.StringVar(&filter.session, "session", "", "filter by session ID")
	fl.BoolVar(&rawJSON, "json", false, "output raw JSON lines")
	return cmd
}

// followEvents polls f for appended lines until the command is cancelled.
func followEvents(cmd *cobra.Command, f *os.File, match func(eventRecord) bool, rawJSON bool) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	reader := bufio.NewReader(f)
	for {
		line, err := reader.ReadBytes('\n')
		if err != nil {
			if err != io.EOF {
				return fmt.Errorf("read event log: %w", err)
			}
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(100 * time.Millisecond):
			}
			continue
		}
		line = trimLine(line)
		if len(line) == 0 {
			continue
		}
		var ev eventRecord
		if json.Unmarshal(line, &ev) != nil {
			continue
		}
		if match(ev) {
			fmt.Fprintln(out, formatEvent(ev, line, rawJSON))
		}
	}
}

func formatEvent(ev eventRecord, raw []byte, rawJSON bool) string {
	if rawJSON {
		return string(raw)
	}
	ts := ev.Time.Format("15:04:05.000")
	lvl := strings.ToUpper(ev.Level)
	if lvl == "" {
		lvl = "?"
	}

	parts := []string{fmt.Sprintf("%s %-5s [%-8s] %-18s", ts, lvl, ev.Comp, ev.Kind)}

	if ev.Msg != "" {
		parts = append(parts, "- "+ev.Msg)
	}
	if ev.DurMs > 0 {
		parts = append(parts, fmt.Sprintf("(%.*fms)", durPrecision(ev.DurMs), ev.DurMs))
	}
	if ev.Screen != "" {
		parts = append(parts, "screen="+ev.Screen)
	}
	if ev.PostID != "" {
		parts = append(parts, "post="+ev.PostID)
	}
	if ev.Value != "" {
		parts = append(parts, fmt.Sprintf("v=%q", ev.Value))
	}
	if ev.Err != "" {
		parts = append(parts, "err="+ev.Err)
	}

	return strings.Join(parts, " ")
}

type parsedLine struct {
	ev  eventRecord
	raw []byte
}

// readTailLines reads r and returns the last n lines matching the filter.
func readTailLines(r io.Reader, n int, match func(eventRecord) bool) []parsedLine {
	scanner := bufio.NewScanner(r)
	// long error or message text
	scanner.Buffer(make([]byte, 0, 64*1024), 256*1024)

	if n <= 0 {
		return nil
	}
	ring := make([]parsedLine, 0, n)

	for scanner.Scan() {
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var ev eventRecord
		if json.Unmarshal(raw, &ev) != nil {
			continue
		}
		if !match(ev) {
			continue
		}
		// scanner reuses its buffer
		rawCopy := make([]byte, len(raw))
		copy(rawCopy, raw)

		if len(ring) < n {
			ring = append(ring, parsedLine{ev: ev, raw: rawCopy})
		} else {
			copy(ring, ring[1:])
			ring[n-1] = parsedLine{ev: ev, raw: rawCopy}
		}
	}

	return ring
}

func trimLine(b []byte) []byte {
	for len(b) > 0 && (b[len(b)-1] == '\n' || b[len(b)-1] == '\r') {
		b = b[:len(b)-1]
	}
	return b
}

func durPrecision(ms float64) int {
	if ms >= 100 {
		return 0
	}
	if ms >= 1 {
		return 1
	}
	return 2
}
