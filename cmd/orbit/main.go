// Command orbit runs the Orbit terminal client.
//
// Usage:
//
//	orbit                       Start the TUI
//	orbit --background ff5500   Start with a background color
//	orbit --texture grain       Start with a texture (none, concrete, grain)
//	orbit events                JSONL event log viewer
package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/abelbrown/orbit/internal/config"
	"github.com/abelbrown/orbit/internal/images"
	"github.com/abelbrown/orbit/internal/logging"
	"github.com/abelbrown/orbit/internal/metrics"
	"github.com/abelbrown/orbit/internal/nav"
	"github.com/abelbrown/orbit/internal/otel"
	"github.com/abelbrown/orbit/internal/store"
	"github.com/abelbrown/orbit/internal/theme"
	"github.com/abelbrown/orbit/internal/ui"
)

// ringSize is how many recent events the debug overlay can show.
const ringSize = 256

// flags holds root command options. Zero values mean "not given".
type flags struct {
	configPath string
	background string
	texture    string
	handle     string
	seed       int64
	noMouse    bool
	trace      bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "orbit:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var f flags
	cmd := &cobra.Command{
		Use:   "orbit",
		Short: "A terminal picture feed that ends",
		Long: `Orbit is a terminal picture feed. Scroll to the end of the feed and it
snaps you into Atmosphere: tracks, messages and the look of the terminal.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(f.configPath)
			if err != nil {
				return err
			}
			if err := applyFlags(&cfg, f, cmd); err != nil {
				return err
			}
			return run(cmd.Context(), cfg, f)
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&f.configPath, "config", "c", "", "config file (default ~/.config/orbit/config.yaml)")
	fl.StringVar(&f.background, "background", "", "initial background color, e.g. #1a1a2e")
	fl.StringVar(&f.texture, "texture", "", "initial texture: none, concrete or grain")
	fl.StringVar(&f.handle, "handle", "", "handle stamped on your posts")
	fl.Int64Var(&f.seed, "seed", 0, "random seed for the seeded feed (0 = time-based)")
	fl.BoolVar(&f.noMouse, "no-mouse", false, "do not capture the mouse")
	fl.BoolVar(&f.trace, "trace", false, "log every UI message to the event log")

	cmd.AddCommand(newEventsCmd())
	return cmd
}

// applyFlags overlays explicitly set flags on cfg and validates the result.
func applyFlags(cfg *config.Config, f flags, cmd *cobra.Command) error {
	changed := func(name string) bool { return cmd.Flags().Changed(name) }

	if changed("background") {
		bg := strings.TrimSpace(f.background)
		if bg != "" && !strings.HasPrefix(bg, "#") {
			bg = "#" + bg
		}
		cfg.Theme.Background = bg
	}
	if changed("texture") {
		cfg.Theme.Texture = f.texture
	}
	if changed("handle") {
		cfg.Author = strings.TrimPrefix(strings.TrimSpace(f.handle), "@")
	}
	if changed("no-mouse") && f.noMouse {
		off := false
		cfg.Mouse = &off
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func run(ctx context.Context, cfg config.Config, f flags) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := logging.Init(cfg.Log.Dir, cfg.Log.Level); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logging: %v\n", err)
	}
	defer logging.Close()
	logging.Info("Orbit starting", "background", cfg.Theme.Background, "texture", cfg.Theme.Texture)

	events, closeEvents := openEventLog(cfg)
	defer closeEvents()
	events.SetTracing(f.trace || otel.TraceFromEnv())
	ring := otel.NewRing(ringSize)
	events.SetRing(ring)

	rec, err := metrics.New(ctx)
	if err != nil {
		return fmt.Errorf("start metrics: %w", err)
	}
	defer func() {
		if err := rec.Shutdown(context.Background()); err != nil {
			logging.Warn("Metrics shutdown failed", "error", err)
		}
	}()

	seed := f.seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	st, err := store.Open(store.Options{
		Rand:   rand.New(rand.NewSource(seed)),
		Images: images.NewSource(cfg.Images.BaseURL),
		Author: cfg.Author,
	})
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()
	if err := st.Seed(); err != nil {
		return fmt.Errorf("seed store: %w", err)
	}
	logging.Info("Store seeded", "seed", seed)

	themeCfg, err := cfg.ThemeConfig()
	if err != nil {
		return fmt.Errorf("theme: %w", err)
	}

	var copyFn func(string) error
	if !clipboard.Unsupported {
		copyFn = clipboard.WriteAll
	}

	app := ui.NewAppWithConfig(ui.AppConfig{
		Store: st,
		Theme: theme.NewState(themeCfg),
		Nav:   nav.New(),
		Obs: ui.ObsConfig{
			Events:  events,
			Ring:    ring,
			Metrics: rec,
		},
		Ctx:  ctx,
		Copy: copyFn,
	})

	opts := []tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}
	if cfg.MouseEnabled() {
		opts = append(opts, tea.WithMouseCellMotion())
	}
	p := tea.NewProgram(app, opts...)

	logging.Info("Starting UI")
	final, runErr := p.Run()
	if m, ok := final.(ui.App); ok {
		m.Teardown()
	} else {
		app.Teardown()
	}
	if runErr != nil {
		logging.Error("Application error", "error", runErr)
		return fmt.Errorf("run ui: %w", runErr)
	}
	logging.Info("Orbit exiting normally")
	return nil
}

// openEventLog opens the JSONL event log, or a discarding logger when the
// log is disabled or cannot be opened.
func openEventLog(cfg config.Config) (*otel.Logger, func()) {
	if !cfg.EventsEnabled() {
		l := otel.NewNullLogger()
		return l, l.Close
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Events.Path), 0o755); err != nil {
		logging.Warn("Event log disabled", "error", err)
		l := otel.NewNullLogger()
		return l, l.Close
	}
	file, err := os.OpenFile(cfg.Events.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		logging.Warn("Event log disabled", "path", cfg.Events.Path, "error", err)
		l := otel.NewNullLogger()
		return l, l.Close
	}
	l := otel.NewLogger(file)
	return l, func() {
		l.Close()
		file.Close()
	}
}
