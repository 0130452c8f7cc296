package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/harmonica"
	"github.com/charmbracelet/lipgloss"

	"github.com/abelbrown/orbit/internal/contrast"
	"github.com/abelbrown/orbit/internal/metrics"
	"github.com/abelbrown/orbit/internal/nav"
	"github.com/abelbrown/orbit/internal/otel"
	"github.com/abelbrown/orbit/internal/store"
	"github.com/abelbrown/orbit/internal/theme"
	"github.com/abelbrown/orbit/internal/ui/atmosphere"
	"github.com/abelbrown/orbit/internal/ui/composer"
	"github.com/abelbrown/orbit/internal/ui/feed"
	"github.com/abelbrown/orbit/internal/ui/render"
	"github.com/abelbrown/orbit/internal/ui/settings"
	"github.com/abelbrown/orbit/internal/ui/track"
	"github.com/abelbrown/orbit/internal/ui/voice"
)

const (
	frameInterval = 100 * time.Millisecond
	maxColumn     = 72
	footerLines   = 2 // status + help
	snapBarWidth  = 32
)

// ContentStore is what the App needs from storage. *store.Store satisfies it.
type ContentStore interface {
	AddPost(caption string) (store.Post, error)
	Posts() ([]store.Post, error)
	Messages() ([]store.Message, error)
	FilterTracks(query string) ([]string, error)
}

// ObsConfig groups observability dependencies. All fields optional.
type ObsConfig struct {
	Events  *otel.Logger
	Ring    *otel.Ring
	Metrics *metrics.Recorder
}

// AppConfig holds everything the App is built from. Only Store is required
// for a useful program; the rest default sensibly.
type AppConfig struct {
	Store ContentStore
	Theme *theme.State
	Nav   *nav.Controller
	Obs   ObsConfig

	// Ctx bounds the dwell timer. Defaults to context.Background.
	Ctx context.Context

	// Now is the clock. Defaults to time.Now.
	Now func() time.Time

	// Copy writes to the system clipboard. Nil disables copying.
	Copy func(string) error
}

// App is the root Bubble Tea model. It owns navigation and mounts either
// the feed or Atmosphere; the composer and gravity-snap overlay sit on top.
type App struct {
	store   ContentStore
	theme   *theme.State
	nav     *nav.Controller
	events  *otel.Logger
	ring    *otel.Ring
	metrics *metrics.Recorder
	ctx     context.Context
	now     func() time.Time
	copy    func(string) error

	feed     feed.Model
	atmos    atmosphere.Model
	composer composer.Model
	help     help.Model
	keys     KeyMap
	snapBar  progress.Model

	// gravity-snap bar, eased toward the dwell progress
	spring  harmonica.Spring
	snapPos float64
	snapVel float64

	frame    uint32
	frameGen int
	framing  bool

	pingUsed time.Time
	pendTop  bool // jump to the newest post on the next reload or mount

	err          error
	notice       string
	debugVisible bool
	width        int
	height       int
	ready        bool
}

// NewAppWithConfig creates the App.
func NewAppWithConfig(cfg AppConfig) App {
	if cfg.Theme == nil {
		cfg.Theme = theme.NewState(theme.Config{})
	}
	if cfg.Nav == nil {
		cfg.Nav = nav.New()
	}
	if cfg.Ctx == nil {
		cfg.Ctx = context.Background()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	a := App{
		store:   cfg.Store,
		theme:   cfg.Theme,
		nav:     cfg.Nav,
		events:  cfg.Obs.Events,
		ring:    cfg.Obs.Ring,
		metrics: cfg.Obs.Metrics,
		ctx:     cfg.Ctx,
		now:     cfg.Now,
		copy:    cfg.Copy,

		feed:     feed.New(cfg.Now, cfg.Obs.Events),
		atmos:    atmosphere.New(cfg.Theme, trackFilter(cfg.Store, cfg.Obs.Events), cfg.Obs.Events),
		composer: composer.New(),
		help:     help.New(),
		keys:     DefaultKeyMap(),
		snapBar:  progress.New(progress.WithSolidFill("#ffffff"), progress.WithoutPercentage()),
		spring:   harmonica.NewSpring(harmonica.FPS(int(time.Second/frameInterval)), 6.0, 1.0),
	}
	a.snapBar.Width = snapBarWidth
	a.snapBar.EmptyColor = "#333333"
	a.applyColors()
	return a
}

// trackFilter searches through the store, falling back to the built-in
// catalog when there is no store.
func trackFilter(st ContentStore, events *otel.Logger) track.Filter {
	if st == nil {
		return track.CatalogFilter
	}
	return func(q string) []string {
		res, err := st.FilterTracks(q)
		if err != nil {
			events.Error(otel.KindStoreError, "track", err)
			return nil
		}
		return res
	}
}

// Init loads content. The feed mounts on the first WindowSizeMsg, since
// state set here is not kept.
func (a App) Init() tea.Cmd {
	a.events.Info(otel.KindStartup, "app", "orbit started")
	return a.loadContent()
}

func (a App) loadContent() tea.Cmd {
	st := a.store
	if st == nil {
		return nil
	}
	return func() tea.Msg {
		posts, err := st.Posts()
		if err != nil {
			return ContentLoaded{Err: fmt.Errorf("load posts: %w", err)}
		}
		msgs, err := st.Messages()
		if err != nil {
			return ContentLoaded{Err: fmt.Errorf("load messages: %w", err)}
		}
		return ContentLoaded{Posts: posts, Messages: msgs}
	}
}

func (a App) addPost(caption string) tea.Cmd {
	st := a.store
	if st == nil {
		return nil
	}
	return func() tea.Msg {
		p, err := st.AddPost(caption)
		return PostAdded{Post: p, Err: err}
	}
}

// Teardown cancels any pending dwell and stops the feed. Call once the
// program has exited.
func (a App) Teardown() {
	if a.nav.State() == nav.Transitioning {
		a.events.Info(otel.KindCancel, "nav", "dwell cancelled on teardown")
	}
	a.nav.Teardown()
	a.feed.Unmount()
	a.events.Info(otel.KindShutdown, "app", "orbit stopped")
}

// Update handles messages and returns the updated model and any commands.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	a.events.Trace("app", msg)

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		a.layout()
		cmds := []tea.Cmd{a.startFrames()}
		if !a.feed.Mounted() && a.nav.State() == nav.Orbit {
			cmds = append(cmds, a.mountFeed())
		}
		return a, tea.Batch(cmds...)

	case tea.KeyMsg:
		return a.handleKeyMsg(msg)

	case tea.MouseMsg:
		return a.handleMouseMsg(msg)

	case ContentLoaded:
		if msg.Err != nil {
			a.err = msg.Err
			a.events.Error(otel.KindStoreError, "app", msg.Err)
			return a, nil
		}
		a.feed.SetPosts(msg.Posts)
		a.atmos.SetContent(msg.Posts, msg.Messages)
		// an unmounted feed is reset by mountFeed
		if a.pendTop && a.feed.Mounted() {
			a.feed.GotoTop()
			a.pendTop = false
		}
		return a, nil

	case PostAdded:
		if msg.Err != nil {
			a.err = msg.Err
			a.events.Error(otel.KindStoreError, "app", msg.Err)
			return a, nil
		}
		a.metrics.PostCreated()
		a.events.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindPostAdd, Comp: "app", PostID: msg.Post.ID})
		a.pendTop = true
		return a, a.loadContent()

	case CopyDone:
		if msg.Err != nil {
			a.err = fmt.Errorf("copy image locator: %w", msg.Err)
			return a, nil
		}
		a.notice = "copied " + msg.Locator
		return a, nil

	case feed.ScrolledToBottomMsg:
		return a.snap()

	case nav.DwellElapsedMsg:
		arrived, cmd := a.nav.Resolve(msg, a.now())
		if !arrived {
			return a, cmd
		}
		a.atmos.Arrive()
		a.events.Emit(otel.Event{
			Level:  otel.LevelInfo,
			Kind:   otel.KindArrive,
			Comp:   "nav",
			Screen: nav.Atmosphere.String(),
			Dur:    a.now().Sub(a.nav.Started()),
		})
		return a, nil

	case FrameMsg:
		return a.onFrame(msg)

	case feed.TickMsg:
		var cmd tea.Cmd
		a.feed, cmd = a.feed.Update(msg)
		return a, cmd

	case composer.SubmitMsg:
		return a, a.addPost(msg.Caption)

	case composer.CancelMsg:
		a.events.Info(otel.KindPostCancel, "composer", "draft discarded")
		return a, nil

	case track.SelectedMsg:
		a.metrics.TrackSelected(msg.Track)
		return a, nil

	case track.PlaybackMsg:
		return a, nil

	case settings.ChangedMsg:
		a.metrics.ThemeChanged(msg.Field)
		kind := otel.KindBackground
		if msg.Field == settings.FieldTexture {
			kind = otel.KindTexture
		}
		a.events.Info(kind, "settings", msg.Value)
		a.applyColors()
		a.atmos.Refresh()
		return a, nil
	}

	// Everything else (cursor blinks, spinner ticks, voice deadlines)
	// belongs to whichever surface is live. Atmosphere's animations keep
	// ticking while it is hidden so the disc is still spinning on return.
	var cmds []tea.Cmd
	if a.composer.IsOpen() {
		var cmd tea.Cmd
		a.composer, cmd = a.composer.Update(msg)
		cmds = append(cmds, cmd)
	}
	if a.nav.State() == nav.Atmosphere || isAnimation(msg) {
		var cmd tea.Cmd
		a.atmos, cmd = a.atmos.Update(msg)
		cmds = append(cmds, cmd)
	}
	return a, tea.Batch(cmds...)
}

func isAnimation(msg tea.Msg) bool {
	switch msg.(type) {
	case spinner.TickMsg, voice.ReleaseMsg:
		return true
	}
	return false
}

// handleKeyMsg processes keyboard input.
func (a App) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return a.quit()
	}
	// The gravity-snap overlay swallows everything.
	if a.nav.InputBlocked() {
		return a, nil
	}

	if a.composer.IsOpen() {
		var cmd tea.Cmd
		a.composer, cmd = a.composer.Update(msg)
		return a, cmd
	}

	a.err = nil
	a.notice = ""

	if a.debugVisible {
		if key.Matches(msg, a.keys.Debug) || msg.Type == tea.KeyEsc {
			a.debugVisible = false
		}
		return a, nil
	}

	inAtmosphere := a.nav.State() == nav.Atmosphere
	if inAtmosphere && a.atmos.Capturing() {
		var cmd tea.Cmd
		a.atmos, cmd = a.atmos.Update(msg)
		return a, cmd
	}

	switch {
	case key.Matches(msg, a.keys.Quit):
		return a.quit()

	case key.Matches(msg, a.keys.Post):
		a.events.Info(otel.KindPostOpen, "composer", "")
		cmd := a.composer.Open()
		return a, cmd

	case key.Matches(msg, a.keys.Outer):
		return a.toggleOuter()

	case key.Matches(msg, a.keys.Ping):
		return a.ping()

	case key.Matches(msg, a.keys.Debug):
		a.debugVisible = true
		return a, nil

	case key.Matches(msg, a.keys.Help):
		a.help.ShowAll = !a.help.ShowAll
		a.layout()
		return a, nil

	case inAtmosphere && key.Matches(msg, a.keys.Back):
		return a.returnToOrbit()

	case !inAtmosphere && key.Matches(msg, a.keys.Copy):
		return a, a.copyCurrent()
	}

	var cmd tea.Cmd
	if inAtmosphere {
		a.atmos, cmd = a.atmos.Update(msg)
	} else {
		a.feed, cmd = a.feed.Update(msg)
	}
	return a, cmd
}

func (a App) handleMouseMsg(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if a.nav.InputBlocked() || a.composer.IsOpen() || a.debugVisible {
		return a, nil
	}

	if msg.Y == 0 && msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
		h := a.header()
		switch {
		case h.titleAt.contains(msg.X):
			if a.nav.State() == nav.Atmosphere {
				return a.returnToOrbit()
			}
			return a, nil
		case h.pingAt.contains(msg.X):
			return a.ping()
		case h.outerAt.contains(msg.X):
			return a.toggleOuter()
		}
		return a, nil
	}

	left, _ := a.column()
	msg.X -= left
	msg.Y -= headerLines

	var cmd tea.Cmd
	if a.nav.State() == nav.Atmosphere {
		a.atmos, cmd = a.atmos.Update(msg)
	} else {
		a.feed, cmd = a.feed.Update(msg)
	}
	return a, cmd
}

// snap starts the gravity snap. Repeated bottom signals while the overlay
// is up or from Atmosphere are no-ops. So is a signal that lands after the
// composer opened or the feed went away.
func (a App) snap() (tea.Model, tea.Cmd) {
	if a.composer.IsOpen() || !a.feed.Mounted() {
		return a, nil
	}
	dwell := a.nav.Snap(a.ctx, a.now())
	if dwell == nil {
		return a, nil
	}
	a.feed.Unmount()
	a.metrics.Snap()
	a.events.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindSnap, Comp: "nav", Screen: nav.Transitioning.String()})
	a.snapPos, a.snapVel = 0, 0
	return a, dwell
}

func (a App) returnToOrbit() (tea.Model, tea.Cmd) {
	if !a.nav.ReturnToOrbit() {
		return a, nil
	}
	a.atmos.Leave()
	a.events.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindReturn, Comp: "nav", Screen: nav.Orbit.String()})
	cmd := a.mountFeed()
	return a, cmd
}

// mountFeed starts the feed, jumping to the newest post if one was added
// while it was away.
func (a *App) mountFeed() tea.Cmd {
	cmd := a.feed.Mount()
	if a.pendTop {
		a.feed.GotoTop()
		a.pendTop = false
	}
	return cmd
}

func (a App) toggleOuter() (tea.Model, tea.Cmd) {
	if !a.nav.ToggleOuter() {
		return a, nil
	}
	on := a.nav.Outer()
	a.metrics.OuterToggled(on)
	a.events.Info(otel.KindOuterOrbit, "app", fmt.Sprintf("outer=%v", on))
	a.applyColors()
	return a, nil
}

// ping spends the one-shot ping. A spent ping is inert until its cooldown
// runs out.
func (a App) ping() (tea.Model, tea.Cmd) {
	if !a.pingUsed.IsZero() {
		return a, nil
	}
	a.pingUsed = a.now()
	a.events.Info(otel.KindPing, "app", "ping sent")
	return a, nil
}

func (a App) copyCurrent() tea.Cmd {
	p, ok := a.feed.CurrentPost()
	if !ok || a.copy == nil {
		return nil
	}
	a.events.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindCopy, Comp: "feed", PostID: p.ID})
	copyFn, locator := a.copy, p.Image
	return func() tea.Msg {
		return CopyDone{Locator: locator, Err: copyFn(locator)}
	}
}

// quit stops the program. The caller runs Teardown on the final model.
func (a App) quit() (tea.Model, tea.Cmd) {
	return a, tea.Quit
}

// startFrames starts the frame loop unless one is already running. The
// header ping always animates (pulse or countdown), so once started the
// loop runs for the life of the program.
func (a *App) startFrames() tea.Cmd {
	if a.framing {
		return nil
	}
	a.framing = true
	a.frameGen++
	return frameTick(a.frameGen)
}

func frameTick(gen int) tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg {
		return FrameMsg{Gen: gen, At: t}
	})
}

func (a App) onFrame(msg FrameMsg) (tea.Model, tea.Cmd) {
	if msg.Gen != a.frameGen {
		return a, nil
	}
	a.frame++

	if a.nav.State() == nav.Transitioning {
		target := a.nav.Progress(a.now())
		a.snapPos, a.snapVel = a.spring.Update(a.snapPos, a.snapVel, target)
	}

	if !a.pingUsed.IsZero() && a.now().Sub(a.pingUsed) >= PingCooldown {
		a.pingUsed = time.Time{}
	}

	return a, frameTick(a.frameGen)
}

// colors returns the page background and text color, inverted in outer
// orbit.
func (a App) colors() (bg, fg string) {
	bg, fg = a.theme.Background(), a.theme.TextColor()
	if a.nav.Outer() {
		bg, fg = contrast.Invert(bg), contrast.Invert(fg)
	}
	return bg, fg
}

func (a *App) applyColors() {
	_, fg := a.colors()
	a.feed.SetForeground(fg)
	a.feed.SetOuter(a.nav.Outer())
}

// column is the centered content column: left edge and width.
func (a App) column() (left, width int) {
	width = a.width - 4
	if width > maxColumn {
		width = maxColumn
	}
	if width < 10 {
		width = 10
	}
	left = (a.width - width) / 2
	if left < 0 {
		left = 0
	}
	return left, width
}

func (a App) bodyHeight() int {
	h := a.height - headerLines - footerLines
	if a.help.ShowAll {
		h -= 3
	}
	if h < 1 {
		h = 1
	}
	return h
}

func (a *App) layout() {
	_, w := a.column()
	h := a.bodyHeight()
	a.feed.SetSize(w, h)
	a.atmos.SetSize(w, h)
	a.composer.SetSize(a.width, a.height)
	a.help.Width = a.width
}

// View renders the UI.
func (a App) View() string {
	if !a.ready {
		return "Loading..."
	}

	if a.nav.State() == nav.Transitioning {
		return a.snapView()
	}
	if a.composer.IsOpen() {
		return a.composer.View()
	}

	bg, fg := a.colors()
	page := lipgloss.NewStyle().
		Background(lipgloss.Color(bg)).
		Foreground(lipgloss.Color(fg))

	var body string
	if a.debugVisible {
		counters, _ := a.metrics.Snapshot(a.ctx)
		body = debugOverlay(a.ring, counters, a.width, a.bodyHeight())
		body = lipgloss.PlaceHorizontal(a.width, lipgloss.Center, body)
	} else {
		var content string
		if a.nav.State() == nav.Atmosphere {
			content = a.atmos.View()
		} else {
			content = a.feed.View()
		}
		left, _ := a.column()
		body = lipgloss.NewStyle().PaddingLeft(left).Render(content)
	}
	body = lipgloss.NewStyle().Height(a.bodyHeight()).MaxHeight(a.bodyHeight()).Render(body)

	status := ""
	switch {
	case a.err != nil:
		status = ErrorStyle.Render("Error: " + a.err.Error() + " (press any key to dismiss)")
	case a.debugVisible:
		status = StatusBarText.Render("[DEBUG]  D:close")
	case a.notice != "":
		status = StatusBarText.Render(a.notice)
	}

	helpView := a.help.View(a.keys.forScreen(a.nav.State()))

	view := strings.Join([]string{
		a.header().render(a.width),
		body,
		status,
		helpView,
	}, "\n")

	view = render.Paint(view, page, a.width, a.height)
	return render.Overlay(view, a.theme.Texture(), a.nav.Outer(), a.frame)
}

// snapView is the gravity-snap overlay, the only thing shown while
// transitioning.
func (a App) snapView() string {
	text := SnapText.Render("YOUR ORBIT LOOPED 12 TIMES NOW.\nCOME BACK LATER.")
	pos := a.snapPos
	if pos < 0 {
		pos = 0
	}
	if pos > 1 {
		pos = 1
	}
	bar := a.snapBar.ViewAs(pos)
	block := lipgloss.JoinVertical(lipgloss.Center, text, "", bar)
	return SnapOverlay.Render(lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, block,
		lipgloss.WithWhitespaceBackground(lipgloss.Color("#000000"))))
}

// Accessors for tests.

// Screen returns the current navigation state.
func (a App) Screen() nav.State { return a.nav.State() }

// ComposerOpen reports whether the posting sheet is up.
func (a App) ComposerOpen() bool { return a.composer.IsOpen() }

// PingUsed reports when the ping was spent, zero if available.
func (a App) PingUsed() time.Time { return a.pingUsed }

// Err returns the error currently shown, if any.
func (a App) Err() error { return a.err }
