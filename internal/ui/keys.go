package ui

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/abelbrown/orbit/internal/nav"
)

// KeyMap holds the global bindings. Screen-local keys live with their
// components.
type KeyMap struct {
	Quit   key.Binding
	Post   key.Binding
	Outer  key.Binding
	Ping   key.Binding
	Back   key.Binding
	Copy   key.Binding
	Debug  key.Binding
	Help   key.Binding
	Scroll key.Binding
	Tab    key.Binding
	Hold   key.Binding
}

// DefaultKeyMap returns the global bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Post:   key.NewBinding(key.WithKeys("n", "+"), key.WithHelp("n", "post")),
		Outer:  key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "outer orbit")),
		Ping:   key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "ping")),
		Back:   key.NewBinding(key.WithKeys("b", "esc"), key.WithHelp("b", "orbit")),
		Copy:   key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy image")),
		Debug:  key.NewBinding(key.WithKeys("D"), key.WithHelp("D", "debug")),
		Help:   key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more")),
		Scroll: key.NewBinding(key.WithKeys("j", "k"), key.WithHelp("j/k", "scroll")),
		Tab:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "section")),
		Hold:   key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "hold fragment")),
	}
}

// screenHelp adapts the bindings relevant to one screen to help.KeyMap.
type screenHelp struct {
	short []key.Binding
	full  [][]key.Binding
}

func (h screenHelp) ShortHelp() []key.Binding  { return h.short }
func (h screenHelp) FullHelp() [][]key.Binding { return h.full }

func (k KeyMap) forScreen(s nav.State) screenHelp {
	switch s {
	case nav.Atmosphere:
		return screenHelp{
			short: []key.Binding{k.Tab, k.Back, k.Post, k.Outer, k.Help},
			full: [][]key.Binding{
				{k.Tab, k.Hold, k.Scroll},
				{k.Back, k.Post, k.Outer, k.Ping},
				{k.Debug, k.Quit},
			},
		}
	default:
		return screenHelp{
			short: []key.Binding{k.Scroll, k.Post, k.Outer, k.Copy, k.Help},
			full: [][]key.Binding{
				{k.Scroll, k.Copy},
				{k.Post, k.Outer, k.Ping},
				{k.Debug, k.Quit},
			},
		}
	}
}
