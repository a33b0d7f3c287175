package tui

import (
	"unicode"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/nicobailon/gw/internal/navigator"
)

// keyMap documents the bindings for the help overlay. Dispatch itself
// happens in the navigator, which sees every key.
type keyMap struct {
	Up     key.Binding
	Down   key.Binding
	Top    key.Binding
	Bottom key.Binding
	Jump   key.Binding
	Filter key.Binding
	Select key.Binding
	New    key.Binding
	Delete key.Binding
	Back   key.Binding
	Help   key.Binding
	Quit   key.Binding

	screen navigator.Screen
}

func newKeyMap() keyMap {
	return keyMap{
		Up:     key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "move up")),
		Down:   key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "move down")),
		Top:    key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("gg", "top")),
		Bottom: key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "bottom")),
		Jump:   key.NewBinding(key.WithKeys(""), key.WithHelp("a-z", "jump to hotkey")),
		Filter: key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filter")),
		Select: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		New:    key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new worktree")),
		Delete: key.NewBinding(key.WithKeys("ctrl+d"), key.WithHelp("ctrl+d", "delete worktree")),
		Back:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		Help:   key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
		Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) forScreen(s navigator.Screen) keyMap {
	k.screen = s
	return k
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Select, k.Filter, k.New, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	nav := []key.Binding{k.Up, k.Down, k.Top, k.Bottom, k.Jump}
	if k.screen == navigator.WorktreeScreen {
		return [][]key.Binding{nav, {k.Select, k.Filter, k.New, k.Delete}, {k.Back, k.Help, k.Quit}}
	}
	return [][]key.Binding{nav, {k.Select, k.Filter, k.New}, {k.Help, k.Quit}}
}

// convertKey maps a bubbletea key event onto the navigator's key model.
func convertKey(msg tea.KeyMsg) navigator.Key {
	switch msg.Type {
	case tea.KeyRunes:
		if len(msg.Runes) != 1 {
			return navigator.Special(navigator.KeyOther)
		}
		k := navigator.Rune(msg.Runes[0])
		k.Alt = msg.Alt
		return k
	case tea.KeySpace:
		return navigator.Rune(' ')
	case tea.KeyEnter:
		return navigator.Special(navigator.KeyEnter)
	case tea.KeyEsc:
		return navigator.Special(navigator.KeyEsc)
	case tea.KeyBackspace, tea.KeyCtrlH:
		return navigator.Special(navigator.KeyBackspace)
	case tea.KeyUp:
		return navigator.Special(navigator.KeyUp)
	case tea.KeyDown:
		return navigator.Special(navigator.KeyDown)
	case tea.KeyHome:
		return navigator.Special(navigator.KeyHome)
	case tea.KeyEnd:
		return navigator.Special(navigator.KeyEnd)
	}
	if msg.Type >= tea.KeyCtrlA && msg.Type <= tea.KeyCtrlZ && msg.Type != tea.KeyTab {
		return navigator.Ctrl(rune('a' + int(msg.Type-tea.KeyCtrlA)))
	}
	return navigator.Special(navigator.KeyOther)
}

// pastedKeys splits a multi-rune event (a paste) into one key per printable
// rune. It returns nil for ordinary single keys.
func pastedKeys(msg tea.KeyMsg) []navigator.Key {
	if msg.Type != tea.KeyRunes || len(msg.Runes) < 2 {
		return nil
	}
	keys := make([]navigator.Key, 0, len(msg.Runes))
	for _, r := range msg.Runes {
		if unicode.IsControl(r) {
			continue
		}
		keys = append(keys, navigator.Rune(r))
	}
	return keys
}
