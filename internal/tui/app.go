package tui

import (
	"errors"
	"io"
	"os"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/nicobailon/gw/internal/navigator"
	"github.com/nicobailon/gw/internal/prompt"
	"github.com/nicobailon/gw/internal/registry"
	"github.com/nicobailon/gw/internal/tui/views"
	"github.com/sirupsen/logrus"
)

// ErrNoTTY is returned when neither stdout nor stderr is a terminal.
var ErrNoTTY = errors.New("no TTY available for interactive picker")

// Creator runs the new-worktree flow while the picker is suspended.
type Creator interface {
	CreateInteractive(repo registry.Repo, p prompt.Prompter) (string, error)
}

type App struct {
	nav        *navigator.Navigator
	creator    Creator
	log        logrus.FieldLogger
	accessible bool

	isTerminal func(fd uintptr) bool
}

func New(nav *navigator.Navigator, creator Creator, log logrus.FieldLogger) *App {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &App{
		nav:     nav,
		creator: creator,
		log:     log,
		isTerminal: func(fd uintptr) bool {
			return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
		},
	}
}

// SetAccessible switches creation prompts to huh's plain line mode.
func (a *App) SetAccessible(v bool) { a.accessible = v }

// Run shows the picker until the user selects a worktree or quits. A nil
// selection with a nil error means the user cancelled. The picker draws on
// stderr when stdout is redirected, so stdout carries only the result.
func (a *App) Run() (*navigator.Selection, error) {
	opts, err := a.programOptions()
	if err != nil {
		return nil, err
	}
	p := tea.NewProgram(newModel(a), opts...)
	finalModel, err := p.Run()
	if err != nil {
		return nil, err
	}
	if fm, ok := finalModel.(model); ok {
		return fm.selection, nil
	}
	return nil, nil
}

func (a *App) programOptions() ([]tea.ProgramOption, error) {
	stdoutTTY := a.isTerminal(os.Stdout.Fd())
	stderrTTY := a.isTerminal(os.Stderr.Fd())
	if !stdoutTTY && !stderrTTY {
		return nil, ErrNoTTY
	}
	opts := []tea.ProgramOption{tea.WithAltScreen()}
	if !stdoutTTY {
		opts = append(opts, tea.WithOutput(os.Stderr))
	}
	if !a.isTerminal(os.Stdin.Fd()) {
		opts = append(opts, tea.WithInputTTY())
	}
	return opts, nil
}

type model struct {
	nav        *navigator.Navigator
	creator    Creator
	log        logrus.FieldLogger
	accessible bool

	keys   keyMap
	help   help.Model
	width  int
	height int

	selection *navigator.Selection
}

func newModel(a *App) model {
	h := help.New()
	h.ShowAll = true
	return model{
		nav:        a.nav,
		creator:    a.creator,
		log:        a.log,
		accessible: a.accessible,
		keys:       newKeyMap(),
		help:       h,
	}
}

func (m model) Init() tea.Cmd {
	return tickCmd()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tickMsg:
		m.nav.Tick()
		return m, tickCmd()

	case tea.KeyMsg:
		if keys := pastedKeys(msg); keys != nil {
			// Pasted text only makes sense as filter input.
			if m.nav.Phase().Mode() == navigator.Filter {
				for _, k := range keys {
					m.nav.Handle(k)
				}
			}
			return m, nil
		}
		out := m.nav.Handle(convertKey(msg))
		switch {
		case out.Quit:
			m.selection = out.Selection
			return m, tea.Quit
		case out.Create != nil:
			m.log.WithField("repo", out.Create.Name).Debug("suspending picker for new worktree")
			return m, createCmd(m.creator, *out.Create, m.accessible)
		}
		return m, nil

	case createdMsg:
		res := msg.result()
		if res.Err != nil {
			m.log.WithError(res.Err).WithField("repo", res.Repo.Name).Warn("new worktree")
		}
		m.nav.FinishCreate(res)
		return m, tea.ClearScreen
	}
	return m, nil
}

func (m model) View() string {
	f := m.nav.Frame()
	if f.Help {
		return views.RenderHelp(f, m.help.View(m.keys.forScreen(f.Screen)))
	}
	return views.RenderFrame(f, m.width, m.height)
}
