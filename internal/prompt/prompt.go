package prompt

import (
	"errors"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// ErrCancelled is returned when the user aborts a prompt.
var ErrCancelled = errors.New("cancelled")

// Prompter collects free text and choices. Callers must not hold the
// terminal in raw or alternate-screen mode while a prompt runs.
type Prompter interface {
	ReadLine(label string) (string, error)
	Choose(label string, options []string) (int, error)
	Confirm(label string) (bool, error)
}

// Huh draws prompts with charmbracelet/huh on Out (stderr by default so that
// stdout stays free for the selected path).
type Huh struct {
	In         io.Reader
	Out        io.Writer
	Accessible bool
}

func NewHuh() *Huh {
	return &Huh{In: os.Stdin, Out: os.Stderr}
}

func theme() *huh.Theme {
	t := *huh.ThemeCharm()
	t.Focused.FocusedButton = t.Focused.FocusedButton.Background(lipgloss.Color("#89b4fa"))
	t.Focused.Next = t.Focused.FocusedButton
	return &t
}

func (h *Huh) run(field huh.Field) error {
	form := huh.NewForm(huh.NewGroup(field)).
		WithTheme(theme()).
		WithShowHelp(false).
		WithAccessible(h.Accessible)
	if h.In != nil {
		form = form.WithInput(h.In)
	}
	if h.Out != nil {
		form = form.WithOutput(h.Out)
	}
	return mapErr(form.Run())
}

func mapErr(err error) error {
	if errors.Is(err, huh.ErrUserAborted) {
		return ErrCancelled
	}
	return err
}

func (h *Huh) ReadLine(label string) (string, error) {
	var value string
	input := huh.NewInput().
		Title(label).
		Inline(true).
		Value(&value)
	if err := h.run(input); err != nil {
		return "", err
	}
	return strings.TrimSpace(value), nil
}

func (h *Huh) Choose(label string, options []string) (int, error) {
	if len(options) == 0 {
		return -1, errors.New("nothing to choose from")
	}
	opts := make([]huh.Option[int], len(options))
	for i, o := range options {
		opts[i] = huh.NewOption(o, i)
	}
	idx := 0
	sel := huh.NewSelect[int]().
		Title(label).
		Options(opts...).
		Value(&idx)
	if err := h.run(sel); err != nil {
		return -1, err
	}
	return idx, nil
}

func (h *Huh) Confirm(label string) (bool, error) {
	var ok bool
	confirm := huh.NewConfirm().
		Title(label).
		Affirmative("Yes").
		Negative("No").
		Value(&ok)
	if err := h.run(confirm); err != nil {
		return false, err
	}
	return ok, nil
}
