package tui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/nicobailon/gw/internal/git"
	"github.com/nicobailon/gw/internal/navigator"
	"github.com/nicobailon/gw/internal/prompt"
	"github.com/nicobailon/gw/internal/registry"
)

type stubLister struct {
	wts []git.Worktree
}

func (s *stubLister) Worktrees(repo registry.Repo) ([]git.Worktree, registry.Repo, error) {
	return s.wts, repo, nil
}

func (s *stubLister) Remove(registry.Repo, string, bool) error { return nil }

type stubCreator struct {
	path  string
	err   error
	panic bool
}

func (s *stubCreator) CreateInteractive(registry.Repo, prompt.Prompter) (string, error) {
	if s.panic {
		panic("boom")
	}
	return s.path, s.err
}

func testModel(t *testing.T) model {
	t.Helper()
	repos := []registry.Repo{{ID: "1", Name: "app", Anchor: "/src/app"}}
	lister := &stubLister{wts: []git.Worktree{
		{Path: "/src/app", Branch: "main"},
		{Path: "/wt/app/feat", Branch: "feat"},
	}}
	nav := navigator.New(repos, navigator.Options{Lister: lister})
	return newModel(New(nav, &stubCreator{}, nil))
}

func press(t *testing.T, m model, msg tea.KeyMsg) (model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(model), cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestConvertKey(t *testing.T) {
	cases := []struct {
		in   tea.KeyMsg
		want navigator.Key
	}{
		{runes("j"), navigator.Rune('j')},
		{tea.KeyMsg{Type: tea.KeyEnter}, navigator.Special(navigator.KeyEnter)},
		{tea.KeyMsg{Type: tea.KeyEsc}, navigator.Special(navigator.KeyEsc)},
		{tea.KeyMsg{Type: tea.KeyBackspace}, navigator.Special(navigator.KeyBackspace)},
		{tea.KeyMsg{Type: tea.KeyUp}, navigator.Special(navigator.KeyUp)},
		{tea.KeyMsg{Type: tea.KeyDown}, navigator.Special(navigator.KeyDown)},
		{tea.KeyMsg{Type: tea.KeyHome}, navigator.Special(navigator.KeyHome)},
		{tea.KeyMsg{Type: tea.KeyEnd}, navigator.Special(navigator.KeyEnd)},
		{tea.KeyMsg{Type: tea.KeyCtrlD}, navigator.Ctrl('d')},
		{tea.KeyMsg{Type: tea.KeyCtrlC}, navigator.Ctrl('c')},
		{tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}, navigator.Rune(' ')},
		{tea.KeyMsg{Type: tea.KeyTab}, navigator.Special(navigator.KeyOther)},
		{runes("ab"), navigator.Special(navigator.KeyOther)},
	}
	for _, c := range cases {
		if got := convertKey(c.in); got != c.want {
			t.Fatalf("convertKey(%v) = %+v want %+v", c.in, got, c.want)
		}
	}
	alt := convertKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x"), Alt: true})
	if !alt.Alt || alt.Rune != 'x' {
		t.Fatalf("alt lost: %+v", alt)
	}
}

func TestModelSelectsWorktree(t *testing.T) {
	m := testModel(t)
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.nav.Phase() != navigator.WorktreeBrowse {
		t.Fatalf("phase = %v", m.nav.Phase())
	}
	m, _ = press(t, m, runes("j"))
	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("expected tea.QuitMsg")
	}
	if m.selection == nil || m.selection.WorktreePath != "/wt/app/feat" {
		t.Fatalf("selection = %+v", m.selection)
	}
}

func TestModelQuitWithoutSelection(t *testing.T) {
	m := testModel(t)
	m, cmd := press(t, m, runes("q"))
	if cmd == nil || m.selection != nil {
		t.Fatalf("expected cancel, got selection %+v", m.selection)
	}
}

func TestModelCreateReturnsExecCommand(t *testing.T) {
	m := testModel(t)
	_, cmd := press(t, m, runes("n"))
	if cmd == nil {
		t.Fatal("expected exec command for new worktree")
	}
}

func TestModelFinishCreate(t *testing.T) {
	m := testModel(t)
	next, _ := m.Update(createdMsg{repo: registry.Repo{ID: "1", Name: "app"}, path: "/wt/app/feat"})
	m = next.(model)
	if m.nav.Phase() != navigator.WorktreeBrowse {
		t.Fatalf("phase = %v", m.nav.Phase())
	}
	if !strings.Contains(m.nav.Status(), "worktree created") {
		t.Fatalf("status = %q", m.nav.Status())
	}
	if !strings.Contains(m.View(), "/wt/app/feat") {
		t.Fatal("view should list the new worktree")
	}
}

func TestCreatedMsgResult(t *testing.T) {
	res := createdMsg{err: prompt.ErrCancelled}.result()
	if !res.Cancelled {
		t.Fatal("cancel not detected")
	}
	res = createdMsg{path: "/x", err: errors.New("hook failed: false")}.result()
	if res.Cancelled || res.Path != "/x" || res.Err == nil {
		t.Fatalf("result = %+v", res)
	}
}

func TestCreateExecRecoversPanic(t *testing.T) {
	c := &createExec{creator: &stubCreator{panic: true}}
	err := c.Run()
	if err == nil || !strings.Contains(err.Error(), "panicked") {
		t.Fatalf("err = %v", err)
	}
}

func TestCreateExecKeepsPath(t *testing.T) {
	c := &createExec{creator: &stubCreator{path: "/wt/new"}}
	if err := c.Run(); err != nil {
		t.Fatal(err)
	}
	if c.path != "/wt/new" {
		t.Fatalf("path = %q", c.path)
	}
}

func TestProgramOptionsWithoutTTY(t *testing.T) {
	a := New(navigator.New(nil, navigator.Options{}), &stubCreator{}, nil)
	a.isTerminal = func(uintptr) bool { return false }
	if _, err := a.programOptions(); !errors.Is(err, ErrNoTTY) {
		t.Fatalf("err = %v", err)
	}
	a.isTerminal = func(uintptr) bool { return true }
	opts, err := a.programOptions()
	if err != nil || len(opts) != 1 {
		t.Fatalf("opts = %d err = %v", len(opts), err)
	}
}

func TestHelpViewListsBindings(t *testing.T) {
	m := testModel(t)
	m, _ = press(t, m, runes("?"))
	out := m.View()
	for _, want := range []string{"filter", "new worktree", "GitHub PR URL"} {
		if !strings.Contains(out, want) {
			t.Fatalf("help view missing %q:\n%s", want, out)
		}
	}
}

func TestPasteFeedsFilter(t *testing.T) {
	m := testModel(t)
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = press(t, m, runes("/"))
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("fe\nat"), Paste: true})
	if got := m.nav.Frame().Filter; got != "feat" {
		t.Fatalf("filter = %q", got)
	}
	if rows := m.nav.Frame().Rows; len(rows) != 1 || rows[0].Primary != "/wt/app/feat" {
		t.Fatalf("rows = %+v", rows)
	}
}

func TestPasteIgnoredOutsideFilter(t *testing.T) {
	m := testModel(t)
	m, cmd := press(t, m, runes("qq"))
	if cmd != nil || m.nav.Phase() != navigator.RepoBrowse {
		t.Fatalf("paste outside filter must be dropped, phase %v", m.nav.Phase())
	}
}
