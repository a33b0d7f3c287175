package navigator

import (
	"github.com/nicobailon/gw/internal/git"
	"github.com/nicobailon/gw/internal/registry"
)

type Row struct {
	Code      string
	Primary   string
	Secondary string
	Selected  bool
}

// Frame is everything needed to draw one screen.
type Frame struct {
	Screen    Screen
	Mode      Mode
	Title     string
	Repo      string
	Filter    string
	Chord     string
	Rows      []Row
	Selected  int
	Status    string
	Help      bool
	HelpRules string
}

func (n *Navigator) Frame() Frame {
	f := Frame{
		Screen: n.phase.Screen(),
		Mode:   n.phase.Mode(),
		Chord:  n.chord.String(),
		Status: n.status,
		Help:   n.phase.Mode() == Help,
	}
	if f.Help {
		f.HelpRules = HelpRules
	}
	switch f.Screen {
	case WorktreeScreen:
		f.Title = "gw: worktrees"
		f.Repo = n.active.Name
		f.Filter = n.worktrees.Filter()
		f.Selected = n.worktrees.Index()
		f.Rows = rows(n.worktrees, n.worktrees.Index(), func(w git.Worktree) (string, string) {
			return w.Path, w.BranchLabel()
		})
	default:
		f.Title = "gw: repos"
		f.Filter = n.repos.Filter()
		f.Selected = n.repos.Index()
		f.Rows = rows(n.repos, n.repos.Index(), func(r registry.Repo) (string, string) {
			return r.Name, r.Anchor
		})
	}
	return f
}

func rows[T any](l *HotList[T], selected int, label func(T) (string, string)) []Row {
	vis := l.Visible()
	codes := l.Codes()
	out := make([]Row, len(vis))
	for i, it := range vis {
		primary, secondary := label(it)
		out[i] = Row{Primary: primary, Secondary: secondary, Selected: i == selected}
		if i < len(codes) {
			out[i].Code = codes[i]
		}
	}
	return out
}

// HelpRules explains how the new-worktree prompt interprets its input.
const HelpRules = `New worktree input rules (single text field):
- GitHub PR URL only (must be a URL): https://github.com/OWNER/REPO/pull/<N>
- Otherwise, treat input as a branch name.
- If branch exists locally: use it as-is (no fetch / no remote comparison).
- If branch missing locally and exists on remote: fetch it, create a local tracking branch, then create the worktree.
- If branch missing locally and not on remote: create a new branch, then create the worktree.
- Remote selection: if exactly 1 remote has it, use it; otherwise you will be prompted to choose a remote.`
