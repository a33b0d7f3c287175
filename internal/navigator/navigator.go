// Package navigator is the two-screen repository and worktree picker as a
// plain state machine. It knows nothing about terminals: callers feed it keys
// and ticks and draw the Frame it describes.
package navigator

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/nicobailon/gw/internal/git"
	"github.com/nicobailon/gw/internal/hotkey"
	"github.com/nicobailon/gw/internal/registry"
	"github.com/sirupsen/logrus"
)

const (
	DoubleTapWindow = 600 * time.Millisecond

	repoHint     = "j/k move, gg/G top/bottom, / filter, enter select, n new, ? help, q quit"
	worktreeHint = "j/k move, / filter, enter select, n new, ctrl+d delete, esc back, ? help, q quit"
	helpHint     = "press ?/esc/q to close help"
	filterHint   = "filter: type, enter to apply"
)

var ErrNoSelection = errors.New("nothing selected")

// Lister is the listing and removal service.
type Lister interface {
	Worktrees(repo registry.Repo) ([]git.Worktree, registry.Repo, error)
	Remove(repo registry.Repo, path string, force bool) error
}

type AnchorStore interface {
	SetAnchor(id, path string) error
}

type Options struct {
	Lister  Lister
	Anchors AnchorStore
	Clock   Clock
	Logger  logrus.FieldLogger
	// Pool defaults to hotkey.DefaultPool.
	Pool []rune
	// CurrentID preselects the repository the user is standing in.
	CurrentID string
}

type Selection struct {
	RepoAnchor   string
	WorktreePath string
}

// Outcome tells the driver what to do after a key. Quit with a nil Selection
// means the user cancelled. Create asks the driver to suspend the terminal
// and run the creation flow for that repository, then call FinishCreate.
type Outcome struct {
	Quit      bool
	Selection *Selection
	Create    *registry.Repo
}

// CreateResult is what the creation flow reports back.
type CreateResult struct {
	Repo      registry.Repo
	Path      string
	Cancelled bool
	Err       error
}

type Navigator struct {
	phase     Phase
	repos     *HotList[registry.Repo]
	worktrees *HotList[git.Worktree]
	active    registry.Repo

	chord   hotkey.Chord
	pool    []rune
	pendG   bool
	lastG   time.Time
	pending string

	status     string
	prevStatus string

	lister  Lister
	anchors AnchorStore
	clock   Clock
	log     logrus.FieldLogger
}

func New(repos []registry.Repo, opts Options) *Navigator {
	pool := opts.Pool
	if pool == nil {
		pool = hotkey.DefaultPool
	}
	clock := opts.Clock
	if clock == nil {
		clock = SystemClock{}
	}
	log := opts.Logger
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		log = l
	}
	n := &Navigator{
		phase: RepoBrowse,
		repos: NewHotList(pool, func(r registry.Repo) string {
			return r.Name + " " + r.Anchor
		}),
		worktrees: NewHotList(pool, func(w git.Worktree) string {
			return w.Path + " " + w.Branch
		}),
		pool:    pool,
		status:  repoHint,
		lister:  opts.Lister,
		anchors: opts.Anchors,
		clock:   clock,
		log:     log,
	}
	n.repos.SetItems(repos)
	if opts.CurrentID != "" {
		n.repos.SelectWhere(func(r registry.Repo) bool { return r.ID == opts.CurrentID })
	}
	return n
}

func (n *Navigator) Phase() Phase { return n.phase }

func (n *Navigator) Status() string { return n.status }

func (n *Navigator) Active() registry.Repo { return n.active }

// Tick expires stale chord state. It reports whether anything changed.
func (n *Navigator) Tick() bool {
	now := n.clock.Now()
	changed := n.chord.Expire(now, hotkey.ChordIdle)
	if n.pendG && now.Sub(n.lastG) > DoubleTapWindow {
		n.pendG = false
		changed = true
	}
	return changed
}

// Handle applies one key.
func (n *Navigator) Handle(k Key) Outcome {
	if k.Release {
		return Outcome{}
	}
	// A pending delete only answers y/n/esc.
	if n.phase.Mode() == ConfirmDelete {
		n.handleConfirm(k)
		return Outcome{}
	}
	if k.Ctrl && k.Code == KeyRune && k.Rune == 'c' {
		return Outcome{Quit: true}
	}
	switch n.phase.Mode() {
	case Help:
		n.handleHelp(k)
		return Outcome{}
	case Filter:
		if n.handleFilter(k) {
			return Outcome{}
		}
	}
	if n.phase.Screen() == WorktreeScreen {
		return n.handleWorktree(k)
	}
	return n.handleRepo(k)
}

func (n *Navigator) handleHelp(k Key) {
	if k.is('?') || k.is('q') || k.Code == KeyEsc {
		n.phase = browse(n.phase.Screen())
		n.status = n.prevStatus
	}
}

func (n *Navigator) handleFilter(k Key) bool {
	list := n.filterTarget()
	switch {
	case k.Code == KeyEsc:
		n.phase = browse(n.phase.Screen())
		n.status = "cancelled filter"
	case k.Code == KeyEnter:
		n.phase = browse(n.phase.Screen())
		n.status = "filter applied"
	case k.Code == KeyBackspace:
		list.TrimFilter()
	case k.Code == KeyRune && !k.Ctrl:
		list.AppendFilter(k.Rune)
	default:
		return false
	}
	return true
}

type filterable interface {
	TrimFilter()
	AppendFilter(rune)
	SetFilter(string)
}

func (n *Navigator) filterTarget() filterable {
	if n.phase.Screen() == WorktreeScreen {
		return n.worktrees
	}
	return n.repos
}

// movement handles keys shared by both screens. It reports whether k was
// consumed.
func movement[T any](n *Navigator, l *HotList[T], k Key) bool {
	if !k.is('g') {
		n.pendG = false
	}
	switch {
	case k.is('j') || k.Code == KeyDown:
		l.Down()
	case k.is('k') || k.Code == KeyUp:
		l.Up()
	case k.is('G') || k.Code == KeyEnd:
		l.Bottom()
	case k.Code == KeyHome:
		l.Top()
	case k.is('g'):
		now := n.clock.Now()
		if n.pendG && now.Sub(n.lastG) <= DoubleTapWindow {
			l.Top()
			n.pendG = false
		} else {
			n.pendG = true
			n.lastG = now
		}
	default:
		return false
	}
	n.chord.Reset()
	return true
}

func hotkeyInput[T any](n *Navigator, l *HotList[T], k Key) {
	if !k.plain() || !hotkey.Contains(n.pool, k.Rune) {
		return
	}
	if idx, ok := n.chord.Push(k.Rune, l.Codes(), n.clock.Now()); ok {
		l.Select(idx)
	}
}

func (n *Navigator) common(k Key) bool {
	switch {
	case k.is('?'):
		n.prevStatus = n.status
		n.phase = helping(n.phase.Screen())
		n.status = helpHint
	case k.is('/'):
		n.phase = filtering(n.phase.Screen())
		n.filterTarget().SetFilter("")
		n.status = filterHint
	default:
		return false
	}
	return true
}

func (n *Navigator) handleRepo(k Key) Outcome {
	if movement(n, n.repos, k) || n.common(k) {
		return Outcome{}
	}
	switch {
	case k.is('q') || k.Code == KeyEsc:
		return Outcome{Quit: true}
	case k.is('n'):
		repo, ok := n.repos.Selected()
		if !ok {
			n.status = ErrNoSelection.Error()
			return Outcome{}
		}
		return Outcome{Create: &repo}
	case k.Code == KeyEnter:
		repo, ok := n.repos.Selected()
		if !ok {
			n.status = ErrNoSelection.Error()
			return Outcome{}
		}
		n.openRepo(repo)
	default:
		hotkeyInput(n, n.repos, k)
	}
	return Outcome{}
}

func (n *Navigator) handleWorktree(k Key) Outcome {
	if k.Ctrl && k.Code == KeyRune && k.Rune == 'd' {
		wt, ok := n.worktrees.Selected()
		if !ok {
			n.status = ErrNoSelection.Error()
			return Outcome{}
		}
		n.pending = wt.Path
		n.phase = WorktreeConfirmDelete
		n.status = fmt.Sprintf("delete %s? (y/n)", wt.Path)
		return Outcome{}
	}
	if movement(n, n.worktrees, k) || n.common(k) {
		return Outcome{}
	}
	switch {
	case k.is('q'):
		return Outcome{Quit: true}
	case k.Code == KeyEsc:
		n.phase = RepoBrowse
		n.chord.Reset()
		n.pendG = false
		n.status = repoHint
	case k.is('n'):
		repo := n.active
		return Outcome{Create: &repo}
	case k.Code == KeyEnter:
		wt, ok := n.worktrees.Selected()
		if !ok {
			n.status = ErrNoSelection.Error()
			return Outcome{}
		}
		if n.anchors != nil {
			if err := n.anchors.SetAnchor(n.active.ID, wt.Path); err != nil {
				n.log.WithError(err).WithField("repo", n.active.Name).Warn("could not persist anchor")
			}
		}
		return Outcome{Quit: true, Selection: &Selection{RepoAnchor: n.active.Anchor, WorktreePath: wt.Path}}
	default:
		hotkeyInput(n, n.worktrees, k)
	}
	return Outcome{}
}

func (n *Navigator) handleConfirm(k Key) {
	switch {
	case k.is('y') || k.is('Y'):
		target := n.pending
		n.pending = ""
		n.phase = WorktreeBrowse
		if err := n.lister.Remove(n.active, target, true); err != nil {
			n.status = fmt.Sprintf("delete failed: %v", err)
			return
		}
		n.status = "worktree removed"
		n.reload()
	case k.is('n') || k.is('N') || k.Code == KeyEsc:
		n.pending = ""
		n.phase = WorktreeBrowse
		n.status = "delete cancelled"
	}
}

// openRepo loads repo's worktrees and switches screens. On failure the
// navigator stays on the repository screen.
func (n *Navigator) openRepo(repo registry.Repo) bool {
	wts, fixed, err := n.lister.Worktrees(repo)
	if err != nil {
		n.status = fmt.Sprintf("failed to load worktrees: %v", err)
		return false
	}
	n.setActive(fixed)
	n.worktrees.SetItems(wts)
	n.worktrees.SetFilter("")
	n.worktrees.Top()
	n.chord.Reset()
	n.pendG = false
	n.phase = WorktreeBrowse
	n.status = worktreeHint
	return true
}

// setActive records repo as the open repository and mirrors a repaired
// anchor into the repository list.
func (n *Navigator) setActive(repo registry.Repo) {
	n.active = repo
	items := append([]registry.Repo(nil), n.repos.Items()...)
	for i := range items {
		if items[i].ID == repo.ID {
			items[i] = repo
		}
	}
	n.repos.SetItems(items)
}

func (n *Navigator) reload() bool {
	wts, fixed, err := n.lister.Worktrees(n.active)
	if err != nil {
		n.status = fmt.Sprintf("failed to load worktrees: %v", err)
		return false
	}
	n.setActive(fixed)
	n.worktrees.SetItems(wts)
	return true
}

// Refresh reloads the open repository's worktrees.
func (n *Navigator) Refresh() {
	if n.phase.Screen() == WorktreeScreen {
		n.reload()
	}
}

// FinishCreate resumes after the creation flow. A created worktree is shown
// selected on its repository's worktree screen, ready for enter.
func (n *Navigator) FinishCreate(res CreateResult) {
	if res.Cancelled {
		n.status = "new cancelled"
		return
	}
	if res.Path == "" {
		n.status = fmt.Sprintf("new worktree failed: %v", res.Err)
		return
	}
	repo := res.Repo
	repo.Anchor = res.Path
	if n.phase.Screen() == WorktreeScreen && repo.ID == n.active.ID {
		n.active.Anchor = res.Path
		if !n.reload() {
			return
		}
		n.worktrees.SetFilter("")
		n.phase = WorktreeBrowse
	} else if !n.openRepo(repo) {
		return
	}
	target := filepath.Clean(res.Path)
	n.worktrees.SelectWhere(func(w git.Worktree) bool { return filepath.Clean(w.Path) == target })
	if res.Err != nil {
		n.status = fmt.Sprintf("worktree created; %v", res.Err)
		return
	}
	n.status = "worktree created; enter to select"
}
