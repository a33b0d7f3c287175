package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nicobailon/gw/internal/config"
	"github.com/nicobailon/gw/internal/git"
	"github.com/nicobailon/gw/internal/registry"
	"github.com/nicobailon/gw/internal/resolver"
	"github.com/nicobailon/gw/internal/shell"
	"github.com/sirupsen/logrus"
)

var ErrMainWorktree = errors.New("refusing to remove the main worktree")

type Service struct {
	Registry *registry.Registry
	Config   *config.Config
	Cmd      shell.Commander
	Logger   logrus.FieldLogger
	// Inspect opens the read-only view used by the resolver.
	Inspect func(root string) (resolver.Inspector, error)
}

func NewService(reg *registry.Registry, cfg *config.Config, cmd shell.Commander, logger logrus.FieldLogger) *Service {
	if cmd == nil {
		cmd = &shell.ExecCommander{}
	}
	if cfg == nil {
		cfg = &config.Config{}
	}
	if logger == nil {
		logger = reg.Logger
	}
	s := &Service{Registry: reg, Config: cfg, Cmd: cmd, Logger: logger}
	s.Inspect = func(root string) (resolver.Inspector, error) {
		return git.NewInspector(root, git.New(root, s.Cmd))
	}
	return s
}

// Worktrees lists the worktrees of repo. The stored anchor is tried first; if
// it is gone or git rejects it, the listing goes through the common dir and
// the anchor is repaired to the first entry. The returned Repo carries the
// anchor that worked.
func (s *Service) Worktrees(repo registry.Repo) ([]git.Worktree, registry.Repo, error) {
	log := s.Logger.WithFields(logrus.Fields{"repo": repo.Name, "anchor": repo.Anchor})
	if isDir(repo.Anchor) {
		wts, err := git.New(repo.Anchor, s.Cmd).WorktreeList()
		if err == nil {
			return wts, repo, nil
		}
		log.WithError(err).Debug("listing from anchor failed")
	}

	wts, err := git.AtCommonDir(repo.CommonDir, s.Cmd).WorktreeList()
	if err != nil {
		return nil, repo, fmt.Errorf("list worktrees (git_common_dir=%s): %w", repo.CommonDir, err)
	}
	if len(wts) > 0 && wts[0].Path != repo.Anchor {
		repo.Anchor = wts[0].Path
		if err := s.Registry.SetAnchor(repo.ID, repo.Anchor); err != nil {
			log.WithError(err).Warn("could not persist repaired anchor")
		} else {
			log.WithField("new_anchor", repo.Anchor).Info("repaired stale anchor")
		}
	}
	return wts, repo, nil
}

// Remove deletes the worktree at target. The main worktree is never removed.
func (s *Service) Remove(repo registry.Repo, target string, force bool) error {
	wts, repo, err := s.Worktrees(repo)
	if err != nil {
		return err
	}
	root := mainPath(wts, repo)
	if samePath(root, target) {
		return ErrMainWorktree
	}
	if err := git.New(root, s.Cmd).WorktreeRemove(target, force); err != nil {
		return err
	}
	s.Logger.WithFields(logrus.Fields{"repo": repo.Name, "path": target}).Info("removed worktree")
	return nil
}

// Create runs plan and makes the new worktree the repository's anchor. The
// path is returned even when a hook fails, since the worktree exists by then.
func (s *Service) Create(repo registry.Repo, plan resolver.Plan, runHooks bool) (string, error) {
	if plan.Path == "" {
		return "", errors.New("no destination path for worktree")
	}
	wts, repo, err := s.Worktrees(repo)
	if err != nil {
		return "", err
	}
	root := mainPath(wts, repo)
	if err := os.MkdirAll(filepath.Dir(plan.Path), 0o755); err != nil {
		return "", err
	}

	g := git.New(root, s.Cmd)
	switch plan.Source {
	case resolver.ExistingLocal:
		err = g.WorktreeAddExisting(plan.Path, plan.Branch)
	case resolver.ExistingRemote:
		err = g.WorktreeAddTracking(plan.Path, plan.Remote, plan.Branch)
	case resolver.PullRequest:
		err = g.WorktreeAddPullRequest(plan.Path, plan.Remote, plan.PR, plan.Branch)
	default:
		err = g.WorktreeAddNew(plan.Path, plan.Branch, plan.Base)
	}
	if err != nil {
		return "", err
	}
	s.Logger.WithFields(logrus.Fields{
		"repo":   repo.Name,
		"path":   plan.Path,
		"branch": plan.Branch,
		"source": plan.Source.String(),
		"remote": plan.Remote,
	}).Info("created worktree")

	if err := s.Registry.SetAnchor(repo.ID, plan.Path); err != nil {
		return plan.Path, err
	}
	if !runHooks {
		return plan.Path, nil
	}
	return plan.Path, s.RunHooks(s.Hooks(repo), root, plan.Branch, plan.Path)
}

// Hooks returns global hooks followed by repository hooks.
func (s *Service) Hooks(repo registry.Repo) []config.Hook {
	hooks := append([]config.Hook(nil), s.Config.Hooks...)
	return append(hooks, repo.Hooks...)
}

// RunHooks runs each hook with sh -lc inside the worktree and stops at the
// first failure.
func (s *Service) RunHooks(hooks []config.Hook, repoRoot, branch, wtPath string) error {
	env := []string{
		"GW_WORKTREE_PATH=" + wtPath,
		"GW_BRANCH=" + branch,
		"GW_REPO_ROOT=" + repoRoot,
	}
	for _, h := range hooks {
		log := s.Logger.WithFields(logrus.Fields{"hook": h.Command, "path": wtPath})
		log.Debug("running hook")
		if err := s.Cmd.RunAttached(wtPath, env, "sh", "-lc", h.Command); err != nil {
			log.WithError(err).Warn("hook failed")
			return fmt.Errorf("hook failed: %s", h.Command)
		}
	}
	return nil
}

// mainPath is the first listed worktree, which git always reports as the
// main one.
func mainPath(wts []git.Worktree, repo registry.Repo) string {
	if len(wts) > 0 {
		return wts[0].Path
	}
	return repo.Anchor
}

func isDir(p string) bool {
	if p == "" {
		return false
	}
	info, err := os.Stat(p)
	return err == nil && info.IsDir()
}

func samePath(a, b string) bool {
	return canonical(a) == canonical(b)
}

func canonical(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		return filepath.Clean(p)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved
	}
	return abs
}
