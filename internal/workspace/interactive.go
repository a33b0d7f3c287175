package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nicobailon/gw/internal/config"
	"github.com/nicobailon/gw/internal/prompt"
	"github.com/nicobailon/gw/internal/registry"
	"github.com/nicobailon/gw/internal/resolver"
)

var ErrNoWorktreesDir = errors.New("worktrees directory not configured; pass --worktrees-dir")

const (
	specLabel = "Branch name or GitHub PR URL"
	baseLabel = "Base ref (blank for HEAD)"
	dirLabel  = "Where should I put all worktrees for this repo?"
	elsewhere = "Somewhere else"
)

// WorktreesDir returns the directory new worktrees of repo go into, in order:
// override (nested per repository), the stored value, worktrees_root from the
// global config, then a prompt. Whatever is picked is persisted. p may be nil
// for non-interactive callers.
func (s *Service) WorktreesDir(repo *registry.Repo, root, override string, p prompt.Prompter) (string, error) {
	var dir string
	switch {
	case override != "":
		dir = filepath.Join(config.ExpandHome(override), repo.Name)
	case repo.WorktreesDir != "":
		return repo.WorktreesDir, nil
	case s.Config.WorktreesRoot != "":
		dir = filepath.Join(s.Config.WorktreesRoot, repo.Name)
	case p == nil:
		return "", ErrNoWorktreesDir
	default:
		picked, err := promptWorktreesDir(repo.Name, root, p)
		if err != nil {
			return "", err
		}
		dir = picked
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	if err := s.Registry.SetWorktreesDir(repo.ID, dir); err != nil {
		return "", err
	}
	repo.WorktreesDir = dir
	return dir, nil
}

func promptWorktreesDir(name, root string, p prompt.Prompter) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	options := []string{
		filepath.Join(home, "worktrees", name),
		filepath.Join(filepath.Dir(root), name+"-worktrees"),
		elsewhere,
	}
	idx, err := p.Choose(dirLabel, options)
	if err != nil {
		return "", err
	}
	if idx >= 0 && idx < 2 {
		return options[idx], nil
	}
	raw, err := p.ReadLine("Worktrees directory path")
	if err != nil {
		return "", err
	}
	if raw == "" {
		return "", prompt.ErrCancelled
	}
	path := config.ExpandHome(raw)
	if !filepath.IsAbs(path) {
		if path, err = filepath.Abs(path); err != nil {
			return "", err
		}
	}
	return path, nil
}

// CreateInteractive asks for a branch or PR URL and creates the worktree. An
// empty answer returns prompt.ErrCancelled.
func (s *Service) CreateInteractive(repo registry.Repo, p prompt.Prompter) (string, error) {
	spec, err := p.ReadLine(specLabel)
	if err != nil {
		return "", err
	}
	if spec == "" {
		return "", prompt.ErrCancelled
	}
	return s.CreateFromSpec(repo, spec, CreateOptions{RunHooks: true, AskBase: true}, p)
}

type CreateOptions struct {
	Base         string
	Remote       string
	Path         string
	WorktreesDir string
	RunHooks     bool
	// AskBase prompts for a start point when the branch is new.
	AskBase bool
}

// CreateFromSpec resolves spec and creates the worktree. With a prompter,
// ambiguous remotes are offered as a choice.
func (s *Service) CreateFromSpec(repo registry.Repo, spec string, opts CreateOptions, p prompt.Prompter) (string, error) {
	// Callers may hold a copy taken before an earlier creation stored the
	// worktrees dir or moved the anchor.
	if stored, ok, err := s.Registry.Load(repo.ID); err == nil && ok {
		repo = stored
	}
	wts, repo, err := s.Worktrees(repo)
	if err != nil {
		return "", err
	}
	root := mainPath(wts, repo)

	ropts := resolver.Options{Base: opts.Base, Remote: opts.Remote, Path: opts.Path, Logger: s.Logger}
	if opts.Path == "" {
		dir, err := s.WorktreesDir(&repo, root, opts.WorktreesDir, p)
		if err != nil {
			return "", err
		}
		ropts.WorktreesDir = dir
	}

	ins, err := s.Inspect(root)
	if err != nil {
		return "", err
	}
	plan, err := resolver.Resolve(spec, ropts, ins)
	var amb *resolver.AmbiguousRemoteError
	if errors.As(err, &amb) && p != nil {
		idx, cerr := p.Choose(fmt.Sprintf("Remote for %s", amb.Branch), amb.Remotes)
		if cerr != nil {
			return "", cerr
		}
		ropts.Remote = amb.Remotes[idx]
		plan, err = resolver.Resolve(spec, ropts, ins)
	}
	if err != nil {
		return "", err
	}

	if plan.Source == resolver.New && plan.Base == "" && opts.AskBase && p != nil {
		base, err := p.ReadLine(baseLabel)
		if err != nil {
			return "", err
		}
		plan.Base = base
	}
	return s.Create(repo, plan, opts.RunHooks)
}
