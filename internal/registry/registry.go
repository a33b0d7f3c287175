package registry

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/BurntSushi/toml"
	"github.com/nicobailon/gw/internal/config"
	"github.com/nicobailon/gw/internal/git"
	"github.com/sirupsen/logrus"
)

const reposDir = "repos"

// Repo is one known repository, stored at <root>/repos/<id>/config.toml.
type Repo struct {
	ID           string        `toml:"-" json:"-"`
	Name         string        `toml:"repo_name" json:"repo_name"`
	CommonDir    string        `toml:"git_common_dir" json:"git_common_dir"`
	Anchor       string        `toml:"anchor_path" json:"anchor_path"`
	WorktreesDir string        `toml:"worktrees_dir,omitempty" json:"worktrees_dir,omitempty"`
	Hooks        []config.Hook `toml:"hooks,omitempty" json:"hooks,omitempty"`
}

// ConfigIOError reports a failure reading or writing persisted state.
type ConfigIOError struct {
	Op   string
	Path string
	Err  error
}

func (e *ConfigIOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *ConfigIOError) Unwrap() error { return e.Err }

type Registry struct {
	Root   string
	Logger logrus.FieldLogger
}

func Open(root string, logger logrus.FieldLogger) *Registry {
	if logger == nil {
		l := logrus.New()
		l.SetOutput(os.Stderr)
		l.SetLevel(logrus.WarnLevel)
		logger = l
	}
	return &Registry{Root: root, Logger: logger}
}

func (r *Registry) Path(id string) string {
	return filepath.Join(r.Root, reposDir, id, config.FileName)
}

// List returns every readable record sorted by name. Unreadable records are
// skipped.
func (r *Registry) List() ([]Repo, error) {
	dir := filepath.Join(r.Root, reposDir)
	ents, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, &ConfigIOError{Op: "read", Path: dir, Err: err}
	}

	var repos []Repo
	for _, ent := range ents {
		if !ent.IsDir() {
			continue
		}
		repo, ok, err := r.Load(ent.Name())
		if err != nil {
			r.Logger.WithError(err).WithField("repo", ent.Name()).Debug("skipping repo record")
			continue
		}
		if !ok {
			continue
		}
		repos = append(repos, repo)
	}
	sort.SliceStable(repos, func(i, j int) bool { return repos[i].Name < repos[j].Name })
	return repos, nil
}

// Load reads one record. ok is false when no record exists.
func (r *Registry) Load(id string) (Repo, bool, error) {
	path := r.Path(id)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Repo{}, false, nil
		}
		return Repo{}, false, &ConfigIOError{Op: "read", Path: path, Err: err}
	}
	var repo Repo
	if _, err := toml.Decode(string(data), &repo); err != nil {
		return Repo{}, false, &ConfigIOError{Op: "parse", Path: path, Err: err}
	}
	repo.ID = id
	return repo, true, nil
}

func (r *Registry) Save(repo Repo) error {
	if repo.ID == "" {
		return errors.New("registry: repo has no id")
	}
	path := r.Path(repo.ID)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return &ConfigIOError{Op: "mkdir", Path: filepath.Dir(path), Err: err}
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(repo); err != nil {
		return &ConfigIOError{Op: "encode", Path: path, Err: err}
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return &ConfigIOError{Op: "write", Path: path, Err: err}
	}
	return nil
}

// RegisterIfUnknown stores a stub record for ctx unless one exists. It returns
// the stored record and whether it was created.
func (r *Registry) RegisterIfUnknown(ctx git.RepoContext) (Repo, bool, error) {
	repo, ok, err := r.Load(ctx.ID)
	if err == nil && ok {
		return repo, false, nil
	}
	if err != nil {
		var cerr *ConfigIOError
		if !errors.As(err, &cerr) || cerr.Op != "parse" {
			return Repo{}, false, err
		}
		r.Logger.WithError(err).Warn("replacing unreadable repo record")
	}
	repo = Repo{
		ID:        ctx.ID,
		Name:      ctx.Name,
		CommonDir: ctx.CommonDir,
		Anchor:    ctx.Toplevel,
	}
	if err := r.Save(repo); err != nil {
		return Repo{}, false, err
	}
	r.Logger.WithFields(logrus.Fields{"repo": repo.Name, "anchor": repo.Anchor}).Info("registered repository")
	return repo, true, nil
}

func (r *Registry) update(id string, fn func(*Repo)) error {
	repo, ok, err := r.Load(id)
	if err != nil {
		return err
	}
	if !ok {
		return &ConfigIOError{Op: "update", Path: r.Path(id), Err: os.ErrNotExist}
	}
	fn(&repo)
	return r.Save(repo)
}

func (r *Registry) SetAnchor(id, anchor string) error {
	return r.update(id, func(repo *Repo) { repo.Anchor = anchor })
}

func (r *Registry) SetWorktreesDir(id, dir string) error {
	return r.update(id, func(repo *Repo) { repo.WorktreesDir = dir })
}
