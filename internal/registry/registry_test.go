package registry

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/nicobailon/gw/internal/git"
	"github.com/nicobailon/gw/internal/logging"
)

func newRegistry(t *testing.T) *Registry {
	t.Helper()
	return Open(t.TempDir(), logging.Discard())
}

func TestRegisterIfUnknown(t *testing.T) {
	r := newRegistry(t)
	ctx := git.RepoContext{Toplevel: "/src/app", CommonDir: "/src/app/.git", Name: "app", ID: "abc"}

	repo, created, err := r.RegisterIfUnknown(ctx)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if !created || repo.Anchor != "/src/app" || repo.CommonDir != "/src/app/.git" || repo.Name != "app" {
		t.Fatalf("unexpected stub: %+v created=%v", repo, created)
	}

	if err := r.SetAnchor("abc", "/src/app-worktrees/feat"); err != nil {
		t.Fatalf("set anchor: %v", err)
	}
	repo, created, err = r.RegisterIfUnknown(ctx)
	if err != nil {
		t.Fatalf("register again: %v", err)
	}
	if created {
		t.Fatalf("existing record should not be recreated")
	}
	if repo.Anchor != "/src/app-worktrees/feat" {
		t.Fatalf("existing anchor overwritten: %s", repo.Anchor)
	}
}

func TestListSortedAndSkipsBrokenRecords(t *testing.T) {
	r := newRegistry(t)
	for _, repo := range []Repo{
		{ID: "1", Name: "zeta", CommonDir: "/z/.git", Anchor: "/z"},
		{ID: "2", Name: "alpha", CommonDir: "/a/.git", Anchor: "/a"},
	} {
		if err := r.Save(repo); err != nil {
			t.Fatalf("save: %v", err)
		}
	}
	broken := r.Path("3")
	if err := os.MkdirAll(filepath.Dir(broken), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(broken, []byte("repo_name = ["), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.MkdirAll(filepath.Join(r.Root, reposDir, "empty"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	repos, err := r.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(repos) != 2 || repos[0].Name != "alpha" || repos[1].Name != "zeta" {
		t.Fatalf("unexpected list: %+v", repos)
	}
	if repos[0].ID != "2" {
		t.Fatalf("id should come from directory name, got %s", repos[0].ID)
	}
}

func TestListMissingRoot(t *testing.T) {
	r := Open(filepath.Join(t.TempDir(), "nope"), logging.Discard())
	repos, err := r.List()
	if err != nil || len(repos) != 0 {
		t.Fatalf("expected empty list, got %v %v", repos, err)
	}
}

func TestLoadParseErrorIsConfigIOError(t *testing.T) {
	r := newRegistry(t)
	path := r.Path("bad")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("="), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, _, err := r.Load("bad")
	var cerr *ConfigIOError
	if !errors.As(err, &cerr) || cerr.Op != "parse" {
		t.Fatalf("expected parse ConfigIOError, got %v", err)
	}
}

func TestSetWorktreesDirRoundTrip(t *testing.T) {
	r := newRegistry(t)
	if err := r.Save(Repo{ID: "x", Name: "app", CommonDir: "/c", Anchor: "/a"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := r.SetWorktreesDir("x", "/wt/app"); err != nil {
		t.Fatalf("set dir: %v", err)
	}
	repo, ok, err := r.Load("x")
	if err != nil || !ok {
		t.Fatalf("load: %v %v", ok, err)
	}
	if repo.WorktreesDir != "/wt/app" || repo.Anchor != "/a" {
		t.Fatalf("unexpected record: %+v", repo)
	}
}

func TestSetAnchorUnknownRepo(t *testing.T) {
	r := newRegistry(t)
	if err := r.SetAnchor("missing", "/x"); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}
