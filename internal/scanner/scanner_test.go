package scanner

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/nicobailon/gw/internal/logging"
	"github.com/nicobailon/gw/internal/registry"
)

func gitRun(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("git %v: %v\n%s", args, err, out)
	}
}

func setupTree(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	t.Setenv("GIT_AUTHOR_NAME", "gw")
	t.Setenv("GIT_AUTHOR_EMAIL", "gw@example.com")
	t.Setenv("GIT_COMMITTER_NAME", "gw")
	t.Setenv("GIT_COMMITTER_EMAIL", "gw@example.com")

	base := t.TempDir()
	for _, name := range []string{"alpha", "beta"} {
		dir := filepath.Join(base, name)
		gitRun(t, base, "init", "-q", dir)
		gitRun(t, dir, "commit", "-q", "--allow-empty", "-m", "init")
	}
	gitRun(t, filepath.Join(base, "alpha"), "worktree", "add", "-q", "-b", "feat", filepath.Join(base, "alpha-feat"))
	if err := os.Mkdir(filepath.Join(base, "plain"), 0o755); err != nil {
		t.Fatal(err)
	}
	return base
}

func TestScanForReposCollapsesWorktrees(t *testing.T) {
	base := setupTree(t)
	repos := ScanForRepos([]string{base, filepath.Join(base, "missing")}, nil)
	if len(repos) != 2 {
		t.Fatalf("found %d repos: %+v", len(repos), repos)
	}
	names := map[string]bool{}
	for _, r := range repos {
		names[r.Name] = true
	}
	if !names["beta"] {
		t.Fatalf("beta not found: %+v", repos)
	}
}

func TestScanRegistersOnce(t *testing.T) {
	base := setupTree(t)
	reg := registry.Open(t.TempDir(), logging.Discard())

	found, err := Scan([]string{base}, nil, reg, logging.Discard())
	if err != nil {
		t.Fatal(err)
	}
	for _, f := range found {
		if !f.Added {
			t.Fatalf("%s should be new", f.Repo.Name)
		}
	}
	listed, err := reg.List()
	if err != nil || len(listed) != 2 {
		t.Fatalf("listed = %+v err = %v", listed, err)
	}

	found, err = Scan([]string{base}, nil, reg, logging.Discard())
	if err != nil {
		t.Fatal(err)
	}
	for _, f := range found {
		if f.Added {
			t.Fatalf("%s registered twice", f.Repo.Name)
		}
	}
}
