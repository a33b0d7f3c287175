package git

import (
	"errors"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

type fakeCommander struct {
	out  string
	err  error
	dirs []string
	args [][]string
}

func (f *fakeCommander) Run(name string, args ...string) ([]byte, error) {
	f.args = append(f.args, args)
	f.dirs = append(f.dirs, "")
	return []byte(f.out), f.err
}

func (f *fakeCommander) RunDir(dir, name string, args ...string) ([]byte, error) {
	f.args = append(f.args, args)
	f.dirs = append(f.dirs, dir)
	return []byte(f.out), f.err
}

func (f *fakeCommander) RunAttached(dir string, env []string, name string, args ...string) error {
	return f.err
}

func TestParseWorktreePorcelain(t *testing.T) {
	out := `worktree /src/app
HEAD 1111111111111111111111111111111111111111
branch refs/heads/main

worktree /src/app-worktrees/feat/x
HEAD 2222222222222222222222222222222222222222
branch refs/heads/feat/x

worktree /src/app-worktrees/detached
HEAD 3333333333333333333333333333333333333333
detached
`
	wts := ParseWorktreePorcelain(out)
	if len(wts) != 3 {
		t.Fatalf("expected 3 worktrees, got %d", len(wts))
	}
	if wts[0].Path != "/src/app" || wts[0].Branch != "main" {
		t.Fatalf("first entry mismatch: %+v", wts[0])
	}
	if wts[1].Branch != "feat/x" || wts[1].Name != "x" {
		t.Fatalf("second entry mismatch: %+v", wts[1])
	}
	if !wts[2].Detached || wts[2].Branch != "" || wts[2].BranchLabel() != "(detached)" {
		t.Fatalf("detached entry mismatch: %+v", wts[2])
	}
}

func TestParseWorktreePorcelainEmpty(t *testing.T) {
	if wts := ParseWorktreePorcelain(""); len(wts) != 0 {
		t.Fatalf("expected no worktrees, got %v", wts)
	}
}

func TestRunWrapsToolError(t *testing.T) {
	cmd := &fakeCommander{out: "fatal: not a git repository\n", err: errors.New("exit status 128")}
	g := New("/tmp/nowhere", cmd)
	_, err := g.WorktreeList()
	var te *ToolError
	if !errors.As(err, &te) {
		t.Fatalf("expected ToolError, got %v", err)
	}
	if !strings.Contains(te.Error(), "not a git repository") {
		t.Fatalf("error should carry git output: %s", te.Error())
	}
	if cmd.dirs[0] != "/tmp/nowhere" {
		t.Fatalf("expected command to run in repo root, got %q", cmd.dirs[0])
	}
}

func TestCommonDirAddressing(t *testing.T) {
	cmd := &fakeCommander{}
	g := AtCommonDir("/src/app/.git", cmd)
	if _, err := g.WorktreeList(); err != nil {
		t.Fatalf("list: %v", err)
	}
	got := strings.Join(cmd.args[0], " ")
	if got != "--git-dir /src/app/.git worktree list --porcelain" {
		t.Fatalf("unexpected args: %s", got)
	}
}

func TestWorktreeAddNewOmitsEmptyBase(t *testing.T) {
	cmd := &fakeCommander{}
	g := New("/src/app", cmd)
	if err := g.WorktreeAddNew("/wt/feat", "feat", ""); err != nil {
		t.Fatalf("add: %v", err)
	}
	if got := strings.Join(cmd.args[0], " "); got != "worktree add -b feat /wt/feat" {
		t.Fatalf("unexpected args: %s", got)
	}
	if err := g.WorktreeAddNew("/wt/feat", "feat", "origin/main"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if got := strings.Join(cmd.args[1], " "); got != "worktree add -b feat /wt/feat origin/main" {
		t.Fatalf("unexpected args: %s", got)
	}
}

func TestDetectSharesIDAcrossWorktrees(t *testing.T) {
	dir := initRepo(t)
	wt := filepath.Join(t.TempDir(), "linked")
	runGit(t, dir, "worktree", "add", "-q", "-b", "linked", wt)

	primary, err := Detect(dir, nil)
	if err != nil {
		t.Fatalf("detect main: %v", err)
	}
	linked, err := Detect(wt, nil)
	if err != nil {
		t.Fatalf("detect linked: %v", err)
	}
	if primary.ID != linked.ID {
		t.Fatalf("ids differ: %s vs %s", primary.ID, linked.ID)
	}
	if primary.CommonDir != linked.CommonDir {
		t.Fatalf("common dirs differ: %s vs %s", primary.CommonDir, linked.CommonDir)
	}
	if primary.Name != filepath.Base(primary.Toplevel) || linked.Name != "linked" {
		t.Fatalf("names mismatch: %s %s", primary.Name, linked.Name)
	}
	if len(primary.ID) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(primary.ID))
	}
}

func TestDetectOutsideRepo(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	t.Setenv("GIT_CEILING_DIRECTORIES", filepath.Dir(t.TempDir()))
	if _, err := Detect(t.TempDir(), nil); !errors.Is(err, ErrNotRepo) {
		t.Fatalf("expected ErrNotRepo, got %v", err)
	}
}

func TestInspector(t *testing.T) {
	dir := initRepo(t)
	runGit(t, dir, "branch", "local-only")
	runGit(t, dir, "remote", "add", "upstream", "https://example.com/acme/app.git")
	runGit(t, dir, "remote", "add", "origin", "https://example.com/me/app.git")
	runGit(t, dir, "update-ref", "refs/remotes/origin/feat", "HEAD")

	ins, err := NewInspector(dir, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	ok, err := ins.LocalBranchExists("local-only")
	if err != nil || !ok {
		t.Fatalf("expected local branch, got %v %v", ok, err)
	}
	ok, err = ins.LocalBranchExists("missing")
	if err != nil || ok {
		t.Fatalf("expected missing branch, got %v %v", ok, err)
	}
	remotes, err := ins.Remotes()
	if err != nil {
		t.Fatalf("remotes: %v", err)
	}
	if len(remotes) != 2 || remotes[0].Name != "origin" || remotes[1].Name != "upstream" {
		t.Fatalf("unexpected remotes: %+v", remotes)
	}
	if remotes[1].URLs[0] != "https://example.com/acme/app.git" {
		t.Fatalf("unexpected url: %v", remotes[1].URLs)
	}
	ok, err = ins.RemoteBranchExists("origin", "feat")
	if err != nil || !ok {
		t.Fatalf("expected tracking ref, got %v %v", ok, err)
	}
	ok, err = ins.RemoteBranchExists("upstream", "feat")
	if err != nil || ok {
		t.Fatalf("expected no tracking ref, got %v %v", ok, err)
	}
}

func initRepo(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	t.Setenv("GIT_AUTHOR_NAME", "gw")
	t.Setenv("GIT_AUTHOR_EMAIL", "gw@example.com")
	t.Setenv("GIT_COMMITTER_NAME", "gw")
	t.Setenv("GIT_COMMITTER_EMAIL", "gw@example.com")
	dir := filepath.Join(t.TempDir(), "app")
	runGit(t, "", "init", "-q", dir)
	runGit(t, dir, "commit", "-q", "--allow-empty", "-m", "init")
	return dir
}

func runGit(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", args...)
	if dir != "" {
		cmd.Dir = dir
	}
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("git %v: %v\n%s", args, err, out)
	}
}

func TestRemoteHasBranchMatchesExactRef(t *testing.T) {
	f := &fakeCommander{out: "1111111111111111111111111111111111111111\trefs/heads/team/feat\n"}
	g := New("/src/app", f)
	ok, err := g.RemoteHasBranch("origin", "feat")
	if err != nil || ok {
		t.Fatalf("suffix match must not count, got %v %v", ok, err)
	}
	want := "ls-remote --heads origin refs/heads/feat"
	if got := strings.Join(f.args[0], " "); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}

	f.out = "2222222222222222222222222222222222222222\trefs/heads/feat\n"
	ok, err = g.RemoteHasBranch("origin", "feat")
	if err != nil || !ok {
		t.Fatalf("expected exact ref, got %v %v", ok, err)
	}
}

func TestInspectorAsksRemoteForUnfetchedBranch(t *testing.T) {
	upstream := initRepo(t)
	runGit(t, upstream, "branch", "wip")
	runGit(t, upstream, "branch", "team/feat")

	dir := initRepo(t)
	runGit(t, dir, "remote", "add", "origin", upstream)

	ins, err := NewInspector(dir, New(dir, nil))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	ok, err := ins.RemoteBranchExists("origin", "wip")
	if err != nil || !ok {
		t.Fatalf("expected unfetched branch on remote, got %v %v", ok, err)
	}
	ok, err = ins.RemoteBranchExists("origin", "feat")
	if err != nil || ok {
		t.Fatalf("team/feat must not match feat, got %v %v", ok, err)
	}
}

func TestInspectorUnreachableRemote(t *testing.T) {
	dir := initRepo(t)
	runGit(t, dir, "remote", "add", "origin", filepath.Join(t.TempDir(), "gone"))

	ins, err := NewInspector(dir, New(dir, nil))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	var terr *ToolError
	if _, err := ins.RemoteBranchExists("origin", "wip"); !errors.As(err, &terr) {
		t.Fatalf("expected ToolError, got %v", err)
	}
}
