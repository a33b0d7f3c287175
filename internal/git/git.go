package git

import (
	"fmt"
	"strings"

	"github.com/nicobailon/gw/internal/shell"
)

// Git runs the git binary against one repository. RepoRoot is the working
// directory for commands; when GitDir is set it is passed as --git-dir so the
// repository can be reached through its common dir alone.
type Git struct {
	RepoRoot string
	GitDir   string
	Cmd      shell.Commander
}

func New(root string, cmd shell.Commander) *Git {
	if cmd == nil {
		cmd = &shell.ExecCommander{}
	}
	return &Git{RepoRoot: root, Cmd: cmd}
}

// AtCommonDir returns a Git that addresses the repository through its shared
// metadata directory. Used when no worktree path is known to be alive.
func AtCommonDir(commonDir string, cmd shell.Commander) *Git {
	g := New("", cmd)
	g.GitDir = commonDir
	return g
}

// ToolError reports a failed git invocation with its combined output.
type ToolError struct {
	Args   []string
	Output string
	Err    error
}

func (e *ToolError) Error() string {
	msg := strings.TrimSpace(e.Output)
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	return fmt.Sprintf("git %s: %s", strings.Join(e.Args, " "), msg)
}

func (e *ToolError) Unwrap() error { return e.Err }

func (g *Git) run(args ...string) (string, error) {
	if g.GitDir != "" {
		args = append([]string{"--git-dir", g.GitDir}, args...)
	}
	var (
		out []byte
		err error
	)
	if g.RepoRoot != "" {
		out, err = g.Cmd.RunDir(g.RepoRoot, "git", args...)
	} else {
		out, err = g.Cmd.Run("git", args...)
	}
	if err != nil {
		return string(out), &ToolError{Args: args, Output: string(out), Err: err}
	}
	return string(out), nil
}

func (g *Git) BranchExists(name string) bool {
	_, err := g.run("show-ref", "--verify", "--quiet", "refs/heads/"+name)
	return err == nil
}

// RemoteHasBranch asks the remote itself, for branches not yet fetched.
// ls-remote patterns match on path suffixes, so only an exact ref counts.
func (g *Git) RemoteHasBranch(remote, branch string) (bool, error) {
	ref := "refs/heads/" + branch
	out, err := g.run("ls-remote", "--heads", remote, ref)
	if err != nil {
		return false, err
	}
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 2 && fields[1] == ref {
			return true, nil
		}
	}
	return false, nil
}

func (g *Git) WorktreeList() ([]Worktree, error) {
	out, err := g.run("worktree", "list", "--porcelain")
	if err != nil {
		return nil, err
	}
	return ParseWorktreePorcelain(out), nil
}

// WorktreeAddExisting checks out an existing local branch.
func (g *Git) WorktreeAddExisting(path, branch string) error {
	_, err := g.run("worktree", "add", path, branch)
	return err
}

// WorktreeAddNew creates branch from base, or from HEAD when base is empty.
func (g *Git) WorktreeAddNew(path, branch, base string) error {
	args := []string{"worktree", "add", "-b", branch, path}
	if base != "" {
		args = append(args, base)
	}
	_, err := g.run(args...)
	return err
}

// WorktreeAddTracking fetches remote/branch and creates a local branch that
// tracks it.
func (g *Git) WorktreeAddTracking(path, remote, branch string) error {
	if _, err := g.run("fetch", remote, branch); err != nil {
		return err
	}
	_, err := g.run("worktree", "add", "--track", "-b", branch, path, remote+"/"+branch)
	return err
}

// WorktreeAddPullRequest fetches the PR head and (re)points branch at it.
func (g *Git) WorktreeAddPullRequest(path, remote string, number int, branch string) error {
	if _, err := g.run("fetch", remote, fmt.Sprintf("pull/%d/head", number)); err != nil {
		return err
	}
	_, err := g.run("worktree", "add", "-B", branch, path, "FETCH_HEAD")
	return err
}

func (g *Git) WorktreeRemove(path string, force bool) error {
	args := []string{"worktree", "remove", path}
	if force {
		args = append(args, "--force")
	}
	_, err := g.run(args...)
	return err
}
