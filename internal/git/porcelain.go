package git

import (
	"path/filepath"
	"strings"
)

type Worktree struct {
	Path     string
	Name     string
	Branch   string
	Head     string
	Detached bool
	Bare     bool
}

// BranchLabel is the branch name or "(detached)".
func (w Worktree) BranchLabel() string {
	if w.Branch == "" {
		return "(detached)"
	}
	return w.Branch
}

// ParseWorktreePorcelain parses `git worktree list --porcelain`. Records are
// separated by blank lines; unknown attributes are ignored.
func ParseWorktreePorcelain(out string) []Worktree {
	var wts []Worktree
	var current Worktree
	flush := func() {
		if current.Path != "" {
			wts = append(wts, current)
		}
		current = Worktree{}
	}
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimRight(line, "\r")
		switch {
		case line == "":
			flush()
		case strings.HasPrefix(line, "worktree "):
			flush()
			current.Path = strings.TrimPrefix(line, "worktree ")
			current.Name = filepath.Base(current.Path)
		case strings.HasPrefix(line, "HEAD "):
			current.Head = strings.TrimPrefix(line, "HEAD ")
		case strings.HasPrefix(line, "branch "):
			current.Branch = strings.TrimPrefix(strings.TrimPrefix(line, "branch "), "refs/heads/")
		case line == "detached":
			current.Detached = true
		case line == "bare":
			current.Bare = true
		}
	}
	flush()
	return wts
}
