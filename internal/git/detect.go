package git

import (
	"encoding/hex"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/nicobailon/gw/internal/shell"
	"github.com/zeebo/blake3"
)

var ErrNotRepo = errors.New("not in a git repository")

// RepoContext identifies the repository containing a directory.
type RepoContext struct {
	Toplevel  string
	CommonDir string
	Name      string
	ID        string
}

// Detect resolves the toplevel and shared metadata directory for dir. The ID
// depends only on the common dir, so it is the same from every worktree.
func Detect(dir string, cmd shell.Commander) (RepoContext, error) {
	if cmd == nil {
		cmd = &shell.ExecCommander{}
	}
	out, err := cmd.RunDir(dir, "git", "rev-parse", "--show-toplevel", "--git-common-dir")
	if err != nil {
		return RepoContext{}, ErrNotRepo
	}
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	if len(lines) < 2 {
		return RepoContext{}, &ToolError{Args: []string{"rev-parse"}, Output: string(out), Err: ErrNotRepo}
	}
	top := canonical(strings.TrimSpace(lines[0]))
	common := strings.TrimSpace(lines[1])
	if !filepath.IsAbs(common) {
		common = filepath.Join(dir, common)
	}
	common = canonical(common)
	return RepoContext{
		Toplevel:  top,
		CommonDir: common,
		Name:      filepath.Base(top),
		ID:        RepoID(common),
	}, nil
}

// RepoID hashes a canonical common dir path.
func RepoID(commonDir string) string {
	sum := blake3.Sum256([]byte(commonDir))
	return hex.EncodeToString(sum[:])
}

func canonical(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		return p
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved
	}
	return abs
}

func (c RepoContext) String() string {
	return fmt.Sprintf("%s (%s)", c.Name, c.Toplevel)
}
