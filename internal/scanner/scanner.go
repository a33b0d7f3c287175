package scanner

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/nicobailon/gw/internal/config"
	"github.com/nicobailon/gw/internal/git"
	"github.com/nicobailon/gw/internal/registry"
	"github.com/nicobailon/gw/internal/shell"
	"github.com/sirupsen/logrus"
)

// Found is one repository seen during a scan.
type Found struct {
	Repo  registry.Repo
	Added bool
}

// ScanForRepos returns the canonical toplevels of repositories sitting
// directly below each search path. Linked worktrees of the same repository
// collapse to one entry.
func ScanForRepos(searchPaths []string, cmd shell.Commander) []git.RepoContext {
	var repos []git.RepoContext
	seen := make(map[string]bool)

	for _, searchPath := range searchPaths {
		expanded := config.ExpandHome(os.ExpandEnv(searchPath))

		entries, err := os.ReadDir(expanded)
		if err != nil {
			continue
		}

		for _, entry := range entries {
			if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
				continue
			}
			dirPath := filepath.Join(expanded, entry.Name())
			if _, err := os.Stat(filepath.Join(dirPath, ".git")); err != nil {
				continue
			}
			ctx, err := git.Detect(dirPath, cmd)
			if err != nil || seen[ctx.ID] {
				continue
			}
			seen[ctx.ID] = true
			repos = append(repos, ctx)
		}
	}

	return repos
}

// Scan registers every repository found under searchPaths.
func Scan(searchPaths []string, cmd shell.Commander, reg *registry.Registry, log logrus.FieldLogger) ([]Found, error) {
	var out []Found
	for _, ctx := range ScanForRepos(searchPaths, cmd) {
		repo, added, err := reg.RegisterIfUnknown(ctx)
		if err != nil {
			return out, err
		}
		if !added {
			log.WithField("repo", repo.Name).Debug("already registered")
		}
		out = append(out, Found{Repo: repo, Added: added})
	}
	return out, nil
}
