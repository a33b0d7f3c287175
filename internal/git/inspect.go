package git

import (
	"errors"
	"sort"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

type Remote struct {
	Name string
	URLs []string
}

// Inspector answers read-only questions about refs and remotes. Lookups go
// through go-git; anything go-git cannot see locally falls back to the binary.
type Inspector struct {
	repo *gogit.Repository
	bin  *Git
}

func NewInspector(root string, bin *Git) (*Inspector, error) {
	repo, err := gogit.PlainOpenWithOptions(root, &gogit.PlainOpenOptions{
		DetectDotGit:          true,
		EnableDotGitCommonDir: true,
	})
	if err != nil {
		return nil, err
	}
	return &Inspector{repo: repo, bin: bin}, nil
}

func (i *Inspector) LocalBranchExists(name string) (bool, error) {
	_, err := i.repo.Reference(plumbing.NewBranchReferenceName(name), false)
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		if i.bin != nil {
			// packed refs written by newer git versions are occasionally
			// unreadable to go-git
			return i.bin.BranchExists(name), nil
		}
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Remotes returns configured remotes sorted by name.
func (i *Inspector) Remotes() ([]Remote, error) {
	remotes, err := i.repo.Remotes()
	if err != nil {
		return nil, err
	}
	out := make([]Remote, 0, len(remotes))
	for _, r := range remotes {
		cfg := r.Config()
		out = append(out, Remote{Name: cfg.Name, URLs: append([]string(nil), cfg.URLs...)})
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Name < out[b].Name })
	return out, nil
}

// RemoteBranchExists checks the remote-tracking ref first and asks the remote
// only when nothing has been fetched for that branch.
func (i *Inspector) RemoteBranchExists(remote, branch string) (bool, error) {
	_, err := i.repo.Reference(plumbing.NewRemoteReferenceName(remote, branch), false)
	if err == nil {
		return true, nil
	}
	if !errors.Is(err, plumbing.ErrReferenceNotFound) {
		return false, err
	}
	if i.bin == nil {
		return false, nil
	}
	return i.bin.RemoteHasBranch(remote, branch)
}
