package tui

import (
	"errors"

	"github.com/nicobailon/gw/internal/navigator"
	"github.com/nicobailon/gw/internal/prompt"
	"github.com/nicobailon/gw/internal/registry"
)

type tickMsg struct{}

// createdMsg reports the end of a suspended creation flow. path may be set
// alongside err when the worktree exists but a hook failed.
type createdMsg struct {
	repo registry.Repo
	path string
	err  error
}

func (m createdMsg) result() navigator.CreateResult {
	return navigator.CreateResult{
		Repo:      m.repo,
		Path:      m.path,
		Cancelled: errors.Is(m.err, prompt.ErrCancelled),
		Err:       m.err,
	}
}
