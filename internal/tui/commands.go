package tui

import (
	"fmt"
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/nicobailon/gw/internal/prompt"
	"github.com/nicobailon/gw/internal/registry"
)

// pollInterval paces chord expiry while no keys arrive.
const pollInterval = 50 * time.Millisecond

func tickCmd() tea.Cmd {
	return tea.Tick(pollInterval, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

// createExec runs the creation prompts with the terminal released by
// bubbletea. It satisfies tea.ExecCommand.
type createExec struct {
	creator    Creator
	repo       registry.Repo
	accessible bool

	in  io.Reader
	out io.Writer

	path string
}

func (c *createExec) SetStdin(r io.Reader)  { c.in = r }
func (c *createExec) SetStdout(w io.Writer) { c.out = w }
func (c *createExec) SetStderr(io.Writer)   {}

// Run never lets a panic escape: the picker must get the terminal back.
func (c *createExec) Run() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("new worktree panicked: %v", r)
		}
	}()
	p := &prompt.Huh{In: c.in, Out: c.out, Accessible: c.accessible}
	c.path, err = c.creator.CreateInteractive(c.repo, p)
	return err
}

func createCmd(creator Creator, repo registry.Repo, accessible bool) tea.Cmd {
	c := &createExec{creator: creator, repo: repo, accessible: accessible}
	return tea.Exec(c, func(err error) tea.Msg {
		return createdMsg{repo: repo, path: c.path, err: err}
	})
}
