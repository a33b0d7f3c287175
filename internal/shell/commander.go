package shell

import (
	"os"
	"os/exec"
)

type Commander interface {
	Run(name string, args ...string) ([]byte, error)
	RunDir(dir, name string, args ...string) ([]byte, error)
	// RunAttached runs with output streamed to stderr so that stdout stays
	// reserved for the selected path.
	RunAttached(dir string, env []string, name string, args ...string) error
}

type ExecCommander struct{}

func (e *ExecCommander) Run(name string, args ...string) ([]byte, error) {
	cmd := exec.Command(name, args...)
	return cmd.CombinedOutput()
}

func (e *ExecCommander) RunDir(dir, name string, args ...string) ([]byte, error) {
	cmd := exec.Command(name, args...)
	cmd.Dir = dir
	return cmd.CombinedOutput()
}

func (e *ExecCommander) RunAttached(dir string, env []string, name string, args ...string) error {
	cmd := exec.Command(name, args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), env...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stderr
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
