package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/nicobailon/gw/internal/config"
	"github.com/nicobailon/gw/internal/deps"
	"github.com/nicobailon/gw/internal/git"
	"github.com/nicobailon/gw/internal/logging"
	"github.com/nicobailon/gw/internal/prompt"
	"github.com/nicobailon/gw/internal/registry"
	"github.com/nicobailon/gw/internal/shell"
	"github.com/nicobailon/gw/internal/workspace"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "0.1.0"

// exitError ends the process with code and no message.
type exitError struct{ code int }

func (e exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

func main() {
	err := newRootCmd().Execute()
	var ee exitError
	if errors.As(err, &ee) {
		os.Exit(ee.code)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "gw:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "gw",
		Short:         "Git worktree helper",
		Long:          "Jump between repositories and worktrees with a keyboard picker, and create or remove worktrees.",
		Args:          cobra.NoArgs,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE:          runGo,
	}
	root.AddCommand(
		newGoCmd(),
		newListCmd(),
		newNewCmd(),
		newRemoveCmd(),
		newConfigCmd(),
		newHooksCmd(),
		newInitCmd(),
		newScanCmd(),
		newVersionCmd(),
	)
	return root
}

// env holds the collaborators every command shares.
type env struct {
	root     string
	cfg      *config.Config
	log      *logrus.Logger
	closeLog func() error
	sh       shell.Commander
	reg      *registry.Registry
	svc      *workspace.Service
}

func ensureDeps() error {
	missing := deps.Check()
	if len(missing) == 0 {
		return nil
	}
	return fmt.Errorf("missing required dependencies\n%s", deps.Describe(missing))
}

// loadEnv reads configuration and wires the services. quiet drops log output
// unless a log file is configured.
func loadEnv(quiet bool) (*env, error) {
	if err := ensureDeps(); err != nil {
		return nil, err
	}
	root, err := config.Root()
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(root)
	if err != nil {
		return nil, err
	}
	log, closeLog, err := logging.New(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile, Quiet: quiet})
	if err != nil {
		return nil, err
	}
	sh := &shell.ExecCommander{}
	reg := registry.Open(root, log)
	return &env{
		root:     root,
		cfg:      cfg,
		log:      log,
		closeLog: closeLog,
		sh:       sh,
		reg:      reg,
		svc:      workspace.NewService(reg, cfg, sh, log),
	}, nil
}

func (e *env) Close() {
	if err := e.closeLog(); err != nil {
		fmt.Fprintln(os.Stderr, "gw: close log:", err)
	}
}

func (e *env) detect() (git.RepoContext, error) {
	wd, err := os.Getwd()
	if err != nil {
		return git.RepoContext{}, err
	}
	return git.Detect(wd, e.sh)
}

// currentRepo returns the record for the repository containing the working
// directory. With register, an unknown repository is stored first; without
// it, an unsaved stub is returned.
func (e *env) currentRepo(register bool) (registry.Repo, error) {
	ctx, err := e.detect()
	if err != nil {
		return registry.Repo{}, err
	}
	if register {
		repo, _, err := e.reg.RegisterIfUnknown(ctx)
		return repo, err
	}
	repo, ok, err := e.reg.Load(ctx.ID)
	if err != nil {
		e.log.WithError(err).Warn("ignoring unreadable repo record")
	}
	if err != nil || !ok {
		repo = registry.Repo{ID: ctx.ID, Name: ctx.Name, CommonDir: ctx.CommonDir, Anchor: ctx.Toplevel}
	}
	return repo, nil
}

func terminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// interactivePrompter returns a prompter when stdin and stderr are both
// terminals, otherwise nil.
func interactivePrompter() prompt.Prompter {
	if terminal(os.Stdin) && terminal(os.Stderr) {
		return prompt.NewHuh()
	}
	return nil
}
