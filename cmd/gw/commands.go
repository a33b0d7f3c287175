package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nicobailon/gw/internal/config"
	"github.com/nicobailon/gw/internal/git"
	"github.com/nicobailon/gw/internal/navigator"
	"github.com/nicobailon/gw/internal/prompt"
	"github.com/nicobailon/gw/internal/registry"
	"github.com/nicobailon/gw/internal/scanner"
	"github.com/nicobailon/gw/internal/tui"
	"github.com/nicobailon/gw/internal/workspace"
	"github.com/spf13/cobra"
)

func newGoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "go",
		Short: "Pick a repository worktree and print its path",
		Args:  cobra.NoArgs,
		RunE:  runGo,
	}
}

// runGo prints the picked worktree path. A cancelled picker exits 1 with no
// output so shell wrappers can tell the cases apart.
func runGo(cmd *cobra.Command, _ []string) error {
	e, err := loadEnv(true)
	if err != nil {
		return err
	}
	defer e.Close()

	sel, err := pick(e)
	if err != nil {
		return err
	}
	if sel == nil {
		return exitError{code: 1}
	}
	fmt.Fprintln(cmd.OutOrStdout(), sel.WorktreePath)
	return nil
}

func pick(e *env) (*navigator.Selection, error) {
	var currentID string
	if ctx, err := e.detect(); err == nil {
		if _, _, err := e.reg.RegisterIfUnknown(ctx); err != nil {
			e.log.WithError(err).Warn("could not register current repository")
		}
		currentID = ctx.ID
	}
	repos, err := e.reg.List()
	if err != nil {
		return nil, err
	}
	if len(repos) == 0 {
		return nil, nil
	}
	nav := navigator.New(repos, navigator.Options{
		Lister:    e.svc,
		Anchors:   e.reg,
		Logger:    e.log,
		CurrentID: currentID,
	})
	return tui.New(nav, e.svc, e.log).Run()
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List worktrees for the current repository",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := loadEnv(false)
			if err != nil {
				return err
			}
			defer e.Close()

			ctx, err := e.detect()
			if err != nil {
				return err
			}
			wts, err := git.New(ctx.Toplevel, e.sh).WorktreeList()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, wt := range wts {
				fmt.Fprintf(out, "%s\t%s\n", wt.Path, wt.BranchLabel())
			}
			return nil
		},
	}
}

func newNewCmd() *cobra.Command {
	var (
		worktreesDir string
		path         string
		base         string
		remote       string
		noHooks      bool
	)
	cmd := &cobra.Command{
		Use:   "new <branch|pr-url>",
		Short: "Create a worktree for a branch or GitHub pull request",
		Long: "Create a worktree. Existing local branches are checked out as-is, branches found on a remote get a\n" +
			"tracking branch, pull request URLs are fetched into pr/<n>, anything else becomes a new branch.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(false)
			if err != nil {
				return err
			}
			defer e.Close()

			repo, err := e.currentRepo(true)
			if err != nil {
				return err
			}
			if path != "" {
				if path, err = filepath.Abs(config.ExpandHome(path)); err != nil {
					return err
				}
			}
			opts := workspace.CreateOptions{
				Base:         base,
				Remote:       remote,
				Path:         path,
				WorktreesDir: worktreesDir,
				RunHooks:     !noHooks,
			}
			created, err := e.svc.CreateFromSpec(repo, args[0], opts, interactivePrompter())
			if created != "" {
				fmt.Fprintln(cmd.OutOrStdout(), created)
			}
			return err
		},
	}
	cmd.Flags().StringVar(&worktreesDir, "worktrees-dir", "", "base directory for this repo's worktrees (nested per repo, persisted)")
	cmd.Flags().StringVar(&path, "path", "", "explicit worktree path")
	cmd.Flags().StringVar(&base, "base", "", "start point for a new branch (default HEAD)")
	cmd.Flags().StringVar(&remote, "remote", "", "remote to use when several have the branch")
	cmd.Flags().BoolVar(&noHooks, "no-hooks", false, "skip post-create hooks")
	return cmd
}

func newRemoveCmd() *cobra.Command {
	var yes, force bool
	cmd := &cobra.Command{
		Use:     "remove <path>",
		Aliases: []string{"rm"},
		Short:   "Remove a linked worktree (the branch is kept)",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(false)
			if err != nil {
				return err
			}
			defer e.Close()

			target, err := filepath.Abs(config.ExpandHome(args[0]))
			if err != nil {
				return err
			}
			repo, err := e.currentRepo(false)
			if err != nil {
				return err
			}
			if !yes {
				p := interactivePrompter()
				if p == nil {
					return errors.New("refusing to remove without --yes when not attached to a terminal")
				}
				ok, err := p.Confirm(fmt.Sprintf("Remove worktree %s?", target))
				if errors.Is(err, prompt.ErrCancelled) || (err == nil && !ok) {
					return exitError{code: 1}
				}
				if err != nil {
					return err
				}
			}
			return e.svc.Remove(repo, target, force)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "remove even with local changes")
	return cmd
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print config paths and values for the current repository",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			root, err := config.Root()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "config_root=%s\n", root)
			fmt.Fprintf(out, "global_config=%s\n", filepath.Join(root, config.FileName))

			wd, err := os.Getwd()
			if err != nil {
				return nil
			}
			ctx, err := git.Detect(wd, nil)
			if err != nil {
				return nil
			}
			reg := registry.Open(root, nil)
			fmt.Fprintf(out, "repo_config=%s\n", reg.Path(ctx.ID))
			if repo, ok, err := reg.Load(ctx.ID); err == nil && ok && repo.WorktreesDir != "" {
				fmt.Fprintf(out, "worktrees_dir=%s\n", repo.WorktreesDir)
			}
			return nil
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:       "schema [global|repo]",
		Short:     "Print the JSON schema of a config file",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"global", "repo"},
		RunE: func(cmd *cobra.Command, args []string) error {
			kind := "global"
			if len(args) == 1 {
				kind = args[0]
			}
			var (
				data []byte
				err  error
			)
			switch kind {
			case "global":
				data, err = config.Schema(&config.Config{}, "gw global config")
			case "repo":
				data, err = config.Schema(&registry.Repo{}, "gw repository record")
			default:
				return fmt.Errorf("unknown schema %q (want global or repo)", kind)
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	})
	return cmd
}

func newHooksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hooks",
		Short: "Show configured hooks (global and per repository)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := loadEnv(false)
			if err != nil {
				return err
			}
			defer e.Close()

			out := cmd.OutOrStdout()
			for _, h := range e.cfg.Hooks {
				fmt.Fprintf(out, "global: %s\n", h.Command)
			}
			ctx, err := e.detect()
			if err != nil {
				return nil
			}
			repo, ok, err := e.reg.Load(ctx.ID)
			if err != nil || !ok {
				return err
			}
			for _, h := range repo.Hooks {
				fmt.Fprintf(out, "repo: %s\n", h.Command)
			}
			return nil
		},
	}
}

func newScanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scan <dir>...",
		Short: "Register every repository found directly below the given directories",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(false)
			if err != nil {
				return err
			}
			defer e.Close()

			found, err := scanner.Scan(args, e.sh, e.reg, e.log)
			out := cmd.OutOrStdout()
			for _, f := range found {
				state := "known"
				if f.Added {
					state = "added"
				}
				fmt.Fprintf(out, "%s\t%s\t%s\n", state, f.Repo.Name, f.Repo.Anchor)
			}
			return err
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}
