package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

const zshInit = `# gw shell integration (zsh)
# Add to ~/.zshrc:  eval "$(gw init zsh)"
#   gw / gw go   pick a worktree and cd into it
#   gw ls        list worktrees of the current repository
#   gw rm <path> remove a worktree
gw() {
  if [[ $# -eq 0 || "$1" == "go" ]]; then
    local dest
    dest="$(command gw go "${@:2}")" || return $?
    if [[ -n "$dest" ]]; then
      cd "$dest" || return $?
    fi
  else
    command gw "$@"
  fi
}`

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "init <shell>",
		Short:     "Print shell integration",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"zsh"},
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), zshInit)
		},
	}
}
