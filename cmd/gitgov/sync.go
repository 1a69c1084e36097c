package main

import (
	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Synchronize gitgov-state with a remote",
}

var syncPushCmd = &cobra.Command{
	Use:   "push",
	Short: "Publish local gitgov-state to the remote, rebasing first if it has moved",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(flagOverrides())
		if err != nil {
			return err
		}
		if err := a.requireInitialized(); err != nil {
			return err
		}
		result, err := a.lc.Push(a.resolveRemote())
		if err != nil {
			return err
		}
		if result.Pulled {
			printf(cmd, "Rebased onto %s before pushing.\n", a.resolveRemote())
		}
		printf(cmd, "Pushed to %s.\n", a.resolveRemote())
		return nil
	},
}

var syncPullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Bring local gitgov-state up to date with the remote",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(flagOverrides())
		if err != nil {
			return err
		}
		result, err := a.lc.Pull(a.resolveRemote())
		if err != nil {
			return err
		}
		for _, w := range result.Warnings {
			printf(cmd, "warning: %s\n", w)
		}
		if result.Bootstrapped {
			printf(cmd, "Bootstrapped gitgov-state from %s.\n", a.resolveRemote())
		} else if len(result.Warnings) == 0 {
			printf(cmd, "Pulled from %s.\n", a.resolveRemote())
		}
		return nil
	},
}

var syncResolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Continue a rebase after hand-resolving conflict markers in the worktree",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(flagOverrides())
		if err != nil {
			return err
		}
		if err := a.requireInitialized(); err != nil {
			return err
		}
		if err := a.lc.Resolve(a.resolveRemote()); err != nil {
			return err
		}
		printf(cmd, "Resolved and pushed to %s.\n", a.resolveRemote())
		return nil
	},
}

func init() {
	syncCmd.AddCommand(syncPushCmd, syncPullCmd, syncResolveCmd)
	rootCmd.AddCommand(syncCmd)
}
