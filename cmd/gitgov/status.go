package main

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the resolved configuration, current actor and record counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(flagOverrides())
		if err != nil {
			return err
		}

		resolved := map[string]any{
			"config":        a.cfg,
			"worktree":      a.lc.WorktreePath,
			"initialized":   isInitialized(a),
		}

		if isInitialized(a) {
			actorID, _, actorErr := a.identity.CurrentActor()
			if actorErr == nil {
				resolved["currentActor"] = actorID
			} else {
				resolved["currentActor"] = actorErr.Error()
			}
			snap, snapErr := a.index.Rebuild()
			if snapErr == nil {
				resolved["taskCounts"] = snap.TaskCounts
				resolved["cycleCounts"] = snap.CycleCounts
			}
			resolved["remoteConfigured"] = a.lc.Repo.HasRemote(a.resolveRemote())
		}

		if a.cfg.Output == "json" {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(resolved)
		}

		printf(cmd, "worktree: %v\n", resolved["worktree"])
		printf(cmd, "initialized: %v\n", resolved["initialized"])
		if v, ok := resolved["currentActor"]; ok {
			printf(cmd, "current actor: %v\n", v)
		}
		if v, ok := resolved["taskCounts"]; ok {
			printf(cmd, "tasks: %v\n", v)
		}
		if v, ok := resolved["cycleCounts"]; ok {
			printf(cmd, "cycles: %v\n", v)
		}
		return nil
	},
}

func isInitialized(a *app) bool {
	return a.requireInitialized() == nil
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
