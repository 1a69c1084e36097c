package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/gitgovernance/gitgovernance/internal/record"
	"github.com/gitgovernance/gitgovernance/internal/sync"
)

var contextCmd = &cobra.Command{
	Use:   "context",
	Short: "Print a machine-readable snapshot of current work: actor, root cycle, active and ready tasks",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(flagOverrides())
		if err != nil {
			return err
		}
		if err := a.requireInitialized(); err != nil {
			return err
		}

		cfg, err := sync.LoadConfig(a.lc.WorktreePath)
		if err != nil {
			return err
		}

		actorID, _, actorErr := a.identity.CurrentActor()
		out := map[string]any{
			"rootCycleId": cfg.RootCycleID,
		}
		if actorErr == nil {
			out["currentActor"] = actorID
		}

		snap, err := a.index.Rebuild()
		if err != nil {
			return err
		}
		var active, ready []any
		for _, t := range snap.Tasks {
			switch t.Status {
			case record.TaskActive:
				active = append(active, t)
			case record.TaskReady:
				ready = append(ready, t)
			}
		}
		out["activeTasks"] = active
		out["readyTasks"] = ready

		if a.cfg.Output != "json" {
			printf(cmd, "root cycle: %s\n", cfg.RootCycleID)
			printf(cmd, "active tasks: %d, ready tasks: %d\n", len(active), len(ready))
			return nil
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	},
}

func init() {
	rootCmd.AddCommand(contextCmd)
}
