package main

import (
	"fmt"
	"os/user"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/gitgovernance/gitgovernance/internal/factory"
	"github.com/gitgovernance/gitgovernance/internal/keystore"
)

var (
	initActorID     string
	initDisplayName string
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the gitgov-state worktree, bootstrap actor and root cycle",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(flagOverrides())
		if err != nil {
			return err
		}

		actorID, displayName := initActorID, initDisplayName
		if actorID == "" || displayName == "" {
			u, uErr := user.Current()
			if uErr == nil {
				if actorID == "" {
					actorID = "human:" + u.Username
				}
				if displayName == "" {
					displayName = u.Name
					if displayName == "" {
						displayName = u.Username
					}
				}
			}
		}
		if actorID == "" {
			return fmt.Errorf("gitgov init: could not determine an actor id; pass --actor-id")
		}

		priv, err := keystore.Generate()
		if err != nil {
			return err
		}

		signer := factory.Signer{ActorID: actorID, Role: "author", Notes: "bootstrap", Key: priv}

		result, err := a.lc.Init(a.factory, actorID, displayName, signer)
		if err != nil {
			return err
		}

		if result.Created {
			keysDir := keystore.NewFileStore(filepath.Join(a.lc.WorktreePath, keysDirName))
			if err := keysDir.Put(actorID, priv); err != nil {
				return err
			}
			printf(cmd, "Initialized gitgov-state at %s\n", result.WorktreePath)
			printf(cmd, "Bootstrap actor: %s\n", result.BootstrapActor)
			printf(cmd, "Root cycle: %s\n", result.RootCycleID)
		} else {
			printf(cmd, "Already initialized at %s (bootstrap actor %s)\n", result.WorktreePath, result.BootstrapActor)
		}
		return nil
	},
}

func init() {
	initCmd.Flags().StringVar(&initActorID, "actor-id", "", "bootstrap actor id, e.g. human:alice (default: derived from the OS user)")
	initCmd.Flags().StringVar(&initDisplayName, "display-name", "", "bootstrap actor display name (default: derived from the OS user)")
	rootCmd.AddCommand(initCmd)
}
