package main

import (
	"github.com/spf13/cobra"
)

var actorCmd = &cobra.Command{
	Use:   "actor",
	Short: "Manage actors",
}

var actorRoles []string

var actorNewCmd = &cobra.Command{
	Use:   "new <actor-id> <display-name>",
	Short: "Create a new actor, signed by the current actor",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(flagOverrides())
		if err != nil {
			return err
		}
		if err := a.requireInitialized(); err != nil {
			return err
		}
		signer, err := a.currentSigner(flagNotes)
		if err != nil {
			return err
		}
		roles := actorRoles
		if len(roles) == 0 {
			roles = []string{"author"}
		}
		env, err := a.identity.CreateActor(args[0], args[1], roles, signer)
		if err != nil {
			return err
		}
		printf(cmd, "Created actor %s (%s)\n", args[0], env.Header.PayloadChecksum)
		return nil
	},
}

var actorRotateKeyCmd = &cobra.Command{
	Use:   "rotate-key <actor-id> <successor-id>",
	Short: "Revoke actor-id's key and issue a successor actor",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(flagOverrides())
		if err != nil {
			return err
		}
		if err := a.requireInitialized(); err != nil {
			return err
		}
		signer, err := a.currentSigner(flagNotes)
		if err != nil {
			return err
		}
		if _, err := a.identity.RotateKey(args[0], args[1], signer); err != nil {
			return err
		}
		printf(cmd, "Rotated %s -> %s\n", args[0], args[1])
		return nil
	},
}

func init() {
	actorNewCmd.Flags().StringSliceVar(&actorRoles, "roles", nil, "comma-separated roles (default: author)")
	actorCmd.AddCommand(actorNewCmd, actorRotateKeyCmd)
	rootCmd.AddCommand(actorCmd)
}
