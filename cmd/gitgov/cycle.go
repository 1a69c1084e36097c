package main

import (
	"github.com/spf13/cobra"

	"github.com/gitgovernance/gitgovernance/internal/record"
)

var cycleTags []string

var cycleCmd = &cobra.Command{
	Use:   "cycle",
	Short: "Manage cycles",
}

var cycleNewCmd = &cobra.Command{
	Use:   "new <title>",
	Short: "Create a new planning-stage cycle",
	Args:  cobra.ExactArgs(1),
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
		env, err := a.backlog.NewCycle(args[0], cycleTags, signer)
		if err != nil {
			return err
		}
		id, _ := record.PayloadID(env.Payload)
		printf(cmd, "Created cycle %s\n", id)
		return nil
	},
}

var cycleAddTaskCmd = &cobra.Command{
	Use:   "add-task <cycle-id> <task-id>",
	Short: "Add a task to a cycle",
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
		if err := a.backlog.AddTaskToCycle(args[0], args[1], signer); err != nil {
			return err
		}
		printf(cmd, "Added %s to %s\n", args[1], args[0])
		return nil
	},
}

var cycleRemoveTaskCmd = &cobra.Command{
	Use:   "remove-task <cycle-id> <task-id>",
	Short: "Remove a task from a cycle",
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
		if err := a.backlog.RemoveTaskFromCycle(args[0], args[1], signer); err != nil {
			return err
		}
		printf(cmd, "Removed %s from %s\n", args[1], args[0])
		return nil
	},
}

var cycleMoveTaskCmd = &cobra.Command{
	Use:   "move-task <task-id> <from-cycle-id> <to-cycle-id>",
	Short: "Move a task from one cycle to another",
	Args:  cobra.ExactArgs(3),
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
		if err := a.backlog.MoveTask(args[1], args[2], args[0], signer); err != nil {
			return err
		}
		printf(cmd, "Moved %s from %s to %s\n", args[0], args[1], args[2])
		return nil
	},
}

func init() {
	cycleNewCmd.Flags().StringSliceVar(&cycleTags, "tags", nil, "comma-separated tags")
	cycleCmd.AddCommand(cycleNewCmd, cycleAddTaskCmd, cycleRemoveTaskCmd, cycleMoveTaskCmd)
	rootCmd.AddCommand(cycleCmd)
}
