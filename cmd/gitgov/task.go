package main

import (
	"github.com/spf13/cobra"

	"github.com/gitgovernance/gitgovernance/internal/record"
)

var (
	taskPriority    string
	taskDescription string
	taskTags        []string
	taskCycleID     string
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Manage tasks",
}

var taskNewCmd = &cobra.Command{
	Use:   "new <title>",
	Short: "Create a new draft task",
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
		priority := record.TaskPriority(taskPriority)
		if priority == "" {
			priority = record.PriorityMedium
		}
		env, err := a.backlog.NewTask(args[0], taskDescription, priority, taskTags, taskCycleID, signer)
		if err != nil {
			return err
		}
		id, _ := record.PayloadID(env.Payload)
		printf(cmd, "Created task %s\n", id)
		return nil
	},
}

var taskEditCmd = &cobra.Command{
	Use:   "edit <task-id> <title>",
	Short: "Edit a task's title, description, priority and tags",
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
		priority := record.TaskPriority(taskPriority)
		if priority == "" {
			priority = record.PriorityMedium
		}
		if _, err := a.backlog.EditTask(args[0], args[1], taskDescription, priority, taskTags, signer); err != nil {
			return err
		}
		printf(cmd, "Edited task %s\n", args[0])
		return nil
	},
}

func taskTransitionCmd(use, short string, to record.TaskStatus) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <task-id>",
		Short: short,
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
			if _, err := a.backlog.TransitionTask(args[0], to, signer); err != nil {
				return err
			}
			printf(cmd, "%s -> %s\n", args[0], to)
			return nil
		},
	}
}

var taskAssignCmd = &cobra.Command{
	Use:   "assign <task-id> <cycle-id>",
	Short: "Attach a task to a cycle",
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
		if err := a.backlog.AddTaskToCycle(args[1], args[0], signer); err != nil {
			return err
		}
		printf(cmd, "Assigned %s to %s\n", args[0], args[1])
		return nil
	},
}

var taskDeleteCmd = &cobra.Command{
	Use:   "delete <task-id>",
	Short: "Delete a draft task outright",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(flagOverrides())
		if err != nil {
			return err
		}
		if err := a.requireInitialized(); err != nil {
			return err
		}
		if err := a.backlog.DeleteTask(args[0]); err != nil {
			return err
		}
		printf(cmd, "Deleted %s\n", args[0])
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{taskNewCmd, taskEditCmd} {
		c.Flags().StringVar(&taskDescription, "description", "", "task description")
		c.Flags().StringVar(&taskPriority, "priority", "", "low, medium, high or critical (default: medium)")
		c.Flags().StringSliceVar(&taskTags, "tags", nil, "comma-separated tags")
	}
	taskNewCmd.Flags().StringVar(&taskCycleID, "cycle", "", "attach the new task to this cycle")

	taskSubmitCmd := taskTransitionCmd("submit", "Submit a draft task for review", record.TaskReview)
	taskPauseCmd := taskTransitionCmd("pause", "Pause an active task", record.TaskPaused)
	taskResumeCmd := taskTransitionCmd("resume", "Resume a paused task", record.TaskActive)

	taskCmd.AddCommand(taskNewCmd, taskEditCmd, taskSubmitCmd, taskAssignCmd, taskPauseCmd, taskResumeCmd, taskDeleteCmd)
	rootCmd.AddCommand(taskCmd)
}
