package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonathan/teammatch/internal/types"
	"github.com/spf13/cobra"
)

var (
	taskStatus   string
	taskProgress int
)

var tasksCmd = &cobra.Command{
	Use:     "tasks",
	Aliases: []string{"task"},
	Short:   "Track a started project's assignments",
}

var tasksListCmd = &cobra.Command{
	Use:   "list <project-id>",
	Short: "List a project's tasks",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "project")
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, app *App) error {
			_, err := app.Views.Tasks(ctx, id)
			return err
		})
	},
}

var tasksGenerateCmd = &cobra.Command{
	Use:   "generate <project-id>",
	Short: "Generate a first round of tasks for every member",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "project")
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, app *App) error {
			_, err := app.Views.GenerateTasks(ctx, id)
			return err
		})
	},
}

var tasksUpdateCmd = &cobra.Command{
	Use:   "update <task-id> --status <status> [--progress n]",
	Short: "Report progress on a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "task")
		if err != nil {
			return err
		}
		status, err := parseAssignmentStatus(taskStatus)
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, app *App) error {
			_, err := app.Views.UpdateTask(ctx, id, status, taskProgress)
			return err
		})
	},
}

var reportsCmd = &cobra.Command{
	Use:     "reports",
	Aliases: []string{"report"},
	Short:   "Weekly progress reports",
}

var reportsListCmd = &cobra.Command{
	Use:   "list <project-id>",
	Short: "List a project's weekly reports",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "project")
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, app *App) error {
			_, err := app.Views.Reports(ctx, id)
			return err
		})
	},
}

var reportsGenerateCmd = &cobra.Command{
	Use:   "generate <project-id>",
	Short: "Generate the report for the current week",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "project")
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, app *App) error {
			_, err := app.Views.GenerateReport(ctx, id)
			return err
		})
	},
}

var assignmentStatuses = []types.AssignmentStatus{
	types.AssignmentTodo,
	types.AssignmentInProgress,
	types.AssignmentCompleted,
	types.AssignmentDelayed,
}

// parseAssignmentStatus accepts any case and dashes for underscores.
func parseAssignmentStatus(s string) (types.AssignmentStatus, error) {
	want := types.AssignmentStatus(strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "-", "_")))
	for _, st := range assignmentStatuses {
		if st == want {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown task status %q (want one of %v)", s, assignmentStatuses)
}

func init() {
	tasksUpdateCmd.Flags().StringVar(&taskStatus, "status", "", "TODO, IN_PROGRESS, COMPLETED or DELAYED")
	tasksUpdateCmd.Flags().IntVar(&taskProgress, "progress", 0, "Percent done, 0 to 100")
	if err := tasksUpdateCmd.MarkFlagRequired("status"); err != nil {
		panic(err)
	}
	tasksCmd.AddCommand(tasksListCmd, tasksGenerateCmd, tasksUpdateCmd)

	reportsCmd.AddCommand(reportsListCmd, reportsGenerateCmd)
	rootCmd.AddCommand(tasksCmd, reportsCmd)
}
