package main

import (
	"context"

	"github.com/spf13/cobra"
)

var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "List the pages that open can show",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd, func(_ context.Context, app *App) error {
			app.Views.Routes()
			return nil
		})
	},
}

var openCmd = &cobra.Command{
	Use:   "open <path>",
	Short: "Render the page at a path, such as /projects/3 or /dashboard/3",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, app *App) error {
			return app.Views.Open(ctx, args[0])
		})
	},
}

var mypageCmd = &cobra.Command{
	Use:     "mypage",
	Aliases: []string{"me"},
	Short:   "Show your profile, applications, teams and projects",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd, func(ctx context.Context, app *App) error {
			_, err := app.Views.MyPage(ctx)
			return err
		})
	},
}

var dashboardCmd = &cobra.Command{
	Use:   "dashboard <project-id>",
	Short: "Show a started project's team, tasks and weekly reports",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "project")
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, app *App) error {
			_, err := app.Views.Dashboard(ctx, id)
			return err
		})
	},
}

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Explain why a user or a project is a good match",
}

var matchUserCmd = &cobra.Command{
	Use:   "user <user-id>",
	Short: "Explain how a user fits you",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "user")
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, app *App) error {
			_, err := app.Views.MatchReason(ctx, id)
			return err
		})
	},
}

var matchProjectCmd = &cobra.Command{
	Use:   "project <user-id> <project-id>",
	Short: "Explain how a user fits a project",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := parseIDs(args, "user", "project")
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, app *App) error {
			_, err := app.Views.ProjectMatchReason(ctx, ids[0], ids[1])
			return err
		})
	},
}

func init() {
	matchCmd.AddCommand(matchUserCmd, matchProjectCmd)
	rootCmd.AddCommand(routesCmd, openCmd, mypageCmd, dashboardCmd, matchCmd)
}
