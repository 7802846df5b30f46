package main

import (
	"context"

	"github.com/jonathan/teammatch/internal/forms"
	"github.com/jonathan/teammatch/internal/types"
	"github.com/spf13/cobra"
)

var (
	applyPosition string
	applyMessage  string
)

var applyCmd = &cobra.Command{
	Use:   "apply <project-id> --position <role>",
	Short: "Apply to a position on a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "project")
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, app *App) error {
			_, err := app.Views.Apply(ctx, forms.ApplicationForm{
				ProjectID: id,
				Position:  applyPosition,
				Message:   applyMessage,
			})
			return err
		})
	},
}

var applicationsCmd = &cobra.Command{
	Use:     "applications",
	Aliases: []string{"apps"},
	Short:   "Review applications",
}

var applicationsMineCmd = &cobra.Command{
	Use:   "mine",
	Short: "List the applications you sent",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd, func(ctx context.Context, app *App) error {
			_, err := app.Views.MyApplications(ctx)
			return err
		})
	},
}

var applicationsProjectCmd = &cobra.Command{
	Use:   "project <project-id>",
	Short: "List the applications to a project you own",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "project")
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, app *App) error {
			_, err := app.Views.ProjectApplications(ctx, id)
			return err
		})
	},
}

// decisionCmd builds approve, reject and withdraw, which differ only in the
// page action they call.
func decisionCmd(use, short string, act func(app *App) func(context.Context, int64) (*types.Application, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <application-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "application")
			if err != nil {
				return err
			}
			return withApp(cmd, func(ctx context.Context, app *App) error {
				_, err := act(app)(ctx, id)
				return err
			})
		},
	}
}

func init() {
	applyCmd.Flags().StringVar(&applyPosition, "position", "", "Role to apply for, as listed on the posting")
	applyCmd.Flags().StringVarP(&applyMessage, "message", "m", "", "Note to the project owner")
	if err := applyCmd.MarkFlagRequired("position"); err != nil {
		panic(err)
	}

	applicationsCmd.AddCommand(
		applicationsMineCmd,
		applicationsProjectCmd,
		decisionCmd("approve", "Approve an application and seat the applicant", func(app *App) func(context.Context, int64) (*types.Application, error) {
			return app.Views.Approve
		}),
		decisionCmd("reject", "Reject an application", func(app *App) func(context.Context, int64) (*types.Application, error) {
			return app.Views.Reject
		}),
		decisionCmd("withdraw", "Withdraw one of your applications", func(app *App) func(context.Context, int64) (*types.Application, error) {
			return app.Views.Withdraw
		}),
	)
	rootCmd.AddCommand(applyCmd, applicationsCmd)
}
