package main

import (
	"context"

	"github.com/spf13/cobra"
)

var profilesFile string

var profilesCmd = &cobra.Command{
	Use:     "profiles",
	Aliases: []string{"profile"},
	Short:   "Browse and manage user profiles",
}

var profilesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List profiles",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd, func(ctx context.Context, app *App) error {
			_, err := app.Views.ProfileList(ctx)
			return err
		})
	},
}

var profilesShowCmd = &cobra.Command{
	Use:   "show <profile-id>",
	Short: "Show a profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "profile")
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, app *App) error {
			_, err := app.Views.ProfileDetail(ctx, id)
			return err
		})
	},
}

var profilesCreateCmd = &cobra.Command{
	Use:   "create --file profile.json",
	Short: "Create your profile from a JSON document",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		form, err := readProfileForm(profilesFile)
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, app *App) error {
			_, err := app.Views.CreateProfile(ctx, form)
			return err
		})
	},
}

var profilesUpdateCmd = &cobra.Command{
	Use:   "update <profile-id> --file profile.json",
	Short: "Replace your profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "profile")
		if err != nil {
			return err
		}
		form, err := readProfileForm(profilesFile)
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, app *App) error {
			_, err := app.Views.UpdateProfile(ctx, id, form)
			return err
		})
	},
}

var profilesDeleteCmd = &cobra.Command{
	Use:   "delete <profile-id>",
	Short: "Delete your profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "profile")
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, app *App) error {
			return app.Views.DeleteProfile(ctx, id)
		})
	},
}

func init() {
	for _, c := range []*cobra.Command{profilesCreateCmd, profilesUpdateCmd} {
		c.Flags().StringVarP(&profilesFile, "file", "f", "", "Profile document (JSON)")
		if err := c.MarkFlagRequired("file"); err != nil {
			panic(err)
		}
	}

	profilesCmd.AddCommand(profilesListCmd, profilesShowCmd, profilesCreateCmd, profilesUpdateCmd, profilesDeleteCmd)
	rootCmd.AddCommand(profilesCmd)
}
