package main

import (
	"context"

	"github.com/jonathan/teammatch/internal/types"
	"github.com/spf13/cobra"
)

var (
	projectsTag    string
	projectsSearch string
	projectsFile   string
)

var projectsCmd = &cobra.Command{
	Use:     "projects",
	Aliases: []string{"project"},
	Short:   "Browse and manage project postings",
}

var projectsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List open project postings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd, func(ctx context.Context, app *App) error {
			_, err := app.Views.ProjectList(ctx, types.PostingFilter{Tag: projectsTag, Search: projectsSearch})
			return err
		})
	},
}

var projectsShowCmd = &cobra.Command{
	Use:   "show <project-id>",
	Short: "Show a posting with its positions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "project")
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, app *App) error {
			_, err := app.Views.ProjectDetail(ctx, id)
			return err
		})
	},
}

var projectsCreateCmd = &cobra.Command{
	Use:   "create --file posting.json",
	Short: "Publish a posting from a JSON document",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		form, err := readPostingForm(projectsFile)
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, app *App) error {
			_, err := app.Views.CreatePosting(ctx, form)
			return err
		})
	},
}

var projectsUpdateCmd = &cobra.Command{
	Use:   "update <project-id> --file posting.json",
	Short: "Replace a posting you own",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "project")
		if err != nil {
			return err
		}
		form, err := readPostingForm(projectsFile)
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, app *App) error {
			_, err := app.Views.UpdatePosting(ctx, id, form)
			return err
		})
	},
}

var projectsDeleteCmd = &cobra.Command{
	Use:   "delete <project-id>",
	Short: "Delete a posting you own",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "project")
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, app *App) error {
			return app.Views.DeletePosting(ctx, id)
		})
	},
}

var projectsMineCmd = &cobra.Command{
	Use:   "mine",
	Short: "List the started projects you belong to",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd, func(ctx context.Context, app *App) error {
			_, err := app.Views.MyProjects(ctx)
			return err
		})
	},
}

func init() {
	projectsListCmd.Flags().StringVar(&projectsTag, "tag", "", "Only postings with this tag")
	projectsListCmd.Flags().StringVarP(&projectsSearch, "search", "s", "", "Only postings whose title or intro contains this text")

	for _, c := range []*cobra.Command{projectsCreateCmd, projectsUpdateCmd} {
		c.Flags().StringVarP(&projectsFile, "file", "f", "", "Posting document (JSON)")
		if err := c.MarkFlagRequired("file"); err != nil {
			panic(err)
		}
	}

	projectsCmd.AddCommand(projectsListCmd, projectsShowCmd, projectsCreateCmd, projectsUpdateCmd, projectsDeleteCmd, projectsMineCmd)
	rootCmd.AddCommand(projectsCmd)
}
