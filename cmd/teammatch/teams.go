package main

import (
	"context"

	"github.com/jonathan/teammatch/internal/types"
	"github.com/spf13/cobra"
)

var (
	invitePosition string
	inviteMessage  string
	inviteDecline  bool
	leaveReason    string
	leaveReject    bool
)

var teamsCmd = &cobra.Command{
	Use:     "teams",
	Aliases: []string{"team"},
	Short:   "Manage teams and start their projects",
}

var teamsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the teams you belong to",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd, func(ctx context.Context, app *App) error {
			_, err := app.Views.Teams(ctx)
			return err
		})
	},
}

var teamsShowCmd = &cobra.Command{
	Use:   "show <team-id>",
	Short: "Show a team's members and whether it can start",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "team")
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, app *App) error {
			_, err := app.Views.Team(ctx, id)
			return err
		})
	},
}

var teamsStartCmd = &cobra.Command{
	Use:   "start <team-id>",
	Short: "Start the team's project once every position is filled",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "team")
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, app *App) error {
			_, err := app.Views.StartProject(ctx, id)
			return err
		})
	},
}

var teamsRemoveMemberCmd = &cobra.Command{
	Use:   "remove-member <team-id> <member-id>",
	Short: "Remove a member from a team you lead",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := parseIDs(args, "team", "member")
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, app *App) error {
			return app.Views.RemoveMember(ctx, ids[0], ids[1])
		})
	},
}

var invitationsCmd = &cobra.Command{
	Use:     "invitations",
	Aliases: []string{"invites"},
	Short:   "Send and answer team invitations",
}

var invitationsMineCmd = &cobra.Command{
	Use:   "mine",
	Short: "List the invitations addressed to you",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd, func(ctx context.Context, app *App) error {
			_, err := app.Views.Invitations(ctx)
			return err
		})
	},
}

var invitationsSendCmd = &cobra.Command{
	Use:   "send <team-id> <username>",
	Short: "Invite a user to a team",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "team")
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, app *App) error {
			_, err := app.Views.Invite(ctx, id, types.InviteRequest{
				InviteeUsername: args[1],
				Position:        invitePosition,
				Message:         inviteMessage,
			})
			return err
		})
	},
}

var invitationsRespondCmd = &cobra.Command{
	Use:   "respond <invitation-id>",
	Short: "Accept an invitation, or decline it with --decline",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "invitation")
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, app *App) error {
			_, err := app.Views.RespondInvitation(ctx, id, !inviteDecline)
			return err
		})
	},
}

var leaveCmd = &cobra.Command{
	Use:   "leave",
	Short: "Ask to leave a team, or answer such requests",
}

var leaveRequestCmd = &cobra.Command{
	Use:   "request <team-id>",
	Short: "Ask the team leader to let you leave",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "team")
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, app *App) error {
			_, err := app.Views.RequestLeave(ctx, id, leaveReason)
			return err
		})
	},
}

var leaveListCmd = &cobra.Command{
	Use:   "list <team-id>",
	Short: "List a team's leave requests",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "team")
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, app *App) error {
			_, err := app.Views.LeaveRequests(ctx, id)
			return err
		})
	},
}

var leaveRespondCmd = &cobra.Command{
	Use:   "respond <request-id>",
	Short: "Approve a leave request, or reject it with --reject",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "leave request")
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, app *App) error {
			_, err := app.Views.RespondLeave(ctx, id, !leaveReject)
			return err
		})
	},
}

func init() {
	teamsCmd.AddCommand(teamsListCmd, teamsShowCmd, teamsStartCmd, teamsRemoveMemberCmd)

	invitationsSendCmd.Flags().StringVar(&invitePosition, "position", "", "Role offered")
	invitationsSendCmd.Flags().StringVarP(&inviteMessage, "message", "m", "", "Note to the invitee")
	invitationsRespondCmd.Flags().BoolVar(&inviteDecline, "decline", false, "Decline instead of accepting")
	invitationsCmd.AddCommand(invitationsMineCmd, invitationsSendCmd, invitationsRespondCmd)

	leaveRequestCmd.Flags().StringVarP(&leaveReason, "reason", "r", "", "Why you are leaving")
	leaveRespondCmd.Flags().BoolVar(&leaveReject, "reject", false, "Reject instead of approving")
	leaveCmd.AddCommand(leaveRequestCmd, leaveListCmd, leaveRespondCmd)

	rootCmd.AddCommand(teamsCmd, invitationsCmd, leaveCmd)
}
