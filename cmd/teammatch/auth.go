package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/teammatch/internal/httpclient"
	"github.com/jonathan/teammatch/internal/types"
	"github.com/spf13/cobra"
)

var (
	loginPassword  string
	signupEmail    string
	signupPassword string
	signupNickname string
)

var loginCmd = &cobra.Command{
	Use:   "login <username>",
	Short: "Sign in and keep the session for later commands",
	Long:  "Sign in to the backend. The password is read from --password, or from the first line of stdin.",
	Args:  cobra.ExactArgs(1),
	RunE:  runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and forget the stored session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd, func(ctx context.Context, app *App) error {
			return app.Views.Logout(ctx)
		})
	},
}

var signupCmd = &cobra.Command{
	Use:   "signup <username>",
	Short: "Create an account",
	Args:  cobra.ExactArgs(1),
	RunE:  runSignup,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in account",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd, func(_ context.Context, app *App) error {
			app.Views.WhoAmI()
			return nil
		})
	},
}

func init() {
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "Password (read from stdin when omitted)")

	signupCmd.Flags().StringVar(&signupEmail, "email", "", "Email address")
	signupCmd.Flags().StringVarP(&signupPassword, "password", "p", "", "Password, at least 8 characters (read from stdin when omitted)")
	signupCmd.Flags().StringVar(&signupNickname, "nickname", "", "Display name")
	if err := signupCmd.MarkFlagRequired("email"); err != nil {
		panic(fmt.Sprintf("failed to mark email flag as required: %v", err))
	}

	rootCmd.AddCommand(loginCmd, logoutCmd, signupCmd, whoamiCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	password, err := passwordFrom(loginPassword, cmd.InOrStdin())
	if err != nil {
		return err
	}
	return withApp(cmd, func(ctx context.Context, app *App) error {
		_, err := app.Views.Login(ctx, types.Credentials{Username: args[0], Password: password})
		if errors.Is(err, httpclient.ErrUnauthorized) {
			return errors.New("invalid username or password")
		}
		return err
	})
}

func runSignup(cmd *cobra.Command, args []string) error {
	password, err := passwordFrom(signupPassword, cmd.InOrStdin())
	if err != nil {
		return err
	}
	return withApp(cmd, func(ctx context.Context, app *App) error {
		_, err := app.Views.Signup(ctx, types.SignupRequest{
			Username: args[0],
			Email:    signupEmail,
			Password: password,
			Nickname: signupNickname,
		})
		return err
	})
}

// passwordFrom returns flag, or the first line of in when flag is empty.
func passwordFrom(flag string, in io.Reader) (string, error) {
	if flag != "" {
		return flag, nil
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return "", errors.New("a password is required")
	}
	return password, nil
}
