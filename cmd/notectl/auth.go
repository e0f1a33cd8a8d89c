package main

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	email    string
	password string
	fullName string
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		user, err := newClient().Register(cmd.Context(), email, password, fullName)
		if err != nil {
			return err
		}
		color.Green("Registered %s", user.Email)
		return nil
	},
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and remember the session token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		login, err := newClient().Login(cmd.Context(), email, password)
		if err != nil {
			return err
		}
		if err := saveToken(login.AccessToken); err != nil {
			return err
		}
		color.Green("Signed in as %s until %s", login.User.Email, login.ExpiresAt.Local().Format("2006-01-02 15:04"))
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the current session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		err := newClient().Logout(cmd.Context())
		if serr := saveToken(""); serr != nil {
			return serr
		}
		if err != nil {
			return err
		}
		color.Green("Signed out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the current session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		info, err := newClient().Session(cmd.Context())
		if err != nil {
			return err
		}
		color.Cyan("%s (session %s, expires %s)", info.Email, info.SessionId, info.ExpiresAt.Local().Format("2006-01-02 15:04"))
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{registerCmd, loginCmd} {
		c.Flags().StringVar(&email, "email", "", "Account email")
		c.Flags().StringVar(&password, "password", "", "Account password")
		_ = c.MarkFlagRequired("email")
		_ = c.MarkFlagRequired("password")
	}
	registerCmd.Flags().StringVar(&fullName, "name", "", "Display name")

	rootCmd.AddCommand(registerCmd, loginCmd, logoutCmd, whoamiCmd)
}
