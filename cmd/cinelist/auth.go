package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mmcdole/cinelist/internal/auth"
)

func newLoginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to the list store and save the token",
		Args:  cobra.NoArgs,
		RunE:  runLogin,
	}

	cmd.Flags().StringP("username", "u", "", "username (prompted when empty)")

	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the saved token and return to the guest list",
		Args:  cobra.NoArgs,
		RunE:  runLogout,
	}
}

func runLogin(cmd *cobra.Command, _ []string) error {
	username, _ := cmd.Flags().GetString("username")
	logger := buildLogger()

	flow := auth.NewFlow(resolvedCfg.Backend.URL, logger)
	result, err := flow.Run(cmd.Context(), username)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}

	if err := cfgLoader.SaveSession(result.Token, result.Username); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Token saved to %s\n", cfgLoader.Path())
	return nil
}

func runLogout(cmd *cobra.Command, _ []string) error {
	logger := buildLogger()

	if !resolvedCfg.IsAuthenticated() {
		fmt.Fprintln(cmd.OutOrStdout(), "Not logged in.")
		return nil
	}

	if err := cfgLoader.ClearSession(); err != nil {
		return err
	}

	logger.Info("logged out", "username", resolvedCfg.Session.Username)
	fmt.Fprintln(cmd.OutOrStdout(), "Logged out. Using the guest list.")
	return nil
}
