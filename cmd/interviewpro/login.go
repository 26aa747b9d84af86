package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var errNoLogin = errors.New("the configured calendar provider needs no login")

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authorize Google Calendar access from the terminal",
	Long:  "Prints the consent URL, then reads the authorization code from stdin. With `serve` running, /auth/login does the same in the browser.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer a.Close()
		if a.auth == nil {
			return errNoLogin
		}

		u, err := a.auth.AuthCodeURL(uuid.NewString())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Open this URL and approve access:\n\n  %s\n\nPaste the code parameter from the redirect: ", u)

		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("read code: %w", err)
		}
		code := strings.TrimSpace(line)
		if code == "" {
			return errors.New("no authorization code given")
		}
		if err := a.auth.Exchange(cmd.Context(), code); err != nil {
			return err
		}
		fmt.Fprintln(out, "logged in")
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the saved calendar token",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer a.Close()
		if a.auth == nil {
			return errNoLogin
		}
		if err := a.auth.Logout(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "logged out")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loginCmd, logoutCmd)
}
