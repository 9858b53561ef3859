package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/agonsep/21stCentury/internal/cli/output"
	"github.com/agonsep/21stCentury/pkg/client"
)

func newLoginCmd(a *app) *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Obtain an admin token and store it in the config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				fd := int(os.Stdin.Fd())
				if !term.IsTerminal(fd) {
					return errors.New("no terminal available: pass the password with --password")
				}
				fmt.Fprint(cmd.ErrOrStderr(), "Admin password: ")
				raw, err := term.ReadPassword(fd)
				fmt.Fprintln(cmd.ErrOrStderr())
				if err != nil {
					return fmt.Errorf("failed to read password: %w", err)
				}
				password = strings.TrimSpace(string(raw))
			}

			token, err := a.client().Login(cmd.Context(), password)
			if err != nil {
				if client.IsUnauthorized(err) {
					return errors.New("login failed: invalid password")
				}
				return fmt.Errorf("login failed: %w", err)
			}

			a.cfg.Auth.Token = token.Token
			a.cfg.Auth.TokenExpiresAt = token.ExpiresAt.UTC().Format(time.RFC3339)
			if err := a.save(); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Logged in to %s, token expires %s\n",
				a.cfg.Server.URL, output.Ago(token.ExpiresAt))
			return nil
		},
	}

	cmd.Flags().StringVar(&password, "password", "", "admin password (prompted when omitted)")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored admin token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a.cfg.Auth.Token = ""
			a.cfg.Auth.TokenExpiresAt = ""
			if err := a.save(); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

type statusInfo struct {
	Server    string     `json:"server"`
	LoggedIn  bool       `json:"loggedIn"`
	Subject   string     `json:"subject,omitempty"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

func newStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the configured server and whether the stored token is valid",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := output.FromCmd(cmd)
			if err != nil {
				return err
			}

			status := statusInfo{Server: a.cfg.Server.URL}
			if a.cfg.Auth.HasValidToken(time.Now()) {
				info, err := a.client().VerifyToken(cmd.Context())
				switch {
				case err == nil && info.Valid:
					status.LoggedIn = true
					status.Subject = info.Subject
					status.ExpiresAt = &info.ExpiresAt
				case err != nil && !client.IsUnauthorized(err):
					return fmt.Errorf("failed to verify token: %w", err)
				}
			}

			return f.Output(status, func(w io.Writer) error {
				fmt.Fprintf(w, "Server:    %s\n", status.Server)
				if !status.LoggedIn {
					_, err := fmt.Fprintln(w, "Auth:      not logged in")
					return err
				}
				fmt.Fprintf(w, "Auth:      logged in as %s\n", status.Subject)
				_, err := fmt.Fprintf(w, "Expires:   %s (%s)\n",
					status.ExpiresAt.Local().Format(time.RFC1123), output.Ago(*status.ExpiresAt))
				return err
			})
		},
	}
}
