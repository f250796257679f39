package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/five82/walkin/internal/app"
)

// LoginCmd returns the login command
func LoginCmd() *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and save the session",
		Long: `Authenticate against the clinic backend and save the session so the
dashboard and other commands start signed in.

The password is read from standard input when --password is not given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				var err error
				password, err = readPassword(cmd)
				if err != nil {
					return err
				}
			}
			if strings.TrimSpace(username) == "" || password == "" {
				return errors.New("please enter username and password")
			}
			return withServices(cmd, func(ctx context.Context, svc *app.Services) error {
				identity, err := svc.Login(ctx, strings.TrimSpace(username), password)
				if err != nil {
					return fmt.Errorf("login failed: %w", err)
				}
				printf(cmd, "%s Welcome, %s\n", color.New(color.FgGreen).Sprint("✓"), identity.DisplayName())
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "Username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password (prompted when omitted)")
	_ = cmd.MarkFlagRequired("username")

	return cmd
}

func readPassword(cmd *cobra.Command) (string, error) {
	_, _ = fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// LogoutCmd returns the logout command
func LogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd, func(ctx context.Context, svc *app.Services) error {
				if err := svc.Logout(); err != nil {
					return err
				}
				outln(cmd, "Logged out.")
				return nil
			})
		},
	}
}

// WhoamiCmd returns the whoami command
func WhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(ctx context.Context, svc *app.Services) error {
				identity := svc.Store.Snapshot().Identity
				printf(cmd, "%s (%s)\n", identity.DisplayName(), identity.Username)
				if identity.Role != "" {
					printf(cmd, "Role: %s\n", identity.Role)
				}
				return nil
			})
		},
	}
}
