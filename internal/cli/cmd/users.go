package cmd

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/agonsep/21stCentury/internal/cli/output"
	"github.com/agonsep/21stCentury/pkg/models"
)

func newUsersCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage catalog users",
	}
	cmd.AddCommand(newUsersListCmd(a), newUsersGetCmd(a), newUsersCreateCmd(a))
	return cmd
}

func newUsersListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := output.FromCmd(cmd)
			if err != nil {
				return err
			}
			users, err := a.client().ListUsers(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list users: %w", err)
			}
			return f.Output(users, func(w io.Writer) error {
				return writeUsers(w, users)
			})
		},
	}
}

func newUsersGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a single user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := output.FromCmd(cmd)
			if err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			user, err := a.client().GetUser(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("failed to get user %d: %w", id, err)
			}
			return f.Output(user, func(w io.Writer) error {
				return writeUsers(w, []*models.User{user})
			})
		},
	}
}

func newUsersCreateCmd(a *app) *cobra.Command {
	var name, email string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := output.FromCmd(cmd)
			if err != nil {
				return err
			}
			user, err := a.client().CreateUser(cmd.Context(), name, email)
			if err != nil {
				return fmt.Errorf("failed to create user: %w", err)
			}
			return f.Output(user, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "Created user %d (%s <%s>)\n", user.ID, user.Name, user.Email)
				return err
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("email")
	return cmd
}

func writeUsers(w io.Writer, users []*models.User) error {
	rows := make([][]string, 0, len(users))
	for _, u := range users {
		rows = append(rows, []string{strconv.FormatInt(u.ID, 10), u.Name, u.Email, output.Ago(u.CreatedAt)})
	}
	return output.Table(w, []string{"id", "name", "email", "created"}, rows)
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid id %q: must be a positive integer", s)
	}
	return id, nil
}
