// Command tailor-admin manages the operator accounts of the intake server.
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mbolis/tailor-intake/database"
	"github.com/mbolis/tailor-intake/store"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var dbURL string

	root := &cobra.Command{
		Use:          "tailor-admin",
		Short:        "Manage admin accounts of the intake server",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&dbURL, "db-url", "intake.sqlite", "path to SQLite3 DB file")

	withAdmins := func(run func(ctx context.Context, admins *store.Admins, cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			db, err := database.Open(dbURL)
			if err != nil {
				return err
			}
			defer db.Close()
			return run(cmd.Context(), store.NewAdmins(db), cmd, args)
		}
	}

	user := &cobra.Command{
		Use:   "user",
		Short: "Add, remove and list admins",
	}
	user.AddCommand(
		addUserCmd(withAdmins),
		removeUserCmd(withAdmins),
		listUsersCmd(withAdmins),
		revokeUserCmd(withAdmins),
	)
	root.AddCommand(user)

	return root
}

type adminsRunner func(run func(ctx context.Context, admins *store.Admins, cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error

func addUserCmd(withAdmins adminsRunner) *cobra.Command {
	var passwordStdin bool

	cmd := &cobra.Command{
		Use:   "add <username>",
		Short: "Create an admin; the password is read from stdin",
		Args:  cobra.ExactArgs(1),
		RunE: withAdmins(func(ctx context.Context, admins *store.Admins, cmd *cobra.Command, args []string) error {
			if !passwordStdin {
				fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
			}
			password, err := readPassword(cmd.InOrStdin())
			if err != nil {
				return err
			}
			if err = admins.Create(ctx, args[0], password); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "admin %s created\n", args[0])
			return nil
		}),
	}
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "read the password from stdin without prompting")
	return cmd
}

func removeUserCmd(withAdmins adminsRunner) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <username>",
		Short: "Delete an admin and its tokens",
		Args:  cobra.ExactArgs(1),
		RunE: withAdmins(func(ctx context.Context, admins *store.Admins, cmd *cobra.Command, args []string) error {
			if err := admins.Delete(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "admin %s removed\n", args[0])
			return nil
		}),
	}
}

func listUsersCmd(withAdmins adminsRunner) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List admins",
		Args:  cobra.NoArgs,
		RunE: withAdmins(func(ctx context.Context, admins *store.Admins, cmd *cobra.Command, args []string) error {
			names, err := admins.List(ctx)
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		}),
	}
}

func revokeUserCmd(withAdmins adminsRunner) *cobra.Command {
	return &cobra.Command{
		Use:   "revoke <username>",
		Short: "Sign an admin out everywhere by dropping its refresh tokens",
		Args:  cobra.ExactArgs(1),
		RunE: withAdmins(func(ctx context.Context, admins *store.Admins, cmd *cobra.Command, args []string) error {
			n, err := admins.RevokeTokens(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d tokens revoked\n", n)
			return nil
		}),
	}
}

func readPassword(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return "", fmt.Errorf("empty password")
	}
	return password, nil
}
