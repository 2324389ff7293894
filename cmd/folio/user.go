package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/gauthierbraillon/folio/internal/display"
	"github.com/gauthierbraillon/folio/internal/users"
)

// newSignupCmd creates the signup subcommand.
func newSignupCmd(a *app) *cobra.Command {
	var form users.SignupForm

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account",
		Long:  "Create an account. The form is checked locally before anything is sent.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.usersClient().Signup(cmd.Context(), form); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Welcome, %s! Your account has been created.\n", form.Nickname)
			return nil
		},
	}

	cmd.Flags().StringVar(&form.Email, "email", "", "Email address")
	cmd.Flags().StringVar(&form.Nickname, "nickname", "", "Nickname (2-10 Korean or English letters)")
	cmd.Flags().StringVar(&form.Password, "password", "", "Password (6+ characters, letters and numbers)")
	cmd.Flags().StringVar(&form.ConfirmPassword, "confirm", "", "Password again")

	return cmd
}

// newUserCmd creates the user subcommand and its children.
func newUserCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts",
	}

	cmd.AddCommand(newCheckEmailCmd(a))
	cmd.AddCommand(newUserGetCmd(a))
	cmd.AddCommand(newUserUpdateCmd(a))
	cmd.AddCommand(newUserDeleteCmd(a))
	cmd.AddCommand(newUserPasswordCmd(a))

	return cmd
}

func newCheckEmailCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check-email <email>",
		Short: "Check whether an email can be used to sign up",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			free, err := a.usersClient().CheckEmail(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if free {
				fmt.Fprintf(cmd.OutOrStdout(), "%s is available\n", args[0])
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s is already registered\n", args[0])
			}
			return nil
		},
	}
}

func newUserGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a user profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			u, err := a.usersClient().GetUser(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), display.NewTerminalFormatter().FormatUser(*u))
			return nil
		},
	}
}

func newUserUpdateCmd(a *app) *cobra.Command {
	var nickname string
	var image string

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change nickname or profile image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			upd := users.UpdateRequest{Nickname: nickname}
			if image != "" {
				f, err := os.Open(image)
				if err != nil {
					return fmt.Errorf("failed to open profile image: %w", err)
				}
				defer f.Close()
				upd.ProfileImage = f
				upd.ImageName = filepath.Base(image)
			}

			if err := a.usersClient().UpdateUser(cmd.Context(), id, upd); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Profile updated.")
			return nil
		},
	}

	cmd.Flags().StringVar(&nickname, "nickname", "", "New nickname")
	cmd.Flags().StringVar(&image, "image", "", "Path to a new profile image")

	return cmd
}

func newUserDeleteCmd(a *app) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if !yes {
				return errors.New("account deletion cannot be undone: pass --yes to confirm")
			}
			if err := a.usersClient().DeleteUser(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Account deleted.")
			return nil
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm deletion")

	return cmd
}

func newUserPasswordCmd(a *app) *cobra.Command {
	var change users.PasswordChange

	cmd := &cobra.Command{
		Use:   "password <id>",
		Short: "Change the account password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.usersClient().UpdatePassword(cmd.Context(), id, change); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Password changed.")
			return nil
		},
	}

	cmd.Flags().StringVar(&change.CurrentPassword, "current", "", "Current password")
	cmd.Flags().StringVar(&change.NewPassword, "new", "", "New password")
	_ = cmd.MarkFlagRequired("current")
	_ = cmd.MarkFlagRequired("new")

	return cmd
}
