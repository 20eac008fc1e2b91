package main

import (
	"fmt"
	"os"

	"github.com/Aditya2073/agrisample/internal/auth"
	"github.com/Aditya2073/agrisample/internal/profile"
	"github.com/spf13/cobra"
)

func passwordFrom(flag string) string {
	if flag != "" {
		return flag
	}
	return os.Getenv("MARKETCTL_PASSWORD")
}

func newRegisterCmd(a *app) *cobra.Command {
	var in auth.SignUpInput
	var role string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a farmer or buyer account",
		RunE: func(cmd *cobra.Command, args []string) error {
			in.Role = profile.Role(role)
			in.Password = passwordFrom(in.Password)

			p, err := a.client.SignUp(cmd.Context(), in)
			if err != nil {
				return fmt.Errorf("registration failed: %w", err)
			}
			a.cache.SetUser(cmd.Context(), p)
			a.printf("Welcome, %s! Signed in as %s (%s).\n", p.Name, p.Email, p.Role)
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Email, "email", "", "email address")
	cmd.Flags().StringVar(&in.Password, "password", "", "password (or MARKETCTL_PASSWORD)")
	cmd.Flags().StringVar(&in.Name, "name", "", "full name")
	cmd.Flags().StringVar(&in.Phone, "phone", "", "phone number")
	cmd.Flags().StringVar(&role, "role", string(profile.RoleBuyer), "farmer or buyer")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newLoginCmd(a *app) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.client.SignIn(cmd.Context(), email, passwordFrom(password)); err != nil {
				return fmt.Errorf("sign in failed: %w", err)
			}
			// профиль подтягиваем так же, как при старте
			a.cache.Initialize(cmd.Context())
			if !a.cache.IsAuthenticated() {
				return fmt.Errorf("sign in failed: account has no profile")
			}
			u := a.cache.User()
			a.printf("Signed in as %s (%s).\n", u.Name, u.Role)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&password, "password", "", "password (or MARKETCTL_PASSWORD)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out",
		RunE: func(cmd *cobra.Command, args []string) error {
			err := a.client.SignOut(cmd.Context())
			a.cache.SetUser(cmd.Context(), nil)
			if err != nil {
				return fmt.Errorf("signed out locally, server said: %w", err)
			}
			a.printf("Signed out.\n")
			return nil
		},
	}
}

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := a.requireUser()
			if err != nil {
				return err
			}
			a.printf("%s <%s>\nrole:  %s\nphone: %s\nid:    %s\n", u.Name, u.Email, u.Role, u.Phone, u.ID)
			return nil
		},
	}
}
