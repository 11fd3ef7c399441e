// Copyright (c) 2026 Cuentas Claras. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"bufio"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/cuentasclaras/cuentasclaras/internal/auth"
	"github.com/cuentasclaras/cuentasclaras/internal/platform/sec"
)

func newLoginCommand(application *app) *cobra.Command {
	var input auth.LoginInput

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session",
		Long: `Sign in with a username or email address.

When --password is omitted the password is read from the first line of stdin.`,
		RunE: wired(application, func(cmd *cobra.Command, args []string) error {
			if input.Password == "" {
				fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("read password: %w", err)
				}
				input.Password = strings.TrimRight(line, "\r\n")
			}

			application.quietClear = true
			user, err := application.auth.Login(cmd.Context(), input)
			application.quietClear = false
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s\n", user.Username)
			return nil
		}),
	}

	cmd.Flags().StringVarP(&input.Identifier, "user", "u", "", "username or email")
	cmd.Flags().StringVar(&input.Password, "password", "", "password (read from stdin when empty)")
	return cmd
}

func newLogoutCommand(application *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session on the backend and locally",
		RunE: wired(application, func(cmd *cobra.Command, args []string) error {
			application.quietClear = true
			if err := application.auth.Logout(cmd.Context()); err != nil {
				// The local session is gone either way.
				fmt.Fprintln(cmd.ErrOrStderr(), "warning: backend logout failed:", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		}),
	}
}

func newWhoamiCommand(application *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user and their memberships",
		RunE: wired(application, func(cmd *cobra.Command, args []string) error {
			user, err := application.currentUser(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "User:        %s (id %d)\n", user.Username, user.ID)
			if user.Email != "" {
				fmt.Fprintf(out, "Email:       %s\n", user.Email)
			}
			if user.IsSuperadmin {
				fmt.Fprintln(out, "Superadmin:  yes")
			}
			if len(user.Roles) > 0 {
				fmt.Fprintf(out, "Roles:       %s\n", joinRoles(user.Roles))
			}
			for _, communityID := range user.Communities() {
				fmt.Fprintf(out, "Comunidad %d: %s\n", communityID, joinRoles(user.RolesIn(communityID)))
			}

			// The token may have been rotated by the profile call above.
			if claims, err := sec.PeekClaims(application.session.Token()); err == nil {
				if left := claims.ExpiresIn(time.Now()); left > 0 {
					fmt.Fprintf(out, "Token:       expires in %s\n", left.Round(time.Second))
				} else {
					fmt.Fprintln(out, "Token:       expired (refreshed on next request)")
				}
			}
			return nil
		}),
	}
}
