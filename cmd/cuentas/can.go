// Copyright (c) 2026 Cuentas Claras. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cuentasclaras/cuentasclaras/internal/access"
)

func newCanCommand(application *app) *cobra.Command {
	var resource access.Resource

	cmd := &cobra.Command{
		Use:   "can <action>",
		Short: "Check whether the signed-in user may perform an action",
		Long: `Evaluate a capability locally against the loaded allow-list table.

The answer is advisory: the backend remains the final authority.

Examples:
  cuentas can fines.registerPayment --comunidad 5
  cuentas can fines.appeal --owner-user 42 --estado pendiente`,
		Args: cobra.ExactArgs(1),
		RunE: wired(application, func(cmd *cobra.Command, args []string) error {
			user, err := application.currentUser(cmd.Context())
			if err != nil {
				return err
			}

			decision := application.evaluator.Decide(user, access.Action(args[0]), resource)

			verdict := "denied"
			if decision.Allowed() {
				verdict = "allowed"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s (%s)\n", args[0], verdict, decision)
			return nil
		}),
	}

	cmd.Flags().Int64Var(&resource.CommunityID, "comunidad", 0, "community ID")
	cmd.Flags().Int64Var(&resource.OwnerUserID, "owner-user", 0, "owning user ID of the record")
	cmd.Flags().Int64Var(&resource.OwnerPersonaID, "owner-persona", 0, "owning persona ID of the record")
	cmd.Flags().StringVar(&resource.State, "estado", "", "lifecycle state of the record")
	return cmd
}
