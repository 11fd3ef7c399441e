// Copyright (c) 2026 Cuentas Claras. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"github.com/spf13/cobra"

	"github.com/cuentasclaras/cuentasclaras/internal/platform/constants"
)

// newRootCommand assembles the command tree. The returned app is shared by
// every subcommand and must be closed by the caller.
func newRootCommand() (*cobra.Command, *app) {
	application := newApp()

	root := &cobra.Command{
		Use:   "cuentas",
		Short: "Cuentas Claras condominium administration client",
		Long: `Command-line client for the Cuentas Claras backend.

The session is stored between invocations (see CC_SESSION_BACKEND) and is
refreshed automatically when the access token expires. Commands that need a
privilege you lack are refused locally before anything is sent.

Examples:
  cuentas login -u admin@edificio.cl
  cuentas fines list --comunidad 5 --estado pendiente
  cuentas fines pay 120 --monto 15000 --medio efectivo
  cuentas can fines.delete --comunidad 5`,
		Version:       constants.AppVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return application.load()
		},
	}

	root.AddCommand(
		newLoginCommand(application),
		newLogoutCommand(application),
		newWhoamiCommand(application),
		newCanCommand(application),
		newFinesCommand(application),
		newAppealsCommand(application),
		newProvidersCommand(application),
		newPolicyCommand(application),
		newServeCommand(application),
	)

	return root, application
}

// wired adapts a RunE that needs the backend-facing dependencies.
func wired(application *app, run func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if err := application.wire(cmd.Context()); err != nil {
			return err
		}
		return run(cmd, args)
	}
}
