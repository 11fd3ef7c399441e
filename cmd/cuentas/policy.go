// Copyright (c) 2026 Cuentas Claras. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/cuentasclaras/cuentasclaras/internal/access"
	"github.com/cuentasclaras/cuentasclaras/internal/platform/constants"
	"github.com/cuentasclaras/cuentasclaras/internal/platform/migration"
)

func newPolicyCommand(application *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "policy",
		Short: "Inspect and manage the capability allow-list table",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the effective table as YAML",
		Long: `Print the effective allow-list table: the built-in defaults overlaid with
CC_POLICY_FILE and the capability_rule table of CC_DATABASE_URL.

The output is a valid CC_POLICY_FILE.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), constants.StartupTimeout)
			defer cancel()

			policy, err := application.loadPolicy(ctx)
			if err != nil {
				return err
			}

			data, err := access.EncodePolicy(policy)
			if err != nil {
				return err
			}

			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	migrate := &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the capability_rule table",
		RunE: func(cmd *cobra.Command, args []string) error {
			if application.cfg.DatabaseURL == "" {
				return errors.New("CC_DATABASE_URL is required to run migrations")
			}
			return migration.RunUp(application.cfg.DatabaseURL, application.cfg.MigrationPath, application.log)
		},
	}

	cmd.AddCommand(show, migrate)
	return cmd
}
