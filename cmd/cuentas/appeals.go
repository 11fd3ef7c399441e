// Copyright (c) 2026 Cuentas Claras. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cuentasclaras/cuentasclaras/internal/appeal"
	"github.com/cuentasclaras/cuentasclaras/internal/platform/apperr"
	"github.com/cuentasclaras/cuentasclaras/pkg/pagination"
)

func newAppealsCommand(application *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "appeals",
		Aliases: []string{"apelaciones"},
		Short:   "List and resolve appeals",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(newAppealsListCommand(application), newAppealsResolveCommand(application))
	return cmd
}

func newAppealsListCommand(application *app) *cobra.Command {
	var (
		communityID int64
		state       string
		params      pagination.Params
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List appeals",
		RunE: wired(application, func(cmd *cobra.Command, args []string) error {
			if _, err := application.currentUser(cmd.Context()); err != nil {
				return err
			}

			page, err := application.appeals.List(cmd.Context(), communityID, state, params)
			if err != nil {
				return err
			}

			if len(page.Data) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No appeals found.")
				return nil
			}

			table := newTable(cmd.OutOrStdout())
			fmt.Fprintln(table, "ID\tMULTA\tCOMUNIDAD\tESTADO\tMOTIVO")
			for _, a := range page.Data {
				fmt.Fprintf(table, "%d\t%d\t%d\t%s\t%s\n", a.ID, a.FineID, a.CommunityID, a.State, a.Reason)
			}
			if err := table.Flush(); err != nil {
				return err
			}

			if footer := pageFooter(page.Meta); footer != "" {
				fmt.Fprintln(cmd.OutOrStdout(), footer)
			}
			return nil
		}),
	}

	cmd.Flags().Int64Var(&communityID, "comunidad", 0, "community ID")
	cmd.Flags().StringVar(&state, "estado", "", "state: pendiente, aceptada, rechazada")
	cmd.Flags().IntVar(&params.Page, "page", pagination.DefaultPage, "page number")
	cmd.Flags().IntVar(&params.Limit, "limit", pagination.DefaultLimit, "rows per page")
	return cmd
}

func newAppealsResolveCommand(application *app) *cobra.Command {
	var (
		accept, reject bool
		comment        string
	)

	cmd := &cobra.Command{
		Use:   "resolve <appeal-id>",
		Short: "Accept or reject a pending appeal",
		Args:  cobra.ExactArgs(1),
		RunE: wired(application, func(cmd *cobra.Command, args []string) error {
			id, err := parseID("appeal-id", args[0])
			if err != nil {
				return err
			}

			if accept == reject {
				return apperr.ValidationError("Choose one outcome", apperr.FieldError{
					Field:   "aceptar",
					Message: "Pass exactly one of --aceptar or --rechazar",
				})
			}

			if _, err := application.currentUser(cmd.Context()); err != nil {
				return err
			}

			resolved, err := application.appeals.Resolve(cmd.Context(), id, appeal.Resolution{Accept: accept, Comment: comment})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Appeal %d %s.\n", resolved.ID, resolved.State)
			return nil
		}),
	}

	cmd.Flags().BoolVar(&accept, "aceptar", false, "accept the appeal")
	cmd.Flags().BoolVar(&reject, "rechazar", false, "reject the appeal")
	cmd.Flags().StringVar(&comment, "comentario", "", "resolution comment")
	return cmd
}
