// Copyright (c) 2026 Cuentas Claras. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cuentasclaras/cuentasclaras/pkg/pagination"
)

func newProvidersCommand(application *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "providers",
		Aliases: []string{"proveedores"},
		Short:   "Browse community providers",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	var (
		communityID int64
		params      pagination.Params
	)

	list := &cobra.Command{
		Use:   "list",
		Short: "List the providers of a community",
		Long: `List the providers of a community.

Tax ID, address and bank account are blank unless your role may see them.`,
		RunE: wired(application, func(cmd *cobra.Command, args []string) error {
			if _, err := application.currentUser(cmd.Context()); err != nil {
				return err
			}

			page, err := application.providers.List(cmd.Context(), communityID, params)
			if err != nil {
				return err
			}

			if len(page.Data) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No providers found.")
				return nil
			}

			table := newTable(cmd.OutOrStdout())
			fmt.Fprintln(table, "ID\tNOMBRE\tRUBRO\tTELEFONO\tRUT\tCUENTA")
			for _, p := range page.Data {
				fmt.Fprintf(table, "%d\t%s\t%s\t%s\t%s\t%s\n",
					p.ID, p.Name, p.Category, orDash(p.Phone), orDash(p.TaxID), orDash(p.BankAccount))
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

	list.Flags().Int64Var(&communityID, "comunidad", 0, "community ID (required)")
	list.Flags().IntVar(&params.Page, "page", pagination.DefaultPage, "page number")
	list.Flags().IntVar(&params.Limit, "limit", pagination.DefaultLimit, "rows per page")
	_ = list.MarkFlagRequired("comunidad")

	cmd.AddCommand(list)
	return cmd
}

func orDash(value string) string {
	if value == "" {
		return "-"
	}
	return value
}
