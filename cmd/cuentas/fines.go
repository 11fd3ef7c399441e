// Copyright (c) 2026 Cuentas Claras. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/cuentasclaras/cuentasclaras/internal/access"
	"github.com/cuentasclaras/cuentasclaras/internal/appeal"
	"github.com/cuentasclaras/cuentasclaras/internal/fine"
	"github.com/cuentasclaras/cuentasclaras/internal/platform/validate"
	"github.com/cuentasclaras/cuentasclaras/pkg/pagination"
	"github.com/cuentasclaras/cuentasclaras/pkg/pointer"
	"github.com/cuentasclaras/cuentasclaras/pkg/slice"
)

func newFinesCommand(application *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "fines",
		Aliases: []string{"multas"},
		Short:   "List, pay and appeal fines",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(
		newFinesListCommand(application),
		newFinesCreateCommand(application),
		newFinesEditCommand(application),
		newFinesDeleteCommand(application),
		newFinesPayCommand(application),
		newFinesAppealCommand(application),
	)
	return cmd
}

// fineControl is a control a UI would render next to a fine.
type fineControl struct {
	label  string
	action access.Action
}

var fineActions = []fineControl{
	{"pay", access.FinesRegisterPayment},
	{"appeal", access.FinesAppeal},
	{"edit", access.FinesEdit},
	{"delete", access.FinesDelete},
}

func newFinesListCommand(application *app) *cobra.Command {
	var (
		filter fine.Filter
		params pagination.Params
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List fines visible to the signed-in user",
		Long: `List fines, optionally narrowed to one community, unit or state.

The ACTIONS column shows what the signed-in user may do with each fine.`,
		RunE: wired(application, func(cmd *cobra.Command, args []string) error {
			if _, err := application.currentUser(cmd.Context()); err != nil {
				return err
			}

			page, err := application.fines.List(cmd.Context(), filter, params)
			if err != nil {
				return err
			}

			if len(page.Data) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No fines found.")
				return nil
			}

			table := newTable(cmd.OutOrStdout())
			fmt.Fprintln(table, "ID\tCOMUNIDAD\tUNIDAD\tMOTIVO\tMONTO\tSALDO\tESTADO\tACTIONS")
			for i := range page.Data {
				f := &page.Data[i]

				allowed := slice.Filter(fineActions, func(control fineControl) bool {
					return application.fines.Can(control.action, f)
				})

				fmt.Fprintf(table, "%d\t%d\t%d\t%s\t%s\t%s\t%s\t%s\n",
					f.ID, f.CommunityID, f.UnitID, f.Reason,
					formatCLP(f.Amount), formatCLP(f.Balance()), f.State,
					strings.Join(slice.Map(allowed, func(control fineControl) string { return control.label }), ","),
				)
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

	cmd.Flags().Int64Var(&filter.CommunityID, "comunidad", 0, "community ID")
	cmd.Flags().Int64Var(&filter.UnitID, "unidad", 0, "unit ID")
	cmd.Flags().StringVar(&filter.State, "estado", "", "state: pendiente, pagado, vencido, apelada, anulada")
	cmd.Flags().IntVar(&params.Page, "page", pagination.DefaultPage, "page number")
	cmd.Flags().IntVar(&params.Limit, "limit", pagination.DefaultLimit, "rows per page")
	return cmd
}

func newFinesCreateCommand(application *app) *cobra.Command {
	var input fine.CreateInput

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Issue a fine to a unit",
		RunE: wired(application, func(cmd *cobra.Command, args []string) error {
			if _, err := application.currentUser(cmd.Context()); err != nil {
				return err
			}

			created, err := application.fines.Create(cmd.Context(), input)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Fine %d issued to unit %d for %s.\n", created.ID, created.UnitID, formatCLP(created.Amount))
			return nil
		}),
	}

	cmd.Flags().Int64Var(&input.CommunityID, "comunidad", 0, "community ID")
	cmd.Flags().Int64Var(&input.UnitID, "unidad", 0, "unit ID")
	cmd.Flags().StringVar(&input.Reason, "motivo", "", "reason")
	cmd.Flags().StringVar(&input.Description, "descripcion", "", "longer description")
	cmd.Flags().Int64Var(&input.Amount, "monto", 0, "amount in pesos")
	cmd.Flags().StringVar(&input.IssuedOn, "fecha", time.Now().Format(validate.DateLayout), "issue date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&input.DueOn, "vence", "", "due date (YYYY-MM-DD)")
	return cmd
}

func newFinesEditCommand(application *app) *cobra.Command {
	var (
		reason, description, dueOn string
		amount                     int64
	)

	cmd := &cobra.Command{
		Use:   "edit <fine-id>",
		Short: "Change the reason, amount or due date of a fine",
		Long:  `Change a fine. Only the flags you pass are sent; the rest is left as is.`,
		Args:  cobra.ExactArgs(1),
		RunE: wired(application, func(cmd *cobra.Command, args []string) error {
			id, err := parseID("fine-id", args[0])
			if err != nil {
				return err
			}

			var input fine.UpdateInput
			flags := cmd.Flags()
			if flags.Changed("motivo") {
				input.Reason = pointer.To(reason)
			}
			if flags.Changed("descripcion") {
				input.Description = pointer.To(description)
			}
			if flags.Changed("monto") {
				input.Amount = pointer.To(amount)
			}
			if flags.Changed("vence") {
				input.DueOn = pointer.To(dueOn)
			}

			if _, err := application.currentUser(cmd.Context()); err != nil {
				return err
			}

			updated, err := application.fines.Update(cmd.Context(), id, input)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Fine %d updated: %s, %s.\n", updated.ID, updated.Reason, formatCLP(updated.Amount))
			return nil
		}),
	}

	cmd.Flags().StringVar(&reason, "motivo", "", "new reason")
	cmd.Flags().StringVar(&description, "descripcion", "", "new description")
	cmd.Flags().Int64Var(&amount, "monto", 0, "new amount in pesos")
	cmd.Flags().StringVar(&dueOn, "vence", "", "new due date (YYYY-MM-DD)")
	return cmd
}

func newFinesDeleteCommand(application *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <fine-id>",
		Short: "Delete a fine",
		Args:  cobra.ExactArgs(1),
		RunE: wired(application, func(cmd *cobra.Command, args []string) error {
			id, err := parseID("fine-id", args[0])
			if err != nil {
				return err
			}

			if _, err := application.currentUser(cmd.Context()); err != nil {
				return err
			}

			if err := application.fines.Delete(cmd.Context(), id); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Fine %d deleted.\n", id)
			return nil
		}),
	}
}

func newFinesPayCommand(application *app) *cobra.Command {
	var payment fine.Payment

	cmd := &cobra.Command{
		Use:   "pay <fine-id>",
		Short: "Register a payment against a fine",
		Long: `Register money received against a fine, e.g. cash at the front desk.

Defaults to today's date and the full outstanding balance.`,
		Args: cobra.ExactArgs(1),
		RunE: wired(application, func(cmd *cobra.Command, args []string) error {
			id, err := parseID("fine-id", args[0])
			if err != nil {
				return err
			}

			if _, err := application.currentUser(cmd.Context()); err != nil {
				return err
			}

			if payment.Amount == 0 {
				current, err := application.fines.Get(cmd.Context(), id)
				if err != nil {
					return err
				}
				payment.Amount = current.Balance()
			}

			updated, err := application.fines.RegisterPayment(cmd.Context(), id, payment)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Payment of %s registered. Fine %d is now %s, balance %s.\n",
				formatCLP(payment.Amount), updated.ID, updated.State, formatCLP(updated.Balance()))
			return nil
		}),
	}

	cmd.Flags().Int64Var(&payment.Amount, "monto", 0, "amount in pesos (default: outstanding balance)")
	cmd.Flags().StringVar(&payment.Method, "medio", "efectivo", "payment method: "+strings.Join(fine.PaymentMethods, ", "))
	cmd.Flags().StringVar(&payment.PaidOn, "fecha", time.Now().Format(validate.DateLayout), "payment date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&payment.Reference, "referencia", "", "receipt or transfer reference")
	return cmd
}

func newFinesAppealCommand(application *app) *cobra.Command {
	var input appeal.CreateInput

	cmd := &cobra.Command{
		Use:   "appeal <fine-id>",
		Short: "Appeal a pending or overdue fine",
		Args:  cobra.ExactArgs(1),
		RunE: wired(application, func(cmd *cobra.Command, args []string) error {
			id, err := parseID("fine-id", args[0])
			if err != nil {
				return err
			}
			input.FineID = id

			if _, err := application.currentUser(cmd.Context()); err != nil {
				return err
			}

			created, err := application.appeals.Create(cmd.Context(), input)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Appeal %d filed for fine %d (%s).\n", created.ID, created.FineID, created.State)
			return nil
		}),
	}

	cmd.Flags().StringVar(&input.Reason, "motivo", "", "reason for the appeal")
	return cmd
}
