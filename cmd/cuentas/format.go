// Copyright (c) 2026 Cuentas Claras. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/cuentasclaras/cuentasclaras/internal/access"
	"github.com/cuentasclaras/cuentasclaras/internal/platform/apperr"
	"github.com/cuentasclaras/cuentasclaras/pkg/pagination"
	"github.com/cuentasclaras/cuentasclaras/pkg/slice"
)

// formatCLP renders an amount in Chilean pesos, e.g. 1234567 -> "$1.234.567".
func formatCLP(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}

	digits := strconv.FormatInt(amount, 10)
	var grouped strings.Builder
	for i, digit := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			grouped.WriteByte('.')
		}
		grouped.WriteRune(digit)
	}
	return sign + "$" + grouped.String()
}

func joinRoles(roles []access.Role) string {
	if len(roles) == 0 {
		return "-"
	}
	return strings.Join(slice.Map(roles, func(role access.Role) string { return string(role) }), ", ")
}

// parseID parses a positional identifier argument.
func parseID(field, raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.ValidationError("Invalid identifier", apperr.FieldError{
			Field:   field,
			Message: "Must be a positive identifier",
		})
	}
	return id, nil
}

func newTable(out io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
}

func pageFooter(meta pagination.Meta) string {
	if meta.TotalPages == 0 {
		return ""
	}
	footer := fmt.Sprintf("Page %d of %d (%d total)", meta.Page, meta.TotalPages, meta.Total)
	if meta.HasNext() {
		footer += fmt.Sprintf(", use --page %d for more", meta.Page+1)
	}
	return footer
}
