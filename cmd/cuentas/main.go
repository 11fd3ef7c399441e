// Copyright (c) 2026 Cuentas Claras. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command cuentas is the command-line front end of the Cuentas Claras client.
//
// # Startup Sequence
//
//  1. Load configuration from environment variables.
//  2. Initialize the structured logger (stderr, so command output stays clean).
//  3. Open the session persister (file, redis or memory) and restore the session.
//  4. Load the capability table (defaults, YAML file, Postgres).
//  5. Build the request pipeline and the resource services.
//  6. Run the command.
//
// Steps 3 to 5 run lazily: commands that do not talk to the backend
// (policy migrate, serve) never open a session.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/cuentasclaras/cuentasclaras/internal/platform/apperr"
)

// Exit codes.
const (
	exitOK              = 0
	exitError           = 1
	exitUnauthenticated = 2
	exitForbidden       = 3
	exitInvalid         = 4
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	root, application := newRootCommand()
	err := root.ExecuteContext(ctx)
	application.close()
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, describeError(err))
	}
	os.Exit(exitCode(err))
}

// exitCode maps the error taxonomy onto process exit codes.
func exitCode(err error) int {
	if err == nil {
		return exitOK
	}

	appError := apperr.As(err)
	if appError == nil {
		return exitError
	}

	switch appError.Code {
	case apperr.CodeUnauthenticated, apperr.CodeRefreshFailed, apperr.CodeAuthExpired:
		return exitUnauthenticated
	case apperr.CodeForbidden:
		return exitForbidden
	case apperr.CodeValidationFailed:
		return exitInvalid
	default:
		return exitError
	}
}

// describeError renders an error for the terminal, with field details.
func describeError(err error) string {
	var appError *apperr.AppError
	if !errors.As(err, &appError) {
		return "error: " + err.Error()
	}

	message := fmt.Sprintf("error: %s (%s)", appError.Message, appError.Code)
	for _, detail := range appError.Details {
		message += fmt.Sprintf("\n  - %s: %s", detail.Field, detail.Message)
	}

	switch appError.Code {
	case apperr.CodeRefreshFailed, apperr.CodeUnauthenticated:
		message += "\nRun `cuentas login` to sign in."
	}
	return message
}
