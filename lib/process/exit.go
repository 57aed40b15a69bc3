// Copyright 2026 The Nightjar Authors
// SPDX-License-Identifier: Apache-2.0

package process

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// ExitCode returns the exit status for err: 0 for nil, the value of
// the first ExitCode() method in the chain, otherwise 1.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var coder interface{ ExitCode() int }
	if errors.As(err, &coder) {
		return coder.ExitCode()
	}
	return 1
}

// Report writes "error: err" to w and returns the exit status for err.
func Report(w io.Writer, err error) int {
	fmt.Fprintf(w, "error: %v\n", err)
	return ExitCode(err)
}

// Fatal writes "error: err" to stderr and exits with [ExitCode] of err.
// Use it in main() for errors from run() where the structured logger
// may not be initialized.
func Fatal(err error) {
	os.Exit(Report(os.Stderr, err))
}
