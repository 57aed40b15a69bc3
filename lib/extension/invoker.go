// Copyright 2026 The Nightjar Authors
// SPDX-License-Identifier: Apache-2.0

package extension

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"syscall"
)

// Invoker runs one extension-point invocation and reports its exit
// code. An error means the process could not be run at all.
type Invoker interface {
	Invoke(ctx context.Context, args ...string) (ExitCode, error)
}

// Process is an Invoker that runs a fixed command line followed by the
// per-call arguments.
type Process struct {
	// Command is the executable followed by its fixed arguments.
	Command []string

	// Output receives the child's stdout and stderr. Extension points
	// write only human-readable logging there. Defaults to os.Stderr
	// so that a parent using stdout for data is not corrupted.
	Output io.Writer

	// Env, when non-nil, replaces the inherited environment.
	Env []string

	Logger *slog.Logger
}

// NewProcess returns a Process for an already resolved command line.
func NewProcess(command []string, logger *slog.Logger) *Process {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Process{Command: command, Output: os.Stderr, Logger: logger}
}

// Invoke runs the command synchronously. A non-zero exit is reported
// through the ExitCode, not the error.
func (p *Process) Invoke(ctx context.Context, args ...string) (ExitCode, error) {
	if len(p.Command) == 0 {
		return 0, &ConfigurationError{Source: "extension point", Problem: "empty command"}
	}

	argv := append(append([]string{}, p.Command[1:]...), args...)
	child := exec.CommandContext(ctx, p.Command[0], argv...)
	output := p.Output
	if output == nil {
		output = os.Stderr
	}
	child.Stdout = output
	child.Stderr = output
	child.Env = p.Env

	p.logger().Debug("invoking extension point", "command", p.Command[0], "args", argv)
	err := child.Run()
	if err == nil {
		return Success, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		return exitStatus(exitErr), nil
	}
	return 0, &ConfigurationError{Source: p.Command[0], Problem: "cannot run extension point", Err: err}
}

// exitStatus reports a child killed by a signal the way a shell does,
// as 128 plus the signal number, so the code is never negative.
func exitStatus(exitErr *exec.ExitError) ExitCode {
	if status, ok := exitErr.Sys().(syscall.WaitStatus); ok && status.Signaled() {
		return ExitCode(128 + int(status.Signal()))
	}
	if code := exitErr.ExitCode(); code >= 0 {
		return ExitCode(code)
	}
	return ExitCode(128)
}

func (p *Process) logger() *slog.Logger {
	if p.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return p.Logger
}
