// Copyright 2026 The Nightjar Authors
// SPDX-License-Identifier: Apache-2.0

package extension

import "fmt"

// ConfigurationError reports a local setup problem, such as an
// extension-point executable that does not exist. It is never retried.
type ConfigurationError struct {
	// Source names the setting at fault, usually an environment
	// variable or configuration key.
	Source  string
	Problem string
	Err     error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: incorrect configuration: %s: %v", e.Source, e.Problem, e.Err)
	}
	return fmt.Sprintf("%s: incorrect configuration: %s", e.Source, e.Problem)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

func (e *ConfigurationError) ExitCode() int { return 2 }

// RuntimeError reports an extension point that exited with a code
// outside the protocol, or that reported success without producing a
// usable document when no cached copy exists.
type RuntimeError struct {
	Source string
	Action string
	Code   ExitCode
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("%s: failed running %s: exited with %d", e.Source, e.Action, int(e.Code))
}

func (e *RuntimeError) ExitCode() int { return 1 }

// TooManyRetriesError reports that the backoff budget ran out while the
// extension point kept asking for a retry.
type TooManyRetriesError struct {
	Source string
	Action string
}

func (e *TooManyRetriesError) Error() string {
	return fmt.Sprintf("%s: retried %s too many times", e.Source, e.Action)
}

func (e *TooManyRetriesError) ExitCode() int { return int(Retry) }

// checkRunError converts a final exit code into the error taxonomy.
// Success, and NoChange when allowed, produce nil.
func checkRunError(source, action string, code ExitCode, allowNoChange bool) error {
	switch {
	case code == Success:
		return nil
	case code == NoChange && allowNoChange:
		return nil
	case code == Retry:
		return &TooManyRetriesError{Source: source, Action: action}
	}
	return &RuntimeError{Source: source, Action: action, Code: code}
}
