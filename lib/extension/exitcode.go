// Copyright 2026 The Nightjar Authors
// SPDX-License-Identifier: Apache-2.0

package extension

import "strconv"

// ExitCode is the process exit status of an extension point.
type ExitCode int

const (
	Success  ExitCode = 0
	NoChange ExitCode = 30
	Retry    ExitCode = 31
)

// Exit codes used by extension-point executables for local failures
// that are not part of the fetch/commit outcome. All of them are fatal
// to the caller.
const (
	ExitInvalidDocument ExitCode = 1
	ExitBadAPIVersion   ExitCode = 4
	ExitBadActivity     ExitCode = 5
	ExitBadAction       ExitCode = 6
)

// NeedsRetry is the retry predicate shared by every runner.
func NeedsRetry(code ExitCode) bool {
	return code == Retry
}

// Fatal reports whether the code is outside the success/no-change/retry
// taxonomy.
func (c ExitCode) Fatal() bool {
	switch c {
	case Success, NoChange, Retry:
		return false
	}
	return true
}

func (c ExitCode) String() string {
	switch c {
	case Success:
		return "success"
	case NoChange:
		return "no-change"
	case Retry:
		return "retry"
	}
	return "fatal(" + strconv.Itoa(int(c)) + ")"
}
