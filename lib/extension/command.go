// Copyright 2026 The Nightjar Authors
// SPDX-License-Identifier: Apache-2.0

package extension

import (
	"os/exec"

	"github.com/google/shlex"
)

// ResolveCommand splits a shell-quoted command line and resolves its
// executable through PATH. source names where the command line came
// from and is used in errors.
func ResolveCommand(source, commandLine string) ([]string, error) {
	if commandLine == "" {
		return nil, &ConfigurationError{Source: source, Problem: "no command defined"}
	}
	words, err := shlex.Split(commandLine)
	if err != nil {
		return nil, &ConfigurationError{Source: source, Problem: "cannot split command line", Err: err}
	}
	if len(words) == 0 {
		return nil, &ConfigurationError{Source: source, Problem: "no command defined"}
	}
	executable, err := exec.LookPath(words[0])
	if err != nil {
		return nil, &ConfigurationError{Source: source, Problem: "no such executable: " + words[0], Err: err}
	}
	return append([]string{executable}, words[1:]...), nil
}

// CommandFromEnvironment resolves the command line held by the
// environment variable name, falling back to defaultValue when the
// variable is unset or empty. lookup is usually os.LookupEnv.
func CommandFromEnvironment(lookup func(string) (string, bool), name, defaultValue string) ([]string, error) {
	value, ok := lookup(name)
	if !ok || value == "" {
		value = defaultValue
	}
	return ResolveCommand(name, value)
}
