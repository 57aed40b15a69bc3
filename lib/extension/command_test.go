// Copyright 2026 The Nightjar Authors
// SPDX-License-Identifier: Apache-2.0

package extension

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestResolveCommand(t *testing.T) {
	command, err := ResolveCommand("TEST_EXEC", `sh -c 'exit 3' "two words"`)
	if err != nil {
		t.Fatalf("ResolveCommand failed: %v", err)
	}
	if !filepath.IsAbs(command[0]) {
		t.Errorf("executable %q is not absolute", command[0])
	}
	want := []string{"-c", "exit 3", "two words"}
	if len(command) != len(want)+1 {
		t.Fatalf("command = %q, want sh followed by %q", command, want)
	}
	for i, arg := range want {
		if command[i+1] != arg {
			t.Errorf("command[%d] = %q, want %q", i+1, command[i+1], arg)
		}
	}
}

func TestResolveCommand_Errors(t *testing.T) {
	tests := []struct {
		name        string
		commandLine string
	}{
		{"empty", ""},
		{"blank", "   "},
		{"missing executable", "nightjar-no-such-extension-point --flag"},
		{"unterminated quote", `sh -c 'exit`},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := ResolveCommand("TEST_EXEC", test.commandLine)
			var configErr *ConfigurationError
			if !errors.As(err, &configErr) {
				t.Fatalf("got %v, want *ConfigurationError", err)
			}
			if configErr.Source != "TEST_EXEC" {
				t.Errorf("Source = %q, want TEST_EXEC", configErr.Source)
			}
			if configErr.ExitCode() != 2 {
				t.Errorf("ExitCode() = %d, want 2", configErr.ExitCode())
			}
		})
	}
}

func TestCommandFromEnvironment(t *testing.T) {
	environment := map[string]string{"SET": "sh -x", "EMPTY": ""}
	lookup := func(name string) (string, bool) {
		value, ok := environment[name]
		return value, ok
	}

	command, err := CommandFromEnvironment(lookup, "SET", "false")
	if err != nil {
		t.Fatalf("SET: %v", err)
	}
	if filepath.Base(command[0]) != "sh" || len(command) != 2 || command[1] != "-x" {
		t.Errorf("SET: command = %q, want [.../sh -x]", command)
	}

	command, err = CommandFromEnvironment(lookup, "EMPTY", "sh")
	if err != nil {
		t.Fatalf("EMPTY: %v", err)
	}
	if filepath.Base(command[0]) != "sh" {
		t.Errorf("EMPTY: command = %q, want default sh", command)
	}

	if _, err := CommandFromEnvironment(lookup, "UNSET", ""); err == nil {
		t.Error("UNSET without default should fail")
	}
}
