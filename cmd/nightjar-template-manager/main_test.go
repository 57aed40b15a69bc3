// Copyright 2026 The Nightjar Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/groboclown/nightjar-mesh-sub000/lib/config"
	"github.com/groboclown/nightjar-mesh-sub000/lib/process"
	nightjartest "github.com/groboclown/nightjar-mesh-sub000/lib/testutil"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func runManager(t *testing.T, env map[string]string, args ...string) (string, error) {
	t.Helper()
	var stdout bytes.Buffer
	lookup := func(name string) (string, bool) {
		value, ok := env[name]
		return value, ok
	}
	err := run(context.Background(), args, lookup, streams{
		stdin:  strings.NewReader(""),
		stdout: &stdout,
		stderr: io.Discard,
	})
	return stdout.String(), err
}

func TestRun_PushThroughExtensionPoint(t *testing.T) {
	fake := nightjartest.NewFakeExtensionPoint(t, 0)
	work := t.TempDir()
	source := filepath.Join(work, "templates.json")
	content := `{"schema-version": "v1", "document-version": "", "gateway-templates": [], "service-templates": []}`
	if err := os.WriteFile(source, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	metricsFile := filepath.Join(work, "metrics.prom")

	env := map[string]string{
		config.EnvDataStoreExec: fake.Command[0],
		config.EnvTempDir:       filepath.Join(work, "temp"),
	}
	if _, err := runManager(t, env, "--metrics-file", metricsFile, "push", "templates", source); err != nil {
		t.Fatalf("push failed: %v", err)
	}

	invocations := fake.Invocations()
	if len(invocations) != 1 {
		t.Fatalf("extension point ran %d times, want 1", len(invocations))
	}
	for _, want := range []string{"--activity=templates", "--action=commit", "--api-version=1"} {
		if !slices.Contains(invocations[0], want) {
			t.Errorf("arguments %v missing %s", invocations[0], want)
		}
	}
	if input, ok := fake.Input(1); !ok || !strings.Contains(input, `"gateway-templates"`) {
		t.Errorf("extension point saw commit file %q", input)
	}

	metrics, err := os.ReadFile(metricsFile)
	if err != nil {
		t.Fatalf("metrics file not written: %v", err)
	}
	if !strings.Contains(string(metrics), `nightjar_extension_point_invocations_total{action="commit templates",exit_code="0",source="data_store"} 1`) {
		t.Errorf("metrics file missing the commit invocation:\n%s", metrics)
	}
}

func TestRun_PullRetryMeansNoDocument(t *testing.T) {
	fake := nightjartest.NewFakeExtensionPoint(t, 31)
	env := map[string]string{
		config.EnvDataStoreExec: fake.Command[0],
		config.EnvTempDir:       t.TempDir(),
	}
	_, err := runManager(t, env, "pull", "configuration", "-")
	if got := process.ExitCode(err); got != exitNoDocument {
		t.Errorf("exit code = %d (%v), want %d", got, err, exitNoDocument)
	}
	if fake.Calls() != 1 {
		t.Errorf("extension point ran %d times, want a single attempt", fake.Calls())
	}
}

func TestRun_UsageErrors(t *testing.T) {
	fake := nightjartest.NewFakeExtensionPoint(t, 0)
	tests := []struct {
		name      string
		dataStore string
		args      []string
		want      int
	}{
		{"no command", fake.Command[0], nil, exitUsage},
		{"unknown command", fake.Command[0], []string{"publish"}, exitUsage},
		{"missing arguments", fake.Command[0], []string{"push", "templates"}, exitUsage},
		{"unknown document", fake.Command[0], []string{"pull", "routes", "-"}, exitUsage},
		{"no data store", "", []string{"pull", "templates", "-"}, 2},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			env := map[string]string{
				config.EnvTempDir:       t.TempDir(),
				config.EnvDataStoreExec: test.dataStore,
			}
			_, err := runManager(t, env, test.args...)
			if got := process.ExitCode(err); got != test.want {
				t.Errorf("exit code = %d (%v), want %d", got, err, test.want)
			}
		})
	}
}

func TestRun_Version(t *testing.T) {
	stdout, err := runManager(t, nil, "--version")
	if err != nil {
		t.Fatalf("--version failed: %v", err)
	}
	if !strings.HasPrefix(stdout, "nightjar-template-manager ") {
		t.Errorf("--version printed %q", stdout)
	}
}
