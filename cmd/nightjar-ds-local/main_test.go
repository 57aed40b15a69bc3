// Copyright 2026 The Nightjar Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/groboclown/nightjar-mesh-sub000/lib/document"
	"github.com/groboclown/nightjar-mesh-sub000/lib/extension"
	"github.com/groboclown/nightjar-mesh-sub000/lib/localstore"
	"github.com/groboclown/nightjar-mesh-sub000/lib/process"
)

func testEnvironment(t *testing.T) (map[string]string, func(string) (string, bool)) {
	t.Helper()
	dir := t.TempDir()
	env := map[string]string{
		localstore.EnvTemplateFile:      filepath.Join(dir, "templates.json"),
		localstore.EnvConfigurationFile: filepath.Join(dir, "configurations.json"),
	}
	return env, func(name string) (string, bool) {
		value, ok := env[name]
		return value, ok
	}
}

func TestRun_CommitFetchNoChange(t *testing.T) {
	_, lookup := testEnvironment(t)
	ctx := context.Background()
	work := t.TempDir()

	source := filepath.Join(work, "source.json")
	if err := os.WriteFile(source, []byte(`{"schema-version": "v1", "gateway-configurations": []}`), 0o644); err != nil {
		t.Fatal(err)
	}
	commit := extension.DataStoreRequest{Activity: document.Configuration, Action: extension.Commit, ActionFile: source}
	if code, err := run(ctx, commit.Args(), lookup, io.Discard); err != nil || code != extension.Success {
		t.Fatalf("commit = (%v, %v), want success", code, err)
	}

	output := filepath.Join(work, "fetched.json")
	fetch := extension.DataStoreRequest{Activity: document.Configuration, Action: extension.Fetch, ActionFile: output}
	if code, err := run(ctx, fetch.Args(), lookup, io.Discard); err != nil || code != extension.Success {
		t.Fatalf("fetch = (%v, %v), want success", code, err)
	}
	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatal(err)
	}
	doc, err := document.Parse(data)
	if err != nil {
		t.Fatalf("fetched document: %v", err)
	}
	version, ok := doc.Version()
	if !ok || version == "" {
		t.Fatalf("fetched document has no version")
	}

	fetch.PreviousVersion = version
	if code, err := run(ctx, fetch.Args(), lookup, io.Discard); err != nil || code != extension.NoChange {
		t.Errorf("repeat fetch = (%v, %v), want no-change", code, err)
	}
}

func TestRun_ProtocolErrors(t *testing.T) {
	_, lookup := testEnvironment(t)
	tests := []struct {
		name string
		args []string
		want int
	}{
		{"bad api version", []string{"--activity=templates", "--action=fetch", "--action-file=/x", "--api-version=9"}, 4},
		{"bad activity", []string{"--activity=routes", "--action=fetch", "--action-file=/x", "--api-version=1"}, 5},
		{"bad action", []string{"--activity=templates", "--action=delete", "--action-file=/x", "--api-version=1"}, 6},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := run(context.Background(), test.args, lookup, io.Discard)
			if got := process.ExitCode(err); got != test.want {
				t.Errorf("exit code = %d (%v), want %d", got, err, test.want)
			}
		})
	}
}

func TestRun_FetchBeforeCommitRetries(t *testing.T) {
	_, lookup := testEnvironment(t)
	fetch := extension.DataStoreRequest{Activity: document.Templates, Action: extension.Fetch, ActionFile: filepath.Join(t.TempDir(), "out.json")}
	if code, err := run(context.Background(), fetch.Args(), lookup, io.Discard); err != nil || code != extension.Retry {
		t.Errorf("fetch = (%v, %v), want retry", code, err)
	}
}
