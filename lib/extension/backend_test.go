// Copyright 2026 The Nightjar Authors
// SPDX-License-Identifier: Apache-2.0

package extension

import (
	"context"
	"errors"
	"testing"

	"github.com/groboclown/nightjar-mesh-sub000/lib/document"
	"github.com/groboclown/nightjar-mesh-sub000/lib/process"
)

type recordingBackend struct {
	requests []DataStoreRequest
	code     ExitCode
	err      error
}

func (b *recordingBackend) Run(_ context.Context, request DataStoreRequest) (ExitCode, error) {
	b.requests = append(b.requests, request)
	return b.code, b.err
}

func TestServeDataStore(t *testing.T) {
	backend := &recordingBackend{code: NoChange}
	request := DataStoreRequest{
		Activity:        document.Configuration,
		Action:          Fetch,
		PreviousVersion: "v3",
		ActionFile:      "/tmp/out.json",
	}
	code, err := ServeDataStore(context.Background(), backend, request.Args())
	if err != nil || code != NoChange {
		t.Fatalf("ServeDataStore = (%v, %v), want no-change", code, err)
	}
	if len(backend.requests) != 1 || backend.requests[0] != request {
		t.Errorf("backend saw %+v, want %+v", backend.requests, request)
	}
}

func TestServeDataStore_BadArguments(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want ExitCode
	}{
		{"unknown flag", []string{"--bogus"}, ExitBadAction},
		{"api version", []string{"--api-version=2"}, ExitBadAPIVersion},
		{"activity", []string{"--api-version=1", "--activity=nope"}, ExitBadActivity},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			backend := &recordingBackend{}
			_, err := ServeDataStore(context.Background(), backend, test.args)
			if got := process.ExitCode(err); got != int(test.want) {
				t.Errorf("exit code = %d (%v), want %d", got, err, test.want)
			}
			if len(backend.requests) != 0 {
				t.Errorf("backend ran on bad arguments")
			}
		})
	}
}

func TestInProcess_MapsErrorsToExitCodes(t *testing.T) {
	args := DataStoreRequest{Activity: document.Templates, Action: Commit, ActionFile: "/x"}.Args()

	invalid := &InProcess{Backend: &recordingBackend{err: &document.ValidationError{Document: document.Templates, Err: errors.New("bad")}}}
	if code, err := invalid.Invoke(context.Background(), args...); err != nil || code != 1 {
		t.Errorf("validation failure = (%v, %v), want 1", code, err)
	}

	plain := &InProcess{Backend: &recordingBackend{err: errors.New("disk full")}}
	if code, _ := plain.Invoke(context.Background(), args...); code != 1 {
		t.Errorf("plain error = %v, want 1", code)
	}

	ok := &InProcess{Backend: &recordingBackend{code: Success}}
	if code, err := ok.Invoke(context.Background(), args...); err != nil || code != Success {
		t.Errorf("success = (%v, %v)", code, err)
	}
}

func TestParseDiscoveryMapArgs(t *testing.T) {
	request, err := ParseDiscoveryMapArgs(DiscoveryMapRequest{OutputFile: "/tmp/mesh.json"}.Args())
	if err != nil {
		t.Fatalf("ParseDiscoveryMapArgs failed: %v", err)
	}
	if request.OutputFile != "/tmp/mesh.json" {
		t.Errorf("OutputFile = %q, want /tmp/mesh.json", request.OutputFile)
	}

	_, err = ParseDiscoveryMapArgs([]string{"--output-file=/tmp/x", "--api-version=0"})
	if got := process.ExitCode(err); got != int(ExitBadAPIVersion) {
		t.Errorf("bad api version exit code = %d, want %d", got, ExitBadAPIVersion)
	}
	_, err = ParseDiscoveryMapArgs([]string{"--api-version=1"})
	if got := process.ExitCode(err); got != int(ExitBadAction) {
		t.Errorf("missing output exit code = %d, want %d", got, ExitBadAction)
	}
}
