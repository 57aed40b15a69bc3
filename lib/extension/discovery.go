// Copyright 2026 The Nightjar Authors
// SPDX-License-Identifier: Apache-2.0

package extension

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/groboclown/nightjar-mesh-sub000/lib/atomicfile"
	"github.com/groboclown/nightjar-mesh-sub000/lib/document"
)

const discoveryMapSource = "discovery_map"

// DiscoveryMapRunner reads the mesh through the discovery-map extension
// point. Discovery data goes stale too quickly to cache, so every call
// runs the extension point and nothing survives between calls.
type DiscoveryMapRunner struct {
	invoker    Invoker
	options    RunnerOptions
	outputFile string
}

// NewDiscoveryMapRunner creates a runner that stages output in workDir.
func NewDiscoveryMapRunner(invoker Invoker, workDir string, options RunnerOptions) (*DiscoveryMapRunner, error) {
	outputFile, err := filepath.Abs(filepath.Join(workDir, "mesh-fetching.json"))
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(outputFile), 0o755); err != nil {
		return nil, fmt.Errorf("creating discovery map directory: %w", err)
	}
	if err := atomicfile.Remove(outputFile); err != nil {
		return nil, err
	}
	return &DiscoveryMapRunner{
		invoker:    invoker,
		options:    options.withDefaults(),
		outputFile: outputFile,
	}, nil
}

// GetMesh runs the extension point and returns the validated mesh.
func (r *DiscoveryMapRunner) GetMesh(ctx context.Context) (document.Document, error) {
	const action = "fetch mesh"
	request := DiscoveryMapRequest{OutputFile: r.outputFile}
	code, err := runWithBackoff(ctx, r.invoker, request.Args(), discoveryMapSource, action, r.options)
	if err != nil {
		return nil, err
	}
	defer func() { _ = atomicfile.Remove(r.outputFile) }()

	if err := checkRunError(discoveryMapSource, action, code, false); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(r.outputFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &RuntimeError{Source: discoveryMapSource, Action: "create file mesh", Code: code}
		}
		return nil, err
	}
	mesh, err := document.Parse(data)
	if err != nil {
		return nil, &document.ValidationError{Document: document.DiscoveryMap, Err: err}
	}
	return r.options.Validators[document.DiscoveryMap](mesh)
}
