// Copyright 2026 The Nightjar Authors
// SPDX-License-Identifier: Apache-2.0

package extension

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/groboclown/nightjar-mesh-sub000/lib/backoff"
	"github.com/groboclown/nightjar-mesh-sub000/lib/clock"
	"github.com/groboclown/nightjar-mesh-sub000/lib/document"
)

// Runner defaults, shared by both runners.
const (
	DefaultMaxRetries = 5
	DefaultMaxWait    = 60 * time.Second
)

const dataStoreSource = "data_store"

// RunnerOptions tunes a runner. Zero values take the defaults.
type RunnerOptions struct {
	MaxRetries int
	MaxWait    time.Duration

	// Validators overrides the schema validator per document.
	Validators map[document.Name]document.Validator

	Clock   clock.Clock
	Logger  *slog.Logger
	Metrics *Metrics
}

func (o RunnerOptions) withDefaults() RunnerOptions {
	if o.MaxRetries == 0 {
		o.MaxRetries = DefaultMaxRetries
	}
	if o.MaxWait == 0 {
		o.MaxWait = DefaultMaxWait
	}
	if o.Clock == nil {
		o.Clock = clock.Real()
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	validators := document.DefaultValidators()
	for name, validator := range o.Validators {
		validators[name] = validator
	}
	o.Validators = validators
	return o
}

// DataStoreRunner fetches and commits documents through the data-store
// extension point.
type DataStoreRunner struct {
	invoker  Invoker
	options  RunnerOptions
	cacheDir string
	cached   map[document.Name]*CachedDocument
}

// NewDataStoreRunner creates a runner whose cache files live in
// cacheDir.
func NewDataStoreRunner(invoker Invoker, cacheDir string, options RunnerOptions) (*DataStoreRunner, error) {
	runner := &DataStoreRunner{
		invoker:  invoker,
		options:  options.withDefaults(),
		cacheDir: cacheDir,
		cached:   make(map[document.Name]*CachedDocument),
	}
	for _, name := range document.Names() {
		cached, err := NewCachedDocument(CachedDocumentConfig{
			Source:     dataStoreSource,
			Document:   name,
			CachedFile: filepath.Join(cacheDir, string(name)+"-cached.json"),
			UpdateFile: filepath.Join(cacheDir, string(name)+"-fetching.json"),
			CommitFile: filepath.Join(cacheDir, string(name)+"-pending.json"),
			Validator:  runner.options.Validators[name],
			Logger:     runner.options.Logger,
			Metrics:    runner.options.Metrics,
		})
		if err != nil {
			return nil, err
		}
		runner.cached[name] = cached
	}
	return runner, nil
}

// Cached returns the cache state for a document.
func (r *DataStoreRunner) Cached(name document.Name) (*CachedDocument, error) {
	cached, ok := r.cached[name]
	if !ok {
		return nil, fmt.Errorf("unknown document %q", name)
	}
	return cached, nil
}

// FetchDocument returns the newest valid copy of a document, falling
// back to the local cache when the extension point fails or produces
// an invalid document.
func (r *DataStoreRunner) FetchDocument(ctx context.Context, name document.Name) (document.Document, error) {
	cached, err := r.Cached(name)
	if err != nil {
		return nil, err
	}
	code, err := r.run(ctx, DataStoreRequest{
		Activity:        name,
		Action:          Fetch,
		PreviousVersion: cached.LastVersion(),
		ActionFile:      cached.UpdateFile(),
	})
	if err != nil {
		return nil, err
	}
	return cached.AfterFetch(code)
}

// CommitDocument validates doc and stores it through the extension
// point. The backend assigns the new document-version.
func (r *DataStoreRunner) CommitDocument(ctx context.Context, name document.Name, doc document.Document) error {
	cached, err := r.Cached(name)
	if err != nil {
		return err
	}
	if err := cached.BeforeCommit(doc); err != nil {
		return err
	}
	code, err := r.run(ctx, DataStoreRequest{
		Activity:        name,
		Action:          Commit,
		PreviousVersion: cached.LastVersion(),
		ActionFile:      cached.CommitFile(),
	})
	if err != nil {
		return err
	}
	return cached.AfterCommit(code)
}

func (r *DataStoreRunner) run(ctx context.Context, request DataStoreRequest) (ExitCode, error) {
	action := string(request.Action) + " " + string(request.Activity)
	return runWithBackoff(ctx, r.invoker, request.Args(), dataStoreSource, action, r.options)
}

// runWithBackoff invokes the extension point under the retry policy.
// An invocation error stops the loop and is returned. Whether the
// extension point ran at all is decided by counting calls, since any
// exit code, negative ones included, can come back from a process.
func runWithBackoff(ctx context.Context, invoker Invoker, args []string, source, action string, options RunnerOptions) (ExitCode, error) {
	var invokeErr error
	attempts := 0
	code := backoff.Run(
		func() ExitCode {
			attempts++
			if err := ctx.Err(); err != nil {
				invokeErr = err
				return backoff.NotRun
			}
			code, err := invoker.Invoke(ctx, args...)
			if err != nil {
				invokeErr = err
				return backoff.NotRun
			}
			options.Metrics.observeInvocation(source, action, code)
			options.Logger.Debug("extension point finished",
				"source", source, "action", action, "exit_code", int(code))
			return code
		},
		NeedsRetry,
		options.MaxRetries,
		options.MaxWait,
		options.Clock,
	)
	if invokeErr != nil {
		return code, invokeErr
	}
	if attempts == 0 {
		return code, &ConfigurationError{Source: source, Problem: fmt.Sprintf("max retries %d allows no attempt", options.MaxRetries)}
	}
	return code, nil
}
