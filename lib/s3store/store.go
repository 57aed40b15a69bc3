// Copyright 2026 The Nightjar Authors
// SPDX-License-Identifier: Apache-2.0

package s3store

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/groboclown/nightjar-mesh-sub000/lib/atomicfile"
	"github.com/groboclown/nightjar-mesh-sub000/lib/clock"
	"github.com/groboclown/nightjar-mesh-sub000/lib/document"
	"github.com/groboclown/nightjar-mesh-sub000/lib/extension"
)

// Options tunes a Store. Zero values take the defaults.
type Options struct {
	Clock  clock.Clock
	Logger *slog.Logger
	// NewVersion generates revision versions. Defaults to [NewVersion].
	NewVersion func() (string, error)
}

// Store commits and fetches versioned documents in one bucket.
type Store struct {
	objects    ObjectStore
	config     Config
	clock      clock.Clock
	logger     *slog.Logger
	newVersion func() (string, error)
}

// NewStore creates a Store over objects.
func NewStore(objects ObjectStore, config Config, options Options) *Store {
	store := &Store{
		objects:    objects,
		config:     config,
		clock:      options.Clock,
		logger:     options.Logger,
		newVersion: options.NewVersion,
	}
	if store.clock == nil {
		store.clock = clock.Real()
	}
	if store.logger == nil {
		store.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if store.newVersion == nil {
		store.newVersion = NewVersion
	}
	if store.config.GraceWindow <= 0 {
		store.config.GraceWindow = DefaultGraceWindow
	}
	if store.config.MaxDocumentBytes <= 0 {
		store.config.MaxDocumentBytes = DefaultMaxDocumentSizeMB * megabyte
	}
	return store
}

// Run executes one data-store request and returns the protocol exit
// code. A non-nil error is fatal and the code is meaningless.
func (s *Store) Run(ctx context.Context, request extension.DataStoreRequest) (extension.ExitCode, error) {
	switch request.Action {
	case extension.Fetch:
		return s.Fetch(ctx, request.Activity, request.ActionFile, request.PreviousVersion)
	case extension.Commit:
		return s.Commit(ctx, request.Activity, request.ActionFile)
	}
	return 0, &extension.ArgumentError{Code: extension.ExitBadAction, Message: fmt.Sprintf("unsupported action %q", request.Action)}
}

// Commit stores sourceFile as a new revision of name. The .data object
// is uploaded before the .meta object; a transient failure on either
// returns Retry and leaves cleanup to a later commit.
func (s *Store) Commit(ctx context.Context, name document.Name, sourceFile string) (extension.ExitCode, error) {
	logger := s.logger.With("document", string(name))

	source, err := os.ReadFile(sourceFile)
	if err != nil {
		return 0, fmt.Errorf("reading source document: %w", err)
	}
	doc, err := document.Parse(source)
	if err != nil {
		return 0, &document.ValidationError{Document: name, Err: err}
	}
	metadata, versioned, err := CreateDocumentMetadata(string(name), doc, s.clock.Now(), s.newVersion)
	if err != nil {
		return 0, err
	}
	data, err := versioned.Marshal()
	if err != nil {
		return 0, fmt.Errorf("encoding document: %w", err)
	}
	if int64(len(data)) > s.config.MaxDocumentBytes {
		return 0, &TooLargeError{Size: len(data), Limit: s.config.MaxDocumentBytes}
	}
	meta, err := json.Marshal(metadata)
	if err != nil {
		return 0, fmt.Errorf("encoding metadata: %w", err)
	}

	existing, code, err := s.list(ctx, name)
	if err != nil || code != extension.Success {
		return code, err
	}
	_, previousVersion, _ := LatestComplete(existing)

	version := metadata.DocumentVersion
	for _, upload := range []struct {
		key  string
		body []byte
	}{
		{DataKey(s.config.BasePath, name, version), data},
		{MetaKey(s.config.BasePath, name, version), meta},
	} {
		logger.Info("uploading", "key", upload.key, "bytes", len(upload.body))
		if err := s.objects.Upload(ctx, upload.key, upload.body); err != nil {
			if RequiresRetry(err) {
				logger.Warn("upload needs a retry", "key", upload.key, "error", err)
				return extension.Retry, nil
			}
			return 0, fmt.Errorf("uploading %s: %w", upload.key, err)
		}
	}

	preserve := map[string]bool{version: true}
	if previousVersion != "" {
		preserve[previousVersion] = true
	}
	if err := s.deleteKeys(ctx, SelectGarbage(existing, preserve, s.clock.Now(), s.config.GraceWindow)); err != nil {
		return 0, err
	}
	logger.Info("committed document", "version", version)
	return extension.Success, nil
}

// Fetch writes the active revision of name to outputFile. It returns
// NoChange without downloading when the active version equals
// previousVersion, and Retry when no complete revision exists or the
// revision vanished before it could be downloaded.
func (s *Store) Fetch(ctx context.Context, name document.Name, outputFile, previousVersion string) (extension.ExitCode, error) {
	logger := s.logger.With("document", string(name))

	entries, code, err := s.list(ctx, name)
	if err != nil || code != extension.Success {
		return code, err
	}
	latest, version, ok := LatestComplete(entries)
	if !ok {
		logger.Info("no complete document revision yet")
		return extension.Retry, nil
	}
	if previous := strings.TrimSpace(previousVersion); previous != "" && version == previous {
		return extension.NoChange, nil
	}

	data, err := s.objects.Download(ctx, latest.Key)
	if err != nil {
		if IsNotFound(err) || RequiresRetry(err) {
			logger.Warn("download needs a retry", "key", latest.Key, "error", err)
			return extension.Retry, nil
		}
		return 0, fmt.Errorf("downloading %s: %w", latest.Key, err)
	}
	if err := atomicfile.Write(outputFile, data, 0o644); err != nil {
		return 0, fmt.Errorf("writing fetched document: %w", err)
	}
	logger.Info("fetched document", "version", version)
	return extension.Success, nil
}

// list returns the document's entries within the size limit.
func (s *Store) list(ctx context.Context, name document.Name) ([]Entry, extension.ExitCode, error) {
	prefix := DocumentPrefix(s.config.BasePath, name)
	entries, err := s.objects.List(ctx, prefix)
	if err != nil {
		if RequiresRetry(err) {
			s.logger.Warn("listing needs a retry", "prefix", prefix, "error", err)
			return nil, extension.Retry, nil
		}
		return nil, 0, fmt.Errorf("listing %s: %w", prefix, err)
	}
	kept := entries[:0]
	for _, entry := range entries {
		if entry.Size <= s.config.MaxDocumentBytes {
			kept = append(kept, entry)
		}
	}
	return kept, extension.Success, nil
}

// deleteKeys removes keys in batches. Cleanup is best effort: missing
// keys and transient failures are logged and skipped.
func (s *Store) deleteKeys(ctx context.Context, keys []string) error {
	for _, batch := range batches(keys, maxDeleteBatch) {
		err := s.objects.Delete(ctx, batch)
		switch {
		case err == nil:
			s.logger.Debug("deleted old revisions", "keys", batch)
		case IsNotFound(err):
			s.logger.Info("some old revisions were already gone", "keys", batch)
		case RequiresRetry(err):
			s.logger.Warn("could not delete old revisions, leaving them for a later commit", "keys", batch, "error", err)
		default:
			return fmt.Errorf("deleting old revisions: %w", err)
		}
	}
	return nil
}
