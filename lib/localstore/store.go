// Copyright 2026 The Nightjar Authors
// SPDX-License-Identifier: Apache-2.0

package localstore

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/tidwall/jsonc"

	"github.com/groboclown/nightjar-mesh-sub000/lib/atomicfile"
	"github.com/groboclown/nightjar-mesh-sub000/lib/clock"
	"github.com/groboclown/nightjar-mesh-sub000/lib/document"
	"github.com/groboclown/nightjar-mesh-sub000/lib/extension"
)

// Environment variables read by [ConfigFromEnvironment].
const (
	EnvTemplateFile      = "NJ_DSLOCAL_TEMPLATE_FILE"
	EnvConfigurationFile = "NJ_DSLOCAL_CONFIGURATION_FILE"
	EnvDiscoveryMapFile  = "NJ_DSLOCAL_DISCOVERY_MAP_FILE"
)

const defaultDirectory = "/usr/share/nightjar/data-store"

// Config maps each document to the file holding it.
type Config struct {
	Files map[document.Name]string
}

// DefaultConfig stores documents under /usr/share/nightjar/data-store.
func DefaultConfig() Config {
	return Config{Files: map[document.Name]string{
		document.Templates:     filepath.Join(defaultDirectory, "templates.json"),
		document.Configuration: filepath.Join(defaultDirectory, "configurations.json"),
		document.DiscoveryMap:  filepath.Join(defaultDirectory, "discovery-map.json"),
	}}
}

// ConfigFromEnvironment overlays environment settings on base.
func ConfigFromEnvironment(base Config, lookup func(string) (string, bool)) Config {
	files := make(map[document.Name]string, len(base.Files))
	for name, path := range base.Files {
		files[name] = path
	}
	for name, variable := range map[document.Name]string{
		document.Templates:     EnvTemplateFile,
		document.Configuration: EnvConfigurationFile,
		document.DiscoveryMap:  EnvDiscoveryMapFile,
	} {
		if value, ok := lookup(variable); ok && value != "" {
			files[name] = value
		}
	}
	return Config{Files: files}
}

// Store is a data-store backend holding one file per document.
type Store struct {
	config Config
	clock  clock.Clock
	logger *slog.Logger
}

// NewStore creates a Store. A nil clock or logger takes the default.
func NewStore(config Config, clk clock.Clock, logger *slog.Logger) *Store {
	if clk == nil {
		clk = clock.Real()
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Store{config: config, clock: clk, logger: logger}
}

func (s *Store) Run(ctx context.Context, request extension.DataStoreRequest) (extension.ExitCode, error) {
	path, ok := s.config.Files[request.Activity]
	if !ok || path == "" {
		return 0, &extension.ArgumentError{
			Code:    extension.ExitBadActivity,
			Message: fmt.Sprintf("no local file configured for %q", request.Activity),
		}
	}
	switch request.Action {
	case extension.Fetch:
		return s.fetch(request.Activity, path, request.ActionFile, request.PreviousVersion)
	case extension.Commit:
		return s.commit(request.Activity, path, request.ActionFile)
	}
	return 0, &extension.ArgumentError{Code: extension.ExitBadAction, Message: fmt.Sprintf("unsupported action %q", request.Action)}
}

func (s *Store) commit(name document.Name, path, sourceFile string) (extension.ExitCode, error) {
	doc, err := readDocument(name, sourceFile)
	if err != nil {
		return 0, err
	}
	version := s.clock.Now().UTC().Format(time.RFC3339Nano)
	data, err := doc.WithVersion(version).Marshal()
	if err != nil {
		return 0, fmt.Errorf("encoding %s: %w", name, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, fmt.Errorf("creating store directory: %w", err)
	}
	if err := atomicfile.Write(path, data, 0o644); err != nil {
		return 0, fmt.Errorf("storing %s: %w", name, err)
	}
	s.logger.Info("committed document", "document", string(name), "version", version)
	return extension.Success, nil
}

func (s *Store) fetch(name document.Name, path, outputFile, previousVersion string) (extension.ExitCode, error) {
	if !atomicfile.Exists(path) {
		s.logger.Info("no stored document yet", "document", string(name), "path", path)
		return extension.Retry, nil
	}
	doc, err := readDocument(name, path)
	if err != nil {
		return 0, err
	}
	if version, _ := doc.Version(); previousVersion != "" && version == previousVersion {
		return extension.NoChange, nil
	}
	data, err := doc.Marshal()
	if err != nil {
		return 0, fmt.Errorf("encoding %s: %w", name, err)
	}
	if err := atomicfile.Write(outputFile, data, 0o644); err != nil {
		return 0, fmt.Errorf("writing fetched %s: %w", name, err)
	}
	return extension.Success, nil
}

// readDocument loads a JSON document that may contain comments.
func readDocument(name document.Name, path string) (document.Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &document.ValidationError{Document: name, Err: err}
		}
		return nil, err
	}
	doc, err := document.Parse(jsonc.ToJSON(raw))
	if err != nil {
		return nil, &document.ValidationError{Document: name, Err: fmt.Errorf("%s: %w", path, err)}
	}
	return doc, nil
}
