// Copyright 2026 The Nightjar Authors
// SPDX-License-Identifier: Apache-2.0

package extension

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/groboclown/nightjar-mesh-sub000/lib/atomicfile"
	"github.com/groboclown/nightjar-mesh-sub000/lib/document"
)

// CachedDocument decides, after each extension-point run, whether the
// freshly written update file can be trusted or whether the last good
// cached copy must be served instead.
//
// Three files are involved. The extension point writes the update file
// on fetch and reads the commit file on commit. The cached file is only
// ever replaced by renaming a validated update file over it, so a crash
// at any point leaves either the old or the new cached copy intact.
type CachedDocument struct {
	source   string
	name     document.Name
	validate document.Validator
	logger   *slog.Logger
	metrics  *Metrics

	cachedFile string
	updateFile string
	commitFile string

	lastVersion string
}

// CachedDocumentConfig describes the files a CachedDocument owns.
type CachedDocumentConfig struct {
	// Source names the extension point in errors and logs.
	Source   string
	Document document.Name

	CachedFile string
	UpdateFile string
	CommitFile string

	Validator document.Validator

	// Clean removes any leftover files when the document is created.
	Clean bool

	Logger  *slog.Logger
	Metrics *Metrics
}

// NewCachedDocument makes the file paths absolute, creates the cache
// directory and, when requested, removes stale files.
func NewCachedDocument(config CachedDocumentConfig) (*CachedDocument, error) {
	if config.Validator == nil {
		return nil, fmt.Errorf("cached document %s: no validator", config.Document)
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	paths := []*string{&config.CachedFile, &config.UpdateFile, &config.CommitFile}
	for _, path := range paths {
		absolute, err := filepath.Abs(*path)
		if err != nil {
			return nil, fmt.Errorf("cached document %s: %w", config.Document, err)
		}
		*path = absolute
	}
	if err := os.MkdirAll(filepath.Dir(config.CachedFile), 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	cached := &CachedDocument{
		source:     config.Source,
		name:       config.Document,
		validate:   config.Validator,
		logger:     logger.With("document", string(config.Document)),
		metrics:    config.Metrics,
		cachedFile: config.CachedFile,
		updateFile: config.UpdateFile,
		commitFile: config.CommitFile,
	}
	if config.Clean {
		for _, path := range []string{cached.cachedFile, cached.updateFile, cached.commitFile} {
			if err := atomicfile.Remove(path); err != nil {
				return nil, fmt.Errorf("cleaning cached document: %w", err)
			}
		}
	}
	return cached, nil
}

// Name returns the document name.
func (c *CachedDocument) Name() document.Name { return c.name }

// LastVersion is the version of the cached copy, or "" when the next
// fetch must download unconditionally.
func (c *CachedDocument) LastVersion() string { return c.lastVersion }

// UpdateFile is the path passed as --action-file on fetch.
func (c *CachedDocument) UpdateFile() string { return c.updateFile }

// CommitFile is the path passed as --action-file on commit.
func (c *CachedDocument) CommitFile() string { return c.commitFile }

// CachedFile is the last good copy.
func (c *CachedDocument) CachedFile() string { return c.cachedFile }

// AfterFetch consumes the final exit code of a fetch.
func (c *CachedDocument) AfterFetch(code ExitCode) (document.Document, error) {
	fallback := code != Success && code != NoChange
	if atomicfile.Exists(c.updateFile) {
		if code == Success {
			doc, err := c.loadUpdate()
			if err == nil {
				if err := atomicfile.Move(c.updateFile, c.cachedFile); err != nil {
					return nil, fmt.Errorf("replacing cached %s: %w", c.name, err)
				}
				c.lastVersion, _ = doc.Version()
				return doc, nil
			}
			c.logger.Warn("fetched document is not valid, using cached copy",
				"file", c.updateFile, "error", err)
			fallback = true
		}
		if err := atomicfile.Remove(c.updateFile); err != nil {
			return nil, fmt.Errorf("discarding fetched %s: %w", c.name, err)
		}
		if code != NoChange {
			c.lastVersion = ""
		}
	}

	if !atomicfile.Exists(c.cachedFile) {
		if err := checkRunError(c.source, "fetch "+string(c.name), code, false); err != nil {
			return nil, err
		}
		// The extension point claimed success without producing a file.
		return nil, &RuntimeError{Source: c.source, Action: "create file " + string(c.name), Code: code}
	}

	data, err := os.ReadFile(c.cachedFile)
	if err != nil {
		return nil, fmt.Errorf("reading cached %s: %w", c.name, err)
	}
	doc, err := document.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("cached %s is corrupt: %w", c.name, err)
	}
	if fallback {
		c.logger.Warn("fetch failed, using cached copy", "exit_code", int(code))
		c.metrics.observeFallback(string(c.name))
	}
	return doc, nil
}

func (c *CachedDocument) loadUpdate() (document.Document, error) {
	data, err := os.ReadFile(c.updateFile)
	if err != nil {
		return nil, err
	}
	doc, err := document.Parse(data)
	if err != nil {
		return nil, err
	}
	if !doc.HasVersion() {
		return nil, fmt.Errorf("missing string %q field", document.VersionKey)
	}
	return c.validate(doc)
}

// BeforeCommit validates doc and writes it to the commit file. A
// validation failure is returned as-is and nothing is written.
func (c *CachedDocument) BeforeCommit(doc document.Document) error {
	validated, err := c.validate(doc)
	if err != nil {
		return err
	}
	data, err := validated.Marshal()
	if err != nil {
		return fmt.Errorf("encoding %s: %w", c.name, err)
	}
	if err := atomicfile.Write(c.commitFile, data, 0o600); err != nil {
		return fmt.Errorf("writing commit file: %w", err)
	}
	return nil
}

// AfterCommit consumes the final exit code of a commit. On success the
// cached copy is dropped, since the backend may have rewritten the
// document, and the next fetch goes over the wire.
func (c *CachedDocument) AfterCommit(code ExitCode) error {
	if err := checkRunError(c.source, "commit "+string(c.name), code, true); err != nil {
		return err
	}
	c.lastVersion = ""
	if err := atomicfile.Remove(c.cachedFile); err != nil {
		return fmt.Errorf("dropping cached %s: %w", c.name, err)
	}
	return atomicfile.Remove(c.commitFile)
}
