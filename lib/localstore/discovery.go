// Copyright 2026 The Nightjar Authors
// SPDX-License-Identifier: Apache-2.0

package localstore

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/groboclown/nightjar-mesh-sub000/lib/atomicfile"
	"github.com/groboclown/nightjar-mesh-sub000/lib/document"
	"github.com/groboclown/nightjar-mesh-sub000/lib/extension"
)

// Environment variables read by [FinderFromEnvironment].
const (
	EnvBaseDir   = "NJ_DMLOCAL_BASE_DIR"
	EnvNamespace = "NJ_NAMESPACE"
	EnvService   = "NJ_SERVICE"
	EnvColor     = "NJ_COLOR"
)

const (
	DefaultBaseDir = "/usr/share/nightjar/discovery-map"
	defaultName    = "default"
)

// DefaultPatterns are tried in order, most specific first.
var DefaultPatterns = []string{
	"{namespace}/{service}/{color}.json",
	"{namespace}/{service}.json",
	"{namespace}.json",
	"discovery-map.json",
}

// Finder locates a discovery map on disk.
type Finder struct {
	BaseDir   string
	Namespace string
	Service   string
	Color     string
	// Patterns are relative to BaseDir and may use {namespace},
	// {service} and {color}.
	Patterns []string
	Logger   *slog.Logger
}

// FinderFromEnvironment builds a Finder from NJ_DMLOCAL_BASE_DIR,
// NJ_NAMESPACE, NJ_SERVICE and NJ_COLOR. baseDir applies when
// NJ_DMLOCAL_BASE_DIR is unset; empty means [DefaultBaseDir].
func FinderFromEnvironment(baseDir string, lookup func(string) (string, bool)) *Finder {
	if baseDir == "" {
		baseDir = DefaultBaseDir
	}
	get := func(name, fallback string) string {
		if value, ok := lookup(name); ok && value != "" {
			return value
		}
		return fallback
	}
	return &Finder{
		BaseDir:   get(EnvBaseDir, baseDir),
		Namespace: get(EnvNamespace, defaultName),
		Service:   get(EnvService, defaultName),
		Color:     get(EnvColor, defaultName),
		Patterns:  DefaultPatterns,
	}
}

// Candidates returns the paths Find tries, in order.
func (f *Finder) Candidates() []string {
	replacer := strings.NewReplacer(
		"{namespace}", f.Namespace,
		"{service}", f.Service,
		"{color}", f.Color,
	)
	candidates := make([]string, len(f.Patterns))
	for i, pattern := range f.Patterns {
		candidates[i] = filepath.Join(f.BaseDir, replacer.Replace(pattern))
	}
	return candidates
}

// Find writes the first existing candidate to outputFile as plain JSON.
// It returns Retry when no candidate exists yet.
func (f *Finder) Find(_ context.Context, outputFile string) (extension.ExitCode, error) {
	for _, candidate := range f.Candidates() {
		if !atomicfile.Exists(candidate) {
			continue
		}
		doc, err := readDocument(document.DiscoveryMap, candidate)
		if err != nil {
			return 0, err
		}
		data, err := doc.Marshal()
		if err != nil {
			return 0, fmt.Errorf("encoding discovery map: %w", err)
		}
		if err := atomicfile.Write(outputFile, data, 0o644); err != nil {
			return 0, fmt.Errorf("writing discovery map: %w", err)
		}
		return extension.Success, nil
	}
	f.logger().Info("no discovery map file found",
		"namespace", f.Namespace, "service", f.Service, "color", f.Color)
	return extension.Retry, nil
}

func (f *Finder) logger() *slog.Logger {
	if f.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return f.Logger
}
