// Copyright 2026 The Nightjar Authors
// SPDX-License-Identifier: Apache-2.0

package process

import (
	"io"
	"log/slog"
	"os"

	"golang.org/x/term"
)

// EnvDebug turns on debug logging when set to a non-empty value.
const EnvDebug = "NIGHTJAR_DEBUG"

// NewLogger returns the logger every Nightjar binary writes to, usually
// stderr. Extension points must keep stdout free for their caller.
//
// When w is a terminal the records are human-readable text. Otherwise,
// as when a parent process captures an extension point's stderr, they
// are JSON.
func NewLogger(w io.Writer, lookup func(string) (string, bool)) *slog.Logger {
	options := &slog.HandlerOptions{Level: slog.LevelInfo}
	if value, ok := lookup(EnvDebug); ok && value != "" {
		options.Level = slog.LevelDebug
	}
	if IsTerminal(w) {
		return slog.New(slog.NewTextHandler(w, options))
	}
	return slog.New(slog.NewJSONHandler(w, options))
}

// IsTerminal reports whether w is a file attached to a terminal.
func IsTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	return ok && term.IsTerminal(int(file.Fd()))
}
