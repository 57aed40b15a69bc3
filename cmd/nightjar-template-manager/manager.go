// Copyright 2026 The Nightjar Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/tidwall/jsonc"

	"github.com/groboclown/nightjar-mesh-sub000/lib/atomicfile"
	"github.com/groboclown/nightjar-mesh-sub000/lib/document"
	"github.com/groboclown/nightjar-mesh-sub000/lib/extension"
)

// Exit statuses reported for usage problems.
const (
	exitUsage                = 1
	exitNoDocument           = 1
	exitPushTemplatePurpose  = 3
	exitPushTemplateFile     = 4
	exitPushTemplateCategory = 5
	exitPullTemplatePurpose  = 6
	exitPullTemplateCategory = 7
	exitTemplateNotFound     = 8
	exitPushFile             = 9
)

const defaultDisplay = "<default>"

// exitError is a failure with a specific process exit status.
type exitError struct {
	code    int
	message string
}

func (e *exitError) Error() string { return e.message }

func (e *exitError) ExitCode() int { return e.code }

func failf(code int, format string, args ...any) error {
	return &exitError{code: code, message: fmt.Sprintf(format, args...)}
}

// manager runs one template-manager command. Every data-store call
// uses a fresh runner in its own directory under tempDir.
type manager struct {
	invoker extension.Invoker
	tempDir string
	options extension.RunnerOptions
	stdin   io.Reader
	stdout  io.Writer
	logger  *slog.Logger

	// indent pretty-prints documents pulled to stdout.
	indent bool
}

func (m *manager) push(ctx context.Context, name document.Name, file string) error {
	data, err := m.readInput(file)
	if err != nil {
		return failf(exitPushFile, "cannot read %q: %v", file, err)
	}
	doc, err := document.Parse(jsonc.ToJSON(data))
	if err != nil {
		return &document.ValidationError{Document: name, Err: err}
	}
	return m.commit(ctx, name, doc)
}

func (m *manager) pull(ctx context.Context, name document.Name, file string) error {
	doc, err := m.fetch(ctx, name)
	if err != nil {
		return err
	}
	if doc == nil {
		return failf(exitNoDocument, "no existing %s document; nothing pulled", name)
	}
	data, err := doc.Marshal()
	if err != nil {
		return fmt.Errorf("encoding %s: %w", name, err)
	}
	if m.indent && isStdout(file) {
		var pretty bytes.Buffer
		if err := json.Indent(&pretty, data, "", "  "); err != nil {
			return fmt.Errorf("formatting %s: %w", name, err)
		}
		data = pretty.Bytes()
	}
	return m.writeOutput(file, data)
}

func (m *manager) pushTemplate(ctx context.Context, categoryName string, key document.TemplateKey, file string) error {
	if key.Purpose == "" {
		return failf(exitPushTemplatePurpose, "pushing a template requires --purpose")
	}
	source, err := m.readInput(file)
	if err != nil {
		return failf(exitPushTemplateFile, "cannot read %q: %v", file, err)
	}
	category, err := document.ParseCategory(categoryName)
	if err != nil {
		return failf(exitPushTemplateCategory, "%v", err)
	}

	templates, err := m.fetchTemplates(ctx)
	if err != nil {
		return err
	}
	if err := document.SetTemplate(templates, category, key, string(source)); err != nil {
		return err
	}
	return m.commit(ctx, document.Templates, templates)
}

func (m *manager) pullTemplate(ctx context.Context, categoryName string, key document.TemplateKey, file string) error {
	if key.Purpose == "" {
		return failf(exitPullTemplatePurpose, "pulling a template requires --purpose")
	}
	category, err := document.ParseCategory(categoryName)
	if err != nil {
		return failf(exitPullTemplateCategory, "%v", err)
	}

	templates, err := m.fetchTemplates(ctx)
	if err != nil {
		return err
	}
	template, ok := document.GetTemplate(templates, category, key)
	if !ok {
		return failf(exitTemplateNotFound, "no such template inside the templates document")
	}
	return m.writeOutput(file, []byte(template))
}

func (m *manager) list(ctx context.Context, categoryName, file string) error {
	categories := []document.Category{document.Gateway, document.Service}
	if categoryName != "" {
		category, err := document.ParseCategory(categoryName)
		if err != nil {
			return failf(exitUsage, "%v", err)
		}
		categories = []document.Category{category}
	}

	templates, err := m.fetch(ctx, document.Templates)
	if err != nil || templates == nil {
		return err
	}

	var output strings.Builder
	for _, category := range categories {
		entries, err := document.ListTemplates(templates, category)
		if err != nil {
			return err
		}
		if category == document.Gateway {
			output.WriteString("Gateway-Templates:\n")
		} else {
			output.WriteString("Service-Templates:\n")
		}
		for _, entry := range entries {
			fmt.Fprintf(&output, "  - namespace: %s\n", display(entry.Key.Namespace))
			if category == document.Service {
				fmt.Fprintf(&output, "    service:   %s\n", display(entry.Key.Service))
				fmt.Fprintf(&output, "    color:     %s\n", display(entry.Key.Color))
			}
			fmt.Fprintf(&output, "    purpose:   %s\n", entry.Key.Purpose)
		}
	}
	return m.writeOutput(file, []byte(output.String()))
}

// fetch pulls a document with a single attempt. A data store that has
// no copy yet yields a nil document.
func (m *manager) fetch(ctx context.Context, name document.Name) (document.Document, error) {
	options := m.options
	options.MaxRetries = 1
	var doc document.Document
	err := m.withRunner(options, func(runner *extension.DataStoreRunner) error {
		var err error
		doc, err = runner.FetchDocument(ctx, name)
		return err
	})
	var tooMany *extension.TooManyRetriesError
	if errors.As(err, &tooMany) {
		m.logger.Warn("no existing document", "document", string(name))
		return nil, nil
	}
	return doc, err
}

// fetchTemplates returns the current templates document, or an empty
// one when the data store has none yet.
func (m *manager) fetchTemplates(ctx context.Context) (document.Document, error) {
	templates, err := m.fetch(ctx, document.Templates)
	if err != nil {
		return nil, err
	}
	if templates == nil {
		return document.NewTemplates(), nil
	}
	return templates, nil
}

func (m *manager) commit(ctx context.Context, name document.Name, doc document.Document) error {
	return m.withRunner(m.options, func(runner *extension.DataStoreRunner) error {
		return runner.CommitDocument(ctx, name, doc)
	})
}

func (m *manager) withRunner(options extension.RunnerOptions, fn func(*extension.DataStoreRunner) error) error {
	dir, err := os.MkdirTemp(m.tempDir, "data-store-")
	if err != nil {
		return fmt.Errorf("creating runner directory: %w", err)
	}
	defer func() { _ = os.RemoveAll(dir) }()

	runner, err := extension.NewDataStoreRunner(m.invoker, dir, options)
	if err != nil {
		return err
	}
	return fn(runner)
}

func (m *manager) readInput(file string) ([]byte, error) {
	if file == "-" {
		return io.ReadAll(m.stdin)
	}
	if file == "" {
		return nil, errors.New("no file given")
	}
	return os.ReadFile(file)
}

func (m *manager) writeOutput(file string, data []byte) error {
	if isStdout(file) {
		if _, err := m.stdout.Write(data); err != nil {
			return err
		}
		if len(data) > 0 && data[len(data)-1] != '\n' {
			_, err := io.WriteString(m.stdout, "\n")
			return err
		}
		return nil
	}
	return atomicfile.Write(file, data, 0o644)
}

func isStdout(file string) bool {
	return file == "" || file == "-"
}

func display(value string) string {
	if value == "" {
		return defaultDisplay
	}
	return value
}
