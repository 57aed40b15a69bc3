// Copyright 2026 The Nightjar Authors
// SPDX-License-Identifier: Apache-2.0

package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
)

// VersionKey is the top-level field holding a document's version.
const VersionKey = "document-version"

// Name identifies one of the documents stored behind an extension
// point. It doubles as the --activity argument of the data-store
// protocol.
type Name string

const (
	Templates     Name = "templates"
	DiscoveryMap  Name = "discovery-map"
	Configuration Name = "configuration"
)

// Names returns every known document name.
func Names() []Name {
	return []Name{Templates, DiscoveryMap, Configuration}
}

// Valid reports whether n is a known document name.
func (n Name) Valid() bool {
	switch n {
	case Templates, DiscoveryMap, Configuration:
		return true
	}
	return false
}

// ParseName converts a protocol activity string into a Name.
func ParseName(value string) (Name, error) {
	name := Name(value)
	if !name.Valid() {
		return "", fmt.Errorf("unknown document %q (want one of %v)", value, Names())
	}
	return name, nil
}

// Document is a decoded JSON object.
type Document map[string]any

// ErrNotObject is returned by Parse when the JSON value is not an
// object.
var ErrNotObject = errors.New("document is not a JSON object")

// Parse decodes data as a single JSON object. Numbers decode as
// json.Number.
func Parse(data []byte) (Document, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	var value any
	if err := decoder.Decode(&value); err != nil {
		return nil, fmt.Errorf("decoding document: %w", err)
	}
	if _, err := decoder.Token(); err != io.EOF {
		return nil, errors.New("decoding document: trailing data after JSON value")
	}
	object, ok := value.(map[string]any)
	if !ok {
		return nil, ErrNotObject
	}
	return Document(object), nil
}

// Version returns the document-version field. ok is false when the
// field is missing or is not a string.
func (d Document) Version() (version string, ok bool) {
	raw, present := d[VersionKey]
	if !present {
		return "", false
	}
	version, ok = raw.(string)
	return version, ok
}

// HasVersion reports whether the document carries a string
// document-version field.
func (d Document) HasVersion() bool {
	_, ok := d.Version()
	return ok
}

// WithVersion returns a shallow copy of d with document-version set.
func (d Document) WithVersion(version string) Document {
	clone := maps.Clone(d)
	if clone == nil {
		clone = Document{}
	}
	clone[VersionKey] = version
	return clone
}

// Marshal encodes the document as compact JSON with sorted keys.
func (d Document) Marshal() ([]byte, error) {
	return json.Marshal(map[string]any(d))
}

// Validator checks a document and returns its validated form.
type Validator func(Document) (Document, error)

// ValidationError reports a document that failed schema validation.
type ValidationError struct {
	Document Name
	Err      error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s document failed validation: %v", e.Document, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// ExitCode maps a validation failure to process exit code 1.
func (e *ValidationError) ExitCode() int { return 1 }
