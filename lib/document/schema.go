// Copyright 2026 The Nightjar Authors
// SPDX-License-Identifier: Apache-2.0

package document

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"
)

//go:embed schemas/*.yaml
var schemaFiles embed.FS

var (
	compileOnce     sync.Once
	compiledSchemas map[Name]*jsonschema.Schema
	compileError    error
)

// schemaURL is the resource identifier under which a document's schema
// is registered with the compiler.
func schemaURL(name Name) string {
	return "https://nightjar-mesh.local/schemas/" + string(name) + ".json"
}

// compileSchemas loads every embedded schema. Schemas are YAML on disk
// and are converted to JSON before compilation so that the compiler
// sees only JSON-native value types.
func compileSchemas() (map[Name]*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	for _, name := range Names() {
		raw, err := schemaFiles.ReadFile("schemas/" + string(name) + ".yaml")
		if err != nil {
			return nil, fmt.Errorf("reading %s schema: %w", name, err)
		}
		var parsed any
		if err := yaml.Unmarshal(raw, &parsed); err != nil {
			return nil, fmt.Errorf("parsing %s schema: %w", name, err)
		}
		asJSON, err := json.Marshal(parsed)
		if err != nil {
			return nil, fmt.Errorf("converting %s schema to JSON: %w", name, err)
		}
		resource, err := jsonschema.UnmarshalJSON(bytes.NewReader(asJSON))
		if err != nil {
			return nil, fmt.Errorf("decoding %s schema: %w", name, err)
		}
		if err := compiler.AddResource(schemaURL(name), resource); err != nil {
			return nil, fmt.Errorf("registering %s schema: %w", name, err)
		}
	}

	schemas := make(map[Name]*jsonschema.Schema, len(Names()))
	for _, name := range Names() {
		schema, err := compiler.Compile(schemaURL(name))
		if err != nil {
			return nil, fmt.Errorf("compiling %s schema: %w", name, err)
		}
		schemas[name] = schema
	}
	return schemas, nil
}

func schemaFor(name Name) (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiledSchemas, compileError = compileSchemas()
	})
	if compileError != nil {
		return nil, compileError
	}
	schema, ok := compiledSchemas[name]
	if !ok {
		return nil, fmt.Errorf("no schema for document %q", name)
	}
	return schema, nil
}

// SchemaValidator returns the Validator for a named document. The
// document is re-encoded to JSON before validation, so values built in
// Go ([]map[string]any, plain ints) validate the same as decoded ones.
func SchemaValidator(name Name) Validator {
	return func(doc Document) (Document, error) {
		schema, err := schemaFor(name)
		if err != nil {
			return nil, err
		}
		encoded, err := doc.Marshal()
		if err != nil {
			return nil, &ValidationError{Document: name, Err: err}
		}
		instance, err := jsonschema.UnmarshalJSON(bytes.NewReader(encoded))
		if err != nil {
			return nil, &ValidationError{Document: name, Err: err}
		}
		if err := schema.Validate(instance); err != nil {
			return nil, &ValidationError{Document: name, Err: err}
		}
		return Parse(encoded)
	}
}

// DefaultValidators returns the schema validator for every known
// document name.
func DefaultValidators() map[Name]Validator {
	validators := make(map[Name]Validator, len(Names()))
	for _, name := range Names() {
		validators[name] = SchemaValidator(name)
	}
	return validators
}
