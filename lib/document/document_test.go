// Copyright 2026 The Nightjar Authors
// SPDX-License-Identifier: Apache-2.0

package document

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestParseName(t *testing.T) {
	for _, name := range Names() {
		got, err := ParseName(string(name))
		if err != nil {
			t.Errorf("ParseName(%q) failed: %v", name, err)
		}
		if got != name {
			t.Errorf("ParseName(%q) = %q", name, got)
		}
	}

	if _, err := ParseName("mesh"); err == nil {
		t.Error("ParseName(\"mesh\") should fail")
	}
}

func TestParse(t *testing.T) {
	doc, err := Parse([]byte(`{"document-version": "abc", "count": 12345678901234567890}`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	version, ok := doc.Version()
	if !ok || version != "abc" {
		t.Errorf("Version() = %q, %v, want abc, true", version, ok)
	}
	number, ok := doc["count"].(json.Number)
	if !ok {
		t.Fatalf("count decoded as %T, want json.Number", doc["count"])
	}
	if number.String() != "12345678901234567890" {
		t.Errorf("count = %s, want 12345678901234567890", number)
	}
}

func TestParse_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"not json", "not json"},
		{"array", "[1, 2]"},
		{"string", `"text"`},
		{"trailing data", `{"a": 1} {"b": 2}`},
		{"empty", ""},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if _, err := Parse([]byte(test.input)); err == nil {
				t.Errorf("Parse(%q) should fail", test.input)
			}
		})
	}
}

func TestVersion_NonString(t *testing.T) {
	doc := Document{VersionKey: 12}
	if _, ok := doc.Version(); ok {
		t.Error("numeric document-version should not count as a version")
	}
	if (Document{}).HasVersion() {
		t.Error("empty document should not have a version")
	}
}

func TestWithVersion(t *testing.T) {
	original := Document{VersionKey: "one", "x": "y"}
	updated := original.WithVersion("two")

	if version, _ := updated.Version(); version != "two" {
		t.Errorf("updated version = %q, want two", version)
	}
	if version, _ := original.Version(); version != "one" {
		t.Errorf("original version changed to %q", version)
	}
	if updated["x"] != "y" {
		t.Errorf("updated lost payload field: %v", updated)
	}

	var nilDocument Document
	if version, _ := nilDocument.WithVersion("v").Version(); version != "v" {
		t.Errorf("WithVersion on nil document = %q, want v", version)
	}
}

func TestMarshal_SortedKeys(t *testing.T) {
	data, err := Document{"b": 1, "a": 2, VersionKey: ""}.Marshal()
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	want := `{"a":2,"b":1,"document-version":""}`
	if string(data) != want {
		t.Errorf("Marshal = %s, want %s", data, want)
	}
}

func validTemplates() Document {
	return Document{
		"schema-version":   "v1",
		"document-version": "1",
		"gateway-templates": []any{
			map[string]any{"namespace": nil, "purpose": "lds.yaml", "template": "{}"},
		},
		"service-templates": []any{},
	}
}

func TestSchemaValidator_Templates(t *testing.T) {
	validate := SchemaValidator(Templates)

	got, err := validate(validTemplates())
	if err != nil {
		t.Fatalf("valid templates rejected: %v", err)
	}
	if version, _ := got.Version(); version != "1" {
		t.Errorf("validated version = %q, want 1", version)
	}

	missing := validTemplates()
	delete(missing, "service-templates")
	_, err = validate(missing)
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("missing service-templates: got %v, want *ValidationError", err)
	}
	if validationErr.Document != Templates {
		t.Errorf("ValidationError.Document = %q, want %q", validationErr.Document, Templates)
	}
	if validationErr.ExitCode() != 1 {
		t.Errorf("ValidationError.ExitCode() = %d, want 1", validationErr.ExitCode())
	}

	wrongSchema := validTemplates()
	wrongSchema["schema-version"] = "v2"
	if _, err := validate(wrongSchema); err == nil {
		t.Error("schema-version v2 should fail validation")
	}

	badTemplate := validTemplates()
	badTemplate["gateway-templates"] = []any{map[string]any{"namespace": 3, "purpose": "x", "template": "y"}}
	if _, err := validate(badTemplate); err == nil {
		t.Error("numeric namespace should fail validation")
	}
}

func TestSchemaValidator_DiscoveryMap(t *testing.T) {
	validate := SchemaValidator(DiscoveryMap)

	if _, err := validate(Document{"schema-version": "v1", "namespaces": []any{}}); err != nil {
		t.Errorf("empty mesh rejected: %v", err)
	}

	_, err := validate(Document{"schema-version": "v1", "gateways": []any{}})
	if err == nil {
		t.Fatal("mesh without namespaces should fail validation")
	}
	if !strings.Contains(err.Error(), "discovery-map") {
		t.Errorf("error %q does not name the document", err)
	}
}

func TestSchemaValidator_Configuration(t *testing.T) {
	validate := SchemaValidator(Configuration)

	doc := Document{
		"schema-version":         "v1",
		"document-version":       "",
		"gateway-configurations": []any{},
		"service-configurations": []any{
			map[string]any{
				"namespace":     "n1",
				"service":       nil,
				"color":         nil,
				"purpose":       "timeouts",
				"configuration": map[string]any{"connect": 5},
			},
		},
	}
	if _, err := validate(doc); err != nil {
		t.Errorf("valid configuration rejected: %v", err)
	}

	delete(doc, "document-version")
	if _, err := validate(doc); err == nil {
		t.Error("configuration without document-version should fail validation")
	}
}

func TestDefaultValidators(t *testing.T) {
	validators := DefaultValidators()
	for _, name := range Names() {
		if validators[name] == nil {
			t.Errorf("no default validator for %q", name)
		}
	}
}
