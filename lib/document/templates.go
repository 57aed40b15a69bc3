// Copyright 2026 The Nightjar Authors
// SPDX-License-Identifier: Apache-2.0

package document

import "fmt"

// Category selects the gateway or service half of the templates
// document.
type Category string

const (
	Gateway Category = "gateway"
	Service Category = "service"
)

func (c Category) field() string {
	return string(c) + "-templates"
}

// ParseCategory validates a category name.
func ParseCategory(value string) (Category, error) {
	switch Category(value) {
	case Gateway, Service:
		return Category(value), nil
	}
	return "", fmt.Errorf("unknown template category %q (want %s or %s)", value, Gateway, Service)
}

// TemplateKey identifies one template. An empty Namespace, Service or
// Color is stored as null and means "the default". Gateway templates
// ignore Service and Color.
type TemplateKey struct {
	Namespace string
	Service   string
	Color     string
	Purpose   string
}

// TemplateEntry is one template listed from a templates document.
type TemplateEntry struct {
	Category Category
	Key      TemplateKey
}

// NewTemplates returns an empty templates document, used to seed a
// data store that has none yet.
func NewTemplates() Document {
	return Document{
		"schema-version":    "v1",
		VersionKey:          "",
		"gateway-templates": []any{},
		"service-templates": []any{},
	}
}

// SetTemplate adds or replaces the template for key.
func SetTemplate(doc Document, category Category, key TemplateKey, template string) error {
	entries, err := templateEntries(doc, category)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if key.matches(category, entry) {
			entry["template"] = template
			return nil
		}
	}
	entry := map[string]any{
		"namespace": nullable(key.Namespace),
		"purpose":   key.Purpose,
		"template":  template,
	}
	if category == Service {
		entry["service"] = nullable(key.Service)
		entry["color"] = nullable(key.Color)
	}
	list, _ := doc[category.field()].([]any)
	doc[category.field()] = append(list, entry)
	return nil
}

// GetTemplate returns the template for key.
func GetTemplate(doc Document, category Category, key TemplateKey) (string, bool) {
	entries, err := templateEntries(doc, category)
	if err != nil {
		return "", false
	}
	for _, entry := range entries {
		if key.matches(category, entry) {
			template, ok := entry["template"].(string)
			return template, ok
		}
	}
	return "", false
}

// ListTemplates returns the keys of every template in category, in
// document order.
func ListTemplates(doc Document, category Category) ([]TemplateEntry, error) {
	entries, err := templateEntries(doc, category)
	if err != nil {
		return nil, err
	}
	listed := make([]TemplateEntry, 0, len(entries))
	for _, entry := range entries {
		listed = append(listed, TemplateEntry{
			Category: category,
			Key: TemplateKey{
				Namespace: stringValue(entry["namespace"]),
				Service:   stringValue(entry["service"]),
				Color:     stringValue(entry["color"]),
				Purpose:   stringValue(entry["purpose"]),
			},
		})
	}
	return listed, nil
}

func templateEntries(doc Document, category Category) ([]map[string]any, error) {
	raw, present := doc[category.field()]
	if !present || raw == nil {
		return nil, nil
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("%s is not an array", category.field())
	}
	entries := make([]map[string]any, 0, len(list))
	for i, item := range list {
		entry, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%s[%d] is not an object", category.field(), i)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (k TemplateKey) matches(category Category, entry map[string]any) bool {
	if entry["namespace"] != nullable(k.Namespace) || entry["purpose"] != k.Purpose {
		return false
	}
	if category == Gateway {
		return true
	}
	return entry["service"] == nullable(k.Service) && entry["color"] == nullable(k.Color)
}

func nullable(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func stringValue(value any) string {
	s, _ := value.(string)
	return s
}
