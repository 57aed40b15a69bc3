// Copyright 2026 The Nightjar Authors
// SPDX-License-Identifier: Apache-2.0

// Package document defines the named, versioned JSON documents that
// Nightjar exchanges with its data-store and discovery-map extension
// points, and the schema validators that guard them.
//
// A [Document] is a JSON object. The only field the core interprets is
// "document-version", an opaque string assigned by the backend at commit
// time; everything else is application payload checked by a [Validator].
// Numbers decode as json.Number so that a fetch-then-commit round trip
// never changes numeric text.
//
// Validators for the three document names are compiled once from
// embedded YAML JSON-Schema files (santhosh-tekuri/jsonschema). A
// validation failure is a caller bug, never a transient condition, and
// is reported as a [*ValidationError].
package document
