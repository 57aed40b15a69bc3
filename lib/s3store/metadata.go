// Copyright 2026 The Nightjar Authors
// SPDX-License-Identifier: Apache-2.0

package s3store

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/groboclown/nightjar-mesh-sub000/lib/document"
)

// localTimeLayout matches an ISO 8601 timestamp with microseconds and
// no zone.
const localTimeLayout = "2006-01-02T15:04:05.000000"

// Metadata is the content of a revision's .meta object.
type Metadata struct {
	Document        string `json:"document"`
	DocumentVersion string `json:"document-version"`
	// BareContentsMD5 and BareContentsSize describe the document
	// serialized with an empty document-version.
	BareContentsMD5  string `json:"bare-contents-md5"`
	BareContentsSize int    `json:"bare-contents-size"`
	LocalTime        string `json:"local-time"`
}

// NewVersion returns a time-based (version 1) UUID as 32 hex
// characters.
func NewVersion() (string, error) {
	id, err := uuid.NewUUID()
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(id[:]), nil
}

// CreateDocumentMetadata assigns a new version to doc and describes it.
// The returned document is a copy of doc with document-version set.
func CreateDocumentMetadata(name string, doc document.Document, now time.Time, newVersion func() (string, error)) (Metadata, document.Document, error) {
	bare, err := doc.WithVersion("").Marshal()
	if err != nil {
		return Metadata{}, nil, fmt.Errorf("encoding document: %w", err)
	}
	sum := md5.Sum(bare)

	version, err := newVersion()
	if err != nil {
		return Metadata{}, nil, fmt.Errorf("generating document version: %w", err)
	}
	return Metadata{
		Document:         name,
		DocumentVersion:  version,
		BareContentsMD5:  hex.EncodeToString(sum[:]),
		BareContentsSize: len(bare),
		LocalTime:        now.UTC().Format(localTimeLayout),
	}, doc.WithVersion(version), nil
}
