// Copyright 2026 The Nightjar Authors
// SPDX-License-Identifier: Apache-2.0

package s3store

import (
	"path"
	"strings"

	"github.com/groboclown/nightjar-mesh-sub000/lib/document"
)

const (
	dataExtension = ".data"
	metaExtension = ".meta"
)

// joinKey joins key parts with "/", trimming slashes from each part and
// dropping empty ones.
func joinKey(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.Trim(part, "/")
		if part != "" {
			kept = append(kept, part)
		}
	}
	return strings.Join(kept, "/")
}

// DocumentPrefix is the listing prefix holding every revision of name.
func DocumentPrefix(basePath string, name document.Name) string {
	return joinKey(basePath, string(name)) + "/"
}

// DataKey is the key of a revision's document object.
func DataKey(basePath string, name document.Name, version string) string {
	return joinKey(basePath, string(name), version+dataExtension)
}

// MetaKey is the key of a revision's metadata object.
func MetaKey(basePath string, name document.Name, version string) string {
	return joinKey(basePath, string(name), version+metaExtension)
}

// IsDataKey reports whether key names a revision's document object.
func IsDataKey(key string) bool { return strings.HasSuffix(key, dataExtension) }

// IsMetaKey reports whether key names a revision's metadata object.
func IsMetaKey(key string) bool { return strings.HasSuffix(key, metaExtension) }

// VersionFromKey extracts the version from a .data or .meta key. ok is
// false for any other key, including one with an empty version.
func VersionFromKey(key string) (version string, ok bool) {
	base := path.Base(key)
	switch {
	case IsDataKey(base):
		version = strings.TrimSuffix(base, dataExtension)
	case IsMetaKey(base):
		version = strings.TrimSuffix(base, metaExtension)
	}
	return version, version != ""
}
