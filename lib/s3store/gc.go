// Copyright 2026 The Nightjar Authors
// SPDX-License-Identifier: Apache-2.0

package s3store

import (
	"slices"
	"time"
)

// maxDeleteBatch is the most keys one DeleteObjects request accepts.
const maxDeleteBatch = 1000

// LatestComplete finds the active revision: the .data entry with the
// newest LastModified whose version also has a .meta entry. Equal
// timestamps are broken by the larger key. ok is false when no complete
// pair exists.
func LatestComplete(entries []Entry) (latest Entry, version string, ok bool) {
	metaVersions := make(map[string]bool)
	for _, entry := range entries {
		if IsMetaKey(entry.Key) {
			if v, valid := VersionFromKey(entry.Key); valid {
				metaVersions[v] = true
			}
		}
	}

	for _, entry := range entries {
		if !IsDataKey(entry.Key) {
			continue
		}
		v, valid := VersionFromKey(entry.Key)
		if !valid || !metaVersions[v] {
			continue
		}
		if !ok || entry.LastModified.After(latest.LastModified) ||
			(entry.LastModified.Equal(latest.LastModified) && entry.Key > latest.Key) {
			latest, version, ok = entry, v, true
		}
	}
	return latest, version, ok
}

// SelectGarbage returns the keys to delete from a listing, sorted.
// Entries are grouped by version. A group with both halves is deleted
// unless its version is preserved. A lone .meta is always deleted. A
// lone .data is deleted once it is older than graceWindow, unless
// preserved. Keys that are neither .data nor .meta are never touched.
func SelectGarbage(entries []Entry, preserve map[string]bool, now time.Time, graceWindow time.Duration) []string {
	groups := make(map[string][]Entry)
	var order []string
	for _, entry := range entries {
		version, ok := VersionFromKey(entry.Key)
		if !ok {
			continue
		}
		if _, seen := groups[version]; !seen {
			order = append(order, version)
		}
		groups[version] = append(groups[version], entry)
	}

	var garbage []string
	for _, version := range order {
		group := groups[version]
		switch {
		case len(group) >= 2:
			if preserve[version] {
				continue
			}
			for _, entry := range group {
				garbage = append(garbage, entry.Key)
			}
		case IsMetaKey(group[0].Key):
			garbage = append(garbage, group[0].Key)
		case !preserve[version] && now.Sub(group[0].LastModified) > graceWindow:
			garbage = append(garbage, group[0].Key)
		}
	}
	slices.Sort(garbage)
	return garbage
}

// batches splits keys into slices of at most size keys.
func batches(keys []string, size int) [][]string {
	var result [][]string
	for len(keys) > size {
		result = append(result, keys[:size])
		keys = keys[size:]
	}
	if len(keys) > 0 {
		result = append(result, keys)
	}
	return result
}
