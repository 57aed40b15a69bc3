// Copyright 2026 The Nightjar Authors
// SPDX-License-Identifier: Apache-2.0

// Package localstore implements extension points on the local
// filesystem, for single-host deployments and testing.
//
// [Store] keeps exactly one copy of each document in its own JSON file.
// A commit stamps the document with the current UTC time as its
// version and replaces the file atomically. Hand-edited files may
// contain comments and trailing commas; they are normalized to plain
// JSON on fetch.
//
// [Finder] serves the discovery map from the first existing file among
// a list of path patterns, so that one directory tree can hold maps
// for many namespace/service/color combinations.
package localstore
