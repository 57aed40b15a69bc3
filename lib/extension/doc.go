// Copyright 2026 The Nightjar Authors
// SPDX-License-Identifier: Apache-2.0

// Package extension runs Nightjar extension points: external
// executables that fetch and commit documents or produce the discovery
// map, communicating only through a file path argument and their exit
// code.
//
// The exit code is the whole protocol. [Success] means the file at
// --action-file (or --output-file) is fresh. [NoChange] means the
// document still has the version passed as --previous-document-version.
// [Retry] asks the caller to try again under backoff. Anything else is
// fatal and surfaces as a [*RuntimeError].
//
// [DataStoreRunner] keeps a [CachedDocument] per document name so that
// a failed or corrupt fetch falls back to the last good local copy.
// [DiscoveryMapRunner] keeps no cache; every call goes to the
// extension point.
//
// Both runners are strictly sequential. A runner must not be shared by
// concurrent callers, and its cache directory must not be shared by
// concurrent processes.
package extension
