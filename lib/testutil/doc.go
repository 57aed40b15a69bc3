// Copyright 2026 The Nightjar Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for Nightjar packages.
//
// [NewFakeExtensionPoint] writes a /bin/sh script that behaves like an
// extension point: it records the arguments of every invocation, copies
// the file named by --action-file or --output-file aside before the
// call returns, optionally writes scripted content to that path, and
// exits with a scripted sequence of codes. Tests exercise the real
// subprocess path this way instead of mocking the invoker.
//
// [UniqueID] generates monotonically increasing identifiers for test
// disambiguation, such as fake document versions.
//
// All helpers call t.Fatalf on failure rather than returning errors,
// since test setup failures are not recoverable.
//
// This package has no Nightjar-internal dependencies.
package testutil
