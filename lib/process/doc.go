// Copyright 2026 The Nightjar Authors
// SPDX-License-Identifier: Apache-2.0

// Package process provides binary entrypoint helpers for Nightjar
// executables. These functions centralize the raw I/O that happens
// before the structured logger exists or after main has given up:
//
//   - Fatal error reporting to stderr.
//   - Mapping an error to the process exit status, so that extension
//     points report protocol failures with the codes their caller
//     expects.
package process
