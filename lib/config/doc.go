// Copyright 2026 The Nightjar Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for Nightjar
// components.
//
// Configuration is loaded from a single file specified by either the
// NIGHTJAR_CONFIG environment variable (via [Load]) or a --config flag
// (via [LoadFile]). There is no automatic file search. [Resolve] is the
// entry point for extension-point executables, which must also run
// with no file at all and then use [Default].
//
// The configuration file supports environment-specific sections
// (development, staging, production) that override base values when
// [Config].Environment matches.
//
// Variable expansion is performed on path fields after loading:
// ${HOME}, ${NIGHTJAR_TEMP}, and ${VAR:-default} patterns are expanded.
//
// Extension points are configured by their parent through the process
// environment, so [Config.ApplyEnvironment] lets a small set of
// variables (DATA_STORE_EXEC, DISCOVERY_MAP_EXEC, NJ_TEMP_DIR) replace
// file values. Backend-specific variables (NJ_DSS3_*, NJ_DSLOCAL_*)
// are read by the backend packages themselves.
//
// This package depends on no other Nightjar packages.
package config
