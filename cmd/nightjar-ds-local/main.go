// Copyright 2026 The Nightjar Authors
// SPDX-License-Identifier: Apache-2.0

// nightjar-ds-local is a data-store extension point that keeps each
// document in a single local JSON file.
//
// Usage:
//
//	nightjar-ds-local --activity=<document> --action=<fetch|commit> \
//	    --previous-document-version=<version> --action-file=<path> --api-version=1
//
// The files default to /usr/share/nightjar/data-store and are set by the
// local section of NIGHTJAR_CONFIG or by NJ_DSLOCAL_TEMPLATE_FILE,
// NJ_DSLOCAL_CONFIGURATION_FILE and NJ_DSLOCAL_DISCOVERY_MAP_FILE.
package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/groboclown/nightjar-mesh-sub000/lib/clock"
	"github.com/groboclown/nightjar-mesh-sub000/lib/config"
	"github.com/groboclown/nightjar-mesh-sub000/lib/document"
	"github.com/groboclown/nightjar-mesh-sub000/lib/extension"
	"github.com/groboclown/nightjar-mesh-sub000/lib/localstore"
	"github.com/groboclown/nightjar-mesh-sub000/lib/process"
	"github.com/groboclown/nightjar-mesh-sub000/lib/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code, err := run(ctx, os.Args[1:], os.LookupEnv, os.Stderr)
	stop()
	if err != nil {
		process.Fatal(err)
	}
	os.Exit(int(code))
}

func run(ctx context.Context, args []string, lookup func(string) (string, bool), stderr io.Writer) (extension.ExitCode, error) {
	if len(args) > 0 && args[0] == "--version" {
		version.Print("nightjar-ds-local")
		return extension.Success, nil
	}

	request, err := extension.ParseDataStoreArgs(args)
	if err != nil {
		return 0, err
	}

	cfg, err := config.Resolve("", lookup)
	if err != nil {
		return 0, &extension.ConfigurationError{Source: config.EnvConfig, Problem: "cannot load configuration", Err: err}
	}
	logger := process.NewLogger(stderr, lookup).With("extension_point", "nightjar-ds-local")

	storeConfig := localstore.ConfigFromEnvironment(localstore.Config{Files: map[document.Name]string{
		document.Templates:     cfg.Local.TemplatesFile,
		document.Configuration: cfg.Local.ConfigurationFile,
		document.DiscoveryMap:  cfg.Local.DiscoveryMapFile,
	}}, lookup)

	return localstore.NewStore(storeConfig, clock.Real(), logger).Run(ctx, request)
}
