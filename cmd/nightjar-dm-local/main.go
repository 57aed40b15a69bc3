// Copyright 2026 The Nightjar Authors
// SPDX-License-Identifier: Apache-2.0

// nightjar-dm-local is a discovery-map extension point that serves a
// hand-maintained map from local files.
//
// Usage:
//
//	nightjar-dm-local --output-file=<path> --api-version=1
//
// It writes the first file found among, relative to the base directory
// (NJ_DMLOCAL_BASE_DIR, default /usr/share/nightjar/discovery-map):
//
//	<namespace>/<service>/<color>.json
//	<namespace>/<service>.json
//	<namespace>.json
//	discovery-map.json
//
// where the names come from NJ_NAMESPACE, NJ_SERVICE and NJ_COLOR. With
// no file it exits 31 so the caller retries.
package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/groboclown/nightjar-mesh-sub000/lib/config"
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
		version.Print("nightjar-dm-local")
		return extension.Success, nil
	}

	request, err := extension.ParseDiscoveryMapArgs(args)
	if err != nil {
		return 0, err
	}

	cfg, err := config.Resolve("", lookup)
	if err != nil {
		return 0, &extension.ConfigurationError{Source: config.EnvConfig, Problem: "cannot load configuration", Err: err}
	}

	finder := localstore.FinderFromEnvironment(cfg.Local.DiscoveryDir, lookup)
	finder.Logger = process.NewLogger(stderr, lookup).With("extension_point", "nightjar-dm-local")
	return finder.Find(ctx, request.OutputFile)
}
