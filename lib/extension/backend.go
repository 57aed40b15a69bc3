// Copyright 2026 The Nightjar Authors
// SPDX-License-Identifier: Apache-2.0

package extension

import (
	"context"
	"io"
	"log/slog"

	"github.com/spf13/pflag"

	"github.com/groboclown/nightjar-mesh-sub000/lib/process"
)

// Backend is the data-store side of the protocol: it fetches or commits
// one document per request. A non-nil error is fatal; the returned code
// is then ignored.
type Backend interface {
	Run(ctx context.Context, request DataStoreRequest) (ExitCode, error)
}

// ParseDataStoreArgs parses and validates data-store protocol
// arguments. Problems come back as *ArgumentError.
func ParseDataStoreArgs(args []string) (DataStoreRequest, error) {
	flagSet := pflag.NewFlagSet("data-store", pflag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	flags := AddDataStoreFlags(flagSet)
	if err := flagSet.Parse(args); err != nil {
		return DataStoreRequest{}, &ArgumentError{Code: ExitBadAction, Message: err.Error()}
	}
	return flags.Request()
}

// ParseDiscoveryMapArgs parses and validates discovery-map protocol
// arguments.
func ParseDiscoveryMapArgs(args []string) (DiscoveryMapRequest, error) {
	flagSet := pflag.NewFlagSet("discovery-map", pflag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	flags := AddDiscoveryMapFlags(flagSet)
	if err := flagSet.Parse(args); err != nil {
		return DiscoveryMapRequest{}, &ArgumentError{Code: ExitBadAction, Message: err.Error()}
	}
	return flags.Request()
}

// ServeDataStore parses args and runs the request against backend.
func ServeDataStore(ctx context.Context, backend Backend, args []string) (ExitCode, error) {
	request, err := ParseDataStoreArgs(args)
	if err != nil {
		return 0, err
	}
	return backend.Run(ctx, request)
}

// InProcess is an Invoker that runs a Backend in the calling process,
// exactly as if it had been started as an extension-point executable.
type InProcess struct {
	Backend Backend
	Logger  *slog.Logger
}

func (p *InProcess) Invoke(ctx context.Context, args ...string) (ExitCode, error) {
	code, err := ServeDataStore(ctx, p.Backend, args)
	if err != nil {
		if p.Logger != nil {
			p.Logger.Error("data store failed", "error", err)
		}
		return ExitCode(process.ExitCode(err)), nil
	}
	return code, nil
}
