// Copyright 2026 The Nightjar Authors
// SPDX-License-Identifier: Apache-2.0

// nightjar-template-manager pushes and pulls documents through the
// data-store extension point.
//
// Usage:
//
//	nightjar-template-manager [flags] push <document> <file|->
//	nightjar-template-manager [flags] pull <document> <file|->
//	nightjar-template-manager [flags] push-template <gateway|service> <file|->
//	nightjar-template-manager [flags] pull-template <gateway|service> <file|->
//	nightjar-template-manager [flags] list [gateway|service] [file|-]
//
// The data-store command comes from DATA_STORE_EXEC or the data_store
// section of the configuration file. Single-template commands select
// the template with --namespace, --service, --color and --purpose; an
// omitted namespace, service or color means the default template.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"

	"github.com/groboclown/nightjar-mesh-sub000/lib/config"
	"github.com/groboclown/nightjar-mesh-sub000/lib/document"
	"github.com/groboclown/nightjar-mesh-sub000/lib/extension"
	"github.com/groboclown/nightjar-mesh-sub000/lib/process"
	"github.com/groboclown/nightjar-mesh-sub000/lib/version"
)

// streams are the standard files, replaced in tests.
type streams struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.LookupEnv, streams{stdin: os.Stdin, stdout: os.Stdout, stderr: os.Stderr})
	stop()
	if err != nil {
		process.Fatal(err)
	}
}

func run(ctx context.Context, args []string, lookup func(string) (string, bool), std streams) error {
	var configPath string
	var metricsFile string
	var key document.TemplateKey

	flagSet := pflag.NewFlagSet("nightjar-template-manager", pflag.ContinueOnError)
	flagSet.SetOutput(std.stderr)
	flagSet.StringVar(&configPath, "config", "", "configuration file (default: $NIGHTJAR_CONFIG, then built-in defaults)")
	flagSet.StringVar(&key.Namespace, "namespace", "", "template namespace (default template when omitted)")
	flagSet.StringVar(&key.Service, "service", "", "template service (service templates only)")
	flagSet.StringVar(&key.Color, "color", "", "template color (service templates only)")
	flagSet.StringVar(&key.Purpose, "purpose", "", "template purpose, usually the generated file name")
	flagSet.StringVar(&metricsFile, "metrics-file", "", "write extension-point metrics to this file in Prometheus text format")
	flagSet.Usage = func() { printUsage(std.stderr, flagSet) }

	// Handle --version before flag parsing to match the other Nightjar binaries.
	if len(args) > 0 && args[0] == "--version" {
		version.Fprint(std.stdout, "nightjar-template-manager")
		return nil
	}

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return failf(exitUsage, "%v", err)
	}

	positional := flagSet.Args()
	if len(positional) == 0 {
		printUsage(std.stderr, flagSet)
		return failf(exitUsage, "no command given")
	}
	command, ok := commands[positional[0]]
	if !ok {
		return failf(exitUsage, "unknown command %q", positional[0])
	}
	commandArgs := positional[1:]
	if len(commandArgs) < command.minArgs || len(commandArgs) > command.maxArgs {
		return failf(exitUsage, "usage: nightjar-template-manager %s %s", positional[0], command.usage)
	}

	cfg, err := config.Resolve(configPath, lookup)
	if err != nil {
		return &extension.ConfigurationError{Source: "--config", Problem: "cannot load configuration", Err: err}
	}
	cfg.ApplyEnvironment(lookup)
	if err := cfg.Validate(); err != nil {
		return &extension.ConfigurationError{Source: "--config", Problem: "invalid configuration", Err: err}
	}
	if err := cfg.EnsurePaths(); err != nil {
		return &extension.ConfigurationError{Source: config.EnvTempDir, Problem: "cannot create temp directory", Err: err}
	}
	dataStore, err := extension.ResolveCommand(config.EnvDataStoreExec, cfg.DataStore.Command)
	if err != nil {
		return err
	}

	logger := process.NewLogger(std.stderr, lookup)
	registry := prometheus.NewRegistry()
	metrics, err := extension.NewMetrics(registry)
	if err != nil {
		return fmt.Errorf("registering metrics: %w", err)
	}

	m := &manager{
		invoker: extension.NewProcess(dataStore, logger),
		tempDir: cfg.Paths.Temp,
		options: extension.RunnerOptions{
			MaxRetries: cfg.DataStore.MaxRetries,
			MaxWait:    cfg.DataStore.Wait(),
			Logger:     logger,
			Metrics:    metrics,
		},
		stdin:  std.stdin,
		stdout: std.stdout,
		logger: logger,
		indent: process.IsTerminal(std.stdout),
	}
	err = command.run(ctx, m, commandArgs, key)

	if metricsFile != "" {
		if writeErr := prometheus.WriteToTextfile(metricsFile, registry); writeErr != nil {
			logger.Error("cannot write metrics", "path", metricsFile, "error", writeErr)
			if err == nil {
				err = writeErr
			}
		}
	}
	return err
}

// commandSpec describes one subcommand and its positional arguments.
type commandSpec struct {
	usage   string
	minArgs int
	maxArgs int
	run     func(ctx context.Context, m *manager, args []string, key document.TemplateKey) error
}

var commands = map[string]commandSpec{
	"push": {
		usage: "<document> <file|->", minArgs: 2, maxArgs: 2,
		run: func(ctx context.Context, m *manager, args []string, _ document.TemplateKey) error {
			name, err := parseDocument(args[0])
			if err != nil {
				return err
			}
			return m.push(ctx, name, args[1])
		},
	},
	"pull": {
		usage: "<document> <file|->", minArgs: 2, maxArgs: 2,
		run: func(ctx context.Context, m *manager, args []string, _ document.TemplateKey) error {
			name, err := parseDocument(args[0])
			if err != nil {
				return err
			}
			return m.pull(ctx, name, args[1])
		},
	},
	"push-template": {
		usage: "<gateway|service> <file|->", minArgs: 2, maxArgs: 2,
		run: func(ctx context.Context, m *manager, args []string, key document.TemplateKey) error {
			return m.pushTemplate(ctx, args[0], key, args[1])
		},
	},
	"pull-template": {
		usage: "<gateway|service> <file|->", minArgs: 2, maxArgs: 2,
		run: func(ctx context.Context, m *manager, args []string, key document.TemplateKey) error {
			return m.pullTemplate(ctx, args[0], key, args[1])
		},
	},
	"list": {
		usage: "[gateway|service] [file|-]", minArgs: 0, maxArgs: 2,
		run: func(ctx context.Context, m *manager, args []string, _ document.TemplateKey) error {
			category, output := "", ""
			if len(args) > 0 {
				category = args[0]
			}
			if len(args) > 1 {
				output = args[1]
			}
			return m.list(ctx, category, output)
		},
	},
}

func parseDocument(value string) (document.Name, error) {
	name, err := document.ParseName(value)
	if err != nil {
		return "", failf(exitUsage, "%v", err)
	}
	return name, nil
}

func printUsage(w io.Writer, flagSet *pflag.FlagSet) {
	fmt.Fprintf(w, `Nightjar template manager: push and pull data-store documents.

Usage:
  nightjar-template-manager [flags] push <document> <file|->
  nightjar-template-manager [flags] pull <document> <file|->
  nightjar-template-manager [flags] push-template <gateway|service> <file|->
  nightjar-template-manager [flags] pull-template <gateway|service> <file|->
  nightjar-template-manager [flags] list [gateway|service] [file|-]

Documents: templates, configuration, discovery-map. A file of "-" means
stdin or stdout.

Environment:
  DATA_STORE_EXEC  data-store extension point command line
  NJ_TEMP_DIR      directory for extension-point exchange files
  NIGHTJAR_CONFIG  configuration file
  NIGHTJAR_DEBUG   enable debug logging

Flags:
`)
	flagSet.SetOutput(w)
	flagSet.PrintDefaults()
}
