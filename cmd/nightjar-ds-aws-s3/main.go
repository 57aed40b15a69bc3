// Copyright 2026 The Nightjar Authors
// SPDX-License-Identifier: Apache-2.0

// nightjar-ds-aws-s3 is a data-store extension point that keeps
// versioned documents in an S3 bucket.
//
// Usage:
//
//	nightjar-ds-aws-s3 --activity=<document> --action=<fetch|commit> \
//	    --previous-document-version=<version> --action-file=<path> --api-version=1
//
// Every commit writes a new <version>.data object followed by its
// <version>.meta marker under <base-path>/<document>/, then removes
// older versions. Fetch returns the newest version that has both.
//
// The bucket comes from the s3 section of NIGHTJAR_CONFIG or from
// NJ_DSS3_BUCKET; NJ_DSS3_BASE_PATH, NJ_DSS3_MAX_DOCUMENT_SIZE_MB,
// NJ_DSS3_GRACE_WINDOW, NJ_DSS3_ENDPOINT, AWS_REGION and AWS_PROFILE
// override the rest. Credentials follow the AWS SDK default chain unless
// s3.access_key_id and s3.secret_access_key are both configured.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/groboclown/nightjar-mesh-sub000/lib/config"
	"github.com/groboclown/nightjar-mesh-sub000/lib/extension"
	"github.com/groboclown/nightjar-mesh-sub000/lib/process"
	"github.com/groboclown/nightjar-mesh-sub000/lib/s3store"
	"github.com/groboclown/nightjar-mesh-sub000/lib/version"
)

const megabyte = 1024 * 1024

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
		version.Print("nightjar-ds-aws-s3")
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
	storeConfig, err := buildStoreConfig(cfg, lookup)
	if err != nil {
		return 0, err
	}
	logger := process.NewLogger(stderr, lookup).With(
		"extension_point", "nightjar-ds-aws-s3",
		"bucket", storeConfig.Bucket,
	)

	client, err := s3store.NewClient(ctx, storeConfig)
	if err != nil {
		return 0, &extension.ConfigurationError{Source: "s3", Problem: "cannot create client", Err: err}
	}
	store := s3store.NewStore(s3store.NewAWSObjectStore(client, storeConfig.Bucket), storeConfig, s3store.Options{
		Logger: logger,
	})
	return store.Run(ctx, request)
}

// buildStoreConfig layers the environment over the s3 configuration
// section.
func buildStoreConfig(cfg *config.Config, lookup func(string) (string, bool)) (s3store.Config, error) {
	graceWindow, err := time.ParseDuration(cfg.S3.GraceWindow)
	if err != nil {
		return s3store.Config{}, &extension.ConfigurationError{Source: "s3.grace_window", Problem: fmt.Sprintf("invalid duration %q", cfg.S3.GraceWindow), Err: err}
	}
	base := s3store.Config{
		Bucket:           cfg.S3.Bucket,
		BasePath:         cfg.S3.BasePath,
		Region:           cfg.S3.Region,
		Profile:          cfg.S3.Profile,
		Endpoint:         cfg.S3.Endpoint,
		AccessKeyID:      cfg.S3.AccessKeyID,
		SecretAccessKey:  cfg.S3.SecretAccessKey,
		MaxDocumentBytes: int64(cfg.S3.MaxDocumentMB) * megabyte,
		GraceWindow:      graceWindow,
	}
	storeConfig, err := s3store.ConfigFromEnvironment(base, lookup)
	if err != nil {
		return s3store.Config{}, &extension.ConfigurationError{Source: "s3", Problem: "invalid environment", Err: err}
	}
	if err := storeConfig.Validate(); err != nil {
		return s3store.Config{}, &extension.ConfigurationError{Source: "s3", Problem: "invalid configuration", Err: err}
	}
	return storeConfig, nil
}
