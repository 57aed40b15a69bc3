// Copyright 2026 The Nightjar Authors
// SPDX-License-Identifier: Apache-2.0

package s3store

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Environment variables read by [ConfigFromEnvironment].
const (
	EnvBucket            = "NJ_DSS3_BUCKET"
	EnvBasePath          = "NJ_DSS3_BASE_PATH"
	EnvMaxDocumentSizeMB = "NJ_DSS3_MAX_DOCUMENT_SIZE_MB"
	EnvGraceWindow       = "NJ_DSS3_GRACE_WINDOW"
	EnvEndpoint          = "NJ_DSS3_ENDPOINT"
	EnvRegion            = "AWS_REGION"
	EnvProfile           = "AWS_PROFILE"
)

const (
	DefaultBasePath          = "nightjar-datastore"
	DefaultMaxDocumentSizeMB = 4
	MinDocumentSizeMB        = 2

	// DefaultGraceWindow is how long a .data object without its .meta
	// is left alone before garbage collection removes it.
	DefaultGraceWindow = 24 * time.Hour
)

const megabyte = 1024 * 1024

// Config locates the documents in S3.
type Config struct {
	Bucket   string
	BasePath string

	// Region and Profile select AWS credentials and endpoint. Empty
	// values defer to the SDK's default resolution.
	Region  string
	Profile string

	// Endpoint overrides the S3 endpoint and switches to path-style
	// addressing, for S3-compatible stores.
	Endpoint string

	// AccessKeyID and SecretAccessKey, when both set, replace the
	// SDK's credential chain with static credentials.
	AccessKeyID     string
	SecretAccessKey string

	// MaxDocumentBytes bounds uploads; larger listed objects are
	// ignored.
	MaxDocumentBytes int64

	GraceWindow time.Duration
}

// DefaultConfig returns a Config with every default applied and no
// bucket.
func DefaultConfig() Config {
	return Config{
		BasePath:         DefaultBasePath,
		MaxDocumentBytes: DefaultMaxDocumentSizeMB * megabyte,
		GraceWindow:      DefaultGraceWindow,
	}
}

// ConfigFromEnvironment overlays environment settings on base. lookup
// is usually os.LookupEnv. A document size that does not parse falls
// back to the default; one below the minimum is raised to it.
func ConfigFromEnvironment(base Config, lookup func(string) (string, bool)) (Config, error) {
	config := base
	if value, ok := lookup(EnvBucket); ok {
		config.Bucket = value
	}
	if value, ok := lookup(EnvBasePath); ok {
		config.BasePath = value
	}
	if value, ok := lookup(EnvRegion); ok && value != "" {
		config.Region = value
	}
	if value, ok := lookup(EnvProfile); ok && value != "" {
		config.Profile = value
	}
	if value, ok := lookup(EnvEndpoint); ok && value != "" {
		config.Endpoint = value
	}
	if value, ok := lookup(EnvMaxDocumentSizeMB); ok {
		megabytes, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			megabytes = DefaultMaxDocumentSizeMB
		}
		config.MaxDocumentBytes = int64(max(megabytes, MinDocumentSizeMB)) * megabyte
	}
	if value, ok := lookup(EnvGraceWindow); ok && value != "" {
		window, err := time.ParseDuration(value)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", EnvGraceWindow, err)
		}
		config.GraceWindow = window
	}
	return config, nil
}

// Validate checks that the configuration can address a bucket.
func (c Config) Validate() error {
	var errs []error
	if c.Bucket == "" {
		errs = append(errs, fmt.Errorf("bucket is required (set %s)", EnvBucket))
	} else if strings.Contains(c.Bucket, "/") {
		errs = append(errs, fmt.Errorf("bucket %q must not contain '/'", c.Bucket))
	}
	if c.MaxDocumentBytes < MinDocumentSizeMB*megabyte {
		errs = append(errs, fmt.Errorf("max document size %d bytes is below the %d MB minimum", c.MaxDocumentBytes, MinDocumentSizeMB))
	}
	if c.GraceWindow <= 0 {
		errs = append(errs, fmt.Errorf("grace window must be positive, got %s", c.GraceWindow))
	}
	if (c.AccessKeyID == "") != (c.SecretAccessKey == "") {
		errs = append(errs, errors.New("access key id and secret access key must be set together"))
	}
	return errors.Join(errs...)
}
