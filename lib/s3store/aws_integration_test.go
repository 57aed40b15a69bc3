// Copyright 2026 The Nightjar Authors
// SPDX-License-Identifier: Apache-2.0

//go:build integration

package s3store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/groboclown/nightjar-mesh-sub000/lib/document"
	"github.com/groboclown/nightjar-mesh-sub000/lib/extension"
)

const (
	minioImage    = "minio/minio:RELEASE.2025-04-22T22-12-26Z"
	minioUser     = "nightjar"
	minioPassword = "nightjar-secret"
	minioBucket   = "nightjar-test"
)

// startMinio runs an S3-compatible server and returns a Config pointing
// at a fresh bucket on it.
func startMinio(t *testing.T, ctx context.Context) Config {
	t.Helper()

	request := tc.ContainerRequest{
		Image:        minioImage,
		Cmd:          []string{"server", "/data"},
		ExposedPorts: []string{"9000/tcp"},
		Env: map[string]string{
			"MINIO_ROOT_USER":     minioUser,
			"MINIO_ROOT_PASSWORD": minioPassword,
		},
		WaitingFor: wait.ForHTTP("/minio/health/live").WithPort("9000/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: request, Started: true})
	if err != nil {
		t.Fatalf("starting minio: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("minio host: %v", err)
	}
	port, err := container.MappedPort(ctx, "9000/tcp")
	if err != nil {
		t.Fatalf("minio port: %v", err)
	}

	config := DefaultConfig()
	config.Bucket = minioBucket
	config.Region = "us-east-1"
	config.Endpoint = fmt.Sprintf("http://%s:%s", host, port.Port())
	config.AccessKeyID = minioUser
	config.SecretAccessKey = minioPassword
	return config
}

func TestAWSObjectStore_Minio(t *testing.T) {
	ctx := context.Background()
	config := startMinio(t, ctx)
	if err := config.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	client, err := NewClient(ctx, config)
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	if _, err := client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(config.Bucket)}); err != nil {
		t.Fatalf("CreateBucket failed: %v", err)
	}

	objects := NewAWSObjectStore(client, config.Bucket)
	store := NewStore(objects, config, Options{})
	dir := t.TempDir()

	fetched := filepath.Join(dir, "fetched.json")
	code, err := store.Fetch(ctx, document.Templates, fetched, "")
	if err != nil || code != extension.Retry {
		t.Fatalf("Fetch from an empty bucket = %d, %v, want %d", code, err, extension.Retry)
	}

	source := filepath.Join(dir, "source.json")
	if err := os.WriteFile(source, []byte(`{"document-version": "", "x": "y"}`), 0o644); err != nil {
		t.Fatalf("writing source: %v", err)
	}
	for range 3 {
		code, err = store.Commit(ctx, document.Templates, source)
		if err != nil || code != extension.Success {
			t.Fatalf("Commit = %d, %v", code, err)
		}
		// LastModified has one-second resolution.
		time.Sleep(1100 * time.Millisecond)
	}

	entries, err := objects.List(ctx, DocumentPrefix(config.BasePath, document.Templates))
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 4 {
		t.Errorf("got %d objects after three commits, want 4 (two preserved pairs)", len(entries))
	}

	code, err = store.Fetch(ctx, document.Templates, fetched, "")
	if err != nil || code != extension.Success {
		t.Fatalf("Fetch = %d, %v", code, err)
	}
	data, err := os.ReadFile(fetched)
	if err != nil {
		t.Fatalf("reading fetched document: %v", err)
	}
	doc, err := document.Parse(data)
	if err != nil {
		t.Fatalf("fetched document does not parse: %v", err)
	}
	version, _ := doc.Version()
	if !hexVersion.MatchString(version) || doc["x"] != "y" {
		t.Errorf("fetched %s", data)
	}

	code, err = store.Fetch(ctx, document.Templates, fetched, version)
	if err != nil || code != extension.NoChange {
		t.Errorf("second Fetch = %d, %v, want %d", code, err, extension.NoChange)
	}

	if _, err := objects.Download(ctx, DataKey(config.BasePath, document.Templates, "missing")); !IsNotFound(err) {
		t.Errorf("Download of a missing key: got %v, want not found", err)
	}
	if err := objects.Delete(ctx, []string{DataKey(config.BasePath, document.Templates, "missing")}); err != nil {
		t.Errorf("Delete of a missing key failed: %v", err)
	}
}
