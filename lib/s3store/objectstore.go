// Copyright 2026 The Nightjar Authors
// SPDX-License-Identifier: Apache-2.0

package s3store

import (
	"context"
	"time"
)

// Entry is one object from a listing.
type Entry struct {
	Key          string
	LastModified time.Time
	Size         int64
}

// ObjectStore is the subset of a bucket the store needs. Errors are
// classified with [RequiresRetry] and [IsNotFound].
type ObjectStore interface {
	// List returns every object whose key starts with prefix.
	List(ctx context.Context, prefix string) ([]Entry, error)
	Upload(ctx context.Context, key string, data []byte) error
	Download(ctx context.Context, key string) ([]byte, error)
	// Delete removes up to 1000 keys. Keys that do not exist are not an
	// error.
	Delete(ctx context.Context, keys []string) error
}
