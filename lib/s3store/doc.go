// Copyright 2026 The Nightjar Authors
// SPDX-License-Identifier: Apache-2.0

// Package s3store implements the data-store extension point on top of
// an S3 bucket, providing atomic, versioned documents without any
// transaction support from the object store.
//
// Every committed revision of a document is a pair of objects:
//
//	{base}/{document}/{version}.data   the document, with document-version set
//	{base}/{document}/{version}.meta   metadata written after the data
//
// The .meta object is uploaded last, so a revision only becomes visible
// once both halves exist. Fetch picks the complete pair with the newest
// LastModified time. Concurrent writers are not coordinated: each commit
// produces its own pair and the newest complete one wins.
//
// After a commit, [SelectGarbage] decides which objects from the
// pre-commit listing can go. The new version and the version that was
// active before the commit are always kept. A .data object with no .meta
// is kept until it is older than the grace window, since it may belong
// to a commit that is still uploading.
//
// The bucket is reached through the [ObjectStore] interface.
// [AWSObjectStore] implements it with the AWS SDK for Go v2; tests use
// an in-memory implementation.
package s3store
