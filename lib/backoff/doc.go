// Copyright 2026 The Nightjar Authors
// SPDX-License-Identifier: Apache-2.0

// Package backoff runs a callback with bounded retries and exponential
// sleep between attempts.
//
// The executor knows nothing about subprocesses or documents. The
// callback returns an integer-like result code and a predicate decides
// whether that code deserves another attempt. Attempt n (1-based) that
// needs a retry sleeps min(2^(n-1) seconds, maxWait) before attempt n+1.
// There is no jitter: the same sequence of codes always produces the
// same sequence of sleeps.
//
// The executor never returns an error. It returns the last code seen;
// interpreting an exhausted retry budget is the caller's job.
package backoff
