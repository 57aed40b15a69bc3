// Copyright 2026 The Nightjar Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time abstraction for testability.
//
// Production code accepts a Clock instead of calling time.Now or
// time.Sleep directly. Real() provides the standard library behavior.
// Fake() provides a clock that never blocks: Sleep advances the fake
// time by the requested duration and records it, so a test can assert
// the exact sleep sequence of a retry loop without waiting.
//
// # Wiring Pattern
//
//	type Runner struct {
//	    clock clock.Clock
//	    // ...
//	}
//
// In production:
//
//	r := &Runner{clock: clock.Real()}
//
// In tests:
//
//	c := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	r := &Runner{clock: c}
//	// ... exercise r ...
//	if got := c.Sleeps(); !slices.Equal(got, want) { ... }
package clock
