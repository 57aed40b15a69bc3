// Copyright 2026 The Nightjar Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import "time"

// Clock abstracts the two time operations Nightjar needs: reading the
// current time (garbage-collection age checks, document metadata) and
// blocking the caller between retries. Production code injects Real();
// tests inject Fake() so that backoff and grace-window behavior is
// deterministic.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// Sleep blocks the calling goroutine for at least d. Returns
	// immediately when d <= 0.
	Sleep(d time.Duration)
}

// Real returns a Clock backed by the standard time package.
func Real() Clock { return realClock{} }

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) Sleep(d time.Duration) { time.Sleep(d) }
