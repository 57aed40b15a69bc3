// Copyright 2026 The Nightjar Authors
// SPDX-License-Identifier: Apache-2.0

package backoff

import "time"

// NotRun is returned by Run when maxRetries is zero or negative and the
// callback was never invoked.
const NotRun = -1

// Sleeper blocks the caller for a duration. clock.Clock satisfies it.
type Sleeper interface {
	Sleep(d time.Duration)
}

// Run calls run up to maxRetries times. After each call, if needsRetry
// reports true and attempts remain, it sleeps Delay(attempt, maxWait)
// through sleeper; otherwise it stops. The result of the last call is
// returned whatever it was.
func Run[C ~int](run func() C, needsRetry func(C) bool, maxRetries int, maxWait time.Duration, sleeper Sleeper) C {
	result := C(NotRun)
	for attempt := 1; attempt <= maxRetries; attempt++ {
		result = run()
		if !needsRetry(result) || attempt >= maxRetries {
			break
		}
		sleeper.Sleep(Delay(attempt, maxWait))
	}
	return result
}

// Delay returns the sleep that follows the given 1-based attempt:
// 2^(attempt-1) seconds, capped at maxWait.
func Delay(attempt int, maxWait time.Duration) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	// 2^33 seconds is centuries; anything past that is capped anyway.
	if attempt > 33 {
		return maxWait
	}
	delay := time.Duration(int64(1)<<(attempt-1)) * time.Second
	if delay > maxWait {
		return maxWait
	}
	return delay
}
