package domain

import "time"

// MaxBackoff caps the delay between retry attempts
const MaxBackoff = 60 * time.Minute

// ComputeBackoff returns how long a failed event waits before its next
// attempt: 2^retryCount minutes, capped at MaxBackoff. retryCount is the
// counter recorded after the failure, so the first retry waits 2 minutes,
// then 4, then 8.
func ComputeBackoff(retryCount int) time.Duration {
	if retryCount < 1 {
		retryCount = 1
	}
	// 2^6 minutes already exceeds the cap
	if retryCount > 6 {
		return MaxBackoff
	}
	delay := time.Duration(1<<uint(retryCount)) * time.Minute
	if delay > MaxBackoff {
		return MaxBackoff
	}
	return delay
}
