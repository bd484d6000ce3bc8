package pipeline

import "time"

// BackoffDelay returns the wait before retry number attempt (1-based):
// base·2^(attempt-1), capped at max. Pure so the retry schedule is testable
// without sleeping.
func BackoffDelay(attempt int, base, max time.Duration) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	delay := base
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= max {
			return max
		}
	}
	if delay > max {
		return max
	}
	return delay
}
