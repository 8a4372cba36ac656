// Package retry implements the router's retry/failover classification: a
// pure function mapping an upstream error to an action and backoff delay.
package retry

import (
	"strconv"
	"time"
)

// Action is the decision the router's retry/failover state machine takes
// after an upstream call fails.
type Action string

const (
	// RetrySame retries the same candidate (provider+model) in place.
	RetrySame Action = "retry_same"
	// SwitchProvider abandons the current candidate and tries the next.
	SwitchProvider Action = "switch_provider"
	// NoRetry re-raises the error unchanged; the caller must not retry.
	NoRetry Action = "no_retry"
)

// statusCarrier declares no method beyond error, so every error satisfies it;
// Classify takes the status code as an argument instead.
type statusCarrier interface {
	error
}

// Classify maps an upstream failure's status code to an action. hasStatus is
// false when the error carried no recognizable status code.
//
// Classification table: 429 -> retry_same; 502/503/504 -> switch_provider;
// 400/401/403/404 -> no_retry; any other status, or no recognizable status
// at all, -> switch_provider (transport errors fall into this default).
func Classify(statusCode int, hasStatus bool) Action {
	if !hasStatus {
		return SwitchProvider
	}
	switch statusCode {
	case 429:
		return RetrySame
	case 502, 503, 504:
		return SwitchProvider
	case 400, 401, 403, 404:
		return NoRetry
	default:
		return SwitchProvider
	}
}

// Backoff computes the delay before the next in-provider retry attempt.
// attempt is 1-based (the attempt that just failed). If retryAfter parses as
// a non-negative integer number of seconds, it wins outright; HTTP-date
// Retry-After values are not interpreted in this version. Otherwise the
// delay is min(2, max(1, 2^(attempt-1))) seconds: 1s for attempt 1, 2s for
// every attempt after that.
func Backoff(attempt int, retryAfter string) time.Duration {
	if retryAfter != "" {
		if secs, err := strconv.Atoi(retryAfter); err == nil && secs >= 0 {
			return time.Duration(secs) * time.Second
		}
	}
	if attempt <= 1 {
		return 1 * time.Second
	}
	return 2 * time.Second
}
