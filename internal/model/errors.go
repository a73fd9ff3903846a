package model

import (
	"fmt"
	"time"
)

// HTTPError carries the status code of a failed upstream call so retry
// policies can classify it (429 and 5xx are transient, other 4xx are not).
type HTTPError struct {
	StatusCode int
	RetryAfter time.Duration // parsed Retry-After, zero if the header was absent
	Err        error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("HTTP %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}
