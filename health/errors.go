package health

import "errors"

var (
	// ErrCheckFailed marks a result whose component crossed a critical
	// threshold.
	ErrCheckFailed = errors.New("health: check failed")

	// ErrCheckTimeout marks a result whose check did not finish in time.
	ErrCheckTimeout = errors.New("health: check timeout")

	// ErrInvalidThreshold is returned for out-of-range checker thresholds.
	ErrInvalidThreshold = errors.New("health: invalid threshold")
)
