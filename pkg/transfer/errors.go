package transfer

import (
	"fmt"
	"time"
)

// TimeoutError is returned when a transfer receives no data for a full stall
// window.
type TimeoutError struct {
	Resource string
	Window   time.Duration
	Received int64
}

func (err *TimeoutError) Error() string {
	return fmt.Sprintf("transfer of %s stalled: no data for %s (%d bytes received)",
		err.Resource, err.Window, err.Received)
}

// NetworkError is returned when the request or the response stream fails.
type NetworkError struct {
	Resource string
	Cause    error
}

func (err *NetworkError) Error() string {
	return fmt.Sprintf("transfer of %s failed: %s", err.Resource, err.Cause)
}

func (err *NetworkError) Unwrap() error {
	return err.Cause
}
