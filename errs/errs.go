// Package errs holds the error vocabulary shared by the store, the booking
// engine and the HTTP handlers.
package errs

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrNotFound       = errors.New("not found")
	ErrDuplicateUser  = errors.New("user already exists")

	// ErrDependencyUnavailable marks a durable-store failure after startup
	// judged the store healthy. Cache failures are never surfaced; they fall
	// back locally.
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)

// SeatConflictError reports the first requested seat that is already booked.
type SeatConflictError struct {
	Seat string
}

func (e *SeatConflictError) Error() string {
	return fmt.Sprintf("seat %s already booked", e.Seat)
}

// AsSeatConflict unwraps err into a SeatConflictError if it is one.
func AsSeatConflict(err error) (*SeatConflictError, bool) {
	var sc *SeatConflictError
	if errors.As(err, &sc) {
		return sc, true
	}
	return nil, false
}
