package repository

import "errors"

// Sentinel errors surfaced by the booking ledger. Handlers map these to HTTP
// status codes with errors.Is; services pass them through wrapped.
var (
	// ErrSeatConflict: at least one requested seat is already held by a
	// non-cancelled booking for the same showtime.
	ErrSeatConflict = errors.New("one or more seats are already booked")

	// ErrNotFound: no matching row (or not owned by the requesting user).
	ErrNotFound = errors.New("booking not found")

	// ErrAlreadyCancelled: cancel requested on an already-cancelled booking.
	ErrAlreadyCancelled = errors.New("booking is already cancelled")

	// ErrAlreadyTerminal: a status update would regress a confirmed or
	// cancelled booking.
	ErrAlreadyTerminal = errors.New("booking status is already terminal")
)
