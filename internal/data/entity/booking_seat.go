package entity

import "github.com/google/uuid"

// SeatRef identifies one physical seat inside a theater grid.
type SeatRef struct {
	Row    string `json:"row"`
	Number int    `json:"number"`
}

// BookingSeat is a child row of exactly one booking. It is created atomically
// with the booking, never mutated, and deleted only when the booking itself is
// deleted. Cancelled bookings keep their seat rows for history; the
// availability query filters them out.
type BookingSeat struct {
	BaseSimple
	BookingID  uuid.UUID `db:"booking_id"`
	SeatRow    string    `db:"seat_row"`
	SeatNumber int       `db:"seat_number"`
}
