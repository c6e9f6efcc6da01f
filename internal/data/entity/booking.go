package entity

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// IsTerminal reports whether no further status transition is allowed.
func (s BookingStatus) IsTerminal() bool {
	return s == BookingStatusConfirmed || s == BookingStatusCancelled
}

type Booking struct {
	Base
	UserID     uuid.UUID     `db:"user_id"`
	ShowtimeID uuid.UUID     `db:"showtime_id"`
	TotalPrice float64       `db:"total_price"`
	Status     BookingStatus `db:"status"`
}

// OrderIDPrefix is the contract between the booking service and the payment
// provider: the order identifier sent to Midtrans is always derived from the
// booking ID, so an inbound notification maps back to exactly one booking.
const OrderIDPrefix = "BOOKING-"

// OrderID derives the deterministic payment order identifier for a booking.
func OrderID(bookingID uuid.UUID) string {
	return OrderIDPrefix + bookingID.String()
}

// BookingIDFromOrderID resolves an order identifier back to the booking ID.
func BookingIDFromOrderID(orderID string) (uuid.UUID, error) {
	if !strings.HasPrefix(orderID, OrderIDPrefix) {
		return uuid.Nil, fmt.Errorf("order ID %q has no %s prefix", orderID, OrderIDPrefix)
	}
	id, err := uuid.Parse(strings.TrimPrefix(orderID, OrderIDPrefix))
	if err != nil {
		return uuid.Nil, fmt.Errorf("order ID %q has no valid booking ID: %w", orderID, err)
	}
	return id, nil
}
