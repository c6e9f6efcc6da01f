package repository

import (
	"context"
	"fmt"

	"cinema-tickets/internal/data/entity"
	"cinema-tickets/pkg/database"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type BookingSeatRepository interface {
	FindByBookingID(ctx context.Context, bookingID uuid.UUID) ([]entity.SeatRef, error)

	// FindBookedSeatsByShowtime is the seat availability index: the union of
	// seat assignments of all non-cancelled bookings for a showtime. Pending
	// bookings hold their seats too, so an unpaid booking still blocks a
	// double sale.
	FindBookedSeatsByShowtime(ctx context.Context, showtimeID uuid.UUID) ([]entity.SeatRef, error)
}

type bookingSeatRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewBookingSeatRepository(db database.PgxIface, log *zap.Logger) BookingSeatRepository {
	return &bookingSeatRepository{
		db:  db,
		log: log.With(zap.String("repository", "booking_seat")),
	}
}

func (r *bookingSeatRepository) FindByBookingID(ctx context.Context, bookingID uuid.UUID) ([]entity.SeatRef, error) {
	query := `
		SELECT seat_row, seat_number
		FROM booking_seats
		WHERE booking_id = $1
		ORDER BY seat_row, seat_number
	`

	rows, err := r.db.Query(ctx, query, bookingID)
	if err != nil {
		r.log.Error("Failed to find seats by booking ID",
			zap.Error(err),
			zap.String("booking_id", bookingID.String()),
		)
		return nil, fmt.Errorf("find seats by booking ID %s: %w", bookingID.String(), err)
	}
	defer rows.Close()

	var seats []entity.SeatRef
	for rows.Next() {
		var seat entity.SeatRef
		if err := rows.Scan(&seat.Row, &seat.Number); err != nil {
			r.log.Error("Failed to scan seat row", zap.Error(err))
			return nil, fmt.Errorf("scan seat row: %w", err)
		}
		seats = append(seats, seat)
	}

	return seats, rows.Err()
}

func (r *bookingSeatRepository) FindBookedSeatsByShowtime(ctx context.Context, showtimeID uuid.UUID) ([]entity.SeatRef, error) {
	rows, err := r.db.Query(ctx, bookedSeatsForShowtimeQuery, showtimeID)
	if err != nil {
		r.log.Error("Failed to find booked seats by showtime",
			zap.Error(err),
			zap.String("showtime_id", showtimeID.String()),
		)
		return nil, fmt.Errorf("find booked seats by showtime %s: %w", showtimeID.String(), err)
	}
	defer rows.Close()

	var seats []entity.SeatRef
	for rows.Next() {
		var seat entity.SeatRef
		if err := rows.Scan(&seat.Row, &seat.Number); err != nil {
			r.log.Error("Failed to scan booked seat row", zap.Error(err))
			return nil, fmt.Errorf("scan booked seat row: %w", err)
		}
		seats = append(seats, seat)
	}

	return seats, rows.Err()
}
