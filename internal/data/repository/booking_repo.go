package repository

import (
	"context"
	"errors"
	"fmt"

	"cinema-tickets/internal/data/entity"
	"cinema-tickets/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

type BookingRepository interface {
	// CreateWithSeats inserts a booking plus its seat assignments atomically,
	// re-checking seat availability inside the same transaction. Returns
	// ErrSeatConflict when any requested seat is already held.
	CreateWithSeats(ctx context.Context, booking *entity.Booking, seats []entity.SeatRef) error

	FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error)
	FindByIDForUser(ctx context.Context, id, userID uuid.UUID) (*entity.Booking, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.Booking, error)
	FindAll(ctx context.Context) ([]*entity.Booking, error)

	// SetStatus is an idempotent compare-and-set: it only ever moves a
	// pending booking forward. Same-status calls are no-ops; regressing a
	// terminal booking returns ErrAlreadyTerminal.
	SetStatus(ctx context.Context, id uuid.UUID, status entity.BookingStatus) error

	Cancel(ctx context.Context, id, userID uuid.UUID) error

	// Delete removes the booking and its seat assignments. Compensating path
	// for a failed payment-transaction creation; regular cancellation keeps
	// the rows.
	Delete(ctx context.Context, id uuid.UUID) error
}

type bookingRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewBookingRepository(db database.PgxIface, log *zap.Logger) BookingRepository {
	return &bookingRepository{
		db:  db,
		log: log.With(zap.String("repository", "booking")),
	}
}

const bookingColumns = `id, user_id, showtime_id, total_price, status, created_at, updated_at`

const bookedSeatsForShowtimeQuery = `
	SELECT bs.seat_row, bs.seat_number
	FROM booking_seats bs
	INNER JOIN bookings b ON bs.booking_id = b.id
	WHERE b.showtime_id = $1 AND b.status != 'cancelled'
`

// Concurrent creates for the same showtime serialize on the booked-seats read;
// a loser aborts with SQLSTATE 40001 and is retried so that disjoint seat sets
// still go through while overlapping ones surface ErrSeatConflict.
const createMaxAttempts = 3

func (r *bookingRepository) CreateWithSeats(ctx context.Context, booking *entity.Booking, seats []entity.SeatRef) error {
	var err error
	for attempt := 1; attempt <= createMaxAttempts; attempt++ {
		err = r.tryCreateWithSeats(ctx, booking, seats)
		if !isSerializationFailure(err) {
			return err
		}
		r.log.Warn("Booking create hit serialization conflict, retrying",
			zap.String("booking_id", booking.ID.String()),
			zap.Int("attempt", attempt),
		)
	}
	return fmt.Errorf("create booking %s: %w", booking.ID.String(), err)
}

func (r *bookingRepository) tryCreateWithSeats(ctx context.Context, booking *entity.Booking, seats []entity.SeatRef) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return fmt.Errorf("begin booking transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx, bookedSeatsForShowtimeQuery, booking.ShowtimeID)
	if err != nil {
		return fmt.Errorf("read booked seats for showtime %s: %w", booking.ShowtimeID.String(), err)
	}

	taken := make(map[entity.SeatRef]struct{})
	for rows.Next() {
		var seat entity.SeatRef
		if err := rows.Scan(&seat.Row, &seat.Number); err != nil {
			rows.Close()
			return fmt.Errorf("scan booked seat row: %w", err)
		}
		taken[seat] = struct{}{}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("read booked seats for showtime %s: %w", booking.ShowtimeID.String(), err)
	}

	for _, seat := range seats {
		if _, held := taken[seat]; held {
			return fmt.Errorf("seat %s%d: %w", seat.Row, seat.Number, ErrSeatConflict)
		}
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO bookings (id, user_id, showtime_id, total_price, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`,
		booking.ID,
		booking.UserID,
		booking.ShowtimeID,
		booking.TotalPrice,
		booking.Status,
		booking.CreatedAt,
		booking.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert booking %s: %w", booking.ID.String(), err)
	}

	for _, seat := range seats {
		_, err = tx.Exec(ctx, `
			INSERT INTO booking_seats (id, booking_id, seat_row, seat_number, created_at)
			VALUES ($1, $2, $3, $4, $5)
		`,
			uuid.New(),
			booking.ID,
			seat.Row,
			seat.Number,
			booking.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert booking seat %s%d: %w", seat.Row, seat.Number, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit booking %s: %w", booking.ID.String(), err)
	}

	return nil
}

func isSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "40001"
}

func (r *bookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	booking, err := r.scanBooking(r.db.QueryRow(ctx, query, id))
	if err != nil {
		r.log.Error("Failed to find booking by ID",
			zap.Error(err),
			zap.String("booking_id", id.String()),
		)
		return nil, fmt.Errorf("find booking by ID %s: %w", id.String(), err)
	}
	return booking, nil
}

func (r *bookingRepository) FindByIDForUser(ctx context.Context, id, userID uuid.UUID) (*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1 AND user_id = $2`

	booking, err := r.scanBooking(r.db.QueryRow(ctx, query, id, userID))
	if err != nil {
		r.log.Error("Failed to find booking for user",
			zap.Error(err),
			zap.String("booking_id", id.String()),
			zap.String("user_id", userID.String()),
		)
		return nil, fmt.Errorf("find booking %s for user %s: %w", id.String(), userID.String(), err)
	}
	return booking, nil
}

// scanBooking maps pgx.ErrNoRows to (nil, nil) like the rest of the repos.
func (r *bookingRepository) scanBooking(row pgx.Row) (*entity.Booking, error) {
	var booking entity.Booking
	err := row.Scan(
		&booking.ID,
		&booking.UserID,
		&booking.ShowtimeID,
		&booking.TotalPrice,
		&booking.Status,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *bookingRepository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE user_id = $1 AND status != 'cancelled'
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		r.log.Error("Failed to find bookings by user ID",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return nil, fmt.Errorf("find bookings by user ID %s: %w", userID.String(), err)
	}
	defer rows.Close()

	return r.collectBookings(rows)
}

func (r *bookingRepository) FindAll(ctx context.Context) ([]*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.log.Error("Failed to find all bookings", zap.Error(err))
		return nil, fmt.Errorf("find all bookings: %w", err)
	}
	defer rows.Close()

	return r.collectBookings(rows)
}

func (r *bookingRepository) collectBookings(rows pgx.Rows) ([]*entity.Booking, error) {
	var bookings []*entity.Booking
	for rows.Next() {
		var booking entity.Booking
		err := rows.Scan(
			&booking.ID,
			&booking.UserID,
			&booking.ShowtimeID,
			&booking.TotalPrice,
			&booking.Status,
			&booking.CreatedAt,
			&booking.UpdatedAt,
		)
		if err != nil {
			r.log.Error("Failed to scan booking row", zap.Error(err))
			return nil, fmt.Errorf("scan booking row: %w", err)
		}
		bookings = append(bookings, &booking)
	}
	return bookings, rows.Err()
}

func (r *bookingRepository) SetStatus(ctx context.Context, id uuid.UUID, status entity.BookingStatus) error {
	// Only pending rows move; whichever trigger (user cancel, poll, webhook)
	// lands last on a terminal booking becomes a no-op here.
	result, err := r.db.Exec(ctx,
		`UPDATE bookings SET status = $2, updated_at = NOW() WHERE id = $1 AND status = 'pending'`,
		id, status,
	)
	if err != nil {
		r.log.Error("Failed to update booking status",
			zap.Error(err),
			zap.String("booking_id", id.String()),
			zap.String("status", string(status)),
		)
		return fmt.Errorf("update booking %s status to %s: %w", id.String(), string(status), err)
	}

	if result.RowsAffected() > 0 {
		return nil
	}

	booking, err := r.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if booking == nil {
		return fmt.Errorf("booking %s: %w", id.String(), ErrNotFound)
	}
	if booking.Status == status {
		// Duplicate delivery; already there.
		return nil
	}
	return fmt.Errorf("booking %s is %s, refusing %s: %w",
		id.String(), booking.Status, status, ErrAlreadyTerminal)
}

func (r *bookingRepository) Cancel(ctx context.Context, id, userID uuid.UUID) error {
	booking, err := r.FindByIDForUser(ctx, id, userID)
	if err != nil {
		return err
	}
	if booking == nil {
		return fmt.Errorf("booking %s: %w", id.String(), ErrNotFound)
	}
	if booking.Status == entity.BookingStatusCancelled {
		return fmt.Errorf("booking %s: %w", id.String(), ErrAlreadyCancelled)
	}

	result, err := r.db.Exec(ctx,
		`UPDATE bookings SET status = 'cancelled', updated_at = NOW()
		 WHERE id = $1 AND user_id = $2 AND status != 'cancelled'`,
		id, userID,
	)
	if err != nil {
		r.log.Error("Failed to cancel booking",
			zap.Error(err),
			zap.String("booking_id", id.String()),
		)
		return fmt.Errorf("cancel booking %s: %w", id.String(), err)
	}
	if result.RowsAffected() == 0 {
		// Raced with another cancel trigger.
		return fmt.Errorf("booking %s: %w", id.String(), ErrAlreadyCancelled)
	}

	r.log.Info("Booking cancelled",
		zap.String("booking_id", id.String()),
		zap.String("user_id", userID.String()),
	)
	return nil
}

func (r *bookingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin delete transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM booking_seats WHERE booking_id = $1`, id); err != nil {
		return fmt.Errorf("delete seats of booking %s: %w", id.String(), err)
	}

	result, err := tx.Exec(ctx, `DELETE FROM bookings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete booking %s: %w", id.String(), err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("booking %s: %w", id.String(), ErrNotFound)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit delete of booking %s: %w", id.String(), err)
	}

	r.log.Info("Booking deleted", zap.String("booking_id", id.String()))
	return nil
}
