package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cinema-tickets/internal/data/entity"
	"cinema-tickets/internal/data/repository"
	"cinema-tickets/internal/dto/request"
	"cinema-tickets/internal/dto/response"
	"cinema-tickets/internal/events"
	"cinema-tickets/internal/gateway"
	"cinema-tickets/pkg/cache"
	"cinema-tickets/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BookingService is the reconciliation engine: it owns the booking lifecycle
// (pending -> confirmed/cancelled) and keeps the ledger in line with the
// payment provider, whether the trigger is a webhook, a poll during a list
// read, or an explicit user cancellation.
type BookingService interface {
	CreateBooking(ctx context.Context, userID string, req *request.CreateBookingRequest) (*response.CreateBookingResponse, error)
	GetUserBookings(ctx context.Context, userID string) ([]response.BookingResponse, error)
	CancelBooking(ctx context.Context, bookingID, userID string) error
	GetPaymentToken(ctx context.Context, bookingID, userID string) (string, error)
	HandleNotification(ctx context.Context, payload []byte) error
	GetBookedSeats(ctx context.Context, showtimeID string) ([]response.SeatResponse, error)

	// Admin
	GetAllBookings(ctx context.Context) ([]response.BookingResponse, error)
}

type bookingService struct {
	repo    *repository.Repository
	gateway gateway.PaymentGateway
	seats   *cache.SeatCache
	events  *events.Publisher
	config  *utils.Config
	log     *zap.Logger
}

func NewBookingService(
	repo *repository.Repository,
	gw gateway.PaymentGateway,
	seats *cache.SeatCache,
	publisher *events.Publisher,
	config *utils.Config,
	log *zap.Logger,
) BookingService {
	return &bookingService{
		repo:    repo,
		gateway: gw,
		seats:   seats,
		events:  publisher,
		config:  config,
		log:     log.With(zap.String("service", "booking")),
	}
}

func (s *bookingService) CreateBooking(ctx context.Context, userID string, req *request.CreateBookingRequest) (*response.CreateBookingResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create booking validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID format %s: %w", userID, err)
	}

	showtimeID, err := uuid.Parse(req.ShowtimeID)
	if err != nil {
		return nil, fmt.Errorf("invalid showtime ID format %s: %w", req.ShowtimeID, err)
	}

	showtime, err := s.repo.Showtime.FindByID(ctx, showtimeID)
	if err != nil {
		return nil, fmt.Errorf("load showtime: %w", err)
	}
	if showtime == nil {
		return nil, fmt.Errorf("showtime %s: %w", req.ShowtimeID, repository.ErrNotFound)
	}
	if showtime.StartTime.Before(time.Now()) {
		return nil, fmt.Errorf("showtime %s already started: %w", req.ShowtimeID, ErrInvalidSeat)
	}

	theater, err := s.repo.Theater.FindByID(ctx, showtime.TheaterID)
	if err != nil || theater == nil {
		return nil, fmt.Errorf("theater for showtime %s: %w", req.ShowtimeID, repository.ErrNotFound)
	}

	seats, err := seatsFromRequest(req.Seats, theater)
	if err != nil {
		return nil, err
	}

	// The client submits the total it showed the user; it must agree with
	// the showtime price, which is the authoritative one.
	expectedPrice := showtime.Price * float64(len(seats))
	if req.TotalPrice != expectedPrice {
		return nil, fmt.Errorf("submitted %.2f, expected %.2f: %w", req.TotalPrice, expectedPrice, ErrPriceMismatch)
	}

	user, err := s.repo.User.FindByID(ctx, userUUID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("user %s: %w", userID, repository.ErrNotFound)
	}

	now := time.Now()
	booking := &entity.Booking{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		UserID:     userUUID,
		ShowtimeID: showtimeID,
		TotalPrice: expectedPrice,
		Status:     entity.BookingStatusPending,
	}

	if err := s.repo.Booking.CreateWithSeats(ctx, booking, seats); err != nil {
		if errors.Is(err, repository.ErrSeatConflict) {
			s.log.Warn("Seat conflict on booking create",
				zap.String("showtime_id", req.ShowtimeID),
				zap.String("user_id", userID),
			)
		}
		return nil, err
	}
	s.seats.Invalidate(ctx, showtimeID)

	payToken, err := s.gateway.CreateTransaction(ctx, booking.ID, booking.TotalPrice, gateway.Customer{
		Name:  user.Username,
		Email: user.Email,
	})
	if err != nil {
		// Seats must never stay held by a booking with no payable
		// transaction behind it: undo the create entirely.
		if delErr := s.repo.Booking.Delete(ctx, booking.ID); delErr != nil {
			s.log.Error("Rollback of booking after gateway failure failed",
				zap.Error(delErr),
				zap.String("booking_id", booking.ID.String()),
			)
		}
		s.seats.Invalidate(ctx, showtimeID)
		return nil, fmt.Errorf("booking %s rolled back: %w", booking.ID.String(), err)
	}

	s.log.Info("Booking created",
		zap.String("booking_id", booking.ID.String()),
		zap.String("user_id", userID),
		zap.String("showtime_id", req.ShowtimeID),
		zap.Int("seat_count", len(seats)),
		zap.Float64("total_price", booking.TotalPrice),
	)

	return &response.CreateBookingResponse{
		BookingID: booking.ID.String(),
		Status:    string(booking.Status),
		PayToken:  payToken,
	}, nil
}

// seatsFromRequest checks the requested seats against the theater grid and
// rejects duplicates within the request itself.
func seatsFromRequest(reqSeats []request.SeatRequest, theater *entity.Theater) ([]entity.SeatRef, error) {
	seats := make([]entity.SeatRef, 0, len(reqSeats))
	seen := make(map[entity.SeatRef]struct{}, len(reqSeats))

	for _, rs := range reqSeats {
		seat := entity.SeatRef{Row: rs.Row, Number: rs.Number}
		if !theater.HasSeat(seat.Row, seat.Number) {
			return nil, fmt.Errorf("seat %s%d not in theater %s: %w", seat.Row, seat.Number, theater.Name, ErrInvalidSeat)
		}
		if _, dup := seen[seat]; dup {
			return nil, fmt.Errorf("seat %s%d requested twice: %w", seat.Row, seat.Number, ErrInvalidSeat)
		}
		seen[seat] = struct{}{}
		seats = append(seats, seat)
	}

	return seats, nil
}

func (s *bookingService) GetUserBookings(ctx context.Context, userID string) ([]response.BookingResponse, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID format %s: %w", userID, err)
	}

	bookings, err := s.repo.Booking.FindByUserID(ctx, userUUID)
	if err != nil {
		s.log.Error("Failed to get user bookings",
			zap.Error(err),
			zap.String("user_id", userID),
		)
		return nil, fmt.Errorf("get user bookings: %w", err)
	}

	// Webhooks can be missed or late; re-poll every pending booking before
	// serving the list. A poll failure is non-fatal, the stale status is
	// served instead.
	for _, booking := range bookings {
		s.reconcilePending(ctx, booking)
	}

	responses := make([]response.BookingResponse, 0, len(bookings))
	for _, booking := range bookings {
		if booking.Status == entity.BookingStatusCancelled {
			// Voided by the poll just now; the user list omits cancelled.
			continue
		}
		responses = append(responses, s.buildBookingResponse(ctx, booking))
	}

	s.log.Info("User bookings retrieved",
		zap.String("user_id", userID),
		zap.Int("count", len(responses)),
	)
	return responses, nil
}

// reconcilePending brings one pending booking in line with the provider's
// authoritative status. Best-effort: any gateway failure leaves the booking
// untouched.
func (s *bookingService) reconcilePending(ctx context.Context, booking *entity.Booking) {
	if booking.Status != entity.BookingStatusPending {
		return
	}

	pollCtx, cancel := context.WithTimeout(ctx, s.config.Midtrans.Timeout)
	defer cancel()

	status, err := s.gateway.FetchStatus(pollCtx, booking.ID)
	if err != nil {
		s.log.Warn("Status poll failed, serving last known status",
			zap.Error(err),
			zap.String("booking_id", booking.ID.String()),
		)
		return
	}

	if err := s.applyProviderStatus(ctx, booking, status, "poll"); err != nil {
		s.log.Warn("Failed to apply polled status",
			zap.Error(err),
			zap.String("booking_id", booking.ID.String()),
			zap.String("provider_status", string(status)),
		)
	}
}

// applyProviderStatus maps a normalized provider status onto the booking
// state machine and applies it through the ledger's idempotent SetStatus.
// settled -> confirmed, voided -> cancelled, pending/unknown -> no change.
// A stale update against an already-terminal booking is a safe no-op.
func (s *bookingService) applyProviderStatus(ctx context.Context, booking *entity.Booking, status gateway.Status, trigger string) error {
	var target entity.BookingStatus
	switch status {
	case gateway.StatusSettled:
		target = entity.BookingStatusConfirmed
	case gateway.StatusVoided:
		target = entity.BookingStatusCancelled
	default:
		return nil
	}

	if booking.Status == target {
		return nil
	}

	if err := s.repo.Booking.SetStatus(ctx, booking.ID, target); err != nil {
		if errors.Is(err, repository.ErrAlreadyTerminal) {
			s.log.Warn("Stale payment status ignored",
				zap.String("booking_id", booking.ID.String()),
				zap.String("provider_status", string(status)),
			)
			return nil
		}
		return err
	}
	booking.Status = target

	if target == entity.BookingStatusCancelled {
		// The seats just came free.
		s.seats.Invalidate(ctx, booking.ShowtimeID)
	}

	s.log.Info("Booking status reconciled",
		zap.String("booking_id", booking.ID.String()),
		zap.String("status", string(target)),
		zap.String("trigger", trigger),
	)
	s.publishStatusEvent(ctx, booking, trigger)
	return nil
}

func (s *bookingService) publishStatusEvent(ctx context.Context, booking *entity.Booking, trigger string) {
	// Best-effort; a broker outage never fails the request.
	_ = s.events.PublishStatusChange(ctx, events.BookingStatusEvent{
		BookingID: booking.ID.String(),
		UserID:    booking.UserID.String(),
		Status:    string(booking.Status),
		Trigger:   trigger,
		At:        time.Now().UTC(),
	})
}

func (s *bookingService) CancelBooking(ctx context.Context, bookingID, userID string) error {
	id, err := uuid.Parse(bookingID)
	if err != nil {
		return fmt.Errorf("invalid booking ID format %s: %w", bookingID, err)
	}
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return fmt.Errorf("invalid user ID format %s: %w", userID, err)
	}

	booking, err := s.repo.Booking.FindByIDForUser(ctx, id, userUUID)
	if err != nil {
		return err
	}
	if booking == nil {
		return fmt.Errorf("booking %s: %w", bookingID, repository.ErrNotFound)
	}

	if err := s.repo.Booking.Cancel(ctx, id, userUUID); err != nil {
		return err
	}
	booking.Status = entity.BookingStatusCancelled
	s.seats.Invalidate(ctx, booking.ShowtimeID)

	s.log.Info("Booking cancelled by user",
		zap.String("booking_id", bookingID),
		zap.String("user_id", userID),
	)
	s.publishStatusEvent(ctx, booking, "user_cancel")
	return nil
}

func (s *bookingService) GetPaymentToken(ctx context.Context, bookingID, userID string) (string, error) {
	id, err := uuid.Parse(bookingID)
	if err != nil {
		return "", fmt.Errorf("invalid booking ID format %s: %w", bookingID, err)
	}
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return "", fmt.Errorf("invalid user ID format %s: %w", userID, err)
	}

	booking, err := s.repo.Booking.FindByIDForUser(ctx, id, userUUID)
	if err != nil {
		return "", err
	}
	if booking == nil {
		return "", fmt.Errorf("booking %s: %w", bookingID, repository.ErrNotFound)
	}
	if booking.Status != entity.BookingStatusPending {
		return "", fmt.Errorf("booking %s is %s: %w", bookingID, booking.Status, ErrNotPending)
	}

	user, err := s.repo.User.FindByID(ctx, userUUID)
	if err != nil || user == nil {
		return "", fmt.Errorf("user %s: %w", userID, repository.ErrNotFound)
	}

	// The seats are still held because the booking is still pending, so no
	// availability re-check is needed; same order identifier, same amount.
	payToken, err := s.gateway.CreateTransaction(ctx, booking.ID, booking.TotalPrice, gateway.Customer{
		Name:  user.Username,
		Email: user.Email,
	})
	if err != nil {
		return "", err
	}

	s.log.Info("Payment token re-issued",
		zap.String("booking_id", bookingID),
		zap.String("user_id", userID),
	)
	return payToken, nil
}

func (s *bookingService) HandleNotification(ctx context.Context, payload []byte) error {
	notif, err := s.gateway.ParseNotification(payload)
	if err != nil {
		return err
	}

	bookingID, err := entity.BookingIDFromOrderID(notif.OrderID)
	if err != nil {
		// Authentic notification, but the order is not one of ours.
		return s.unknownOrder(notif.OrderID)
	}

	booking, err := s.repo.Booking.FindByID(ctx, bookingID)
	if err != nil {
		return fmt.Errorf("resolve notification order %s: %w", notif.OrderID, err)
	}
	if booking == nil {
		return s.unknownOrder(notif.OrderID)
	}

	s.log.Info("Payment notification received",
		zap.String("order_id", notif.OrderID),
		zap.String("booking_id", bookingID.String()),
		zap.String("provider_status", string(notif.Status)),
	)
	return s.applyProviderStatus(ctx, booking, notif.Status, "webhook")
}

// unknownOrder decides, per configuration, whether the provider should stop
// retrying a notification we cannot match to a booking.
func (s *bookingService) unknownOrder(orderID string) error {
	s.log.Warn("Notification for unknown order", zap.String("order_id", orderID))
	if s.config.Midtrans.AckUnknownOrders {
		return nil
	}
	return fmt.Errorf("order %s: %w", orderID, ErrUnknownOrder)
}

func (s *bookingService) GetBookedSeats(ctx context.Context, showtimeID string) ([]response.SeatResponse, error) {
	id, err := uuid.Parse(showtimeID)
	if err != nil {
		return nil, fmt.Errorf("invalid showtime ID format %s: %w", showtimeID, err)
	}

	if seats, ok := s.seats.Get(ctx, id); ok {
		return response.SeatsToResponse(seats), nil
	}

	seats, err := s.repo.BookingSeat.FindBookedSeatsByShowtime(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get booked seats: %w", err)
	}
	s.seats.Set(ctx, id, seats)

	return response.SeatsToResponse(seats), nil
}

// ==================== ADMIN METHODS ====================

func (s *bookingService) GetAllBookings(ctx context.Context) ([]response.BookingResponse, error) {
	bookings, err := s.repo.Booking.FindAll(ctx)
	if err != nil {
		s.log.Error("Failed to get all bookings", zap.Error(err))
		return nil, fmt.Errorf("get all bookings: %w", err)
	}

	responses := make([]response.BookingResponse, len(bookings))
	for i, booking := range bookings {
		responses[i] = s.buildBookingResponse(ctx, booking)
	}

	return responses, nil
}

// ==================== HELPER METHODS ====================

func (s *bookingService) buildBookingResponse(ctx context.Context, booking *entity.Booking) response.BookingResponse {
	var movieTitle, posterURL, theaterName string
	var startTime time.Time

	showtime, _ := s.repo.Showtime.FindByID(ctx, booking.ShowtimeID)
	if showtime != nil {
		startTime = showtime.StartTime

		movie, _ := s.repo.Movie.FindByID(ctx, showtime.MovieID)
		if movie != nil {
			movieTitle = movie.Title
			if movie.PosterURL != nil {
				posterURL = *movie.PosterURL
			}
		}

		theater, _ := s.repo.Theater.FindByID(ctx, showtime.TheaterID)
		if theater != nil {
			theaterName = theater.Name
		}
	}

	seats, _ := s.repo.BookingSeat.FindByBookingID(ctx, booking.ID)

	return response.BookingResponse{
		ID:          booking.ID.String(),
		UserID:      booking.UserID.String(),
		ShowtimeID:  booking.ShowtimeID.String(),
		MovieTitle:  movieTitle,
		PosterURL:   posterURL,
		TheaterName: theaterName,
		StartTime:   startTime,
		TotalPrice:  booking.TotalPrice,
		Status:      string(booking.Status),
		Seats:       response.SeatsToResponse(seats),
		CreatedAt:   booking.CreatedAt,
	}
}
