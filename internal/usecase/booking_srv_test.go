package usecase

import (
	"context"
	"testing"
	"time"

	"cinema-tickets/internal/data/entity"
	"cinema-tickets/internal/data/repository"
	"cinema-tickets/internal/dto/request"
	"cinema-tickets/internal/gateway"
	"cinema-tickets/pkg/cache"
	"cinema-tickets/pkg/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type bookingMocks struct {
	booking     *mockBookingRepo
	showtime    *mockShowtimeRepo
	theater     *mockTheaterRepo
	movie       *mockMovieRepo
	user        *mockUserRepo
	bookingSeat *mockBookingSeatRepo
	gateway     *mockGateway
}

func newBookingService(t *testing.T, ackUnknown bool) (BookingService, *bookingMocks) {
	t.Helper()

	m := &bookingMocks{
		booking:     new(mockBookingRepo),
		showtime:    new(mockShowtimeRepo),
		theater:     new(mockTheaterRepo),
		movie:       new(mockMovieRepo),
		user:        new(mockUserRepo),
		bookingSeat: new(mockBookingSeatRepo),
		gateway:     new(mockGateway),
	}

	repo := &repository.Repository{
		User:        m.user,
		Movie:       m.movie,
		Theater:     m.theater,
		Showtime:    m.showtime,
		Booking:     m.booking,
		BookingSeat: m.bookingSeat,
	}

	config := &utils.Config{
		Midtrans: utils.MidtransConfig{
			Timeout:          time.Second,
			AckUnknownOrders: ackUnknown,
		},
	}

	logger := zap.NewNop()
	seats := cache.NewSeatCache(nil, time.Minute, logger)

	svc := NewBookingService(repo, m.gateway, seats, nil, config, logger)
	return svc, m
}

func validCreateRequest(showtimeID uuid.UUID) *request.CreateBookingRequest {
	return &request.CreateBookingRequest{
		ShowtimeID: showtimeID.String(),
		Seats: []request.SeatRequest{
			{Row: "A", Number: 1},
			{Row: "A", Number: 2},
		},
		TotalPrice: 100000,
	}
}

func testShowtime(showtimeID, theaterID uuid.UUID) *entity.Showtime {
	return &entity.Showtime{
		Base:      entity.Base{ID: showtimeID},
		MovieID:   uuid.New(),
		TheaterID: theaterID,
		StartTime: time.Now().Add(24 * time.Hour),
		Price:     50000,
	}
}

func testTheater(theaterID uuid.UUID) *entity.Theater {
	return &entity.Theater{
		Base:        entity.Base{ID: theaterID},
		Name:        "Studio 1",
		RowCount:    5,
		SeatsPerRow: 10,
	}
}

func testUser(userID uuid.UUID) *entity.User {
	return &entity.User{
		Base:     entity.Base{ID: userID},
		Username: "budi",
		Email:    "budi@example.com",
		Role:     entity.RoleCustomer,
		IsActive: true,
	}
}

func TestCreateBooking_Success(t *testing.T) {
	svc, m := newBookingService(t, true)
	ctx := context.Background()

	userID := uuid.New()
	showtimeID := uuid.New()
	theaterID := uuid.New()

	m.showtime.On("FindByID", ctx, showtimeID).Return(testShowtime(showtimeID, theaterID), nil)
	m.theater.On("FindByID", ctx, theaterID).Return(testTheater(theaterID), nil)
	m.user.On("FindByID", ctx, userID).Return(testUser(userID), nil)
	m.booking.On("CreateWithSeats", ctx, mock.AnythingOfType("*entity.Booking"), []entity.SeatRef{
		{Row: "A", Number: 1},
		{Row: "A", Number: 2},
	}).Return(nil)
	m.gateway.On("CreateTransaction", ctx, mock.AnythingOfType("uuid.UUID"), 100000.0, gateway.Customer{
		Name:  "budi",
		Email: "budi@example.com",
	}).Return("snap-token-123", nil)

	resp, err := svc.CreateBooking(ctx, userID.String(), validCreateRequest(showtimeID))

	require.NoError(t, err)
	assert.Equal(t, "pending", resp.Status)
	assert.Equal(t, "snap-token-123", resp.PayToken)
	assert.NotEmpty(t, resp.BookingID)
	m.booking.AssertExpectations(t)
	m.gateway.AssertExpectations(t)
}

func TestCreateBooking_SeatConflict(t *testing.T) {
	svc, m := newBookingService(t, true)
	ctx := context.Background()

	userID := uuid.New()
	showtimeID := uuid.New()
	theaterID := uuid.New()

	m.showtime.On("FindByID", ctx, showtimeID).Return(testShowtime(showtimeID, theaterID), nil)
	m.theater.On("FindByID", ctx, theaterID).Return(testTheater(theaterID), nil)
	m.user.On("FindByID", ctx, userID).Return(testUser(userID), nil)
	m.booking.On("CreateWithSeats", ctx, mock.Anything, mock.Anything).Return(repository.ErrSeatConflict)

	_, err := svc.CreateBooking(ctx, userID.String(), validCreateRequest(showtimeID))

	assert.ErrorIs(t, err, repository.ErrSeatConflict)
	// A failed insert must never reach the payment provider.
	m.gateway.AssertNotCalled(t, "CreateTransaction", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateBooking_GatewayFailureRollsBack(t *testing.T) {
	svc, m := newBookingService(t, true)
	ctx := context.Background()

	userID := uuid.New()
	showtimeID := uuid.New()
	theaterID := uuid.New()

	m.showtime.On("FindByID", ctx, showtimeID).Return(testShowtime(showtimeID, theaterID), nil)
	m.theater.On("FindByID", ctx, theaterID).Return(testTheater(theaterID), nil)
	m.user.On("FindByID", ctx, userID).Return(testUser(userID), nil)
	m.booking.On("CreateWithSeats", ctx, mock.Anything, mock.Anything).Return(nil)
	m.gateway.On("CreateTransaction", ctx, mock.Anything, mock.Anything, mock.Anything).
		Return("", gateway.ErrGatewayUnavailable)
	m.booking.On("Delete", ctx, mock.AnythingOfType("uuid.UUID")).Return(nil)

	_, err := svc.CreateBooking(ctx, userID.String(), validCreateRequest(showtimeID))

	assert.ErrorIs(t, err, gateway.ErrGatewayUnavailable)
	// Seats come free again: the booking row is removed, not just voided.
	m.booking.AssertCalled(t, "Delete", ctx, mock.AnythingOfType("uuid.UUID"))
}

func TestCreateBooking_SeatOutsideGrid(t *testing.T) {
	svc, m := newBookingService(t, true)
	ctx := context.Background()

	userID := uuid.New()
	showtimeID := uuid.New()
	theaterID := uuid.New()

	m.showtime.On("FindByID", ctx, showtimeID).Return(testShowtime(showtimeID, theaterID), nil)
	m.theater.On("FindByID", ctx, theaterID).Return(testTheater(theaterID), nil)

	req := validCreateRequest(showtimeID)
	req.Seats = []request.SeatRequest{{Row: "Z", Number: 1}}
	req.TotalPrice = 50000

	_, err := svc.CreateBooking(ctx, userID.String(), req)

	assert.ErrorIs(t, err, ErrInvalidSeat)
	m.booking.AssertNotCalled(t, "CreateWithSeats", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateBooking_DuplicateSeatInRequest(t *testing.T) {
	svc, m := newBookingService(t, true)
	ctx := context.Background()

	userID := uuid.New()
	showtimeID := uuid.New()
	theaterID := uuid.New()

	m.showtime.On("FindByID", ctx, showtimeID).Return(testShowtime(showtimeID, theaterID), nil)
	m.theater.On("FindByID", ctx, theaterID).Return(testTheater(theaterID), nil)

	req := validCreateRequest(showtimeID)
	req.Seats = []request.SeatRequest{
		{Row: "B", Number: 3},
		{Row: "B", Number: 3},
	}

	_, err := svc.CreateBooking(ctx, userID.String(), req)

	assert.ErrorIs(t, err, ErrInvalidSeat)
	m.booking.AssertNotCalled(t, "CreateWithSeats", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateBooking_PriceMismatch(t *testing.T) {
	svc, m := newBookingService(t, true)
	ctx := context.Background()

	userID := uuid.New()
	showtimeID := uuid.New()
	theaterID := uuid.New()

	m.showtime.On("FindByID", ctx, showtimeID).Return(testShowtime(showtimeID, theaterID), nil)
	m.theater.On("FindByID", ctx, theaterID).Return(testTheater(theaterID), nil)

	req := validCreateRequest(showtimeID)
	req.TotalPrice = 99999 // 2 seats at 50000 each

	_, err := svc.CreateBooking(ctx, userID.String(), req)

	assert.ErrorIs(t, err, ErrPriceMismatch)
	m.booking.AssertNotCalled(t, "CreateWithSeats", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateBooking_ShowtimeAlreadyStarted(t *testing.T) {
	svc, m := newBookingService(t, true)
	ctx := context.Background()

	userID := uuid.New()
	showtimeID := uuid.New()
	theaterID := uuid.New()

	past := testShowtime(showtimeID, theaterID)
	past.StartTime = time.Now().Add(-time.Hour)
	m.showtime.On("FindByID", ctx, showtimeID).Return(past, nil)

	_, err := svc.CreateBooking(ctx, userID.String(), validCreateRequest(showtimeID))

	assert.Error(t, err)
	m.booking.AssertNotCalled(t, "CreateWithSeats", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleNotification_SettledConfirmsBooking(t *testing.T) {
	svc, m := newBookingService(t, true)
	ctx := context.Background()

	bookingID := uuid.New()
	booking := &entity.Booking{
		Base:       entity.Base{ID: bookingID},
		UserID:     uuid.New(),
		ShowtimeID: uuid.New(),
		Status:     entity.BookingStatusPending,
	}

	payload := []byte(`{"order_id":"x"}`)
	m.gateway.On("ParseNotification", payload).Return(&gateway.Notification{
		OrderID: entity.OrderID(bookingID),
		Status:  gateway.StatusSettled,
	}, nil)
	m.booking.On("FindByID", ctx, bookingID).Return(booking, nil)
	m.booking.On("SetStatus", ctx, bookingID, entity.BookingStatusConfirmed).Return(nil)

	err := svc.HandleNotification(ctx, payload)

	require.NoError(t, err)
	m.booking.AssertExpectations(t)
}

func TestHandleNotification_DuplicateDeliveryIsNoOp(t *testing.T) {
	svc, m := newBookingService(t, true)
	ctx := context.Background()

	bookingID := uuid.New()
	booking := &entity.Booking{
		Base:   entity.Base{ID: bookingID},
		UserID: uuid.New(),
		Status: entity.BookingStatusConfirmed, // first delivery already applied
	}

	payload := []byte(`{"order_id":"x"}`)
	m.gateway.On("ParseNotification", payload).Return(&gateway.Notification{
		OrderID: entity.OrderID(bookingID),
		Status:  gateway.StatusSettled,
	}, nil)
	m.booking.On("FindByID", ctx, bookingID).Return(booking, nil)

	err := svc.HandleNotification(ctx, payload)

	require.NoError(t, err)
	m.booking.AssertNotCalled(t, "SetStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleNotification_StaleVoidAfterConfirm(t *testing.T) {
	svc, m := newBookingService(t, true)
	ctx := context.Background()

	bookingID := uuid.New()
	booking := &entity.Booking{
		Base:   entity.Base{ID: bookingID},
		UserID: uuid.New(),
		Status: entity.BookingStatusPending, // in-memory copy is stale
	}

	payload := []byte(`{"order_id":"x"}`)
	m.gateway.On("ParseNotification", payload).Return(&gateway.Notification{
		OrderID: entity.OrderID(bookingID),
		Status:  gateway.StatusVoided,
	}, nil)
	m.booking.On("FindByID", ctx, bookingID).Return(booking, nil)
	// The database row is already confirmed; the compare-and-set refuses.
	m.booking.On("SetStatus", ctx, bookingID, entity.BookingStatusCancelled).
		Return(repository.ErrAlreadyTerminal)

	err := svc.HandleNotification(ctx, payload)

	// Stale regressions are swallowed: the provider gets its 200.
	require.NoError(t, err)
}

func TestHandleNotification_UnknownOrderAcked(t *testing.T) {
	svc, m := newBookingService(t, true)
	ctx := context.Background()

	payload := []byte(`{"order_id":"x"}`)
	m.gateway.On("ParseNotification", payload).Return(&gateway.Notification{
		OrderID: "SOMETHING-ELSE-123",
		Status:  gateway.StatusSettled,
	}, nil)

	err := svc.HandleNotification(ctx, payload)

	require.NoError(t, err)
}

func TestHandleNotification_UnknownOrderRejected(t *testing.T) {
	svc, m := newBookingService(t, false)
	ctx := context.Background()

	bookingID := uuid.New()
	payload := []byte(`{"order_id":"x"}`)
	m.gateway.On("ParseNotification", payload).Return(&gateway.Notification{
		OrderID: entity.OrderID(bookingID),
		Status:  gateway.StatusSettled,
	}, nil)
	m.booking.On("FindByID", ctx, bookingID).Return(nil, nil)

	err := svc.HandleNotification(ctx, payload)

	assert.ErrorIs(t, err, ErrUnknownOrder)
}

func TestHandleNotification_InvalidSignature(t *testing.T) {
	svc, m := newBookingService(t, true)
	ctx := context.Background()

	payload := []byte(`{"order_id":"x"}`)
	m.gateway.On("ParseNotification", payload).Return(nil, gateway.ErrInvalidNotification)

	err := svc.HandleNotification(ctx, payload)

	assert.ErrorIs(t, err, gateway.ErrInvalidNotification)
	m.booking.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

func TestCancelBooking_Success(t *testing.T) {
	svc, m := newBookingService(t, true)
	ctx := context.Background()

	bookingID := uuid.New()
	userID := uuid.New()
	booking := &entity.Booking{
		Base:       entity.Base{ID: bookingID},
		UserID:     userID,
		ShowtimeID: uuid.New(),
		Status:     entity.BookingStatusPending,
	}

	m.booking.On("FindByIDForUser", ctx, bookingID, userID).Return(booking, nil)
	m.booking.On("Cancel", ctx, bookingID, userID).Return(nil)

	err := svc.CancelBooking(ctx, bookingID.String(), userID.String())

	require.NoError(t, err)
	m.booking.AssertExpectations(t)
}

func TestCancelBooking_NotOwned(t *testing.T) {
	svc, m := newBookingService(t, true)
	ctx := context.Background()

	bookingID := uuid.New()
	userID := uuid.New()

	// Scoped lookup: someone else's booking looks like a missing one.
	m.booking.On("FindByIDForUser", ctx, bookingID, userID).Return(nil, nil)

	err := svc.CancelBooking(ctx, bookingID.String(), userID.String())

	assert.ErrorIs(t, err, repository.ErrNotFound)
	m.booking.AssertNotCalled(t, "Cancel", mock.Anything, mock.Anything, mock.Anything)
}

func TestCancelBooking_AlreadyCancelled(t *testing.T) {
	svc, m := newBookingService(t, true)
	ctx := context.Background()

	bookingID := uuid.New()
	userID := uuid.New()
	booking := &entity.Booking{
		Base:   entity.Base{ID: bookingID},
		UserID: userID,
		Status: entity.BookingStatusCancelled,
	}

	m.booking.On("FindByIDForUser", ctx, bookingID, userID).Return(booking, nil)
	m.booking.On("Cancel", ctx, bookingID, userID).Return(repository.ErrAlreadyCancelled)

	err := svc.CancelBooking(ctx, bookingID.String(), userID.String())

	assert.ErrorIs(t, err, repository.ErrAlreadyCancelled)
}

func TestGetPaymentToken_PendingOnly(t *testing.T) {
	svc, m := newBookingService(t, true)
	ctx := context.Background()

	bookingID := uuid.New()
	userID := uuid.New()

	confirmed := &entity.Booking{
		Base:   entity.Base{ID: bookingID},
		UserID: userID,
		Status: entity.BookingStatusConfirmed,
	}
	m.booking.On("FindByIDForUser", ctx, bookingID, userID).Return(confirmed, nil)

	_, err := svc.GetPaymentToken(ctx, bookingID.String(), userID.String())

	assert.ErrorIs(t, err, ErrNotPending)
	m.gateway.AssertNotCalled(t, "CreateTransaction", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestGetPaymentToken_ReissuesForPending(t *testing.T) {
	svc, m := newBookingService(t, true)
	ctx := context.Background()

	bookingID := uuid.New()
	userID := uuid.New()

	pending := &entity.Booking{
		Base:       entity.Base{ID: bookingID},
		UserID:     userID,
		TotalPrice: 75000,
		Status:     entity.BookingStatusPending,
	}
	m.booking.On("FindByIDForUser", ctx, bookingID, userID).Return(pending, nil)
	m.user.On("FindByID", ctx, userID).Return(testUser(userID), nil)
	m.gateway.On("CreateTransaction", mock.Anything, bookingID, 75000.0, mock.Anything).
		Return("snap-token-retry", nil)

	token, err := svc.GetPaymentToken(ctx, bookingID.String(), userID.String())

	require.NoError(t, err)
	assert.Equal(t, "snap-token-retry", token)
}

func TestGetUserBookings_PollPromotesPending(t *testing.T) {
	svc, m := newBookingService(t, true)
	ctx := context.Background()

	userID := uuid.New()
	bookingID := uuid.New()
	showtimeID := uuid.New()

	pending := &entity.Booking{
		Base:       entity.Base{ID: bookingID},
		UserID:     userID,
		ShowtimeID: showtimeID,
		TotalPrice: 50000,
		Status:     entity.BookingStatusPending,
	}

	m.booking.On("FindByUserID", ctx, userID).Return([]*entity.Booking{pending}, nil)
	m.gateway.On("FetchStatus", mock.Anything, bookingID).Return(gateway.StatusSettled, nil)
	m.booking.On("SetStatus", ctx, bookingID, entity.BookingStatusConfirmed).Return(nil)

	// Joined display data for the response.
	m.showtime.On("FindByID", ctx, showtimeID).Return(nil, nil)
	m.bookingSeat.On("FindByBookingID", ctx, bookingID).Return([]entity.SeatRef{{Row: "A", Number: 1}}, nil)

	bookings, err := svc.GetUserBookings(ctx, userID.String())

	require.NoError(t, err)
	require.Len(t, bookings, 1)
	assert.Equal(t, "confirmed", bookings[0].Status)
}

func TestGetUserBookings_PollVoidDropsFromList(t *testing.T) {
	svc, m := newBookingService(t, true)
	ctx := context.Background()

	userID := uuid.New()
	bookingID := uuid.New()

	pending := &entity.Booking{
		Base:       entity.Base{ID: bookingID},
		UserID:     userID,
		ShowtimeID: uuid.New(),
		Status:     entity.BookingStatusPending,
	}

	m.booking.On("FindByUserID", ctx, userID).Return([]*entity.Booking{pending}, nil)
	m.gateway.On("FetchStatus", mock.Anything, bookingID).Return(gateway.StatusVoided, nil)
	m.booking.On("SetStatus", ctx, bookingID, entity.BookingStatusCancelled).Return(nil)

	bookings, err := svc.GetUserBookings(ctx, userID.String())

	require.NoError(t, err)
	assert.Empty(t, bookings)
}

func TestGetUserBookings_PollFailureServesStale(t *testing.T) {
	svc, m := newBookingService(t, true)
	ctx := context.Background()

	userID := uuid.New()
	bookingID := uuid.New()
	showtimeID := uuid.New()

	pending := &entity.Booking{
		Base:       entity.Base{ID: bookingID},
		UserID:     userID,
		ShowtimeID: showtimeID,
		Status:     entity.BookingStatusPending,
	}

	m.booking.On("FindByUserID", ctx, userID).Return([]*entity.Booking{pending}, nil)
	m.gateway.On("FetchStatus", mock.Anything, bookingID).
		Return(gateway.StatusUnknown, gateway.ErrGatewayUnavailable)
	m.showtime.On("FindByID", ctx, showtimeID).Return(nil, nil)
	m.bookingSeat.On("FindByBookingID", ctx, bookingID).Return(nil, nil)

	bookings, err := svc.GetUserBookings(ctx, userID.String())

	require.NoError(t, err)
	require.Len(t, bookings, 1)
	assert.Equal(t, "pending", bookings[0].Status)
	m.booking.AssertNotCalled(t, "SetStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestGetBookedSeats_FallsBackToRepository(t *testing.T) {
	svc, m := newBookingService(t, true)
	ctx := context.Background()

	showtimeID := uuid.New()
	m.bookingSeat.On("FindBookedSeatsByShowtime", ctx, showtimeID).Return([]entity.SeatRef{
		{Row: "A", Number: 1},
		{Row: "C", Number: 7},
	}, nil)

	seats, err := svc.GetBookedSeats(ctx, showtimeID.String())

	require.NoError(t, err)
	require.Len(t, seats, 2)
	assert.Equal(t, "A", seats[0].Row)
	assert.Equal(t, 7, seats[1].Number)
}
