package usecase

import (
	"context"

	"cinema-tickets/internal/data/entity"
	"cinema-tickets/internal/gateway"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type mockBookingRepo struct {
	mock.Mock
}

func (m *mockBookingRepo) CreateWithSeats(ctx context.Context, booking *entity.Booking, seats []entity.SeatRef) error {
	args := m.Called(ctx, booking, seats)
	return args.Error(0)
}

func (m *mockBookingRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	args := m.Called(ctx, id)
	if b := args.Get(0); b != nil {
		return b.(*entity.Booking), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockBookingRepo) FindByIDForUser(ctx context.Context, id, userID uuid.UUID) (*entity.Booking, error) {
	args := m.Called(ctx, id, userID)
	if b := args.Get(0); b != nil {
		return b.(*entity.Booking), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockBookingRepo) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.Booking, error) {
	args := m.Called(ctx, userID)
	if b := args.Get(0); b != nil {
		return b.([]*entity.Booking), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockBookingRepo) FindAll(ctx context.Context) ([]*entity.Booking, error) {
	args := m.Called(ctx)
	if b := args.Get(0); b != nil {
		return b.([]*entity.Booking), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockBookingRepo) SetStatus(ctx context.Context, id uuid.UUID, status entity.BookingStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *mockBookingRepo) Cancel(ctx context.Context, id, userID uuid.UUID) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

func (m *mockBookingRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockShowtimeRepo struct {
	mock.Mock
}

func (m *mockShowtimeRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Showtime, error) {
	args := m.Called(ctx, id)
	if s := args.Get(0); s != nil {
		return s.(*entity.Showtime), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockShowtimeRepo) FindByMovieID(ctx context.Context, movieID uuid.UUID) ([]*entity.Showtime, error) {
	args := m.Called(ctx, movieID)
	if s := args.Get(0); s != nil {
		return s.([]*entity.Showtime), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockTheaterRepo struct {
	mock.Mock
}

func (m *mockTheaterRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Theater, error) {
	args := m.Called(ctx, id)
	if t := args.Get(0); t != nil {
		return t.(*entity.Theater), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockMovieRepo struct {
	mock.Mock
}

func (m *mockMovieRepo) FindAll(ctx context.Context) ([]*entity.Movie, error) {
	args := m.Called(ctx)
	if mv := args.Get(0); mv != nil {
		return mv.([]*entity.Movie), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockMovieRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Movie, error) {
	args := m.Called(ctx, id)
	if mv := args.Get(0); mv != nil {
		return mv.(*entity.Movie), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) Create(ctx context.Context, user *entity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	args := m.Called(ctx, id)
	if u := args.Get(0); u != nil {
		return u.(*entity.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	args := m.Called(ctx, email)
	if u := args.Get(0); u != nil {
		return u.(*entity.User), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockBookingSeatRepo struct {
	mock.Mock
}

func (m *mockBookingSeatRepo) FindByBookingID(ctx context.Context, bookingID uuid.UUID) ([]entity.SeatRef, error) {
	args := m.Called(ctx, bookingID)
	if s := args.Get(0); s != nil {
		return s.([]entity.SeatRef), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockBookingSeatRepo) FindBookedSeatsByShowtime(ctx context.Context, showtimeID uuid.UUID) ([]entity.SeatRef, error) {
	args := m.Called(ctx, showtimeID)
	if s := args.Get(0); s != nil {
		return s.([]entity.SeatRef), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) CreateTransaction(ctx context.Context, bookingID uuid.UUID, amount float64, customer gateway.Customer) (string, error) {
	args := m.Called(ctx, bookingID, amount, customer)
	return args.String(0), args.Error(1)
}

func (m *mockGateway) FetchStatus(ctx context.Context, bookingID uuid.UUID) (gateway.Status, error) {
	args := m.Called(ctx, bookingID)
	return args.Get(0).(gateway.Status), args.Error(1)
}

func (m *mockGateway) ParseNotification(payload []byte) (*gateway.Notification, error) {
	args := m.Called(payload)
	if n := args.Get(0); n != nil {
		return n.(*gateway.Notification), args.Error(1)
	}
	return nil, args.Error(1)
}
