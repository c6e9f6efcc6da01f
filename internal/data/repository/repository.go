package repository

import (
	"cinema-tickets/pkg/database"

	"go.uber.org/zap"
)

type Repository struct {
	User        UserRepository
	Movie       MovieRepository
	Theater     TheaterRepository
	Showtime    ShowtimeRepository
	Booking     BookingRepository
	BookingSeat BookingSeatRepository
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	return &Repository{
		User:        NewUserRepository(db, log),
		Movie:       NewMovieRepository(db, log),
		Theater:     NewTheaterRepository(db, log),
		Showtime:    NewShowtimeRepository(db, log),
		Booking:     NewBookingRepository(db, log),
		BookingSeat: NewBookingSeatRepository(db, log),
	}
}
