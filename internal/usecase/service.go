package usecase

import (
	"cinema-tickets/internal/data/repository"
	"cinema-tickets/internal/events"
	"cinema-tickets/internal/gateway"
	"cinema-tickets/pkg/cache"
	"cinema-tickets/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	Auth    AuthService
	Movie   MovieService
	Booking BookingService
}

func NewService(
	repo *repository.Repository,
	gw gateway.PaymentGateway,
	seats *cache.SeatCache,
	publisher *events.Publisher,
	config *utils.Config,
	log *zap.Logger,
) *Service {
	return &Service{
		Auth:    NewAuthService(repo, config, log),
		Movie:   NewMovieService(repo, log),
		Booking: NewBookingService(repo, gw, seats, publisher, config, log),
	}
}
