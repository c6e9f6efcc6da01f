package adaptor

import (
	"cinema-tickets/internal/usecase"

	"go.uber.org/zap"
)

// Handler aggregates all HTTP handlers.
type Handler struct {
	Auth    *AuthHandler
	Movie   *MovieHandler
	Booking *BookingHandler
	Payment *PaymentHandler
}

func NewHandler(service *usecase.Service, log *zap.Logger) *Handler {
	return &Handler{
		Auth:    NewAuthHandler(service.Auth, log),
		Movie:   NewMovieHandler(service.Movie, log),
		Booking: NewBookingHandler(service.Booking, log),
		Payment: NewPaymentHandler(service.Booking, log),
	}
}
