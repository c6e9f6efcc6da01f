package wire

import (
	"cinema-tickets/internal/adaptor"
	"cinema-tickets/pkg/middleware"
	"cinema-tickets/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireBooking(
	r chi.Router,
	bookingHandler *adaptor.BookingHandler,
	config *utils.Config,
	log *zap.Logger,
) {
	// ==================== PROTECTED ROUTES (require auth) ====================
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(config.JWT, log))

		// POST /api/bookings - Create new booking (authenticated users only)
		r.Post("/api/bookings", bookingHandler.CreateBooking)

		// GET /api/bookings/user - View booking history (user's own bookings)
		r.Get("/api/bookings/user", bookingHandler.GetUserBookings)

		// PUT /api/bookings/{id}/cancel - Cancel own pending booking
		r.Put("/api/bookings/{id}/cancel", bookingHandler.CancelBooking)

		// GET /api/bookings/{id}/token - Re-issue payment token while pending
		r.Get("/api/bookings/{id}/token", bookingHandler.GetPaymentToken)
	})

	// ==================== PUBLIC ROUTES ====================
	// GET /api/bookings/showtime/{id} - Seat map for a showtime (public)
	r.Get("/api/bookings/showtime/{id}", bookingHandler.GetBookedSeats)

	// ==================== ADMIN ROUTES ====================
	r.Route("/api/admin/bookings", func(r chi.Router) {
		// Require both authentication AND admin role
		r.Use(middleware.Auth(config.JWT, log))
		r.Use(middleware.Admin(log))

		// GET /api/admin/bookings - View all bookings (admin)
		r.Get("/", bookingHandler.GetAllBookings)
	})
}
