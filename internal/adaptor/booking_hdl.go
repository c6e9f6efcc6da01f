package adaptor

import (
	"encoding/json"
	"errors"
	"net/http"

	"cinema-tickets/internal/data/repository"
	"cinema-tickets/internal/dto/request"
	"cinema-tickets/internal/gateway"
	"cinema-tickets/internal/usecase"
	"cinema-tickets/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type BookingHandler struct {
	service usecase.BookingService
	log     *zap.Logger
}

func NewBookingHandler(service usecase.BookingService, log *zap.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		log:     log.With(zap.String("handler", "booking")),
	}
}

// CreateBooking handles POST /api/bookings (protected)
func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	booking, err := h.service.CreateBooking(r.Context(), userID.String(), &req)
	if err != nil {
		h.handleServiceError(w, err, "create booking")
		return
	}

	utils.ResponseCreated(w, "success", booking)
}

// GetUserBookings handles GET /api/bookings/user (protected)
func (h *BookingHandler) GetUserBookings(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	bookings, err := h.service.GetUserBookings(r.Context(), userID.String())
	if err != nil {
		h.handleServiceError(w, err, "get user bookings")
		return
	}

	utils.ResponseSuccess(w, "success", bookings)
}

// CancelBooking handles PUT /api/bookings/{id}/cancel (protected, owner)
func (h *BookingHandler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	bookingID := chi.URLParam(r, "id")
	if _, err := uuid.Parse(bookingID); err != nil {
		utils.ResponseBadRequest(w, "Invalid booking ID", nil)
		return
	}

	if err := h.service.CancelBooking(r.Context(), bookingID, userID.String()); err != nil {
		h.handleServiceError(w, err, "cancel booking")
		return
	}

	utils.ResponseSuccess(w, "success", nil)
}

// GetPaymentToken handles GET /api/bookings/{id}/token (protected, owner).
// Re-issues the payable handle for a still-pending booking.
func (h *BookingHandler) GetPaymentToken(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	bookingID := chi.URLParam(r, "id")
	if _, err := uuid.Parse(bookingID); err != nil {
		utils.ResponseBadRequest(w, "Invalid booking ID", nil)
		return
	}

	token, err := h.service.GetPaymentToken(r.Context(), bookingID, userID.String())
	if err != nil {
		h.handleServiceError(w, err, "get payment token")
		return
	}

	utils.ResponseSuccess(w, "success", map[string]string{"pay_token": token})
}

// GetBookedSeats handles GET /api/bookings/showtime/{id} (public)
func (h *BookingHandler) GetBookedSeats(w http.ResponseWriter, r *http.Request) {
	showtimeID := chi.URLParam(r, "id")
	if _, err := uuid.Parse(showtimeID); err != nil {
		utils.ResponseBadRequest(w, "Invalid showtime ID", nil)
		return
	}

	seats, err := h.service.GetBookedSeats(r.Context(), showtimeID)
	if err != nil {
		h.handleServiceError(w, err, "get booked seats")
		return
	}

	utils.ResponseSuccess(w, "success", seats)
}

// ==================== ADMIN METHODS ====================

// GetAllBookings handles GET /api/admin/bookings (admin only)
func (h *BookingHandler) GetAllBookings(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.service.GetAllBookings(r.Context())
	if err != nil {
		h.handleServiceError(w, err, "get all bookings")
		return
	}

	utils.ResponseSuccess(w, "success", bookings)
}

// handleServiceError maps the error taxonomy onto HTTP responses.
func (h *BookingHandler) handleServiceError(w http.ResponseWriter, err error, operation string) {
	switch {
	case errors.Is(err, repository.ErrSeatConflict):
		h.log.Warn(operation+" failed - seat conflict", zap.Error(err))
		utils.ResponseBadRequest(w, "One or more seats are already booked", nil)

	case errors.Is(err, repository.ErrAlreadyCancelled),
		errors.Is(err, repository.ErrAlreadyTerminal),
		errors.Is(err, usecase.ErrNotPending),
		errors.Is(err, usecase.ErrInvalidSeat),
		errors.Is(err, usecase.ErrPriceMismatch):
		h.log.Warn(operation+" failed - invalid state", zap.Error(err))
		utils.ResponseBadRequest(w, err.Error(), nil)

	case errors.Is(err, repository.ErrNotFound):
		h.log.Warn(operation+" failed - not found", zap.Error(err))
		utils.ResponseNotFound(w, err.Error())

	case errors.Is(err, usecase.ErrUnauthorized):
		h.log.Warn(operation+" failed - forbidden", zap.Error(err))
		utils.ResponseForbidden(w, err.Error())

	case errors.Is(err, gateway.ErrGatewayUnavailable):
		h.log.Error(operation+" failed - payment gateway", zap.Error(err))
		utils.ResponseInternalError(w, "Payment system unavailable, please try again")

	default:
		h.log.Error("Failed to "+operation, zap.Error(err))
		utils.ResponseInternalError(w, "Internal server error")
	}
}
