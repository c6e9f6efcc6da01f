package adaptor

import (
	"errors"
	"io"
	"net/http"

	"cinema-tickets/internal/gateway"
	"cinema-tickets/internal/usecase"
	"cinema-tickets/pkg/utils"

	"go.uber.org/zap"
)

// PaymentHandler receives server-to-server notifications from the payment
// provider. The provider retries deliveries that do not get a 2xx, so the
// response code here is part of the reconciliation contract.
type PaymentHandler struct {
	service usecase.BookingService
	log     *zap.Logger
}

func NewPaymentHandler(service usecase.BookingService, log *zap.Logger) *PaymentHandler {
	return &PaymentHandler{
		service: service,
		log:     log.With(zap.String("handler", "payment")),
	}
}

// Notification handles POST /api/payment/notification
func (h *PaymentHandler) Notification(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		utils.ResponseBadRequest(w, "Cannot read notification body", nil)
		return
	}

	err = h.service.HandleNotification(r.Context(), payload)
	switch {
	case err == nil:
		utils.ResponseSuccess(w, "ok", nil)

	case errors.Is(err, gateway.ErrInvalidNotification):
		// Bad signature or malformed payload. Retrying will not help.
		h.log.Warn("Rejected payment notification", zap.Error(err))
		utils.ResponseBadRequest(w, "Invalid notification", nil)

	case errors.Is(err, usecase.ErrUnknownOrder):
		// Non-2xx makes the provider redeliver later, in case the booking
		// write is still in flight.
		h.log.Warn("Notification for unknown order", zap.Error(err))
		utils.ResponseNotFound(w, "Unknown order")

	default:
		h.log.Error("Failed to process payment notification", zap.Error(err))
		utils.ResponseInternalError(w, "Internal server error")
	}
}
