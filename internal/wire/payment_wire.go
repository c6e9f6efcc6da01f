package wire

import (
	"cinema-tickets/internal/adaptor"
	"cinema-tickets/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wirePayment(
	r chi.Router,
	paymentHandler *adaptor.PaymentHandler,
	config *utils.Config,
	log *zap.Logger,
) {
	// ==================== PUBLIC ROUTES ====================
	// Called server-to-server by the payment provider. Authenticity comes
	// from the signature inside the payload, not from a session.
	r.Post("/api/payment/notification", paymentHandler.Notification)
}
