// Package gateway wraps the Midtrans payment provider behind the small
// surface the booking service needs: create a payable Snap transaction for a
// booking, fetch the provider's current status for it, and verify inbound
// webhook notifications.
package gateway

import (
	"context"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"cinema-tickets/internal/data/entity"
	"cinema-tickets/pkg/utils"

	"github.com/google/uuid"
	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"
	"github.com/midtrans/midtrans-go/snap"
	"go.uber.org/zap"
)

var (
	// ErrGatewayUnavailable: the provider rejected the call or was not
	// reachable. The caller must roll back any ledger mutation made in the
	// same logical operation.
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")

	// ErrInvalidNotification: webhook payload failed signature verification
	// or is structurally broken. No state change may result from it.
	ErrInvalidNotification = errors.New("invalid payment notification")
)

// Status is the normalized provider status the reconciliation engine works
// with. The provider's zoo of transaction states collapses into four.
type Status string

const (
	StatusSettled Status = "settled" // payment captured
	StatusVoided  Status = "voided"  // cancelled, denied or expired
	StatusPending Status = "pending" // still awaiting payment
	StatusUnknown Status = "unknown" // provider does not know the order (yet)
)

// Customer identifies the payer on the provider side.
type Customer struct {
	Name  string
	Email string
}

// Notification is a verified, normalized webhook payload.
type Notification struct {
	OrderID string
	Status  Status
}

type PaymentGateway interface {
	// CreateTransaction registers a payable transaction for the booking and
	// returns the opaque Snap token the client pays with.
	CreateTransaction(ctx context.Context, bookingID uuid.UUID, amount float64, customer Customer) (string, error)

	// FetchStatus polls the provider for the booking's transaction status.
	// An order the provider does not recognize yields StatusUnknown, not an
	// error: the transaction may simply not exist yet.
	FetchStatus(ctx context.Context, bookingID uuid.UUID) (Status, error)

	// ParseNotification verifies the payload signature and normalizes it.
	ParseNotification(payload []byte) (*Notification, error)
}

type midtransGateway struct {
	snap      snap.Client
	core      coreapi.Client
	serverKey string
	log       *zap.Logger
}

func NewMidtransGateway(config utils.MidtransConfig, log *zap.Logger) PaymentGateway {
	env := midtrans.Sandbox
	if config.Production {
		env = midtrans.Production
	}

	// The SDK has no per-call context support; bound every provider call via
	// its HTTP client timeout instead.
	midtrans.DefaultGoHttpClient = &http.Client{Timeout: config.Timeout}

	g := &midtransGateway{
		serverKey: config.ServerKey,
		log:       log.With(zap.String("gateway", "midtrans")),
	}
	g.snap.New(config.ServerKey, env)
	g.core.New(config.ServerKey, env)

	return g
}

func (g *midtransGateway) CreateTransaction(ctx context.Context, bookingID uuid.UUID, amount float64, customer Customer) (string, error) {
	orderID := entity.OrderID(bookingID)
	grossAmount := int64(amount)

	req := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  orderID,
			GrossAmt: grossAmount,
		},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: customer.Name,
			Email: customer.Email,
		},
		Items: &[]midtrans.ItemDetails{
			{
				ID:    bookingID.String(),
				Name:  "Cinema ticket booking",
				Price: grossAmount,
				Qty:   1,
			},
		},
	}

	resp, err := g.snap.CreateTransaction(req)
	if err != nil {
		g.log.Error("Snap transaction creation failed",
			zap.String("order_id", orderID),
			zap.Int64("gross_amount", grossAmount),
			zap.Error(err),
		)
		return "", fmt.Errorf("create transaction for order %s: %w", orderID, ErrGatewayUnavailable)
	}

	g.log.Info("Snap transaction created",
		zap.String("order_id", orderID),
		zap.Int64("gross_amount", grossAmount),
	)
	return resp.Token, nil
}

func (g *midtransGateway) FetchStatus(ctx context.Context, bookingID uuid.UUID) (Status, error) {
	orderID := entity.OrderID(bookingID)

	resp, err := g.core.CheckTransaction(orderID)
	if err != nil {
		// 404 means the provider has no transaction for this order, which is
		// normal right after booking creation. Not a fault.
		if err.StatusCode == http.StatusNotFound {
			return StatusUnknown, nil
		}
		g.log.Error("Transaction status check failed",
			zap.String("order_id", orderID),
			zap.Error(err),
		)
		return "", fmt.Errorf("check transaction for order %s: %w", orderID, ErrGatewayUnavailable)
	}

	return normalizeStatus(resp.TransactionStatus, resp.FraudStatus), nil
}

// notificationPayload is the subset of the Midtrans webhook body the adapter
// needs. Amount and status code participate in the signature.
type notificationPayload struct {
	OrderID           string `json:"order_id"`
	StatusCode        string `json:"status_code"`
	GrossAmount       string `json:"gross_amount"`
	SignatureKey      string `json:"signature_key"`
	TransactionStatus string `json:"transaction_status"`
	FraudStatus       string `json:"fraud_status"`
}

func (g *midtransGateway) ParseNotification(payload []byte) (*Notification, error) {
	var body notificationPayload
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil, fmt.Errorf("decode notification: %w", ErrInvalidNotification)
	}
	if body.OrderID == "" || body.SignatureKey == "" {
		return nil, fmt.Errorf("notification missing order_id or signature: %w", ErrInvalidNotification)
	}

	expected := notificationSignature(body.OrderID, body.StatusCode, body.GrossAmount, g.serverKey)
	if body.SignatureKey != expected {
		g.log.Warn("Notification signature mismatch",
			zap.String("order_id", body.OrderID),
		)
		return nil, fmt.Errorf("signature mismatch for order %s: %w", body.OrderID, ErrInvalidNotification)
	}

	return &Notification{
		OrderID: body.OrderID,
		Status:  normalizeStatus(body.TransactionStatus, body.FraudStatus),
	}, nil
}

// notificationSignature computes the Midtrans webhook signature:
// sha512(order_id + status_code + gross_amount + server_key).
func notificationSignature(orderID, statusCode, grossAmount, serverKey string) string {
	sum := sha512.Sum512([]byte(orderID + statusCode + grossAmount + serverKey))
	return hex.EncodeToString(sum[:])
}

// normalizeStatus maps Midtrans transaction states to the four statuses the
// booking state machine understands. A capture under fraud challenge stays
// pending until the provider decides.
func normalizeStatus(transactionStatus, fraudStatus string) Status {
	switch transactionStatus {
	case "capture":
		if fraudStatus == "accept" {
			return StatusSettled
		}
		return StatusPending
	case "settlement":
		return StatusSettled
	case "cancel", "deny", "expire":
		return StatusVoided
	case "pending", "authorize":
		return StatusPending
	default:
		return StatusUnknown
	}
}
