package usecase

import "errors"

var (
	// ErrUnauthorized: caller does not own the booking they act on.
	ErrUnauthorized = errors.New("not authorized for this booking")

	// ErrNotPending: payment-token retry requested for a booking that is no
	// longer awaiting payment.
	ErrNotPending = errors.New("booking is not pending payment")

	// ErrInvalidSeat: a requested seat does not exist in the theater grid,
	// or the same seat was requested twice.
	ErrInvalidSeat = errors.New("invalid seat selection")

	// ErrPriceMismatch: the submitted total does not match the showtime
	// price times the seat count.
	ErrPriceMismatch = errors.New("total price does not match showtime price")

	// ErrUnknownOrder: a payment notification referenced an order with no
	// matching booking. Whether the webhook acknowledges these is a config
	// decision, so the handler needs to tell this case apart.
	ErrUnknownOrder = errors.New("no booking for order")

	// ErrEmailTaken: registration attempted with an email that already has
	// an account.
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidCredentials covers both unknown email and wrong password,
	// so responses never reveal which one it was.
	ErrInvalidCredentials = errors.New("invalid email or password")
)
