package payment

import (
	"context"
	"time"

	"github.com/francaisintelligent/backend/email"
)

const StatusPaid = "PAID"

// Payment records a completed checkout session. The unique
// stripe_session_id column is the idempotence gate: however many times
// Stripe redelivers the completion event, at most one row exists and the
// enrollment side effects are applied at most once.
type Payment struct {
	ID              string    `json:"id" db:"payment_id"`
	UserID          string    `json:"userId" db:"user_id"`
	StripeSessionID string    `json:"stripeSessionId" db:"stripe_session_id"`
	StripePaymentID string    `json:"stripePaymentId" db:"stripe_payment_id"`
	Amount          int64     `json:"amount" db:"amount"`
	Currency        string    `json:"currency" db:"currency"`
	Status          string    `json:"status" db:"status"`
	CreatedAt       time.Time `json:"createdAt" db:"created_at"`
}

// Mailer sends the enrollment confirmation after a payment is reconciled.
type Mailer interface {
	SendConfirmation(ctx context.Context, c email.Confirmation) error
}
