package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// ErrDuplicateSession reports that a payment already exists for the
// checkout session, i.e. the event was reconciled by an earlier delivery.
var ErrDuplicateSession = errors.New("payment already recorded for this session")

// Create inserts the payment, relying on the unique stripe_session_id
// constraint rather than a lookup: the constraint stays correct across
// concurrent deliveries and multiple service instances.
func Create(ctx context.Context, db sqlx.ExtContext, p Payment) error {
	const q = `
	INSERT INTO payments
		(payment_id, user_id, stripe_session_id, stripe_payment_id,
		amount, currency, status, created_at)
	VALUES
		(:payment_id, :user_id, :stripe_session_id, :stripe_payment_id,
		:amount, :currency, :status, :created_at)
	ON CONFLICT (stripe_session_id) DO NOTHING`

	res, err := sqlx.NamedExecContext(ctx, db, q, p)
	if err != nil {
		return fmt.Errorf("inserting payment: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading insert result: %w", err)
	}

	if n == 0 {
		return ErrDuplicateSession
	}

	return nil
}

func FetchBySessionID(ctx context.Context, db sqlx.ExtContext, sessionID string) (Payment, error) {
	const q = `SELECT * FROM payments WHERE stripe_session_id = $1`

	var p Payment
	if err := sqlx.GetContext(ctx, db, &p, q, sessionID); err != nil {
		return Payment{}, err
	}

	return p, nil
}
