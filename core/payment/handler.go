package payment

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/francaisintelligent/backend/api/background"
	"github.com/francaisintelligent/backend/api/web"
	"github.com/francaisintelligent/backend/api/weberr"
	"github.com/francaisintelligent/backend/core/claims"
	"github.com/francaisintelligent/backend/core/course"
	"github.com/francaisintelligent/backend/core/enrollment"
	"github.com/francaisintelligent/backend/core/user"
	"github.com/francaisintelligent/backend/database"
	"github.com/francaisintelligent/backend/email"
	"github.com/francaisintelligent/backend/validate"
	"github.com/jmoiron/sqlx"
	"github.com/stripe/stripe-go/v74"
	stripecl "github.com/stripe/stripe-go/v74/client"
	"github.com/stripe/stripe-go/v74/webhook"
)

type received struct {
	Received bool `json:"received"`
}

// HandleCheckout creates a hosted checkout session for one course seat.
// It mutates nothing locally: the metadata carries the user and course ids
// so the webhook can find them once the payment completes.
func HandleCheckout(db *sqlx.DB, strp *stripecl.API, frontendURL string) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var ck struct {
			CourseID string `json:"courseId" validate:"required"`
			UserID   string `json:"userId" validate:"required"`
		}

		if err := web.Decode(w, r, &ck); err != nil {
			return weberr.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
		}

		// A logged-in session always pays for itself, whatever the body says.
		if clm, err := claims.Get(ctx); err == nil {
			ck.UserID = clm.UserID
		}

		if err := validate.Check(ck); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
		}

		if err := validate.CheckID(ck.CourseID); err != nil {
			return weberr.BadRequest(err)
		}
		if err := validate.CheckID(ck.UserID); err != nil {
			return weberr.BadRequest(err)
		}

		u, err := user.Fetch(ctx, db, ck.UserID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return weberr.NotFound(fmt.Errorf("user[%s] not found: %w", ck.UserID, err))
			}
			return fmt.Errorf("fetching user[%s]: %w", ck.UserID, err)
		}

		c, err := course.Fetch(ctx, db, ck.CourseID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return weberr.NotFound(fmt.Errorf("course[%s] not found: %w", ck.CourseID, err))
			}
			return fmt.Errorf("fetching course[%s]: %w", ck.CourseID, err)
		}

		if c.Full() {
			err := fmt.Errorf("course[%s] has no seats available", c.ID)
			return weberr.NewError(err, "el curso ya no tiene cupo disponible", http.StatusBadRequest)
		}

		params := &stripe.CheckoutSessionParams{
			Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
			PaymentMethodTypes: stripe.StringSlice([]string{"card", "oxxo"}),
			CustomerEmail:      stripe.String(u.Email),
			SuccessURL:         stripe.String(frontendURL + "/pago-exitoso"),
			CancelURL:          stripe.String(frontendURL + "/pago-cancelado"),

			LineItems: []*stripe.CheckoutSessionLineItemParams{{
				Quantity: stripe.Int64(1),

				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String("mxn"),
					UnitAmount: stripe.Int64(int64(c.Precio) * 100),

					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name:        stripe.String(c.Nombre()),
						Description: stripe.String(c.Horario + " | " + c.Dias),
					},
				},
			}},
		}
		params.AddMetadata("userId", u.ID)
		params.AddMetadata("courseId", c.ID)

		s, err := strp.CheckoutSessions.New(params)
		if err != nil {
			return fmt.Errorf("creating stripe session: %w", err)
		}

		out := struct {
			URL string `json:"url"`
		}{
			URL: s.URL,
		}

		return web.Respond(ctx, w, out, http.StatusOK)
	}
}

// HandleWebhook reconciles a completed checkout session: one payment row,
// one enrollment, one seat, one activation, applied at most once per
// session id no matter how many times Stripe delivers the event.
func HandleWebhook(db *sqlx.DB, secret string, bg *background.Background, mailer Mailer) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {

		// The signature covers the raw bytes, so the body must not be
		// parsed before ConstructEvent sees it.
		b, err := io.ReadAll(r.Body)
		if err != nil {
			return weberr.BadRequest(fmt.Errorf("cannot read the request body: %w", err))
		}

		sig := r.Header.Get("Stripe-Signature")
		if sig == "" {
			return weberr.BadRequest(errors.New("received stripe event is not signed"))
		}

		event, err := webhook.ConstructEvent(b, sig, secret)
		if err != nil {
			return weberr.BadRequest(fmt.Errorf("cannot construct stripe event: %w", err))
		}

		// Stripe retries on anything that is not a 2xx, so event kinds we
		// don't care about are acknowledged, not rejected.
		if event.Type != "checkout.session.completed" {
			return web.Respond(ctx, w, received{true}, http.StatusOK)
		}

		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			return weberr.BadRequest(fmt.Errorf("unable to decode stripe event: %w", err))
		}

		if session.Mode != "" && session.Mode != stripe.CheckoutSessionModePayment {
			return web.Respond(ctx, w, received{true}, http.StatusOK)
		}

		userID := session.Metadata["userId"]
		courseID := session.Metadata["courseId"]
		if userID == "" || courseID == "" {
			// Stripe won't retry a 4xx; the error middleware logs this for
			// manual reconciliation of the transaction.
			return weberr.BadRequest(fmt.Errorf("session[%s] metadata is missing userId or courseId", session.ID))
		}

		u, err := user.Fetch(ctx, db, userID)
		if err != nil {
			return fmt.Errorf("fetching user[%s] for session[%s]: %w", userID, session.ID, err)
		}

		c, err := course.Fetch(ctx, db, courseID)
		if err != nil {
			return fmt.Errorf("fetching course[%s] for session[%s]: %w", courseID, session.ID, err)
		}

		metodo := "card"
		if len(session.PaymentMethodTypes) > 0 {
			metodo = session.PaymentMethodTypes[0]
		}

		var stripePaymentID string
		if session.PaymentIntent != nil {
			stripePaymentID = session.PaymentIntent.ID
		}

		now := time.Now().UTC()
		pay := Payment{
			ID:              validate.GenerateID(),
			UserID:          u.ID,
			StripeSessionID: session.ID,
			StripePaymentID: stripePaymentID,
			Amount:          session.AmountTotal,
			Currency:        string(session.Currency),
			Status:          StatusPaid,
			CreatedAt:       now,
		}

		err = database.Transaction(db, func(tx sqlx.ExtContext) error {
			if err := Create(ctx, tx, pay); err != nil {
				return err
			}

			enr := enrollment.Enrollment{
				UserID:          u.ID,
				CourseID:        c.ID,
				StripeSessionID: session.ID,
				MetodoPago:      metodo,
				Refunded:        false,
				CreatedAt:       now,
			}
			if err := enrollment.Create(ctx, tx, enr); err != nil {
				return err
			}

			if err := course.Enroll(ctx, tx, c.ID, now); err != nil {
				return err
			}

			if err := user.Activate(ctx, tx, u.ID, now); err != nil {
				return err
			}

			return nil
		})

		// A redelivery of an already-reconciled session is success: Stripe
		// must stop retrying.
		if errors.Is(err, ErrDuplicateSession) {
			return web.Respond(ctx, w, received{true}, http.StatusOK)
		}
		if err != nil {
			// 5xx so Stripe redelivers; the retry is absorbed by the
			// session-id gate once the writes go through.
			return fmt.Errorf("reconciling session[%s]: %w", session.ID, err)
		}

		conf := email.Confirmation{
			To:      u.Email,
			Nombre:  u.Nombre,
			Folio:   u.Folio,
			Curso:   c.Nombre(),
			Horario: c.Horario,
			Dias:    c.Dias,
			Precio:  c.Precio,
		}

		bg.Add(func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return mailer.SendConfirmation(ctx, conf)
		})

		return web.Respond(ctx, w, received{true}, http.StatusOK)
	}
}
