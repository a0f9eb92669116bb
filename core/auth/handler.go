package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/francaisintelligent/backend/api/web"
	"github.com/francaisintelligent/backend/api/weberr"
	"github.com/francaisintelligent/backend/core/user"
	"github.com/francaisintelligent/backend/validate"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
)

// HandleLogin authenticates by folio and password. Only ACTIVE accounts
// may log in: a student stays INACTIVE until their payment is reconciled.
func HandleLogin(db *sqlx.DB, session *scs.SessionManager) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var login struct {
			Folio    string `json:"folio" validate:"required"`
			Password string `json:"password" validate:"required"`
		}

		if err := web.Decode(w, r, &login); err != nil {
			return weberr.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
		}

		if err := validate.Check(login); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
		}

		u, err := user.FetchByFolio(ctx, db, login.Folio)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return weberr.NotAuthorized(errors.New("invalid credentials"))
			}
			return fmt.Errorf("fetching user[%s]: %w", login.Folio, err)
		}

		if u.Status != user.StatusActive {
			return weberr.NotAuthorized(fmt.Errorf("user[%s] is not active", u.Folio))
		}

		if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(login.Password)); err != nil {
			return weberr.NotAuthorized(errors.New("invalid credentials"))
		}

		if err := session.RenewToken(ctx); err != nil {
			return fmt.Errorf("renewing session token: %w", err)
		}

		session.Put(ctx, userIDKey, u.ID)
		session.Put(ctx, folioKey, u.Folio)
		session.Put(ctx, roleKey, u.Role)

		out := struct {
			Folio string `json:"folio"`
			Role  string `json:"role"`
		}{
			Folio: u.Folio,
			Role:  u.Role,
		}

		return web.Respond(ctx, w, out, http.StatusOK)
	}
}

func HandleLogout(session *scs.SessionManager) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		if err := session.Destroy(ctx); err != nil {
			return fmt.Errorf("destroying session: %w", err)
		}

		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}
}
