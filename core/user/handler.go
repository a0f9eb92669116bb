package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/francaisintelligent/backend/api/web"
	"github.com/francaisintelligent/backend/api/weberr"
	"github.com/francaisintelligent/backend/core/claims"
	"github.com/francaisintelligent/backend/core/course"
	"github.com/francaisintelligent/backend/core/enrollment"
	"github.com/francaisintelligent/backend/database"
	"github.com/francaisintelligent/backend/random"
	"github.com/francaisintelligent/backend/validate"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// HandleRegister is the student self-signup. It creates (or refreshes) an
// INACTIVE account; the seat and the enrollment are consumed later by the
// payment webhook, never here.
func HandleRegister(db *sqlx.DB, log logrus.FieldLogger) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var rn RegistrationNew
		if err := web.Decode(w, r, &rn); err != nil {
			return weberr.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
		}

		if err := validate.Check(rn); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
		}

		if err := validate.CheckID(rn.CursoID); err != nil {
			return weberr.BadRequest(err)
		}

		c, err := course.Fetch(ctx, db, rn.CursoID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return weberr.NotFound(fmt.Errorf("course[%s] not found: %w", rn.CursoID, err))
			}
			return fmt.Errorf("fetching course[%s]: %w", rn.CursoID, err)
		}

		if c.Full() {
			err := fmt.Errorf("course[%s] has no seats available", c.ID)
			return weberr.NewError(err, "el curso ya no tiene cupo disponible", http.StatusBadRequest)
		}

		now := time.Now().UTC()

		existing, err := FetchByEmail(ctx, db, rn.Email)
		if err == nil {
			existing.Nombre = rn.Nombre
			existing.ApellidoPaterno = rn.ApellidoPaterno
			existing.ApellidoMaterno = rn.ApellidoMaterno
			existing.Telefono = rn.Telefono
			existing.UpdatedAt = now

			if err := UpdateProfile(ctx, db, existing); err != nil {
				return fmt.Errorf("updating profile of user[%s]: %w", existing.ID, err)
			}

			enrolled, err := enrollment.Exists(ctx, db, existing.ID, c.ID)
			if err != nil {
				return fmt.Errorf("checking enrollment of user[%s] in course[%s]: %w", existing.ID, c.ID, err)
			}

			reg := Registration{
				UserID:      existing.ID,
				Folio:       existing.Folio,
				Email:       existing.Email,
				CursoID:     c.ID,
				CursoNombre: c.Nombre(),
				Precio:      c.Precio,
				YaInscrito:  enrolled,
			}

			status := http.StatusCreated
			if enrolled {
				status = http.StatusOK
			}
			return web.Respond(ctx, w, reg, status)
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("fetching user by email: %w", err)
		}

		last, err := LastStudentFolio(ctx, db)
		if err != nil {
			return fmt.Errorf("fetching last student folio: %w", err)
		}
		folio := NextFolio(last)

		tempPass, err := random.StringSecure(8)
		if err != nil {
			return fmt.Errorf("generating temporary password: %w", err)
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(tempPass), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hashing temporary password: %w", err)
		}

		u := User{
			ID:              validate.GenerateID(),
			Folio:           folio,
			Email:           rn.Email,
			PasswordHash:    string(hash),
			Role:            claims.RoleStudent,
			Status:          StatusInactive,
			Nombre:          rn.Nombre,
			ApellidoPaterno: rn.ApellidoPaterno,
			ApellidoMaterno: rn.ApellidoMaterno,
			Telefono:        rn.Telefono,
			CreatedAt:       now,
			UpdatedAt:       now,
		}

		if err := Create(ctx, db, u); err != nil {
			if database.IsUniqueViolation(err) {
				return weberr.Conflict(fmt.Errorf("user with email or folio already exists: %w", err))
			}
			return fmt.Errorf("creating user: %w", err)
		}

		// TODO: send the credentials by email instead of logging them.
		log.WithFields(logrus.Fields{
			"folio":    folio,
			"password": tempPass,
		}).Info("temporary credentials issued")

		reg := Registration{
			UserID:         u.ID,
			Folio:          u.Folio,
			Email:          u.Email,
			CursoID:        c.ID,
			CursoNombre:    c.Nombre(),
			Precio:         c.Precio,
			EsNuevoUsuario: true,
		}

		return web.Respond(ctx, w, reg, http.StatusCreated)
	}
}

// HandleShowCurrent returns the account behind the session.
func HandleShowCurrent(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		u, err := Fetch(ctx, db, clm.UserID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return weberr.NotFound(fmt.Errorf("user[%s] not found: %w", clm.UserID, err))
			}
			return fmt.Errorf("fetching user[%s]: %w", clm.UserID, err)
		}

		return web.Respond(ctx, w, u, http.StatusOK)
	}
}
