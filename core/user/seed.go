package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/francaisintelligent/backend/config"
	"github.com/francaisintelligent/backend/core/claims"
	"github.com/francaisintelligent/backend/database"
	"github.com/francaisintelligent/backend/validate"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// EnsureAdmin creates the bootstrap admin account on first boot. Skipped
// when no admin password is configured, and a no-op once the account
// exists.
func EnsureAdmin(ctx context.Context, db *sqlx.DB, cfg config.Admin, log logrus.FieldLogger) error {
	if cfg.Password == "" {
		log.Info("admin seed skipped: no password configured")
		return nil
	}

	_, err := FetchByFolio(ctx, db, cfg.Folio)
	if err == nil {
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("fetching admin[%s]: %w", cfg.Folio, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing admin password: %w", err)
	}

	now := time.Now().UTC()
	u := User{
		ID:           validate.GenerateID(),
		Folio:        cfg.Folio,
		Email:        cfg.Email,
		PasswordHash: string(hash),
		Role:         claims.RoleAdmin,
		Status:       StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := Create(ctx, db, u); err != nil {
		// another instance may have seeded first
		if database.IsUniqueViolation(err) {
			return nil
		}
		return fmt.Errorf("creating admin: %w", err)
	}

	log.WithField("folio", cfg.Folio).Info("admin account seeded")
	return nil
}
