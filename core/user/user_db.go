package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

func Create(ctx context.Context, db sqlx.ExtContext, u User) error {
	const q = `
	INSERT INTO users
		(user_id, folio, email, password_hash, role, status, nombre,
		apellido_paterno, apellido_materno, telefono, created_at, updated_at)
	VALUES
		(:user_id, :folio, :email, :password_hash, :role, :status, :nombre,
		:apellido_paterno, :apellido_materno, :telefono, :created_at, :updated_at)`

	if _, err := sqlx.NamedExecContext(ctx, db, q, u); err != nil {
		return fmt.Errorf("inserting user: %w", err)
	}

	return nil
}

func Fetch(ctx context.Context, db sqlx.ExtContext, id string) (User, error) {
	const q = `SELECT * FROM users WHERE user_id = $1`

	var u User
	if err := sqlx.GetContext(ctx, db, &u, q, id); err != nil {
		return User{}, err
	}

	return u, nil
}

func FetchByEmail(ctx context.Context, db sqlx.ExtContext, email string) (User, error) {
	const q = `SELECT * FROM users WHERE email = $1`

	var u User
	if err := sqlx.GetContext(ctx, db, &u, q, email); err != nil {
		return User{}, err
	}

	return u, nil
}

func FetchByFolio(ctx context.Context, db sqlx.ExtContext, folio string) (User, error) {
	const q = `SELECT * FROM users WHERE folio = $1`

	var u User
	if err := sqlx.GetContext(ctx, db, &u, q, folio); err != nil {
		return User{}, err
	}

	return u, nil
}

// LastStudentFolio returns the highest folio assigned to a student, or ""
// when no student exists yet.
func LastStudentFolio(ctx context.Context, db sqlx.ExtContext) (string, error) {
	const q = `SELECT folio FROM users WHERE role = 'STUDENT' ORDER BY folio DESC LIMIT 1`

	var folio string
	if err := sqlx.GetContext(ctx, db, &folio, q); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", err
	}

	return folio, nil
}

// UpdateProfile refreshes the contact fields of an existing account.
func UpdateProfile(ctx context.Context, db sqlx.ExtContext, u User) error {
	const q = `
	UPDATE users SET
		nombre = :nombre,
		apellido_paterno = :apellido_paterno,
		apellido_materno = :apellido_materno,
		telefono = :telefono,
		updated_at = :updated_at,
		version = version + 1
	WHERE user_id = :user_id`

	if _, err := sqlx.NamedExecContext(ctx, db, q, u); err != nil {
		return fmt.Errorf("updating user profile: %w", err)
	}

	return nil
}

// Activate promotes the account to ACTIVE. Activating an already-ACTIVE
// account is a harmless no-op.
func Activate(ctx context.Context, db sqlx.ExtContext, id string, now time.Time) error {
	const q = `
	UPDATE users SET
		status = $2,
		updated_at = $3,
		version = version + 1
	WHERE user_id = $1 AND status <> $2`

	if _, err := db.ExecContext(ctx, q, id, StatusActive, now); err != nil {
		return fmt.Errorf("activating user: %w", err)
	}

	return nil
}
