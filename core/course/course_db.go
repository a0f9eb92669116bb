package course

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

func Create(ctx context.Context, db sqlx.ExtContext, c Course) error {
	const q = `
	INSERT INTO courses
		(course_id, code, nivel, subnivel, dias, horario, duracion,
		cupo_maximo, alumnos_inscritos, precio, inicio, fin, activo,
		created_at, updated_at)
	VALUES
		(:course_id, :code, :nivel, :subnivel, :dias, :horario, :duracion,
		:cupo_maximo, :alumnos_inscritos, :precio, :inicio, :fin, :activo,
		:created_at, :updated_at)`

	if _, err := sqlx.NamedExecContext(ctx, db, q, c); err != nil {
		return fmt.Errorf("inserting course: %w", err)
	}

	return nil
}

func Fetch(ctx context.Context, db sqlx.ExtContext, id string) (Course, error) {
	const q = `SELECT * FROM courses WHERE course_id = $1`

	var c Course
	if err := sqlx.GetContext(ctx, db, &c, q, id); err != nil {
		return Course{}, err
	}

	return c, nil
}

// FetchActive lists the courses shown on the public home page, soonest
// start first.
func FetchActive(ctx context.Context, db sqlx.ExtContext) ([]Course, error) {
	const q = `SELECT * FROM courses WHERE activo = TRUE ORDER BY inicio ASC`

	cs := []Course{}
	if err := sqlx.SelectContext(ctx, db, &cs, q); err != nil {
		return nil, err
	}

	return cs, nil
}

func FetchAll(ctx context.Context, db sqlx.ExtContext) ([]Course, error) {
	const q = `SELECT * FROM courses ORDER BY created_at DESC`

	cs := []Course{}
	if err := sqlx.SelectContext(ctx, db, &cs, q); err != nil {
		return nil, err
	}

	return cs, nil
}

func Update(ctx context.Context, db sqlx.ExtContext, c Course) error {
	const q = `
	UPDATE courses SET
		nivel = :nivel,
		subnivel = :subnivel,
		dias = :dias,
		horario = :horario,
		duracion = :duracion,
		cupo_maximo = :cupo_maximo,
		precio = :precio,
		inicio = :inicio,
		fin = :fin,
		activo = :activo,
		updated_at = :updated_at,
		version = version + 1
	WHERE course_id = :course_id AND version = :version`

	if _, err := sqlx.NamedExecContext(ctx, db, q, c); err != nil {
		return fmt.Errorf("updating course: %w", err)
	}

	return nil
}

// CountByNivel backs the NIVEL-### code generation.
func CountByNivel(ctx context.Context, db sqlx.ExtContext, nivel string) (int, error) {
	const q = `SELECT COUNT(*) FROM courses WHERE nivel = $1`

	var n int
	if err := sqlx.GetContext(ctx, db, &n, q, nivel); err != nil {
		return 0, err
	}

	return n, nil
}

// Enroll consumes exactly one seat. The WHERE clause re-checks capacity so
// a concurrent reconciliation can never push the count past cupo_maximo.
func Enroll(ctx context.Context, db sqlx.ExtContext, id string, now time.Time) error {
	const q = `
	UPDATE courses SET
		alumnos_inscritos = alumnos_inscritos + 1,
		updated_at = $2,
		version = version + 1
	WHERE course_id = $1 AND alumnos_inscritos < cupo_maximo`

	res, err := db.ExecContext(ctx, q, id, now)
	if err != nil {
		return fmt.Errorf("incrementing enrolled count: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading update result: %w", err)
	}

	if n == 0 {
		return fmt.Errorf("course[%s] has no seats available", id)
	}

	return nil
}
