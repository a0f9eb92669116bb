package course

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/francaisintelligent/backend/api/web"
	"github.com/francaisintelligent/backend/api/weberr"
	"github.com/francaisintelligent/backend/database"
	"github.com/francaisintelligent/backend/validate"
	"github.com/jmoiron/sqlx"
)

// HandleList returns the active courses for the public home page.
func HandleList(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		cs, err := FetchActive(ctx, db)
		if err != nil {
			return fmt.Errorf("fetching active courses: %w", err)
		}

		return web.Respond(ctx, w, cs, http.StatusOK)
	}
}

// HandleListAll returns every course, including inactive ones, for the
// admin dashboard.
func HandleListAll(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		cs, err := FetchAll(ctx, db)
		if err != nil {
			return fmt.Errorf("fetching all courses: %w", err)
		}

		return web.Respond(ctx, w, cs, http.StatusOK)
	}
}

func HandleShow(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		id := web.Param(r, "id")
		if err := validate.CheckID(id); err != nil {
			return weberr.BadRequest(err)
		}

		c, err := Fetch(ctx, db, id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return weberr.NotFound(fmt.Errorf("course[%s] not found: %w", id, err))
			}
			return fmt.Errorf("fetching course[%s]: %w", id, err)
		}

		return web.Respond(ctx, w, c, http.StatusOK)
	}
}

func HandleCreate(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var cn CourseNew
		if err := web.Decode(w, r, &cn); err != nil {
			return weberr.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
		}

		if err := validate.Check(cn); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
		}

		n, err := CountByNivel(ctx, db, cn.Nivel)
		if err != nil {
			return fmt.Errorf("counting courses for nivel[%s]: %w", cn.Nivel, err)
		}

		now := time.Now().UTC()
		c := Course{
			ID:         validate.GenerateID(),
			Code:       fmt.Sprintf("%s-%03d", strings.ToUpper(cn.Nivel), n+1),
			Nivel:      cn.Nivel,
			Subnivel:   cn.Subnivel,
			Dias:       cn.Dias,
			Horario:    cn.Horario,
			Duracion:   cn.Duracion,
			CupoMaximo: cn.CupoMaximo,
			Precio:     cn.Precio,
			Inicio:     cn.Inicio,
			Fin:        cn.Fin,
			Activo:     cn.Activo,
			CreatedAt:  now,
			UpdatedAt:  now,
		}

		if err := Create(ctx, db, c); err != nil {
			if database.IsUniqueViolation(err) {
				return weberr.Conflict(fmt.Errorf("course code[%s] already taken: %w", c.Code, err))
			}
			return fmt.Errorf("creating course: %w", err)
		}

		return web.Respond(ctx, w, c, http.StatusCreated)
	}
}

func HandleUpdate(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		id := web.Param(r, "id")
		if err := validate.CheckID(id); err != nil {
			return weberr.BadRequest(err)
		}

		var cu CourseUp
		if err := web.Decode(w, r, &cu); err != nil {
			return weberr.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
		}

		if err := validate.Check(cu); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
		}

		c, err := Fetch(ctx, db, id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return weberr.NotFound(fmt.Errorf("course[%s] not found: %w", id, err))
			}
			return fmt.Errorf("fetching course[%s]: %w", id, err)
		}

		if cu.Nivel != nil {
			c.Nivel = *cu.Nivel
		}
		if cu.Subnivel != nil {
			c.Subnivel = *cu.Subnivel
		}
		if cu.Dias != nil {
			c.Dias = *cu.Dias
		}
		if cu.Horario != nil {
			c.Horario = *cu.Horario
		}
		if cu.Duracion != nil {
			c.Duracion = *cu.Duracion
		}
		if cu.CupoMaximo != nil {
			if *cu.CupoMaximo < c.AlumnosInscritos {
				err := fmt.Errorf("cupoMaximo[%d] below current enrollment[%d]", *cu.CupoMaximo, c.AlumnosInscritos)
				return weberr.NewError(err, err.Error(), http.StatusBadRequest)
			}
			c.CupoMaximo = *cu.CupoMaximo
		}
		if cu.Precio != nil {
			c.Precio = *cu.Precio
		}
		if cu.Inicio != nil {
			c.Inicio = *cu.Inicio
		}
		if cu.Fin != nil {
			c.Fin = *cu.Fin
		}
		if cu.Activo != nil {
			c.Activo = *cu.Activo
		}
		c.UpdatedAt = time.Now().UTC()

		if err := Update(ctx, db, c); err != nil {
			return fmt.Errorf("updating course[%s]: %w", id, err)
		}

		c.Version++
		return web.Respond(ctx, w, c, http.StatusOK)
	}
}
