package course

import (
	"strings"
	"time"
)

type Course struct {
	ID               string    `json:"id" db:"course_id"`
	Code             string    `json:"code" db:"code"`
	Nivel            string    `json:"nivel" db:"nivel"`
	Subnivel         string    `json:"subnivel" db:"subnivel"`
	Dias             string    `json:"dias" db:"dias"`
	Horario          string    `json:"horario" db:"horario"`
	Duracion         string    `json:"duracion" db:"duracion"`
	CupoMaximo       int       `json:"cupoMaximo" db:"cupo_maximo"`
	AlumnosInscritos int       `json:"alumnosInscritos" db:"alumnos_inscritos"`
	Precio           int       `json:"precio" db:"precio"`
	Inicio           time.Time `json:"inicio" db:"inicio"`
	Fin              time.Time `json:"fin" db:"fin"`
	Activo           bool      `json:"activo" db:"activo"`
	CreatedAt        time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt        time.Time `json:"updatedAt" db:"updated_at"`
	Version          int       `json:"-" db:"version"`
}

// Nombre is the display name shown on checkout pages and emails.
func (c Course) Nombre() string {
	return strings.TrimSpace(c.Nivel + " " + c.Subnivel)
}

// Full reports whether every seat has been paid for.
func (c Course) Full() bool {
	return c.AlumnosInscritos >= c.CupoMaximo
}

type CourseNew struct {
	Nivel      string    `json:"nivel" validate:"required"`
	Subnivel   string    `json:"subnivel"`
	Dias       string    `json:"dias" validate:"required"`
	Horario    string    `json:"horario" validate:"required"`
	Duracion   string    `json:"duracion" validate:"required"`
	CupoMaximo int       `json:"cupoMaximo" validate:"required,gte=1"`
	Precio     int       `json:"precio" validate:"gte=0"`
	Inicio     time.Time `json:"inicio" validate:"required"`
	Fin        time.Time `json:"fin" validate:"required,gtfield=Inicio"`
	Activo     bool      `json:"activo"`
}

type CourseUp struct {
	Nivel      *string    `json:"nivel"`
	Subnivel   *string    `json:"subnivel"`
	Dias       *string    `json:"dias"`
	Horario    *string    `json:"horario"`
	Duracion   *string    `json:"duracion"`
	CupoMaximo *int       `json:"cupoMaximo" validate:"omitempty,gte=1"`
	Precio     *int       `json:"precio" validate:"omitempty,gte=0"`
	Inicio     *time.Time `json:"inicio"`
	Fin        *time.Time `json:"fin"`
	Activo     *bool      `json:"activo"`
}
