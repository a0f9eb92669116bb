package user

import "time"

const (
	StatusInactive = "INACTIVE"
	StatusActive   = "ACTIVE"
)

type User struct {
	ID              string    `json:"id" db:"user_id"`
	Folio           string    `json:"folio" db:"folio"`
	Email           string    `json:"email" db:"email"`
	PasswordHash    string    `json:"-" db:"password_hash"`
	Role            string    `json:"role" db:"role"`
	Status          string    `json:"status" db:"status"`
	Nombre          string    `json:"nombre" db:"nombre"`
	ApellidoPaterno string    `json:"apellidoPaterno" db:"apellido_paterno"`
	ApellidoMaterno string    `json:"apellidoMaterno" db:"apellido_materno"`
	Telefono        string    `json:"telefono" db:"telefono"`
	CreatedAt       time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time `json:"updatedAt" db:"updated_at"`
	Version         int       `json:"-" db:"version"`
}

// RegistrationNew is the student self-signup payload.
type RegistrationNew struct {
	Email           string `json:"email" validate:"required,email"`
	Nombre          string `json:"nombre" validate:"required"`
	ApellidoPaterno string `json:"apellidoPaterno" validate:"required"`
	ApellidoMaterno string `json:"apellidoMaterno"`
	Telefono        string `json:"telefono" validate:"required"`
	CursoID         string `json:"cursoId" validate:"required"`
}

// Registration is what the signup endpoint returns. The account stays
// INACTIVE until the payment webhook reconciles it; YaInscrito flags the
// case where the user already holds a paid seat in the course.
type Registration struct {
	UserID         string `json:"userId"`
	Folio          string `json:"folio"`
	Email          string `json:"email"`
	CursoID        string `json:"cursoId"`
	CursoNombre    string `json:"cursoNombre"`
	Precio         int    `json:"precio"`
	EsNuevoUsuario bool   `json:"esNuevoUsuario"`
	YaInscrito     bool   `json:"yaInscrito"`
}
