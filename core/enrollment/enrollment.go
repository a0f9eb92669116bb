package enrollment

import "time"

// Enrollment links a user to a course they hold a paid seat in. Rows are
// created only by the payment webhook reconciliation.
type Enrollment struct {
	UserID          string    `json:"userId" db:"user_id"`
	CourseID        string    `json:"courseId" db:"course_id"`
	StripeSessionID string    `json:"-" db:"stripe_session_id"`
	MetodoPago      string    `json:"metodoPago" db:"metodo_pago"`
	Refunded        bool      `json:"refunded" db:"refunded"`
	CreatedAt       time.Time `json:"createdAt" db:"created_at"`
}
