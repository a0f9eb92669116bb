package enrollment

import (
	"context"
	"fmt"

	"github.com/francaisintelligent/backend/core/course"
	"github.com/jmoiron/sqlx"
)

// Create inserts the enrollment. A user already enrolled in the course
// keeps their original row: the insert is a no-op so a redelivered or
// re-run reconciliation cannot fail on the primary key.
func Create(ctx context.Context, db sqlx.ExtContext, e Enrollment) error {
	const q = `
	INSERT INTO enrollments
		(user_id, course_id, stripe_session_id, metodo_pago, refunded, created_at)
	VALUES
		(:user_id, :course_id, :stripe_session_id, :metodo_pago, :refunded, :created_at)
	ON CONFLICT (user_id, course_id) DO NOTHING`

	if _, err := sqlx.NamedExecContext(ctx, db, q, e); err != nil {
		return fmt.Errorf("inserting enrollment: %w", err)
	}

	return nil
}

func Exists(ctx context.Context, db sqlx.ExtContext, userID string, courseID string) (bool, error) {
	const q = `SELECT COUNT(*) FROM enrollments WHERE user_id = $1 AND course_id = $2`

	var n int
	if err := sqlx.GetContext(ctx, db, &n, q, userID, courseID); err != nil {
		return false, err
	}

	return n > 0, nil
}

// FetchCoursesOwned lists the courses the user is enrolled in.
func FetchCoursesOwned(ctx context.Context, db sqlx.ExtContext, userID string) ([]course.Course, error) {
	const q = `
	SELECT c.* FROM courses AS c
	JOIN enrollments AS e ON e.course_id = c.course_id
	WHERE e.user_id = $1
	ORDER BY c.inicio ASC`

	cs := []course.Course{}
	if err := sqlx.SelectContext(ctx, db, &cs, q, userID); err != nil {
		return nil, err
	}

	return cs, nil
}
