package enrollment

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/francaisintelligent/backend/api/web"
	"github.com/francaisintelligent/backend/api/weberr"
	"github.com/francaisintelligent/backend/core/claims"
	"github.com/jmoiron/sqlx"
)

// HandleListOwned returns the courses the logged-in user holds a seat in.
func HandleListOwned(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		cs, err := FetchCoursesOwned(ctx, db, clm.UserID)
		if err != nil {
			return fmt.Errorf("fetching courses owned by user[%s]: %w", clm.UserID, err)
		}

		return web.Respond(ctx, w, cs, http.StatusOK)
	}
}
