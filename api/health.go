package api

import (
	"context"
	"net/http"
	"time"

	"github.com/francaisintelligent/backend/api/web"
	"github.com/francaisintelligent/backend/database"
	"github.com/jmoiron/sqlx"
)

func handleHealth(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		status := struct {
			OK        bool      `json:"ok"`
			Service   string    `json:"service"`
			Timestamp time.Time `json:"timestamp"`
		}{
			OK:        true,
			Service:   "francaisintelligent-backend",
			Timestamp: time.Now().UTC(),
		}

		code := http.StatusOK
		if err := database.StatusCheck(ctx, db); err != nil {
			status.OK = false
			code = http.StatusServiceUnavailable
		}

		return web.Respond(ctx, w, status, code)
	}
}
