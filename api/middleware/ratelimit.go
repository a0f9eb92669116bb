package middleware

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/francaisintelligent/backend/api/web"
	"github.com/francaisintelligent/backend/api/weberr"
	"github.com/francaisintelligent/backend/rate"
)

// RateLimit rejects clients that exceed the per-IP budget. Applied to the
// endpoints an anonymous visitor can hammer: login and registration.
func RateLimit(lim *rate.Limiter) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {

			ip, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				ip = r.RemoteAddr
			}

			if !lim.Check(ip) {
				err := errors.New("rate limit exceeded")
				return weberr.NewError(err, err.Error(), http.StatusTooManyRequests)
			}

			return handler(ctx, w, r)
		}
		return h
	}
	return m
}
