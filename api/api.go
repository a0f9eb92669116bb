package api

import (
	"context"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/francaisintelligent/backend/api/background"
	"github.com/francaisintelligent/backend/api/middleware"
	"github.com/francaisintelligent/backend/api/web"
	"github.com/francaisintelligent/backend/core/auth"
	"github.com/francaisintelligent/backend/core/course"
	"github.com/francaisintelligent/backend/core/enrollment"
	"github.com/francaisintelligent/backend/core/payment"
	"github.com/francaisintelligent/backend/core/user"
	"github.com/francaisintelligent/backend/rate"
	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	stripecl "github.com/stripe/stripe-go/v74/client"
)

type APIConfig struct {
	CorsOrigin          string
	Log                 logrus.FieldLogger
	DB                  *sqlx.DB
	Session             *scs.SessionManager
	Mailer              payment.Mailer
	Background          *background.Background
	Stripe              *stripecl.API
	StripeWebhookSecret string
	FrontendURL         string
	Limiter             *rate.Limiter
}

type api struct {
	*mux.Router
	mw  []web.Middleware
	log logrus.FieldLogger
}

func APIMux(cfg APIConfig) http.Handler {
	a := &api{
		Router: mux.NewRouter(),
		log:    cfg.Log,
	}

	a.mw = append(a.mw, auth.LoadAndSave(cfg.Session))
	a.mw = append(a.mw, middleware.RequestID())
	a.mw = append(a.mw, middleware.Logger(cfg.Log))
	a.mw = append(a.mw, middleware.Errors(cfg.Log))
	a.mw = append(a.mw, middleware.Panics())

	if cfg.CorsOrigin != "" {
		a.mw = append(a.mw, middleware.Cors(cfg.CorsOrigin))

		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			w.WriteHeader(http.StatusNoContent)
			return nil
		}

		a.Handle(http.MethodOptions, "/{path:.*}", h)
	}

	authen := auth.Authenticate(cfg.Session)
	admin := auth.Admin(cfg.Session)
	limited := middleware.RateLimit(cfg.Limiter)

	a.Handle(http.MethodGet, "/health", handleHealth(cfg.DB))

	a.Handle(http.MethodPost, "/auth/login", auth.HandleLogin(cfg.DB, cfg.Session), limited)
	a.Handle(http.MethodPost, "/auth/logout", auth.HandleLogout(cfg.Session))

	a.Handle(http.MethodGet, "/users/current", user.HandleShowCurrent(cfg.DB), authen)
	a.Handle(http.MethodPost, "/registro", user.HandleRegister(cfg.DB, cfg.Log), limited)

	a.Handle(http.MethodGet, "/cursos/admin", course.HandleListAll(cfg.DB), admin)
	a.Handle(http.MethodGet, "/cursos/mios", enrollment.HandleListOwned(cfg.DB), authen)
	a.Handle(http.MethodGet, "/cursos/{id}", course.HandleShow(cfg.DB))
	a.Handle(http.MethodGet, "/cursos", course.HandleList(cfg.DB))
	a.Handle(http.MethodPost, "/cursos", course.HandleCreate(cfg.DB), admin)
	a.Handle(http.MethodPut, "/cursos/{id}", course.HandleUpdate(cfg.DB), admin)

	a.Handle(http.MethodPost, "/checkout", payment.HandleCheckout(cfg.DB, cfg.Stripe, cfg.FrontendURL))
	a.Handle(http.MethodPost, "/webhook", payment.HandleWebhook(cfg.DB, cfg.StripeWebhookSecret, cfg.Background, cfg.Mailer))

	return a.Router
}

func (a *api) Handle(method string, path string, handler web.Handler, mw ...web.Middleware) {

	handler = web.WrapMiddleware(mw, handler)

	handler = web.WrapMiddleware(a.mw, handler)

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

		ctx := r.Context()

		if err := handler(ctx, w, r); err != nil {

			a.log.WithFields(logrus.Fields{
				"req_id":  middleware.ContextRequestID(ctx),
				"message": err,
			}).Error("ERROR")
		}
	})

	a.Router.Handle(path, h).Methods(method)
}
