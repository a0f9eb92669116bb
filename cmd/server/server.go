package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/ardanlabs/conf/v3"
	"github.com/francaisintelligent/backend/api"
	"github.com/francaisintelligent/backend/api/background"
	"github.com/francaisintelligent/backend/config"
	"github.com/francaisintelligent/backend/core/user"
	"github.com/francaisintelligent/backend/database"
	"github.com/francaisintelligent/backend/email"
	"github.com/francaisintelligent/backend/rate"
	"github.com/sirupsen/logrus"
	stripecl "github.com/stripe/stripe-go/v74/client"
)

func main() {
	log := logrus.New()
	log.SetOutput(os.Stdout)

	if err := Run(log); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

func Run(logger *logrus.Logger) error {
	logger.Infof("starting server")
	defer logger.Info("shutdown complete")

	const prefix = "FI"
	var cfg config.Config
	if _, err := conf.Parse(prefix, &cfg); err != nil {
		return fmt.Errorf("parsing config: %w", err)
	}

	lw := logger.Writer()
	defer lw.Close()
	errLog := log.New(lw, "", 0)

	db, err := database.Open(cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to open db connection: %w", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := user.EnsureAdmin(ctx, db, cfg.Admin, logger); err != nil {
		return fmt.Errorf("failed to seed the admin account: %w", err)
	}

	sessionManager := scs.New()
	sessionManager.Lifetime = 24 * time.Hour

	mail := email.New(cfg.Email.APIKey, cfg.Email.From, cfg.Email.Name, cfg.Frontend.URL)

	bg := background.New(logger)

	strp := &stripecl.API{}
	strp.Init(cfg.Stripe.APISecret, nil)

	limiter := rate.NewLimiter(cfg.Limiter.Burst, cfg.Limiter.Expiry, rate.Every(cfg.Limiter.Interval))

	mux := api.APIMux(api.APIConfig{
		CorsOrigin:          cfg.Cors.Origin,
		Log:                 logger,
		DB:                  db,
		Session:             sessionManager,
		Mailer:              mail,
		Background:          bg,
		Stripe:              strp,
		StripeWebhookSecret: cfg.Stripe.WebhookSecret,
		FrontendURL:         cfg.Frontend.URL,
		Limiter:             limiter,
	})

	srv := http.Server{
		Handler:      mux,
		Addr:         cfg.Web.Address,
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: cfg.Web.WriteTimeout,
		IdleTimeout:  cfg.Web.IdleTimeout,
		ErrorLog:     errLog,
	}

	serverErrors := make(chan error, 1)

	go func() {
		logger.Infof("starting api router at %s", srv.Addr)
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Infof("shutting down: signal %s", sig)

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Web.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			srv.Close()
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}

		if err := bg.Shutdown(ctx); err != nil {
			return fmt.Errorf("could not complete all background tasks: %w", err)
		}
	}
	return nil
}
