package test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/francaisintelligent/backend/api"
	"github.com/francaisintelligent/backend/api/background"
	"github.com/francaisintelligent/backend/config"
	"github.com/francaisintelligent/backend/core/user"
	"github.com/francaisintelligent/backend/database"
	"github.com/francaisintelligent/backend/email"
	"github.com/francaisintelligent/backend/rate"
	"github.com/jmoiron/sqlx"
	"github.com/ory/dockertest/v3"
	"github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v74"
	stripecl "github.com/stripe/stripe-go/v74/client"
)

const (
	adminFolio    = "ADTF001"
	adminPass     = "test-admin-pass"
	webhookSecret = "whsec_test_secret"
)

type TestEnv struct {
	DB            *sqlx.DB
	URL           string
	Server        *httptest.Server
	Stripe        *mockStripe
	Mail          *mockMailer
	WebhookSecret string
	AdminFolio    string
	AdminPass     string

	client *http.Client
}

// NewTestEnv spins up a throwaway postgres container, migrates the schema,
// seeds the admin account and starts the full API behind an httptest
// server wired to a mock Stripe backend and a recording mailer.
func NewTestEnv(t *testing.T, name string) (*TestEnv, error) {
	t.Helper()

	pool, err := dockertest.NewPool("")
	if err != nil {
		return nil, fmt.Errorf("connecting to docker: %w", err)
	}
	pool.MaxWait = time.Minute

	res, err := pool.Run("postgres", "15-alpine", []string{
		"POSTGRES_USER=postgres",
		"POSTGRES_PASSWORD=postgres",
		"POSTGRES_DB=" + name,
	})
	if err != nil {
		return nil, fmt.Errorf("starting postgres container: %w", err)
	}
	t.Cleanup(func() {
		if err := pool.Purge(res); err != nil {
			t.Logf("purging postgres container: %v", err)
		}
	})

	dbCfg := config.DB{
		User:       "postgres",
		Password:   "postgres",
		Host:       "localhost:" + res.GetPort("5432/tcp"),
		Name:       name,
		DisableTLS: true,
	}

	var db *sqlx.DB
	if err := pool.Retry(func() error {
		var err error
		db, err = database.Open(dbCfg)
		return err
	}); err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := database.Migrate(db); err != nil {
		return nil, fmt.Errorf("migrating schema: %w", err)
	}

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	adminCfg := config.Admin{
		Folio:    adminFolio,
		Email:    "admin@test.local",
		Password: adminPass,
	}
	if err := user.EnsureAdmin(context.Background(), db, adminCfg, logger); err != nil {
		return nil, fmt.Errorf("seeding admin: %w", err)
	}

	ms := newMockStripe()
	stripeSrv := httptest.NewServer(ms.handler())
	t.Cleanup(stripeSrv.Close)

	backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		URL:           stripe.String(stripeSrv.URL),
		LeveledLogger: &stripe.LeveledLogger{Level: stripe.LevelError},
	})
	strp := &stripecl.API{}
	strp.Init("sk_test_mock", &stripe.Backends{API: backend, Connect: backend, Uploads: backend})

	mail := &mockMailer{}

	sessionManager := scs.New()
	sessionManager.Lifetime = time.Hour

	mux := api.APIMux(api.APIConfig{
		Log:                 logger,
		DB:                  db,
		Session:             sessionManager,
		Mailer:              mail,
		Background:          background.New(logger),
		Stripe:              strp,
		StripeWebhookSecret: webhookSecret,
		FrontendURL:         "http://frontend.test",
		Limiter:             rate.NewLimiter(1000, 100, rate.Every(time.Millisecond)),
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("building cookie jar: %w", err)
	}
	client := srv.Client()
	client.Jar = jar

	return &TestEnv{
		DB:            db,
		URL:           srv.URL,
		Server:        srv,
		Stripe:        ms,
		Mail:          mail,
		WebhookSecret: webhookSecret,
		AdminFolio:    adminFolio,
		AdminPass:     adminPass,
		client:        client,
	}, nil
}

func (e *TestEnv) Client() *http.Client {
	return e.client
}

// Login opens a session for the given credentials on the env's client.
func Login(e *TestEnv, folio string, password string) error {
	body, err := json.Marshal(map[string]string{
		"folio":    folio,
		"password": password,
	})
	if err != nil {
		return err
	}

	w, err := e.Client().Post(e.URL+"/auth/login", "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer w.Body.Close()

	if w.StatusCode != http.StatusOK {
		return fmt.Errorf("login failed: status code %s", w.Status)
	}
	return nil
}

func Logout(e *TestEnv) error {
	w, err := e.Client().Post(e.URL+"/auth/logout", "application/json", nil)
	if err != nil {
		return err
	}
	defer w.Body.Close()

	if w.StatusCode != http.StatusNoContent {
		return fmt.Errorf("logout failed: status code %s", w.Status)
	}
	return nil
}

type mockMailer struct {
	mu   sync.Mutex
	sent []email.Confirmation
}

func (m *mockMailer) SendConfirmation(ctx context.Context, c email.Confirmation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, c)
	return nil
}

func (m *mockMailer) Sent() []email.Confirmation {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]email.Confirmation, len(m.sent))
	copy(out, m.sent)
	return out
}

// WaitForSent polls until n confirmations have been recorded. The mail
// dispatch runs on a background goroutine after the webhook responds.
func (m *mockMailer) WaitForSent(n int, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if len(m.Sent()) >= n {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return len(m.Sent()) >= n
}
