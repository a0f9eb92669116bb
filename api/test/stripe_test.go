package test

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"sync"

	"github.com/francaisintelligent/backend/api/web"
	"github.com/gorilla/mux"
	mock "github.com/stripe/stripe-mock/param"
)

// createdSession is what the mock Stripe backend remembers about a
// checkout session, so webhook tests can build the completion event.
type createdSession struct {
	ID       string
	UserID   string
	CourseID string
	Amount   int64
}

type mockStripe struct {
	mu       sync.Mutex
	sessions map[string]createdSession
}

func newMockStripe() *mockStripe {
	return &mockStripe{sessions: make(map[string]createdSession)}
}

func (m *mockStripe) Session(id string) (createdSession, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	return s, ok
}

func (m *mockStripe) handler() http.Handler {
	checkout := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		params, _ := mock.ParseParams(r)

		md, ok := params["metadata"].(map[string]any)
		if !ok {
			web.Respond(context.Background(), w, nil, 400)
			return
		}

		userID, _ := md["userId"].(string)
		courseID, _ := md["courseId"].(string)
		if userID == "" || courseID == "" {
			web.Respond(context.Background(), w, nil, 400)
			return
		}

		lines, ok := params["line_items"].(map[string]any)
		if !ok || len(lines) != 1 {
			web.Respond(context.Background(), w, nil, 400)
			return
		}

		var amount int64
		for _, li := range lines {
			it := li.(map[string]any)
			if it["quantity"] != "1" {
				web.Respond(context.Background(), w, nil, 400)
				return
			}

			pd := it["price_data"].(map[string]any)
			if pd["currency"] != "mxn" {
				web.Respond(context.Background(), w, nil, 400)
				return
			}

			var err error
			amount, err = parseAmount(pd["unit_amount"])
			if err != nil {
				web.Respond(context.Background(), w, err, 400)
				return
			}
		}

		id := fmt.Sprintf("cs_test_%d", rand.Intn(1_000_000))
		s := createdSession{
			ID:       id,
			UserID:   userID,
			CourseID: courseID,
			Amount:   amount,
		}

		m.mu.Lock()
		m.sessions[id] = s
		m.mu.Unlock()

		out := map[string]any{
			"id":     id,
			"object": "checkout.session",
			"url":    "https://checkout.stripe.test/pay/" + id,
		}
		web.Respond(context.Background(), w, out, 200)
	})

	r := mux.NewRouter()
	r.Handle("/v1/checkout/sessions", checkout).Methods("POST")
	return r
}

func parseAmount(v any) (int64, error) {
	s, ok := v.(string)
	if !ok {
		return 0, fmt.Errorf("unit_amount has unexpected type %T", v)
	}

	var amount int64
	if _, err := fmt.Sscanf(s, "%d", &amount); err != nil {
		return 0, fmt.Errorf("parsing unit_amount[%s]: %w", s, err)
	}
	return amount, nil
}
