package test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"path"
	"testing"
	"time"

	"github.com/francaisintelligent/backend/core/course"
	"github.com/francaisintelligent/backend/core/user"
	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/webhook"
)

func (e *TestEnv) createCourseOK(t *testing.T, cn course.CourseNew) course.Course {
	t.Helper()

	if err := Login(e, e.AdminFolio, e.AdminPass); err != nil {
		t.Fatal(err)
	}
	defer Logout(e)

	body, err := json.Marshal(cn)
	if err != nil {
		t.Fatal(err)
	}

	w, err := e.Client().Post(e.URL+"/cursos", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	defer w.Body.Close()

	if w.StatusCode != http.StatusCreated {
		t.Fatalf("can't create course: status code %s", w.Status)
	}

	var c course.Course
	if err := json.NewDecoder(w.Body).Decode(&c); err != nil {
		t.Fatalf("cannot unmarshal created course: %v", err)
	}

	return c
}

func courseNew(cupo int, precio int) course.CourseNew {
	now := time.Now().UTC()
	return course.CourseNew{
		Nivel:      "A1",
		Subnivel:   "Básico",
		Dias:       "Lunes y Miércoles",
		Horario:    "18:00 - 20:00",
		Duracion:   "8 semanas",
		CupoMaximo: cupo,
		Precio:     precio,
		Inicio:     now.AddDate(0, 0, 7),
		Fin:        now.AddDate(0, 2, 0),
		Activo:     true,
	}
}

func (e *TestEnv) register(t *testing.T, email string, courseID string) (user.Registration, int) {
	t.Helper()

	payload := map[string]string{
		"email":           email,
		"nombre":          "Marie",
		"apellidoPaterno": "Curie",
		"telefono":        "5512345678",
		"cursoId":         courseID,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatal(err)
	}

	w, err := e.Client().Post(e.URL+"/registro", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	defer w.Body.Close()

	if w.StatusCode >= 400 {
		return user.Registration{}, w.StatusCode
	}

	var reg user.Registration
	if err := json.NewDecoder(w.Body).Decode(&reg); err != nil {
		t.Fatalf("cannot unmarshal registration: %v", err)
	}

	return reg, w.StatusCode
}

func (e *TestEnv) registerOK(t *testing.T, email string, courseID string) user.Registration {
	t.Helper()

	reg, status := e.register(t, email, courseID)
	if status >= 400 {
		t.Fatalf("can't register %s: status code %d", email, status)
	}
	return reg
}

// checkoutOK creates a checkout session and returns its id, recovered from
// the redirect URL the same way the frontend would.
func (e *TestEnv) checkoutOK(t *testing.T, courseID string, userID string) string {
	t.Helper()

	body, err := json.Marshal(map[string]string{
		"courseId": courseID,
		"userId":   userID,
	})
	if err != nil {
		t.Fatal(err)
	}

	w, err := e.Client().Post(e.URL+"/checkout", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	defer w.Body.Close()

	if w.StatusCode != http.StatusOK {
		t.Fatalf("can't create checkout session: status code %s", w.Status)
	}

	var out struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(w.Body).Decode(&out); err != nil {
		t.Fatalf("cannot unmarshal checkout response: %v", err)
	}

	return path.Base(out.URL)
}

// completedEvent builds and signs a checkout.session.completed event for
// the given session, returning the payload and the signature header.
func (e *TestEnv) completedEvent(t *testing.T, s createdSession) ([]byte, string) {
	t.Helper()

	obj := map[string]any{
		"id":                   s.ID,
		"object":               "checkout.session",
		"mode":                 "payment",
		"amount_total":         s.Amount,
		"currency":             "mxn",
		"payment_intent":       "pi_" + s.ID,
		"payment_method_types": []string{"card", "oxxo"},
		"metadata": map[string]string{
			"userId":   s.UserID,
			"courseId": s.CourseID,
		},
	}

	return e.signedEvent(t, "checkout.session.completed", obj)
}

func (e *TestEnv) signedEvent(t *testing.T, kind string, session map[string]any) ([]byte, string) {
	t.Helper()

	raw, err := json.Marshal(session)
	if err != nil {
		t.Fatal(err)
	}

	evt := stripe.Event{
		APIVersion: "2022-11-15",
		Type:       kind,
		Data: &stripe.EventData{
			Raw: json.RawMessage(raw),
		},
	}

	b, err := json.Marshal(evt)
	if err != nil {
		t.Fatal(err)
	}

	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   b,
		Secret:    e.WebhookSecret,
		Timestamp: time.Now(),
	})

	return b, signed.Header
}

func (e *TestEnv) deliverWebhook(t *testing.T, body []byte, sig string) *http.Response {
	t.Helper()

	r, err := http.NewRequest(http.MethodPost, e.URL+"/webhook", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	r.Header.Set("Stripe-Signature", sig)

	w, err := e.Client().Do(r)
	if err != nil {
		t.Fatal(err)
	}
	return w
}

func (e *TestEnv) fetchUser(t *testing.T, id string) user.User {
	t.Helper()

	u, err := user.Fetch(context.Background(), e.DB, id)
	if err != nil {
		t.Fatalf("fetching user[%s]: %v", id, err)
	}
	return u
}

func (e *TestEnv) fetchCourse(t *testing.T, id string) course.Course {
	t.Helper()

	c, err := course.Fetch(context.Background(), e.DB, id)
	if err != nil {
		t.Fatalf("fetching course[%s]: %v", id, err)
	}
	return c
}

func (e *TestEnv) countRows(t *testing.T, query string, args ...any) int {
	t.Helper()

	var n int
	if err := e.DB.QueryRowContext(context.Background(), query, args...).Scan(&n); err != nil {
		t.Fatalf("counting rows: %v", err)
	}
	return n
}

func (e *TestEnv) paymentCount(t *testing.T, sessionID string) int {
	return e.countRows(t, `SELECT COUNT(*) FROM payments WHERE stripe_session_id = $1`, sessionID)
}

func (e *TestEnv) enrollmentCount(t *testing.T, userID string, courseID string) int {
	return e.countRows(t, `SELECT COUNT(*) FROM enrollments WHERE user_id = $1 AND course_id = $2`, userID, courseID)
}
