package email

import (
	"context"
	"fmt"
	"time"

	"github.com/resend/resend-go/v2"
)

// Confirmation carries everything the enrollment confirmation email needs.
type Confirmation struct {
	To      string
	Nombre  string
	Folio   string
	Curso   string
	Horario string
	Dias    string
	Precio  int
}

type Mailer struct {
	client      *resend.Client
	from        string
	frontendURL string
}

func New(apiKey string, from string, name string, frontendURL string) *Mailer {
	return &Mailer{
		client:      resend.NewClient(apiKey),
		from:        fmt.Sprintf("%s <%s>", name, from),
		frontendURL: frontendURL,
	}
}

// SendConfirmation sends the enrollment confirmation. Callers treat this
// as best-effort: a failure must never undo a reconciled payment.
func (m *Mailer) SendConfirmation(ctx context.Context, c Confirmation) error {
	body, err := renderConfirmation(confirmationData{
		Confirmation: c,
		FrontendURL:  m.frontendURL,
		Year:         time.Now().Year(),
	})
	if err != nil {
		return fmt.Errorf("rendering confirmation email: %w", err)
	}

	params := &resend.SendEmailRequest{
		From:    m.from,
		To:      []string{c.To},
		Subject: "Confirmación de inscripción - Français Intelligent",
		Html:    body,
	}

	if _, err := m.client.Emails.SendWithContext(ctx, params); err != nil {
		return fmt.Errorf("sending confirmation email to %s: %w", c.To, err)
	}

	return nil
}
