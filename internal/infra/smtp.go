package infra

import (
	"fmt"
	"net/smtp"

	"github.com/SolpiSolutions/sistema-pos-ventas/internal/config"

	"github.com/jordan-wright/email"
)

// Mailer wraps SMTP configuration for sending emails with PDF attachments.
// All sends go through a circuit breaker so a dead SMTP server fast-fails
// instead of holding worker goroutines on timeouts.
type Mailer struct {
	host     string
	port     int
	user     string
	password string
	addr     string
	cb       *CircuitBreaker
}

func NewMailer(cfg *config.Config) *Mailer {
	return &Mailer{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		user:     cfg.SMTPUser,
		password: cfg.SMTPPassword,
		addr:     fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
		cb:       NewCircuitBreaker(DefaultCBConfig()),
	}
}

// Send delivers a plain-text email, optionally attaching the file at pdfPath.
func (m *Mailer) Send(to, subject, body, pdfPath string) error {
	return m.cb.Execute(func() error {
		e := email.NewEmail()
		e.From = m.user
		e.To = []string{to}
		e.Subject = subject
		e.Text = []byte(body)

		if pdfPath != "" {
			if _, err := e.AttachFile(pdfPath); err != nil {
				return fmt.Errorf("mailer: attach PDF: %w", err)
			}
		}

		auth := smtp.PlainAuth("", m.user, m.password, m.host)
		return e.Send(m.addr, auth)
	})
}

// CircuitState exposes the breaker state for the health endpoint.
func (m *Mailer) CircuitState() string {
	return m.cb.State().String()
}
