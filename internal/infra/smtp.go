package infra

import (
	"fmt"
	"net/smtp"

	"github.com/sergio129/SaludDirecta/internal/config"

	"github.com/jordan-wright/email"
)

// Mailer sends invoice mails through the configured SMTP relay. The
// sender line carries the pharmacy name so customers recognize it.
type Mailer struct {
	addr string
	from string
	auth smtp.Auth
}

func NewMailer(cfg *config.Config) *Mailer {
	return &Mailer{
		addr: fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
		from: fmt.Sprintf("%s <%s>", cfg.NombreFarmacia, cfg.SMTPUser),
		auth: smtp.PlainAuth("", cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPHost),
	}
}

// SendFactura mails the invoice to the customer. An empty pdfPath sends
// the notification without attachment (the PDF may have failed and be
// pending a retry).
func (m *Mailer) SendFactura(to, subject, body, pdfPath string) error {
	e := email.NewEmail()
	e.From = m.from
	e.To = []string{to}
	e.Subject = subject
	e.Text = []byte(body)

	if pdfPath != "" {
		if _, err := e.AttachFile(pdfPath); err != nil {
			return fmt.Errorf("mailer: adjuntar PDF: %w", err)
		}
	}
	return e.Send(m.addr, m.auth)
}
