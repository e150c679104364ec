package worker

// email_worker.go
// Processes email jobs from QueueEmail: sends the invoice PDF to the
// customer via SMTP, behind the mailer's circuit breaker.

import (
	"context"
	"encoding/json"

	"github.com/sergio129/SaludDirecta/internal/infra"

	"github.com/rs/zerolog/log"
)

// EmailPayload is the job envelope sent to QueueEmail.
type EmailPayload struct {
	ToEmail string `json:"to_email"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
	PDFPath string `json:"pdf_path"`
}

type EmailWorker struct {
	mailer *infra.Mailer
	cb     *infra.CircuitBreaker
}

func NewEmailWorker(mailer *infra.Mailer, cb *infra.CircuitBreaker) *EmailWorker {
	return &EmailWorker{mailer: mailer, cb: cb}
}

// Process sends an email with the PDF invoice as attachment. The circuit
// breaker keeps a downed SMTP server from stalling the whole pool.
func (w *EmailWorker) Process(_ context.Context, raw json.RawMessage) {
	var payload EmailPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("email_worker: invalid payload")
		return
	}
	if payload.ToEmail == "" {
		log.Warn().Msg("email_worker: empty to_email — skipping")
		return
	}

	err := w.cb.Execute(func() error {
		return w.mailer.SendFactura(payload.ToEmail, payload.Subject, payload.Body, payload.PDFPath)
	})
	if err != nil {
		log.Error().Err(err).Str("to", payload.ToEmail).Msg("email_worker: failed to send email")
		return
	}
	log.Info().Str("to", payload.ToEmail).Msg("email_worker: factura sent successfully")
}
