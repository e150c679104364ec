package worker

// factura_worker.go
// Processes invoice generation jobs from QueueFactura: renders the printable
// PDF for a committed sale and tracks the document lifecycle in facturas.
// Generation failures are retried later by the retry cron.

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/sergio129/SaludDirecta/internal/infra"
	"github.com/sergio129/SaludDirecta/internal/model"
	"github.com/sergio129/SaludDirecta/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// MaxFacturaRetries bounds the retry cron; past this the job goes to the DLQ.
const MaxFacturaRetries = 3

type FacturaWorker struct {
	facturaRepo    repository.FacturaRepository
	ventaRepo      repository.VentaRepository
	dispatcher     *Dispatcher
	pdfStoragePath string
	nombreFarmacia string
}

func NewFacturaWorker(
	facturaRepo repository.FacturaRepository,
	ventaRepo repository.VentaRepository,
	dispatcher *Dispatcher,
	pdfStoragePath string,
	nombreFarmacia string,
) *FacturaWorker {
	return &FacturaWorker{
		facturaRepo:    facturaRepo,
		ventaRepo:      ventaRepo,
		dispatcher:     dispatcher,
		pdfStoragePath: pdfStoragePath,
		nombreFarmacia: nombreFarmacia,
	}
}

// Process handles a single invoice job:
//  1. Fetch the Venta (with items) from DB
//  2. Create (or reuse) the Factura record with estado="pendiente"
//  3. Render the A4 PDF
//  4. Mark emitida, or mark error with the next retry scheduled
//  5. Optionally enqueue the email job when the customer left an address
func (w *FacturaWorker) Process(ctx context.Context, raw json.RawMessage) {
	var payload FacturaPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("factura_worker: invalid payload")
		return
	}

	ventaID, err := uuid.Parse(payload.VentaID)
	if err != nil {
		log.Error().Str("venta_id", payload.VentaID).Msg("factura_worker: invalid venta_id")
		return
	}

	venta, err := w.ventaRepo.FindByID(ctx, ventaID)
	if err != nil {
		log.Error().Err(err).Str("venta_id", payload.VentaID).Msg("factura_worker: venta not found")
		return
	}

	// Reuse the existing record on retry, create it on first attempt.
	factura, err := w.facturaRepo.FindByVentaID(ctx, ventaID)
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			log.Error().Err(err).Str("venta_id", payload.VentaID).Msg("factura_worker: lookup failed")
			return
		}
		factura = &model.Factura{
			VentaID:       ventaID,
			NumeroFactura: venta.NumeroFactura,
			Estado:        model.FacturaPendiente,
		}
		if err := w.facturaRepo.Create(ctx, factura); err != nil {
			log.Error().Err(err).Str("venta_id", payload.VentaID).Msg("factura_worker: failed to create factura")
			return
		}
	}

	pdfPath, pdfErr := infra.GenerateFacturaPDF(venta, w.pdfStoragePath, w.nombreFarmacia)
	if pdfErr != nil {
		nextRetry := time.Now().Add(retryBackoff(factura.RetryCount + 1))
		if err := w.facturaRepo.MarkError(ctx, factura.ID, pdfErr.Error(), nextRetry); err != nil {
			log.Error().Err(err).Str("factura_id", factura.ID.String()).Msg("factura_worker: failed to mark error")
		}
		log.Warn().
			Err(pdfErr).
			Str("venta_id", payload.VentaID).
			Time("next_retry_at", nextRetry).
			Msg("factura_worker: PDF generation failed, scheduled retry")
		return
	}

	if err := w.facturaRepo.MarkEmitida(ctx, factura.ID, pdfPath); err != nil {
		log.Error().Err(err).Str("factura_id", factura.ID.String()).Msg("factura_worker: failed to mark emitida")
		return
	}
	log.Info().Str("pdf", pdfPath).Str("venta_id", payload.VentaID).Msg("factura_worker: PDF generated")

	if payload.ClienteEmail != nil && *payload.ClienteEmail != "" {
		emailJob := EmailPayload{
			ToEmail: *payload.ClienteEmail,
			Subject: fmt.Sprintf("Factura %s — %s", venta.NumeroFactura, w.nombreFarmacia),
			Body:    fmt.Sprintf("Adjunto encontrará su factura de compra.\nTotal: $%s", venta.Total.StringFixed(2)),
			PDFPath: filepath.Join(w.pdfStoragePath, pdfPath),
		}
		if err := w.dispatcher.EnqueueEmail(ctx, emailJob); err != nil {
			log.Warn().Err(err).Str("email", *payload.ClienteEmail).Msg("factura_worker: failed to enqueue email")
		}
	}
}

// retryBackoff: 1m, 2m, 4m …
func retryBackoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return time.Duration(1<<uint(attempt-1)) * time.Minute
}
