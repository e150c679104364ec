package worker

// retry_cron.go
// Background goroutine that periodically re-enqueues invoice jobs for
// facturas stuck in estado='error' with a next_retry_at in the past.

import (
	"context"
	"fmt"
	"time"

	"github.com/sergio129/SaludDirecta/internal/repository"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	retryTickInterval = 30 * time.Second
	retryBatchSize    = 10
)

// RetryCronConfig holds all dependencies for the retry goroutine.
type RetryCronConfig struct {
	FacturaRepo repository.FacturaRepository
	Dispatcher  *Dispatcher
	RDB         *redis.Client
}

// StartRetryCron launches a background goroutine that ticks every 30s,
// queries facturas due for retry, and re-enqueues their generation jobs.
// It respects the context for graceful shutdown.
func StartRetryCron(ctx context.Context, cfg RetryCronConfig) {
	go func() {
		ticker := time.NewTicker(retryTickInterval)
		defer ticker.Stop()

		log.Info().Msg("retry_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("retry_cron: shutting down")
				return
			case <-ticker.C:
				processRetries(ctx, cfg)
			}
		}
	}()
}

func processRetries(ctx context.Context, cfg RetryCronConfig) {
	facturas, err := cfg.FacturaRepo.ListPendingRetries(ctx, retryBatchSize)
	if err != nil {
		log.Error().Err(err).Msg("retry_cron: failed to query pending retries")
		return
	}
	if len(facturas) == 0 {
		return
	}

	log.Info().Int("count", len(facturas)).Msg("retry_cron: re-enqueueing pending facturas")

	for i := range facturas {
		f := &facturas[i]

		if f.RetryCount >= MaxFacturaRetries {
			lastErr := ""
			if f.LastError != nil {
				lastErr = *f.LastError
			}
			payload := fmt.Sprintf(`{"venta_id":"%s","factura_id":"%s"}`, f.VentaID, f.ID)
			SendToDLQ(ctx, cfg.RDB, QueueFactura, "factura", []byte(payload),
				fmt.Sprintf("max retries (%d) exceeded: %s", MaxFacturaRetries, lastErr),
				f.RetryCount)

			// Push next_retry_at far enough out that the cron stops picking it up.
			never := time.Now().Add(24 * 365 * time.Hour)
			f.NextRetryAt = &never
			_ = cfg.FacturaRepo.Update(ctx, f)
			log.Error().
				Str("factura_id", f.ID.String()).
				Str("venta_id", f.VentaID.String()).
				Int("retries", f.RetryCount).
				Msg("retry_cron: max retries exceeded, moved to DLQ")
			continue
		}

		if err := cfg.Dispatcher.EnqueueFactura(ctx, FacturaPayload{VentaID: f.VentaID.String()}); err != nil {
			log.Error().Err(err).Str("factura_id", f.ID.String()).Msg("retry_cron: failed to re-enqueue")
			continue
		}
		log.Info().
			Str("factura_id", f.ID.String()).
			Int("retry_count", f.RetryCount).
			Msg("retry_cron: factura re-enqueued")
	}
}
