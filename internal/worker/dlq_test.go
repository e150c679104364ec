package worker

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBuildDLQEntry_ExtraeVentaID(t *testing.T) {
	payload := json.RawMessage(`{"venta_id":"7b0c9a7e-1111-4222-8333-444455556666"}`)

	entry := buildDLQEntry(QueueFactura, "factura", payload, "pdf generation failed", 3)

	assert.Equal(t, QueueFactura, entry.Queue)
	assert.Equal(t, "7b0c9a7e-1111-4222-8333-444455556666", entry.VentaID)
	assert.Equal(t, 3, entry.Attempts)
	assert.WithinDuration(t, time.Now().UTC(), entry.FailedAt, time.Second)
}

func TestBuildDLQEntry_PayloadSinVenta(t *testing.T) {
	entry := buildDLQEntry(QueueEmail, "unknown", json.RawMessage(`not-json`), "malformed job envelope", 0)

	assert.Empty(t, entry.VentaID)
	assert.Equal(t, "malformed job envelope", entry.Reason)
	assert.Equal(t, json.RawMessage(`not-json`), entry.Payload)
}
