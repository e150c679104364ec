package model

import (
	"time"

	"github.com/google/uuid"
)

// Estados de una factura.
const (
	FacturaPendiente = "pendiente"
	FacturaEmitida   = "emitida"
	FacturaError     = "error"
)

// Factura tracks the printable invoice document generated asynchronously for
// a committed sale. The sale itself is the source of truth for money; this
// record only tracks the document lifecycle.
type Factura struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	VentaID       uuid.UUID `gorm:"type:uuid;index;not null"`
	NumeroFactura string    `gorm:"not null"`
	Estado        string    `gorm:"type:varchar(20);not null;default:'pendiente'"`
	// PDFPath is relative to PDF_STORAGE_PATH env var.
	PDFPath *string `gorm:"column:pdf_path"`
	// Retry fields — used by the retry cron to re-attempt failed generations.
	RetryCount  int        `gorm:"not null;default:0"`
	NextRetryAt *time.Time `gorm:"column:next_retry_at"`
	LastError   *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
