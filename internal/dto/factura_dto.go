package dto

// FacturaResponse describes the invoice document generated for a sale.
type FacturaResponse struct {
	ID            string  `json:"id"`
	VentaID       string  `json:"venta_id"`
	NumeroFactura string  `json:"numero_factura"`
	Estado        string  `json:"estado"`
	PDFUrl        *string `json:"pdf_url,omitempty"`
	RetryCount    int     `json:"retry_count"`
	LastError     *string `json:"last_error,omitempty"`
	CreatedAt     string  `json:"created_at"`
}
