package dto

import "github.com/shopspring/decimal"

// HistorialPrecioResponse is one immutable price-change record.
type HistorialPrecioResponse struct {
	ID           string          `json:"id"`
	ProductoID   string          `json:"producto_id"`
	CostoAntes   decimal.Decimal `json:"costo_antes"`
	CostoDespues decimal.Decimal `json:"costo_despues"`
	VentaAntes   decimal.Decimal `json:"venta_antes"`
	VentaDespues decimal.Decimal `json:"venta_despues"`
	Motivo       string          `json:"motivo"`
	CreatedAt    string          `json:"created_at"`
}

type HistorialPrecioListResponse struct {
	Data  []HistorialPrecioResponse `json:"data"`
	Total int64                     `json:"total"`
	Page  int                       `json:"page"`
	Limit int                       `json:"limit"`
}
