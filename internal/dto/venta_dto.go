package dto

import "github.com/shopspring/decimal"

// ─── Filter / List ──────────────────────────────────────────────────────────

// VentaFilter is bound from query string of GET /v1/ventas.
type VentaFilter struct {
	Fecha  string `form:"fecha"`                     // YYYY-MM-DD; empty = today
	Estado string `form:"estado,default=completada"` // pendiente | completada | cancelada | all
	Page   int    `form:"page,default=1"   validate:"min=1"`
	Limit  int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type VentaListResponse struct {
	Data  []VentaResponse `json:"data"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

// ClienteRequest is the optional walk-in customer block of a checkout.
type ClienteRequest struct {
	Nombre   string  `json:"nombre"   validate:"required,min=2,max=100"`
	Cedula   *string `json:"cedula"   validate:"omitempty,max=20"`
	Telefono *string `json:"telefono" validate:"omitempty,max=20"`
}

type ItemVentaRequest struct {
	ProductoID string `json:"producto_id" validate:"required,uuid"`
	Cantidad   int    `json:"cantidad"    validate:"required,min=1"`
	TipoVenta  string `json:"tipo_venta"  validate:"omitempty,oneof=unidad caja"`
	// NombreProducto is advisory; the server always snapshots the
	// authoritative product name at commit time.
	NombreProducto string `json:"nombre_producto"`
}

// RegistrarVentaRequest is the finalized checkout payload. The server never
// trusts client-side prices or totals — every line is re-priced here.
type RegistrarVentaRequest struct {
	Cliente    *ClienteRequest    `json:"cliente"`
	Items      []ItemVentaRequest `json:"items"       validate:"required,min=1,dive"`
	Descuento  decimal.Decimal    `json:"descuento"`  // percentage 0-100
	Impuesto   decimal.Decimal    `json:"impuesto"`   // absolute amount, default 0
	MetodoPago string             `json:"metodo_pago" validate:"omitempty,oneof=efectivo tarjeta transferencia"`
	Notas      string             `json:"notas"       validate:"omitempty,max=500"`
}

type AnularVentaRequest struct {
	Motivo string `json:"motivo" validate:"required,min=5"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ClienteResponse struct {
	Nombre   string  `json:"nombre"`
	Cedula   *string `json:"cedula,omitempty"`
	Telefono *string `json:"telefono,omitempty"`
}

type ItemVentaResponse struct {
	ProductoID          string          `json:"producto_id"`
	NombreProducto      string          `json:"nombre_producto"`
	Cantidad            int             `json:"cantidad"`
	TipoVenta           string          `json:"tipo_venta"`
	UnidadesDescontadas int             `json:"unidades_descontadas"`
	PrecioUnitario      decimal.Decimal `json:"precio_unitario"`
	PrecioTotal         decimal.Decimal `json:"precio_total"`
}

type VentaResponse struct {
	ID             string              `json:"id"`
	NumeroFactura  string              `json:"numero_factura"`
	Cliente        *ClienteResponse    `json:"cliente,omitempty"`
	Items          []ItemVentaResponse `json:"items"`
	Subtotal       decimal.Decimal     `json:"subtotal"`
	Descuento      decimal.Decimal     `json:"descuento"`
	DescuentoMonto decimal.Decimal     `json:"descuento_monto"`
	Impuesto       decimal.Decimal     `json:"impuesto"`
	Total          decimal.Decimal     `json:"total"`
	MetodoPago     string              `json:"metodo_pago"`
	Notas          string              `json:"notas,omitempty"`
	Estado         string              `json:"estado"`
	VendedorID     string              `json:"vendedor_id"`
	CreatedAt      string              `json:"created_at"`
}
