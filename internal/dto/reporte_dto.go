package dto

import "github.com/shopspring/decimal"

// ResumenDiaResponse aggregates the day's completed sales.
type ResumenDiaResponse struct {
	Fecha          string                     `json:"fecha"` // YYYY-MM-DD
	CantidadVentas int64                      `json:"cantidad_ventas"`
	TotalVendido   decimal.Decimal            `json:"total_vendido"`
	TotalDescuento decimal.Decimal            `json:"total_descuento"`
	PorMetodoPago  map[string]decimal.Decimal `json:"por_metodo_pago"`
}

// TopProductoResponse is one row of the best-sellers report.
type TopProductoResponse struct {
	ProductoID     string          `json:"producto_id"`
	NombreProducto string          `json:"nombre_producto"`
	UnidadesVendidas int           `json:"unidades_vendidas"`
	TotalVendido   decimal.Decimal `json:"total_vendido"`
}
