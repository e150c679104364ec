package dto

// ── Alertas ──────────────────────────────────────────────────────────────────

// AlertaStockResponse flags a product at or below its minimum stock level.
type AlertaStockResponse struct {
	ProductoID  string `json:"producto_id"`
	Nombre      string `json:"nombre"`
	Categoria   string `json:"categoria"`
	StockTotal  int    `json:"stock_total"`
	StockMinimo int    `json:"stock_minimo"`
	Desglose    string `json:"desglose"` // "N cajas × M + K sueltas"
}

// ── Movimientos ──────────────────────────────────────────────────────────────

// MovimientoFilter is bound from query string of GET /v1/inventario/movimientos.
type MovimientoFilter struct {
	ProductoID string `form:"producto_id" validate:"omitempty,uuid"`
	Tipo       string `form:"tipo"        validate:"omitempty,oneof=venta ajuste_manual anulacion"`
	Page       int    `form:"page,default=1"    validate:"min=1"`
	Limit      int    `form:"limit,default=100" validate:"min=1,max=500"`
}

type MovimientoResponse struct {
	ID             string `json:"id"`
	ProductoID     string `json:"producto_id"`
	NombreProducto string `json:"nombre_producto"`
	Tipo           string `json:"tipo"`
	Cantidad       int    `json:"cantidad"`
	StockAnterior  int    `json:"stock_anterior"`
	StockNuevo     int    `json:"stock_nuevo"`
	Motivo         string `json:"motivo,omitempty"`
	ReferenciaID   *string `json:"referencia_id,omitempty"`
	CreatedAt      string  `json:"created_at"`
}

type MovimientoListResponse struct {
	Data  []MovimientoResponse `json:"data"`
	Total int64                `json:"total"`
	Page  int                  `json:"page"`
	Limit int                  `json:"limit"`
}
