package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CrearProductoRequest struct {
	Nombre      string `json:"nombre"      validate:"required,min=2,max=100"`
	Descripcion string `json:"descripcion" validate:"max=500"`

	Precio           decimal.Decimal  `json:"precio"             validate:"required,min=0"`
	PrecioCaja       *decimal.Decimal `json:"precio_caja"        validate:"omitempty,min=0"`
	PrecioCompra     decimal.Decimal  `json:"precio_compra"      validate:"required,min=0"`
	PrecioCompraCaja *decimal.Decimal `json:"precio_compra_caja" validate:"omitempty,min=0"`

	StockCajas           int `json:"stock_cajas"            validate:"min=0"`
	UnidadesPorCaja      int `json:"unidades_por_caja"      validate:"required,min=1"`
	StockUnidadesSueltas int `json:"stock_unidades_sueltas" validate:"min=0"`
	StockMinimo          int `json:"stock_minimo"           validate:"min=0"`

	Categoria      string  `json:"categoria"       validate:"required"`
	Laboratorio    string  `json:"laboratorio"     validate:"required"`
	Codigo         *string `json:"codigo"`
	CodigoBarras   *string `json:"codigo_barras"`
	RequiereReceta bool    `json:"requiere_receta"`
	TipoVenta      string  `json:"tipo_venta"      validate:"omitempty,oneof=unidad caja ambos"`
}

type ActualizarProductoRequest struct {
	Nombre      *string `json:"nombre"      validate:"omitempty,min=2,max=100"`
	Descripcion *string `json:"descripcion" validate:"omitempty,max=500"`

	Precio           *decimal.Decimal `json:"precio"             validate:"omitempty,min=0"`
	PrecioCaja       *decimal.Decimal `json:"precio_caja"        validate:"omitempty,min=0"`
	PrecioCompra     *decimal.Decimal `json:"precio_compra"      validate:"omitempty,min=0"`
	PrecioCompraCaja *decimal.Decimal `json:"precio_compra_caja" validate:"omitempty,min=0"`

	StockMinimo    *int    `json:"stock_minimo"    validate:"omitempty,min=0"`
	Categoria      *string `json:"categoria"`
	Laboratorio    *string `json:"laboratorio"`
	Codigo         *string `json:"codigo"`
	CodigoBarras   *string `json:"codigo_barras"`
	RequiereReceta *bool   `json:"requiere_receta"`
	TipoVenta      *string `json:"tipo_venta"      validate:"omitempty,oneof=unidad caja ambos"`
}

// AjustarStockRequest sets absolute stock levels (restock). It is a direct
// field overwrite with revalidation — never routed through the deduction path.
type AjustarStockRequest struct {
	StockCajas           int    `json:"stock_cajas"            validate:"min=0"`
	UnidadesPorCaja      int    `json:"unidades_por_caja"      validate:"required,min=1"`
	StockUnidadesSueltas int    `json:"stock_unidades_sueltas" validate:"min=0"`
	Motivo               string `json:"motivo"                 validate:"omitempty,max=200"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

type ProductoFilter struct {
	Busqueda  string `form:"busqueda"` // matches nombre, codigo, codigo_barras
	Categoria string `form:"categoria"`
	Activo    string `form:"activo"` // "false" = inactivos, "all" = todos, default activos
	Page      int    `form:"page,default=1"   validate:"min=1"`
	Limit     int    `form:"limit,default=20" validate:"min=1,max=100"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ProductoResponse struct {
	ID          string `json:"id"`
	Nombre      string `json:"nombre"`
	Descripcion string `json:"descripcion,omitempty"`

	Precio           decimal.Decimal  `json:"precio"`
	PrecioCaja       *decimal.Decimal `json:"precio_caja,omitempty"`
	PrecioCompra     decimal.Decimal  `json:"precio_compra"`
	PrecioCompraCaja *decimal.Decimal `json:"precio_compra_caja,omitempty"`

	StockCajas           int `json:"stock_cajas"`
	UnidadesPorCaja      int `json:"unidades_por_caja"`
	StockUnidadesSueltas int `json:"stock_unidades_sueltas"`
	StockTotal           int `json:"stock_total"`
	StockMinimo          int `json:"stock_minimo"`

	Categoria      string  `json:"categoria"`
	Laboratorio    string  `json:"laboratorio"`
	Codigo         *string `json:"codigo,omitempty"`
	CodigoBarras   *string `json:"codigo_barras,omitempty"`
	RequiereReceta bool    `json:"requiere_receta"`
	Activo         bool    `json:"activo"`
	TipoVenta      string  `json:"tipo_venta"`
}

type ProductoListResponse struct {
	Data  []ProductoResponse `json:"data"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}

// ConsultaPreciosResponse is returned by the public price check endpoint (no auth required).
type ConsultaPreciosResponse struct {
	Nombre          string           `json:"nombre"`
	Precio          decimal.Decimal  `json:"precio"`
	PrecioCaja      *decimal.Decimal `json:"precio_caja,omitempty"`
	StockDisponible int              `json:"stock_disponible"`
	Categoria       string           `json:"categoria"`
	RequiereReceta  bool             `json:"requiere_receta"`
}
