package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Sale unit types accepted on a cart line.
const (
	TipoVentaUnidad = "unidad"
	TipoVentaCaja   = "caja"
	TipoVentaAmbos  = "ambos" // product-level only: both line types allowed
)

// Producto is a pharmacy product sold by loose unit, by box, or both.
// StockTotal is derived from cajas/sueltas and recomputed after every
// mutation — it is never trusted independently.
type Producto struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre      string    `gorm:"index;not null"`
	Descripcion string

	// Precios de venta: por unidad siempre; por caja solo si el producto
	// se vende en cajas.
	Precio           decimal.Decimal  `gorm:"type:decimal(10,2);not null"`
	PrecioCaja       *decimal.Decimal `gorm:"type:decimal(10,2)"`
	PrecioCompra     decimal.Decimal  `gorm:"type:decimal(10,2);not null"`
	PrecioCompraCaja *decimal.Decimal `gorm:"type:decimal(10,2)"`

	// Stock en cajas cerradas + unidades sueltas.
	StockCajas           int `gorm:"not null;default:0"`
	UnidadesPorCaja      int `gorm:"not null;default:1"`
	StockUnidadesSueltas int `gorm:"not null;default:0"`
	StockTotal           int `gorm:"not null;default:0;index"`
	StockMinimo          int `gorm:"not null;default:5"`

	Categoria   string `gorm:"index;not null"`
	Laboratorio string `gorm:"not null"`
	// Codigo interno y codigo de barras son opcionales pero unicos cuando existen.
	Codigo       *string `gorm:"uniqueIndex"`
	CodigoBarras *string `gorm:"uniqueIndex"`

	RequiereReceta   bool   `gorm:"not null;default:false"`
	Activo           bool   `gorm:"not null;default:true"`
	TipoVenta        string `gorm:"type:varchar(10);not null;default:'ambos'"` // unidad | caja | ambos
	FechaVencimiento *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// PermiteVentaPorCaja reports whether box-type cart lines are legal for this product.
func (p *Producto) PermiteVentaPorCaja() bool {
	return p.TipoVenta == TipoVentaCaja || p.TipoVenta == TipoVentaAmbos
}

// NecesitaReabastecimiento reports whether stock fell to or below the minimum.
func (p *Producto) NecesitaReabastecimiento() bool {
	return p.StockTotal <= p.StockMinimo
}

// MargenUnidad is the profit margin percentage over the purchase price.
func (p *Producto) MargenUnidad() decimal.Decimal {
	if p.PrecioCompra.IsZero() {
		return decimal.Zero
	}
	return p.Precio.Sub(p.PrecioCompra).Div(p.PrecioCompra).Mul(decimal.NewFromInt(100))
}
