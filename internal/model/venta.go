package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Estados de una venta.
const (
	VentaPendiente  = "pendiente"
	VentaCompletada = "completada"
	VentaCancelada  = "cancelada"
)

// Venta is a committed sale. Items and totals are snapshots captured at
// commit time and are immutable afterward, even if the product changes.
type Venta struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	// NumeroFactura is a display label (FAC-YYYYMMDD-NNN). It is NOT
	// guaranteed unique; lookups always use ID.
	NumeroFactura string `gorm:"index;not null"`

	// Cliente opcional — ausente significa cliente general / de mostrador.
	ClienteNombre   *string
	ClienteCedula   *string
	ClienteTelefono *string

	Items []VentaItem `gorm:"foreignKey:VentaID"`

	Subtotal decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// Descuento is a percentage in [0,100]; DescuentoMonto the derived amount.
	Descuento      decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	DescuentoMonto decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Impuesto       decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Total          decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	MetodoPago string `gorm:"type:varchar(20);not null;default:'efectivo'"`
	Notas      string
	Estado     string    `gorm:"type:varchar(20);not null;default:'completada';index"`
	VendedorID uuid.UUID `gorm:"type:uuid;not null;index"`

	CreatedAt time.Time
	UpdatedAt time.Time

	Vendedor *Usuario `gorm:"foreignKey:VendedorID"`
}

// VentaItem is one line of a sale with immutable snapshots of the product
// name and price at sale time. Cantidad is expressed in the line's TipoVenta
// (boxes or units); UnidadesDescontadas is the base-unit count actually
// removed from stock.
type VentaItem struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	VentaID        uuid.UUID `gorm:"type:uuid;not null;index"`
	ProductoID     uuid.UUID `gorm:"type:uuid;not null;index"`
	NombreProducto string    `gorm:"not null"`
	Cantidad       int       `gorm:"not null"`
	TipoVenta      string    `gorm:"type:varchar(10);not null;default:'unidad'"`
	// UnidadesDescontadas = Cantidad × unidades_por_caja para lineas de caja.
	UnidadesDescontadas int             `gorm:"not null"`
	PrecioUnitario      decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	PrecioTotal         decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	Producto *Producto `gorm:"foreignKey:ProductoID"`
}

// TableName overrides GORM's default pluralization.
func (VentaItem) TableName() string { return "venta_items" }
