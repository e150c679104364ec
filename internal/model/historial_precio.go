package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// HistorialPrecio registra cada cambio de precio de un producto.
// Los registros son inmutables — nunca se eliminan ni modifican.
type HistorialPrecio struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductoID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	CostoAntes   decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	CostoDespues decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	VentaAntes   decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	VentaDespues decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Motivo       string          `gorm:"not null;default:'manual'"`
	CreatedAt    time.Time

	Producto Producto `gorm:"foreignKey:ProductoID"`
}

// TableName keeps the Spanish plural used across the schema.
func (HistorialPrecio) TableName() string { return "historial_precios" }
