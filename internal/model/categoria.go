package model

import (
	"time"

	"github.com/google/uuid"
)

// Categoria groups products for browsing and reporting. CodigoATC holds the
// optional ATC classification prefix the pharmacy files the group under
// (e.g. "N02" for analgesics).
type Categoria struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre      string    `gorm:"uniqueIndex;not null"`
	Descripcion *string
	CodigoATC   *string `gorm:"column:codigo_atc;size:8"`
	Activo      bool    `gorm:"not null;default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName overrides GORM's default singular → plural logic for Spanish names.
func (Categoria) TableName() string { return "categorias" }
