package repository

import (
	"context"

	"github.com/sergio129/SaludDirecta/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type HistorialPrecioRepository interface {
	Create(ctx context.Context, h *model.HistorialPrecio) error
	CreateTx(tx *gorm.DB, h *model.HistorialPrecio) error
	ListByProducto(ctx context.Context, productoID uuid.UUID, limit int) ([]model.HistorialPrecio, error)
}

type historialPrecioRepo struct{ db *gorm.DB }

func NewHistorialPrecioRepository(db *gorm.DB) HistorialPrecioRepository {
	return &historialPrecioRepo{db: db}
}

func (r *historialPrecioRepo) Create(ctx context.Context, h *model.HistorialPrecio) error {
	return r.db.WithContext(ctx).Create(h).Error
}

func (r *historialPrecioRepo) CreateTx(tx *gorm.DB, h *model.HistorialPrecio) error {
	return tx.Create(h).Error
}

func (r *historialPrecioRepo) ListByProducto(ctx context.Context, productoID uuid.UUID, limit int) ([]model.HistorialPrecio, error) {
	if limit < 1 || limit > 200 {
		limit = 50
	}
	var historial []model.HistorialPrecio
	err := r.db.WithContext(ctx).
		Where("producto_id = ?", productoID).
		Order("created_at DESC").
		Limit(limit).
		Find(&historial).Error
	return historial, err
}
