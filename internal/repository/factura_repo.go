package repository

import (
	"context"
	"time"

	"github.com/sergio129/SaludDirecta/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FacturaRepository interface {
	Create(ctx context.Context, f *model.Factura) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Factura, error)
	FindByVentaID(ctx context.Context, ventaID uuid.UUID) (*model.Factura, error)
	Update(ctx context.Context, f *model.Factura) error
	MarkEmitida(ctx context.Context, id uuid.UUID, pdfPath string) error
	MarkError(ctx context.Context, id uuid.UUID, lastError string, nextRetry time.Time) error
	ListPendingRetries(ctx context.Context, limit int) ([]model.Factura, error)
}

type facturaRepo struct{ db *gorm.DB }

func NewFacturaRepository(db *gorm.DB) FacturaRepository { return &facturaRepo{db: db} }

func (r *facturaRepo) Create(ctx context.Context, f *model.Factura) error {
	return r.db.WithContext(ctx).Create(f).Error
}

func (r *facturaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Factura, error) {
	var f model.Factura
	if err := r.db.WithContext(ctx).First(&f, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *facturaRepo) FindByVentaID(ctx context.Context, ventaID uuid.UUID) (*model.Factura, error) {
	var f model.Factura
	if err := r.db.WithContext(ctx).First(&f, "venta_id = ?", ventaID).Error; err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *facturaRepo) Update(ctx context.Context, f *model.Factura) error {
	return r.db.WithContext(ctx).Save(f).Error
}

func (r *facturaRepo) MarkEmitida(ctx context.Context, id uuid.UUID, pdfPath string) error {
	return r.db.WithContext(ctx).Model(&model.Factura{}).Where("id = ?", id).Updates(map[string]any{
		"estado":     model.FacturaEmitida,
		"pdf_path":   pdfPath,
		"last_error": "",
	}).Error
}

func (r *facturaRepo) MarkError(ctx context.Context, id uuid.UUID, lastError string, nextRetry time.Time) error {
	return r.db.WithContext(ctx).Model(&model.Factura{}).Where("id = ?", id).Updates(map[string]any{
		"estado":        model.FacturaError,
		"last_error":    lastError,
		"retry_count":   gorm.Expr("retry_count + 1"),
		"next_retry_at": nextRetry,
	}).Error
}

func (r *facturaRepo) ListPendingRetries(ctx context.Context, limit int) ([]model.Factura, error) {
	var facturas []model.Factura
	err := r.db.WithContext(ctx).
		Where("estado = ? AND next_retry_at <= ?", model.FacturaError, time.Now()).
		Order("next_retry_at ASC").
		Limit(limit).
		Find(&facturas).Error
	return facturas, err
}
