package repository

import (
	"context"
	"time"

	"github.com/sergio129/SaludDirecta/internal/dto"
	"github.com/sergio129/SaludDirecta/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ResumenDia is the aggregate row for the daily sales report.
type ResumenDia struct {
	CantidadVentas int64
	TotalVendido   decimal.Decimal
	TotalDescuento decimal.Decimal
	PorMetodoPago  map[string]decimal.Decimal
}

// TopProducto is one aggregate row of the best-sellers report.
type TopProducto struct {
	ProductoID       uuid.UUID
	NombreProducto   string
	UnidadesVendidas int
	TotalVendido     decimal.Decimal
}

type VentaRepository interface {
	Create(ctx context.Context, tx *gorm.DB, v *model.Venta) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Venta, error)
	MarcarAnulada(ctx context.Context, tx *gorm.DB, id uuid.UUID) (int64, error)
	List(ctx context.Context, filter dto.VentaFilter) ([]model.Venta, int64, error)
	ResumenDia(ctx context.Context, dia time.Time) (*ResumenDia, error)
	TopProductos(ctx context.Context, desde time.Time, limit int) ([]TopProducto, error)
	DB() *gorm.DB // exposes the DB for transaction creation in service layer
}

type ventaRepo struct{ db *gorm.DB }

func NewVentaRepository(db *gorm.DB) VentaRepository { return &ventaRepo{db: db} }

func (r *ventaRepo) DB() *gorm.DB { return r.db }

func (r *ventaRepo) Create(ctx context.Context, tx *gorm.DB, v *model.Venta) error {
	return tx.WithContext(ctx).Create(v).Error
}

func (r *ventaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Venta, error) {
	var v model.Venta
	err := r.db.WithContext(ctx).Preload("Items").First(&v, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// MarcarAnulada flips the sale to cancelada only when it is not already
// cancelled. Zero rows affected means a concurrent anulación won the row.
func (r *ventaRepo) MarcarAnulada(ctx context.Context, tx *gorm.DB, id uuid.UUID) (int64, error) {
	db := r.db
	if tx != nil {
		db = tx
	}
	res := db.WithContext(ctx).Model(&model.Venta{}).
		Where("id = ? AND estado <> ?", id, model.VentaCancelada).
		Update("estado", model.VentaCancelada)
	return res.RowsAffected, res.Error
}

func (r *ventaRepo) List(ctx context.Context, filter dto.VentaFilter) ([]model.Venta, int64, error) {
	var ventas []model.Venta
	var total int64
	offset := (filter.Page - 1) * filter.Limit

	q := r.db.WithContext(ctx).Model(&model.Venta{})

	if filter.Estado != "" && filter.Estado != "all" {
		q = q.Where("estado = ?", filter.Estado)
	}
	if filter.Fecha != "" {
		q = q.Where("DATE(created_at) = ?", filter.Fecha)
	} else {
		// Default: today
		q = q.Where("DATE(created_at) = CURRENT_DATE")
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Preload("Items").
		Order("created_at DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&ventas).Error

	return ventas, total, err
}

func (r *ventaRepo) ResumenDia(ctx context.Context, dia time.Time) (*ResumenDia, error) {
	fecha := dia.Format("2006-01-02")

	var agregado struct {
		Cantidad  int64
		Total     decimal.Decimal
		Descuento decimal.Decimal
	}
	err := r.db.WithContext(ctx).Model(&model.Venta{}).
		Select("COUNT(*) AS cantidad, COALESCE(SUM(total), 0) AS total, COALESCE(SUM(descuento_monto), 0) AS descuento").
		Where("estado = ? AND DATE(created_at) = ?", model.VentaCompletada, fecha).
		Scan(&agregado).Error
	if err != nil {
		return nil, err
	}

	var porMetodo []struct {
		MetodoPago string
		Total      decimal.Decimal
	}
	err = r.db.WithContext(ctx).Model(&model.Venta{}).
		Select("metodo_pago, COALESCE(SUM(total), 0) AS total").
		Where("estado = ? AND DATE(created_at) = ?", model.VentaCompletada, fecha).
		Group("metodo_pago").
		Scan(&porMetodo).Error
	if err != nil {
		return nil, err
	}

	resumen := &ResumenDia{
		CantidadVentas: agregado.Cantidad,
		TotalVendido:   agregado.Total,
		TotalDescuento: agregado.Descuento,
		PorMetodoPago:  make(map[string]decimal.Decimal, len(porMetodo)),
	}
	for _, m := range porMetodo {
		resumen.PorMetodoPago[m.MetodoPago] = m.Total
	}
	return resumen, nil
}

func (r *ventaRepo) TopProductos(ctx context.Context, desde time.Time, limit int) ([]TopProducto, error) {
	if limit < 1 || limit > 100 {
		limit = 10
	}
	var rows []TopProducto
	err := r.db.WithContext(ctx).
		Table("venta_items").
		Select("venta_items.producto_id, venta_items.nombre_producto, SUM(venta_items.unidades_descontadas) AS unidades_vendidas, COALESCE(SUM(venta_items.precio_total), 0) AS total_vendido").
		Joins("JOIN ventas ON ventas.id = venta_items.venta_id").
		Where("ventas.estado = ? AND ventas.created_at >= ?", model.VentaCompletada, desde).
		Group("venta_items.producto_id, venta_items.nombre_producto").
		Order("unidades_vendidas DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}
