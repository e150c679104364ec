package repository

import (
	"context"

	"github.com/sergio129/SaludDirecta/internal/dto"
	"github.com/sergio129/SaludDirecta/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StockPatch carries the recomputed stock fields of a deduction or restock.
type StockPatch struct {
	StockCajas           int
	UnidadesPorCaja      int
	StockUnidadesSueltas int
	StockTotal           int
}

// ProductoRepository defines the data access contract for products.
// Services depend on this interface, not on the concrete GORM implementation,
// enabling clean unit testing via in-memory stubs.
type ProductoRepository interface {
	Create(ctx context.Context, p *model.Producto) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Producto, error)
	FindByBarcode(ctx context.Context, barcode string) (*model.Producto, error)
	List(ctx context.Context, filter dto.ProductoFilter) ([]model.Producto, int64, error)
	Update(ctx context.Context, p *model.Producto) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	Reactivar(ctx context.Context, id uuid.UUID) error
	ListBajoStock(ctx context.Context) ([]model.Producto, error)

	// FindByIDForUpdateTx row-locks the product for the duration of the
	// surrounding transaction (SELECT … FOR UPDATE). Callers must pass the
	// live tx; a nil tx falls back to a plain read (unit test mode).
	FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Producto, error)

	// UpdateStockGuardedTx applies a stock patch only while the row still
	// holds at least minStockTotal base units. Returns the number of rows
	// updated: 0 means a concurrent sale consumed the stock first.
	UpdateStockGuardedTx(tx *gorm.DB, id uuid.UUID, patch StockPatch, minStockTotal int) (int64, error)

	// SetStockAbsoluto overwrites the stock fields (restock path).
	SetStockAbsoluto(ctx context.Context, id uuid.UUID, patch StockPatch) error

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type productoRepo struct{ db *gorm.DB }

func NewProductoRepository(db *gorm.DB) ProductoRepository { return &productoRepo{db: db} }

func (r *productoRepo) Create(ctx context.Context, p *model.Producto) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *productoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Producto, error) {
	var p model.Producto
	err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productoRepo) FindByBarcode(ctx context.Context, barcode string) (*model.Producto, error) {
	var p model.Producto
	err := r.db.WithContext(ctx).Where("codigo_barras = ? AND activo = true", barcode).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productoRepo) List(ctx context.Context, filter dto.ProductoFilter) ([]model.Producto, int64, error) {
	var productos []model.Producto
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Producto{})

	// Activo filter: "false" = inactivos, "all" = todos, anything else = activos (default)
	switch filter.Activo {
	case "false":
		q = q.Where("activo = false")
	case "all":
		// no filter
	default:
		q = q.Where("activo = true")
	}

	if filter.Busqueda != "" {
		term := "%" + filter.Busqueda + "%"
		q = q.Where("nombre ILIKE ? OR codigo ILIKE ? OR codigo_barras ILIKE ?", term, term, term)
	}
	if filter.Categoria != "" && filter.Categoria != "todas" {
		q = q.Where("categoria = ?", filter.Categoria)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Order("nombre ASC").Limit(filter.Limit).Offset(offset).Find(&productos).Error
	return productos, total, err
}

func (r *productoRepo) Update(ctx context.Context, p *model.Producto) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *productoRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Producto{}).Where("id = ?", id).Update("activo", false).Error
}

func (r *productoRepo) Reactivar(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Producto{}).Where("id = ?", id).Update("activo", true).Error
}

func (r *productoRepo) ListBajoStock(ctx context.Context) ([]model.Producto, error) {
	var productos []model.Producto
	err := r.db.WithContext(ctx).
		Where("activo = true AND stock_total <= stock_minimo").
		Order("stock_total ASC").
		Find(&productos).Error
	return productos, err
}

func (r *productoRepo) FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Producto, error) {
	var p model.Producto
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&p, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productoRepo) UpdateStockGuardedTx(tx *gorm.DB, id uuid.UUID, patch StockPatch, minStockTotal int) (int64, error) {
	result := tx.Model(&model.Producto{}).
		Where("id = ? AND stock_total >= ?", id, minStockTotal).
		Updates(map[string]interface{}{
			"stock_cajas":            patch.StockCajas,
			"unidades_por_caja":      patch.UnidadesPorCaja,
			"stock_unidades_sueltas": patch.StockUnidadesSueltas,
			"stock_total":            patch.StockTotal,
		})
	return result.RowsAffected, result.Error
}

func (r *productoRepo) SetStockAbsoluto(ctx context.Context, id uuid.UUID, patch StockPatch) error {
	return r.db.WithContext(ctx).Model(&model.Producto{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"stock_cajas":            patch.StockCajas,
			"unidades_por_caja":      patch.UnidadesPorCaja,
			"stock_unidades_sueltas": patch.StockUnidadesSueltas,
			"stock_total":            patch.StockTotal,
		}).Error
}

func (r *productoRepo) DB() *gorm.DB { return r.db }
