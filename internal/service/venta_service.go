package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/sergio129/SaludDirecta/internal/apierror"
	"github.com/sergio129/SaludDirecta/internal/dto"
	"github.com/sergio129/SaludDirecta/internal/model"
	"github.com/sergio129/SaludDirecta/internal/repository"
	"github.com/sergio129/SaludDirecta/internal/stock"
	"github.com/sergio129/SaludDirecta/internal/worker"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type VentaService interface {
	RegistrarVenta(ctx context.Context, vendedorID uuid.UUID, req dto.RegistrarVentaRequest) (*dto.VentaResponse, error)
	AnularVenta(ctx context.Context, id uuid.UUID, motivo string) error
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.VentaResponse, error)
	ListVentas(ctx context.Context, filter dto.VentaFilter) (*dto.VentaListResponse, error)
}

type ventaService struct {
	repo           repository.VentaRepository
	productoRepo   repository.ProductoRepository
	movimientoRepo repository.MovimientoStockRepository
	dispatcher     *worker.Dispatcher
	commitTimeout  time.Duration
}

func NewVentaService(
	repo repository.VentaRepository,
	productoRepo repository.ProductoRepository,
	movimientoRepo repository.MovimientoStockRepository,
	dispatcher *worker.Dispatcher,
	commitTimeout time.Duration,
) VentaService {
	if commitTimeout <= 0 {
		commitTimeout = 10 * time.Second
	}
	return &ventaService{
		repo:           repo,
		productoRepo:   productoRepo,
		movimientoRepo: movimientoRepo,
		dispatcher:     dispatcher,
		commitTimeout:  commitTimeout,
	}
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// GenerarNumeroFactura builds the display invoice label FAC-YYYYMMDD-NNN.
// NNN is a random 3-digit suffix; the label is not unique and only the
// venta ID identifies a sale.
func GenerarNumeroFactura(now time.Time) string {
	return fmt.Sprintf("FAC-%s-%03d", now.Format("20060102"), rand.IntN(1000))
}

// ── RegistrarVenta ────────────────────────────────────────────────────────────
// The full checkout flow:
//   1. Validate the cart shape and the discount.
//   2. Pre-flight each line outside the TX: resolve product, sale unit,
//      price, and per-product aggregated unit demand.
//   3. Compute totals: subtotal − descuento(2dp) + impuesto.
//   4. BEGIN TX: create venta+items, then per product re-read under
//      SELECT … FOR UPDATE, deduct, write the stock patch guarded on
//      stock_total, record the movimiento. A guard miss means another
//      checkout consumed the stock between pre-flight and commit.
//   5. COMMIT. Rollback undoes every partial write.
//   6. (async) dispatch invoice generation.

func (s *ventaService) RegistrarVenta(ctx context.Context, vendedorID uuid.UUID, req dto.RegistrarVentaRequest) (*dto.VentaResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, s.commitTimeout)
	defer cancel()

	if len(req.Items) == 0 {
		return nil, apierror.New(apierror.KindEmptyCart, "Debe incluir al menos un producto")
	}
	if req.Descuento.IsNegative() || req.Descuento.GreaterThan(decimal.NewFromInt(100)) {
		return nil, apierror.Newf(apierror.KindInvalidDiscount,
			"El descuento debe estar entre 0 y 100, recibido %s", req.Descuento)
	}
	if req.Impuesto.IsNegative() {
		return nil, apierror.Newf(apierror.KindValidation,
			"El impuesto no puede ser negativo, recibido %s", req.Impuesto)
	}

	// Pre-flight: resolve every line against current product state. Demand is
	// aggregated per product so several lines of the same product are checked
	// against the combined total, regardless of line order.
	type resolvedLine struct {
		producto  *model.Producto
		cantidad  int
		tipoVenta string
		unidades  int
		precio    decimal.Decimal
		total     decimal.Decimal
	}

	var lines []resolvedLine
	demanda := make(map[uuid.UUID]int)
	productos := make(map[uuid.UUID]*model.Producto)
	var ordenProductos []uuid.UUID
	subtotal := decimal.Zero

	for _, item := range req.Items {
		pid, err := uuid.Parse(item.ProductoID)
		if err != nil {
			return nil, apierror.Newf(apierror.KindProductNotFound, "producto_id inválido: %s", item.ProductoID)
		}

		p, ok := productos[pid]
		if !ok {
			p, err = s.productoRepo.FindByID(ctx, pid)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, apierror.Newf(apierror.KindProductNotFound,
						"Producto %s no encontrado", item.ProductoID)
				}
				return nil, persistErr(ctx, err)
			}
			if !p.Activo {
				return nil, apierror.Newf(apierror.KindProductNotFound,
					"El producto %s está inactivo y no puede venderse", p.Nombre)
			}
			productos[pid] = p
			ordenProductos = append(ordenProductos, pid)
		}

		tipoVenta := item.TipoVenta
		if tipoVenta == "" {
			tipoVenta = model.TipoVentaUnidad
		}
		if tipoVenta == model.TipoVentaUnidad && p.TipoVenta == model.TipoVentaCaja {
			return nil, apierror.Newf(apierror.KindInvalidSaleUnit,
				"El producto %s solo se vende por caja", p.Nombre)
		}

		unidades, err := stock.UnidadesRequeridas(item.Cantidad, tipoVenta, p)
		if err != nil {
			return nil, err
		}
		precio, err := stock.PrecioAplicable(p, tipoVenta)
		if err != nil {
			return nil, err
		}

		demanda[pid] += unidades
		if !stock.PuedeDescontar(p, demanda[pid]) {
			return nil, stock.ErrStockInsuficiente(p, demanda[pid])
		}

		lineTotal := precio.Mul(decimal.NewFromInt(int64(item.Cantidad)))
		subtotal = subtotal.Add(lineTotal)
		lines = append(lines, resolvedLine{
			producto:  p,
			cantidad:  item.Cantidad,
			tipoVenta: tipoVenta,
			unidades:  unidades,
			precio:    precio,
			total:     lineTotal,
		})
	}

	descuentoMonto := subtotal.Mul(req.Descuento).Div(decimal.NewFromInt(100)).Round(2)
	total := subtotal.Sub(descuentoMonto).Add(req.Impuesto)

	venta := model.Venta{
		NumeroFactura:  GenerarNumeroFactura(time.Now()),
		Subtotal:       subtotal,
		Descuento:      req.Descuento,
		DescuentoMonto: descuentoMonto,
		Impuesto:       req.Impuesto,
		Total:          total,
		MetodoPago:     metodoPagoODefault(req.MetodoPago),
		Notas:          req.Notas,
		Estado:         model.VentaCompletada,
		VendedorID:     vendedorID,
	}
	if req.Cliente != nil {
		venta.ClienteNombre = &req.Cliente.Nombre
		venta.ClienteCedula = req.Cliente.Cedula
		venta.ClienteTelefono = req.Cliente.Telefono
	}
	for _, l := range lines {
		venta.Items = append(venta.Items, model.VentaItem{
			ProductoID:          l.producto.ID,
			NombreProducto:      l.producto.Nombre,
			Cantidad:            l.cantidad,
			TipoVenta:           l.tipoVenta,
			UnidadesDescontadas: l.unidades,
			PrecioUnitario:      l.precio,
			PrecioTotal:         l.total,
		})
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.Create(ctx, tx, &venta); err != nil {
			return err
		}

		for _, pid := range ordenProductos {
			unidades := demanda[pid]

			// Re-read under a row lock: the pre-flight snapshot may be stale.
			p, err := s.lockProducto(ctx, tx, pid)
			if err != nil {
				return err
			}
			stockAntes := p.StockTotal

			if err := stock.Descontar(p, unidades); err != nil {
				if apierror.IsKind(err, apierror.KindInsufficientStock) {
					return stockCambiado(p, unidades)
				}
				return err
			}

			rows, err := s.productoRepo.UpdateStockGuardedTx(tx, pid, repository.StockPatch{
				StockCajas:           p.StockCajas,
				UnidadesPorCaja:      p.UnidadesPorCaja,
				StockUnidadesSueltas: p.StockUnidadesSueltas,
				StockTotal:           p.StockTotal,
			}, unidades)
			if err != nil {
				return err
			}
			if rows == 0 {
				return stockCambiado(p, unidades)
			}

			ref := venta.ID
			mov := &model.MovimientoStock{
				ProductoID:    pid,
				Tipo:          model.MovimientoVenta,
				Cantidad:      -unidades,
				StockAnterior: stockAntes,
				StockNuevo:    p.StockTotal,
				Motivo:        fmt.Sprintf("Venta %s", venta.NumeroFactura),
				ReferenciaID:  &ref,
			}
			if err := s.movimientoRepo.CreateTx(tx, mov); err != nil {
				return err
			}
		}
		return nil
	})
	if txErr != nil {
		if apiErr := apierror.As(txErr); apiErr != nil {
			return nil, apiErr
		}
		return nil, persistErr(ctx, txErr)
	}

	// Async invoice generation — best effort, the sale is already committed.
	if s.dispatcher != nil {
		_ = s.dispatcher.EnqueueFactura(context.WithoutCancel(ctx), worker.FacturaPayload{
			VentaID: venta.ID.String(),
		})
	}

	return ventaToResponse(&venta), nil
}

// lockProducto issues the SELECT … FOR UPDATE re-read. In unit test mode
// (nil tx) it falls back to a plain repository read.
func (s *ventaService) lockProducto(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Producto, error) {
	if tx == nil {
		return s.productoRepo.FindByID(ctx, id)
	}
	return s.productoRepo.FindByIDForUpdateTx(tx, id)
}

func stockCambiado(p *model.Producto, unidades int) error {
	return apierror.Newf(apierror.KindStockChanged,
		"El stock de %s cambió durante el cobro; la venta fue revertida", p.Nombre).
		WithDetails(map[string]any{
			"producto_id":          p.ID.String(),
			"unidades_solicitadas": unidades,
		})
}

// persistErr maps a storage failure to the right business kind: a blown
// deadline is CommitTimeout, anything else PersistenceFailure.
func persistErr(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return apierror.New(apierror.KindCommitTimeout,
			"La venta excedió el tiempo máximo de confirmación y fue revertida")
	}
	return apierror.Newf(apierror.KindPersistence, "Error de persistencia: %v", err)
}

func metodoPagoODefault(metodo string) string {
	if metodo == "" {
		return "efectivo"
	}
	return metodo
}

// ── AnularVenta ───────────────────────────────────────────────────────────────
// Marks a sale cancelled. Stock deducted by the sale is NOT restored; the
// annulment is recorded in the movement log so an administrator can issue a
// manual adjustment when the goods physically return.

func (s *ventaService) AnularVenta(ctx context.Context, id uuid.UUID, motivo string) error {
	venta, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apierror.New(apierror.KindNotFound, "Venta no encontrada")
		}
		return persistErr(ctx, err)
	}
	if venta.Estado == model.VentaCancelada {
		return apierror.New(apierror.KindConflict, "La venta ya está anulada")
	}

	return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		// Conditional flip inside the TX: the pre-read snapshot may be stale,
		// so zero rows means another anulación already won. The audit rows
		// are written after the flip and only by the winner.
		rows, err := s.repo.MarcarAnulada(ctx, tx, id)
		if err != nil {
			return err
		}
		if rows == 0 {
			return apierror.New(apierror.KindConflict, "La venta ya está anulada")
		}
		for _, item := range venta.Items {
			ref := venta.ID
			mov := &model.MovimientoStock{
				ProductoID:   item.ProductoID,
				Tipo:         model.MovimientoAnulacion,
				Cantidad:     0, // stock no restaurado
				Motivo:       fmt.Sprintf("Anulación venta %s — %s", venta.NumeroFactura, motivo),
				ReferenciaID: &ref,
			}
			if err := s.movimientoRepo.CreateTx(tx, mov); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *ventaService) ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.VentaResponse, error) {
	venta, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.New(apierror.KindNotFound, "Venta no encontrada")
		}
		return nil, persistErr(ctx, err)
	}
	return ventaToResponse(venta), nil
}

// ListVentas returns a paginated list of sales. Default filter: today's
// completed sales.
func (s *ventaService) ListVentas(ctx context.Context, filter dto.VentaFilter) (*dto.VentaListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	if filter.Estado == "" {
		filter.Estado = model.VentaCompletada
	}
	ventas, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, persistErr(ctx, err)
	}
	data := make([]dto.VentaResponse, 0, len(ventas))
	for _, v := range ventas {
		data = append(data, *ventaToResponse(&v))
	}
	return &dto.VentaListResponse{
		Data:  data,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

func ventaToResponse(v *model.Venta) *dto.VentaResponse {
	items := make([]dto.ItemVentaResponse, 0, len(v.Items))
	for _, item := range v.Items {
		items = append(items, dto.ItemVentaResponse{
			ProductoID:          item.ProductoID.String(),
			NombreProducto:      item.NombreProducto,
			Cantidad:            item.Cantidad,
			TipoVenta:           item.TipoVenta,
			UnidadesDescontadas: item.UnidadesDescontadas,
			PrecioUnitario:      item.PrecioUnitario,
			PrecioTotal:         item.PrecioTotal,
		})
	}
	resp := &dto.VentaResponse{
		ID:             v.ID.String(),
		NumeroFactura:  v.NumeroFactura,
		Items:          items,
		Subtotal:       v.Subtotal,
		Descuento:      v.Descuento,
		DescuentoMonto: v.DescuentoMonto,
		Impuesto:       v.Impuesto,
		Total:          v.Total,
		MetodoPago:     v.MetodoPago,
		Notas:          v.Notas,
		Estado:         v.Estado,
		VendedorID:     v.VendedorID.String(),
		CreatedAt:      v.CreatedAt.Format(time.RFC3339),
	}
	if v.ClienteNombre != nil {
		resp.Cliente = &dto.ClienteResponse{
			Nombre:   *v.ClienteNombre,
			Cedula:   v.ClienteCedula,
			Telefono: v.ClienteTelefono,
		}
	}
	return resp
}
