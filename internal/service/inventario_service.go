package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/sergio129/SaludDirecta/internal/apierror"
	"github.com/sergio129/SaludDirecta/internal/dto"
	"github.com/sergio129/SaludDirecta/internal/model"
	"github.com/sergio129/SaludDirecta/internal/repository"
	"github.com/sergio129/SaludDirecta/internal/stock"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type InventarioService interface {
	// AjustarStock overwrites the stock fields of a product (restock /
	// physical count). It never routes through the sale deduction path.
	AjustarStock(ctx context.Context, productoID uuid.UUID, req dto.AjustarStockRequest) (*dto.ProductoResponse, error)
	ObtenerAlertas(ctx context.Context) ([]dto.AlertaStockResponse, error)
	ListarMovimientos(ctx context.Context, filter dto.MovimientoFilter) (*dto.MovimientoListResponse, error)
}

type inventarioService struct {
	productoRepo   repository.ProductoRepository
	movimientoRepo repository.MovimientoStockRepository
}

func NewInventarioService(
	productoRepo repository.ProductoRepository,
	movimientoRepo repository.MovimientoStockRepository,
) InventarioService {
	return &inventarioService{productoRepo: productoRepo, movimientoRepo: movimientoRepo}
}

func (s *inventarioService) AjustarStock(ctx context.Context, productoID uuid.UUID, req dto.AjustarStockRequest) (*dto.ProductoResponse, error) {
	p, err := s.productoRepo.FindByID(ctx, productoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.New(apierror.KindNotFound, "Producto no encontrado")
		}
		return nil, apierror.Newf(apierror.KindPersistence, "Error consultando el producto: %v", err)
	}

	stockAntes := p.StockTotal

	p.StockCajas = req.StockCajas
	p.UnidadesPorCaja = req.UnidadesPorCaja
	p.StockUnidadesSueltas = req.StockUnidadesSueltas
	stock.Recalcular(p)

	patch := repository.StockPatch{
		StockCajas:           p.StockCajas,
		UnidadesPorCaja:      p.UnidadesPorCaja,
		StockUnidadesSueltas: p.StockUnidadesSueltas,
		StockTotal:           p.StockTotal,
	}
	if err := s.productoRepo.SetStockAbsoluto(ctx, productoID, patch); err != nil {
		return nil, apierror.Newf(apierror.KindPersistence, "Error ajustando el stock: %v", err)
	}

	motivo := req.Motivo
	if motivo == "" {
		motivo = "Ajuste manual de inventario"
	}
	mov := &model.MovimientoStock{
		ProductoID:    productoID,
		Tipo:          model.MovimientoAjuste,
		Cantidad:      p.StockTotal - stockAntes,
		StockAnterior: stockAntes,
		StockNuevo:    p.StockTotal,
		Motivo:        fmt.Sprintf("%s (%s)", motivo, stock.Desglose(p)),
	}
	if err := s.movimientoRepo.Create(ctx, mov); err != nil {
		return nil, apierror.Newf(apierror.KindPersistence, "Error registrando el movimiento: %v", err)
	}

	return productoToResponse(p), nil
}

func (s *inventarioService) ObtenerAlertas(ctx context.Context) ([]dto.AlertaStockResponse, error) {
	productos, err := s.productoRepo.ListBajoStock(ctx)
	if err != nil {
		return nil, apierror.Newf(apierror.KindPersistence, "Error consultando alertas: %v", err)
	}
	alertas := make([]dto.AlertaStockResponse, 0, len(productos))
	for i := range productos {
		p := &productos[i]
		alertas = append(alertas, dto.AlertaStockResponse{
			ProductoID:  p.ID.String(),
			Nombre:      p.Nombre,
			Categoria:   p.Categoria,
			StockTotal:  p.StockTotal,
			StockMinimo: p.StockMinimo,
			Desglose:    stock.Desglose(p),
		})
	}
	return alertas, nil
}

func (s *inventarioService) ListarMovimientos(ctx context.Context, filter dto.MovimientoFilter) (*dto.MovimientoListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 100
	}
	movimientos, total, err := s.movimientoRepo.List(ctx, filter)
	if err != nil {
		return nil, apierror.Newf(apierror.KindPersistence, "Error listando movimientos: %v", err)
	}
	data := make([]dto.MovimientoResponse, 0, len(movimientos))
	for _, m := range movimientos {
		nombre := ""
		if m.Producto != nil {
			nombre = m.Producto.Nombre
		}
		var ref *string
		if m.ReferenciaID != nil {
			r := m.ReferenciaID.String()
			ref = &r
		}
		data = append(data, dto.MovimientoResponse{
			ID:             m.ID.String(),
			ProductoID:     m.ProductoID.String(),
			NombreProducto: nombre,
			Tipo:           m.Tipo,
			Cantidad:       m.Cantidad,
			StockAnterior:  m.StockAnterior,
			StockNuevo:     m.StockNuevo,
			Motivo:         m.Motivo,
			ReferenciaID:   ref,
			CreatedAt:      m.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	return &dto.MovimientoListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}
