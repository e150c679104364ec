package service

import (
	"context"
	"errors"

	"github.com/sergio129/SaludDirecta/internal/apierror"
	"github.com/sergio129/SaludDirecta/internal/dto"
	"github.com/sergio129/SaludDirecta/internal/model"
	"github.com/sergio129/SaludDirecta/internal/repository"
	"github.com/sergio129/SaludDirecta/internal/stock"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductoService defines the business logic contract for products.
type ProductoService interface {
	Crear(ctx context.Context, req dto.CrearProductoRequest) (*dto.ProductoResponse, error)
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ProductoResponse, error)
	Listar(ctx context.Context, filter dto.ProductoFilter) (*dto.ProductoListResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarProductoRequest) (*dto.ProductoResponse, error)
	Desactivar(ctx context.Context, id uuid.UUID) error
	Reactivar(ctx context.Context, id uuid.UUID) error
	HistorialPrecios(ctx context.Context, id uuid.UUID) ([]dto.HistorialPrecioResponse, error)
}

type productoService struct {
	repo          repository.ProductoRepository
	historialRepo repository.HistorialPrecioRepository
}

func NewProductoService(repo repository.ProductoRepository, historialRepo repository.HistorialPrecioRepository) ProductoService {
	return &productoService{repo: repo, historialRepo: historialRepo}
}

func (s *productoService) Crear(ctx context.Context, req dto.CrearProductoRequest) (*dto.ProductoResponse, error) {
	tipoVenta := req.TipoVenta
	if tipoVenta == "" {
		tipoVenta = model.TipoVentaAmbos
	}

	p := &model.Producto{
		Nombre:               req.Nombre,
		Descripcion:          req.Descripcion,
		Precio:               req.Precio,
		PrecioCaja:           req.PrecioCaja,
		PrecioCompra:         req.PrecioCompra,
		PrecioCompraCaja:     req.PrecioCompraCaja,
		StockCajas:           req.StockCajas,
		UnidadesPorCaja:      req.UnidadesPorCaja,
		StockUnidadesSueltas: req.StockUnidadesSueltas,
		StockMinimo:          req.StockMinimo,
		Categoria:            req.Categoria,
		Laboratorio:          req.Laboratorio,
		Codigo:               req.Codigo,
		CodigoBarras:         req.CodigoBarras,
		RequiereReceta:       req.RequiereReceta,
		Activo:               true,
		TipoVenta:            tipoVenta,
	}
	stock.Recalcular(p)

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, apierror.Newf(apierror.KindPersistence, "Error creando el producto: %v", err)
	}
	return productoToResponse(p), nil
}

func (s *productoService) ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ProductoResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.New(apierror.KindNotFound, "Producto no encontrado")
		}
		return nil, apierror.Newf(apierror.KindPersistence, "Error consultando el producto: %v", err)
	}
	return productoToResponse(p), nil
}

func (s *productoService) Listar(ctx context.Context, filter dto.ProductoFilter) (*dto.ProductoListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 20
	}
	productos, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, apierror.Newf(apierror.KindPersistence, "Error listando productos: %v", err)
	}
	data := make([]dto.ProductoResponse, 0, len(productos))
	for i := range productos {
		data = append(data, *productoToResponse(&productos[i]))
	}
	return &dto.ProductoListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

// Actualizar applies a partial update. A change of any price writes an
// immutable row in historial_precios; committed sales are never touched.
func (s *productoService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarProductoRequest) (*dto.ProductoResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.New(apierror.KindNotFound, "Producto no encontrado")
		}
		return nil, apierror.Newf(apierror.KindPersistence, "Error consultando el producto: %v", err)
	}

	costoAntes := p.PrecioCompra
	ventaAntes := p.Precio

	if req.Nombre != nil {
		p.Nombre = *req.Nombre
	}
	if req.Descripcion != nil {
		p.Descripcion = *req.Descripcion
	}
	if req.Precio != nil {
		p.Precio = *req.Precio
	}
	if req.PrecioCaja != nil {
		p.PrecioCaja = req.PrecioCaja
	}
	if req.PrecioCompra != nil {
		p.PrecioCompra = *req.PrecioCompra
	}
	if req.PrecioCompraCaja != nil {
		p.PrecioCompraCaja = req.PrecioCompraCaja
	}
	if req.StockMinimo != nil {
		p.StockMinimo = *req.StockMinimo
	}
	if req.Categoria != nil {
		p.Categoria = *req.Categoria
	}
	if req.Laboratorio != nil {
		p.Laboratorio = *req.Laboratorio
	}
	if req.Codigo != nil {
		p.Codigo = req.Codigo
	}
	if req.CodigoBarras != nil {
		p.CodigoBarras = req.CodigoBarras
	}
	if req.RequiereReceta != nil {
		p.RequiereReceta = *req.RequiereReceta
	}
	if req.TipoVenta != nil {
		p.TipoVenta = *req.TipoVenta
	}

	cambioPrecio := !p.Precio.Equal(ventaAntes) || !p.PrecioCompra.Equal(costoAntes)

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, apierror.Newf(apierror.KindPersistence, "Error actualizando el producto: %v", err)
	}

	if cambioPrecio {
		hist := &model.HistorialPrecio{
			ProductoID:   p.ID,
			CostoAntes:   costoAntes,
			CostoDespues: p.PrecioCompra,
			VentaAntes:   ventaAntes,
			VentaDespues: p.Precio,
			Motivo:       "actualizacion_manual",
		}
		// Best effort: the update already committed, the history row is audit data.
		_ = s.historialRepo.Create(ctx, hist)
	}

	return productoToResponse(p), nil
}

func (s *productoService) Desactivar(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apierror.New(apierror.KindNotFound, "Producto no encontrado")
		}
		return apierror.Newf(apierror.KindPersistence, "Error consultando el producto: %v", err)
	}
	return s.repo.SoftDelete(ctx, id)
}

func (s *productoService) Reactivar(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apierror.New(apierror.KindNotFound, "Producto no encontrado")
		}
		return apierror.Newf(apierror.KindPersistence, "Error consultando el producto: %v", err)
	}
	return s.repo.Reactivar(ctx, id)
}

func (s *productoService) HistorialPrecios(ctx context.Context, id uuid.UUID) ([]dto.HistorialPrecioResponse, error) {
	historial, err := s.historialRepo.ListByProducto(ctx, id, 50)
	if err != nil {
		return nil, apierror.Newf(apierror.KindPersistence, "Error consultando historial: %v", err)
	}
	resp := make([]dto.HistorialPrecioResponse, 0, len(historial))
	for _, h := range historial {
		resp = append(resp, dto.HistorialPrecioResponse{
			ID:           h.ID.String(),
			ProductoID:   h.ProductoID.String(),
			CostoAntes:   h.CostoAntes,
			CostoDespues: h.CostoDespues,
			VentaAntes:   h.VentaAntes,
			VentaDespues: h.VentaDespues,
			Motivo:       h.Motivo,
			CreatedAt:    h.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	return resp, nil
}

func productoToResponse(p *model.Producto) *dto.ProductoResponse {
	return &dto.ProductoResponse{
		ID:                   p.ID.String(),
		Nombre:               p.Nombre,
		Descripcion:          p.Descripcion,
		Precio:               p.Precio,
		PrecioCaja:           p.PrecioCaja,
		PrecioCompra:         p.PrecioCompra,
		PrecioCompraCaja:     p.PrecioCompraCaja,
		StockCajas:           p.StockCajas,
		UnidadesPorCaja:      p.UnidadesPorCaja,
		StockUnidadesSueltas: p.StockUnidadesSueltas,
		StockTotal:           p.StockTotal,
		StockMinimo:          p.StockMinimo,
		Categoria:            p.Categoria,
		Laboratorio:          p.Laboratorio,
		Codigo:               p.Codigo,
		CodigoBarras:         p.CodigoBarras,
		RequiereReceta:       p.RequiereReceta,
		Activo:               p.Activo,
		TipoVenta:            p.TipoVenta,
	}
}
