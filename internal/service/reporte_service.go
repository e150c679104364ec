package service

import (
	"context"
	"time"

	"github.com/sergio129/SaludDirecta/internal/apierror"
	"github.com/sergio129/SaludDirecta/internal/dto"
	"github.com/sergio129/SaludDirecta/internal/repository"
)

type ReporteService interface {
	ResumenDia(ctx context.Context, fecha string) (*dto.ResumenDiaResponse, error)
	TopProductos(ctx context.Context, dias, limit int) ([]dto.TopProductoResponse, error)
}

type reporteService struct {
	ventaRepo repository.VentaRepository
}

func NewReporteService(ventaRepo repository.VentaRepository) ReporteService {
	return &reporteService{ventaRepo: ventaRepo}
}

// ResumenDia aggregates the completed sales of a day (default: today).
func (s *reporteService) ResumenDia(ctx context.Context, fecha string) (*dto.ResumenDiaResponse, error) {
	dia := time.Now()
	if fecha != "" {
		parsed, err := time.Parse("2006-01-02", fecha)
		if err != nil {
			return nil, apierror.Newf(apierror.KindValidation, "Fecha inválida: %s (formato YYYY-MM-DD)", fecha)
		}
		dia = parsed
	}

	resumen, err := s.ventaRepo.ResumenDia(ctx, dia)
	if err != nil {
		return nil, apierror.Newf(apierror.KindPersistence, "Error generando el resumen: %v", err)
	}

	return &dto.ResumenDiaResponse{
		Fecha:          dia.Format("2006-01-02"),
		CantidadVentas: resumen.CantidadVentas,
		TotalVendido:   resumen.TotalVendido,
		TotalDescuento: resumen.TotalDescuento,
		PorMetodoPago:  resumen.PorMetodoPago,
	}, nil
}

// TopProductos returns the best sellers of the last N days by units sold.
func (s *reporteService) TopProductos(ctx context.Context, dias, limit int) ([]dto.TopProductoResponse, error) {
	if dias < 1 || dias > 365 {
		dias = 30
	}
	desde := time.Now().AddDate(0, 0, -dias)

	rows, err := s.ventaRepo.TopProductos(ctx, desde, limit)
	if err != nil {
		return nil, apierror.Newf(apierror.KindPersistence, "Error generando el reporte: %v", err)
	}

	resp := make([]dto.TopProductoResponse, 0, len(rows))
	for _, r := range rows {
		resp = append(resp, dto.TopProductoResponse{
			ProductoID:       r.ProductoID.String(),
			NombreProducto:   r.NombreProducto,
			UnidadesVendidas: r.UnidadesVendidas,
			TotalVendido:     r.TotalVendido,
		})
	}
	return resp, nil
}
