package service

import (
	"context"
	"errors"
	"path/filepath"

	"github.com/sergio129/SaludDirecta/internal/apierror"
	"github.com/sergio129/SaludDirecta/internal/dto"
	"github.com/sergio129/SaludDirecta/internal/model"
	"github.com/sergio129/SaludDirecta/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FacturaService interface {
	ObtenerPorVenta(ctx context.Context, ventaID uuid.UUID) (*dto.FacturaResponse, error)
	// RutaPDF returns the absolute filesystem path of an emitted invoice PDF.
	RutaPDF(ctx context.Context, ventaID uuid.UUID) (string, error)
}

type facturaService struct {
	repo           repository.FacturaRepository
	pdfStoragePath string
}

func NewFacturaService(repo repository.FacturaRepository, pdfStoragePath string) FacturaService {
	return &facturaService{repo: repo, pdfStoragePath: pdfStoragePath}
}

func (s *facturaService) ObtenerPorVenta(ctx context.Context, ventaID uuid.UUID) (*dto.FacturaResponse, error) {
	f, err := s.repo.FindByVentaID(ctx, ventaID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.New(apierror.KindNotFound, "Factura no encontrada para esta venta")
		}
		return nil, apierror.Newf(apierror.KindPersistence, "Error consultando la factura: %v", err)
	}

	var pdfURL *string
	if f.Estado == model.FacturaEmitida && f.PDFPath != nil {
		url := "/v1/facturas/" + f.VentaID.String() + "/pdf"
		pdfURL = &url
	}
	return &dto.FacturaResponse{
		ID:            f.ID.String(),
		VentaID:       f.VentaID.String(),
		NumeroFactura: f.NumeroFactura,
		Estado:        f.Estado,
		PDFUrl:        pdfURL,
		RetryCount:    f.RetryCount,
		LastError:     f.LastError,
		CreatedAt:     f.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}, nil
}

func (s *facturaService) RutaPDF(ctx context.Context, ventaID uuid.UUID) (string, error) {
	f, err := s.repo.FindByVentaID(ctx, ventaID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", apierror.New(apierror.KindNotFound, "Factura no encontrada para esta venta")
		}
		return "", apierror.Newf(apierror.KindPersistence, "Error consultando la factura: %v", err)
	}
	if f.Estado != model.FacturaEmitida || f.PDFPath == nil {
		return "", apierror.New(apierror.KindConflict, "La factura aún no fue generada")
	}
	return filepath.Join(s.pdfStoragePath, *f.PDFPath), nil
}
