package service

import (
	"context"
	"testing"
	"time"

	"github.com/sergio129/SaludDirecta/internal/apierror"
	"github.com/sergio129/SaludDirecta/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// reporteVentaRepo cans the aggregate queries and records the arguments.
type reporteVentaRepo struct {
	*stubVentaRepo
	resumen   *repository.ResumenDia
	top       []repository.TopProducto
	diaPedido time.Time
	desde     time.Time
	limit     int
}

func (r *reporteVentaRepo) ResumenDia(_ context.Context, dia time.Time) (*repository.ResumenDia, error) {
	r.diaPedido = dia
	return r.resumen, nil
}

func (r *reporteVentaRepo) TopProductos(_ context.Context, desde time.Time, limit int) ([]repository.TopProducto, error) {
	r.desde = desde
	r.limit = limit
	return r.top, nil
}

func TestResumenDia_FechaExplicita(t *testing.T) {
	repo := &reporteVentaRepo{
		stubVentaRepo: newStubVentaRepo(),
		resumen: &repository.ResumenDia{
			CantidadVentas: 12,
			TotalVendido:   decimal.NewFromFloat(345.60),
			TotalDescuento: decimal.NewFromFloat(12.40),
			PorMetodoPago: map[string]decimal.Decimal{
				"efectivo": decimal.NewFromFloat(200.00),
				"tarjeta":  decimal.NewFromFloat(145.60),
			},
		},
	}
	svc := NewReporteService(repo)

	resp, err := svc.ResumenDia(context.Background(), "2026-03-14")
	require.NoError(t, err)
	assert.Equal(t, "2026-03-14", resp.Fecha)
	assert.Equal(t, int64(12), resp.CantidadVentas)
	assert.True(t, resp.TotalVendido.Equal(decimal.NewFromFloat(345.60)))
	assert.Len(t, resp.PorMetodoPago, 2)
	assert.Equal(t, "2026-03-14", repo.diaPedido.Format("2006-01-02"))
}

func TestResumenDia_FechaInvalida(t *testing.T) {
	svc := NewReporteService(&reporteVentaRepo{stubVentaRepo: newStubVentaRepo()})

	_, err := svc.ResumenDia(context.Background(), "14/03/2026")
	assert.True(t, apierror.IsKind(err, apierror.KindValidation))
}

func TestTopProductos_RangoDeDias(t *testing.T) {
	repo := &reporteVentaRepo{
		stubVentaRepo: newStubVentaRepo(),
		top: []repository.TopProducto{
			{ProductoID: uuid.New(), NombreProducto: "Ibuprofeno 400mg", UnidadesVendidas: 80, TotalVendido: decimal.NewFromFloat(120.00)},
		},
	}
	svc := NewReporteService(repo)

	resp, err := svc.TopProductos(context.Background(), 7, 10)
	require.NoError(t, err)
	require.Len(t, resp, 1)
	assert.Equal(t, 80, resp[0].UnidadesVendidas)
	assert.Equal(t, 10, repo.limit)

	// the window starts ~7 days back
	esperado := time.Now().AddDate(0, 0, -7)
	assert.WithinDuration(t, esperado, repo.desde, time.Minute)
}

func TestTopProductos_DiasFueraDeRango(t *testing.T) {
	repo := &reporteVentaRepo{stubVentaRepo: newStubVentaRepo()}
	svc := NewReporteService(repo)

	// 0 and >365 fall back to the 30-day default
	_, err := svc.TopProductos(context.Background(), 0, 5)
	require.NoError(t, err)
	esperado := time.Now().AddDate(0, 0, -30)
	assert.WithinDuration(t, esperado, repo.desde, time.Minute)
}
