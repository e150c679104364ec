package service

import (
	"context"
	"testing"

	"github.com/sergio129/SaludDirecta/internal/apierror"
	"github.com/sergio129/SaludDirecta/internal/dto"
	"github.com/sergio129/SaludDirecta/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildInventarioSvc() (InventarioService, *stubProductoRepo, *stubMovimientoRepo) {
	productoRepo := newStubProductoRepo()
	movimientoRepo := &stubMovimientoRepo{}
	return NewInventarioService(productoRepo, movimientoRepo), productoRepo, movimientoRepo
}

func TestAjustarStock_SobrescribeYRecalcula(t *testing.T) {
	svc, productoRepo, movimientoRepo := buildInventarioSvc()
	p := seedProducto(productoRepo, "Ranitidina 150mg", 1, 10, 2) // 12 unidades

	resp, err := svc.AjustarStock(context.Background(), p.ID, dto.AjustarStockRequest{
		StockCajas:           4,
		UnidadesPorCaja:      10,
		StockUnidadesSueltas: 5,
		Motivo:               "Reposición proveedor",
	})
	require.NoError(t, err)
	assert.Equal(t, 45, resp.StockTotal)

	stored := productoRepo.productos[p.ID]
	assert.Equal(t, 4, stored.StockCajas)
	assert.Equal(t, 5, stored.StockUnidadesSueltas)
	assert.Equal(t, 45, stored.StockTotal)

	require.Len(t, movimientoRepo.movimientos, 1)
	mov := movimientoRepo.movimientos[0]
	assert.Equal(t, model.MovimientoAjuste, mov.Tipo)
	assert.Equal(t, 33, mov.Cantidad) // 45 − 12
	assert.Equal(t, 12, mov.StockAnterior)
	assert.Equal(t, 45, mov.StockNuevo)
	assert.Contains(t, mov.Motivo, "Reposición proveedor")
	assert.Contains(t, mov.Motivo, "4 cajas × 10 + 5 sueltas")
}

func TestAjustarStock_CambioDeUnidadesPorCaja(t *testing.T) {
	svc, productoRepo, _ := buildInventarioSvc()
	p := seedProducto(productoRepo, "Jeringa 5ml", 2, 24, 0) // 48

	// repackaged to boxes of 12
	resp, err := svc.AjustarStock(context.Background(), p.ID, dto.AjustarStockRequest{
		StockCajas:           4,
		UnidadesPorCaja:      12,
		StockUnidadesSueltas: 0,
	})
	require.NoError(t, err)
	assert.Equal(t, 48, resp.StockTotal)
	assert.Equal(t, 12, productoRepo.productos[p.ID].UnidadesPorCaja)
}

func TestAjustarStock_ACero(t *testing.T) {
	svc, productoRepo, movimientoRepo := buildInventarioSvc()
	p := seedProducto(productoRepo, "Lote vencido", 3, 10, 5) // 35

	resp, err := svc.AjustarStock(context.Background(), p.ID, dto.AjustarStockRequest{
		StockCajas:           0,
		UnidadesPorCaja:      10,
		StockUnidadesSueltas: 0,
		Motivo:               "Baja por vencimiento",
	})
	require.NoError(t, err)
	assert.Equal(t, 0, resp.StockTotal)
	assert.Equal(t, -35, movimientoRepo.movimientos[0].Cantidad)
}

func TestAjustarStock_ProductoNoExiste(t *testing.T) {
	svc, _, _ := buildInventarioSvc()

	_, err := svc.AjustarStock(context.Background(), uuid.New(), dto.AjustarStockRequest{
		UnidadesPorCaja: 1,
	})
	assert.True(t, apierror.IsKind(err, apierror.KindNotFound))
}

func TestObtenerAlertas(t *testing.T) {
	svc, productoRepo, _ := buildInventarioSvc()
	bajo := seedProducto(productoRepo, "Insulina NPH", 0, 10, 3) // 3 <= minimo 5
	seedProducto(productoRepo, "Alcohol 70%", 5, 10, 0)          // 50, sin alerta
	inactivo := seedProducto(productoRepo, "Descontinuado", 0, 1, 0)
	productoRepo.productos[inactivo.ID].Activo = false

	alertas, err := svc.ObtenerAlertas(context.Background())
	require.NoError(t, err)
	require.Len(t, alertas, 1)
	assert.Equal(t, bajo.ID.String(), alertas[0].ProductoID)
	assert.Equal(t, 3, alertas[0].StockTotal)
	assert.Equal(t, 5, alertas[0].StockMinimo)
	assert.Equal(t, "0 cajas × 10 + 3 sueltas", alertas[0].Desglose)
}

func TestListarMovimientos_Paginado(t *testing.T) {
	svc, productoRepo, movimientoRepo := buildInventarioSvc()
	p := seedProducto(productoRepo, "Gasa estéril", 1, 10, 0)
	movimientoRepo.movimientos = append(movimientoRepo.movimientos, model.MovimientoStock{
		ID:         uuid.New(),
		ProductoID: p.ID,
		Tipo:       model.MovimientoAjuste,
		Cantidad:   10,
		StockNuevo: 10,
		Motivo:     "Carga inicial",
	})

	resp, err := svc.ListarMovimientos(context.Background(), dto.MovimientoFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.Total)
	assert.Equal(t, 1, resp.Page)
	assert.Equal(t, 100, resp.Limit)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, model.MovimientoAjuste, resp.Data[0].Tipo)
}
