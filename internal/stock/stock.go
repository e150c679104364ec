// Package stock implements the unit-conversion and stock-ledger arithmetic
// for products sold in mixed units (closed boxes + loose units).
//
// Everything here is pure in-memory arithmetic over a Producto snapshot; the
// transactional persistence of a deduction lives in the repository layer.
package stock

import (
	"fmt"

	"github.com/sergio129/SaludDirecta/internal/apierror"
	"github.com/sergio129/SaludDirecta/internal/model"

	"github.com/shopspring/decimal"
)

// TotalUnidades converts (boxes, unitsPerBox, looseUnits) into a single
// base-unit count. A unitsPerBox of zero or less is treated as 1.
func TotalUnidades(cajas, unidadesPorCaja, sueltas int) int {
	if unidadesPorCaja < 1 {
		unidadesPorCaja = 1
	}
	return cajas*unidadesPorCaja + sueltas
}

// Recalcular recomputes the derived StockTotal field from the box/loose
// fields. Every mutation of those fields must be followed by this call.
func Recalcular(p *model.Producto) {
	p.StockTotal = TotalUnidades(p.StockCajas, p.UnidadesPorCaja, p.StockUnidadesSueltas)
}

// UnidadesRequeridas resolves how many base units a cart line consumes.
// Box lines multiply by the product's unidades_por_caja; unit lines pass
// through. Requesting a box sale on a unit-only product fails InvalidSaleUnit.
func UnidadesRequeridas(cantidad int, tipoVenta string, p *model.Producto) (int, error) {
	switch tipoVenta {
	case model.TipoVentaUnidad:
		return cantidad, nil
	case model.TipoVentaCaja:
		if !p.PermiteVentaPorCaja() {
			return 0, apierror.Newf(apierror.KindInvalidSaleUnit,
				"El producto %s no se vende por caja", p.Nombre)
		}
		upb := p.UnidadesPorCaja
		if upb < 1 {
			upb = 1
		}
		return cantidad * upb, nil
	default:
		return 0, apierror.Newf(apierror.KindInvalidSaleUnit,
			"Tipo de venta desconocido: %q", tipoVenta)
	}
}

// PrecioAplicable resolves the price this line is charged at: the box price
// for box lines (NoPriceForSaleMode when the product has none configured),
// the unit price otherwise.
func PrecioAplicable(p *model.Producto, tipoVenta string) (decimal.Decimal, error) {
	if tipoVenta == model.TipoVentaCaja {
		if p.PrecioCaja == nil {
			return decimal.Zero, apierror.Newf(apierror.KindNoPriceForSaleMode,
				"El producto %s no tiene precio por caja configurado", p.Nombre)
		}
		return *p.PrecioCaja, nil
	}
	return p.Precio, nil
}

// PuedeDescontar reports whether unidades base units can be deducted.
func PuedeDescontar(p *model.Producto, unidades int) bool {
	return p.StockTotal >= unidades
}

// Descontar removes unidades base units from the product, breaking closed
// boxes into loose units as needed, and recomputes StockTotal. It is the only
// sanctioned downward path for stock. Fails InsufficientStock (with the
// available breakdown in details) when stock is short; the product is left
// untouched on failure.
func Descontar(p *model.Producto, unidades int) error {
	if unidades <= 0 {
		return apierror.Newf(apierror.KindValidation, "Cantidad a descontar invalida: %d", unidades)
	}
	if !PuedeDescontar(p, unidades) {
		return ErrStockInsuficiente(p, unidades)
	}

	upb := p.UnidadesPorCaja
	if upb < 1 {
		upb = 1
	}

	sueltas := p.StockUnidadesSueltas - unidades
	cajas := p.StockCajas
	for sueltas < 0 {
		if cajas == 0 {
			// Unreachable after the PuedeDescontar check; guarded anyway so a
			// corrupted row can never drive stock negative.
			return ErrStockInsuficiente(p, unidades)
		}
		cajas--
		sueltas += upb
	}

	p.StockCajas = cajas
	p.StockUnidadesSueltas = sueltas
	Recalcular(p)
	return nil
}

// ErrStockInsuficiente builds the InsufficientStock error with the available
// units and a human-readable boxes+loose breakdown.
func ErrStockInsuficiente(p *model.Producto, solicitadas int) *apierror.Error {
	return apierror.Newf(apierror.KindInsufficientStock,
		"Stock insuficiente para %s: disponible %d unidades, solicitadas %d",
		p.Nombre, p.StockTotal, solicitadas).
		WithDetails(map[string]any{
			"producto_id":          p.ID.String(),
			"unidades_disponibles": p.StockTotal,
			"unidades_solicitadas": solicitadas,
			"desglose":             Desglose(p),
		})
}

// Desglose renders the current stock as "N cajas × M + K sueltas".
func Desglose(p *model.Producto) string {
	upb := p.UnidadesPorCaja
	if upb < 1 {
		upb = 1
	}
	return fmt.Sprintf("%d cajas × %d + %d sueltas", p.StockCajas, upb, p.StockUnidadesSueltas)
}
