package infra

// pdf.go — Printable A4 invoice generation using go-pdf/fpdf.
// Layout:
//   - Pharmacy name header with invoice number and date
//   - Customer block (walk-in customers get "Cliente General")
//   - Item table (product, quantity, sale unit, unit price, line total)
//   - Subtotal / discount / tax / bold total
//   - Payment method and optional notes
//
// The output file is saved to storagePath/factura_{venta_id}.pdf; the
// returned path is relative to storagePath.

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sergio129/SaludDirecta/internal/model"

	"github.com/go-pdf/fpdf"
)

// GenerateFacturaPDF renders the invoice for a committed Venta.
// storagePath is the directory where the PDF is written (created if needed).
func GenerateFacturaPDF(venta *model.Venta, storagePath, nombreFarmacia string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	fileName := fmt.Sprintf("factura_%s.pdf", venta.ID)
	filePath := filepath.Join(storagePath, fileName)

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 30

	tr := pdf.UnicodeTranslatorFromDescriptor("")

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(contentW, 10, tr(nombreFarmacia), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(contentW, 6, "Factura de Venta", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	// ── Invoice info ─────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(contentW/2, 6, tr(fmt.Sprintf("Factura: %s", venta.NumeroFactura)), "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(contentW/2, 6, venta.CreatedAt.Format("02/01/2006 15:04"), "", 1, "R", false, 0, "")
	pdf.Ln(2)

	// ── Customer block ───────────────────────────────────────────────────────
	cliente := "Cliente General"
	if venta.ClienteNombre != nil && *venta.ClienteNombre != "" {
		cliente = *venta.ClienteNombre
	}
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(contentW, 5, tr("Cliente: "+cliente), "", 1, "L", false, 0, "")
	if venta.ClienteCedula != nil && *venta.ClienteCedula != "" {
		pdf.CellFormat(contentW, 5, tr("Cédula: "+*venta.ClienteCedula), "", 1, "L", false, 0, "")
	}
	if venta.ClienteTelefono != nil && *venta.ClienteTelefono != "" {
		pdf.CellFormat(contentW, 5, tr("Teléfono: "+*venta.ClienteTelefono), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	// ── Items table ──────────────────────────────────────────────────────────
	col1 := contentW * 0.40 // product name
	col2 := contentW * 0.12 // quantity
	col3 := contentW * 0.14 // sale unit
	col4 := contentW * 0.17 // unit price
	col5 := contentW * 0.17 // line total

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(240, 240, 240)
	pdf.CellFormat(col1, 7, "Producto", "1", 0, "L", true, 0, "")
	pdf.CellFormat(col2, 7, "Cant.", "1", 0, "C", true, 0, "")
	pdf.CellFormat(col3, 7, "Unidad", "1", 0, "C", true, 0, "")
	pdf.CellFormat(col4, 7, "P. Unit.", "1", 0, "R", true, 0, "")
	pdf.CellFormat(col5, 7, "Total", "1", 1, "R", true, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	for _, item := range venta.Items {
		nombre := item.NombreProducto
		if len(nombre) > 40 {
			nombre = nombre[:39] + "…"
		}
		pdf.CellFormat(col1, 6, tr(nombre), "1", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 6, fmt.Sprintf("%d", item.Cantidad), "1", 0, "C", false, 0, "")
		pdf.CellFormat(col3, 6, item.TipoVenta, "1", 0, "C", false, 0, "")
		pdf.CellFormat(col4, 6, "$"+item.PrecioUnitario.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(col5, 6, "$"+item.PrecioTotal.StringFixed(2), "1", 1, "R", false, 0, "")
	}
	pdf.Ln(4)

	// ── Totals ───────────────────────────────────────────────────────────────
	labelW := col1 + col2 + col3
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(labelW, 6, "", "", 0, "L", false, 0, "")
	pdf.CellFormat(col4, 6, "Subtotal:", "", 0, "R", false, 0, "")
	pdf.CellFormat(col5, 6, "$"+venta.Subtotal.StringFixed(2), "", 1, "R", false, 0, "")

	if !venta.DescuentoMonto.IsZero() {
		pdf.CellFormat(labelW, 6, "", "", 0, "L", false, 0, "")
		pdf.CellFormat(col4, 6, tr(fmt.Sprintf("Descuento (%s%%):", venta.Descuento.StringFixed(0))), "", 0, "R", false, 0, "")
		pdf.CellFormat(col5, 6, "-$"+venta.DescuentoMonto.StringFixed(2), "", 1, "R", false, 0, "")
	}
	if !venta.Impuesto.IsZero() {
		pdf.CellFormat(labelW, 6, "", "", 0, "L", false, 0, "")
		pdf.CellFormat(col4, 6, "Impuesto:", "", 0, "R", false, 0, "")
		pdf.CellFormat(col5, 6, "$"+venta.Impuesto.StringFixed(2), "", 1, "R", false, 0, "")
	}

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(labelW, 8, "", "", 0, "L", false, 0, "")
	pdf.CellFormat(col4, 8, "TOTAL:", "T", 0, "R", false, 0, "")
	pdf.CellFormat(col5, 8, "$"+venta.Total.StringFixed(2), "T", 1, "R", false, 0, "")
	pdf.Ln(4)

	// ── Payment and notes ────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(contentW, 6, tr("Método de pago: "+venta.MetodoPago), "", 1, "L", false, 0, "")
	if venta.Notas != "" {
		pdf.CellFormat(contentW, 6, tr("Notas: "+venta.Notas), "", 1, "L", false, 0, "")
	}

	// ── Footer ───────────────────────────────────────────────────────────────
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.CellFormat(contentW, 5, tr("¡Gracias por su compra!"), "", 1, "C", false, 0, "")

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}

	return fileName, nil
}
