package handler

import (
	"net/http"

	"github.com/sergio129/SaludDirecta/internal/apierror"
	"github.com/sergio129/SaludDirecta/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type FacturasHandler struct{ svc service.FacturaService }

func NewFacturasHandler(svc service.FacturaService) *FacturasHandler {
	return &FacturasHandler{svc: svc}
}

// ObtenerPorVenta godoc
// @Summary      Estado de la factura de una venta
// @Tags         facturas
// @Produce      json
// @Security     BearerAuth
// @Param        venta_id path string true "UUID de la venta"
// @Success      200 {object} dto.FacturaResponse
// @Failure      404 {object} apierror.Error
// @Router       /v1/facturas/{venta_id} [get]
func (h *FacturasHandler) ObtenerPorVenta(c *gin.Context) {
	ventaID, err := uuid.Parse(c.Param("venta_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(apierror.KindValidation, "ID inválido"))
		return
	}
	resp, err := h.svc.ObtenerPorVenta(c.Request.Context(), ventaID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// DescargarPDF godoc
// @Summary      Descargar el PDF de la factura
// @Tags         facturas
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        venta_id path string true "UUID de la venta"
// @Success      200
// @Failure      404 {object} apierror.Error
// @Failure      409 {object} apierror.Error "La factura aún no fue generada"
// @Router       /v1/facturas/{venta_id}/pdf [get]
func (h *FacturasHandler) DescargarPDF(c *gin.Context) {
	ventaID, err := uuid.Parse(c.Param("venta_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(apierror.KindValidation, "ID inválido"))
		return
	}
	path, err := h.svc.RutaPDF(c.Request.Context(), ventaID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.FileAttachment(path, "factura_"+ventaID.String()+".pdf")
}
