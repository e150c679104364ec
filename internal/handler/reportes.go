package handler

import (
	"net/http"
	"strconv"

	"github.com/sergio129/SaludDirecta/internal/service"

	"github.com/gin-gonic/gin"
)

type ReportesHandler struct{ svc service.ReporteService }

func NewReportesHandler(svc service.ReporteService) *ReportesHandler {
	return &ReportesHandler{svc: svc}
}

// ResumenDia godoc
// @Summary      Resumen de ventas del día
// @Tags         reportes
// @Produce      json
// @Security     BearerAuth
// @Param        fecha query string false "Fecha YYYY-MM-DD (default: hoy)"
// @Success      200 {object} dto.ResumenDiaResponse
// @Router       /v1/reportes/resumen-dia [get]
func (h *ReportesHandler) ResumenDia(c *gin.Context) {
	resp, err := h.svc.ResumenDia(c.Request.Context(), c.Query("fecha"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// TopProductos godoc
// @Summary      Productos más vendidos
// @Tags         reportes
// @Produce      json
// @Security     BearerAuth
// @Param        dias  query int false "Ventana en días (default 30)"
// @Param        limit query int false "Máximo de filas (default 10)"
// @Success      200 {array} dto.TopProductoResponse
// @Router       /v1/reportes/top-productos [get]
func (h *ReportesHandler) TopProductos(c *gin.Context) {
	dias, _ := strconv.Atoi(c.DefaultQuery("dias", "30"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	resp, err := h.svc.TopProductos(c.Request.Context(), dias, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
