package handler

import (
	"net/http"

	"github.com/sergio129/SaludDirecta/internal/apierror"
	"github.com/sergio129/SaludDirecta/internal/dto"
	"github.com/sergio129/SaludDirecta/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type InventarioHandler struct{ svc service.InventarioService }

func NewInventarioHandler(svc service.InventarioService) *InventarioHandler {
	return &InventarioHandler{svc: svc}
}

// AjustarStock godoc
// @Summary      Ajustar stock de un producto
// @Description  Sobrescribe cajas, unidades por caja y sueltas (reconteo físico / reposición). Registra un movimiento de ajuste manual.
// @Tags         inventario
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string true "UUID del producto"
// @Param        body body dto.AjustarStockRequest true "Stock absoluto"
// @Success      200  {object} dto.ProductoResponse
// @Failure      404  {object} apierror.Error
// @Router       /v1/inventario/{id}/ajustar [post]
func (h *InventarioHandler) AjustarStock(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(apierror.KindValidation, "ID inválido"))
		return
	}
	var req dto.AjustarStockRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AjustarStock(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Alertas godoc
// @Summary      Productos en o bajo su stock mínimo
// @Tags         inventario
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} dto.AlertaStockResponse
// @Router       /v1/inventario/alertas [get]
func (h *InventarioHandler) Alertas(c *gin.Context) {
	resp, err := h.svc.ObtenerAlertas(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Movimientos godoc
// @Summary      Listar movimientos de stock
// @Tags         inventario
// @Produce      json
// @Security     BearerAuth
// @Param        producto_id query string false "Filtrar por producto"
// @Param        tipo        query string false "venta | ajuste_manual | anulacion"
// @Param        page        query int    false "Página (default 1)"
// @Param        limit       query int    false "Registros por página (default 100)"
// @Success      200 {object} dto.MovimientoListResponse
// @Router       /v1/inventario/movimientos [get]
func (h *InventarioHandler) Movimientos(c *gin.Context) {
	var filter dto.MovimientoFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(apierror.KindValidation, err.Error()))
		return
	}
	resp, err := h.svc.ListarMovimientos(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
