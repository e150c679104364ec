package handler

import (
	"net/http"

	"github.com/sergio129/SaludDirecta/internal/apierror"
	"github.com/sergio129/SaludDirecta/internal/dto"
	"github.com/sergio129/SaludDirecta/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CategoriasHandler struct{ svc service.CategoriaService }

func NewCategoriasHandler(svc service.CategoriaService) *CategoriasHandler {
	return &CategoriasHandler{svc: svc}
}

// Crear godoc
// @Summary      Crear categoría
// @Tags         categorias
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CrearCategoriaRequest true "Datos de la categoría"
// @Success      201  {object} dto.CategoriaResponse
// @Failure      409  {object} apierror.Error
// @Router       /v1/categorias [post]
func (h *CategoriasHandler) Crear(c *gin.Context) {
	var req dto.CrearCategoriaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Listar godoc
// @Summary      Listar categorías
// @Tags         categorias
// @Produce      json
// @Security     BearerAuth
// @Param        todas query bool false "Incluir inactivas"
// @Success      200 {array} dto.CategoriaResponse
// @Router       /v1/categorias [get]
func (h *CategoriasHandler) Listar(c *gin.Context) {
	soloActivas := c.Query("todas") != "true"
	resp, err := h.svc.Listar(c.Request.Context(), soloActivas)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Actualizar godoc
// @Summary      Actualizar categoría
// @Tags         categorias
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string true "UUID de la categoría"
// @Param        body body dto.ActualizarCategoriaRequest true "Campos a actualizar"
// @Success      200  {object} dto.CategoriaResponse
// @Failure      404  {object} apierror.Error
// @Router       /v1/categorias/{id} [put]
func (h *CategoriasHandler) Actualizar(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(apierror.KindValidation, "ID inválido"))
		return
	}
	var req dto.ActualizarCategoriaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Actualizar(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Desactivar godoc
// @Summary      Desactivar categoría
// @Tags         categorias
// @Security     BearerAuth
// @Param        id path string true "UUID de la categoría"
// @Success      204
// @Failure      404 {object} apierror.Error
// @Router       /v1/categorias/{id} [delete]
func (h *CategoriasHandler) Desactivar(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(apierror.KindValidation, "ID inválido"))
		return
	}
	if err := h.svc.Desactivar(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
