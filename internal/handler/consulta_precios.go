package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/sergio129/SaludDirecta/internal/apierror"
	"github.com/sergio129/SaludDirecta/internal/dto"
	"github.com/sergio129/SaludDirecta/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const precioCacheTTL = 4 * time.Hour

// ConsultaPreciosHandler serves the public price check endpoint.
// No authentication required — no side effects whatsoever.
type ConsultaPreciosHandler struct {
	repo repository.ProductoRepository
	rdb  *redis.Client
}

func NewConsultaPreciosHandler(repo repository.ProductoRepository, rdb *redis.Client) *ConsultaPreciosHandler {
	return &ConsultaPreciosHandler{repo: repo, rdb: rdb}
}

// GetPrecioPorBarcode godoc
// @Summary      Consulta de precio por código de barras (sin autenticación)
// @Tags         precio
// @Produce      json
// @Param        barcode path string true "Código de barras"
// @Success      200 {object} dto.ConsultaPreciosResponse
// @Failure      404 {object} apierror.Error
// @Router       /v1/precio/{barcode} [get]
func (h *ConsultaPreciosHandler) GetPrecioPorBarcode(c *gin.Context) {
	barcode := c.Param("barcode")
	ctx := c.Request.Context()
	cacheKey := "precio:" + barcode

	if cached, err := h.rdb.Get(ctx, cacheKey).Bytes(); err == nil {
		var resp dto.ConsultaPreciosResponse
		if jsonErr := json.Unmarshal(cached, &resp); jsonErr == nil {
			c.JSON(http.StatusOK, resp)
			return
		}
	}

	producto, err := h.repo.FindByBarcode(ctx, barcode)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New(apierror.KindProductNotFound, "Producto no encontrado"))
		return
	}

	resp := dto.ConsultaPreciosResponse{
		Nombre:          producto.Nombre,
		Precio:          producto.Precio,
		PrecioCaja:      producto.PrecioCaja,
		StockDisponible: producto.StockTotal,
		Categoria:       producto.Categoria,
		RequiereReceta:  producto.RequiereReceta,
	}

	// Populate cache — best effort, ignore errors
	if b, jsonErr := json.Marshal(resp); jsonErr == nil {
		_ = h.rdb.Set(context.Background(), cacheKey, b, precioCacheTTL).Err()
	}

	c.JSON(http.StatusOK, resp)
}
