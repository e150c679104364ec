package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sergio129/SaludDirecta/internal/apierror"
	"github.com/sergio129/SaludDirecta/internal/middleware"
	"github.com/sergio129/SaludDirecta/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// A token whose subject is not a UUID must be rejected before the service
// runs, never recorded as a nil-UUID seller.
func TestRegistrarVenta_SubjectInvalidoEnToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewVentasHandler(nil)
	r.POST("/v1/ventas", func(c *gin.Context) {
		c.Set(middleware.ClaimsKey, &middleware.JWTClaims{
			UserID: "no-es-un-uuid",
			Email:  "vendedor@farmacia.test",
			Rol:    model.RolVendedor,
		})
	}, h.RegistrarVenta)

	body := `{"items":[{"producto_id":"` + uuid.NewString() + `","cantidad":1}]}`
	req := httptest.NewRequest(http.MethodPost, "/v1/ventas", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var apiErr apierror.Error
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &apiErr))
	assert.Equal(t, apierror.KindUnauthorized, apiErr.Kind)
}
