package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func corsRouter(origin string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORS(origin))
	r.GET("/v1/productos", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func TestCORS_OrigenConfigurado(t *testing.T) {
	r := corsRouter("https://pos.saluddirecta.com")

	req := httptest.NewRequest(http.MethodGet, "/v1/productos", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://pos.saluddirecta.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
	assert.Equal(t, "Origin", w.Header().Get("Vary"))
}

func TestCORS_SinOrigenUsaComodin(t *testing.T) {
	r := corsRouter("")

	req := httptest.NewRequest(http.MethodGet, "/v1/productos", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCORS_Preflight(t *testing.T) {
	r := corsRouter("https://pos.saluddirecta.com")

	req := httptest.NewRequest(http.MethodOptions, "/v1/productos", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "600", w.Header().Get("Access-Control-Max-Age"))
}
