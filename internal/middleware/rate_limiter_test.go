package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sergio129/SaludDirecta/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func limitedRouter(max int, window time.Duration) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ping", RateLimiter(max, window), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func pingDesde(r *gin.Engine, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = ip + ":51000"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimiter_CortaTrasElLimite(t *testing.T) {
	r := limitedRouter(3, time.Minute)

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, pingDesde(r, "10.1.1.1").Code)
	}

	w := pingDesde(r, "10.1.1.1")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	var apiErr apierror.Error
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &apiErr))
	assert.Equal(t, apierror.KindRateLimited, apiErr.Kind)
}

func TestRateLimiter_ContadoresPorIP(t *testing.T) {
	r := limitedRouter(2, time.Minute)

	assert.Equal(t, http.StatusOK, pingDesde(r, "10.1.1.2").Code)
	assert.Equal(t, http.StatusOK, pingDesde(r, "10.1.1.2").Code)
	assert.Equal(t, http.StatusTooManyRequests, pingDesde(r, "10.1.1.2").Code)

	// A different client still has its full budget.
	assert.Equal(t, http.StatusOK, pingDesde(r, "10.1.1.3").Code)
}

func TestRateLimiter_VentanaSeReabre(t *testing.T) {
	l := newIPLimiter("test", 1, 30*time.Millisecond)

	ok, _ := l.tomar("10.1.1.4")
	require.True(t, ok)
	ok, reapertura := l.tomar("10.1.1.4")
	require.False(t, ok)
	assert.True(t, reapertura.After(time.Now()))

	time.Sleep(40 * time.Millisecond)
	ok, _ = l.tomar("10.1.1.4")
	assert.True(t, ok)
}
