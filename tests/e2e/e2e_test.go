//go:build integration

package e2e

// End-to-end tests against real Postgres + Redis via testcontainers.
// Run with: go test -tags integration ./tests/e2e/... -v

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sergio129/SaludDirecta/internal/config"
	"github.com/sergio129/SaludDirecta/internal/infra"
	"github.com/sergio129/SaludDirecta/internal/model"
	"github.com/sergio129/SaludDirecta/internal/router"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
	"golang.org/x/crypto/bcrypt"
)

// ── Helpers ──────────────────────────────────────────────────────────────────

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func do(t *testing.T, srv *httptest.Server, method, path string, body *bytes.Buffer, token string) *http.Response {
	t.Helper()
	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequest(method, srv.URL+path, body)
	} else {
		req, err = http.NewRequest(method, srv.URL+path, nil)
	}
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

// ── Test Suite Setup ─────────────────────────────────────────────────────────

type testEnv struct {
	server *httptest.Server
	token  string // admin JWT
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	pgC, err := tcPostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcPostgres.WithDatabase("saluddirecta_test"),
		tcPostgres.WithUsername("saluddirecta"),
		tcPostgres.WithPassword("saluddirecta"),
		tcPostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	rdC, err := tcRedis.RunContainer(ctx,
		testcontainers.WithImage("redis:7-alpine"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(ctx) })

	rdURL, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)

	cfg := &config.Config{
		Port:                8000,
		Env:                 "test",
		JWTSecret:           "test-secret-key",
		JWTExpirationHours:  8,
		JWTRefreshHours:     24,
		DatabaseURL:         pgURL,
		RedisURL:            rdURL,
		VentaTimeoutSeconds: 10,
		WorkerPoolSize:      1,
		PDFStoragePath:      t.TempDir(),
		NombreFarmacia:      "SaludDirecta E2E",
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	require.NoError(t, err)

	rdb, err := infra.NewRedis(cfg.RedisURL)
	require.NoError(t, err)

	require.NoError(t, infra.RunMigrations(db))

	// seed an approved admin
	hash, err := bcrypt.GenerateFromPassword([]byte("saluddirecta2026"), 12)
	require.NoError(t, err)
	require.NoError(t, db.Create(&model.Usuario{
		Nombre:       "Admin E2E",
		Email:        "admin@e2e.test",
		PasswordHash: string(hash),
		Rol:          model.RolAdministrador,
		Activo:       true,
	}).Error)

	mailerCB := infra.NewCircuitBreaker(infra.CircuitBreakerConfig{
		FailureThreshold: 5,
		SuccessThreshold: 2,
		OpenTimeout:      30 * time.Second,
	})
	r := router.New(cfg, db, rdb, mailerCB)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	loginResp := do(t, srv, "POST", "/v1/auth/login",
		jsonBody(t, map[string]string{"email": "admin@e2e.test", "password": "saluddirecta2026"}),
		"",
	)
	require.Equal(t, http.StatusOK, loginResp.StatusCode)
	var loginBody struct {
		AccessToken string `json:"access_token"`
	}
	decodeJSON(t, loginResp, &loginBody)
	require.NotEmpty(t, loginBody.AccessToken)

	return &testEnv{server: srv, token: loginBody.AccessToken}
}

func crearProducto(t *testing.T, env *testEnv, nombre string, cajas, porCaja, sueltas int) string {
	t.Helper()
	resp := do(t, env.server, "POST", "/v1/productos",
		jsonBody(t, map[string]any{
			"nombre":                 nombre,
			"precio":                 1.50,
			"precio_caja":            12.00,
			"precio_compra":          0.80,
			"stock_cajas":            cajas,
			"unidades_por_caja":      porCaja,
			"stock_unidades_sueltas": sueltas,
			"categoria":              "Analgésicos",
			"laboratorio":            "Genfar",
		}),
		env.token,
	)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var prod struct {
		ID string `json:"id"`
	}
	decodeJSON(t, resp, &prod)
	return prod.ID
}

type productoJSON struct {
	ID                   string `json:"id"`
	StockCajas           int    `json:"stock_cajas"`
	StockUnidadesSueltas int    `json:"stock_unidades_sueltas"`
	StockTotal           int    `json:"stock_total"`
}

func obtenerProducto(t *testing.T, env *testEnv, id string) productoJSON {
	t.Helper()
	resp := do(t, env.server, "GET", "/v1/productos/"+id, nil, env.token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var p productoJSON
	decodeJSON(t, resp, &p)
	return p
}

// ── Tests ────────────────────────────────────────────────────────────────────

func TestE2E_CicloCompletoDeVenta(t *testing.T) {
	env := setupTestEnv(t)
	prodID := crearProducto(t, env, "Ibuprofeno 400mg", 3, 10, 2) // 32 unidades

	// sale: 1 caja + 5 unidades = 17 unidades
	ventaResp := do(t, env.server, "POST", "/v1/ventas",
		jsonBody(t, map[string]any{
			"items": []map[string]any{
				{"producto_id": prodID, "cantidad": 1, "tipo_venta": "caja"},
				{"producto_id": prodID, "cantidad": 5, "tipo_venta": "unidad"},
			},
			"descuento":   10,
			"metodo_pago": "efectivo",
		}),
		env.token,
	)
	require.Equal(t, http.StatusCreated, ventaResp.StatusCode)
	var venta struct {
		ID             string `json:"id"`
		NumeroFactura  string `json:"numero_factura"`
		Subtotal       string `json:"subtotal"`
		DescuentoMonto string `json:"descuento_monto"`
		Total          string `json:"total"`
		Estado         string `json:"estado"`
	}
	decodeJSON(t, ventaResp, &venta)
	assert.Regexp(t, `^FAC-\d{8}-\d{3}$`, venta.NumeroFactura)
	assert.Equal(t, "completada", venta.Estado)
	// 12.00 + 5×1.50 = 19.50; 10% = 1.95 → 17.55
	assert.Equal(t, "19.5", venta.Subtotal)
	assert.Equal(t, "1.95", venta.DescuentoMonto)
	assert.Equal(t, "17.55", venta.Total)

	// stock went 32 → 15, one box broken
	p := obtenerProducto(t, env, prodID)
	assert.Equal(t, 15, p.StockTotal)
	assert.Equal(t, 1, p.StockCajas)
	assert.Equal(t, 5, p.StockUnidadesSueltas)

	// the sale shows up in today's list
	listResp := do(t, env.server, "GET", "/v1/ventas", nil, env.token)
	require.Equal(t, http.StatusOK, listResp.StatusCode)
	var list struct {
		Data  []struct{ ID string } `json:"data"`
		Total int64                 `json:"total"`
	}
	decodeJSON(t, listResp, &list)
	assert.Equal(t, int64(1), list.Total)

	// a stock movement was recorded for the sale
	movResp := do(t, env.server, "GET", "/v1/inventario/movimientos?producto_id="+prodID, nil, env.token)
	require.Equal(t, http.StatusOK, movResp.StatusCode)
	var movs struct {
		Data []struct {
			Tipo     string `json:"tipo"`
			Cantidad int    `json:"cantidad"`
		} `json:"data"`
	}
	decodeJSON(t, movResp, &movs)
	require.Len(t, movs.Data, 1)
	assert.Equal(t, "venta", movs.Data[0].Tipo)
	assert.Equal(t, -17, movs.Data[0].Cantidad)
}

func TestE2E_StockInsuficiente(t *testing.T) {
	env := setupTestEnv(t)
	prodID := crearProducto(t, env, "Omeprazol 20mg", 0, 10, 4) // 4 unidades

	resp := do(t, env.server, "POST", "/v1/ventas",
		jsonBody(t, map[string]any{
			"items": []map[string]any{
				{"producto_id": prodID, "cantidad": 3, "tipo_venta": "unidad"},
				{"producto_id": prodID, "cantidad": 2, "tipo_venta": "unidad"},
			},
		}),
		env.token,
	)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	var body struct {
		ErrorKind string         `json:"error_kind"`
		Details   map[string]any `json:"details"`
	}
	decodeJSON(t, resp, &body)
	assert.Equal(t, "InsufficientStock", body.ErrorKind)
	assert.Equal(t, float64(5), body.Details["unidades_solicitadas"])

	// stock untouched
	assert.Equal(t, 4, obtenerProducto(t, env, prodID).StockTotal)
}

func TestE2E_AnularVentaNoRestauraStock(t *testing.T) {
	env := setupTestEnv(t)
	prodID := crearProducto(t, env, "Loratadina 10mg", 1, 10, 0)

	ventaResp := do(t, env.server, "POST", "/v1/ventas",
		jsonBody(t, map[string]any{
			"items": []map[string]any{
				{"producto_id": prodID, "cantidad": 4, "tipo_venta": "unidad"},
			},
		}),
		env.token,
	)
	require.Equal(t, http.StatusCreated, ventaResp.StatusCode)
	var venta struct {
		ID string `json:"id"`
	}
	decodeJSON(t, ventaResp, &venta)
	require.Equal(t, 6, obtenerProducto(t, env, prodID).StockTotal)

	anularResp := do(t, env.server, "DELETE", "/v1/ventas/"+venta.ID,
		jsonBody(t, map[string]any{"motivo": "cliente se arrepintió"}),
		env.token,
	)
	require.Equal(t, http.StatusNoContent, anularResp.StatusCode)
	anularResp.Body.Close()

	// stock stays deducted after annulment
	assert.Equal(t, 6, obtenerProducto(t, env, prodID).StockTotal)

	// second annulment is a conflict
	again := do(t, env.server, "DELETE", "/v1/ventas/"+venta.ID,
		jsonBody(t, map[string]any{"motivo": "duplicado"}),
		env.token,
	)
	assert.Equal(t, http.StatusConflict, again.StatusCode)
	again.Body.Close()
}

func TestE2E_AjusteDeStockYAlertas(t *testing.T) {
	env := setupTestEnv(t)
	prodID := crearProducto(t, env, "Insulina NPH", 2, 10, 0)

	// adjust down to 3 loose units (below the default minimum of 5)
	ajusteResp := do(t, env.server, "POST", "/v1/inventario/"+prodID+"/ajustar",
		jsonBody(t, map[string]any{
			"stock_cajas":            0,
			"unidades_por_caja":      10,
			"stock_unidades_sueltas": 3,
			"motivo":                 "conteo físico",
		}),
		env.token,
	)
	require.Equal(t, http.StatusOK, ajusteResp.StatusCode)
	ajusteResp.Body.Close()

	assert.Equal(t, 3, obtenerProducto(t, env, prodID).StockTotal)

	alertasResp := do(t, env.server, "GET", "/v1/inventario/alertas", nil, env.token)
	require.Equal(t, http.StatusOK, alertasResp.StatusCode)
	var alertas []struct {
		ProductoID string `json:"producto_id"`
		Desglose   string `json:"desglose"`
	}
	decodeJSON(t, alertasResp, &alertas)
	require.Len(t, alertas, 1)
	assert.Equal(t, prodID, alertas[0].ProductoID)
}

func TestE2E_HistorialDePrecios(t *testing.T) {
	env := setupTestEnv(t)
	prodID := crearProducto(t, env, "Enalapril 10mg", 1, 10, 0)

	updResp := do(t, env.server, "PUT", "/v1/productos/"+prodID,
		jsonBody(t, map[string]any{"precio": 2.10}),
		env.token,
	)
	require.Equal(t, http.StatusOK, updResp.StatusCode)
	updResp.Body.Close()

	histResp := do(t, env.server, "GET", "/v1/productos/"+prodID+"/historial-precios", nil, env.token)
	require.Equal(t, http.StatusOK, histResp.StatusCode)
	var hist []struct {
		VentaAntes   string `json:"venta_antes"`
		VentaDespues string `json:"venta_despues"`
	}
	decodeJSON(t, histResp, &hist)
	require.Len(t, hist, 1)
	assert.Equal(t, "1.5", hist[0].VentaAntes)
	assert.Equal(t, "2.1", hist[0].VentaDespues)
}

func TestE2E_RegistroYAprobacion(t *testing.T) {
	env := setupTestEnv(t)

	regResp := do(t, env.server, "POST", "/v1/auth/registro",
		jsonBody(t, map[string]any{
			"email":    "vendedora@e2e.test",
			"nombre":   "Ana Ruiz",
			"password": "clave-larga-8",
		}),
		"",
	)
	require.Equal(t, http.StatusCreated, regResp.StatusCode)
	var nueva struct {
		ID     string `json:"id"`
		Activo bool   `json:"activo"`
	}
	decodeJSON(t, regResp, &nueva)
	assert.False(t, nueva.Activo)

	// login rejected until approved
	loginResp := do(t, env.server, "POST", "/v1/auth/login",
		jsonBody(t, map[string]string{"email": "vendedora@e2e.test", "password": "clave-larga-8"}),
		"",
	)
	assert.Equal(t, http.StatusUnauthorized, loginResp.StatusCode)
	loginResp.Body.Close()

	aprobarResp := do(t, env.server, "POST", "/v1/usuarios/"+nueva.ID+"/aprobar", nil, env.token)
	require.Equal(t, http.StatusNoContent, aprobarResp.StatusCode)
	aprobarResp.Body.Close()

	loginResp = do(t, env.server, "POST", "/v1/auth/login",
		jsonBody(t, map[string]string{"email": "vendedora@e2e.test", "password": "clave-larga-8"}),
		"",
	)
	assert.Equal(t, http.StatusOK, loginResp.StatusCode)
	loginResp.Body.Close()
}
