package router

import (
	"time"

	"github.com/sergio129/SaludDirecta/internal/config"
	"github.com/sergio129/SaludDirecta/internal/handler"
	"github.com/sergio129/SaludDirecta/internal/infra"
	"github.com/sergio129/SaludDirecta/internal/middleware"
	"github.com/sergio129/SaludDirecta/internal/model"
	"github.com/sergio129/SaludDirecta/internal/repository"
	"github.com/sergio129/SaludDirecta/internal/service"
	"github.com/sergio129/SaludDirecta/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, mailerCB *infra.CircuitBreaker) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.FrontendOrigin))
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	usuarioRepo := repository.NewUsuarioRepository(db)
	productoRepo := repository.NewProductoRepository(db)
	ventaRepo := repository.NewVentaRepository(db)
	facturaRepo := repository.NewFacturaRepository(db)
	historialPrecioRepo := repository.NewHistorialPrecioRepository(db)
	movimientoStockRepo := repository.NewMovimientoStockRepository(db)
	categoriaRepo := repository.NewCategoriaRepository(db)

	// Worker dispatcher — injected into services that enqueue async jobs
	dispatcher := worker.NewDispatcher(rdb)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(usuarioRepo, cfg)
	productoSvc := service.NewProductoService(productoRepo, historialPrecioRepo)
	inventarioSvc := service.NewInventarioService(productoRepo, movimientoStockRepo)
	ventaSvc := service.NewVentaService(ventaRepo, productoRepo, movimientoStockRepo, dispatcher,
		time.Duration(cfg.VentaTimeoutSeconds)*time.Second)
	facturaSvc := service.NewFacturaService(facturaRepo, cfg.PDFStoragePath)
	reporteSvc := service.NewReporteService(ventaRepo)
	categoriaSvc := service.NewCategoriaService(categoriaRepo)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	productosH := handler.NewProductosHandler(productoSvc)
	inventarioH := handler.NewInventarioHandler(inventarioSvc)
	ventasH := handler.NewVentasHandler(ventaSvc)
	facturasH := handler.NewFacturasHandler(facturaSvc)
	reportesH := handler.NewReportesHandler(reporteSvc)
	consultaH := handler.NewConsultaPreciosHandler(productoRepo, rdb)
	categoriasH := handler.NewCategoriasHandler(categoriaSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb, mailerCB))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
		auth.POST("/registro", middleware.LoginRateLimiter(), authH.Registro)
	}

	// Price check — no auth required
	r.GET("/v1/precio/:barcode", consultaH.GetPrecioPorBarcode)

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	vendedores := middleware.RequireRole(model.RolVendedor, model.RolAdministrador)
	admin := middleware.RequireRole(model.RolAdministrador)

	v1 := r.Group("/v1", jwtMW)
	{
		v1.POST("/ventas", vendedores, ventasH.RegistrarVenta)
		v1.GET("/ventas", vendedores, ventasH.ListarVentas)
		v1.GET("/ventas/:id", vendedores, ventasH.ObtenerVenta)
		v1.DELETE("/ventas/:id", admin, ventasH.AnularVenta)

		v1.GET("/productos", vendedores, productosH.Listar)
		v1.GET("/productos/:id", vendedores, productosH.Obtener)
		v1.GET("/productos/:id/historial-precios", vendedores, productosH.HistorialPrecios)
		prods := v1.Group("/productos", admin)
		{
			prods.POST("", productosH.Crear)
			prods.PUT("/:id", productosH.Actualizar)
			prods.DELETE("/:id", productosH.Desactivar)
			prods.POST("/:id/reactivar", productosH.Reactivar)
		}

		inv := v1.Group("/inventario")
		{
			inv.POST("/:id/ajustar", admin, inventarioH.AjustarStock)
			inv.GET("/alertas", vendedores, inventarioH.Alertas)
			inv.GET("/movimientos", vendedores, inventarioH.Movimientos)
		}

		fact := v1.Group("/facturas", vendedores)
		{
			fact.GET("/:venta_id", facturasH.ObtenerPorVenta)
			fact.GET("/:venta_id/pdf", facturasH.DescargarPDF)
		}

		rep := v1.Group("/reportes", admin)
		{
			rep.GET("/resumen-dia", reportesH.ResumenDia)
			rep.GET("/top-productos", reportesH.TopProductos)
		}

		v1.GET("/categorias", vendedores, categoriasH.Listar)
		categorias := v1.Group("/categorias", admin)
		{
			categorias.POST("", categoriasH.Crear)
			categorias.PUT("/:id", categoriasH.Actualizar)
			categorias.DELETE("/:id", categoriasH.Desactivar)
		}

		usuarios := v1.Group("/usuarios", admin)
		{
			usuarios.POST("", authH.CrearUsuario)
			usuarios.GET("", authH.ListarUsuarios)
			usuarios.PUT("/:id", authH.ActualizarUsuario)
			usuarios.POST("/:id/aprobar", authH.AprobarUsuario)
			usuarios.DELETE("/:id", authH.DesactivarUsuario)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
