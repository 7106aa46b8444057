package router

import (
	"time"

	"github.com/SolpiSolutions/sistema-pos-ventas/internal/config"
	"github.com/SolpiSolutions/sistema-pos-ventas/internal/handler"
	"github.com/SolpiSolutions/sistema-pos-ventas/internal/infra"
	"github.com/SolpiSolutions/sistema-pos-ventas/internal/middleware"
	"github.com/SolpiSolutions/sistema-pos-ventas/internal/repository"
	"github.com/SolpiSolutions/sistema-pos-ventas/internal/service"
	"github.com/SolpiSolutions/sistema-pos-ventas/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, mailer *infra.Mailer, dispatcher *worker.Dispatcher) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	usuarioRepo := repository.NewUsuarioRepository(db)
	productoRepo := repository.NewProductoRepository(db)
	categoriaRepo := repository.NewCategoriaRepository(db)
	insumoRepo := repository.NewInsumoRepository(db)
	ventaRepo := repository.NewVentaRepository(db)
	cajaRepo := repository.NewCajaRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(usuarioRepo, cfg, rdb, dispatcher)
	catalogoSvc := service.NewCatalogoService(productoRepo, categoriaRepo, insumoRepo, rdb)
	inventarioSvc := service.NewInventarioService(insumoRepo)
	cajaSvc := service.NewCajaService(cajaRepo, dispatcher, cfg.ReportEmail, cfg.Currency)
	ventaSvc := service.NewVentaService(
		ventaRepo, inventarioSvc, cajaSvc, productoRepo, dispatcher,
		cfg.BusinessName, cfg.Currency, cfg.PDFStoragePath,
	)
	reporteSvc := service.NewReporteService(db, inventarioSvc)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	catalogoH := handler.NewCatalogoHandler(catalogoSvc)
	inventarioH := handler.NewInventarioHandler(inventarioSvc)
	ventasH := handler.NewVentasHandler(ventaSvc)
	cajaH := handler.NewCajaHandler(cajaSvc)
	reportesH := handler.NewReportesHandler(reporteSvc)
	healthH := handler.NewHealthHandler(db, rdb, mailer)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", healthH.Check)
	r.GET("/v1/menu", catalogoH.ObtenerMenu)

	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
		auth.POST("/forgot-password", authH.ForgotPassword)
		auth.POST("/reset-password", authH.ResetPassword)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	cualquierRol := middleware.RequireRole(middleware.RolCajero, middleware.RolAdministrador)
	soloAdmin := middleware.RequireRole(middleware.RolAdministrador)

	v1 := r.Group("/v1", jwtMW)
	{
		v1.POST("/ventas", cualquierRol, ventasH.ProcesarVenta)
		v1.GET("/ventas", cualquierRol, ventasH.ListarVentas)
		v1.GET("/ventas/:id", cualquierRol, ventasH.ObtenerVenta)
		// Anulación restituye stock; reservada al administrador
		v1.DELETE("/ventas/:id", soloAdmin, ventasH.AnularVenta)

		caja := v1.Group("/caja")
		{
			caja.POST("/abrir", cualquierRol, cajaH.AbrirCaja)
			caja.POST("/cerrar", cualquierRol, cajaH.CerrarCaja)
			caja.GET("/activa", cualquierRol, cajaH.SesionActiva)
			caja.GET("/:id/resumen", cualquierRol, cajaH.ObtenerResumen)
			caja.GET("/historial", soloAdmin, cajaH.ListarSesiones)
		}

		v1.GET("/productos", cualquierRol, catalogoH.ListarProductos)
		v1.GET("/productos/:id", cualquierRol, catalogoH.ObtenerProducto)
		prods := v1.Group("/productos", soloAdmin)
		{
			prods.POST("", catalogoH.CrearProducto)
			prods.PUT("/:id", catalogoH.ActualizarProducto)
			prods.DELETE("/:id", catalogoH.EliminarProducto)
		}

		v1.GET("/categorias", cualquierRol, catalogoH.ListarCategorias)
		v1.POST("/categorias", soloAdmin, catalogoH.CrearCategoria)

		inv := v1.Group("/inventario", soloAdmin)
		{
			inv.POST("/insumos", inventarioH.CrearInsumo)
			inv.GET("/insumos", inventarioH.ListarInsumos)
			inv.GET("/insumos/:id", inventarioH.ObtenerInsumo)
			inv.PUT("/insumos/:id", inventarioH.ActualizarInsumo)
			inv.PATCH("/insumos/:id/ajuste", inventarioH.AjustarStock)
			inv.POST("/entradas", inventarioH.RegistrarEntrada)
			inv.GET("/movimientos", inventarioH.ListarMovimientos)
			inv.GET("/alertas", inventarioH.AlertasStock)
		}

		usuarios := v1.Group("/usuarios", soloAdmin)
		{
			usuarios.POST("", authH.CrearUsuario)
			usuarios.GET("", authH.ListarUsuarios)
			usuarios.PUT("/:id", authH.ActualizarUsuario)
			usuarios.DELETE("/:id", authH.DesactivarUsuario)
			usuarios.PATCH("/:id/reactivar", authH.ReactivarUsuario)
		}

		reportes := v1.Group("/reportes", soloAdmin)
		{
			reportes.GET("/dashboard", reportesH.Dashboard)
			reportes.GET("/ventas/csv", reportesH.ExportarVentasCSV)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
