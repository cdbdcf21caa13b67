package router

import (
	"time"

	"lavanderia/internal/config"
	"lavanderia/internal/handler"
	"lavanderia/internal/infra"
	"lavanderia/internal/middleware"
	"lavanderia/internal/model"
	"lavanderia/internal/repository"
	"lavanderia/internal/service"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Deps are the collaborators built by the composition root and shared with
// the background workers.
type Deps struct {
	Revogacao   *infra.ListaRevogacao
	Notificador service.Notificador // nil disables delivery emails
	BcryptCusto int                 // 0 means service.BcryptCusto
}

const (
	super    = model.PapelSuperAdmin
	admin    = model.PapelAdmin
	manager  = model.PapelManager
	operator = model.PapelOperator
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, deps Deps) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	if deps.Revogacao == nil {
		deps.Revogacao = infra.NewListaRevogacao(rdb)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.Metricas())
	r.Use(middleware.CORS(cfg.Domain))
	r.Use(middleware.ErrorHandler())
	if cfg.RateLimitPerMinute > 0 {
		r.Use(middleware.RateLimiter(cfg.RateLimitPerMinute, time.Minute))
	}

	// ── Repositories ─────────────────────────────────────────────────────────
	usuarioRepo := repository.NewUsuarioRepository(db)
	identidadeRepo := repository.NewIdentidadeRepository(db)
	lavanderiaRepo := repository.NewLavanderiaRepository(db)
	categoriaRepo := repository.NewCategoriaRepository(db)
	formaRepo := repository.NewFormaPagamentoRepository(db)
	demandaRepo := repository.NewDemandaRepository(db)
	relatorioRepo := repository.NewRelatorioRepository(db)
	solicitacaoRepo := repository.NewSolicitacaoSenhaRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	provedor := service.NewProvedorLocal(identidadeRepo, deps.BcryptCusto)
	authSvc := service.NewAuthService(provedor, usuarioRepo, solicitacaoRepo, deps.Revogacao, cfg)
	usuarioSvc := service.NewUsuarioService(usuarioRepo, lavanderiaRepo, provedor)
	lavanderiaSvc := service.NewLavanderiaService(lavanderiaRepo)
	categoriaSvc := service.NewCategoriaService(categoriaRepo)
	formaSvc := service.NewFormaPagamentoService(formaRepo)
	demandaSvc := service.NewDemandaService(demandaRepo, categoriaRepo, formaRepo, usuarioRepo, lavanderiaRepo, deps.Notificador)
	relatorioSvc := service.NewRelatorioService(relatorioRepo, demandaRepo, lavanderiaRepo, formaRepo, usuarioRepo)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	usuariosH := handler.NewUsuariosHandler(usuarioSvc)
	lavanderiasH := handler.NewLavanderiasHandler(lavanderiaSvc)
	categoriasH := handler.NewCategoriasHandler(categoriaSvc)
	formasH := handler.NewFormasPagamentoHandler(formaSvc)
	demandasH := handler.NewDemandasHandler(demandaSvc, relatorioSvc)
	relatoriosH := handler.NewRelatoriosHandler(relatorioSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", middleware.LoginRateLimiter(), authH.Refresh)
		auth.POST("/esqueci-senha", middleware.LoginRateLimiter(), authH.EsqueciSenha)
		auth.POST("/redefinir-senha", middleware.LoginRateLimiter(), authH.RedefinirSenha)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret, deps.Revogacao, usuarioRepo)
	v1 := r.Group("/v1", jwtMW)
	{
		v1.POST("/auth/logout", authH.Logout)

		// Any authenticated role
		v1.GET("/usuarios/me", usuariosH.Perfil)
		v1.GET("/lavanderias", lavanderiasH.Listar)
		v1.GET("/lavanderias/:id", lavanderiasH.Obter)

		lav := v1.Group("/lavanderias")
		{
			lav.POST("", middleware.RequireRole(super), lavanderiasH.Criar)
			lav.PUT("/:id", middleware.RequireRole(super, admin), lavanderiasH.Atualizar)
			lav.DELETE("/:id", middleware.RequireRole(super), lavanderiasH.Excluir)
		}

		usuarios := v1.Group("/usuarios", middleware.RequireRole(super, admin))
		{
			usuarios.GET("", usuariosH.Listar)
			usuarios.POST("", usuariosH.Criar)
			usuarios.PUT("/:id", usuariosH.Atualizar)
			usuarios.DELETE("/:id", usuariosH.Desativar)
		}

		// Catalog: admin writes, every tenant role reads
		v1.GET("/categorias", middleware.RequireRole(admin, manager, operator), categoriasH.Listar)
		categorias := v1.Group("/categorias", middleware.RequireRole(admin))
		{
			categorias.POST("", categoriasH.Criar)
			categorias.PUT("/:id", categoriasH.Atualizar)
			categorias.DELETE("/:id", categoriasH.Excluir)
		}

		v1.GET("/formas-pagamento", middleware.RequireRole(admin, manager, operator), formasH.Listar)
		formas := v1.Group("/formas-pagamento", middleware.RequireRole(admin))
		{
			formas.POST("", formasH.Criar)
			formas.PUT("/:id", formasH.Atualizar)
			formas.DELETE("/:id", formasH.Excluir)
		}

		// Demands: admin reads, manager and operator work them
		leitura := middleware.RequireRole(admin, manager, operator)
		escrita := middleware.RequireRole(manager, operator)
		dem := v1.Group("/demandas")
		{
			dem.GET("", leitura, demandasH.Listar)
			dem.GET("/:id", leitura, demandasH.Obter)
			dem.GET("/:id/historico-categorias", leitura, demandasH.Historico)
			dem.GET("/:id/nota", leitura, demandasH.Nota)
			dem.POST("", escrita, demandasH.Criar)
			dem.PUT("/:id", escrita, demandasH.Atualizar)
			dem.POST("/:id/avancar", escrita, demandasH.Avancar)
			dem.PATCH("/:id/status", escrita, demandasH.Transicionar)
			dem.DELETE("/:id", escrita, demandasH.Cancelar)
		}

		v1.GET("/dashboard", middleware.RequireRole(admin, manager, operator), relatoriosH.Dashboard)
		rel := v1.Group("/relatorios", middleware.RequireRole(manager))
		{
			rel.GET("/demandas", relatoriosH.Relatorio)
			rel.GET("/responsaveis", relatoriosH.Responsaveis)
		}
	}

	// Swagger UI, outside production only
	if !cfg.IsProduction() {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
