package router

import (
	"github.com/aprovacrm/backend/internal/interfaces/http/handler"
	"github.com/gin-gonic/gin"
)

// Handlers groups every HTTP handler of the API
type Handlers struct {
	Auth       *handler.AuthHandler
	Onboarding *handler.OnboardingHandler
	Clientes   *handler.ClienteHandler
	Bancos     *handler.BancoHandler
	Produtos   *handler.ProdutoHandler
	Promotoras *handler.PromotoraHandler
	Propostas  *handler.PropostaHandler
	Comissoes  *handler.ComissaoHandler
	Documentos *handler.DocumentoHandler
	Activity   *handler.ActivityLogHandler
	Dashboard  *handler.DashboardHandler
	Realtime   *handler.RealtimeHandler
	System     *handler.SystemHandler
}

// RouteOptions carries per-group middleware
type RouteOptions struct {
	// AuthRateLimit guards the unauthenticated auth endpoints
	AuthRateLimit gin.HandlerFunc
}

// Domains builds the route groups of the API. Authentication and tenant
// resolution are applied globally by the server, not per group.
func Domains(h Handlers, opts RouteOptions) []*DomainGroup {
	var publicAuth []gin.HandlerFunc
	if opts.AuthRateLimit != nil {
		publicAuth = append(publicAuth, opts.AuthRateLimit)
	}
	withLimit := func(fn gin.HandlerFunc) []gin.HandlerFunc {
		return append(append([]gin.HandlerFunc{}, publicAuth...), fn)
	}

	auth := NewDomainGroup("auth", "/auth").
		POST("/register", withLimit(h.Auth.Register)...).
		POST("/login", withLimit(h.Auth.Login)...).
		POST("/refresh", withLimit(h.Auth.RefreshToken)...).
		POST("/logout", h.Auth.Logout).
		GET("/me", h.Auth.Me)

	onboarding := NewDomainGroup("onboarding", "/onboarding").
		GET("/status", h.Onboarding.Status).
		POST("/banco", h.Onboarding.CreateBanco).
		POST("/produto", h.Onboarding.CreateProduto).
		POST("/complete", h.Onboarding.Complete)

	clientes := NewDomainGroup("clientes", "/clientes").
		GET("", h.Clientes.List).
		GET("/options", h.Clientes.Options).
		POST("", h.Clientes.Create).
		POST("/import", h.Clientes.Import).
		GET("/:id", h.Clientes.GetByID).
		PUT("/:id", h.Clientes.Update).
		DELETE("/:id", h.Clientes.Delete)

	bancos := NewDomainGroup("bancos", "/bancos").
		GET("", h.Bancos.List).
		GET("/options", h.Bancos.Options).
		POST("", h.Bancos.Create).
		GET("/:id", h.Bancos.GetByID).
		PUT("/:id", h.Bancos.Update).
		DELETE("/:id", h.Bancos.Delete)

	produtos := NewDomainGroup("produtos", "/produtos").
		GET("", h.Produtos.List).
		GET("/options", h.Produtos.Options).
		POST("", h.Produtos.Create).
		GET("/:id", h.Produtos.GetByID).
		PUT("/:id", h.Produtos.Update).
		DELETE("/:id", h.Produtos.Delete)

	promotoras := NewDomainGroup("promotoras", "/promotoras").
		GET("", h.Promotoras.List).
		GET("/options", h.Promotoras.Options).
		POST("", h.Promotoras.Create).
		GET("/:id", h.Promotoras.GetByID).
		PUT("/:id", h.Promotoras.Update).
		DELETE("/:id", h.Promotoras.Delete)

	propostas := NewDomainGroup("propostas", "/propostas").
		GET("", h.Propostas.List).
		GET("/options", h.Propostas.Options).
		POST("", h.Propostas.Create).
		GET("/:id", h.Propostas.GetByID).
		PUT("/:id", h.Propostas.Update).
		PATCH("/:id/status", h.Propostas.ChangeStatus).
		DELETE("/:id", h.Propostas.Delete).
		GET("/:id/comissoes", h.Comissoes.ListByProposta).
		POST("/:id/comissoes", h.Comissoes.Create).
		GET("/:id/documentos", h.Documentos.ListByProposta).
		POST("/:id/documentos", h.Documentos.Upload)

	comissoes := NewDomainGroup("comissoes", "/comissoes").
		PUT("/:id", h.Comissoes.Update).
		POST("/:id/pagar", h.Comissoes.MarcarComoPago).
		DELETE("/:id", h.Comissoes.Delete)

	documentos := NewDomainGroup("documentos", "/documentos").
		GET("/:id/download", h.Documentos.Download).
		POST("/:id/confirm", h.Documentos.Confirm).
		DELETE("/:id", h.Documentos.Delete)

	activityLogs := NewDomainGroup("activity-logs", "/activity-logs").
		GET("", h.Activity.List).
		GET("/users", h.Activity.Users)

	dashboard := NewDomainGroup("dashboard", "/dashboard").
		GET("/kpis", h.Dashboard.KPIs).
		GET("/trends", h.Dashboard.Trends).
		GET("/status", h.Dashboard.StatusBreakdown).
		GET("/recent", h.Dashboard.RecentPropostas)

	realtime := NewDomainGroup("realtime", "/realtime").
		GET("/stream", h.Realtime.Stream)

	system := NewDomainGroup("system", "/system").
		GET("/info", h.System.GetSystemInfo).
		GET("/ping", h.System.Ping)

	return []*DomainGroup{
		auth, onboarding, clientes, bancos, produtos, promotoras, propostas,
		comissoes, documentos, activityLogs, dashboard, realtime, system,
	}
}

// Setup registers the API groups under /api/v1 and the health checks at the root
func Setup(engine *gin.Engine, h Handlers, opts RouteOptions) *Router {
	r := NewRouter(engine)
	r.Register(Domains(h, opts)...).Setup()

	engine.GET("/health", h.System.Health)
	engine.GET("/api/v1/health", h.System.Health)
	return r
}
