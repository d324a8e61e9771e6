package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	activityapp "github.com/aprovacrm/backend/internal/application/activity"
	crmapp "github.com/aprovacrm/backend/internal/application/crm"
	"github.com/aprovacrm/backend/internal/application/dashboard"
	identityapp "github.com/aprovacrm/backend/internal/application/identity"
	importapp "github.com/aprovacrm/backend/internal/application/import"
	"github.com/aprovacrm/backend/internal/domain/crm"
	"github.com/aprovacrm/backend/internal/domain/shared"
	"github.com/aprovacrm/backend/internal/infrastructure/auth"
	"github.com/aprovacrm/backend/internal/infrastructure/cache"
	"github.com/aprovacrm/backend/internal/infrastructure/config"
	"github.com/aprovacrm/backend/internal/infrastructure/event"
	"github.com/aprovacrm/backend/internal/infrastructure/logger"
	"github.com/aprovacrm/backend/internal/infrastructure/persistence"
	"github.com/aprovacrm/backend/internal/infrastructure/storage"
	"github.com/aprovacrm/backend/internal/infrastructure/telemetry"
	"github.com/aprovacrm/backend/internal/interfaces/http/handler"
	"github.com/aprovacrm/backend/internal/interfaces/http/middleware"
	"github.com/aprovacrm/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	_ "github.com/aprovacrm/backend/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

//	@title			AprovaCRM API
//	@version		1.0
//	@description	API multi-empresa de intermediação de crédito

//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

const (
	version = "1.0.0"

	// multipartOverhead covers the form boundaries and headers around an uploaded file
	multipartOverhead = 1 << 20
)

func main() {
	// A missing .env is normal outside development
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	logCfg := logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: cfg.Log.Output}
	bootLog, err := logger.New(logCfg)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	ctx := context.Background()

	// Telemetry comes first so the final logger can tee into the OTLP log bridge
	logsProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfigFrom(cfg.Telemetry), bootLog)
	if err != nil {
		bootLog.Fatal("Failed to initialize OTLP logs", zap.Error(err))
	}
	log := bootLog
	if logsProvider.IsEnabled() {
		if log, err = logger.New(logCfg, logsProvider.ZapCore(logger.ParseLevel(cfg.Log.Level))); err != nil {
			bootLog.Fatal("Failed to initialize logger", zap.Error(err))
		}
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting AprovaCRM backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.TracingConfigFrom(cfg.Telemetry), log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfigFrom(cfg.Telemetry), log)
	if err != nil {
		log.Fatal("Failed to initialize metrics", zap.Error(err))
	}
	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfigFrom(cfg.Telemetry), log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh))
	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if err := db.EnableTenantGuard(); err != nil {
		log.Fatal("Failed to register tenant guard", zap.Error(err))
	}
	if err := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfigFrom(cfg.Telemetry), log).RegisterOtelGorm(db.DB); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}
	log.Info("Database connected")

	// Redis is optional; without it revoked tokens and handled events live in process memory
	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		log.Warn("Redis unavailable, falling back to in-memory stores", zap.Error(err))
		redisClient = nil
	} else {
		defer func() { _ = redisClient.Close() }()
	}
	var blacklist auth.TokenBlacklist = auth.NewInMemoryTokenBlacklist()
	if redisClient != nil {
		blacklist = auth.NewRedisTokenBlacklist(redisClient)
	}
	idempotencyStore := cache.NewIdempotencyStore(redisClient, log)

	objects, err := newObjectStorage(ctx, cfg.Storage, log)
	if err != nil {
		log.Fatal("Failed to initialize object storage", zap.Error(err))
	}

	// Repositories
	empresaRepo := persistence.NewGormEmpresaRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)
	clienteRepo := persistence.NewGormClienteRepository(db.DB)
	bancoRepo := persistence.NewGormBancoRepository(db.DB)
	produtoRepo := persistence.NewGormProdutoRepository(db.DB)
	promotoraRepo := persistence.NewGormPromotoraRepository(db.DB)
	propostaRepo := persistence.NewGormPropostaRepository(db.DB)
	comissaoRepo := persistence.NewGormComissaoRepository(db.DB)
	documentoRepo := persistence.NewGormDocumentoRepository(db.DB)
	activityRepo := persistence.NewGormActivityLogRepository(db.DB)

	// Event bus. The activity recorder is the only handler with side effects
	// worth deduplicating; metrics and the realtime stream tolerate repeats.
	crmMetrics, err := telemetry.NewCRMMetrics(meterProvider.Meter("aprovacrm"), log)
	if err != nil {
		log.Fatal("Failed to create CRM metrics", zap.Error(err))
	}
	realtime := handler.NewRealtimeHandler(
		handler.WithRealtimeLogger(log),
		handler.WithRealtimeHeartbeat(cfg.Realtime.HeartbeatInterval),
		handler.WithRealtimeMaxClients(cfg.Realtime.MaxClients),
		handler.WithRealtimeMetrics(crmMetrics),
	)

	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(event.NewIdempotentHandler(
		activityapp.NewRecorder(activityRepo, userRepo, log),
		idempotencyStore,
		log,
		event.WithIdempotencyConfig(shared.IdempotencyConfig{Enabled: true, TTL: cfg.Event.IdempotencyTTL}),
	))
	eventBus.Subscribe(crmMetrics)
	eventBus.Subscribe(realtime)
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	// Application services
	jwtService := auth.NewJWTService(cfg.JWT)
	activityService := activityapp.NewService(activityRepo, log)
	authService := identityapp.NewAuthService(userRepo, empresaRepo, jwtService, blacklist, activityService, log).
		WithMetrics(crmMetrics)
	empresaService := identityapp.NewEmpresaService(empresaRepo, userRepo, eventBus, log)
	clienteService := crmapp.NewClienteService(clienteRepo, propostaRepo, eventBus, log)
	bancoService := crmapp.NewBancoService(bancoRepo, produtoRepo, promotoraRepo, propostaRepo, eventBus, log)
	produtoService := crmapp.NewProdutoService(produtoRepo, bancoRepo, eventBus, log)
	promotoraService := crmapp.NewPromotoraService(promotoraRepo, bancoRepo, eventBus, log)
	propostaService := crmapp.NewPropostaService(crmapp.PropostaRepositories{
		Propostas:  propostaRepo,
		Clientes:   clienteRepo,
		Bancos:     bancoRepo,
		Produtos:   produtoRepo,
		Comissoes:  comissaoRepo,
		Documentos: documentoRepo,
	}, objects, eventBus, log)
	comissaoService := crmapp.NewComissaoService(comissaoRepo, propostaRepo, eventBus, log)
	documentoService := crmapp.NewDocumentoService(documentoRepo, propostaRepo, objects, eventBus, log)
	onboardingService := identityapp.NewOnboardingService(userRepo, bancoRepo, bancoService, produtoService, eventBus, log)
	importService := importapp.NewClienteImportService(clienteRepo, eventBus, cfg.Import.MaxRows, log)
	dashboardService := dashboard.NewService(clienteRepo, propostaRepo, log)

	healthChecks := map[string]handler.HealthCheck{
		"database": db.Ping,
	}
	if redisClient != nil {
		healthChecks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}

	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := middleware.SetupValidator(); err != nil {
		log.Fatal("Failed to register request validations", zap.Error(err))
	}

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Middleware order:
	// 1. RequestID, Recovery and access log
	// 2. Security headers, CORS and body limits
	// 3. Tracing and HTTP metrics
	// 4. Global rate limit
	// 5. JWT authentication, then tenant resolution from the claims
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())
	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	corsCfg.AllowMethods = cfg.HTTP.CORSAllowMethods
	corsCfg.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	engine.Use(middleware.CORSWithConfig(corsCfg))
	engine.Use(middleware.BodyLimitWithConfig(middleware.BodyLimitConfig{
		MaxBytes: cfg.HTTP.MaxBodySize,
		PathLimits: map[string]int64{
			"/api/v1/propostas/":      max(cfg.HTTP.MaxBodySize, crm.MaxDocumentoSize+multipartOverhead),
			"/api/v1/clientes/import": cfg.Import.MaxFileSize + multipartOverhead,
		},
	}))
	if tracerProvider.IsEnabled() {
		tracingCfg := middleware.DefaultTracingConfig()
		tracingCfg.ServiceName = cfg.Telemetry.ServiceName
		engine.Use(middleware.TracingWithConfig(tracingCfg), middleware.SpanAnnotator())
	}
	if meterProvider.IsEnabled() {
		metricsCfg := middleware.DefaultHTTPMetricsConfig()
		metricsCfg.MeterProvider = meterProvider
		metricsCfg.ServiceName = cfg.Telemetry.ServiceName
		engine.Use(middleware.HTTPMetrics(metricsCfg))
	}

	var limiters []*middleware.RateLimiter
	if cfg.HTTP.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		limiters = append(limiters, limiter)
		engine.Use(middleware.RateLimit(limiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}
	var routeOpts router.RouteOptions
	if cfg.HTTP.AuthRateLimitEnabled {
		limiter := middleware.NewRateLimiter(cfg.HTTP.AuthRateLimitRequests, cfg.HTTP.AuthRateLimitWindow)
		limiters = append(limiters, limiter)
		routeOpts.AuthRateLimit = middleware.AuthRateLimit(limiter)
	}

	jwtConfig := middleware.DefaultJWTConfig(jwtService)
	jwtConfig.TokenBlacklist = blacklist
	jwtConfig.Logger = log
	engine.Use(middleware.JWTAuthMiddlewareWithConfig(jwtConfig))

	tenantConfig := middleware.DefaultTenantConfig()
	tenantConfig.Validator = empresaService
	tenantConfig.Logger = log
	engine.Use(middleware.TenantMiddlewareWithConfig(tenantConfig))

	if cfg.Swagger.Enabled {
		swaggerJWT := jwtConfig
		swaggerJWT.SkipPathPrefixes = nil
		engine.GET("/swagger/*any",
			middleware.SwaggerProtection(cfg.Swagger, middleware.JWTAuthMiddlewareWithConfig(swaggerJWT)),
			ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	router.Setup(engine, router.Handlers{
		Auth:       handler.NewAuthHandler(authService, empresaService),
		Onboarding: handler.NewOnboardingHandler(onboardingService),
		Clientes:   handler.NewClienteHandler(clienteService, importService, cfg.Import.MaxFileSize),
		Bancos:     handler.NewBancoHandler(bancoService),
		Produtos:   handler.NewProdutoHandler(produtoService),
		Promotoras: handler.NewPromotoraHandler(promotoraService),
		Propostas:  handler.NewPropostaHandler(propostaService),
		Comissoes:  handler.NewComissaoHandler(comissaoService),
		Documentos: handler.NewDocumentoHandler(documentoService),
		Activity:   handler.NewActivityLogHandler(activityService),
		Dashboard:  handler.NewDashboardHandler(dashboardService),
		Realtime:   realtime,
		System:     handler.NewSystemHandler(cfg.App.Name, version, healthChecks),
	}, routeOpts)

	if err := realtime.Start(); err != nil {
		log.Fatal("Failed to start realtime stream", zap.Error(err))
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
		// WriteTimeout stays zero: the realtime stream holds responses open
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	// Streams must end before Shutdown can drain connections
	realtime.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	if err := eventBus.Stop(shutdownCtx); err != nil {
		log.Error("Error stopping event bus", zap.Error(err))
	}
	for _, l := range limiters {
		l.Stop()
	}
	if closer, ok := idempotencyStore.(interface{ Close() error }); ok {
		_ = closer.Close()
	}
	if err := profiler.Stop(); err != nil {
		log.Error("Error stopping profiler", zap.Error(err))
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down meter provider", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down tracer provider", zap.Error(err))
	}

	log.Info("Server exited gracefully")
	_ = logsProvider.Shutdown(shutdownCtx)
}

// newObjectStorage returns the S3 store when enabled, otherwise an in-memory
// store that loses documentos on restart
func newObjectStorage(ctx context.Context, cfg config.StorageConfig, log *zap.Logger) (crmapp.ObjectStorage, error) {
	if !cfg.Enabled {
		log.Warn("Object storage disabled, documentos are kept in memory")
		return storage.NewMemoryStorage(), nil
	}
	s3, err := storage.NewS3Storage(cfg, log)
	if err != nil {
		return nil, err
	}
	if err := s3.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	log.Info("Object storage ready", zap.String("bucket", s3.Bucket()))
	return s3, nil
}
