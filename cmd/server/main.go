package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/benvon/mcp-edge-router/internal/agent"
	"github.com/benvon/mcp-edge-router/internal/agent/proxy"
	"github.com/benvon/mcp-edge-router/internal/config"
	"github.com/benvon/mcp-edge-router/internal/handlers"
	"github.com/benvon/mcp-edge-router/internal/logger"
	"github.com/benvon/mcp-edge-router/internal/middleware"
	"github.com/benvon/mcp-edge-router/internal/origins"
	"github.com/benvon/mcp-edge-router/internal/router"
	"github.com/benvon/mcp-edge-router/internal/telemetry"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	debugFlag := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	debugMode := cfg.ServerDebugMode || *debugFlag

	zapLogger, err := logger.NewProductionLogger(debugMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() {
		_ = logger.Sync(zapLogger)
	}()

	zapLogger.Info("starting_server",
		zap.Bool("debug_mode", debugMode),
		zap.String("server_port", cfg.ServerPort),
		zap.String("admin_port", cfg.AdminPort),
		zap.String("browser_url", cfg.BrowserURL),
		zap.String("rate_limit", cfg.RateLimit),
		zap.Bool("trust_proxy_headers", cfg.TrustProxyHeaders),
		zap.Bool("otel_enabled", cfg.OTELEnabled),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tracing := false
	if cfg.OTELEnabled {
		if cfg.OTELEndpoint == "" {
			zapLogger.Warn("otel_enabled_but_endpoint_not_configured")
		} else {
			tp, err := telemetry.InitTracer(ctx, logger.ServiceName, cfg.OTELEndpoint)
			if err != nil {
				zapLogger.Warn("failed_to_initialize_otel_tracer", zap.Error(err))
			} else {
				tracing = true
				zapLogger.Info("otel_tracer_initialized", zap.String("endpoint", cfg.OTELEndpoint))
				defer func() {
					shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					if err := telemetry.Shutdown(shutdownCtx, tp); err != nil {
						zapLogger.Error("failed_to_shutdown_otel_tracer", zap.Error(err))
					}
				}()
			}
		}
	}

	policy, err := origins.NewReloader(cfg.AllowedOriginsFile, zapLogger, 1*time.Minute)
	if err != nil {
		zapLogger.Fatal("failed_to_load_allowed_origins", zap.Error(err))
	}
	go policy.Start(ctx)

	var redisClient *redis.Client
	var redisPinger handlers.Pinger
	if cfg.RedisURL != "" {
		redisClient, err = middleware.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			zapLogger.Fatal("failed_to_connect_to_redis", zap.Error(err))
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				zapLogger.Warn("failed_to_close_redis_connection", zap.Error(err))
			}
		}()
		redisPinger = handlers.PingFunc(func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
		zapLogger.Info("connected_to_redis")
	}

	// No client timeout: SSE responses stay open for the life of the session.
	browser, err := agent.NewBrowser(cfg.BrowserURL, &http.Client{})
	if err != nil {
		zapLogger.Fatal("invalid_browser_url", zap.Error(err))
	}
	mcpAgent := proxy.Factory(zapLogger)(browser)
	tasks := agent.NewTasks(zapLogger)

	// gorilla/mux runs middleware in registration order: the first one is outermost.
	var mw []mux.MiddlewareFunc
	if tracing {
		mw = append(mw, telemetry.Middleware(logger.ServiceName))
	}
	mw = append(mw,
		middleware.RequestID,
		middleware.ClientIP(cfg.TrustProxyHeaders),
		middleware.SecurityHeaders(cfg.EnableHSTS),
		middleware.Logging(zapLogger),
		middleware.Audit(zapLogger),
		middleware.ErrorHandler(zapLogger),
		middleware.MaxRequestSize(cfg.MaxRequestBytes),
	)
	if cfg.RateLimitEnabled() {
		store, err := middleware.NewLimiterStore(redisClient)
		if err != nil {
			zapLogger.Fatal("failed_to_create_rate_limit_store", zap.Error(err))
		}
		rateLimitMW, err := middleware.RateLimit(store, cfg.RateLimit, zapLogger)
		if err != nil {
			zapLogger.Fatal("invalid_rate_limit", zap.Error(err))
		}
		mw = append(mw, rateLimitMW)
	}

	env := &agent.Env{
		Browser: browser,
		Vars:    map[string]string{"BROWSER_URL": cfg.BrowserURL},
	}
	public := router.New(mcpAgent, env, policy,
		router.WithMiddleware(mw...),
		router.WithTasks(tasks),
		router.WithLogger(zapLogger),
	)

	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: public,
		// ReadTimeout and WriteTimeout would cut SSE streams; only headers and idle
		// connections are bounded.
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	admin := mux.NewRouter()
	admin.HandleFunc("/healthz", handlers.NewHealthChecker(browser, redisPinger).HealthCheck).Methods(http.MethodGet)
	admin.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	handlers.NewInfoHandler(policy).RegisterRoutes(admin)

	adminSrv := &http.Server{
		Addr:              ":" + cfg.AdminPort,
		Handler:           middleware.SecurityHeaders(cfg.EnableHSTS)(middleware.AdminCORS(policy)(admin)),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serve := func(name string, s *http.Server) {
		zapLogger.Info("server_starting", zap.String("listener", name), zap.String("addr", s.Addr))
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("server_failed_to_start", zap.String("listener", name), zap.Error(err))
		}
	}
	go serve("public", srv)
	go serve("admin", adminSrv)

	<-ctx.Done()
	stop()
	zapLogger.Info("server_shutting_down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		// Open SSE streams never finish on their own.
		zapLogger.Warn("server_forced_to_shutdown", zap.Error(err))
		_ = srv.Close()
	}
	if err := adminSrv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Warn("admin_server_forced_to_shutdown", zap.Error(err))
	}

	drainCtx, drainCancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer drainCancel()
	if err := tasks.Drain(drainCtx); err != nil {
		zapLogger.Warn("background_tasks_not_drained", zap.Error(err))
	}

	zapLogger.Info("server_exited")
}
