package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"roomrelay/internal/core/services"
	httphandlers "roomrelay/internal/handlers/http"
	"roomrelay/internal/infrastructure/middleware"
	"roomrelay/internal/infrastructure/monitoring"
	"roomrelay/internal/infrastructure/repositories/memory"
	wssignal "roomrelay/internal/infrastructure/signal"
	"roomrelay/pkg/config"
	"roomrelay/pkg/logger"
	"roomrelay/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	configPath := os.Getenv("ROOMRELAY_CONFIG")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		os.Stderr.WriteString("invalid configuration: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer log.Sync()
	sugar := log.Sugar()

	tracerProvider, err := tracing.Init(tracing.Config{
		Enabled:     cfg.Tracing.Enabled,
		ServiceName: cfg.Tracing.ServiceName,
		JaegerURL:   cfg.Tracing.JaegerURL,
		Environment: cfg.Tracing.Environment,
		SampleRate:  cfg.Tracing.SampleRate,
	})
	if err != nil {
		sugar.Fatalw("failed to initialize tracing", "error", err)
	}

	registry := memory.NewRoomRegistry()
	collector := monitoring.NewPrometheusCollector()
	router := services.NewSignalingService(registry, collector, sugar)

	wsServer := wssignal.NewWebSocketServer(router, collector, wssignal.Config{
		PingInterval:      cfg.Signal.PingInterval,
		PongTimeout:       cfg.Signal.PongTimeout,
		WriteTimeout:      cfg.Signal.WriteTimeout,
		RateLimitEnabled:  cfg.RateLimiting.Enabled,
		MessagesPerSecond: cfg.RateLimiting.WebSocket.MessagesPerSecond,
		Burst:             cfg.RateLimiting.WebSocket.Burst,
		MaxMessageSize:    cfg.RateLimiting.WebSocket.MaxMessageSizeBytes,
	}, sugar)

	health := monitoring.NewHealthChecker()
	health.AddCheck("registry", func(ctx context.Context) (bool, error) {
		registry.Stats(ctx)
		return true, nil
	}, 2*time.Second)
	health.AddCheck("connections", func(ctx context.Context) (bool, error) {
		wsServer.ConnectionCount()
		return true, nil
	}, 2*time.Second)

	healthCtx, stopHealth := context.WithCancel(context.Background())
	defer stopHealth()
	go health.Run(healthCtx, cfg.Monitoring.HealthCheckInterval)

	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	contextLogger := logger.NewContextLogger(log)
	engine := gin.New()
	engine.Use(middleware.RecoveryMiddleware(sugar))
	engine.Use(middleware.RequestLoggerMiddleware(contextLogger))
	engine.Use(middleware.ErrorHandlerMiddleware(contextLogger))
	engine.Use(middleware.TracingMiddleware())
	engine.Use(middleware.NewHTTPRateLimitMiddleware(cfg))

	roomHandler := httphandlers.NewRoomHandler(registry, health, contextLogger)
	roomHandler.SetupRoutes(engine)

	// WebSocket endpoint bypasses gin middleware; the signaling loop has its
	// own rate limiting and the connection outlives any request deadline.
	engine.GET("/ws", gin.WrapF(wsServer.HandleWebSocket))

	if cfg.Monitoring.PrometheusEnabled {
		engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	srv := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           engine,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
	}

	go func() {
		sugar.Infow("starting signaling server", "address", cfg.Server.Address)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			sugar.Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	sugar.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	wsServer.CloseAll()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		sugar.Warnw("server shutdown failed", "error", err)
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		sugar.Warnw("tracer shutdown failed", "error", err)
	}
}
