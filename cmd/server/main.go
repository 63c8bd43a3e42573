package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	ossignal "os/signal"
	"syscall"
	"time"

	"beamcast/internal/core/domain"
	"beamcast/internal/core/services"
	httphandlers "beamcast/internal/handlers/http"
	"beamcast/internal/infrastructure/middleware"
	"beamcast/internal/infrastructure/monitoring"
	"beamcast/internal/infrastructure/repositories/memory"
	"beamcast/internal/infrastructure/signal"
	"beamcast/pkg/config"
	"beamcast/pkg/logger"
	"beamcast/pkg/tracing"

	"github.com/gin-gonic/gin"
)

func main() {
	configPaths := []string{
		"configs/config.yaml",
		"./config.yaml",
		"/etc/beamcast/config.yaml",
	}

	var cfg *config.Config
	var err error
	for _, path := range configPaths {
		if cfg, err = config.Load(path); err == nil {
			break
		}
	}
	if err != nil {
		log.Fatalf("could not load configuration: %v", err)
	}

	zlog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zlog.Sync()
	slog := zlog.Sugar()

	tp, err := tracing.Init(tracing.Config{
		Enabled:    cfg.Tracing.Enabled,
		JaegerURL:  cfg.Tracing.JaegerURL,
		SampleRate: cfg.Tracing.SampleRate,
	})
	if err != nil {
		slog.Fatalw("tracing init failed", "error", err)
	}

	ctx, stop := ossignal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	collector := monitoring.NewPrometheusCollector()
	roomStore := memory.NewMemoryRoomStore()
	relay := services.NewRelayService(roomStore, collector, slog)

	registry := signal.NewRegistry(slog)
	go registry.Run(ctx, cfg.Heartbeat.Interval)

	wsServer := signal.NewWebSocketServer(relay, registry, collector, slog)
	if cfg.RateLimiting.Enabled {
		wsServer.SetMessageRateLimit(cfg.RateLimiting.WebSocket.MessagesPerSecond, cfg.RateLimiting.WebSocket.Burst)
	}

	checker := monitoring.NewHealthChecker()
	checker.AddCheck("room_store", func(ctx context.Context) (bool, error) {
		// Round-trip a probe room. A live client in the same room is
		// harmless: Get still finds it and RemoveIfEmpty leaves it alone.
		const probe = domain.RoomID("healthcheck-probe")
		roomStore.GetOrCreate(ctx, probe)
		if _, ok := roomStore.Get(ctx, probe); !ok {
			return false, errors.New("room store lost probe room")
		}
		roomStore.RemoveIfEmpty(ctx, probe)
		return true, nil
	}, time.Second)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(
		middleware.RecoveryMiddleware(slog),
		middleware.ErrorHandlerMiddleware(slog),
		middleware.TracingMiddleware(),
		middleware.NewHTTPRateLimitMiddleware(cfg),
	)

	statusHandler := httphandlers.NewStatusHandler(roomStore, registry, checker)
	statusHandler.SetupRoutes(router)
	router.GET("/ws", wsServer.HandleWebSocket)

	srv := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: router,
	}

	go func() {
		slog.Infow("signaling server listening", "address", cfg.Server.Address, "heartbeat", cfg.Heartbeat.Interval)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	slog.Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Warnw("shutdown incomplete", "error", err)
	}
	if err := tp.Shutdown(shutdownCtx); err != nil {
		slog.Warnw("tracer shutdown failed", "error", err)
	}
}
