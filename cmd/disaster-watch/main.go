package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/crisiswatch/disaster-watch/internal/api"
	"github.com/crisiswatch/disaster-watch/internal/classify"
	"github.com/crisiswatch/disaster-watch/internal/config"
	"github.com/crisiswatch/disaster-watch/internal/logging"
	"github.com/crisiswatch/disaster-watch/internal/monitor"
	"github.com/crisiswatch/disaster-watch/internal/notify"
	"github.com/crisiswatch/disaster-watch/internal/observability"
	"github.com/crisiswatch/disaster-watch/internal/pipeline"
	"github.com/crisiswatch/disaster-watch/internal/repository"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatalf("Fatal while loading config: %v", err)
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("Server starting", "host", cfg.Server.Host, "port", cfg.Server.Port)

	db, err := repository.NewSQLiteDB(cfg.DB.Path)
	if err != nil {
		logging.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metrics := observability.NewMetrics(prometheus.DefaultRegisterer)

	// Broadcaster fans urgent records out to alert sinks
	broadcaster := notify.NewBroadcaster()
	go notify.RunLogSink(ctx, broadcaster)

	classifier := classify.NewHTTPClassifier(classify.Options{
		URL:           cfg.Classifier.URL,
		APIKey:        cfg.Classifier.APIKey,
		Model:         cfg.Classifier.Model,
		Timeout:       cfg.Classifier.Timeout,
		MinConfidence: cfg.Classifier.MinConfidence,
	})
	pipe := pipeline.New(classifier, db, clockwork.NewRealClock(), metrics)

	// Start source monitor
	var mgr *monitor.Manager
	if cfg.Monitor.Enabled {
		mgr = monitor.NewManager(cfg, pipe, broadcaster, metrics)
		mgr.Start(ctx)
	}

	// Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false, // Set to false when using wildcard origins
	}))
	router.Use(api.RateLimitMiddleware(cfg.API.RateLimitRPS, 2*cfg.API.RateLimitRPS))

	handler := api.NewHandler(db, cfg.API.CacheTTL)
	handler.RegisterRoutes(router)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: router,
	}

	go func() {
		slog.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down...")

	cancel()
	if mgr != nil {
		mgr.Stop()
	}
	broadcaster.Close() // Close all alert sinks gracefully

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
}
