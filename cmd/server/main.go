package main

import (
	"context"
	"errors"
	"log"
	"loyalty_points_api/internal/domain/order/model"
	"loyalty_points_api/internal/pkg/broker"
	"loyalty_points_api/internal/pkg/config"
	"loyalty_points_api/internal/pkg/middleware"
	"loyalty_points_api/internal/pkg/registry"
	"loyalty_points_api/internal/pkg/worker"
	"loyalty_points_api/pkg/cache"
	"loyalty_points_api/pkg/database"
	"loyalty_points_api/pkg/logger"
	"loyalty_points_api/pkg/metrics"
	"loyalty_points_api/pkg/security"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	// 业务模块通过 init 注册
	_ "loyalty_points_api/internal/domain/common"
	_ "loyalty_points_api/internal/domain/gift"
	_ "loyalty_points_api/internal/domain/order"
	_ "loyalty_points_api/internal/domain/user"
)

func main() {
	config.LoadConfig()
	cfg := config.GlobalConfig

	if err := logger.Init(cfg.App.Env, cfg.App.Debug); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	db, err := database.InitDatabase(cfg.Database, cfg.App.Debug)
	if err != nil {
		logger.Log.Fatal("failed to connect database", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Log.Fatal("failed to get sql.DB", zap.Error(err))
	}
	defer sqlDB.Close()

	rdb, err := database.InitRedis(cfg.Redis)
	if err != nil {
		logger.Log.Fatal("failed to connect redis", zap.Error(err))
	}
	defer rdb.Close()

	collector := metrics.GetGlobalCollector()
	if err := collector.RegisterDB(sqlDB, "postgres"); err != nil {
		logger.Log.Warn("register db metrics failed", zap.Error(err))
	}

	publisher := broker.New(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	defer publisher.Close()
	events := worker.NewWorkerPool(publisher, collector, cfg.Kafka.Workers, cfg.Kafka.Buffer)
	events.Start()

	appCache := cache.NewRedisCache(rdb, cache.DefaultPrefix)

	gin.SetMode(cfg.Server.Mode)
	r := gin.New()

	limiter := middleware.NewIPRateLimiter(rate.Limit(cfg.RateLimit.RPS), cfg.RateLimit.Burst)
	stopCleanup := make(chan struct{})
	limiter.StartCleanup(time.Minute, stopCleanup)

	r.Use(
		middleware.LoggerMiddleware(),
		middleware.RecoveryMiddleware(collector),
		middleware.MetricsMiddleware(collector),
		cors.New(corsConfig(cfg.Server.AllowOrigins)),
		limiter.Middleware(),
	)

	ctx := &registry.ModuleContext{
		DB:         db,
		Redis:      rdb,
		Router:     r,
		API:        r.Group("/api/v1"),
		Config:     &cfg,
		Cache:      appCache,
		Transactor: database.NewTransactor(db),
		Metrics:    collector,
		Events:     events,
		Blacklist:  security.NewTokenBlacklist(appCache),
		Targets:    model.NewRegistry(),
	}
	if err := registry.InitModules(ctx); err != nil {
		logger.Log.Fatal("failed to init modules", zap.Error(err))
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: r,
	}

	go func() {
		logger.Log.Info("starting http server", zap.String("port", cfg.Server.Port), zap.String("env", cfg.App.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal("http server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("server forced to shutdown", zap.Error(err))
	}

	close(stopCleanup)
	// 等待队列中的事件发完再退出
	events.Stop()

	logger.Log.Info("server exited")
}

func corsConfig(origins []string) cors.Config {
	c := cors.DefaultConfig()
	if len(origins) == 0 {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = origins
	}
	c.AllowHeaders = append(c.AllowHeaders, "Authorization", "Idempotency-Key", middleware.HeaderRequestID)
	c.ExposeHeaders = []string{middleware.HeaderRequestID}
	return c
}
