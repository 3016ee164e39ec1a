package common

import (
	"context"
	commonHandler "loyalty_points_api/internal/pkg/common"
	"loyalty_points_api/internal/pkg/registry"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// CommonModule 通用功能模块
type CommonModule struct{}

func init() {
	registry.Register(&CommonModule{})
}

func (m *CommonModule) Name() string {
	return "common"
}

func (m *CommonModule) Priority() int {
	return 100 // 最后初始化
}

func (m *CommonModule) Init(ctx *registry.ModuleContext) error {
	checks := map[string]commonHandler.Pinger{}
	if ctx.DB != nil {
		sqlDB, err := ctx.DB.DB()
		if err != nil {
			return err
		}
		checks["database"] = commonHandler.PingFunc(sqlDB.PingContext)
	}
	if ctx.Redis != nil {
		checks["redis"] = commonHandler.PingFunc(func(c context.Context) error {
			return ctx.Redis.Ping(c).Err()
		})
	}

	setupRoutes(ctx.Router, commonHandler.NewHealthHandler(checks, 2*time.Second))
	return nil
}

func setupRoutes(r *gin.Engine, health *commonHandler.HealthHandler) {
	r.GET("/health", health.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}
