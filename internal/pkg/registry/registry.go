package registry

import (
	"loyalty_points_api/internal/domain/order/model"
	"loyalty_points_api/internal/pkg/config"
	"loyalty_points_api/internal/pkg/worker"
	"loyalty_points_api/pkg/cache"
	"loyalty_points_api/pkg/database"
	"loyalty_points_api/pkg/metrics"
	"loyalty_points_api/pkg/security"
	"sort"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// ModuleContext 模块初始化所需的上下文
type ModuleContext struct {
	DB         *gorm.DB
	Redis      *redis.Client
	Router     *gin.Engine
	API        *gin.RouterGroup // /api/v1
	Config     *config.Config
	Cache      cache.CacheService
	Transactor database.Transactor
	Metrics    *metrics.MetricsCollector
	Events     *worker.WorkerPool
	Blacklist  security.TokenBlacklist

	// Permissions 由 user 模块初始化，之后的模块用于路由权限校验
	Permissions security.PermissionChecker

	// Targets 订单关联对象注册表，各业务模块注册自己的 Resolver
	Targets *model.Registry
}

// Module 模块接口
type Module interface {
	// Name 返回模块名称
	Name() string

	// Init 初始化模块（依赖注入、路由注册等）
	Init(ctx *ModuleContext) error

	// Priority 返回初始化优先级（数字越小越先初始化）
	// 例如：user 模块需要先于 gift 模块初始化，提供权限检查器
	Priority() int
}

// moduleRegistry 全局模块注册表
var moduleRegistry = make(map[string]Module)

// Register 注册模块
func Register(module Module) {
	moduleRegistry[module.Name()] = module
}

// GetModules 获取所有已注册的模块
func GetModules() map[string]Module {
	return moduleRegistry
}

// InitModules 按优先级初始化所有模块
func InitModules(ctx *ModuleContext) error {
	modules := make([]Module, 0, len(moduleRegistry))
	for _, m := range moduleRegistry {
		modules = append(modules, m)
	}

	sort.SliceStable(modules, func(i, j int) bool {
		if modules[i].Priority() == modules[j].Priority() {
			return modules[i].Name() < modules[j].Name()
		}
		return modules[i].Priority() < modules[j].Priority()
	})

	// 按顺序初始化
	for _, module := range modules {
		if err := module.Init(ctx); err != nil {
			return err
		}
	}

	return nil
}
