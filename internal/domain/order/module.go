package order

import (
	"loyalty_points_api/internal/domain/order/handler"
	"loyalty_points_api/internal/domain/order/repository"
	"loyalty_points_api/internal/domain/order/service"
	"loyalty_points_api/internal/pkg/middleware"
	"loyalty_points_api/internal/pkg/registry"
	"loyalty_points_api/pkg/security"
)

// OrderModule 兑换记录模块
type OrderModule struct{}

func init() {
	registry.Register(&OrderModule{})
}

func (m *OrderModule) Name() string {
	return "order"
}

func (m *OrderModule) Priority() int {
	// 依赖 user 模块提供的权限检查器
	return 2
}

func (m *OrderModule) Init(ctx *registry.ModuleContext) error {
	orderRepo := repository.NewOrderRepository(ctx.DB)
	orderService := service.NewOrderService(orderRepo, ctx.Targets)
	orderHandler := handler.NewOrderHandler(orderService)

	auth := middleware.AuthMiddleware(ctx.Config.JWT.Secret, ctx.Blacklist)
	ctx.API.GET("/gifts/redeem", auth,
		middleware.RequirePermission(ctx.Permissions, security.PermissionGiftsRedeem),
		orderHandler.ListRedeemedGifts)

	return nil
}
