package gift

import (
	"loyalty_points_api/internal/domain/gift/handler"
	"loyalty_points_api/internal/domain/gift/repository"
	"loyalty_points_api/internal/domain/gift/service"
	orderModel "loyalty_points_api/internal/domain/order/model"
	orderRepo "loyalty_points_api/internal/domain/order/repository"
	userRepo "loyalty_points_api/internal/domain/user/repository"
	"loyalty_points_api/internal/pkg/middleware"
	"loyalty_points_api/internal/pkg/registry"
	"loyalty_points_api/pkg/security"

	"github.com/gin-gonic/gin"
)

// GiftModule 礼品目录、兑换、评分和点赞
type GiftModule struct{}

func init() {
	registry.Register(&GiftModule{})
}

func (m *GiftModule) Name() string {
	return "gift"
}

func (m *GiftModule) Priority() int {
	return 3
}

func (m *GiftModule) Init(ctx *registry.ModuleContext) error {
	// 1. 依赖注入
	giftRepo := repository.NewGiftRepository(ctx.DB)
	orders := orderRepo.NewOrderRepository(ctx.DB)
	accounts := userRepo.NewUserRepository(ctx.DB)

	ctx.Targets.Register(orderModel.TargetGift, repository.NewTargetResolver(giftRepo))

	var events service.EventPublisher
	if ctx.Events != nil {
		events = ctx.Events
	}

	giftService := service.NewGiftService(giftRepo, ctx.Transactor)
	redeemService := service.NewRedeemService(giftRepo, orders, accounts, ctx.Transactor, ctx.Cache, events, ctx.Metrics,
		service.WithIdempotencyTTL(ctx.Config.Idempotency.TTL))
	ratingService := service.NewRatingService(giftRepo, orders, ctx.Transactor, ctx.Metrics)
	likeService := service.NewLikeService(giftRepo, orders, ctx.Transactor, ctx.Metrics)

	// 2. 路由注册
	setupRoutes(ctx, handler.NewGiftHandler(giftService, redeemService, ratingService, likeService))

	return nil
}

func setupRoutes(ctx *registry.ModuleContext, h *handler.GiftHandler) {
	can := func(p security.Permission) gin.HandlerFunc {
		return middleware.RequirePermission(ctx.Permissions, p)
	}

	gifts := ctx.API.Group("/gifts", middleware.AuthMiddleware(ctx.Config.JWT.Secret, ctx.Blacklist))
	{
		gifts.GET("", can(security.PermissionGiftsIndex), h.GetGifts)
		gifts.POST("", can(security.PermissionGiftsStore), h.CreateGift)
		gifts.GET("/liked", can(security.PermissionGiftsLike), h.GetLikedGifts)
		gifts.GET("/rated", can(security.PermissionGiftsRating), h.GetRatedGifts)
		gifts.POST("/redeem", can(security.PermissionGiftsRedeem), h.RedeemGifts)

		gifts.GET("/:id", can(security.PermissionGiftsShow), h.GetGift)
		gifts.PATCH("/:id", can(security.PermissionGiftsUpdate), h.UpdateGift)
		gifts.DELETE("/:id", can(security.PermissionGiftsDestroy), h.DeleteGift)
		gifts.DELETE("/:id/delete-permanent", can(security.PermissionGiftsDestroy), h.DeletePermanent)
		gifts.POST("/:id/redeem", can(security.PermissionGiftsRedeem), h.RedeemGift)
		gifts.POST("/:id/rating", can(security.PermissionGiftsRating), h.RateGift)
		gifts.DELETE("/:id/rating", can(security.PermissionGiftsRating), h.DeleteRating)
		gifts.POST("/:id/like", can(security.PermissionGiftsLike), h.LikeGift)
	}
}
