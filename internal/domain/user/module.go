package user

import (
	"loyalty_points_api/internal/domain/user/handler"
	"loyalty_points_api/internal/domain/user/repository"
	"loyalty_points_api/internal/domain/user/service"
	"loyalty_points_api/internal/pkg/middleware"
	"loyalty_points_api/internal/pkg/registry"
	"loyalty_points_api/pkg/security"
	"time"

	"github.com/gin-gonic/gin"
)

// UserModule 用户模块
type UserModule struct{}

func init() {
	// 自动注册模块
	registry.Register(&UserModule{})
}

func (m *UserModule) Name() string {
	return "user"
}

func (m *UserModule) Priority() int {
	// 用户模块优先级最高，其他模块依赖它提供的权限检查器
	return 1
}

func (m *UserModule) Init(ctx *registry.ModuleContext) error {
	cfg := ctx.Config

	// 1. 依赖注入
	userRepo := repository.NewUserRepository(ctx.DB)
	if ctx.Permissions == nil {
		ctx.Permissions = security.NewRBAC(ctx.Cache, userRepo, 10*time.Minute)
	}

	tokenCfg := service.TokenConfig{Secret: cfg.JWT.Secret, TTL: cfg.JWT.TTL(), Issuer: cfg.JWT.Issuer}
	authService := service.NewAuthService(userRepo, ctx.Transactor, ctx.Blacklist, tokenCfg, cfg.App.DefaultRole, cfg.App.DefaultPoint)
	userService := service.NewUserService(userRepo, ctx.Transactor, ctx.Permissions, cfg.App.DefaultRole, cfg.App.DefaultPoint)
	profileService := service.NewProfileService(userService)

	// 2. 路由注册
	setupRoutes(ctx, handler.NewAuthHandler(authService), handler.NewUserHandler(userService), handler.NewProfileHandler(profileService))

	return nil
}

func setupRoutes(ctx *registry.ModuleContext, auth *handler.AuthHandler, users *handler.UserHandler, profile *handler.ProfileHandler) {
	authRequired := middleware.AuthMiddleware(ctx.Config.JWT.Secret, ctx.Blacklist)
	can := func(p security.Permission) gin.HandlerFunc {
		return middleware.RequirePermission(ctx.Permissions, p)
	}

	// 公开路由
	authGroup := ctx.API.Group("/auth")
	{
		authGroup.POST("/login", auth.Login)
		authGroup.POST("/signup", auth.Signup)
		authGroup.POST("/logout", authRequired, auth.Logout)
	}

	profileGroup := ctx.API.Group("/profile", authRequired)
	{
		profileGroup.GET("", profile.GetProfile)
		profileGroup.PATCH("", profile.UpdateProfile)
	}

	// 受保护的路由
	userGroup := ctx.API.Group("/users", authRequired)
	{
		userGroup.GET("", can(security.PermissionUsersIndex), users.GetUsers)
		userGroup.POST("", can(security.PermissionUsersStore), users.CreateUser)
		userGroup.GET("/:id", can(security.PermissionUsersShow), users.GetUser)
		userGroup.PATCH("/:id", can(security.PermissionUsersUpdate), users.UpdateUser)
		userGroup.DELETE("/:id", can(security.PermissionUsersDestroy), users.DeleteUser)
		userGroup.DELETE("/:id/delete-permanent", can(security.PermissionUsersDestroy), users.DeletePermanent)
	}
}
