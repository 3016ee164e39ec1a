package middleware

import (
	"loyalty_points_api/pkg/logger"
	"loyalty_points_api/pkg/response"
	"loyalty_points_api/pkg/security"
	"loyalty_points_api/pkg/utils"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	ContextUserID   = "userID"
	ContextTokenID  = "tokenID"
	ContextTokenExp = "tokenExp"
)

// AuthMiddleware JWT认证中间件，已注销的令牌视为未认证
func AuthMiddleware(secret string, blacklist security.TokenBlacklist) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, "")
			c.Abort()
			return
		}

		// 检查格式 "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			response.Unauthorized(c, "")
			c.Abort()
			return
		}

		claims, err := utils.ParseToken(parts[1], secret)
		if err != nil {
			response.Unauthorized(c, "")
			c.Abort()
			return
		}

		revoked, err := blacklist.IsRevoked(c.Request.Context(), claims.ID)
		if err != nil {
			// 黑名单不可用时拒绝请求
			logger.Log.Error("check token blacklist failed", zap.Error(err))
			response.Unauthorized(c, "")
			c.Abort()
			return
		}
		if revoked {
			response.Unauthorized(c, "")
			c.Abort()
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextTokenID, claims.ID)
		if claims.ExpiresAt != nil {
			c.Set(ContextTokenExp, claims.ExpiresAt.Time)
		}

		c.Next()
	}
}

// RequirePermission 权限检查中间件，需在 AuthMiddleware 之后使用
func RequirePermission(checker security.PermissionChecker, permission security.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := GetUserID(c)
		if userID == 0 {
			response.Unauthorized(c, "")
			c.Abort()
			return
		}

		ok, err := checker.HasPermission(c.Request.Context(), userID, permission)
		if err != nil {
			logger.Log.Error("permission check failed",
				zap.Uint64("user_id", userID),
				zap.String("permission", string(permission)),
				zap.Error(err),
			)
			response.Fail(c, err, "Permission check failed")
			c.Abort()
			return
		}
		if !ok {
			response.Forbidden(c)
			c.Abort()
			return
		}

		c.Next()
	}
}

// GetUserID 当前登录用户 ID，未登录返回 0
func GetUserID(c *gin.Context) uint64 {
	return c.GetUint64(ContextUserID)
}

// GetToken 当前请求令牌的 jti 和过期时间
func GetToken(c *gin.Context) (string, time.Time) {
	return c.GetString(ContextTokenID), c.GetTime(ContextTokenExp)
}
