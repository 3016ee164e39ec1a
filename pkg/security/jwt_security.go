package security

import (
	"context"
	"errors"
	"fmt"
	"loyalty_points_api/pkg/cache"
	"time"
)

// TokenBlacklist 已注销令牌的黑名单，按 jti 记录，保留到令牌过期为止
type TokenBlacklist interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

type cacheBlacklist struct {
	cache cache.CacheService
}

// NewTokenBlacklist 创建基于缓存的令牌黑名单
func NewTokenBlacklist(c cache.CacheService) TokenBlacklist {
	return &cacheBlacklist{cache: c}
}

func blacklistKey(tokenID string) string {
	return fmt.Sprintf("token_blacklist:%s", tokenID)
}

// Revoke 注销令牌，已过期的令牌无需记录
func (b *cacheBlacklist) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	if tokenID == "" {
		return errors.New("token has no id")
	}
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	return b.cache.Set(ctx, blacklistKey(tokenID), true, ttl)
}

// IsRevoked 检查令牌是否已注销
func (b *cacheBlacklist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if tokenID == "" {
		return false, nil
	}
	return b.cache.Exists(ctx, blacklistKey(tokenID))
}
