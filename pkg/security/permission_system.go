package security

import (
	"context"
	"errors"
	"fmt"
	"loyalty_points_api/pkg/cache"
	"time"
)

// Permission 权限名称，与 permissions 表的 name 一致
type Permission string

const (
	// 用户管理权限
	PermissionUsersIndex   Permission = "api-users-index"
	PermissionUsersStore   Permission = "api-users-store"
	PermissionUsersUpdate  Permission = "api-users-update"
	PermissionUsersShow    Permission = "api-users-show"
	PermissionUsersDestroy Permission = "api-users-destroy"

	// 礼品权限
	PermissionGiftsIndex   Permission = "api-gifts-index"
	PermissionGiftsStore   Permission = "api-gifts-store"
	PermissionGiftsUpdate  Permission = "api-gifts-update"
	PermissionGiftsShow    Permission = "api-gifts-show"
	PermissionGiftsDestroy Permission = "api-gifts-destroy"
	PermissionGiftsRedeem  Permission = "api-gifts-redeem"
	PermissionGiftsRating  Permission = "api-gifts-rating"
	PermissionGiftsLike    Permission = "api-gifts-like"
)

// Role 角色名称
type Role string

const (
	RoleSuperAdmin Role = "super-admin"
	RoleUser       Role = "user"
)

// RolePermissions 默认角色及其权限
var RolePermissions = map[Role][]Permission{
	RoleSuperAdmin: {
		PermissionUsersIndex, PermissionUsersStore, PermissionUsersUpdate, PermissionUsersShow, PermissionUsersDestroy,
		PermissionGiftsIndex, PermissionGiftsStore, PermissionGiftsUpdate, PermissionGiftsShow, PermissionGiftsDestroy,
	},
	RoleUser: {
		PermissionGiftsIndex, PermissionGiftsShow,
		PermissionGiftsRedeem, PermissionGiftsRating, PermissionGiftsLike,
	},
}

// PermissionChecker 权限检查器接口
type PermissionChecker interface {
	HasPermission(ctx context.Context, userID uint64, permission Permission) (bool, error)
	ClearUserCache(ctx context.Context, userID uint64) error
}

// PermissionLoader 从存储中加载用户通过角色获得的全部权限
type PermissionLoader interface {
	PermissionNames(ctx context.Context, userID uint64) ([]string, error)
}

// RBAC 基于角色的访问控制，权限集合按用户缓存
type RBAC struct {
	cache  cache.CacheService
	loader PermissionLoader
	ttl    time.Duration
}

// NewRBAC 创建 RBAC 实例
func NewRBAC(c cache.CacheService, loader PermissionLoader, ttl time.Duration) *RBAC {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &RBAC{
		cache:  c,
		loader: loader,
		ttl:    ttl,
	}
}

func permissionKey(userID uint64) string {
	return fmt.Sprintf("user_permissions:%d", userID)
}

// HasPermission 检查用户是否有指定权限
func (rbac *RBAC) HasPermission(ctx context.Context, userID uint64, permission Permission) (bool, error) {
	perms, err := rbac.userPermissions(ctx, userID)
	if err != nil {
		return false, err
	}
	for _, p := range perms {
		if p == string(permission) {
			return true, nil
		}
	}
	return false, nil
}

func (rbac *RBAC) userPermissions(ctx context.Context, userID uint64) ([]string, error) {
	key := permissionKey(userID)

	var perms []string
	err := rbac.cache.Get(ctx, key, &perms)
	if err == nil {
		return perms, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		// 缓存不可用时直接回源
		return rbac.loader.PermissionNames(ctx, userID)
	}

	perms, err = rbac.loader.PermissionNames(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load permissions: %w", err)
	}
	if perms == nil {
		perms = []string{}
	}
	_ = rbac.cache.Set(ctx, key, perms, rbac.ttl)
	return perms, nil
}

// ClearUserCache 角色变更或用户删除后清除权限缓存
func (rbac *RBAC) ClearUserCache(ctx context.Context, userID uint64) error {
	return rbac.cache.Delete(ctx, permissionKey(userID))
}
