package service

import (
	"context"
	"errors"
	"fmt"
	"loyalty_points_api/internal/domain/user/model"
	"loyalty_points_api/internal/domain/user/repository"
	"loyalty_points_api/pkg/database"
	"loyalty_points_api/pkg/logger"
	"loyalty_points_api/pkg/query"
	"loyalty_points_api/pkg/security"
	"loyalty_points_api/pkg/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ListParams 用户列表过滤条件
type ListParams struct {
	Name  string `form:"name"`
	Email string `form:"email"`
}

// UpdateInput 更新用户输入，nil 字段不修改
type UpdateInput struct {
	Name     *string
	Email    *string
	Password *string
	Point    *int64
}

// UserService 用户服务接口
type UserService interface {
	// List 用户列表，不包含当前用户
	List(ctx context.Context, currentID uint64, params ListParams, p *utils.Pagination) ([]model.User, utils.PageMeta, error)
	Create(ctx context.Context, in SignupInput) (*model.User, error)
	Get(ctx context.Context, id uint64) (*model.User, error)
	Update(ctx context.Context, id uint64, in UpdateInput) (*model.User, error)
	Delete(ctx context.Context, id uint64) error
	// ForceDelete 物理删除，已软删除的用户同样适用
	ForceDelete(ctx context.Context, id uint64) error
}

// userService 实现
type userService struct {
	repo         repository.UserRepository
	tx           database.Transactor
	permissions  security.PermissionChecker
	defaultRole  string
	defaultPoint int64
}

// NewUserService 创建用户服务
func NewUserService(repo repository.UserRepository, tx database.Transactor, permissions security.PermissionChecker,
	defaultRole string, defaultPoint int64) UserService {
	if defaultRole == "" {
		defaultRole = string(security.RoleUser)
	}
	return &userService{
		repo:         repo,
		tx:           tx,
		permissions:  permissions,
		defaultRole:  defaultRole,
		defaultPoint: defaultPoint,
	}
}

func (s *userService) List(ctx context.Context, currentID uint64, params ListParams, p *utils.Pagination) ([]model.User, utils.PageMeta, error) {
	filters := []query.Filter{
		query.Like("users.name", params.Name),
		query.Eq("users.email", params.Email),
	}
	users, meta, err := s.repo.List(ctx, currentID, filters, p)
	if err != nil {
		return nil, meta, err
	}
	if users == nil {
		users = []model.User{}
	}
	return users, meta, nil
}

func (s *userService) Create(ctx context.Context, in SignupInput) (*model.User, error) {
	return register(ctx, s.repo, s.tx, s.defaultRole, s.defaultPoint, in)
}

// Get 获取单个用户
func (s *userService) Get(ctx context.Context, id uint64) (*model.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// Update 更新用户，邮箱需在其他用户中唯一
// 在用户行锁内只写回传入的字段，未传 Point 时不会覆盖兑换扣减后的积分
func (s *userService) Update(ctx context.Context, id uint64, in UpdateInput) (*model.User, error) {
	err := s.tx.Transaction(ctx, func(ctx context.Context) error {
		user, err := s.repo.LockByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		changes := make(map[string]interface{})
		if in.Name != nil && *in.Name != "" {
			changes["name"] = *in.Name
		}
		if in.Email != nil && *in.Email != "" && *in.Email != user.Email {
			taken, err := s.repo.EmailTaken(ctx, *in.Email, user.ID)
			if err != nil {
				return fmt.Errorf("check email: %w", err)
			}
			if taken {
				return ErrEmailTaken
			}
			changes["email"] = *in.Email
		}
		if in.Password != nil && *in.Password != "" {
			hashed, err := utils.HashPassword(*in.Password)
			if err != nil {
				return fmt.Errorf("hash password: %w", err)
			}
			changes["password"] = hashed
		}
		if in.Point != nil {
			changes["point"] = *in.Point
		}

		return s.repo.Update(ctx, user.ID, changes)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Delete 软删除用户
func (s *userService) Delete(ctx context.Context, id uint64) error {
	user, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, user); err != nil {
		return err
	}
	s.clearPermissions(ctx, id)
	return nil
}

func (s *userService) ForceDelete(ctx context.Context, id uint64) error {
	user, err := s.repo.GetByIDWithTrashed(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	err = s.tx.Transaction(ctx, func(ctx context.Context) error {
		return s.repo.ForceDelete(ctx, user)
	})
	if err != nil {
		return err
	}
	s.clearPermissions(ctx, id)
	return nil
}

func (s *userService) clearPermissions(ctx context.Context, id uint64) {
	if s.permissions == nil {
		return
	}
	if err := s.permissions.ClearUserCache(ctx, id); err != nil {
		logger.Log.Warn("clear permission cache failed", zap.Uint64("user_id", id), zap.Error(err))
	}
}
