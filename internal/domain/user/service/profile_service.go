package service

import (
	"context"
	"loyalty_points_api/internal/domain/user/model"
)

// ProfileInput 更新个人资料，密码确认由请求校验保证
type ProfileInput struct {
	Name     *string
	Email    *string
	Password *string
}

// ProfileService 当前用户资料
type ProfileService interface {
	Get(ctx context.Context, userID uint64) (*model.User, error)
	Update(ctx context.Context, userID uint64, in ProfileInput) (*model.User, error)
}

type profileService struct {
	users UserService
}

func NewProfileService(users UserService) ProfileService {
	return &profileService{users: users}
}

func (s *profileService) Get(ctx context.Context, userID uint64) (*model.User, error) {
	return s.users.Get(ctx, userID)
}

// Update 不允许修改积分
func (s *profileService) Update(ctx context.Context, userID uint64, in ProfileInput) (*model.User, error) {
	return s.users.Update(ctx, userID, UpdateInput{
		Name:     in.Name,
		Email:    in.Email,
		Password: in.Password,
	})
}
