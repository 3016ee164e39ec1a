package service

import (
	"context"
	"errors"
	"fmt"
	"loyalty_points_api/internal/domain/user/model"
	"loyalty_points_api/internal/domain/user/repository"
	"loyalty_points_api/pkg/apperr"
	"loyalty_points_api/pkg/database"
	"loyalty_points_api/pkg/logger"
	"loyalty_points_api/pkg/security"
	"loyalty_points_api/pkg/utils"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrEmailNotFound  = apperr.Unauthorized("Unauthorized. Email or username not found")
	ErrWrongPassword  = apperr.Unauthorized("Unauthorized.")
	ErrEmailTaken     = apperr.FieldInvalid("email", "The email has already been taken.")
	ErrUserNotFound   = apperr.NotFound("User Not Found")
	ErrDefaultRoleNil = errors.New("default role not found")
)

// TokenConfig 签发令牌所需配置
type TokenConfig struct {
	Secret string
	TTL    time.Duration
	Issuer string
}

// SignupInput 注册输入
type SignupInput struct {
	Name     string
	Email    string
	Password string
	Point    *int64
}

// LoginResult 登录结果
type LoginResult struct {
	AccessToken string      `json:"accessToken"`
	User        *model.User `json:"user"`
}

// AuthService 认证服务接口
type AuthService interface {
	Signup(ctx context.Context, in SignupInput) (*model.User, error)
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Logout(ctx context.Context, tokenID string, expiresAt time.Time) error
}

type authService struct {
	repo         repository.UserRepository
	tx           database.Transactor
	blacklist    security.TokenBlacklist
	token        TokenConfig
	defaultRole  string
	defaultPoint int64
}

// NewAuthService 创建认证服务
func NewAuthService(repo repository.UserRepository, tx database.Transactor, blacklist security.TokenBlacklist,
	token TokenConfig, defaultRole string, defaultPoint int64) AuthService {
	if defaultRole == "" {
		defaultRole = string(security.RoleUser)
	}
	return &authService{
		repo:         repo,
		tx:           tx,
		blacklist:    blacklist,
		token:        token,
		defaultRole:  defaultRole,
		defaultPoint: defaultPoint,
	}
}

// Signup 注册用户并绑定默认角色
func (s *authService) Signup(ctx context.Context, in SignupInput) (*model.User, error) {
	return register(ctx, s.repo, s.tx, s.defaultRole, s.defaultPoint, in)
}

// register 注册和后台创建用户共用
func register(ctx context.Context, repo repository.UserRepository, tx database.Transactor,
	roleName string, defaultPoint int64, in SignupInput) (*model.User, error) {
	taken, err := repo.EmailTaken(ctx, in.Email, 0)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if taken {
		return nil, ErrEmailTaken
	}

	hashed, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Name:     in.Name,
		Email:    in.Email,
		Password: hashed,
		Point:    defaultPoint,
	}
	if in.Point != nil {
		user.Point = *in.Point
	}

	err = tx.Transaction(ctx, func(ctx context.Context) error {
		role, err := repo.FindRoleByName(ctx, roleName)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrDefaultRoleNil
			}
			return err
		}
		if err := repo.Create(ctx, user); err != nil {
			return err
		}
		if err := repo.AttachRole(ctx, user, role); err != nil {
			return err
		}
		user.Roles = []model.Role{*role}
		return nil
	})
	if err != nil {
		logger.Log.Error("register user failed", zap.String("email", in.Email), zap.Error(err))
		return nil, err
	}
	return user, nil
}

// Login 邮箱密码登录，返回 Bearer 令牌
func (s *authService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEmailNotFound
		}
		return nil, err
	}

	if !utils.CheckPassword(user.Password, password) {
		return nil, ErrWrongPassword
	}

	token, _, _, err := utils.GenerateToken(user.ID, s.token.Secret, s.token.TTL, s.token.Issuer)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	return &LoginResult{AccessToken: token, User: user}, nil
}

// Logout 注销当前令牌
func (s *authService) Logout(ctx context.Context, tokenID string, expiresAt time.Time) error {
	return s.blacklist.Revoke(ctx, tokenID, expiresAt)
}
