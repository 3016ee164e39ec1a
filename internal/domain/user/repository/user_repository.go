package repository

import (
	"context"
	"errors"
	"loyalty_points_api/internal/domain/user/model"
	"loyalty_points_api/pkg/database"
	"loyalty_points_api/pkg/query"
	"loyalty_points_api/pkg/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserSorter 用户列表可排序字段
var UserSorter = query.Sorter{
	Allowed: map[string]string{
		"id":        "users.id",
		"name":      "users.name",
		"email":     "users.email",
		"point":     "users.point",
		"createdAt": "users.created_at",
	},
	Default: "users.id",
}

// UserRepository 接口定义
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id uint64) (*model.User, error)
	// GetByIDWithTrashed 包含已软删除的用户
	GetByIDWithTrashed(ctx context.Context, id uint64) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	// EmailTaken 邮箱是否已被其他用户使用，exceptID 为 0 时不排除任何用户
	EmailTaken(ctx context.Context, email string, exceptID uint64) (bool, error)
	// LockByID 在事务中对用户行加锁 (SELECT ... FOR UPDATE)
	LockByID(ctx context.Context, id uint64) (*model.User, error)
	List(ctx context.Context, excludeID uint64, filters []query.Filter, p *utils.Pagination) ([]model.User, utils.PageMeta, error)
	// Update 只写回 changes 中的列
	Update(ctx context.Context, id uint64, changes map[string]interface{}) error
	UpdatePoint(ctx context.Context, id uint64, point int64) error
	Delete(ctx context.Context, user *model.User) error
	ForceDelete(ctx context.Context, user *model.User) error

	FindRoleByName(ctx context.Context, name string) (*model.Role, error)
	AttachRole(ctx context.Context, user *model.User, role *model.Role) error
	// PermissionNames 用户通过角色获得的全部权限
	PermissionNames(ctx context.Context, userID uint64) ([]string, error)
}

// userRepository 实现
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建新的仓库实例
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Create 创建用户
func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	return database.Conn(ctx, r.db).Omit(clause.Associations).Create(user).Error
}

// GetByID 根据ID获取用户
func (r *userRepository) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	var user model.User
	if err := database.Conn(ctx, r.db).Preload("Roles").Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByIDWithTrashed(ctx context.Context, id uint64) (*model.User, error) {
	var user model.User
	if err := database.Conn(ctx, r.db).Unscoped().Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByEmail 根据邮箱获取用户
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := database.Conn(ctx, r.db).Preload("Roles").Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) EmailTaken(ctx context.Context, email string, exceptID uint64) (bool, error) {
	// 唯一索引覆盖软删除的用户，这里同样不过滤
	db := database.Conn(ctx, r.db).Unscoped().Model(&model.User{}).Where("email = ?", email)
	if exceptID != 0 {
		db = db.Where("id <> ?", exceptID)
	}
	var count int64
	if err := db.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *userRepository) LockByID(ctx context.Context, id uint64) (*model.User, error) {
	var user model.User
	err := database.Conn(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// List 获取用户列表（分页），不包含 excludeID
func (r *userRepository) List(ctx context.Context, excludeID uint64, filters []query.Filter, p *utils.Pagination) ([]model.User, utils.PageMeta, error) {
	db := database.Conn(ctx, r.db).Model(&model.User{}).Where("users.id <> ?", excludeID)
	db = query.Apply(db, filters...)

	var users []model.User
	meta, err := query.Paginate(db.Preload("Roles"), UserSorter, p, &users)
	if err != nil {
		return nil, meta, err
	}
	return users, meta, nil
}

// Update 更新用户
func (r *userRepository) Update(ctx context.Context, id uint64, changes map[string]interface{}) error {
	if len(changes) == 0 {
		return nil
	}
	return database.Conn(ctx, r.db).Model(&model.User{}).Where("id = ?", id).Updates(changes).Error
}

func (r *userRepository) UpdatePoint(ctx context.Context, id uint64, point int64) error {
	return database.Conn(ctx, r.db).Model(&model.User{}).Where("id = ?", id).Update("point", point).Error
}

// Delete 删除用户（软删除）
func (r *userRepository) Delete(ctx context.Context, user *model.User) error {
	return database.Conn(ctx, r.db).Delete(user).Error
}

// ForceDelete 物理删除用户及其角色关联
func (r *userRepository) ForceDelete(ctx context.Context, user *model.User) error {
	db := database.Conn(ctx, r.db)
	if err := db.Model(user).Association("Roles").Clear(); err != nil {
		return err
	}
	return db.Unscoped().Delete(user).Error
}

func (r *userRepository) FindRoleByName(ctx context.Context, name string) (*model.Role, error) {
	var role model.Role
	if err := database.Conn(ctx, r.db).Where("name = ?", name).First(&role).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *userRepository) AttachRole(ctx context.Context, user *model.User, role *model.Role) error {
	if user.ID == 0 || role.ID == 0 {
		return errors.New("attach role: user and role must be persisted")
	}
	return database.Conn(ctx, r.db).Model(user).Association("Roles").Append(role)
}

func (r *userRepository) PermissionNames(ctx context.Context, userID uint64) ([]string, error) {
	var names []string
	err := database.Conn(ctx, r.db).
		Table("permissions").
		Distinct("permissions.name").
		Joins("JOIN permission_role ON permission_role.permission_id = permissions.id").
		Joins("JOIN role_user ON role_user.role_id = permission_role.role_id").
		Where("role_user.user_id = ?", userID).
		Order("permissions.name").
		Pluck("permissions.name", &names).Error
	return names, err
}
