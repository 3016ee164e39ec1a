package model

import (
	baseModel "loyalty_points_api/pkg/model"
)

// User 用户模型
type User struct {
	baseModel.BaseModel
	Name     string `gorm:"type:varchar(255);not null" json:"name"`
	Email    string `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Password string `gorm:"type:varchar(255);not null" json:"-"` // 密码不返回给前端
	Point    int64  `gorm:"not null;default:0" json:"point"`
	Roles    []Role `gorm:"many2many:role_user;" json:"roles,omitempty"`
}

// Role 角色
type Role struct {
	ID          uint64       `gorm:"primaryKey" json:"id"`
	Name        string       `gorm:"type:varchar(255);uniqueIndex;not null" json:"name"`
	DisplayName string       `gorm:"type:varchar(255)" json:"displayName"`
	Description string       `gorm:"type:varchar(255)" json:"description"`
	Permissions []Permission `gorm:"many2many:permission_role;" json:"-"`
	CreatedAt   int64        `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   int64        `gorm:"autoUpdateTime" json:"updatedAt"`
}

// Permission 权限
type Permission struct {
	ID          uint64 `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"type:varchar(255);uniqueIndex;not null" json:"name"`
	DisplayName string `gorm:"type:varchar(255)" json:"displayName"`
	CreatedAt   int64  `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   int64  `gorm:"autoUpdateTime" json:"updatedAt"`
}

// RoleNames 用户拥有的角色名称
func (u *User) RoleNames() []string {
	names := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		names = append(names, r.Name)
	}
	return names
}
