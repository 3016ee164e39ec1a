package model

import (
	"gorm.io/plugin/soft_delete"
)

// BaseModel 基础模型，替代 gorm.Model
// 时间字段统一存储为秒级时间戳，软删除标记为 0 表示未删除
type BaseModel struct {
	ID        uint64                `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt int64                 `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt int64                 `gorm:"autoUpdateTime" json:"updatedAt"`
	DeletedAt soft_delete.DeletedAt `gorm:"index;not null;default:0" json:"-"`
}

// Timestamps 不带软删除的基础模型 (用于点赞等可物理删除的记录)
type Timestamps struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt int64  `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt int64  `gorm:"autoUpdateTime" json:"updatedAt"`
}

// IsTrashed 是否已被软删除
func (b *BaseModel) IsTrashed() bool {
	return b.DeletedAt != 0
}
