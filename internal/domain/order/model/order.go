package model

import (
	baseModel "loyalty_points_api/pkg/model"
)

// Status 订单状态
type Status string

const (
	// StatusCart 保留状态，当前没有写入路径
	StatusCart    Status = "cart"
	StatusOrdered Status = "ordered"
)

// Order 兑换订单，point 为下单时扣除的积分，之后不再变化
type Order struct {
	baseModel.BaseModel
	UserID         uint64      `gorm:"index;not null" json:"userId"`
	AttachableType TargetKind  `gorm:"type:varchar(100);not null;index:idx_orders_attachable" json:"attachableType"`
	AttachableID   uint64      `gorm:"not null;index:idx_orders_attachable" json:"attachableId"`
	Qty            int         `gorm:"not null" json:"qty"`
	Point          int64       `gorm:"not null" json:"point"`
	Status         Status      `gorm:"type:varchar(20);not null;default:'ordered'" json:"status"`
	Item           interface{} `gorm:"-" json:"item,omitempty"`
}

// Target 订单关联的对象
func (o *Order) Target() Target {
	return Target{Kind: o.AttachableType, ID: o.AttachableID}
}

// SetTarget 设置订单关联的对象
func (o *Order) SetTarget(t Target) {
	o.AttachableType = t.Kind
	o.AttachableID = t.ID
}
