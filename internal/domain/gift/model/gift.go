package model

import (
	baseModel "loyalty_points_api/pkg/model"

	"github.com/shopspring/decimal"
)

// MaxRating 单条评分上限
const MaxRating = 5

var two = decimal.NewFromInt(2)

// Gift 礼品
// Rating 存储的是全部有效评分之和按 0.5 取整的结果，不是平均值
type Gift struct {
	baseModel.BaseModel
	Name           string          `gorm:"type:varchar(255);not null" json:"name"`
	Description    string          `gorm:"type:text;not null" json:"description"`
	Stock          int             `gorm:"not null;default:0" json:"stock"`
	Point          int64           `gorm:"not null;default:0" json:"point"`
	Rating         decimal.Decimal `gorm:"type:decimal(8,1);not null;default:0" json:"rating"`
	TotalPurchases int             `gorm:"not null;default:0" json:"totalPurchases"`
	Image          string          `gorm:"type:varchar(255)" json:"image"`
	TotalLike      int64           `gorm:"-" json:"totalLike"`
}

// GiftLike 点赞记录，取消点赞时物理删除
type GiftLike struct {
	baseModel.Timestamps
	GiftID uint64 `gorm:"index;not null" json:"giftId"`
	UserID uint64 `gorm:"index;not null" json:"userId"`
}

// GiftRating 用户对礼品的评分，每个用户每个礼品至多一条有效记录
type GiftRating struct {
	baseModel.BaseModel
	GiftID uint64          `gorm:"index;not null" json:"giftId"`
	UserID uint64          `gorm:"index;not null" json:"userId"`
	Rating decimal.Decimal `gorm:"type:decimal(2,1);not null" json:"rating"`
}

// RoundHalf 四舍五入到最近的 0.5
func RoundHalf(v decimal.Decimal) decimal.Decimal {
	return v.Mul(two).Round(0).Div(two).Round(1)
}
