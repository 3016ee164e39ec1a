package handler

import (
	"loyalty_points_api/internal/domain/gift/service"
	"loyalty_points_api/internal/pkg/middleware"
	"loyalty_points_api/pkg/logger"
	"loyalty_points_api/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// HeaderIdempotencyKey 兑换接口的可选幂等键
const HeaderIdempotencyKey = "Idempotency-Key"

const maxIdempotencyKeyLen = 255

// RedeemInput 兑换单个礼品
type RedeemInput struct {
	Qty int `json:"qty" binding:"required,min=1"`
}

// RedeemManyInput 兑换多个礼品，ids[i] 与 qtys[i] 一一对应
// qty 是 qtys 的旧名称，两者只能传一个
type RedeemManyInput struct {
	IDs  []uint64 `json:"ids" binding:"required,min=1,dive,min=1"`
	Qtys []int    `json:"qtys" binding:"omitempty,dive,min=1"`
	Qty  []int    `json:"qty" binding:"omitempty,dive,min=1"`
}

// items 校验数量并组装兑换行，失败时返回出错的字段和提示
func (in RedeemManyInput) items() ([]service.RedeemItem, string, string) {
	if in.Qtys != nil && in.Qty != nil {
		return nil, "qtys", "The qtys and qty fields cannot be used together."
	}
	qtys := in.Qtys
	if qtys == nil {
		qtys = in.Qty
	}
	if len(qtys) == 0 {
		return nil, "qtys", "The qtys field is required."
	}
	if len(qtys) != len(in.IDs) {
		return nil, "qtys", "The qtys must have the same number of items as ids."
	}

	items := make([]service.RedeemItem, len(in.IDs))
	for i, id := range in.IDs {
		items[i] = service.RedeemItem{GiftID: id, Qty: qtys[i]}
	}
	return items, "", ""
}

// RatingInput 评分，0 到 5，保存时取整到 0.5
type RatingInput struct {
	Rating *decimal.Decimal `json:"rating" binding:"required"`
}

// RedeemGift 兑换单个礼品
func (h *GiftHandler) RedeemGift(c *gin.Context) {
	id, ok := giftID(c)
	if !ok {
		return
	}
	key, ok := idempotencyKey(c)
	if !ok {
		return
	}

	var input RedeemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Invalid(c, err)
		return
	}

	if _, err := h.redeem.RedeemOne(c.Request.Context(), middleware.GetUserID(c), id, input.Qty, key); err != nil {
		logRedeemError(c, err)
		response.Fail(c, err, "Failed to Redeem Gift.")
		return
	}
	response.Created(c, nil, "Redeem Gift Successfully")
}

// RedeemGifts 兑换多个礼品
func (h *GiftHandler) RedeemGifts(c *gin.Context) {
	key, ok := idempotencyKey(c)
	if !ok {
		return
	}

	var input RedeemManyInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Invalid(c, err)
		return
	}
	items, field, msg := input.items()
	if field != "" {
		response.InvalidField(c, field, msg)
		return
	}

	if _, err := h.redeem.RedeemMany(c.Request.Context(), middleware.GetUserID(c), items, key); err != nil {
		logRedeemError(c, err)
		response.Fail(c, err, "Failed to Redeem Multiple Gift.")
		return
	}
	response.Created(c, nil, "Redeem Multiple Gift Successfully")
}

// RateGift 新建或更新评分
func (h *GiftHandler) RateGift(c *gin.Context) {
	id, ok := giftID(c)
	if !ok {
		return
	}

	var input RatingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Invalid(c, err)
		return
	}

	action, err := h.ratings.Rate(c.Request.Context(), id, middleware.GetUserID(c), *input.Rating)
	if err != nil {
		response.Fail(c, err, "Failed to Rating Redeemed Gift.")
		return
	}
	if action == service.RatingUpdated {
		response.Success(c, nil, "Update Gift Rating Successfully")
		return
	}
	response.Success(c, nil, "Rating Gift Successfully")
}

// DeleteRating 删除当前用户的评分
func (h *GiftHandler) DeleteRating(c *gin.Context) {
	id, ok := giftID(c)
	if !ok {
		return
	}

	if err := h.ratings.DeleteRating(c.Request.Context(), id, middleware.GetUserID(c)); err != nil {
		response.Fail(c, err, "Failed to Delete Gift Rating.")
		return
	}
	response.Success(c, nil, "Delete Gift Rating Successfully")
}

// LikeGift 点赞或取消点赞
func (h *GiftHandler) LikeGift(c *gin.Context) {
	id, ok := giftID(c)
	if !ok {
		return
	}

	action, err := h.likes.Toggle(c.Request.Context(), id, middleware.GetUserID(c))
	if err != nil {
		response.Fail(c, err, "Failed to Like / Unlike Redeemed Gift.")
		return
	}
	if action == service.ActionUnlike {
		response.Success(c, nil, "Unlike Gift Successfully")
		return
	}
	response.Success(c, nil, "Like Gift Successfully")
}

func idempotencyKey(c *gin.Context) (string, bool) {
	key := c.GetHeader(HeaderIdempotencyKey)
	if len(key) > maxIdempotencyKeyLen {
		response.InvalidField(c, "Idempotency-Key", "The Idempotency-Key may not be greater than 255 characters.")
		return "", false
	}
	return key, true
}

func logRedeemError(c *gin.Context, err error) {
	logger.Log.Warn("redeem failed",
		zap.Uint64("user_id", middleware.GetUserID(c)),
		zap.String("request_id", c.GetString("RequestID")),
		zap.Error(err))
}
