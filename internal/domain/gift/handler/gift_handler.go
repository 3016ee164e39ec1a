package handler

import (
	"loyalty_points_api/internal/domain/gift/service"
	"loyalty_points_api/internal/pkg/middleware"
	"loyalty_points_api/pkg/logger"
	"loyalty_points_api/pkg/response"
	"loyalty_points_api/pkg/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// GiftHandler 礼品处理器
type GiftHandler struct {
	gifts   service.GiftService
	redeem  service.RedeemService
	ratings service.RatingService
	likes   service.LikeService
}

// NewGiftHandler 创建处理器
func NewGiftHandler(gifts service.GiftService, redeem service.RedeemService, ratings service.RatingService, likes service.LikeService) *GiftHandler {
	return &GiftHandler{gifts: gifts, redeem: redeem, ratings: ratings, likes: likes}
}

// CreateGiftInput 创建礼品
type CreateGiftInput struct {
	Name        string `json:"name" binding:"required,max=255"`
	Description string `json:"description" binding:"required"`
	Stock       *int   `json:"stock" binding:"required,min=0"`
	Point       *int64 `json:"point" binding:"required,min=0"`
	Image       string `json:"image" binding:"required,url,max=255"`
}

// UpdateGiftInput 更新礼品，未传的字段不修改
type UpdateGiftInput struct {
	Name        *string `json:"name" binding:"omitempty,max=255"`
	Description *string `json:"description"`
	Stock       *int    `json:"stock" binding:"omitempty,min=0"`
	Point       *int64  `json:"point" binding:"omitempty,min=0"`
	Image       *string `json:"image" binding:"omitempty,url,max=255"`
}

// GetGifts 礼品列表
func (h *GiftHandler) GetGifts(c *gin.Context) {
	p, params, ok := bindList(c)
	if !ok {
		return
	}

	gifts, meta, err := h.gifts.List(c.Request.Context(), params, p)
	if err != nil {
		logger.Log.Error("list gifts failed", zap.Error(err))
		response.Fail(c, err, "Failed to Get Gifts.")
		return
	}
	response.Paginate(c, gifts, meta)
}

// GetLikedGifts 当前用户点赞过的礼品
func (h *GiftHandler) GetLikedGifts(c *gin.Context) {
	p, params, ok := bindList(c)
	if !ok {
		return
	}

	gifts, meta, err := h.gifts.ListLiked(c.Request.Context(), middleware.GetUserID(c), params, p)
	if err != nil {
		logger.Log.Error("list liked gifts failed", zap.Error(err))
		response.Fail(c, err, "Failed to Get List Liked Gifts.")
		return
	}
	response.Paginate(c, gifts, meta)
}

// GetRatedGifts 当前用户评分过的礼品
func (h *GiftHandler) GetRatedGifts(c *gin.Context) {
	p, params, ok := bindList(c)
	if !ok {
		return
	}

	gifts, meta, err := h.gifts.ListRated(c.Request.Context(), middleware.GetUserID(c), params, p)
	if err != nil {
		logger.Log.Error("list rated gifts failed", zap.Error(err))
		response.Fail(c, err, "Failed to Get List Rated Gifts.")
		return
	}
	response.Paginate(c, gifts, meta)
}

// CreateGift 创建礼品
func (h *GiftHandler) CreateGift(c *gin.Context) {
	var input CreateGiftInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Invalid(c, err)
		return
	}

	gift, err := h.gifts.Create(c.Request.Context(), service.CreateInput{
		Name:        input.Name,
		Description: input.Description,
		Stock:       *input.Stock,
		Point:       *input.Point,
		Image:       input.Image,
	})
	if err != nil {
		response.Fail(c, err, "Failed to Create Gift.")
		return
	}
	response.Created(c, gift, "Create Gift Successfully.")
}

// GetGift 礼品详情
func (h *GiftHandler) GetGift(c *gin.Context) {
	id, ok := giftID(c)
	if !ok {
		return
	}

	gift, err := h.gifts.Get(c.Request.Context(), id)
	if err != nil {
		response.Fail(c, err, "Failed to Get Detail Gift.")
		return
	}
	response.Success(c, gift, "Get Detail Gift Successfully.")
}

// UpdateGift 更新礼品
func (h *GiftHandler) UpdateGift(c *gin.Context) {
	id, ok := giftID(c)
	if !ok {
		return
	}

	var input UpdateGiftInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Invalid(c, err)
		return
	}

	gift, err := h.gifts.Update(c.Request.Context(), id, service.UpdateInput{
		Name:        input.Name,
		Description: input.Description,
		Stock:       input.Stock,
		Point:       input.Point,
		Image:       input.Image,
	})
	if err != nil {
		response.Fail(c, err, "Failed to Update Gift.")
		return
	}
	response.Success(c, gift, "Update Gift Successfully.")
}

// DeleteGift 软删除礼品
func (h *GiftHandler) DeleteGift(c *gin.Context) {
	id, ok := giftID(c)
	if !ok {
		return
	}

	if err := h.gifts.Delete(c.Request.Context(), id); err != nil {
		response.Fail(c, err, "Failed to Delete Gift.")
		return
	}
	response.Deleted(c, "Delete Gift Successfully.")
}

// DeletePermanent 物理删除礼品
func (h *GiftHandler) DeletePermanent(c *gin.Context) {
	id, ok := giftID(c)
	if !ok {
		return
	}

	if err := h.gifts.ForceDelete(c.Request.Context(), id); err != nil {
		response.Fail(c, err, "Failed to Delete Gift.")
		return
	}
	response.Deleted(c, "Delete Gift Successfully.")
}

func bindList(c *gin.Context) (*utils.Pagination, service.ListParams, bool) {
	var p utils.Pagination
	var params service.ListParams
	if err := c.ShouldBindQuery(&p); err != nil {
		response.Invalid(c, err)
		return nil, params, false
	}
	if err := c.ShouldBindQuery(&params); err != nil {
		response.Invalid(c, err)
		return nil, params, false
	}
	return &p, params, true
}

// giftID 解析路径中的礼品 id，非法 id 按不存在处理
func giftID(c *gin.Context) (uint64, bool) {
	id, ok := utils.ParseID(c.Param("id"))
	if !ok {
		response.Fail(c, service.ErrGiftNotFound, "")
	}
	return id, ok
}
