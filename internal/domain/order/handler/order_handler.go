package handler

import (
	"loyalty_points_api/internal/domain/order/model"
	"loyalty_points_api/internal/domain/order/service"
	"loyalty_points_api/internal/pkg/middleware"
	"loyalty_points_api/pkg/logger"
	"loyalty_points_api/pkg/response"
	"loyalty_points_api/pkg/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type OrderHandler struct {
	service service.OrderService
}

func NewOrderHandler(s service.OrderService) *OrderHandler {
	return &OrderHandler{service: s}
}

// ListRedeemedGifts 当前用户兑换过的礼品
func (h *OrderHandler) ListRedeemedGifts(c *gin.Context) {
	var p utils.Pagination
	var params service.ListParams
	if err := c.ShouldBindQuery(&p); err != nil {
		response.Invalid(c, err)
		return
	}
	if err := c.ShouldBindQuery(&params); err != nil {
		response.Invalid(c, err)
		return
	}

	orders, meta, err := h.service.ListRedeemed(c.Request.Context(), middleware.GetUserID(c), model.TargetGift, params, &p)
	if err != nil {
		logger.Log.Error("list redeemed gifts failed", zap.Error(err))
		response.Fail(c, err, "Failed to get redeemed gifts")
		return
	}
	response.Paginate(c, orders, meta)
}
