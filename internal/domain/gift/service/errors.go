package service

import (
	"loyalty_points_api/pkg/apperr"
)

var (
	ErrGiftNotFound     = apperr.NotFound("Gift Not Found")
	ErrGiftsNotFound    = apperr.NotFound("Gift Not Found. Please Check Gift ID")
	ErrOutOfStock       = apperr.InvalidState("Out of Stock")
	ErrPointNotEnough   = apperr.InvalidState("User point not enough")
	ErrNotRedeemed      = apperr.InvalidState("You haven't redeem this gift")
	ErrRatingNotFound   = apperr.NotFound("Rating Not Found")
	ErrUserNotFound     = apperr.NotFound("User Not Found")
	ErrDuplicateRequest = apperr.Conflict("Duplicate redemption request")
)

// outOfStock 多件兑换时带礼品名称的库存不足错误，errors.Is 仍可匹配 ErrOutOfStock
func outOfStock(name string) error {
	return &apperr.Error{Kind: apperr.KindInvalidState, Message: name + " Out of Stock", Err: ErrOutOfStock}
}
