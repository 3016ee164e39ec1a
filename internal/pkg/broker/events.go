package broker

import "fmt"

const EventGiftRedeemed = "gift.redeemed"

// GiftRedeemed 兑换成功后每个订单发出一条事件
type GiftRedeemed struct {
	Type       string `json:"type"`
	OrderID    uint64 `json:"orderId"`
	UserID     uint64 `json:"userId"`
	GiftID     uint64 `json:"giftId"`
	Qty        int    `json:"qty"`
	Point      int64  `json:"point"`
	RedeemedAt int64  `json:"redeemedAt"`
}

// Key 以用户为分区键，同一用户的事件保持顺序
func (e GiftRedeemed) Key() string {
	return fmt.Sprintf("user-%d", e.UserID)
}
