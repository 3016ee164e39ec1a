package service

import (
	"context"
	"errors"
	"fmt"
	"loyalty_points_api/internal/domain/gift/model"
	"loyalty_points_api/internal/domain/gift/repository"
	orderModel "loyalty_points_api/internal/domain/order/model"
	orderRepo "loyalty_points_api/internal/domain/order/repository"
	userModel "loyalty_points_api/internal/domain/user/model"
	"loyalty_points_api/internal/pkg/broker"
	"loyalty_points_api/pkg/apperr"
	"loyalty_points_api/pkg/cache"
	"loyalty_points_api/pkg/database"
	"loyalty_points_api/pkg/logger"
	"loyalty_points_api/pkg/metrics"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	ModeSingle = "single"
	ModeMulti  = "multi"

	// IdempotencyTTL 幂等键默认保留时间
	IdempotencyTTL = 24 * time.Hour
)

// RedeemItem 兑换的一行
type RedeemItem struct {
	GiftID uint64
	Qty    int
}

// PointAccount 兑换时需要的用户积分操作，由用户仓库实现
type PointAccount interface {
	LockByID(ctx context.Context, id uint64) (*userModel.User, error)
	UpdatePoint(ctx context.Context, id uint64, point int64) error
}

// EventPublisher 异步投递事件
type EventPublisher interface {
	Publish(key string, event interface{})
}

// RedeemService 积分兑换
type RedeemService interface {
	// RedeemOne 兑换单个礼品，idempotencyKey 为空时不做重复请求检查
	RedeemOne(ctx context.Context, userID, giftID uint64, qty int, idempotencyKey string) ([]*orderModel.Order, error)
	// RedeemMany 一次兑换多个礼品，全部成功或全部失败
	RedeemMany(ctx context.Context, userID uint64, items []RedeemItem, idempotencyKey string) ([]*orderModel.Order, error)
}

type redeemService struct {
	gifts    repository.GiftRepository
	orders   orderRepo.OrderRepository
	accounts PointAccount
	tx       database.Transactor
	cache    cache.CacheService
	events   EventPublisher
	metrics  *metrics.MetricsCollector
	ttl      time.Duration
	now      func() time.Time
}

// RedeemOption 兑换服务可选配置
type RedeemOption func(*redeemService)

// WithIdempotencyTTL 设置幂等键保留时间，非正数时使用默认值
func WithIdempotencyTTL(ttl time.Duration) RedeemOption {
	return func(s *redeemService) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// NewRedeemService 创建兑换服务，cache 为 nil 时忽略幂等键，events 为 nil 时不发事件
func NewRedeemService(gifts repository.GiftRepository, orders orderRepo.OrderRepository, accounts PointAccount,
	tx database.Transactor, c cache.CacheService, events EventPublisher, collector *metrics.MetricsCollector, opts ...RedeemOption) RedeemService {
	s := &redeemService{
		gifts:    gifts,
		orders:   orders,
		accounts: accounts,
		tx:       tx,
		cache:    c,
		events:   events,
		metrics:  collector,
		ttl:      IdempotencyTTL,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *redeemService) RedeemOne(ctx context.Context, userID, giftID uint64, qty int, idempotencyKey string) ([]*orderModel.Order, error) {
	if _, err := s.gifts.GetByID(ctx, giftID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.record(ModeSingle, ErrGiftNotFound, nil)
			return nil, ErrGiftNotFound
		}
		return nil, err
	}
	return s.run(ctx, ModeSingle, userID, []RedeemItem{{GiftID: giftID, Qty: qty}}, idempotencyKey)
}

func (s *redeemService) RedeemMany(ctx context.Context, userID uint64, items []RedeemItem, idempotencyKey string) ([]*orderModel.Order, error) {
	if len(items) == 0 {
		return nil, apperr.FieldInvalid("ids", "The ids field is required.")
	}
	return s.run(ctx, ModeMulti, userID, items, idempotencyKey)
}

func (s *redeemService) run(ctx context.Context, mode string, userID uint64, items []RedeemItem, key string) ([]*orderModel.Order, error) {
	for _, item := range items {
		if item.Qty < 1 {
			return nil, apperr.FieldInvalid("qty", "The qty must be at least 1.")
		}
	}

	reserved, err := s.reserve(ctx, userID, key)
	if err != nil {
		s.record(mode, err, nil)
		return nil, err
	}

	orders, err := s.redeem(ctx, mode, userID, items)
	s.record(mode, err, orders)
	if err != nil {
		if reserved {
			s.release(ctx, userID, key)
		}
		return nil, err
	}

	s.publish(orders)
	return orders, nil
}

// redeem 在一个事务中完成校验和扣减
// 先按 id 升序锁礼品，再锁用户，锁内重新校验库存和积分
func (s *redeemService) redeem(ctx context.Context, mode string, userID uint64, items []RedeemItem) ([]*orderModel.Order, error) {
	ids := make([]uint64, len(items))
	qtys := make(map[uint64]int, len(items))
	for i, item := range items {
		ids[i] = item.GiftID
		qtys[item.GiftID] = item.Qty
	}

	var orders []*orderModel.Order
	err := s.tx.Transaction(ctx, func(ctx context.Context) error {
		gifts, err := s.gifts.LockByIDs(ctx, ids)
		if err != nil {
			return fmt.Errorf("lock gifts: %w", err)
		}
		// 重复的 id 只会查到一行，同样视为找不到
		if len(gifts) != len(ids) {
			if mode == ModeSingle {
				return ErrGiftNotFound
			}
			return ErrGiftsNotFound
		}

		var total int64
		for _, gift := range gifts {
			qty := qtys[gift.ID]
			if gift.Stock-qty < 0 {
				if mode == ModeSingle {
					return ErrOutOfStock
				}
				return outOfStock(gift.Name)
			}
			total += gift.Point * int64(qty)
		}

		user, err := s.accounts.LockByID(ctx, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return fmt.Errorf("lock user: %w", err)
		}
		if user.Point-total < 0 {
			return ErrPointNotEnough
		}

		byID := make(map[uint64]*model.Gift, len(gifts))
		for i := range gifts {
			gift := &gifts[i]
			qty := qtys[gift.ID]
			gift.Stock -= qty
			gift.TotalPurchases += qty
			if err := s.gifts.UpdateStock(ctx, gift); err != nil {
				return fmt.Errorf("update stock: %w", err)
			}
			byID[gift.ID] = gift
		}

		orders = make([]*orderModel.Order, 0, len(items))
		for _, item := range items {
			order := &orderModel.Order{
				UserID: userID,
				Qty:    item.Qty,
				Point:  byID[item.GiftID].Point * int64(item.Qty),
				Status: orderModel.StatusOrdered,
			}
			order.SetTarget(orderModel.Target{Kind: orderModel.TargetGift, ID: item.GiftID})
			orders = append(orders, order)
		}
		if err := s.orders.CreateBatch(ctx, orders, s.now().Unix()); err != nil {
			return fmt.Errorf("create orders: %w", err)
		}

		return s.accounts.UpdatePoint(ctx, user.ID, user.Point-total)
	})
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func idempotencyKey(userID uint64, key string) string {
	return fmt.Sprintf("idempotency:%d:%s", userID, key)
}

// reserve 占用幂等键，返回是否实际占用
func (s *redeemService) reserve(ctx context.Context, userID uint64, key string) (bool, error) {
	if key == "" || s.cache == nil {
		return false, nil
	}
	ok, err := s.cache.SetNX(ctx, idempotencyKey(userID, key), s.now().Unix(), s.ttl)
	if err != nil {
		return false, fmt.Errorf("reserve idempotency key: %w", err)
	}
	if !ok {
		return false, ErrDuplicateRequest
	}
	return true, nil
}

// release 兑换失败时释放幂等键，允许客户端重试
func (s *redeemService) release(ctx context.Context, userID uint64, key string) {
	if err := s.cache.Delete(ctx, idempotencyKey(userID, key)); err != nil {
		logger.Log.Warn("release idempotency key failed",
			zap.Uint64("user_id", userID),
			zap.String("key", key),
			zap.Error(err))
	}
}

func (s *redeemService) publish(orders []*orderModel.Order) {
	if s.events == nil {
		return
	}
	for _, o := range orders {
		event := broker.GiftRedeemed{
			Type:       broker.EventGiftRedeemed,
			OrderID:    o.ID,
			UserID:     o.UserID,
			GiftID:     o.AttachableID,
			Qty:        o.Qty,
			Point:      o.Point,
			RedeemedAt: o.CreatedAt,
		}
		s.events.Publish(event.Key(), event)
	}
}

func (s *redeemService) record(mode string, err error, orders []*orderModel.Order) {
	if s.metrics == nil {
		return
	}
	var qty int
	var points int64
	for _, o := range orders {
		qty += o.Qty
		points += o.Point
	}
	s.metrics.RecordRedemption(mode, redemptionResult(err), qty, points)
}

func redemptionResult(err error) string {
	switch {
	case err == nil:
		return metrics.ResultSuccess
	case errors.Is(err, ErrOutOfStock):
		return metrics.ResultOutOfStock
	case errors.Is(err, ErrPointNotEnough):
		return metrics.ResultInsufficient
	case errors.Is(err, ErrGiftNotFound), errors.Is(err, ErrGiftsNotFound):
		return metrics.ResultNotFound
	case errors.Is(err, ErrDuplicateRequest):
		return metrics.ResultDuplicate
	default:
		return metrics.ResultError
	}
}
