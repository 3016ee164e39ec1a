package service

import (
	"context"
	"errors"
	"fmt"
	"loyalty_points_api/internal/domain/gift/model"
	"loyalty_points_api/internal/domain/gift/repository"
	orderRepo "loyalty_points_api/internal/domain/order/repository"
	"loyalty_points_api/pkg/database"
	"loyalty_points_api/pkg/metrics"

	"gorm.io/gorm"
)

const (
	ActionLike   = "like"
	ActionUnlike = "unlike"
)

// LikeService 点赞
type LikeService interface {
	// Toggle 已点赞则取消，否则点赞，返回实际执行的动作
	Toggle(ctx context.Context, giftID, userID uint64) (string, error)
}

type likeService struct {
	gifts   repository.GiftRepository
	orders  orderRepo.OrderRepository
	tx      database.Transactor
	metrics *metrics.MetricsCollector
}

func NewLikeService(gifts repository.GiftRepository, orders orderRepo.OrderRepository, tx database.Transactor,
	collector *metrics.MetricsCollector) LikeService {
	return &likeService{gifts: gifts, orders: orders, tx: tx, metrics: collector}
}

func (s *likeService) Toggle(ctx context.Context, giftID, userID uint64) (string, error) {
	var action string
	err := s.tx.Transaction(ctx, func(ctx context.Context) error {
		if err := lockRedeemedGift(ctx, s.gifts, s.orders, giftID, userID); err != nil {
			return err
		}

		like, err := s.gifts.FindLike(ctx, giftID, userID)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			action = ActionLike
			if err := s.gifts.CreateLike(ctx, &model.GiftLike{GiftID: giftID, UserID: userID}); err != nil {
				return fmt.Errorf("create like: %w", err)
			}
			return nil
		case err != nil:
			return err
		}

		action = ActionUnlike
		if err := s.gifts.DeleteLike(ctx, like); err != nil {
			return fmt.Errorf("delete like: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	if s.metrics != nil {
		s.metrics.RecordLike(action)
	}
	return action, nil
}
