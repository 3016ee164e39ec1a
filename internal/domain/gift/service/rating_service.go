package service

import (
	"context"
	"errors"
	"fmt"
	"loyalty_points_api/internal/domain/gift/model"
	"loyalty_points_api/internal/domain/gift/repository"
	orderModel "loyalty_points_api/internal/domain/order/model"
	orderRepo "loyalty_points_api/internal/domain/order/repository"
	"loyalty_points_api/pkg/apperr"
	"loyalty_points_api/pkg/database"
	"loyalty_points_api/pkg/metrics"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// 评分写入动作
const (
	RatingCreated = "create"
	RatingUpdated = "update"
	RatingDeleted = "delete"
)

// RatingService 评分
// 每次写入评分后在同一事务内重新计算礼品的 rating
type RatingService interface {
	// Rate 新建或更新当前用户的评分，返回实际执行的动作
	Rate(ctx context.Context, giftID, userID uint64, value decimal.Decimal) (string, error)
	// DeleteRating 软删除当前用户的评分
	DeleteRating(ctx context.Context, giftID, userID uint64) error
}

type ratingService struct {
	gifts   repository.GiftRepository
	orders  orderRepo.OrderRepository
	tx      database.Transactor
	metrics *metrics.MetricsCollector
}

func NewRatingService(gifts repository.GiftRepository, orders orderRepo.OrderRepository, tx database.Transactor,
	collector *metrics.MetricsCollector) RatingService {
	return &ratingService{gifts: gifts, orders: orders, tx: tx, metrics: collector}
}

func (s *ratingService) Rate(ctx context.Context, giftID, userID uint64, value decimal.Decimal) (string, error) {
	if value.IsNegative() || value.GreaterThan(decimal.NewFromInt(model.MaxRating)) {
		return "", apperr.FieldInvalid("rating", fmt.Sprintf("The rating must be between 0 and %d.", model.MaxRating))
	}

	var action string
	err := s.tx.Transaction(ctx, func(ctx context.Context) error {
		if err := lockRedeemedGift(ctx, s.gifts, s.orders, giftID, userID); err != nil {
			return err
		}

		rating, err := s.gifts.FindRating(ctx, giftID, userID)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			rating = &model.GiftRating{GiftID: giftID, UserID: userID}
			action = RatingCreated
		case err != nil:
			return err
		default:
			action = RatingUpdated
		}

		rating.Rating = model.RoundHalf(value)
		if err := s.gifts.SaveRating(ctx, rating); err != nil {
			return fmt.Errorf("save rating: %w", err)
		}
		return s.recompute(ctx, giftID)
	})
	if err != nil {
		return "", err
	}
	s.record(action)
	return action, nil
}

func (s *ratingService) DeleteRating(ctx context.Context, giftID, userID uint64) error {
	err := s.tx.Transaction(ctx, func(ctx context.Context) error {
		if err := lockGift(ctx, s.gifts, giftID); err != nil {
			return err
		}

		rating, err := s.gifts.FindRating(ctx, giftID, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRatingNotFound
			}
			return err
		}
		if err := s.gifts.DeleteRating(ctx, rating); err != nil {
			return fmt.Errorf("delete rating: %w", err)
		}
		return s.recompute(ctx, giftID)
	})
	if err != nil {
		return err
	}
	s.record(RatingDeleted)
	return nil
}

// recompute rating = round(sum*2)/2，是总和不是平均值
func (s *ratingService) recompute(ctx context.Context, giftID uint64) error {
	sum, err := s.gifts.SumRatings(ctx, giftID)
	if err != nil {
		return fmt.Errorf("sum ratings: %w", err)
	}
	return s.gifts.UpdateRating(ctx, giftID, model.RoundHalf(sum))
}

func (s *ratingService) record(action string) {
	if s.metrics != nil {
		s.metrics.RecordRating(action)
	}
}

// lockGift 在事务中锁定礼品行，同一礼品的评分和点赞串行执行
func lockGift(ctx context.Context, gifts repository.GiftRepository, giftID uint64) error {
	locked, err := gifts.LockByIDs(ctx, []uint64{giftID})
	if err != nil {
		return fmt.Errorf("lock gift: %w", err)
	}
	if len(locked) == 0 {
		return ErrGiftNotFound
	}
	return nil
}

// lockRedeemedGift 锁定礼品并确认用户兑换过它
func lockRedeemedGift(ctx context.Context, gifts repository.GiftRepository, orders orderRepo.OrderRepository, giftID, userID uint64) error {
	if err := lockGift(ctx, gifts, giftID); err != nil {
		return err
	}
	redeemed, err := orders.ExistsForUser(ctx, userID, orderModel.Target{Kind: orderModel.TargetGift, ID: giftID})
	if err != nil {
		return fmt.Errorf("check redemption: %w", err)
	}
	if !redeemed {
		return ErrNotRedeemed
	}
	return nil
}
