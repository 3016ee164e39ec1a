package service

import (
	"context"
	"loyalty_points_api/internal/domain/order/model"
	"loyalty_points_api/pkg/apperr"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func redeemed(store *memStore, userID, giftID uint64) {
	o := &model.Order{UserID: userID, Qty: 1, Point: 10, Status: model.StatusOrdered}
	o.SetTarget(model.Target{Kind: model.TargetGift, ID: giftID})
	_ = memOrders{store}.CreateBatch(context.Background(), []*model.Order{o}, 1700000000)
}

func assertRating(t *testing.T, store *memStore, giftID uint64, want string) {
	t.Helper()
	got := store.gift(giftID).Rating
	assert.True(t, decimal.RequireFromString(want).Equal(got), "rating = %s, want %s", got, want)
}

func TestRate_RecomputesRoundedSum(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.addGift(1, "Mug", 5, 10)
	redeemed(store, 7, 1)
	redeemed(store, 8, 1)
	svc := NewRatingService(store, memOrders{store}, passTransactor{}, nil)

	action, err := svc.Rate(ctx, 1, 7, decimal.RequireFromString("3.3"))
	require.NoError(t, err)
	assert.Equal(t, RatingCreated, action)
	assertRating(t, store, 1, "3.5")

	stored, err := store.FindRating(ctx, 1, 7)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("3.5").Equal(stored.Rating))

	// 总和不是平均值
	action, err = svc.Rate(ctx, 1, 8, decimal.RequireFromString("4.74"))
	require.NoError(t, err)
	assert.Equal(t, RatingCreated, action)
	assertRating(t, store, 1, "8")

	action, err = svc.Rate(ctx, 1, 7, decimal.NewFromInt(1))
	require.NoError(t, err)
	assert.Equal(t, RatingUpdated, action)
	assertRating(t, store, 1, "5.5")

	require.NoError(t, svc.DeleteRating(ctx, 1, 8))
	assertRating(t, store, 1, "1")

	require.NoError(t, svc.DeleteRating(ctx, 1, 7))
	assertRating(t, store, 1, "0")
}

func TestRate_Failures(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.addGift(1, "Mug", 5, 10)
	redeemed(store, 7, 1)
	svc := NewRatingService(store, memOrders{store}, passTransactor{}, nil)

	_, err := svc.Rate(ctx, 1, 9, decimal.NewFromInt(4))
	assert.ErrorIs(t, err, ErrNotRedeemed)

	_, err = svc.Rate(ctx, 99, 7, decimal.NewFromInt(4))
	assert.ErrorIs(t, err, ErrGiftNotFound)

	_, err = svc.Rate(ctx, 1, 7, decimal.RequireFromString("5.5"))
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	_, err = svc.Rate(ctx, 1, 7, decimal.NewFromInt(-1))
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	err = svc.DeleteRating(ctx, 1, 7)
	assert.ErrorIs(t, err, ErrRatingNotFound)
	assertRating(t, store, 1, "0")
}

func TestToggleLike(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.addGift(1, "Mug", 5, 10)
	redeemed(store, 7, 1)
	svc := NewLikeService(store, memOrders{store}, passTransactor{}, nil)

	_, err := svc.Toggle(ctx, 1, 8)
	assert.ErrorIs(t, err, ErrNotRedeemed)

	_, err = svc.Toggle(ctx, 2, 7)
	assert.ErrorIs(t, err, ErrGiftNotFound)

	action, err := svc.Toggle(ctx, 1, 7)
	require.NoError(t, err)
	assert.Equal(t, ActionLike, action)

	counts, _ := store.LikeCounts(ctx, []uint64{1})
	assert.Equal(t, int64(1), counts[1])

	action, err = svc.Toggle(ctx, 1, 7)
	require.NoError(t, err)
	assert.Equal(t, ActionUnlike, action)

	counts, _ = store.LikeCounts(ctx, []uint64{1})
	assert.Zero(t, counts[1])
}
