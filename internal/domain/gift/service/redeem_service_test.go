package service

import (
	"context"
	"errors"
	"loyalty_points_api/internal/domain/order/model"
	"loyalty_points_api/internal/pkg/broker"
	"loyalty_points_api/pkg/apperr"
	"loyalty_points_api/pkg/cache"
	"loyalty_points_api/pkg/metrics"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Unix(1700000000, 0)

func newRedeemService(store *memStore, c cache.CacheService, pub EventPublisher) RedeemService {
	svc := NewRedeemService(store, memOrders{store}, memAccounts{store}, passTransactor{}, c, pub,
		metrics.NewMetricsCollector(prometheus.NewRegistry()))
	svc.(*redeemService).now = func() time.Time { return fixedNow }
	return svc
}

func TestRedeemOne_WorkedExample(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.addGift(1, "Mug", 5, 10)
	store.addUser(7, 100)
	pub := &recordingPublisher{}
	svc := newRedeemService(store, nil, pub)

	orders, err := svc.RedeemOne(ctx, 7, 1, 3, "")
	require.NoError(t, err)
	require.Len(t, orders, 1)

	assert.Equal(t, 3, orders[0].Qty)
	assert.Equal(t, int64(30), orders[0].Point)
	assert.Equal(t, model.StatusOrdered, orders[0].Status)
	assert.Equal(t, model.Target{Kind: model.TargetGift, ID: 1}, orders[0].Target())
	assert.Equal(t, fixedNow.Unix(), orders[0].CreatedAt)

	gift := store.gift(1)
	assert.Equal(t, 2, gift.Stock)
	assert.Equal(t, 3, gift.TotalPurchases)
	assert.Equal(t, int64(70), store.point(7))

	require.Len(t, pub.events, 1)
	event := pub.events[0].(broker.GiftRedeemed)
	assert.Equal(t, broker.EventGiftRedeemed, event.Type)
	assert.Equal(t, uint64(1), event.GiftID)
	assert.Equal(t, "user-7", pub.keys[0])

	// 库存只剩 2
	_, err = svc.RedeemOne(ctx, 7, 1, 3, "")
	require.ErrorIs(t, err, ErrOutOfStock)
	assert.Equal(t, "Out of Stock", err.Error())
	assert.Equal(t, 2, store.gift(1).Stock)
	assert.Equal(t, int64(70), store.point(7))
	assert.Len(t, pub.events, 1)
}

func TestRedeemOne_Failures(t *testing.T) {
	ctx := context.Background()

	t.Run("gift not found", func(t *testing.T) {
		store := newMemStore()
		store.addUser(7, 100)
		_, err := newRedeemService(store, nil, nil).RedeemOne(ctx, 7, 99, 1, "")
		assert.ErrorIs(t, err, ErrGiftNotFound)
	})

	t.Run("point not enough", func(t *testing.T) {
		store := newMemStore()
		store.addGift(1, "Mug", 5, 10)
		store.addUser(7, 20)
		_, err := newRedeemService(store, nil, nil).RedeemOne(ctx, 7, 1, 3, "")
		assert.ErrorIs(t, err, ErrPointNotEnough)
		assert.Equal(t, 5, store.gift(1).Stock)
		assert.Equal(t, int64(20), store.point(7))
		assert.Empty(t, store.orders)
	})

	t.Run("exact balance", func(t *testing.T) {
		store := newMemStore()
		store.addGift(1, "Mug", 3, 10)
		store.addUser(7, 30)
		_, err := newRedeemService(store, nil, nil).RedeemOne(ctx, 7, 1, 3, "")
		require.NoError(t, err)
		assert.Equal(t, 0, store.gift(1).Stock)
		assert.Zero(t, store.point(7))
	})

	t.Run("invalid qty", func(t *testing.T) {
		store := newMemStore()
		store.addGift(1, "Mug", 5, 10)
		store.addUser(7, 100)
		_, err := newRedeemService(store, nil, nil).RedeemOne(ctx, 7, 1, 0, "")
		assert.True(t, apperr.IsKind(err, apperr.KindValidation))
	})
}

func TestRedeemMany(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.addGift(1, "Mug", 5, 10)
	store.addGift(2, "Cap", 2, 15)
	store.addUser(7, 100)
	pub := &recordingPublisher{}
	svc := newRedeemService(store, nil, pub)

	orders, err := svc.RedeemMany(ctx, 7, []RedeemItem{{GiftID: 2, Qty: 1}, {GiftID: 1, Qty: 2}}, "")
	require.NoError(t, err)
	require.Len(t, orders, 2)

	assert.Equal(t, uint64(2), orders[0].AttachableID)
	assert.Equal(t, int64(15), orders[0].Point)
	assert.Equal(t, uint64(1), orders[1].AttachableID)
	assert.Equal(t, int64(20), orders[1].Point)
	assert.Equal(t, orders[0].CreatedAt, orders[1].CreatedAt)

	assert.Equal(t, 1, store.gift(2).Stock)
	assert.Equal(t, 3, store.gift(1).Stock)
	assert.Equal(t, int64(65), store.point(7))
	assert.Len(t, pub.events, 2)
}

func TestRedeemMany_Failures(t *testing.T) {
	ctx := context.Background()

	newStore := func() *memStore {
		store := newMemStore()
		store.addGift(1, "Mug", 5, 10)
		store.addGift(2, "Cap", 1, 15)
		store.addUser(7, 60)
		return store
	}

	tests := []struct {
		name  string
		items []RedeemItem
		want  error
		msg   string
	}{
		{"unknown id", []RedeemItem{{1, 1}, {3, 1}}, ErrGiftsNotFound, "Gift Not Found. Please Check Gift ID"},
		{"duplicate id", []RedeemItem{{1, 1}, {1, 1}}, ErrGiftsNotFound, "Gift Not Found. Please Check Gift ID"},
		{"out of stock", []RedeemItem{{1, 1}, {2, 2}}, ErrOutOfStock, "Cap Out of Stock"},
		{"point not enough", []RedeemItem{{1, 5}, {2, 1}}, ErrPointNotEnough, "User point not enough"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newStore()
			_, err := newRedeemService(store, nil, nil).RedeemMany(ctx, 7, tt.items, "")
			require.ErrorIs(t, err, tt.want)

			var appErr *apperr.Error
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, tt.msg, appErr.Message)

			assert.Equal(t, 5, store.gift(1).Stock)
			assert.Equal(t, 1, store.gift(2).Stock)
			assert.Equal(t, int64(60), store.point(7))
			assert.Empty(t, store.orders)
		})
	}
}

func TestRedeem_IdempotencyKey(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.addGift(1, "Mug", 5, 10)
	store.addUser(7, 10)
	svc := newRedeemService(store, cache.NewMemoryCache(), nil)

	// 失败的请求释放幂等键
	_, err := svc.RedeemOne(ctx, 7, 1, 2, "req-1")
	require.ErrorIs(t, err, ErrPointNotEnough)

	_, err = svc.RedeemOne(ctx, 7, 1, 1, "req-1")
	require.NoError(t, err)

	_, err = svc.RedeemOne(ctx, 7, 1, 1, "req-1")
	require.ErrorIs(t, err, ErrDuplicateRequest)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	assert.Equal(t, 4, store.gift(1).Stock)

	// 幂等键按用户隔离
	store.addUser(8, 10)
	_, err = svc.RedeemOne(ctx, 8, 1, 1, "req-1")
	require.NoError(t, err)
}

func TestRedemptionResult(t *testing.T) {
	assert.Equal(t, metrics.ResultSuccess, redemptionResult(nil))
	assert.Equal(t, metrics.ResultOutOfStock, redemptionResult(outOfStock("Mug")))
	assert.Equal(t, metrics.ResultInsufficient, redemptionResult(ErrPointNotEnough))
	assert.Equal(t, metrics.ResultNotFound, redemptionResult(ErrGiftsNotFound))
	assert.Equal(t, metrics.ResultDuplicate, redemptionResult(ErrDuplicateRequest))
	assert.Equal(t, metrics.ResultError, redemptionResult(errors.New("boom")))
}
