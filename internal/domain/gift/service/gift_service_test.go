package service

import (
	"context"
	"loyalty_points_api/internal/domain/gift/model"
	"loyalty_points_api/pkg/utils"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGiftService_CRUD(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	svc := NewGiftService(store, passTransactor{})

	gift, err := svc.Create(ctx, CreateInput{Name: "Mug", Description: "Ceramic", Stock: 5, Point: 10, Image: "https://cdn.example.com/mug.png"})
	require.NoError(t, err)
	require.NotZero(t, gift.ID)

	name := "Big Mug"
	stock := 8
	updated, err := svc.Update(ctx, gift.ID, UpdateInput{Name: &name, Stock: &stock})
	require.NoError(t, err)
	assert.Equal(t, "Big Mug", updated.Name)
	assert.Equal(t, 8, updated.Stock)
	assert.Equal(t, "Ceramic", updated.Description)
	assert.Equal(t, int64(10), updated.Point)

	require.NoError(t, svc.Delete(ctx, gift.ID))
	_, err = svc.Get(ctx, gift.ID)
	assert.ErrorIs(t, err, ErrGiftNotFound)

	// 已软删除的礼品仍可物理删除
	require.NoError(t, svc.ForceDelete(ctx, gift.ID))
	err = svc.ForceDelete(ctx, gift.ID)
	assert.ErrorIs(t, err, ErrGiftNotFound)
}

func TestGiftService_TotalLike(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.addGift(1, "Mug", 5, 10)
	store.addGift(2, "Cap", 5, 10)
	require.NoError(t, store.CreateLike(ctx, &model.GiftLike{GiftID: 1, UserID: 7}))
	require.NoError(t, store.CreateLike(ctx, &model.GiftLike{GiftID: 1, UserID: 8}))
	svc := NewGiftService(store, passTransactor{})

	gift, err := svc.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), gift.TotalLike)

	gifts, meta, err := svc.List(ctx, ListParams{}, &utils.Pagination{})
	require.NoError(t, err)
	require.Len(t, gifts, 2)
	assert.Equal(t, int64(2), meta.Total)
	assert.Equal(t, uint64(2), gifts[0].ID)
	assert.Zero(t, gifts[0].TotalLike)
	assert.Equal(t, int64(2), gifts[1].TotalLike)

	liked, _, err := svc.ListLiked(ctx, 7, ListParams{}, &utils.Pagination{})
	require.NoError(t, err)
	require.Len(t, liked, 1)
	assert.Equal(t, uint64(1), liked[0].ID)

	rated, _, err := svc.ListRated(ctx, 7, ListParams{}, &utils.Pagination{})
	require.NoError(t, err)
	assert.NotNil(t, rated)
	assert.Empty(t, rated)
}

func TestListParams_Filters(t *testing.T) {
	filters := ListParams{ID: "3", Name: "mug"}.filters()
	require.Len(t, filters, 3)
	assert.Equal(t, "gifts.id", filters[0].Column)
	assert.Equal(t, "3", filters[0].Value)
	assert.Equal(t, "mug", filters[1].Value)
	assert.Empty(t, filters[2].Value)
}

// interleavedStore runs before right ahead of the write of a catalog update
type interleavedStore struct {
	*memStore
	before func()
}

func (s *interleavedStore) Update(ctx context.Context, id uint64, changes map[string]interface{}) error {
	if s.before != nil {
		s.before()
		s.before = nil
	}
	return s.memStore.Update(ctx, id, changes)
}

func TestGiftService_UpdateKeepsConcurrentRedemption(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.addGift(1, "Mug", 5, 10)
	store.addUser(7, 100)

	redeem := newRedeemService(store, nil, nil)
	ratings := NewRatingService(store, memOrders{store}, passTransactor{}, nil)
	repo := &interleavedStore{memStore: store, before: func() {
		_, err := redeem.RedeemOne(ctx, 7, 1, 3, "")
		require.NoError(t, err)
		_, err = ratings.Rate(ctx, 1, 7, decimal.NewFromInt(4))
		require.NoError(t, err)
	}}
	svc := NewGiftService(repo, passTransactor{})

	name := "Big Mug"
	_, err := svc.Update(ctx, 1, UpdateInput{Name: &name})
	require.NoError(t, err)

	gift := store.gift(1)
	assert.Equal(t, "Big Mug", gift.Name)
	assert.Equal(t, 2, gift.Stock)
	assert.Equal(t, 3, gift.TotalPurchases)
	assert.True(t, decimal.NewFromInt(4).Equal(gift.Rating), gift.Rating.String())
	assert.Equal(t, int64(70), store.point(7))
}

func TestGiftService_UpdateNotFound(t *testing.T) {
	svc := NewGiftService(newMemStore(), passTransactor{})

	name := "Nope"
	_, err := svc.Update(context.Background(), 42, UpdateInput{Name: &name})
	assert.ErrorIs(t, err, ErrGiftNotFound)
}

func TestUpdateInput_Apply(t *testing.T) {
	gift := &model.Gift{Name: "Mug", Stock: 5, Point: 10}
	point := int64(20)

	changes := UpdateInput{Point: &point}.apply(gift)
	assert.Equal(t, map[string]interface{}{"point": int64(20)}, changes)
	assert.Equal(t, int64(20), gift.Point)
	assert.Equal(t, 5, gift.Stock)

	assert.Empty(t, UpdateInput{}.apply(gift))
}
