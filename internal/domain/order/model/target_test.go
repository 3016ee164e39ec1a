package model

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubResolver struct {
	items map[uint64]interface{}
}

func (s stubResolver) Table() string { return "gifts" }

func (s stubResolver) Resolve(ctx context.Context, ids []uint64) (map[uint64]interface{}, error) {
	out := make(map[uint64]interface{})
	for _, id := range ids {
		if v, ok := s.items[id]; ok {
			out[id] = v
		}
	}
	return out, nil
}

func TestRegistry_Attach(t *testing.T) {
	reg := NewRegistry()
	reg.Register(TargetGift, stubResolver{items: map[uint64]interface{}{1: "mug", 2: "pen"}})

	orders := []Order{
		{AttachableType: TargetGift, AttachableID: 2},
		{AttachableType: TargetGift, AttachableID: 1},
		{AttachableType: TargetGift, AttachableID: 3},
	}
	require.NoError(t, reg.Attach(context.Background(), orders))

	assert.Equal(t, "pen", orders[0].Item)
	assert.Equal(t, "mug", orders[1].Item)
	assert.Nil(t, orders[2].Item)
}

func TestRegistry_UnknownKind(t *testing.T) {
	reg := NewRegistry()
	err := reg.Attach(context.Background(), []Order{{AttachableType: "Voucher", AttachableID: 1}})
	assert.Error(t, err)
}

func TestOrder_Target(t *testing.T) {
	var o Order
	o.SetTarget(Target{Kind: TargetGift, ID: 7})
	assert.Equal(t, TargetGift, o.AttachableType)
	assert.Equal(t, uint64(7), o.AttachableID)
	assert.Equal(t, Target{Kind: TargetGift, ID: 7}, o.Target())
}
