package repository

import (
	"context"
	orderModel "loyalty_points_api/internal/domain/order/model"
)

// TargetResolver 让订单可以关联礼品
type TargetResolver struct {
	repo GiftRepository
}

var _ orderModel.Resolver = (*TargetResolver)(nil)

func NewTargetResolver(repo GiftRepository) *TargetResolver {
	return &TargetResolver{repo: repo}
}

func (r *TargetResolver) Table() string {
	return "gifts"
}

// Resolve 已软删除的礼品不返回，对应订单的 item 为空
func (r *TargetResolver) Resolve(ctx context.Context, ids []uint64) (map[uint64]interface{}, error) {
	gifts, err := r.repo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make(map[uint64]interface{}, len(gifts))
	for i := range gifts {
		out[gifts[i].ID] = &gifts[i]
	}
	return out, nil
}
