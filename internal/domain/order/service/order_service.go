package service

import (
	"context"
	"fmt"
	"loyalty_points_api/internal/domain/order/model"
	"loyalty_points_api/internal/domain/order/repository"
	"loyalty_points_api/pkg/query"
	"loyalty_points_api/pkg/utils"
)

// ListParams 兑换记录过滤条件，按关联对象的字段过滤
type ListParams struct {
	Name        string `form:"name"`
	Description string `form:"description"`
}

type OrderService interface {
	// ListRedeemed 当前用户的兑换记录，关联对象填充到 item
	ListRedeemed(ctx context.Context, userID uint64, kind model.TargetKind, params ListParams, p *utils.Pagination) ([]model.Order, utils.PageMeta, error)
}

type orderService struct {
	repo    repository.OrderRepository
	targets *model.Registry
}

func NewOrderService(repo repository.OrderRepository, targets *model.Registry) OrderService {
	return &orderService{repo: repo, targets: targets}
}

func (s *orderService) ListRedeemed(ctx context.Context, userID uint64, kind model.TargetKind, params ListParams, p *utils.Pagination) ([]model.Order, utils.PageMeta, error) {
	resolver, ok := s.targets.Resolver(kind)
	if !ok {
		return nil, utils.PageMeta{}, fmt.Errorf("no resolver registered for target %q", kind)
	}

	rel := query.Relation{
		Table:      resolver.Table(),
		LocalKey:   "orders.attachable_id",
		TypeColumn: "orders.attachable_type",
		TypeValue:  string(kind),
	}
	filters := []query.Filter{
		query.Eq("orders.attachable_type", string(kind)),
		query.Eq("orders.status", string(model.StatusOrdered)),
		query.RelationLike(rel, resolver.Table()+".name", params.Name),
		query.RelationLike(rel, resolver.Table()+".description", params.Description),
	}

	orders, meta, err := s.repo.ListForUser(ctx, userID, filters, p)
	if err != nil {
		return nil, meta, err
	}
	if err := s.targets.Attach(ctx, orders); err != nil {
		return nil, meta, err
	}
	if orders == nil {
		orders = []model.Order{}
	}
	return orders, meta, nil
}
