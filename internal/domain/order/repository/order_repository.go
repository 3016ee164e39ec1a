package repository

import (
	"context"
	"loyalty_points_api/internal/domain/order/model"
	"loyalty_points_api/pkg/database"
	"loyalty_points_api/pkg/query"
	"loyalty_points_api/pkg/utils"

	"gorm.io/gorm"
)

// OrderSorter 订单列表可排序字段
var OrderSorter = query.Sorter{
	Allowed: map[string]string{
		"id":        "orders.id",
		"qty":       "orders.qty",
		"point":     "orders.point",
		"createdAt": "orders.created_at",
	},
	Default: "orders.id",
}

type OrderRepository interface {
	// CreateBatch 批量创建订单，同一批次共用创建时间
	CreateBatch(ctx context.Context, orders []*model.Order, now int64) error
	// ExistsForUser 用户是否兑换过指定对象
	ExistsForUser(ctx context.Context, userID uint64, target model.Target) (bool, error)
	ListForUser(ctx context.Context, userID uint64, filters []query.Filter, p *utils.Pagination) ([]model.Order, utils.PageMeta, error)
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) CreateBatch(ctx context.Context, orders []*model.Order, now int64) error {
	if len(orders) == 0 {
		return nil
	}
	for _, o := range orders {
		o.CreatedAt = now
		o.UpdatedAt = now
		if o.Status == "" {
			o.Status = model.StatusOrdered
		}
	}
	return database.Conn(ctx, r.db).Create(orders).Error
}

func (r *orderRepository) ExistsForUser(ctx context.Context, userID uint64, target model.Target) (bool, error) {
	var count int64
	err := database.Conn(ctx, r.db).Model(&model.Order{}).
		Where("user_id = ? AND attachable_type = ? AND attachable_id = ?", userID, target.Kind, target.ID).
		Count(&count).Error
	return count > 0, err
}

func (r *orderRepository) ListForUser(ctx context.Context, userID uint64, filters []query.Filter, p *utils.Pagination) ([]model.Order, utils.PageMeta, error) {
	db := database.Conn(ctx, r.db).Model(&model.Order{}).Where("orders.user_id = ?", userID)
	db = query.Apply(db, filters...)

	var orders []model.Order
	meta, err := query.Paginate(db, OrderSorter, p, &orders)
	if err != nil {
		return nil, meta, err
	}
	return orders, meta, nil
}
