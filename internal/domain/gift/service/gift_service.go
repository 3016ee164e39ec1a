package service

import (
	"context"
	"errors"
	"loyalty_points_api/internal/domain/gift/model"
	"loyalty_points_api/internal/domain/gift/repository"
	"loyalty_points_api/pkg/database"
	"loyalty_points_api/pkg/query"
	"loyalty_points_api/pkg/utils"

	"gorm.io/gorm"
)

// ListParams 礼品列表过滤条件
type ListParams struct {
	ID          string `form:"id"`
	Name        string `form:"name"`
	Description string `form:"description"`
}

func (p ListParams) filters() []query.Filter {
	return []query.Filter{
		query.Eq("gifts.id", p.ID),
		query.Like("gifts.name", p.Name),
		query.Like("gifts.description", p.Description),
	}
}

// CreateInput 创建礼品
type CreateInput struct {
	Name        string
	Description string
	Stock       int
	Point       int64
	Image       string
}

// UpdateInput 更新礼品，nil 字段不修改
type UpdateInput struct {
	Name        *string
	Description *string
	Stock       *int
	Point       *int64
	Image       *string
}

// apply 把传入的字段写到 gift 上，返回需要更新的列
func (in UpdateInput) apply(gift *model.Gift) map[string]interface{} {
	changes := make(map[string]interface{})
	if in.Name != nil {
		gift.Name = *in.Name
		changes["name"] = gift.Name
	}
	if in.Description != nil {
		gift.Description = *in.Description
		changes["description"] = gift.Description
	}
	if in.Stock != nil {
		gift.Stock = *in.Stock
		changes["stock"] = gift.Stock
	}
	if in.Point != nil {
		gift.Point = *in.Point
		changes["point"] = gift.Point
	}
	if in.Image != nil {
		gift.Image = *in.Image
		changes["image"] = gift.Image
	}
	return changes
}

// GiftService 礼品目录
type GiftService interface {
	List(ctx context.Context, params ListParams, p *utils.Pagination) ([]model.Gift, utils.PageMeta, error)
	// ListLiked 用户点赞过的礼品
	ListLiked(ctx context.Context, userID uint64, params ListParams, p *utils.Pagination) ([]model.Gift, utils.PageMeta, error)
	// ListRated 用户评分过的礼品
	ListRated(ctx context.Context, userID uint64, params ListParams, p *utils.Pagination) ([]model.Gift, utils.PageMeta, error)
	Create(ctx context.Context, in CreateInput) (*model.Gift, error)
	Get(ctx context.Context, id uint64) (*model.Gift, error)
	Update(ctx context.Context, id uint64, in UpdateInput) (*model.Gift, error)
	Delete(ctx context.Context, id uint64) error
	// ForceDelete 物理删除，已软删除的礼品同样适用
	ForceDelete(ctx context.Context, id uint64) error
}

type giftService struct {
	repo repository.GiftRepository
	tx   database.Transactor
}

// NewGiftService 创建礼品服务
func NewGiftService(repo repository.GiftRepository, tx database.Transactor) GiftService {
	return &giftService{repo: repo, tx: tx}
}

func (s *giftService) List(ctx context.Context, params ListParams, p *utils.Pagination) ([]model.Gift, utils.PageMeta, error) {
	// 全量列表只支持名称和描述过滤
	params.ID = ""
	gifts, meta, err := s.repo.List(ctx, params.filters(), p)
	if err != nil {
		return nil, meta, err
	}
	return s.withLikes(ctx, gifts, meta)
}

func (s *giftService) ListLiked(ctx context.Context, userID uint64, params ListParams, p *utils.Pagination) ([]model.Gift, utils.PageMeta, error) {
	gifts, meta, err := s.repo.ListLikedBy(ctx, userID, params.filters(), p)
	if err != nil {
		return nil, meta, err
	}
	return s.withLikes(ctx, gifts, meta)
}

func (s *giftService) ListRated(ctx context.Context, userID uint64, params ListParams, p *utils.Pagination) ([]model.Gift, utils.PageMeta, error) {
	gifts, meta, err := s.repo.ListRatedBy(ctx, userID, params.filters(), p)
	if err != nil {
		return nil, meta, err
	}
	return s.withLikes(ctx, gifts, meta)
}

// withLikes 填充 totalLike
func (s *giftService) withLikes(ctx context.Context, gifts []model.Gift, meta utils.PageMeta) ([]model.Gift, utils.PageMeta, error) {
	if len(gifts) == 0 {
		return []model.Gift{}, meta, nil
	}
	ids := make([]uint64, len(gifts))
	for i := range gifts {
		ids[i] = gifts[i].ID
	}
	counts, err := s.repo.LikeCounts(ctx, ids)
	if err != nil {
		return nil, meta, err
	}
	for i := range gifts {
		gifts[i].TotalLike = counts[gifts[i].ID]
	}
	return gifts, meta, nil
}

func (s *giftService) Create(ctx context.Context, in CreateInput) (*model.Gift, error) {
	gift := &model.Gift{
		Name:        in.Name,
		Description: in.Description,
		Stock:       in.Stock,
		Point:       in.Point,
		Image:       in.Image,
	}
	if err := s.repo.Create(ctx, gift); err != nil {
		return nil, err
	}
	return gift, nil
}

// Get 礼品详情
func (s *giftService) Get(ctx context.Context, id uint64) (*model.Gift, error) {
	gift, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGiftNotFound
		}
		return nil, err
	}
	counts, err := s.repo.LikeCounts(ctx, []uint64{gift.ID})
	if err != nil {
		return nil, err
	}
	gift.TotalLike = counts[gift.ID]
	return gift, nil
}

// Update 在礼品行锁内只写回传入的字段，不覆盖并发兑换和评分写入的库存与评分
func (s *giftService) Update(ctx context.Context, id uint64, in UpdateInput) (*model.Gift, error) {
	var gift *model.Gift
	err := s.tx.Transaction(ctx, func(ctx context.Context) error {
		locked, err := s.repo.LockByIDs(ctx, []uint64{id})
		if err != nil {
			return err
		}
		if len(locked) == 0 {
			return ErrGiftNotFound
		}
		gift = &locked[0]
		return s.repo.Update(ctx, gift.ID, in.apply(gift))
	})
	if err != nil {
		return nil, err
	}

	counts, err := s.repo.LikeCounts(ctx, []uint64{gift.ID})
	if err != nil {
		return nil, err
	}
	gift.TotalLike = counts[gift.ID]
	return gift, nil
}

// Delete 软删除礼品
func (s *giftService) Delete(ctx context.Context, id uint64) error {
	gift, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, gift)
}

func (s *giftService) ForceDelete(ctx context.Context, id uint64) error {
	gift, err := s.repo.GetByIDWithTrashed(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrGiftNotFound
		}
		return err
	}
	return s.tx.Transaction(ctx, func(ctx context.Context) error {
		return s.repo.ForceDelete(ctx, gift)
	})
}
