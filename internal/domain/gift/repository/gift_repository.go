package repository

import (
	"context"
	"loyalty_points_api/internal/domain/gift/model"
	"loyalty_points_api/pkg/database"
	"loyalty_points_api/pkg/query"
	"loyalty_points_api/pkg/utils"
	"sort"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GiftSorter 礼品列表可排序字段
var GiftSorter = query.Sorter{
	Allowed: map[string]string{
		"id":             "gifts.id",
		"name":           "gifts.name",
		"stock":          "gifts.stock",
		"point":          "gifts.point",
		"rating":         "gifts.rating",
		"totalPurchases": "gifts.total_purchases",
		"createdAt":      "gifts.created_at",
	},
	Default: "gifts.id",
}

// GiftRepository 礼品、点赞和评分的存储
type GiftRepository interface {
	Create(ctx context.Context, gift *model.Gift) error
	GetByID(ctx context.Context, id uint64) (*model.Gift, error)
	// GetByIDWithTrashed 包含已软删除的礼品
	GetByIDWithTrashed(ctx context.Context, id uint64) (*model.Gift, error)
	// GetByIDs 批量查询，找不到的 id 不出现在结果中
	GetByIDs(ctx context.Context, ids []uint64) ([]model.Gift, error)
	// LockByIDs 在事务中按 id 升序对礼品行加锁
	LockByIDs(ctx context.Context, ids []uint64) ([]model.Gift, error)
	List(ctx context.Context, filters []query.Filter, p *utils.Pagination) ([]model.Gift, utils.PageMeta, error)
	// ListLikedBy 用户点赞过的礼品
	ListLikedBy(ctx context.Context, userID uint64, filters []query.Filter, p *utils.Pagination) ([]model.Gift, utils.PageMeta, error)
	// ListRatedBy 用户评分过的礼品
	ListRatedBy(ctx context.Context, userID uint64, filters []query.Filter, p *utils.Pagination) ([]model.Gift, utils.PageMeta, error)
	// Update 只写回 changes 中的列
	Update(ctx context.Context, id uint64, changes map[string]interface{}) error
	// UpdateStock 写回库存和累计兑换数
	UpdateStock(ctx context.Context, gift *model.Gift) error
	UpdateRating(ctx context.Context, giftID uint64, rating decimal.Decimal) error
	Delete(ctx context.Context, gift *model.Gift) error
	// ForceDelete 物理删除礼品及其点赞和评分
	ForceDelete(ctx context.Context, gift *model.Gift) error
	// LikeCounts 每个礼品的点赞数，没有点赞的礼品不出现在结果中
	LikeCounts(ctx context.Context, ids []uint64) (map[uint64]int64, error)

	FindLike(ctx context.Context, giftID, userID uint64) (*model.GiftLike, error)
	CreateLike(ctx context.Context, like *model.GiftLike) error
	DeleteLike(ctx context.Context, like *model.GiftLike) error

	FindRating(ctx context.Context, giftID, userID uint64) (*model.GiftRating, error)
	SaveRating(ctx context.Context, rating *model.GiftRating) error
	DeleteRating(ctx context.Context, rating *model.GiftRating) error
	// SumRatings 礼品全部有效评分之和
	SumRatings(ctx context.Context, giftID uint64) (decimal.Decimal, error)
}

type giftRepository struct {
	db *gorm.DB
}

// NewGiftRepository 创建礼品仓库
func NewGiftRepository(db *gorm.DB) GiftRepository {
	return &giftRepository{db: db}
}

func (r *giftRepository) Create(ctx context.Context, gift *model.Gift) error {
	return database.Conn(ctx, r.db).Create(gift).Error
}

// GetByID 根据ID获取礼品
func (r *giftRepository) GetByID(ctx context.Context, id uint64) (*model.Gift, error) {
	var gift model.Gift
	if err := database.Conn(ctx, r.db).Where("id = ?", id).First(&gift).Error; err != nil {
		return nil, err
	}
	return &gift, nil
}

func (r *giftRepository) GetByIDWithTrashed(ctx context.Context, id uint64) (*model.Gift, error) {
	var gift model.Gift
	if err := database.Conn(ctx, r.db).Unscoped().Where("id = ?", id).First(&gift).Error; err != nil {
		return nil, err
	}
	return &gift, nil
}

func (r *giftRepository) GetByIDs(ctx context.Context, ids []uint64) ([]model.Gift, error) {
	var gifts []model.Gift
	if len(ids) == 0 {
		return gifts, nil
	}
	err := database.Conn(ctx, r.db).Where("id IN ?", ids).Order("id").Find(&gifts).Error
	return gifts, err
}

func (r *giftRepository) LockByIDs(ctx context.Context, ids []uint64) ([]model.Gift, error) {
	var gifts []model.Gift
	if len(ids) == 0 {
		return gifts, nil
	}
	sorted := append([]uint64(nil), ids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	// 固定加锁顺序，避免并发兑换多个礼品时死锁
	err := database.Conn(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", sorted).
		Order("id").
		Find(&gifts).Error
	return gifts, err
}

// List 礼品列表（分页）
func (r *giftRepository) List(ctx context.Context, filters []query.Filter, p *utils.Pagination) ([]model.Gift, utils.PageMeta, error) {
	db := query.Apply(database.Conn(ctx, r.db).Model(&model.Gift{}), filters...)
	return r.paginate(db, p)
}

func (r *giftRepository) ListLikedBy(ctx context.Context, userID uint64, filters []query.Filter, p *utils.Pagination) ([]model.Gift, utils.PageMeta, error) {
	db := database.Conn(ctx, r.db).Model(&model.Gift{}).
		Where("gifts.id IN (SELECT gift_id FROM gift_likes WHERE gift_likes.user_id = ?)", userID)
	return r.paginate(query.Apply(db, filters...), p)
}

func (r *giftRepository) ListRatedBy(ctx context.Context, userID uint64, filters []query.Filter, p *utils.Pagination) ([]model.Gift, utils.PageMeta, error) {
	db := database.Conn(ctx, r.db).Model(&model.Gift{}).
		Where("gifts.id IN (SELECT gift_id FROM gift_ratings WHERE gift_ratings.user_id = ? AND gift_ratings.deleted_at = 0)", userID)
	return r.paginate(query.Apply(db, filters...), p)
}

func (r *giftRepository) paginate(db *gorm.DB, p *utils.Pagination) ([]model.Gift, utils.PageMeta, error) {
	var gifts []model.Gift
	meta, err := query.Paginate(db, GiftSorter, p, &gifts)
	if err != nil {
		return nil, meta, err
	}
	return gifts, meta, nil
}

// Update 更新礼品
func (r *giftRepository) Update(ctx context.Context, id uint64, changes map[string]interface{}) error {
	if len(changes) == 0 {
		return nil
	}
	return database.Conn(ctx, r.db).Model(&model.Gift{}).Where("id = ?", id).Updates(changes).Error
}

func (r *giftRepository) UpdateStock(ctx context.Context, gift *model.Gift) error {
	return database.Conn(ctx, r.db).Model(gift).
		Updates(map[string]interface{}{
			"stock":           gift.Stock,
			"total_purchases": gift.TotalPurchases,
		}).Error
}

func (r *giftRepository) UpdateRating(ctx context.Context, giftID uint64, rating decimal.Decimal) error {
	return database.Conn(ctx, r.db).Model(&model.Gift{}).Where("id = ?", giftID).Update("rating", rating).Error
}

// Delete 删除礼品（软删除）
func (r *giftRepository) Delete(ctx context.Context, gift *model.Gift) error {
	return database.Conn(ctx, r.db).Delete(gift).Error
}

func (r *giftRepository) ForceDelete(ctx context.Context, gift *model.Gift) error {
	db := database.Conn(ctx, r.db)
	if err := db.Where("gift_id = ?", gift.ID).Delete(&model.GiftLike{}).Error; err != nil {
		return err
	}
	if err := db.Unscoped().Where("gift_id = ?", gift.ID).Delete(&model.GiftRating{}).Error; err != nil {
		return err
	}
	return db.Unscoped().Delete(gift).Error
}

func (r *giftRepository) LikeCounts(ctx context.Context, ids []uint64) (map[uint64]int64, error) {
	counts := make(map[uint64]int64, len(ids))
	if len(ids) == 0 {
		return counts, nil
	}

	var rows []struct {
		GiftID uint64
		Total  int64
	}
	err := database.Conn(ctx, r.db).Model(&model.GiftLike{}).
		Select("gift_id, COUNT(*) AS total").
		Where("gift_id IN ?", ids).
		Group("gift_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.GiftID] = row.Total
	}
	return counts, nil
}

func (r *giftRepository) FindLike(ctx context.Context, giftID, userID uint64) (*model.GiftLike, error) {
	var like model.GiftLike
	err := database.Conn(ctx, r.db).Where("gift_id = ? AND user_id = ?", giftID, userID).First(&like).Error
	if err != nil {
		return nil, err
	}
	return &like, nil
}

func (r *giftRepository) CreateLike(ctx context.Context, like *model.GiftLike) error {
	return database.Conn(ctx, r.db).Create(like).Error
}

func (r *giftRepository) DeleteLike(ctx context.Context, like *model.GiftLike) error {
	return database.Conn(ctx, r.db).Delete(like).Error
}

func (r *giftRepository) FindRating(ctx context.Context, giftID, userID uint64) (*model.GiftRating, error) {
	var rating model.GiftRating
	err := database.Conn(ctx, r.db).Where("gift_id = ? AND user_id = ?", giftID, userID).First(&rating).Error
	if err != nil {
		return nil, err
	}
	return &rating, nil
}

func (r *giftRepository) SaveRating(ctx context.Context, rating *model.GiftRating) error {
	return database.Conn(ctx, r.db).Save(rating).Error
}

func (r *giftRepository) DeleteRating(ctx context.Context, rating *model.GiftRating) error {
	return database.Conn(ctx, r.db).Delete(rating).Error
}

func (r *giftRepository) SumRatings(ctx context.Context, giftID uint64) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := database.Conn(ctx, r.db).Model(&model.GiftRating{}).
		Select("COALESCE(SUM(rating), 0)").
		Where("gift_id = ?", giftID).
		Row().Scan(&sum)
	if err != nil {
		return decimal.Zero, err
	}
	return sum, nil
}
