package service

import (
	"context"
	"loyalty_points_api/internal/domain/gift/model"
	orderModel "loyalty_points_api/internal/domain/order/model"
	userModel "loyalty_points_api/internal/domain/user/model"
	"loyalty_points_api/pkg/query"
	"loyalty_points_api/pkg/utils"
	"sort"
	"sync"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// passTransactor runs fn without a database
type passTransactor struct{}

func (passTransactor) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type pair struct{ gift, user uint64 }

// memStore is an in-memory gift, order and point store
type memStore struct {
	mu      sync.Mutex
	nextID  uint64
	gifts   map[uint64]*model.Gift
	trashed map[uint64]bool
	users   map[uint64]*userModel.User
	orders  []*orderModel.Order
	likes   map[pair]*model.GiftLike
	ratings map[pair]*model.GiftRating
}

func newMemStore() *memStore {
	return &memStore{
		nextID:  100,
		gifts:   make(map[uint64]*model.Gift),
		trashed: make(map[uint64]bool),
		users:   make(map[uint64]*userModel.User),
		likes:   make(map[pair]*model.GiftLike),
		ratings: make(map[pair]*model.GiftRating),
	}
}

func (s *memStore) id() uint64 {
	s.nextID++
	return s.nextID
}

func (s *memStore) addGift(id uint64, name string, stock int, point int64) {
	g := &model.Gift{Name: name, Stock: stock, Point: point}
	g.ID = id
	s.gifts[id] = g
}

func (s *memStore) addUser(id uint64, point int64) {
	u := &userModel.User{Name: "user", Point: point}
	u.ID = id
	s.users[id] = u
}

func (s *memStore) gift(id uint64) model.Gift {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.gifts[id]
}

func (s *memStore) point(id uint64) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users[id].Point
}

func (s *memStore) live(id uint64) (*model.Gift, bool) {
	g, ok := s.gifts[id]
	if !ok || s.trashed[id] {
		return nil, false
	}
	return g, true
}

// gift repository

func (s *memStore) Create(ctx context.Context, gift *model.Gift) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	gift.ID = s.id()
	cp := *gift
	s.gifts[gift.ID] = &cp
	return nil
}

func (s *memStore) GetByID(ctx context.Context, id uint64) (*model.Gift, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.live(id)
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *g
	return &cp, nil
}

func (s *memStore) GetByIDWithTrashed(ctx context.Context, id uint64) (*model.Gift, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.gifts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *g
	return &cp, nil
}

func (s *memStore) GetByIDs(ctx context.Context, ids []uint64) ([]model.Gift, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := make(map[uint64]bool)
	var out []model.Gift
	for _, id := range ids {
		if g, ok := s.live(id); ok && !seen[id] {
			seen[id] = true
			out = append(out, *g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memStore) LockByIDs(ctx context.Context, ids []uint64) ([]model.Gift, error) {
	return s.GetByIDs(ctx, ids)
}

func (s *memStore) list(keep func(id uint64) bool) ([]model.Gift, utils.PageMeta, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Gift
	for id, g := range s.gifts {
		if !s.trashed[id] && keep(id) {
			out = append(out, *g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	p := &utils.Pagination{}
	return out, p.Meta(int64(len(out)), len(out)), nil
}

func (s *memStore) List(ctx context.Context, filters []query.Filter, p *utils.Pagination) ([]model.Gift, utils.PageMeta, error) {
	return s.list(func(uint64) bool { return true })
}

func (s *memStore) ListLikedBy(ctx context.Context, userID uint64, filters []query.Filter, p *utils.Pagination) ([]model.Gift, utils.PageMeta, error) {
	return s.list(func(id uint64) bool { return s.likes[pair{id, userID}] != nil })
}

func (s *memStore) ListRatedBy(ctx context.Context, userID uint64, filters []query.Filter, p *utils.Pagination) ([]model.Gift, utils.PageMeta, error) {
	return s.list(func(id uint64) bool { return s.ratings[pair{id, userID}] != nil })
}

func (s *memStore) Update(ctx context.Context, id uint64, changes map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g := s.gifts[id]
	for column, v := range changes {
		switch column {
		case "name":
			g.Name = v.(string)
		case "description":
			g.Description = v.(string)
		case "stock":
			g.Stock = v.(int)
		case "point":
			g.Point = v.(int64)
		case "image":
			g.Image = v.(string)
		default:
			panic("unexpected column " + column)
		}
	}
	return nil
}

func (s *memStore) UpdateStock(ctx context.Context, gift *model.Gift) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gifts[gift.ID].Stock = gift.Stock
	s.gifts[gift.ID].TotalPurchases = gift.TotalPurchases
	return nil
}

func (s *memStore) UpdateRating(ctx context.Context, giftID uint64, rating decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gifts[giftID].Rating = rating
	return nil
}

func (s *memStore) Delete(ctx context.Context, gift *model.Gift) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trashed[gift.ID] = true
	return nil
}

func (s *memStore) ForceDelete(ctx context.Context, gift *model.Gift) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.gifts, gift.ID)
	delete(s.trashed, gift.ID)
	for k := range s.likes {
		if k.gift == gift.ID {
			delete(s.likes, k)
		}
	}
	for k := range s.ratings {
		if k.gift == gift.ID {
			delete(s.ratings, k)
		}
	}
	return nil
}

func (s *memStore) LikeCounts(ctx context.Context, ids []uint64) (map[uint64]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	counts := make(map[uint64]int64)
	for _, id := range ids {
		for k := range s.likes {
			if k.gift == id {
				counts[id]++
			}
		}
	}
	return counts, nil
}

func (s *memStore) FindLike(ctx context.Context, giftID, userID uint64) (*model.GiftLike, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	like, ok := s.likes[pair{giftID, userID}]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return like, nil
}

func (s *memStore) CreateLike(ctx context.Context, like *model.GiftLike) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	like.ID = s.id()
	s.likes[pair{like.GiftID, like.UserID}] = like
	return nil
}

func (s *memStore) DeleteLike(ctx context.Context, like *model.GiftLike) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.likes, pair{like.GiftID, like.UserID})
	return nil
}

func (s *memStore) FindRating(ctx context.Context, giftID, userID uint64) (*model.GiftRating, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rating, ok := s.ratings[pair{giftID, userID}]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *rating
	return &cp, nil
}

func (s *memStore) SaveRating(ctx context.Context, rating *model.GiftRating) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rating.ID == 0 {
		rating.ID = s.id()
	}
	cp := *rating
	s.ratings[pair{rating.GiftID, rating.UserID}] = &cp
	return nil
}

func (s *memStore) DeleteRating(ctx context.Context, rating *model.GiftRating) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.ratings, pair{rating.GiftID, rating.UserID})
	return nil
}

func (s *memStore) SumRatings(ctx context.Context, giftID uint64) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sum := decimal.Zero
	for k, r := range s.ratings {
		if k.gift == giftID {
			sum = sum.Add(r.Rating)
		}
	}
	return sum, nil
}

// order repository

type memOrders struct{ s *memStore }

func (o memOrders) CreateBatch(ctx context.Context, orders []*orderModel.Order, now int64) error {
	o.s.mu.Lock()
	defer o.s.mu.Unlock()
	for _, order := range orders {
		order.ID = o.s.id()
		order.CreatedAt = now
		order.UpdatedAt = now
		o.s.orders = append(o.s.orders, order)
	}
	return nil
}

func (o memOrders) ExistsForUser(ctx context.Context, userID uint64, target orderModel.Target) (bool, error) {
	o.s.mu.Lock()
	defer o.s.mu.Unlock()
	for _, order := range o.s.orders {
		if order.UserID == userID && order.Target() == target {
			return true, nil
		}
	}
	return false, nil
}

func (o memOrders) ListForUser(ctx context.Context, userID uint64, filters []query.Filter, p *utils.Pagination) ([]orderModel.Order, utils.PageMeta, error) {
	return nil, utils.PageMeta{}, nil
}

// point accounts

type memAccounts struct{ s *memStore }

func (a memAccounts) LockByID(ctx context.Context, id uint64) (*userModel.User, error) {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	u, ok := a.s.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (a memAccounts) UpdatePoint(ctx context.Context, id uint64, point int64) error {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	a.s.users[id].Point = point
	return nil
}

// recordingPublisher collects published events
type recordingPublisher struct {
	mu     sync.Mutex
	keys   []string
	events []interface{}
}

func (p *recordingPublisher) Publish(key string, event interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys = append(p.keys, key)
	p.events = append(p.events, event)
}
