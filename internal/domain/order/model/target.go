package model

import (
	"context"
	"fmt"
	"sync"
)

// TargetKind 订单关联对象的类型标签，存储在 attachable_type 列
type TargetKind string

const TargetGift TargetKind = "Gift"

// Target 多态关联值
type Target struct {
	Kind TargetKind
	ID   uint64
}

// Resolver 加载某一类关联对象
type Resolver interface {
	// Table 关联对象所在的表，用于按关联字段过滤
	Table() string
	// Resolve 按 id 批量加载，找不到的 id 不出现在结果中
	Resolve(ctx context.Context, ids []uint64) (map[uint64]interface{}, error)
}

// Registry 关联类型到 Resolver 的注册表
type Registry struct {
	mu        sync.RWMutex
	resolvers map[TargetKind]Resolver
}

func NewRegistry() *Registry {
	return &Registry{resolvers: make(map[TargetKind]Resolver)}
}

// Register 注册 Resolver，同一类型重复注册时覆盖
func (r *Registry) Register(kind TargetKind, resolver Resolver) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resolvers[kind] = resolver
}

// Resolver 获取指定类型的 Resolver
func (r *Registry) Resolver(kind TargetKind) (Resolver, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res, ok := r.resolvers[kind]
	return res, ok
}

// Attach 按类型分组加载关联对象并填充到订单的 Item
func (r *Registry) Attach(ctx context.Context, orders []Order) error {
	ids := make(map[TargetKind][]uint64)
	for _, o := range orders {
		ids[o.AttachableType] = append(ids[o.AttachableType], o.AttachableID)
	}

	items := make(map[TargetKind]map[uint64]interface{}, len(ids))
	for kind, list := range ids {
		res, ok := r.Resolver(kind)
		if !ok {
			return fmt.Errorf("no resolver registered for target %q", kind)
		}
		loaded, err := res.Resolve(ctx, list)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", kind, err)
		}
		items[kind] = loaded
	}

	for i := range orders {
		if item, ok := items[orders[i].AttachableType][orders[i].AttachableID]; ok {
			orders[i].Item = item
		}
	}
	return nil
}
