// Package query 列表接口的过滤、排序和分页
package query

import (
	"fmt"
	"loyalty_points_api/pkg/utils"
	"strings"

	"gorm.io/gorm"
)

// Op 过滤操作
type Op string

const (
	OpEqual        Op = "eq"
	OpLike         Op = "like"
	OpRelationLike Op = "relation-like"
)

// Relation 关联过滤的目标表
// 基表的 LocalKey 指向目标表的 id，TypeColumn/TypeValue 用于多态关联
type Relation struct {
	Table      string
	LocalKey   string
	TypeColumn string
	TypeValue  string
}

// Filter 单个字段过滤条件，Value 为空时跳过
type Filter struct {
	Column   string
	Value    string
	Op       Op
	Relation *Relation
}

func Eq(column, value string) Filter {
	return Filter{Column: column, Value: value, Op: OpEqual}
}

func Like(column, value string) Filter {
	return Filter{Column: column, Value: value, Op: OpLike}
}

// RelationLike 按关联表的字段模糊过滤
func RelationLike(rel Relation, column, value string) Filter {
	return Filter{Column: column, Value: value, Op: OpRelationLike, Relation: &rel}
}

// Apply 将过滤条件应用到查询
func Apply(db *gorm.DB, filters ...Filter) *gorm.DB {
	for _, f := range filters {
		value := strings.TrimSpace(f.Value)
		if value == "" {
			continue
		}
		switch f.Op {
		case OpEqual:
			db = db.Where(fmt.Sprintf("%s = ?", f.Column), value)
		case OpLike:
			db = db.Where(fmt.Sprintf("%s ILIKE ?", f.Column), likePattern(value))
		case OpRelationLike:
			if f.Relation == nil {
				continue
			}
			r := f.Relation
			sub := fmt.Sprintf("%s IN (SELECT id FROM %s WHERE %s ILIKE ? AND %s.deleted_at = 0)",
				r.LocalKey, r.Table, f.Column, r.Table)
			db = db.Where(sub, likePattern(value))
			if r.TypeColumn != "" {
				db = db.Where(fmt.Sprintf("%s = ?", r.TypeColumn), r.TypeValue)
			}
		}
	}
	return db
}

func likePattern(v string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(v) + "%"
}

// Sorter 排序白名单，key 为请求中的 sortBy，value 为列名
type Sorter struct {
	Allowed map[string]string
	Default string
}

// Order 应用排序，sortBy 不在白名单内时按默认列倒序
func (s Sorter) Order(db *gorm.DB, p *utils.Pagination) *gorm.DB {
	p.Normalize()
	if column, ok := s.Allowed[p.SortBy]; ok && p.SortBy != "" {
		return db.Order(fmt.Sprintf("%s %s", column, p.Sort))
	}
	p.SortBy = ""
	def := s.Default
	if def == "" {
		def = "id"
	}
	return db.Order(fmt.Sprintf("%s %s", def, utils.SortDesc))
}

// Paginate 统计总数并查询当前页
func Paginate[T any](db *gorm.DB, sorter Sorter, p *utils.Pagination, out *[]T) (utils.PageMeta, error) {
	db = db.Session(&gorm.Session{})

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return utils.PageMeta{}, fmt.Errorf("count: %w", err)
	}

	offset, limit := p.GetPageOffset()
	if err := sorter.Order(db, p).Offset(offset).Limit(limit).Find(out).Error; err != nil {
		return utils.PageMeta{}, fmt.Errorf("find page: %w", err)
	}
	return p.Meta(total, len(*out)), nil
}
