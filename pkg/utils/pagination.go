package utils

import "strings"

const (
	DefaultLimit = 10
	MaxLimit     = 100
	SortAsc      = "asc"
	SortDesc     = "desc"
)

// Pagination 分页与排序请求参数
type Pagination struct {
	Page   int    `json:"page" form:"page"`
	Limit  int    `json:"limit" form:"limit"`
	Sort   string `json:"sort" form:"sort"`
	SortBy string `json:"sortBy" form:"sortBy"`
}

// PageMeta 分页响应信息，Limit 为当前页实际返回的行数
type PageMeta struct {
	Total     int64  `json:"total"`
	TotalPage int64  `json:"totalPage"`
	Page      int    `json:"page"`
	Sort      string `json:"sort"`
	SortBy    string `json:"sortBy"`
	Limit     int    `json:"limit"`
}

// Normalize 规范化分页参数
func (p *Pagination) Normalize() {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	p.Sort = strings.ToLower(p.Sort)
	if p.Sort != SortAsc {
		p.Sort = SortDesc
	}
}

// GetPageOffset 计算分页偏移量
func (p *Pagination) GetPageOffset() (int, int) {
	p.Normalize()
	return (p.Page - 1) * p.Limit, p.Limit
}

// Meta 根据总数和当前页行数生成分页信息
func (p *Pagination) Meta(total int64, rows int) PageMeta {
	p.Normalize()
	totalPage := total / int64(p.Limit)
	if total%int64(p.Limit) != 0 {
		totalPage++
	}
	// 空结果也算一页
	if totalPage < 1 {
		totalPage = 1
	}
	return PageMeta{
		Total:     total,
		TotalPage: totalPage,
		Page:      p.Page,
		Sort:      p.Sort,
		SortBy:    p.SortBy,
		Limit:     rows,
	}
}
