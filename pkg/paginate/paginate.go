// Package paginate implements page-number windows over gorm queries.
package paginate

import "gorm.io/gorm"

const DefaultPerPage = 6

type Page[T any] struct {
	Items   []T   `json:"items"`
	Page    int   `json:"page"`
	PerPage int   `json:"per_page"`
	Total   int64 `json:"total"`
}

// Normalize clamps a 1-indexed page and a page size.
func Normalize(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	return page, perPage
}

func Offset(page, perPage int) int {
	page, perPage = Normalize(page, perPage)
	return (page - 1) * perPage
}

// Scope limits a query to one page window.
func Scope(page, perPage int) func(*gorm.DB) *gorm.DB {
	page, perPage = Normalize(page, perPage)
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(Offset(page, perPage)).Limit(perPage)
	}
}

// Find counts q, then loads the requested window into a Page.
func Find[T any](q *gorm.DB, page, perPage int, order string) (Page[T], error) {
	page, perPage = Normalize(page, perPage)
	out := Page[T]{Page: page, PerPage: perPage}
	if err := q.Session(&gorm.Session{}).Count(&out.Total).Error; err != nil {
		return out, err
	}
	items := make([]T, 0, perPage)
	if out.Total > 0 {
		w := q.Session(&gorm.Session{})
		if order != "" {
			w = w.Order(order)
		}
		if err := w.Scopes(Scope(page, perPage)).Find(&items).Error; err != nil {
			return out, err
		}
	}
	out.Items = items
	return out, nil
}

func (p Page[T]) TotalPages() int {
	if p.PerPage <= 0 || p.Total == 0 {
		return 1
	}
	return int((p.Total + int64(p.PerPage) - 1) / int64(p.PerPage))
}

func (p Page[T]) HasPrev() bool { return p.Page > 1 }
func (p Page[T]) HasNext() bool { return p.Page < p.TotalPages() }
func (p Page[T]) PrevPage() int { return p.Page - 1 }
func (p Page[T]) NextPage() int { return p.Page + 1 }
