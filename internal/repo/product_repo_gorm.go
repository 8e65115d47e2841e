package repo

import (
	"context"

	"gorm.io/gorm"

	"sunday-market/internal/domain"
	"sunday-market/pkg/paginate"
)

type ProductRepo struct{ db *gorm.DB }

func NewProductRepo(db *gorm.DB) *ProductRepo { return &ProductRepo{db: db} }

func (r *ProductRepo) Create(ctx context.Context, p *domain.Product) error {
	return translate(r.db.WithContext(ctx).Create(p).Error)
}

func (r *ProductRepo) List(ctx context.Context, page, perPage int) (paginate.Page[domain.Product], error) {
	q := r.db.WithContext(ctx).Model(&domain.Product{})
	p, err := paginate.Find[domain.Product](q, page, perPage, "created_at DESC, id")
	return p, translate(err)
}

func (r *ProductRepo) ByCategory(ctx context.Context, categoryID string, page, perPage int) (paginate.Page[domain.Product], error) {
	q := r.db.WithContext(ctx).Model(&domain.Product{}).Where("category_id = ?", categoryID)
	p, err := paginate.Find[domain.Product](q, page, perPage, "created_at DESC, id")
	return p, translate(err)
}
