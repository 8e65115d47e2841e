package repo

import (
	"context"

	"gorm.io/gorm"

	"sunday-market/internal/domain"
	"sunday-market/pkg/paginate"
)

type CategoryRepo struct{ db *gorm.DB }

func NewCategoryRepo(db *gorm.DB) *CategoryRepo { return &CategoryRepo{db: db} }

func (r *CategoryRepo) Create(ctx context.Context, c *domain.Category) error {
	return translate(r.db.WithContext(ctx).Create(c).Error)
}

func (r *CategoryRepo) FindByID(ctx context.Context, id string) (*domain.Category, error) {
	db := r.db.WithContext(ctx)
	var c domain.Category
	if err := db.Where("id = ?", id).First(&c).Error; err != nil {
		return nil, translate(err)
	}
	one := []domain.Category{c}
	if err := fillProductCounts(db, one); err != nil {
		return nil, translate(err)
	}
	return &one[0], nil
}

// List pages through all categories with their product counts.
func (r *CategoryRepo) List(ctx context.Context, page, perPage int) (paginate.Page[domain.Category], error) {
	db := r.db.WithContext(ctx)
	p, err := paginate.Find[domain.Category](db.Model(&domain.Category{}), page, perPage, "name, id")
	if err != nil {
		return p, translate(err)
	}
	return p, translate(fillProductCounts(db, p.Items))
}

func (r *CategoryRepo) Update(ctx context.Context, c *domain.Category) error {
	return translate(r.db.WithContext(ctx).Model(c).Select("name", "color", "updated_at").Updates(c).Error)
}

func (r *CategoryRepo) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Category{})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

type categoryCount struct {
	CategoryID string
	N          int64
}

// fillProductCounts sets ProductCount on every element of cs in one query.
func fillProductCounts(db *gorm.DB, cs []domain.Category) error {
	if len(cs) == 0 {
		return nil
	}
	ids := make([]string, len(cs))
	for i := range cs {
		ids[i] = cs[i].ID
	}
	var rows []categoryCount
	err := db.Model(&domain.Product{}).
		Select("category_id, count(*) AS n").
		Where("category_id IN ?", ids).
		Group("category_id").
		Scan(&rows).Error
	if err != nil {
		return err
	}
	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.CategoryID] = row.N
	}
	for i := range cs {
		cs[i].ProductCount = counts[cs[i].ID]
	}
	return nil
}
