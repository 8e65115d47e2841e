package repo

import (
	"context"

	"gorm.io/gorm"

	"sunday-market/internal/domain"
	"sunday-market/pkg/paginate"
)

type UserRepo struct{ db *gorm.DB }

func NewUserRepo(db *gorm.DB) *UserRepo { return &UserRepo{db: db} }

// editableColumns are the columns an update may touch.
var editableColumns = []string{
	"first_name", "last_name", "email", "image",
	"shop_name", "website", "shop_description", "ban", "updated_at",
}

func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	return translate(r.db.WithContext(ctx).Create(u).Error)
}

func (r *UserRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *UserRepo) FindBySlug(ctx context.Context, slug string) (*domain.User, error) {
	return r.first(ctx, "slug = ?", slug)
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.first(ctx, "email = ?", email)
}

func (r *UserRepo) first(ctx context.Context, cond string, arg any) (*domain.User, error) {
	var u domain.User
	if err := r.db.WithContext(ctx).Where(cond, arg).First(&u).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

// List pages through users; visibleOnly drops banned accounts.
func (r *UserRepo) List(ctx context.Context, visibleOnly bool, page, perPage int) (paginate.Page[domain.User], error) {
	q := r.db.WithContext(ctx).Model(&domain.User{})
	if visibleOnly {
		q = q.Where("ban = ?", false)
	}
	p, err := paginate.Find[domain.User](q, page, perPage, "created_at DESC, id")
	return p, translate(err)
}

// Update writes the editable profile columns of u.
func (r *UserRepo) Update(ctx context.Context, u *domain.User) error {
	return translate(r.db.WithContext(ctx).Model(u).Select(editableColumns).Updates(u).Error)
}

func (r *UserRepo) SetRole(ctx context.Context, id string, role domain.Role) error {
	return r.updateColumn(ctx, id, "role", role)
}

func (r *UserRepo) SetBan(ctx context.Context, id string, ban bool) error {
	return r.updateColumn(ctx, id, "ban", ban)
}

// updateColumn is a single-row, single-column write. updated_at moves with
// it, so repeating a value still touches the row; a missing row is ErrNotFound.
func (r *UserRepo) updateColumn(ctx context.Context, id, col string, v any) error {
	res := r.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).Update(col, v)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes the row for good.
func (r *UserRepo) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.User{})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *UserRepo) Products(ctx context.Context, userID string, page, perPage int) (paginate.Page[domain.Product], error) {
	q := r.db.WithContext(ctx).Model(&domain.Product{}).Where("user_id = ?", userID)
	p, err := paginate.Find[domain.Product](q, page, perPage, "created_at DESC, id")
	return p, translate(err)
}

// Categories pages through the distinct categories the user sells in.
func (r *UserRepo) Categories(ctx context.Context, userID string, page, perPage int) (paginate.Page[domain.Category], error) {
	db := r.db.WithContext(ctx)
	owned := db.Model(&domain.Product{}).Select("category_id").Where("user_id = ? AND category_id IS NOT NULL", userID)
	q := db.Model(&domain.Category{}).Where("id IN (?)", owned)
	p, err := paginate.Find[domain.Category](q, page, perPage, "name, id")
	if err != nil {
		return p, translate(err)
	}
	return p, translate(fillProductCounts(db, p.Items))
}

func (r *UserRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.User{}).Count(&n).Error
	return n, translate(err)
}
