package service

import (
	"context"

	"go.uber.org/zap"

	"sunday-market/internal/domain"
	"sunday-market/internal/flash"
	"sunday-market/internal/policy"
	"sunday-market/pkg/paginate"
)

type CategoryAttrs struct {
	Name  *string `json:"name"`
	Color *string `json:"color"`
}

func (a CategoryAttrs) applyTo(c *domain.Category) {
	if v := trimmed(a.Name); v != nil {
		c.Name = *v
	}
	if v := trimmed(a.Color); v != nil {
		c.Color = *v
	}
}

type Categories struct {
	store    CategoryStore
	products ProductStore
	policy   policy.CategoryPolicy
	perPage  int
	log      *zap.Logger
}

func NewCategories(store CategoryStore, products ProductStore, admins policy.RoleSet, perPage int, log *zap.Logger) *Categories {
	if log == nil {
		log = zap.NewNop()
	}
	_, perPage = paginate.Normalize(1, perPage)
	return &Categories{store: store, products: products, policy: policy.CategoryPolicy{Admins: admins}, perPage: perPage, log: log}
}

// CanManage reports whether viewer sees the new, edit and delete controls.
func (s *Categories) CanManage(viewer *domain.User) bool {
	return s.policy.Allows(viewer, policy.ActionEdit, nil)
}

func (s *Categories) Index(ctx context.Context, page int) (paginate.Page[domain.Category], error) {
	return s.store.List(ctx, page, s.perPage)
}

func (s *Categories) Show(ctx context.Context, id string, page int) (*domain.Category, paginate.Page[domain.Product], error) {
	c, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, paginate.Page[domain.Product]{}, err
	}
	p, err := s.products.ByCategory(ctx, c.ID, page, s.perPage)
	return c, p, err
}

// New returns a blank category for the creation form.
func (s *Categories) New(actor *domain.User) (*domain.Category, error) {
	c := &domain.Category{}
	if err := policy.Authorize[*domain.Category](s.policy, actor, policy.ActionNew, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Categories) Create(ctx context.Context, actor *domain.User, in CategoryAttrs) (*domain.Category, Outcome, error) {
	c := &domain.Category{}
	if err := policy.Authorize[*domain.Category](s.policy, actor, policy.ActionCreate, c); err != nil {
		return nil, Outcome{}, err
	}
	in.applyTo(c)
	if err := check(c); err != nil {
		return c, Outcome{}, err
	}
	if err := s.store.Create(ctx, c); err != nil {
		return c, Outcome{}, err
	}
	s.log.Info("category created", zap.String("id", c.ID), zap.String("name", c.Name))
	return c, Outcome{
		Redirect: CategoriesPath,
		Flash:    flash.NewNotice("The category was created successfully."),
	}, nil
}

func (s *Categories) Edit(ctx context.Context, actor *domain.User, id string) (*domain.Category, error) {
	c, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize[*domain.Category](s.policy, actor, policy.ActionEdit, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Categories) Update(ctx context.Context, actor *domain.User, id string, in CategoryAttrs) (*domain.Category, Outcome, error) {
	c, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, Outcome{}, err
	}
	if err := policy.Authorize[*domain.Category](s.policy, actor, policy.ActionUpdate, c); err != nil {
		return nil, Outcome{}, err
	}
	in.applyTo(c)
	if err := check(c); err != nil {
		return c, Outcome{}, err
	}
	if err := s.store.Update(ctx, c); err != nil {
		return c, Outcome{}, err
	}
	s.log.Info("category updated", zap.String("id", c.ID))
	return c, Outcome{
		Redirect: CategoryPath(c),
		Flash:    flash.NewNotice("The category was updated successfully."),
	}, nil
}

// Destroy removes the category; its products become uncategorised.
func (s *Categories) Destroy(ctx context.Context, actor *domain.User, id string) (Outcome, error) {
	c, err := s.store.FindByID(ctx, id)
	if err != nil {
		return Outcome{}, err
	}
	if err := policy.Authorize[*domain.Category](s.policy, actor, policy.ActionDestroy, c); err != nil {
		return Outcome{}, err
	}
	if err := s.store.Delete(ctx, c.ID); err != nil {
		return Outcome{}, err
	}
	s.log.Info("category deleted", zap.String("id", c.ID))
	return Outcome{
		Redirect: CategoriesPath,
		Flash:    flash.NewDanger("The category was deleted successfully."),
	}, nil
}
