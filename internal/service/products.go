package service

import (
	"context"

	"sunday-market/internal/domain"
	"sunday-market/pkg/paginate"
)

type Products struct {
	store   ProductStore
	perPage int
}

func NewProducts(store ProductStore, perPage int) *Products {
	_, perPage = paginate.Normalize(1, perPage)
	return &Products{store: store, perPage: perPage}
}

func (s *Products) List(ctx context.Context, page int) (paginate.Page[domain.Product], error) {
	return s.store.List(ctx, page, s.perPage)
}
