package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sunday-market/internal/domain"
	"sunday-market/internal/flash"
	"sunday-market/internal/policy"
	"sunday-market/internal/service"
)

func TestCategories_NonAdminsCannotMutate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seller := f.user(t, "Sam", "Seller", domain.RoleSeller)
	veg := &domain.Category{Name: "Vegetables"}
	require.NoError(t, f.cats.Create(ctx, veg))
	svc := service.NewCategories(f.cats, f.products, admins, 6, nil)

	for _, actor := range []*domain.User{nil, seller} {
		_, err := svc.New(actor)
		assert.ErrorIs(t, err, policy.ErrNotAuthorized)
		_, _, err = svc.Create(ctx, actor, service.CategoryAttrs{Name: ptr("Fruit")})
		assert.ErrorIs(t, err, policy.ErrNotAuthorized)
		_, err = svc.Edit(ctx, actor, veg.ID)
		assert.ErrorIs(t, err, policy.ErrNotAuthorized)
		_, _, err = svc.Update(ctx, actor, veg.ID, service.CategoryAttrs{Name: ptr("Veg")})
		assert.ErrorIs(t, err, policy.ErrNotAuthorized)
		_, err = svc.Destroy(ctx, actor, veg.ID)
		assert.ErrorIs(t, err, policy.ErrNotAuthorized)
		assert.False(t, svc.CanManage(actor))
	}

	got, err := f.cats.FindByID(ctx, veg.ID)
	require.NoError(t, err)
	assert.Equal(t, "Vegetables", got.Name)
}

func TestCategories_AdminLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.user(t, "Ada", "Admin", domain.RoleAdmin)
	svc := service.NewCategories(f.cats, f.products, admins, 6, nil)
	assert.True(t, svc.CanManage(admin))

	blank, err := svc.New(admin)
	require.NoError(t, err)
	assert.Empty(t, blank.Name)

	c, out, err := svc.Create(ctx, admin, service.CategoryAttrs{Name: ptr(" Fruit "), Color: ptr("#ffaa00")})
	require.NoError(t, err)
	assert.Equal(t, "Fruit", c.Name)
	assert.Equal(t, service.Outcome{Redirect: "/categories", Flash: flash.NewNotice("The category was created successfully.")}, out)

	c, out, err = svc.Update(ctx, admin, c.ID, service.CategoryAttrs{Name: ptr("Fresh Fruit")})
	require.NoError(t, err)
	assert.Equal(t, "/categories/"+c.ID, out.Redirect)
	assert.Equal(t, flash.NewNotice("The category was updated successfully."), out.Flash)
	assert.Equal(t, "#ffaa00", c.Color)

	out, err = svc.Destroy(ctx, admin, c.ID)
	require.NoError(t, err)
	assert.Equal(t, service.Outcome{Redirect: "/categories", Flash: flash.NewDanger("The category was deleted successfully.")}, out)
	_, err = f.cats.FindByID(ctx, c.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCategories_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.user(t, "Ada", "Admin", domain.RoleAdmin)
	svc := service.NewCategories(f.cats, f.products, admins, 6, nil)

	_, _, err := svc.Create(ctx, admin, service.CategoryAttrs{Name: ptr("   "), Color: ptr("blue")})
	var ve *service.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "can't be blank", ve.Fields["name"])
	assert.Equal(t, "is invalid", ve.Fields["color"])

	page, err := svc.Index(ctx, 1)
	require.NoError(t, err)
	assert.Zero(t, page.Total)
}

func TestCategories_ShowListsProducts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seller := f.user(t, "Sam", "Seller", domain.RoleSeller)
	veg := &domain.Category{Name: "Vegetables"}
	require.NoError(t, f.cats.Create(ctx, veg))
	for _, name := range []string{"Leek", "Kale"} {
		require.NoError(t, f.products.Create(ctx, &domain.Product{Name: name, UserID: seller.ID, CategoryID: &veg.ID}))
	}
	svc := service.NewCategories(f.cats, f.products, admins, 6, nil)

	c, products, err := svc.Show(ctx, veg.ID, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 2, c.ProductCount)
	assert.Len(t, products.Items, 2)

	_, _, err = svc.Show(ctx, "missing", 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
