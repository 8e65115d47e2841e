package policy

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"sunday-market/internal/domain"
)

var (
	admin  = &domain.User{ID: "a1", Role: domain.RoleAdmin}
	seller = &domain.User{ID: "s1", Role: domain.RoleSeller}
	buyer  = &domain.User{ID: "b1", Role: domain.RoleBuyer}
	admins = NewRoleSet(domain.RoleAdmin)
)

func TestCategoryPolicy(t *testing.T) {
	p := CategoryPolicy{Admins: admins}
	cat := &domain.Category{ID: "c1", Name: "Technology"}
	mutations := []Action{ActionNew, ActionCreate, ActionEdit, ActionUpdate, ActionDestroy}

	for _, action := range mutations {
		t.Run(string(action), func(t *testing.T) {
			assert.True(t, p.Allows(admin, action, cat))
			assert.False(t, p.Allows(seller, action, cat))
			assert.False(t, p.Allows(buyer, action, cat))
			assert.False(t, p.Allows(nil, action, cat), "anonymous must be denied")
		})
	}

	assert.False(t, p.Allows(admin, ActionBanSeller, cat), "unknown actions are denied")
}

func TestCategoryPolicy_ConfiguredAdminSet(t *testing.T) {
	p := CategoryPolicy{Admins: NewRoleSet(domain.RoleAdmin, domain.RoleSeller)}
	assert.True(t, p.Allows(seller, ActionCreate, nil))
	assert.False(t, p.Allows(buyer, ActionCreate, nil))
}

func TestUserPolicy(t *testing.T) {
	p := UserPolicy{Admins: admins}
	other := &domain.User{ID: "s2", Role: domain.RoleSeller}

	tests := []struct {
		name   string
		actor  *domain.User
		action Action
		target *domain.User
		want   bool
	}{
		{"admin edits anyone", admin, ActionEdit, seller, true},
		{"admin updates anyone", admin, ActionUpdate, seller, true},
		{"self edit", seller, ActionEdit, seller, true},
		{"self update", seller, ActionUpdate, seller, true},
		{"edit someone else", seller, ActionEdit, other, false},
		{"anonymous edit", nil, ActionEdit, seller, false},
		{"admin bans", admin, ActionBanSeller, seller, true},
		{"admin unbans", admin, ActionUnbanSeller, seller, true},
		{"seller cannot ban", seller, ActionBanSeller, other, false},
		{"seller cannot ban self", seller, ActionBanSeller, seller, false},
		{"buyer cannot unban", buyer, ActionUnbanSeller, seller, false},
		{"admin destroys", admin, ActionDestroy, seller, true},
		{"self destroy denied", seller, ActionDestroy, seller, false},
		{"unknown action", admin, ActionCreate, seller, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.Allows(tt.actor, tt.action, tt.target))
		})
	}
}

func TestAuthorize(t *testing.T) {
	p := CategoryPolicy{Admins: admins}

	assert.NoError(t, Authorize[*domain.Category](p, admin, ActionCreate, nil))

	err := Authorize[*domain.Category](p, buyer, ActionCreate, nil)
	assert.ErrorIs(t, err, ErrNotAuthorized)

	var denied *DeniedError
	assert.True(t, errors.As(err, &denied))
	assert.Equal(t, ActionCreate, denied.Action)
}
