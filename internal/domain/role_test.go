package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	for _, s := range []string{"AdminUser", "Seller", "Buyer"} {
		r, err := ParseRole(s)
		require.NoError(t, err)
		assert.Equal(t, s, r.String())
		assert.True(t, r.Valid())
	}

	for _, s := range []string{"", "admin", "adminuser", "Admin User"} {
		_, err := ParseRole(s)
		assert.Error(t, err, s)
	}
}

func TestParseRoles(t *testing.T) {
	rs, err := ParseRoles([]string{"AdminUser", "Seller"})
	require.NoError(t, err)
	assert.Equal(t, []Role{RoleAdmin, RoleSeller}, rs)

	_, err = ParseRoles([]string{"AdminUser", "Root"})
	assert.Error(t, err)
}
