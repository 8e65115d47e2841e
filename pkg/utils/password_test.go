package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPassword(t *testing.T) {
	h, err := HashPassword("hunter22")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter22", h)
	assert.True(t, CheckPassword("hunter22", h))
	assert.False(t, CheckPassword("hunter23", h))
}

func TestNewID(t *testing.T) {
	assert.Len(t, NewID(), 36)
	assert.NotEqual(t, NewID(), NewID())
}
