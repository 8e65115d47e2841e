package paginate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name             string
		page, per        int
		wantPage, wantPP int
	}{
		{"defaults", 0, 0, 1, DefaultPerPage},
		{"negative page", -3, 10, 1, 10},
		{"kept", 4, 6, 4, 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, pp := Normalize(tt.page, tt.per)
			assert.Equal(t, tt.wantPage, p)
			assert.Equal(t, tt.wantPP, pp)
		})
	}
}

func TestOffset(t *testing.T) {
	assert.Equal(t, 0, Offset(1, 6))
	assert.Equal(t, 12, Offset(3, 6))
	assert.Equal(t, 0, Offset(0, 6))
}

func TestPageNavigation(t *testing.T) {
	p := Page[int]{Page: 1, PerPage: 6, Total: 13}
	assert.Equal(t, 3, p.TotalPages())
	assert.False(t, p.HasPrev())
	assert.True(t, p.HasNext())

	p.Page = 3
	assert.True(t, p.HasPrev())
	assert.False(t, p.HasNext())
	assert.Equal(t, 2, p.PrevPage())

	empty := Page[int]{Page: 1, PerPage: 6}
	assert.Equal(t, 1, empty.TotalPages())
	assert.False(t, empty.HasNext())
}
