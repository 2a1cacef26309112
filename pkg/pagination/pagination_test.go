package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name          string
		page, perPage int
		want          Params
	}{
		{"defaults", 0, 0, Params{Page: 1, PerPage: 20, Offset: 0}},
		{"third page", 3, 10, Params{Page: 3, PerPage: 10, Offset: 20}},
		{"negative page", -4, 10, Params{Page: 1, PerPage: 10, Offset: 0}},
		{"per page too large", 2, 101, Params{Page: 2, PerPage: 20, Offset: 20}},
		{"per page at max", 1, 100, Params{Page: 1, PerPage: 100, Offset: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, New(tt.page, tt.perPage))
		})
	}
}

func TestFromRequest(t *testing.T) {
	r := httptest.NewRequest("GET", "/?page=2&per_page=5", nil)
	assert.Equal(t, Params{Page: 2, PerPage: 5, Offset: 5}, FromRequest(r))

	r = httptest.NewRequest("GET", "/?page=abc&per_page=-1", nil)
	assert.Equal(t, Params{Page: 1, PerPage: 20, Offset: 0}, FromRequest(r))
}

func TestNewResult(t *testing.T) {
	res := NewResult([]string{"a", "b"}, 45, New(2, 20))
	assert.Equal(t, 3, res.TotalPages)
	assert.True(t, res.HasNext)
	assert.True(t, res.HasPrev)
	assert.Equal(t, 3, res.NextPage())
	assert.Equal(t, 1, res.PrevPage())

	last := NewResult([]string{"z"}, 45, New(3, 20))
	assert.False(t, last.HasNext)

	empty := NewResult[string](nil, 0, New(1, 20))
	assert.NotNil(t, empty.Data)
	assert.Equal(t, 0, empty.TotalPages)
	assert.False(t, empty.HasNext)
	assert.False(t, empty.HasPrev)
}
