package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPaginationResponse(t *testing.T) {
	p := NewPaginationResponse(2, 20, 45)

	assert.Equal(t, 2, p.Page)
	assert.Equal(t, 20, p.PerPage)
	assert.Equal(t, int64(45), p.Total)
	assert.Equal(t, 3, p.Pages)
	assert.True(t, p.HasNext)
	assert.True(t, p.HasPrev)
}

func TestNewPaginationResponseFirstPage(t *testing.T) {
	p := NewPaginationResponse(1, 20, 45)
	assert.True(t, p.HasNext)
	assert.False(t, p.HasPrev)
}

func TestNewPaginationResponseLastPage(t *testing.T) {
	p := NewPaginationResponse(3, 20, 45)
	assert.False(t, p.HasNext)
	assert.True(t, p.HasPrev)
}

func TestNewPaginationResponseEmpty(t *testing.T) {
	p := NewPaginationResponse(1, 20, 0)
	assert.Equal(t, 0, p.Pages)
	assert.False(t, p.HasNext)
	assert.False(t, p.HasPrev)
}
