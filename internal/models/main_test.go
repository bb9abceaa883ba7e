package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetFavorite_CopiesInput(t *testing.T) {
	in := []Product{{ID: 1}, {ID: 2}}
	out := SetFavorite(in, 2, true)

	assert.False(t, in[1].IsFavorite, "input must not be modified")
	assert.True(t, out[1].IsFavorite)
	assert.False(t, out[0].IsFavorite)
}

func TestRemoveProduct(t *testing.T) {
	in := []Product{{ID: 1}, {ID: 2}, {ID: 3}}
	out := RemoveProduct(in, 2)

	assert.Len(t, in, 3)
	assert.Equal(t, []Product{{ID: 1}, {ID: 3}}, out)
	assert.Len(t, RemoveProduct(in, 42), 3)
}

func TestProductPageWithFavorite(t *testing.T) {
	page := Page[Product]{Items: []Product{{ID: 7}}, Total: 1, Page: 2, PageSize: 10}
	got := ProductPageWithFavorite(page, 7, true)

	assert.True(t, got.Items[0].IsFavorite)
	assert.False(t, page.Items[0].IsFavorite)
	assert.Equal(t, 2, got.Page)
	assert.Equal(t, 1, got.Total)
}
