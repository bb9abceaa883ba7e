package compare

import (
	"testing"

	"github.com/atinyakov/fitcompare/internal/client/storage"
	"github.com/atinyakov/fitcompare/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func product(id int64) models.Product {
	return models.Product{ID: id, Name: "p", Images: []string{"img"}}
}

func TestAdd_EvictsOldest(t *testing.T) {
	s := Load(storage.NewMemoryStore(), nil)
	for id := int64(1); id <= 3; id++ {
		s.Add(product(id))
	}
	got := s.Add(product(4))

	require.Len(t, got, Capacity)
	assert.Equal(t, []int64{2, 3, 4}, s.IDs())
}

func TestAdd_DuplicateIsNoop(t *testing.T) {
	store := storage.NewMemoryStore()
	s := Load(store, nil)
	s.Add(product(1))
	s.Add(product(2))
	s.Add(product(1))

	assert.Equal(t, []int64{1, 2}, s.IDs())
}

func TestRemove(t *testing.T) {
	s := Load(storage.NewMemoryStore(), nil)
	s.Add(product(1))
	s.Add(product(2))

	assert.Len(t, s.Remove(42), 2)
	assert.Equal(t, []int64{2}, entryIDs(s.Remove(1)))
	assert.False(t, s.Contains(1))
}

func TestPersistence_RoundTrip(t *testing.T) {
	store := storage.NewMemoryStore()
	s := Load(store, nil)
	s.Add(product(7))
	s.Add(product(8))

	raw, ok := store.Get(storage.CompareKey)
	require.True(t, ok)
	assert.JSONEq(t, `[{"id":7,"name":"p","images":["img"]},{"id":8,"name":"p","images":["img"]}]`, raw)

	reloaded := Load(store, nil)
	assert.Equal(t, []int64{7, 8}, reloaded.IDs())

	reloaded.Clear()
	raw, _ = store.Get(storage.CompareKey)
	assert.Equal(t, "[]", raw)
}

func TestLoad_Defaults(t *testing.T) {
	assert.Empty(t, Load(storage.NewMemoryStore(), nil).Items())

	store := storage.NewMemoryStore()
	require.NoError(t, store.Set(storage.CompareKey, "{broken"))
	assert.Empty(t, Load(store, nil).Items())

	require.NoError(t, store.Set(storage.CompareKey, `[{"id":1},{"id":2},{"id":3},{"id":4}]`))
	assert.Equal(t, []int64{2, 3, 4}, Load(store, nil).IDs())
}

func TestItems_ReturnsCopy(t *testing.T) {
	s := Load(storage.NewMemoryStore(), nil)
	s.Add(product(1))
	items := s.Items()
	items[0].ID = 99
	assert.Equal(t, []int64{1}, s.IDs())
}

func entryIDs(entries []models.CompareEntry) []int64 {
	ids := make([]int64, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
	}
	return ids
}
