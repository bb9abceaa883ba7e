// Package compare keeps the client-local selection of products to compare side by side.
package compare

import (
	"encoding/json"
	"slices"
	"sync"

	"github.com/atinyakov/fitcompare/internal/client/storage"
	"github.com/atinyakov/fitcompare/internal/logger"
	"github.com/atinyakov/fitcompare/internal/models"
	"go.uber.org/zap"
)

// Capacity is the maximum number of products in a selection.
const Capacity = 3

// Selection is a fixed-capacity FIFO of products persisted under storage.CompareKey.
// Adding to a full selection evicts the oldest entry.
type Selection struct {
	mu    sync.Mutex
	items []models.CompareEntry
	store storage.Store
	log   *zap.Logger
}

// Load restores the selection from store. A missing or unreadable value yields
// an empty selection.
func Load(store storage.Store, log *zap.Logger) *Selection {
	s := &Selection{store: store, log: logger.OrNop(log)}

	raw, ok := store.Get(storage.CompareKey)
	if !ok || raw == "" {
		return s
	}
	var items []models.CompareEntry
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		s.log.Warn("discarding unreadable comparison list", zap.Error(err))
		return s
	}
	if len(items) > Capacity {
		items = items[len(items)-Capacity:]
	}
	s.items = items
	return s
}

// Add appends p unless it is already selected.
func (s *Selection) Add(p models.Product) []models.CompareEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexLocked(p.ID) >= 0 {
		return s.copyLocked()
	}
	s.items = append(s.items, models.CompareEntry{ID: p.ID, Name: p.Name, Images: p.Images})
	if len(s.items) > Capacity {
		s.items = slices.Clone(s.items[len(s.items)-Capacity:])
	}
	s.saveLocked()
	return s.copyLocked()
}

// Remove drops the product with the given id. Unknown ids are ignored.
func (s *Selection) Remove(id int64) []models.CompareEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return s.copyLocked()
	}
	s.items = slices.Delete(slices.Clone(s.items), i, i+1)
	s.saveLocked()
	return s.copyLocked()
}

// Clear empties the selection.
func (s *Selection) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	s.saveLocked()
}

// Items returns the selection, oldest first.
func (s *Selection) Items() []models.CompareEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyLocked()
}

// IDs returns the selected product ids, oldest first.
func (s *Selection) IDs() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]int64, len(s.items))
	for i, it := range s.items {
		ids[i] = it.ID
	}
	return ids
}

// Contains reports whether id is selected.
func (s *Selection) Contains(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.indexLocked(id) >= 0
}

func (s *Selection) indexLocked(id int64) int {
	return slices.IndexFunc(s.items, func(e models.CompareEntry) bool { return e.ID == id })
}

func (s *Selection) copyLocked() []models.CompareEntry {
	out := make([]models.CompareEntry, len(s.items))
	copy(out, s.items)
	return out
}

// saveLocked writes the selection to storage. Write failures are logged; the
// in-memory selection stays authoritative for this run.
func (s *Selection) saveLocked() {
	items := s.items
	if items == nil {
		items = []models.CompareEntry{}
	}
	buf, err := json.Marshal(items)
	if err != nil {
		s.log.Error("failed to encode comparison list", zap.Error(err))
		return
	}
	if err := s.store.Set(storage.CompareKey, string(buf)); err != nil {
		s.log.Error("failed to persist comparison list", zap.Error(err))
	}
}
