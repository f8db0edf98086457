package history

import (
	"context"
	"sort"
	"sync"

	"github.com/fyrsmithlabs/quoted/internal/sector"
)

// Store persists accepted quotes per owner. Implementations must be safe
// for concurrent use.
type Store interface {
	// Append saves a quote entry for its owner.
	Append(ctx context.Context, entry Entry) error
	// Recent returns up to limit entries for the owner, newest first.
	// A non-empty sectorFilter restricts results to that sector.
	Recent(ctx context.Context, ownerID string, sectorFilter sector.Tag, limit int) ([]Entry, error)
}

// MemoryStore keeps history in process memory, grouped by owner. It is
// the default backend and the one the test suite runs against.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string][]Entry
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string][]Entry)}
}

// Append stores the entry under its owner.
func (s *MemoryStore) Append(_ context.Context, entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[entry.OwnerID] = append(s.entries[entry.OwnerID], entry)
	return nil
}

// Recent returns the owner's newest entries, optionally filtered by
// sector, capped at limit. limit <= 0 means no cap.
func (s *MemoryStore) Recent(_ context.Context, ownerID string, sectorFilter sector.Tag, limit int) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := s.entries[ownerID]
	matched := make([]Entry, 0, len(all))
	for _, e := range all {
		if sectorFilter != "" && e.Sector != sectorFilter {
			continue
		}
		matched = append(matched, e)
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

var _ Store = (*MemoryStore)(nil)
