// Package store keeps the catalogue of SML endpoints this SMP can talk to.
package store

import (
	"context"
	"sort"
	"sync"

	"smpadmin/internal/sml/models"
	"smpadmin/pkg/platform/sentinel"
)

// InMemoryStore is a goroutine-safe SML catalogue held in memory.
type InMemoryStore struct {
	mu    sync.RWMutex
	infos map[string]models.SMLInfo
}

// NewInMemory creates a store holding seed.
func NewInMemory(seed ...models.SMLInfo) *InMemoryStore {
	s := &InMemoryStore{infos: make(map[string]models.SMLInfo, len(seed))}
	for _, info := range seed {
		s.infos[info.ID] = info
	}
	return s
}

func (s *InMemoryStore) Create(_ context.Context, info models.SMLInfo) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.infos[info.ID]; ok {
		return sentinel.ErrConflict
	}
	s.infos[info.ID] = info
	return nil
}

func (s *InMemoryStore) Update(_ context.Context, info models.SMLInfo) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.infos[info.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.infos[info.ID] = info
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.infos[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.infos, id)
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id string) (*models.SMLInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	info, ok := s.infos[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &info, nil
}

// List returns all entries ordered by display name, then ID.
func (s *InMemoryStore) List(_ context.Context) ([]models.SMLInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.SMLInfo, 0, len(s.infos))
	for _, info := range s.infos {
		out = append(out, info)
	}
	sortInfos(out)
	return out, nil
}

func sortInfos(infos []models.SMLInfo) {
	sort.Slice(infos, func(i, j int) bool {
		if infos[i].DisplayName != infos[j].DisplayName {
			return infos[i].DisplayName < infos[j].DisplayName
		}
		return infos[i].ID < infos[j].ID
	})
}
