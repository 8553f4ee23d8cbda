package manga

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"mangashelf/pkg/models"
)

// MemoryStore keeps the collection in process memory, in insertion order.
// Nothing survives a restart.
type MemoryStore struct {
	mu    sync.RWMutex
	items []models.Manga
	now   Clock
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{now: systemClock}
}

// WithClock replaces the clock used for timestamps.
func (s *MemoryStore) WithClock(c Clock) *MemoryStore {
	s.now = c
	return s
}

func (s *MemoryStore) Query(_ context.Context, q Query) (models.Page, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Run(s.items, q)
}

func (s *MemoryStore) All(_ context.Context) ([]models.Manga, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Manga, len(s.items))
	copy(out, s.items)
	return out, nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*models.Manga, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexOf(id)
	if i < 0 {
		return nil, ErrNotFound
	}
	m := s.items[i]
	return &m, nil
}

func (s *MemoryStore) Create(_ context.Context, in models.MangaInput) (*models.Manga, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, NewValidationError("title", "Title is required")
	}
	m := fromInput(uuid.NewString(), in, stamp(s.now))

	s.mu.Lock()
	s.items = append(s.items, m)
	s.mu.Unlock()
	return &m, nil
}

func (s *MemoryStore) Update(_ context.Context, id string, p models.MangaPatch) (*models.Manga, error) {
	if err := ValidatePatch(p); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return nil, ErrNotFound
	}
	m := s.items[i]
	p.Apply(&m)
	m.UpdatedAt = touched(s.now, m.CreatedAt)
	s.items[i] = m
	return &m, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return ErrNotFound
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	return nil
}

func (s *MemoryStore) DeleteMany(_ context.Context, ids []string) (int, error) {
	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.items[:0]
	for _, m := range s.items {
		if _, ok := drop[m.ID]; ok {
			continue
		}
		kept = append(kept, m)
	}
	n := len(s.items) - len(kept)
	// clear the tail so dropped records are not retained by the backing array
	for i := len(kept); i < len(s.items); i++ {
		s.items[i] = models.Manga{}
	}
	s.items = kept
	return n, nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

func (s *MemoryStore) indexOf(id string) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}
