package auth

import (
	"context"
	"sync"
	"time"

	"github.com/ChaoukiBayoudhi/intelligent-secure-rh-management-backend/internal/ids"
)

// MemoryStore keeps accounts in process memory. Used in tests and for local
// development without a database.
type MemoryStore struct {
	mu      sync.RWMutex
	byID    map[string]*Account
	byEmail map[string]string
	now     func() time.Time
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:    make(map[string]*Account),
		byEmail: make(map[string]string),
		now:     time.Now,
	}
}

func (s *MemoryStore) FindByEmail(ctx context.Context, email string) (*Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[NormalizeEmail(email)]
	if !ok {
		return nil, ErrNotFound
	}
	return s.byID[id].Clone(), nil
}

func (s *MemoryStore) FindByID(ctx context.Context, id string) (*Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acc, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return acc.Clone(), nil
}

func (s *MemoryStore) Save(ctx context.Context, acc *Account) (*Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := acc.Clone()
	cp.Email = NormalizeEmail(cp.Email)
	now := s.now().UTC()
	if cp.ID == "" {
		if _, exists := s.byEmail[cp.Email]; exists {
			return nil, ErrConflict
		}
		cp.ID = ids.New()
		cp.CreatedAt = now
	} else if prev, ok := s.byID[cp.ID]; ok {
		cp.CreatedAt = prev.CreatedAt
		if prev.Email != cp.Email {
			delete(s.byEmail, prev.Email)
		}
	} else if cp.CreatedAt.IsZero() {
		cp.CreatedAt = now
	}
	cp.UpdatedAt = now

	s.byID[cp.ID] = cp
	s.byEmail[cp.Email] = cp.ID
	return cp.Clone(), nil
}
