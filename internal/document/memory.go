package document

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ChaoukiBayoudhi/intelligent-secure-rh-management-backend/internal/ids"
)

// MemoryStore keeps documents in process memory for tests and local runs.
type MemoryStore struct {
	mu     sync.RWMutex
	byID   map[string]*Document
	byName map[string]string
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:   make(map[string]*Document),
		byName: make(map[string]string),
	}
}

func (s *MemoryStore) Create(ctx context.Context, doc *Document) (*Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byName[doc.Name]; exists {
		return nil, ErrConflict
	}
	cp := doc.Clone()
	if cp.ID == "" {
		cp.ID = ids.New()
	}
	if cp.UploadedAt.IsZero() {
		cp.UploadedAt = time.Now().UTC()
	}
	s.byID[cp.ID] = cp
	s.byName[cp.Name] = cp.ID
	return cp.Clone(), nil
}

func (s *MemoryStore) Find(ctx context.Context, id string) (*Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return doc.Clone(), nil
}

func (s *MemoryStore) List(ctx context.Context) ([]*Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := make([]*Document, 0, len(s.byID))
	for _, doc := range s.byID {
		res = append(res, doc.Clone())
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res, nil
}

func (s *MemoryStore) ListByEmployee(ctx context.Context, employeeID string) ([]*Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var res []*Document
	for _, doc := range s.byID {
		if doc.EmployeeID == employeeID {
			res = append(res, doc.Clone())
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res, nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.byID[id]
	if !ok {
		return ErrNotFound
	}
	delete(s.byName, doc.Name)
	delete(s.byID, id)
	return nil
}

// CorruptForTest flips one stored ciphertext byte so integrity detection can
// be exercised end to end.
func (s *MemoryStore) CorruptForTest(id string, offset int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.byID[id]
	if !ok || offset >= len(doc.Ciphertext) {
		return false
	}
	doc.Ciphertext[offset] ^= 0xff
	return true
}
