package employee

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/ChaoukiBayoudhi/intelligent-secure-rh-management-backend/internal/ids"
)

// MemoryDirectory keeps employees in process memory for tests and local runs.
type MemoryDirectory struct {
	mu   sync.RWMutex
	byID map[string]*Employee
}

var _ Directory = (*MemoryDirectory)(nil)

func NewMemoryDirectory() *MemoryDirectory {
	return &MemoryDirectory{byID: make(map[string]*Employee)}
}

// Put inserts or replaces an employee record and returns its id.
func (d *MemoryDirectory) Put(e *Employee) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	cp := *e
	if cp.ID == "" {
		cp.ID = ids.New()
	}
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now().UTC()
	}
	cp.UpdatedAt = time.Now().UTC()
	d.byID[cp.ID] = &cp
	return cp.ID
}

func (d *MemoryDirectory) Create(ctx context.Context, e *Employee) (*Employee, error) {
	if e == nil || strings.TrimSpace(e.Email) == "" {
		return nil, ErrBadRequest
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	email := strings.ToLower(strings.TrimSpace(e.Email))
	for _, existing := range d.byID {
		if strings.EqualFold(existing.Email, email) {
			return nil, ErrConflict
		}
	}
	cp := *e
	cp.Email = email
	cp.ID = ids.New()
	now := time.Now().UTC()
	cp.CreatedAt = now
	cp.UpdatedAt = now
	d.byID[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (d *MemoryDirectory) Find(ctx context.Context, id string) (*Employee, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	e, ok := d.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (d *MemoryDirectory) LinkedAccountID(ctx context.Context, employeeID string) (string, error) {
	e, err := d.Find(ctx, employeeID)
	if err != nil {
		return "", err
	}
	return e.AccountID, nil
}
