package document

import "context"

// Store persists encrypted documents. Create fails with ErrConflict on a
// duplicate document name; ciphertext is immutable once written.
type Store interface {
	Create(ctx context.Context, doc *Document) (*Document, error)
	Find(ctx context.Context, id string) (*Document, error)
	List(ctx context.Context) ([]*Document, error)
	ListByEmployee(ctx context.Context, employeeID string) ([]*Document, error)
	Delete(ctx context.Context, id string) error
}
