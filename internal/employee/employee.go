// Package employee provides the minimal employee directory the document
// subsystem needs: resolving a document's owning employee to the credential
// account linked to them. Full employee CRUD and the org hierarchy live
// outside this core; manager chains are plain id references, never an
// in-memory object graph.
package employee

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound   = errors.New("employee: not found")
	ErrConflict   = errors.New("employee: email already taken")
	ErrBadRequest = errors.New("employee: invalid request")
)

// Employee is a directory record. AccountID links to the credential account,
// ManagerID is a single-hop reference up the reporting chain.
type Employee struct {
	ID        string
	FirstName string
	LastName  string
	Email     string
	AccountID string
	ManagerID string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Directory is the lookup contract used for document ownership checks, plus
// the create path HR uses to onboard an employee.
type Directory interface {
	// Create persists a new record. The email must be unique.
	Create(ctx context.Context, e *Employee) (*Employee, error)
	Find(ctx context.Context, id string) (*Employee, error)
	// LinkedAccountID resolves an employee to their credential account id.
	// Returns an empty string when the employee has no linked account.
	LinkedAccountID(ctx context.Context, employeeID string) (string, error)
}
