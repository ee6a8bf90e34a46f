package auth

import "context"

// Store is the credential persistence contract. Save is an upsert and
// returns the persisted form with identifiers and timestamps filled in.
type Store interface {
	FindByEmail(ctx context.Context, email string) (*Account, error)
	FindByID(ctx context.Context, id string) (*Account, error)
	Save(ctx context.Context, acc *Account) (*Account, error)
}
