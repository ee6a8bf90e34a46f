package employee

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ChaoukiBayoudhi/intelligent-secure-rh-management-backend/internal/ids"
)

// PGDirectory implements Directory using PostgreSQL.
type PGDirectory struct {
	db *sql.DB
}

var _ Directory = (*PGDirectory)(nil)

func NewPGDirectory(db *sql.DB) *PGDirectory {
	return &PGDirectory{db: db}
}

func (d *PGDirectory) Create(ctx context.Context, e *Employee) (*Employee, error) {
	if e == nil || strings.TrimSpace(e.Email) == "" {
		return nil, ErrBadRequest
	}
	cp := *e
	cp.ID = ids.New()
	cp.Email = strings.ToLower(strings.TrimSpace(cp.Email))
	now := time.Now().UTC()
	cp.CreatedAt = now
	cp.UpdatedAt = now

	_, err := d.db.ExecContext(ctx, `
		insert into employees(id, first_name, last_name, email, account_id, manager_id, created_at, updated_at)
		values($1,$2,$3,$4,$5,$6,$7,$8)`,
		cp.ID, cp.FirstName, cp.LastName, cp.Email,
		nullString(cp.AccountID), nullString(cp.ManagerID), cp.CreatedAt, cp.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrConflict
		}
		return nil, err
	}
	return &cp, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func (d *PGDirectory) Find(ctx context.Context, id string) (*Employee, error) {
	row := d.db.QueryRowContext(ctx, `
		select id, first_name, last_name, email, account_id, manager_id, created_at, updated_at
		from employees where id=$1`, id)
	var e Employee
	var accountID, managerID sql.NullString
	err := row.Scan(&e.ID, &e.FirstName, &e.LastName, &e.Email, &accountID, &managerID,
		&e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	e.AccountID = accountID.String
	e.ManagerID = managerID.String
	return &e, nil
}

func (d *PGDirectory) LinkedAccountID(ctx context.Context, employeeID string) (string, error) {
	var accountID sql.NullString
	err := d.db.QueryRowContext(ctx,
		`select account_id from employees where id=$1`, employeeID).Scan(&accountID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return accountID.String, nil
}
