package document

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ChaoukiBayoudhi/intelligent-secure-rh-management-backend/internal/ids"
)

// PGStore implements Store using PostgreSQL. Tags are stored as jsonb.
type PGStore struct {
	db *sql.DB
}

var _ Store = (*PGStore)(nil)

func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{db: db}
}

const documentColumns = `id, name, content, plaintext_size, content_type, checksum,
	access_level, employee_id, tags, uploaded_at`

func (s *PGStore) Create(ctx context.Context, doc *Document) (*Document, error) {
	cp := doc.Clone()
	if cp.ID == "" {
		cp.ID = ids.New()
	}
	if cp.UploadedAt.IsZero() {
		cp.UploadedAt = time.Now().UTC()
	}
	tags, err := json.Marshal(cp.Tags)
	if err != nil {
		return nil, err
	}
	_, err = s.db.ExecContext(ctx, `
		insert into documents(`+documentColumns+`)
		values($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		cp.ID, cp.Name, cp.Ciphertext, cp.PlaintextSize, cp.ContentType, cp.Checksum,
		string(cp.Level), cp.EmployeeID, tags, cp.UploadedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrConflict
		}
		return nil, err
	}
	return cp, nil
}

func (s *PGStore) Find(ctx context.Context, id string) (*Document, error) {
	row := s.db.QueryRowContext(ctx,
		`select `+documentColumns+` from documents where id=$1`, id)
	return scanDocument(row)
}

func (s *PGStore) List(ctx context.Context) ([]*Document, error) {
	return s.list(ctx, `select `+documentColumns+` from documents order by uploaded_at asc`)
}

func (s *PGStore) ListByEmployee(ctx context.Context, employeeID string) ([]*Document, error) {
	return s.list(ctx,
		`select `+documentColumns+` from documents where employee_id=$1 order by uploaded_at asc`,
		employeeID)
}

func (s *PGStore) list(ctx context.Context, query string, args ...any) ([]*Document, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, doc)
	}
	return res, rows.Err()
}

func (s *PGStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `delete from documents where id=$1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*Document, error) {
	var doc Document
	var level string
	var tags []byte
	err := row.Scan(&doc.ID, &doc.Name, &doc.Ciphertext, &doc.PlaintextSize, &doc.ContentType,
		&doc.Checksum, &level, &doc.EmployeeID, &tags, &doc.UploadedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	doc.Level = AccessLevel(level)
	if len(tags) > 0 {
		if err := json.Unmarshal(tags, &doc.Tags); err != nil {
			return nil, fmt.Errorf("document: decode tags for %s: %w", doc.ID, err)
		}
	}
	return &doc, nil
}
