package auth

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ChaoukiBayoudhi/intelligent-secure-rh-management-backend/internal/ids"
)

// PGStore implements Store using PostgreSQL.
type PGStore struct {
	db  *sql.DB
	now func() time.Time
}

var _ Store = (*PGStore)(nil)

func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{db: db, now: time.Now}
}

const accountColumns = `id, email, password_hash, role, oauth2_provider, mfa_enabled, mfa_secret,
	email_verified, locked, failed_attempts, locked_until, last_login_at, created_at, updated_at`

func (s *PGStore) FindByEmail(ctx context.Context, email string) (*Account, error) {
	row := s.db.QueryRowContext(ctx,
		`select `+accountColumns+` from users where email=$1`, NormalizeEmail(email))
	return scanAccount(row)
}

func (s *PGStore) FindByID(ctx context.Context, id string) (*Account, error) {
	row := s.db.QueryRowContext(ctx,
		`select `+accountColumns+` from users where id=$1`, id)
	return scanAccount(row)
}

func (s *PGStore) Save(ctx context.Context, acc *Account) (*Account, error) {
	cp := acc.Clone()
	cp.Email = NormalizeEmail(cp.Email)
	now := s.now().UTC()
	if cp.ID == "" {
		cp.ID = ids.New()
	}
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = now
	}
	cp.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		insert into users(`+accountColumns+`)
		values($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
		on conflict (id) do update set
			email = excluded.email,
			password_hash = excluded.password_hash,
			role = excluded.role,
			oauth2_provider = excluded.oauth2_provider,
			mfa_enabled = excluded.mfa_enabled,
			mfa_secret = excluded.mfa_secret,
			email_verified = excluded.email_verified,
			locked = excluded.locked,
			failed_attempts = excluded.failed_attempts,
			locked_until = excluded.locked_until,
			last_login_at = excluded.last_login_at,
			updated_at = excluded.updated_at`,
		cp.ID, cp.Email, nullString(cp.PasswordHash), string(cp.Role), nullString(cp.OAuth2Provider),
		cp.MFAEnabled, nullString(cp.MFASecret), cp.EmailVerified, cp.Locked, cp.FailedAttempts,
		nullTime(cp.LockedUntil), nullTime(cp.LastLoginAt), cp.CreatedAt, cp.UpdatedAt,
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

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*Account, error) {
	var acc Account
	var role string
	var passwordHash, provider, mfaSecret sql.NullString
	var lockedUntil, lastLoginAt sql.NullTime
	err := row.Scan(&acc.ID, &acc.Email, &passwordHash, &role, &provider, &acc.MFAEnabled,
		&mfaSecret, &acc.EmailVerified, &acc.Locked, &acc.FailedAttempts,
		&lockedUntil, &lastLoginAt, &acc.CreatedAt, &acc.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	acc.Role = Role(role)
	acc.PasswordHash = passwordHash.String
	acc.OAuth2Provider = provider.String
	acc.MFASecret = mfaSecret.String
	if lockedUntil.Valid {
		t := lockedUntil.Time
		acc.LockedUntil = &t
	}
	if lastLoginAt.Valid {
		t := lastLoginAt.Time
		acc.LastLoginAt = &t
	}
	return &acc, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}
