package employee

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestMemoryDirectory(t *testing.T) {
	dir := NewMemoryDirectory()
	ctx := context.Background()

	id := dir.Put(&Employee{
		FirstName: "Eva",
		LastName:  "Nord",
		Email:     "eva@example.com",
		AccountID: "acc-1",
	})
	if id == "" {
		t.Fatal("expected generated id")
	}

	e, err := dir.Find(ctx, id)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if e.Email != "eva@example.com" || e.CreatedAt.IsZero() {
		t.Fatalf("unexpected employee: %+v", e)
	}

	accountID, err := dir.LinkedAccountID(ctx, id)
	if err != nil {
		t.Fatalf("LinkedAccountID: %v", err)
	}
	if accountID != "acc-1" {
		t.Fatalf("accountID = %q", accountID)
	}

	if _, err := dir.Find(ctx, "ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
	if _, err := dir.LinkedAccountID(ctx, "ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestMemoryDirectoryCreate(t *testing.T) {
	dir := NewMemoryDirectory()
	ctx := context.Background()

	created, err := dir.Create(ctx, &Employee{
		FirstName: "Nora",
		LastName:  "Vale",
		Email:     " Nora@Example.com ",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == "" || created.CreatedAt.IsZero() {
		t.Fatalf("unexpected record: %+v", created)
	}
	if created.Email != "nora@example.com" {
		t.Fatalf("email not normalized: %q", created.Email)
	}
	if _, err := dir.Find(ctx, created.ID); err != nil {
		t.Fatalf("Find created: %v", err)
	}

	// Emails are unique regardless of case.
	if _, err := dir.Create(ctx, &Employee{Email: "NORA@example.com"}); !errors.Is(err, ErrConflict) {
		t.Fatalf("duplicate: got %v, want ErrConflict", err)
	}
	if _, err := dir.Create(ctx, &Employee{Email: "   "}); !errors.Is(err, ErrBadRequest) {
		t.Fatalf("blank email: got %v, want ErrBadRequest", err)
	}
}

func TestPGDirectoryCreate(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(`insert into employees`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	dir := NewPGDirectory(db)
	created, err := dir.Create(context.Background(), &Employee{
		FirstName: "Nora",
		LastName:  "Vale",
		Email:     "nora@example.com",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == "" || created.CreatedAt.IsZero() {
		t.Fatalf("unexpected record: %+v", created)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPGDirectoryCreateConflict(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(`insert into employees`).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	dir := NewPGDirectory(db)
	if _, err := dir.Create(context.Background(), &Employee{Email: "dup@example.com"}); !errors.Is(err, ErrConflict) {
		t.Fatalf("got %v, want ErrConflict", err)
	}
}

func TestPGDirectoryFind(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	now := time.Now().UTC()
	cols := []string{"id", "first_name", "last_name", "email", "account_id", "manager_id", "created_at", "updated_at"}
	mock.ExpectQuery(`select .+ from employees where id=\$1`).
		WithArgs("emp-1").
		WillReturnRows(sqlmock.NewRows(cols).AddRow(
			"emp-1", "Eva", "Nord", "eva@example.com", "acc-1", nil, now, now,
		))

	dir := NewPGDirectory(db)
	e, err := dir.Find(context.Background(), "emp-1")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if e.AccountID != "acc-1" {
		t.Fatalf("AccountID = %q", e.AccountID)
	}
	if e.ManagerID != "" {
		t.Fatalf("nil manager should scan empty, got %q", e.ManagerID)
	}
}

func TestPGDirectoryLinkedAccountID(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`select account_id from employees where id=\$1`).
		WithArgs("emp-1").
		WillReturnRows(sqlmock.NewRows([]string{"account_id"}).AddRow(nil))

	dir := NewPGDirectory(db)
	accountID, err := dir.LinkedAccountID(context.Background(), "emp-1")
	if err != nil {
		t.Fatalf("LinkedAccountID: %v", err)
	}
	if accountID != "" {
		t.Fatalf("unlinked employee must yield empty id, got %q", accountID)
	}
}
