package document

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
)

var documentCols = []string{
	"id", "name", "content", "plaintext_size", "content_type", "checksum",
	"access_level", "employee_id", "tags", "uploaded_at",
}

func TestPGStoreCreate(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(`insert into documents`).
		WithArgs("doc-1", "cv.pdf", []byte{1, 2, 3}, 3, "application/pdf", "sum",
			"INTERNAL", "emp-1", []byte(`["cv","2025"]`), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	store := NewPGStore(db)
	doc, err := store.Create(context.Background(), &Document{
		ID:            "doc-1",
		Name:          "cv.pdf",
		Ciphertext:    []byte{1, 2, 3},
		PlaintextSize: 3,
		ContentType:   "application/pdf",
		Checksum:      "sum",
		Level:         LevelInternal,
		EmployeeID:    "emp-1",
		Tags:          []string{"cv", "2025"},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if doc.UploadedAt.IsZero() {
		t.Fatal("UploadedAt must be set")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPGStoreCreateConflict(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(`insert into documents`).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	store := NewPGStore(db)
	_, err = store.Create(context.Background(), &Document{Name: "dup.pdf"})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("got %v, want ErrConflict", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPGStoreFindScansTags(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`select .+ from documents where id=\$1`).
		WithArgs("doc-1").
		WillReturnRows(sqlmock.NewRows(documentCols).AddRow(
			"doc-1", "cv.pdf", []byte{9, 9}, 2, "application/pdf", "sum",
			"CONFIDENTIAL", "emp-1", []byte(`["a","b"]`), now,
		))

	store := NewPGStore(db)
	doc, err := store.Find(context.Background(), "doc-1")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if doc.Level != LevelConfidential {
		t.Fatalf("level = %q", doc.Level)
	}
	if len(doc.Tags) != 2 || doc.Tags[0] != "a" {
		t.Fatalf("tags = %v", doc.Tags)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPGStoreFindRejectsMalformedTags(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	now := time.Now().UTC()
	mock.ExpectQuery(`select .+ from documents where id=\$1`).
		WithArgs("doc-1").
		WillReturnRows(sqlmock.NewRows(documentCols).AddRow(
			"doc-1", "cv.pdf", []byte{9}, 1, "", "sum",
			"PUBLIC", "emp-1", []byte(`{broken`), now,
		))

	store := NewPGStore(db)
	if _, err := store.Find(context.Background(), "doc-1"); err == nil {
		t.Fatal("malformed tags column must surface an error, not be dropped")
	}
}

func TestPGStoreFindNotFound(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`select .+ from documents where id=\$1`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(documentCols))

	store := NewPGStore(db)
	if _, err := store.Find(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestPGStoreListByEmployee(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	now := time.Now().UTC()
	mock.ExpectQuery(`select .+ from documents where employee_id=\$1`).
		WithArgs("emp-1").
		WillReturnRows(sqlmock.NewRows(documentCols).
			AddRow("doc-1", "a.pdf", []byte{1}, 1, "", "s1", "PUBLIC", "emp-1", []byte(`[]`), now).
			AddRow("doc-2", "b.pdf", []byte{2}, 1, "", "s2", "INTERNAL", "emp-1", []byte(`[]`), now))

	store := NewPGStore(db)
	docs, err := store.ListByEmployee(context.Background(), "emp-1")
	if err != nil {
		t.Fatalf("ListByEmployee: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("got %d documents, want 2", len(docs))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPGStoreDelete(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(`delete from documents where id=\$1`).
		WithArgs("doc-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`delete from documents where id=\$1`).
		WithArgs("doc-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	store := NewPGStore(db)
	if err := store.Delete(context.Background(), "doc-1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := store.Delete(context.Background(), "doc-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete: got %v, want ErrNotFound", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
