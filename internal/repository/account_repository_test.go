package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func setupAccountMock(t *testing.T) (*AccountRepo, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	repo := NewAccountRepo(db)
	cleanup := func() { db.Close() }
	return repo, mock, cleanup
}

func accountRows(id uint64, email string) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows([]string{"id", "email", "password_hash", "unit_name", "role", "created_at", "updated_at"}).
		AddRow(id, email, "$argon2id$...", "Alpha", "VIEWER", now, now)
}

const selectByID = "SELECT id,email,password_hash,unit_name,role,created_at,updated_at FROM accounts WHERE id=? LIMIT 1"

func TestCreate_Success(t *testing.T) {
	repo, mock, cleanup := setupAccountMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO accounts (email, password_hash, unit_name, role) VALUES (?,?,?,?)")).
		WithArgs("new@example.com", "$argon2id$...", "Alpha", "VIEWER").
		WillReturnResult(sqlmock.NewResult(42, 1))
	mock.ExpectQuery(regexp.QuoteMeta(selectByID)).
		WithArgs(uint64(42)).
		WillReturnRows(accountRows(42, "new@example.com"))

	acc, err := repo.Create(context.Background(), "new@example.com", "$argon2id$...", "Alpha", "VIEWER")
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if acc.ID != 42 || acc.Email != "new@example.com" || acc.Role != "VIEWER" {
		t.Errorf("Create returned %+v; want id=42 email=new@example.com role=VIEWER", acc)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestCreate_DuplicateEmail(t *testing.T) {
	repo, mock, cleanup := setupAccountMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO accounts")).
		WithArgs("dup@example.com", "$argon2id$...", "Alpha", "VIEWER").
		WillReturnError(errors.New("Error 1062 (23000): Duplicate entry 'dup@example.com' for key 'accounts.email'"))

	_, err := repo.Create(context.Background(), "dup@example.com", "$argon2id$...", "Alpha", "VIEWER")
	if !errors.Is(err, ErrEmailExists) {
		t.Fatalf("Create error = %v; want ErrEmailExists", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestCreate_OtherErrorPropagates(t *testing.T) {
	repo, mock, cleanup := setupAccountMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO accounts")).
		WithArgs("a@b.com", "$argon2id$...", "Alpha", "VIEWER").
		WillReturnError(errors.New("Error 1205: Lock wait timeout exceeded"))

	_, err := repo.Create(context.Background(), "a@b.com", "$argon2id$...", "Alpha", "VIEWER")
	if err == nil || errors.Is(err, ErrEmailExists) {
		t.Fatalf("Create error = %v; want the driver error unchanged", err)
	}
}

func TestGetByEmail_Found(t *testing.T) {
	repo, mock, cleanup := setupAccountMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta("FROM accounts WHERE email=? LIMIT 1")).
		WithArgs("a@b.com").
		WillReturnRows(accountRows(7, "a@b.com"))

	acc, err := repo.GetByEmail(context.Background(), "a@b.com")
	if err != nil {
		t.Fatalf("GetByEmail returned error: %v", err)
	}
	if acc.ID != 7 {
		t.Errorf("GetByEmail id = %d; want 7", acc.ID)
	}
}

func TestGetByEmail_NotFound(t *testing.T) {
	repo, mock, cleanup := setupAccountMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta("FROM accounts WHERE email=? LIMIT 1")).
		WithArgs("missing@example.com").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByEmail(context.Background(), "missing@example.com")
	if !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("GetByEmail error = %v; want sql.ErrNoRows", err)
	}
}

func TestCount(t *testing.T) {
	repo, mock, cleanup := setupAccountMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM accounts")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(100))

	n, err := repo.Count(context.Background())
	if err != nil {
		t.Fatalf("Count returned error: %v", err)
	}
	if n != 100 {
		t.Errorf("Count = %d; want 100", n)
	}
}
