package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/vanguardhq/defense-api/internal/model"
)

type AccountRepo struct{ DB *sql.DB }

func NewAccountRepo(db *sql.DB) *AccountRepo { return &AccountRepo{DB: db} }

// Create inserts a new account and returns the stored row. Uniqueness of
// the email is enforced by the database index, not a pre-check; a MySQL
// duplicate-key error (1062) is mapped to ErrEmailExists so concurrent
// signups with the same email race safely.
func (r *AccountRepo) Create(ctx context.Context, email, passwordHash, unitName, role string) (model.Account, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO accounts (email, password_hash, unit_name, role) VALUES (?,?,?,?)",
		email, passwordHash, unitName, role)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return model.Account{}, ErrEmailExists
		}
		return model.Account{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Account{}, err
	}
	return r.GetByID(ctx, uint64(id))
}

// GetByEmail fetches an account by its exact email. sql.ErrNoRows is
// returned unchanged when no account matches.
func (r *AccountRepo) GetByEmail(ctx context.Context, email string) (model.Account, error) {
	var a model.Account
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,email,password_hash,unit_name,role,created_at,updated_at FROM accounts WHERE email=? LIMIT 1",
		email).Scan(&a.ID, &a.Email, &a.PasswordHash, &a.UnitName, &a.Role, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

// GetByID fetches an account by id.
func (r *AccountRepo) GetByID(ctx context.Context, id uint64) (model.Account, error) {
	var a model.Account
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,email,password_hash,unit_name,role,created_at,updated_at FROM accounts WHERE id=? LIMIT 1",
		id).Scan(&a.ID, &a.Email, &a.PasswordHash, &a.UnitName, &a.Role, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

// Count returns the total number of accounts. Used by the admin stats
// endpoint.
func (r *AccountRepo) Count(ctx context.Context) (uint64, error) {
	var n uint64
	err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM accounts").Scan(&n)
	return n, err
}
