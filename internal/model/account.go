package model

import "time"

// Role values stored in the accounts.role column. New accounts always
// start as RoleViewer; promotion to RoleAdmin happens outside this service.
const (
	RoleViewer = "VIEWER"
	RoleAdmin  = "ADMIN"
)

// Account mirrors a row of the `accounts` table. PasswordHash holds the
// encoded argon2id hash and must never be serialized into a response;
// handlers define their own response types without that field.
type Account struct {
	ID           uint64    // accounts.id
	Email        string    // accounts.email (unique)
	PasswordHash string    // accounts.password_hash
	UnitName     string    // accounts.unit_name
	Role         string    // accounts.role (VIEWER or ADMIN)
	CreatedAt    time.Time // accounts.created_at
	UpdatedAt    time.Time // accounts.updated_at
}
