// Package repository implements persistence over *sql.DB. Sentinel errors
// defined here let services translate storage failures into HTTP status
// codes without inspecting driver error strings themselves.
package repository

import "errors"

// ErrEmailExists is returned when an insert violates the unique index on
// accounts.email. The auth service maps it to an HTTP 409 Conflict.
var ErrEmailExists = errors.New("email already in use")
