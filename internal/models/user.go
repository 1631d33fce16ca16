package models

import (
	"database/sql"
	"time"
)

// User is the users table row. EntrepriseID and RoleID are the legacy single-tenant
// fields; membership rows are authoritative.
type User struct {
	UserID       string         `db:"user_id"`
	Username     string         `db:"username"`
	Email        string         `db:"email"`
	EntrepriseID sql.NullString `db:"entreprise_id"`
	RoleID       sql.NullString `db:"role_id"`
	CreatedAt    time.Time      `db:"created_at"`
}
