package models

import "time"

// Membership is the memberships table row.
type Membership struct {
	MembershipID string    `db:"membership_id"`
	UserID       string    `db:"user_id"`
	EntrepriseID string    `db:"entreprise_id"`
	Role         string    `db:"role"`
	IsActive     bool      `db:"is_active"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// TenantAccess is a tenant joined with the membership granting access to it.
type TenantAccess struct {
	EntrepriseID string    `db:"entreprise_id"`
	Name         string    `db:"name"`
	Siret        string    `db:"siret"`
	IsActive     bool      `db:"is_active"`
	CreatedAt    time.Time `db:"created_at"`
	MembershipID string    `db:"membership_id"`
	Role         string    `db:"role"`
	JoinedAt     time.Time `db:"joined_at"`
}
