package domain

import "time"

// User represents a user of the application bound to the external identity provider.
// Username holds the provider's subject identifier.
//
// EntrepriseID and RoleID are the legacy single-tenant pointers. Memberships are
// authoritative for authorization; these fields only serve as a default tenant hint.
type User struct {
	UserID       string    `json:"userID" db:"user_id"`
	Username     string    `json:"username" db:"username"`
	Email        string    `json:"email" db:"email"`
	EntrepriseID *string   `json:"entrepriseID,omitempty" db:"entreprise_id"`
	RoleID       *string   `json:"roleID,omitempty" db:"role_id"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}
