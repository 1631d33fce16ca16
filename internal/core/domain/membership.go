package domain

import "time"

// MembershipRole defines the role a user holds inside one tenant. It is a distinct
// enumeration from the system RoleCode.
type MembershipRole string

const (
	MembershipTenantOwner   MembershipRole = "TENANT_OWNER"
	MembershipComptable     MembershipRole = "COMPTABLE"
	MembershipCollaborateur MembershipRole = "COLLABORATEUR"
	MembershipAdminCabinet  MembershipRole = "ADMIN_CABINET"
)

// IsValid reports whether r is a known membership role.
func (r MembershipRole) IsValid() bool {
	switch r {
	case MembershipTenantOwner, MembershipComptable, MembershipCollaborateur, MembershipAdminCabinet:
		return true
	}
	return false
}

// Membership associates a user with a tenant. At most one row exists per
// (UserID, EntrepriseID) pair.
type Membership struct {
	MembershipID string         `json:"membershipID" db:"membership_id"`
	UserID       string         `json:"userID" db:"user_id"`
	EntrepriseID string         `json:"entrepriseID" db:"entreprise_id"`
	Role         MembershipRole `json:"role" db:"role"`
	IsActive     bool           `json:"isActive" db:"is_active"`
	Timestamps
}

// TenantAccess is a tenant as seen through one of the user's active memberships.
type TenantAccess struct {
	Entreprise
	MembershipID string         `json:"membershipID" db:"membership_id"`
	Role         MembershipRole `json:"role" db:"role"`
	JoinedAt     time.Time      `json:"joinedAt" db:"joined_at"`
}
