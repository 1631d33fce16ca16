package domain

import "time"

// RoleCode is the closed set of system role codes. Authorization logic compares
// against these constants, never against persisted labels.
type RoleCode string

const (
	RoleAdminCabinet  RoleCode = "ADMIN_CABINET"
	RoleGerantPME     RoleCode = "GERANT_PME"
	RoleComptablePME  RoleCode = "COMPTABLE_PME"
	RoleCollaborateur RoleCode = "COLLABORATEUR"
)

// IsValid reports whether c is one of the fixed role codes.
func (c RoleCode) IsValid() bool {
	switch c {
	case RoleAdminCabinet, RoleGerantPME, RoleComptablePME, RoleCollaborateur:
		return true
	}
	return false
}

// Role is a persisted row of the role lookup table. Rows are written once by seeding
// and are read-only afterwards.
type Role struct {
	RoleID      string    `json:"roleID" db:"role_id"`
	Code        RoleCode  `json:"code" db:"code"`
	Label       string    `json:"label" db:"label"`
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}

// RoleDefinition is a seed entry of the fixed catalog.
type RoleDefinition struct {
	Code        RoleCode
	Label       string
	Description string
}

var fixedRoles = []RoleDefinition{
	{Code: RoleAdminCabinet, Label: "Administrateur Cabinet", Description: "Administrateur du cabinet comptable avec accès complet"},
	{Code: RoleGerantPME, Label: "Gérant PME", Description: "Gérant d'une PME cliente (rôle par défaut)"},
	{Code: RoleComptablePME, Label: "Comptable PME", Description: "Comptable interne d'une PME"},
	{Code: RoleCollaborateur, Label: "Collaborateur", Description: "Collaborateur avec accès limité"},
}

// FixedRoles returns a copy of the seed catalog in a stable order.
func FixedRoles() []RoleDefinition {
	out := make([]RoleDefinition, len(fixedRoles))
	copy(out, fixedRoles)
	return out
}

// FixedRole looks up the seed definition of code.
func FixedRole(code RoleCode) (RoleDefinition, bool) {
	for _, r := range fixedRoles {
		if r.Code == code {
			return r, true
		}
	}
	return RoleDefinition{}, false
}
