package dto

import (
	"time"

	"github.com/SscSPs/compta_saas_backend/internal/core/domain"
)

// RoleResponse defines the data returned for a system role.
type RoleResponse struct {
	RoleID      string          `json:"roleID"`
	Code        domain.RoleCode `json:"code"`
	Label       string          `json:"label"`
	Description string          `json:"description"`
	CreatedAt   time.Time       `json:"createdAt"`
}

type ListRolesResponse struct {
	Roles []RoleResponse `json:"roles"`
}

func ToRoleResponse(r *domain.Role) RoleResponse {
	return RoleResponse{
		RoleID:      r.RoleID,
		Code:        r.Code,
		Label:       r.Label,
		Description: r.Description,
		CreatedAt:   r.CreatedAt,
	}
}

func ToListRolesResponse(roles []domain.Role) ListRolesResponse {
	list := make([]RoleResponse, len(roles))
	for i := range roles {
		list[i] = ToRoleResponse(&roles[i])
	}
	return ListRolesResponse{Roles: list}
}
