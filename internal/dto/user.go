package dto

import (
	"time"

	"github.com/SscSPs/compta_saas_backend/internal/core/domain"
)

// UserResponse defines the data returned for a user.
type UserResponse struct {
	UserID       string    `json:"userID"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	EntrepriseID *string   `json:"entrepriseID,omitempty"` // legacy default tenant
	RoleID       *string   `json:"roleID,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// ToUserResponse converts domain.User to DTO.
func ToUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		UserID:       u.UserID,
		Username:     u.Username,
		Email:        u.Email,
		EntrepriseID: u.EntrepriseID,
		RoleID:       u.RoleID,
		CreatedAt:    u.CreatedAt,
	}
}
