package repositories

import "context"

// CurrentTenantStore remembers the tenant each user last switched to.
type CurrentTenantStore interface {
	// GetCurrentTenant returns the stored selection, or apperrors.ErrNotFound.
	GetCurrentTenant(ctx context.Context, userID string) (string, error)
	SetCurrentTenant(ctx context.Context, userID, entrepriseID string) error
	ClearCurrentTenant(ctx context.Context, userID string) error
}
