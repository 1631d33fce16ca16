package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/SscSPs/compta_saas_backend/internal/apperrors"
	"github.com/SscSPs/compta_saas_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/compta_saas_backend/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/compta_saas_backend/internal/core/ports/services"
	"github.com/SscSPs/compta_saas_backend/internal/platform/metrics"
	"github.com/google/uuid"
)

// membershipService handles tenant memberships, authorization and the current tenant selection.
type membershipService struct {
	BaseService
	membershipRepo portsrepo.MembershipRepositoryFacade
	userRepo       portsrepo.UserReader
	tenantStore    portsrepo.CurrentTenantStore
	audit          portssvc.AuditRecorderSvc
	now            func() time.Time
}

// MembershipOption is a functional option for configuring the membership service
type MembershipOption func(*membershipService)

// WithMembershipAuditRecorder records membership changes and tenant switches.
func WithMembershipAuditRecorder(recorder portssvc.AuditRecorderSvc) MembershipOption {
	return func(s *membershipService) {
		s.audit = recorder
	}
}

// WithMembershipClock overrides the clock used for timestamps.
func WithMembershipClock(now func() time.Time) MembershipOption {
	return func(s *membershipService) {
		s.now = now
	}
}

// NewMembershipService creates the membership service. It is its own tenant authorizer.
func NewMembershipService(repo portsrepo.MembershipRepositoryFacade, users portsrepo.UserReader, store portsrepo.CurrentTenantStore, options ...MembershipOption) portssvc.MembershipSvcFacade {
	svc := &membershipService{
		membershipRepo: repo,
		userRepo:       users,
		tenantStore:    store,
		now:            time.Now,
	}
	svc.TenantAuthorizer = svc

	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.MembershipSvcFacade = (*membershipService)(nil)

// AuthorizeTenantAction implements portssvc.TenantAuthorizerSvc.
func (s *membershipService) AuthorizeTenantAction(ctx context.Context, userID, tenantID string, allowed ...domain.MembershipRole) (*domain.Membership, error) {
	if userID == "" || tenantID == "" {
		return nil, apperrors.ErrNotAMember
	}
	m, err := s.membershipRepo.FindMembership(ctx, userID, tenantID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrNotAMember
		}
		s.LogError(ctx, err, "Failed to load membership for authorization",
			slog.String("user_id", userID), slog.String("tenant_id", tenantID))
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}
	if !m.IsActive {
		return nil, apperrors.ErrNotAMember
	}
	if len(allowed) > 0 && !slices.Contains(allowed, m.Role) {
		s.LogDebug(ctx, "Membership role not allowed",
			slog.String("user_id", userID), slog.String("tenant_id", tenantID), slog.String("role", string(m.Role)))
		return nil, fmt.Errorf("%w: role %s may not perform this action", apperrors.ErrForbidden, m.Role)
	}
	return m, nil
}

func (s *membershipService) ListTenantsFor(ctx context.Context, userID string) ([]domain.TenantAccess, error) {
	tenants, err := s.membershipRepo.ListActiveTenantsByUser(ctx, userID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list tenants for user", slog.String("user_id", userID))
		return nil, fmt.Errorf("failed to list tenants: %w", err)
	}
	if tenants == nil {
		return []domain.TenantAccess{}, nil
	}
	return tenants, nil
}

func findTenant(tenants []domain.TenantAccess, tenantID string) (*domain.TenantAccess, bool) {
	for i := range tenants {
		if tenants[i].EntrepriseID == tenantID {
			return &tenants[i], true
		}
	}
	return nil, false
}

func (s *membershipService) SwitchCurrentTenant(ctx context.Context, userID, tenantID string) (access *domain.TenantAccess, err error) {
	defer func() { metrics.ObserveMembershipOperation("switch", err) }()

	tenants, err := s.ListTenantsFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	access, ok := findTenant(tenants, tenantID)
	if !ok {
		s.LogInfo(ctx, "Tenant switch refused without active membership",
			slog.String("user_id", userID), slog.String("tenant_id", tenantID))
		return nil, apperrors.ErrNotAMember
	}

	if err := s.tenantStore.SetCurrentTenant(ctx, userID, tenantID); err != nil {
		s.LogError(ctx, err, "Failed to store current tenant", slog.String("user_id", userID))
		return nil, fmt.Errorf("failed to switch tenant: %w", err)
	}

	s.recordAudit(ctx, s.audit, tenantID, userID, domain.AuditTenantSwitched, "entreprise", tenantID, nil)
	s.LogInfo(ctx, "Current tenant switched", slog.String("user_id", userID), slog.String("tenant_id", tenantID))
	return access, nil
}

func (s *membershipService) CurrentTenant(ctx context.Context, userID string) (*domain.TenantAccess, error) {
	tenants, err := s.ListTenantsFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(tenants) == 0 {
		return nil, apperrors.ErrNotAMember
	}

	stored, err := s.tenantStore.GetCurrentTenant(ctx, userID)
	switch {
	case err == nil:
		if access, ok := findTenant(tenants, stored); ok {
			return access, nil
		}
		// The selection lost its active membership.
		if clearErr := s.tenantStore.ClearCurrentTenant(ctx, userID); clearErr != nil {
			s.LogError(ctx, clearErr, "Failed to clear stale tenant selection", slog.String("user_id", userID))
		}
	case !errors.Is(err, apperrors.ErrNotFound):
		// The selection store is an optimization; resolution continues without it.
		s.LogError(ctx, err, "Failed to read current tenant selection", slog.String("user_id", userID))
	}

	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		s.LogError(ctx, err, "Failed to load user for tenant resolution", slog.String("user_id", userID))
		return nil, fmt.Errorf("failed to resolve current tenant: %w", err)
	}
	if user != nil && user.EntrepriseID != nil {
		if access, ok := findTenant(tenants, *user.EntrepriseID); ok {
			return access, nil
		}
	}

	return &tenants[0], nil
}

func (s *membershipService) AddMembership(ctx context.Context, tenantID, userID string, role domain.MembershipRole, active bool, requestingUserID string) (m *domain.Membership, err error) {
	defer func() { metrics.ObserveMembershipOperation("add", err) }()

	if _, err := s.AuthorizeUser(ctx, requestingUserID, tenantID, managerRoles...); err != nil {
		return nil, err
	}
	if !role.IsValid() {
		return nil, fmt.Errorf("%w: unknown membership role %q", apperrors.ErrValidation, role)
	}

	if _, err := s.membershipRepo.FindMembership(ctx, userID, tenantID); err == nil {
		return nil, apperrors.ErrDuplicateMembership
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		s.LogError(ctx, err, "Failed to check existing membership", slog.String("user_id", userID), slog.String("tenant_id", tenantID))
		return nil, fmt.Errorf("failed to add membership: %w", err)
	}

	now := s.now().UTC()
	membership := domain.Membership{
		MembershipID: uuid.NewString(),
		UserID:       userID,
		EntrepriseID: tenantID,
		Role:         role,
		IsActive:     active,
		Timestamps:   domain.Timestamps{CreatedAt: now, UpdatedAt: now},
	}
	if err := s.membershipRepo.SaveMembership(ctx, membership); err != nil {
		if !errors.Is(err, apperrors.ErrDuplicateMembership) && !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to save membership", slog.String("user_id", userID), slog.String("tenant_id", tenantID))
		}
		return nil, err
	}

	s.recordAudit(ctx, s.audit, tenantID, requestingUserID, domain.AuditMembershipAdded, "membership", membership.MembershipID,
		map[string]any{"user_id": userID, "role": string(role), "is_active": active})
	s.LogInfo(ctx, "Membership added", slog.String("membership_id", membership.MembershipID), slog.String("tenant_id", tenantID))
	return &membership, nil
}

// tenantMembership loads membershipID and hides memberships of other tenants.
func (s *membershipService) tenantMembership(ctx context.Context, tenantID, membershipID string) (*domain.Membership, error) {
	m, err := s.membershipRepo.FindMembershipByID(ctx, membershipID)
	if err != nil {
		return nil, err
	}
	if m.EntrepriseID != tenantID {
		return nil, apperrors.ErrNotFound
	}
	return m, nil
}

func (s *membershipService) UpdateMembershipRole(ctx context.Context, tenantID, membershipID string, role domain.MembershipRole, requestingUserID string) (m *domain.Membership, err error) {
	defer func() { metrics.ObserveMembershipOperation("update_role", err) }()

	if _, err := s.AuthorizeUser(ctx, requestingUserID, tenantID, managerRoles...); err != nil {
		return nil, err
	}
	if !role.IsValid() {
		return nil, fmt.Errorf("%w: unknown membership role %q", apperrors.ErrValidation, role)
	}
	m, err = s.tenantMembership(ctx, tenantID, membershipID)
	if err != nil {
		return nil, err
	}

	previous := m.Role
	now := s.now().UTC()
	if err := s.membershipRepo.UpdateMembershipRole(ctx, membershipID, role, now); err != nil {
		s.LogError(ctx, err, "Failed to update membership role", slog.String("membership_id", membershipID))
		return nil, err
	}
	m.Role = role
	m.UpdatedAt = now

	s.recordAudit(ctx, s.audit, tenantID, requestingUserID, domain.AuditMembershipRoleChanged, "membership", membershipID,
		map[string]any{"from": string(previous), "to": string(role)})
	return m, nil
}

func (s *membershipService) SetMembershipActive(ctx context.Context, tenantID, membershipID string, active bool, requestingUserID string) (m *domain.Membership, err error) {
	defer func() { metrics.ObserveMembershipOperation("set_active", err) }()

	if _, err := s.AuthorizeUser(ctx, requestingUserID, tenantID, managerRoles...); err != nil {
		return nil, err
	}
	m, err = s.tenantMembership(ctx, tenantID, membershipID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	if err := s.membershipRepo.SetMembershipActive(ctx, membershipID, active, now); err != nil {
		s.LogError(ctx, err, "Failed to toggle membership", slog.String("membership_id", membershipID))
		return nil, err
	}
	m.IsActive = active
	m.UpdatedAt = now

	action := domain.AuditMembershipSuspended
	if active {
		action = domain.AuditMembershipActivated
	}
	s.recordAudit(ctx, s.audit, tenantID, requestingUserID, action, "membership", membershipID, nil)
	return m, nil
}

func (s *membershipService) ListMembers(ctx context.Context, tenantID, requestingUserID string) ([]domain.Membership, error) {
	if _, err := s.AuthorizeUser(ctx, requestingUserID, tenantID, managerRoles...); err != nil {
		return nil, err
	}
	members, err := s.membershipRepo.ListMembershipsByEntreprise(ctx, tenantID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list members", slog.String("tenant_id", tenantID))
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	if members == nil {
		return []domain.Membership{}, nil
	}
	return members, nil
}
