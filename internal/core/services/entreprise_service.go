package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/compta_saas_backend/internal/apperrors"
	"github.com/SscSPs/compta_saas_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/compta_saas_backend/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/compta_saas_backend/internal/core/ports/services"
	"github.com/SscSPs/compta_saas_backend/internal/dto"
	"github.com/SscSPs/compta_saas_backend/internal/platform/metrics"
	"github.com/google/uuid"
)

type entrepriseService struct {
	BaseService
	entrepriseRepo portsrepo.EntrepriseRepositoryFacade
	audit          portssvc.AuditRecorderSvc
}

// NewEntrepriseService creates the tenant service.
func NewEntrepriseService(repo portsrepo.EntrepriseRepositoryFacade, authorizer portssvc.TenantAuthorizerSvc, recorder portssvc.AuditRecorderSvc) portssvc.EntrepriseSvcFacade {
	return &entrepriseService{
		BaseService:    BaseService{TenantAuthorizer: authorizer},
		entrepriseRepo: repo,
		audit:          recorder,
	}
}

var _ portssvc.EntrepriseSvcFacade = (*entrepriseService)(nil)

// CreateEntreprise stores the tenant and the creator's TENANT_OWNER membership in one transaction.
func (s *entrepriseService) CreateEntreprise(ctx context.Context, req dto.CreateEntrepriseRequest, creatorUserID string) (*domain.Entreprise, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Siret = strings.TrimSpace(req.Siret)
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	entreprise := domain.Entreprise{
		EntrepriseID: uuid.NewString(),
		Name:         req.Name,
		Siret:        req.Siret,
		IsActive:     true,
		CreatedAt:    now,
	}
	owner := domain.Membership{
		MembershipID: uuid.NewString(),
		UserID:       creatorUserID,
		EntrepriseID: entreprise.EntrepriseID,
		Role:         domain.MembershipTenantOwner,
		IsActive:     true,
		Timestamps:   domain.Timestamps{CreatedAt: now, UpdatedAt: now},
	}

	err := s.entrepriseRepo.SaveEntrepriseWithOwner(ctx, entreprise, owner)
	metrics.ObserveMembershipOperation("add", err)
	if err != nil {
		if !errors.Is(err, apperrors.ErrDuplicate) {
			s.LogError(ctx, err, "Failed to create entreprise", slog.String("creator_user_id", creatorUserID))
		}
		return nil, err
	}

	s.recordAudit(ctx, s.audit, entreprise.EntrepriseID, creatorUserID, domain.AuditMembershipAdded, "membership", owner.MembershipID,
		map[string]any{"user_id": creatorUserID, "role": string(owner.Role), "is_active": true})
	s.LogInfo(ctx, "Entreprise created", slog.String("entreprise_id", entreprise.EntrepriseID), slog.String("creator_user_id", creatorUserID))
	return &entreprise, nil
}

func (s *entrepriseService) GetEntreprise(ctx context.Context, entrepriseID, requestingUserID string) (*domain.Entreprise, error) {
	if _, err := s.AuthorizeUser(ctx, requestingUserID, entrepriseID); err != nil {
		return nil, err
	}
	e, err := s.entrepriseRepo.FindEntrepriseByID(ctx, entrepriseID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to get entreprise", slog.String("entreprise_id", entrepriseID))
		}
		return nil, err
	}
	return e, nil
}

func (s *entrepriseService) SetEntrepriseActive(ctx context.Context, entrepriseID string, active bool, requestingUserID string) (*domain.Entreprise, error) {
	if _, err := s.AuthorizeUser(ctx, requestingUserID, entrepriseID, managerRoles...); err != nil {
		return nil, err
	}
	if err := s.entrepriseRepo.SetEntrepriseActive(ctx, entrepriseID, active); err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to toggle entreprise", slog.String("entreprise_id", entrepriseID))
		}
		return nil, err
	}
	s.LogInfo(ctx, "Entreprise activation changed", slog.String("entreprise_id", entrepriseID), slog.Bool("is_active", active))
	return s.entrepriseRepo.FindEntrepriseByID(ctx, entrepriseID)
}

// DeleteEntreprise is reserved to the tenant owner.
func (s *entrepriseService) DeleteEntreprise(ctx context.Context, entrepriseID, requestingUserID string) error {
	if _, err := s.AuthorizeUser(ctx, requestingUserID, entrepriseID, domain.MembershipTenantOwner); err != nil {
		return err
	}
	if err := s.entrepriseRepo.DeleteEntreprise(ctx, entrepriseID); err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) && !errors.Is(err, apperrors.ErrProtectedReference) {
			s.LogError(ctx, err, "Failed to delete entreprise", slog.String("entreprise_id", entrepriseID))
		}
		return fmt.Errorf("failed to delete entreprise %s: %w", entrepriseID, err)
	}
	s.LogInfo(ctx, "Entreprise deleted", slog.String("entreprise_id", entrepriseID), slog.String("user_id", requestingUserID))
	return nil
}
