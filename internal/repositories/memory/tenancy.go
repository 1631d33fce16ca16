package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/SscSPs/compta_saas_backend/internal/apperrors"
	"github.com/SscSPs/compta_saas_backend/internal/core/domain"
)

func (s *Store) SaveRole(_ context.Context, role domain.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.roles[role.RoleID]; ok {
		return fmt.Errorf("%w: role %s already exists", apperrors.ErrDuplicate, role.RoleID)
	}
	for _, r := range s.roles {
		if r.Code == role.Code {
			return fmt.Errorf("%w: role %s already exists", apperrors.ErrDuplicate, role.Code)
		}
	}
	s.roles[role.RoleID] = role
	return nil
}

func (s *Store) FindRoleByCode(_ context.Context, code domain.RoleCode) (*domain.Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.roles {
		if r.Code == code {
			return &r, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (s *Store) FindRoleByID(_ context.Context, roleID string) (*domain.Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.roles[roleID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &r, nil
}

func (s *Store) ListRoles(_ context.Context) ([]domain.Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Role, 0, len(s.roles))
	for _, r := range s.roles {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (s *Store) SaveEntrepriseWithOwner(_ context.Context, e domain.Entreprise, owner domain.Membership) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entreprises[e.EntrepriseID]; ok {
		return fmt.Errorf("%w: entreprise %s already exists", apperrors.ErrDuplicate, e.EntrepriseID)
	}
	for _, other := range s.entreprises {
		if other.Siret == e.Siret {
			return fmt.Errorf("%w: siret %s is already registered", apperrors.ErrDuplicate, e.Siret)
		}
	}
	s.entreprises[e.EntrepriseID] = e
	if err := s.insertMembership(owner); err != nil {
		delete(s.entreprises, e.EntrepriseID)
		return err
	}
	return nil
}

func (s *Store) FindEntrepriseByID(_ context.Context, entrepriseID string) (*domain.Entreprise, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entreprises[entrepriseID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &e, nil
}

func (s *Store) SetEntrepriseActive(_ context.Context, entrepriseID string, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entreprises[entrepriseID]
	if !ok {
		return apperrors.ErrNotFound
	}
	e.IsActive = active
	s.entreprises[entrepriseID] = e
	return nil
}

// DeleteEntreprise cascades to every tenant-scoped row and to users whose legacy
// tenant pointer targets it. Audit logs keep their rows with a nil tenant.
func (s *Store) DeleteEntreprise(_ context.Context, entrepriseID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entreprises[entrepriseID]; !ok {
		return apperrors.ErrNotFound
	}

	cascadedUsers := make(map[string]bool)
	for id, u := range s.users {
		if u.EntrepriseID != nil && *u.EntrepriseID == entrepriseID {
			cascadedUsers[id] = true
		}
	}
	for userID := range cascadedUsers {
		if s.userReferencedLocked(userID, entrepriseID) {
			return apperrors.NewProtectedReferenceError("entreprise " + entrepriseID + " is still referenced")
		}
	}

	for id := range cascadedUsers {
		delete(s.users, id)
	}
	for id, m := range s.memberships {
		if m.EntrepriseID == entrepriseID || cascadedUsers[m.UserID] {
			delete(s.memberships, id)
		}
	}
	for id, c := range s.customers {
		if c.EntrepriseID == entrepriseID {
			delete(s.customers, id)
		}
	}
	for id, inv := range s.invoices {
		if inv.EntrepriseID == entrepriseID {
			delete(s.invoices, id)
		}
	}
	for id, t := range s.bankTxns {
		if t.EntrepriseID == entrepriseID {
			delete(s.bankTxns, id)
		}
	}
	s.documents = filter(s.documents, func(d domain.InvoiceDocument) bool { return d.EntrepriseID != entrepriseID })
	s.reconciliations = filter(s.reconciliations, func(r domain.Reconciliation) bool { return r.EntrepriseID != entrepriseID })
	for i := range s.auditLogs {
		if s.auditLogs[i].EntrepriseID != nil && *s.auditLogs[i].EntrepriseID == entrepriseID {
			s.auditLogs[i].EntrepriseID = nil
		}
	}
	delete(s.chainEntries, entrepriseID)
	delete(s.chainTails, entrepriseID)
	delete(s.entreprises, entrepriseID)
	return nil
}

// userReferencedLocked reports whether userID is an audit actor or the matcher of a
// reconciliation that outlives the deletion of exceptTenant.
func (s *Store) userReferencedLocked(userID, exceptTenant string) bool {
	for _, l := range s.auditLogs {
		if l.ActorID == userID {
			return true
		}
	}
	for _, r := range s.reconciliations {
		if r.MatchedBy == userID && r.EntrepriseID != exceptTenant {
			return true
		}
	}
	return false
}

func (s *Store) SaveUser(_ context.Context, user domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.UserID]; ok {
		return fmt.Errorf("%w: user %s already exists", apperrors.ErrDuplicate, user.UserID)
	}
	for _, u := range s.users {
		if u.Username == user.Username {
			return fmt.Errorf("%w: username already exists", apperrors.ErrDuplicate)
		}
	}
	if user.EntrepriseID != nil {
		if _, ok := s.entreprises[*user.EntrepriseID]; !ok {
			return fmt.Errorf("%w: legacy entreprise or role does not exist", apperrors.ErrValidation)
		}
	}
	if user.RoleID != nil {
		if _, ok := s.roles[*user.RoleID]; !ok {
			return fmt.Errorf("%w: legacy entreprise or role does not exist", apperrors.ErrValidation)
		}
	}
	s.users[user.UserID] = user
	return nil
}

func (s *Store) FindUserByID(_ context.Context, userID string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &u, nil
}

func (s *Store) FindUserByUsername(_ context.Context, username string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (s *Store) UpdateUserEmail(_ context.Context, userID, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return apperrors.ErrNotFound
	}
	u.Email = email
	s.users[userID] = u
	return nil
}

func (s *Store) DeleteUser(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[userID]; !ok {
		return apperrors.ErrNotFound
	}
	if s.userReferencedLocked(userID, "") {
		return apperrors.NewProtectedReferenceError("user " + userID + " is referenced by audit logs or reconciliations")
	}
	for id, m := range s.memberships {
		if m.UserID == userID {
			delete(s.memberships, id)
		}
	}
	delete(s.users, userID)
	return nil
}

func (s *Store) SaveMembership(_ context.Context, m domain.Membership) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertMembership(m)
}

func (s *Store) insertMembership(m domain.Membership) error {
	for _, existing := range s.memberships {
		if existing.UserID == m.UserID && existing.EntrepriseID == m.EntrepriseID {
			return apperrors.ErrDuplicateMembership
		}
	}
	if _, ok := s.users[m.UserID]; !ok {
		return fmt.Errorf("%w: user or entreprise does not exist", apperrors.ErrNotFound)
	}
	if _, ok := s.entreprises[m.EntrepriseID]; !ok {
		return fmt.Errorf("%w: user or entreprise does not exist", apperrors.ErrNotFound)
	}
	s.memberships[m.MembershipID] = m
	return nil
}

func (s *Store) FindMembershipByID(_ context.Context, membershipID string) (*domain.Membership, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.memberships[membershipID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &m, nil
}

func (s *Store) FindMembership(_ context.Context, userID, entrepriseID string) (*domain.Membership, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, m := range s.memberships {
		if m.UserID == userID && m.EntrepriseID == entrepriseID {
			return &m, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (s *Store) ListActiveTenantsByUser(_ context.Context, userID string) ([]domain.TenantAccess, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var ms []domain.Membership
	for _, m := range s.memberships {
		if m.UserID == userID && m.IsActive {
			ms = append(ms, m)
		}
	}
	sortMemberships(ms)

	out := make([]domain.TenantAccess, 0, len(ms))
	for _, m := range ms {
		out = append(out, domain.TenantAccess{
			Entreprise:   s.entreprises[m.EntrepriseID],
			MembershipID: m.MembershipID,
			Role:         m.Role,
			JoinedAt:     m.CreatedAt,
		})
	}
	return out, nil
}

func (s *Store) ListMembershipsByEntreprise(_ context.Context, entrepriseID string) ([]domain.Membership, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var ms []domain.Membership
	for _, m := range s.memberships {
		if m.EntrepriseID == entrepriseID {
			ms = append(ms, m)
		}
	}
	sortMemberships(ms)
	return ms, nil
}

func sortMemberships(ms []domain.Membership) {
	sort.Slice(ms, func(i, j int) bool {
		if !ms[i].CreatedAt.Equal(ms[j].CreatedAt) {
			return ms[i].CreatedAt.Before(ms[j].CreatedAt)
		}
		return ms[i].MembershipID < ms[j].MembershipID
	})
}

func (s *Store) UpdateMembershipRole(_ context.Context, membershipID string, role domain.MembershipRole, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.memberships[membershipID]
	if !ok {
		return apperrors.ErrNotFound
	}
	m.Role = role
	m.UpdatedAt = now
	s.memberships[membershipID] = m
	return nil
}

func (s *Store) SetMembershipActive(_ context.Context, membershipID string, active bool, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.memberships[membershipID]
	if !ok {
		return apperrors.ErrNotFound
	}
	m.IsActive = active
	m.UpdatedAt = now
	s.memberships[membershipID] = m
	return nil
}

func filter[T any](items []T, keep func(T) bool) []T {
	out := items[:0]
	for _, it := range items {
		if keep(it) {
			out = append(out, it)
		}
	}
	return out
}
