package cache

import (
	"context"
	"sync"
	"time"

	"github.com/SscSPs/compta_saas_backend/internal/apperrors"
	portsrepo "github.com/SscSPs/compta_saas_backend/internal/core/ports/repositories"
)

type tenantSelection struct {
	entrepriseID string
	expiresAt    time.Time
}

// MemoryTenantStore is the in-process CurrentTenantStore used when no Redis is configured.
// A zero ttl keeps selections until cleared.
type MemoryTenantStore struct {
	mu         sync.RWMutex
	ttl        time.Duration
	now        func() time.Time
	selections map[string]tenantSelection
}

var _ portsrepo.CurrentTenantStore = (*MemoryTenantStore)(nil)

func NewMemoryTenantStore(ttl time.Duration) *MemoryTenantStore {
	return &MemoryTenantStore{
		ttl:        ttl,
		now:        time.Now,
		selections: make(map[string]tenantSelection),
	}
}

func (s *MemoryTenantStore) GetCurrentTenant(_ context.Context, userID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sel, ok := s.selections[userID]
	if !ok {
		return "", apperrors.ErrNotFound
	}
	if s.ttl > 0 {
		now := s.now()
		if now.After(sel.expiresAt) {
			delete(s.selections, userID)
			return "", apperrors.ErrNotFound
		}
		sel.expiresAt = now.Add(s.ttl)
		s.selections[userID] = sel
	}
	return sel.entrepriseID, nil
}

func (s *MemoryTenantStore) SetCurrentTenant(_ context.Context, userID, entrepriseID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sel := tenantSelection{entrepriseID: entrepriseID}
	if s.ttl > 0 {
		sel.expiresAt = s.now().Add(s.ttl)
	}
	s.selections[userID] = sel
	return nil
}

func (s *MemoryTenantStore) ClearCurrentTenant(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.selections, userID)
	return nil
}
