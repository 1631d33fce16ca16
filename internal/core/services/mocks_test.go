package services_test

import (
	"context"

	"github.com/SscSPs/compta_saas_backend/internal/core/domain"
	"github.com/stretchr/testify/mock"
)

// --- Mock RoleRepository ---
type MockRoleRepository struct {
	mock.Mock
}

func (m *MockRoleRepository) FindRoleByCode(ctx context.Context, code domain.RoleCode) (*domain.Role, error) {
	args := m.Called(ctx, code)
	var role *domain.Role
	if args.Get(0) != nil {
		role = args.Get(0).(*domain.Role)
	}
	return role, args.Error(1)
}

func (m *MockRoleRepository) FindRoleByID(ctx context.Context, roleID string) (*domain.Role, error) {
	args := m.Called(ctx, roleID)
	var role *domain.Role
	if args.Get(0) != nil {
		role = args.Get(0).(*domain.Role)
	}
	return role, args.Error(1)
}

func (m *MockRoleRepository) ListRoles(ctx context.Context) ([]domain.Role, error) {
	args := m.Called(ctx)
	var roles []domain.Role
	if args.Get(0) != nil {
		roles = args.Get(0).([]domain.Role)
	}
	return roles, args.Error(1)
}

func (m *MockRoleRepository) SaveRole(ctx context.Context, role domain.Role) error {
	args := m.Called(ctx, role)
	return args.Error(0)
}

// --- Mock UserRepository ---
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	var user *domain.User
	if args.Get(0) != nil {
		user = args.Get(0).(*domain.User)
	}
	return user, args.Error(1)
}

func (m *MockUserRepository) FindUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	var user *domain.User
	if args.Get(0) != nil {
		user = args.Get(0).(*domain.User)
	}
	return user, args.Error(1)
}

func (m *MockUserRepository) SaveUser(ctx context.Context, user domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateUserEmail(ctx context.Context, userID, email string) error {
	args := m.Called(ctx, userID, email)
	return args.Error(0)
}

func (m *MockUserRepository) DeleteUser(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// --- Mock CurrentTenantStore ---
type MockTenantStore struct {
	mock.Mock
}

func (m *MockTenantStore) GetCurrentTenant(ctx context.Context, userID string) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

func (m *MockTenantStore) SetCurrentTenant(ctx context.Context, userID, entrepriseID string) error {
	args := m.Called(ctx, userID, entrepriseID)
	return args.Error(0)
}

func (m *MockTenantStore) ClearCurrentTenant(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}
