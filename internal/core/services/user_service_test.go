package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/SscSPs/compta_saas_backend/internal/apperrors"
	"github.com/SscSPs/compta_saas_backend/internal/core/domain"
	portssvc "github.com/SscSPs/compta_saas_backend/internal/core/ports/services"
	"github.com/SscSPs/compta_saas_backend/internal/core/services"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type UserServiceTestSuite struct {
	suite.Suite
	mockRepo  *MockUserRepository
	mockRoles *MockRoleRepository
	service   portssvc.UserSvcFacade
	ctx       context.Context
}

func (suite *UserServiceTestSuite) SetupTest() {
	suite.mockRepo = new(MockUserRepository)
	suite.mockRoles = new(MockRoleRepository)
	suite.service = services.NewUserService(suite.mockRepo, suite.mockRoles)
	suite.ctx = context.Background()
}

func TestUserServiceTestSuite(t *testing.T) {
	suite.Run(t, new(UserServiceTestSuite))
}

func (suite *UserServiceTestSuite) TestFindOrCreate_CreatesOnFirstSight() {
	gerant := &domain.Role{RoleID: "role-gerant", Code: domain.RoleGerantPME}
	suite.mockRepo.On("FindUserByUsername", suite.ctx, "idp|42").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRoles.On("FindRoleByCode", suite.ctx, domain.RoleGerantPME).Return(gerant, nil).Once()
	suite.mockRepo.On("SaveUser", suite.ctx, mock.MatchedBy(func(u domain.User) bool {
		return u.Username == "idp|42" && u.Email == "marie@cabinet.fr" && u.UserID != "" &&
			u.RoleID != nil && *u.RoleID == "role-gerant"
	})).Return(nil).Once()

	user, err := suite.service.FindOrCreateUserByExternalSubject(suite.ctx, "idp|42", "marie@cabinet.fr")

	suite.Require().NoError(err)
	suite.Equal("idp|42", user.Username)
	suite.Require().NotNil(user.RoleID)
	suite.Equal("role-gerant", *user.RoleID)
	suite.Nil(user.EntrepriseID)
	suite.mockRepo.AssertExpectations(suite.T())
	suite.mockRoles.AssertExpectations(suite.T())
}

func (suite *UserServiceTestSuite) TestFindOrCreate_UnseededRegistryLeavesRoleUnset() {
	suite.mockRepo.On("FindUserByUsername", suite.ctx, "idp|42").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRoles.On("FindRoleByCode", suite.ctx, domain.RoleGerantPME).Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRepo.On("SaveUser", suite.ctx, mock.MatchedBy(func(u domain.User) bool { return u.RoleID == nil })).Return(nil).Once()

	user, err := suite.service.FindOrCreateUserByExternalSubject(suite.ctx, "idp|42", "")

	suite.Require().NoError(err)
	suite.Nil(user.RoleID)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *UserServiceTestSuite) TestFindOrCreate_RoleLookupFailure() {
	suite.mockRepo.On("FindUserByUsername", suite.ctx, "idp|42").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRoles.On("FindRoleByCode", suite.ctx, domain.RoleGerantPME).Return(nil, errors.New("connection reset")).Once()

	_, err := suite.service.FindOrCreateUserByExternalSubject(suite.ctx, "idp|42", "")

	suite.Error(err)
	suite.mockRepo.AssertNotCalled(suite.T(), "SaveUser", mock.Anything, mock.Anything)
}

func (suite *UserServiceTestSuite) TestFindOrCreate_RefreshesChangedEmail() {
	existing := &domain.User{UserID: "u1", Username: "idp|42", Email: "old@cabinet.fr"}
	suite.mockRepo.On("FindUserByUsername", suite.ctx, "idp|42").Return(existing, nil).Once()
	suite.mockRepo.On("UpdateUserEmail", suite.ctx, "u1", "new@cabinet.fr").Return(nil).Once()

	user, err := suite.service.FindOrCreateUserByExternalSubject(suite.ctx, "idp|42", "new@cabinet.fr")

	suite.Require().NoError(err)
	suite.Equal("new@cabinet.fr", user.Email)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *UserServiceTestSuite) TestFindOrCreate_KeepsEmailWhenTokenHasNone() {
	existing := &domain.User{UserID: "u1", Username: "idp|42", Email: "old@cabinet.fr"}
	suite.mockRepo.On("FindUserByUsername", suite.ctx, "idp|42").Return(existing, nil).Once()

	user, err := suite.service.FindOrCreateUserByExternalSubject(suite.ctx, "idp|42", "")

	suite.Require().NoError(err)
	suite.Equal("old@cabinet.fr", user.Email)
	suite.mockRepo.AssertNotCalled(suite.T(), "UpdateUserEmail", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *UserServiceTestSuite) TestFindOrCreate_ConcurrentCreationReReads() {
	winner := &domain.User{UserID: "winner", Username: "idp|42", Email: "marie@cabinet.fr"}
	suite.mockRepo.On("FindUserByUsername", suite.ctx, "idp|42").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRoles.On("FindRoleByCode", suite.ctx, domain.RoleGerantPME).Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRepo.On("SaveUser", suite.ctx, mock.Anything).Return(apperrors.ErrDuplicate).Once()
	suite.mockRepo.On("FindUserByUsername", suite.ctx, "idp|42").Return(winner, nil).Once()

	user, err := suite.service.FindOrCreateUserByExternalSubject(suite.ctx, "idp|42", "marie@cabinet.fr")

	suite.Require().NoError(err)
	suite.Equal("winner", user.UserID)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *UserServiceTestSuite) TestFindOrCreate_EmptySubject() {
	_, err := suite.service.FindOrCreateUserByExternalSubject(suite.ctx, "", "x@y.fr")
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *UserServiceTestSuite) TestGetUserByID_NotFound() {
	suite.mockRepo.On("FindUserByID", suite.ctx, "missing").Return(nil, apperrors.ErrNotFound).Once()

	user, err := suite.service.GetUserByID(suite.ctx, "missing")

	suite.Nil(user)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *UserServiceTestSuite) TestDeleteUser_OnlySelf() {
	err := suite.service.DeleteUser(suite.ctx, "u1", "u2")
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.mockRepo.AssertNotCalled(suite.T(), "DeleteUser", mock.Anything, mock.Anything)

	suite.mockRepo.On("DeleteUser", suite.ctx, "u1").Return(apperrors.ErrProtectedReference).Once()
	suite.ErrorIs(suite.service.DeleteUser(suite.ctx, "u1", "u1"), apperrors.ErrProtectedReference)
}
