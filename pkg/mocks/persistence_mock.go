// Package mocks provides testify mocks of the persistence and event bus interfaces.
package mocks

import (
	"context"

	"github.com/dukex/caseflow/pkg/models"
	"github.com/dukex/caseflow/pkg/persistence"
	"github.com/stretchr/testify/mock"
)

// MockAppRepository is a mock implementation of persistence.AppRepository interface.
type MockAppRepository struct {
	mock.Mock
}

func (m *MockAppRepository) GetAll(ctx context.Context) ([]*models.App, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*models.App), args.Error(1)
}

func (m *MockAppRepository) GetByID(ctx context.Context, id string) (*models.App, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.App), args.Error(1)
}

func (m *MockAppRepository) Save(ctx context.Context, app *models.App) error {
	args := m.Called(ctx, app)

	return args.Error(0)
}

func (m *MockAppRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)

	return args.Error(0)
}

// MockCaseRepository is a mock implementation of persistence.CaseRepository interface.
type MockCaseRepository struct {
	mock.Mock
}

func (m *MockCaseRepository) GetByID(ctx context.Context, id string) (*models.Case, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.Case), args.Error(1)
}

func (m *MockCaseRepository) GetByApp(ctx context.Context, appID string) ([]*models.Case, error) {
	args := m.Called(ctx, appID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*models.Case), args.Error(1)
}

func (m *MockCaseRepository) Save(ctx context.Context, c *models.Case) error {
	args := m.Called(ctx, c)

	return args.Error(0)
}

func (m *MockCaseRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)

	return args.Error(0)
}

func (m *MockCaseRepository) DeleteByApp(ctx context.Context, appID string) error {
	args := m.Called(ctx, appID)

	return args.Error(0)
}

// MockUserRepository is a mock implementation of persistence.UserRepository interface.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetAll(ctx context.Context) ([]*models.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Save(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)

	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)

	return args.Error(0)
}

// MockPersistence is a mock implementation of persistence.Persistence interface.
type MockPersistence struct {
	mock.Mock

	appRepo  *MockAppRepository
	caseRepo *MockCaseRepository
	userRepo *MockUserRepository
}

// NewMockPersistence creates a new MockPersistence with all mock repositories.
func NewMockPersistence() *MockPersistence {
	return &MockPersistence{
		appRepo:  &MockAppRepository{},
		caseRepo: &MockCaseRepository{},
		userRepo: &MockUserRepository{},
	}
}

// GetMockAppRepository returns the underlying mock app repository for setting up expectations.
func (m *MockPersistence) GetMockAppRepository() *MockAppRepository {
	return m.appRepo
}

func (m *MockPersistence) GetMockCaseRepository() *MockCaseRepository {
	return m.caseRepo
}

func (m *MockPersistence) GetMockUserRepository() *MockUserRepository {
	return m.userRepo
}

func (m *MockPersistence) AppRepository() persistence.AppRepository {
	return m.appRepo
}

func (m *MockPersistence) CaseRepository() persistence.CaseRepository {
	return m.caseRepo
}

func (m *MockPersistence) UserRepository() persistence.UserRepository {
	return m.userRepo
}

func (m *MockPersistence) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}

func (m *MockPersistence) Close(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}
