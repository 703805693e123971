// Package persistence provides the data storage abstraction layer for apps, cases and users.
package persistence

import (
	"context"

	"github.com/dukex/caseflow/pkg/models"
)

// Persistence groups the repositories of one storage backend.
type Persistence interface {
	AppRepository() AppRepository
	CaseRepository() CaseRepository
	UserRepository() UserRepository

	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}

// AppRepository stores apps together with their workflow document.
// GetByID returns nil without error when the app does not exist.
type AppRepository interface {
	GetAll(ctx context.Context) ([]*models.App, error)
	GetByID(ctx context.Context, id string) (*models.App, error)
	Save(ctx context.Context, app *models.App) error
	Delete(ctx context.Context, id string) error
}

// CaseRepository stores cases. GetByID returns nil without error when the case does not exist.
type CaseRepository interface {
	GetByID(ctx context.Context, id string) (*models.Case, error)
	GetByApp(ctx context.Context, appID string) ([]*models.Case, error)
	Save(ctx context.Context, c *models.Case) error
	Delete(ctx context.Context, id string) error
	DeleteByApp(ctx context.Context, appID string) error
}

// UserRepository stores the user directory. Lookups return nil without error
// when nothing matches.
type UserRepository interface {
	GetAll(ctx context.Context) ([]*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Save(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id string) error
}
