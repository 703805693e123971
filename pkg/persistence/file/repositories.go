package file

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/dukex/caseflow/pkg/models"
)

// AppRepository handles app-related file operations.
type AppRepository struct {
	store *documentStore[models.App]
}

// NewAppRepository creates a new app repository.
func NewAppRepository(root string) *AppRepository {
	return &AppRepository{store: newDocumentStore[models.App](root, "apps")}
}

// GetAll returns every app ordered by creation time.
func (r *AppRepository) GetAll(_ context.Context) ([]*models.App, error) {
	apps, err := r.store.all()
	if err != nil {
		return nil, err
	}

	sort.SliceStable(apps, func(i, j int) bool {
		if apps[i].CreatedAt.Equal(apps[j].CreatedAt) {
			return apps[i].ID < apps[j].ID
		}

		return apps[i].CreatedAt.Before(apps[j].CreatedAt)
	})

	return apps, nil
}

func (r *AppRepository) GetByID(_ context.Context, id string) (*models.App, error) {
	return r.store.get(id)
}

// Save writes the app, stamping CreatedAt on first save.
func (r *AppRepository) Save(_ context.Context, app *models.App) error {
	now := time.Now().UTC()
	if app.CreatedAt.IsZero() {
		app.CreatedAt = now
	}

	if app.UpdatedAt.IsZero() {
		app.UpdatedAt = now
	}

	return r.store.put(app.ID, app)
}

func (r *AppRepository) Delete(_ context.Context, id string) error {
	return r.store.remove(id)
}

// CaseRepository handles case-related file operations.
type CaseRepository struct {
	store *documentStore[models.Case]
}

// NewCaseRepository creates a new case repository.
func NewCaseRepository(root string) *CaseRepository {
	return &CaseRepository{store: newDocumentStore[models.Case](root, "cases")}
}

func (r *CaseRepository) GetByID(_ context.Context, id string) (*models.Case, error) {
	return r.store.get(id)
}

// GetByApp returns the cases of an app, newest first.
func (r *CaseRepository) GetByApp(_ context.Context, appID string) ([]*models.Case, error) {
	all, err := r.store.all()
	if err != nil {
		return nil, err
	}

	cases := make([]*models.Case, 0, len(all))

	for _, c := range all {
		if c.AppID == appID {
			cases = append(cases, c)
		}
	}

	sortCases(cases)

	return cases, nil
}

func (r *CaseRepository) Save(_ context.Context, c *models.Case) error {
	now := time.Now().UTC()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}

	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = now
	}

	return r.store.put(c.ID, c)
}

func (r *CaseRepository) Delete(_ context.Context, id string) error {
	return r.store.remove(id)
}

// DeleteByApp removes every case of an app.
func (r *CaseRepository) DeleteByApp(ctx context.Context, appID string) error {
	cases, err := r.GetByApp(ctx, appID)
	if err != nil {
		return err
	}

	for _, c := range cases {
		if err := r.store.remove(c.ID); err != nil {
			return err
		}
	}

	return nil
}

func sortCases(cases []*models.Case) {
	sort.SliceStable(cases, func(i, j int) bool {
		if cases[i].CreatedAt.Equal(cases[j].CreatedAt) {
			return cases[i].ID > cases[j].ID
		}

		return cases[i].CreatedAt.After(cases[j].CreatedAt)
	})
}

// UserRepository handles user-related file operations.
type UserRepository struct {
	store *documentStore[models.User]
}

// NewUserRepository creates a new user repository.
func NewUserRepository(root string) *UserRepository {
	return &UserRepository{store: newDocumentStore[models.User](root, "users")}
}

// GetAll returns every user ordered by id.
func (r *UserRepository) GetAll(_ context.Context) ([]*models.User, error) {
	users, err := r.store.all()
	if err != nil {
		return nil, err
	}

	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })

	return users, nil
}

func (r *UserRepository) GetByID(_ context.Context, id string) (*models.User, error) {
	return r.store.get(id)
}

// GetByEmail finds a user by email, ignoring case.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	users, err := r.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	for _, u := range users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}

	return nil, nil
}

func (r *UserRepository) Save(_ context.Context, user *models.User) error {
	return r.store.put(user.ID, user)
}

func (r *UserRepository) Delete(_ context.Context, id string) error {
	return r.store.remove(id)
}
