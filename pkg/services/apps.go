package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dukex/caseflow/pkg/events"
	"github.com/dukex/caseflow/pkg/models"
	"github.com/dukex/caseflow/pkg/otelhelper"
	"github.com/dukex/caseflow/pkg/persistence"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

const (
	defaultAppIcon       = "📁"
	defaultAppThemeColor = "blue"
)

// Apps manages the workspaces that own a workflow and its cases.
type Apps struct {
	*base

	logger *slog.Logger
}

type CreateAppInput struct {
	Name       string `validate:"required"`
	Icon       string
	ThemeColor string
}

type UpdateAppInput struct {
	Name       *string
	Icon       *string
	ThemeColor *string
}

func (s *Apps) List(ctx context.Context) ([]*models.App, error) {
	apps, err := s.persistence.AppRepository().GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list apps: %w", err)
	}

	return apps, nil
}

func (s *Apps) FetchByID(ctx context.Context, id string) (*models.App, error) {
	return loadApp(ctx, s.base, "fetch_app", id)
}

// Create stores a new app whose workflow starts as a fresh copy of the default workflow.
func (s *Apps) Create(ctx context.Context, in CreateAppInput) (*models.App, error) {
	ctx, span := otelhelper.StartSpan(ctx, s.tracer, "apps.create")
	defer span.End()

	in.Name = strings.TrimSpace(in.Name)

	err := s.validate.Struct(in)
	if err != nil {
		return nil, NewValidationError("create_app", "invalid_app", "App name is required", ErrInvalidRequest)
	}

	if in.Icon == "" {
		in.Icon = defaultAppIcon
	}

	if in.ThemeColor == "" {
		in.ThemeColor = defaultAppThemeColor
	}

	now := time.Now().UTC()
	app := &models.App{
		ID:         "app-" + uuid.NewString(),
		Name:       in.Name,
		Icon:       in.Icon,
		ThemeColor: in.ThemeColor,
		Workflow:   models.DefaultDocument(),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	span.SetAttributes(attribute.String(otelhelper.AppIDKey, app.ID))

	err = s.persistence.AppRepository().Save(ctx, app)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, fmt.Errorf("failed to save app: %w", err)
	}

	s.logger.InfoContext(ctx, "App created", "app_id", app.ID, "name", app.Name)

	return app, nil
}

// Update changes the app metadata. The workflow is edited through Workflows.
func (s *Apps) Update(ctx context.Context, id string, in UpdateAppInput) (*models.App, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	app, err := loadApp(ctx, s.base, "update_app", id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, NewValidationError("update_app", "invalid_app", "App name is required", ErrInvalidRequest)
		}

		app.Name = name
	}

	if in.Icon != nil {
		app.Icon = *in.Icon
	}

	if in.ThemeColor != nil {
		app.ThemeColor = *in.ThemeColor
	}

	app.UpdatedAt = time.Now().UTC()

	err = s.persistence.AppRepository().Save(ctx, app)
	if err != nil {
		return nil, fmt.Errorf("failed to save app: %w", err)
	}

	return app, nil
}

// Delete removes the app together with every case it owns.
func (s *Apps) Delete(ctx context.Context, id string) error {
	ctx, span := otelhelper.StartSpan(ctx, s.tracer, "apps.delete", attribute.String(otelhelper.AppIDKey, id))
	defer span.End()

	unlock := s.locks.Lock(id)
	defer unlock()

	_, err := loadApp(ctx, s.base, "delete_app", id)
	if err != nil {
		return err
	}

	cases, err := s.persistence.CaseRepository().GetByApp(ctx, id)
	if err != nil {
		otelhelper.SetError(span, err)

		return fmt.Errorf("failed to load cases of app: %w", err)
	}

	err = s.persistence.CaseRepository().DeleteByApp(ctx, id)
	if err != nil {
		otelhelper.SetError(span, err)

		return fmt.Errorf("failed to delete cases of app: %w", err)
	}

	err = s.persistence.AppRepository().Delete(ctx, id)
	if err != nil {
		otelhelper.SetError(span, err)

		return fmt.Errorf("failed to delete app: %w", err)
	}

	s.logger.InfoContext(ctx, "App deleted", "app_id", id, "cases_deleted", len(cases))

	s.publish(ctx, id, events.AppDeleted{
		BaseEvent:    events.NewBaseEvent(events.AppDeletedEvent, id),
		CasesDeleted: len(cases),
	})

	return nil
}

func loadApp(ctx context.Context, b *base, op, id string) (*models.App, error) {
	app, err := b.persistence.AppRepository().GetByID(ctx, id)
	if err != nil {
		return nil, persistence.NewAppError(op, id, err)
	}

	if app == nil {
		return nil, persistence.NewAppError(op, id, persistence.ErrAppNotFound)
	}

	return app, nil
}
