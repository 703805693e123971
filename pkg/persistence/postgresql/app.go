package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dukex/caseflow/pkg/models"
)

// AppRepository handles app-related database operations.
type AppRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewAppRepository creates a new app repository.
func NewAppRepository(db *sql.DB, logger *slog.Logger) *AppRepository {
	return &AppRepository{db: db, logger: logger}
}

const appColumns = `
			id
		  , name
		  , icon
		  , theme_color
		  , workflow
		  , created_at
		  , updated_at
`

// GetAll returns all apps ordered by creation time.
func (r *AppRepository) GetAll(ctx context.Context) ([]*models.App, error) {
	query := `SELECT ` + appColumns + ` FROM apps ORDER BY created_at ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query apps: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	apps := make([]*models.App, 0)

	for rows.Next() {
		app, err := scanApp(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan app: %w", err)
		}

		apps = append(apps, app)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating apps: %w", err)
	}

	return apps, nil
}

func (r *AppRepository) GetByID(ctx context.Context, id string) (*models.App, error) {
	query := `SELECT ` + appColumns + ` FROM apps WHERE id = $1`

	app, err := scanApp(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to scan app: %w", err)
	}

	return app, nil
}

// Save upserts an app together with its workflow document.
func (r *AppRepository) Save(ctx context.Context, app *models.App) error {
	now := time.Now().UTC()

	if app.CreatedAt.IsZero() {
		app.CreatedAt = now
	}

	if app.UpdatedAt.IsZero() {
		app.UpdatedAt = now
	}

	workflowJSON, err := json.Marshal(app.Workflow)
	if err != nil {
		return fmt.Errorf("failed to marshal workflow: %w", err)
	}

	query := `
		INSERT INTO apps (id, name, icon, theme_color, workflow, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			icon = EXCLUDED.icon,
			theme_color = EXCLUDED.theme_color,
			workflow = EXCLUDED.workflow,
			updated_at = EXCLUDED.updated_at
	`

	_, err = r.db.ExecContext(ctx, query,
		app.ID,
		app.Name,
		app.Icon,
		app.ThemeColor,
		workflowJSON,
		app.CreatedAt,
		app.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save app: %w", err)
	}

	return nil
}

// Delete removes an app. Its cases go with it through the foreign key cascade.
func (r *AppRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM apps WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete app: %w", err)
	}

	return nil
}

func scanApp(scanner interface{ Scan(dest ...any) error }) (*models.App, error) {
	var (
		app          models.App
		workflowJSON []byte
	)

	err := scanner.Scan(
		&app.ID,
		&app.Name,
		&app.Icon,
		&app.ThemeColor,
		&workflowJSON,
		&app.CreatedAt,
		&app.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	err = json.Unmarshal(workflowJSON, &app.Workflow)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal workflow: %w", err)
	}

	app.CreatedAt = app.CreatedAt.UTC()
	app.UpdatedAt = app.UpdatedAt.UTC()

	return &app, nil
}
