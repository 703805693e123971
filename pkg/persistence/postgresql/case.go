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

// CaseRepository handles case-related database operations.
type CaseRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewCaseRepository creates a new case repository.
func NewCaseRepository(db *sql.DB, logger *slog.Logger) *CaseRepository {
	return &CaseRepository{db: db, logger: logger}
}

const caseColumns = `
			id
		  , app_id
		  , title
		  , description
		  , status
		  , priority
		  , assignee_id
		  , client
		  , tags
		  , current_workflow_step_id
		  , workflow_history
		  , form_data
		  , created_at
		  , updated_at
`

func (r *CaseRepository) GetByID(ctx context.Context, id string) (*models.Case, error) {
	query := `SELECT ` + caseColumns + ` FROM cases WHERE id = $1`

	c, err := scanCase(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to scan case: %w", err)
	}

	return c, nil
}

// GetByApp returns the cases of an app, newest first.
func (r *CaseRepository) GetByApp(ctx context.Context, appID string) ([]*models.Case, error) {
	query := `SELECT ` + caseColumns + ` FROM cases WHERE app_id = $1 ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, appID)
	if err != nil {
		return nil, fmt.Errorf("failed to query cases: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	cases := make([]*models.Case, 0)

	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan case: %w", err)
		}

		cases = append(cases, c)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating cases: %w", err)
	}

	return cases, nil
}

// Save upserts a case. History, tags and form data are stored as JSONB.
func (r *CaseRepository) Save(ctx context.Context, c *models.Case) error {
	now := time.Now().UTC()

	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}

	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = now
	}

	tags := c.Tags
	if tags == nil {
		tags = []string{}
	}

	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return fmt.Errorf("failed to marshal tags: %w", err)
	}

	history := c.WorkflowHistory
	if history == nil {
		history = []models.WorkflowEvent{}
	}

	historyJSON, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("failed to marshal workflow history: %w", err)
	}

	formData := c.FormData
	if formData == nil {
		formData = map[string]any{}
	}

	formDataJSON, err := json.Marshal(formData)
	if err != nil {
		return fmt.Errorf("failed to marshal form data: %w", err)
	}

	query := `
		INSERT INTO cases (id, app_id, title, description, status, priority, assignee_id, client,
			tags, current_workflow_step_id, workflow_history, form_data, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			status = EXCLUDED.status,
			priority = EXCLUDED.priority,
			assignee_id = EXCLUDED.assignee_id,
			client = EXCLUDED.client,
			tags = EXCLUDED.tags,
			current_workflow_step_id = EXCLUDED.current_workflow_step_id,
			workflow_history = EXCLUDED.workflow_history,
			form_data = EXCLUDED.form_data,
			updated_at = EXCLUDED.updated_at
	`

	_, err = r.db.ExecContext(ctx, query,
		c.ID,
		c.AppID,
		c.Title,
		c.Description,
		c.Status,
		c.Priority,
		nullString(c.AssigneeID),
		c.Client,
		tagsJSON,
		c.CurrentWorkflowStepID,
		historyJSON,
		formDataJSON,
		c.CreatedAt,
		c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save case: %w", err)
	}

	return nil
}

func (r *CaseRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM cases WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete case: %w", err)
	}

	return nil
}

func (r *CaseRepository) DeleteByApp(ctx context.Context, appID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM cases WHERE app_id = $1`, appID)
	if err != nil {
		return fmt.Errorf("failed to delete cases of app: %w", err)
	}

	return nil
}

func scanCase(scanner interface{ Scan(dest ...any) error }) (*models.Case, error) {
	var (
		c            models.Case
		assigneeID   sql.NullString
		currentStep  sql.NullString
		tagsJSON     []byte
		historyJSON  []byte
		formDataJSON []byte
	)

	err := scanner.Scan(
		&c.ID,
		&c.AppID,
		&c.Title,
		&c.Description,
		&c.Status,
		&c.Priority,
		&assigneeID,
		&c.Client,
		&tagsJSON,
		&currentStep,
		&historyJSON,
		&formDataJSON,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	c.AssigneeID = assigneeID.String

	if currentStep.Valid {
		c.AtStep(currentStep.String)
	}

	if err := json.Unmarshal(tagsJSON, &c.Tags); err != nil {
		return nil, fmt.Errorf("failed to unmarshal tags: %w", err)
	}

	if err := json.Unmarshal(historyJSON, &c.WorkflowHistory); err != nil {
		return nil, fmt.Errorf("failed to unmarshal workflow history: %w", err)
	}

	if err := json.Unmarshal(formDataJSON, &c.FormData); err != nil {
		return nil, fmt.Errorf("failed to unmarshal form data: %w", err)
	}

	c.CreatedAt = c.CreatedAt.UTC()
	c.UpdatedAt = c.UpdatedAt.UTC()

	return &c, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
