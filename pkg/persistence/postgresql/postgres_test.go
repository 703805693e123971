package postgresql_test

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/dukex/caseflow/pkg/models"
	"github.com/dukex/caseflow/pkg/persistence/postgresql"
	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

var postgresContainer *postgres.PostgresContainer

func dropDb(ctx context.Context, t *testing.T, databaseURL string) {
	t.Helper()

	db, err := sql.Open("postgres", databaseURL)
	require.NoError(t, err)

	// Drop tables in reverse dependency order (children first, parents last)
	for _, table := range []string{"cases", "apps", "users", "schema_migrations"} {
		_, err = db.ExecContext(ctx, "DROP TABLE IF EXISTS "+table+" CASCADE")
		require.NoError(t, err)
	}

	err = db.Close()
	require.NoError(t, err)
}

func setupTestDB(t *testing.T) (*postgresql.Persistence, context.Context, string) {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping PostgreSQL integration test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)

	if postgresContainer == nil || !postgresContainer.IsRunning() {
		var err error

		postgresContainer, err = postgres.Run(ctx,
			"postgres:16-alpine",
			postgres.WithDatabase("caseflow_test"),
			postgres.WithUsername("caseflow"),
			postgres.WithPassword("caseflow"),
			postgres.BasicWaitStrategies(),
		)
		require.NoError(t, err)
	}

	databaseURL, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	dropDb(ctx, t, databaseURL)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	persistence, err := postgresql.NewPersistence(ctx, logger, databaseURL)
	require.NoError(t, err)

	t.Cleanup(func() {
		dropDb(ctx, t, databaseURL)

		err = persistence.Close(ctx)
		require.NoError(t, err)

		cancel()
	})

	return persistence, ctx, databaseURL
}

func TestNewPersistence_Migrations(t *testing.T) {
	_, ctx, databaseURL := setupTestDB(t)

	db, err := sql.Open("postgres", databaseURL)
	require.NoError(t, err)

	defer func() {
		err := db.Close()
		require.NoError(t, err)
	}()

	for _, table := range []string{"apps", "cases", "users", "schema_migrations"} {
		var exists bool

		err = db.QueryRowContext(ctx, `SELECT EXISTS (SELECT FROM
information_schema.tables WHERE table_name = $1)`, table).Scan(&exists)
		require.NoError(t, err)
		assert.True(t, exists, "%s table should exist", table)
	}

	var version int

	err = db.QueryRowContext(ctx, "SELECT MAX(version) FROM schema_migrations").Scan(&version)
	require.NoError(t, err)
	assert.Equal(t, 2, version)
}

func TestNewPersistence_HealthCheck(t *testing.T) {
	p, ctx, _ := setupTestDB(t)

	err := p.HealthCheck(ctx)
	assert.NoError(t, err)
}

func TestNewPersistence_AppsAndCases(t *testing.T) {
	p, ctx, _ := setupTestDB(t)

	created := time.Date(2024, 4, 1, 10, 0, 0, 0, time.UTC)
	app := &models.App{
		ID:         uuid.NewString(),
		Name:       "Support Desk",
		Icon:       "📞",
		ThemeColor: "blue",
		Workflow:   models.DefaultDocument(),
		CreatedAt:  created,
		UpdatedAt:  created,
	}

	require.NoError(t, p.AppRepository().Save(ctx, app))

	stored, err := p.AppRepository().GetByID(ctx, app.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, app.Name, stored.Name)
	assert.Equal(t, models.DefaultDocument(), stored.Workflow)
	assert.True(t, created.Equal(stored.CreatedAt))

	c := &models.Case{
		ID:              "case-" + uuid.NewString(),
		AppID:           app.ID,
		Title:           "VPN down",
		Description:     "Cannot connect",
		Status:          models.CaseStatusNew,
		Priority:        models.CasePriorityUrgent,
		Client:          "Initech",
		Tags:            []string{"network"},
		WorkflowHistory: []models.WorkflowEvent{},
		FormData:        map[string]any{"triage-notes": "checking", "is-critical": true},
	}
	c.AtStep("start")

	require.NoError(t, p.CaseRepository().Save(ctx, c))

	c.AtStep("triage")
	c.AssigneeID = "user-2"
	c.WorkflowHistory = append(c.WorkflowHistory, models.WorkflowEvent{StepID: "start", UserID: "user-1", CompletedAt: created})
	require.NoError(t, p.CaseRepository().Save(ctx, c))

	got, err := p.CaseRepository().GetByID(ctx, c.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "triage", got.CurrentStep())
	assert.Equal(t, "user-2", got.AssigneeID)
	assert.Equal(t, []string{"network"}, got.Tags)
	assert.Equal(t, true, got.FormData["is-critical"])
	require.Len(t, got.WorkflowHistory, 1)
	assert.True(t, created.Equal(got.WorkflowHistory[0].CompletedAt))

	byApp, err := p.CaseRepository().GetByApp(ctx, app.ID)
	require.NoError(t, err)
	assert.Len(t, byApp, 1)

	require.NoError(t, p.AppRepository().Delete(ctx, app.ID))

	gone, err := p.CaseRepository().GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Nil(t, gone, "cases are removed with their app")

	missing, err := p.AppRepository().GetByID(ctx, app.ID)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestNewPersistence_Users(t *testing.T) {
	p, ctx, _ := setupTestDB(t)

	repo := p.UserRepository()

	require.NoError(t, repo.Save(ctx, &models.User{ID: "user-1", Name: "Alina Petrova", Email: "alina.petrova@example.com", Role: models.UserRoleAdmin}))
	require.NoError(t, repo.Save(ctx, &models.User{ID: "user-2", Name: "Ben Carter", Email: "ben.carter@example.com", Role: models.UserRoleMember}))

	byEmail, err := repo.GetByEmail(ctx, "Alina.Petrova@Example.com")
	require.NoError(t, err)
	require.NotNil(t, byEmail)
	assert.Equal(t, "user-1", byEmail.ID)

	err = repo.Save(ctx, &models.User{ID: "user-3", Name: "Dup", Email: "ALINA.PETROVA@example.com", Role: models.UserRoleMember})
	assert.Error(t, err, "emails are unique regardless of case")

	require.NoError(t, repo.Delete(ctx, "user-2"))

	users, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "Alina Petrova", users[0].Name)
}
