package redis_test

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/dukex/caseflow/pkg/models"
	redispersistence "github.com/dukex/caseflow/pkg/persistence/redis"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	rediscontainer "github.com/testcontainers/testcontainers-go/modules/redis"
)

func setupRedis(t *testing.T) (*redispersistence.Persistence, context.Context) {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping Redis integration test in short mode")
	}

	ctx := t.Context()

	redisInstance, err := rediscontainer.Run(ctx, "redis:7-alpine")
	testcontainers.CleanupContainer(t, redisInstance)
	require.NoError(t, err)

	host, err := redisInstance.Host(ctx)
	require.NoError(t, err)

	port, err := redisInstance.MappedPort(ctx, "6379/tcp")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{
		Addr: host + ":" + port.Port(),
	})
	require.NoError(t, client.FlushDB(ctx).Err())

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	p := redispersistence.New(logger, client)

	t.Cleanup(func() {
		_ = p.Close(context.Background())
	})

	return p, ctx
}

func TestRedisPersistence(t *testing.T) {
	p, ctx := setupRedis(t)

	require.NoError(t, p.HealthCheck(ctx))

	t.Run("apps and cases", func(t *testing.T) {
		first := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

		for i, id := range []string{"app-b", "app-a"} {
			require.NoError(t, p.AppRepository().Save(ctx, &models.App{
				ID:        id,
				Name:      id,
				Workflow:  models.DefaultDocument(),
				CreatedAt: first.Add(time.Duration(i) * time.Hour),
			}))
		}

		apps, err := p.AppRepository().GetAll(ctx)
		require.NoError(t, err)
		require.Len(t, apps, 2)
		assert.Equal(t, "app-b", apps[0].ID)
		assert.Equal(t, models.DefaultDocument(), apps[0].Workflow)

		older := &models.Case{ID: "case-1", AppID: "app-a", Title: "Older", CreatedAt: first}
		newer := &models.Case{ID: "case-2", AppID: "app-a", Title: "Newer", CreatedAt: first.Add(time.Hour)}
		older.AtStep("start")

		require.NoError(t, p.CaseRepository().Save(ctx, older))
		require.NoError(t, p.CaseRepository().Save(ctx, newer))

		cases, err := p.CaseRepository().GetByApp(ctx, "app-a")
		require.NoError(t, err)
		require.Len(t, cases, 2)
		assert.Equal(t, "case-2", cases[0].ID)
		assert.Equal(t, "start", cases[1].CurrentStep())

		require.NoError(t, p.CaseRepository().Delete(ctx, "case-2"))

		cases, err = p.CaseRepository().GetByApp(ctx, "app-a")
		require.NoError(t, err)
		assert.Len(t, cases, 1)

		require.NoError(t, p.AppRepository().Delete(ctx, "app-a"))

		gone, err := p.CaseRepository().GetByID(ctx, "case-1")
		require.NoError(t, err)
		assert.Nil(t, gone)

		missing, err := p.AppRepository().GetByID(ctx, "app-a")
		require.NoError(t, err)
		assert.Nil(t, missing)
	})

	t.Run("users", func(t *testing.T) {
		repo := p.UserRepository()

		user := &models.User{ID: "user-1", Name: "Alina", Email: "Alina@Example.com", Role: models.UserRoleAdmin}
		require.NoError(t, repo.Save(ctx, user))

		found, err := repo.GetByEmail(ctx, "alina@example.com")
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, "user-1", found.ID)

		user.Email = "alina.p@example.com"
		require.NoError(t, repo.Save(ctx, user))

		stale, err := repo.GetByEmail(ctx, "alina@example.com")
		require.NoError(t, err)
		assert.Nil(t, stale)

		require.NoError(t, repo.Delete(ctx, "user-1"))
		require.NoError(t, repo.Delete(ctx, "user-1"))

		users, err := repo.GetAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, users)
	})
}
