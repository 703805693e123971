// Package redis provides a Redis-backed persistence implementation: JSON values
// under per-entity keys plus set indexes for listing.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/dukex/caseflow/pkg/models"
	"github.com/dukex/caseflow/pkg/persistence"
	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix     = "caseflow:"
	appKeyPrefix  = keyPrefix + "app:"
	caseKeyPrefix = keyPrefix + "case:"
	userKeyPrefix = keyPrefix + "user:"
	appsIndexKey  = keyPrefix + "apps"
	usersIndexKey = keyPrefix + "users"
	emailIndexKey = keyPrefix + "users:email"
)

func appKey(id string) string        { return appKeyPrefix + id }
func appCasesKey(id string) string   { return appKeyPrefix + id + ":cases" }
func caseKey(id string) string       { return caseKeyPrefix + id }
func userKey(id string) string       { return userKeyPrefix + id }
func emailField(email string) string { return strings.ToLower(email) }

// Persistence implements persistence.Persistence on a Redis client.
type Persistence struct {
	client   redis.UniversalClient
	logger   *slog.Logger
	appRepo  *AppRepository
	caseRepo *CaseRepository
	userRepo *UserRepository
}

// NewPersistence connects to the Redis server described by url (redis://...).
func NewPersistence(ctx context.Context, logger *slog.Logger, url string) (*Persistence, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	err = client.Ping(ctx).Err()
	if err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return New(logger, client), nil
}

// New wraps an existing client.
func New(logger *slog.Logger, client redis.UniversalClient) *Persistence {
	return &Persistence{
		client:   client,
		logger:   logger,
		appRepo:  &AppRepository{client: client},
		caseRepo: &CaseRepository{client: client},
		userRepo: &UserRepository{client: client},
	}
}

func (p *Persistence) AppRepository() persistence.AppRepository   { return p.appRepo }
func (p *Persistence) CaseRepository() persistence.CaseRepository { return p.caseRepo }
func (p *Persistence) UserRepository() persistence.UserRepository { return p.userRepo }

// HealthCheck pings the server.
func (p *Persistence) HealthCheck(ctx context.Context) error {
	err := p.client.Ping(ctx).Err()
	if err != nil {
		return fmt.Errorf("failed to ping redis: %w", err)
	}

	return nil
}

func (p *Persistence) Close(_ context.Context) error {
	err := p.client.Close()
	if err != nil {
		return fmt.Errorf("failed to close redis client: %w", err)
	}

	return nil
}

func getJSON[T any](ctx context.Context, client redis.UniversalClient, key string) (*T, error) {
	data, err := client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", key, err)
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}

	return &v, nil
}

// getMembers loads every value whose id is a member of indexKey. Stale index
// entries are skipped.
func getMembers[T any](ctx context.Context, client redis.UniversalClient, indexKey string, key func(string) string) ([]*T, error) {
	ids, err := client.SMembers(ctx, indexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read index %s: %w", indexKey, err)
	}

	values := make([]*T, 0, len(ids))
	if len(ids) == 0 {
		return values, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = key(id)
	}

	raw, err := client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load %s members: %w", indexKey, err)
	}

	for i, item := range raw {
		s, ok := item.(string)
		if !ok {
			continue
		}

		var v T
		if err := json.Unmarshal([]byte(s), &v); err != nil {
			return nil, fmt.Errorf("failed to unmarshal %s: %w", keys[i], err)
		}

		values = append(values, &v)
	}

	return values, nil
}

// AppRepository stores apps under caseflow:app:<id>.
type AppRepository struct {
	client redis.UniversalClient
}

func (r *AppRepository) GetAll(ctx context.Context) ([]*models.App, error) {
	apps, err := getMembers[models.App](ctx, r.client, appsIndexKey, appKey)
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

func (r *AppRepository) GetByID(ctx context.Context, id string) (*models.App, error) {
	return getJSON[models.App](ctx, r.client, appKey(id))
}

func (r *AppRepository) Save(ctx context.Context, app *models.App) error {
	now := time.Now().UTC()
	if app.CreatedAt.IsZero() {
		app.CreatedAt = now
	}

	if app.UpdatedAt.IsZero() {
		app.UpdatedAt = now
	}

	data, err := json.Marshal(app)
	if err != nil {
		return fmt.Errorf("failed to marshal app %s: %w", app.ID, err)
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, appKey(app.ID), data, 0)
		pipe.SAdd(ctx, appsIndexKey, app.ID)

		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save app %s: %w", app.ID, err)
	}

	return nil
}

// Delete removes the app and every case indexed under it.
func (r *AppRepository) Delete(ctx context.Context, id string) error {
	caseIDs, err := r.client.SMembers(ctx, appCasesKey(id)).Result()
	if err != nil {
		return fmt.Errorf("failed to read cases of app %s: %w", id, err)
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, caseID := range caseIDs {
			pipe.Del(ctx, caseKey(caseID))
		}

		pipe.Del(ctx, appKey(id), appCasesKey(id))
		pipe.SRem(ctx, appsIndexKey, id)

		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete app %s: %w", id, err)
	}

	return nil
}

// CaseRepository stores cases under caseflow:case:<id>, indexed per app.
type CaseRepository struct {
	client redis.UniversalClient
}

func (r *CaseRepository) GetByID(ctx context.Context, id string) (*models.Case, error) {
	return getJSON[models.Case](ctx, r.client, caseKey(id))
}

// GetByApp returns the cases of an app, newest first.
func (r *CaseRepository) GetByApp(ctx context.Context, appID string) ([]*models.Case, error) {
	cases, err := getMembers[models.Case](ctx, r.client, appCasesKey(appID), caseKey)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(cases, func(i, j int) bool {
		if cases[i].CreatedAt.Equal(cases[j].CreatedAt) {
			return cases[i].ID > cases[j].ID
		}

		return cases[i].CreatedAt.After(cases[j].CreatedAt)
	})

	return cases, nil
}

func (r *CaseRepository) Save(ctx context.Context, c *models.Case) error {
	now := time.Now().UTC()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}

	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = now
	}

	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal case %s: %w", c.ID, err)
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, caseKey(c.ID), data, 0)
		pipe.SAdd(ctx, appCasesKey(c.AppID), c.ID)

		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save case %s: %w", c.ID, err)
	}

	return nil
}

func (r *CaseRepository) Delete(ctx context.Context, id string) error {
	c, err := r.GetByID(ctx, id)
	if err != nil || c == nil {
		return err
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, caseKey(id))
		pipe.SRem(ctx, appCasesKey(c.AppID), id)

		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete case %s: %w", id, err)
	}

	return nil
}

func (r *CaseRepository) DeleteByApp(ctx context.Context, appID string) error {
	caseIDs, err := r.client.SMembers(ctx, appCasesKey(appID)).Result()
	if err != nil {
		return fmt.Errorf("failed to read cases of app %s: %w", appID, err)
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, caseID := range caseIDs {
			pipe.Del(ctx, caseKey(caseID))
		}

		pipe.Del(ctx, appCasesKey(appID))

		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete cases of app %s: %w", appID, err)
	}

	return nil
}

// UserRepository stores users under caseflow:user:<id> with a lower-cased email index.
type UserRepository struct {
	client redis.UniversalClient
}

func (r *UserRepository) GetAll(ctx context.Context) ([]*models.User, error) {
	users, err := getMembers[models.User](ctx, r.client, usersIndexKey, userKey)
	if err != nil {
		return nil, err
	}

	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })

	return users, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return getJSON[models.User](ctx, r.client, userKey(id))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	id, err := r.client.HGet(ctx, emailIndexKey, emailField(email)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to look up email: %w", err)
	}

	return r.GetByID(ctx, id)
}

func (r *UserRepository) Save(ctx context.Context, user *models.User) error {
	previous, err := r.GetByID(ctx, user.ID)
	if err != nil {
		return err
	}

	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to marshal user %s: %w", user.ID, err)
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if previous != nil && emailField(previous.Email) != emailField(user.Email) {
			pipe.HDel(ctx, emailIndexKey, emailField(previous.Email))
		}

		pipe.Set(ctx, userKey(user.ID), data, 0)
		pipe.SAdd(ctx, usersIndexKey, user.ID)
		pipe.HSet(ctx, emailIndexKey, emailField(user.Email), user.ID)

		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save user %s: %w", user.ID, err)
	}

	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	user, err := r.GetByID(ctx, id)
	if err != nil || user == nil {
		return err
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, userKey(id))
		pipe.SRem(ctx, usersIndexKey, id)
		pipe.HDel(ctx, emailIndexKey, emailField(user.Email))

		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete user %s: %w", id, err)
	}

	return nil
}
