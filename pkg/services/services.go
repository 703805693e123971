package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dukex/caseflow/pkg/eventbus"
	"github.com/dukex/caseflow/pkg/otelhelper"
	"github.com/dukex/caseflow/pkg/persistence"
	"github.com/dukex/caseflow/pkg/progression"
	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel/trace"
)

// Services groups the application services sharing one set of collaborators.
type Services struct {
	Apps      *Apps
	Workflows *Workflows
	Cases     *Cases
	Users     *Users

	base *base
}

type Option func(*base)

// WithEventPublisher sets where change notifications go. Without one, nothing is published.
func WithEventPublisher(publisher eventbus.EventPublisher) Option {
	return func(b *base) {
		b.publisher = publisher
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(b *base) {
		b.logger = logger
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(b *base) {
		b.tracer = tracer
	}
}

func WithEngine(engine *progression.Engine) Option {
	return func(b *base) {
		b.engine = engine
	}
}

type base struct {
	persistence persistence.Persistence
	publisher   eventbus.EventPublisher
	logger      *slog.Logger
	tracer      trace.Tracer
	engine      *progression.Engine
	validate    *validator.Validate
	locks       *keyedMutex
}

// New creates the services over p.
func New(p persistence.Persistence, opts ...Option) *Services {
	b := &base{
		persistence: p,
		logger:      slog.Default(),
		tracer:      otelhelper.NoopTracer(),
		validate:    validator.New(validator.WithRequiredStructEnabled()),
		locks:       newKeyedMutex(),
	}

	for _, opt := range opts {
		opt(b)
	}

	if b.engine == nil {
		b.engine = progression.New(progression.WithLogger(b.logger.With("module", "progression")))
	}

	return &Services{
		Apps:      &Apps{base: b, logger: b.logger.With("module", "apps")},
		Workflows: &Workflows{base: b, logger: b.logger.With("module", "workflows")},
		Cases:     &Cases{base: b, logger: b.logger.With("module", "cases")},
		Users:     &Users{base: b, logger: b.logger.With("module", "users")},
		base:      b,
	}
}

// HealthCheck checks the health of the persistence layer.
func (s *Services) HealthCheck(ctx context.Context) (string, bool) {
	if s.base.persistence == nil {
		return "Persistence layer not initialized", false
	}

	err := s.base.persistence.HealthCheck(ctx)
	if err != nil {
		return "Persistence layer is unhealthy: " + err.Error(), false
	}

	return "Persistence layer is healthy", true
}

// publish sends event after the change it describes is stored. Failures are
// logged; the stored change stands.
func (b *base) publish(ctx context.Context, key string, event eventbus.Event) {
	if b.publisher == nil {
		return
	}

	err := b.publisher.Publish(ctx, key, event)
	if err != nil {
		b.logger.WarnContext(ctx, "Failed to publish event", "event_type", event.GetType(), "key", key, "error", err)
	}
}

// keyedMutex serializes work on one key while leaving other keys free.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedLock
}

type keyedLock struct {
	sync.Mutex

	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*keyedLock)}
}

// Lock blocks until key is free and returns its unlock function.
func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()

	l, ok := k.locks[key]
	if !ok {
		l = &keyedLock{}
		k.locks[key] = l
	}

	l.refs++
	k.mu.Unlock()

	l.Lock()

	return func() {
		l.Unlock()

		k.mu.Lock()
		defer k.mu.Unlock()

		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
	}
}

// checkAssignee refuses assignee ids the user directory does not know.
func (b *base) checkAssignee(ctx context.Context, op, userID string) error {
	user, err := b.persistence.UserRepository().GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load assignee: %w", err)
	}

	if user == nil {
		return NewValidationError(op, "unknown_assignee", "Assignee "+userID+" does not exist", ErrUnknownAssignee)
	}

	return nil
}
