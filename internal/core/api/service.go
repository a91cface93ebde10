// Package api provides the gRPC implementation of the automation service.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/text/language"

	"github.com/solatis/automata/internal/automation"
	"github.com/solatis/automata/internal/types"
)

// Store is the persistence the service needs. Implemented by *store.Store.
type Store interface {
	SaveAutomation(ctx context.Context, a *types.Automation) error
	GetAutomation(ctx context.Context, id types.AutomationID) (*types.Automation, error)
	ListAutomations(ctx context.Context, limit int) ([]types.Automation, error)
	DeleteAutomation(ctx context.Context, id types.AutomationID) error
	RecordEvaluation(ctx context.Context, e *types.Evaluation) error
	ListEvaluations(ctx context.Context, id types.AutomationID, limit int) ([]types.Evaluation, error)
}

// Service implements AutomationServer.
// Thin orchestration layer delegating to the engine and the store.
type Service struct {
	engine       *automation.Engine
	store        Store
	logger       *slog.Logger
	locale       language.Tag
	onStoreError func(operation string)

	// Compiled automations keyed by ID, reused while updated_at is unchanged.
	cache sync.Map
}

type cachedAutomation struct {
	updatedAt time.Time
	compiled  *automation.Compiled
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithLocale sets the language errors are rendered in when a request does
// not name one.
func WithLocale(tag language.Tag) Option {
	return func(s *Service) { s.locale = tag }
}

// WithStoreErrorHook is called with the operation name on every store failure.
func WithStoreErrorHook(fn func(operation string)) Option {
	return func(s *Service) { s.onStoreError = fn }
}

// NewService creates the service with its dependencies.
func NewService(engine *automation.Engine, store Store, opts ...Option) (*Service, error) {
	if engine == nil {
		return nil, fmt.Errorf("engine cannot be nil")
	}
	if store == nil {
		return nil, fmt.Errorf("store cannot be nil")
	}

	s := &Service{
		engine:       engine,
		store:        store,
		logger:       slog.Default(),
		locale:       language.English,
		onStoreError: func(string) {},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// compiled returns the compiled form of a stored automation, compiling it
// when the cache is cold or stale.
func (s *Service) compiled(ctx context.Context, id types.AutomationID) (*automation.Compiled, error) {
	a, err := s.store.GetAutomation(ctx, id)
	if err != nil {
		return nil, s.storeError(ctx, "get", err)
	}

	if v, ok := s.cache.Load(id); ok {
		if c := v.(*cachedAutomation); c.updatedAt.Equal(a.UpdatedAt) {
			return c.compiled, nil
		}
	}

	c, err := s.engine.Compile([]byte(a.Definition))
	if err != nil {
		// Stored definitions were valid when saved; failing now means the
		// condition library changed underneath them.
		s.logger.ErrorContext(ctx, "stored automation no longer compiles", "automation_id", id, "error", err)
		return nil, s.errorStatus(err, s.locale)
	}
	s.cache.Store(id, &cachedAutomation{updatedAt: a.UpdatedAt, compiled: c})
	return c, nil
}
