package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"sync"

	"github.com/solatis/automata/internal/types"
	"github.com/solatis/automata/internal/value"
	"golang.org/x/sync/errgroup"
)

// DataContext is the automation's runtime data: the triggering payload and
// the user-declared variables, addressed as /trigger/... and /variables/...
type DataContext interface {
	Trigger() any
	Variables() map[string]any
}

// MapDataContext is the default DataContext. Variables may be set between
// evaluations; each Context takes a snapshot when it is created.
type MapDataContext struct {
	mu        sync.RWMutex
	trigger   any
	variables map[string]any
}

// NewMapDataContext creates a data context. Numbers are normalised to
// json.Number so payloads decoded by any means compare consistently.
func NewMapDataContext(trigger any, variables map[string]any) *MapDataContext {
	vars := make(map[string]any, len(variables))
	for k, v := range variables {
		vars[k] = value.Normalize(v)
	}
	return &MapDataContext{trigger: value.Normalize(trigger), variables: vars}
}

// ParseDataContext decodes a JSON trigger payload and a JSON object of
// variables. Either may be empty.
func ParseDataContext(trigger, variables []byte) (*MapDataContext, error) {
	if len(trigger) > types.MaxPayloadSize {
		return nil, types.ErrPayloadTooLarge
	}

	var t any
	if len(trigger) > 0 {
		parsed, err := value.DecodeJSON(trigger)
		if err != nil {
			return nil, fmt.Errorf("parse trigger payload: %w", err)
		}
		t = parsed
	}

	vars := map[string]any{}
	if len(variables) > 0 {
		parsed, err := value.DecodeJSON(variables)
		if err != nil {
			return nil, fmt.Errorf("parse variables: %w", err)
		}
		m, ok := parsed.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("variables must be a JSON object")
		}
		vars = m
	}
	if len(vars) > types.MaxVariables {
		return nil, types.ErrTooManyVariables
	}

	return &MapDataContext{trigger: t, variables: vars}, nil
}

// Trigger implements DataContext.
func (m *MapDataContext) Trigger() any {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.trigger
}

// Variables implements DataContext. Returns a copy.
func (m *MapDataContext) Variables() map[string]any {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return maps.Clone(m.variables)
}

// SetVariable declares or replaces a variable.
func (m *MapDataContext) SetVariable(name string, v any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.variables[name]; !exists && len(m.variables) >= types.MaxVariables {
		return types.ErrTooManyVariables
	}
	m.variables[name] = value.Normalize(v)
	return nil
}

// MarshalJSON renders the navigation root.
func (m *MapDataContext) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{"trigger": m.Trigger(), "variables": m.Variables()})
}

// Context is the per-resolution bundle handed down the provider tree
// (the ProviderContext). It is read-only once created.
type Context struct {
	data        DataContext
	root        map[string]any
	parallel    bool
	maxParallel int
}

// Option configures a Context.
type Option func(*Context)

// WithParallel resolves independent sibling operands concurrently, at most
// limit at a time per fan-out (limit <= 0 means unbounded).
func WithParallel(limit int) Option {
	return func(c *Context) {
		c.parallel = true
		c.maxParallel = limit
	}
}

// NewContext snapshots data for one top-level resolution.
func NewContext(data DataContext, opts ...Option) *Context {
	c := &Context{data: data}
	if data != nil {
		c.root = map[string]any{
			"trigger":   data.Trigger(),
			"variables": data.Variables(),
		}
	} else {
		c.root = map[string]any{"trigger": nil, "variables": map[string]any{}}
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Data returns the underlying data context.
func (c *Context) Data() DataContext {
	return c.data
}

// Root returns the navigation root {"trigger": ..., "variables": ...}.
// Callers must not mutate it.
func (c *Context) Root() any {
	return c.root
}

// Variables returns the variable snapshot.
func (c *Context) Variables() map[string]any {
	vars, _ := c.root["variables"].(map[string]any)
	return vars
}

// Run executes steps (the resolution of sibling operands) in written order.
// Sequentially, the first failure stops the remaining steps. In parallel
// mode all steps run to completion and the failure of the lowest-indexed
// step is returned, so reported errors do not depend on scheduling.
// Cancellation of ctx yields a cancellation failure attributed to path.
func (c *Context) Run(ctx context.Context, path string, steps ...func(context.Context) error) error {
	if !c.parallel || len(steps) < 2 {
		for _, step := range steps {
			if err := ctx.Err(); err != nil {
				return types.Cancelled(path, err)
			}
			if err := step(ctx); err != nil {
				return err
			}
		}
		return nil
	}

	errs := make([]error, len(steps))
	var g errgroup.Group
	if c.maxParallel > 0 {
		g.SetLimit(c.maxParallel)
	}
	for i, step := range steps {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				errs[i] = types.Cancelled(path, err)
				return nil
			}
			errs[i] = step(ctx)
			return nil
		})
	}
	_ = g.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// Resolve2 resolves two sibling operands.
func Resolve2[A, B any](ctx context.Context, pc *Context, path string, a Provider[A], b Provider[B]) (value.Data[A], value.Data[B], error) {
	var da value.Data[A]
	var db value.Data[B]
	err := pc.Run(ctx, path,
		func(ctx context.Context) (err error) {
			da, err = a.Resolve(ctx, pc)
			return err
		},
		func(ctx context.Context) (err error) {
			db, err = b.Resolve(ctx, pc)
			return err
		},
	)
	return da, db, err
}

// Resolve3 resolves three sibling operands.
func Resolve3[A, B, C any](ctx context.Context, pc *Context, path string, a Provider[A], b Provider[B], c Provider[C]) (value.Data[A], value.Data[B], value.Data[C], error) {
	var da value.Data[A]
	var db value.Data[B]
	var dc value.Data[C]
	err := pc.Run(ctx, path,
		func(ctx context.Context) (err error) {
			da, err = a.Resolve(ctx, pc)
			return err
		},
		func(ctx context.Context) (err error) {
			db, err = b.Resolve(ctx, pc)
			return err
		},
		func(ctx context.Context) (err error) {
			dc, err = c.Resolve(ctx, pc)
			return err
		},
	)
	return da, db, dc, err
}

// ResolveAll resolves a homogeneous list of sibling operands.
func ResolveAll[T any](ctx context.Context, pc *Context, path string, ps []Provider[T]) ([]value.Data[T], error) {
	out := make([]value.Data[T], len(ps))
	steps := make([]func(context.Context) error, len(ps))
	for i, p := range ps {
		steps[i] = func(ctx context.Context) (err error) {
			out[i], err = p.Resolve(ctx, pc)
			return err
		}
	}
	if err := pc.Run(ctx, path, steps...); err != nil {
		return nil, err
	}
	return out, nil
}
