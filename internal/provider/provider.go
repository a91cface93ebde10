// Package provider implements the provider resolution protocol: builders
// decoded from configuration JSON are built once into immutable provider
// trees, which are then resolved any number of times against a Context.
//
// A Provider holds no per-call state, so one tree may be resolved
// concurrently for independent data contexts. Expected failures (malformed
// input, missing data) are returned as *types.Error values, never panics.
package provider

import (
	"context"

	"github.com/solatis/automata/internal/types"
	"github.com/solatis/automata/internal/value"
)

// Provider is a resolvable node producing a T.
type Provider[T any] interface {
	Resolve(ctx context.Context, pc *Context) (value.Data[T], error)
}

// Builder is the decoded, pre-resolution form of a Provider. Build acquires
// host services from deps once; the returned Provider never looks them up again.
type Builder[T any] interface {
	Build(deps Dependencies) (Provider[T], error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc[T any] func(ctx context.Context, pc *Context) (value.Data[T], error)

// Resolve implements Provider.
func (f ProviderFunc[T]) Resolve(ctx context.Context, pc *Context) (value.Data[T], error) {
	return f(ctx, pc)
}

// BuilderFunc adapts a function to Builder.
type BuilderFunc[T any] func(deps Dependencies) (Provider[T], error)

// Build implements Builder.
func (f BuilderFunc[T]) Build(deps Dependencies) (Provider[T], error) {
	return f(deps)
}

// ResolveValue resolves p and unwraps the value. Failures are always
// returned as *types.Error, the boundary where they become host-visible.
func ResolveValue[T any](ctx context.Context, p Provider[T], pc *Context) (T, error) {
	if err := ctx.Err(); err != nil {
		var zero T
		return zero, types.Cancelled("/", err)
	}
	d, err := p.Resolve(ctx, pc)
	if err != nil {
		var zero T
		return zero, types.AsError(err)
	}
	return d.Value, nil
}

// BuildAll builds each builder in order, stopping at the first failure.
func BuildAll[T any](deps Dependencies, builders []Builder[T]) ([]Provider[T], error) {
	out := make([]Provider[T], len(builders))
	for i, b := range builders {
		p, err := b.Build(deps)
		if err != nil {
			return nil, err
		}
		out[i] = p
	}
	return out, nil
}
