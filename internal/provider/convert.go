package provider

import (
	"context"

	"github.com/solatis/automata/internal/types"
	"github.com/solatis/automata/internal/value"
)

// Erased adapts b to produce untyped values.
func Erased[T any](b Builder[T]) Builder[any] {
	if eb, ok := b.(Builder[any]); ok {
		return eb
	}
	return BuilderFunc[any](func(deps Dependencies) (Provider[any], error) {
		p, err := b.Build(deps)
		if err != nil {
			return nil, err
		}
		return ProviderFunc[any](func(ctx context.Context, pc *Context) (value.Data[any], error) {
			d, err := p.Resolve(ctx, pc)
			if err != nil {
				return value.Data[any]{}, err
			}
			return value.Erase(d), nil
		}), nil
	})
}

// convertBuilder adapts an expression of another domain to kind's domain.
// Conversion happens on every resolution since the source value is only
// known then.
type convertBuilder[T any] struct {
	path  string
	field string
	src   Builder[any]
	kind  *value.Kind[T]
}

func (b *convertBuilder[T]) Build(deps Dependencies) (Provider[T], error) {
	src, err := b.src.Build(deps)
	if err != nil {
		return nil, err
	}
	return &convertProvider[T]{path: b.path, field: b.field, src: src, kind: b.kind}, nil
}

type convertProvider[T any] struct {
	path  string
	field string
	src   Provider[any]
	kind  *value.Kind[T]
}

func (p *convertProvider[T]) Resolve(ctx context.Context, pc *Context) (value.Data[T], error) {
	d, err := p.src.Resolve(ctx, pc)
	if err != nil {
		return value.Data[T]{}, err
	}
	v, ok := p.kind.Convert(d.Value)
	if !ok {
		return value.Data[T]{}, types.FormatError(p.path, p.field, p.kind.Title, d.Value, p.kind.Name)
	}
	return value.NewData(v, d.Raw), nil
}
