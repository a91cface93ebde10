package provider

import (
	"context"

	"github.com/solatis/automata/internal/types"
	"github.com/solatis/automata/internal/value"
)

// staticProvider resolves to a fixed value.
type staticProvider[T any] struct {
	data value.Data[T]
}

func (p *staticProvider[T]) Resolve(ctx context.Context, _ *Context) (value.Data[T], error) {
	return p.data, nil
}

// Static returns a builder for a fixed, already typed value.
func Static[T any](v T) Builder[T] {
	return BuilderFunc[T](func(Dependencies) (Provider[T], error) {
		return &staticProvider[T]{data: value.NewData(v, any(v))}, nil
	})
}

// staticBuilder holds a literal from the definition. The literal is
// converted to the position's domain in Build, so a malformed literal fails
// before the tree is ever resolved.
type staticBuilder[T any] struct {
	path  string
	field string
	raw   any
	kind  *value.Kind[T]
}

func (b *staticBuilder[T]) Build(Dependencies) (Provider[T], error) {
	v, ok := b.kind.Convert(b.raw)
	if !ok {
		return nil, types.FormatError(b.path, b.field, b.kind.Title, b.raw, b.kind.Name)
	}
	return &staticProvider[T]{data: value.NewData(v, b.raw)}, nil
}

// Literal returns a builder for a JSON-origin literal of kind's domain,
// attributed to path/field. Conversion failures are format errors raised
// from Build.
func Literal[T any](path, field string, raw any, kind *value.Kind[T]) Builder[T] {
	return &staticBuilder[T]{path: ChildPath(path, field), field: field, raw: raw, kind: kind}
}
