package conditions

import (
	"context"
	"encoding/json"

	"github.com/solatis/automata/internal/provider"
	"github.com/solatis/automata/internal/value"
)

// Collection condition kinds.
const (
	KindListContainsValue      = "listContainsValueCondition"
	KindObjectContainsProperty = "objectContainsPropertyCondition"
)

func registerCollections(reg *provider.Registry) {
	provider.Register(reg, KindListContainsValue, value.Boolean, decodeListContainsValue)
	provider.Register(reg, KindObjectContainsProperty, value.Boolean, decodeObjectContainsProperty)
}

// listContainsValueCondition { list, value }: true when some element of list
// is structurally equal to value (see value.Equal).
func decodeListContainsValue(d *provider.Decoder, path string, body json.RawMessage) (provider.Builder[bool], error) {
	props, err := d.Properties(path, body, []string{"list", "value"})
	if err != nil {
		return nil, err
	}
	list, err := provider.Decode(d, path, "list", props["list"], value.List)
	if err != nil {
		return nil, err
	}
	candidate, err := provider.Decode(d, path, "value", props["value"], value.JSON)
	if err != nil {
		return nil, err
	}
	return binary(path, list, candidate, func(l []any, v any) bool {
		for _, elem := range l {
			if value.Equal(elem, v) {
				return true
			}
		}
		return false
	}), nil
}

// objectContainsPropertyCondition { object, property }: true when the
// property is present, whatever its value (null included).
func decodeObjectContainsProperty(d *provider.Decoder, path string, body json.RawMessage) (provider.Builder[bool], error) {
	props, err := d.Properties(path, body, []string{"object", "property"})
	if err != nil {
		return nil, err
	}
	object, err := provider.Decode(d, path, "object", props["object"], value.Object)
	if err != nil {
		return nil, err
	}
	property, err := provider.Decode(d, path, "property", props["property"], value.Text)
	if err != nil {
		return nil, err
	}
	return binary(path, object, property, func(o map[string]any, name string) bool {
		_, ok := o[name]
		return ok
	}), nil
}

// binary builds a condition over two operands of possibly different domains.
func binary[A, B any](path string, a provider.Builder[A], b provider.Builder[B], test func(A, B) bool) provider.Builder[bool] {
	return provider.BuilderFunc[bool](func(deps provider.Dependencies) (provider.Provider[bool], error) {
		ap, err := a.Build(deps)
		if err != nil {
			return nil, err
		}
		bp, err := b.Build(deps)
		if err != nil {
			return nil, err
		}
		return provider.ProviderFunc[bool](func(ctx context.Context, pc *provider.Context) (value.Data[bool], error) {
			av, bv, err := provider.Resolve2(ctx, pc, path, ap, bp)
			if err != nil {
				return value.Data[bool]{}, err
			}
			result := test(av.Value, bv.Value)
			return value.NewData(result, result), nil
		}), nil
	})
}
