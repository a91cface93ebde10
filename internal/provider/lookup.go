package provider

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/solatis/automata/internal/objectpath"
	"github.com/solatis/automata/internal/types"
	"github.com/solatis/automata/internal/value"
)

// Navigation expression kinds.
const (
	KindObjectPathLookup = "objectPathLookup"
	KindJSONTextParse    = "jsonTextParse"
	KindVariableValue    = "variableValue"
)

// RegisterNavigation registers the path lookup and JSON parsing providers.
func RegisterNavigation(reg *Registry) {
	Register(reg, KindObjectPathLookup, value.JSON, decodeObjectPathLookup)
	Register(reg, KindJSONTextParse, value.JSON, decodeJSONTextParse)
	Register(reg, KindVariableValue, value.JSON, decodeVariableValue)
}

// objectPathLookup { path, object?, valueIfNotFound? }

type objectPathLookupBuilder struct {
	path     string
	pointer  Builder[string]
	object   Builder[any] // nil: the data-context root
	fallback Builder[any] // nil: absence is a lookup error
}

func decodeObjectPathLookup(d *Decoder, path string, body json.RawMessage) (Builder[any], error) {
	props, err := d.Properties(path, body, []string{"path"}, "object", "valueIfNotFound")
	if err != nil {
		return nil, err
	}

	b := &objectPathLookupBuilder{path: path}
	if b.pointer, err = Decode(d, path, "path", props["path"], value.Text); err != nil {
		return nil, err
	}
	if raw, ok := props["object"]; ok {
		if b.object, err = Decode(d, path, "object", raw, value.JSON); err != nil {
			return nil, err
		}
	}
	if raw, ok := props["valueIfNotFound"]; ok {
		if b.fallback, err = Decode(d, path, "valueIfNotFound", raw, value.JSON); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func (b *objectPathLookupBuilder) Build(deps Dependencies) (Provider[any], error) {
	p := &objectPathLookupProvider{path: b.path}
	var err error
	if p.pointer, err = b.pointer.Build(deps); err != nil {
		return nil, err
	}
	if b.object != nil {
		if p.object, err = b.object.Build(deps); err != nil {
			return nil, err
		}
	}
	if b.fallback != nil {
		if p.fallback, err = b.fallback.Build(deps); err != nil {
			return nil, err
		}
	}
	return p, nil
}

type objectPathLookupProvider struct {
	path     string
	pointer  Provider[string]
	object   Provider[any]
	fallback Provider[any]
}

func (p *objectPathLookupProvider) Resolve(ctx context.Context, pc *Context) (value.Data[any], error) {
	var (
		ptr value.Data[string]
		obj value.Data[any]
		err error
	)
	if p.object != nil {
		ptr, obj, err = Resolve2(ctx, pc, p.path, p.pointer, p.object)
	} else {
		ptr, err = p.pointer.Resolve(ctx, pc)
		obj = value.NewData(pc.Root(), pc.Root())
	}
	if err != nil {
		return value.Data[any]{}, err
	}

	pointer, err := objectpath.Parse(ptr.Value)
	if err != nil {
		return value.Data[any]{}, types.FormatError(ChildPath(p.path, "path"), "path",
			types.TitleInvalidPathFormat, ptr.Value, "object path")
	}

	found, err := objectpath.Resolve(pointer, obj.Value)
	switch {
	case err == nil:
		return value.NewData(found, found), nil
	case errors.Is(err, objectpath.ErrNotFound) && p.fallback != nil:
		return p.fallback.Resolve(ctx, pc)
	case errors.Is(err, objectpath.ErrNotFound):
		return value.Data[any]{}, types.LookupError(p.path, "path", ptr.Value)
	default:
		return value.Data[any]{}, types.FormatError(ChildPath(p.path, "path"), "path",
			types.TitleInvalidPathFormat, ptr.Value, "object path")
	}
}

// jsonTextParse { text }

func decodeJSONTextParse(d *Decoder, path string, body json.RawMessage) (Builder[any], error) {
	props, err := d.Properties(path, body, []string{"text"})
	if err != nil {
		return nil, err
	}
	text, err := Decode(d, path, "text", props["text"], value.Text)
	if err != nil {
		return nil, err
	}

	return BuilderFunc[any](func(deps Dependencies) (Provider[any], error) {
		tp, err := text.Build(deps)
		if err != nil {
			return nil, err
		}
		return ProviderFunc[any](func(ctx context.Context, pc *Context) (value.Data[any], error) {
			t, err := tp.Resolve(ctx, pc)
			if err != nil {
				return value.Data[any]{}, err
			}
			parsed, err := value.DecodeJSON([]byte(t.Value))
			if err != nil {
				return value.Data[any]{}, types.FormatError(ChildPath(path, "text"), "text",
					types.TitleInvalidJSONFormat, t.Value, "JSON document")
			}
			return value.NewData(parsed, t.Value), nil
		}), nil
	}), nil
}

// variableValue { name }

func decodeVariableValue(d *Decoder, path string, body json.RawMessage) (Builder[any], error) {
	props, err := d.Properties(path, body, []string{"name"})
	if err != nil {
		return nil, err
	}
	name, err := Decode(d, path, "name", props["name"], value.Text)
	if err != nil {
		return nil, err
	}

	return BuilderFunc[any](func(deps Dependencies) (Provider[any], error) {
		np, err := name.Build(deps)
		if err != nil {
			return nil, err
		}
		return ProviderFunc[any](func(ctx context.Context, pc *Context) (value.Data[any], error) {
			n, err := np.Resolve(ctx, pc)
			if err != nil {
				return value.Data[any]{}, err
			}
			v, ok := pc.Variables()[n.Value]
			if !ok {
				return value.Data[any]{}, types.LookupError(path, "name",
					objectpath.Pointer{"variables", n.Value}.String())
			}
			return value.NewData(v, v), nil
		}), nil
	}), nil
}
