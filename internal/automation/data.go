package automation

import (
	"maps"

	"github.com/solatis/automata/internal/provider"
)

// defaultsContext overlays a definition's declared variables beneath the
// variables of a data context.
type defaultsContext struct {
	base     provider.DataContext
	defaults map[string]any
}

func withDefaults(base provider.DataContext, defaults map[string]any) provider.DataContext {
	return &defaultsContext{base: base, defaults: defaults}
}

func (d *defaultsContext) Trigger() any {
	if d.base == nil {
		return nil
	}
	return d.base.Trigger()
}

func (d *defaultsContext) Variables() map[string]any {
	vars := maps.Clone(d.defaults)
	if d.base != nil {
		maps.Copy(vars, d.base.Variables())
	}
	return vars
}
