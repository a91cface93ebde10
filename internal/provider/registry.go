package provider

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/solatis/automata/internal/value"
)

// Factory decodes the body of one expression kind into a builder. path is
// the expression's own path (e.g. "/notCondition"); body is the JSON value
// under the kind's property name.
type Factory[T any] func(d *Decoder, path string, body json.RawMessage) (Builder[T], error)

// decoded is a builder produced by a registered factory, with enough type
// information to adapt it to a position expecting another domain.
type decoded struct {
	builder any    // Builder[T] of the entry's output domain
	output  string // output domain name
	erase   func() Builder[any]
}

type entry struct {
	output string
	decode func(d *Decoder, path string, body json.RawMessage) (decoded, error)
}

// Registry maps expression property names to factories. Packages contribute
// kinds through Register; the decoder consults it without a central switch.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]entry
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]entry)}
}

// Register adds an expression kind producing values of kind's domain.
// Panics if name is already registered; registration is program setup.
func Register[T any](r *Registry, name string, kind *value.Kind[T], f Factory[T]) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[name]; exists {
		panic(fmt.Sprintf("provider: expression kind %q registered twice", name))
	}
	r.entries[name] = entry{
		output: kind.Name,
		decode: func(d *Decoder, path string, body json.RawMessage) (decoded, error) {
			b, err := f(d, path, body)
			if err != nil {
				return decoded{}, err
			}
			return decoded{
				builder: b,
				output:  kind.Name,
				erase:   func() Builder[any] { return Erased(b) },
			}, nil
		},
	}
}

// Has reports whether name is a registered expression kind.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[name]
	return ok
}

// Names returns the registered kinds in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Output returns the domain name kind name produces.
func (r *Registry) Output(name string) (string, bool) {
	e, ok := r.lookup(name)
	return e.output, ok
}

func (r *Registry) lookup(name string) (entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[name]
	return e, ok
}
