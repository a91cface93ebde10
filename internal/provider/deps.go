package provider

import (
	"reflect"

	"github.com/solatis/automata/internal/types"
)

// Dependencies looks up host services by type. Consulted only from Build.
type Dependencies interface {
	Lookup(t reflect.Type) (any, bool)
}

// Services is a type-keyed service container implementing Dependencies.
// Populate it before building; it is read-only afterwards.
type Services struct {
	services map[reflect.Type]any
}

// NewServices returns an empty container.
func NewServices() *Services {
	return &Services{services: make(map[reflect.Type]any)}
}

// Provide registers svc under the static type T (typically an interface such
// as clock.Clock) and returns s for chaining.
func Provide[T any](s *Services, svc T) *Services {
	s.services[reflect.TypeFor[T]()] = svc
	return s
}

// Lookup implements Dependencies.
func (s *Services) Lookup(t reflect.Type) (any, bool) {
	if s == nil {
		return nil, false
	}
	svc, ok := s.services[t]
	return svc, ok
}

// Require returns the service registered under T. A missing service is a
// dependency error attributed to the expression at path.
func Require[T any](deps Dependencies, path string) (T, error) {
	var zero T
	t := reflect.TypeFor[T]()
	if deps == nil {
		return zero, types.DependencyError(path, t.String())
	}
	svc, ok := deps.Lookup(t)
	if !ok {
		return zero, types.DependencyError(path, t.String())
	}
	typed, ok := svc.(T)
	if !ok {
		return zero, types.DependencyError(path, t.String())
	}
	return typed, nil
}
