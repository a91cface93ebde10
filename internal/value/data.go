// Package value defines the values carried through a provider tree: the
// Data wrapper, the value domains a position in the grammar can expect, and
// structural equality over JSON-origin values.
package value

// Data is an immutable resolved value plus the raw representation it was
// produced from (a JSON literal, a payload fragment, or the typed value itself).
type Data[T any] struct {
	Value T
	Raw   any
}

// NewData wraps v with its raw representation.
func NewData[T any](v T, raw any) Data[T] {
	return Data[T]{Value: v, Raw: raw}
}

// Erase converts d into a Data[any] carrying the same value.
func Erase[T any](d Data[T]) Data[any] {
	return Data[any]{Value: d.Value, Raw: d.Raw}
}
