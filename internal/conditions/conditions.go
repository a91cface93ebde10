// Package conditions is the condition library: every expression kind that
// produces a boolean, plus the interval and dateTime providers the temporal
// conditions consume.
//
// Conditions are ordinary providers of the boolean domain, so any condition
// nests inside the boolean combinators, and a boolean-valued lookup can stand
// wherever a condition is expected.
package conditions

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/solatis/automata/internal/provider"
	"github.com/solatis/automata/internal/types"
	"github.com/solatis/automata/internal/value"
)

// Register adds the condition library to reg.
func Register(reg *provider.Registry) {
	registerComparisons(reg)
	registerLogic(reg)
	registerText(reg)
	registerCollections(reg)
	registerNetwork(reg)
	registerTemporal(reg)
}

// NewRegistry returns a registry holding the navigation providers and the
// condition library.
func NewRegistry() *provider.Registry {
	reg := provider.NewRegistry()
	provider.RegisterNavigation(reg)
	Register(reg)
	return reg
}

// Decode decodes a condition position. Beyond what provider.Decode accepts
// for the boolean domain, a JSON array is an implicit conjunction of its
// elements.
func Decode(d *provider.Decoder, path, field string, raw json.RawMessage) (provider.Builder[bool], error) {
	if trimmed := bytes.TrimSpace(raw); len(trimmed) > 0 && trimmed[0] == '[' {
		operands, err := DecodeList(d, path, field, raw, 1)
		if err != nil {
			return nil, err
		}
		return &logicBuilder{path: provider.ChildPath(path, field), operands: operands, combine: allOf}, nil
	}
	return provider.Decode(d, path, field, raw, value.Boolean)
}

// DecodeList decodes an array of conditions holding at least min elements.
// Element i is attributed to path/field/i.
func DecodeList(d *provider.Decoder, path, field string, raw json.RawMessage, min int) ([]provider.Builder[bool], error) {
	elems, err := d.Elements(path, field, raw)
	if err != nil {
		return nil, err
	}
	at := provider.ChildPath(path, field)
	if len(elems) < min {
		return nil, types.ConfigError(at, types.TitleInvalidOperandCount,
			"expected at least %d conditions, found %d", min, len(elems))
	}

	out := make([]provider.Builder[bool], len(elems))
	for i, elem := range elems {
		b, err := Decode(d, at, strconv.Itoa(i), elem)
		if err != nil {
			return nil, err
		}
		out[i] = b
	}
	return out, nil
}

// DecodeRoot decodes a top-level condition document. The document itself is
// "/"; nested kinds render as "/notCondition/...".
func DecodeRoot(d *provider.Decoder, raw json.RawMessage) (provider.Builder[bool], error) {
	return Decode(d, "/", "", raw)
}
