// internal/provider/decode.go
package provider

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/solatis/automata/internal/types"
	"github.com/solatis/automata/internal/value"
)

/*
 * Configuration decoding.
 *
 * Maps raw JSON to builders by property-name discrimination: there is no
 * "type" tag. An object whose single property names a registered expression
 * kind is that expression; its body is decoded by the kind's factory, which
 * decodes its own sub-properties through Decode, recursively.
 *
 * Decoding workflow for a position expecting domain T:
 *   1. Object with exactly one property, registered -> expression
 *   2. Object with two or more registered properties -> AmbiguousExpression
 *   3. Object with one registered property among others -> UnexpectedProperty
 *   4. Object without registered properties -> literal if T accepts objects,
 *      otherwise UnknownExpression / InvalidConfiguration
 *   5. Anything else (string, number, boolean, null, array) -> literal
 *
 * Expressions producing another domain are adapted: json- and text-producing
 * expressions convert at resolution time (so non-numeric text at an integer
 * position is a typed format error), scalars render into text positions, and
 * every expression fits a json position. Other mismatches fail here.
 *
 * Why decode-time validation: every shape error surfaces when the automation
 * is saved, before any trigger fires. Literal conversion happens in Build for
 * the same reason.
 */

// Decoder turns configuration JSON into builders using a Registry.
type Decoder struct {
	reg *Registry
}

// NewDecoder returns a decoder over reg.
func NewDecoder(reg *Registry) *Decoder {
	return &Decoder{reg: reg}
}

// Registry returns the decoder's registry.
func (d *Decoder) Registry() *Registry {
	return d.reg
}

// property is one member of a JSON object, in written order.
type property struct {
	name string
	raw  json.RawMessage
}

// Decode decodes raw, the value of property field under the expression at
// path, into a builder for kind's domain.
func Decode[T any](d *Decoder, path, field string, raw json.RawMessage, kind *value.Kind[T]) (Builder[T], error) {
	at := ChildPath(path, field)

	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, types.ConfigError(at, types.TitleMissingProperty, "a %s value is required", kind.Name)
	}

	if raw[0] != '{' {
		v, err := value.DecodeJSON(raw)
		if err != nil {
			return nil, types.ConfigError(at, types.TitleInvalidJSON, "invalid JSON: %v", err)
		}
		return &staticBuilder[T]{path: at, field: field, raw: v, kind: kind}, nil
	}

	fields, err := objectFields(raw)
	if err != nil {
		return nil, types.ConfigError(at, types.TitleInvalidJSON, "invalid JSON object: %v", err)
	}

	var matched []property
	for _, f := range fields {
		if d.reg.Has(f.name) {
			matched = append(matched, f)
		}
	}

	switch {
	case len(matched) == 1 && len(fields) == 1:
		return decodeExpression(d, at, field, matched[0], kind)

	case len(matched) > 1:
		names := make([]string, len(matched))
		for i, f := range matched {
			names[i] = f.name
		}
		return nil, types.ConfigError(at, types.TitleAmbiguousExpression,
			"object names %d expression kinds (%s); exactly one is allowed", len(matched), strings.Join(names, ", "))

	case len(matched) == 1:
		for _, f := range fields {
			if f.name != matched[0].name {
				return nil, types.ConfigError(at, types.TitleUnexpectedProperty,
					"expression %q must be the only property of its object, found %q", matched[0].name, f.name)
			}
		}
	}

	if kind.Objects {
		v, err := value.DecodeJSON(raw)
		if err != nil {
			return nil, types.ConfigError(at, types.TitleInvalidJSON, "invalid JSON: %v", err)
		}
		return &staticBuilder[T]{path: at, field: field, raw: v, kind: kind}, nil
	}
	if len(fields) == 1 {
		return nil, types.ConfigError(at, types.TitleUnknownExpression, "unknown expression kind %q", fields[0].name)
	}
	return nil, types.ConfigError(at, types.TitleInvalidConfiguration,
		"expected a %s literal or a single-property expression object, found an object with %d properties", kind.Name, len(fields))
}

// Optional decodes raw when present and otherwise yields def.
func Optional[T any](d *Decoder, path, field string, raw json.RawMessage, kind *value.Kind[T], def T) (Builder[T], error) {
	if raw == nil {
		return Static(def), nil
	}
	return Decode(d, path, field, raw, kind)
}

// decodeExpression invokes the registered factory and adapts its output.
func decodeExpression[T any](d *Decoder, at, fieldName string, f property, kind *value.Kind[T]) (Builder[T], error) {
	e, _ := d.reg.lookup(f.name)
	dec, err := e.decode(d, ChildPath(at, f.name), f.raw)
	if err != nil {
		return nil, err
	}

	if b, ok := dec.builder.(Builder[T]); ok {
		return b, nil
	}
	if !convertible(dec.output, kind.Name) {
		return nil, types.ConfigError(at, types.TitleIncompatibleType,
			"expression %q produces %s where %s is expected", f.name, dec.output, kind.Name)
	}
	return &convertBuilder[T]{path: at, field: fieldName, src: dec.erase(), kind: kind}, nil
}

// convertible reports whether values of domain from can be converted at
// resolution time into domain to.
func convertible(from, to string) bool {
	switch {
	case to == value.JSON.Name:
		return true
	case from == value.JSON.Name || from == value.Text.Name:
		return true
	case to == value.Text.Name:
		return from != value.List.Name && from != value.Object.Name
	default:
		return false
	}
}

// Properties is the set of sub-properties of one expression body.
type Properties map[string]json.RawMessage

// Properties validates an expression body: it must be an object containing
// every required property, any of the optional ones, and nothing else.
func (d *Decoder) Properties(path string, body json.RawMessage, required []string, optional ...string) (Properties, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || body[0] != '{' {
		return nil, types.ConfigError(path, types.TitleInvalidConfiguration, "expression body must be an object")
	}

	fields, err := objectFields(body)
	if err != nil {
		return nil, types.ConfigError(path, types.TitleInvalidJSON, "invalid JSON object: %v", err)
	}

	allowed := make(map[string]bool, len(required)+len(optional))
	for _, name := range required {
		allowed[name] = true
	}
	for _, name := range optional {
		allowed[name] = true
	}

	props := make(Properties, len(fields))
	for _, f := range fields {
		if !allowed[f.name] {
			return nil, types.ConfigError(path, types.TitleUnexpectedProperty,
				"unexpected property %q; expected %s", f.name, describeProperties(required, optional))
		}
		props[f.name] = f.raw
	}
	for _, name := range required {
		if _, ok := props[name]; !ok {
			return nil, types.ConfigError(path, types.TitleMissingProperty, "missing required property %q", name)
		}
	}
	return props, nil
}

// Empty validates an expression body that takes no properties ({} or null).
func (d *Decoder) Empty(path string, body json.RawMessage) error {
	body = bytes.TrimSpace(body)
	if bytes.Equal(body, []byte("null")) {
		return nil
	}
	_, err := d.Properties(path, body, nil)
	return err
}

// Elements splits a JSON array body into its elements.
func (d *Decoder) Elements(path, fieldName string, raw json.RawMessage) ([]json.RawMessage, error) {
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil, types.ConfigError(ChildPath(path, fieldName), types.TitleInvalidConfiguration, "expected an array")
	}
	return elems, nil
}

func describeProperties(required, optional []string) string {
	var parts []string
	for _, name := range required {
		parts = append(parts, fmt.Sprintf("%q", name))
	}
	for _, name := range optional {
		parts = append(parts, fmt.Sprintf("%q (optional)", name))
	}
	if len(parts) == 0 {
		return "no properties"
	}
	return strings.Join(parts, ", ")
}

// objectFields reads the properties of a JSON object in written order.
// Duplicate property names are rejected.
func objectFields(raw json.RawMessage) ([]property, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("not an object")
	}

	var fields []property
	seen := make(map[string]bool)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		name, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected property name")
		}
		if seen[name] {
			return nil, fmt.Errorf("duplicate property %q", name)
		}
		seen[name] = true

		var v json.RawMessage
		if err := dec.Decode(&v); err != nil {
			return nil, err
		}
		fields = append(fields, property{name: name, raw: v})
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return fields, nil
}

// ChildPath appends a property name to an expression path.
func ChildPath(path, name string) string {
	switch {
	case name == "":
		return path
	case path == "/":
		return path + name
	}
	return path + "/" + name
}
