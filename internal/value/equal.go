// internal/value/equal.go
package value

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"time"
)

/*
 * Structural equality over JSON-origin values.
 *
 * Operates over a small closed set of variant kinds rather than Go's native
 * equality, because the numeric representation a value arrived in (json.Number
 * "552.0", int64 552, float64 552) must not affect equality:
 *
 *   - null:      equal only to null
 *   - boolean:   by value
 *   - text:      by value, case-sensitive
 *   - number:    by decimal value (552 == 552.0, 55.2 != 100.2)
 *   - array:     same length, element-wise, order-sensitive, recursive
 *   - object:    same key set, recursively equal values
 *   - temporal:  dates, times, instants and intervals by value
 *
 * Values of different variant kinds are never equal ("1" != 1).
 */

// Equal reports whether a and b are structurally equal.
func Equal(a, b any) bool {
	if da, ok := AsDecimal(a); ok {
		db, ok := AsDecimal(b)
		return ok && da.Equal(db)
	}

	switch x := a.(type) {
	case nil:
		return b == nil
	case bool:
		y, ok := b.(bool)
		return ok && x == y
	case string:
		y, ok := b.(string)
		return ok && x == y
	case []any:
		y, ok := b.([]any)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !Equal(x[i], y[i]) {
				return false
			}
		}
		return true
	case map[string]any:
		y, ok := b.(map[string]any)
		if !ok || len(x) != len(y) {
			return false
		}
		for k, xv := range x {
			yv, ok := y[k]
			if !ok || !Equal(xv, yv) {
				return false
			}
		}
		return true
	case time.Time:
		y, ok := b.(time.Time)
		return ok && x.Equal(y)
	case Date:
		y, ok := b.(Date)
		return ok && x == y
	case TimeOfDay:
		y, ok := b.(TimeOfDay)
		return ok && x == y
	case Interval:
		y, ok := b.(Interval)
		return ok && x.Start.Equal(y.Start) && x.End.Equal(y.End)
	default:
		return false
	}
}

// Normalize rewrites numbers of any Go numeric type to json.Number so values
// decoded by different paths (structpb, encoding/json without UseNumber)
// share one representation. Containers are copied.
func Normalize(v any) any {
	switch t := v.(type) {
	case float64, int, int64, int32:
		if d, ok := AsDecimal(t); ok {
			return json.Number(d.String())
		}
		return t
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = Normalize(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = Normalize(e)
		}
		return out
	default:
		return v
	}
}

// DecodeJSON decodes data into a generic value, keeping numbers as
// json.Number so their textual form survives until a domain converts them.
// Trailing data after the first value is rejected.
func DecodeJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("unexpected data after top-level value")
	}
	return v, nil
}
