// internal/value/kind.go
package value

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/solatis/automata/internal/types"
)

/*
 * Value domains.
 *
 * Every typed position in the expression grammar expects one domain. A Kind
 * converts a JSON-origin value (a literal from the definition, or a value a
 * lookup produced at run time) into the domain's Go type.
 *
 * Conversion modes:
 *   - text: Lenient - numbers, booleans, dates and times render canonically
 *   - integer/decimal: Strict on type, lenient on representation - numeric
 *     strings parse, 552 and 552.0 are the same integer, booleans reject
 *   - boolean: Strict - booleans only (avoids "true" vs 1 ambiguity)
 *   - date/time/dateTime: text in ISO 8601 layouts, or the typed value
 *   - list/object: JSON arrays/objects only
 *   - json: anything, numbers normalised to json.Number
 *
 * Conversion failure is reported by the caller as a format error carrying the
 * kind's Title, so each domain has its own machine-checkable title.
 */

// Kind describes a value domain.
type Kind[T any] struct {
	// Name is the domain name used in messages ("integer", "dateTime").
	Name string
	// Title is the format error title reported when conversion fails.
	Title string
	// Objects reports whether a JSON object without a registered expression
	// key is a literal of this domain.
	Objects bool

	convert func(v any) (T, bool)
}

// Convert converts v into the domain. ok is false when v has no
// representation in it.
func (k *Kind[T]) Convert(v any) (T, bool) {
	return k.convert(v)
}

// NewKind defines a domain outside this package, such as an enumeration
// carried as text.
func NewKind[T any](name, title string, convert func(v any) (T, bool)) *Kind[T] {
	return &Kind[T]{Name: name, Title: title, convert: convert}
}

// Domains.
var (
	Text = &Kind[string]{Name: "text", Title: types.TitleInvalidTextFormat, convert: toText}

	Integer = &Kind[int64]{Name: "integer", Title: types.TitleInvalidIntegerFormat, convert: toInteger}

	Decimal = &Kind[decimal.Decimal]{Name: "decimal", Title: types.TitleInvalidDecimalFormat, convert: toDecimal}

	Boolean = &Kind[bool]{Name: "boolean", Title: types.TitleInvalidBooleanFormat, convert: toBoolean}

	DateKind = &Kind[Date]{Name: "date", Title: types.TitleInvalidDateFormat, convert: toDate}

	TimeKind = &Kind[TimeOfDay]{Name: "time", Title: types.TitleInvalidTimeFormat, convert: toTimeOfDay}

	DateTime = &Kind[time.Time]{Name: "dateTime", Title: types.TitleInvalidDateTimeFormat, convert: toDateTime}

	IntervalKind = &Kind[Interval]{Name: "interval", Title: types.TitleInvalidIntervalFormat, Objects: true, convert: toInterval}

	List = &Kind[[]any]{Name: "list", Title: types.TitleInvalidListFormat, convert: toList}

	Object = &Kind[map[string]any]{Name: "object", Title: types.TitleInvalidObjectFormat, Objects: true, convert: toObject}

	JSON = &Kind[any]{Name: "json", Title: types.TitleInvalidJSONFormat, Objects: true, convert: toJSON}
)

// toText renders scalars as text. Lists and objects have no text form.
func toText(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	case bool:
		return strconv.FormatBool(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case int:
		return strconv.Itoa(t), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case decimal.Decimal:
		return t.String(), true
	case Date:
		return t.String(), true
	case TimeOfDay:
		return t.String(), true
	case time.Time:
		return t.Format(time.RFC3339Nano), true
	case Interval:
		return t.String(), true
	default:
		return "", false
	}
}

// toInteger accepts integral numbers in any representation.
// Whitespace-only strings are not valid numbers.
func toInteger(v any) (int64, bool) {
	switch t := v.(type) {
	case int64:
		return t, true
	case int:
		return int64(t), true
	case int32:
		return int64(t), true
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) || math.Trunc(t) != t || t < math.MinInt64 || t >= math.MaxInt64 {
			return 0, false
		}
		return int64(t), true
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0, false
		}
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n, true
		}
		return integralDecimal(s)
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return n, true
		}
		return integralDecimal(t.String())
	case decimal.Decimal:
		return decimalToInt64(t)
	default:
		return 0, false
	}
}

func integralDecimal(s string) (int64, bool) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, false
	}
	return decimalToInt64(d)
}

func decimalToInt64(d decimal.Decimal) (int64, bool) {
	if !d.IsInteger() {
		return 0, false
	}
	b := d.BigInt()
	if !b.IsInt64() {
		return 0, false
	}
	return b.Int64(), true
}

// toDecimal accepts numbers and numeric strings.
func toDecimal(v any) (decimal.Decimal, bool) {
	if d, ok := AsDecimal(v); ok {
		return d, true
	}
	s, ok := v.(string)
	if !ok {
		return decimal.Decimal{}, false
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}

// AsDecimal converts a numeric value (never text) to a decimal.
func AsDecimal(v any) (decimal.Decimal, bool) {
	switch t := v.(type) {
	case json.Number:
		d, err := decimal.NewFromString(t.String())
		if err != nil {
			return decimal.Decimal{}, false
		}
		return d, true
	case decimal.Decimal:
		return t, true
	case int64:
		return decimal.NewFromInt(t), true
	case int:
		return decimal.NewFromInt(int64(t)), true
	case int32:
		return decimal.NewFromInt32(t), true
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return decimal.Decimal{}, false
		}
		return decimal.NewFromFloat(t), true
	default:
		return decimal.Decimal{}, false
	}
}

func toBoolean(v any) (bool, bool) {
	b, ok := v.(bool)
	return b, ok
}

func toDate(v any) (Date, bool) {
	switch t := v.(type) {
	case Date:
		return t, true
	case string:
		d, err := ParseDate(strings.TrimSpace(t))
		if err != nil {
			return Date{}, false
		}
		return d, true
	default:
		return Date{}, false
	}
}

func toTimeOfDay(v any) (TimeOfDay, bool) {
	switch t := v.(type) {
	case TimeOfDay:
		return t, true
	case string:
		tod, err := ParseTimeOfDay(strings.TrimSpace(t))
		if err != nil {
			return TimeOfDay{}, false
		}
		return tod, true
	default:
		return TimeOfDay{}, false
	}
}

func toDateTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case string:
		// time.RFC3339 also accepts fractional seconds when parsing.
		parsed, err := time.Parse(time.RFC3339, strings.TrimSpace(t))
		if err != nil {
			return time.Time{}, false
		}
		return parsed, true
	default:
		return time.Time{}, false
	}
}

// toInterval accepts {"start": <dateTime>, "end": <dateTime>} with no other keys.
func toInterval(v any) (Interval, bool) {
	switch t := v.(type) {
	case Interval:
		return t, true
	case map[string]any:
		if len(t) != 2 {
			return Interval{}, false
		}
		start, ok := toDateTime(t["start"])
		if !ok {
			return Interval{}, false
		}
		end, ok := toDateTime(t["end"])
		if !ok {
			return Interval{}, false
		}
		i, err := NewInterval(start, end)
		if err != nil {
			return Interval{}, false
		}
		return i, true
	default:
		return Interval{}, false
	}
}

func toList(v any) ([]any, bool) {
	l, ok := v.([]any)
	return l, ok
}

func toObject(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

func toJSON(v any) (any, bool) {
	return Normalize(v), true
}
