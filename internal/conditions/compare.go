// internal/conditions/compare.go
package conditions

import (
	"cmp"
	"context"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
	"github.com/solatis/automata/internal/provider"
	"github.com/solatis/automata/internal/value"
)

/*
 * Comparison conditions.
 *
 * One generic implementation serves every ordered domain. Each domain
 * registers five kinds named <domain>Is<Op>Condition with operand
 * properties <domain> and is<Op>:
 *
 *   {"integerIsGreaterThanCondition": {"integer": 5, "isGreaterThan": 3}}
 *
 * Domains and their native ordering:
 *   - integer:  int64
 *   - decimal:  exact decimal (0.1 + 0.2 == 0.3)
 *   - date:     calendar date
 *   - time:     time of day, nanosecond precision
 *   - dateTime: instant, offsets normalised (12:00+02:00 == 10:00Z)
 *   - boolean:  equality only
 *
 * Both operands are always resolved. A non-numeric text reaching a numeric
 * operand fails with the domain's format error; it is never treated as zero.
 */

// Op is a comparison operator.
type Op struct {
	Name string
	test func(c int) bool
}

// Operators in registration order.
var (
	OpEqualTo              = Op{Name: "EqualTo", test: func(c int) bool { return c == 0 }}
	OpGreaterThan          = Op{Name: "GreaterThan", test: func(c int) bool { return c > 0 }}
	OpGreaterThanOrEqualTo = Op{Name: "GreaterThanOrEqualTo", test: func(c int) bool { return c >= 0 }}
	OpLessThan             = Op{Name: "LessThan", test: func(c int) bool { return c < 0 }}
	OpLessThanOrEqualTo    = Op{Name: "LessThanOrEqualTo", test: func(c int) bool { return c <= 0 }}

	orderedOps = []Op{OpEqualTo, OpGreaterThan, OpGreaterThanOrEqualTo, OpLessThan, OpLessThanOrEqualTo}
)

// Holds reports whether the operator accepts the three-way comparison c.
func (op Op) Holds(c int) bool {
	return op.test(c)
}

// KindName returns the expression kind name for domain, e.g.
// "integerIsLessThanCondition".
func (op Op) KindName(domain string) string {
	return domain + "Is" + op.Name + "Condition"
}

// Field returns the right-hand operand property, e.g. "isLessThan".
func (op Op) Field() string {
	return "is" + op.Name
}

func registerComparisons(reg *provider.Registry) {
	registerOrdered(reg, value.Integer, cmp.Compare[int64])
	registerOrdered(reg, value.Decimal, decimal.Decimal.Cmp)
	registerOrdered(reg, value.DateKind, value.Date.Compare)
	registerOrdered(reg, value.TimeKind, value.TimeOfDay.Compare)
	registerOrdered(reg, value.DateTime, time.Time.Compare)
	registerComparison(reg, value.Boolean, OpEqualTo, compareBool)
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case b:
		return -1
	default:
		return 1
	}
}

func registerOrdered[T any](reg *provider.Registry, kind *value.Kind[T], compare func(a, b T) int) {
	for _, op := range orderedOps {
		registerComparison(reg, kind, op, compare)
	}
}

func registerComparison[T any](reg *provider.Registry, kind *value.Kind[T], op Op, compare func(a, b T) int) {
	provider.Register(reg, op.KindName(kind.Name), value.Boolean,
		func(d *provider.Decoder, path string, body json.RawMessage) (provider.Builder[bool], error) {
			props, err := d.Properties(path, body, []string{kind.Name, op.Field()})
			if err != nil {
				return nil, err
			}
			left, err := provider.Decode(d, path, kind.Name, props[kind.Name], kind)
			if err != nil {
				return nil, err
			}
			right, err := provider.Decode(d, path, op.Field(), props[op.Field()], kind)
			if err != nil {
				return nil, err
			}
			return NewComparison(path, left, right, op, compare), nil
		})
}

// Comparison is the builder of a comparison condition over domain T.
type Comparison[T any] struct {
	path        string
	left, right provider.Builder[T]
	op          Op
	compare     func(a, b T) int
}

// NewComparison returns a condition testing op against compare(left, right).
func NewComparison[T any](path string, left, right provider.Builder[T], op Op, compare func(a, b T) int) *Comparison[T] {
	return &Comparison[T]{path: path, left: left, right: right, op: op, compare: compare}
}

// Build implements provider.Builder.
func (c *Comparison[T]) Build(deps provider.Dependencies) (provider.Provider[bool], error) {
	left, err := c.left.Build(deps)
	if err != nil {
		return nil, err
	}
	right, err := c.right.Build(deps)
	if err != nil {
		return nil, err
	}
	return &comparisonProvider[T]{path: c.path, left: left, right: right, op: c.op, compare: c.compare}, nil
}

type comparisonProvider[T any] struct {
	path        string
	left, right provider.Provider[T]
	op          Op
	compare     func(a, b T) int
}

func (p *comparisonProvider[T]) Resolve(ctx context.Context, pc *provider.Context) (value.Data[bool], error) {
	l, r, err := provider.Resolve2(ctx, pc, p.path, p.left, p.right)
	if err != nil {
		return value.Data[bool]{}, err
	}
	result := p.op.Holds(p.compare(l.Value, r.Value))
	return value.NewData(result, result), nil
}
