// internal/conditions/temporal.go
package conditions

import (
	"context"
	"encoding/json"
	"math"
	"strings"
	"time"

	"github.com/solatis/automata/internal/clock"
	"github.com/solatis/automata/internal/provider"
	"github.com/solatis/automata/internal/types"
	"github.com/solatis/automata/internal/value"
)

/*
 * Temporal conditions and providers.
 *
 *   dateTimeIsInPeriodCondition {dateTime, isInPeriod}
 *   lastPeriod                  {periodType, value}   -> interval
 *   currentDateTime             {}                    -> dateTime
 *
 * Periods are half-open: start <= dateTime < end. A dateTime equal to the
 * end is outside, so consecutive periods never overlap.
 *
 * lastPeriod ends at the clock's current instant and starts value units
 * earlier. Second, minute and hour subtract fixed durations; day, week, month
 * and year step the calendar (a month before March 31 is March 3 in non-leap
 * years, following time.AddDate normalisation). The clock is acquired in
 * Build, never during resolution.
 */

// Temporal kinds.
const (
	KindDateTimeIsInPeriod = "dateTimeIsInPeriodCondition"
	KindLastPeriod         = "lastPeriod"
	KindCurrentDateTime    = "currentDateTime"
)

// PeriodType is the unit of a relative period.
type PeriodType string

// Period types.
const (
	PeriodSecond PeriodType = "second"
	PeriodMinute PeriodType = "minute"
	PeriodHour   PeriodType = "hour"
	PeriodDay    PeriodType = "day"
	PeriodWeek   PeriodType = "week"
	PeriodMonth  PeriodType = "month"
	PeriodYear   PeriodType = "year"
)

// Before returns the instant n units before t. ok is false when n is
// negative or the result is not representable.
func (pt PeriodType) Before(t time.Time, n int64) (time.Time, bool) {
	if n < 0 {
		return time.Time{}, false
	}
	switch pt {
	case PeriodSecond:
		return subtract(t, n, time.Second)
	case PeriodMinute:
		return subtract(t, n, time.Minute)
	case PeriodHour:
		return subtract(t, n, time.Hour)
	}

	if n > maxCalendarUnits {
		return time.Time{}, false
	}
	switch pt {
	case PeriodDay:
		return t.AddDate(0, 0, -int(n)), true
	case PeriodWeek:
		return t.AddDate(0, 0, -7*int(n)), true
	case PeriodMonth:
		return t.AddDate(0, -int(n), 0), true
	case PeriodYear:
		return t.AddDate(-int(n), 0, 0), true
	default:
		return time.Time{}, false
	}
}

// maxCalendarUnits keeps calendar arithmetic well inside int range.
const maxCalendarUnits = 1_000_000

func subtract(t time.Time, n int64, unit time.Duration) (time.Time, bool) {
	if n > math.MaxInt64/int64(unit) {
		return time.Time{}, false
	}
	return t.Add(-time.Duration(n) * unit), true
}

// PeriodTypeKind is the domain of lastPeriod's periodType.
var PeriodTypeKind = value.NewKind("period type (second, minute, hour, day, week, month or year)",
	types.TitleInvalidPeriodType, toPeriodType)

func toPeriodType(v any) (PeriodType, bool) {
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	switch pt := PeriodType(strings.TrimSpace(s)); pt {
	case PeriodSecond, PeriodMinute, PeriodHour, PeriodDay, PeriodWeek, PeriodMonth, PeriodYear:
		return pt, true
	default:
		return "", false
	}
}

func registerTemporal(reg *provider.Registry) {
	provider.Register(reg, KindDateTimeIsInPeriod, value.Boolean, decodeDateTimeIsInPeriod)
	provider.Register(reg, KindLastPeriod, value.IntervalKind, decodeLastPeriod)
	provider.Register(reg, KindCurrentDateTime, value.DateTime, decodeCurrentDateTime)
}

func decodeDateTimeIsInPeriod(d *provider.Decoder, path string, body json.RawMessage) (provider.Builder[bool], error) {
	props, err := d.Properties(path, body, []string{"dateTime", "isInPeriod"})
	if err != nil {
		return nil, err
	}
	dateTime, err := provider.Decode(d, path, "dateTime", props["dateTime"], value.DateTime)
	if err != nil {
		return nil, err
	}
	period, err := provider.Decode(d, path, "isInPeriod", props["isInPeriod"], value.IntervalKind)
	if err != nil {
		return nil, err
	}
	return binary(path, dateTime, period, func(t time.Time, i value.Interval) bool {
		return i.Contains(t)
	}), nil
}

func decodeLastPeriod(d *provider.Decoder, path string, body json.RawMessage) (provider.Builder[value.Interval], error) {
	props, err := d.Properties(path, body, []string{"periodType", "value"})
	if err != nil {
		return nil, err
	}
	periodType, err := provider.Decode(d, path, "periodType", props["periodType"], PeriodTypeKind)
	if err != nil {
		return nil, err
	}
	count, err := provider.Decode(d, path, "value", props["value"], value.Integer)
	if err != nil {
		return nil, err
	}

	return provider.BuilderFunc[value.Interval](func(deps provider.Dependencies) (provider.Provider[value.Interval], error) {
		clk, err := provider.Require[clock.Clock](deps, path)
		if err != nil {
			return nil, err
		}
		pp, err := periodType.Build(deps)
		if err != nil {
			return nil, err
		}
		cp, err := count.Build(deps)
		if err != nil {
			return nil, err
		}
		return &lastPeriodProvider{path: path, clock: clk, periodType: pp, count: cp}, nil
	}), nil
}

type lastPeriodProvider struct {
	path       string
	clock      clock.Clock
	periodType provider.Provider[PeriodType]
	count      provider.Provider[int64]
}

func (p *lastPeriodProvider) Resolve(ctx context.Context, pc *provider.Context) (value.Data[value.Interval], error) {
	pt, n, err := provider.Resolve2(ctx, pc, p.path, p.periodType, p.count)
	if err != nil {
		return value.Data[value.Interval]{}, err
	}
	end := p.clock.Now()
	start, ok := pt.Value.Before(end, n.Value)
	if !ok {
		return value.Data[value.Interval]{}, types.FormatError(provider.ChildPath(p.path, "value"), "value",
			types.TitleInvalidIntegerFormat, n.Raw, "non-negative period length")
	}
	interval, err := value.NewInterval(start, end)
	if err != nil {
		return value.Data[value.Interval]{}, types.FormatError(provider.ChildPath(p.path, "value"), "value",
			types.TitleInvalidIntegerFormat, n.Raw, "non-negative period length")
	}
	return value.NewData(interval, interval), nil
}

func decodeCurrentDateTime(d *provider.Decoder, path string, body json.RawMessage) (provider.Builder[time.Time], error) {
	if err := d.Empty(path, body); err != nil {
		return nil, err
	}
	return provider.BuilderFunc[time.Time](func(deps provider.Dependencies) (provider.Provider[time.Time], error) {
		clk, err := provider.Require[clock.Clock](deps, path)
		if err != nil {
			return nil, err
		}
		return provider.ProviderFunc[time.Time](func(context.Context, *provider.Context) (value.Data[time.Time], error) {
			now := clk.Now()
			return value.NewData(now, now), nil
		}), nil
	}), nil
}
