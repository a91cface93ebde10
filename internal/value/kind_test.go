package value

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestInteger_Convert(t *testing.T) {
	tests := []struct {
		name   string
		value  any
		want   int64
		wantOK bool
	}{
		{name: "json number", value: json.Number("552"), want: 552, wantOK: true},
		{name: "json number with zero fraction", value: json.Number("552.0"), want: 552, wantOK: true},
		{name: "json number with fraction", value: json.Number("55.2"), wantOK: false},
		{name: "numeric string", value: "42", want: 42, wantOK: true},
		{name: "numeric string with whitespace", value: "  -7  ", want: -7, wantOK: true},
		{name: "min int64", value: json.Number("-9223372036854775808"), want: math.MinInt64, wantOK: true},
		{name: "overflow", value: json.Number("9223372036854775808"), wantOK: false},
		{name: "non-numeric string", value: "abc", wantOK: false},
		{name: "whitespace only", value: "   ", wantOK: false},
		{name: "boolean rejected", value: true, wantOK: false},
		{name: "float64 integral", value: float64(3), want: 3, wantOK: true},
		{name: "float64 fractional", value: 3.5, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Integer.Convert(tt.value)
			if ok != tt.wantOK {
				t.Fatalf("Convert(%v) ok = %v, want %v", tt.value, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("Convert(%v) = %d, want %d", tt.value, got, tt.want)
			}
		})
	}
}

func TestDecimal_Convert(t *testing.T) {
	got, ok := Decimal.Convert(json.Number("55.20"))
	if !ok {
		t.Fatal("Convert(55.20) ok = false, want true")
	}
	if !got.Equal(decimal.RequireFromString("55.2")) {
		t.Errorf("Convert(55.20) = %s, want 55.2", got)
	}

	if _, ok := Decimal.Convert("twelve"); ok {
		t.Error("Convert(\"twelve\") ok = true, want false")
	}
}

func TestText_Convert(t *testing.T) {
	tests := []struct {
		value  any
		want   string
		wantOK bool
	}{
		{value: "KenGurow", want: "KenGurow", wantOK: true},
		{value: json.Number("12.50"), want: "12.50", wantOK: true},
		{value: false, want: "false", wantOK: true},
		{value: Date{Year: 2024, Month: time.February, Day: 29}, want: "2024-02-29", wantOK: true},
		{value: []any{"a"}, wantOK: false},
		{value: map[string]any{}, wantOK: false},
	}

	for _, tt := range tests {
		got, ok := Text.Convert(tt.value)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("Convert(%v) = (%q, %v), want (%q, %v)", tt.value, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestTemporal_Convert(t *testing.T) {
	if d, ok := DateKind.Convert("2023-11-05"); !ok || d != (Date{Year: 2023, Month: time.November, Day: 5}) {
		t.Errorf("DateKind.Convert = (%v, %v)", d, ok)
	}
	if _, ok := DateKind.Convert("2023-13-05"); ok {
		t.Error("DateKind.Convert(month 13) ok = true, want false")
	}

	if tod, ok := TimeKind.Convert("08:30"); !ok || tod != (TimeOfDay{Hour: 8, Minute: 30}) {
		t.Errorf("TimeKind.Convert = (%v, %v)", tod, ok)
	}
	if tod, ok := TimeKind.Convert("23:59:59.5"); !ok || tod.Nanosecond != 500000000 {
		t.Errorf("TimeKind.Convert fractional = (%v, %v)", tod, ok)
	}

	dt, ok := DateTime.Convert("2024-01-02T03:04:05.123Z")
	if !ok {
		t.Fatal("DateTime.Convert ok = false, want true")
	}
	if dt.Nanosecond() != 123000000 {
		t.Errorf("DateTime nanoseconds = %d, want 123000000", dt.Nanosecond())
	}
}

func TestInterval_Convert(t *testing.T) {
	i, ok := IntervalKind.Convert(map[string]any{
		"start": "2024-01-01T00:00:00Z",
		"end":   "2024-01-02T00:00:00Z",
	})
	if !ok {
		t.Fatal("Convert ok = false, want true")
	}
	if got := i.End.Sub(i.Start); got != 24*time.Hour {
		t.Errorf("End - Start = %v, want 24h", got)
	}

	_, ok = IntervalKind.Convert(map[string]any{
		"start": "2024-01-02T00:00:00Z",
		"end":   "2024-01-01T00:00:00Z",
	})
	if ok {
		t.Error("Convert(end before start) ok = true, want false")
	}

	_, ok = IntervalKind.Convert(map[string]any{"start": "2024-01-01T00:00:00Z"})
	if ok {
		t.Error("Convert(missing end) ok = true, want false")
	}
}

func TestInterval_ContainsHalfOpen(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)
	i := Interval{Start: start, End: end}

	tests := []struct {
		name string
		at   time.Time
		want bool
	}{
		{"start inclusive", start, true},
		{"end exclusive", end, false},
		{"inside", start.Add(30 * time.Minute), true},
		{"before start", start.Add(-time.Nanosecond), false},
		{"after end", end.Add(time.Nanosecond), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := i.Contains(tt.at); got != tt.want {
				t.Errorf("Contains(%v) = %v, want %v", tt.at, got, tt.want)
			}
		})
	}
}
