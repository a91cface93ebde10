package value

import (
	"encoding/json"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b any
		want bool
	}{
		{"same text", "one", "one", true},
		{"text is case-sensitive", "One", "one", false},
		{"integer vs decimal representation", json.Number("552"), json.Number("552.0"), true},
		{"different decimals", json.Number("55.2"), json.Number("100.2"), false},
		{"json number vs int64", json.Number("7"), int64(7), true},
		{"number vs numeric text", json.Number("1"), "1", false},
		{"null vs null", nil, nil, true},
		{"null vs false", nil, false, false},
		{"nested arrays", []any{"a", []any{json.Number("1")}}, []any{"a", []any{json.Number("1.00")}}, true},
		{"array order matters", []any{"a", "b"}, []any{"b", "a"}, false},
		{"array length matters", []any{"a"}, []any{"a", "a"}, false},
		{
			"objects by property set",
			map[string]any{"x": json.Number("1"), "y": []any{true}},
			map[string]any{"y": []any{true}, "x": json.Number("1.0")},
			true,
		},
		{
			"object with extra property",
			map[string]any{"x": json.Number("1")},
			map[string]any{"x": json.Number("1"), "y": nil},
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Equal(tt.a, tt.b); got != tt.want {
				t.Errorf("Equal(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
			if got := Equal(tt.b, tt.a); got != tt.want {
				t.Errorf("Equal(%v, %v) = %v, want %v (symmetry)", tt.b, tt.a, got, tt.want)
			}
		})
	}
}

func TestDecodeJSON_KeepsNumbers(t *testing.T) {
	v, err := DecodeJSON([]byte(`{"n": 552.0}`))
	if err != nil {
		t.Fatalf("DecodeJSON() error = %v", err)
	}
	n, ok := v.(map[string]any)["n"].(json.Number)
	if !ok || n.String() != "552.0" {
		t.Errorf("n = %#v, want json.Number(\"552.0\")", v.(map[string]any)["n"])
	}

	if _, err := DecodeJSON([]byte(`{} {}`)); err == nil {
		t.Error("DecodeJSON(trailing value) error = nil, want error")
	}
}

// Property-based test: equality is reflexive and representation-independent.
func TestEqual_PropertyNumericRepresentation(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("an integer equals its decimal-shaped rendering", prop.ForAll(
		func(n int64) bool {
			a := json.Number(formatInt(n))
			b := json.Number(formatInt(n) + ".0")
			return Equal(a, b) && Equal(n, b) && Equal([]any{a}, []any{b})
		},
		gen.Int64(),
	))

	properties.Property("distinct integers are never equal", prop.ForAll(
		func(a, b int64) bool {
			return Equal(a, b) == (a == b)
		},
		gen.Int64(),
		gen.Int64(),
	))

	properties.TestingRun(t)
}

func formatInt(n int64) string {
	s, _ := Text.Convert(n)
	return s
}
