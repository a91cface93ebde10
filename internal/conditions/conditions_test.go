package conditions

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/solatis/automata/internal/clock"
	"github.com/solatis/automata/internal/provider"
	"github.com/solatis/automata/internal/types"
)

var testNow = time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)

func testServices() *provider.Services {
	return provider.Provide[clock.Clock](provider.NewServices(), clock.Fixed{At: testNow})
}

// build decodes and builds a condition document.
func build(t *testing.T, raw string) (provider.Provider[bool], error) {
	t.Helper()
	b, err := DecodeRoot(provider.NewDecoder(NewRegistry()), json.RawMessage(raw))
	if err != nil {
		return nil, err
	}
	return b.Build(testServices())
}

// eval decodes, builds and resolves a condition document against data.
func eval(t *testing.T, raw string, data provider.DataContext, opts ...provider.Option) (bool, error) {
	t.Helper()
	p, err := build(t, raw)
	if err != nil {
		return false, err
	}
	return provider.ResolveValue(context.Background(), p, provider.NewContext(data, opts...))
}

type evalCase struct {
	name string
	raw  string
	want bool
}

func runEvalCases(t *testing.T, tests []evalCase, data provider.DataContext) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := eval(t, tt.raw, data)
			if err != nil {
				t.Fatalf("eval(%s) error = %v", tt.raw, err)
			}
			if got != tt.want {
				t.Errorf("eval(%s) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

type errorCase struct {
	name  string
	raw   string
	kind  error
	title string
	path  string // expected error path; empty skips the check
}

func runErrorCases(t *testing.T, tests []errorCase, data provider.DataContext) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := eval(t, tt.raw, data)
			if !errors.Is(err, tt.kind) {
				t.Fatalf("eval(%s) error = %v, want %v", tt.raw, err, tt.kind)
			}
			var e *types.Error
			if !errors.As(err, &e) {
				t.Fatalf("error %v is not *types.Error", err)
			}
			if e.Title != tt.title {
				t.Errorf("Title = %q, want %q (%v)", e.Title, tt.title, err)
			}
			if tt.path != "" && e.Path != tt.path {
				t.Errorf("Path = %q, want %q", e.Path, tt.path)
			}
		})
	}
}

func TestRegistry_NoCentralSwitch(t *testing.T) {
	reg := NewRegistry()
	for _, name := range []string{
		"integerIsEqualToCondition", "decimalIsLessThanOrEqualToCondition", "dateIsGreaterThanCondition",
		"timeIsLessThanCondition", "dateTimeIsGreaterThanOrEqualToCondition", "booleanIsEqualToCondition",
		KindNot, KindXOr, KindAnd, KindOr,
		"textIsEqualToCondition", "textContainsCondition", "textStartsWithCondition", "textEndsWithCondition",
		KindListContainsValue, KindObjectContainsProperty, KindIPAddressInRange,
		KindDateTimeIsInPeriod, KindLastPeriod, KindCurrentDateTime,
		provider.KindObjectPathLookup, provider.KindJSONTextParse, provider.KindVariableValue,
	} {
		if !reg.Has(name) {
			t.Errorf("kind %q is not registered", name)
		}
	}
	if reg.Has("booleanIsGreaterThanCondition") {
		t.Error("booleans have no ordering")
	}
}

func TestDecode_ShapeErrors(t *testing.T) {
	runErrorCases(t, []errorCase{
		{
			name:  "unknown kind",
			raw:   `{"integerIsEqualCondition": {"integer": 1, "isEqualTo": 1}}`,
			kind:  types.ErrConfiguration,
			title: types.TitleUnknownExpression,
		},
		{
			name:  "two kinds in one object",
			raw:   `{"notCondition": {"condition": true}, "andCondition": {"conditions": [true]}}`,
			kind:  types.ErrConfiguration,
			title: types.TitleAmbiguousExpression,
		},
		{
			name:  "missing operand",
			raw:   `{"notCondition": {"condition": {"integerIsEqualToCondition": {"integer": 1}}}}`,
			kind:  types.ErrConfiguration,
			title: types.TitleMissingProperty,
			path:  "/notCondition/condition/integerIsEqualToCondition",
		},
		{
			name:  "empty implicit conjunction",
			raw:   `[]`,
			kind:  types.ErrConfiguration,
			title: types.TitleInvalidOperandCount,
		},
		{
			name:  "text literal at condition position",
			raw:   `{"notCondition": {"condition": "yes"}}`,
			kind:  types.ErrFormat,
			title: types.TitleInvalidBooleanFormat,
			path:  "/notCondition/condition",
		},
	}, nil)
}

func TestDecode_ErrorPathAttribution(t *testing.T) {
	raw := `{"notCondition": {"condition": {"textIsEqualToCondition": {"text": {"objectPathLookup": {"path": "/trigger/missing"}}, "isEqualTo": "x"}}}}`
	_, err := eval(t, raw, provider.NewMapDataContext(map[string]any{}, nil))

	var e *types.Error
	if !errors.As(err, &e) {
		t.Fatalf("eval() error = %v, want *types.Error", err)
	}
	want := "/notCondition/condition/textIsEqualToCondition/text/objectPathLookup"
	if e.Path != want {
		t.Errorf("Path = %q, want %q", e.Path, want)
	}
	if e.Title != types.TitlePathNotFound {
		t.Errorf("Title = %q, want %q", e.Title, types.TitlePathNotFound)
	}
}

func TestProviderTree_ReusableAcrossResolutions(t *testing.T) {
	p, err := build(t, `{"integerIsGreaterThanCondition": {"integer": {"objectPathLookup": {"path": "/trigger/n"}}, "isGreaterThan": 10}}`)
	if err != nil {
		t.Fatalf("build error = %v", err)
	}

	done := make(chan error, 50)
	for i := range 50 {
		go func() {
			data := provider.NewMapDataContext(map[string]any{"n": i}, nil)
			got, err := provider.ResolveValue(context.Background(), p, provider.NewContext(data, provider.WithParallel(2)))
			if err == nil && got != (i > 10) {
				err = errors.New("wrong result")
			}
			done <- err
		}()
	}
	for range 50 {
		if err := <-done; err != nil {
			t.Errorf("concurrent resolution: %v", err)
		}
	}
}
