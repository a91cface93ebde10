package objectpath

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/solatis/automata/internal/value"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		want    Pointer
		wantErr error
	}{
		{name: "root empty", path: "", want: Pointer{}},
		{name: "root slash", path: "/", want: Pointer{}},
		{name: "nested", path: "/trigger/httpRequest/content", want: Pointer{"trigger", "httpRequest", "content"}},
		{name: "escaped slash", path: "/a~1b", want: Pointer{"a/b"}},
		{name: "escaped tilde", path: "/m~0n", want: Pointer{"m~n"}},
		{name: "escape order", path: "/~01", want: Pointer{"~1"}},
		{name: "empty segment", path: "/a//b", want: Pointer{"a", "", "b"}},
		{name: "missing leading slash", path: "trigger/body", wantErr: ErrInvalidPath},
		{name: "bad escape", path: "/a~2", wantErr: ErrInvalidPath},
		{name: "dangling tilde", path: "/a~", wantErr: ErrInvalidPath},
		{name: "too deep", path: strings.Repeat("/a", 65), wantErr: ErrPathTooDeep},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.path)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Parse(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
			if tt.wantErr != nil {
				return
			}
			if len(got) != len(tt.want) {
				t.Fatalf("Parse(%q) = %v, want %v", tt.path, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Parse(%q)[%d] = %q, want %q", tt.path, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestPointer_StringRoundTrip(t *testing.T) {
	for _, path := range []string{"/a/b", "/a~1b/c~0d", "/variables/0"} {
		p, err := Parse(path)
		if err != nil {
			t.Fatalf("Parse(%q) error = %v", path, err)
		}
		if p.String() != path {
			t.Errorf("Parse(%q).String() = %q", path, p.String())
		}
	}
}

func TestResolve_Normal(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		data     string
		expected any
		wantErr  error
	}{
		{
			name:     "nested object traversal",
			path:     "/trigger/httpRequest/content",
			data:     `{"trigger": {"httpRequest": {"content": "hello"}}}`,
			expected: "hello",
		},
		{
			name:     "array index access",
			path:     "/variables/fruits/1",
			data:     `{"variables": {"fruits": ["apple", "pear"]}}`,
			expected: "pear",
		},
		{
			name:     "number keeps representation",
			path:     "/n",
			data:     `{"n": 552.0}`,
			expected: json.Number("552.0"),
		},
		{
			name:     "present null is found",
			path:     "/a",
			data:     `{"a": null}`,
			expected: nil,
		},
		{
			name:     "numeric key on object",
			path:     "/0",
			data:     `{"0": "zero"}`,
			expected: "zero",
		},
		{
			name:    "missing key",
			path:    "/missing",
			data:    `{"a": 1}`,
			wantErr: ErrNotFound,
		},
		{
			name:    "index out of range",
			path:    "/list/5",
			data:    `{"list": [1, 2]}`,
			wantErr: ErrNotFound,
		},
		{
			name:    "leading zero index",
			path:    "/list/01",
			data:    `{"list": [1, 2]}`,
			wantErr: ErrNotFound,
		},
		{
			name:    "past-the-end marker",
			path:    "/list/-",
			data:    `{"list": [1, 2]}`,
			wantErr: ErrNotFound,
		},
		{
			name:    "through scalar",
			path:    "/a/b",
			data:    `{"a": "text"}`,
			wantErr: ErrNotFound,
		},
		{
			name:    "through null",
			path:    "/a/b",
			data:    `{"a": null}`,
			wantErr: ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Parse(tt.path)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			got, err := resolveJSON(p, []byte(tt.data))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Resolve() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && got != tt.expected {
				t.Errorf("Resolve() = %#v, want %#v", got, tt.expected)
			}
		})
	}
}

// resolveJSON decodes raw the way payloads are decoded and resolves p in it.
func resolveJSON(p Pointer, raw []byte) (any, error) {
	parsed, err := value.DecodeJSON(raw)
	if err != nil {
		return nil, err
	}
	return Resolve(p, parsed)
}

func TestResolve_InvalidJSON(t *testing.T) {
	if _, err := resolveJSON(Pointer{"a"}, []byte(`{"a":`)); err == nil {
		t.Error("resolveJSON() error = nil, want JSON error")
	}
}

// Property-based test: resolution never crashes
func TestResolve_PropertyNeverCrashes(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("resolution never crashes regardless of input", prop.ForAll(
		func(depth int, useIndex bool) bool {
			p := make(Pointer, depth)
			for i := range p {
				if useIndex && i%2 == 1 {
					p[i] = strconv.Itoa(i % 3)
				} else {
					p[i] = "key"
				}
			}

			defer func() {
				if r := recover(); r != nil {
					t.Errorf("Resolve() panicked: %v", r)
				}
			}()

			_, _ = resolveJSON(p, []byte(`{"key": [{"key": "value"}, [1, {"key": null}]]}`))
			return true
		},
		gen.IntRange(0, 20),
		gen.Bool(),
	))

	properties.TestingRun(t)
}

// Property-based test: every element of a built array is addressable by index
func TestResolve_PropertyArrayIndex(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("index i resolves element i", prop.ForAll(
		func(values []string, i int) bool {
			if len(values) == 0 {
				return true
			}
			i = i % len(values)
			list := make([]any, len(values))
			for j, v := range values {
				list[j] = v
			}
			got, err := Resolve(Pointer{"list", strconv.Itoa(i)}, map[string]any{"list": list})
			return err == nil && got == values[i]
		},
		gen.SliceOf(gen.AlphaString()),
		gen.IntRange(0, 1000),
	))

	properties.TestingRun(t)
}
