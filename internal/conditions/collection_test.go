package conditions

import (
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/solatis/automata/internal/provider"
	"github.com/solatis/automata/internal/types"
)

func TestListContainsValue(t *testing.T) {
	runEvalCases(t, []evalCase{
		{"text member", `{"listContainsValueCondition": {"list": ["one", "two", "three"], "value": "one"}}`, true},
		{"text non-member", `{"listContainsValueCondition": {"list": ["one", "two", "three"], "value": "four"}}`, false},
		{"number representation", `{"listContainsValueCondition": {"list": [1, 552.0, 3], "value": 552}}`, true},
		{"decimal by value", `{"listContainsValueCondition": {"list": [100.2], "value": 55.2}}`, false},
		{"text is not a number", `{"listContainsValueCondition": {"list": ["1"], "value": 1}}`, false},
		{"nested array", `{"listContainsValueCondition": {"list": [[1, [2, 3]], "x"], "value": [1, [2, 3.0]]}}`, true},
		{"nested array order", `{"listContainsValueCondition": {"list": [[1, 2]], "value": [2, 1]}}`, false},
		{"nested array length", `{"listContainsValueCondition": {"list": [[1, 2]], "value": [1, 2, 3]}}`, false},
		{"object member", `{"listContainsValueCondition": {"list": [{"a": 1, "b": [true]}], "value": {"b": [true], "a": 1.0}}}`, true},
		{"object extra key", `{"listContainsValueCondition": {"list": [{"a": 1}], "value": {"a": 1, "b": 2}}}`, false},
		{"null member", `{"listContainsValueCondition": {"list": [null], "value": null}}`, true},
		{"list from variable", `{"listContainsValueCondition": {"list": {"variableValue": {"name": "fruits"}}, "value": "pear"}}`, true},
		{"list from parsed text", `{"listContainsValueCondition": {
			"list": {"objectPathLookup": {"path": "/items", "object": {"jsonTextParse": {"text": {"objectPathLookup": {"path": "/trigger/body"}}}}}},
			"value": 552
		}}`, true},
	}, provider.NewMapDataContext(
		map[string]any{"body": `{"items": [552.0, 55.2]}`},
		map[string]any{"fruits": []any{"apple", "pear"}},
	))
}

func TestObjectContainsProperty(t *testing.T) {
	runEvalCases(t, []evalCase{
		{"present", `{"objectContainsPropertyCondition": {"object": {"a": 1}, "property": "a"}}`, true},
		{"absent", `{"objectContainsPropertyCondition": {"object": {"a": 1}, "property": "b"}}`, false},
		{"null value", `{"objectContainsPropertyCondition": {"object": {"a": null}, "property": "a"}}`, true},
		{"nested object value", `{"objectContainsPropertyCondition": {"object": {"a": {"b": []}}, "property": "a"}}`, true},
		{"not recursive", `{"objectContainsPropertyCondition": {"object": {"a": {"b": 1}}, "property": "b"}}`, false},
		{"object from trigger", `{"objectContainsPropertyCondition": {"object": {"objectPathLookup": {"path": "/trigger"}}, "property": "headers"}}`, true},
	}, provider.NewMapDataContext(map[string]any{"headers": map[string]any{}}, nil))
}

func TestCollections_Errors(t *testing.T) {
	runErrorCases(t, []errorCase{
		{
			name:  "list literal must be an array",
			raw:   `{"listContainsValueCondition": {"list": "one", "value": "one"}}`,
			kind:  types.ErrFormat,
			title: types.TitleInvalidListFormat,
			path:  "/listContainsValueCondition/list",
		},
		{
			name:  "looked-up list must be an array",
			raw:   `{"listContainsValueCondition": {"list": {"objectPathLookup": {"path": "/trigger/n"}}, "value": 1}}`,
			kind:  types.ErrFormat,
			title: types.TitleInvalidListFormat,
		},
		{
			name:  "object must be an object",
			raw:   `{"objectContainsPropertyCondition": {"object": [1], "property": "a"}}`,
			kind:  types.ErrFormat,
			title: types.TitleInvalidObjectFormat,
		},
	}, provider.NewMapDataContext(map[string]any{"n": 1}, nil))
}

// Property-based test: a list contains each of its own elements, whatever
// numeric rendering the query uses.
func TestListContainsValue_PropertyDeepEquality(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	properties.Property("nested element matches iff equal", prop.ForAll(
		func(a, b, c int, swap bool) bool {
			list := fmt.Sprintf(`[[%d, [%d, {"k": %d}]]]`, a, b, c)
			query := fmt.Sprintf(`[%d.0, [%d, {"k": %d}]]`, a, b, c)
			if swap {
				query = fmt.Sprintf(`[[%d, {"k": %d}], %d]`, b, c, a)
			}
			raw := fmt.Sprintf(`{"listContainsValueCondition": {"list": %s, "value": %s}}`, list, query)
			got, err := eval(t, raw, nil)
			return err == nil && got == !swap
		},
		gen.IntRange(-1000, 1000),
		gen.IntRange(-1000, 1000),
		gen.IntRange(-1000, 1000),
		gen.Bool(),
	))

	properties.TestingRun(t)
}
