package conditions

import (
	"testing"

	"github.com/solatis/automata/internal/provider"
	"github.com/solatis/automata/internal/types"
)

func TestTextPredicates(t *testing.T) {
	runEvalCases(t, []evalCase{
		{"equal is case-sensitive by default", `{"textIsEqualToCondition": {"text": "KenGurow", "isEqualTo": "kengurow"}}`, false},
		{"equal ignoring case", `{"textIsEqualToCondition": {"text": "KenGurow", "isEqualTo": "kengurow", "ignoreCase": true}}`, true},
		{"equal with explicit case sensitivity", `{"textIsEqualToCondition": {"text": "a", "isEqualTo": "a", "ignoreCase": false}}`, true},
		{"contains", `{"textContainsCondition": {"text": "the quick brown fox", "contains": "brown"}}`, true},
		{"contains wrong case", `{"textContainsCondition": {"text": "the quick brown fox", "contains": "BROWN"}}`, false},
		{"contains ignoring case", `{"textContainsCondition": {"text": "the quick brown fox", "contains": "BROWN", "ignoreCase": true}}`, true},
		{"starts with", `{"textStartsWithCondition": {"text": "automation", "startsWith": "auto"}}`, true},
		{"starts with ignoring case", `{"textStartsWithCondition": {"text": "Automation", "startsWith": "AUTO", "ignoreCase": true}}`, true},
		{"ends with", `{"textEndsWithCondition": {"text": "automation", "endsWith": "tion"}}`, true},
		{"ends with mismatch", `{"textEndsWithCondition": {"text": "automation", "endsWith": "auto"}}`, false},
		{"full case folding", `{"textIsEqualToCondition": {"text": "Straße", "isEqualTo": "STRASSE", "ignoreCase": true}}`, true},
		{"empty operand", `{"textStartsWithCondition": {"text": "x", "startsWith": ""}}`, true},
		{"number rendered as text", `{"textIsEqualToCondition": {"text": 12.50, "isEqualTo": "12.50"}}`, true},
		{"text from lookup", `{"textEndsWithCondition": {"text": {"objectPathLookup": {"path": "/trigger/email"}}, "endsWith": "@example.com"}}`, true},
		{"ignoreCase from lookup", `{"textIsEqualToCondition": {"text": "A", "isEqualTo": "a", "ignoreCase": {"variableValue": {"name": "relaxed"}}}}`, true},
	}, provider.NewMapDataContext(map[string]any{"email": "ken@example.com"}, map[string]any{"relaxed": true}))
}

func TestTextPredicates_Errors(t *testing.T) {
	runErrorCases(t, []errorCase{
		{
			name:  "list has no text form",
			raw:   `{"textContainsCondition": {"text": ["a"], "contains": "a"}}`,
			kind:  types.ErrFormat,
			title: types.TitleInvalidTextFormat,
			path:  "/textContainsCondition/text",
		},
		{
			name:  "ignoreCase must be boolean",
			raw:   `{"textIsEqualToCondition": {"text": "a", "isEqualTo": "a", "ignoreCase": "yes"}}`,
			kind:  types.ErrFormat,
			title: types.TitleInvalidBooleanFormat,
		},
		{
			name:  "wrong operand property",
			raw:   `{"textStartsWithCondition": {"text": "a", "endsWith": "a"}}`,
			kind:  types.ErrConfiguration,
			title: types.TitleUnexpectedProperty,
		},
	}, nil)
}
