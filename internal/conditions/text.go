// internal/conditions/text.go
package conditions

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/solatis/automata/internal/provider"
	"github.com/solatis/automata/internal/value"
	"golang.org/x/text/cases"
)

/*
 * Text predicates.
 *
 *   textIsEqualToCondition   {text, isEqualTo,  ignoreCase?}
 *   textContainsCondition    {text, contains,   ignoreCase?}
 *   textStartsWithCondition  {text, startsWith, ignoreCase?}
 *   textEndsWithCondition    {text, endsWith,   ignoreCase?}
 *
 * Case-sensitive unless ignoreCase is true. Case-insensitive mode applies
 * Unicode full case folding to both operands, which is locale-independent:
 * "Straße" folds to "strasse" everywhere, and the Turkish dotted/dotless i
 * are not special-cased.
 */

type textPredicate struct {
	kind  string
	field string
	test  func(s, operand string) bool
}

var textPredicates = []textPredicate{
	{kind: "textIsEqualToCondition", field: "isEqualTo", test: func(s, o string) bool { return s == o }},
	{kind: "textContainsCondition", field: "contains", test: strings.Contains},
	{kind: "textStartsWithCondition", field: "startsWith", test: strings.HasPrefix},
	{kind: "textEndsWithCondition", field: "endsWith", test: strings.HasSuffix},
}

func registerText(reg *provider.Registry) {
	for _, pred := range textPredicates {
		provider.Register(reg, pred.kind, value.Boolean, pred.decode)
	}
}

func (pred textPredicate) decode(d *provider.Decoder, path string, body json.RawMessage) (provider.Builder[bool], error) {
	props, err := d.Properties(path, body, []string{"text", pred.field}, "ignoreCase")
	if err != nil {
		return nil, err
	}
	text, err := provider.Decode(d, path, "text", props["text"], value.Text)
	if err != nil {
		return nil, err
	}
	operand, err := provider.Decode(d, path, pred.field, props[pred.field], value.Text)
	if err != nil {
		return nil, err
	}
	ignoreCase, err := provider.Optional(d, path, "ignoreCase", props["ignoreCase"], value.Boolean, false)
	if err != nil {
		return nil, err
	}

	return provider.BuilderFunc[bool](func(deps provider.Dependencies) (provider.Provider[bool], error) {
		tp, err := text.Build(deps)
		if err != nil {
			return nil, err
		}
		op, err := operand.Build(deps)
		if err != nil {
			return nil, err
		}
		ip, err := ignoreCase.Build(deps)
		if err != nil {
			return nil, err
		}
		return &textProvider{path: path, text: tp, operand: op, ignoreCase: ip, test: pred.test}, nil
	}), nil
}

type textProvider struct {
	path       string
	text       provider.Provider[string]
	operand    provider.Provider[string]
	ignoreCase provider.Provider[bool]
	test       func(s, operand string) bool
}

func (p *textProvider) Resolve(ctx context.Context, pc *provider.Context) (value.Data[bool], error) {
	text, operand, ignoreCase, err := provider.Resolve3(ctx, pc, p.path, p.text, p.operand, p.ignoreCase)
	if err != nil {
		return value.Data[bool]{}, err
	}

	s, o := text.Value, operand.Value
	if ignoreCase.Value {
		s, o = fold(s), fold(o)
	}
	result := p.test(s, o)
	return value.NewData(result, result), nil
}

// fold returns the case-folded form of s. A Caser carries state, so each
// call gets its own.
func fold(s string) string {
	return cases.Fold().String(s)
}
