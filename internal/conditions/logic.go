package conditions

import (
	"context"
	"encoding/json"

	"github.com/solatis/automata/internal/provider"
	"github.com/solatis/automata/internal/value"
)

// Boolean combinator kinds.
const (
	KindNot = "notCondition"
	KindXOr = "xOrCondition"
	KindAnd = "andCondition"
	KindOr  = "orCondition"
)

func registerLogic(reg *provider.Registry) {
	provider.Register(reg, KindNot, value.Boolean, decodeNot)
	provider.Register(reg, KindXOr, value.Boolean, decodeCombinator(2, exactlyOne))
	provider.Register(reg, KindAnd, value.Boolean, decodeCombinator(1, allOf))
	provider.Register(reg, KindOr, value.Boolean, decodeCombinator(1, anyOf))
}

func allOf(operands []bool) bool {
	for _, b := range operands {
		if !b {
			return false
		}
	}
	return true
}

func anyOf(operands []bool) bool {
	for _, b := range operands {
		if b {
			return true
		}
	}
	return false
}

func exactlyOne(operands []bool) bool {
	n := 0
	for _, b := range operands {
		if b {
			n++
		}
	}
	return n == 1
}

func decodeNot(d *provider.Decoder, path string, body json.RawMessage) (provider.Builder[bool], error) {
	props, err := d.Properties(path, body, []string{"condition"})
	if err != nil {
		return nil, err
	}
	operand, err := Decode(d, path, "condition", props["condition"])
	if err != nil {
		return nil, err
	}
	return &logicBuilder{
		path:     path,
		operands: []provider.Builder[bool]{operand},
		combine:  func(operands []bool) bool { return !operands[0] },
	}, nil
}

func decodeCombinator(min int, combine func([]bool) bool) provider.Factory[bool] {
	return func(d *provider.Decoder, path string, body json.RawMessage) (provider.Builder[bool], error) {
		props, err := d.Properties(path, body, []string{"conditions"})
		if err != nil {
			return nil, err
		}
		operands, err := DecodeList(d, path, "conditions", props["conditions"], min)
		if err != nil {
			return nil, err
		}
		return &logicBuilder{path: path, operands: operands, combine: combine}, nil
	}
}

// logicBuilder combines the results of operand conditions. Every operand is
// resolved before combining; a failed operand fails the combination rather
// than counting as false.
type logicBuilder struct {
	path     string
	operands []provider.Builder[bool]
	combine  func([]bool) bool
}

func (b *logicBuilder) Build(deps provider.Dependencies) (provider.Provider[bool], error) {
	operands, err := provider.BuildAll(deps, b.operands)
	if err != nil {
		return nil, err
	}
	return &logicProvider{path: b.path, operands: operands, combine: b.combine}, nil
}

type logicProvider struct {
	path     string
	operands []provider.Provider[bool]
	combine  func([]bool) bool
}

func (p *logicProvider) Resolve(ctx context.Context, pc *provider.Context) (value.Data[bool], error) {
	resolved, err := provider.ResolveAll(ctx, pc, p.path, p.operands)
	if err != nil {
		return value.Data[bool]{}, err
	}
	operands := make([]bool, len(resolved))
	for i, d := range resolved {
		operands[i] = d.Value
	}
	result := p.combine(operands)
	return value.NewData(result, result), nil
}
