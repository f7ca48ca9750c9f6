package optable

import (
	"testing"

	"github.com/dekarrin/mixfix/internal/syntax"
	"github.com/dekarrin/mixfix/internal/types"
	"github.com/stretchr/testify/assert"
)

type listSource struct {
	ops []*Operator
}

func (s listSource) producing(t *types.Type, readAs bool) []*Operator {
	var out []*Operator
	for _, op := range s.ops {
		if op.Result == t && op.ReadAs == readAs {
			out = append(out, op)
		}
	}
	return out
}

func (s listSource) OperatorsProducing(t *types.Type) []*Operator {
	return s.producing(t, false)
}

func (s listSource) ReadAsOperatorsProducing(t *types.Type) []*Operator {
	return s.producing(t, true)
}

var (
	intType  = &types.Type{Name: "int", Kind: types.Primitive}
	mathType = &types.Type{Name: "Arith", Kind: types.Class}
)

func binop(name string, kw string, priority int) *Operator {
	pattern := []Element{Operand("int", false), Keyword(kw), Operand("int", false)}
	return &Operator{
		ID:       NewID("Arith", name, priority, pattern),
		Name:     name,
		Owner:    mathType,
		Result:   intType,
		Pattern:  pattern,
		Priority: priority,
	}
}

func Test_Table_Levels(t *testing.T) {
	assert := assert.New(t)

	plus := binop("plus", "+", 10)
	times := binop("times", "*", 20)
	minus := binop("minus", "-", 10)
	neg := &Operator{Name: "neg", Owner: mathType, Result: intType, Priority: 30, Pattern: []Element{Keyword("-"), Operand("int", true)}}
	ident := &Operator{Name: "var", Owner: mathType, Result: intType, Priority: 0, ReadAs: true}

	tbl := New("test", listSource{ops: []*Operator{plus, times, minus, neg, ident}})

	levels := tbl.Levels(intType)

	assert.Len(levels, 3)
	assert.Equal(10, levels[0].Priority)
	assert.Equal([]*Operator{plus, minus}, levels[0].Operators)
	assert.Equal(20, levels[1].Priority)
	assert.Equal(30, levels[2].Priority)

	readAs := tbl.ReadAsLevels(intType)
	assert.Len(readAs, 1)
	assert.Equal([]*Operator{ident}, readAs[0].Operators)

	// computed once
	again := tbl.Levels(intType)
	assert.Same(&levels[0], &again[0])
}

func Test_Levels_CeilingHigher(t *testing.T) {
	ls := Levels{{Priority: 10}, {Priority: 20}, {Priority: 30}}

	testCases := []struct {
		name          string
		p             int
		expectCeiling int
		expectHigher  int
	}{
		{name: "below all", p: 5, expectCeiling: 0, expectHigher: 0},
		{name: "exact level", p: 20, expectCeiling: 1, expectHigher: 2},
		{name: "between levels", p: 25, expectCeiling: 2, expectHigher: 2},
		{name: "tightest level", p: 30, expectCeiling: 2, expectHigher: -1},
		{name: "above all", p: 40, expectCeiling: -1, expectHigher: -1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			assert.Equal(tc.expectCeiling, ls.Ceiling(tc.p))
			assert.Equal(tc.expectHigher, ls.Higher(tc.p))
		})
	}
}

func Test_Operator_Build(t *testing.T) {
	assert := assert.New(t)

	plus := binop("plus", "+", 10)
	one := &syntax.IntLiteral{Typed: syntax.Typed{Of: intType}, Value: 1}

	node := plus.Build([]syntax.Expr{one, one})
	op, ok := node.(*syntax.Operation)
	assert.True(ok)
	assert.Equal(plus.ID, op.OperatorID)
	assert.Equal(intType, op.Type())

	plus.Action = func(o *Operator, operands []syntax.Expr) syntax.Expr { return operands[0] }
	assert.Same(one, plus.Build([]syntax.Expr{one, one}))
}

func Test_NewID_deterministic(t *testing.T) {
	assert := assert.New(t)

	p := []Element{Operand("int", false), Keyword("+"), Operand("int", true)}

	assert.Equal(NewID("A", "plus", 10, p), NewID("A", "plus", 10, p))
	assert.NotEqual(NewID("A", "plus", 10, p), NewID("A", "plus", 20, p))
	assert.NotEqual(NewID("A", "plus", 10, p), NewID("B", "plus", 10, p))
}

func Test_Operator_Signature(t *testing.T) {
	assert := assert.New(t)

	op := &Operator{Pattern: []Element{
		Keyword("sum"),
		VariableOperand("int[]", true, ","),
		OptionalOperand("int", "Defaults.zero"),
		NotPredicate("int", true),
	}}

	assert.Equal(`"sum" _+(","):int[] _?:int=Defaults.zero() !=int`, op.Signature())
}

func Test_Table_Dump(t *testing.T) {
	assert := assert.New(t)

	tbl := New("test", listSource{ops: []*Operator{binop("plus", "+", 10)}})

	out := tbl.Dump(intType, 80)
	assert.Contains(out, "Arith.plus")
	assert.Contains(out, "Priority")

	empty := New("empty", listSource{}).Dump(intType, 80)
	assert.Equal("no operators produce int in empty", empty)
}
