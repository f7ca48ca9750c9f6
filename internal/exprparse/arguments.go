package exprparse

import (
	"fmt"

	"github.com/dekarrin/mixfix/internal/packrat"
	"github.com/dekarrin/mixfix/internal/syntax"
	"github.com/dekarrin/mixfix/internal/types"
)

// Arguments returns the parser for the parenthesized argument list of a call
// to m. For a variadic method the trailing arguments may be given either as a
// single array or as zero or more values of its component type; in the latter
// case they are collected into one VariableArguments node.
func (b *Builder) Arguments(m *types.Method) *packrat.Parser[[]syntax.Expr] {
	if p, ok := b.arguments[m]; ok {
		return p
	}
	p := b.makeArguments(m).Named("arguments of " + m.String())
	b.arguments[m] = p
	return p
}

func (b *Builder) makeArguments(m *types.Method) *packrat.Parser[[]syntax.Expr] {
	n := len(m.Params)
	if n == 0 {
		return packrat.Map(packrat.Keywords("(", ")"), func(string) []syntax.Expr {
			return []syntax.Expr{}
		})
	}

	params := make([]*exprParser, n)
	for i := range m.Params {
		params[i] = b.expressionRef(m.Params[i])
	}
	normal := packrat.SeqList(params, ",")

	if !m.VarArgs {
		return packrat.Enclosed("(", normal, ")")
	}

	arrayType := m.Params[n-1]
	comp, err := b.res.ComponentType(arrayType)
	if err != nil {
		return packrat.Error[[]syntax.Expr](fmt.Errorf("variadic parameter of %s: %w", m, err))
	}
	bucket := func(args []syntax.Expr) syntax.Expr {
		return &syntax.VariableArguments{Typed: syntax.Typed{Of: arrayType}, Args: args}
	}

	if n == 1 {
		varArgs := packrat.Map(packrat.RepSep(b.expressionRef(comp), ","), func(args []syntax.Expr) []syntax.Expr {
			return []syntax.Expr{bucket(args)}
		})
		return packrat.Enclosed("(", packrat.Choice(normal, varArgs), ")")
	}

	fixed := packrat.SeqList(params[:n-1], ",")

	someVarArgs := packrat.Map(
		packrat.Seq(packrat.Postfix(fixed, ","), packrat.Rep1Sep(b.expressionRef(comp), ",")),
		func(pair packrat.Pair[[]syntax.Expr, []syntax.Expr]) []syntax.Expr {
			args := make([]syntax.Expr, len(pair.First), len(pair.First)+1)
			copy(args, pair.First)
			return append(args, bucket(pair.Second))
		},
	)

	noVarArgs := packrat.Map(fixed, func(fixedArgs []syntax.Expr) []syntax.Expr {
		args := make([]syntax.Expr, len(fixedArgs), len(fixedArgs)+1)
		copy(args, fixedArgs)
		return append(args, bucket([]syntax.Expr{}))
	})

	return packrat.Enclosed("(", packrat.Choice(normal, someVarArgs, noVarArgs), ")")
}
