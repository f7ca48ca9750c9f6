// Package exprparse builds the parsers for expressions of a given type out of
// the operators in an operator table.
//
// For a type T with operators at priorities p1 < p2 < ... < pn, the parser
// for T is a chain of layers. layer(pi) tries each operator at pi in order
// and then falls back to layer(pi+1); the last layer falls back to the
// default parser of T, which matches parenthesized expressions, casts, plain
// host expressions of a compatible type, null, and read-as syntax. An operand
// of an operator at priority p is parsed starting at the loosest layer that is
// tighter than p, or at p itself if the operand is inclusive.
package exprparse

import (
	"fmt"
	"strings"

	"github.com/dekarrin/mixfix/internal/optable"
	"github.com/dekarrin/mixfix/internal/packrat"
	"github.com/dekarrin/mixfix/internal/syntax"
	"github.com/dekarrin/mixfix/internal/types"
)

// exprParser is a parser of any expression.
type exprParser = packrat.Parser[syntax.Expr]

// Cache owns the Builder of each operator table used in a compilation.
// Builders only ever grow, so a table that goes out of scope must be dropped
// explicitly.
type Cache struct {
	res      Resolver
	builders map[*optable.Table]*Builder
}

// NewCache creates an empty Cache whose builders use res.
func NewCache(res Resolver) *Cache {
	return &Cache{
		res:      res,
		builders: map[*optable.Table]*Builder{},
	}
}

// Builder returns the Builder for tbl, creating it if needed.
func (c *Cache) Builder(tbl *optable.Table) *Builder {
	b, ok := c.builders[tbl]
	if !ok {
		b = NewBuilder(c.res, tbl)
		c.builders[tbl] = b
	}
	return b
}

// Drop discards the Builder for tbl along with every parser it built.
func (c *Cache) Drop(tbl *optable.Table) {
	delete(c.builders, tbl)
}

// Len returns the number of tables that have a Builder.
func (c *Cache) Len() int {
	return len(c.builders)
}

// Builder creates and caches the parsers for one operator table. Parsers are
// built the first time they are asked for. A Builder is not safe for
// concurrent use.
type Builder struct {
	res   Resolver
	table *optable.Table

	layers       map[*types.Type][]*exprParser
	readAsLayers map[*types.Type][]*exprParser
	defaults     map[*types.Type]*exprParser
	readAsBases  map[*types.Type]*exprParser
	operations   map[*optable.Operator]*exprParser
	arguments    map[*types.Method]*packrat.Parser[[]syntax.Expr]

	typeName *packrat.Parser[*types.Type]
	host     *hostGrammar
}

// NewBuilder creates a Builder for the operators in tbl.
func NewBuilder(res Resolver, tbl *optable.Table) *Builder {
	b := &Builder{
		res:          res,
		table:        tbl,
		layers:       map[*types.Type][]*exprParser{},
		readAsLayers: map[*types.Type][]*exprParser{},
		defaults:     map[*types.Type]*exprParser{},
		readAsBases:  map[*types.Type]*exprParser{},
		operations:   map[*optable.Operator]*exprParser{},
		arguments:    map[*types.Method]*packrat.Parser[[]syntax.Expr]{},
	}
	b.typeName = b.makeTypeName()
	b.host = b.makeHostGrammar()
	return b
}

// Table returns the operator table the Builder was made for.
func (b *Builder) Table() *optable.Table {
	return b.table
}

// Expression returns the parser for an expression of type t.
func (b *Builder) Expression(t *types.Type) *exprParser {
	layers := b.layersFor(t)
	if len(layers) > 0 {
		return layers[0]
	}
	return b.defaultFor(t)
}

// ReadAsExpression returns the parser for the read-as syntax of type t.
func (b *Builder) ReadAsExpression(t *types.Type) *exprParser {
	layers := b.readAsLayersFor(t)
	if len(layers) > 0 {
		return layers[0]
	}
	return b.readAsBaseFor(t)
}

// TypeName returns the parser for a type name, such as "int" or "Foo[][]".
func (b *Builder) TypeName() *packrat.Parser[*types.Type] {
	return b.typeName
}

func (b *Builder) layersFor(t *types.Type) []*exprParser {
	if ps, ok := b.layers[t]; ok {
		return ps
	}
	ps := b.chain(t, b.table.Levels(t), b.defaultFor(t), "")
	b.layers[t] = ps
	return ps
}

func (b *Builder) readAsLayersFor(t *types.Type) []*exprParser {
	if ps, ok := b.readAsLayers[t]; ok {
		return ps
	}
	ps := b.chain(t, b.table.ReadAsLevels(t), b.readAsBaseFor(t), "read-as ")
	b.readAsLayers[t] = ps
	return ps
}

// chain builds one layer per level, from the tightest outward, each falling
// back to the next tighter one and the tightest falling back to base.
func (b *Builder) chain(t *types.Type, levels optable.Levels, base *exprParser, label string) []*exprParser {
	ps := make([]*exprParser, len(levels))
	next := base
	for i := len(levels) - 1; i >= 0; i-- {
		alts := make([]*exprParser, 0, len(levels[i].Operators)+1)
		for _, op := range levels[i].Operators {
			alts = append(alts, b.operation(op))
		}
		alts = append(alts, next)

		ps[i] = packrat.Choice(alts...).Named(fmt.Sprintf("%s%s@%d", label, t, levels[i].Priority))
		next = ps[i]
	}
	return ps
}

// operand returns a reference to the parser for an operand of type t in an
// operator of the given priority. The layer it refers to is only looked up
// when the operand is first parsed.
func (b *Builder) operand(t *types.Type, priority int, inclusive bool, readAs bool) *exprParser {
	return packrat.Ref(func() *exprParser {
		levels := b.table.Levels(t)
		if readAs {
			levels = b.table.ReadAsLevels(t)
		}

		idx := levels.Higher(priority)
		if inclusive {
			idx = levels.Ceiling(priority)
		}

		if readAs {
			if idx < 0 {
				return b.readAsBaseFor(t)
			}
			return b.readAsLayersFor(t)[idx]
		}
		if idx < 0 {
			return b.defaultFor(t)
		}
		return b.layersFor(t)[idx]
	})
}

func (b *Builder) expressionRef(t *types.Type) *exprParser {
	return packrat.Ref(func() *exprParser { return b.Expression(t) })
}

// operation returns the parser for one operator.
func (b *Builder) operation(op *optable.Operator) *exprParser {
	if p, ok := b.operations[op]; ok {
		return p
	}

	operands := packrat.Unit([]syntax.Expr{})
	for _, el := range op.Pattern {
		switch el.Kind {
		case optable.KeywordElement:
			operands = packrat.Postfix(operands, el.Keyword)
		case optable.OperandElement, optable.VariableOperandElement, optable.OptionalOperandElement:
			operands = packrat.Map(packrat.Seq(operands, b.operandElement(op, el)), appendOperand)
		case optable.AndPredicateElement:
			operands = packrat.Left(operands, packrat.AndPredicate(b.predicateElement(op, el)))
		case optable.NotPredicateElement:
			operands = packrat.Left(operands, packrat.NotPredicate(b.predicateElement(op, el)))
		}
	}

	p := packrat.Map(operands, op.Build)
	if len(op.Throws) > 0 {
		p = packrat.Effect(p, func(env *Env, node syntax.Expr, r *packrat.Reader) {
			env.throw(node, op.Throws, r.Line(r.Pos()))
		})
	}
	p = p.Named("operator " + op.Name)

	b.operations[op] = p
	return p
}

func appendOperand(pair packrat.Pair[[]syntax.Expr, syntax.Expr]) []syntax.Expr {
	list := make([]syntax.Expr, len(pair.First), len(pair.First)+1)
	copy(list, pair.First)
	return append(list, pair.Second)
}

func (b *Builder) predicateElement(op *optable.Operator, el optable.Element) *exprParser {
	t, err := b.res.TypeByName(el.TypeName)
	if err != nil {
		return packrat.Error[syntax.Expr](fmt.Errorf("operator %s: %w", op.Name, err))
	}
	return b.operand(t, op.Priority, el.Inclusive, op.ReadAs)
}

func (b *Builder) operandElement(op *optable.Operator, el optable.Element) *exprParser {
	t, err := b.res.TypeByName(el.TypeName)
	if err != nil {
		return packrat.Error[syntax.Expr](fmt.Errorf("operator %s: %w", op.Name, err))
	}
	single := b.operand(t, op.Priority, el.Inclusive, op.ReadAs)

	switch el.Kind {
	case optable.VariableOperandElement:
		comp, err := b.res.ComponentType(t)
		if err != nil {
			return packrat.Error[syntax.Expr](fmt.Errorf("operator %s: %w", op.Name, err))
		}
		compParser := b.operand(comp, op.Priority, el.Inclusive, op.ReadAs)

		var rep *packrat.Parser[[]syntax.Expr]
		if el.MinOne {
			rep = packrat.Rep1Sep(compParser, el.Separator)
		} else {
			rep = packrat.RepSep(compParser, el.Separator)
		}

		bucket := packrat.Map(rep, func(args []syntax.Expr) syntax.Expr {
			return &syntax.VariableArguments{Typed: syntax.Typed{Of: t}, Args: args}
		})
		return packrat.Choice(single, bucket)

	case optable.OptionalOperandElement:
		def, err := b.defaultValue(t, el.Default)
		if err != nil {
			return packrat.Error[syntax.Expr](fmt.Errorf("operator %s: %w", op.Name, err))
		}
		return packrat.Optional(single, def)

	default:
		return single
	}
}

// defaultValue builds the node that stands in for an absent optional operand.
// name is either a qualified static method name or "new" followed by a class
// name for its zero-argument constructor.
func (b *Builder) defaultValue(t *types.Type, name string) (syntax.Expr, error) {
	if strings.HasPrefix(name, "new ") {
		cls, err := b.res.TypeByName(strings.TrimPrefix(name, "new "))
		if err != nil {
			return nil, fmt.Errorf("default of %s: %w", t, err)
		}
		for _, c := range b.res.Constructors(cls) {
			if len(c.Params) == 0 {
				if !b.res.IsSubtype(cls, t) {
					return nil, fmt.Errorf("default of %s: %s is not a %s", t, cls, t)
				}
				return &syntax.New{Typed: syntax.Typed{Of: cls}, Constructor: c, Args: []syntax.Expr{}}, nil
			}
		}
		return nil, fmt.Errorf("default of %s: %s has no constructor without arguments", t, cls)
	}

	meth, err := b.res.StaticMethod(name)
	if err != nil {
		return nil, fmt.Errorf("default of %s: %w", t, err)
	}
	if !b.res.IsSubtype(meth.Return, t) {
		return nil, fmt.Errorf("default of %s: %s returns %s", t, meth, meth.Return)
	}
	return &syntax.StaticMethodCall{Typed: syntax.Typed{Of: meth.Return}, Method: meth, Args: []syntax.Expr{}}, nil
}

// defaultFor returns the parser of the forms of t that are not operators.
func (b *Builder) defaultFor(t *types.Type) *exprParser {
	if p, ok := b.defaults[t]; ok {
		return p
	}

	parenthesized := packrat.Enclosed("(", b.expressionRef(t), ")")

	rCast := packrat.Bind(
		packrat.Enclosed("(", packrat.Seq(packrat.Postfix(b.typeName, "->"), packrat.Optional(b.typeName, t)), ")"),
		func(pair packrat.Pair[*types.Type, *types.Type]) *exprParser {
			return b.castBody(t, pair.First, pair.Second)
		},
	)

	lCast := packrat.Bind(
		packrat.Enclosed("(", packrat.Seq(packrat.Optional(b.typeName, t), packrat.Prefix("<-", b.typeName)), ")"),
		func(pair packrat.Pair[*types.Type, *types.Type]) *exprParser {
			return b.castBody(t, pair.Second, pair.First)
		},
	)

	hostExpr := packrat.Bind(b.host.expr, func(e syntax.Expr) *exprParser {
		if t.IsVoid() || b.res.IsSubtype(e.Type(), t) {
			return packrat.Unit(e)
		}
		return packrat.Failing[syntax.Expr](fmt.Sprintf("type mismatch: expected %s but found %s", t, e.Type()), 0)
	})

	alts := []*exprParser{parenthesized, rCast, lCast, hostExpr}

	if !t.IsPrimitive() {
		nullType, err := b.res.TypeByName("null")
		if err != nil {
			alts = append(alts, packrat.Error[syntax.Expr](err))
		} else {
			alts = append(alts, packrat.Map(packrat.Keyword("null"), func(string) syntax.Expr {
				return &syntax.NullLiteral{Typed: syntax.Typed{Of: nullType}}
			}))
		}
	}

	alts = append(alts, packrat.Ref(func() *exprParser { return b.ReadAsExpression(t) }))

	p := packrat.Choice(alts...).Named("default " + t.String())
	b.defaults[t] = p
	return p
}

// castBody parses the operand of a cast from one type to another, in a
// context that expects t.
func (b *Builder) castBody(t, from, to *types.Type) *exprParser {
	return packrat.Bind(b.expressionRef(from), func(e syntax.Expr) *exprParser {
		if !b.res.IsSubtype(to, t) {
			return packrat.Failing[syntax.Expr](fmt.Sprintf("type mismatch: expected %s but found %s", t, to), 0)
		}
		if !b.res.IsCastable(from, to) {
			return packrat.Failing[syntax.Expr](fmt.Sprintf("%s cannot cast to %s", from, to), 0)
		}
		return packrat.Unit[syntax.Expr](&syntax.Cast{Typed: syntax.Typed{Of: to}, Expr: e})
	})
}

// readAsBaseFor returns the built-in read-as syntax of t, if it has one.
func (b *Builder) readAsBaseFor(t *types.Type) *exprParser {
	if p, ok := b.readAsBases[t]; ok {
		return p
	}

	var p *exprParser
	switch t.ReadAs {
	case types.ReadAsIdentifier:
		p = packrat.Map(packrat.Identifier, func(name string) syntax.Expr {
			return &syntax.IdentifierLiteral{Typed: syntax.Typed{Of: t}, Name: name}
		})
	case types.ReadAsLetter:
		p = packrat.Map(packrat.Letter, func(ch rune) syntax.Expr {
			return &syntax.CharLiteral{Typed: syntax.Typed{Of: t}, Value: ch}
		})
	case types.ReadAsType:
		p = packrat.Map(b.typeName, func(named *types.Type) syntax.Expr {
			return &syntax.TypeLiteral{Typed: syntax.Typed{Of: t}, Named: named}
		})
	default:
		p = packrat.Failing[syntax.Expr](fmt.Sprintf("%s has no read-as syntax", t), 0)
	}

	p = p.Named("read-as base " + t.String())
	b.readAsBases[t] = p
	return p
}

func (b *Builder) makeTypeName() *packrat.Parser[*types.Type] {
	brackets := packrat.Rep(packrat.Keywords("[", "]"))
	return packrat.Bind(packrat.Seq(packrat.Identifier, brackets), func(pair packrat.Pair[string, []string]) *packrat.Parser[*types.Type] {
		t, err := b.res.TypeByName(pair.First)
		if err != nil {
			return packrat.Error[*types.Type](err)
		}
		if len(pair.Second) > 0 {
			if t.IsVoid() {
				return packrat.Failing[*types.Type]("cannot make an array of void", 10)
			}
			t = b.res.ArrayOf(t, len(pair.Second))
		}
		return packrat.Unit(t)
	}).Named("type name")
}
