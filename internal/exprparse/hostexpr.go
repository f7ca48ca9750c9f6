package exprparse

import (
	"fmt"

	"github.com/dekarrin/mixfix/internal/packrat"
	"github.com/dekarrin/mixfix/internal/syntax"
	"github.com/dekarrin/mixfix/internal/types"
)

// Failure scores of the host grammar.
const (
	scoreUnknownVariable = 5
	scoreMember          = 10

	// a missing method outranks a missing field of the same name when an
	// argument list follows.
	scoreCall = 15
)

// hostGrammar is the grammar of plain host expressions: literals, variables,
// calls, field and array access, object and array creation, casts, and
// assignment. Operands of host expressions (call arguments, array indexes,
// the right side of an assignment) are full expressions.
type hostGrammar struct {
	expr      *exprParser
	dotAccess *exprParser
	primary   *exprParser
	literal   *exprParser
}

type exprIdent = packrat.Pair[syntax.Expr, string]
type classIdent = packrat.Pair[*types.Type, string]

func (b *Builder) makeHostGrammar() *hostGrammar {
	h := &hostGrammar{}
	dotRef := packrat.Ref(func() *exprParser { return h.dotAccess })

	intType, intErr := b.res.TypeByName("int")

	className := packrat.Bind(packrat.Identifier, func(name string) *packrat.Parser[*types.Type] {
		t, err := b.res.TypeByName(name)
		if err != nil {
			return packrat.Error[*types.Type](err)
		}
		if t.Kind != types.Class {
			return packrat.Failing[*types.Type](fmt.Sprintf("%s is not a class", t), 0)
		}
		return packrat.Unit(t)
	}).Named("class name")

	elemTypeName := packrat.Bind(packrat.Identifier, func(name string) *packrat.Parser[*types.Type] {
		t, err := b.res.TypeByName(name)
		if err != nil {
			return packrat.Error[*types.Type](err)
		}
		if t.IsVoid() || t.Kind == types.Null {
			return packrat.Failing[*types.Type](fmt.Sprintf("cannot make an array of %s", t), 10)
		}
		return packrat.Unit(t)
	})

	var arrayIndex *exprParser
	if intErr != nil {
		arrayIndex = packrat.Error[syntax.Expr](intErr)
	} else {
		arrayIndex = packrat.Enclosed("[", b.expressionRef(intType), "]")
	}

	// "=" that is not the start of "=="
	assignOp := packrat.Left(packrat.Keyword("="), packrat.NotPredicate(packrat.Keyword("=")))

	assignment := packrat.Bind(packrat.Left(dotRef, assignOp), func(left syntax.Expr) *exprParser {
		if !isAssignable(left) {
			return packrat.Failing[syntax.Expr](fmt.Sprintf("cannot assign to %s", left), 10)
		}
		return packrat.Map(b.Expression(left.Type()), func(right syntax.Expr) syntax.Expr {
			return &syntax.Assign{Typed: syntax.Typed{Of: left.Type()}, Target: left, Value: right}
		})
	}).Named("assignment")

	arrayLength := packrat.Bind(packrat.Postfix(packrat.Postfix(dotRef, "."), "length"), func(e syntax.Expr) *exprParser {
		if !e.Type().IsArray() {
			return packrat.Failing[syntax.Expr]("not array type", 0)
		}
		if intErr != nil {
			return packrat.Error[syntax.Expr](intErr)
		}
		return packrat.Unit[syntax.Expr](&syntax.ArrayLength{Typed: syntax.Typed{Of: intType}, Array: e})
	})

	exprDotIdentifier := packrat.Infix(dotRef, ".", packrat.Identifier)

	methodCall := packrat.Bind(exprDotIdentifier, func(pair exprIdent) *exprParser {
		return packrat.Depends(func(env *Env) *exprParser {
			recv, name := pair.First, pair.Second
			methods := b.visibleMethods(env, b.res.InstanceMethods(recv.Type(), name))
			msg := fmt.Sprintf("method %s is not found in %s", name, recv.Type())
			if len(methods) == 0 {
				return missingCall(msg)
			}
			return candidates(methods, func(m *types.Method) *exprParser {
				return b.methodCallArgs(recv, m)
			}, msg, scoreMember)
		})
	})

	fieldAccess := packrat.Bind(exprDotIdentifier, func(pair exprIdent) *exprParser {
		return packrat.Depends(func(env *Env) *exprParser {
			return b.instanceField(env, pair.First, pair.Second)
		})
	})

	arrayAccess := packrat.Bind(packrat.Seq(dotRef, arrayIndex), func(pair packrat.Pair[syntax.Expr, syntax.Expr]) *exprParser {
		arr := pair.First
		if !arr.Type().IsArray() {
			return packrat.Failing[syntax.Expr]("not array type", 0)
		}
		return packrat.Unit[syntax.Expr](&syntax.ArrayAccess{Typed: syntax.Typed{Of: arr.Type().Elem}, Array: arr, Index: pair.Second})
	})

	abbStaticMethodCall := packrat.Bind(packrat.Identifier, func(name string) *exprParser {
		return packrat.Depends(func(env *Env) *exprParser {
			if env.This == nil {
				return packrat.Failing[syntax.Expr]("undefined method: "+name, 0)
			}
			methods := b.visibleMethods(env, b.res.StaticMethods(env.This, name))
			return candidates(methods, b.staticMethodCallArgs, "undefined method: "+name, 0)
		})
	})

	abbInstanceMethodCall := packrat.Bind(packrat.Identifier, func(name string) *exprParser {
		return packrat.Depends(func(env *Env) *exprParser {
			if env.Static {
				return packrat.Failing[syntax.Expr]("cannot abbreviate a receiver of an instance method", 0)
			}
			this := &syntax.This{Typed: syntax.Typed{Of: env.This}}
			methods := b.visibleMethods(env, b.res.InstanceMethods(env.This, name))
			return candidates(methods, func(m *types.Method) *exprParser {
				return b.methodCallArgs(this, m)
			}, "undefined method: "+name, 0)
		})
	})

	abbMethodCall := packrat.Choice(abbStaticMethodCall, abbInstanceMethodCall)

	variable := packrat.Bind(packrat.Identifier, func(name string) *exprParser {
		return packrat.Depends(func(env *Env) *exprParser {
			t, ok := env.Lookup(name)
			if !ok {
				return packrat.Failing[syntax.Expr]("unknown variable: "+name, scoreUnknownVariable)
			}
			return packrat.Unit[syntax.Expr](&syntax.Local{Typed: syntax.Typed{Of: t}, Name: name})
		})
	})

	thisExpr := packrat.Bind(packrat.Keyword("this"), func(string) *exprParser {
		return packrat.Depends(func(env *Env) *exprParser {
			if env.Static {
				return packrat.Failing[syntax.Expr]("cannot use this in a static context", scoreMember)
			}
			return packrat.Unit[syntax.Expr](&syntax.This{Typed: syntax.Typed{Of: env.This}})
		})
	})

	classDotIdentifier := packrat.Infix(className, ".", packrat.Identifier)

	staticMethodCall := packrat.Bind(classDotIdentifier, func(pair classIdent) *exprParser {
		return packrat.Depends(func(env *Env) *exprParser {
			methods := b.visibleMethods(env, b.res.StaticMethods(pair.First, pair.Second))
			if len(methods) == 0 {
				return missingCall(fmt.Sprintf("static method %s.%s is not found", pair.First, pair.Second))
			}
			return candidates(methods, b.staticMethodCallArgs, "suitable static method is not found", scoreMember)
		})
	})

	staticFieldAccess := packrat.Bind(classDotIdentifier, func(pair classIdent) *exprParser {
		return packrat.Depends(func(env *Env) *exprParser {
			return b.staticField(env, pair.First, pair.Second)
		})
	})

	newObject := packrat.Bind(packrat.Prefix("new", className), func(cls *types.Type) *exprParser {
		return packrat.Depends(func(env *Env) *exprParser {
			ctors := b.visibleMethods(env, b.res.Constructors(cls))
			return candidates(ctors, func(c *types.Method) *exprParser {
				return b.throwing(c, packrat.Map(b.Arguments(c), func(args []syntax.Expr) syntax.Expr {
					return &syntax.New{Typed: syntax.Typed{Of: cls}, Constructor: c, Args: args}
				}))
			}, "suitable constructor is not found", scoreMember)
		})
	})

	newArrayDims := packrat.Seq(packrat.Seq(packrat.Prefix("new", elemTypeName), packrat.Rep1(arrayIndex)), packrat.Rep(packrat.Keywords("[", "]")))
	newArray := packrat.Bind(newArrayDims, func(triad packrat.Pair[packrat.Pair[*types.Type, []syntax.Expr], []string]) *exprParser {
		elem, sizes, open := triad.First.First, triad.First.Second, triad.Second
		arrayType := b.res.ArrayOf(elem, len(sizes)+len(open))
		return packrat.Unit[syntax.Expr](&syntax.NewArray{Typed: syntax.Typed{Of: arrayType}, Dims: sizes})
	})

	arrayInit := packrat.Bind(packrat.Prefix("new", b.typeName), func(t *types.Type) *exprParser {
		comp, err := b.res.ComponentType(t)
		if err != nil {
			return packrat.Error[syntax.Expr](err)
		}
		elems := packrat.Enclosed("{", packrat.RepSep(b.Expression(comp), ","), "}")
		return packrat.Map(elems, func(es []syntax.Expr) syntax.Expr {
			return &syntax.ArrayInitializer{Typed: syntax.Typed{Of: t}, Elems: es}
		})
	})

	cast := packrat.Bind(packrat.Seq(packrat.Enclosed("(", b.typeName, ")"), dotRef), func(pair packrat.Pair[*types.Type, syntax.Expr]) *exprParser {
		to, e := pair.First, pair.Second
		if !b.res.IsCastable(e.Type(), to) {
			return packrat.Failing[syntax.Expr](fmt.Sprintf("%s cannot cast to %s", e.Type(), to), 10)
		}
		return packrat.Unit[syntax.Expr](&syntax.Cast{Typed: syntax.Typed{Of: to}, Expr: e})
	})

	parenthesized := packrat.Enclosed("(", packrat.Ref(func() *exprParser { return h.expr }), ")")

	h.literal = b.makeLiteral()

	h.primary = packrat.Choice(
		abbMethodCall,
		variable,
		thisExpr,
		staticMethodCall,
		staticFieldAccess,
		newObject,
		newArray,
		arrayInit,
		parenthesized,
		h.literal,
	).Named("primary")

	h.dotAccess = packrat.Choice(arrayAccess, methodCall, arrayLength, fieldAccess, h.primary).Named("dot access")

	h.expr = packrat.Choice(assignment, cast, dotRef).Named("host expression")

	return h
}

func isAssignable(e syntax.Expr) bool {
	switch e.Kind() {
	case syntax.KindLocal, syntax.KindFieldAccess, syntax.KindStaticFieldAccess, syntax.KindArrayAccess:
		return true
	default:
		return false
	}
}

// candidates tries a parser for each member in order. If there are no members
// it fails with msg and score.
func candidates(members []*types.Method, f func(m *types.Method) *exprParser, msg string, score int) *exprParser {
	if len(members) == 0 {
		return packrat.Failing[syntax.Expr](msg, score)
	}
	return packrat.Foreach(members, f, msg)
}

// missingCall fails with msg, scored above member lookups, if an argument list
// follows.
func missingCall(msg string) *exprParser {
	return packrat.Right(packrat.AndPredicate(packrat.Keyword("(")), packrat.Failing[syntax.Expr](msg, scoreCall))
}

func (b *Builder) visibleMethods(env *Env, methods []*types.Method) []*types.Method {
	var out []*types.Method
	for _, m := range methods {
		if b.res.IsVisible(env.This, m) {
			out = append(out, m)
		}
	}
	return out
}

// throwing records the exception types thrown by m whenever p matches.
func (b *Builder) throwing(m *types.Method, p *exprParser) *exprParser {
	if len(m.Throws) == 0 {
		return p
	}
	return packrat.Effect(p, func(env *Env, node syntax.Expr, r *packrat.Reader) {
		env.throw(node, m.Throws, r.Line(r.Pos()))
	})
}

func (b *Builder) methodCallArgs(recv syntax.Expr, m *types.Method) *exprParser {
	return b.throwing(m, packrat.Map(b.Arguments(m), func(args []syntax.Expr) syntax.Expr {
		return &syntax.MethodCall{Typed: syntax.Typed{Of: m.Return}, Receiver: recv, Method: m, Args: args}
	}))
}

func (b *Builder) staticMethodCallArgs(m *types.Method) *exprParser {
	return b.throwing(m, packrat.Map(b.Arguments(m), func(args []syntax.Expr) syntax.Expr {
		return &syntax.StaticMethodCall{Typed: syntax.Typed{Of: m.Return}, Method: m, Args: args}
	}))
}

func (b *Builder) instanceField(env *Env, recv syntax.Expr, name string) *exprParser {
	owner := recv.Type()
	f, err := b.res.Field(owner, name)
	if err != nil {
		return packrat.Failing[syntax.Expr](fmt.Sprintf("field %s is not found in %s", name, owner), scoreMember)
	}
	if !b.res.IsVisible(env.This, f) {
		return packrat.Failing[syntax.Expr](fmt.Sprintf("field %s.%s is not visible from %s", owner, name, env.This), scoreMember)
	}
	if f.Static {
		return packrat.Failing[syntax.Expr](fmt.Sprintf("field %s.%s is a static field", owner, name), scoreMember)
	}
	return packrat.Unit[syntax.Expr](&syntax.FieldAccess{Typed: syntax.Typed{Of: f.Type}, Receiver: recv, Field: f})
}

func (b *Builder) staticField(env *Env, owner *types.Type, name string) *exprParser {
	f, err := b.res.Field(owner, name)
	if err != nil {
		return packrat.Failing[syntax.Expr](fmt.Sprintf("field %s is not found in %s", name, owner), scoreMember)
	}
	if !b.res.IsVisible(env.This, f) {
		return packrat.Failing[syntax.Expr](fmt.Sprintf("field %s.%s is not visible from %s", owner, name, env.This), scoreMember)
	}
	if !f.Static {
		return packrat.Failing[syntax.Expr](fmt.Sprintf("field %s.%s is not a static field", owner, name), scoreMember)
	}
	return packrat.Unit[syntax.Expr](&syntax.StaticFieldAccess{Typed: syntax.Typed{Of: f.Type}, Field: f})
}

// literalOf maps the values of p to literal nodes of the named type.
func literalOf[V any](b *Builder, typeName string, p *packrat.Parser[V], mk func(t *types.Type, v V) syntax.Expr) *exprParser {
	t, err := b.res.TypeByName(typeName)
	if err != nil {
		return packrat.Error[syntax.Expr](err)
	}
	return packrat.Map(p, func(v V) syntax.Expr { return mk(t, v) })
}

func (b *Builder) makeLiteral() *exprParser {
	intLit := func(t *types.Type, v int) syntax.Expr {
		return &syntax.IntLiteral{Typed: syntax.Typed{Of: t}, Value: v}
	}
	boolLit := func(v bool) func(*types.Type, string) syntax.Expr {
		return func(t *types.Type, _ string) syntax.Expr {
			return &syntax.BooleanLiteral{Typed: syntax.Typed{Of: t}, Value: v}
		}
	}

	return packrat.Choice(
		literalOf(b, "int", packrat.Hex, intLit),
		literalOf(b, "float", packrat.Float, func(t *types.Type, v float64) syntax.Expr {
			return &syntax.FloatLiteral{Typed: syntax.Typed{Of: t}, Value: v}
		}),
		literalOf(b, "double", packrat.Decimal, func(t *types.Type, v float64) syntax.Expr {
			return &syntax.DoubleLiteral{Typed: syntax.Typed{Of: t}, Value: v}
		}),
		literalOf(b, "int", packrat.Integer, intLit),
		literalOf(b, "boolean", packrat.Keyword("true"), boolLit(true)),
		literalOf(b, "boolean", packrat.Keyword("false"), boolLit(false)),
		literalOf(b, "String", packrat.String, func(t *types.Type, v string) syntax.Expr {
			return &syntax.StringLiteral{Typed: syntax.Typed{Of: t}, Value: v}
		}),
		literalOf(b, "char", packrat.Char, func(t *types.Type, v rune) syntax.Expr {
			return &syntax.CharLiteral{Typed: syntax.Typed{Of: t}, Value: v}
		}),
	).Named("literal")
}
