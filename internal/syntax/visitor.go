package syntax

import (
	"fmt"
	"strconv"
	"strings"
)

// Visitor has one method per node kind. Walk dispatches to the method for a
// node's kind.
type Visitor[T any] interface {
	VisitOperation(n *Operation) T
	VisitVariableArguments(n *VariableArguments) T
	VisitStaticMethodCall(n *StaticMethodCall) T
	VisitMethodCall(n *MethodCall) T
	VisitFieldAccess(n *FieldAccess) T
	VisitStaticFieldAccess(n *StaticFieldAccess) T
	VisitNew(n *New) T
	VisitNewArray(n *NewArray) T
	VisitArrayInitializer(n *ArrayInitializer) T
	VisitArrayAccess(n *ArrayAccess) T
	VisitArrayLength(n *ArrayLength) T
	VisitAssign(n *Assign) T
	VisitCast(n *Cast) T
	VisitLocal(n *Local) T
	VisitThis(n *This) T
	VisitIntLiteral(n *IntLiteral) T
	VisitFloatLiteral(n *FloatLiteral) T
	VisitDoubleLiteral(n *DoubleLiteral) T
	VisitBooleanLiteral(n *BooleanLiteral) T
	VisitStringLiteral(n *StringLiteral) T
	VisitCharLiteral(n *CharLiteral) T
	VisitNullLiteral(n *NullLiteral) T
	VisitIdentifierLiteral(n *IdentifierLiteral) T
	VisitTypeLiteral(n *TypeLiteral) T
}

// Walk calls the method of v that handles the kind of e.
func Walk[T any](e Expr, v Visitor[T]) T {
	switch n := e.(type) {
	case *Operation:
		return v.VisitOperation(n)
	case *VariableArguments:
		return v.VisitVariableArguments(n)
	case *StaticMethodCall:
		return v.VisitStaticMethodCall(n)
	case *MethodCall:
		return v.VisitMethodCall(n)
	case *FieldAccess:
		return v.VisitFieldAccess(n)
	case *StaticFieldAccess:
		return v.VisitStaticFieldAccess(n)
	case *New:
		return v.VisitNew(n)
	case *NewArray:
		return v.VisitNewArray(n)
	case *ArrayInitializer:
		return v.VisitArrayInitializer(n)
	case *ArrayAccess:
		return v.VisitArrayAccess(n)
	case *ArrayLength:
		return v.VisitArrayLength(n)
	case *Assign:
		return v.VisitAssign(n)
	case *Cast:
		return v.VisitCast(n)
	case *Local:
		return v.VisitLocal(n)
	case *This:
		return v.VisitThis(n)
	case *IntLiteral:
		return v.VisitIntLiteral(n)
	case *FloatLiteral:
		return v.VisitFloatLiteral(n)
	case *DoubleLiteral:
		return v.VisitDoubleLiteral(n)
	case *BooleanLiteral:
		return v.VisitBooleanLiteral(n)
	case *StringLiteral:
		return v.VisitStringLiteral(n)
	case *CharLiteral:
		return v.VisitCharLiteral(n)
	case *NullLiteral:
		return v.VisitNullLiteral(n)
	case *IdentifierLiteral:
		return v.VisitIdentifierLiteral(n)
	case *TypeLiteral:
		return v.VisitTypeLiteral(n)
	default:
		// should never happen
		panic(fmt.Sprintf("unknown expression node type %T", e))
	}
}

// Format returns the textual form of an expression. Every operator
// application and every assignment or cast is fully parenthesized so that the
// structure of the tree is visible.
func Format(e Expr) string {
	return Walk[string](e, printer{})
}

type printer struct{}

func formatList(es []Expr) string {
	parts := make([]string, len(es))
	for i := range es {
		parts[i] = Format(es[i])
	}
	return strings.Join(parts, ", ")
}

func (printer) VisitOperation(n *Operation) string {
	return n.Name + "(" + formatList(n.Operands) + ")"
}

func (printer) VisitVariableArguments(n *VariableArguments) string {
	return "[" + formatList(n.Args) + "]"
}

func (printer) VisitStaticMethodCall(n *StaticMethodCall) string {
	return n.Method.Owner.Name + "." + n.Method.Name + "(" + formatList(n.Args) + ")"
}

func (printer) VisitMethodCall(n *MethodCall) string {
	return Format(n.Receiver) + "." + n.Method.Name + "(" + formatList(n.Args) + ")"
}

func (printer) VisitFieldAccess(n *FieldAccess) string {
	return Format(n.Receiver) + "." + n.Field.Name
}

func (printer) VisitStaticFieldAccess(n *StaticFieldAccess) string {
	return n.Field.Owner.Name + "." + n.Field.Name
}

func (printer) VisitNew(n *New) string {
	return "new " + n.Constructor.Owner.Name + "(" + formatList(n.Args) + ")"
}

func (printer) VisitNewArray(n *NewArray) string {
	dims, elem := n.Of.Dimensions()
	var sb strings.Builder
	sb.WriteString("new ")
	sb.WriteString(elem.Name)
	for i := 0; i < dims; i++ {
		if i < len(n.Dims) {
			sb.WriteString("[" + Format(n.Dims[i]) + "]")
		} else {
			sb.WriteString("[]")
		}
	}
	return sb.String()
}

func (printer) VisitArrayInitializer(n *ArrayInitializer) string {
	return "new " + n.Of.Name + "{" + formatList(n.Elems) + "}"
}

func (printer) VisitArrayAccess(n *ArrayAccess) string {
	return Format(n.Array) + "[" + Format(n.Index) + "]"
}

func (printer) VisitArrayLength(n *ArrayLength) string {
	return Format(n.Array) + ".length"
}

func (printer) VisitAssign(n *Assign) string {
	return "(" + Format(n.Target) + " = " + Format(n.Value) + ")"
}

func (printer) VisitCast(n *Cast) string {
	return "((" + n.Of.Name + ") " + Format(n.Expr) + ")"
}

func (printer) VisitLocal(n *Local) string {
	return n.Name
}

func (printer) VisitThis(n *This) string {
	return "this"
}

func (printer) VisitIntLiteral(n *IntLiteral) string {
	return strconv.Itoa(n.Value)
}

func (printer) VisitFloatLiteral(n *FloatLiteral) string {
	return strconv.FormatFloat(n.Value, 'g', -1, 32) + "f"
}

func (printer) VisitDoubleLiteral(n *DoubleLiteral) string {
	s := strconv.FormatFloat(n.Value, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eEn") {
		s += ".0"
	}
	return s
}

func (printer) VisitBooleanLiteral(n *BooleanLiteral) string {
	return strconv.FormatBool(n.Value)
}

func (printer) VisitStringLiteral(n *StringLiteral) string {
	return strconv.Quote(n.Value)
}

func (printer) VisitCharLiteral(n *CharLiteral) string {
	return strconv.QuoteRune(n.Value)
}

func (printer) VisitNullLiteral(n *NullLiteral) string {
	return "null"
}

func (printer) VisitIdentifierLiteral(n *IdentifierLiteral) string {
	return "`" + n.Name + "`"
}

func (printer) VisitTypeLiteral(n *TypeLiteral) string {
	return "type " + n.Named.Name
}

// Children returns the direct sub-expressions of e in source order.
func Children(e Expr) []Expr {
	return Walk[[]Expr](e, children{})
}

// Inspect traverses the tree rooted at e in depth-first order, calling f for
// each node. If f returns false, the children of that node are skipped.
func Inspect(e Expr, f func(Expr) bool) {
	if !f(e) {
		return
	}
	for _, c := range Children(e) {
		Inspect(c, f)
	}
}

type children struct{}

func (children) VisitOperation(n *Operation) []Expr                 { return n.Operands }
func (children) VisitVariableArguments(n *VariableArguments) []Expr { return n.Args }
func (children) VisitStaticMethodCall(n *StaticMethodCall) []Expr   { return n.Args }
func (children) VisitStaticFieldAccess(*StaticFieldAccess) []Expr   { return nil }
func (children) VisitNew(n *New) []Expr                             { return n.Args }
func (children) VisitNewArray(n *NewArray) []Expr                   { return n.Dims }
func (children) VisitArrayInitializer(n *ArrayInitializer) []Expr   { return n.Elems }
func (children) VisitArrayLength(n *ArrayLength) []Expr             { return []Expr{n.Array} }
func (children) VisitAssign(n *Assign) []Expr                       { return []Expr{n.Target, n.Value} }
func (children) VisitCast(n *Cast) []Expr                           { return []Expr{n.Expr} }
func (children) VisitLocal(*Local) []Expr                           { return nil }
func (children) VisitThis(*This) []Expr                             { return nil }
func (children) VisitIntLiteral(*IntLiteral) []Expr                 { return nil }
func (children) VisitFloatLiteral(*FloatLiteral) []Expr             { return nil }
func (children) VisitDoubleLiteral(*DoubleLiteral) []Expr           { return nil }
func (children) VisitBooleanLiteral(*BooleanLiteral) []Expr         { return nil }
func (children) VisitStringLiteral(*StringLiteral) []Expr           { return nil }
func (children) VisitCharLiteral(*CharLiteral) []Expr               { return nil }
func (children) VisitNullLiteral(*NullLiteral) []Expr               { return nil }
func (children) VisitIdentifierLiteral(*IdentifierLiteral) []Expr   { return nil }
func (children) VisitTypeLiteral(*TypeLiteral) []Expr               { return nil }

func (children) VisitMethodCall(n *MethodCall) []Expr {
	return append([]Expr{n.Receiver}, n.Args...)
}

func (children) VisitFieldAccess(n *FieldAccess) []Expr {
	return []Expr{n.Receiver}
}

func (children) VisitArrayAccess(n *ArrayAccess) []Expr {
	return []Expr{n.Array, n.Index}
}
