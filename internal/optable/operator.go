// Package optable holds user-defined operators and the per-type, per-priority
// index of them that expression parsers are built from.
package optable

import (
	"fmt"
	"strings"

	"github.com/dekarrin/mixfix/internal/syntax"
	"github.com/dekarrin/mixfix/internal/types"
	"github.com/google/uuid"
)

// ElementKind is the kind of one element of an operator pattern.
type ElementKind int

const (
	KeywordElement ElementKind = iota
	OperandElement
	VariableOperandElement
	OptionalOperandElement
	AndPredicateElement
	NotPredicateElement
)

func (k ElementKind) String() string {
	switch k {
	case KeywordElement:
		return "keyword"
	case OperandElement:
		return "operand"
	case VariableOperandElement:
		return "variable"
	case OptionalOperandElement:
		return "optional"
	case AndPredicateElement:
		return "and"
	case NotPredicateElement:
		return "not"
	default:
		return fmt.Sprintf("ElementKind(%d)", int(k))
	}
}

// Element is one element of an operator pattern. Types are given by name and
// are only resolved when a parser for the operator is built, so a pattern
// that names a type which does not exist makes that one operator fail to
// match instead of making the whole table unusable.
type Element struct {
	Kind ElementKind

	// Keyword is the literal text of a KeywordElement.
	Keyword string

	// TypeName is the operand type. For a VariableOperandElement it is the
	// array type whose components are matched.
	TypeName string

	// Inclusive allows an operand to be built from operators of the same
	// priority as the operator it is in.
	Inclusive bool

	// MinOne requires at least one component for a VariableOperandElement.
	MinOne bool

	// Separator is the optional keyword between components of a
	// VariableOperandElement.
	Separator string

	// Default is the qualified name of the zero-argument static method that
	// produces the value of an absent OptionalOperandElement.
	Default string
}

// Keyword returns a pattern element that matches the literal text kw.
func Keyword(kw string) Element {
	return Element{Kind: KeywordElement, Keyword: kw}
}

// Operand returns a pattern element that matches an expression of the named
// type.
func Operand(typeName string, inclusive bool) Element {
	return Element{Kind: OperandElement, TypeName: typeName, Inclusive: inclusive}
}

// VariableOperand returns a pattern element that matches either one value of
// the named array type or a run of its components.
func VariableOperand(arrayTypeName string, minOne bool, sep string) Element {
	return Element{Kind: VariableOperandElement, TypeName: arrayTypeName, MinOne: minOne, Separator: sep}
}

// OptionalOperand returns a pattern element that matches an expression of the
// named type if one is present, and otherwise stands for a call to the static
// method named by defaultMethod.
func OptionalOperand(typeName string, defaultMethod string) Element {
	return Element{Kind: OptionalOperandElement, TypeName: typeName, Default: defaultMethod}
}

// AndPredicate returns a pattern element that requires an expression of the
// named type to follow without consuming it.
func AndPredicate(typeName string, inclusive bool) Element {
	return Element{Kind: AndPredicateElement, TypeName: typeName, Inclusive: inclusive}
}

// NotPredicate returns a pattern element that requires that no expression of
// the named type follows.
func NotPredicate(typeName string, inclusive bool) Element {
	return Element{Kind: NotPredicateElement, TypeName: typeName, Inclusive: inclusive}
}

// IsOperand returns whether the element contributes an operand to the
// operator's operand list.
func (e Element) IsOperand() bool {
	switch e.Kind {
	case OperandElement, VariableOperandElement, OptionalOperandElement:
		return true
	default:
		return false
	}
}

func (e Element) String() string {
	incl := ""
	if e.Inclusive {
		incl = "="
	}
	switch e.Kind {
	case KeywordElement:
		return fmt.Sprintf("%q", e.Keyword)
	case OperandElement:
		return "_" + incl + ":" + e.TypeName
	case VariableOperandElement:
		rep := "*"
		if e.MinOne {
			rep = "+"
		}
		if e.Separator != "" {
			rep = fmt.Sprintf("%s(%q)", rep, e.Separator)
		}
		return "_" + rep + ":" + e.TypeName
	case OptionalOperandElement:
		return "_?:" + e.TypeName + "=" + e.Default + "()"
	case AndPredicateElement:
		return "&" + incl + e.TypeName
	case NotPredicateElement:
		return "!" + incl + e.TypeName
	default:
		return e.Kind.String()
	}
}

// Action builds the node for a matched operator from its operands.
type Action func(op *Operator, operands []syntax.Expr) syntax.Expr

// Operator is a user-defined operator: a pattern of keywords and typed operand
// slots that produces a value of the Result type.
type Operator struct {
	ID       uuid.UUID
	Name     string
	Owner    *types.Type
	Result   *types.Type
	Pattern  []Element
	Priority int

	// Throws are the exception types that applying the operator may throw.
	Throws []*types.Type

	// ReadAs operators are only used in read-as mode.
	ReadAs bool

	// Action, if set, replaces building an Operation node.
	Action Action
}

// NewID returns the identity of an operator declared by the named owner. The
// same declaration always gets the same ID.
func NewID(owner string, name string, priority int, pattern []Element) uuid.UUID {
	parts := make([]string, len(pattern))
	for i := range pattern {
		parts[i] = pattern[i].String()
	}
	data := fmt.Sprintf("%s.%s@%d:%s", owner, name, priority, strings.Join(parts, " "))
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(data))
}

// Build creates the node for an application of op to operands.
func (op *Operator) Build(operands []syntax.Expr) syntax.Expr {
	if op.Action != nil {
		return op.Action(op, operands)
	}
	return &syntax.Operation{
		Typed:      syntax.Typed{Of: op.Result},
		OperatorID: op.ID,
		Name:       op.Name,
		Operands:   operands,
	}
}

// Signature returns the pattern of the operator as text.
func (op *Operator) Signature() string {
	parts := make([]string, len(op.Pattern))
	for i := range op.Pattern {
		parts[i] = op.Pattern[i].String()
	}
	return strings.Join(parts, " ")
}

func (op *Operator) String() string {
	return fmt.Sprintf("%s.%s[%d]: %s -> %s", op.Owner, op.Name, op.Priority, op.Signature(), op.Result)
}
