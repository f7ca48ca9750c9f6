// Package syntax contains the typed syntax tree that parsing an expression
// produces. The set of node kinds is closed; code that needs to handle every
// kind does so with a Visitor.
package syntax

import (
	"github.com/dekarrin/mixfix/internal/types"
	"github.com/google/uuid"
)

// Kind is the kind of an expression node.
type Kind int

const (
	KindOperation Kind = iota
	KindVariableArguments
	KindStaticMethodCall
	KindMethodCall
	KindFieldAccess
	KindStaticFieldAccess
	KindNew
	KindNewArray
	KindArrayInitializer
	KindArrayAccess
	KindArrayLength
	KindAssign
	KindCast
	KindLocal
	KindThis
	KindIntLiteral
	KindFloatLiteral
	KindDoubleLiteral
	KindBooleanLiteral
	KindStringLiteral
	KindCharLiteral
	KindNullLiteral
	KindIdentifierLiteral
	KindTypeLiteral
)

var kindNames = map[Kind]string{
	KindOperation:         "Operation",
	KindVariableArguments: "VariableArguments",
	KindStaticMethodCall:  "StaticMethodCall",
	KindMethodCall:        "MethodCall",
	KindFieldAccess:       "FieldAccess",
	KindStaticFieldAccess: "StaticFieldAccess",
	KindNew:               "New",
	KindNewArray:          "NewArray",
	KindArrayInitializer:  "ArrayInitializer",
	KindArrayAccess:       "ArrayAccess",
	KindArrayLength:       "ArrayLength",
	KindAssign:            "Assign",
	KindCast:              "Cast",
	KindLocal:             "Local",
	KindThis:              "This",
	KindIntLiteral:        "IntLiteral",
	KindFloatLiteral:      "FloatLiteral",
	KindDoubleLiteral:     "DoubleLiteral",
	KindBooleanLiteral:    "BooleanLiteral",
	KindStringLiteral:     "StringLiteral",
	KindCharLiteral:       "CharLiteral",
	KindNullLiteral:       "NullLiteral",
	KindIdentifierLiteral: "IdentifierLiteral",
	KindTypeLiteral:       "TypeLiteral",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "Kind(?)"
}

// Expr is a typed expression node.
type Expr interface {
	Kind() Kind

	// Type is the static type of the expression.
	Type() *types.Type

	String() string

	exprNode()
}

// Typed holds the static type of a node.
type Typed struct {
	Of *types.Type
}

func (t Typed) Type() *types.Type { return t.Of }
func (Typed) exprNode()           {}

// Operation is the application of a user-defined operator.
type Operation struct {
	Typed
	OperatorID uuid.UUID
	Name       string
	Operands   []Expr
}

// VariableArguments is the bucket of values matched by a variable-arity operand
// or variadic parameter. Of is the array type of the bucket.
type VariableArguments struct {
	Typed
	Args []Expr
}

type StaticMethodCall struct {
	Typed
	Method *types.Method
	Args   []Expr
}

type MethodCall struct {
	Typed
	Receiver Expr
	Method   *types.Method
	Args     []Expr
}

type FieldAccess struct {
	Typed
	Receiver Expr
	Field    *types.Field
}

type StaticFieldAccess struct {
	Typed
	Field *types.Field
}

// New is construction of an object with a constructor.
type New struct {
	Typed
	Constructor *types.Method
	Args        []Expr
}

// NewArray is creation of an array with dimension sizes. Of may have more
// dimensions than len(Dims).
type NewArray struct {
	Typed
	Dims []Expr
}

type ArrayInitializer struct {
	Typed
	Elems []Expr
}

type ArrayAccess struct {
	Typed
	Array Expr
	Index Expr
}

type ArrayLength struct {
	Typed
	Array Expr
}

// Assign stores Value into Target, which is a Local, FieldAccess,
// StaticFieldAccess or ArrayAccess.
type Assign struct {
	Typed
	Target Expr
	Value  Expr
}

// Cast converts Expr to the type Of.
type Cast struct {
	Typed
	Expr Expr
}

// Local is a reference to a parameter or local variable.
type Local struct {
	Typed
	Name string
}

type This struct {
	Typed
}

type IntLiteral struct {
	Typed
	Value int
}

type FloatLiteral struct {
	Typed
	Value float64
}

type DoubleLiteral struct {
	Typed
	Value float64
}

type BooleanLiteral struct {
	Typed
	Value bool
}

type StringLiteral struct {
	Typed
	Value string
}

// CharLiteral is a character. Letters read in read-as mode are CharLiterals
// whose type is the letter type.
type CharLiteral struct {
	Typed
	Value rune
}

type NullLiteral struct {
	Typed
}

// IdentifierLiteral is a name read in read-as mode.
type IdentifierLiteral struct {
	Typed
	Name string
}

// TypeLiteral is a type name read in read-as mode. Of is the type of the
// literal itself; Named is the type that was named.
type TypeLiteral struct {
	Typed
	Named *types.Type
}

func (*Operation) Kind() Kind         { return KindOperation }
func (*VariableArguments) Kind() Kind { return KindVariableArguments }
func (*StaticMethodCall) Kind() Kind  { return KindStaticMethodCall }
func (*MethodCall) Kind() Kind        { return KindMethodCall }
func (*FieldAccess) Kind() Kind       { return KindFieldAccess }
func (*StaticFieldAccess) Kind() Kind { return KindStaticFieldAccess }
func (*New) Kind() Kind               { return KindNew }
func (*NewArray) Kind() Kind          { return KindNewArray }
func (*ArrayInitializer) Kind() Kind  { return KindArrayInitializer }
func (*ArrayAccess) Kind() Kind       { return KindArrayAccess }
func (*ArrayLength) Kind() Kind       { return KindArrayLength }
func (*Assign) Kind() Kind            { return KindAssign }
func (*Cast) Kind() Kind              { return KindCast }
func (*Local) Kind() Kind             { return KindLocal }
func (*This) Kind() Kind              { return KindThis }
func (*IntLiteral) Kind() Kind        { return KindIntLiteral }
func (*FloatLiteral) Kind() Kind      { return KindFloatLiteral }
func (*DoubleLiteral) Kind() Kind     { return KindDoubleLiteral }
func (*BooleanLiteral) Kind() Kind    { return KindBooleanLiteral }
func (*StringLiteral) Kind() Kind     { return KindStringLiteral }
func (*CharLiteral) Kind() Kind       { return KindCharLiteral }
func (*NullLiteral) Kind() Kind       { return KindNullLiteral }
func (*IdentifierLiteral) Kind() Kind { return KindIdentifierLiteral }
func (*TypeLiteral) Kind() Kind       { return KindTypeLiteral }

func (n *Operation) String() string         { return Format(n) }
func (n *VariableArguments) String() string { return Format(n) }
func (n *StaticMethodCall) String() string  { return Format(n) }
func (n *MethodCall) String() string        { return Format(n) }
func (n *FieldAccess) String() string       { return Format(n) }
func (n *StaticFieldAccess) String() string { return Format(n) }
func (n *New) String() string               { return Format(n) }
func (n *NewArray) String() string          { return Format(n) }
func (n *ArrayInitializer) String() string  { return Format(n) }
func (n *ArrayAccess) String() string       { return Format(n) }
func (n *ArrayLength) String() string       { return Format(n) }
func (n *Assign) String() string            { return Format(n) }
func (n *Cast) String() string              { return Format(n) }
func (n *Local) String() string             { return Format(n) }
func (n *This) String() string              { return Format(n) }
func (n *IntLiteral) String() string        { return Format(n) }
func (n *FloatLiteral) String() string      { return Format(n) }
func (n *DoubleLiteral) String() string     { return Format(n) }
func (n *BooleanLiteral) String() string    { return Format(n) }
func (n *StringLiteral) String() string     { return Format(n) }
func (n *CharLiteral) String() string       { return Format(n) }
func (n *NullLiteral) String() string       { return Format(n) }
func (n *IdentifierLiteral) String() string { return Format(n) }
func (n *TypeLiteral) String() string       { return Format(n) }
