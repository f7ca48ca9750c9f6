// Package types holds the model of host types and members that expressions are
// checked against: types, methods and constructors, and fields.
//
// Types are compared by identity. Something that creates types (such as a
// host model) must intern them so that a given type is represented by exactly
// one *Type.
package types

import (
	"fmt"
	"strings"
)

// Kind is the category of a Type.
type Kind int

const (
	Primitive Kind = iota
	Class
	Array
	Void
	Null
)

func (k Kind) String() string {
	switch k {
	case Primitive:
		return "primitive"
	case Class:
		return "class"
	case Array:
		return "array"
	case Void:
		return "void"
	case Null:
		return "null"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ReadAsKind says whether a type has a built-in read-as syntax, and which.
type ReadAsKind int

const (
	NoReadAs ReadAsKind = iota

	// ReadAsIdentifier types are read as a single identifier token.
	ReadAsIdentifier

	// ReadAsLetter types are read as a single letter.
	ReadAsLetter

	// ReadAsType types are read as a type name.
	ReadAsType
)

// Type is a host type.
type Type struct {
	Name string
	Kind Kind

	// Super is the direct supertype of a class type. It is nil for the root
	// class and for non-class types.
	Super *Type

	// Elem is the element type of an array type.
	Elem *Type

	// ReadAs is set on the types that have built-in read-as syntax.
	ReadAs ReadAsKind

	// Visibility of a class type from other classes.
	Visibility Visibility
}

func (t *Type) String() string {
	if t == nil {
		return "<nil type>"
	}
	return t.Name
}

// IsPrimitive returns whether t is a primitive type.
func (t *Type) IsPrimitive() bool {
	return t != nil && t.Kind == Primitive
}

// IsArray returns whether t is an array type.
func (t *Type) IsArray() bool {
	return t != nil && t.Kind == Array
}

// IsVoid returns whether t is the type of no value.
func (t *Type) IsVoid() bool {
	return t != nil && t.Kind == Void
}

// IsNumeric returns whether t is a primitive number type.
func (t *Type) IsNumeric() bool {
	if !t.IsPrimitive() {
		return false
	}
	switch t.Name {
	case "byte", "short", "char", "int", "long", "float", "double":
		return true
	default:
		return false
	}
}

// Dimensions returns how many array levels t has, along with the innermost
// element type.
func (t *Type) Dimensions() (int, *Type) {
	dims := 0
	for t.IsArray() {
		dims++
		t = t.Elem
	}
	return dims, t
}

// ArrayName returns the name of the array type with the given number of
// dimensions over elem.
func ArrayName(elem *Type, dims int) string {
	return elem.Name + strings.Repeat("[]", dims)
}

// Visibility is the access level of a type or member.
type Visibility int

const (
	Public Visibility = iota
	Protected
	Private
)

func (v Visibility) String() string {
	switch v {
	case Public:
		return "public"
	case Protected:
		return "protected"
	case Private:
		return "private"
	default:
		return fmt.Sprintf("Visibility(%d)", int(v))
	}
}

// ParseVisibility parses the name of a visibility. The empty string is Public.
func ParseVisibility(s string) (Visibility, error) {
	switch strings.ToLower(s) {
	case "", "public":
		return Public, nil
	case "protected":
		return Protected, nil
	case "private":
		return Private, nil
	default:
		return Public, fmt.Errorf("not one of 'public', 'protected', or 'private': %q", s)
	}
}

// Member is a method, constructor, or field of a class.
type Member interface {
	MemberOwner() *Type
	MemberName() string
	MemberVisibility() Visibility
}

// Method is a method or constructor.
type Method struct {
	Owner      *Type
	Name       string
	Params     []*Type
	Return     *Type
	Static     bool
	VarArgs    bool
	Throws     []*Type
	Visibility Visibility

	// Constructor is set for constructors, whose Return is their Owner.
	Constructor bool
}

func (m *Method) MemberOwner() *Type           { return m.Owner }
func (m *Method) MemberName() string           { return m.Name }
func (m *Method) MemberVisibility() Visibility { return m.Visibility }

func (m *Method) String() string {
	params := make([]string, len(m.Params))
	for i := range m.Params {
		params[i] = m.Params[i].String()
		if m.VarArgs && i == len(m.Params)-1 && m.Params[i].IsArray() {
			params[i] = m.Params[i].Elem.String() + "..."
		}
	}
	name := m.Owner.String() + "." + m.Name
	if m.Constructor {
		name = "new " + m.Owner.String()
	}
	return name + "(" + strings.Join(params, ", ") + ")"
}

// Field is a field of a class.
type Field struct {
	Owner      *Type
	Name       string
	Type       *Type
	Static     bool
	Visibility Visibility
}

func (f *Field) MemberOwner() *Type           { return f.Owner }
func (f *Field) MemberName() string           { return f.Name }
func (f *Field) MemberVisibility() Visibility { return f.Visibility }

func (f *Field) String() string {
	return f.Owner.String() + "." + f.Name
}
