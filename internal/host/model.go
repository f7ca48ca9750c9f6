// Package host is an in-memory model of host types, their members, and the
// operators declared by them. It answers the questions that expression parsing
// asks of the host: what a name refers to, whether one type may be used as
// another, and which operators produce a type.
package host

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dekarrin/mixfix/internal/optable"
	"github.com/dekarrin/mixfix/internal/types"
)

var (
	// ErrNotFound is returned (wrapped) when a type or member does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicate is returned (wrapped) when something is declared twice.
	ErrDuplicate = errors.New("already declared")
)

// Names of the built-in types.
const (
	TypeObject     = "Object"
	TypeString     = "String"
	TypeIdentifier = "Identifier"
	TypeLetter     = "Letter"
	TypeType       = "Type"
	TypeVoid       = "void"
	TypeNull       = "null"
)

var primitiveNames = []string{"boolean", "byte", "short", "char", "int", "long", "float", "double"}

// Model holds every type, member, and operator known to a compilation. Types
// are interned: each name maps to exactly one *types.Type.
type Model struct {
	types     map[string]*types.Type
	classes   []*types.Type
	methods   map[*types.Type][]*types.Method
	fields    map[*types.Type][]*types.Field
	operators []*optable.Operator
}

// New creates a Model that contains only the built-in types.
func New() *Model {
	m := &Model{
		types:   map[string]*types.Type{},
		methods: map[*types.Type][]*types.Method{},
		fields:  map[*types.Type][]*types.Field{},
	}

	for _, name := range primitiveNames {
		m.types[name] = &types.Type{Name: name, Kind: types.Primitive}
	}
	m.types[TypeVoid] = &types.Type{Name: TypeVoid, Kind: types.Void}
	m.types[TypeNull] = &types.Type{Name: TypeNull, Kind: types.Null}

	object := &types.Type{Name: TypeObject, Kind: types.Class}
	m.addClass(object)
	m.addClass(&types.Type{Name: TypeString, Kind: types.Class, Super: object})
	m.addClass(&types.Type{Name: TypeIdentifier, Kind: types.Class, Super: object, ReadAs: types.ReadAsIdentifier})
	m.addClass(&types.Type{Name: TypeLetter, Kind: types.Class, Super: object, ReadAs: types.ReadAsLetter})
	m.addClass(&types.Type{Name: TypeType, Kind: types.Class, Super: object, ReadAs: types.ReadAsType})

	return m
}

func (m *Model) addClass(t *types.Type) {
	m.types[t.Name] = t
	m.classes = append(m.classes, t)
}

// Classes returns every class type in the order it was declared, built-in
// classes first.
func (m *Model) Classes() []*types.Type {
	out := make([]*types.Type, len(m.classes))
	copy(out, m.classes)
	return out
}

// Operators returns every declared operator in declaration order.
func (m *Model) Operators() []*optable.Operator {
	out := make([]*optable.Operator, len(m.operators))
	copy(out, m.operators)
	return out
}

// DeclareClass adds a class type. If super is empty the class extends Object.
func (m *Model) DeclareClass(name string, super string, vis types.Visibility) (*types.Type, error) {
	if _, ok := m.types[name]; ok || strings.HasSuffix(name, "[]") {
		return nil, fmt.Errorf("type %q %w", name, ErrDuplicate)
	}
	if super == "" {
		super = TypeObject
	}
	superType, err := m.TypeByName(super)
	if err != nil {
		return nil, fmt.Errorf("superclass of %s: %w", name, err)
	}
	if superType.Kind != types.Class {
		return nil, fmt.Errorf("superclass of %s: %s is not a class", name, superType)
	}

	t := &types.Type{Name: name, Kind: types.Class, Super: superType, Visibility: vis}
	m.addClass(t)
	return t, nil
}

// AddMethod adds a method or constructor to its owner.
func (m *Model) AddMethod(meth *types.Method) error {
	if meth.Owner == nil || meth.Owner.Kind != types.Class {
		return fmt.Errorf("method %s must belong to a class", meth.Name)
	}
	if meth.VarArgs && (len(meth.Params) == 0 || !meth.Params[len(meth.Params)-1].IsArray()) {
		return fmt.Errorf("method %s: last parameter of a variadic method must be an array", meth)
	}
	if meth.Constructor {
		meth.Return = meth.Owner
		meth.Static = false
	}
	m.methods[meth.Owner] = append(m.methods[meth.Owner], meth)
	return nil
}

// AddField adds a field to its owner.
func (m *Model) AddField(f *types.Field) error {
	if f.Owner == nil || f.Owner.Kind != types.Class {
		return fmt.Errorf("field %s must belong to a class", f.Name)
	}
	for _, existing := range m.fields[f.Owner] {
		if existing.Name == f.Name {
			return fmt.Errorf("field %s %w", f, ErrDuplicate)
		}
	}
	m.fields[f.Owner] = append(m.fields[f.Owner], f)
	return nil
}

// AddOperator adds an operator. Operators are offered to parsing in the order
// they were added.
func (m *Model) AddOperator(op *optable.Operator) error {
	for _, existing := range m.operators {
		if existing.ID == op.ID {
			return fmt.Errorf("operator %s %w", op, ErrDuplicate)
		}
	}
	m.operators = append(m.operators, op)
	return nil
}

// TypeByName returns the type with the given name. Names ending in one or more
// "[]" refer to array types.
func (m *Model) TypeByName(name string) (*types.Type, error) {
	name = strings.TrimSpace(name)
	dims := 0
	for strings.HasSuffix(name, "[]") {
		dims++
		name = strings.TrimSpace(strings.TrimSuffix(name, "[]"))
	}

	t, ok := m.types[name]
	if !ok {
		return nil, fmt.Errorf("type %s is %w", name, ErrNotFound)
	}
	if dims > 0 {
		if t.IsVoid() || t.Kind == types.Null {
			return nil, fmt.Errorf("cannot make an array of %s", t)
		}
		return m.ArrayOf(t, dims), nil
	}
	return t, nil
}

// MustType is TypeByName for names that are known to exist. It panics if the
// type does not exist.
func (m *Model) MustType(name string) *types.Type {
	t, err := m.TypeByName(name)
	if err != nil {
		panic(err.Error())
	}
	return t
}

// ArrayOf returns the array type with the given number of dimensions over
// elem. If dims is 0, elem itself is returned.
func (m *Model) ArrayOf(elem *types.Type, dims int) *types.Type {
	t := elem
	for i := 0; i < dims; i++ {
		name := t.Name + "[]"
		arr, ok := m.types[name]
		if !ok {
			arr = &types.Type{Name: name, Kind: types.Array, Elem: t}
			m.types[name] = arr
		}
		t = arr
	}
	return t
}

// ComponentType returns the element type of an array type.
func (m *Model) ComponentType(t *types.Type) (*types.Type, error) {
	if !t.IsArray() {
		return nil, fmt.Errorf("component type of %s is %w; it is not an array type", t, ErrNotFound)
	}
	return t.Elem, nil
}

// IsSubtype returns whether a value of type t can be used where a value of
// type of is expected.
func (m *Model) IsSubtype(t, of *types.Type) bool {
	if t == nil || of == nil {
		return false
	}
	if t == of {
		return true
	}
	if t.IsPrimitive() || of.IsPrimitive() || t.IsVoid() || of.IsVoid() || of.Kind == types.Null {
		return false
	}
	if t.Kind == types.Null {
		return true
	}
	if of.Name == TypeObject {
		return true
	}

	if t.IsArray() {
		if !of.IsArray() {
			return false
		}
		if t.Elem.IsPrimitive() || of.Elem.IsPrimitive() {
			return t.Elem == of.Elem
		}
		return m.IsSubtype(t.Elem, of.Elem)
	}

	for cur := t.Super; cur != nil; cur = cur.Super {
		if cur == of {
			return true
		}
	}
	return false
}

// IsCastable returns whether an explicit cast from one type to another is
// allowed.
func (m *Model) IsCastable(from, to *types.Type) bool {
	if from.IsNumeric() && to.IsNumeric() {
		return true
	}
	return m.IsSubtype(from, to) || m.IsSubtype(to, from)
}

// IsVisible returns whether member can be accessed from code in class from.
func (m *Model) IsVisible(from *types.Type, member types.Member) bool {
	switch member.MemberVisibility() {
	case types.Private:
		return from == member.MemberOwner()
	case types.Protected:
		return m.IsSubtype(from, member.MemberOwner())
	default:
		return true
	}
}

// lineage returns t followed by all of its superclasses.
func lineage(t *types.Type) []*types.Type {
	var out []*types.Type
	for cur := t; cur != nil; cur = cur.Super {
		out = append(out, cur)
	}
	return out
}

func (m *Model) findMethods(owner *types.Type, name string, static bool) []*types.Method {
	var out []*types.Method
	for _, cls := range lineage(owner) {
		for _, meth := range m.methods[cls] {
			if !meth.Constructor && meth.Static == static && meth.Name == name {
				out = append(out, meth)
			}
		}
	}
	return out
}

// StaticMethods returns the static methods with the given name that are
// declared in owner or its superclasses, nearest class first and in
// declaration order within a class.
func (m *Model) StaticMethods(owner *types.Type, name string) []*types.Method {
	return m.findMethods(owner, name, true)
}

// InstanceMethods returns the instance methods with the given name that are
// declared in owner or its superclasses, in the same order as StaticMethods.
func (m *Model) InstanceMethods(owner *types.Type, name string) []*types.Method {
	return m.findMethods(owner, name, false)
}

// Constructors returns the constructors of t in declaration order.
func (m *Model) Constructors(t *types.Type) []*types.Method {
	var out []*types.Method
	for _, meth := range m.methods[t] {
		if meth.Constructor {
			out = append(out, meth)
		}
	}
	return out
}

// Field returns the field with the given name that is declared in owner or the
// nearest superclass that has it.
func (m *Model) Field(owner *types.Type, name string) (*types.Field, error) {
	for _, cls := range lineage(owner) {
		for _, f := range m.fields[cls] {
			if f.Name == name {
				return f, nil
			}
		}
	}
	return nil, fmt.Errorf("field %s is %w in %s", name, ErrNotFound, owner)
}

// StaticMethod returns the zero-argument static method named by a qualified
// name of the form "Class.method".
func (m *Model) StaticMethod(qualified string) (*types.Method, error) {
	dot := strings.LastIndex(qualified, ".")
	if dot < 0 {
		return nil, fmt.Errorf("%q is not a qualified method name", qualified)
	}
	owner, err := m.TypeByName(qualified[:dot])
	if err != nil {
		return nil, err
	}
	for _, meth := range m.StaticMethods(owner, qualified[dot+1:]) {
		if len(meth.Params) == 0 {
			return meth, nil
		}
	}
	return nil, fmt.Errorf("static method %s() is %w", qualified, ErrNotFound)
}

func (m *Model) producing(t *types.Type, readAs bool) []*optable.Operator {
	var out []*optable.Operator
	for _, op := range m.operators {
		if op.ReadAs == readAs && m.IsSubtype(op.Result, t) {
			out = append(out, op)
		}
	}
	return out
}

// OperatorsProducing returns the operators whose result can be used as a t, in
// declaration order.
func (m *Model) OperatorsProducing(t *types.Type) []*optable.Operator {
	return m.producing(t, false)
}

// ReadAsOperatorsProducing returns the read-as operators whose result can be
// used as a t, in declaration order.
func (m *Model) ReadAsOperatorsProducing(t *types.Type) []*optable.Operator {
	return m.producing(t, true)
}
