package host

import (
	"errors"
	"testing"

	"github.com/dekarrin/mixfix/internal/optable"
	"github.com/dekarrin/mixfix/internal/types"
	"github.com/stretchr/testify/assert"
)

func testModel(t *testing.T) (*Model, *types.Type, *types.Type) {
	m := New()
	animal, err := m.DeclareClass("Animal", "", types.Public)
	if err != nil {
		t.Fatal(err)
	}
	dog, err := m.DeclareClass("Dog", "Animal", types.Public)
	if err != nil {
		t.Fatal(err)
	}
	return m, animal, dog
}

func Test_Model_TypeByName(t *testing.T) {
	m, _, _ := testModel(t)

	testCases := []struct {
		name      string
		input     string
		expect    string
		expectErr error
	}{
		{name: "primitive", input: "int", expect: "int"},
		{name: "class", input: "Dog", expect: "Dog"},
		{name: "array", input: "Dog[]", expect: "Dog[]"},
		{name: "two dimensions", input: "int[][]", expect: "int[][]"},
		{name: "unknown", input: "Cat", expectErr: ErrNotFound},
		{name: "unknown array", input: "Cat[]", expectErr: ErrNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			actual, err := m.TypeByName(tc.input)
			if tc.expectErr != nil {
				assert.True(errors.Is(err, tc.expectErr), "got error: %v", err)
				return
			}
			if !assert.NoError(err) {
				return
			}
			assert.Equal(tc.expect, actual.Name)
		})
	}
}

func Test_Model_ArrayOf_interned(t *testing.T) {
	assert := assert.New(t)
	m, _, dog := testModel(t)

	a1 := m.ArrayOf(dog, 2)
	a2, err := m.TypeByName("Dog[][]")

	assert.NoError(err)
	assert.Same(a1, a2)
	assert.Same(dog, a1.Elem.Elem)

	comp, err := m.ComponentType(a1)
	assert.NoError(err)
	assert.Same(a1.Elem, comp)

	_, err = m.ComponentType(dog)
	assert.True(errors.Is(err, ErrNotFound))
}

func Test_Model_IsSubtype(t *testing.T) {
	m, _, _ := testModel(t)

	testCases := []struct {
		name   string
		t      string
		of     string
		expect bool
	}{
		{name: "same", t: "int", of: "int", expect: true},
		{name: "primitives are not related", t: "int", of: "long", expect: false},
		{name: "subclass", t: "Dog", of: "Animal", expect: true},
		{name: "superclass", t: "Animal", of: "Dog", expect: false},
		{name: "class to Object", t: "Dog", of: "Object", expect: true},
		{name: "primitive to Object", t: "int", of: "Object", expect: false},
		{name: "null to class", t: "null", of: "Dog", expect: true},
		{name: "null to primitive", t: "null", of: "int", expect: false},
		{name: "covariant arrays", t: "Dog[]", of: "Animal[]", expect: true},
		{name: "primitive arrays are invariant", t: "int[]", of: "long[]", expect: false},
		{name: "array to Object", t: "int[]", of: "Object", expect: true},
		{name: "void", t: "void", of: "Object", expect: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			assert.Equal(tc.expect, m.IsSubtype(m.MustType(tc.t), m.MustType(tc.of)))
		})
	}
}

func Test_Model_IsCastable(t *testing.T) {
	assert := assert.New(t)
	m, animal, dog := testModel(t)

	assert.True(m.IsCastable(m.MustType("int"), m.MustType("double")))
	assert.True(m.IsCastable(animal, dog))
	assert.True(m.IsCastable(dog, animal))
	assert.False(m.IsCastable(m.MustType("String"), dog))
	assert.False(m.IsCastable(m.MustType("boolean"), m.MustType("int")))
}

func Test_Model_members(t *testing.T) {
	assert := assert.New(t)
	m, animal, dog := testModel(t)
	intType := m.MustType("int")

	speak := &types.Method{Owner: animal, Name: "speak", Return: m.MustType("String")}
	count := &types.Method{Owner: animal, Name: "count", Return: intType, Static: true}
	bark := &types.Method{Owner: dog, Name: "speak", Params: []*types.Type{intType}, Return: m.MustType("String")}
	ctor := &types.Method{Owner: dog, Name: "<init>", Constructor: true, Static: true}
	secret := &types.Field{Owner: animal, Name: "secret", Type: intType, Visibility: types.Private}
	legs := &types.Field{Owner: animal, Name: "legs", Type: intType, Visibility: types.Protected}

	assert.NoError(m.AddMethod(speak))
	assert.NoError(m.AddMethod(count))
	assert.NoError(m.AddMethod(bark))
	assert.NoError(m.AddMethod(ctor))
	assert.NoError(m.AddField(secret))
	assert.NoError(m.AddField(legs))

	assert.Equal([]*types.Method{bark, speak}, m.InstanceMethods(dog, "speak"))
	assert.Equal([]*types.Method{count}, m.StaticMethods(dog, "count"))
	assert.Equal([]*types.Method{ctor}, m.Constructors(dog))
	assert.Same(dog, ctor.Return)
	assert.False(ctor.Static)

	f, err := m.Field(dog, "legs")
	assert.NoError(err)
	assert.Same(legs, f)

	_, err = m.Field(dog, "tail")
	assert.True(errors.Is(err, ErrNotFound))

	assert.True(m.IsVisible(animal, secret))
	assert.False(m.IsVisible(dog, secret))
	assert.True(m.IsVisible(dog, legs))
	assert.False(m.IsVisible(m.MustType("String"), legs))

	meth, err := m.StaticMethod("Dog.count")
	assert.NoError(err)
	assert.Same(count, meth)

	_, err = m.StaticMethod("Dog.speak")
	assert.True(errors.Is(err, ErrNotFound))

	assert.Error(m.AddField(&types.Field{Owner: animal, Name: "legs", Type: intType}))
	assert.Error(m.AddMethod(&types.Method{Owner: dog, Name: "v", VarArgs: true, Params: []*types.Type{intType}}))
}

func Test_Model_OperatorsProducing(t *testing.T) {
	assert := assert.New(t)
	m, animal, dog := testModel(t)

	makeDog := &optable.Operator{ID: optable.NewID("Dog", "make", 0, nil), Name: "make", Owner: dog, Result: dog}
	makeAnimal := &optable.Operator{ID: optable.NewID("Animal", "make", 0, nil), Name: "make", Owner: animal, Result: animal}
	readDog := &optable.Operator{ID: optable.NewID("Dog", "read", 0, nil), Name: "read", Owner: dog, Result: dog, ReadAs: true}

	assert.NoError(m.AddOperator(makeDog))
	assert.NoError(m.AddOperator(makeAnimal))
	assert.NoError(m.AddOperator(readDog))
	assert.Error(m.AddOperator(makeDog))

	assert.Equal([]*optable.Operator{makeDog, makeAnimal}, m.OperatorsProducing(animal))
	assert.Equal([]*optable.Operator{makeDog}, m.OperatorsProducing(dog))
	assert.Equal([]*optable.Operator{readDog}, m.ReadAsOperatorsProducing(animal))
}

func Test_Model_DeclareClass_errors(t *testing.T) {
	assert := assert.New(t)
	m, _, _ := testModel(t)

	_, err := m.DeclareClass("Dog", "", types.Public)
	assert.True(errors.Is(err, ErrDuplicate))

	_, err = m.DeclareClass("Cat", "Lion", types.Public)
	assert.True(errors.Is(err, ErrNotFound))

	_, err = m.DeclareClass("Cat", "int", types.Public)
	assert.Error(err)
}
