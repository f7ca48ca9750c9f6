package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_OrderedKeys(t *testing.T) {
	testCases := []struct {
		name   string
		input  map[string]int
		expect []string
	}{
		{name: "empty", input: map[string]int{}, expect: []string{}},
		{name: "one", input: map[string]int{"a": 1}, expect: []string{"a"}},
		{name: "several", input: map[string]int{"c": 1, "a": 2, "b": 3}, expect: []string{"a", "b", "c"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			actual := OrderedKeys(tc.input)

			assert.Equal(tc.expect, actual)
		})
	}
}

func Test_KeySet(t *testing.T) {
	assert := assert.New(t)

	s := NewKeySet(1, 2)

	assert.True(s.Has(1))
	assert.False(s.Has(3))
	assert.True(s.Add(3))
	assert.False(s.Add(3))
	assert.Equal(3, s.Len())

	s.Remove(1)
	assert.False(s.Has(1))
	assert.Equal(2, s.Len())
}

func Test_StringSet_Elements(t *testing.T) {
	assert := assert.New(t)

	s := NewStringSet("Num", "Base")
	s.Add("Arith")
	s.Remove("Num")

	assert.Equal([]string{"Arith", "Base"}, s.Elements())
}
