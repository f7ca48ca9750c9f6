// Package util holds small generic helpers used across mixfix.
package util

import (
	"sort"
)

// OrderedKeys returns the keys of m, ordered a particular way. The order is
// guaranteed to be the same on every run.
//
// As of this writing, the order is alphabetical, but this function does not
// guarantee this will always be the case.
func OrderedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// KeySet is a set of comparable values. The zero value is not ready for use;
// create one with NewKeySet.
type KeySet[E comparable] map[E]bool

// NewKeySet creates a KeySet holding each of the given elements.
func NewKeySet[E comparable](of ...E) KeySet[E] {
	s := KeySet[E]{}
	for _, e := range of {
		s.Add(e)
	}
	return s
}

// Has returns whether value is in the set.
func (s KeySet[E]) Has(value E) bool {
	_, has := s[value]
	return has
}

// Add puts value in the set. It returns false if it was already there.
func (s KeySet[E]) Add(value E) bool {
	if s.Has(value) {
		return false
	}
	s[value] = true
	return true
}

func (s KeySet[E]) Remove(value E) {
	delete(s, value)
}

func (s KeySet[E]) Len() int {
	return len(s)
}

// StringSet is a KeySet of strings that can list its elements in a stable
// order.
type StringSet struct {
	KeySet[string]
}

// NewStringSet creates a StringSet holding each of the given strings.
func NewStringSet(of ...string) StringSet {
	return StringSet{NewKeySet(of...)}
}

// Elements returns the strings in the set in alphabetical order.
func (s StringSet) Elements() []string {
	return OrderedKeys(s.KeySet)
}
