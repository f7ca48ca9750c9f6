package exprparse

import (
	"github.com/dekarrin/mixfix/internal/optable"
	"github.com/dekarrin/mixfix/internal/syntax"
	"github.com/dekarrin/mixfix/internal/types"
)

// Resolver answers questions about host types and members. The operators it
// returns are tried in the order given.
type Resolver interface {
	optable.Source

	TypeByName(name string) (*types.Type, error)
	ArrayOf(elem *types.Type, dims int) *types.Type
	ComponentType(t *types.Type) (*types.Type, error)
	IsSubtype(t, of *types.Type) bool
	IsCastable(from, to *types.Type) bool
	IsVisible(from *types.Type, member types.Member) bool
	StaticMethods(owner *types.Type, name string) []*types.Method
	InstanceMethods(owner *types.Type, name string) []*types.Method
	Constructors(t *types.Type) []*types.Method
	Field(owner *types.Type, name string) (*types.Field, error)

	// StaticMethod returns the zero-argument static method with a qualified
	// name such as "Defaults.zero".
	StaticMethod(qualified string) (*types.Method, error)
}

// Thrown is an exception type that a node in a parsed expression may throw,
// and the line the node ended on.
type Thrown struct {
	Type *types.Type
	Line int
}

// Env is the context that one parse runs in. It is given to the Reader as its
// environment, and it collects the exception types thrown by what was matched.
type Env struct {
	// This is the class the expression is in. It may be nil.
	This *types.Type

	// Static is set when there is no this.
	Static bool

	locals map[string]*types.Type
	thrown map[syntax.Expr][]Thrown
}

// NewEnv creates an Env for an expression in class this.
func NewEnv(this *types.Type, static bool) *Env {
	return &Env{
		This:   this,
		Static: static || this == nil,
		locals: map[string]*types.Type{},
		thrown: map[syntax.Expr][]Thrown{},
	}
}

// Declare makes a local variable or parameter available to the expression.
func (env *Env) Declare(name string, t *types.Type) {
	env.locals[name] = t
}

// Lookup returns the type of a local variable.
func (env *Env) Lookup(name string) (*types.Type, bool) {
	t, ok := env.locals[name]
	return t, ok
}

func (env *Env) throw(node syntax.Expr, ts []*types.Type, line int) {
	if len(ts) == 0 {
		return
	}
	if _, ok := env.thrown[node]; ok {
		return
	}
	for _, t := range ts {
		env.thrown[node] = append(env.thrown[node], Thrown{Type: t, Line: line})
	}
}

// Thrown returns the exception types thrown by the tree rooted at root, in
// the depth-first order of the nodes that throw them. Exceptions recorded for
// matches that did not end up in root are not included.
func (env *Env) Thrown(root syntax.Expr) []Thrown {
	var out []Thrown
	syntax.Inspect(root, func(e syntax.Expr) bool {
		out = append(out, env.thrown[e]...)
		return true
	})
	return out
}
