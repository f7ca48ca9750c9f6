package mxu

import (
	"fmt"
	"strings"

	"github.com/dekarrin/mixfix/internal/host"
	"github.com/dekarrin/mixfix/internal/optable"
	"github.com/dekarrin/mixfix/internal/syntax"
	"github.com/dekarrin/mixfix/internal/types"
	"github.com/dekarrin/mixfix/internal/util"
)

// constructorName is the method name given to constructors that do not name
// themselves.
const constructorName = "<init>"

func parseUnits(units []topLevelUnit) (Unit, error) {
	m := host.New()
	unit := Unit{Model: m}

	for _, u := range units {
		unit.Files = append(unit.Files, u.path)
	}

	// classes go first so that every other declaration can refer to any class
	if err := declareClasses(m, units); err != nil {
		return unit, err
	}

	for _, u := range units {
		for i, meth := range u.Methods {
			if err := addMethod(m, meth); err != nil {
				return unit, fmt.Errorf("%s: method[%d] %s.%s: %w", u.path, i, meth.Owner, meth.Name, err)
			}
		}
		for i, f := range u.Fields {
			if err := addField(m, f); err != nil {
				return unit, fmt.Errorf("%s: field[%d] %s.%s: %w", u.path, i, f.Owner, f.Name, err)
			}
		}
	}

	// an operator's action is a method, so operators come after all members
	for _, u := range units {
		for i, op := range u.Operators {
			if err := addOperator(m, op); err != nil {
				return unit, fmt.Errorf("%s: operator[%d] %s.%s: %w", u.path, i, op.Owner, op.Name, err)
			}
		}
	}

	for _, u := range units {
		for i, b := range u.Bodies {
			parsed, err := parseBody(m, b, u.path)
			if err != nil {
				return unit, fmt.Errorf("%s: body[%d] %s.%s: %w", u.path, i, b.Owner, b.Name, err)
			}
			unit.Bodies = append(unit.Bodies, parsed)
		}
	}

	return unit, nil
}

type pendingClass struct {
	class
	path string
}

// declareClasses declares every class of units such that each superclass is
// declared before its subclasses. Classes that do not depend on each other
// keep the order they were given in.
func declareClasses(m *host.Model, units []topLevelUnit) error {
	var pending []pendingClass
	for _, u := range units {
		for _, c := range u.Classes {
			if c.Name == "" {
				return fmt.Errorf("%s: class must have non-blank 'name' field", u.path)
			}
			pending = append(pending, pendingClass{class: c, path: u.path})
		}
	}

	for len(pending) > 0 {
		waitingFor := util.NewStringSet()
		for _, c := range pending {
			waitingFor.Add(c.Name)
		}

		var waiting []pendingClass
		for _, c := range pending {
			if c.Super != "" && c.Super != c.Name && waitingFor.Has(c.Super) {
				if _, err := m.TypeByName(c.Super); err != nil {
					waiting = append(waiting, c)
					continue
				}
			}

			vis, err := types.ParseVisibility(c.Visibility)
			if err != nil {
				return fmt.Errorf("%s: class %q: visibility: %w", c.path, c.Name, err)
			}
			if _, err := m.DeclareClass(c.Name, c.Super, vis); err != nil {
				return fmt.Errorf("%s: class %q: %w", c.path, c.Name, err)
			}
			waitingFor.Remove(c.Name)
		}

		if len(waiting) == len(pending) {
			return fmt.Errorf("classes %s: superclasses form a cycle", strings.Join(waitingFor.Elements(), ", "))
		}
		pending = waiting
	}

	return nil
}

func classByName(m *host.Model, name string) (*types.Type, error) {
	if name == "" {
		return nil, fmt.Errorf("must have non-blank 'owner' field")
	}
	t, err := m.TypeByName(name)
	if err != nil {
		return nil, fmt.Errorf("owner: %w", err)
	}
	if t.Kind != types.Class {
		return nil, fmt.Errorf("owner: %s is not a class", t)
	}
	return t, nil
}

func typesByName(m *host.Model, names []string) ([]*types.Type, error) {
	ts := make([]*types.Type, len(names))
	for i, name := range names {
		t, err := m.TypeByName(name)
		if err != nil {
			return nil, err
		}
		ts[i] = t
	}
	return ts, nil
}

func addMethod(m *host.Model, meth method) error {
	owner, err := classByName(m, meth.Owner)
	if err != nil {
		return err
	}

	name := meth.Name
	if name == "" {
		if !meth.Constructor {
			return fmt.Errorf("must have non-blank 'name' field")
		}
		name = constructorName
	}

	params, err := typesByName(m, meth.Params)
	if err != nil {
		return fmt.Errorf("params: %w", err)
	}
	throws, err := typesByName(m, meth.Throws)
	if err != nil {
		return fmt.Errorf("throws: %w", err)
	}
	vis, err := types.ParseVisibility(meth.Visibility)
	if err != nil {
		return fmt.Errorf("visibility: %w", err)
	}

	var ret *types.Type
	if !meth.Constructor {
		retName := meth.Return
		if retName == "" {
			retName = host.TypeVoid
		}
		if ret, err = m.TypeByName(retName); err != nil {
			return fmt.Errorf("return: %w", err)
		}
	}

	return m.AddMethod(&types.Method{
		Owner:       owner,
		Name:        name,
		Params:      params,
		Return:      ret,
		Static:      meth.Static,
		VarArgs:     meth.VarArgs,
		Throws:      throws,
		Visibility:  vis,
		Constructor: meth.Constructor,
	})
}

func addField(m *host.Model, f field) error {
	owner, err := classByName(m, f.Owner)
	if err != nil {
		return err
	}
	if f.Name == "" {
		return fmt.Errorf("must have non-blank 'name' field")
	}
	t, err := m.TypeByName(f.Type)
	if err != nil {
		return fmt.Errorf("type: %w", err)
	}
	if t.IsVoid() {
		return fmt.Errorf("type: a field cannot be void")
	}
	vis, err := types.ParseVisibility(f.Visibility)
	if err != nil {
		return fmt.Errorf("visibility: %w", err)
	}

	return m.AddField(&types.Field{Owner: owner, Name: f.Name, Type: t, Static: f.Static, Visibility: vis})
}

func addOperator(m *host.Model, op operator) error {
	owner, err := classByName(m, op.Owner)
	if err != nil {
		return err
	}
	if op.Name == "" {
		return fmt.Errorf("must have non-blank 'name' field")
	}
	result, err := m.TypeByName(op.Result)
	if err != nil {
		return fmt.Errorf("result: %w", err)
	}
	throws, err := typesByName(m, op.Throws)
	if err != nil {
		return fmt.Errorf("throws: %w", err)
	}

	if len(op.Pattern) == 0 {
		return fmt.Errorf("must have at least one pattern element")
	}
	pattern := make([]optable.Element, len(op.Pattern))
	operands := 0
	for i, pe := range op.Pattern {
		el, err := parsePatternElement(pe)
		if err != nil {
			return fmt.Errorf("pattern[%d]: %w", i, err)
		}
		if el.IsOperand() {
			operands++
		}
		pattern[i] = el
	}

	parsed := &optable.Operator{
		ID:       optable.NewID(owner.Name, op.Name, op.Priority, pattern),
		Name:     op.Name,
		Owner:    owner,
		Result:   result,
		Pattern:  pattern,
		Priority: op.Priority,
		Throws:   throws,
		ReadAs:   op.ReadAs,
	}

	if op.Action != "" {
		action, err := staticCallAction(m, op.Action, operands, result)
		if err != nil {
			return fmt.Errorf("action: %w", err)
		}
		parsed.Action = action
	}

	return m.AddOperator(parsed)
}

// parsePatternElement converts pe into an Element. Exactly one of the kind
// keys of pe must be set.
func parsePatternElement(pe patternElement) (optable.Element, error) {
	var el optable.Element
	set := 0

	if pe.Keyword != "" {
		el = optable.Keyword(pe.Keyword)
		set++
	}
	if pe.Operand != "" {
		el = optable.Operand(pe.Operand, pe.Inclusive)
		set++
	}
	if pe.Variable != "" {
		if !strings.HasSuffix(strings.TrimSpace(pe.Variable), "[]") {
			return el, fmt.Errorf("variable: %q is not an array type", pe.Variable)
		}
		el = optable.VariableOperand(pe.Variable, pe.MinOne, pe.Separator)
		el.Inclusive = pe.Inclusive
		set++
	}
	if pe.Optional != "" {
		if pe.Default == "" {
			return el, fmt.Errorf("optional: must have non-blank 'default' field")
		}
		el = optable.OptionalOperand(pe.Optional, pe.Default)
		el.Inclusive = pe.Inclusive
		set++
	}
	if pe.And != "" {
		el = optable.AndPredicate(pe.And, pe.Inclusive)
		set++
	}
	if pe.Not != "" {
		el = optable.NotPredicate(pe.Not, pe.Inclusive)
		set++
	}

	if set != 1 {
		return el, fmt.Errorf("must set exactly one of 'keyword', 'operand', 'variable', 'optional', 'and', or 'not'")
	}
	return el, nil
}

// staticCallAction returns an Action that turns an operator into a call of
// the static method named by qualified, which must take one argument per
// operand.
func staticCallAction(m *host.Model, qualified string, operands int, result *types.Type) (optable.Action, error) {
	dot := strings.LastIndex(qualified, ".")
	if dot < 0 {
		return nil, fmt.Errorf("%q is not a qualified method name", qualified)
	}
	owner, err := m.TypeByName(qualified[:dot])
	if err != nil {
		return nil, err
	}

	for _, meth := range m.StaticMethods(owner, qualified[dot+1:]) {
		if len(meth.Params) != operands {
			continue
		}
		if !m.IsSubtype(meth.Return, result) {
			return nil, fmt.Errorf("%s returns %s, not %s", meth, meth.Return, result)
		}

		target := meth
		return func(_ *optable.Operator, args []syntax.Expr) syntax.Expr {
			return &syntax.StaticMethodCall{Typed: syntax.Typed{Of: target.Return}, Method: target, Args: args}
		}, nil
	}

	return nil, fmt.Errorf("static method %s with %d parameters is %w", qualified, operands, host.ErrNotFound)
}

func parseBody(m *host.Model, b body, path string) (Body, error) {
	kind, err := ParseBodyKind(b.Kind)
	if err != nil {
		return Body{}, fmt.Errorf("kind: %w", err)
	}
	owner, err := classByName(m, b.Owner)
	if err != nil {
		return Body{}, err
	}

	typeName := b.Type
	if typeName == "" {
		if kind != ExpressionBody {
			return Body{}, fmt.Errorf("must have non-blank 'type' field")
		}
		typeName = host.TypeVoid
	}
	t, err := m.TypeByName(typeName)
	if err != nil {
		return Body{}, fmt.Errorf("type: %w", err)
	}

	throws, err := typesByName(m, b.Throws)
	if err != nil {
		return Body{}, fmt.Errorf("throws: %w", err)
	}

	seen := map[string]bool{}
	params := make([]Param, len(b.Params))
	for i, p := range b.Params {
		if p.Name == "" {
			return Body{}, fmt.Errorf("param[%d]: must have non-blank 'name' field", i)
		}
		if seen[p.Name] {
			return Body{}, fmt.Errorf("param[%d]: %q %w", i, p.Name, host.ErrDuplicate)
		}
		seen[p.Name] = true

		pt, err := m.TypeByName(p.Type)
		if err != nil {
			return Body{}, fmt.Errorf("param[%d] %s: %w", i, p.Name, err)
		}
		params[i] = Param{Name: p.Name, Type: pt}
	}

	file := b.File
	if file == "" {
		file = path
	}
	line := b.Line
	if line < 1 {
		line = 1
	}

	return Body{
		Kind:   kind,
		Owner:  owner,
		Name:   b.Name,
		Static: b.Static,
		Type:   t,
		Params: params,
		Throws: throws,
		Source: b.Source,
		File:   file,
		Line:   line,
	}, nil
}
