package rules

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// FORMULA NODES - closed variant set, no arbitrary code
// =============================================================================
//
// The external rules component derives formulas like
// "expensas + 0.5 * municipalidad" from its markdown source. Here those
// arrive as trees over exactly four node kinds. Evaluation is a plain
// tree walk over named monetary fields; there is no eval, no parser and
// no way to reference anything outside Env.

var ErrUnknownField = errors.New("formula references unknown field")

// Env holds the concrete monetary values a formula may reference.
type Env map[Field]decimal.Decimal

// Node is one formula tree node.
type Node interface {
	Eval(env Env) (decimal.Decimal, error)
}

// Const is a literal amount.
type Const struct{ Value decimal.Decimal }

func (c Const) Eval(Env) (decimal.Decimal, error) { return c.Value, nil }

// Ref reads a named monetary field from the environment.
type Ref struct{ Field Field }

func (r Ref) Eval(env Env) (decimal.Decimal, error) {
	v, ok := env[r.Field]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrUnknownField, r.Field)
	}
	return v, nil
}

// Add sums two subtrees.
type Add struct{ Left, Right Node }

func (a Add) Eval(env Env) (decimal.Decimal, error) {
	l, err := a.Left.Eval(env)
	if err != nil {
		return decimal.Zero, err
	}
	r, err := a.Right.Eval(env)
	if err != nil {
		return decimal.Zero, err
	}
	return l.Add(r), nil
}

// Mul multiplies two subtrees.
type Mul struct{ Left, Right Node }

func (m Mul) Eval(env Env) (decimal.Decimal, error) {
	l, err := m.Left.Eval(env)
	if err != nil {
		return decimal.Zero, err
	}
	r, err := m.Right.Eval(env)
	if err != nil {
		return decimal.Zero, err
	}
	return l.Mul(r), nil
}

// Resolve evaluates a formula per field into a concrete Mapping.
// A failing formula drops its field rather than poisoning the rest.
//
// Resolve is the entry point for whatever loads the rules component's
// derived formulas (a Source implementation feeding Apply); the engine
// itself never constructs formula trees.
func Resolve(formulas map[Field]Node, env Env) (Mapping, []error) {
	out := make(Mapping, len(formulas))
	var errs []error
	for f, node := range formulas {
		if !KnownField(f) {
			errs = append(errs, fmt.Errorf("%w: %q is not overridable", ErrUnknownField, f))
			continue
		}
		v, err := node.Eval(env)
		if err != nil {
			errs = append(errs, fmt.Errorf("field %q: %w", f, err))
			continue
		}
		out[f] = v
	}
	return out, errs
}
