package check

import (
	"github.com/dannybpoulsen/utap/internal/ast"
	"github.com/dannybpoulsen/utap/internal/position"
	"github.com/dannybpoulsen/utap/internal/system"
)

// rateDecomposer splits a conjunctive invariant into the residual
// pure invariant and the list of (clock-or-cost, rate) bindings drawn
// from rate equalities. Conjoining the residual with the collected
// `rate(x) == r` equalities is equivalent to the original invariant.
type rateDecomposer struct {
	invariant *ast.Expression
	rates     []system.RatePair
}

func (d *rateDecomposer) decompose(e *ast.Expression) {
	switch {
	case e.GetType().IsInvariant():
		if d.invariant.Empty() {
			d.invariant = e
		} else {
			conj := ast.NewBinary(position.Position{}, ast.ExprAnd, d.invariant, e)
			conj.SetType(ast.InvariantType)
			d.invariant = conj
		}

	case e.Kind == ast.ExprAnd:
		d.decompose(e.Child(0))
		d.decompose(e.Child(1))

	default:
		// A rate equality: exactly one side is a rate expression
		// applied to a clock or cost.
		if e.Child(0).GetType().Base() == ast.BaseRate {
			d.rates = append(d.rates, system.RatePair{
				Ref:  e.Child(0).Child(0),
				Rate: e.Child(1),
			})
		} else {
			d.rates = append(d.rates, system.RatePair{
				Ref:  e.Child(1).Child(0),
				Rate: e.Child(0),
			})
		}
	}
}
