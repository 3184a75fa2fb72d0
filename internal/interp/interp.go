// Package interp evaluates constant sub-expressions of a model under
// a valuation of constant symbols. Evaluation is best effort: any
// expression whose value is not determined at check time fails with
// ErrNotComputable, which callers treat as "defer to runtime", never
// as an error in itself.
package interp

import (
	"errors"

	"github.com/dannybpoulsen/utap/internal/ast"
)

// ErrNotComputable reports that an expression cannot be evaluated at
// check time.
var ErrNotComputable = errors.New("expression is not computable")

// Valuation maps constant symbols to their defining expressions.
type Valuation map[*ast.Symbol]*ast.Expression

// Interpreter evaluates expressions under one or more valuations.
// Later valuations shadow earlier ones.
type Interpreter struct {
	valuations []Valuation
}

// New creates an interpreter over the given valuation.
func New(valuation Valuation) *Interpreter {
	return &Interpreter{valuations: []Valuation{valuation}}
}

// AddValuation pushes an additional valuation, e.g. the argument
// mapping of a template instantiation.
func (in *Interpreter) AddValuation(valuation Valuation) {
	in.valuations = append(in.valuations, valuation)
}

func (in *Interpreter) lookup(sym *ast.Symbol) (*ast.Expression, bool) {
	for i := len(in.valuations) - 1; i >= 0; i-- {
		if expr, ok := in.valuations[i][sym]; ok && expr != nil {
			return expr, true
		}
	}
	return nil, false
}

// Evaluate computes the integer value of a constant expression.
func (in *Interpreter) Evaluate(e *ast.Expression) (int32, error) {
	if e.Empty() {
		return 0, ErrNotComputable
	}
	switch e.Kind {
	case ast.ExprConstant:
		return e.Value, nil

	case ast.ExprIdentifier:
		bound, ok := in.lookup(e.Sym)
		if !ok {
			return 0, ErrNotComputable
		}
		return in.Evaluate(bound)

	case ast.ExprNeg:
		v, err := in.Evaluate(e.Child(0))
		if err != nil {
			return 0, err
		}
		return -v, nil

	case ast.ExprNot:
		v, err := in.Evaluate(e.Child(0))
		if err != nil {
			return 0, err
		}
		return boolValue(v == 0), nil

	case ast.ExprPlus, ast.ExprMinus, ast.ExprMult, ast.ExprDiv, ast.ExprMod,
		ast.ExprBitAnd, ast.ExprBitOr, ast.ExprBitXor,
		ast.ExprShiftLeft, ast.ExprShiftRight,
		ast.ExprMin, ast.ExprMax,
		ast.ExprAnd, ast.ExprOr,
		ast.ExprEq, ast.ExprNeq,
		ast.ExprLess, ast.ExprLessEq, ast.ExprGreaterEq, ast.ExprGreater:
		l, err := in.Evaluate(e.Child(0))
		if err != nil {
			return 0, err
		}
		r, err := in.Evaluate(e.Child(1))
		if err != nil {
			return 0, err
		}
		return binary(e.Kind, l, r)

	case ast.ExprInlineIf:
		c, err := in.Evaluate(e.Child(0))
		if err != nil {
			return 0, err
		}
		if c != 0 {
			return in.Evaluate(e.Child(1))
		}
		return in.Evaluate(e.Child(2))

	case ast.ExprIndex:
		return in.evaluateIndex(e)

	case ast.ExprDot:
		list, err := in.resolveList(e.Child(0))
		if err != nil {
			return 0, err
		}
		i := int(e.Value)
		if i < 0 || i >= list.Size() {
			return 0, ErrNotComputable
		}
		return in.Evaluate(list.Child(i))

	default:
		return 0, ErrNotComputable
	}
}

func (in *Interpreter) evaluateIndex(e *ast.Expression) (int32, error) {
	idx, err := in.Evaluate(e.Child(1))
	if err != nil {
		return 0, err
	}
	list, err := in.resolveList(e.Child(0))
	if err != nil {
		return 0, err
	}
	size := e.Child(0).GetType().ArraySize()
	lower, _ := size.RangeBounds()
	lo := int32(0)
	if lower != nil {
		lo, err = in.Evaluate(lower)
		if err != nil {
			return 0, err
		}
	}
	i := int(idx - lo)
	if i < 0 || i >= list.Size() {
		return 0, ErrNotComputable
	}
	return in.Evaluate(list.Child(i))
}

// resolveList follows identifiers down to a literal initializer list.
func (in *Interpreter) resolveList(e *ast.Expression) (*ast.Expression, error) {
	for {
		if e.Empty() {
			return nil, ErrNotComputable
		}
		switch e.Kind {
		case ast.ExprList:
			return e, nil
		case ast.ExprIdentifier:
			bound, ok := in.lookup(e.Sym)
			if !ok {
				return nil, ErrNotComputable
			}
			e = bound
		case ast.ExprDot:
			inner, err := in.resolveList(e.Child(0))
			if err != nil {
				return nil, err
			}
			i := int(e.Value)
			if i < 0 || i >= inner.Size() {
				return nil, ErrNotComputable
			}
			e = inner.Child(i)
		default:
			return nil, ErrNotComputable
		}
	}
}

// EvaluateRange computes the value range of a bounded type from its
// bound expressions.
func (in *Interpreter) EvaluateRange(lower, upper *ast.Expression) (ast.Range, error) {
	lo, err := in.Evaluate(lower)
	if err != nil {
		return ast.EmptyRange(), err
	}
	hi, err := in.Evaluate(upper)
	if err != nil {
		return ast.EmptyRange(), err
	}
	return ast.NewRange(lo, hi), nil
}

// EvaluateTypeRange computes the range of an integer or scalar type.
func (in *Interpreter) EvaluateTypeRange(t *ast.Type) (ast.Range, error) {
	lower, upper := t.RangeBounds()
	if lower == nil || upper == nil {
		return ast.EmptyRange(), ErrNotComputable
	}
	return in.EvaluateRange(lower, upper)
}

// EvaluateList evaluates an expression to the flat list of its
// values: a list expression yields the values of all elements
// recursively, anything else a single value.
func (in *Interpreter) EvaluateList(e *ast.Expression) ([]int32, error) {
	if e.Empty() {
		return nil, ErrNotComputable
	}
	if e.Kind == ast.ExprIdentifier {
		if bound, ok := in.lookup(e.Sym); ok {
			if bound.Kind == ast.ExprList {
				return in.EvaluateList(bound)
			}
		}
	}
	if e.Kind == ast.ExprList {
		var values []int32
		for _, c := range e.Children {
			sub, err := in.EvaluateList(c)
			if err != nil {
				return nil, err
			}
			values = append(values, sub...)
		}
		return values, nil
	}
	v, err := in.Evaluate(e)
	if err != nil {
		return nil, err
	}
	return []int32{v}, nil
}

func boolValue(b bool) int32 {
	if b {
		return 1
	}
	return 0
}

func binary(kind ast.ExprKind, l, r int32) (int32, error) {
	switch kind {
	case ast.ExprPlus:
		return l + r, nil
	case ast.ExprMinus:
		return l - r, nil
	case ast.ExprMult:
		return l * r, nil
	case ast.ExprDiv:
		if r == 0 {
			return 0, ErrNotComputable
		}
		return l / r, nil
	case ast.ExprMod:
		if r == 0 {
			return 0, ErrNotComputable
		}
		return l % r, nil
	case ast.ExprBitAnd:
		return l & r, nil
	case ast.ExprBitOr:
		return l | r, nil
	case ast.ExprBitXor:
		return l ^ r, nil
	case ast.ExprShiftLeft:
		if r < 0 || r > 31 {
			return 0, ErrNotComputable
		}
		return l << uint(r), nil
	case ast.ExprShiftRight:
		if r < 0 || r > 31 {
			return 0, ErrNotComputable
		}
		return l >> uint(r), nil
	case ast.ExprMin:
		if l < r {
			return l, nil
		}
		return r, nil
	case ast.ExprMax:
		if l > r {
			return l, nil
		}
		return r, nil
	case ast.ExprAnd:
		return boolValue(l != 0 && r != 0), nil
	case ast.ExprOr:
		return boolValue(l != 0 || r != 0), nil
	case ast.ExprEq:
		return boolValue(l == r), nil
	case ast.ExprNeq:
		return boolValue(l != r), nil
	case ast.ExprLess:
		return boolValue(l < r), nil
	case ast.ExprLessEq:
		return boolValue(l <= r), nil
	case ast.ExprGreaterEq:
		return boolValue(l >= r), nil
	case ast.ExprGreater:
		return boolValue(l > r), nil
	default:
		return 0, ErrNotComputable
	}
}
