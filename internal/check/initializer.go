package check

import (
	"errors"

	"github.com/dannybpoulsen/utap/internal/ast"
	"github.com/dannybpoulsen/utap/internal/system"
)

// initialiserError carries the offending sub-expression of an
// invalid initializer up to the declaration-level caller, which
// converts it into a single positioned diagnostic.
type initialiserError struct {
	expr *ast.Expression
	msg  string
}

func (e *initialiserError) Error() string {
	return e.msg
}

func initErr(expr *ast.Expression, msg string) error {
	return &initialiserError{expr: expr, msg: msg}
}

// checkVariableInitialiser checks the initializer of a variable or
// constant: it must be a computable, side-effect-free expression that
// fits the declared type. The initializer is replaced by its
// normalized form.
func (tc *TypeChecker) checkVariableInitialiser(v *system.Variable) {
	if v.Init.Empty() || !tc.Annotate(v.Init) {
		return
	}
	if v.Init.DependsOn(tc.persistent) {
		tc.handleError(v.Init, "Constant expression expected")
		return
	}
	if !tc.isSideEffectFree(v.Init) {
		tc.handleError(v.Init, "Initialiser must not have side effects")
		return
	}
	normalized, err := tc.checkInitialiser(v.Sym.Type(), v.Init)
	var ie *initialiserError
	if errors.As(err, &ie) {
		tc.handleError(ie.expr, "%s", ie.msg)
		return
	}
	v.Init = normalized
}

// checkInitialiser checks that init is a valid initializer for the
// given type and returns it in normal form: array initializers become
// positional lists of exactly the declared dimension, and record
// initializers are reordered into field-declaration order with every
// field written exactly once.
func (tc *TypeChecker) checkInitialiser(t *ast.Type, init *ast.Expression) (*ast.Expression, error) {
	in := tc.interpreter()
	switch t.Base() {
	case ast.BaseArray:
		if init.Kind != ast.ExprList {
			return init, initErr(init, "Invalid array initialiser")
		}
		if init.GetType().Equal(t) {
			// Already in normal form.
			return init, nil
		}
		size := t.ArraySize()
		if !size.IsInteger() {
			return init, initErr(init, "Arrays of scalarsets cannot have initialisers")
		}
		r, err := in.EvaluateTypeRange(size)
		if err != nil {
			return init, initErr(init, "Arrays with parameterized size cannot have an initialiser")
		}
		dim := int(r.Size())
		if init.Size() > dim {
			return init, initErr(init, "Excess elements in array initialiser")
		}

		subtype := t.Sub()
		entries := init.GetType().RecordFields()
		result := make([]*ast.Expression, 0, entries.Size())
		for i, entry := range entries.Symbols() {
			if entry.Name() != "" {
				return init, initErr(init.Child(i), "Unknown field specified in initialiser")
			}
			elem, err := tc.checkInitialiser(subtype, init.Child(i))
			if err != nil {
				return init, err
			}
			result = append(result, elem)
		}
		if len(result) < dim {
			return init, initErr(init, "Missing fields in initialiser")
		}
		return ast.NewNary(init.Pos, ast.ExprList, result, t), nil

	case ast.BaseBool:
		if !init.GetType().IsValue() {
			return init, initErr(init, "Invalid initialiser")
		}
		return init, nil

	case ast.BaseInt:
		if !init.GetType().IsValue() {
			return init, initErr(init, "Invalid initialiser")
		}
		lower, upper := t.RangeBounds()
		if lower.Empty() {
			// Constants may be declared without a range; nothing more
			// to check.
			return init, nil
		}
		// The range check applies only when both the value and the
		// range are computable; otherwise it falls to runtime.
		value, err := in.Evaluate(init)
		if err != nil {
			return init, nil
		}
		r, err := in.EvaluateRange(lower, upper)
		if err != nil {
			return init, nil
		}
		if !r.ContainsValue(value) {
			return init, initErr(init, "Initialiser is out of range")
		}
		return init, nil

	case ast.BaseRecord:
		if init.GetType().Base() == ast.BaseRecord &&
			t.RecordFields() == init.GetType().RecordFields() {
			return init, nil
		}
		if init.Kind != ast.ExprList {
			return init, initErr(init, "Invalid initialiser for struct")
		}

		fields := t.RecordFields()
		entries := init.GetType().RecordFields()
		result := make([]*ast.Expression, fields.Size())

		current := 0
		for i, entry := range entries.Symbols() {
			if entry.Name() != "" {
				current = fields.IndexOf(entry.Name())
				if current == -1 {
					tc.handleError(init.Child(i), "Unknown field")
					break
				}
			}
			if current >= fields.Size() {
				tc.handleError(init.Child(i), "Excess elements in initialiser")
				break
			}
			if result[current] != nil {
				tc.handleError(init.Child(i), "Multiple initialisers for field")
				current++
				continue
			}
			elem, err := tc.checkInitialiser(fields.Symbol(current).Type(), init.Child(i))
			if err != nil {
				return init, err
			}
			result[current] = elem
			current++
		}

		for i := range result {
			if result[i] == nil {
				return init, initErr(init, "Incomplete initialiser")
			}
		}
		return ast.NewNary(init.Pos, ast.ExprList, result, t), nil

	default:
		return init, initErr(init, "Invalid initialiser")
	}
}
