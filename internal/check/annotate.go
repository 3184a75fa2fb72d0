package check

import (
	"github.com/dannybpoulsen/utap/internal/ast"
)

// Annotate performs bottom-up type checking of an expression and
// assigns a type to every node. It checks that only left-hand side
// values are updated, that functions are called with the correct
// arguments, that operators are applied to correct operands and that
// assignments are assignment compatible. It does not compute integer
// ranges and thus produces no out-of-range diagnostics except for
// constant array indices. Returns true if no type errors were found.
func (tc *TypeChecker) Annotate(e *ast.Expression) bool {
	if e.Empty() {
		return true
	}

	// Children first. A failed child leaves this node unknown, but
	// siblings are still visited so independent errors all surface.
	ok := true
	for _, child := range e.Children {
		if !tc.Annotate(child) {
			ok = false
		}
	}
	if !ok {
		return false
	}

	var typ *ast.Type
	switch e.Kind {
	case ast.ExprEq, ast.ExprNeq:
		left, right := e.Child(0), e.Child(1)
		lt, rt := left.GetType(), right.GetType()
		switch {
		case lt.IsValue() && rt.IsValue():
			typ = ast.BoolType
		case lt.IsRecord() && rt.IsRecord() && lt.RecordFields() == rt.RecordFields():
			typ = ast.BoolType
		case lt.Base() == ast.BaseScalar || rt.Base() == ast.BaseScalar:
			if !lt.ScalarEqual(rt) {
				tc.handleError(e, "Scalars can only be compared to scalars of the same scalarset")
				return false
			}
			typ = ast.BoolType
		default:
			typ = typeOfBinaryNonInt(left, e.Kind, right)
			if typ == nil {
				tc.handleError(e, "Invalid operands to binary operator")
				return false
			}
		}

	case ast.ExprPlus, ast.ExprMinus, ast.ExprMult, ast.ExprDiv, ast.ExprMod,
		ast.ExprBitAnd, ast.ExprBitOr, ast.ExprBitXor,
		ast.ExprShiftLeft, ast.ExprShiftRight, ast.ExprMin, ast.ExprMax:
		if e.Child(0).GetType().IsValue() && e.Child(1).GetType().IsValue() {
			typ = ast.IntType
		} else {
			typ = typeOfBinaryNonInt(e.Child(0), e.Kind, e.Child(1))
			if typ == nil {
				tc.handleError(e, "Invalid operands to binary operator")
				return false
			}
		}

	case ast.ExprAnd, ast.ExprOr,
		ast.ExprLess, ast.ExprLessEq, ast.ExprGreaterEq, ast.ExprGreater:
		if e.Child(0).GetType().IsValue() && e.Child(1).GetType().IsValue() {
			typ = ast.BoolType
		} else {
			typ = typeOfBinaryNonInt(e.Child(0), e.Kind, e.Child(1))
			if typ == nil {
				tc.handleError(e, "Invalid operands to binary operator")
				return false
			}
		}

	case ast.ExprNot:
		switch {
		case e.Child(0).GetType().IsValue():
			typ = ast.BoolType
		case e.Child(0).GetType().IsConstraint():
			typ = ast.ConstraintType
		default:
			tc.handleError(e, "Invalid operation for type")
			return false
		}

	case ast.ExprNeg:
		if !e.Child(0).GetType().IsValue() {
			tc.handleError(e, "Invalid operation for type")
			return false
		}
		typ = ast.IntType

	case ast.ExprRate:
		if e.Child(0).GetType().Base() != ast.BaseCost {
			tc.handleError(e, "Can only apply rate to cost variables")
			return false
		}
		typ = ast.RateType

	case ast.ExprAssign:
		if !areAssignmentCompatible(e.Child(0).GetType(), e.Child(1).GetType()) {
			tc.handleError(e, "Incompatible types")
			return false
		}
		if !tc.isLHSValue(e.Child(0)) {
			tc.handleError(e.Child(0), "Left hand side value expected")
			return false
		}
		typ = e.Child(0).GetType()

	case ast.ExprAssignPlus:
		lt := e.Child(0).GetType()
		if (!lt.IsInteger() && lt.Base() != ast.BaseCost) || !e.Child(1).GetType().IsInteger() {
			tc.handleError(e, "Increment operator can only be used for integer and cost variables")
			return false
		}
		if !tc.isLHSValue(e.Child(0)) {
			tc.handleError(e.Child(0), "Left hand side value expected")
			return false
		}
		typ = e.Child(0).GetType()

	case ast.ExprAssignMinus, ast.ExprAssignDiv, ast.ExprAssignMod,
		ast.ExprAssignMult, ast.ExprAssignAnd, ast.ExprAssignOr,
		ast.ExprAssignXor, ast.ExprAssignShiftLeft, ast.ExprAssignShiftRight:
		if !e.Child(0).GetType().IsValue() || !e.Child(1).GetType().IsValue() {
			tc.handleError(e, "Non-integer types must use regular assignment operator")
			return false
		}
		if !tc.isLHSValue(e.Child(0)) {
			tc.handleError(e.Child(0), "Left hand side value expected")
			return false
		}
		typ = e.Child(0).GetType()

	case ast.ExprPreIncrement, ast.ExprPostIncrement,
		ast.ExprPreDecrement, ast.ExprPostDecrement:
		if !tc.isLHSValue(e.Child(0)) {
			tc.handleError(e.Child(0), "Left hand side value expected")
			return false
		}
		if !e.Child(0).GetType().IsInteger() {
			tc.handleError(e, "Integer expected")
			return false
		}
		typ = ast.IntType

	case ast.ExprInlineIf:
		if !e.Child(0).GetType().IsValue() {
			tc.handleError(e, "First argument of inline if must be an integer")
			return false
		}
		if !areInlineIfCompatible(e.Child(1).GetType(), e.Child(2).GetType()) {
			tc.handleError(e, "Incompatible arguments to inline if")
			return false
		}
		typ = e.Child(1).GetType()

	case ast.ExprComma:
		for _, side := range e.Children {
			t := side.GetType()
			if !t.IsValue() && !t.IsScalar() && !t.IsClock() && !t.IsRecord() &&
				!t.IsVoid() && t.Base() != ast.BaseCost {
				tc.handleError(side, "Incompatible type for comma expression")
				return false
			}
		}
		typ = e.Child(1).GetType()

	case ast.ExprFunCall:
		if e.Child(0).GetType().Base() != ast.BaseFunction {
			tc.handleError(e.Child(0), "Function name expected")
			return false
		}
		before := tc.handler.ErrorCount()
		tc.checkFunctionCallArguments(e)
		// The node keeps the return type assigned by the builder.
		return tc.handler.ErrorCount() == before

	case ast.ExprIndex:
		array := e.Child(0).GetType()
		index := e.Child(1).GetType()
		if array.Base() != ast.BaseArray {
			tc.handleError(e.Child(0), "Array expected")
			return false
		}
		typ = array.Sub()
		size := array.ArraySize()
		if size.IsInteger() && index.IsValue() {
			// Constant indices are folded and bounds checked here;
			// everything else is left to runtime checking.
			in := tc.interpreter()
			idx, err1 := in.Evaluate(e.Child(1))
			r, err2 := in.EvaluateTypeRange(size)
			if err1 == nil && err2 == nil && !r.ContainsValue(idx) {
				tc.handleError(e.Child(1), "Array index out of range")
				return false
			}
		} else if size.IsScalar() && index.IsScalar() {
			if !size.ScalarEqual(index) {
				tc.handleError(e.Child(1), "Incompatible type")
				return false
			}
		}

	case ast.ExprForall:
		if sym := e.Child(0).GetSymbol(); sym != nil {
			tc.checkType(sym.Type(), false)
		}
		body := e.Child(1).GetType()
		switch {
		case body.IsValue():
			typ = ast.BoolType
		case body.IsInvariant():
			typ = ast.InvariantType
		case body.IsGuard():
			typ = ast.GuardType
		case body.IsConstraint():
			typ = ast.ConstraintType
		default:
			tc.handleError(e.Child(1), "Boolean expected")
			return false
		}
		if !tc.isSideEffectFree(e.Child(1)) {
			tc.handleError(e.Child(1), "Expression must be side effect free")
			return false
		}

	default:
		// Identifiers, constants, projections, lists, sync heads and
		// property quantifiers arrive pre-typed from the builder.
		return true
	}

	e.SetType(typ)
	return true
}

// typeOfBinaryNonInt returns the type of a binary operation with at
// least one non-integer operand, or nil if the combination is not in
// the table.
func typeOfBinaryNonInt(left *ast.Expression, op ast.ExprKind, right *ast.Expression) *ast.Type {
	lt, rt := left.GetType(), right.GetType()
	switch op {
	case ast.ExprPlus:
		switch {
		case lt.IsInteger() && rt.IsClock(), lt.IsClock() && rt.IsInteger():
			return ast.ClockType
		case lt.IsDiff() && rt.IsInteger(), lt.IsInteger() && rt.IsDiff():
			return ast.DiffType
		}

	case ast.ExprMinus:
		switch {
		// int - clock is deliberately absent so that clock guards can
		// be derived from the remaining combinations.
		case lt.IsClock() && rt.IsInteger():
			return ast.ClockType
		case lt.IsDiff() && rt.IsInteger(),
			lt.IsInteger() && rt.IsDiff(),
			lt.IsClock() && rt.IsClock():
			return ast.DiffType
		}

	case ast.ExprAnd:
		switch {
		case lt.IsInvariant() && rt.IsInvariant():
			return ast.InvariantType
		case lt.IsInvariantWR() && rt.IsInvariantWR():
			return ast.InvariantWRType
		case lt.IsGuard() && rt.IsGuard():
			return ast.GuardType
		case lt.IsConstraint() && rt.IsConstraint():
			return ast.ConstraintType
		}

	case ast.ExprOr:
		switch {
		case lt.IsValue() && rt.IsInvariant():
			return ast.InvariantType
		case lt.IsValue() && rt.IsGuard():
			return ast.GuardType
		case lt.IsConstraint() && rt.IsConstraint():
			return ast.ConstraintType
		}

	case ast.ExprLess, ast.ExprLessEq:
		switch {
		case lt.IsClock() && rt.IsClock(),
			lt.IsClock() && rt.IsInteger(),
			lt.IsDiff() && rt.IsInteger(),
			lt.IsInteger() && rt.IsDiff():
			return ast.InvariantType
		case lt.IsInteger() && rt.IsClock():
			return ast.GuardType
		}

	case ast.ExprEq:
		switch {
		case lt.IsClock() && rt.IsClock(),
			lt.IsClock() && rt.IsInteger(),
			lt.IsInteger() && rt.IsClock(),
			lt.IsDiff() && rt.IsInteger(),
			lt.IsInteger() && rt.IsDiff():
			return ast.GuardType
		case lt.Base() == ast.BaseRate && rt.IsInteger(),
			lt.IsInteger() && rt.Base() == ast.BaseRate:
			return ast.InvariantWRType
		}

	case ast.ExprNeq:
		switch {
		case lt.IsClock() && rt.IsClock(),
			lt.IsClock() && rt.IsInteger(),
			lt.IsInteger() && rt.IsClock(),
			lt.IsDiff() && rt.IsInteger(),
			lt.IsInteger() && rt.IsDiff():
			return ast.ConstraintType
		}

	case ast.ExprGreaterEq, ast.ExprGreater:
		switch {
		case lt.IsClock() && rt.IsClock(),
			lt.IsInteger() && rt.IsClock(),
			lt.IsDiff() && rt.IsInteger(),
			lt.IsInteger() && rt.IsDiff():
			return ast.InvariantType
		case lt.IsClock() && rt.IsGuard():
			return ast.GuardType
		}
	}
	return nil
}

// areInlineIfCompatible returns true if the two result branches of an
// inline if are compatible: same base, recursively compatible array
// shapes, nominally identical records and scalar sets.
func areInlineIfCompatible(thenArg, elseArg *ast.Type) bool {
	switch {
	case thenArg.IsValue() && elseArg.IsValue():
		return true
	case thenArg.IsClock() && elseArg.IsClock():
		return true
	case thenArg.Base() == ast.BaseChannel && elseArg.Base() == ast.BaseChannel:
		return thenArg.HasPrefix(ast.PrefixUrgent) == elseArg.HasPrefix(ast.PrefixUrgent) &&
			thenArg.HasPrefix(ast.PrefixBroadcast) == elseArg.HasPrefix(ast.PrefixBroadcast)
	case thenArg.Base() == ast.BaseArray && elseArg.Base() == ast.BaseArray:
		thenSize, elseSize := thenArg.ArraySize(), elseArg.ArraySize()
		switch {
		case thenSize.IsInteger() && elseSize.IsInteger():
			tl, tu := thenSize.RangeBounds()
			el, eu := elseSize.RangeBounds()
			if !tl.Equal(el) || !tu.Equal(eu) {
				return false
			}
		case thenSize.Base() == ast.BaseScalar && elseSize.Base() == ast.BaseScalar:
			if !thenSize.ScalarEqual(elseSize) {
				return false
			}
		default:
			return false
		}
		return areInlineIfCompatible(thenArg.Sub(), elseArg.Sub())
	case thenArg.IsRecord() && elseArg.IsRecord():
		return thenArg.RecordFields() == elseArg.RecordFields()
	case thenArg.Base() == ast.BaseScalar && elseArg.Base() == ast.BaseScalar:
		return thenArg.ScalarEqual(elseArg)
	}
	return false
}

// areAssignmentCompatible returns true if an expression of type
// rvalue can be assigned to an expression of type lvalue. It does not
// check that the target actually is a left-hand side value, nor
// integer ranges.
func areAssignmentCompatible(lvalue, rvalue *ast.Type) bool {
	switch {
	case lvalue.IsClock() && rvalue.IsValue():
		return true
	case lvalue.IsValue() && rvalue.IsValue():
		return true
	case lvalue.IsRecord() && rvalue.IsRecord():
		return lvalue.RecordFields() == rvalue.RecordFields()
	case lvalue.Base() == ast.BaseScalar && rvalue.Base() == ast.BaseScalar:
		return lvalue.ScalarEqual(rvalue)
	}
	return false
}

// isLHSValue returns true if the expression results in a reference to
// a variable. An inline if over integers is only a LHS value if both
// branches have the same declared range.
func (tc *TypeChecker) isLHSValue(e *ast.Expression) bool {
	if e.Empty() {
		return false
	}
	switch e.Kind {
	case ast.ExprIdentifier:
		return !e.Sym.Type().HasPrefix(ast.PrefixConstant)

	case ast.ExprDot, ast.ExprIndex:
		return tc.isLHSValue(e.Child(0))

	case ast.ExprPreIncrement, ast.ExprPreDecrement,
		ast.ExprAssign, ast.ExprAssignPlus, ast.ExprAssignMinus,
		ast.ExprAssignDiv, ast.ExprAssignMod, ast.ExprAssignMult,
		ast.ExprAssignAnd, ast.ExprAssignOr, ast.ExprAssignXor,
		ast.ExprAssignShiftLeft, ast.ExprAssignShiftRight:
		return tc.isLHSValue(e.Child(0))

	case ast.ExprInlineIf:
		if !tc.isLHSValue(e.Child(1)) || !tc.isLHSValue(e.Child(2)) {
			return false
		}
		// Annotation has ensured the branches are compatible; for
		// integers the two declared ranges must additionally be
		// syntactically identical.
		thenSym, elseSym := e.Child(1).GetSymbol(), e.Child(2).GetSymbol()
		if thenSym == nil || elseSym == nil {
			return false
		}
		t, f := thenSym.Type(), elseSym.Type()
		for t.Base() == ast.BaseArray {
			t = t.Sub()
		}
		for f.Base() == ast.BaseArray {
			f = f.Sub()
		}
		if t.Base() == ast.BaseInt {
			tl, tu := t.RangeBounds()
			fl, fu := f.RangeBounds()
			return tl.Equal(fl) && tu.Equal(fu)
		}
		return true

	case ast.ExprComma:
		return tc.isLHSValue(e.Child(1))

	default:
		// Function calls cannot return references.
		return false
	}
}

// isUniqueReference returns true if the expression is a left-hand
// side value whose identity is determined by constants alone: array
// indices must not depend on persistent variables, and an inline if
// never qualifies.
func (tc *TypeChecker) isUniqueReference(e *ast.Expression) bool {
	if e.Empty() {
		return false
	}
	switch e.Kind {
	case ast.ExprIdentifier:
		return !e.GetType().HasPrefix(ast.PrefixConstant)

	case ast.ExprDot:
		return tc.isUniqueReference(e.Child(0))

	case ast.ExprIndex:
		return tc.isUniqueReference(e.Child(0)) &&
			!e.Child(1).DependsOn(tc.persistent)

	case ast.ExprPreIncrement, ast.ExprPreDecrement,
		ast.ExprAssign, ast.ExprAssignPlus, ast.ExprAssignMinus,
		ast.ExprAssignDiv, ast.ExprAssignMod, ast.ExprAssignMult,
		ast.ExprAssignAnd, ast.ExprAssignOr, ast.ExprAssignXor,
		ast.ExprAssignShiftLeft, ast.ExprAssignShiftRight:
		return tc.isUniqueReference(e.Child(0))

	case ast.ExprInlineIf:
		return false

	case ast.ExprComma:
		return tc.isUniqueReference(e.Child(1))

	default:
		return false
	}
}
