// Package check implements the semantic analyzer for networks of
// timed automata: it verifies that every declaration and expression
// is well-typed, annotates each expression node with its inferred
// type, validates templates, instantiations, properties and
// initializers, and decomposes location invariants into a stopwatch
// invariant and explicit cost-rate bindings.
package check

import (
	"errors"

	"github.com/dannybpoulsen/utap/internal/ast"
	"github.com/dannybpoulsen/utap/internal/diagnostic"
	"github.com/dannybpoulsen/utap/internal/interp"
	"github.com/dannybpoulsen/utap/internal/system"
)

// TypeChecker walks a system and annotates every expression with its
// type, reporting errors and warnings through the diagnostic handler.
type TypeChecker struct {
	system     *system.System
	handler    *diagnostic.Handler
	persistent map[*ast.Symbol]bool
}

// NewTypeChecker creates a checker for the given system. The
// persistent-variable set is computed up front, and the systemwide
// before/after update expressions are annotated immediately.
func NewTypeChecker(sys *system.System, handler *diagnostic.Handler) *TypeChecker {
	tc := &TypeChecker{
		system:     sys,
		handler:    handler,
		persistent: collectPersistentVariables(sys),
	}
	for _, e := range sys.BeforeUpdate {
		tc.Annotate(e)
	}
	for _, e := range sys.AfterUpdate {
		tc.Annotate(e)
	}
	return tc
}

// AnalyzeSystem type checks a complete system. It returns true if no
// errors were reported.
func AnalyzeSystem(sys *system.System, handler *diagnostic.Handler) bool {
	before := handler.ErrorCount()
	sys.Accept(NewTypeChecker(sys, handler))
	return handler.ErrorCount() == before
}

// AnalyzeExpression type checks a single expression against the
// declarations of a system. It returns true if no errors were
// reported.
func AnalyzeExpression(expr *ast.Expression, sys *system.System, handler *diagnostic.Handler) bool {
	before := handler.ErrorCount()
	NewTypeChecker(sys, handler).Annotate(expr)
	return handler.ErrorCount() == before
}

func (tc *TypeChecker) handleError(e *ast.Expression, format string, args ...any) {
	tc.handler.Error(e.Position(), format, args...)
}

func (tc *TypeChecker) handleWarning(e *ast.Expression, format string, args ...any) {
	tc.handler.Warning(e.Position(), format, args...)
}

func (tc *TypeChecker) interpreter() *interp.Interpreter {
	return interp.New(interp.Valuation(tc.system.Constants))
}

// annotateAndExpectConstantInteger annotates the expression and
// checks that it is an integer computable at check time.
func (tc *TypeChecker) annotateAndExpectConstantInteger(e *ast.Expression) bool {
	if !tc.Annotate(e) {
		return false
	}
	if !e.GetType().IsInteger() {
		tc.handleError(e, "Integer expression expected")
	} else if e.DependsOn(tc.persistent) {
		tc.handleError(e, "Constant expression expected")
	} else {
		return true
	}
	return false
}

// checkType verifies that a declared type is well formed: range
// bounds are constant integers forming a valid interval, array sizes
// are integer or scalar ranges, and record fields are recursively
// well formed. Non-computable bounds are tolerated except inside
// records.
func (tc *TypeChecker) checkType(t *ast.Type, inRecord bool) {
	switch t.Base() {
	case ast.BaseInt, ast.BaseScalar:
		lower, upper := t.RangeBounds()
		if lower.Empty() {
			return
		}
		if !tc.annotateAndExpectConstantInteger(lower) ||
			!tc.annotateAndExpectConstantInteger(upper) {
			return
		}
		// Bound evaluation may fail when bounds depend on template
		// parameters; that is tolerated outside records, and the
		// remaining checks fall to the instances.
		in := tc.interpreter()
		lo, err := in.Evaluate(lower)
		if err != nil {
			if inRecord {
				tc.handleError(lower, "Parameterised types not allowed in records")
			}
			return
		}
		hi, err := in.Evaluate(upper)
		if err != nil {
			if inRecord {
				tc.handleError(upper, "Parameterised types not allowed in records")
			}
			return
		}
		if lo > hi {
			tc.handleError(upper, "Invalid integer range")
		}

	case ast.BaseArray:
		size := t.ArraySize()
		tc.checkType(size, false)
		tc.checkType(t.Sub(), inRecord)
		_, upper := size.RangeBounds()
		if !size.IsScalar() {
			// The position is carried by the upper bound of the size
			// range, as encoded by the builder.
			tc.handleError(upper, "Invalid array size")
			return
		}
		r, err := tc.interpreter().EvaluateTypeRange(size)
		if err != nil {
			if inRecord {
				tc.handleError(upper, "Parameterised types not allowed in records")
			}
			return
		}
		if r.IsEmpty() {
			tc.handleError(upper, "Invalid array size")
		}

	case ast.BaseRecord:
		for _, field := range t.RecordFields().Symbols() {
			tc.checkType(field.Type(), true)
		}

	case ast.BaseNamed:
		tc.checkType(t.Sub(), inRecord)
	}
}

// VisitVariable checks a variable declaration and its initializer.
// Constants enter the system valuation in document order, after the
// initializer has been normalized.
func (tc *TypeChecker) VisitVariable(v *system.Variable) {
	tc.checkType(v.Sym.Type(), false)
	tc.checkVariableInitialiser(v)
	if v.Sym.Type().HasPrefix(ast.PrefixConstant) {
		tc.system.Constants[v.Sym] = v.Init
	}
}

// VisitTemplateBefore checks the formal parameter types of a
// template before its body is visited.
func (tc *TypeChecker) VisitTemplateBefore(tmpl *system.Template) bool {
	for _, param := range tmpl.Parameters.Symbols() {
		tc.checkType(param.Type(), false)
	}
	return true
}

// VisitTemplateAfter is part of the system.Visitor interface.
func (tc *TypeChecker) VisitTemplateAfter(*system.Template) {}

// VisitState checks a location invariant and decomposes it into the
// residual stopwatch invariant and the cost-rate bindings.
func (tc *TypeChecker) VisitState(state *system.State) {
	if state.Invariant.Empty() {
		return
	}
	ok := tc.Annotate(state.Invariant)
	if ok {
		if !state.Invariant.GetType().IsInvariantWR() {
			tc.handleError(state.Invariant, "Invalid invariant expression")
		}
		if !tc.isSideEffectFree(state.Invariant) {
			tc.handleError(state.Invariant, "Invariant must be side effect free")
		}
	}
	if ok && state.Invariant.GetType().IsInvariantWR() {
		var d rateDecomposer
		d.decompose(state.Invariant)
		state.Invariant = d.invariant
		if len(d.rates) > 0 {
			state.Rates = d.rates
			state.CostRate = d.rates[0].Rate
		}
	}
}

// VisitEdge checks the select bindings, guard, synchronisation and
// assignment of an edge.
func (tc *TypeChecker) VisitEdge(edge *system.Edge) {
	for _, sym := range edge.Select.Symbols() {
		tc.checkType(sym.Type(), false)
	}

	if !edge.Guard.Empty() && tc.Annotate(edge.Guard) {
		if !edge.Guard.GetType().IsGuard() {
			tc.handleError(edge.Guard, "Invalid guard")
		} else if !tc.isSideEffectFree(edge.Guard) {
			tc.handleError(edge.Guard, "Guard must be side effect free")
		}
	}

	if !edge.Sync.Empty() && tc.Annotate(edge.Sync) {
		head := edge.Sync.Child(0)
		channel := head.GetType()
		if channel.Base() != ast.BaseChannel {
			tc.handleError(head, "Channel expected")
		} else if !tc.isSideEffectFree(edge.Sync) {
			tc.handleError(edge.Sync, "Synchronisation must be side effect free")
		} else {
			hasClockGuard := !edge.Guard.Empty() && !edge.Guard.GetType().IsValue()
			isUrgent := channel.HasPrefix(ast.PrefixUrgent)
			receivesBroadcast := channel.HasPrefix(ast.PrefixBroadcast) &&
				edge.Sync.Sync == ast.SyncReceive

			if isUrgent && hasClockGuard {
				tc.handleError(edge.Sync, "Clock guards are not allowed on urgent edges")
			} else if receivesBroadcast && hasClockGuard {
				tc.handleError(edge.Sync, "Clock guards are not allowed on broadcast receivers")
			}
		}
	}

	if tc.Annotate(edge.Assign) && !edge.Assign.Empty() {
		t := edge.Assign.GetType()
		if !t.IsValue() && !t.IsScalar() && !t.IsClock() && !t.IsRecord() &&
			t.Base() != ast.BaseCost && !t.IsVoid() {
			tc.handleError(edge.Assign, "Invalid assignment expression")
		}
		literalOne := edge.Assign.Kind == ast.ExprConstant && edge.Assign.Value == 1
		if !literalOne && tc.isSideEffectFree(edge.Assign) {
			tc.handleWarning(edge.Assign, "Expression does not have any effect")
		}
	}
}

// VisitProgress checks a progress measure.
func (tc *TypeChecker) VisitProgress(progress *system.Progress) {
	tc.Annotate(progress.Guard)
	tc.Annotate(progress.Measure)

	if !progress.Guard.Empty() && !progress.Guard.GetType().IsValue() {
		tc.handleError(progress.Guard, "Progress measure must evaluate to a boolean")
	}
	if !progress.Measure.GetType().IsValue() {
		tc.handleError(progress.Measure, "Progress measure must evaluate to a value")
	}
}

// VisitInstance checks a template instantiation: each argument must
// be side effect free and fall into one of the three accepted shapes
// (const reference with computable argument, reference with unique
// lhs argument, value parameter with computable argument) before the
// per-parameter compatibility rules apply.
func (tc *TypeChecker) VisitInstance(inst *system.Instance) {
	in := tc.interpreter()
	mapping := make(interp.Valuation, len(inst.Mapping))
	for _, pa := range inst.Mapping {
		mapping[pa.Formal] = pa.Actual
	}
	in.AddValuation(mapping)

	for _, pa := range inst.Mapping {
		parameter := pa.Formal.Type()
		argument := pa.Actual

		if !tc.Annotate(argument) {
			continue
		}
		if !tc.isSideEffectFree(argument) {
			tc.handleError(argument, "Argument must be side effect free")
			continue
		}

		ref := parameter.HasPrefix(ast.PrefixReference)
		constant := parameter.HasPrefix(ast.PrefixConstant)
		computable := !argument.DependsOn(tc.persistent)

		acceptable := ref && constant && computable
		if !acceptable {
			if ref {
				acceptable = tc.isUniqueReference(argument)
			} else {
				acceptable = computable
			}
		}
		if !acceptable {
			tc.handleError(argument, "Incompatible argument")
			continue
		}

		tc.checkParameterCompatible(in, parameter, argument)
	}
}

// VisitProperty checks a temporal or reachability property.
func (tc *TypeChecker) VisitProperty(expr *ast.Expression) {
	if !tc.Annotate(expr) {
		return
	}
	if !tc.isSideEffectFree(expr) {
		tc.handleError(expr, "Property must be side effect free")
	}
	if expr.Kind == ast.ExprLeadsTo {
		if !expr.Child(0).GetType().IsConstraint() || !expr.Child(1).GetType().IsConstraint() {
			tc.handleError(expr, "Property must be a constraint")
		}
	} else {
		first := expr
		if expr.Size() > 0 {
			first = expr.Child(0)
		}
		if !first.GetType().IsConstraint() {
			tc.handleError(expr, "Property must be a constraint")
		}
	}
}

// VisitFunction type checks a function body and records the sets of
// symbols the body changes and depends on, so that later dependency
// queries see through calls.
func (tc *TypeChecker) VisitFunction(fn *system.Function) {
	if fn.Body == nil {
		return
	}
	fn.Body.Accept(tc)

	fn.Changes = make(map[*ast.Symbol]bool)
	fn.Depends = make(map[*ast.Symbol]bool)
	system.VisitExpressions(fn.Body, func(e *ast.Expression) {
		e.CollectChanges(fn.Changes)
		e.CollectDependencies(fn.Depends)
	})
}

// Statement checks. Parameters count as local variables of the
// outermost block.

func (tc *TypeChecker) checkAssignmentExpressionInFunction(e *ast.Expression) {
	t := e.GetType()
	if !t.IsValue() && !t.IsClock() && !t.IsRecord() && !t.IsVoid() && !t.IsScalar() {
		tc.handleError(e, "Invalid expression in function")
	}
}

func (tc *TypeChecker) checkConditionalExpressionInFunction(e *ast.Expression) {
	if !e.GetType().IsValue() {
		tc.handleError(e, "Boolean expected")
	}
}

func (tc *TypeChecker) VisitEmptyStatement(*system.EmptyStatement) {}

func (tc *TypeChecker) VisitExprStatement(s *system.ExprStatement) {
	if tc.Annotate(s.Expr) {
		tc.checkAssignmentExpressionInFunction(s.Expr)
	}
}

func (tc *TypeChecker) VisitForStatement(s *system.ForStatement) {
	if tc.Annotate(s.Init) {
		tc.checkAssignmentExpressionInFunction(s.Init)
	}
	if tc.Annotate(s.Cond) {
		tc.checkConditionalExpressionInFunction(s.Cond)
	}
	if tc.Annotate(s.Step) {
		tc.checkAssignmentExpressionInFunction(s.Step)
	}
	s.Body.Accept(tc)
}

func (tc *TypeChecker) VisitWhileStatement(s *system.WhileStatement) {
	if tc.Annotate(s.Cond) {
		tc.checkConditionalExpressionInFunction(s.Cond)
	}
	s.Body.Accept(tc)
}

func (tc *TypeChecker) VisitDoWhileStatement(s *system.DoWhileStatement) {
	if tc.Annotate(s.Cond) {
		tc.checkConditionalExpressionInFunction(s.Cond)
	}
	s.Body.Accept(tc)
}

func (tc *TypeChecker) VisitIfStatement(s *system.IfStatement) {
	if tc.Annotate(s.Cond) {
		tc.checkConditionalExpressionInFunction(s.Cond)
	}
	s.Then.Accept(tc)
	if s.Else != nil {
		s.Else.Accept(tc)
	}
}

func (tc *TypeChecker) VisitBlockStatement(s *system.BlockStatement) {
	for _, sym := range s.Frame.Symbols() {
		tc.checkType(sym.Type(), false)
		if v, ok := sym.Data().(*system.Variable); ok && !v.Init.Empty() {
			if tc.Annotate(v.Init) {
				v.Init = tc.checkLocalInitialiser(sym.Type(), v.Init)
			}
		}
	}
	for _, inner := range s.Stmts {
		inner.Accept(tc)
	}
}

func (tc *TypeChecker) VisitReturnStatement(s *system.ReturnStatement) {
	tc.Annotate(s.Value)
}

func (tc *TypeChecker) VisitBreakStatement(*system.BreakStatement) {}

func (tc *TypeChecker) VisitContinueStatement(*system.ContinueStatement) {}

func (tc *TypeChecker) VisitIterationStatement(s *system.IterationStatement) {
	tc.checkType(s.Sym.Type(), false)
	s.Body.Accept(tc)
}

// checkLocalInitialiser normalizes a local-variable initializer,
// converting initializer failures into one positioned diagnostic.
func (tc *TypeChecker) checkLocalInitialiser(t *ast.Type, init *ast.Expression) *ast.Expression {
	normalized, err := tc.checkInitialiser(t, init)
	var ie *initialiserError
	if errors.As(err, &ie) {
		tc.handleError(ie.expr, "%s", ie.msg)
		return init
	}
	return normalized
}

// isSideEffectFree returns true if the expression does not modify any
// persistent variable. Modifications of function-local variables do
// not count.
func (tc *TypeChecker) isSideEffectFree(e *ast.Expression) bool {
	return !e.ChangesVariable(tc.persistent)
}
