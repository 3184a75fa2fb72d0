package system

import (
	"github.com/dannybpoulsen/utap/internal/ast"
)

// Statement is a node of a function body.
type Statement interface {
	Accept(v StatementVisitor)
}

// StatementVisitor dispatches over the statement kinds.
type StatementVisitor interface {
	VisitEmptyStatement(*EmptyStatement)
	VisitExprStatement(*ExprStatement)
	VisitForStatement(*ForStatement)
	VisitWhileStatement(*WhileStatement)
	VisitDoWhileStatement(*DoWhileStatement)
	VisitIfStatement(*IfStatement)
	VisitBlockStatement(*BlockStatement)
	VisitReturnStatement(*ReturnStatement)
	VisitBreakStatement(*BreakStatement)
	VisitContinueStatement(*ContinueStatement)
	VisitIterationStatement(*IterationStatement)
}

// EmptyStatement is a bare semicolon.
type EmptyStatement struct{}

// ExprStatement evaluates an expression for its side effect.
type ExprStatement struct {
	Expr *ast.Expression
}

// ForStatement is a C-style for loop.
type ForStatement struct {
	Init *ast.Expression
	Cond *ast.Expression
	Step *ast.Expression
	Body Statement
}

// WhileStatement loops while the condition holds.
type WhileStatement struct {
	Cond *ast.Expression
	Body Statement
}

// DoWhileStatement runs the body at least once.
type DoWhileStatement struct {
	Body Statement
	Cond *ast.Expression
}

// IfStatement branches on a condition; Else may be nil.
type IfStatement struct {
	Cond *ast.Expression
	Then Statement
	Else Statement
}

// BlockStatement is a brace-enclosed statement list with its own
// frame of local variables (function parameters live in the frame of
// the outermost block).
type BlockStatement struct {
	Frame *ast.Frame
	Stmts []Statement
}

// ReturnStatement returns from a function; Value may be empty.
type ReturnStatement struct {
	Value *ast.Expression
}

// BreakStatement exits the innermost loop.
type BreakStatement struct{}

// ContinueStatement restarts the innermost loop.
type ContinueStatement struct{}

// IterationStatement iterates a bound variable over its type, as in
// `for (i : int[0,3])`.
type IterationStatement struct {
	Sym  *ast.Symbol
	Body Statement
}

func (s *EmptyStatement) Accept(v StatementVisitor)     { v.VisitEmptyStatement(s) }
func (s *ExprStatement) Accept(v StatementVisitor)      { v.VisitExprStatement(s) }
func (s *ForStatement) Accept(v StatementVisitor)       { v.VisitForStatement(s) }
func (s *WhileStatement) Accept(v StatementVisitor)     { v.VisitWhileStatement(s) }
func (s *DoWhileStatement) Accept(v StatementVisitor)   { v.VisitDoWhileStatement(s) }
func (s *IfStatement) Accept(v StatementVisitor)        { v.VisitIfStatement(s) }
func (s *BlockStatement) Accept(v StatementVisitor)     { v.VisitBlockStatement(s) }
func (s *ReturnStatement) Accept(v StatementVisitor)    { v.VisitReturnStatement(s) }
func (s *BreakStatement) Accept(v StatementVisitor)     { v.VisitBreakStatement(s) }
func (s *ContinueStatement) Accept(v StatementVisitor)  { v.VisitContinueStatement(s) }
func (s *IterationStatement) Accept(v StatementVisitor) { v.VisitIterationStatement(s) }

// VisitExpressions calls f on every expression reachable from the
// statement, including those of nested statements.
func VisitExpressions(s Statement, f func(*ast.Expression)) {
	apply := func(e *ast.Expression) {
		if e != nil {
			f(e)
		}
	}
	switch st := s.(type) {
	case *ExprStatement:
		apply(st.Expr)
	case *ForStatement:
		apply(st.Init)
		apply(st.Cond)
		apply(st.Step)
		VisitExpressions(st.Body, f)
	case *WhileStatement:
		apply(st.Cond)
		VisitExpressions(st.Body, f)
	case *DoWhileStatement:
		apply(st.Cond)
		VisitExpressions(st.Body, f)
	case *IfStatement:
		apply(st.Cond)
		VisitExpressions(st.Then, f)
		if st.Else != nil {
			VisitExpressions(st.Else, f)
		}
	case *BlockStatement:
		for _, sym := range st.Frame.Symbols() {
			if v, ok := sym.Data().(*Variable); ok {
				apply(v.Init)
			}
		}
		for _, inner := range st.Stmts {
			VisitExpressions(inner, f)
		}
	case *ReturnStatement:
		apply(st.Value)
	case *IterationStatement:
		VisitExpressions(st.Body, f)
	}
}

// Function is a declared function: a symbol of function type whose
// body is a block. Changes and Depends are populated by the checker
// with the persistent symbols the body writes and reads.
type Function struct {
	Sym     *ast.Symbol
	Body    *BlockStatement
	Changes map[*ast.Symbol]bool
	Depends map[*ast.Symbol]bool
}

// FunctionChanges implements ast.FunctionInfo.
func (f *Function) FunctionChanges() map[*ast.Symbol]bool {
	return f.Changes
}

// FunctionDepends implements ast.FunctionInfo.
func (f *Function) FunctionDepends() map[*ast.Symbol]bool {
	return f.Depends
}
