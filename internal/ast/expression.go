package ast

import (
	"fmt"
	"strings"

	"github.com/dannybpoulsen/utap/internal/position"
)

// ExprKind identifies the operator or form of an expression node.
type ExprKind int

const (
	ExprIdentifier ExprKind = iota
	ExprConstant
	ExprIndex // array indexing
	ExprDot   // record field projection
	ExprList  // initializer list

	ExprEq
	ExprNeq
	ExprPlus
	ExprMinus
	ExprMult
	ExprDiv
	ExprMod
	ExprBitAnd
	ExprBitOr
	ExprBitXor
	ExprShiftLeft
	ExprShiftRight
	ExprMin
	ExprMax
	ExprAnd
	ExprOr
	ExprLess
	ExprLessEq
	ExprGreaterEq
	ExprGreater

	ExprNot
	ExprNeg
	ExprRate

	ExprAssign
	ExprAssignPlus
	ExprAssignMinus
	ExprAssignDiv
	ExprAssignMod
	ExprAssignMult
	ExprAssignAnd
	ExprAssignOr
	ExprAssignXor
	ExprAssignShiftLeft
	ExprAssignShiftRight

	ExprPreIncrement
	ExprPostIncrement
	ExprPreDecrement
	ExprPostDecrement

	ExprInlineIf
	ExprComma
	ExprFunCall
	ExprForall
	ExprSync

	ExprDeadlock
	ExprLeadsTo
	ExprEF // E<> reachability
	ExprEG // E[] possibly-always
	ExprAF // A<> eventually
	ExprAG // A[] invariantly
)

var exprKindNames = map[ExprKind]string{
	ExprIdentifier:       "identifier",
	ExprConstant:         "constant",
	ExprIndex:            "[]",
	ExprDot:              ".",
	ExprList:             "list",
	ExprEq:               "==",
	ExprNeq:              "!=",
	ExprPlus:             "+",
	ExprMinus:            "-",
	ExprMult:             "*",
	ExprDiv:              "/",
	ExprMod:              "%",
	ExprBitAnd:           "&",
	ExprBitOr:            "|",
	ExprBitXor:           "^",
	ExprShiftLeft:        "<<",
	ExprShiftRight:       ">>",
	ExprMin:              "<?",
	ExprMax:              ">?",
	ExprAnd:              "&&",
	ExprOr:               "||",
	ExprLess:             "<",
	ExprLessEq:           "<=",
	ExprGreaterEq:        ">=",
	ExprGreater:          ">",
	ExprNot:              "!",
	ExprNeg:              "-",
	ExprRate:             "'",
	ExprAssign:           "=",
	ExprAssignPlus:       "+=",
	ExprAssignMinus:      "-=",
	ExprAssignDiv:        "/=",
	ExprAssignMod:        "%=",
	ExprAssignMult:       "*=",
	ExprAssignAnd:        "&=",
	ExprAssignOr:         "|=",
	ExprAssignXor:        "^=",
	ExprAssignShiftLeft:  "<<=",
	ExprAssignShiftRight: ">>=",
	ExprPreIncrement:     "++",
	ExprPostIncrement:    "++",
	ExprPreDecrement:     "--",
	ExprPostDecrement:    "--",
	ExprInlineIf:         "?:",
	ExprComma:            ",",
	ExprFunCall:          "call",
	ExprForall:           "forall",
	ExprSync:             "sync",
	ExprDeadlock:         "deadlock",
	ExprLeadsTo:          "-->",
	ExprEF:               "E<>",
	ExprEG:               "E[]",
	ExprAF:               "A<>",
	ExprAG:               "A[]",
}

func (k ExprKind) String() string {
	if name, ok := exprKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// SyncDirection is the direction of a channel synchronisation.
type SyncDirection int

const (
	SyncSend    SyncDirection = iota // c!
	SyncReceive                      // c?
)

func (d SyncDirection) String() string {
	if d == SyncReceive {
		return "?"
	}
	return "!"
}

// FunctionInfo is implemented by the user data of function symbols.
// It exposes which persistent symbols a function body reads and
// writes, so that expression-level dependency queries see through
// calls.
type FunctionInfo interface {
	FunctionDepends() map[*Symbol]bool
	FunctionChanges() map[*Symbol]bool
}

// Expression is a kind-tagged tree node. Every node carries a
// position and a mutable type annotation slot which starts out
// unknown and is filled in by the type checker. The nil expression is
// the distinguished empty sentinel; all methods are nil-safe.
type Expression struct {
	Kind     ExprKind
	Pos      position.Position
	Type     *Type
	Children []*Expression
	Value    int32         // constant value, or record field index for dot
	Sym      *Symbol       // identifier reference
	Sync     SyncDirection // direction for sync expressions
}

// NewConstant creates an integer constant expression.
func NewConstant(pos position.Position, value int32) *Expression {
	return &Expression{Kind: ExprConstant, Pos: pos, Value: value, Type: IntType}
}

// NewBoolConstant creates a boolean constant expression.
func NewBoolConstant(pos position.Position, value bool) *Expression {
	v := int32(0)
	if value {
		v = 1
	}
	return &Expression{Kind: ExprConstant, Pos: pos, Value: v, Type: BoolType}
}

// NewIdentifier creates an identifier expression referring to the
// given symbol. The node is pre-typed with the symbol's type.
func NewIdentifier(pos position.Position, sym *Symbol) *Expression {
	return &Expression{Kind: ExprIdentifier, Pos: pos, Sym: sym, Type: sym.Type()}
}

// NewUnary creates a unary expression.
func NewUnary(pos position.Position, kind ExprKind, operand *Expression) *Expression {
	return &Expression{Kind: kind, Pos: pos, Type: UnknownType, Children: []*Expression{operand}}
}

// NewBinary creates a binary expression.
func NewBinary(pos position.Position, kind ExprKind, left, right *Expression) *Expression {
	return &Expression{Kind: kind, Pos: pos, Type: UnknownType, Children: []*Expression{left, right}}
}

// NewTernary creates a three-child expression (inline if).
func NewTernary(pos position.Position, kind ExprKind, a, b, c *Expression) *Expression {
	return &Expression{Kind: kind, Pos: pos, Type: UnknownType, Children: []*Expression{a, b, c}}
}

// NewNary creates an expression with arbitrary arity and an explicit
// type, used for initializer lists and call expressions.
func NewNary(pos position.Position, kind ExprKind, children []*Expression, typ *Type) *Expression {
	return &Expression{Kind: kind, Pos: pos, Type: typ, Children: children}
}

// NewDot creates a record field projection. The field index is kept
// on the node; the type is the field's type.
func NewDot(pos position.Position, record *Expression, field int, typ *Type) *Expression {
	return &Expression{Kind: ExprDot, Pos: pos, Type: typ, Children: []*Expression{record}, Value: int32(field)}
}

// NewSync creates a synchronisation expression over a channel
// expression.
func NewSync(pos position.Position, channel *Expression, dir SyncDirection) *Expression {
	return &Expression{Kind: ExprSync, Pos: pos, Type: UnknownType, Children: []*Expression{channel}, Sync: dir}
}

// Empty returns true for the empty sentinel.
func (e *Expression) Empty() bool {
	return e == nil
}

// Size returns the number of children.
func (e *Expression) Size() int {
	if e == nil {
		return 0
	}
	return len(e.Children)
}

// Child returns the i-th child.
func (e *Expression) Child(i int) *Expression {
	return e.Children[i]
}

// Position returns the node position; the empty expression has no
// position.
func (e *Expression) Position() position.Position {
	if e == nil {
		return position.Position{}
	}
	return e.Pos
}

// GetType returns the annotated type; unknown for the empty
// expression.
func (e *Expression) GetType() *Type {
	if e == nil {
		return UnknownType
	}
	return e.Type
}

// SetType writes the annotation slot.
func (e *Expression) SetType(t *Type) {
	e.Type = t
}

// GetSymbol returns the variable symbol an expression refers to, if
// it refers to one: the identifier itself, the root of a projection,
// the target of an assignment, the last element of a comma and the
// then-branch of an inline if.
func (e *Expression) GetSymbol() *Symbol {
	if e == nil {
		return nil
	}
	switch e.Kind {
	case ExprIdentifier:
		return e.Sym
	case ExprDot, ExprIndex,
		ExprAssign, ExprAssignPlus, ExprAssignMinus, ExprAssignDiv,
		ExprAssignMod, ExprAssignMult, ExprAssignAnd, ExprAssignOr,
		ExprAssignXor, ExprAssignShiftLeft, ExprAssignShiftRight,
		ExprPreIncrement, ExprPreDecrement, ExprPostIncrement, ExprPostDecrement:
		return e.Children[0].GetSymbol()
	case ExprInlineIf:
		return e.Children[1].GetSymbol()
	case ExprComma:
		return e.Children[1].GetSymbol()
	case ExprSync:
		return e.Children[0].GetSymbol()
	default:
		return nil
	}
}

// Equal compares two expressions syntactically. Empty expressions are
// equal only to empty expressions.
func (e *Expression) Equal(other *Expression) bool {
	if e == nil || other == nil {
		return e == nil && other == nil
	}
	if e.Kind != other.Kind || e.Value != other.Value ||
		e.Sym != other.Sym || e.Sync != other.Sync ||
		len(e.Children) != len(other.Children) {
		return false
	}
	for i, c := range e.Children {
		if !c.Equal(other.Children[i]) {
			return false
		}
	}
	return true
}

// Visit walks the expression tree in pre-order.
func (e *Expression) Visit(f func(*Expression)) {
	if e == nil {
		return
	}
	f(e)
	for _, c := range e.Children {
		c.Visit(f)
	}
}

// CollectDependencies adds every symbol the expression reads to the
// set, seeing through function calls via the callee's dependency set.
func (e *Expression) CollectDependencies(into map[*Symbol]bool) {
	e.Visit(func(n *Expression) {
		if n.Kind != ExprIdentifier || n.Sym == nil {
			return
		}
		into[n.Sym] = true
		if info, ok := n.Sym.data.(FunctionInfo); ok {
			for sym := range info.FunctionDepends() {
				into[sym] = true
			}
		}
	})
}

// DependsOn returns true if the expression reads any symbol in the
// given set, transitively through projections and function calls.
func (e *Expression) DependsOn(set map[*Symbol]bool) bool {
	if e == nil || len(set) == 0 {
		return false
	}
	deps := make(map[*Symbol]bool)
	e.CollectDependencies(deps)
	for sym := range deps {
		if set[sym] {
			return true
		}
	}
	return false
}

// CollectChanges adds every symbol the expression may write to the
// set: assignment and increment/decrement targets plus the change
// sets of called functions.
func (e *Expression) CollectChanges(into map[*Symbol]bool) {
	e.Visit(func(n *Expression) {
		switch n.Kind {
		case ExprAssign, ExprAssignPlus, ExprAssignMinus, ExprAssignDiv,
			ExprAssignMod, ExprAssignMult, ExprAssignAnd, ExprAssignOr,
			ExprAssignXor, ExprAssignShiftLeft, ExprAssignShiftRight,
			ExprPreIncrement, ExprPreDecrement, ExprPostIncrement, ExprPostDecrement:
			if sym := n.Children[0].GetSymbol(); sym != nil {
				into[sym] = true
			}
		case ExprIdentifier:
			if info, ok := n.Sym.Data().(FunctionInfo); ok {
				for sym := range info.FunctionChanges() {
					into[sym] = true
				}
			}
		}
	})
}

// ChangesVariable returns true if the expression may write any symbol
// in the given set.
func (e *Expression) ChangesVariable(set map[*Symbol]bool) bool {
	if e == nil || len(set) == 0 {
		return false
	}
	changes := make(map[*Symbol]bool)
	e.CollectChanges(changes)
	for sym := range changes {
		if set[sym] {
			return true
		}
	}
	return false
}

// String renders the expression roughly in source syntax, for
// diagnostics and for type rendering of range bounds.
func (e *Expression) String() string {
	if e == nil {
		return ""
	}
	switch e.Kind {
	case ExprConstant:
		if e.Type.Base() == BaseBool {
			if e.Value != 0 {
				return "true"
			}
			return "false"
		}
		return fmt.Sprintf("%d", e.Value)
	case ExprIdentifier:
		return e.Sym.Name()
	case ExprIndex:
		return e.Children[0].String() + "[" + e.Children[1].String() + "]"
	case ExprDot:
		name := ""
		if fields := e.Children[0].GetType().RecordFields(); fields != nil && int(e.Value) < fields.Size() {
			name = fields.Symbol(int(e.Value)).Name()
		}
		return e.Children[0].String() + "." + name
	case ExprList:
		parts := make([]string, len(e.Children))
		for i, c := range e.Children {
			parts[i] = c.String()
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case ExprNot:
		return "!" + e.Children[0].String()
	case ExprNeg:
		return "-" + e.Children[0].String()
	case ExprRate:
		return e.Children[0].String() + "'"
	case ExprPreIncrement, ExprPreDecrement:
		return e.Kind.String() + e.Children[0].String()
	case ExprPostIncrement, ExprPostDecrement:
		return e.Children[0].String() + e.Kind.String()
	case ExprInlineIf:
		return e.Children[0].String() + " ? " + e.Children[1].String() + " : " + e.Children[2].String()
	case ExprFunCall:
		args := make([]string, 0, len(e.Children)-1)
		for _, c := range e.Children[1:] {
			args = append(args, c.String())
		}
		return e.Children[0].String() + "(" + strings.Join(args, ", ") + ")"
	case ExprForall:
		return "forall (" + e.Children[0].String() + ") " + e.Children[1].String()
	case ExprSync:
		return e.Children[0].String() + e.Sync.String()
	case ExprDeadlock:
		return "deadlock"
	case ExprEF, ExprEG, ExprAF, ExprAG:
		return e.Kind.String() + " " + e.Children[0].String()
	default:
		if len(e.Children) == 2 {
			return e.Children[0].String() + " " + e.Kind.String() + " " + e.Children[1].String()
		}
		return e.Kind.String()
	}
}
