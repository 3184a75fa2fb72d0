package ast

import (
	"testing"

	"github.com/dannybpoulsen/utap/internal/position"
)

var noPos position.Position

func TestEmptyExpression(t *testing.T) {
	var e *Expression
	if !e.Empty() {
		t.Fatal("nil must be the empty expression")
	}
	if e.GetType().Base() != BaseUnknown {
		t.Error("the empty expression has unknown type")
	}
	if !e.Equal(nil) {
		t.Error("empty equals empty")
	}
	if e.Equal(NewConstant(noPos, 0)) {
		t.Error("empty must not equal a constant")
	}
}

func TestSyntacticEquality(t *testing.T) {
	frame := NewFrame()
	sym := frame.AddSymbol("n", IntType, nil)

	a := NewBinary(noPos, ExprPlus, NewIdentifier(noPos, sym), NewConstant(noPos, 1))
	b := NewBinary(noPos, ExprPlus, NewIdentifier(noPos, sym), NewConstant(noPos, 1))
	if !a.Equal(b) {
		t.Error("structurally identical expressions over the same symbol must be equal")
	}

	other := frame.AddSymbol("m", IntType, nil)
	c := NewBinary(noPos, ExprPlus, NewIdentifier(noPos, other), NewConstant(noPos, 1))
	if a.Equal(c) {
		t.Error("expressions over different symbols must differ")
	}
	d := NewBinary(noPos, ExprPlus, NewIdentifier(noPos, sym), NewConstant(noPos, 2))
	if a.Equal(d) {
		t.Error("expressions with different constants must differ")
	}
}

func TestGetSymbol(t *testing.T) {
	frame := NewFrame()
	fields := NewFrame()
	fields.AddSymbol("f", IntType, nil)
	rec := frame.AddSymbol("r", NewRecord(fields), nil)

	ident := NewIdentifier(noPos, rec)
	dot := NewDot(noPos, ident, 0, IntType)
	if dot.GetSymbol() != rec {
		t.Error("projection must report the root symbol")
	}

	assign := NewBinary(noPos, ExprAssign, dot, NewConstant(noPos, 1))
	if assign.GetSymbol() != rec {
		t.Error("assignment must report the target symbol")
	}
}

func TestDependsOn(t *testing.T) {
	frame := NewFrame()
	v := frame.AddSymbol("v", IntType, nil)
	w := frame.AddSymbol("w", IntType, nil)

	e := NewBinary(noPos, ExprPlus, NewIdentifier(noPos, v), NewConstant(noPos, 1))
	set := map[*Symbol]bool{v: true}
	if !e.DependsOn(set) {
		t.Error("expression reads v")
	}
	if e.DependsOn(map[*Symbol]bool{w: true}) {
		t.Error("expression does not read w")
	}
}

type fakeFunction struct {
	depends map[*Symbol]bool
	changes map[*Symbol]bool
}

func (f *fakeFunction) FunctionDepends() map[*Symbol]bool { return f.depends }
func (f *fakeFunction) FunctionChanges() map[*Symbol]bool { return f.changes }

func TestDependsThroughCalls(t *testing.T) {
	frame := NewFrame()
	state := frame.AddSymbol("g", IntType, nil)
	fn := frame.AddSymbol("f", NewFunction(NewFrame(), IntType), &fakeFunction{
		depends: map[*Symbol]bool{state: true},
		changes: map[*Symbol]bool{state: true},
	})

	call := NewNary(noPos, ExprFunCall, []*Expression{NewIdentifier(noPos, fn)}, IntType)
	set := map[*Symbol]bool{state: true}
	if !call.DependsOn(set) {
		t.Error("a call must inherit the callee's dependencies")
	}
	if !call.ChangesVariable(set) {
		t.Error("a call must inherit the callee's change set")
	}
}

func TestChangesVariable(t *testing.T) {
	frame := NewFrame()
	v := frame.AddSymbol("v", IntType, nil)
	w := frame.AddSymbol("w", IntType, nil)

	assign := NewBinary(noPos, ExprAssign, NewIdentifier(noPos, v), NewIdentifier(noPos, w))
	if !assign.ChangesVariable(map[*Symbol]bool{v: true}) {
		t.Error("assignment changes its target")
	}
	if assign.ChangesVariable(map[*Symbol]bool{w: true}) {
		t.Error("assignment does not change its source")
	}

	inc := NewUnary(noPos, ExprPostIncrement, NewIdentifier(noPos, v))
	if !inc.ChangesVariable(map[*Symbol]bool{v: true}) {
		t.Error("increment changes its operand")
	}

	read := NewBinary(noPos, ExprPlus, NewIdentifier(noPos, v), NewConstant(noPos, 1))
	if read.ChangesVariable(map[*Symbol]bool{v: true}) {
		t.Error("a pure read changes nothing")
	}
}

func TestExpressionString(t *testing.T) {
	frame := NewFrame()
	c := frame.AddSymbol("c", ClockType, nil)
	e := NewBinary(noPos, ExprLessEq, NewIdentifier(noPos, c), NewConstant(noPos, 10))
	if e.String() != "c <= 10" {
		t.Errorf("unexpected rendering %q", e.String())
	}
	if NewBoolConstant(noPos, true).String() != "true" {
		t.Error("boolean constants render as keywords")
	}
}
