package ast

import (
	"testing"
)

func TestFrameResolution(t *testing.T) {
	global := NewFrame()
	n := global.AddSymbol("N", IntType, nil)

	local := NewSubFrame(global)
	x := local.AddSymbol("x", ClockType, nil)

	if sym, ok := local.Resolve("x"); !ok || sym != x {
		t.Error("local symbol not resolved in its own frame")
	}
	if sym, ok := local.Resolve("N"); !ok || sym != n {
		t.Error("resolution must walk the parent chain")
	}
	if _, ok := global.Resolve("x"); ok {
		t.Error("parent frame must not see child symbols")
	}
	if _, ok := local.Resolve("missing"); ok {
		t.Error("unknown names must not resolve")
	}
}

func TestFrameShadowing(t *testing.T) {
	global := NewFrame()
	outer := global.AddSymbol("v", IntType, nil)
	local := NewSubFrame(global)
	inner := local.AddSymbol("v", BoolType, nil)

	if sym, _ := local.Resolve("v"); sym != inner {
		t.Error("inner declaration must shadow the outer one")
	}
	if sym, _ := global.Resolve("v"); sym != outer {
		t.Error("outer frame must keep its own binding")
	}
}

func TestFrameOrderAndIndex(t *testing.T) {
	frame := NewFrame()
	a := frame.AddSymbol("a", IntType, nil)
	frame.AddSymbol("", IntType, nil) // positional entry
	c := frame.AddSymbol("c", BoolType, nil)

	if frame.Size() != 3 {
		t.Fatalf("expected 3 symbols, got %d", frame.Size())
	}
	if frame.Symbol(0) != a || frame.Symbol(2) != c {
		t.Error("symbols must keep declaration order")
	}
	if frame.IndexOf("c") != 2 {
		t.Errorf("expected index 2 for c, got %d", frame.IndexOf("c"))
	}
	if frame.IndexOf("") != -1 {
		t.Error("empty names must not be indexed")
	}
	if frame.IndexOf("missing") != -1 {
		t.Error("unknown names must report -1")
	}
}

func TestSymbolAdoption(t *testing.T) {
	first := NewFrame()
	sym := first.AddSymbol("s", IntType, nil)
	second := NewFrame()
	second.Add(sym)

	if sym.Frame() != first {
		t.Error("a symbol must keep pointing at the first frame that adopted it")
	}
	if got, ok := second.Resolve("s"); !ok || got != sym {
		t.Error("shared symbol must resolve in the second frame too")
	}
}

func TestSymbolRetyping(t *testing.T) {
	frame := NewFrame()
	sym := frame.AddSymbol("s", IntType, nil)
	sym.SetType(BoolType)
	if sym.Type() != BoolType {
		t.Error("SetType must re-point the symbol's type")
	}
}
