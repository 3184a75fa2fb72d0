package system

import (
	"testing"

	"github.com/dannybpoulsen/utap/internal/ast"
	"github.com/dannybpoulsen/utap/internal/position"
)

var noPos position.Position

type recordingVisitor struct {
	BaseVisitor
	events []string
}

func (rv *recordingVisitor) VisitVariable(v *Variable) {
	rv.events = append(rv.events, "var:"+v.Sym.Name())
}

func (rv *recordingVisitor) VisitTemplateBefore(t *Template) bool {
	rv.events = append(rv.events, "before:"+t.Sym.Name())
	return true
}

func (rv *recordingVisitor) VisitTemplateAfter(t *Template) {
	rv.events = append(rv.events, "after:"+t.Sym.Name())
}

func (rv *recordingVisitor) VisitState(s *State) {
	rv.events = append(rv.events, "state:"+s.Sym.Name())
}

func (rv *recordingVisitor) VisitInstance(i *Instance) {
	rv.events = append(rv.events, "inst:"+i.Sym.Name())
}

func TestAcceptOrder(t *testing.T) {
	sys := New()
	sys.Global.AddVariable("g", ast.IntType, nil)

	tmpl := sys.AddTemplate("P", ast.NewFrame())
	tmpl.AddVariable("local", ast.IntType, nil)
	s0 := tmpl.AddState(tmpl.Frame.AddSymbol("s0", ast.LocationType, nil), nil)
	tmpl.AddEdge(s0, s0)
	sys.AddInstance("P1", tmpl, nil)

	rv := &recordingVisitor{}
	sys.Accept(rv)

	want := []string{"var:g", "before:P", "var:local", "state:s0", "after:P", "inst:P1"}
	if len(rv.events) != len(want) {
		t.Fatalf("got %v, want %v", rv.events, want)
	}
	for i := range want {
		if rv.events[i] != want[i] {
			t.Fatalf("event %d is %s, want %s", i, rv.events[i], want[i])
		}
	}
}

func TestTemplateScopes(t *testing.T) {
	sys := New()
	n := sys.Global.Frame.AddSymbol("N", ast.IntType, nil)

	params := ast.NewFrame()
	params.AddSymbol("id", ast.IntType, nil)
	tmpl := sys.AddTemplate("P", params)

	if sym, ok := tmpl.Frame.Resolve("id"); !ok || sym != params.Symbol(0) {
		t.Error("template frame must contain the parameters")
	}
	if sym, ok := tmpl.Frame.Resolve("N"); !ok || sym != n {
		t.Error("template frame must fall through to the global frame")
	}
	if tmpl.Sym.Type().Base() != ast.BaseTemplate {
		t.Errorf("template symbol typed %s", tmpl.Sym.Type())
	}
}

func TestVisitExpressions(t *testing.T) {
	frame := ast.NewFrame()
	v := frame.AddSymbol("v", ast.IntType, nil)
	cond := ast.NewBinary(noPos, ast.ExprLess, ast.NewIdentifier(noPos, v), ast.NewConstant(noPos, 3))
	step := ast.NewUnary(noPos, ast.ExprPostIncrement, ast.NewIdentifier(noPos, v))

	block := &BlockStatement{Frame: ast.NewFrame()}
	local := block.Frame.AddSymbol("l", ast.IntType, nil)
	local.SetData(&Variable{Sym: local, Init: ast.NewConstant(noPos, 1)})
	block.Stmts = append(block.Stmts, &ReturnStatement{Value: ast.NewIdentifier(noPos, v)})

	loop := &ForStatement{Init: nil, Cond: cond, Step: step, Body: block}

	var count int
	VisitExpressions(loop, func(*ast.Expression) { count++ })
	// cond, step, the local initializer and the return value.
	if count != 4 {
		t.Errorf("visited %d expressions, want 4", count)
	}
}
