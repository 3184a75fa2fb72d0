package interp

import (
	"errors"
	"testing"

	"github.com/dannybpoulsen/utap/internal/ast"
	"github.com/dannybpoulsen/utap/internal/position"
)

var noPos position.Position

func num(v int32) *ast.Expression {
	return ast.NewConstant(noPos, v)
}

func TestEvaluateArithmetic(t *testing.T) {
	in := New(Valuation{})
	cases := []struct {
		name string
		expr *ast.Expression
		want int32
	}{
		{"addition", ast.NewBinary(noPos, ast.ExprPlus, num(2), num(3)), 5},
		{"subtraction", ast.NewBinary(noPos, ast.ExprMinus, num(2), num(3)), -1},
		{"multiplication", ast.NewBinary(noPos, ast.ExprMult, num(4), num(3)), 12},
		{"division", ast.NewBinary(noPos, ast.ExprDiv, num(7), num(2)), 3},
		{"modulo", ast.NewBinary(noPos, ast.ExprMod, num(7), num(2)), 1},
		{"minimum", ast.NewBinary(noPos, ast.ExprMin, num(7), num(2)), 2},
		{"maximum", ast.NewBinary(noPos, ast.ExprMax, num(7), num(2)), 7},
		{"shift", ast.NewBinary(noPos, ast.ExprShiftLeft, num(1), num(4)), 16},
		{"comparison", ast.NewBinary(noPos, ast.ExprLess, num(1), num(2)), 1},
		{"conjunction", ast.NewBinary(noPos, ast.ExprAnd, num(1), num(0)), 0},
		{"negation", ast.NewUnary(noPos, ast.ExprNeg, num(5)), -5},
		{"logical not", ast.NewUnary(noPos, ast.ExprNot, num(0)), 1},
		{"inline if", ast.NewTernary(noPos, ast.ExprInlineIf, num(1), num(10), num(20)), 10},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := in.Evaluate(c.expr)
			if err != nil {
				t.Fatalf("unexpected error: %s", err)
			}
			if got != c.want {
				t.Errorf("got %d, want %d", got, c.want)
			}
		})
	}
}

func TestEvaluateIdentifier(t *testing.T) {
	frame := ast.NewFrame()
	n := frame.AddSymbol("N", ast.IntType.SetPrefix(true, ast.PrefixConstant), nil)
	in := New(Valuation{n: num(3)})

	e := ast.NewBinary(noPos, ast.ExprMult, ast.NewIdentifier(noPos, n), num(2))
	got, err := in.Evaluate(e)
	if err != nil || got != 6 {
		t.Fatalf("got %d, %v; want 6", got, err)
	}

	unbound := frame.AddSymbol("x", ast.IntType, nil)
	if _, err := in.Evaluate(ast.NewIdentifier(noPos, unbound)); !errors.Is(err, ErrNotComputable) {
		t.Error("unbound identifiers are not computable")
	}
}

func TestEvaluateLayeredValuations(t *testing.T) {
	frame := ast.NewFrame()
	k := frame.AddSymbol("k", ast.IntType, nil)
	in := New(Valuation{k: num(1)})
	in.AddValuation(Valuation{k: num(2)})

	got, err := in.Evaluate(ast.NewIdentifier(noPos, k))
	if err != nil || got != 2 {
		t.Fatalf("later valuations must shadow earlier ones; got %d, %v", got, err)
	}
}

func TestDivisionByZero(t *testing.T) {
	in := New(Valuation{})
	if _, err := in.Evaluate(ast.NewBinary(noPos, ast.ExprDiv, num(1), num(0))); !errors.Is(err, ErrNotComputable) {
		t.Error("division by zero must degrade to not computable")
	}
	if _, err := in.Evaluate(ast.NewBinary(noPos, ast.ExprMod, num(1), num(0))); !errors.Is(err, ErrNotComputable) {
		t.Error("modulo by zero must degrade to not computable")
	}
}

func TestEvaluateRange(t *testing.T) {
	in := New(Valuation{})
	r, err := in.EvaluateRange(num(0), ast.NewBinary(noPos, ast.ExprMinus, num(5), num(1)))
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if !r.Equal(ast.NewRange(0, 4)) {
		t.Errorf("got %+v, want [0,4]", r)
	}
}

func TestEvaluateList(t *testing.T) {
	in := New(Valuation{})
	list := ast.NewNary(noPos, ast.ExprList, []*ast.Expression{
		num(1),
		ast.NewNary(noPos, ast.ExprList, []*ast.Expression{num(2), num(3)}, ast.UnknownType),
	}, ast.UnknownType)

	values, err := in.EvaluateList(list)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if len(values) != 3 || values[0] != 1 || values[1] != 2 || values[2] != 3 {
		t.Errorf("unexpected values %v", values)
	}
}

func TestEvaluateConstantArrayIndex(t *testing.T) {
	frame := ast.NewFrame()
	size := ast.NewInteger(num(0), num(2))
	arrType := ast.NewArray(ast.IntType, size).SetPrefix(true, ast.PrefixConstant)
	arr := frame.AddSymbol("a", arrType, nil)

	list := ast.NewNary(noPos, ast.ExprList, []*ast.Expression{num(10), num(20), num(30)}, arrType)
	in := New(Valuation{arr: list})

	index := ast.NewBinary(noPos, ast.ExprIndex, ast.NewIdentifier(noPos, arr), num(1))
	got, err := in.Evaluate(index)
	if err != nil || got != 20 {
		t.Fatalf("got %d, %v; want 20", got, err)
	}
}
