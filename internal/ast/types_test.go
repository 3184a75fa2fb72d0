package ast

import (
	"testing"

	"github.com/dannybpoulsen/utap/internal/position"
)

func bounds(lo, hi int32) (*Expression, *Expression) {
	var pos position.Position
	return NewConstant(pos, lo), NewConstant(pos, hi)
}

func TestTypePredicates(t *testing.T) {
	lo, hi := bounds(0, 3)
	cases := []struct {
		name string
		typ  *Type
		pred func(*Type) bool
	}{
		{"int is integer", NewInteger(lo, hi), (*Type).IsInteger},
		{"int is value", IntType, (*Type).IsValue},
		{"bool is value", BoolType, (*Type).IsValue},
		{"int is scalar-or-value", IntType, (*Type).IsScalar},
		{"scalar set is scalar", NewScalarSet(lo, hi), (*Type).IsScalar},
		{"clock is clock", ClockType, (*Type).IsClock},
		{"void is void", VoidType, (*Type).IsVoid},
		{"diff is diff", DiffType, (*Type).IsDiff},
		{"value is invariant", BoolType, (*Type).IsInvariant},
		{"invariant is invariant", InvariantType, (*Type).IsInvariant},
		{"invariant is guard", InvariantType, (*Type).IsGuard},
		{"guard is constraint", GuardType, (*Type).IsConstraint},
		{"invariant is invariant+r", InvariantType, (*Type).IsInvariantWR},
		{"invariant+r base", InvariantWRType, (*Type).IsInvariantWR},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if !c.pred(c.typ) {
				t.Errorf("%s: predicate is false for %s", c.name, c.typ)
			}
		})
	}

	if GuardType.IsInvariant() {
		t.Error("a guard is not an invariant")
	}
	if ConstraintType.IsGuard() {
		t.Error("a constraint is not a guard")
	}
}

func TestTypePrefixes(t *testing.T) {
	base := ChannelType
	urgent := base.SetPrefix(true, PrefixUrgent)
	if !urgent.HasPrefix(PrefixUrgent) {
		t.Fatal("prefix not set")
	}
	if base.HasPrefix(PrefixUrgent) {
		t.Fatal("SetPrefix must not mutate the original term")
	}
	cleared := urgent.SetPrefix(false, PrefixUrgent)
	if cleared.HasPrefix(PrefixUrgent) {
		t.Fatal("prefix not cleared")
	}
	if !cleared.Equal(base) {
		t.Error("clearing the only prefix must restore equality with the base")
	}
}

func TestRecordIdentity(t *testing.T) {
	fieldsA := NewFrame()
	fieldsA.AddSymbol("a", IntType, nil)
	fieldsA.AddSymbol("b", IntType, nil)
	fieldsB := NewFrame()
	fieldsB.AddSymbol("a", IntType, nil)
	fieldsB.AddSymbol("b", IntType, nil)

	recA := NewRecord(fieldsA)
	recB := NewRecord(fieldsB)
	if recA.Equal(recB) {
		t.Error("records with distinct frames must not be equal, even with identical fields")
	}
	if !recA.Equal(NewRecord(fieldsA)) {
		t.Error("records over the same frame must be equal")
	}
}

func TestScalarIdentity(t *testing.T) {
	lo1, hi1 := bounds(0, 4)
	lo2, hi2 := bounds(0, 4)
	setA := NewScalarSet(lo1, hi1)
	setB := NewScalarSet(lo2, hi2)
	if setA.Equal(setB) {
		t.Error("separately declared scalar sets must be distinct")
	}
	if !setA.ScalarEqual(setA) {
		t.Error("a scalar set must equal itself")
	}
	constA := setA.SetPrefix(true, PrefixConstant)
	if !constA.ScalarEqual(setA) {
		t.Error("prefix derivation must preserve scalar identity")
	}
}

func TestArrayAndFunctionTypes(t *testing.T) {
	lo, hi := bounds(0, 3)
	size := NewInteger(lo, hi)
	arr := NewArray(IntType, size)
	if arr.Base() != BaseArray || !arr.Sub().IsInteger() {
		t.Fatalf("unexpected array type %s", arr)
	}
	if arr.ArraySize() != size {
		t.Error("array size type lost")
	}
	if !arr.Equal(NewArray(IntType, size)) {
		t.Error("structurally identical arrays must be equal")
	}

	params := NewFrame()
	params.AddSymbol("x", IntType, nil)
	fn := NewFunction(params, BoolType)
	if fn.Base() != BaseFunction || fn.Sub() != BoolType || fn.Parameters() != params {
		t.Fatalf("unexpected function type %s", fn)
	}

	named := NewNamed(arr)
	if named.Base() != BaseNamed || named.Sub() != arr {
		t.Fatalf("unexpected named type %s", named)
	}
}

func TestIntegerRangeEquality(t *testing.T) {
	lo1, hi1 := bounds(0, 3)
	lo2, hi2 := bounds(0, 3)
	if !NewInteger(lo1, hi1).Equal(NewInteger(lo2, hi2)) {
		t.Error("integer types with syntactically equal bounds must be equal")
	}
	lo3, hi3 := bounds(0, 4)
	if NewInteger(lo1, hi1).Equal(NewInteger(lo3, hi3)) {
		t.Error("integer types with different bounds must differ")
	}
}
