package position

import (
	"testing"
)

func TestPositionString(t *testing.T) {
	p := NewPosition("models/train.xta", 4, 7, 42)
	if p.String() != "train.xta:4:7" {
		t.Errorf("unexpected rendering %q", p.String())
	}
	anon := Position{Line: 2, Column: 1}
	if anon.String() != "2:1" {
		t.Errorf("unexpected rendering %q", anon.String())
	}
}

func TestPositionValidity(t *testing.T) {
	if (Position{}).IsValid() {
		t.Error("the zero position is not valid")
	}
	if !NewPosition("f", 1, 1, 0).IsValid() {
		t.Error("a 1:1 position is valid")
	}
}

func TestPositionOrdering(t *testing.T) {
	a := NewPosition("f", 1, 1, 0)
	b := NewPosition("f", 1, 5, 4)
	if !a.Before(b) || b.Before(a) {
		t.Error("ordering by offset failed")
	}
	if !b.After(a) {
		t.Error("After must mirror Before")
	}
	other := NewPosition("g", 1, 1, 0)
	if !a.Before(other) {
		t.Error("ordering falls back to filenames across files")
	}
}

func TestSpan(t *testing.T) {
	s := Span{Start: NewPosition("f", 1, 2, 1), End: NewPosition("f", 1, 6, 5)}
	if !s.IsValid() {
		t.Fatal("span should be valid")
	}
	if s.String() != "f:1:2-6" {
		t.Errorf("unexpected rendering %q", s.String())
	}
	point := PointSpan(NewPosition("f", 3, 1, 10))
	if !point.IsValid() || point.Start != point.End {
		t.Error("point span must collapse to one position")
	}
}
