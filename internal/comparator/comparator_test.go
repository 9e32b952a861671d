package comparator

import (
	"testing"

	"github.com/slackhq/hakana-sub000/internal/codeinfo"
	"github.com/slackhq/hakana-sub000/internal/ttype"
)

func newTestComparator() *Comparator {
	return New(codeinfo.NewCodebase())
}

func TestIsContainedByReflexive(t *testing.T) {
	c := newTestComparator()
	atoms := []ttype.Atomic{
		ttype.Int{}, ttype.String{}, ttype.Bool{}, ttype.Null{},
		ttype.LiteralInt{Value: 5}, ttype.LiteralString{Value: "x"},
	}
	for _, a := range atoms {
		var out Result
		if !c.IsContainedBy(a, a, false, &out) {
			t.Errorf("IsContainedBy(%v, %v) = false, want true (invariant 3)", a, a)
		}
	}
}

func TestNothingContainedByAnything(t *testing.T) {
	c := newTestComparator()
	targets := []ttype.Atomic{ttype.Int{}, ttype.String{}, ttype.Null{}, ttype.Mixed{}}
	for _, target := range targets {
		var out Result
		if !c.IsContainedBy(ttype.Nothing{}, target, false, &out) {
			t.Errorf("Nothing not contained by %v (invariant 4)", target)
		}
	}
}

func TestEverythingContainedByMixed(t *testing.T) {
	c := newTestComparator()
	inputs := []ttype.Atomic{ttype.Int{}, ttype.String{}, ttype.Null{}, ttype.LiteralInt{Value: 1}}
	for _, in := range inputs {
		var out Result
		if !c.IsContainedBy(in, ttype.Mixed{}, false, &out) {
			t.Errorf("%v not contained by Mixed (invariant 4)", in)
		}
	}
}

func TestScalarLattice(t *testing.T) {
	c := newTestComparator()
	var out Result
	if !c.IsContainedBy(ttype.LiteralInt{Value: 5}, ttype.Int{}, false, &out) {
		t.Error("LiteralInt(5) should be contained by Int")
	}
	if !c.IsContainedBy(ttype.Int{}, ttype.Arraykey{}, false, &out) {
		t.Error("Int should be contained by Arraykey")
	}
	if !c.IsContainedBy(ttype.Int{}, ttype.Num{}, false, &out) {
		t.Error("Int should be contained by Num")
	}
	if c.IsContainedBy(ttype.String{}, ttype.Int{}, false, &out) {
		t.Error("String should not be contained by Int")
	}
}

func TestNullContainment(t *testing.T) {
	c := newTestComparator()
	var out Result
	if !c.IsContainedBy(ttype.Null{}, ttype.Null{}, false, &out) {
		t.Error("Null should be contained by Null")
	}
	if c.IsContainedBy(ttype.Null{}, ttype.Int{}, false, &out) {
		t.Error("Null should not be contained by non-nullable Int")
	}
}

func TestUnionIsContainedBy(t *testing.T) {
	c := newTestComparator()
	var out Result
	input := ttype.New(ttype.Int{}, ttype.LiteralString{Value: "a"})
	container := ttype.New(ttype.Arraykey{})
	if !c.UnionIsContainedBy(input, container, false, false, false, &out) {
		t.Error("int|string(\"a\") should be contained by arraykey")
	}
}
