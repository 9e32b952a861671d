package combiner

import (
	"testing"

	"github.com/slackhq/hakana-sub000/internal/ttype"
)

// S1 — literal widening: 21 distinct literal ints widen to plain Int.
func TestLiteralWideningS1(t *testing.T) {
	atoms := make([]ttype.Atomic, 21)
	for i := 0; i < 21; i++ {
		atoms[i] = ttype.LiteralInt{Value: int64(i)}
	}
	result := Combine(atoms, nil, false)
	if len(result) != 1 {
		t.Fatalf("expected single widened atom, got %d: %v", len(result), result)
	}
	if _, ok := result[0].(ttype.Int); !ok {
		t.Fatalf("expected Int, got %T", result[0])
	}
}

func TestNoWideningUnder21(t *testing.T) {
	atoms := make([]ttype.Atomic, 20)
	for i := 0; i < 20; i++ {
		atoms[i] = ttype.LiteralInt{Value: int64(i)}
	}
	result := Combine(atoms, nil, false)
	if len(result) != 20 {
		t.Fatalf("expected 20 literal ints preserved, got %d", len(result))
	}
}

// Invariant 1: combine(U.atomics) == U.atomics up to reordering.
func TestCombineIsIdempotentOnCanonicalForm(t *testing.T) {
	u := ttype.New(ttype.Int{}, ttype.String{}, ttype.Null{})
	result := Combine(u.Atoms, nil, false)
	if len(result) != len(u.Atoms) {
		t.Fatalf("combine changed atom count: %d vs %d", len(result), len(u.Atoms))
	}
	for _, want := range u.Atoms {
		found := false
		for _, got := range result {
			if got.Key() == want.Key() {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("combine dropped atom %v", want)
		}
	}
}

// Invariant 7: commutative and associative up to atom ordering.
func TestCombineUnionsCommutative(t *testing.T) {
	a := ttype.New(ttype.Int{})
	b := ttype.New(ttype.String{})
	ab := CombineUnions(a, b, nil, false)
	ba := CombineUnions(b, a, nil, false)
	if !sameAtomSet(ab, ba) {
		t.Fatalf("combine not commutative: %s vs %s", ab, ba)
	}
}

func TestCombineUnionsAssociative(t *testing.T) {
	a := ttype.New(ttype.Int{})
	b := ttype.New(ttype.String{})
	c := ttype.New(ttype.Bool{})
	left := CombineUnions(CombineUnions(a, b, nil, false), c, nil, false)
	right := CombineUnions(a, CombineUnions(b, c, nil, false), nil, false)
	if !sameAtomSet(left, right) {
		t.Fatalf("combine not associative: %s vs %s", left, right)
	}
}

func TestScalarAbsorption(t *testing.T) {
	result := Combine([]ttype.Atomic{ttype.Int{}, ttype.Scalar{}}, nil, false)
	if len(result) != 1 {
		t.Fatalf("expected Scalar to absorb Int, got %v", result)
	}
	if _, ok := result[0].(ttype.Scalar); !ok {
		t.Fatalf("expected Scalar, got %T", result[0])
	}
}

func TestMixedVanillaAbsorbsEverything(t *testing.T) {
	result := Combine([]ttype.Atomic{ttype.Mixed{}, ttype.Int{}, ttype.String{}}, nil, false)
	if len(result) != 1 {
		t.Fatalf("expected vanilla Mixed to absorb all, got %v", result)
	}
	if _, ok := result[0].(ttype.Mixed); !ok {
		t.Fatalf("expected Mixed, got %T", result[0])
	}
}

func sameAtomSet(a, b *ttype.Union) bool {
	if len(a.Atoms) != len(b.Atoms) {
		return false
	}
	for _, x := range a.Atoms {
		found := false
		for _, y := range b.Atoms {
			if x.Key() == y.Key() {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
