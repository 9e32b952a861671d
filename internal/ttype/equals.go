package ttype

import (
	"github.com/google/go-cmp/cmp"
)

// AtomEquals reports deep structural equality between two atomics,
// following the teacher's pattern of a single cmp.Equal call with a
// handful of custom Comparers for the types that carry unexported,
// order-sensitive internals (internal/type_system/types.go's Equals).
func AtomEquals(a, b Atomic) bool {
	return cmp.Equal(a, b,
		cmp.Comparer(func(x, y *Union) bool { return Equals(x, y) }),
		cmp.Comparer(orderedDictEqual),
		cmp.Comparer(orderedVecEqual),
	)
}

func orderedDictEqual(x, y *OrderedDict) bool {
	if x == nil || y == nil {
		return x == y
	}
	if len(x.keys) != len(y.keys) {
		return false
	}
	for i, k := range x.keys {
		if y.keys[i] != k {
			return false
		}
		xi, _ := x.Get(k)
		yi, _ := y.Get(k)
		if xi.PossiblyUndefined != yi.PossiblyUndefined || !Equals(xi.Value, yi.Value) {
			return false
		}
	}
	return true
}

func orderedVecEqual(x, y *OrderedVec) bool {
	if x == nil || y == nil {
		return x == y
	}
	if len(x.offsets) != len(y.offsets) {
		return false
	}
	for i, o := range x.offsets {
		if y.offsets[i] != o {
			return false
		}
		xi, _ := x.Get(o)
		yi, _ := y.Get(o)
		if xi.PossiblyUndefined != yi.PossiblyUndefined || !Equals(xi.Value, yi.Value) {
			return false
		}
	}
	return true
}
