// Package reconciler implements flow-sensitive type narrowing (spec.md
// §4.5): given a variable's current type and an Assertion produced by a
// boolean expression (an `if`, a ternary, an `isset()` check, ...), it
// computes the narrowed type on the branch where the assertion holds.
package reconciler

import "github.com/slackhq/hakana-sub000/internal/ttype"

// AssertionKind is the closed set of narrowing facts a boolean expression
// can assert about a variable (spec.md §4.5).
type AssertionKind int

const (
	Truthy AssertionKind = iota
	Falsy
	IsType
	IsNotType
	IsEqual
	IsNotEqual
	IsIsset
	IsNotIsset
	IsEqualIsset
	HasArrayKey
	DoesNotHaveArrayKey
	HasNonnullEntryForKey
	HasStringArrayAccess
	HasIntOrStringArrayAccess
	ArrayKeyExists
	ArrayKeyDoesNotExist
	InArray
	NotInArray
	NonEmptyCountable
	EmptyCountable
	HasExactCount
	DoesNotHaveExactCount
	RemoveTaints
	IgnoreTaints
	DontIgnoreTaints
)

// Assertion is one narrowing fact, produced by expression analysis and
// consumed by ReconcileKeyedTypes. Which fields are populated depends on
// Kind; see the per-kind comments.
type Assertion struct {
	Kind AssertionKind

	// IsType / IsNotType / IsEqual / IsNotEqual: the asserted type.
	Type *ttype.Union

	// HasArrayKey / DoesNotHaveArrayKey / HasNonnullEntryForKey /
	// ArrayKeyExists / ArrayKeyDoesNotExist: the dict/shape key.
	Key ttype.DictKey

	// InArray / NotInArray: the haystack type.
	ArrayType *ttype.Union

	// HasExactCount / DoesNotHaveExactCount: the asserted count.
	Count int

	// RemoveTaints: the taint labels removed from the flow graph when this
	// branch is taken (see TaintOp; Open Question 2 of spec.md §9).
	RemovedTaints []string
}

func (a Assertion) hasNegation() bool {
	switch a.Kind {
	case Falsy, IsNotType, IsNotEqual, IsNotIsset, DoesNotHaveArrayKey,
		NotInArray, EmptyCountable, DoesNotHaveExactCount, ArrayKeyDoesNotExist:
		return true
	default:
		return false
	}
}

func (a Assertion) hasIsset() bool {
	switch a.Kind {
	case IsIsset, IsNotIsset, IsEqualIsset:
		return true
	default:
		return false
	}
}

func (a Assertion) hasNonIssetEquality() bool {
	switch a.Kind {
	case IsEqual, IsNotEqual, HasExactCount, DoesNotHaveExactCount:
		return true
	default:
		return false
	}
}

// TaintOp is one taint-graph mutation carried by a reconciliation pass.
// This is the explicit replacement (spec.md §9.4 decision 2) for Hakana's
// `"hakana taints"` magic var-id smuggled through the assertion map: the
// driver takes a `[]TaintOp` parameter instead of special-casing a string
// key, so taint plumbing is a real parameter, not a side channel.
type TaintOp struct {
	Kind          TaintOpKind
	VarId         string
	RemovedTaints []string
}

type TaintOpKind int

const (
	TaintOpRemove TaintOpKind = iota
	TaintOpIgnore
	TaintOpUnignore
)
