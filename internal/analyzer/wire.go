package analyzer

import (
	"github.com/slackhq/hakana-sub000/internal/codeinfo"
	"github.com/slackhq/hakana-sub000/internal/comparator"
	"github.com/slackhq/hakana-sub000/internal/ttype"
	"github.com/slackhq/hakana-sub000/internal/ttype/combiner"
)

// NewDefaultEngine wires the real combiner/comparator implementations
// into an Engine, the composition root a production caller (cmd/hakana)
// or a test driving the full engine actually wants, as opposed to
// NewEngine's bare constructor which leaves the callbacks for the caller
// to supply (RunParallel's per-file workers call it with the callbacks
// they were given).
func NewDefaultEngine(cb *codeinfo.Codebase) *Engine {
	return NewEngine(cb, CombineUnions, IntersectUnions, IsContainedByFor(cb))
}

// CombineUnions adapts combiner.CombineUnions (which takes an explicit
// overwrite-empty-array flag Hakana's combine_union_types exposes for
// array-literal merging, not relevant at this call site) to the
// template/reconciler/callsite packages' simpler two-union signature.
func CombineUnions(a, b *ttype.Union, cb *codeinfo.Codebase) *ttype.Union {
	return combiner.CombineUnions(a, b, cb, false)
}

// IntersectUnions returns whichever of a and b is contained by the other,
// with true; when neither contains the other it returns their combined
// union with false (a partial overlap is not computed). It adapts
// comparator.New(cb).UnionIsContainedBy's boolean relation plus
// combiner.CombineUnions into the single intersect-or-fail shape
// internal/template's StandinReplacer expects.
func IntersectUnions(a, b *ttype.Union, cb *codeinfo.Codebase) (*ttype.Union, bool) {
	cmp := comparator.New(cb)
	var out comparator.Result
	if cmp.UnionIsContainedBy(a, b, false, false, false, &out) {
		return a, true
	}
	if cmp.UnionIsContainedBy(b, a, false, false, false, &out) {
		return b, true
	}
	return combiner.CombineUnions(a, b, cb, false), false
}

// IsContainedByFor adapts comparator.Comparator.IsContainedBy's richer
// signature (insideAssertion flag, coercion-feedback out param) to the
// reconciler's bare two-atom predicate, which only ever needs the yes/no
// answer when subtracting a negated type from an existing one.
func IsContainedByFor(cb *codeinfo.Codebase) func(a, b ttype.Atomic) bool {
	cmp := comparator.New(cb)
	return func(a, b ttype.Atomic) bool {
		var out comparator.Result
		return cmp.IsContainedBy(a, b, false, &out)
	}
}
