package template

import (
	"github.com/slackhq/hakana-sub000/internal/codeinfo"
	"github.com/slackhq/hakana-sub000/internal/ttype"
)

// ResolveDefault implements spec.md §9's double-replacement preservation
// (SPEC_FULL.md §9.4 decision 1): a template parameter's default/"as" type
// can itself mention other templates, including ones owned by the calling
// class — which StandinReplacer deliberately leaves untouched so a
// recursive self-call doesn't get replaced from inside its own method
// body. Resolving a default still needs a concrete type out the other
// end, so this runs standin_replace on a read-only clone of result first
// (so a recursive default can't accumulate bounds of its own), then
// inferred_replace against the live result to fill in from whatever
// bounds the real call arguments actually produced.
func ResolveDefault(
	defaultType *ttype.Union,
	result *Result,
	codebase *codeinfo.Codebase,
	combine CombineFunc,
	intersect IntersectFunc,
	callingClass *codeinfo.ClassLikeInfo,
) *ttype.Union {
	readonly := result.Clone()
	readonly.Readonly = true

	sr := &StandinReplacer{Codebase: codebase, Combine: combine, Intersect: intersect}
	standin := sr.Replace(defaultType, readonly, nil, nil, callingClass, false, 0)

	ir := &InferredReplacer{Codebase: codebase, Combine: combine}
	return ir.Replace(standin, result)
}
