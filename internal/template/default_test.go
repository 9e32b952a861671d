package template

import (
	"testing"

	"github.com/slackhq/hakana-sub000/internal/codeinfo"
	"github.com/slackhq/hakana-sub000/internal/symbol"
	"github.com/slackhq/hakana-sub000/internal/ttype"
)

// TestResolveDefaultDoublePass pins spec.md §9's double-replacement
// behaviour end to end: a default type referencing the calling class's
// own template is left unreplaced by the read-only standin pass (the
// same rule that protects a live call from replacing its own recursive
// template), then filled in by the live inferred pass from the bound a
// real argument actually produced — and the live Result's own bounds are
// left exactly as they were before the call.
func TestResolveDefaultDoublePass(t *testing.T) {
	classEntity := symbol.ClassLikeParent{Name: symbol.SymbolId(9)}
	callingClass := &codeinfo.ClassLikeInfo{Name: symbol.SymbolId(9)}
	tParam := symbol.SymbolId(2)

	live := NewResult()
	live.DeclareTemplate(tParam, classEntity, ttype.New(ttype.Mixed{}))
	offset := 0
	live.AddLowerBound(tParam, classEntity, Bound{BoundType: ttype.New(ttype.String{}), AppearanceDepth: 0, ArgOffset: &offset})

	defaultType := ttype.New(ttype.Vec{
		TypeParam: ttype.New(ttype.GenericParam{ParamName: tParam, DefiningEntity: classEntity, AsType: ttype.New(ttype.Mixed{})}),
	})

	resolved := ResolveDefault(defaultType, live, nil, testCombine, testIntersect, callingClass)

	single, ok := resolved.IsSingle()
	if !ok {
		t.Fatalf("expected a single Vec atom, got %s", resolved)
	}
	vec, ok := single.(ttype.Vec)
	if !ok {
		t.Fatalf("expected Vec, got %T", single)
	}
	if !vec.TypeParam.HasAtomOfKey((ttype.String{}).Key()) {
		t.Errorf("expected the self-owned template filled in from the live lower bound, got %s", vec.TypeParam)
	}

	bounds := live.LowerBounds(tParam, classEntity)
	if len(bounds) != 1 {
		t.Errorf("expected the live Result's own bounds untouched by the read-only pass, got %d bounds", len(bounds))
	}
}
