package template

import (
	"testing"

	"github.com/slackhq/hakana-sub000/internal/codeinfo"
	"github.com/slackhq/hakana-sub000/internal/symbol"
	"github.com/slackhq/hakana-sub000/internal/ttype"
	"github.com/slackhq/hakana-sub000/internal/ttype/combiner"
)

func testCombine(a, b *ttype.Union, cb *codeinfo.Codebase) *ttype.Union {
	return combiner.CombineUnions(a, b, cb, false)
}

func testIntersect(a, b *ttype.Union, cb *codeinfo.Codebase) (*ttype.Union, bool) {
	return combiner.CombineUnions(a, b, cb, false), true
}

// S3 — covariant template inference.
func TestStandinCovariantVecInference(t *testing.T) {
	fnName := symbol.SymbolId(1)
	tParam := symbol.SymbolId(2)
	entity := symbol.FunctionLikeParent{Name: fnName}

	result := NewResult()
	result.DeclareTemplate(tParam, entity, ttype.New(ttype.Mixed{}))

	paramType := ttype.New(ttype.Vec{TypeParam: ttype.New(ttype.GenericParam{ParamName: tParam, DefiningEntity: entity, AsType: ttype.New(ttype.Mixed{})})})
	argType := ttype.New(ttype.Vec{TypeParam: ttype.New(ttype.LiteralString{Value: "x"})})
	offset := 0

	sr := &StandinReplacer{Combine: testCombine, Intersect: testIntersect}
	sr.Replace(paramType, result, argType, &offset, nil, false, 0)

	bounds := result.LowerBounds(tParam, entity)
	if len(bounds) != 1 {
		t.Fatalf("expected 1 lower bound, got %d", len(bounds))
	}
	if bounds[0].AppearanceDepth != 1 {
		t.Errorf("expected depth 1, got %d", bounds[0].AppearanceDepth)
	}
	if bounds[0].ArgOffset == nil || *bounds[0].ArgOffset != 0 {
		t.Errorf("expected arg offset 0, got %v", bounds[0].ArgOffset)
	}
	if !bounds[0].BoundType.HasAtomOfKey((ttype.LiteralString{Value: "x"}).Key()) {
		t.Errorf("expected bound type to include LiteralString(x), got %s", bounds[0].BoundType)
	}

	ir := &InferredReplacer{Combine: testCombine}
	returnType := ir.Replace(ttype.New(ttype.GenericParam{ParamName: tParam, DefiningEntity: entity, AsType: ttype.New(ttype.Mixed{})}), result)
	if !returnType.HasAtomOfKey((ttype.LiteralString{Value: "x"}).Key()) {
		t.Errorf("expected inferred return to include LiteralString(x), got %s", returnType)
	}
}

// S4 — contravariant via closure.
func TestStandinContravariantClosureInference(t *testing.T) {
	fnName := symbol.SymbolId(1)
	uParam := symbol.SymbolId(3)
	entity := symbol.FunctionLikeParent{Name: fnName}

	result := NewResult()
	result.DeclareTemplate(uParam, entity, ttype.New(ttype.Mixed{}))

	paramType := ttype.New(ttype.Closure{
		Params:     []ttype.Parameter{{Type: ttype.New(ttype.GenericParam{ParamName: uParam, DefiningEntity: entity, AsType: ttype.New(ttype.Mixed{})})}},
		ReturnType: ttype.New(ttype.Void{}),
	})
	argType := ttype.New(ttype.Closure{
		Params:     []ttype.Parameter{{Type: ttype.New(ttype.NamedObject{Name: symbol.SymbolId(99)})}},
		ReturnType: ttype.New(ttype.Void{}),
	})

	sr := &StandinReplacer{Combine: testCombine, Intersect: testIntersect}
	sr.Replace(paramType, result, argType, nil, nil, false, 0)

	bound, ok := result.UpperBound(uParam, entity)
	if !ok {
		t.Fatal("expected an upper bound to be recorded")
	}
	if !bound.BoundType.HasAtomOfKey((ttype.NamedObject{Name: symbol.SymbolId(99)}).Key()) {
		t.Errorf("expected upper bound to include NamedObject(99), got %s", bound.BoundType)
	}
}

func TestDoublePassDefaultTemplate(t *testing.T) {
	fnName := symbol.SymbolId(1)
	tParam := symbol.SymbolId(2)
	entity := symbol.FunctionLikeParent{Name: fnName}

	outer := NewResult()
	outer.DeclareTemplate(tParam, entity, ttype.New(ttype.Mixed{}))
	offset := 0
	outer.AddLowerBound(tParam, entity, Bound{BoundType: ttype.New(ttype.Int{}), AppearanceDepth: 0, ArgOffset: &offset})

	// The readonly inner pass must not mutate the outer bounds: resolving
	// a nested default uses a readonly copy, never the live accumulator.
	inner := NewResult()
	inner.DeclareTemplate(tParam, entity, ttype.New(ttype.Mixed{}))
	inner.Readonly = true
	inner.AddLowerBound(tParam, entity, Bound{BoundType: ttype.New(ttype.String{}), AppearanceDepth: 0})

	if len(inner.LowerBounds(tParam, entity)) != 0 {
		t.Fatalf("readonly TemplateResult must not accumulate bounds")
	}
	if len(outer.LowerBounds(tParam, entity)) != 1 {
		t.Fatalf("outer bounds must be unaffected by the inner readonly pass")
	}
}
