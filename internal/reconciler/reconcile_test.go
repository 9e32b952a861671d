package reconciler

import (
	"testing"

	"github.com/slackhq/hakana-sub000/internal/codeinfo"
	"github.com/slackhq/hakana-sub000/internal/dataflow"
	"github.com/slackhq/hakana-sub000/internal/symbol"
	"github.com/slackhq/hakana-sub000/internal/ttype"
	"github.com/slackhq/hakana-sub000/internal/ttype/combiner"
)

func testCombine(a, b *ttype.Union, cb *codeinfo.Codebase) *ttype.Union {
	return combiner.CombineUnions(a, b, cb, false)
}

func alwaysNotContained(a, b ttype.Atomic) bool { return false }

func newDriver() *Driver {
	return &Driver{Codebase: codeinfo.NewCodebase(), IsContainedBy: alwaysNotContained}
}

// Truthy narrowing removes Null and keeps an object atom.
func TestReconcileTruthyRemovesNull(t *testing.T) {
	d := newDriver()
	existing := ttype.New(ttype.Null{}, ttype.NamedObject{})
	ctx := NewContext()
	ctx.VarsInScope["$x"] = existing
	changed := map[string]bool{}

	d.ReconcileKeyedTypes(map[string][][]Assertion{
		"$x": {{{Kind: Truthy}}},
	}, ctx, changed, testCombine, nil)

	if !changed["$x"] {
		t.Fatal("expected $x to be marked changed")
	}
	got := ctx.VarsInScope["$x"]
	if got.HasAtomOfKey((ttype.Null{}).Key()) {
		t.Errorf("expected Null removed, got %s", got)
	}
	if !got.HasAtomOfKey((ttype.NamedObject{}).Key()) {
		t.Errorf("expected NamedObject retained, got %s", got)
	}
}

// Falsy narrowing of a possibly-null string keeps only the falsy branch.
func TestReconcileFalsyOnNullableString(t *testing.T) {
	d := newDriver()
	existing := ttype.New(ttype.Null{}, ttype.StringWithFlags{NonEmpty: true})
	ctx := NewContext()
	ctx.VarsInScope["$x"] = existing
	changed := map[string]bool{}

	d.ReconcileKeyedTypes(map[string][][]Assertion{
		"$x": {{{Kind: Falsy}}},
	}, ctx, changed, testCombine, nil)

	got := ctx.VarsInScope["$x"]
	if !got.HasAtomOfKey((ttype.Null{}).Key()) {
		t.Errorf("expected Null retained (falsy), got %s", got)
	}
	if got.HasAtomOfKey((ttype.StringWithFlags{NonEmpty: true}).Key()) {
		t.Errorf("expected the non-empty string atom dropped, got %s", got)
	}
}

// isset() narrowing on a never-assigned key falls back to Mixed, then
// removes Null/Void.
func TestReconcileIssetOnUndeclaredKey(t *testing.T) {
	d := newDriver()
	ctx := NewContext()
	changed := map[string]bool{}

	d.ReconcileKeyedTypes(map[string][][]Assertion{
		"$y": {{{Kind: IsIsset}}},
	}, ctx, changed, testCombine, nil)

	got := ctx.VarsInScope["$y"]
	if got == nil {
		t.Fatal("expected $y to gain a narrowed type")
	}
	if got.HasAtomOfKey((ttype.Null{}).Key()) {
		t.Errorf("expected Null excluded from isset narrowing, got %s", got)
	}
}

// OR-of-AND groups combine via the supplied combine function.
func TestReconcileOrGroupsCombine(t *testing.T) {
	d := newDriver()
	ctx := NewContext()
	ctx.VarsInScope["$x"] = ttype.New(ttype.Int{}, ttype.String{})
	changed := map[string]bool{}

	d.ReconcileKeyedTypes(map[string][][]Assertion{
		"$x": {
			{{Kind: IsType, Type: ttype.New(ttype.Int{})}},
			{{Kind: IsType, Type: ttype.New(ttype.String{})}},
		},
	}, ctx, changed, testCombine, nil)

	got := ctx.VarsInScope["$x"]
	if !got.HasAtomOfKey((ttype.Int{}).Key()) || !got.HasAtomOfKey((ttype.String{}).Key()) {
		t.Errorf("expected both branches present after OR-combine, got %s", got)
	}
}

// array key assertions narrow a shape's known_items possibly_undefined flag.
func TestReconcileHasArrayKeyClearsUndefined(t *testing.T) {
	d := newDriver()
	items := ttype.NewOrderedDict()
	items.Set(ttype.StringKey("name"), ttype.DictItem{PossiblyUndefined: true, Value: ttype.New(ttype.String{})})
	ctx := NewContext()
	ctx.VarsInScope["$shape"] = ttype.New(ttype.Dict{KnownItems: items})
	changed := map[string]bool{}

	d.ReconcileKeyedTypes(map[string][][]Assertion{
		"$shape": {{{Kind: HasArrayKey, Key: ttype.StringKey("name")}}},
	}, ctx, changed, testCombine, nil)

	got := ctx.VarsInScope["$shape"]
	single, ok := got.IsSingle()
	if !ok {
		t.Fatalf("expected single Dict atom, got %s", got)
	}
	d2 := single.(ttype.Dict)
	item, _ := d2.KnownItems.Get(ttype.StringKey("name"))
	if item.PossiblyUndefined {
		t.Errorf("expected possibly_undefined cleared after HasArrayKey narrowing")
	}
}

// TaintOps are accepted without panicking and don't affect narrowing.
func TestReconcileAcceptsTaintOps(t *testing.T) {
	d := newDriver()
	ctx := NewContext()
	ctx.VarsInScope["$x"] = ttype.New(ttype.String{})
	changed := map[string]bool{}

	d.ReconcileKeyedTypes(map[string][][]Assertion{}, ctx, changed, testCombine, []TaintOp{
		{Kind: TaintOpRemove, VarId: "$x", RemovedTaints: []string{"sql"}},
	})

	if !ttype.Equals(ctx.VarsInScope["$x"], ttype.New(ttype.String{})) {
		t.Errorf("taint ops must not mutate unrelated var types")
	}
}

// TaintOps mutate the dataflow graph when a Driver has one: Remove and
// Ignore/Unignore each leave a distinguishable self-loop edge on the
// affected variable's node (spec.md §4.5).
func TestReconcileTaintOpsMutateGraph(t *testing.T) {
	d := newDriver()
	d.Graph = dataflow.NewGraph()
	ctx := NewContext()
	changed := map[string]bool{}

	d.ReconcileKeyedTypes(map[string][][]Assertion{}, ctx, changed, testCombine, []TaintOp{
		{Kind: TaintOpRemove, VarId: "$x", RemovedTaints: []string{"sql"}},
		{Kind: TaintOpIgnore, VarId: "$x", RemovedTaints: []string{"html"}},
		{Kind: TaintOpUnignore, VarId: "$x", RemovedTaints: []string{"html"}},
	})

	edges := d.Graph.Edges()
	if len(edges) != 3 {
		t.Fatalf("expected 3 edges, got %d", len(edges))
	}
	if len(edges[0].RemovedTaints) != 1 || edges[0].RemovedTaints[0] != "sql" {
		t.Errorf("expected removed-taints edge for sql, got %+v", edges[0])
	}
	if edges[1].Unignore || len(edges[1].IgnoredTaints) != 1 || edges[1].IgnoredTaints[0] != "html" {
		t.Errorf("expected ignore edge for html, got %+v", edges[1])
	}
	if !edges[2].Unignore {
		t.Errorf("expected unignore edge, got %+v", edges[2])
	}
}

// A narrowing that changes a key's type records a dataflow guard edge:
// RefineSymbol when it collapses to a single NamedObject.
func TestReconcileNarrowingRecordsRefineSymbolEdge(t *testing.T) {
	d := newDriver()
	d.Graph = dataflow.NewGraph()
	ctx := NewContext()
	ctx.VarsInScope["$x"] = ttype.New(ttype.Null{}, ttype.NamedObject{Name: symbol.SymbolId(42)})
	changed := map[string]bool{}

	d.ReconcileKeyedTypes(map[string][][]Assertion{
		"$x": {{{Kind: Truthy}}},
	}, ctx, changed, testCombine, nil)

	edges := d.Graph.Edges()
	if len(edges) != 1 {
		t.Fatalf("expected 1 edge, got %d", len(edges))
	}
	if edges[0].Kind != dataflow.RefineSymbol || edges[0].RefinedSymbol != "42" {
		t.Errorf("expected RefineSymbol(42) edge, got %+v", edges[0])
	}
	got := ctx.VarsInScope["$x"]
	if len(got.ParentNodes) != 1 || got.ParentNodes[0].Label != "$x" {
		t.Errorf("expected a new parent-node recording this narrowing, got %+v", got.ParentNodes)
	}
}

// ...and ScalarTypeGuard when it collapses to a scalar atom.
func TestReconcileNarrowingRecordsScalarTypeGuardEdge(t *testing.T) {
	d := newDriver()
	d.Graph = dataflow.NewGraph()
	ctx := NewContext()
	ctx.VarsInScope["$x"] = ttype.New(ttype.Null{}, ttype.LiteralInt{Value: 7})
	changed := map[string]bool{}

	d.ReconcileKeyedTypes(map[string][][]Assertion{
		"$x": {{{Kind: Truthy}}},
	}, ctx, changed, testCombine, nil)

	edges := d.Graph.Edges()
	if len(edges) != 1 || edges[0].Kind != dataflow.ScalarTypeGuard {
		t.Fatalf("expected 1 ScalarTypeGuard edge, got %+v", edges)
	}
}

// Narrowing a nested key implies its root is isset (step 1): asserting
// $a['b'] is an int also narrows $a to exclude Null, even though $a
// itself carries no explicit assertion.
func TestReconcileNestedKeyImpliesRootIsset(t *testing.T) {
	d := newDriver()
	ctx := NewContext()
	ctx.VarsInScope["$a"] = ttype.New(ttype.Null{}, ttype.Dict{})
	changed := map[string]bool{}

	d.ReconcileKeyedTypes(map[string][][]Assertion{
		"$a['b']": {{{Kind: IsType, Type: ttype.New(ttype.Int{})}}},
	}, ctx, changed, testCombine, nil)

	root := ctx.VarsInScope["$a"]
	if root.HasAtomOfKey((ttype.Null{}).Key()) {
		t.Errorf("expected $a narrowed to exclude Null via implied isset, got %s", root)
	}
	if !changed["$a"] {
		t.Errorf("expected $a to be marked changed by the implied isset")
	}
}

// When a nested key has no type of its own, step 2 derives its "before"
// type from the parent's known shape instead of falling back to mixed:
// narrowing truthy over the synthesized Null|Int|String keeps Int/String
// (which a mixed fallback's single MixedWithFlags atom could not).
func TestReconcileNestedKeySynthesizesBeforeTypeFromParentShape(t *testing.T) {
	d := newDriver()
	items := ttype.NewOrderedDict()
	items.Set(ttype.StringKey("b"), ttype.DictItem{Value: ttype.New(ttype.Null{}, ttype.Int{}, ttype.String{})})
	ctx := NewContext()
	ctx.VarsInScope["$a"] = ttype.New(ttype.Dict{KnownItems: items})
	changed := map[string]bool{}

	d.ReconcileKeyedTypes(map[string][][]Assertion{
		"$a['b']": {{{Kind: Truthy}}},
	}, ctx, changed, testCombine, nil)

	got := ctx.VarsInScope["$a['b']"]
	if got.HasAtomOfKey((ttype.Null{}).Key()) {
		t.Errorf("expected Null removed by the truthy narrowing, got %s", got)
	}
	if !got.HasAtomOfKey((ttype.Int{}).Key()) || !got.HasAtomOfKey((ttype.String{}).Key()) {
		t.Errorf("expected Int/String retained from the synthesized before-type, got %s", got)
	}
}

// Step 4: reassigning a root variable wholesale drops any nested alias
// narrowed off it — it described a part of the old value.
func TestReconcileRootReassignmentDropsAliases(t *testing.T) {
	d := newDriver()
	ctx := NewContext()
	ctx.VarsInScope["$a"] = ttype.New(ttype.Dict{})
	ctx.VarsInScope["$a['b']"] = ttype.New(ttype.Int{})
	ctx.VarsInScope["$a->c"] = ttype.New(ttype.String{})
	ctx.VarsInScope["$z"] = ttype.New(ttype.Bool{})
	changed := map[string]bool{}

	d.ReconcileKeyedTypes(map[string][][]Assertion{
		"$a": {{{Kind: IsType, Type: ttype.New(ttype.Vec{})}}},
	}, ctx, changed, testCombine, nil)

	if _, ok := ctx.VarsInScope["$a['b']"]; ok {
		t.Error("expected $a['b'] alias dropped after $a was reassigned")
	}
	if _, ok := ctx.VarsInScope["$a->c"]; ok {
		t.Error("expected $a->c alias dropped after $a was reassigned")
	}
	if _, ok := ctx.VarsInScope["$z"]; !ok {
		t.Error("expected unrelated $z to survive")
	}
}
