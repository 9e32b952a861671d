package callsite

import (
	"testing"

	"github.com/slackhq/hakana-sub000/internal/codeinfo"
	"github.com/slackhq/hakana-sub000/internal/symbol"
	"github.com/slackhq/hakana-sub000/internal/ttype"
	"github.com/slackhq/hakana-sub000/internal/ttype/combiner"
)

func newResolver() *Resolver {
	return &Resolver{
		Codebase: codeinfo.NewCodebase(),
		Combine: func(a, b *ttype.Union, cb *codeinfo.Codebase) *ttype.Union {
			return combiner.CombineUnions(a, b, cb, false)
		},
		Intersect: func(a, b *ttype.Union, cb *codeinfo.Codebase) (*ttype.Union, bool) {
			return combiner.CombineUnions(a, b, cb, false), true
		},
	}
}

// Resolving `function first<T>(vec<T> $xs): T` called with vec<string>
// should materialize the return type to string.
func TestResolveInfersReturnFromArgument(t *testing.T) {
	r := newResolver()
	fnName := symbol.SymbolId(10)
	tName := symbol.SymbolId(11)
	entity := symbol.FunctionLikeParent{Name: fnName}

	tParam := ttype.New(ttype.GenericParam{ParamName: tName, DefiningEntity: entity, AsType: ttype.New(ttype.Mixed{})})
	call := Call{
		Params:     []ttype.Parameter{{Type: ttype.New(ttype.Vec{TypeParam: tParam})}},
		ReturnType: tParam,
		Templates:  []TemplateDeclaration{{Name: tName, DefiningEntity: entity, AsType: ttype.New(ttype.Mixed{})}},
		Arguments: []Argument{
			{Type: ttype.New(ttype.Vec{TypeParam: ttype.New(ttype.String{})})},
		},
	}

	resolved := r.Resolve(call)
	if !resolved.ReturnType.HasAtomOfKey((ttype.String{}).Key()) {
		t.Errorf("expected return type to include string, got %s", resolved.ReturnType)
	}
}

// An undeclared-by-argument template falls back to its "as" bound rather
// than surfacing as a bare GenericParam.
func TestResolveFallsBackToAsBoundWhenUnbound(t *testing.T) {
	r := newResolver()
	fnName := symbol.SymbolId(20)
	tName := symbol.SymbolId(21)
	entity := symbol.FunctionLikeParent{Name: fnName}

	call := Call{
		ReturnType: ttype.New(ttype.GenericParam{ParamName: tName, DefiningEntity: entity, AsType: ttype.New(ttype.Int{})}),
		Templates:  []TemplateDeclaration{{Name: tName, DefiningEntity: entity, AsType: ttype.New(ttype.Int{})}},
	}

	resolved := r.Resolve(call)
	if !resolved.ReturnType.HasAtomOfKey((ttype.Int{}).Key()) {
		t.Errorf("expected fallback to the declared as-bound (int), got %s", resolved.ReturnType)
	}
}
