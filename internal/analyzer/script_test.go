package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slackhq/hakana-sub000/internal/codeinfo"
	"github.com/slackhq/hakana-sub000/internal/reconciler"
	"github.com/slackhq/hakana-sub000/internal/ttype"
)

func newTestEngine() *Engine {
	cb := codeinfo.NewCodebase()
	return NewDefaultEngine(cb)
}

// A bind step followed by an if/else that narrows to Int on one branch and
// String on the other should rejoin to a union containing both.
func TestScriptIfJoinsBothBranches(t *testing.T) {
	e := newTestEngine()
	ctx := &Context{Scope: NewScope()}

	script := Script{
		{Bind: &BindStep{VarId: "x", Type: ttype.New(ttype.Int{}, ttype.String{})}},
		{If: &IfStep{
			VarId: "x",
			Assertions: map[string][][]reconciler.Assertion{
				"x": {{{Kind: reconciler.IsType, Type: ttype.New(ttype.Int{})}}},
			},
		}},
	}

	result := Run(e, ctx, script)
	joined, ok := result.Scope.Lookup("x")
	require.True(t, ok, "expected x to be bound after the if")
	assert.True(t, joined.HasAtomOfKey((ttype.Int{}).Key()), "expected joined type to retain int, got %s", joined)
	assert.True(t, joined.HasAtomOfKey((ttype.String{}).Key()), "expected joined type to retain string from the else branch, got %s", joined)
}

// The Context a truthy assertion narrows (the walker's "then" scope, before
// it rejoins with "else") drops null directly, independent of what the join
// point later recombines.
func TestEngineReconcileTruthyDropsNullInChildScope(t *testing.T) {
	e := newTestEngine()
	parent := &Context{Scope: NewScope()}
	parent.Scope.Vars["y"] = ttype.New(ttype.Null{}, ttype.LiteralInt{Value: 5})

	thenCtx := parent.WithNewScope()
	e.ReconcileKeyedTypes(thenCtx, map[string][][]reconciler.Assertion{
		"y": {{{Kind: reconciler.Truthy}}},
	}, nil)

	narrowed, ok := thenCtx.Scope.Lookup("y")
	require.True(t, ok, "expected y to still be bound in the narrowed scope")
	assert.False(t, narrowed.HasAtomOfKey((ttype.Null{}).Key()), "expected the truthy-narrowed scope to have dropped null")

	parentType, stillBound := parent.Scope.Lookup("y")
	require.True(t, stillBound, "parent scope's binding should be unaffected by narrowing a forked child")
	assert.True(t, parentType.HasAtomOfKey((ttype.Null{}).Key()), "narrowing the child scope must not mutate the parent scope's type")
}
