package analyzer

import (
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/slackhq/hakana-sub000/internal/callsite"
	"github.com/slackhq/hakana-sub000/internal/codeinfo"
	"github.com/slackhq/hakana-sub000/internal/dataflow"
	"github.com/slackhq/hakana-sub000/internal/ttype"
)

func threeFileUnits() []FileUnit {
	var units []FileUnit
	for i, name := range []string{"a.hack", "b.hack", "c.hack"} {
		varId := string(rune('x' + i))
		units = append(units, FileUnit{
			Path: name,
			Script: Script{
				{Bind: &BindStep{VarId: varId, Type: ttype.New(ttype.Int{})}},
				{Call: &CallStep{
					VarId: "result",
					Expr: CallExpression{
						Params:     []ttype.Parameter{{Type: ttype.New(ttype.Int{})}},
						ReturnType: ttype.New(ttype.String{}),
						Arguments:  []callsite.Argument{{Type: ttype.New(ttype.Int{})}},
						ArgVarIds:  map[int]string{0: varId},
					},
				}},
			},
		})
	}
	return units
}

// TestParallelMatchesSequentialGraph is spec.md §8 invariant 10: running
// the same file-grain units through RunParallel with jobs=1 (effectively
// sequential) versus jobs=4 (genuinely concurrent) must produce dataflow
// graphs with identical node and edge sets, since node ids are derived
// only from variable names and source spans, never from the worker that
// happened to process them.
func TestParallelMatchesSequentialGraph(t *testing.T) {
	cb := codeinfo.NewCodebase()
	units := threeFileUnits()

	seq, err := RunParallel(context.Background(), cb, CombineUnions, IntersectUnions, IsContainedByFor(cb), units, 1)
	require.NoError(t, err, "sequential run failed")
	par, err := RunParallel(context.Background(), cb, CombineUnions, IntersectUnions, IsContainedByFor(cb), units, 4)
	require.NoError(t, err, "parallel run failed")

	require.Equal(t, seq.Graph.NodeCount(), par.Graph.NodeCount(), "node count mismatch")
	require.Equal(t, seq.Graph.EdgeCount(), par.Graph.EdgeCount(), "edge count mismatch")
	require.True(t, sameEdgeSet(seq.Graph.Edges(), par.Graph.Edges()), "sequential and parallel runs produced different edge sets")
}

func sameEdgeSet(a, b []dataflow.Edge) bool {
	key := func(e dataflow.Edge) string {
		return e.From.Label + "|" + e.From.Pos + "->" + e.To.Label + "|" + e.To.Pos
	}
	as := make([]string, len(a))
	bs := make([]string, len(b))
	for i, e := range a {
		as[i] = key(e)
	}
	for i, e := range b {
		bs[i] = key(e)
	}
	sort.Strings(as)
	sort.Strings(bs)
	if len(as) != len(bs) {
		return false
	}
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}
