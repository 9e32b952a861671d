// Package analyzer wires the type model, combiner, expander, comparator,
// template inference, assertion reconciler and call-site resolver into a
// single engine that an external AST walker drives through the hook points
// of spec.md §6.1. The walker itself lives outside this package's concern
// (spec.md scopes source parsing out of THE CORE); internal/analyzer only
// defines the Driver contract and a minimal concrete walker good enough to
// exercise it end to end.
package analyzer

import (
	"github.com/slackhq/hakana-sub000/internal/codeinfo"
	"github.com/slackhq/hakana-sub000/internal/dataflow"
	"github.com/slackhq/hakana-sub000/internal/diagnostics"
	"github.com/slackhq/hakana-sub000/internal/reconciler"
	"github.com/slackhq/hakana-sub000/internal/ttype"
)

// Driver is the set of hook points spec.md §6.1 expects an AST walker to
// call into while it descends a source file. It is an interface (rather
// than a concrete struct the walker must embed) so that the scripted
// walker in script.go, and any real future parser-driven walker, can share
// the same engine without this package depending on either.
type Driver interface {
	// AnalyzeExpression types one expression node, given the types
	// already bound for the variables in scope.
	AnalyzeExpression(ctx *Context, expr Expression) *ttype.Union

	// AnalyzeCall resolves one call expression: its callee's declared
	// signature against the statically known argument types.
	AnalyzeCall(ctx *Context, call CallExpression) *ttype.Union

	// ReconcileKeyedTypes narrows every variable named in assertions
	// in place on ctx.Scope, per spec.md §4.5.
	ReconcileKeyedTypes(ctx *Context, assertions map[string][][]reconciler.Assertion, taintOps []reconciler.TaintOp)

	// IntersectUnionTypes and CombineUnionTypes expose the comparator's
	// and combiner's entry points directly, for walker code that needs
	// to fold types across branches (e.g. an if/else's join point)
	// without going through a full AnalyzeExpression call.
	IntersectUnionTypes(a, b *ttype.Union) (*ttype.Union, bool)
	CombineUnionTypes(a, b *ttype.Union) *ttype.Union
}

// Engine is the concrete Driver: the codebase plus the injected
// combine/intersect/contained-by callbacks each sub-package needs, wired
// once here so the walker never has to import combiner/comparator/template
// directly.
type Engine struct {
	Codebase     *codeinfo.Codebase
	Combine      func(a, b *ttype.Union, cb *codeinfo.Codebase) *ttype.Union
	Intersect    func(a, b *ttype.Union, cb *codeinfo.Codebase) (*ttype.Union, bool)
	IsContainedBy func(a, b ttype.Atomic) bool

	// Graph accumulates provenance edges as AnalyzeExpression/AnalyzeCall
	// run; a parallel run gives each worker its own Graph and merges them
	// with dataflow.Graph.Merge after the join (parallel.go).
	Graph *dataflow.Graph
	// Issues accumulates diagnostics, filtered through the codebase's
	// per-function suppression list before being appended (spec.md §7).
	Issues []diagnostics.Issue
}

// NewEngine builds an Engine ready to drive analysis over cb.
func NewEngine(cb *codeinfo.Codebase, combine func(a, b *ttype.Union, cb *codeinfo.Codebase) *ttype.Union, intersect func(a, b *ttype.Union, cb *codeinfo.Codebase) (*ttype.Union, bool), isContainedBy func(a, b ttype.Atomic) bool) *Engine {
	return &Engine{
		Codebase:      cb,
		Combine:       combine,
		Intersect:     intersect,
		IsContainedBy: isContainedBy,
		Graph:         dataflow.NewGraph(),
	}
}

// reconcilerDriver lazily builds the reconciler.Driver wrapping this
// engine's codebase/containment callback, matching the same
// function-injection pattern internal/reconciler itself uses.
func (e *Engine) reconcilerDriver() *reconciler.Driver {
	return &reconciler.Driver{Codebase: e.Codebase, IsContainedBy: e.IsContainedBy, Graph: e.Graph}
}

// ReconcileKeyedTypes implements Driver.
func (e *Engine) ReconcileKeyedTypes(ctx *Context, assertions map[string][][]reconciler.Assertion, taintOps []reconciler.TaintOp) {
	rc := reconciler.NewContext()
	rc.VarsInScope = ctx.Scope.Vars
	rc.InsideLoop = ctx.InsideLoop
	rc.Pos = ctx.Pos.Start.String()

	changed := make(map[string]bool)
	combine := func(a, b *ttype.Union, cb *codeinfo.Codebase) *ttype.Union { return e.Combine(a, b, cb) }
	e.reconcilerDriver().ReconcileKeyedTypes(assertions, rc, changed, combine, taintOps)
}

// IntersectUnionTypes implements Driver.
func (e *Engine) IntersectUnionTypes(a, b *ttype.Union) (*ttype.Union, bool) {
	return e.Intersect(a, b, e.Codebase)
}

// CombineUnionTypes implements Driver.
func (e *Engine) CombineUnionTypes(a, b *ttype.Union) *ttype.Union {
	return e.Combine(a, b, e.Codebase)
}

// recordIssue appends iss unless the enclosing function-like suppresses
// its kind (spec.md §7's suppression rule).
func (e *Engine) recordIssue(fn *codeinfo.FunctionLikeInfo, iss diagnostics.Issue) {
	if fn != nil && fn.SuppressedIssues != nil {
		if _, suppressed := fn.SuppressedIssues[iss.Kind.String()]; suppressed {
			return
		}
	}
	e.Issues = append(e.Issues, iss)
}

// fallbackMixed is the type substituted for an expression whose real type
// could not be determined, so analysis can continue past a type error
// instead of aborting (spec.md §7).
func fallbackMixed() *ttype.Union {
	return ttype.New(ttype.MixedWithFlags{Any: true})
}
