package analyzer

import (
	"github.com/slackhq/hakana-sub000/internal/pos"
	"github.com/slackhq/hakana-sub000/internal/ttype"
)

// Scope holds the variable types visible at one point in a walk, chained
// to its parent the way the teacher's checker.Scope chains lexical scopes.
// Unlike checker.Scope, a Scope here only ever stores value types (no
// separate type-alias/namespace bindings), since that symbol-level lookup
// belongs to codeinfo.Codebase, not to the per-walk scope chain.
type Scope struct {
	Vars   map[string]*ttype.Union
	parent *Scope
}

// NewScope creates a root scope with no parent.
func NewScope() *Scope {
	return &Scope{Vars: make(map[string]*ttype.Union)}
}

// WithNewScope forks a child scope that inherits a snapshot of the
// parent's bindings, mirroring checker.Context.WithNewScope: mutations to
// the child (e.g. from ReconcileKeyedTypes narrowing a var inside an if
// branch) never leak back up to the parent.
func (s *Scope) WithNewScope() *Scope {
	child := &Scope{Vars: make(map[string]*ttype.Union, len(s.Vars)), parent: s}
	for k, v := range s.Vars {
		child.Vars[k] = v
	}
	return child
}

// Lookup walks up the scope chain for varId.
func (s *Scope) Lookup(varId string) (*ttype.Union, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if t, ok := cur.Vars[varId]; ok {
			return t, true
		}
	}
	return nil, false
}

// Context is the per-call state threaded through a walk: the current
// scope, whether the walk is inside a loop (the reconciler treats loop
// bodies specially, per spec.md §4.5's edge cases around re-entrant
// narrowing), and the run/worker identifiers used to correlate issues and
// dataflow nodes back to whichever parallel worker found them.
type Context struct {
	Scope       *Scope
	InsideLoop  bool
	RunID       RunID
	WorkerID    WorkerID
	CurrentFunc string // fully-qualified name, for AnalysisError context

	// Pos is the source span of whatever statement/expression is driving
	// the walk right now (e.g. the `if` an IfStep came from). ReconcileKeyedTypes
	// uses it to name the dataflow nodes a narrowing pass creates, the same
	// way AnalyzeCall uses CallExpression.Span for its own nodes.
	Pos pos.Span
}

// WithNewScope returns a Context whose Scope is a child of ctx.Scope,
// everything else carried over unchanged — the same shape as
// checker.Context.WithNewScope.
func (ctx *Context) WithNewScope() *Context {
	return &Context{
		Scope:       ctx.Scope.WithNewScope(),
		InsideLoop:  ctx.InsideLoop,
		RunID:       ctx.RunID,
		WorkerID:    ctx.WorkerID,
		CurrentFunc: ctx.CurrentFunc,
		Pos:         ctx.Pos,
	}
}

// WithInsideLoop returns a Context with InsideLoop set, sharing the same
// Scope (loop bodies reconcile in place, they don't fork a new scope).
func (ctx *Context) WithInsideLoop(inside bool) *Context {
	next := *ctx
	next.InsideLoop = inside
	return &next
}
