package reconciler

import "github.com/slackhq/hakana-sub000/internal/ttype"

// Context is the narrowable slice of scope state ReconcileKeyedTypes reads
// and writes: the type each variable currently holds. A real analyzer
// embeds this inside a richer scope/context type; the reconciler only
// needs this much.
type Context struct {
	VarsInScope map[string]*ttype.Union
	InsideLoop  bool

	// Pos names whatever statement/expression is driving the current
	// narrowing pass, mirroring analyzer.Context.Pos — ReconcileKeyedTypes
	// uses it to build the dataflow.NodeId a changed key's guard edge
	// attaches to.
	Pos string
}

// NewContext returns an empty Context.
func NewContext() *Context {
	return &Context{VarsInScope: make(map[string]*ttype.Union)}
}
