package analyzer

import (
	"github.com/slackhq/hakana-sub000/internal/callsite"
	"github.com/slackhq/hakana-sub000/internal/codeinfo"
	"github.com/slackhq/hakana-sub000/internal/dataflow"
	"github.com/slackhq/hakana-sub000/internal/diagnostics"
	"github.com/slackhq/hakana-sub000/internal/pos"
	"github.com/slackhq/hakana-sub000/internal/template"
	"github.com/slackhq/hakana-sub000/internal/ttype"
)

// Expression is the minimal node shape AnalyzeExpression needs: a kind tag
// plus the handful of payload fields each kind uses. This stands in for
// the real AST node a parser-driven walker would pass (spec.md §6
// deliberately leaves parsing/AST shape outside the engine's concern); it
// is exactly as rich as script.go's scripted walker needs to be and no
// richer.
type Expression struct {
	Kind ExprKind
	Span pos.Span

	VarId   string      // Kind == ExprVar
	Literal *ttype.Union // Kind == ExprLiteral: the literal's own static type
}

type ExprKind int

const (
	ExprVar ExprKind = iota
	ExprLiteral
)

// AnalyzeExpression implements Driver. A variable reference looks its
// type up in the current scope, defaulting to mixed (with a
// NonExistentVariable issue recorded, not panicked — an unbound variable reference is a source
// program bug, not an engine invariant violation) when it isn't bound; a
// literal expression carries its own static type.
func (e *Engine) AnalyzeExpression(ctx *Context, expr Expression) *ttype.Union {
	switch expr.Kind {
	case ExprLiteral:
		return expr.Literal
	case ExprVar:
		if t, ok := ctx.Scope.Lookup(expr.VarId); ok {
			return t
		}
		e.recordIssue(nil, diagnostics.Issue{
			Kind:     diagnostics.NonExistentVariable,
			Severity: diagnostics.SeverityError,
			Message:  "unknown variable: $" + expr.VarId,
			Span:     expr.Span,
		})
		return fallbackMixed()
	default:
		return fallbackMixed()
	}
}

// CallExpression is the minimal call-site shape AnalyzeCall needs: the
// callee's declared signature (looked up by the walker from
// codeinfo.Codebase, not by this package) and the statically typed
// arguments at this call.
type CallExpression struct {
	Span         pos.Span
	CallingClass *codeinfo.ClassLikeInfo
	Instance     *ttype.NamedObject
	Params       []ttype.Parameter
	ReturnType   *ttype.Union
	Templates    []callsite.TemplateDeclaration
	Arguments    []callsite.Argument
	ArgVarIds    map[int]string // argument offset -> caller variable id, for taint-op wiring
	Callee       *codeinfo.FunctionLikeInfo
}

// AnalyzeCall implements Driver: it runs the call-site resolver
// (internal/callsite) to materialize the call's return type, records a
// provenance edge per argument->return flow, and wires in any
// removed-taints-when-returning-true ops the callee declares.
func (e *Engine) AnalyzeCall(ctx *Context, call CallExpression) *ttype.Union {
	resolver := &callsite.Resolver{
		Codebase:  e.Codebase,
		Combine:   template.CombineFunc(e.Combine),
		Intersect: template.IntersectFunc(e.Intersect),
	}
	resolved := resolver.Resolve(callsite.Call{
		CallingClass: call.CallingClass,
		Instance:     call.Instance,
		Params:       call.Params,
		ReturnType:   call.ReturnType,
		Templates:    call.Templates,
		Arguments:    call.Arguments,
	})

	returnNode := dataflow.NodeId{Label: "call-return", Pos: call.Span.Start.String()}
	e.Graph.AddNode(dataflow.Node{Id: returnNode, Kind: dataflow.KindReturn})
	for offset, varId := range call.ArgVarIds {
		if offset >= len(call.Arguments) {
			continue
		}
		argNode := dataflow.NodeId{Label: varId, Pos: call.Span.Start.String()}
		e.Graph.AddNode(dataflow.Node{Id: argNode, Kind: dataflow.KindVariable})
		e.Graph.AddPath(argNode, returnNode, dataflow.Default, "", nil)
	}

	if call.Callee != nil {
		ops := callsite.RemovedTaintsForReturnTrue(call.Callee, call.ArgVarIds)
		for _, op := range ops {
			node := dataflow.NodeId{Label: op.VarId, Pos: call.Span.Start.String()}
			e.Graph.AddNode(dataflow.Node{Id: node, Kind: dataflow.KindVariable})
			e.Graph.AddPath(node, node, dataflow.Default, "", op.RemovedTaints)
		}
	}

	if resolved.ReturnType == nil {
		return fallbackMixed()
	}
	return resolved.ReturnType
}
