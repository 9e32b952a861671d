// Package callsite implements the call-site resolver (spec.md §4.6): given
// a function/method's declared parameters and the argument types at a
// call, it runs template inference (standin pass over arguments, then
// inferred-replace over the return type) and produces the call's
// materialized argument and return types.
package callsite

import (
	"github.com/slackhq/hakana-sub000/internal/codeinfo"
	"github.com/slackhq/hakana-sub000/internal/reconciler"
	"github.com/slackhq/hakana-sub000/internal/symbol"
	"github.com/slackhq/hakana-sub000/internal/template"
	"github.com/slackhq/hakana-sub000/internal/ttype"
)

// Resolver bundles the callbacks needed to run inference without this
// package importing the comparator/combiner directly (same injection
// pattern as internal/template/internal/reconciler).
type Resolver struct {
	Codebase  *codeinfo.Codebase
	Combine   template.CombineFunc
	Intersect template.IntersectFunc
}

// Argument is one call-site argument: its static type, its 0-based
// position (nil for a named/spread argument the resolver can't position),
// and whether it is itself a closure literal (closures are matched last —
// handle_closure_arg in Hakana runs only once every other argument has
// already contributed its bounds, since a closure's inferred parameter
// types often depend on templates fixed by sibling arguments).
type Argument struct {
	Type      *ttype.Union
	Offset    *int
	IsClosure bool
}

// Call is everything the resolver needs about one call: the callee's
// declared parameters/return type/template declarations, the calling
// class (for the "skip own template" rule), and the actual arguments.
type Call struct {
	CallingClass  *codeinfo.ClassLikeInfo
	Params        []ttype.Parameter
	ReturnType    *ttype.Union
	Templates     []TemplateDeclaration
	Arguments     []Argument
	// Instance is the receiver type for a method call, used to bind the
	// callee class's own template parameters from the instance's type
	// arguments (map_class_generic_params).
	Instance *ttype.NamedObject
}

// TemplateDeclaration is one of the callee's own declared template
// parameters, in declaration order.
type TemplateDeclaration struct {
	Name           symbol.SymbolId
	DefiningEntity symbol.GenericParent
	AsType         *ttype.Union
}

// Resolved is the outcome of resolving one call.
type Resolved struct {
	Result       *template.Result
	ArgumentTypes []*ttype.Union // per-parameter materialized types, same order as Call.Params
	ReturnType   *ttype.Union
}

// Resolve implements spec.md §4.6's pipeline: map the callee's own class
// generic params from the receiver, declare the callee's template
// parameters, run the standin replacer over every non-closure argument
// first and closure arguments last, give each declared template that
// received no lower bound its "as" type as a bound, then materialize the
// return type via the inferred replacer.
func (r *Resolver) Resolve(call Call) Resolved {
	result := template.NewResult()

	for _, td := range call.Templates {
		result.DeclareTemplate(td.Name, td.DefiningEntity, td.AsType)
	}
	mapClassGenericParams(result, call.CallingClass, call.Instance)

	sr := &template.StandinReplacer{Codebase: r.Codebase, Combine: r.Combine, Intersect: r.Intersect}

	ordered := orderArgumentsNonClosureFirst(call.Arguments)
	argTypes := make([]*ttype.Union, len(call.Params))
	for _, oa := range ordered {
		if oa.index >= len(call.Params) {
			continue
		}
		p := call.Params[oa.index]
		materialized := sr.Replace(p.Type, result, oa.arg.Type, oa.arg.Offset, call.CallingClass, false, 0)
		argTypes[oa.index] = materialized
	}

	refineTemplateResultForFunctionlike(result, call.Templates)

	ir := &template.InferredReplacer{Codebase: r.Codebase, Combine: r.Combine}
	returnType := call.ReturnType
	if returnType != nil {
		returnType = ir.Replace(returnType, result)
	}

	return Resolved{Result: result, ArgumentTypes: argTypes, ReturnType: returnType}
}

type orderedArg struct {
	index int
	arg   Argument
}

// orderArgumentsNonClosureFirst implements Hakana's handle_closure_arg
// ordering: every non-closure argument is matched against its parameter
// before any closure argument, so a closure's parameter/return templates
// can already see bounds fixed by sibling arguments.
func orderArgumentsNonClosureFirst(args []Argument) []orderedArg {
	var nonClosures, closures []orderedArg
	for i, a := range args {
		if a.IsClosure {
			closures = append(closures, orderedArg{i, a})
		} else {
			nonClosures = append(nonClosures, orderedArg{i, a})
		}
	}
	return append(nonClosures, closures...)
}

// mapClassGenericParams binds the callee class's own declared template
// parameters (map_class_generic_params) from the receiver instance's type
// arguments, e.g. calling a method on a `Container<int>` binds the
// class's `T` to `int` before resolving the method's own templates.
func mapClassGenericParams(result *template.Result, callingClass *codeinfo.ClassLikeInfo, instance *ttype.NamedObject) {
	if callingClass == nil || instance == nil {
		return
	}
	names := callingClass.TemplateTypes.Names()
	for i, name := range names {
		if i >= len(instance.TypeParams) {
			break
		}
		entries := callingClass.TemplateTypes.Entries(name)
		if len(entries) == 0 {
			continue
		}
		entity := entries[0].DefiningEntity
		if _, declared := result.IsDeclared(name, entity); !declared {
			result.DeclareTemplate(name, entity, entries[0].AsType)
		}
		result.AddLowerBound(name, entity, template.Bound{BoundType: instance.TypeParams[i], AppearanceDepth: 0})
	}
}

// refineTemplateResultForFunctionlike gives every declared template that
// received no lower bound at all a trivial bound equal to its own "as"
// type, so the inferred replacer has something to fall back on instead of
// leaving a bare GenericParam in the materialized return type.
func refineTemplateResultForFunctionlike(result *template.Result, templates []TemplateDeclaration) {
	for _, td := range templates {
		if len(result.LowerBounds(td.Name, td.DefiningEntity)) > 0 {
			continue
		}
		asType := td.AsType
		if asType == nil {
			asType = ttype.New(ttype.Mixed{})
		}
		result.AddLowerBound(td.Name, td.DefiningEntity, template.Bound{BoundType: asType, AppearanceDepth: 0})
	}
}

// RemovedTaintsForReturnTrue builds the reconciler.TaintOp list for a call
// whose FunctionLikeInfo declares that returning a given literal removes
// specific taints from a specific argument's flow (Hakana's
// removed_taints_when_returning_true, e.g. a `hash_equals`-style
// constant-time-compare helper clears a taint on its first argument when
// it returns `true`). argVarIds maps parameter offset to the caller's
// variable id for that argument.
func RemovedTaintsForReturnTrue(info *codeinfo.FunctionLikeInfo, argVarIds map[int]string) []reconciler.TaintOp {
	if info == nil {
		return nil
	}
	var ops []reconciler.TaintOp
	for offset, taints := range info.RemovedTaintsWhenReturningTrue {
		varId, ok := argVarIds[offset]
		if !ok {
			continue
		}
		ops = append(ops, reconciler.TaintOp{Kind: reconciler.TaintOpRemove, VarId: varId, RemovedTaints: taints})
	}
	return ops
}

// InoutResult is the narrowed-then-restored type pair for an `inout`
// parameter: Before is the type the argument variable had going in (after
// the parameter's own declared type is intersected in, as a precondition
// check); After is the type to assign back to the caller's variable once
// the call returns.
type InoutResult struct {
	Before *ttype.Union
	After  *ttype.Union
}

// HandlePossiblyMatchingInoutParam materializes the post-call type for an
// `inout` parameter: the parameter's own declared type, standin-replaced
// against the same template result used for the rest of the call, since
// an inout parameter's outgoing type can itself mention the callee's
// templates (e.g. a `function f(inout vec<T> $x): void` widened by a call
// that also infers T elsewhere).
func (r *Resolver) HandlePossiblyMatchingInoutParam(param ttype.Parameter, argType *ttype.Union, result *template.Result) InoutResult {
	sr := &template.StandinReplacer{Codebase: r.Codebase, Combine: r.Combine, Intersect: r.Intersect}
	after := sr.Replace(param.Type, result, argType, nil, nil, false, 0)
	return InoutResult{Before: argType, After: after}
}
