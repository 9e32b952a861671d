package analyzer

import (
	"github.com/slackhq/hakana-sub000/internal/pos"
	"github.com/slackhq/hakana-sub000/internal/reconciler"
	"github.com/slackhq/hakana-sub000/internal/ttype"
)

// Step is one instruction of a Script: the tiny in-memory "program" this
// package's scripted walker drives the Driver over. It stands in for the
// real statement/expression AST a parser would hand the engine, scoped
// down to just the shapes needed to exercise every Driver hook in tests
// and in the CLI demo (spec.md §6's "plumbing" is explicitly out of
// scope; this is only enough plumbing to have a caller at all).
type Step struct {
	// Bind declares a variable with a literal's static type, as if from
	// `$x = <literal>;`.
	Bind *BindStep
	// If runs assertions against the current scope (as if from
	// `if (<cond>) { ... }`), reconciling Then/Else in forked child
	// scopes, then combines the two branches' bindings for VarId back
	// into the parent scope — the walker's join point.
	If *IfStep
	// Call types a call expression and binds its result to a variable.
	Call *CallStep
}

type BindStep struct {
	VarId string
	Type  *ttype.Union
}

type IfStep struct {
	Assertions map[string][][]reconciler.Assertion
	VarId      string   // the variable whose join-point type gets recorded
	Span       pos.Span // the `if` condition's span, for dataflow node naming
}

type CallStep struct {
	VarId string
	Expr  CallExpression
}

// Script is an ordered list of Steps, run single-threaded top to bottom
// against one Context.
type Script []Step

// Run drives e's Driver hooks over every step of s, returning the final
// scope's bindings. This is the engine's minimal concrete walker: real
// integration would replace Script/Step with whatever a real parser's AST
// looks like and call the same Driver methods from its own traversal.
func Run(e *Engine, ctx *Context, s Script) *Context {
	for _, step := range s {
		switch {
		case step.Bind != nil:
			ctx.Scope.Vars[step.Bind.VarId] = step.Bind.Type
		case step.If != nil:
			runIf(e, ctx, step.If)
		case step.Call != nil:
			ctx.Scope.Vars[step.Call.VarId] = e.AnalyzeCall(ctx, step.Call.Expr)
		}
	}
	return ctx
}

func runIf(e *Engine, ctx *Context, step *IfStep) {
	thenCtx := ctx.WithNewScope()
	thenCtx.Pos = step.Span
	e.ReconcileKeyedTypes(thenCtx, step.Assertions, nil)

	elseCtx := ctx.WithNewScope()
	elseCtx.Pos = step.Span
	negated := negateAssertionGroups(step.Assertions)
	e.ReconcileKeyedTypes(elseCtx, negated, nil)

	if step.VarId == "" {
		return
	}
	thenType, _ := thenCtx.Scope.Lookup(step.VarId)
	elseType, _ := elseCtx.Scope.Lookup(step.VarId)
	if thenType == nil {
		ctx.Scope.Vars[step.VarId] = elseType
		return
	}
	if elseType == nil {
		ctx.Scope.Vars[step.VarId] = thenType
		return
	}
	ctx.Scope.Vars[step.VarId] = e.CombineUnionTypes(thenType, elseType)
}

// negateAssertionGroups builds the else-branch assertions from an
// if-branch's OR-of-AND groups by De Morgan negation of each leaf
// assertion kind, falling back to dropping a group's assertions
// entirely when a kind has no defined negation (e.g. RemoveTaints,
// which isn't a narrowing assertion to begin with).
func negateAssertionGroups(groups map[string][][]reconciler.Assertion) map[string][][]reconciler.Assertion {
	out := make(map[string][][]reconciler.Assertion, len(groups))
	for key, ors := range groups {
		var negatedOrs [][]reconciler.Assertion
		for _, and := range ors {
			var negatedAnd []reconciler.Assertion
			for _, a := range and {
				if neg, ok := negate(a); ok {
					negatedAnd = append(negatedAnd, neg)
				}
			}
			if len(negatedAnd) > 0 {
				negatedOrs = append(negatedOrs, negatedAnd)
			}
		}
		if len(negatedOrs) > 0 {
			out[key] = negatedOrs
		}
	}
	return out
}

func negate(a reconciler.Assertion) (reconciler.Assertion, bool) {
	switch a.Kind {
	case reconciler.Truthy:
		return reconciler.Assertion{Kind: reconciler.Falsy}, true
	case reconciler.Falsy:
		return reconciler.Assertion{Kind: reconciler.Truthy}, true
	case reconciler.IsIsset:
		return reconciler.Assertion{Kind: reconciler.IsNotIsset}, true
	case reconciler.IsNotIsset:
		return reconciler.Assertion{Kind: reconciler.IsIsset}, true
	case reconciler.IsType:
		return reconciler.Assertion{Kind: reconciler.IsNotType, Type: a.Type}, true
	case reconciler.IsNotType:
		return reconciler.Assertion{Kind: reconciler.IsType, Type: a.Type}, true
	case reconciler.HasArrayKey:
		return reconciler.Assertion{Kind: reconciler.DoesNotHaveArrayKey, Key: a.Key}, true
	case reconciler.DoesNotHaveArrayKey:
		return reconciler.Assertion{Kind: reconciler.HasArrayKey, Key: a.Key}, true
	case reconciler.NonEmptyCountable:
		return reconciler.Assertion{Kind: reconciler.EmptyCountable}, true
	case reconciler.EmptyCountable:
		return reconciler.Assertion{Kind: reconciler.NonEmptyCountable}, true
	default:
		return reconciler.Assertion{}, false
	}
}
