package analyzer

import (
	"strconv"

	"github.com/slackhq/hakana-sub000/internal/pos"
	"github.com/slackhq/hakana-sub000/internal/symbol"
)

// DefaultSpan is substituted for an AnalysisError that has no meaningful
// source location (e.g. a cross-file invariant violation discovered only
// after every file in a run has been merged).
var DefaultSpan = pos.Default

// AnalysisError is the engine's internal-invariant-violation error
// (spec.md §7), distinct from a diagnostics.Issue: an Issue is a type
// error the source program actually committed and the engine recovers
// from by substituting mixed; an AnalysisError means the engine itself
// found a contradiction it has no recovery path for (a symbol the
// populator should have resolved, a template that escaped refinement). As
// in the teacher's internal/checker/error.go, each kind is its own small
// struct with its own Span/Message rather than one stringly-typed error.
type AnalysisError interface {
	error
	isAnalysisError()
	Span() pos.Span
}

func (e SymbolNotFoundError) isAnalysisError()          {}
func (e UnresolvedReferenceError) isAnalysisError()     {}
func (e CyclicTemplateBoundError) isAnalysisError()     {}
func (e WorkerPanicError) isAnalysisError()             {}

// SymbolNotFoundError means the codebase's symbol table was consulted for
// an id that population should have already registered.
type SymbolNotFoundError struct {
	Id   symbol.SymbolId
	span pos.Span
}

func NewSymbolNotFoundError(id symbol.SymbolId, span pos.Span) SymbolNotFoundError {
	return SymbolNotFoundError{Id: id, span: span}
}
func (e SymbolNotFoundError) Span() pos.Span { return e.span }
func (e SymbolNotFoundError) Error() string  { return e.Message() }
func (e SymbolNotFoundError) Message() string {
	return "symbol not found in codebase: #" + strconv.FormatUint(uint64(e.Id), 10)
}

// UnresolvedReferenceError means a ttype.ReferenceAtomic (a placeholder
// the type parser emits for a name it hasn't looked up yet) survived past
// symbol population, where every reference should have already been
// replaced with a concrete NamedObject/TypeDefinition expansion.
type UnresolvedReferenceError struct {
	Name string
	span pos.Span
}

func NewUnresolvedReferenceError(name string, span pos.Span) UnresolvedReferenceError {
	return UnresolvedReferenceError{Name: name, span: span}
}
func (e UnresolvedReferenceError) Span() pos.Span { return e.span }
func (e UnresolvedReferenceError) Error() string   { return e.Message() }
func (e UnresolvedReferenceError) Message() string {
	return "unresolved type reference after population: " + e.Name
}

// CyclicTemplateBoundError means template bound resolution (internal/template)
// looped back to a template it had already started resolving, which the
// standin/inferred replacers assume cannot happen for a well-formed
// codebase (spec.md §4.4's template bounds are expected to be acyclic).
type CyclicTemplateBoundError struct {
	Name symbol.SymbolId
}

func NewCyclicTemplateBoundError(name symbol.SymbolId) CyclicTemplateBoundError {
	return CyclicTemplateBoundError{Name: name}
}
func (e CyclicTemplateBoundError) Span() pos.Span { return DefaultSpan }
func (e CyclicTemplateBoundError) Error() string  { return e.Message() }
func (e CyclicTemplateBoundError) Message() string {
	return "cyclic template bound involving #" + strconv.FormatUint(uint64(e.Name), 10)
}

// WorkerPanicError wraps a recovered panic from one parallel worker
// (parallel.go), so a single file's internal invariant violation surfaces
// as an ordinary AnalysisError rather than taking down the whole run.
type WorkerPanicError struct {
	Worker WorkerID
	Path   string
	Cause  any
}

func (e WorkerPanicError) Span() pos.Span { return DefaultSpan }
func (e WorkerPanicError) Error() string  { return e.Message() }
func (e WorkerPanicError) Message() string {
	return "worker " + string(e.Worker) + " panicked analyzing " + e.Path
}
