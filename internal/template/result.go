// Package template implements template inference (spec.md §4.4): the
// standin replacer, which accumulates lower/upper bounds for template
// variables from argument types, and the inferred replacer, which
// materialises a type by substituting the most specific accumulated
// bound.
package template

import (
	"github.com/slackhq/hakana-sub000/internal/codeinfo"
	"github.com/slackhq/hakana-sub000/internal/pos"
	"github.com/slackhq/hakana-sub000/internal/symbol"
	"github.com/slackhq/hakana-sub000/internal/ttype"
)

// Bound is one accumulated inference fact for a template variable
// (spec.md §3.4's TemplateBound).
type Bound struct {
	BoundType             *ttype.Union
	AppearanceDepth       int
	ArgOffset             *int
	EqualityBoundClasslike *symbol.SymbolId
	Pos                   pos.Span
}

// entityBounds maps a defining entity to its accumulated bounds for one
// template name.
type entityBounds map[string][]Bound

func entityKey(e symbol.GenericParent) string { return e.String() }

// Result is TemplateResult (spec.md §3.4): the per-call inference state.
type Result struct {
	// TemplateTypes: name -> declared (defining entity, upper bound) pairs,
	// insertion-ordered since declaration order is observable.
	templateNames []symbol.SymbolId
	templateTypes map[symbol.SymbolId][]TemplateDecl

	lowerBounds map[symbol.SymbolId]entityBounds
	upperBounds map[symbol.SymbolId]map[string]Bound

	UpperBoundsUnintersectableTypes []*ttype.Union

	// Readonly suppresses bound mutation during nested default resolution
	// (Open Question 1 of spec.md §9 / SPEC_FULL.md §9.4 decision 1).
	Readonly bool
}

// TemplateDecl is one declared template in scope, with its defining
// entity and declared upper ("as") bound.
type TemplateDecl struct {
	DefiningEntity symbol.GenericParent
	AsType         *ttype.Union
}

// NewResult returns an empty TemplateResult.
func NewResult() *Result {
	return &Result{
		templateTypes: make(map[symbol.SymbolId][]TemplateDecl),
		lowerBounds:   make(map[symbol.SymbolId]entityBounds),
		upperBounds:   make(map[symbol.SymbolId]map[string]Bound),
	}
}

// DeclareTemplate registers a template name + defining entity + bound in
// scope for this call, preserving declaration order.
func (r *Result) DeclareTemplate(name symbol.SymbolId, entity symbol.GenericParent, asType *ttype.Union) {
	if _, ok := r.templateTypes[name]; !ok {
		r.templateNames = append(r.templateNames, name)
	}
	r.templateTypes[name] = append(r.templateTypes[name], TemplateDecl{DefiningEntity: entity, AsType: asType})
}

// IsDeclared reports whether (name, entity) is a template in scope for
// this call, returning its declared bound.
func (r *Result) IsDeclared(name symbol.SymbolId, entity symbol.GenericParent) (*ttype.Union, bool) {
	for _, d := range r.templateTypes[name] {
		if symbol.Equal(d.DefiningEntity, entity) {
			return d.AsType, true
		}
	}
	return nil, false
}

// AddLowerBound records a covariant inference fact, deduplicating an
// identical (depth, offset, bound_type key) bound.
func (r *Result) AddLowerBound(name symbol.SymbolId, entity symbol.GenericParent, b Bound) {
	if r.Readonly {
		return
	}
	eb, ok := r.lowerBounds[name]
	if !ok {
		eb = make(entityBounds)
		r.lowerBounds[name] = eb
	}
	key := entityKey(entity)
	for _, existing := range eb[key] {
		if existing.AppearanceDepth == b.AppearanceDepth && samePtrInt(existing.ArgOffset, b.ArgOffset) &&
			ttype.Equals(existing.BoundType, b.BoundType) {
			return
		}
	}
	eb[key] = append(eb[key], b)
}

// LowerBounds returns the accumulated lower bounds for (name, entity).
func (r *Result) LowerBounds(name symbol.SymbolId, entity symbol.GenericParent) []Bound {
	eb, ok := r.lowerBounds[name]
	if !ok {
		return nil
	}
	return eb[entityKey(entity)]
}

// SetUpperBound records a contravariant inference fact, intersecting with
// any existing upper bound for the same (name, entity).
func (r *Result) SetUpperBound(name symbol.SymbolId, entity symbol.GenericParent, b Bound, cb *codeinfo.Codebase, intersect func(a, b *ttype.Union, cb *codeinfo.Codebase) (*ttype.Union, bool)) {
	if r.Readonly {
		return
	}
	m, ok := r.upperBounds[name]
	if !ok {
		m = make(map[string]Bound)
		r.upperBounds[name] = m
	}
	key := entityKey(entity)
	existing, has := m[key]
	if !has {
		m[key] = b
		return
	}
	if merged, ok := intersect(existing.BoundType, b.BoundType, cb); ok {
		existing.BoundType = merged
		m[key] = existing
		return
	}
	r.UpperBoundsUnintersectableTypes = append(r.UpperBoundsUnintersectableTypes, existing.BoundType, b.BoundType)
	m[key] = Bound{BoundType: ttype.New(ttype.MixedWithFlags{Any: true}), AppearanceDepth: b.AppearanceDepth}
}

func (r *Result) UpperBound(name symbol.SymbolId, entity symbol.GenericParent) (Bound, bool) {
	m, ok := r.upperBounds[name]
	if !ok {
		return Bound{}, false
	}
	b, ok := m[entityKey(entity)]
	return b, ok
}

// Clone returns a deep-enough copy of r: declared templates and
// accumulated bounds are copied into fresh slices/maps, so mutating the
// clone (e.g. marking it Readonly and standin-replacing through it) can
// never be observed by r. Used by ResolveDefault's read-only first pass.
func (r *Result) Clone() *Result {
	clone := &Result{
		templateNames: append([]symbol.SymbolId(nil), r.templateNames...),
		templateTypes: make(map[symbol.SymbolId][]TemplateDecl, len(r.templateTypes)),
		lowerBounds:   make(map[symbol.SymbolId]entityBounds, len(r.lowerBounds)),
		upperBounds:   make(map[symbol.SymbolId]map[string]Bound, len(r.upperBounds)),
	}
	for name, decls := range r.templateTypes {
		clone.templateTypes[name] = append([]TemplateDecl(nil), decls...)
	}
	for name, eb := range r.lowerBounds {
		cb := make(entityBounds, len(eb))
		for entity, bounds := range eb {
			cb[entity] = append([]Bound(nil), bounds...)
		}
		clone.lowerBounds[name] = cb
	}
	for name, m := range r.upperBounds {
		cm := make(map[string]Bound, len(m))
		for entity, b := range m {
			cm[entity] = b
		}
		clone.upperBounds[name] = cm
	}
	clone.UpperBoundsUnintersectableTypes = append([]*ttype.Union(nil), r.UpperBoundsUnintersectableTypes...)
	return clone
}

func samePtrInt(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
