// Package codeinfo is the symbol table the type engine consumes: classlike
// metadata, function signatures, type aliases and constants, harvested by
// an external reflector and finished by PopulateCodebase (spec.md §3.5,
// §6.2).
package codeinfo

import (
	"github.com/slackhq/hakana-sub000/internal/set"
	"github.com/slackhq/hakana-sub000/internal/symbol"
	"github.com/slackhq/hakana-sub000/internal/ttype"
)

// ClassKind distinguishes the classlike flavors Hack supports.
type ClassKind int

const (
	ClassKindClass ClassKind = iota
	ClassKindInterface
	ClassKindTrait
	ClassKindEnum
	ClassKindEnumClass
)

// Variance records a template parameter's declared variance.
type Variance int

const (
	Invariant Variance = iota
	Covariant
	Contravariant
)

// TemplateTypes is the ordered declared-template map of a classlike or
// function: name -> its defining entity plus declared "as" bound. Ordered
// because declaration order is observable (spec.md §9 "order-preserving
// map... template_types").
type TemplateTypes struct {
	names  []symbol.SymbolId
	bounds map[symbol.SymbolId][]TemplateEntry
}

// TemplateEntry pairs a defining entity with its declared upper bound.
type TemplateEntry struct {
	DefiningEntity symbol.GenericParent
	AsType         *ttype.Union
}

func NewTemplateTypes() *TemplateTypes {
	return &TemplateTypes{bounds: make(map[symbol.SymbolId][]TemplateEntry)}
}

func (t *TemplateTypes) Add(name symbol.SymbolId, entry TemplateEntry) {
	if _, ok := t.bounds[name]; !ok {
		t.names = append(t.names, name)
	}
	t.bounds[name] = append(t.bounds[name], entry)
}

func (t *TemplateTypes) Names() []symbol.SymbolId { return t.names }

func (t *TemplateTypes) Entries(name symbol.SymbolId) []TemplateEntry { return t.bounds[name] }

// ExtendedParams is ClassLikeInfo.template_extended_params: for an
// ancestor class, the concrete union substituted for each of its declared
// template names along this class's inheritance path.
type ExtendedParams struct {
	// perAncestor[ancestor][templateName] = substituted union.
	perAncestor map[symbol.SymbolId]map[symbol.SymbolId]*ttype.Union
}

func NewExtendedParams() *ExtendedParams {
	return &ExtendedParams{perAncestor: make(map[symbol.SymbolId]map[symbol.SymbolId]*ttype.Union)}
}

func (e *ExtendedParams) Set(ancestor, templateName symbol.SymbolId, u *ttype.Union) {
	m, ok := e.perAncestor[ancestor]
	if !ok {
		m = make(map[symbol.SymbolId]*ttype.Union)
		e.perAncestor[ancestor] = m
	}
	m[templateName] = u
}

func (e *ExtendedParams) Get(ancestor, templateName symbol.SymbolId) (*ttype.Union, bool) {
	m, ok := e.perAncestor[ancestor]
	if !ok {
		return nil, false
	}
	u, ok := m[templateName]
	return u, ok
}

func (e *ExtendedParams) Ancestors() []symbol.SymbolId {
	out := make([]symbol.SymbolId, 0, len(e.perAncestor))
	for a := range e.perAncestor {
		out = append(out, a)
	}
	return out
}

// MethodInfo describes one declared or inherited method.
type MethodInfo struct {
	Name           symbol.SymbolId
	Params         []ttype.Parameter
	ReturnType     *ttype.Union
	TemplateTypes  *TemplateTypes
	IsStatic       bool
	IsAbstract     bool
	IsFinal        bool
	Visibility     Visibility
}

// Visibility mirrors Hack's member visibility.
type Visibility int

const (
	Public Visibility = iota
	Protected
	Private
)

// PropertyInfo describes one declared or inherited property.
type PropertyInfo struct {
	Name       symbol.SymbolId
	Type       *ttype.Union
	IsStatic   bool
	Visibility Visibility
}

// ClassLikeInfo is a class/interface/trait/enum/enum-class's metadata,
// fully resolved after PopulateCodebase (spec.md §3.5).
type ClassLikeInfo struct {
	Name       symbol.SymbolId
	Kind       ClassKind
	ParentClass *symbol.SymbolId // nil if none
	ParentInterfaces []symbol.SymbolId // directly extended, interface-side
	DirectImplements []symbol.SymbolId
	UsedTraits []symbol.SymbolId

	TemplateTypes         *TemplateTypes
	TemplateExtendedParams *ExtendedParams
	GenericVariance       map[symbol.SymbolId]Variance

	Methods    map[symbol.SymbolId]*MethodInfo
	Properties map[symbol.SymbolId]*PropertyInfo
	Constants  map[symbol.SymbolId]*ttype.Union
	TypeConstants map[symbol.SymbolId]*ttype.Union

	AppearingMethodIds          map[symbol.SymbolId]symbol.SymbolId
	DeclaringMethodIds          map[symbol.SymbolId]symbol.SymbolId
	PotentialDeclaringMethodIds map[symbol.SymbolId][]symbol.SymbolId
	OverriddenMethodIds         map[symbol.SymbolId][]symbol.SymbolId
	InheritableMethodIds        map[symbol.SymbolId]symbol.SymbolId

	AppearingPropertyIds map[symbol.SymbolId]symbol.SymbolId
	DeclaringPropertyIds map[symbol.SymbolId]symbol.SymbolId

	// Populated by PopulateCodebase: transitive closures.
	AllParentClasses    set.Set[symbol.SymbolId]
	AllParentInterfaces set.Set[symbol.SymbolId]
	AllClassInterfaces  set.Set[symbol.SymbolId]

	populated bool
}

func NewClassLikeInfo(name symbol.SymbolId, kind ClassKind) *ClassLikeInfo {
	return &ClassLikeInfo{
		Name:                        name,
		Kind:                        kind,
		TemplateTypes:               NewTemplateTypes(),
		TemplateExtendedParams:      NewExtendedParams(),
		GenericVariance:             make(map[symbol.SymbolId]Variance),
		Methods:                     make(map[symbol.SymbolId]*MethodInfo),
		Properties:                  make(map[symbol.SymbolId]*PropertyInfo),
		Constants:                   make(map[symbol.SymbolId]*ttype.Union),
		TypeConstants:               make(map[symbol.SymbolId]*ttype.Union),
		AppearingMethodIds:          make(map[symbol.SymbolId]symbol.SymbolId),
		DeclaringMethodIds:          make(map[symbol.SymbolId]symbol.SymbolId),
		PotentialDeclaringMethodIds: make(map[symbol.SymbolId][]symbol.SymbolId),
		OverriddenMethodIds:         make(map[symbol.SymbolId][]symbol.SymbolId),
		InheritableMethodIds:        make(map[symbol.SymbolId]symbol.SymbolId),
		AppearingPropertyIds:        make(map[symbol.SymbolId]symbol.SymbolId),
		DeclaringPropertyIds:        make(map[symbol.SymbolId]symbol.SymbolId),
		AllParentClasses:            set.NewSet[symbol.SymbolId](),
		AllParentInterfaces:         set.NewSet[symbol.SymbolId](),
		AllClassInterfaces:          set.NewSet[symbol.SymbolId](),
	}
}

// FunctionLikeInfo is a plain function's or closure's signature.
type FunctionLikeInfo struct {
	Name                      symbol.SymbolId
	Params                    []ttype.Parameter
	ReturnType                *ttype.Union
	TemplateTypes             *TemplateTypes
	IsFinal                   bool
	RemovedTaintsWhenReturningTrue map[int][]string // param index -> sink kinds
	SuppressedIssues          map[string]struct{}
}

// TypeDefinition is a user-declared `type`/`newtype` alias.
type TypeDefinition struct {
	Name       symbol.SymbolId
	TypeParams []symbol.SymbolId
	ActualType *ttype.Union
	IsNewtype  bool
	DefiningFile string
}

// Codebase is the whole symbol table the engine consults.
type Codebase struct {
	Classlikes  map[symbol.SymbolId]*ClassLikeInfo
	Functions   map[symbol.SymbolId]*FunctionLikeInfo
	TypeDefs    map[symbol.SymbolId]*TypeDefinition
	Constants   map[symbol.SymbolId]*ttype.Union
}

func NewCodebase() *Codebase {
	return &Codebase{
		Classlikes: make(map[symbol.SymbolId]*ClassLikeInfo),
		Functions:  make(map[symbol.SymbolId]*FunctionLikeInfo),
		TypeDefs:   make(map[symbol.SymbolId]*TypeDefinition),
		Constants:  make(map[symbol.SymbolId]*ttype.Union),
	}
}

// IsPopulated reports whether cls has completed PopulateCodebase's
// transitive-closure pass.
func (c *ClassLikeInfo) IsPopulated() bool { return c.populated }
