// Package ttype is the type engine's algebraic data model: TAtomic, the
// closed sum of atomic types, and Union, the top-level "one of N atomics"
// representation that carries side-channel flags. Every other package in
// this module (combiner, comparator, expander, template, reconciler,
// callsite) operates purely in terms of these two types plus the symbol
// and codeinfo packages.
//
// TAtomic is implemented as a tagged sum dispatched by exhaustive type
// switch rather than by a virtual-method hierarchy: the set of variants is
// closed and stable (spec.md §9), so a switch is both faster and clearer
// than a method per operation per type.
package ttype

import (
	"fmt"

	"github.com/dlclark/regexp2"

	"github.com/slackhq/hakana-sub000/internal/symbol"
)

// Atomic is implemented by every TAtomic variant. Key returns the
// canonical dedup key used by Union to collapse repeats (the `get_key()`
// of spec.md §3.3); two atomics with equal Key are considered the same
// member of a union for combination purposes, though not necessarily
// structurally identical (e.g. two LiteralInt atomics with different
// values have different keys).
type Atomic interface {
	isAtomic()
	Key() string
	fmt.Stringer
}

func (Arraykey) isAtomic()           {}
func (Int) isAtomic()                {}
func (Float) isAtomic()              {}
func (Bool) isAtomic()               {}
func (True) isAtomic()               {}
func (False) isAtomic()              {}
func (Num) isAtomic()                {}
func (String) isAtomic()             {}
func (Null) isAtomic()               {}
func (Void) isAtomic()               {}
func (Nothing) isAtomic()            {}
func (Resource) isAtomic()           {}
func (Object) isAtomic()             {}
func (Scalar) isAtomic()             {}
func (Placeholder) isAtomic()        {}
func (LiteralInt) isAtomic()         {}
func (LiteralString) isAtomic()      {}
func (LiteralClassname) isAtomic()   {}
func (StringWithFlags) isAtomic()    {}
func (Mixed) isAtomic()              {}
func (MixedFromLoopIsset) isAtomic() {}
func (MixedWithFlags) isAtomic()     {}
func (Classname) isAtomic()          {}
func (Typename) isAtomic()           {}
func (Dict) isAtomic()               {}
func (Vec) isAtomic()                {}
func (Keyset) isAtomic()             {}
func (Awaitable) isAtomic()          {}
func (Closure) isAtomic()            {}
func (ClosureAlias) isAtomic()       {}
func (NamedObject) isAtomic()        {}
func (Enum) isAtomic()               {}
func (EnumLiteralCase) isAtomic()    {}
func (EnumClassLabel) isAtomic()     {}
func (GenericParam) isAtomic()       {}
func (GenericClassname) isAtomic()   {}
func (GenericTypename) isAtomic()    {}
func (TypeAlias) isAtomic()          {}
func (TypeVariable) isAtomic()       {}
func (ClassTypeConstant) isAtomic()  {}
func (MemberReference) isAtomic()    {}
func (Reference) isAtomic()          {}
func (RegexPattern) isAtomic()       {}

// --- atoms with no fields ---

type Int struct{}
type Float struct{}
type Bool struct{}
type True struct{}
type False struct{}
type Num struct{}
type String struct{}
type Null struct{}
type Void struct{}
type Nothing struct{}
type Resource struct{}
type Object struct{}
type Scalar struct{}
type Placeholder struct{}

func (Int) Key() string         { return "int" }
func (Float) Key() string       { return "float" }
func (Bool) Key() string        { return "bool" }
func (True) Key() string        { return "true" }
func (False) Key() string       { return "false" }
func (Num) Key() string         { return "num" }
func (String) Key() string      { return "string" }
func (Null) Key() string        { return "null" }
func (Void) Key() string        { return "void" }
func (Nothing) Key() string     { return "nothing" }
func (Resource) Key() string    { return "resource" }
func (Object) Key() string      { return "object" }
func (Scalar) Key() string      { return "scalar" }
func (Placeholder) Key() string { return "_" }

func (Int) String() string         { return "int" }
func (Float) String() string       { return "float" }
func (Bool) String() string        { return "bool" }
func (True) String() string        { return "true" }
func (False) String() string       { return "false" }
func (Num) String() string         { return "num" }
func (String) String() string      { return "string" }
func (Null) String() string        { return "null" }
func (Void) String() string        { return "void" }
func (Nothing) String() string     { return "nothing" }
func (Resource) String() string    { return "resource" }
func (Object) String() string      { return "object" }
func (Scalar) String() string      { return "scalar" }
func (Placeholder) String() string { return "_" }

// Arraykey is `int | string`. FromAny tracks whether this arraykey arose
// from widening an `any`/mixed value, for leniency in later comparisons.
type Arraykey struct{ FromAny bool }

func (a Arraykey) Key() string    { return "arraykey" }
func (a Arraykey) String() string { return "arraykey" }

// LiteralInt is a specific known int value, e.g. the type of the
// expression `5`.
type LiteralInt struct{ Value int64 }

func (l LiteralInt) Key() string    { return fmt.Sprintf("int(%d)", l.Value) }
func (l LiteralInt) String() string { return fmt.Sprintf("%d", l.Value) }

// LiteralString is a specific known string value.
type LiteralString struct{ Value string }

func (l LiteralString) Key() string    { return fmt.Sprintf("string(%q)", l.Value) }
func (l LiteralString) String() string { return fmt.Sprintf("%q", l.Value) }

// LiteralClassname is the value of `SomeClass::class`.
type LiteralClassname struct{ Name symbol.SymbolId }

func (l LiteralClassname) Key() string    { return fmt.Sprintf("classname(%d)", l.Name) }
func (l LiteralClassname) String() string { return fmt.Sprintf("classname<%d>", l.Name) }

// StringWithFlags is a string refined by truthiness/non-emptiness facts
// accumulated through reconciliation or literal widening.
type StringWithFlags struct {
	Truthy             bool
	NonEmpty           bool
	NonspecificLiteral bool
}

func (s StringWithFlags) Key() string {
	return fmt.Sprintf("string(t=%v,ne=%v,nl=%v)", s.Truthy, s.NonEmpty, s.NonspecificLiteral)
}
func (s StringWithFlags) String() string { return "string" }

// Mixed is the unconstrained top type.
type Mixed struct{}

func (Mixed) Key() string    { return "mixed" }
func (Mixed) String() string { return "mixed" }

// MixedFromLoopIsset is a weaker-than-vanilla-mixed top type produced by
// an isset() check inside a loop body where the pre-loop type is unknown.
type MixedFromLoopIsset struct{}

func (MixedFromLoopIsset) Key() string    { return "mixed-from-loop-isset" }
func (MixedFromLoopIsset) String() string { return "mixed" }

// MixedWithFlags is a top type refined by the reconciler: Any marks it as
// "genuinely dynamic" (coercion-worthy), Truthy/Falsy are mutually
// exclusive refinements, Nonnull excludes null.
type MixedWithFlags struct {
	Any     bool
	Truthy  bool
	Falsy   bool
	Nonnull bool
}

func (m MixedWithFlags) Key() string {
	return fmt.Sprintf("mixed(a=%v,t=%v,f=%v,nn=%v)", m.Any, m.Truthy, m.Falsy, m.Nonnull)
}
func (m MixedWithFlags) String() string { return "mixed" }

// Classname is a class-name string constrained to subclasses of AsType.
type Classname struct{ AsType Atomic }

func (c Classname) Key() string    { return fmt.Sprintf("classname<%s>", c.AsType.Key()) }
func (c Classname) String() string { return fmt.Sprintf("classname<%s>", c.AsType.String()) }

// Typename is as Classname but for type aliases.
type Typename struct{ AsType Atomic }

func (t Typename) Key() string    { return fmt.Sprintf("typename<%s>", t.AsType.Key()) }
func (t Typename) String() string { return fmt.Sprintf("typename<%s>", t.AsType.String()) }

// DictParams is the (key, value) parameter pair of an open (non-shape)
// dict, e.g. the K,V of `dict<K,V>`.
type DictParams struct {
	Key   *Union
	Value *Union
}

// DictItem is one statically-known entry of a shape.
type DictItem struct {
	PossiblyUndefined bool
	Value             *Union
}

// ShapeName optionally records the declared shape-type name a Dict came
// from, for pretty-printing and diagnostics (not for subtyping).
type ShapeName struct {
	Name       symbol.SymbolId
	TypeParams *symbol.SymbolId // second component of Option<(SymbolId,Option<SymbolId>)>; nil if absent
}

// Dict is a shape-or-dict: if KnownItems is non-nil this is a shape with
// statically-known keys; Params (if non-nil) is the open tail's (K,V).
// Both may be present simultaneously (a shape with an open tail).
type Dict struct {
	Params     *DictParams
	KnownItems *OrderedDict
	NonEmpty   bool
	ShapeName  *ShapeName
}

func (d Dict) Key() string    { return "dict" }
func (d Dict) String() string { return printDict(d) }

// OrderedDict preserves insertion order of its keys; iteration order is
// observable in equality (spec.md §3.2). Pretty-printing sorts the keys
// with DictKey.Less instead.
type OrderedDict struct {
	keys  []DictKey
	items map[DictKey]DictItem
}

// NewOrderedDict returns an empty ordered dict.
func NewOrderedDict() *OrderedDict {
	return &OrderedDict{items: make(map[DictKey]DictItem)}
}

// Set inserts or overwrites the entry for k, preserving k's original
// insertion position if it already existed.
func (o *OrderedDict) Set(k DictKey, v DictItem) {
	if _, ok := o.items[k]; !ok {
		o.keys = append(o.keys, k)
	}
	o.items[k] = v
}

// Get returns the entry for k.
func (o *OrderedDict) Get(k DictKey) (DictItem, bool) {
	v, ok := o.items[k]
	return v, ok
}

// Keys returns the keys in insertion order.
func (o *OrderedDict) Keys() []DictKey { return o.keys }

// Len reports the number of entries.
func (o *OrderedDict) Len() int { return len(o.keys) }

// Clone returns a shallow copy (the DictItem Union pointers are shared).
func (o *OrderedDict) Clone() *OrderedDict {
	n := NewOrderedDict()
	for _, k := range o.keys {
		n.Set(k, o.items[k])
	}
	return n
}

// VecItem is one statically-known offset of a tuple.
type VecItem struct {
	PossiblyUndefined bool
	Value             *Union
}

// OrderedVec preserves insertion order of its integer offsets.
type OrderedVec struct {
	offsets []int
	items   map[int]VecItem
}

// NewOrderedVec returns an empty ordered vec.
func NewOrderedVec() *OrderedVec { return &OrderedVec{items: make(map[int]VecItem)} }

func (o *OrderedVec) Set(i int, v VecItem) {
	if _, ok := o.items[i]; !ok {
		o.offsets = append(o.offsets, i)
	}
	o.items[i] = v
}

func (o *OrderedVec) Get(i int) (VecItem, bool) {
	v, ok := o.items[i]
	return v, ok
}

func (o *OrderedVec) Offsets() []int { return o.offsets }
func (o *OrderedVec) Len() int       { return len(o.offsets) }

func (o *OrderedVec) Clone() *OrderedVec {
	n := NewOrderedVec()
	for _, i := range o.offsets {
		n.Set(i, o.items[i])
	}
	return n
}

// Vec is a tuple-or-vec: if KnownItems is non-nil this is a tuple with
// statically-known offsets; TypeParam is the open tail's element type.
type Vec struct {
	TypeParam  *Union
	KnownItems *OrderedVec
	NonEmpty   bool
	KnownCount *int
}

func (v Vec) Key() string    { return "vec" }
func (v Vec) String() string { return printVec(v) }

// Keyset is a set-of-scalars collection.
type Keyset struct {
	TypeParam *Union
	NonEmpty  bool
}

func (k Keyset) Key() string    { return "keyset" }
func (k Keyset) String() string { return fmt.Sprintf("keyset<%s>", k.TypeParam.String()) }

// Awaitable wraps a future value, e.g. the return type of an async
// function.
type Awaitable struct{ Value *Union }

func (a Awaitable) Key() string    { return "awaitable" }
func (a Awaitable) String() string { return fmt.Sprintf("Awaitable<%s>", a.Value.String()) }

// Parameter is one parameter of a Closure type.
type Parameter struct {
	Name       symbol.SymbolId
	Type       *Union
	IsOptional bool
	IsVariadic bool
	IsInout    bool
}

// Closure is a first-class function type.
type Closure struct {
	Params     []Parameter
	ReturnType *Union // nil if unspecified
	IsPure     *bool  // nil if unknown
}

func (c Closure) Key() string    { return "closure" }
func (c Closure) String() string { return printClosure(c) }

// FunctionLikeKind distinguishes a plain function from a classlike method
// in a FunctionLikeIdentifier.
type FunctionLikeKind int

const (
	FunctionKind FunctionLikeKind = iota
	MethodKind
)

// FunctionLikeIdentifier names a function or a classlike method.
type FunctionLikeIdentifier struct {
	Kind   FunctionLikeKind
	Name   symbol.SymbolId // function name, or method name when Kind==MethodKind
	Class  symbol.SymbolId // valid only when Kind==MethodKind
}

func (id FunctionLikeIdentifier) String() string {
	if id.Kind == MethodKind {
		return fmt.Sprintf("%d::%d", id.Class, id.Name)
	}
	return fmt.Sprintf("%d", id.Name)
}

// ClosureAlias refers to a named function/method used in first-class
// callable-creation position, e.g. `foo(...)`.
type ClosureAlias struct{ ID FunctionLikeIdentifier }

func (c ClosureAlias) Key() string    { return "closure-alias(" + c.ID.String() + ")" }
func (c ClosureAlias) String() string { return c.ID.String() }

// NamedObject is a class/interface reference, possibly generic and
// possibly an intersection (`A & B`, carried as ExtraTypes).
type NamedObject struct {
	Name            symbol.SymbolId
	TypeParams      []*Union // nil if non-generic
	IsThis          bool
	ExtraTypes      []Atomic // the `& B & C` of an intersection type; nil if none
	RemappedParams  bool
}

func (n NamedObject) Key() string {
	return fmt.Sprintf("object(%d)", n.Name)
}
func (n NamedObject) String() string { return printNamedObject(n) }

// Enum is a Hack enum type (the type of the enum itself, not a specific
// case).
type Enum struct {
	Name          symbol.SymbolId
	AsType        Atomic // nil if absent
	UnderlyingType Atomic // nil if absent
}

func (e Enum) Key() string    { return fmt.Sprintf("enum(%d)", e.Name) }
func (e Enum) String() string { return fmt.Sprintf("%d", e.Name) }

// EnumLiteralCase is a specific enum constant, e.g. `Suit::Hearts`.
type EnumLiteralCase struct {
	EnumName       symbol.SymbolId
	MemberName     symbol.SymbolId
	AsType         Atomic
	UnderlyingType Atomic
}

func (e EnumLiteralCase) Key() string {
	return fmt.Sprintf("enum-case(%d::%d)", e.EnumName, e.MemberName)
}
func (e EnumLiteralCase) String() string { return fmt.Sprintf("%d::%d", e.EnumName, e.MemberName) }

// EnumClassLabel is an `enum class` label literal, e.g. `#SomeLabel`.
// ClassName is nil when the label's enum class is inferred from context.
type EnumClassLabel struct {
	ClassName  *symbol.SymbolId
	MemberName symbol.SymbolId
}

func (e EnumClassLabel) Key() string {
	cls := symbol.SymbolId(0)
	if e.ClassName != nil {
		cls = *e.ClassName
	}
	return fmt.Sprintf("label(%d#%d)", cls, e.MemberName)
}
func (e EnumClassLabel) String() string { return fmt.Sprintf("#%d", e.MemberName) }

// GenericParam is a template parameter occurrence, `T as X`.
type GenericParam struct {
	ParamName      symbol.SymbolId
	AsType         *Union
	DefiningEntity symbol.GenericParent
	ExtraTypes     []Atomic
}

func (g GenericParam) Key() string {
	return fmt.Sprintf("template(%d,%s)", g.ParamName, g.DefiningEntity.String())
}
func (g GenericParam) String() string { return fmt.Sprintf("%d", g.ParamName) }

// GenericClassname is `classname<T>` where T is templated.
type GenericClassname struct {
	ParamName      symbol.SymbolId
	DefiningEntity symbol.GenericParent
	AsType         Atomic
}

func (g GenericClassname) Key() string {
	return fmt.Sprintf("generic-classname(%d,%s)", g.ParamName, g.DefiningEntity.String())
}
func (g GenericClassname) String() string { return fmt.Sprintf("classname<%d>", g.ParamName) }

// GenericTypename is `typename<T>` where T is templated.
type GenericTypename struct {
	ParamName      symbol.SymbolId
	DefiningEntity symbol.GenericParent
	AsType         Atomic
}

func (g GenericTypename) Key() string {
	return fmt.Sprintf("generic-typename(%d,%s)", g.ParamName, g.DefiningEntity.String())
}
func (g GenericTypename) String() string { return fmt.Sprintf("typename<%d>", g.ParamName) }

// TypeAlias is a user-declared type alias; AsType is the resolved body
// once expanded (nil if the alias is still opaque, e.g. a newtype viewed
// outside its defining file).
type TypeAlias struct {
	Name       symbol.SymbolId
	TypeParams []*Union
	AsType     *Union
}

func (t TypeAlias) Key() string    { return fmt.Sprintf("alias(%d)", t.Name) }
func (t TypeAlias) String() string { return fmt.Sprintf("%d", t.Name) }

// TypeVariable is a free inference variable, distinct from a GenericParam
// (which is universally quantified by a class or function declaration).
type TypeVariable struct{ Name symbol.SymbolId }

func (t TypeVariable) Key() string    { return fmt.Sprintf("typevar(%d)", t.Name) }
func (t TypeVariable) String() string { return fmt.Sprintf("#%d", t.Name) }

// ClassTypeConstant is `C::T`, a type-constant member access.
type ClassTypeConstant struct {
	ClassType  Atomic
	MemberName symbol.SymbolId
}

func (c ClassTypeConstant) Key() string {
	return fmt.Sprintf("class-type-const(%s,%d)", c.ClassType.Key(), c.MemberName)
}
func (c ClassTypeConstant) String() string {
	return fmt.Sprintf("%s::%d", c.ClassType.String(), c.MemberName)
}

// MemberReference is a syntactic class-member reference awaiting
// resolution (e.g. `self::SOME_CONST` before the enclosing class is
// known). Symbol-table population does not resolve it.
type MemberReference struct {
	ClasslikeName symbol.SymbolId
	MemberName    symbol.SymbolId
}

func (m MemberReference) Key() string {
	return fmt.Sprintf("member-ref(%d,%d)", m.ClasslikeName, m.MemberName)
}
func (m MemberReference) String() string { return fmt.Sprintf("%d::%d", m.ClasslikeName, m.MemberName) }

// Reference is an unresolved nominal type, produced by the parser/resolver
// before symbol-table population. codeinfo.ResolveReference maps a single
// Reference to a NamedObject, TypeAlias, or Enum; PopulateCodebase does
// not rewrite Reference atomics.
type Reference struct {
	Name       symbol.SymbolId
	TypeParams []*Union
}

func (r Reference) Key() string    { return fmt.Sprintf("ref(%d)", r.Name) }
func (r Reference) String() string { return fmt.Sprintf("%d", r.Name) }

// RegexPattern is the type of a regex literal. Hack's preg_match patterns
// carry PCRE features (backreferences, lookaround) that Go's RE2-based
// regexp package cannot express, so well-formedness is checked with
// dlclark/regexp2 rather than the standard library.
type RegexPattern struct{ Value string }

func (r RegexPattern) Key() string    { return fmt.Sprintf("regex(%q)", r.Value) }
func (r RegexPattern) String() string { return r.Value }

// Compile parses Value as a PCRE-flavored pattern, reporting any syntax
// error the engine's own containment checks would otherwise have to
// paper over by falling back to plain string comparison.
func (r RegexPattern) Compile() (*regexp2.Regexp, error) {
	return regexp2.Compile(r.Value, regexp2.None)
}

// Valid reports whether Value parses as a regexp2 pattern.
func (r RegexPattern) Valid() bool {
	_, err := r.Compile()
	return err == nil
}
