// Package combiner implements the type combiner (spec.md §4.1): a
// many-to-one reduction of a multiset of atomic types into the canonical
// minimal multiset representing their union.
package combiner

import (
	"sort"

	"github.com/slackhq/hakana-sub000/internal/codeinfo"
	"github.com/slackhq/hakana-sub000/internal/symbol"
	"github.com/slackhq/hakana-sub000/internal/ttype"
)

// literalWidenThreshold is the count at which accumulated literal
// ints/strings widen to their base type and the accumulator is cleared
// (spec.md §4.1 "at the 21st distinct literal... widen").
const literalWidenThreshold = 21

// combination is the fold accumulator of spec.md §4.1.
type combination struct {
	// mixed-flavor state machine
	hasMixed           bool
	vanillaMixed       bool
	anyMixed           bool
	truthyMixed        bool
	falsyMixed         bool
	nonnullMixed       bool
	mixedFromLoopIsset bool

	valueTypes map[string]ttype.Atomic // by Key(), insertion order tracked separately
	order      []string

	literalInts    []ttype.LiteralInt
	literalStrings []ttype.LiteralString
	intWidened     bool
	stringWidened  bool

	dict       *ttype.Dict
	hasDict    bool
	vec        *ttype.Vec
	hasVec     bool
	keyset     *ttype.Keyset
	hasKeyset  bool
	awaitable  *ttype.Union
	hasAwait   bool

	objects     []ttype.NamedObject // by nominal name, post-subsumption
	hasObjectTop bool

	codebase *codeinfo.Codebase
}

// Combine reduces types to the canonical minimal multiset representing
// their union. overwriteEmptyArray controls whether an accumulated empty
// dict/vec is replaced outright by a non-empty one of the same kind rather
// than merged (used when assigning into a previously-empty collection);
// keysets are always merged, whatever the flag.
func Combine(types []ttype.Atomic, cb *codeinfo.Codebase, overwriteEmptyArray bool) []ttype.Atomic {
	c := &combination{valueTypes: make(map[string]ttype.Atomic), codebase: cb}
	for _, t := range types {
		c.fold(t, overwriteEmptyArray)
	}
	return c.result()
}

func (c *combination) fold(t ttype.Atomic, overwriteEmptyArray bool) {
	switch v := t.(type) {
	case ttype.Mixed:
		c.hasMixed = true
		c.vanillaMixed = true
	case ttype.MixedFromLoopIsset:
		c.hasMixed = true
		if !c.vanillaMixed {
			c.mixedFromLoopIsset = true
		}
	case ttype.MixedWithFlags:
		c.foldMixedFlags(v)
	case ttype.LiteralInt:
		c.foldLiteralInt(v)
	case ttype.LiteralString:
		c.foldLiteralString(v)
	case ttype.Dict:
		c.foldDict(v, overwriteEmptyArray)
	case ttype.Vec:
		c.foldVec(v, overwriteEmptyArray)
	case ttype.Keyset:
		c.foldKeyset(v, overwriteEmptyArray)
	case ttype.Awaitable:
		c.foldAwaitable(v)
	case ttype.Object:
		c.hasObjectTop = true
	case ttype.NamedObject:
		c.foldNamedObject(v)
	case ttype.Scalar:
		c.absorbInto("scalar", v)
	case ttype.Arraykey:
		c.absorbInto("arraykey", v)
	case ttype.Num:
		c.absorbInto("num", v)
	default:
		c.addValue(t)
	}
}

func (c *combination) addValue(t ttype.Atomic) {
	key := t.Key()
	if _, ok := c.valueTypes[key]; !ok {
		c.order = append(c.order, key)
	}
	c.valueTypes[key] = t
}

// absorbInto handles the Scalar/Arraykey/Num absorption rule: adding one
// of these absorbs any already-accumulated narrower value types, and is
// itself dropped if a wider one is already present.
func (c *combination) absorbInto(kind string, t ttype.Atomic) {
	narrower := map[string][]string{
		"scalar":   {"int", "float", "string", "bool", "arraykey", "num"},
		"arraykey": {"int", "string"},
		"num":      {"int", "float"},
	}[kind]
	if _, already := c.valueTypes[kind]; already {
		return
	}
	// If a wider kind is already present, this atom is absorbed and dropped.
	if kind != "scalar" {
		if _, present := c.valueTypes["scalar"]; present {
			return
		}
	}
	for _, n := range narrower {
		delete(c.valueTypes, n)
	}
	newOrder := c.order[:0:0]
	for _, k := range c.order {
		if k == kind {
			continue
		}
		skip := false
		for _, n := range narrower {
			if k == n {
				skip = true
				break
			}
		}
		if !skip {
			newOrder = append(newOrder, k)
		}
	}
	c.order = newOrder
	c.order = append(c.order, kind)
	c.valueTypes[kind] = t
}

func (c *combination) foldMixedFlags(v ttype.MixedWithFlags) {
	c.hasMixed = true
	if c.vanillaMixed {
		return
	}
	if v.Any {
		c.anyMixed = true
	}
	if v.Truthy {
		if c.falsyMixed {
			c.vanillaMixed = true
			return
		}
		c.truthyMixed = true
	}
	if v.Falsy {
		if c.truthyMixed {
			c.vanillaMixed = true
			return
		}
		c.falsyMixed = true
	}
	if v.Nonnull {
		c.nonnullMixed = true
	}
}

func (c *combination) foldLiteralInt(v ttype.LiteralInt) {
	if c.intWidened {
		return
	}
	for _, e := range c.literalInts {
		if e.Value == v.Value {
			return
		}
	}
	c.literalInts = append(c.literalInts, v)
	if len(c.literalInts) >= literalWidenThreshold {
		c.intWidened = true
		c.literalInts = nil
		c.addValue(ttype.Int{})
	}
}

func (c *combination) foldLiteralString(v ttype.LiteralString) {
	if c.stringWidened {
		return
	}
	for _, e := range c.literalStrings {
		if e.Value == v.Value {
			return
		}
	}
	c.literalStrings = append(c.literalStrings, v)
	if len(c.literalStrings) >= literalWidenThreshold {
		c.stringWidened = true
		truthy, nonEmpty := true, true
		for _, s := range c.literalStrings {
			if s.Value == "" || s.Value == "0" {
				truthy = false
			}
			if s.Value == "" {
				nonEmpty = false
			}
		}
		c.literalStrings = nil
		c.addValue(ttype.StringWithFlags{Truthy: truthy, NonEmpty: nonEmpty, NonspecificLiteral: true})
	}
}

func (c *combination) foldDict(v ttype.Dict, overwriteEmptyArray bool) {
	if !c.hasDict {
		cp := v
		c.dict = &cp
		c.hasDict = true
		return
	}
	merged := mergeDicts(*c.dict, v, overwriteEmptyArray)
	c.dict = &merged
}

func (c *combination) foldVec(v ttype.Vec, overwriteEmptyArray bool) {
	if !c.hasVec {
		cp := v
		c.vec = &cp
		c.hasVec = true
		return
	}
	merged := mergeVecs(*c.vec, v, overwriteEmptyArray)
	c.vec = &merged
}

func (c *combination) foldKeyset(v ttype.Keyset, overwriteEmptyArray bool) {
	if !c.hasKeyset {
		cp := v
		c.keyset = &cp
		c.hasKeyset = true
		return
	}
	c.keyset = &ttype.Keyset{
		TypeParam: combineUnions(c.keyset.TypeParam, v.TypeParam, c.codebase),
		NonEmpty:  c.keyset.NonEmpty && v.NonEmpty,
	}
}

func (c *combination) foldAwaitable(v ttype.Awaitable) {
	if !c.hasAwait {
		c.awaitable = v.Value
		c.hasAwait = true
		return
	}
	c.awaitable = combineUnions(c.awaitable, v.Value, c.codebase)
}

func (c *combination) foldNamedObject(v ttype.NamedObject) {
	if c.hasObjectTop {
		return
	}
	for i, existing := range c.objects {
		if existing.Name == v.Name {
			c.objects[i] = mergeSameClassObjects(existing, v, c.codebase)
			return
		}
		if c.codebase != nil && isAncestor(c.codebase, v.Name, existing.Name) {
			// v is an ancestor of an already-present subclass: existing absorbs v.
			return
		}
		if c.codebase != nil && isAncestor(c.codebase, existing.Name, v.Name) {
			// v is a subclass of an already-present ancestor: v is absorbed.
			c.objects[i] = existing
			return
		}
	}
	c.objects = append(c.objects, v)
}

func mergeSameClassObjects(a, b ttype.NamedObject, cb *codeinfo.Codebase) ttype.NamedObject {
	if len(a.TypeParams) != len(b.TypeParams) {
		return a
	}
	merged := make([]*ttype.Union, len(a.TypeParams))
	for i := range a.TypeParams {
		merged[i] = combineUnions(a.TypeParams[i], b.TypeParams[i], cb)
	}
	a.TypeParams = merged
	return a
}

func isAncestor(cb *codeinfo.Codebase, descendant, ancestor symbol.SymbolId) bool {
	cls, ok := cb.Classlikes[descendant]
	if !ok {
		return false
	}
	return cls.AllParentClasses.Contains(ancestor) ||
		cls.AllParentInterfaces.Contains(ancestor) ||
		cls.AllClassInterfaces.Contains(ancestor)
}

// combineUnions is the Union-level entry point other components call
// (e.g. the reconciler's combine_union_types); it recurses through
// Combine.
func combineUnions(a, b *ttype.Union, cb *codeinfo.Codebase) *ttype.Union {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	atoms := append(append([]ttype.Atomic(nil), a.Atoms...), b.Atoms...)
	result := Combine(atoms, cb, false)
	u := ttype.New(result...)
	u.MergeParentNodes(a)
	u.MergeParentNodes(b)
	return u
}

// CombineUnions is the exported Union-level combinator (spec.md §6.1's
// `combine_union_types`).
func CombineUnions(a, b *ttype.Union, cb *codeinfo.Codebase, overwriteEmptyArray bool) *ttype.Union {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	atoms := append(append([]ttype.Atomic(nil), a.Atoms...), b.Atoms...)
	result := Combine(atoms, cb, overwriteEmptyArray)
	u := ttype.New(result...)
	u.MergeParentNodes(a)
	u.MergeParentNodes(b)
	return u
}

func (c *combination) result() []ttype.Atomic {
	var out []ttype.Atomic

	if c.hasMixed {
		m := c.resolveMixed()
		if _, ok := m.(ttype.Mixed); ok {
			return []ttype.Atomic{m}
		}
		out = append(out, m)
	}

	if c.hasDict {
		out = append(out, *c.dict)
	}
	if c.hasVec {
		out = append(out, *c.vec)
	}
	if c.hasKeyset {
		out = append(out, *c.keyset)
	}
	if c.hasAwait {
		out = append(out, ttype.Awaitable{Value: c.awaitable})
	}
	if c.hasObjectTop {
		out = append(out, ttype.Object{})
	} else {
		sort.Slice(c.objects, func(i, j int) bool { return c.objects[i].Name < c.objects[j].Name })
		for _, o := range c.objects {
			out = append(out, o)
		}
	}

	for _, l := range c.literalInts {
		out = append(out, l)
	}
	for _, l := range c.literalStrings {
		out = append(out, l)
	}

	for _, key := range c.order {
		out = append(out, c.valueTypes[key])
	}

	if len(out) == 0 {
		return []ttype.Atomic{ttype.Nothing{}}
	}
	return out
}

func (c *combination) resolveMixed() ttype.Atomic {
	if c.vanillaMixed {
		return ttype.Mixed{}
	}
	if !c.anyMixed && !c.truthyMixed && !c.falsyMixed && !c.nonnullMixed {
		if c.mixedFromLoopIsset {
			return ttype.MixedFromLoopIsset{}
		}
		return ttype.Mixed{}
	}
	return ttype.MixedWithFlags{
		Any:     c.anyMixed,
		Truthy:  c.truthyMixed,
		Falsy:   c.falsyMixed,
		Nonnull: c.nonnullMixed,
	}
}
