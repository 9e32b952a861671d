// Package comparator implements the subtype lattice over ttype.Atomic/
// ttype.Union: is_contained_by and its union/equality relaxations
// (spec.md §4.2).
package comparator

import (
	"github.com/slackhq/hakana-sub000/internal/codeinfo"
	"github.com/slackhq/hakana-sub000/internal/symbol"
	"github.com/slackhq/hakana-sub000/internal/ttype"
)

// Result carries the coercion/widening feedback side-channel populated by
// IsContainedBy (spec.md §4.2).
type Result struct {
	TypeCoerced                 bool
	TypeCoercedFromNestedMixed  bool
	TypeCoercedFromNestedAny    bool
	TypeCoercedToLiteral        bool
	ReplacementAtomicType       ttype.Atomic
	UpcastedAwaitable           bool
}

// Comparator holds the codebase handle every nominal/generic comparison
// needs (ancestor sets, declared variance).
type Comparator struct {
	Codebase *codeinfo.Codebase
}

func New(cb *codeinfo.Codebase) *Comparator { return &Comparator{Codebase: cb} }

// IsContainedBy reports whether every value of input is a value of
// container, populating out with coercion feedback. This is the engine's
// central relation: it is called recursively by itself (nested
// parameters), by UnionIsContainedBy, and by the reconciler and
// call-site resolver.
func (c *Comparator) IsContainedBy(input, container ttype.Atomic, insideAssertion bool, out *Result) bool {
	// Rule 1: syntactic identity.
	if ttype.AtomEquals(input, container) {
		return true
	}

	// Rule 2: Mixed-family container.
	if isMixedFamily(container) {
		if mw, ok := container.(ttype.MixedWithFlags); ok {
			if mw.Nonnull && isNullBearing(input) {
				return false
			}
			if mw.Truthy && isFalsyBearing(input) {
				return false
			}
		}
		return true
	}

	// Rule 3: Placeholder container / Nothing input.
	if _, ok := container.(ttype.Placeholder); ok {
		return true
	}
	if _, ok := input.(ttype.Nothing); ok {
		return true
	}

	// Rule 4: MixedWithFlags{any=true} input always coerces.
	if mw, ok := input.(ttype.MixedWithFlags); ok && mw.Any {
		out.TypeCoerced = true
		out.TypeCoercedFromNestedMixed = true
		return false
	}

	// Rule 6: Null input.
	if _, ok := input.(ttype.Null); ok {
		return isNullableContainer(container)
	}

	// Rule 7: scalar lattice.
	if ok, handled := c.scalarContainment(input, container, out); handled {
		return ok
	}

	// Rule 8: Closure vs Closure.
	if ic, ok1 := input.(ttype.Closure); ok1 {
		if cc, ok2 := container.(ttype.Closure); ok2 {
			return c.closureContainedBy(ic, cc, insideAssertion, out)
		}
	}

	// Rule 9: NamedObject vs NamedObject.
	if io, ok1 := input.(ttype.NamedObject); ok1 {
		if co, ok2 := container.(ttype.NamedObject); ok2 {
			return c.namedObjectContainedBy(io, co, insideAssertion, out)
		}
	}

	// Rule 10: collection <-> container interop.
	if ok, handled := c.collectionContainerContainment(input, container, insideAssertion, out); handled {
		return ok
	}

	// Rule 11: Awaitable.
	if ia, ok1 := input.(ttype.Awaitable); ok1 {
		if ca, ok2 := container.(ttype.Awaitable); ok2 {
			if _, isNull := singleAtom(ia.Value).(ttype.Null); isNull {
				if _, isVoid := singleAtom(ca.Value).(ttype.Void); isVoid {
					return true
				}
			}
			return c.UnionIsContainedBy(ia.Value, ca.Value, false, false, insideAssertion, out)
		}
	}

	// Rule 12: GenericParam.
	if gp, ok := input.(ttype.GenericParam); ok {
		return c.UnionIsContainedBy(gp.AsType, ttype.New(container), false, false, insideAssertion, out)
	}
	if gp, ok := container.(ttype.GenericParam); ok {
		if igp, ok2 := input.(ttype.GenericParam); ok2 {
			return symbol.Equal(igp.DefiningEntity, gp.DefiningEntity) && igp.ParamName == gp.ParamName
		}
		return c.UnionIsContainedBy(ttype.New(input), gp.AsType, false, false, insideAssertion, out)
	}

	// Rule 13: Enum/EnumLiteralCase degrade to underlying_type.
	if e, ok := input.(ttype.Enum); ok && !isEnumLike(container) {
		if e.UnderlyingType != nil {
			return c.IsContainedBy(e.UnderlyingType, container, insideAssertion, out)
		}
	}
	if e, ok := input.(ttype.EnumLiteralCase); ok {
		if ce, ok2 := container.(ttype.EnumLiteralCase); ok2 {
			return e.EnumName == ce.EnumName && e.MemberName == ce.MemberName
		}
		if !isEnumLike(container) && e.UnderlyingType != nil {
			return c.IsContainedBy(e.UnderlyingType, container, insideAssertion, out)
		}
	}

	// Rule 14: TypeAlias unwrap.
	if ta, ok := input.(ttype.TypeAlias); ok && ta.AsType != nil {
		return c.UnionIsContainedBy(ta.AsType, ttype.New(container), false, false, insideAssertion, out)
	}
	if ta, ok := container.(ttype.TypeAlias); ok && ta.AsType != nil {
		return c.UnionIsContainedBy(ttype.New(input), ta.AsType, false, false, insideAssertion, out)
	}

	return false
}

func singleAtom(u *ttype.Union) ttype.Atomic {
	if u == nil || len(u.Atoms) == 0 {
		return nil
	}
	return u.Atoms[0]
}

func isMixedFamily(a ttype.Atomic) bool {
	switch a.(type) {
	case ttype.Mixed, ttype.MixedFromLoopIsset, ttype.MixedWithFlags:
		return true
	}
	return false
}

func isNullBearing(a ttype.Atomic) bool {
	_, ok := a.(ttype.Null)
	return ok
}

func isFalsyBearing(a ttype.Atomic) bool {
	switch v := a.(type) {
	case ttype.Null, ttype.False:
		_ = v
		return true
	case ttype.LiteralInt:
		return v.Value == 0
	case ttype.LiteralString:
		return v.Value == "" || v.Value == "0"
	}
	return false
}

func isEnumLike(a ttype.Atomic) bool {
	switch a.(type) {
	case ttype.Enum, ttype.EnumLiteralCase:
		return true
	}
	return false
}

// isNullableContainer reports whether container accepts Null directly
// (a nullable union is handled by the caller at the union level; this
// only covers atomic containers that are themselves null-accepting).
func isNullableContainer(container ttype.Atomic) bool {
	switch c := container.(type) {
	case ttype.Null:
		return true
	case ttype.GenericParam:
		for _, a := range c.AsType.Atoms {
			if isNullableContainer(a) {
				return true
			}
		}
	}
	return false
}

// UnionIsContainedBy reports whether every atomic of input is contained
// by some atomic of container (spec.md §4.2's union contract).
func (c *Comparator) UnionIsContainedBy(input, container *ttype.Union, ignoreNull, ignoreFalse, insideAssertion bool, out *Result) bool {
	for _, ia := range input.Atoms {
		if ignoreNull {
			if _, ok := ia.(ttype.Null); ok {
				continue
			}
		}
		if ignoreFalse {
			if _, ok := ia.(ttype.False); ok {
				continue
			}
		}
		matched := false
		for _, ca := range container.Atoms {
			local := &Result{}
			if c.IsContainedBy(ia, ca, insideAssertion, local) {
				matched = true
				break
			}
			if local.TypeCoerced && local.ReplacementAtomicType == nil {
				local.ReplacementAtomicType = ca
			}
			mergeResult(out, local)
		}
		if !matched {
			return false
		}
	}
	return true
}

func mergeResult(out, local *Result) {
	if out == nil {
		return
	}
	out.TypeCoerced = out.TypeCoerced || local.TypeCoerced
	out.TypeCoercedFromNestedMixed = out.TypeCoercedFromNestedMixed || local.TypeCoercedFromNestedMixed
	out.TypeCoercedFromNestedAny = out.TypeCoercedFromNestedAny || local.TypeCoercedFromNestedAny
	out.TypeCoercedToLiteral = out.TypeCoercedToLiteral || local.TypeCoercedToLiteral
	if out.ReplacementAtomicType == nil {
		out.ReplacementAtomicType = local.ReplacementAtomicType
	}
	out.UpcastedAwaitable = out.UpcastedAwaitable || local.UpcastedAwaitable
}
