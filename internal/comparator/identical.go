package comparator

import "github.com/slackhq/hakana-sub000/internal/ttype"

// CanBeIdentical is the symmetric relaxation used by the equality/
// assertion engine (spec.md §4.2): either side is contained by the other,
// or both report type_coerced. Enum/alias unwrapping happens first unless
// the peer is also enum-like.
func (c *Comparator) CanBeIdentical(a, b ttype.Atomic, insideAssertion bool) bool {
	a = c.unwrapForIdentity(a, b)
	b = c.unwrapForIdentity(b, a)

	var out1, out2 Result
	if c.IsContainedBy(a, b, insideAssertion, &out1) {
		return true
	}
	if c.IsContainedBy(b, a, insideAssertion, &out2) {
		return true
	}
	return out1.TypeCoerced && out2.TypeCoerced
}

// CanExpressionTypesBeIdentical applies CanBeIdentical pairwise across
// every atomic combination of two unions: true if any pair can be
// identical.
func (c *Comparator) CanExpressionTypesBeIdentical(a, b *ttype.Union, insideAssertion bool) bool {
	for _, x := range a.Atoms {
		for _, y := range b.Atoms {
			if c.CanBeIdentical(x, y, insideAssertion) {
				return true
			}
		}
	}
	return false
}

func (c *Comparator) unwrapForIdentity(a, peer ttype.Atomic) ttype.Atomic {
	switch v := a.(type) {
	case ttype.TypeAlias:
		if v.AsType != nil {
			if single, ok := v.AsType.IsSingle(); ok {
				return c.unwrapForIdentity(single, peer)
			}
		}
	case ttype.Enum:
		if !isEnumLike(peer) && v.UnderlyingType != nil {
			return c.unwrapForIdentity(v.UnderlyingType, peer)
		}
	case ttype.EnumLiteralCase:
		if !isEnumLike(peer) && v.UnderlyingType != nil {
			return c.unwrapForIdentity(v.UnderlyingType, peer)
		}
	}
	return a
}
