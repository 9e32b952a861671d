package reconciler

import "github.com/slackhq/hakana-sub000/internal/ttype"

// reconcileFalsy narrows existing to its falsy atoms: truthy-only atoms
// (True, non-empty literals) are dropped, flagged atoms are narrowed to
// their falsy branch.
func reconcileFalsy(existing *ttype.Union) *ttype.Union {
	out := ttype.Empty()
	for _, a := range existing.Atoms {
		switch v := a.(type) {
		case ttype.True:
			continue
		case ttype.LiteralInt:
			if v.Value != 0 {
				continue
			}
			out = out.WithAtom(v)
		case ttype.LiteralString:
			if v.Value != "" {
				continue
			}
			out = out.WithAtom(v)
		case ttype.StringWithFlags:
			if v.NonEmpty || v.Truthy {
				continue
			}
			out = out.WithAtom(v)
		case ttype.MixedWithFlags:
			if v.Truthy {
				continue
			}
			v.Falsy = true
			out = out.WithAtom(v)
		case ttype.Bool:
			out = out.WithAtom(ttype.False{})
		default:
			out = out.WithAtom(a)
		}
	}
	if out.IsNothing() {
		return ttype.New(ttype.Nothing{})
	}
	return out
}

// reconcileNotIsset narrows existing to Null: that is the only value
// remaining when `isset()` is false.
func reconcileNotIsset(existing *ttype.Union) *ttype.Union {
	return ttype.New(ttype.Null{})
}

// reconcileEmptyCountable narrows vec/dict/keyset atoms to their empty
// form; scalars that are never countable are left untouched.
func reconcileEmptyCountable(existing *ttype.Union) *ttype.Union {
	out := ttype.Empty()
	for _, a := range existing.Atoms {
		switch v := a.(type) {
		case ttype.Vec:
			zero := 0
			v.NonEmpty = false
			v.KnownCount = &zero
			v.KnownItems = nil
			out = out.WithAtom(v)
		case ttype.Dict:
			v.NonEmpty = false
			v.KnownItems = ttype.NewOrderedDict()
			out = out.WithAtom(v)
		case ttype.Keyset:
			v.NonEmpty = false
			out = out.WithAtom(v)
		default:
			out = out.WithAtom(a)
		}
	}
	if out.IsNothing() {
		return ttype.New(ttype.Nothing{})
	}
	return out
}

// reconcileNotExactlyCountable discards any vec atom whose known count
// equals the asserted count.
func reconcileNotExactlyCountable(existing *ttype.Union, count int) *ttype.Union {
	out := ttype.Empty()
	for _, a := range existing.Atoms {
		if v, ok := a.(ttype.Vec); ok && v.KnownCount != nil && *v.KnownCount == count {
			continue
		}
		out = out.WithAtom(a)
	}
	if out.IsNothing() {
		return existing
	}
	return out
}

// reconcileNotInArray is a no-op on the existing type: Hakana's version
// only affects the haystack side (removing the checked value from a
// literal array), not this variable's own type. The haystack side is not
// modeled here.
func reconcileNotInArray(existing *ttype.Union) *ttype.Union {
	return existing
}

// reconcileNoArrayKey marks the dict entry for key as possibly undefined;
// the entry itself stays in known_items.
func reconcileNoArrayKey(existing *ttype.Union, key ttype.DictKey) *ttype.Union {
	out := ttype.Empty()
	for _, a := range existing.Atoms {
		if d, ok := a.(ttype.Dict); ok && d.KnownItems != nil {
			if item, found := d.KnownItems.Get(key); found {
				merged := d.KnownItems.Clone()
				item.PossiblyUndefined = true
				merged.Set(key, item)
				d.KnownItems = merged
			}
			out = out.WithAtom(d)
			continue
		}
		out = out.WithAtom(a)
	}
	return out
}

// subtractType removes atoms from existing that are wholly contained by
// negated (per the supplied containment check), implementing the IsNotType
// family: `$x is not int` removes the `int` atom but leaves e.g. `int|string`
// narrowed to `string`.
func subtractType(existing, negated *ttype.Union, isContainedBy func(a, b ttype.Atomic) bool) *ttype.Union {
	out := ttype.Empty()
	for _, a := range existing.Atoms {
		contained := false
		for _, n := range negated.Atoms {
			if isContainedBy(a, n) {
				contained = true
				break
			}
		}
		if contained {
			continue
		}
		out = out.WithAtom(a)
	}
	if out.IsNothing() {
		return ttype.New(ttype.Nothing{})
	}
	return out
}
