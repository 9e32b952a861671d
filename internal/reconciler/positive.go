package reconciler

import "github.com/slackhq/hakana-sub000/internal/ttype"

// reconcileTruthy narrows existing to its truthy atoms (spec.md §4.5):
// Null/False/empty-string/zero/empty-array are removed outright; flagged
// atoms (MixedWithFlags, StringWithFlags) have their falsy branch closed.
func reconcileTruthy(existing *ttype.Union) *ttype.Union {
	out := ttype.Empty()
	for _, a := range existing.Atoms {
		switch v := a.(type) {
		case ttype.Null, ttype.False, ttype.Void:
			continue
		case ttype.LiteralInt:
			if v.Value == 0 {
				continue
			}
			out = out.WithAtom(v)
		case ttype.LiteralString:
			if v.Value == "" {
				continue
			}
			out = out.WithAtom(v)
		case ttype.StringWithFlags:
			v.Truthy = true
			v.NonEmpty = true
			out = out.WithAtom(v)
		case ttype.MixedWithFlags:
			if v.Falsy {
				continue
			}
			v.Truthy = true
			v.Nonnull = true
			out = out.WithAtom(v)
		case ttype.Vec:
			if isEmptyVecAtom(v) {
				continue
			}
			v.NonEmpty = true
			out = out.WithAtom(v)
		case ttype.Dict:
			if isEmptyDictAtom(v) {
				continue
			}
			v.NonEmpty = true
			out = out.WithAtom(v)
		case ttype.Bool:
			out = out.WithAtom(ttype.True{})
		default:
			out = out.WithAtom(a)
		}
	}
	if out.IsNothing() {
		return ttype.New(ttype.Nothing{})
	}
	return out
}

// reconcileIsset narrows existing to its non-null, defined atoms: Null and
// Void are removed, since `isset()` is false for both.
func reconcileIsset(existing *ttype.Union) *ttype.Union {
	out := ttype.Empty()
	for _, a := range existing.Atoms {
		switch a.(type) {
		case ttype.Null, ttype.Void:
			continue
		default:
			out = out.WithAtom(a)
		}
	}
	if out.IsNothing() {
		return ttype.New(ttype.Nothing{})
	}
	return out
}

// reconcileNonEmptyCountable narrows vec/dict/keyset atoms to their
// NonEmpty-flagged form, leaving other atoms untouched (they may still be
// countable objects the comparator, not the reconciler, must judge).
func reconcileNonEmptyCountable(existing *ttype.Union) *ttype.Union {
	out := ttype.Empty()
	for _, a := range existing.Atoms {
		switch v := a.(type) {
		case ttype.Vec:
			if isEmptyVecAtom(v) {
				continue
			}
			v.NonEmpty = true
			out = out.WithAtom(v)
		case ttype.Dict:
			if isEmptyDictAtom(v) {
				continue
			}
			v.NonEmpty = true
			out = out.WithAtom(v)
		case ttype.Keyset:
			v.NonEmpty = true
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

func isEmptyVecAtom(v ttype.Vec) bool {
	return v.KnownCount != nil && *v.KnownCount == 0
}

func isEmptyDictAtom(v ttype.Dict) bool {
	return v.KnownItems != nil && v.KnownItems.Len() == 0 && v.Params == nil
}

// reconcileExactlyCountable narrows vec atoms to a known count, discarding
// any atom whose known count contradicts it.
func reconcileExactlyCountable(existing *ttype.Union, count int) *ttype.Union {
	out := ttype.Empty()
	for _, a := range existing.Atoms {
		if v, ok := a.(ttype.Vec); ok {
			if v.KnownCount != nil && *v.KnownCount != count {
				continue
			}
			c := count
			v.KnownCount = &c
			v.NonEmpty = count > 0
			out = out.WithAtom(v)
			continue
		}
		out = out.WithAtom(a)
	}
	if out.IsNothing() {
		return ttype.New(ttype.Nothing{})
	}
	return out
}

// reconcileArrayAccess asserts that existing supports array access at all
// (vec/dict/keyset, or an arraykey-family scalar used as a string offset).
// Atoms that plainly cannot be indexed are dropped.
func reconcileArrayAccess(existing *ttype.Union) *ttype.Union {
	out := ttype.Empty()
	for _, a := range existing.Atoms {
		switch a.(type) {
		case ttype.Vec, ttype.Dict, ttype.Keyset, ttype.Mixed, ttype.MixedWithFlags, ttype.Object, ttype.String, ttype.StringWithFlags:
			out = out.WithAtom(a)
		default:
			continue
		}
	}
	if out.IsNothing() {
		return existing
	}
	return out
}

// reconcileInArray replaces existing with haystack's element type: the
// type parameter of haystack's last vec or keyset atom. Existing is
// returned unchanged when haystack is nil or has no vec/keyset atom; no
// intersection with existing is computed.
func reconcileInArray(existing, haystack *ttype.Union) *ttype.Union {
	if haystack == nil {
		return existing
	}
	var elem *ttype.Union
	for _, a := range haystack.Atoms {
		switch v := a.(type) {
		case ttype.Vec:
			elem = v.TypeParam
		case ttype.Keyset:
			elem = v.TypeParam
		}
	}
	if elem == nil {
		return existing
	}
	return elem
}

// reconcileHasArrayKey asserts existing (a dict/shape) has key present,
// marking the corresponding known_items entry (if any) as defined.
func reconcileHasArrayKey(existing *ttype.Union, key ttype.DictKey) *ttype.Union {
	out := ttype.Empty()
	for _, a := range existing.Atoms {
		if d, ok := a.(ttype.Dict); ok && d.KnownItems != nil {
			if item, found := d.KnownItems.Get(key); found {
				merged := d.KnownItems.Clone()
				item.PossiblyUndefined = false
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
