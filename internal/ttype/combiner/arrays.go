package combiner

import "github.com/slackhq/hakana-sub000/internal/ttype"

// mergeDicts merges two dicts: the result's known_items hold the keys of
// both sides; a shared key gets its value unions combined and
// possibly_undefined ORed; a key on one side only keeps its entry and is
// forced possibly_undefined when the other side has no open params. A
// one-sided key is never folded into the other side's open params. The
// open params of both sides are joined and non_empty is ANDed.
func mergeDicts(a, b ttype.Dict, overwriteEmptyArray bool) ttype.Dict {
	if overwriteEmptyArray {
		if isEmptyDict(a) && !isEmptyDict(b) {
			return b
		}
		if isEmptyDict(b) && !isEmptyDict(a) {
			return a
		}
	}

	result := ttype.Dict{NonEmpty: a.NonEmpty && b.NonEmpty}

	if a.Params != nil && b.Params != nil {
		result.Params = &ttype.DictParams{
			Key:   ttype.New(append(append([]ttype.Atomic(nil), a.Params.Key.Atoms...), b.Params.Key.Atoms...)...),
			Value: ttype.New(append(append([]ttype.Atomic(nil), a.Params.Value.Atoms...), b.Params.Value.Atoms...)...),
		}
	} else if a.Params != nil {
		result.Params = a.Params
	} else if b.Params != nil {
		result.Params = b.Params
	}

	if a.KnownItems != nil || b.KnownItems != nil {
		merged := ttype.NewOrderedDict()
		seen := map[ttype.DictKey]bool{}
		if a.KnownItems != nil {
			for _, k := range a.KnownItems.Keys() {
				seen[k] = true
			}
		}
		if b.KnownItems != nil {
			for _, k := range b.KnownItems.Keys() {
				seen[k] = true
			}
		}
		keys := []ttype.DictKey{}
		if a.KnownItems != nil {
			keys = append(keys, a.KnownItems.Keys()...)
		}
		if b.KnownItems != nil {
			for _, k := range b.KnownItems.Keys() {
				found := false
				for _, existing := range keys {
					if existing == k {
						found = true
						break
					}
				}
				if !found {
					keys = append(keys, k)
				}
			}
		}
		for _, k := range keys {
			var aItem, bItem ttype.DictItem
			var aOK, bOK bool
			if a.KnownItems != nil {
				aItem, aOK = a.KnownItems.Get(k)
			}
			if b.KnownItems != nil {
				bItem, bOK = b.KnownItems.Get(k)
			}
			switch {
			case aOK && bOK:
				merged.Set(k, ttype.DictItem{
					PossiblyUndefined: aItem.PossiblyUndefined || bItem.PossiblyUndefined,
					Value:             ttype.New(append(append([]ttype.Atomic(nil), aItem.Value.Atoms...), bItem.Value.Atoms...)...),
				})
			case aOK:
				undef := bItem.PossiblyUndefined || b.Params == nil
				merged.Set(k, ttype.DictItem{PossiblyUndefined: undef || b.Params == nil, Value: aItem.Value})
			case bOK:
				undef := a.Params == nil
				merged.Set(k, ttype.DictItem{PossiblyUndefined: undef, Value: bItem.Value})
			}
		}
		result.KnownItems = merged
	}

	if a.ShapeName != nil && b.ShapeName != nil && *a.ShapeName == *b.ShapeName {
		result.ShapeName = a.ShapeName
	}
	return result
}

func isEmptyDict(d ttype.Dict) bool {
	return !d.NonEmpty && (d.KnownItems == nil || d.KnownItems.Len() == 0) && d.Params == nil
}

// mergeVecs is mergeDicts's counterpart for integer-keyed tuples/vecs.
func mergeVecs(a, b ttype.Vec, overwriteEmptyArray bool) ttype.Vec {
	if overwriteEmptyArray {
		if isEmptyVec(a) && !isEmptyVec(b) {
			return b
		}
		if isEmptyVec(b) && !isEmptyVec(a) {
			return a
		}
	}

	result := ttype.Vec{NonEmpty: a.NonEmpty && b.NonEmpty}

	if a.TypeParam != nil && b.TypeParam != nil {
		result.TypeParam = ttype.New(append(append([]ttype.Atomic(nil), a.TypeParam.Atoms...), b.TypeParam.Atoms...)...)
	} else if a.TypeParam != nil {
		result.TypeParam = a.TypeParam
	} else {
		result.TypeParam = b.TypeParam
	}

	if a.KnownItems != nil || b.KnownItems != nil {
		merged := ttype.NewOrderedVec()
		offsets := []int{}
		if a.KnownItems != nil {
			offsets = append(offsets, a.KnownItems.Offsets()...)
		}
		if b.KnownItems != nil {
			for _, o := range b.KnownItems.Offsets() {
				found := false
				for _, existing := range offsets {
					if existing == o {
						found = true
						break
					}
				}
				if !found {
					offsets = append(offsets, o)
				}
			}
		}
		for _, o := range offsets {
			var aItem, bItem ttype.VecItem
			var aOK, bOK bool
			if a.KnownItems != nil {
				aItem, aOK = a.KnownItems.Get(o)
			}
			if b.KnownItems != nil {
				bItem, bOK = b.KnownItems.Get(o)
			}
			switch {
			case aOK && bOK:
				merged.Set(o, ttype.VecItem{
					PossiblyUndefined: aItem.PossiblyUndefined || bItem.PossiblyUndefined,
					Value:             ttype.New(append(append([]ttype.Atomic(nil), aItem.Value.Atoms...), bItem.Value.Atoms...)...),
				})
			case aOK:
				merged.Set(o, ttype.VecItem{PossiblyUndefined: aItem.PossiblyUndefined || b.TypeParam == nil, Value: aItem.Value})
			case bOK:
				merged.Set(o, ttype.VecItem{PossiblyUndefined: a.TypeParam == nil, Value: bItem.Value})
			}
		}
		result.KnownItems = merged
	}

	if a.KnownCount != nil && b.KnownCount != nil && *a.KnownCount == *b.KnownCount {
		result.KnownCount = a.KnownCount
	}
	return result
}

func isEmptyVec(v ttype.Vec) bool {
	return !v.NonEmpty && (v.KnownItems == nil || v.KnownItems.Len() == 0) && v.TypeParam == nil
}
