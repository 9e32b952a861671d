package template

import (
	"github.com/slackhq/hakana-sub000/internal/codeinfo"
	"github.com/slackhq/hakana-sub000/internal/symbol"
	"github.com/slackhq/hakana-sub000/internal/ttype"
)

const maxStandinDepth = 10

// CombineFunc and IntersectFunc let this package call into the combiner
// without importing it directly (the combiner imports ttype/codeinfo;
// template stays a peer rather than adding a third edge to that cycle
// risk).
type CombineFunc func(a, b *ttype.Union, cb *codeinfo.Codebase) *ttype.Union
type IntersectFunc func(a, b *ttype.Union, cb *codeinfo.Codebase) (*ttype.Union, bool)

// StandinReplacer carries the callback functions needed from the
// combiner/comparator without a direct package dependency.
type StandinReplacer struct {
	Codebase  *codeinfo.Codebase
	Combine   CombineFunc
	Intersect IntersectFunc
}

// Replace implements spec.md §4.4.1's standin_replace: it substitutes
// templates in paramType using candidate arguments, accumulating bounds
// into result. callingClass is the classlike performing the call (inside
// whose body a self-owned template is never substituted).
func (s *StandinReplacer) Replace(
	paramType *ttype.Union,
	result *Result,
	inputType *ttype.Union,
	inputArgOffset *int,
	callingClass *codeinfo.ClassLikeInfo,
	addLowerBound bool,
	depth int,
) *ttype.Union {
	if depth > maxStandinDepth {
		return paramType
	}
	out := ttype.Empty()
	for _, a := range paramType.Atoms {
		replaced := s.replaceAtomic(a, result, inputType, inputArgOffset, callingClass, addLowerBound, depth)
		for _, r := range replaced {
			out = out.WithAtom(r)
		}
	}
	return out
}

func (s *StandinReplacer) replaceAtomic(
	a ttype.Atomic,
	result *Result,
	inputType *ttype.Union,
	inputArgOffset *int,
	callingClass *codeinfo.ClassLikeInfo,
	addLowerBound bool,
	depth int,
) []ttype.Atomic {
	switch v := a.(type) {
	case ttype.GenericParam:
		return s.replaceGenericParam(v, result, inputType, inputArgOffset, callingClass, addLowerBound, depth)

	case ttype.Dict:
		return []ttype.Atomic{s.replaceInDict(v, result, inputType, inputArgOffset, callingClass, addLowerBound, depth)}

	case ttype.Vec:
		return []ttype.Atomic{s.replaceInVec(v, result, inputType, inputArgOffset, callingClass, addLowerBound, depth)}

	case ttype.Keyset:
		var inner *ttype.Union
		if inputType != nil {
			inner = matchingArrayElement(inputType)
		}
		return []ttype.Atomic{ttype.Keyset{
			TypeParam: s.Replace(v.TypeParam, result, inner, inputArgOffset, callingClass, addLowerBound, depth+1),
			NonEmpty:  v.NonEmpty,
		}}

	case ttype.Awaitable:
		var inner *ttype.Union
		if inputType != nil {
			if single, ok := inputType.IsSingle(); ok {
				if aw, ok2 := single.(ttype.Awaitable); ok2 {
					inner = aw.Value
				}
			}
		}
		return []ttype.Atomic{ttype.Awaitable{
			Value: s.Replace(v.Value, result, inner, inputArgOffset, callingClass, addLowerBound, depth+1),
		}}

	case ttype.Closure:
		return []ttype.Atomic{s.replaceInClosure(v, result, inputType, inputArgOffset, callingClass, addLowerBound, depth)}

	case ttype.NamedObject:
		return []ttype.Atomic{s.replaceInNamedObject(v, result, inputType, callingClass, addLowerBound, depth)}

	default:
		return []ttype.Atomic{a}
	}
}

func (s *StandinReplacer) replaceGenericParam(
	v ttype.GenericParam,
	result *Result,
	inputType *ttype.Union,
	inputArgOffset *int,
	callingClass *codeinfo.ClassLikeInfo,
	addLowerBound bool,
	depth int,
) []ttype.Atomic {
	if callingClass != nil {
		if cp, ok := v.DefiningEntity.(symbol.ClassLikeParent); ok && cp.Name == callingClass.Name {
			// Inside the class that owns this template: leave it unreplaced.
			return []ttype.Atomic{v}
		}
	}
	declaredBound, declared := result.IsDeclared(v.ParamName, v.DefiningEntity)
	if !declared {
		return []ttype.Atomic{v}
	}

	if inputType != nil {
		matching := findMatchingAtomicTypesForTemplate(v, inputType)
		if matching != nil {
			bound := Bound{BoundType: matching, AppearanceDepth: depth, ArgOffset: inputArgOffset}
			if !addLowerBound {
				result.AddLowerBound(v.ParamName, v.DefiningEntity, bound)
			} else {
				result.SetUpperBound(v.ParamName, v.DefiningEntity, bound, s.Codebase, s.Intersect)
			}
		}
	}

	var replacementAtoms []ttype.Atomic
	if declaredBound == nil || isMixedUnion(declaredBound) {
		replacementAtoms = append(replacementAtoms, v.AsType.Atoms...)
	} else {
		replacementAtoms = append(replacementAtoms, declaredBound.Atoms...)
	}
	return replacementAtoms
}

func isMixedUnion(u *ttype.Union) bool {
	if u == nil {
		return true
	}
	single, ok := u.IsSingle()
	if !ok {
		return false
	}
	switch single.(type) {
	case ttype.Mixed, ttype.MixedWithFlags, ttype.MixedFromLoopIsset:
		return true
	}
	return false
}

// findMatchingAtomicTypesForTemplate returns input unchanged, or nil when
// input is nil or has no atoms. It does not filter atoms by key or by the
// template's declared bound (closures/collections are handled by their
// own recursive cases above, not here).
func findMatchingAtomicTypesForTemplate(v ttype.GenericParam, input *ttype.Union) *ttype.Union {
	if input == nil || len(input.Atoms) == 0 {
		return nil
	}
	return input
}

func matchingArrayElement(input *ttype.Union) *ttype.Union {
	for _, a := range input.Atoms {
		switch v := a.(type) {
		case ttype.Vec:
			return v.TypeParam
		case ttype.Keyset:
			return v.TypeParam
		case ttype.Dict:
			if v.Params != nil {
				return v.Params.Value
			}
		}
	}
	return nil
}

func (s *StandinReplacer) replaceInDict(
	v ttype.Dict,
	result *Result,
	inputType *ttype.Union,
	inputArgOffset *int,
	callingClass *codeinfo.ClassLikeInfo,
	addLowerBound bool,
	depth int,
) ttype.Dict {
	var inputDict *ttype.Dict
	if inputType != nil {
		for _, a := range inputType.Atoms {
			if d, ok := a.(ttype.Dict); ok {
				inputDict = &d
				break
			}
		}
	}
	out := v
	if v.Params != nil {
		var inK, inV *ttype.Union
		if inputDict != nil && inputDict.Params != nil {
			inK, inV = inputDict.Params.Key, inputDict.Params.Value
		}
		out.Params = &ttype.DictParams{
			Key:   s.Replace(v.Params.Key, result, inK, inputArgOffset, callingClass, addLowerBound, depth+1),
			Value: s.Replace(v.Params.Value, result, inV, inputArgOffset, callingClass, addLowerBound, depth+1),
		}
	}
	if v.KnownItems != nil {
		merged := ttype.NewOrderedDict()
		for _, k := range v.KnownItems.Keys() {
			item, _ := v.KnownItems.Get(k)
			var inItem *ttype.Union
			if inputDict != nil && inputDict.KnownItems != nil {
				if bi, ok := inputDict.KnownItems.Get(k); ok {
					inItem = bi.Value
				}
			}
			merged.Set(k, ttype.DictItem{
				PossiblyUndefined: item.PossiblyUndefined,
				Value:             s.Replace(item.Value, result, inItem, inputArgOffset, callingClass, addLowerBound, depth+1),
			})
		}
		out.KnownItems = merged
	}
	return out
}

func (s *StandinReplacer) replaceInVec(
	v ttype.Vec,
	result *Result,
	inputType *ttype.Union,
	inputArgOffset *int,
	callingClass *codeinfo.ClassLikeInfo,
	addLowerBound bool,
	depth int,
) ttype.Vec {
	var inputVec *ttype.Vec
	if inputType != nil {
		for _, a := range inputType.Atoms {
			if vv, ok := a.(ttype.Vec); ok {
				inputVec = &vv
				break
			}
		}
	}
	out := v
	if v.TypeParam != nil {
		var inT *ttype.Union
		if inputVec != nil {
			inT = inputVec.TypeParam
		}
		out.TypeParam = s.Replace(v.TypeParam, result, inT, inputArgOffset, callingClass, addLowerBound, depth+1)
	}
	if v.KnownItems != nil {
		merged := ttype.NewOrderedVec()
		for _, o := range v.KnownItems.Offsets() {
			item, _ := v.KnownItems.Get(o)
			var inItem *ttype.Union
			if inputVec != nil && inputVec.KnownItems != nil {
				if bi, ok := inputVec.KnownItems.Get(o); ok {
					inItem = bi.Value
				}
			}
			merged.Set(o, ttype.VecItem{
				PossiblyUndefined: item.PossiblyUndefined,
				Value:             s.Replace(item.Value, result, inItem, inputArgOffset, callingClass, addLowerBound, depth+1),
			})
		}
		out.KnownItems = merged
	}
	return out
}

// replaceInClosure recurses into parameters with the lower/upper-bound
// flag flipped (closure parameter positions are contravariant relative
// to the enclosing position) and the return type with the flag restored.
func (s *StandinReplacer) replaceInClosure(
	v ttype.Closure,
	result *Result,
	inputType *ttype.Union,
	inputArgOffset *int,
	callingClass *codeinfo.ClassLikeInfo,
	addLowerBound bool,
	depth int,
) ttype.Closure {
	var inputClosure *ttype.Closure
	if inputType != nil {
		if single, ok := inputType.IsSingle(); ok {
			if cl, ok2 := single.(ttype.Closure); ok2 {
				inputClosure = &cl
			}
		}
	}
	out := v
	out.Params = make([]ttype.Parameter, len(v.Params))
	for i, p := range v.Params {
		var inP *ttype.Union
		if inputClosure != nil && i < len(inputClosure.Params) {
			inP = inputClosure.Params[i].Type
		}
		np := p
		np.Type = s.Replace(p.Type, result, inP, inputArgOffset, callingClass, !addLowerBound, depth+1)
		out.Params[i] = np
	}
	if v.ReturnType != nil {
		var inR *ttype.Union
		if inputClosure != nil {
			inR = inputClosure.ReturnType
		}
		out.ReturnType = s.Replace(v.ReturnType, result, inR, inputArgOffset, callingClass, addLowerBound, depth+1)
	}
	return out
}

func (s *StandinReplacer) replaceInNamedObject(
	v ttype.NamedObject,
	result *Result,
	inputType *ttype.Union,
	callingClass *codeinfo.ClassLikeInfo,
	addLowerBound bool,
	depth int,
) ttype.NamedObject {
	if len(v.TypeParams) == 0 {
		return v
	}
	var inputObj *ttype.NamedObject
	if inputType != nil {
		for _, a := range inputType.Atoms {
			if o, ok := a.(ttype.NamedObject); ok && o.Name == v.Name {
				inputObj = &o
				break
			}
		}
	}
	out := v
	out.TypeParams = make([]*ttype.Union, len(v.TypeParams))
	for i, tp := range v.TypeParams {
		var inTP *ttype.Union
		if inputObj != nil && i < len(inputObj.TypeParams) {
			inTP = inputObj.TypeParams[i]
		}
		out.TypeParams[i] = s.Replace(tp, result, inTP, nil, callingClass, addLowerBound, depth+1)
	}
	return out
}
