package template

import (
	"fmt"
	"sort"

	"github.com/slackhq/hakana-sub000/internal/codeinfo"
	"github.com/slackhq/hakana-sub000/internal/symbol"
	"github.com/slackhq/hakana-sub000/internal/ttype"
)

// InferredReplacer materialises a type by substituting each template
// variable by the most specific type from its accumulated lower bounds
// (spec.md §4.4.2).
type InferredReplacer struct {
	Codebase *codeinfo.Codebase
	Combine  CombineFunc
}

// Replace implements inferred_replace.
func (ir *InferredReplacer) Replace(u *ttype.Union, result *Result) *ttype.Union {
	out := ttype.Empty()
	for _, a := range u.Atoms {
		for _, r := range ir.replaceAtomic(a, result) {
			out = out.WithAtom(r)
		}
	}
	if len(out.Atoms) == 0 {
		return u
	}
	out.HadTemplate = true
	return out
}

func (ir *InferredReplacer) replaceAtomic(a ttype.Atomic, result *Result) []ttype.Atomic {
	switch v := a.(type) {
	case ttype.GenericParam:
		bounds := result.LowerBounds(v.ParamName, v.DefiningEntity)
		if len(bounds) == 0 {
			return []ttype.Atomic{a}
		}
		specific := GetMostSpecificTypeFromBounds(bounds, ir.Combine, ir.Codebase)
		return specific.Atoms
	case ttype.Dict:
		return []ttype.Atomic{ir.replaceInDict(v, result)}
	case ttype.Vec:
		return []ttype.Atomic{ir.replaceInVec(v, result)}
	case ttype.Keyset:
		return []ttype.Atomic{ttype.Keyset{TypeParam: ir.Replace(v.TypeParam, result), NonEmpty: v.NonEmpty}}
	case ttype.Awaitable:
		return []ttype.Atomic{ttype.Awaitable{Value: ir.Replace(v.Value, result)}}
	case ttype.NamedObject:
		if len(v.TypeParams) == 0 {
			return []ttype.Atomic{a}
		}
		out := v
		out.TypeParams = make([]*ttype.Union, len(v.TypeParams))
		for i, tp := range v.TypeParams {
			out.TypeParams[i] = ir.Replace(tp, result)
		}
		return []ttype.Atomic{out}
	case ttype.Closure:
		out := v
		out.Params = make([]ttype.Parameter, len(v.Params))
		for i, p := range v.Params {
			np := p
			np.Type = ir.Replace(p.Type, result)
			out.Params[i] = np
		}
		if v.ReturnType != nil {
			out.ReturnType = ir.Replace(v.ReturnType, result)
		}
		return []ttype.Atomic{out}
	default:
		return []ttype.Atomic{a}
	}
}

func (ir *InferredReplacer) replaceInDict(v ttype.Dict, result *Result) ttype.Dict {
	out := v
	if v.Params != nil {
		out.Params = &ttype.DictParams{Key: ir.Replace(v.Params.Key, result), Value: ir.Replace(v.Params.Value, result)}
	}
	if v.KnownItems != nil {
		merged := ttype.NewOrderedDict()
		for _, k := range v.KnownItems.Keys() {
			item, _ := v.KnownItems.Get(k)
			merged.Set(k, ttype.DictItem{PossiblyUndefined: item.PossiblyUndefined, Value: ir.Replace(item.Value, result)})
		}
		out.KnownItems = merged
	}
	return out
}

func (ir *InferredReplacer) replaceInVec(v ttype.Vec, result *Result) ttype.Vec {
	out := v
	if v.TypeParam != nil {
		out.TypeParam = ir.Replace(v.TypeParam, result)
	}
	if v.KnownItems != nil {
		merged := ttype.NewOrderedVec()
		for _, o := range v.KnownItems.Offsets() {
			item, _ := v.KnownItems.Get(o)
			merged.Set(o, ttype.VecItem{PossiblyUndefined: item.PossiblyUndefined, Value: ir.Replace(item.Value, result)})
		}
		out.KnownItems = merged
	}
	return out
}

// GetMostSpecificTypeFromBounds implements spec.md §4.4.2's algorithm:
// with one bound, return it; otherwise sort by appearance depth and
// accumulate left to right, stopping once depth increases past the first
// accepted depth unless an equality bound with a different arg offset
// extends the walk.
func GetMostSpecificTypeFromBounds(bounds []Bound, combine CombineFunc, cb *codeinfo.Codebase) *ttype.Union {
	if len(bounds) == 1 {
		return bounds[0].BoundType
	}
	sorted := append([]Bound(nil), bounds...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].AppearanceDepth < sorted[j].AppearanceDepth })

	result := sorted[0].BoundType
	firstDepth := sorted[0].AppearanceDepth
	sawEquality := sorted[0].EqualityBoundClasslike != nil
	lastOffset := sorted[0].ArgOffset

	for i := 1; i < len(sorted); i++ {
		b := sorted[i]
		if b.AppearanceDepth > firstDepth {
			if sawEquality && !samePtrInt(lastOffset, b.ArgOffset) {
				// continue at the new depth
			} else {
				break
			}
		}
		result = combine(result, b.BoundType, cb)
		if b.EqualityBoundClasslike != nil {
			sawEquality = true
		}
		lastOffset = b.ArgOffset
	}
	return result
}

// GetRootTemplateType implements spec.md §4.4.2's get_root_template_type:
// follow lower_bounds transitively when the chosen bound is itself a
// single template parameter, detecting cycles via a visited set.
func GetRootTemplateType(name symbol.SymbolId, entity symbol.GenericParent, result *Result, combine CombineFunc, cb *codeinfo.Codebase) *ttype.Union {
	visited := map[string]bool{}
	cur, curEntity := name, entity
	for {
		key := entityKey(curEntity) + "|" + fmt.Sprintf("%d", cur)
		if visited[key] {
			return ttype.New(ttype.MixedWithFlags{Any: true})
		}
		visited[key] = true

		bounds := result.LowerBounds(cur, curEntity)
		if len(bounds) == 0 {
			if asType, ok := result.IsDeclared(cur, curEntity); ok {
				return asType
			}
			return ttype.New(ttype.Mixed{})
		}
		chosen := GetMostSpecificTypeFromBounds(bounds, combine, cb)
		single, ok := chosen.IsSingle()
		if !ok {
			return chosen
		}
		gp, ok := single.(ttype.GenericParam)
		if !ok {
			return chosen
		}
		cur, curEntity = gp.ParamName, gp.DefiningEntity
	}
}
