package template

import (
	"github.com/slackhq/hakana-sub000/internal/codeinfo"
	"github.com/slackhq/hakana-sub000/internal/symbol"
	"github.com/slackhq/hakana-sub000/internal/ttype"
)

// GetExtendedTemplatedTypes implements spec.md §4.4.3: follows
// ClassLikeInfo.TemplateExtendedParams for a GenericParam{defining_entity
// = ClassLike(C)}, recursing into the mapped union (which may itself
// reference a further ancestor's template) until no further mapping
// exists. This is how `class Foo extends Bar<int>` propagates `Bar::T =
// int` when inferring against a Foo value.
func GetExtendedTemplatedTypes(a ttype.Atomic, cb *codeinfo.Codebase) []ttype.Atomic {
	gp, ok := a.(ttype.GenericParam)
	if !ok {
		return []ttype.Atomic{a}
	}
	clp, ok := gp.DefiningEntity.(symbol.ClassLikeParent)
	if !ok {
		return []ttype.Atomic{a}
	}
	visited := map[symbol.SymbolId]bool{}
	cur := clp.Name
	curParam := gp.ParamName
	for !visited[cur] {
		visited[cur] = true
		cls, ok := cb.Classlikes[cur]
		if !ok {
			break
		}
		for _, ancestor := range cls.TemplateExtendedParams.Ancestors() {
			if mapped, ok := cls.TemplateExtendedParams.Get(ancestor, curParam); ok {
				out := []ttype.Atomic{}
				for _, ma := range mapped.Atoms {
					out = append(out, GetExtendedTemplatedTypes(ma, cb)...)
				}
				return out
			}
		}
		break
	}
	return []ttype.Atomic{a}
}
