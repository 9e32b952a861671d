// Package expander implements the type expander (spec.md §4.3): it
// substitutes self/static/parent and type aliases, and normalises a type
// to its canonical form for comparison.
package expander

import (
	"github.com/slackhq/hakana-sub000/internal/codeinfo"
	"github.com/slackhq/hakana-sub000/internal/symbol"
	"github.com/slackhq/hakana-sub000/internal/ttype"
)

// StaticClassType is the tagged Option described in spec.md §4.3:
// None | Name(SymbolId) | Object(TAtomic).
type StaticClassType struct {
	Name   *symbol.SymbolId
	Object ttype.Atomic
}

// Options mirrors spec.md §4.3's knob set.
type Options struct {
	SelfClass            *symbol.SymbolId
	StaticClassType       StaticClassType
	ParentClass           *symbol.SymbolId
	FunctionIsFinal       bool
	FilePath              string
	ExpandTemplates       bool
	ExpandGeneric         bool
	ExpandAllTypeAliases  bool
	EvaluateClassConstants bool
}

// Expand normalises u in place according to opts and returns it (the
// return value is u itself, to make call sites read naturally:
// `u = expander.Expand(cb, u, opts)`).
func Expand(cb *codeinfo.Codebase, u *ttype.Union, opts Options) *ttype.Union {
	if u == nil {
		return nil
	}
	out := make([]ttype.Atomic, 0, len(u.Atoms))
	for _, a := range u.Atoms {
		out = append(out, expandAtomic(cb, a, opts, 0)...)
	}
	u.Atoms = out
	return u
}

const maxExpandDepth = 32

func expandAtomic(cb *codeinfo.Codebase, a ttype.Atomic, opts Options, depth int) []ttype.Atomic {
	if depth > maxExpandDepth {
		return []ttype.Atomic{a}
	}
	switch v := a.(type) {
	case ttype.NamedObject:
		if v.Name == symbol.Self && opts.SelfClass != nil {
			return []ttype.Atomic{ttype.NamedObject{Name: *opts.SelfClass, TypeParams: v.TypeParams, IsThis: v.IsThis}}
		}
		if v.Name == symbol.Static {
			if opts.StaticClassType.Object != nil {
				return []ttype.Atomic{opts.StaticClassType.Object}
			}
			if opts.StaticClassType.Name != nil {
				return []ttype.Atomic{ttype.NamedObject{Name: *opts.StaticClassType.Name, TypeParams: v.TypeParams, IsThis: v.IsThis}}
			}
		}
		return []ttype.Atomic{expandNested(cb, v, opts, depth)}

	case ttype.TypeAlias:
		return expandTypeAlias(cb, v, opts, depth)

	case ttype.ClassTypeConstant:
		if !opts.EvaluateClassConstants {
			return []ttype.Atomic{v}
		}
		return expandClassTypeConstant(cb, v, opts, depth)

	case ttype.GenericClassname:
		if resolved, ok := resolveGenericDefiningEntity(cb, v.DefiningEntity, v.ParamName); ok {
			return []ttype.Atomic{ttype.Classname{AsType: resolved}}
		}
		return []ttype.Atomic{v}

	case ttype.GenericTypename:
		if resolved, ok := resolveGenericDefiningEntity(cb, v.DefiningEntity, v.ParamName); ok {
			return []ttype.Atomic{ttype.Typename{AsType: resolved}}
		}
		return []ttype.Atomic{v}

	case ttype.GenericParam:
		if !opts.ExpandTemplates {
			return []ttype.Atomic{v}
		}
		Expand(cb, v.AsType, opts)
		return []ttype.Atomic{v}

	case ttype.Dict:
		if v.Params != nil {
			Expand(cb, v.Params.Key, opts)
			Expand(cb, v.Params.Value, opts)
		}
		if v.KnownItems != nil {
			for _, k := range v.KnownItems.Keys() {
				item, _ := v.KnownItems.Get(k)
				Expand(cb, item.Value, opts)
			}
		}
		return []ttype.Atomic{v}

	case ttype.Vec:
		if v.TypeParam != nil {
			Expand(cb, v.TypeParam, opts)
		}
		if v.KnownItems != nil {
			for _, o := range v.KnownItems.Offsets() {
				item, _ := v.KnownItems.Get(o)
				Expand(cb, item.Value, opts)
			}
		}
		return []ttype.Atomic{v}

	case ttype.Keyset:
		Expand(cb, v.TypeParam, opts)
		return []ttype.Atomic{v}

	case ttype.Awaitable:
		Expand(cb, v.Value, opts)
		return []ttype.Atomic{v}

	case ttype.Closure:
		for i := range v.Params {
			Expand(cb, v.Params[i].Type, opts)
		}
		if v.ReturnType != nil {
			Expand(cb, v.ReturnType, opts)
		}
		return []ttype.Atomic{v}

	default:
		return []ttype.Atomic{a}
	}
}

func expandNested(cb *codeinfo.Codebase, v ttype.NamedObject, opts Options, depth int) ttype.Atomic {
	if !opts.ExpandGeneric {
		return v
	}
	for _, p := range v.TypeParams {
		Expand(cb, p, opts)
	}
	return v
}

func expandTypeAlias(cb *codeinfo.Codebase, v ttype.TypeAlias, opts Options, depth int) []ttype.Atomic {
	def, ok := cb.TypeDefs[v.Name]
	if !ok || def.ActualType == nil {
		return []ttype.Atomic{v}
	}
	if def.IsNewtype && !opts.ExpandAllTypeAliases && opts.FilePath != def.DefiningFile {
		// Keep the alias opaque outside its defining file.
		return []ttype.Atomic{ttype.TypeAlias{Name: v.Name, TypeParams: v.TypeParams, AsType: nil}}
	}
	substituted := substituteTypeParams(def, v.TypeParams)
	Expand(cb, substituted, opts)
	inlined := make([]ttype.Atomic, 0, len(substituted.Atoms))
	for _, a := range substituted.Atoms {
		inlined = append(inlined, expandAtomic(cb, a, opts, depth+1)...)
	}
	return inlined
}

func substituteTypeParams(def *codeinfo.TypeDefinition, args []*ttype.Union) *ttype.Union {
	if len(def.TypeParams) == 0 || len(args) == 0 {
		return def.ActualType.Clone()
	}
	mapping := make(map[symbol.SymbolId]*ttype.Union, len(def.TypeParams))
	for i, p := range def.TypeParams {
		if i < len(args) {
			mapping[p] = args[i]
		}
	}
	return substituteGenericParams(def.ActualType, mapping)
}

func substituteGenericParams(u *ttype.Union, mapping map[symbol.SymbolId]*ttype.Union) *ttype.Union {
	out := ttype.Empty()
	for _, a := range u.Atoms {
		if gp, ok := a.(ttype.GenericParam); ok {
			if repl, ok2 := mapping[gp.ParamName]; ok2 {
				for _, r := range repl.Atoms {
					out = out.WithAtom(r)
				}
				continue
			}
		}
		out = out.WithAtom(a)
	}
	return out
}

func expandClassTypeConstant(cb *codeinfo.Codebase, v ttype.ClassTypeConstant, opts Options, depth int) []ttype.Atomic {
	named, ok := v.ClassType.(ttype.NamedObject)
	if !ok {
		return []ttype.Atomic{v}
	}
	cls, ok := cb.Classlikes[named.Name]
	if !ok {
		return []ttype.Atomic{v}
	}
	tc, ok := cls.TypeConstants[v.MemberName]
	if !ok {
		return []ttype.Atomic{v}
	}
	inlined := tc.Clone()
	Expand(cb, inlined, opts)
	return inlined.Atoms
}

func resolveGenericDefiningEntity(cb *codeinfo.Codebase, entity symbol.GenericParent, paramName symbol.SymbolId) (ttype.Atomic, bool) {
	switch e := entity.(type) {
	case symbol.ClassLikeParent:
		cls, ok := cb.Classlikes[e.Name]
		if !ok {
			return nil, false
		}
		entries := cls.TemplateTypes.Entries(paramName)
		if len(entries) == 0 || entries[0].AsType == nil {
			return nil, false
		}
		if single, ok := entries[0].AsType.IsSingle(); ok {
			return single, true
		}
	}
	return nil, false
}
