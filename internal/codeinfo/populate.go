package codeinfo

import (
	"fmt"

	"github.com/slackhq/hakana-sub000/internal/symbol"
	"github.com/slackhq/hakana-sub000/internal/ttype"
)

// CyclicInheritanceError reports a class-ancestry cycle detected during
// population, per spec.md §9 ("cycles in ancestors... reported as invalid
// dependencies").
type CyclicInheritanceError struct {
	Cycle []symbol.SymbolId
}

func (e *CyclicInheritanceError) Error() string {
	return fmt.Sprintf("cyclic inheritance involving %d classlikes", len(e.Cycle))
}

// PopulateCodebase finishes symbol-table construction: it walks the
// inheritance DAG leaves-first to compute each ClassLikeInfo's transitive
// closures (AllParentClasses, AllParentInterfaces, AllClassInterfaces)
// and its TemplateExtendedParams, and only then marks each ClassLikeInfo
// populated. Parent and interface lists already hold SymbolIds; Reference
// atomics inside member and parameter types are left as they are (it does
// not call ResolveReference).
//
// Population is a total order over the dependency DAG and therefore
// produces the same result regardless of how a preceding parallel scan
// partitioned files (spec.md §5). It must run single-threaded, after every
// worker's partial codebase has been merged in.
func PopulateCodebase(cb *Codebase) error {
	visiting := make(map[symbol.SymbolId]bool)
	done := make(map[symbol.SymbolId]bool)
	var stack []symbol.SymbolId

	var visit func(name symbol.SymbolId) error
	visit = func(name symbol.SymbolId) error {
		if done[name] {
			return nil
		}
		if visiting[name] {
			cycle := append([]symbol.SymbolId(nil), stack...)
			cycle = append(cycle, name)
			return &CyclicInheritanceError{Cycle: cycle}
		}
		cls, ok := cb.Classlikes[name]
		if !ok {
			// Referenced but not in this codebase (e.g. a builtin); treat
			// as a leaf with no further ancestry to merge.
			return nil
		}
		visiting[name] = true
		stack = append(stack, name)
		defer func() {
			visiting[name] = false
			stack = stack[:len(stack)-1]
		}()

		ancestors := ancestorNames(cls)
		for _, a := range ancestors {
			if err := visit(a); err != nil {
				return err
			}
		}
		populateOne(cb, cls)
		done[name] = true
		return nil
	}

	for name := range cb.Classlikes {
		if err := visit(name); err != nil {
			return err
		}
	}
	return nil
}

func ancestorNames(cls *ClassLikeInfo) []symbol.SymbolId {
	var out []symbol.SymbolId
	if cls.ParentClass != nil {
		out = append(out, *cls.ParentClass)
	}
	out = append(out, cls.ParentInterfaces...)
	out = append(out, cls.DirectImplements...)
	out = append(out, cls.UsedTraits...)
	return out
}

// populateOne assumes every ancestor named by cls has already been
// populated, and computes cls's own transitive closures and
// template_extended_params from them.
func populateOne(cb *Codebase, cls *ClassLikeInfo) {
	merge := func(name symbol.SymbolId, intoInterfaces bool) {
		anc, ok := cb.Classlikes[name]
		if !ok {
			return
		}
		if anc.Kind == ClassKindInterface || intoInterfaces {
			cls.AllParentInterfaces.Add(name)
			cls.AllParentInterfaces = cls.AllParentInterfaces.Union(anc.AllParentInterfaces)
		} else {
			cls.AllParentClasses.Add(name)
			cls.AllParentClasses = cls.AllParentClasses.Union(anc.AllParentClasses)
		}
		cls.AllClassInterfaces = cls.AllClassInterfaces.Union(anc.AllClassInterfaces)
		if anc.Kind == ClassKindInterface {
			cls.AllClassInterfaces.Add(name)
		}
		propagateExtendedParams(cls, anc, name)
	}

	if cls.ParentClass != nil {
		merge(*cls.ParentClass, false)
	}
	for _, iface := range cls.ParentInterfaces {
		merge(iface, true)
	}
	for _, iface := range cls.DirectImplements {
		merge(iface, true)
	}
	for _, t := range cls.UsedTraits {
		merge(t, false)
	}

	resolveMembers(cb, cls)
	cls.populated = true
}

// propagateExtendedParams computes, for every template `name` declared by
// ancestor `anc`, the concrete union substituted along cls's direct edge
// to anc, then folds in whatever anc itself inherited from its own
// ancestors (so a three-level chain `Foo extends Bar<int> extends
// Baz<T>` resolves `Baz::T = int` at Foo). This is the Go analogue of
// Hakana's populator.rs walking `template_extended_params`.
func propagateExtendedParams(cls, anc *ClassLikeInfo, ancName symbol.SymbolId) {
	// cls.TemplateExtendedParams[ancName][*] is populated directly by the
	// external reflector from the literal `extends Bar<int>` clause; here
	// we fold in whatever anc itself inherited transitively.
	for _, ancestorOfAnc := range anc.TemplateExtendedParams.Ancestors() {
		for templateName, u := range anc.TemplateExtendedParams.perAncestor[ancestorOfAnc] {
			// A binding to one of anc's own templates is replaced by what
			// cls bound that template to, when cls records a binding.
			if single, ok := u.IsSingle(); ok {
				if gp, ok := single.(ttype.GenericParam); ok && symbol.Equal(gp.DefiningEntity, symbol.ClassLikeParent{Name: ancName}) {
					if bound, ok := cls.TemplateExtendedParams.Get(ancName, gp.ParamName); ok {
						u = bound
					}
				}
			}
			cls.TemplateExtendedParams.Set(ancestorOfAnc, templateName, u)
		}
	}
}

// resolveMembers populates AppearingMethodIds/DeclaringMethodIds etc. from
// the classlike's own declared methods plus whatever it inherits from its
// already-populated ancestors (trait use and interface default methods
// are not modeled beyond direct declaration in this subset).
func resolveMembers(cb *Codebase, cls *ClassLikeInfo) {
	for name := range cls.Methods {
		cls.DeclaringMethodIds[name] = cls.Name
		cls.AppearingMethodIds[name] = cls.Name
		cls.InheritableMethodIds[name] = cls.Name
	}
	for name := range cls.Properties {
		cls.DeclaringPropertyIds[name] = cls.Name
		cls.AppearingPropertyIds[name] = cls.Name
	}
	if cls.ParentClass != nil {
		if parent, ok := cb.Classlikes[*cls.ParentClass]; ok {
			for name, declarer := range parent.DeclaringMethodIds {
				if _, overridden := cls.Methods[name]; overridden {
					cls.OverriddenMethodIds[name] = append(cls.OverriddenMethodIds[name], declarer)
					continue
				}
				if _, exists := cls.DeclaringMethodIds[name]; !exists {
					cls.DeclaringMethodIds[name] = declarer
					cls.AppearingMethodIds[name] = cls.Name
					cls.InheritableMethodIds[name] = declarer
				}
			}
			for name, declarer := range parent.DeclaringPropertyIds {
				if _, exists := cls.DeclaringPropertyIds[name]; !exists {
					cls.DeclaringPropertyIds[name] = declarer
					cls.AppearingPropertyIds[name] = cls.Name
				}
			}
		}
	}
}

// ResolveReference replaces a Reference atomic with the NamedObject,
// TypeAlias, or Enum it names, per spec.md §4.3/§6.2. Any Reference
// observed by analysis after this function has run over the whole
// codebase is an unreachable-state bug (spec.md §7).
func ResolveReference(cb *Codebase, ref ttype.Reference) ttype.Atomic {
	if cls, ok := cb.Classlikes[ref.Name]; ok {
		if cls.Kind == ClassKindEnum {
			return ttype.Enum{Name: ref.Name}
		}
		var params []*ttype.Union
		if ref.TypeParams != nil {
			params = ref.TypeParams
		}
		return ttype.NamedObject{Name: ref.Name, TypeParams: params}
	}
	if _, ok := cb.TypeDefs[ref.Name]; ok {
		return ttype.TypeAlias{Name: ref.Name, TypeParams: ref.TypeParams}
	}
	// Unknown: the Reference is returned unchanged rather than panicking,
	// since it represents a source-level error, not an internal invariant
	// violation (spec.md §7). No diagnostic is reported here.
	return ref
}
