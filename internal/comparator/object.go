package comparator

import (
	"github.com/slackhq/hakana-sub000/internal/codeinfo"
	"github.com/slackhq/hakana-sub000/internal/symbol"
	"github.com/slackhq/hakana-sub000/internal/ttype"
)

// namedObjectContainedBy implements spec.md §4.2 rule 9: nominal ancestry
// via the codebase's transitive-closure sets, then per-type-parameter
// comparison honouring declared variance.
func (c *Comparator) namedObjectContainedBy(input, container ttype.NamedObject, insideAssertion bool, out *Result) bool {
	if !c.isNominalDescendant(input.Name, container.Name) {
		return false
	}
	if len(container.TypeParams) == 0 {
		return true
	}
	if len(input.TypeParams) != len(container.TypeParams) {
		// Raw (non-generic) usage of a generic class: treat as satisfying
		// any parameterization (the engine's caller is expected to have
		// already flagged the missing type arguments as a diagnostic).
		return true
	}
	cls, ok := c.Codebase.Classlikes[container.Name]
	var variances []codeinfo.Variance
	if ok {
		variances = make([]codeinfo.Variance, len(container.TypeParams))
		for i, name := range cls.TemplateTypes.Names() {
			if i < len(variances) {
				variances[i] = cls.GenericVariance[name]
			}
		}
	}
	for i := range container.TypeParams {
		v := codeinfo.Invariant
		if variances != nil && i < len(variances) {
			v = variances[i]
		}
		in, ct := input.TypeParams[i], container.TypeParams[i]
		switch v {
		case codeinfo.Covariant:
			if !c.UnionIsContainedBy(in, ct, false, false, insideAssertion, out) {
				return false
			}
		case codeinfo.Contravariant:
			if !c.UnionIsContainedBy(ct, in, false, false, insideAssertion, out) {
				return false
			}
		default:
			if !c.UnionIsContainedBy(in, ct, false, false, insideAssertion, out) ||
				!c.UnionIsContainedBy(ct, in, false, false, insideAssertion, out) {
				return false
			}
		}
	}
	return true
}

func (c *Comparator) isNominalDescendant(descendant, ancestor symbol.SymbolId) bool {
	if descendant == ancestor {
		return true
	}
	cls, ok := c.Codebase.Classlikes[descendant]
	if !ok {
		return false
	}
	return cls.AllParentClasses.Contains(ancestor) ||
		cls.AllParentInterfaces.Contains(ancestor) ||
		cls.AllClassInterfaces.Contains(ancestor)
}
