package comparator

import "github.com/slackhq/hakana-sub000/internal/ttype"

// closureContainedBy implements spec.md §4.2 rule 8: contravariant in
// each parameter, covariant in return, plus arity and purity.
func (c *Comparator) closureContainedBy(input, container ttype.Closure, insideAssertion bool, out *Result) bool {
	requiredParams := 0
	for _, p := range container.Params {
		if !p.IsOptional && !p.IsVariadic {
			requiredParams++
		}
	}
	if len(input.Params) < requiredParams {
		return false
	}
	for i, cp := range container.Params {
		if i >= len(input.Params) {
			if !cp.IsOptional && !cp.IsVariadic {
				return false
			}
			continue
		}
		ip := input.Params[i]
		// Contravariant: container's param type must be contained by the
		// input's param type (the callee accepts at least as much as the
		// caller will ever pass).
		if !c.UnionIsContainedBy(cp.Type, ip.Type, false, false, insideAssertion, out) {
			return false
		}
	}
	if input.ReturnType != nil && container.ReturnType != nil {
		if !c.UnionIsContainedBy(input.ReturnType, container.ReturnType, false, false, insideAssertion, out) {
			return false
		}
	}
	if container.IsPure != nil && input.IsPure != nil && *container.IsPure && !*input.IsPure {
		return false
	}
	return true
}
