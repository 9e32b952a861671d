package comparator

import (
	"github.com/slackhq/hakana-sub000/internal/symbol"
	"github.com/slackhq/hakana-sub000/internal/ttype"
)

// collectionContainerContainment implements spec.md §4.2 rule 10:
// vec/dict/keyset versus the KeyedContainer/Container/Traversable/
// KeyedTraversable/AnyArray interface family.
func (c *Comparator) collectionContainerContainment(input, container ttype.Atomic, insideAssertion bool, out *Result) (bool, bool) {
	containerObj, ok := container.(ttype.NamedObject)
	if !ok {
		return false, false
	}
	name := c.interfaceRole(containerObj.Name)
	if name == roleNone {
		return false, false
	}

	var keyUnion, valUnion *ttype.Union
	switch v := input.(type) {
	case ttype.Vec:
		keyUnion = ttype.New(ttype.Int{})
		valUnion = v.TypeParam
	case ttype.Dict:
		if v.Params != nil {
			keyUnion, valUnion = v.Params.Key, v.Params.Value
		} else {
			keyUnion, valUnion = ttype.New(ttype.Arraykey{}), ttype.New(ttype.Mixed{})
		}
	case ttype.Keyset:
		keyUnion, valUnion = v.TypeParam, v.TypeParam
	default:
		return false, false
	}

	switch name {
	case roleContainer:
		if len(containerObj.TypeParams) != 1 {
			return true, true
		}
		return c.UnionIsContainedBy(valUnion, containerObj.TypeParams[0], false, false, insideAssertion, out), true
	case roleKeyedContainer, roleKeyedTraversable:
		if len(containerObj.TypeParams) != 2 {
			return true, true
		}
		keyOK := c.UnionIsContainedBy(keyUnion, containerObj.TypeParams[0], false, false, insideAssertion, out)
		valOK := c.UnionIsContainedBy(valUnion, containerObj.TypeParams[1], false, false, insideAssertion, out)
		return keyOK && valOK, true
	case roleTraversable:
		if len(containerObj.TypeParams) != 1 {
			return true, true
		}
		return c.UnionIsContainedBy(valUnion, containerObj.TypeParams[0], false, false, insideAssertion, out), true
	case roleAnyArray:
		return true, true
	}
	return false, false
}

type containerRole int

const (
	roleNone containerRole = iota
	roleContainer
	roleKeyedContainer
	roleTraversable
	roleKeyedTraversable
	roleAnyArray
)

// interfaceRole recognizes the reserved array-container interface names
// interned at startup (spec.md §3.1).
func (c *Comparator) interfaceRole(name symbol.SymbolId) containerRole {
	switch name {
	case symbol.Container:
		return roleContainer
	case symbol.KeyedContainer:
		return roleKeyedContainer
	case symbol.Traversable:
		return roleTraversable
	case symbol.KeyedTraversable:
		return roleKeyedTraversable
	case symbol.AnyArray:
		return roleAnyArray
	default:
		return roleNone
	}
}
