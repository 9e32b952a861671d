package ttype

import (
	"fmt"

	"github.com/slackhq/hakana-sub000/internal/symbol"
)

// dictKeyKind orders the three DictKey variants: Int < String < Enum, per
// spec.md §3.2's key ordering rule.
type dictKeyKind int

const (
	dictKeyInt dictKeyKind = iota
	dictKeyString
	dictKeyEnum
)

// DictKey is a dict/shape key: an int literal, a string literal, or a
// specific enum case. Less orders keys Int < String < Enum, with natural
// sub-ordering within each kind; pretty-printing lists dict keys in this
// order. OrderedDict itself keeps insertion order, and equality compares
// entries in that insertion order, not in Less order. Subtyping never
// depends on key order (spec.md §3.2).
type DictKey struct {
	kind    dictKeyKind
	intVal  uint64
	strVal  string
	enumCls symbol.SymbolId
	enumVal symbol.SymbolId
}

// IntKey builds an integer DictKey.
func IntKey(v uint64) DictKey { return DictKey{kind: dictKeyInt, intVal: v} }

// StringKey builds a string DictKey.
func StringKey(v string) DictKey { return DictKey{kind: dictKeyString, strVal: v} }

// EnumKey builds a DictKey referring to a specific enum case.
func EnumKey(class, value symbol.SymbolId) DictKey {
	return DictKey{kind: dictKeyEnum, enumCls: class, enumVal: value}
}

// IsInt reports whether k is an integer key, returning its value.
func (k DictKey) IsInt() (uint64, bool) { return k.intVal, k.kind == dictKeyInt }

// IsString reports whether k is a string key, returning its value.
func (k DictKey) IsString() (string, bool) { return k.strVal, k.kind == dictKeyString }

// IsEnum reports whether k is an enum-case key, returning (class, value).
func (k DictKey) IsEnum() (symbol.SymbolId, symbol.SymbolId, bool) {
	return k.enumCls, k.enumVal, k.kind == dictKeyEnum
}

// Less orders a before b per Int < String < Enum, with natural ordering
// within a kind.
func Less(a, b DictKey) bool {
	if a.kind != b.kind {
		return a.kind < b.kind
	}
	switch a.kind {
	case dictKeyInt:
		return a.intVal < b.intVal
	case dictKeyString:
		return a.strVal < b.strVal
	default:
		if a.enumCls != b.enumCls {
			return a.enumCls < b.enumCls
		}
		return a.enumVal < b.enumVal
	}
}

func (k DictKey) String() string {
	switch k.kind {
	case dictKeyInt:
		return fmt.Sprintf("%d", k.intVal)
	case dictKeyString:
		return fmt.Sprintf("%q", k.strVal)
	default:
		return fmt.Sprintf("enum(%d::%d)", k.enumCls, k.enumVal)
	}
}
