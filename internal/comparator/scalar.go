package comparator

import "github.com/slackhq/hakana-sub000/internal/ttype"

// scalarContainment implements spec.md §4.2 rule 7: the int/float/string/
// bool/arraykey/num scalar lattice, including literal-to-base widening and
// StringWithFlags subtyping. The bool return indicates the containment
// result; the second return indicates whether this function recognized
// the (input,container) pair at all — false means "not a scalar pair,
// keep trying other rules".
func (c *Comparator) scalarContainment(input, container ttype.Atomic, out *Result) (bool, bool) {
	switch ci := container.(type) {
	case ttype.Int:
		switch input.(type) {
		case ttype.Int:
			return true, true
		case ttype.LiteralInt:
			return true, true
		}
	case ttype.Float:
		switch input.(type) {
		case ttype.Float, ttype.Int, ttype.LiteralInt:
			return true, true
		}
	case ttype.Num:
		switch input.(type) {
		case ttype.Int, ttype.Float, ttype.LiteralInt, ttype.Num:
			return true, true
		}
	case ttype.String:
		switch iv := input.(type) {
		case ttype.String, ttype.LiteralString:
			return true, true
		case ttype.StringWithFlags:
			_ = iv
			return true, true
		}
	case ttype.StringWithFlags:
		switch iv := input.(type) {
		case ttype.LiteralString:
			return literalSatisfiesStringFlags(iv.Value, ci), true
		case ttype.StringWithFlags:
			// A more-restrictive flag-set is a subtype of a less-restrictive one.
			return (!ci.Truthy || iv.Truthy) && (!ci.NonEmpty || iv.NonEmpty), true
		}
	case ttype.Arraykey:
		switch input.(type) {
		case ttype.Int, ttype.LiteralInt, ttype.String, ttype.LiteralString, ttype.StringWithFlags, ttype.Arraykey:
			return true, true
		}
	case ttype.LiteralInt:
		if iv, ok := input.(ttype.LiteralInt); ok {
			return iv.Value == ci.Value, true
		}
	case ttype.LiteralString:
		if iv, ok := input.(ttype.LiteralString); ok {
			return iv.Value == ci.Value, true
		}
	case ttype.RegexPattern:
		// A malformed pattern contains nothing: this is as much a
		// well-formedness check as a subtype check, since neither side
		// compiling means there is nothing meaningful to compare.
		if iv, ok := input.(ttype.RegexPattern); ok {
			return ci.Valid() && iv.Valid() && iv.Value == ci.Value, true
		}
	case ttype.Scalar:
		switch input.(type) {
		case ttype.Int, ttype.Float, ttype.String, ttype.Bool, ttype.True, ttype.False, ttype.Num, ttype.Arraykey,
			ttype.LiteralInt, ttype.LiteralString, ttype.StringWithFlags:
			return true, true
		}
	}
	return false, false
}

func literalSatisfiesStringFlags(v string, f ttype.StringWithFlags) bool {
	if f.Truthy && (v == "" || v == "0") {
		return false
	}
	if f.NonEmpty && v == "" {
		return false
	}
	return true
}
