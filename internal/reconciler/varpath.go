package reconciler

import "strings"

// VarPath splits a reconciler key like `$a['b']['c']` into its root
// variable (`$a`) and the ordered chain of string/int array-access
// segments (`b`, `c`). Property-access keys (`$a->b`) use `->` as the
// segment separator instead; both forms share the same root/path shape
// since a narrowing fact about `$a['b']` or `$a->b` narrows a sub-part of
// `$a`'s type the same way.
type VarPath struct {
	Root string
	Keys []string
}

// ParseVarPath parses a reconciler key into its root and key chain. Keys
// without any `[`/`->` are their own root with an empty chain.
func ParseVarPath(key string) VarPath {
	if i := strings.IndexAny(key, "["); i >= 0 && strings.HasSuffix(key, "]") {
		root := key[:i]
		rest := key[i:]
		var keys []string
		for len(rest) > 0 {
			if rest[0] != '[' {
				break
			}
			end := strings.IndexByte(rest, ']')
			if end < 0 {
				break
			}
			seg := rest[1:end]
			seg = strings.Trim(seg, "'\"")
			keys = append(keys, seg)
			rest = rest[end+1:]
		}
		return VarPath{Root: root, Keys: keys}
	}
	if i := strings.Index(key, "->"); i >= 0 {
		parts := strings.Split(key, "->")
		return VarPath{Root: parts[0], Keys: parts[1:]}
	}
	return VarPath{Root: key}
}

// IsRoot reports whether this key names a bare variable with no nested
// array/property access.
func (p VarPath) IsRoot() bool { return len(p.Keys) == 0 }

// ParentKey returns the key one level up the chain, e.g. `$a['b']['c']`
// -> `$a['b']`, or the root if there is only one segment.
func (p VarPath) ParentKey() string {
	if len(p.Keys) == 0 {
		return p.Root
	}
	var b strings.Builder
	b.WriteString(p.Root)
	for _, k := range p.Keys[:len(p.Keys)-1] {
		b.WriteByte('[')
		b.WriteByte('\'')
		b.WriteString(k)
		b.WriteByte('\'')
		b.WriteByte(']')
	}
	return b.String()
}

// LastKey returns the final access segment, e.g. `c` for `$a['b']['c']`.
func (p VarPath) LastKey() string {
	if len(p.Keys) == 0 {
		return ""
	}
	return p.Keys[len(p.Keys)-1]
}

// hasRoot reports whether varId's root variable is root (mirrors Hakana's
// var_has_root: `$a['b']` has root `$a`, and so does `$a` itself).
func hasRoot(varId, root string) bool {
	return ParseVarPath(varId).Root == root
}
