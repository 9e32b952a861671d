package ttype

import (
	"fmt"
	"sort"
	"strings"
)

func printDict(d Dict) string {
	if d.KnownItems != nil && d.KnownItems.Len() > 0 {
		keys := append([]DictKey(nil), d.KnownItems.Keys()...)
		sort.Slice(keys, func(i, j int) bool { return Less(keys[i], keys[j]) })
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			item, _ := d.KnownItems.Get(k)
			suffix := ""
			if item.PossiblyUndefined {
				suffix = "?"
			}
			parts = append(parts, fmt.Sprintf("%s%s: %s", k.String(), suffix, item.Value.String()))
		}
		shape := fmt.Sprintf("shape(%s)", strings.Join(parts, ", "))
		if d.Params != nil {
			return fmt.Sprintf("%s + dict<%s, %s>", shape, d.Params.Key.String(), d.Params.Value.String())
		}
		return shape
	}
	if d.Params != nil {
		return fmt.Sprintf("dict<%s, %s>", d.Params.Key.String(), d.Params.Value.String())
	}
	return "dict<arraykey, mixed>"
}

func printVec(v Vec) string {
	if v.KnownItems != nil && v.KnownItems.Len() > 0 {
		offsets := append([]int(nil), v.KnownItems.Offsets()...)
		sort.Ints(offsets)
		parts := make([]string, 0, len(offsets))
		for _, o := range offsets {
			item, _ := v.KnownItems.Get(o)
			suffix := ""
			if item.PossiblyUndefined {
				suffix = "?"
			}
			parts = append(parts, item.Value.String()+suffix)
		}
		return fmt.Sprintf("tuple(%s)", strings.Join(parts, ", "))
	}
	if v.TypeParam != nil {
		return fmt.Sprintf("vec<%s>", v.TypeParam.String())
	}
	return "vec<mixed>"
}

func printClosure(c Closure) string {
	parts := make([]string, len(c.Params))
	for i, p := range c.Params {
		t := "mixed"
		if p.Type != nil {
			t = p.Type.String()
		}
		if p.IsVariadic {
			t = "..." + t
		}
		if p.IsOptional {
			t += "="
		}
		parts[i] = t
	}
	ret := "void"
	if c.ReturnType != nil {
		ret = c.ReturnType.String()
	}
	return fmt.Sprintf("(function(%s): %s)", strings.Join(parts, ", "), ret)
}

func printNamedObject(n NamedObject) string {
	s := fmt.Sprintf("%d", n.Name)
	if len(n.TypeParams) > 0 {
		parts := make([]string, len(n.TypeParams))
		for i, p := range n.TypeParams {
			parts[i] = p.String()
		}
		s += "<" + strings.Join(parts, ", ") + ">"
	}
	for _, extra := range n.ExtraTypes {
		s += " & " + extra.String()
	}
	return s
}
