package ttype

import "strings"

// DataFlowNode is an opaque provenance marker threaded through a Union's
// ParentNodes set; the engine never interprets its contents, only merges
// and forwards it (spec.md §3.6 — the graph itself lives outside this
// package).
type DataFlowNode struct {
	Label string
	Pos   string // opaque external position encoding; not interpreted here
}

// Union is "a value whose type is one of N atomics", plus the
// side-channel flags of spec.md §3.3. Atoms is kept deduplicated by
// Atomic.Key() and in deterministic insertion order.
type Union struct {
	Atoms []Atomic

	PossiblyUndefinedFromTry bool
	IgnoreFalsableIssues     bool
	HadTemplate              bool
	ReferenceFree            bool
	ParentNodes              []DataFlowNode
}

// New builds a Union from a set of atoms, deduplicating by Key and
// applying the Nothing-absorption invariant (a union never contains
// Nothing alongside any other atomic).
func New(atoms ...Atomic) *Union {
	u := &Union{ReferenceFree: true}
	for _, a := range atoms {
		u.add(a)
	}
	u.absorbNothing()
	return u
}

// Empty returns a Union with no atoms. Used only as a transient
// accumulator state; spec.md §3.3 requires a non-empty union outside of
// Nothing, so callers must add at least one atom (or Nothing itself)
// before the union is observed.
func Empty() *Union { return &Union{ReferenceFree: true} }

// Clone returns a deep-enough copy: the Atoms slice and ParentNodes slice
// are copied, but atoms and nested unions referenced from them are
// shared (atoms are treated as immutable value-like data once built).
func (u *Union) Clone() *Union {
	n := &Union{
		Atoms:                    append([]Atomic(nil), u.Atoms...),
		PossiblyUndefinedFromTry: u.PossiblyUndefinedFromTry,
		IgnoreFalsableIssues:     u.IgnoreFalsableIssues,
		HadTemplate:              u.HadTemplate,
		ReferenceFree:            u.ReferenceFree,
		ParentNodes:              append([]DataFlowNode(nil), u.ParentNodes...),
	}
	return n
}

func (u *Union) add(a Atomic) {
	key := a.Key()
	for _, existing := range u.Atoms {
		if existing.Key() == key {
			return
		}
	}
	u.Atoms = append(u.Atoms, a)
	if _, isRef := a.(Reference); isRef {
		u.ReferenceFree = false
	}
	if _, isMemberRef := a.(MemberReference); isMemberRef {
		u.ReferenceFree = false
	}
}

// absorbNothing enforces the Nothing-absorption invariant: Nothing is
// dropped if any other atomic is present.
func (u *Union) absorbNothing() {
	if len(u.Atoms) <= 1 {
		return
	}
	filtered := u.Atoms[:0:0]
	for _, a := range u.Atoms {
		if _, ok := a.(Nothing); ok {
			continue
		}
		filtered = append(filtered, a)
	}
	if len(filtered) > 0 {
		u.Atoms = filtered
	}
}

// WithAtom returns a copy of u with a added (subject to dedup/Nothing
// absorption), leaving u untouched.
func (u *Union) WithAtom(a Atomic) *Union {
	n := u.Clone()
	n.add(a)
	n.absorbNothing()
	return n
}

// IsNothing reports whether u is exactly the Nothing type.
func (u *Union) IsNothing() bool {
	if len(u.Atoms) != 1 {
		return false
	}
	_, ok := u.Atoms[0].(Nothing)
	return ok
}

// IsSingle reports whether u has exactly one atom, returning it.
func (u *Union) IsSingle() (Atomic, bool) {
	if len(u.Atoms) == 1 {
		return u.Atoms[0], true
	}
	return nil, false
}

// HasAtomOfKey reports whether u contains an atom with the given Key.
func (u *Union) HasAtomOfKey(key string) bool {
	for _, a := range u.Atoms {
		if a.Key() == key {
			return true
		}
	}
	return false
}

// MergeParentNodes merges other's ParentNodes into u's, deduplicating by
// (Label, Pos). Used by the combiner/reconciler whenever a union's
// provenance set changes (spec.md §3.6).
func (u *Union) MergeParentNodes(other *Union) {
	seen := make(map[DataFlowNode]struct{}, len(u.ParentNodes))
	for _, n := range u.ParentNodes {
		seen[n] = struct{}{}
	}
	for _, n := range other.ParentNodes {
		if _, ok := seen[n]; !ok {
			u.ParentNodes = append(u.ParentNodes, n)
			seen[n] = struct{}{}
		}
	}
}

// Equals reports deep structural equality of two unions: same atom keys
// in the same order with structurally-equal atom values, and equal flags.
// The reconciler uses it to detect which keys changed, and the template
// result uses it to skip duplicate bounds.
func Equals(a, b *Union) bool {
	if a == nil || b == nil {
		return a == b
	}
	if len(a.Atoms) != len(b.Atoms) {
		return false
	}
	for i := range a.Atoms {
		if !AtomEquals(a.Atoms[i], b.Atoms[i]) {
			return false
		}
	}
	return a.PossiblyUndefinedFromTry == b.PossiblyUndefinedFromTry &&
		a.IgnoreFalsableIssues == b.IgnoreFalsableIssues &&
		a.HadTemplate == b.HadTemplate &&
		a.ReferenceFree == b.ReferenceFree
}

// String renders u in Hack-like union syntax, e.g. "int|string|null".
func (u *Union) String() string {
	if len(u.Atoms) == 0 {
		return "nothing"
	}
	parts := make([]string, len(u.Atoms))
	for i, a := range u.Atoms {
		parts[i] = a.String()
	}
	return strings.Join(parts, "|")
}
