package reconciler

import (
	"fmt"
	"strconv"

	"github.com/slackhq/hakana-sub000/internal/codeinfo"
	"github.com/slackhq/hakana-sub000/internal/dataflow"
	"github.com/slackhq/hakana-sub000/internal/ttype"
)

// IsContainedByFunc lets this package call into the subtype comparator
// without importing it directly, mirroring internal/template's
// CombineFunc/IntersectFunc injection and avoiding a dependency cycle
// (comparator will eventually depend on reconciler-adjacent call-site
// code, not the other way around).
type IsContainedByFunc func(a, b ttype.Atomic) bool

// Driver carries the callbacks ReconcileKeyedTypes needs from the rest of
// the type engine.
type Driver struct {
	Codebase      *codeinfo.Codebase
	IsContainedBy IsContainedByFunc

	// Graph is the whole-program provenance graph (spec.md §3.6/§6.4).
	// ReconcileKeyedTypes adds a guard edge to it whenever a narrowing
	// changes a key's type, and applies taintOps to it directly. A nil
	// Graph disables both — callers that only want the pure type-narrowing
	// behaviour (e.g. most of this package's own tests) can leave it unset.
	Graph *dataflow.Graph
}

// reconcile narrows existing by a single Assertion (spec.md §4.5). A nil
// existing means the key was not previously in scope; reconcile treats
// that as Mixed unless the assertion itself supplies a concrete type
// (IsType/IsEqual).
func (d *Driver) reconcile(assertion Assertion, existing *ttype.Union) *ttype.Union {
	if existing == nil {
		existing = ttype.New(ttype.MixedWithFlags{Any: true})
	}
	switch assertion.Kind {
	case Truthy:
		return reconcileTruthy(existing)
	case Falsy:
		return reconcileFalsy(existing)
	case IsType:
		if assertion.Type == nil {
			return existing
		}
		return assertion.Type
	case IsNotType:
		if assertion.Type == nil {
			return existing
		}
		return subtractType(existing, assertion.Type, d.IsContainedBy)
	case IsEqual:
		if assertion.Type == nil {
			return existing
		}
		return assertion.Type
	case IsNotEqual:
		if assertion.Type == nil {
			return existing
		}
		return subtractType(existing, assertion.Type, d.IsContainedBy)
	case IsIsset, IsEqualIsset:
		return reconcileIsset(existing)
	case IsNotIsset:
		return reconcileNotIsset(existing)
	case HasArrayKey, ArrayKeyExists, HasNonnullEntryForKey:
		return reconcileHasArrayKey(existing, assertion.Key)
	case DoesNotHaveArrayKey, ArrayKeyDoesNotExist:
		return reconcileNoArrayKey(existing, assertion.Key)
	case HasStringArrayAccess, HasIntOrStringArrayAccess:
		return reconcileArrayAccess(existing)
	case InArray:
		return reconcileInArray(existing, assertion.ArrayType)
	case NotInArray:
		return reconcileNotInArray(existing)
	case NonEmptyCountable:
		return reconcileNonEmptyCountable(existing)
	case EmptyCountable:
		return reconcileEmptyCountable(existing)
	case HasExactCount:
		return reconcileExactlyCountable(existing, assertion.Count)
	case DoesNotHaveExactCount:
		return reconcileNotExactlyCountable(existing, assertion.Count)
	default:
		return existing
	}
}

// ReconcileKeyedTypes is the driver for spec.md §4.5: for every key with
// one or more OR-of-AND assertion groups, narrow its current (or implied)
// type by each group in turn and combine the results, recording which
// keys actually changed.
//
// Before narrowing, a nested key ($a['b'], $a->b) is expanded per step 1:
// an implied isset on its root plus a HasNonnullEntryForKey on its parent
// are folded in (expandKeyedAssertions), and if the nested key has no
// type of its own yet, step 2 derives a "before" type by walking the
// parent's known shape (synthesizeBeforeType) instead of falling back to
// mixed. After a root key changes, step 4 drops any nested alias of that
// root still sitting in scope (dropAliasesOf) — it described a part of the
// value that no longer exists. Step 3 records a dataflow guard edge for
// every key that actually narrowed (recordNarrowingEdge).
//
// taintOps carries taint-graph mutations explicitly (spec.md §9.4 decision
// 2) instead of Hakana's `"hakana taints"` sentinel key smuggled into
// newTypes; they are applied directly to d.Graph.
func (d *Driver) ReconcileKeyedTypes(
	newTypes map[string][][]Assertion,
	context *Context,
	changedVarIds map[string]bool,
	combine func(a, b *ttype.Union, cb *codeinfo.Codebase) *ttype.Union,
	taintOps []TaintOp,
) {
	if len(newTypes) == 0 && len(taintOps) == 0 {
		return
	}

	expanded := expandKeyedAssertions(newTypes)

	for key, orGroups := range expanded {
		path := ParseVarPath(key)
		existing := context.VarsInScope[key]
		if existing == nil && !path.IsRoot() {
			existing = synthesizeBeforeType(context, path)
		}

		var resultType *ttype.Union
		for _, andAssertions := range orGroups {
			branch := existing
			for _, assertion := range andAssertions {
				branch = d.reconcile(assertion, branch)
			}
			if resultType == nil {
				resultType = branch
			} else {
				resultType = combine(resultType, branch, d.Codebase)
			}
		}

		if resultType == nil {
			continue
		}

		changed := existing == nil || !ttype.Equals(existing, resultType)
		if changed {
			changedVarIds[key] = true
			resultType = d.recordNarrowingEdge(key, resultType, context.Pos)
		}
		context.VarsInScope[key] = resultType

		if changed && path.IsRoot() {
			dropAliasesOf(context, path.Root, key)
		}
	}

	// taintOps apply unconditionally, independent of whether their target
	// variable's type narrowed this pass: taint removal is a property of
	// the branch being taken, not of the type change.
	for _, op := range taintOps {
		d.applyTaintOp(op)
	}
}

// expandKeyedAssertions implements spec.md §4.5 step 1: a narrowing fact
// about a nested key also implies its root variable is set, and that the
// immediate parent holds a non-null entry for the key just accessed. Both
// implied facts hold regardless of which OR-branch narrowed the nested
// key, so they are ANDed into every existing branch of their target key
// (addImpliedAssertion), never appended as a branch of their own. The
// caller's map is never mutated; a new map carrying both the original and
// implied facts is returned.
func expandKeyedAssertions(newTypes map[string][][]Assertion) map[string][][]Assertion {
	out := make(map[string][][]Assertion, len(newTypes))
	for key, groups := range newTypes {
		cp := make([][]Assertion, len(groups))
		for i, g := range groups {
			cp[i] = append([]Assertion(nil), g...)
		}
		out[key] = cp
	}

	for key := range newTypes {
		path := ParseVarPath(key)
		if path.IsRoot() {
			continue
		}
		addImpliedAssertion(out, path.Root, Assertion{Kind: IsIsset})
		addImpliedAssertion(out, path.ParentKey(), Assertion{
			Kind: HasNonnullEntryForKey,
			Key:  dictKeyFromSegment(path.LastKey()),
		})
	}
	return out
}

// addImpliedAssertion ANDs assertion into every OR-branch already recorded
// for key, or starts a single branch if key has none yet.
func addImpliedAssertion(out map[string][][]Assertion, key string, assertion Assertion) {
	groups, ok := out[key]
	if !ok || len(groups) == 0 {
		out[key] = [][]Assertion{{assertion}}
		return
	}
	for i := range groups {
		groups[i] = append(groups[i], assertion)
	}
}

// synthesizeBeforeType implements spec.md §4.5 step 2: when a nested key
// has no narrowed type of its own recorded yet, its "before" type is
// derived by walking the root's type through each access segment's known
// shape/dict entry, rather than assumed to be mixed.
func synthesizeBeforeType(context *Context, path VarPath) *ttype.Union {
	cur := context.VarsInScope[path.Root]
	for _, k := range path.Keys {
		if cur == nil {
			return nil
		}
		item, ok := lookupKnownItem(cur, k)
		if !ok {
			return nil
		}
		cur = item.Value
	}
	return cur
}

// lookupKnownItem finds key's entry in any Dict atom of u with known
// shape information.
func lookupKnownItem(u *ttype.Union, key string) (ttype.DictItem, bool) {
	for _, a := range u.Atoms {
		d, ok := a.(ttype.Dict)
		if !ok || d.KnownItems == nil {
			continue
		}
		if item, found := d.KnownItems.Get(dictKeyFromSegment(key)); found {
			return item, true
		}
	}
	return ttype.DictItem{}, false
}

// dictKeyFromSegment turns a VarPath access segment back into a ttype.DictKey,
// preferring an int key when the segment parses as one (vec/dict numeric
// offsets), falling back to a string key (dict/shape string keys).
func dictKeyFromSegment(segment string) ttype.DictKey {
	if n, err := strconv.ParseUint(segment, 10, 64); err == nil {
		return ttype.IntKey(n)
	}
	return ttype.StringKey(segment)
}

// dropAliasesOf implements spec.md §4.5 step 4: once root has been
// reassigned wholesale (justWritten == root), any other key narrowed off
// that root ($a['b'], $a->c, ...) described a part of the old value and
// must not survive into the new one.
func dropAliasesOf(context *Context, root, justWritten string) {
	for key := range context.VarsInScope {
		if key == justWritten {
			continue
		}
		if key != root && hasRoot(key, root) {
			delete(context.VarsInScope, key)
		}
	}
}

// recordNarrowingEdge implements spec.md §4.5 step 3 / §3.6: a key whose
// type actually changed gets a fresh parent-node recording this
// narrowing, and — when the result collapsed to a single NamedObject or
// scalar atom — a corresponding RefineSymbol/ScalarTypeGuard edge on the
// dataflow graph; anything else just propagates as a Default edge.
func (d *Driver) recordNarrowingEdge(key string, result *ttype.Union, pos string) *ttype.Union {
	out := result.Clone()
	out.ParentNodes = append(out.ParentNodes, ttype.DataFlowNode{Label: key, Pos: pos})

	if d.Graph == nil {
		return out
	}
	node := dataflow.NodeId{Label: key, Pos: pos}
	d.Graph.AddNode(dataflow.Node{Id: node, Kind: dataflow.KindVariable})

	kind := dataflow.Default
	refined := ""
	if single, ok := out.IsSingle(); ok {
		switch v := single.(type) {
		case ttype.NamedObject:
			kind = dataflow.RefineSymbol
			refined = fmt.Sprintf("%d", v.Name)
		default:
			if isScalarAtom(v) {
				kind = dataflow.ScalarTypeGuard
			}
		}
	}
	d.Graph.AddPath(node, node, kind, refined, nil)
	return out
}

// isScalarAtom mirrors comparator.scalarContainment's notion of a scalar
// atom; it's re-declared here rather than imported to avoid a dependency
// on the comparator package from the reconciler.
func isScalarAtom(a ttype.Atomic) bool {
	switch a.(type) {
	case ttype.Int, ttype.Float, ttype.String, ttype.Bool, ttype.True, ttype.False, ttype.Num, ttype.Arraykey,
		ttype.LiteralInt, ttype.LiteralString, ttype.StringWithFlags:
		return true
	default:
		return false
	}
}

// applyTaintOp gives spec.md §4.5's RemoveTaints/IgnoreTaints/DontIgnoreTaints
// assertions an observable effect on the dataflow graph, using the same
// self-loop-edge shape analyzer.Engine.AnalyzeCall already uses for
// RemovedTaintsForReturnTrue.
func (d *Driver) applyTaintOp(op TaintOp) {
	if d.Graph == nil {
		return
	}
	node := dataflow.NodeId{Label: op.VarId}
	d.Graph.AddNode(dataflow.Node{Id: node, Kind: dataflow.KindVariable})
	switch op.Kind {
	case TaintOpRemove:
		d.Graph.AddPath(node, node, dataflow.Default, "", op.RemovedTaints)
	case TaintOpIgnore:
		d.Graph.AddIgnorePath(node, op.RemovedTaints, false)
	case TaintOpUnignore:
		d.Graph.AddIgnorePath(node, op.RemovedTaints, true)
	}
}
