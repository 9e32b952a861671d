package reconciler

import "testing"

func TestParseVarPathBracketChain(t *testing.T) {
	p := ParseVarPath("$a['b']['c']")
	if p.Root != "$a" {
		t.Errorf("expected root $a, got %s", p.Root)
	}
	if len(p.Keys) != 2 || p.Keys[0] != "b" || p.Keys[1] != "c" {
		t.Errorf("expected keys [b c], got %v", p.Keys)
	}
	if p.ParentKey() != "$a['b']" {
		t.Errorf("expected parent key $a['b'], got %s", p.ParentKey())
	}
	if p.LastKey() != "c" {
		t.Errorf("expected last key c, got %s", p.LastKey())
	}
	if p.IsRoot() {
		t.Error("expected IsRoot false for a nested key")
	}
}

func TestParseVarPathArrowChain(t *testing.T) {
	p := ParseVarPath("$a->b")
	if p.Root != "$a" || len(p.Keys) != 1 || p.Keys[0] != "b" {
		t.Errorf("expected root $a, keys [b], got root=%s keys=%v", p.Root, p.Keys)
	}
	if p.ParentKey() != "$a" {
		t.Errorf("expected parent key $a, got %s", p.ParentKey())
	}
}

func TestParseVarPathBareRoot(t *testing.T) {
	p := ParseVarPath("$a")
	if !p.IsRoot() {
		t.Error("expected a bare variable to be its own root")
	}
	if p.ParentKey() != "$a" {
		t.Errorf("expected a root's parent key to be itself, got %s", p.ParentKey())
	}
	if p.LastKey() != "" {
		t.Errorf("expected empty last key for a root, got %q", p.LastKey())
	}
}

func TestHasRoot(t *testing.T) {
	if !hasRoot("$a['b']", "$a") {
		t.Error("expected $a['b'] to have root $a")
	}
	if !hasRoot("$a", "$a") {
		t.Error("expected $a to have root $a")
	}
	if hasRoot("$ab", "$a") {
		t.Error("expected $ab not to have root $a (no shared prefix boundary)")
	}
}
