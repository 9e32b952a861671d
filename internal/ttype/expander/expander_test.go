package expander

import (
	"testing"

	"github.com/slackhq/hakana-sub000/internal/codeinfo"
	"github.com/slackhq/hakana-sub000/internal/symbol"
	"github.com/slackhq/hakana-sub000/internal/ttype"
)

func TestExpandIsIdempotent(t *testing.T) {
	cb := codeinfo.NewCodebase()
	selfName := symbol.SymbolId(42)
	opts := Options{SelfClass: &selfName, ExpandGeneric: true}

	u := ttype.New(ttype.NamedObject{Name: symbol.Self}, ttype.Int{})
	once := Expand(cb, u.Clone(), opts)
	twice := Expand(cb, once.Clone(), opts)

	if !ttype.Equals(once, twice) {
		t.Fatalf("expand not idempotent: once=%s twice=%s", once, twice)
	}
}

func TestExpandSubstitutesSelf(t *testing.T) {
	cb := codeinfo.NewCodebase()
	selfName := symbol.SymbolId(7)
	opts := Options{SelfClass: &selfName}

	u := ttype.New(ttype.NamedObject{Name: symbol.Self})
	Expand(cb, u, opts)

	obj, ok := u.IsSingle()
	if !ok {
		t.Fatalf("expected single atom, got %s", u)
	}
	named, ok := obj.(ttype.NamedObject)
	if !ok || named.Name != selfName {
		t.Fatalf("expected NamedObject(%d), got %v", selfName, obj)
	}
}

func TestExpandInlinesTypeAlias(t *testing.T) {
	cb := codeinfo.NewCodebase()
	aliasName := symbol.SymbolId(100)
	cb.TypeDefs[aliasName] = &codeinfo.TypeDefinition{
		Name:       aliasName,
		ActualType: ttype.New(ttype.Int{}, ttype.String{}),
	}
	u := ttype.New(ttype.TypeAlias{Name: aliasName})
	Expand(cb, u, Options{})

	if u.HasAtomOfKey((ttype.TypeAlias{Name: aliasName}).Key()) {
		t.Fatalf("alias was not inlined: %s", u)
	}
	if !u.HasAtomOfKey((ttype.Int{}).Key()) || !u.HasAtomOfKey((ttype.String{}).Key()) {
		t.Fatalf("expected int|string after inlining, got %s", u)
	}
}
