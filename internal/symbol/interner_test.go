package symbol

import (
	"sync"
	"testing"
)

func TestInternerRoundTrip(t *testing.T) {
	in := NewInterner()
	id := in.Intern("MyClass")
	if got := in.Lookup(id); got != "MyClass" {
		t.Fatalf("Lookup(%d) = %q, want %q", id, got, "MyClass")
	}
	if again := in.Intern("MyClass"); again != id {
		t.Fatalf("Intern(\"MyClass\") twice produced %d and %d", id, again)
	}
}

func TestInternerReservedNames(t *testing.T) {
	in := NewInterner()
	if in.Lookup(Self) != "self" {
		t.Fatalf("Lookup(Self) = %q, want self", in.Lookup(Self))
	}
	if in.Lookup(StdClass) != "stdClass" {
		t.Fatalf("Lookup(StdClass) = %q, want stdClass", in.Lookup(StdClass))
	}
	if in.Intern("self") != Self {
		t.Fatalf("Intern(\"self\") should reuse the reserved id")
	}
}

func TestInternerNormalizesNFC(t *testing.T) {
	in := NewInterner()
	// "é" as a single codepoint (U+00E9) vs "e" + combining acute (U+0065 U+0301).
	precomposed := "café"
	decomposed := "café"
	id1 := in.Intern(precomposed)
	id2 := in.Intern(decomposed)
	if id1 != id2 {
		t.Fatalf("NFC-equivalent strings interned to different ids: %d vs %d", id1, id2)
	}
}

func TestInternerLookupUnknownPanics(t *testing.T) {
	in := NewInterner()
	defer func() {
		if recover() == nil {
			t.Fatal("Lookup of unknown id should panic")
		}
	}()
	in.Lookup(SymbolId(999999))
}

func TestStagingInternerFlush(t *testing.T) {
	shared := NewInterner()
	staging := NewStagingInterner(shared)

	staging.Intern("Foo")
	staging.Intern("Bar")
	staging.Intern("Foo")
	staging.Flush()

	fooID := staging.Resolve("Foo")
	barID := staging.Resolve("Bar")
	if fooID == barID {
		t.Fatalf("distinct names resolved to the same id")
	}
	if shared.Lookup(fooID) != "Foo" {
		t.Fatalf("shared interner missing flushed name Foo")
	}
}

func TestStagingInternerConcurrentWorkers(t *testing.T) {
	shared := NewInterner()
	var wg sync.WaitGroup
	ids := make([]SymbolId, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			st := NewStagingInterner(shared)
			st.Intern("SharedName")
			st.Flush()
			ids[i] = st.Resolve("SharedName")
		}(i)
	}
	wg.Wait()
	for i := 1; i < len(ids); i++ {
		if ids[i] != ids[0] {
			t.Fatalf("worker %d resolved SharedName to %d, want %d", i, ids[i], ids[0])
		}
	}
}
