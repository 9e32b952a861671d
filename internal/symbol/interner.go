package symbol

import (
	"fmt"
	"math"
	"sync"

	"github.com/zeebo/xxh3"
	"golang.org/x/text/unicode/norm"
)

// Interner is the shared, process-wide string<->SymbolId table. All reads
// and writes go through a single mutex; the expensive path (parallel
// scanning) is expected to batch through a StagingInterner instead of
// hammering this lock per identifier.
type Interner struct {
	mu     sync.Mutex
	byID   []string
	byName map[string]SymbolId
}

// NewInterner returns an Interner pre-populated with the reserved names at
// their fixed ids, so that package-level constants like symbol.Self are
// always valid without a lookup.
func NewInterner() *Interner {
	in := &Interner{
		byID:   make([]string, len(reservedNames)),
		byName: make(map[string]SymbolId, len(reservedNames)),
	}
	in.byID[0] = ""
	for i, name := range reservedNames {
		if i == 0 {
			continue
		}
		id := SymbolId(i)
		in.byID[id] = name
		in.byName[name] = id
	}
	return in
}

// normalize canonicalizes s to NFC so that two byte-distinct but
// canonically-equivalent identifiers always intern to the same id.
func normalize(s string) string {
	if norm.NFC.IsNormalString(s) {
		return s
	}
	return norm.NFC.String(s)
}

// Intern returns the SymbolId for s, assigning a new one if s has not been
// seen before. Intern is append-only: an id, once assigned, is never reused
// or invalidated.
func (in *Interner) Intern(s string) SymbolId {
	s = normalize(s)
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.internLocked(s)
}

func (in *Interner) internLocked(s string) SymbolId {
	if id, ok := in.byName[s]; ok {
		return id
	}
	if len(in.byID) >= math.MaxUint32 {
		panic("symbol: interner exhausted the 32-bit id space")
	}
	id := SymbolId(len(in.byID))
	in.byID = append(in.byID, s)
	in.byName[s] = id
	return id
}

// Lookup returns the string an id was interned from. It panics on an
// unknown id: every SymbolId in circulation must have come from Intern.
func (in *Interner) Lookup(id SymbolId) string {
	in.mu.Lock()
	defer in.mu.Unlock()
	if int(id) >= len(in.byID) {
		panic(fmt.Sprintf("symbol: lookup of unknown id %d", id))
	}
	return in.byID[id]
}

// Len reports how many distinct strings have been interned, including the
// reserved names.
func (in *Interner) Len() int {
	in.mu.Lock()
	defer in.mu.Unlock()
	return len(in.byID)
}

// StagingInterner batches a single worker's insertions behind a
// lock-free local map, keyed by an xxh3 hash for fast probing, and flushes
// them into the shared Interner in one critical section. This mirrors the
// per-file-scan worker pattern in spec.md §5: a scan thread interns
// thousands of local and as-yet-unseen names without ever touching the
// shared lock until Flush.
type StagingInterner struct {
	shared *Interner
	local  map[uint64]stagingEntry
}

type stagingEntry struct {
	name string
	id   SymbolId // valid once resolved against the shared interner, else 0
}

// NewStagingInterner returns a staging interner that batches into shared.
func NewStagingInterner(shared *Interner) *StagingInterner {
	return &StagingInterner{shared: shared, local: make(map[uint64]stagingEntry)}
}

// Intern stages name in this worker's local batch without assigning an
// id; the durable SymbolId exists only after Flush, and Resolve returns
// it. Callers that need a durable SymbolId before Flush has run should
// call InternNow instead.
func (s *StagingInterner) Intern(name string) {
	name = normalize(name)
	h := xxh3.HashString(name)
	if _, ok := s.local[h]; !ok {
		s.local[h] = stagingEntry{name: name}
	}
}

// InternNow bypasses staging and interns directly into the shared table.
// Use for names that must be resolvable immediately (e.g. a name this
// worker needs to compare against another worker's output before Flush).
func (s *StagingInterner) InternNow(name string) SymbolId {
	return s.shared.Intern(name)
}

// Flush takes the shared interner's lock exactly once and assigns a
// durable SymbolId to every name staged since the last Flush, then clears
// the local batch.
func (s *StagingInterner) Flush() {
	if len(s.local) == 0 {
		return
	}
	s.shared.mu.Lock()
	for h, entry := range s.local {
		id := s.shared.internLocked(entry.name)
		s.local[h] = stagingEntry{name: entry.name, id: id}
	}
	s.shared.mu.Unlock()
}

// Resolve returns the durable SymbolId for name after a Flush, panicking
// if name was never staged (a bug: callers must stage before resolving).
func (s *StagingInterner) Resolve(name string) SymbolId {
	name = normalize(name)
	h := xxh3.HashString(name)
	entry, ok := s.local[h]
	if !ok {
		panic(fmt.Sprintf("symbol: resolve of name %q never staged", name))
	}
	return entry.id
}
