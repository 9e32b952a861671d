// Package diagnostics holds the closed set of issue kinds a check run can
// report (spec.md §6.3) and the terminal renderer for them.
package diagnostics

import "github.com/slackhq/hakana-sub000/internal/pos"

// Kind is the closed set of diagnosable conditions. A checker that wants
// to report something not in this list is reporting the wrong thing —
// there is deliberately no freeform "Other" escape hatch (spec.md §7's
// "diagnostics are data, not strings" rule).
type Kind int

const (
	ImpossibleTypeComparison Kind = iota
	RedundantTypeComparison
	ImpossibleNullTypeComparison
	RedundantNullTypeComparison
	ImpossibleTruthinessCheck
	RedundantTruthinessCheck
	ImpossibleKeyCheck
	RedundantKeyCheck
	ImpossibleNonnullEntryCheck
	RedundantNonnullEntryCheck
	RedundantIssetCheck
	UnusedFunction
	UnusedClass
	UnusedPrivateMethod
	UnusedInheritedMethod
	UnusedPublicOrProtectedMethod
	UnusedPrivateProperty
	UnusedPublicOrProtectedProperty
	UnusedXhpAttribute
	UnusedTypeDefinition
	OnlyUsedInTests
	MissingCallsDbAsioJoinAttribute
	NonExistentClass
	NonExistentFunction
	// NonExistentVariable is reported for a variable reference with no
	// binding reachable in scope — distinct from NonExistentFunction,
	// which names an unresolved call target, not a variable.
	NonExistentVariable
	// InvalidArrayKey is the Open Question 3 promotion (SPEC_FULL.md §9.4
	// decision 3): Hakana's adjust_array_type only prints a debug line when
	// an integer dict key does not parse as a u64; here that case has a
	// Kind of its own. No code in this module reports it.
	InvalidArrayKey
)

var kindNames = map[Kind]string{
	ImpossibleTypeComparison:         "ImpossibleTypeComparison",
	RedundantTypeComparison:         "RedundantTypeComparison",
	ImpossibleNullTypeComparison:     "ImpossibleNullTypeComparison",
	RedundantNullTypeComparison:      "RedundantNullTypeComparison",
	ImpossibleTruthinessCheck:        "ImpossibleTruthinessCheck",
	RedundantTruthinessCheck:         "RedundantTruthinessCheck",
	ImpossibleKeyCheck:               "ImpossibleKeyCheck",
	RedundantKeyCheck:                "RedundantKeyCheck",
	ImpossibleNonnullEntryCheck:      "ImpossibleNonnullEntryCheck",
	RedundantNonnullEntryCheck:       "RedundantNonnullEntryCheck",
	RedundantIssetCheck:              "RedundantIssetCheck",
	UnusedFunction:                   "UnusedFunction",
	UnusedClass:                      "UnusedClass",
	UnusedPrivateMethod:              "UnusedPrivateMethod",
	UnusedInheritedMethod:            "UnusedInheritedMethod",
	UnusedPublicOrProtectedMethod:    "UnusedPublicOrProtectedMethod",
	UnusedPrivateProperty:            "UnusedPrivateProperty",
	UnusedPublicOrProtectedProperty:  "UnusedPublicOrProtectedProperty",
	UnusedXhpAttribute:               "UnusedXhpAttribute",
	UnusedTypeDefinition:             "UnusedTypeDefinition",
	OnlyUsedInTests:                  "OnlyUsedInTests",
	MissingCallsDbAsioJoinAttribute:  "MissingCallsDbAsioJoinAttribute",
	NonExistentClass:                 "NonExistentClass",
	NonExistentFunction:              "NonExistentFunction",
	NonExistentVariable:              "NonExistentVariable",
	InvalidArrayKey:                  "InvalidArrayKey",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "Unknown"
}

// Severity distinguishes issues that fail a check run from advisory ones.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

// Issue is one diagnosed condition at a source location.
type Issue struct {
	Kind     Kind
	Severity Severity
	Message  string
	Span     pos.Span
}

// IsRedundant reports whether this issue's Kind names an always-true
// check (as opposed to an always-false/impossible one). The renderer
// does not consult it; its colors follow Severity.
func (i Issue) IsRedundant() bool {
	switch i.Kind {
	case RedundantTypeComparison, RedundantNullTypeComparison, RedundantTruthinessCheck,
		RedundantKeyCheck, RedundantNonnullEntryCheck, RedundantIssetCheck:
		return true
	default:
		return false
	}
}
