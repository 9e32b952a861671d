// Package pos holds the source-position types shared by the type engine's
// provenance chains and by diagnostics.
package pos

import "strconv"

// Location is a 1-indexed line/column pair.
type Location struct {
	Line   int
	Column int
}

func (l Location) String() string {
	return strconv.Itoa(l.Line) + ":" + strconv.Itoa(l.Column)
}

// Span is a half-open source range within a single file, identified by
// FileID (an index into whatever file table the host maintains).
type Span struct {
	Start  Location
	End    Location
	FileID int
}

func (s Span) String() string {
	return s.Start.String() + "-" + s.End.String()
}

// Contains reports whether loc falls within s.
func (s Span) Contains(loc Location) bool {
	return (s.Start.Line < loc.Line || (s.Start.Line == loc.Line && s.Start.Column <= loc.Column)) &&
		(s.End.Line > loc.Line || (s.End.Line == loc.Line && s.End.Column > loc.Column))
}

// Merge returns the smallest span covering both a and b.
func Merge(a, b Span) Span {
	start, end := a.Start, b.End
	if b.Start.Line < a.Start.Line || (b.Start.Line == a.Start.Line && b.Start.Column < a.Start.Column) {
		start = b.Start
	}
	if a.End.Line > b.End.Line || (a.End.Line == b.End.Line && a.End.Column > b.End.Column) {
		end = a.End
	}
	return Span{Start: start, End: end, FileID: a.FileID}
}

// Default is used whenever a type or diagnostic has no concrete source
// location (e.g. a prelude-synthesized type).
var Default = Span{Start: Location{Line: 1, Column: 1}, End: Location{Line: 1, Column: 1}, FileID: -1}
