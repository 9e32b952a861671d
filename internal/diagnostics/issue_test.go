package diagnostics

import (
	"bytes"
	"strings"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"

	"github.com/slackhq/hakana-sub000/internal/pos"
)

func TestKindStringKnown(t *testing.T) {
	if InvalidArrayKey.String() != "InvalidArrayKey" {
		t.Errorf("expected InvalidArrayKey, got %s", InvalidArrayKey.String())
	}
	if NonExistentFunction.String() != "NonExistentFunction" {
		t.Errorf("expected NonExistentFunction, got %s", NonExistentFunction.String())
	}
}

func TestIsRedundant(t *testing.T) {
	if !(Issue{Kind: RedundantTruthinessCheck}).IsRedundant() {
		t.Error("expected RedundantTruthinessCheck to report redundant")
	}
	if (Issue{Kind: ImpossibleTruthinessCheck}).IsRedundant() {
		t.Error("expected ImpossibleTruthinessCheck to not report redundant")
	}
}

func TestRenderIncludesCaret(t *testing.T) {
	span := pos.Span{
		Start:  pos.Location{Line: 1, Column: 5},
		End:    pos.Location{Line: 1, Column: 8},
		FileID: 1,
	}
	issues := []Issue{{Kind: ImpossibleKeyCheck, Severity: SeverityError, Message: "key never present", Span: span}}
	opts := RenderOptions{
		Color:  false,
		Files:  map[int]string{1: "test.hack"},
		Source: map[int][]string{1: {"$x = $shape['foo'];"}},
	}
	var buf bytes.Buffer
	Render(&buf, issues, opts)
	out := buf.String()
	if !strings.Contains(out, "test.hack:1:5") {
		t.Errorf("expected location in output, got %q", out)
	}
	if !strings.Contains(out, "^") {
		t.Errorf("expected caret underline in output, got %q", out)
	}
}

// TestRenderMultiIssueSnapshot pins the exact terminal layout (gutter
// width, blank line between issues, tilde/caret underline shape) across
// an error and a warning on the same file, so a future formatting change
// has to be a deliberate snapshot update rather than an unnoticed diff.
func TestRenderMultiIssueSnapshot(t *testing.T) {
	issues := []Issue{
		{
			Kind:     NonExistentClass,
			Severity: SeverityError,
			Message:  "class Foo is not defined",
			Span: pos.Span{
				Start:  pos.Location{Line: 2, Column: 10},
				End:    pos.Location{Line: 2, Column: 13},
				FileID: 1,
			},
		},
		{
			Kind:     RedundantIssetCheck,
			Severity: SeverityWarning,
			Message:  "$x is already known to be set here",
			Span: pos.Span{
				Start:  pos.Location{Line: 3, Column: 1},
				End:    pos.Location{Line: 3, Column: 16},
				FileID: 1,
			},
		},
	}
	opts := RenderOptions{
		Color: false,
		Files: map[int]string{1: "example.hack"},
		Source: map[int][]string{1: {
			"function f(): void {",
			"  new Foo();",
			"  if (Shapes::idx($s, 'k') !== null) {}",
		}},
	}
	var buf bytes.Buffer
	Render(&buf, issues, opts)
	snaps.MatchSnapshot(t, buf.String())
}
