package diagnostics

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
)

// RenderOptions controls terminal output.
type RenderOptions struct {
	Color bool
	// Files maps a Span's FileID to its display path.
	Files map[int]string
	// Source maps a Span's FileID to its lines, for the context preview;
	// a missing entry just skips the preview for that issue.
	Source map[int][]string
}

// Render prints issues as `path:line:col: SEVERITY Kind: message`, followed
// by the offending source line with a caret/tilde underline under the
// issue's span — the same shape as a compiler diagnostic.
func Render(w io.Writer, issues []Issue, opts RenderOptions) {
	errorColor := color.New(color.FgRed, color.Bold)
	warningColor := color.New(color.FgYellow, color.Bold)
	pathColor := color.New(color.FgWhite, color.Bold)
	kindColor := color.New(color.FgMagenta)
	underlineColor := color.New(color.FgRed, color.Bold)

	prev := color.NoColor
	defer func() { color.NoColor = prev }()
	color.NoColor = !opts.Color

	for idx, issue := range issues {
		if idx > 0 {
			fmt.Fprintln(w)
		}

		sevStr := "ERROR"
		sevColored := errorColor.Sprint(sevStr)
		if issue.Severity == SeverityWarning {
			sevColored = warningColor.Sprint("WARNING")
		}

		path := opts.Files[issue.Span.FileID]
		fmt.Fprintf(w, "%s:%d:%d: %s %s: %s\n",
			pathColor.Sprint(path),
			issue.Span.Start.Line,
			issue.Span.Start.Column,
			sevColored,
			kindColor.Sprint(issue.Kind.String()),
			issue.Message,
		)

		lines, ok := opts.Source[issue.Span.FileID]
		if !ok || issue.Span.Start.Line < 1 || issue.Span.Start.Line > len(lines) {
			continue
		}
		lineText := lines[issue.Span.Start.Line-1]
		gutter := fmt.Sprintf("%4d | ", issue.Span.Start.Line)
		fmt.Fprint(w, gutter)
		fmt.Fprintln(w, lineText)

		startCol := issue.Span.Start.Column
		endCol := issue.Span.End.Column
		if issue.Span.End.Line > issue.Span.Start.Line {
			endCol = runewidth.StringWidth(lineText) + 1
		}
		if endCol <= startCol {
			endCol = startCol + 1
		}

		var underline strings.Builder
		for range len(gutter) {
			underline.WriteByte(' ')
		}
		for i := 1; i < startCol; i++ {
			underline.WriteByte(' ')
		}
		span := endCol - startCol
		for i := 0; i < span; i++ {
			if i == span-1 {
				underline.WriteByte('^')
			} else {
				underline.WriteByte('~')
			}
		}
		fmt.Fprintln(w, underlineColor.Sprint(underline.String()))
	}
}
