// Package diag holds the diagnostics produced while compiling bodies, and the
// sinks that collect them.
package diag

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dekarrin/mixfix/internal/packrat"
	"github.com/dekarrin/rosed"
)

// Diagnostic is a problem found at a particular place in the source.
type Diagnostic struct {
	// File is the path of the file the problem is in. It may be empty.
	File string

	// Line is the line the problem is on, 1-indexed. It is 0 if unknown.
	Line int

	// Column is the character position in Line, 1-indexed.
	Column int

	Message string

	// SourceLine is the full text of Line.
	SourceLine string
}

// FromFailure creates a Diagnostic for a parse failure in the text of r.
func FromFailure(r *packrat.Reader, f packrat.Failure) Diagnostic {
	return Diagnostic{
		File:       r.File(),
		Line:       r.Line(f.Pos),
		Column:     r.Column(f.Pos),
		Message:    f.Message,
		SourceLine: r.LineText(f.Pos),
	}
}

// At creates a Diagnostic for line of file with no particular column.
func At(file string, line int, msg string) Diagnostic {
	return Diagnostic{File: file, Line: line, Message: msg}
}

func (d Diagnostic) Error() string {
	var sb strings.Builder
	if d.File != "" {
		sb.WriteString(d.File)
		sb.WriteString(": ")
	}
	switch {
	case d.Line == 0:
		sb.WriteString("error: ")
	case d.Column == 0:
		sb.WriteString(fmt.Sprintf("line %d: ", d.Line))
	default:
		sb.WriteString(fmt.Sprintf("around line %d, char %d: ", d.Line, d.Column))
	}
	sb.WriteString(d.Message)
	return sb.String()
}

// FullMessage shows the complete message of the diagnostic along with the
// offending line and a cursor to the problem position, with the message
// wrapped to width. A width less than 1 disables wrapping.
func (d Diagnostic) FullMessage(width int) string {
	msg := d.Error()
	if width > 0 {
		msg = rosed.Edit(msg).Wrap(width).String()
	}

	if cursor := d.SourceLineWithCursor(); cursor != "" {
		msg = cursor + "\n" + msg
	}
	return msg
}

// SourceLineWithCursor returns the offending line and directly under it a
// cursor showing where the problem is. It returns an empty string if there is
// no source line or no column.
func (d Diagnostic) SourceLineWithCursor() string {
	if d.SourceLine == "" || d.Column < 1 {
		return ""
	}

	// column is 1-indexed and counts runes, tabs are kept so the cursor lines
	// up when printed.
	var cursor strings.Builder
	i := 0
	for _, ch := range d.SourceLine {
		if i >= d.Column-1 {
			break
		}
		if ch == '\t' {
			cursor.WriteRune('\t')
		} else {
			cursor.WriteRune(' ')
		}
		i++
	}
	for ; i < d.Column-1; i++ {
		cursor.WriteRune(' ')
	}
	cursor.WriteRune('^')

	return d.SourceLine + "\n" + cursor.String()
}

// Sink receives diagnostics.
type Sink interface {
	Record(d Diagnostic)
}

// List is a Sink that keeps every diagnostic in the order recorded.
type List struct {
	Items []Diagnostic
}

// Record adds d to the List.
func (l *List) Record(d Diagnostic) {
	l.Items = append(l.Items, d)
}

// Len returns the number of diagnostics in the List.
func (l *List) Len() int {
	return len(l.Items)
}

// Sorted returns a copy of the diagnostics ordered by file, then line, then
// column. Diagnostics at the same place keep the order they were recorded in.
func (l *List) Sorted() []Diagnostic {
	sorted := make([]Diagnostic, len(l.Items))
	copy(sorted, l.Items)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Column < b.Column
	})
	return sorted
}

// Err returns nil if the List is empty. Otherwise it returns the first
// diagnostic, with a count of the rest in its message.
func (l *List) Err() error {
	if len(l.Items) == 0 {
		return nil
	}
	first := l.Items[0]
	if len(l.Items) > 1 {
		first.Message = fmt.Sprintf("%s (and %d more)", first.Message, len(l.Items)-1)
	}
	return first
}

// SinkFunc is a function that can be used as a Sink.
type SinkFunc func(d Diagnostic)

// Record calls f with d.
func (f SinkFunc) Record(d Diagnostic) {
	f(d)
}
