// Package packrat contains a memoizing parser-combinator engine that supports
// direct left recursion by growing seeds, and the Reader that all parsers in it
// run against.
//
// Every parser value owns one memo table per Reader. Applying a parser at a
// position that it has already been settled at returns the stored result
// without running the parser again.
package packrat

import (
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

type memoState int

const (
	stateSeeded memoState = iota + 1
	stateSettled
)

// memoEntry is the memo slot for one parser at one position. An entry that is
// absent from its table is unvisited.
type memoEntry struct {
	state  memoState
	result any
	end    int

	// grows is set when the parser was re-entered at the same position while
	// the entry was still seeded.
	grows bool
}

// memoize stores a result in the entry. Apply returns a settled entry without
// running its parser again, so from Apply this only ever replaces a seed; a
// stored success is also never replaced by a failure here.
func (e *memoEntry) memoize(result any, end int) {
	if e.state == stateSettled && e.result != nil {
		if old, ok := e.result.(failureOf); ok {
			if _, oldFailed := old.Failure(); !oldFailed {
				if _, newFailed := result.(failureOf).Failure(); newFailed {
					return
				}
			}
		}
	}
	e.result = result
	e.end = end
}

// frame is one parser invocation on the recursion-guard stack.
type frame struct {
	entry *memoEntry

	// tainted is set when something invoked beneath this frame observed the
	// seed of a parser that is further down the stack. A tainted result was
	// computed from a partial seed and must not be settled.
	tainted bool
}

// Reader is a cursor over a unit of source text together with all memo tables
// of the parsers that have been applied to it. A Reader is used for exactly one
// parse and is not safe for concurrent use.
type Reader struct {
	source    string
	file      string
	firstLine int
	newlines  []int
	pos       int
	env       any

	memos map[int]map[int]*memoEntry
	guard []*frame
}

// NewReader creates a Reader over source. file and line give the origin of
// the text for diagnostics; line is the 1-indexed line that the first
// character of source is on. env is the ambient context handed to parsers
// built with Depends and Effect.
//
// Source text is normalized to Unicode NFC so that keywords match regardless of
// how composed characters were entered.
func NewReader(source string, file string, line int, env any) *Reader {
	source = norm.NFC.String(source)

	r := &Reader{
		source:    source,
		file:      file,
		firstLine: line,
		env:       env,
		memos:     map[int]map[int]*memoEntry{},
	}

	for i := 0; i < len(source); i++ {
		if source[i] == '\n' {
			r.newlines = append(r.newlines, i)
		}
	}

	return r
}

// File returns the path of the file the source came from.
func (r *Reader) File() string {
	return r.file
}

// Source returns the complete (normalized) source text.
func (r *Reader) Source() string {
	return r.source
}

// Env returns the ambient context the Reader was created with.
func (r *Reader) Env() any {
	return r.env
}

// Pos returns the current cursor offset.
func (r *Reader) Pos() int {
	return r.pos
}

// SetPos moves the cursor.
func (r *Reader) SetPos(pos int) {
	r.pos = pos
}

// HasNext returns whether there is any input left at the cursor.
func (r *Reader) HasNext() bool {
	return r.pos < len(r.source)
}

// Peek returns the rune at the cursor and its width in bytes. At the end of
// input it returns utf8.RuneError and 0.
func (r *Reader) Peek() (rune, int) {
	return r.PeekAt(0)
}

// PeekAt returns the rune that starts offset bytes after the cursor.
func (r *Reader) PeekAt(offset int) (rune, int) {
	if r.pos+offset >= len(r.source) {
		return utf8.RuneError, 0
	}
	return utf8.DecodeRuneInString(r.source[r.pos+offset:])
}

// Rest returns the unconsumed input.
func (r *Reader) Rest() string {
	return r.source[r.pos:]
}

// From returns the source text from pos up to the cursor.
func (r *Reader) From(pos int) string {
	return r.source[pos:r.pos]
}

// Line returns the line that the given offset is on.
func (r *Reader) Line(pos int) int {
	return r.firstLine + sort.SearchInts(r.newlines, pos)
}

// Column returns the 1-indexed character position of the given offset within
// its line.
func (r *Reader) Column(pos int) int {
	if pos > len(r.source) {
		pos = len(r.source)
	}
	lineStart := 0
	idx := sort.SearchInts(r.newlines, pos)
	if idx > 0 {
		lineStart = r.newlines[idx-1] + 1
	}
	return utf8.RuneCountInString(r.source[lineStart:pos]) + 1
}

// LineText returns the full text of the line that the given offset is on,
// without its line terminator.
func (r *Reader) LineText(pos int) string {
	if pos > len(r.source) {
		pos = len(r.source)
	}
	lineStart := 0
	idx := sort.SearchInts(r.newlines, pos)
	if idx > 0 {
		lineStart = r.newlines[idx-1] + 1
	}
	lineEnd := len(r.source)
	if idx < len(r.newlines) {
		lineEnd = r.newlines[idx]
	}
	return strings.TrimRight(r.source[lineStart:lineEnd], "\r")
}

func (r *Reader) memoTable(id int) map[int]*memoEntry {
	tbl, ok := r.memos[id]
	if !ok {
		tbl = map[int]*memoEntry{}
		r.memos[id] = tbl
	}
	return tbl
}

func (r *Reader) push(e *memoEntry) *frame {
	f := &frame{entry: e}
	r.guard = append(r.guard, f)
	return f
}

func (r *Reader) pop() {
	r.guard = r.guard[:len(r.guard)-1]
}

// recursed records that the parser owning e was re-entered while seeded. The
// owner will grow its seed, and every invocation between the owner and the
// re-entry depends on the seed.
func (r *Reader) recursed(e *memoEntry) {
	e.grows = true
	for i := len(r.guard) - 1; i >= 0; i-- {
		if r.guard[i].entry == e {
			return
		}
		r.guard[i].tainted = true
	}
}

// AllFailures returns every failure currently settled in any memo table of
// the Reader, ordered by parser creation and then by position.
func (r *Reader) AllFailures() []Failure {
	ids := make([]int, 0, len(r.memos))
	for id := range r.memos {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	var fails []Failure
	for _, id := range ids {
		tbl := r.memos[id]
		positions := make([]int, 0, len(tbl))
		for p := range tbl {
			positions = append(positions, p)
		}
		sort.Ints(positions)

		for _, p := range positions {
			e := tbl[p]
			if e.state != stateSettled {
				continue
			}
			res, ok := e.result.(failureOf)
			if !ok || res.IsSeed() {
				continue
			}
			if f, failed := res.Failure(); failed {
				fails = append(fails, f)
			}
		}
	}
	return fails
}

// BestFailure selects the failure to report for a parse that ended in direct.
// The candidates are direct and every failure from AllFailures. The one with
// the highest score wins; on equal scores the memo scan is preferred over
// direct, and within the scan the failure furthest into the source wins.
func (r *Reader) BestFailure(direct Failure) Failure {
	var scanned Failure
	found := false
	for _, f := range r.AllFailures() {
		if !found || f.Score > scanned.Score || (f.Score == scanned.Score && f.Pos > scanned.Pos) {
			scanned = f
			found = true
		}
	}

	if found && scanned.Score >= direct.Score {
		return scanned
	}
	return direct
}
