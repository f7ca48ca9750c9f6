package packrat

import (
	"fmt"
	"sync/atomic"
)

var lastParserID int64

// Parser is a parser value producing a T. Every Parser has its own identity,
// and that identity keys its memo table in each Reader it is applied to; two
// Parsers built from identical definitions do not share memoized results.
type Parser[T any] struct {
	id    int
	name  string
	parse func(r *Reader) Result[T]

	// transparent parsers only forward to another parser and are not
	// memoized themselves.
	transparent bool
}

// New creates a memoized parser from a parse function. The function is called
// with the cursor at the start position and must not rely on where it leaves
// the cursor; Apply moves the cursor to the end of a success or back to the
// start on failure.
func New[T any](name string, parse func(r *Reader) Result[T]) *Parser[T] {
	return &Parser[T]{
		id:    int(atomic.AddInt64(&lastParserID, 1)),
		name:  name,
		parse: parse,
	}
}

func newTransparent[T any](name string, parse func(r *Reader) Result[T]) *Parser[T] {
	p := New(name, parse)
	p.transparent = true
	return p
}

// Name returns the human-readable name the Parser was created with.
func (p *Parser[T]) Name() string {
	return p.name
}

func (p *Parser[T]) String() string {
	return fmt.Sprintf("%s#%d", p.name, p.id)
}

// Named gives the parser a new name and returns it, for debugging output.
func (p *Parser[T]) Named(name string) *Parser[T] {
	p.name = name
	return p
}

// Apply runs the parser at the Reader's cursor.
//
// A parser that re-enters itself at the same position before finishing sees
// its own seed, which is a failure on the first round. When that happens and
// the first round succeeds anyway, the body is run again with the previous
// success as the seed for as long as each round ends strictly further into
// the input, and the longest success is kept. A grammar that could keep
// growing at the same position forever is a construction error.
func (p *Parser[T]) Apply(r *Reader) Result[T] {
	if p.transparent {
		return p.parse(r)
	}

	start := r.pos
	tbl := r.memoTable(p.id)

	if e, ok := tbl[start]; ok {
		if e.state == stateSeeded {
			r.recursed(e)
		}
		res := e.result.(Result[T])
		r.pos = e.end
		return res
	}

	e := &memoEntry{state: stateSeeded, result: seedResult[T](start), end: start}
	tbl[start] = e
	f := r.push(e)

	res := p.eval(r, start)
	if e.grows && res.Ok() {
		res = p.grow(r, e, start, res)
	}
	r.pop()

	end := start
	if res.Ok() {
		end = res.end
	}

	if f.tainted {
		// computed from another parser's unfinished seed; it will be evaluated
		// again once that seed has grown.
		delete(tbl, start)
	} else {
		e.state = stateSettled
		e.memoize(res, end)
		res = e.result.(Result[T])
		end = e.end
	}

	r.pos = end
	return res
}

func (p *Parser[T]) eval(r *Reader, start int) Result[T] {
	r.pos = start
	res := p.parse(r)
	if res.Ok() {
		r.pos = res.end
	} else {
		r.pos = start
	}
	return res
}

func (p *Parser[T]) grow(r *Reader, e *memoEntry, start int, seed Result[T]) Result[T] {
	best := seed
	for {
		e.result = best
		e.end = best.end

		next := p.eval(r, start)
		if !next.Ok() || next.end <= best.end {
			break
		}
		best = next
	}
	r.pos = best.end
	return best
}

// Parse runs p against a fresh Reader over source and returns the result.
func Parse[T any](p *Parser[T], source string, env any) (Result[T], *Reader) {
	r := NewReader(source, "", 1, env)
	return p.Apply(r), r
}
