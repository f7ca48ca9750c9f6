package packrat

import (
	"fmt"
	"strings"
)

// Pair is the value produced by Seq.
type Pair[A, B any] struct {
	First  A
	Second B
}

func (p Pair[A, B]) String() string {
	return fmt.Sprintf("(%v, %v)", p.First, p.Second)
}

// Unit returns a parser that always succeeds with v and consumes nothing.
func Unit[T any](v T) *Parser[T] {
	return New("unit", func(r *Reader) Result[T] {
		return Success(v, r.pos)
	})
}

// Failing returns a parser that always fails with the given message and score.
func Failing[T any](msg string, score int) *Parser[T] {
	return New("failure", func(r *Reader) Result[T] {
		return Fail[T](msg, r.pos, score)
	})
}

// Error returns a parser that always fails with the message of err. It is how
// errors from resolving names against the host model become parse failures.
func Error[T any](err error) *Parser[T] {
	return New("error", func(r *Reader) Result[T] {
		return Fail[T](err.Error(), r.pos, 0)
	})
}

// Seq runs p1 and then p2 from where p1 ended. If either fails, the sequence
// fails with that failure.
func Seq[A, B any](p1 *Parser[A], p2 *Parser[B]) *Parser[Pair[A, B]] {
	return New("seq", func(r *Reader) Result[Pair[A, B]] {
		a := p1.Apply(r)
		if !a.Ok() {
			return failWith[Pair[A, B]](a.fail)
		}
		b := p2.Apply(r)
		if !b.Ok() {
			return failWith[Pair[A, B]](b.fail)
		}
		return Success(Pair[A, B]{First: a.value, Second: b.value}, b.end)
	})
}

// SeqList runs each parser in ps in order with the keyword sep between each,
// collecting the values.
func SeqList[T any](ps []*Parser[T], sep string) *Parser[[]T] {
	var sepParser *Parser[string]
	if sep != "" {
		sepParser = Keyword(sep)
	}
	return New("seqlist", func(r *Reader) Result[[]T] {
		values := make([]T, 0, len(ps))
		for i, p := range ps {
			if i > 0 && sepParser != nil {
				s := sepParser.Apply(r)
				if !s.Ok() {
					return failWith[[]T](s.fail)
				}
			}
			res := p.Apply(r)
			if !res.Ok() {
				return failWith[[]T](res.fail)
			}
			values = append(values, res.value)
		}
		return Success(values, r.pos)
	})
}

// Choice tries each parser in order from the same position and returns the
// first success. If all fail, the failure with the highest score is returned;
// on a tie the later alternative's failure is the one kept.
func Choice[T any](ps ...*Parser[T]) *Parser[T] {
	return New("choice", func(r *Reader) Result[T] {
		start := r.pos
		var best Failure
		for i, p := range ps {
			r.pos = start
			res := p.Apply(r)
			if res.Ok() {
				return res
			}
			if i == 0 || res.fail.Score >= best.Score {
				best = res.fail
			}
		}
		if len(ps) == 0 {
			return Fail[T]("no alternatives", start, 0)
		}
		return failWith[T](best)
	})
}

// Foreach builds one parser per item with f and tries them as an ordered
// choice. If items is empty, it fails with msg.
func Foreach[I, T any](items []I, f func(item I) *Parser[T], msg string) *Parser[T] {
	if len(items) == 0 {
		return Failing[T](msg, 0)
	}
	ps := make([]*Parser[T], len(items))
	for i := range items {
		ps[i] = f(items[i])
	}
	return Choice(ps...)
}

// Map transforms the value of a success with f. Failures pass through.
func Map[A, B any](p *Parser[A], f func(A) B) *Parser[B] {
	return New("map", func(r *Reader) Result[B] {
		a := p.Apply(r)
		if !a.Ok() {
			return failWith[B](a.fail)
		}
		return Success(f(a.value), a.end)
	})
}

// Bind runs p and then the parser that f builds from p's value, starting where
// p ended.
func Bind[A, B any](p *Parser[A], f func(A) *Parser[B]) *Parser[B] {
	return New("bind", func(r *Reader) Result[B] {
		a := p.Apply(r)
		if !a.Ok() {
			return failWith[B](a.fail)
		}
		next := f(a.value)
		return next.Apply(r)
	})
}

// Rep matches p zero or more times, as many times as possible.
func Rep[T any](p *Parser[T]) *Parser[[]T] {
	return repeat(p, "", 0)
}

// RepSep matches p zero or more times with the keyword sep between each match.
func RepSep[T any](p *Parser[T], sep string) *Parser[[]T] {
	return repeat(p, sep, 0)
}

// Rep1 matches p one or more times, as many times as possible.
func Rep1[T any](p *Parser[T]) *Parser[[]T] {
	return repeat(p, "", 1)
}

// Rep1Sep matches p one or more times with the keyword sep between each match.
func Rep1Sep[T any](p *Parser[T], sep string) *Parser[[]T] {
	return repeat(p, sep, 1)
}

func repeat[T any](p *Parser[T], sep string, min int) *Parser[[]T] {
	var sepParser *Parser[string]
	if sep != "" {
		sepParser = Keyword(sep)
	}

	name := "rep"
	if min > 0 {
		name = "rep1"
	}

	return New(name, func(r *Reader) Result[[]T] {
		values := []T{}
		for {
			before := r.pos
			if sepParser != nil && len(values) > 0 {
				if s := sepParser.Apply(r); !s.Ok() {
					r.pos = before
					break
				}
			}

			res := p.Apply(r)
			if !res.Ok() {
				r.pos = before
				if len(values) < min {
					return failWith[[]T](res.fail)
				}
				break
			}
			values = append(values, res.value)

			// a match of nothing would match forever
			if res.end == before {
				break
			}
		}
		return Success(values, r.pos)
	})
}

// Optional returns the success of p, or a success with def consuming nothing
// if p fails.
func Optional[T any](p *Parser[T], def T) *Parser[T] {
	return New("optional", func(r *Reader) Result[T] {
		start := r.pos
		res := p.Apply(r)
		if res.Ok() {
			return res
		}
		return Success(def, start)
	})
}

// AndPredicate succeeds with p's value if p matches, but never consumes input.
func AndPredicate[T any](p *Parser[T]) *Parser[T] {
	return New("and", func(r *Reader) Result[T] {
		start := r.pos
		res := p.Apply(r)
		if !res.Ok() {
			return failWith[T](res.fail)
		}
		return Success(res.value, start)
	})
}

// NotPredicate succeeds if p does not match, and never consumes input.
func NotPredicate[T any](p *Parser[T]) *Parser[struct{}] {
	return New("not", func(r *Reader) Result[struct{}] {
		start := r.pos
		res := p.Apply(r)
		if res.Ok() {
			return Fail[struct{}](fmt.Sprintf("unexpected %q", r.source[start:res.end]), start, 0)
		}
		return Success(struct{}{}, start)
	})
}

// Left runs p then q and keeps only p's value.
func Left[A, B any](p *Parser[A], q *Parser[B]) *Parser[A] {
	return Map(Seq(p, q), func(pair Pair[A, B]) A { return pair.First })
}

// Right runs p then q and keeps only q's value.
func Right[A, B any](p *Parser[A], q *Parser[B]) *Parser[B] {
	return Map(Seq(p, q), func(pair Pair[A, B]) B { return pair.Second })
}

// Postfix matches p followed by the keyword kw.
func Postfix[T any](p *Parser[T], kw string) *Parser[T] {
	return Left(p, Keyword(kw))
}

// Prefix matches the keyword kw followed by p.
func Prefix[T any](kw string, p *Parser[T]) *Parser[T] {
	return Right(Keyword(kw), p)
}

// Infix matches p1, the keyword kw, and p2.
func Infix[A, B any](p1 *Parser[A], kw string, p2 *Parser[B]) *Parser[Pair[A, B]] {
	return Seq(Postfix(p1, kw), p2)
}

// Enclosed matches p between the keywords open and close.
func Enclosed[T any](open string, p *Parser[T], close string) *Parser[T] {
	return Postfix(Prefix(open, p), close)
}

// Keywords matches each of the given keywords in order.
func Keywords(kws ...string) *Parser[string] {
	ps := make([]*Parser[string], len(kws))
	for i := range kws {
		ps[i] = Keyword(kws[i])
	}
	return Map(SeqList(ps, ""), func(matched []string) string {
		return strings.Join(matched, " ")
	})
}

// Depends defers building a parser until it is applied, and builds it from the
// Reader's environment, which must be of type E.
func Depends[E, T any](f func(env E) *Parser[T]) *Parser[T] {
	return newTransparent("depends", func(r *Reader) Result[T] {
		env, ok := r.env.(E)
		if !ok {
			return Fail[T](fmt.Sprintf("reader environment %T cannot be used here", r.env), r.pos, 0)
		}
		return f(env).Apply(r)
	})
}

// Effect runs f with the Reader's environment, which must be of type E, each
// time p succeeds.
func Effect[E, T any](p *Parser[T], f func(env E, v T, r *Reader)) *Parser[T] {
	return New("effect", func(r *Reader) Result[T] {
		res := p.Apply(r)
		if !res.Ok() {
			return res
		}
		if env, ok := r.env.(E); ok {
			f(env, res.value, r)
		}
		return res
	})
}

// Ref returns a parser that forwards to the parser thunk returns. The thunk is
// called the first time the reference is applied and never again; this lets
// grammar rules refer to each other before all of them are built.
func Ref[T any](thunk func() *Parser[T]) *Parser[T] {
	var target *Parser[T]
	return newTransparent("ref", func(r *Reader) Result[T] {
		if target == nil {
			target = thunk()
		}
		return target.Apply(r)
	})
}
